// internal/service/dispatcher.go
package service

import (
	"context"
	"errors"
	"log"
	"time"

	appErrors "github.com/promopilot/promopilot-backend/internal/errors"
	"github.com/promopilot/promopilot-backend/internal/event"
	"github.com/promopilot/promopilot-backend/internal/model"
	"github.com/promopilot/promopilot-backend/internal/repository"
	"github.com/promopilot/promopilot-backend/internal/sender"
)

// DefaultSendTimeout keeps one slow channel from starving the rest of a
// scheduler batch.
const DefaultSendTimeout = 5 * time.Second

// ChannelDispatcher resolves a post's channel through the registry, formats
// the campaign content, and sends. No error propagates out of Dispatch:
// every outcome ends as a stored post status.
type ChannelDispatcher struct {
	Channels    repository.ChannelRepositoryInterface
	Posts       repository.PostRepositoryInterface
	Campaigns   repository.CampaignRepositoryInterface
	Sender      sender.Sender
	Bus         event.Bus
	SendTimeout time.Duration
}

func (d *ChannelDispatcher) Dispatch(ctx context.Context, post *model.Post) {
	campaign, err := d.Campaigns.GetByID(post.CampaignID)
	if err != nil {
		d.fail(post, "load campaign: "+err.Error())
		return
	}

	channel, err := d.Channels.GetByID(post.ChannelID)
	if err != nil {
		d.fail(post, "resolve channel: "+err.Error())
		return
	}
	if channel == nil {
		d.fail(post, appErrors.NewChannelUnreachable(post.ChannelID, "not registered").Error())
		return
	}
	if !channel.CanPost {
		d.fail(post, appErrors.NewChannelUnreachable(post.ChannelID, "posting rights revoked").Error())
		return
	}

	content := RenderContent(campaign.ContentRef, channel)

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout())
	defer cancel()

	deliveryID, err := d.Sender.Send(sendCtx, channel.ChatID, content)
	if err != nil {
		d.fail(post, classifyDeliveryError(err, post.ChannelID).Error())
		return
	}

	ok, err := d.Posts.MarkPublished(post.ID, deliveryID, time.Now())
	if err != nil {
		log.Println("⚠️ failed to mark post published:", err)
		return
	}
	if !ok {
		// Already finalized elsewhere; the send happened, keep that record out
		// of the logs as an error.
		log.Printf("ℹ️ post %d was no longer scheduled after send\n", post.ID)
		return
	}

	log.Printf("✅ post %d published to channel %d (delivery %s)\n", post.ID, post.ChannelID, deliveryID)
}

// classifyDeliveryError maps send failures onto the taxonomy: unreachable
// stays terminal, everything else counts as transient and re-queueable.
func classifyDeliveryError(err error, channelID int64) error {
	var unreachable *appErrors.ErrChannelUnreachable
	if errors.As(err, &unreachable) {
		if unreachable.ChannelID == 0 {
			return appErrors.NewChannelUnreachable(channelID, unreachable.Reason)
		}
		return err
	}

	var transient *appErrors.ErrTransientDelivery
	if errors.As(err, &transient) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return appErrors.NewTransientDelivery("send timed out")
	}
	return appErrors.NewTransientDelivery(err.Error())
}

func (d *ChannelDispatcher) fail(post *model.Post, msg string) {
	ok, err := d.Posts.MarkFailed(post.ID, msg)
	if err != nil {
		log.Println("⚠️ failed to mark post failed:", err)
		return
	}
	if !ok {
		return
	}

	log.Printf("❌ post %d failed: %s\n", post.ID, msg)
	if d.Bus != nil {
		if err := d.Bus.Publish(event.Event{
			Topic:      event.TopicPostFailed,
			PostID:     post.ID,
			CampaignID: post.CampaignID,
			ChannelID:  post.ChannelID,
			Error:      msg,
		}); err != nil {
			log.Println("⚠️ failed to publish post.failed:", err)
		}
	}
}

func (d *ChannelDispatcher) sendTimeout() time.Duration {
	if d.SendTimeout <= 0 {
		return DefaultSendTimeout
	}
	return d.SendTimeout
}
