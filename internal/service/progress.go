// internal/service/progress.go
package service

import (
	"log"

	appErrors "github.com/promopilot/promopilot-backend/internal/errors"
	"github.com/promopilot/promopilot-backend/internal/event"
	"github.com/promopilot/promopilot-backend/internal/model"
	"github.com/promopilot/promopilot-backend/internal/repository"
)

// ProgressAggregator keeps campaign counters honest. posts_published is
// always recomputed from the post rows, never incremented, so concurrent
// refreshes of the same campaign cannot drift.
type ProgressAggregator struct {
	Campaigns repository.CampaignRepositoryInterface
	Bus       event.Bus
}

func (a *ProgressAggregator) Refresh(campaignID int) (*model.Campaign, error) {
	c, err := a.Campaigns.RefreshProgress(campaignID)
	if err != nil {
		return nil, err
	}

	if c.PostsPublished > c.TotalPosts {
		// Should be unreachable: log and force one more recompute.
		log.Println("⚠️", appErrors.NewAggregationInconsistency(c.ID, c.PostsPublished, c.TotalPosts))
		if c, err = a.Campaigns.RefreshProgress(campaignID); err != nil {
			return nil, err
		}
	}

	if c.Status == model.CampaignStatusCompleted && a.Bus != nil {
		log.Printf("🏁 campaign %d completed (%d/%d posts)\n", c.ID, c.PostsPublished, c.TotalPosts)
		if err := a.Bus.Publish(event.Event{
			Topic:      event.TopicCampaignCompleted,
			CampaignID: c.ID,
			OrderID:    c.OrderID,
		}); err != nil {
			log.Println("⚠️ failed to publish campaign.completed:", err)
		}
	}

	return c, nil
}
