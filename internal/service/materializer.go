// internal/service/materializer.go
package service

import (
	"fmt"
	"log"
	"time"

	"github.com/promopilot/promopilot-backend/internal/model"
	"github.com/promopilot/promopilot-backend/internal/repository"
)

// CampaignMaterializer expands a confirmed order into a campaign and its
// post schedule. Idempotent per order: the watcher's confirmation callback
// may fire more than once, only the first attempt creates anything.
type CampaignMaterializer struct {
	Campaigns repository.CampaignRepositoryInterface
}

func (m *CampaignMaterializer) Materialize(order *model.Order) (*model.Campaign, error) {
	if len(order.Channels) == 0 {
		return nil, fmt.Errorf("order %d has no channels", order.ID)
	}
	if order.DurationDays < 1 || order.PostsPerDay < 1 {
		return nil, fmt.Errorf("order %d has invalid duration/frequency", order.ID)
	}

	c := &model.Campaign{
		OrderID:     order.ID,
		ContentRef:  order.ContentRef,
		Channels:    order.Channels,
		TotalPosts:  order.DurationDays * order.PostsPerDay,
		PostsPerDay: order.PostsPerDay,
		Status:      model.CampaignStatusActive,
	}

	posts := BuildSchedule(time.Now(), order.Channels, order.DurationDays, order.PostsPerDay)

	created, err := m.Campaigns.CreateWithPosts(c, posts)
	if err != nil {
		return nil, err
	}
	if !created {
		log.Printf("ℹ️ campaign for order %d already exists (id %d), skipping\n", order.ID, c.ID)
		return c, nil
	}

	log.Printf("📅 materialized campaign %d: %d posts over %d days across %d channels\n",
		c.ID, c.TotalPosts, order.DurationDays, len(order.Channels))
	return c, nil
}

// BuildSchedule spreads total_posts evenly across the duration and
// round-robins them across channels, so load never bursts on one moment or
// one channel. Post k goes out at start + k*duration/total on channel k mod n.
func BuildSchedule(start time.Time, channels []int64, durationDays, postsPerDay int) []*model.Post {
	total := durationDays * postsPerDay
	step := time.Duration(durationDays) * 24 * time.Hour / time.Duration(total)

	posts := make([]*model.Post, 0, total)
	for k := 0; k < total; k++ {
		posts = append(posts, &model.Post{
			ChannelID:   channels[k%len(channels)],
			ScheduledAt: start.Add(time.Duration(k) * step),
			Status:      model.PostStatusScheduled,
		})
	}
	return posts
}
