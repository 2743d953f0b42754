// internal/model/campaign.go
package model

import (
	"time"

	"github.com/lib/pq"
)

const (
	CampaignStatusActive    = "active"
	CampaignStatusCompleted = "completed"
)

type Campaign struct {
	ID             int           `db:"id" json:"id"`
	OrderID        int           `db:"order_id" json:"order_id"`
	ContentRef     string        `db:"content_ref" json:"content_ref"`
	Channels       pq.Int64Array `db:"channel_set" json:"channel_set"`
	TotalPosts     int           `db:"total_posts" json:"total_posts"`
	PostsPublished int           `db:"posts_published" json:"posts_published"`
	PostsPerDay    int           `db:"posts_per_day" json:"posts_per_day"`
	Status         string        `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time    `db:"updated_at" json:"updated_at,omitempty"`
}
