// internal/model/post.go
package model

import "time"

const (
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

// Post is one scheduled delivery of campaign content to one channel.
// Rows are bulk-created at materialization time; only status, timestamps,
// delivery id and error message change afterwards.
type Post struct {
	ID           int        `db:"id" json:"id"`
	CampaignID   int        `db:"campaign_id" json:"campaign_id"`
	ChannelID    int64      `db:"channel_id" json:"channel_id"`
	ScheduledAt  time.Time  `db:"scheduled_time" json:"scheduled_time"`
	Status       string     `db:"status" json:"status"`
	PublishedAt  *time.Time `db:"published_at" json:"published_at,omitempty"`
	DeliveryID   string     `db:"delivery_id" json:"delivery_id,omitempty"`
	ErrorMessage string     `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}
