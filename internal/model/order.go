// internal/model/order.go
package model

import (
	"time"

	"github.com/lib/pq"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusExpired   = "expired"
)

// Order is a payment intent awaiting confirmation on the ledger, linked by
// the short correlation code the payer puts in the transfer memo. Amounts
// are integer nano-units to keep tolerance math exact.
type Order struct {
	ID           int           `db:"id" json:"id"`
	Code         string        `db:"code" json:"code"`
	UserID       int64         `db:"user_id" json:"user_id"`
	Amount       int64         `db:"amount" json:"amount"`
	Currency     string        `db:"currency" json:"currency"`
	Status       string        `db:"status" json:"status"`
	ContentRef   string        `db:"content_ref" json:"content_ref"`
	Channels     pq.Int64Array `db:"channel_set" json:"channel_set"`
	DurationDays int           `db:"duration_days" json:"duration_days"`
	PostsPerDay  int           `db:"posts_per_day" json:"posts_per_day"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	ExpiresAt    time.Time     `db:"expires_at" json:"expires_at"`
	ConfirmedAt  *time.Time    `db:"confirmed_at" json:"confirmed_at,omitempty"`
}
