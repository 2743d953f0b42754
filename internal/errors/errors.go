package appErrors

import "fmt"

// ErrCodeCollision means code generation kept hitting codes that are still
// pending. Retried internally; reaching the caller signals a bug, not bad input.
type ErrCodeCollision struct {
	Attempts int
}

func (e *ErrCodeCollision) Error() string {
	return fmt.Sprintf("correlation code collision after %d attempts", e.Attempts)
}

func NewCodeCollision(attempts int) error {
	return &ErrCodeCollision{Attempts: attempts}
}

// ErrOrderNotFound is a sentinel error
type ErrOrderNotFound struct {
	OrderID int
}

func (e *ErrOrderNotFound) Error() string {
	return fmt.Sprintf("order with ID %d not found", e.OrderID)
}

func NewOrderNotFound(id int) error {
	return &ErrOrderNotFound{OrderID: id}
}

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrPaymentTimeout marks an order that expired with no matching transaction.
type ErrPaymentTimeout struct {
	OrderID int
}

func (e *ErrPaymentTimeout) Error() string {
	return fmt.Sprintf("payment for order %d timed out", e.OrderID)
}

func NewPaymentTimeout(orderID int) error {
	return &ErrPaymentTimeout{OrderID: orderID}
}

// ErrLedgerAPI wraps a transient failure of the ledger index endpoint.
// Watchers log it and retry on the normal poll interval.
type ErrLedgerAPI struct {
	Err error
}

func (e *ErrLedgerAPI) Error() string {
	return fmt.Sprintf("ledger index: %v", e.Err)
}

func (e *ErrLedgerAPI) Unwrap() error { return e.Err }

func NewLedgerAPI(err error) error {
	return &ErrLedgerAPI{Err: err}
}

// ErrMaterializationConflict means a campaign already exists for the order.
// Callers treat it as a no-op.
type ErrMaterializationConflict struct {
	OrderID int
}

func (e *ErrMaterializationConflict) Error() string {
	return fmt.Sprintf("campaign for order %d already materialized", e.OrderID)
}

func NewMaterializationConflict(orderID int) error {
	return &ErrMaterializationConflict{OrderID: orderID}
}

// ErrChannelUnreachable is a terminal per-post failure: the channel is gone
// or the bot lost posting rights. Needs admin action, never auto-retried.
type ErrChannelUnreachable struct {
	ChannelID int64
	Reason    string
}

func (e *ErrChannelUnreachable) Error() string {
	return fmt.Sprintf("channel %d unreachable: %s", e.ChannelID, e.Reason)
}

func NewChannelUnreachable(channelID int64, reason string) error {
	return &ErrChannelUnreachable{ChannelID: channelID, Reason: reason}
}

// ErrTransientDelivery is a per-post failure (rate limit, timeout) that is
// eligible for an explicit manual re-queue.
type ErrTransientDelivery struct {
	Reason string
}

func (e *ErrTransientDelivery) Error() string {
	return fmt.Sprintf("transient delivery error: %s", e.Reason)
}

func NewTransientDelivery(reason string) error {
	return &ErrTransientDelivery{Reason: reason}
}

// ErrAggregationInconsistency should be unreachable: the aggregator always
// recomputes from post rows. Observed means log and force a recompute.
type ErrAggregationInconsistency struct {
	CampaignID     int
	PostsPublished int
	TotalPosts     int
}

func (e *ErrAggregationInconsistency) Error() string {
	return fmt.Sprintf("campaign %d has posts_published=%d > total_posts=%d",
		e.CampaignID, e.PostsPublished, e.TotalPosts)
}

func NewAggregationInconsistency(campaignID, published, total int) error {
	return &ErrAggregationInconsistency{CampaignID: campaignID, PostsPublished: published, TotalPosts: total}
}
