package event

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Notification hook topics published by the pipeline.
const (
	TopicPaymentConfirmed  = "payment.confirmed"
	TopicPaymentExpired    = "payment.expired"
	TopicPostFailed        = "post.failed"
	TopicCampaignCompleted = "campaign.completed"
)

type Event struct {
	Topic      string    `json:"topic"`
	OrderID    int       `json:"order_id,omitempty"`
	CampaignID int       `json:"campaign_id,omitempty"`
	PostID     int       `json:"post_id,omitempty"`
	ChannelID  int64     `json:"channel_id,omitempty"`
	UserID     int64     `json:"user_id,omitempty"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}

// Bus is the observer interface the pipeline components publish hooks to,
// instead of sprinkling notification calls through business logic.
type Bus interface {
	Publish(evt Event) error
}

// InMemoryBus dispatches events to in-process subscribers. Used in tests and
// single-process runs; production wiring publishes to RabbitMQ instead.
type InMemoryBus struct {
	mu       sync.Mutex
	handlers map[string][]func(Event) error
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]func(Event) error),
	}
}

// Publish sends the event to all subscribers of its topic. Handler errors are
// logged, never retried: hook delivery must not re-run pipeline side effects.
func (b *InMemoryBus) Publish(evt Event) error {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	b.mu.Lock()
	handlers := b.handlers[evt.Topic]
	b.mu.Unlock()

	if len(handlers) == 0 {
		return nil
	}

	for _, handler := range handlers {
		if err := handler(evt); err != nil {
			log.Printf("⚠️ event handler failed for %s: %v\n", evt.Topic, err)
		}
	}
	return nil
}

// Subscribe adds a handler for a topic
func (b *InMemoryBus) Subscribe(topic string, handler func(Event) error) error {
	if handler == nil {
		return fmt.Errorf("nil handler for topic %s", topic)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[topic] = append(b.handlers[topic], handler)
	return nil
}

var _ Bus = (*InMemoryBus)(nil)
