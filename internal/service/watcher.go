// internal/service/watcher.go
package service

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/promopilot/promopilot-backend/internal/event"
	"github.com/promopilot/promopilot-backend/internal/model"
	"github.com/promopilot/promopilot-backend/internal/repository"
)

// LedgerIndex is the external transaction feed the watcher polls.
type LedgerIndex interface {
	Incoming(ctx context.Context, address string) ([]model.Transaction, error)
}

// Materializer turns a confirmed order into a campaign. Satisfied by
// CampaignMaterializer.
type Materializer interface {
	Materialize(order *model.Order) (*model.Campaign, error)
}

// DefaultTolerancePct accepts payments down to 95% of the requested amount,
// covering transfer fees shaved off by wallets.
const DefaultTolerancePct = 5

// PaymentWatcher runs one bounded-lifetime polling task per pending order.
// The order rows in the store are the source of truth; watcher goroutines
// are ephemeral and respawned from pending rows after a restart.
type PaymentWatcher struct {
	Orders       repository.OrderRepositoryInterface
	Ledger       LedgerIndex
	Materializer Materializer
	Bus          event.Bus
	Wallet       string
	Interval     time.Duration
	TolerancePct int64

	wg sync.WaitGroup
}

// Watch starts the polling task for one pending order. The task ends when
// the order is confirmed, expires, or the parent context is cancelled.
func (w *PaymentWatcher) Watch(ctx context.Context, order *model.Order) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx, order)
	}()
}

// Respawn starts watchers for every order still pending in the store.
// Called on startup so recoverability never depends on process memory.
func (w *PaymentWatcher) Respawn(ctx context.Context) (int, error) {
	pending, err := w.Orders.ListPending()
	if err != nil {
		return 0, err
	}
	for _, o := range pending {
		w.Watch(ctx, o)
	}
	return len(pending), nil
}

// Wait blocks until every watcher goroutine has drained. Used on shutdown;
// each persisted write is a single atomic row update, so cancellation at any
// point leaves orders consistent.
func (w *PaymentWatcher) Wait() {
	w.wg.Wait()
}

func (w *PaymentWatcher) run(ctx context.Context, order *model.Order) {
	deadlineCtx, cancel := context.WithDeadline(ctx, order.ExpiresAt)
	defer cancel()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	log.Printf("👀 watching order %d (code %s) until %s\n", order.ID, order.Code, order.ExpiresAt.Format(time.RFC3339))

	for {
		select {
		case <-deadlineCtx.Done():
			if ctx.Err() != nil {
				// Process shutdown: leave the order pending, a respawned
				// watcher picks it up.
				return
			}
			w.expire(order)
			return
		case <-ticker.C:
			if done := w.poll(deadlineCtx, order); done {
				return
			}
		}
	}
}

// poll runs one tick. Returns true when the watcher should terminate.
func (w *PaymentWatcher) poll(ctx context.Context, order *model.Order) bool {
	// Re-check persisted status first: a manual override or a concurrent
	// confirmation means this watcher exits without touching the ledger API.
	current, err := w.Orders.GetByID(order.ID)
	if err != nil {
		log.Println("⚠️ watcher failed to reload order:", err)
		return false
	}
	if current.Status != model.OrderStatusPending {
		log.Printf("👋 order %d is %s, watcher exiting\n", order.ID, current.Status)
		return true
	}

	txs, err := w.Ledger.Incoming(ctx, w.Wallet)
	if err != nil {
		// Transient: retried on the next tick, never fatal to the watcher.
		log.Println("⚠️ ledger poll failed:", err)
		return false
	}

	for _, tx := range txs {
		if PaymentMatches(tx, current.Code, current.Amount, w.tolerance()) {
			return w.confirm(current)
		}
	}
	return false
}

// PaymentMatches reports whether an incoming transaction pays for the order:
// the memo must contain the correlation code and the amount must reach the
// requested amount minus tolerance. Integer math keeps the threshold exact.
func PaymentMatches(tx model.Transaction, code string, amount, tolerancePct int64) bool {
	if tx.Direction != model.TransactionDirectionIn {
		return false
	}
	if !strings.Contains(tx.Memo, code) {
		return false
	}
	minAmount := amount * (100 - tolerancePct) / 100
	return tx.Amount >= minAmount
}

// confirm attempts the pending→confirmed CAS. Losing it means someone else
// confirmed first; that is a no-op, not an error. Returns true when the
// watcher should terminate.
func (w *PaymentWatcher) confirm(order *model.Order) bool {
	won, err := w.Orders.MarkConfirmed(order.ID)
	if err != nil {
		log.Println("⚠️ failed to confirm order:", err)
		return false
	}
	if !won {
		return true
	}

	log.Printf("✅ payment confirmed for order %d (code %s)\n", order.ID, order.Code)
	w.publish(event.Event{Topic: event.TopicPaymentConfirmed, OrderID: order.ID, UserID: order.UserID})

	if w.Materializer != nil {
		if _, err := w.Materializer.Materialize(order); err != nil {
			log.Println("⚠️ materialization failed:", err)
		}
	}
	return true
}

func (w *PaymentWatcher) expire(order *model.Order) {
	won, err := w.Orders.MarkExpired(order.ID)
	if err != nil {
		log.Println("⚠️ failed to expire order:", err)
		return
	}
	if !won {
		return
	}

	log.Printf("⏰ order %d (code %s) expired without payment\n", order.ID, order.Code)
	w.publish(event.Event{Topic: event.TopicPaymentExpired, OrderID: order.ID, UserID: order.UserID})
}

func (w *PaymentWatcher) publish(evt event.Event) {
	if w.Bus == nil {
		return
	}
	if err := w.Bus.Publish(evt); err != nil {
		log.Println("⚠️ failed to publish event:", err)
	}
}

func (w *PaymentWatcher) tolerance() int64 {
	if w.TolerancePct <= 0 {
		return DefaultTolerancePct
	}
	return w.TolerancePct
}
