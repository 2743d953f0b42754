// internal/service/scheduler.go
package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/promopilot/promopilot-backend/internal/model"
	"github.com/promopilot/promopilot-backend/internal/repository"
)

// PostDispatcher performs one per-channel send. It never returns an error:
// every outcome must already be a stored status transition.
type PostDispatcher interface {
	Dispatch(ctx context.Context, post *model.Post)
}

// ProgressRefresher recomputes campaign counters after a dispatch attempt.
type ProgressRefresher interface {
	Refresh(campaignID int) (*model.Campaign, error)
}

// PublishScheduler is the long-lived loop that finds due posts and fans them
// out. One post's failure never aborts the rest of a batch, and a tick still
// running when the next is due makes the next one a skip, never an overlap.
type PublishScheduler struct {
	Posts      repository.PostRepositoryInterface
	Dispatcher PostDispatcher
	Progress   ProgressRefresher
	Interval   time.Duration
	BatchSize  int

	mu     sync.Mutex
	cancel context.CancelFunc
	tickMu sync.Mutex
}

// Start launches the loop. Calling Start on a running scheduler is a no-op.
func (s *PublishScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go s.run(runCtx)
	log.Printf("🚀 publish scheduler started (interval %s, batch %d)\n", s.Interval, s.BatchSize)
}

// Stop halts the loop. Safe to call repeatedly or on a stopped scheduler,
// after which Start works again.
func (s *PublishScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	log.Println("🛑 publish scheduler stopped")
}

func (s *PublishScheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick processes one batch of due posts. Returns how many were dispatched.
// Single-flight: if a previous tick is still running this one is skipped so
// the same due post can never be selected twice concurrently.
func (s *PublishScheduler) Tick(ctx context.Context) int {
	if !s.tickMu.TryLock() {
		log.Println("⚠️ previous tick still running, skipping")
		return 0
	}
	defer s.tickMu.Unlock()

	due, err := s.Posts.ListDue(time.Now(), s.BatchSize)
	if err != nil {
		log.Println("⚠️ failed to list due posts:", err)
		return 0
	}
	if len(due) == 0 {
		return 0
	}

	log.Printf("📬 dispatching %d due post(s)\n", len(due))

	for _, post := range due {
		if ctx.Err() != nil {
			return 0
		}

		// Dispatch stores the outcome itself; failed posts stay failed until
		// an explicit re-queue, never rescheduled here.
		s.Dispatcher.Dispatch(ctx, post)

		if _, err := s.Progress.Refresh(post.CampaignID); err != nil {
			log.Println("⚠️ failed to refresh campaign progress:", err)
		}
	}

	return len(due)
}
