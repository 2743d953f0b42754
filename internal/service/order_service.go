// internal/service/order_service.go
package service

import (
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	appErrors "github.com/promopilot/promopilot-backend/internal/errors"
	"github.com/promopilot/promopilot-backend/internal/model"
	"github.com/promopilot/promopilot-backend/internal/repository"
)

type OrderService struct {
	OrderRepo repository.OrderRepositoryInterface
}

// CreateOrderInput carries everything a confirmed order needs to become a
// campaign: the payment side and the posting parameters.
type CreateOrderInput struct {
	UserID       int64
	Amount       int64
	Currency     string
	TTL          time.Duration
	ContentRef   string
	Channels     []int64
	DurationDays int
	PostsPerDay  int
}

// CreateOrder issues a fresh correlation code and stores the pending order.
// Collisions against codes of still-pending orders are retried internally;
// the unique index on pending codes backstops the check-then-insert race.
func (s *OrderService) CreateOrder(in CreateOrderInput) (*model.Order, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if len(in.Channels) == 0 {
		return nil, fmt.Errorf("at least one channel is required")
	}
	if in.DurationDays < 1 || in.PostsPerDay < 1 {
		return nil, fmt.Errorf("duration and frequency must be at least 1")
	}
	if in.TTL <= 0 {
		return nil, fmt.Errorf("ttl must be positive")
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code := GenerateCode()

		taken, err := s.OrderRepo.CodePending(code)
		if err != nil {
			return nil, err
		}
		if taken {
			log.Println("⚠️ correlation code collision, retrying:", code)
			continue
		}

		o := &model.Order{
			Code:         code,
			UserID:       in.UserID,
			Amount:       in.Amount,
			Currency:     in.Currency,
			Status:       model.OrderStatusPending,
			ContentRef:   in.ContentRef,
			Channels:     pq.Int64Array(in.Channels),
			DurationDays: in.DurationDays,
			PostsPerDay:  in.PostsPerDay,
			ExpiresAt:    time.Now().Add(in.TTL),
		}

		err = s.OrderRepo.Create(o)
		if isUniqueViolation(err) {
			log.Println("⚠️ correlation code raced another order, retrying:", code)
			continue
		}
		if err != nil {
			return nil, err
		}
		return o, nil
	}

	return nil, appErrors.NewCodeCollision(maxCodeAttempts)
}

func (s *OrderService) GetOrder(id int) (*model.Order, error) {
	return s.OrderRepo.GetByID(id)
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
