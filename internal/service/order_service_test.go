package service_test

import (
	"errors"
	"testing"
	"time"

	appErrors "github.com/promopilot/promopilot-backend/internal/errors"
	"github.com/promopilot/promopilot-backend/internal/model"
	"github.com/promopilot/promopilot-backend/internal/service"
)

// MockOrderRepo simulates the order store; pendingCollisions controls how
// many generated codes look taken before one is free.
type MockOrderRepo struct {
	pendingCollisions int
	created           []*model.Order
	nextID            int
}

func (m *MockOrderRepo) Create(o *model.Order) error {
	m.nextID++
	o.ID = m.nextID
	m.created = append(m.created, o)
	return nil
}

func (m *MockOrderRepo) GetByID(id int) (*model.Order, error) {
	for _, o := range m.created {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, appErrors.NewOrderNotFound(id)
}

func (m *MockOrderRepo) GetByCode(code string) (*model.Order, error) { return nil, nil }

func (m *MockOrderRepo) CodePending(code string) (bool, error) {
	if m.pendingCollisions > 0 {
		m.pendingCollisions--
		return true, nil
	}
	return false, nil
}

func (m *MockOrderRepo) MarkConfirmed(id int) (bool, error) { return false, nil }
func (m *MockOrderRepo) MarkExpired(id int) (bool, error)   { return false, nil }
func (m *MockOrderRepo) ListPending() ([]*model.Order, error) {
	return m.created, nil
}

func validInput() service.CreateOrderInput {
	return service.CreateOrderInput{
		UserID:       42,
		Amount:       5_000_000_000,
		Currency:     "TON",
		TTL:          30 * time.Minute,
		ContentRef:   "Check out {channel_title}!",
		Channels:     []int64{1, 2},
		DurationDays: 7,
		PostsPerDay:  2,
	}
}

func TestCreateOrder(t *testing.T) {
	repo := &MockOrderRepo{}
	svc := &service.OrderService{OrderRepo: repo}

	order, err := svc.CreateOrder(validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.Status != model.OrderStatusPending {
		t.Errorf("expected pending, got %s", order.Status)
	}
	if len(order.Code) != 6 {
		t.Errorf("expected 6-char code, got %q", order.Code)
	}
	if !order.ExpiresAt.After(time.Now().Add(29 * time.Minute)) {
		t.Errorf("expires_at not set from ttl: %v", order.ExpiresAt)
	}
}

func TestCreateOrderRetriesCollisions(t *testing.T) {
	repo := &MockOrderRepo{pendingCollisions: 3}
	svc := &service.OrderService{OrderRepo: repo}

	order, err := svc.CreateOrder(validInput())
	if err != nil {
		t.Fatalf("expected retries to absorb 3 collisions, got %v", err)
	}
	if order.ID == 0 {
		t.Error("order was not persisted")
	}
}

func TestCreateOrderCollisionExhaustion(t *testing.T) {
	// More collisions than the retry budget: this should never happen in
	// practice and must surface as the fatal collision error.
	repo := &MockOrderRepo{pendingCollisions: 100}
	svc := &service.OrderService{OrderRepo: repo}

	_, err := svc.CreateOrder(validInput())

	var collision *appErrors.ErrCodeCollision
	if !errors.As(err, &collision) {
		t.Fatalf("expected ErrCodeCollision, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Error("no order should be created on exhaustion")
	}
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	svc := &service.OrderService{OrderRepo: &MockOrderRepo{}}

	bad := validInput()
	bad.Channels = nil
	if _, err := svc.CreateOrder(bad); err == nil {
		t.Error("expected error for empty channel set")
	}

	bad = validInput()
	bad.Amount = 0
	if _, err := svc.CreateOrder(bad); err == nil {
		t.Error("expected error for zero amount")
	}

	bad = validInput()
	bad.PostsPerDay = 0
	if _, err := svc.CreateOrder(bad); err == nil {
		t.Error("expected error for zero frequency")
	}
}
