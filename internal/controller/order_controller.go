// internal/controller/order_controller.go
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/promopilot/promopilot-backend/internal/errors"
	"github.com/promopilot/promopilot-backend/internal/service"
)

type OrderController struct {
	OrderService *service.OrderService
	Watcher      *service.PaymentWatcher

	// WatchCtx bounds the lifetime of watchers started by HTTP requests.
	WatchCtx context.Context
}

// CreateOrder issues a correlation code and starts the payment watcher.
func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID       int64   `json:"user_id"`
		Amount       int64   `json:"amount"`
		Currency     string  `json:"currency"`
		TTLMinutes   int     `json:"ttl_minutes"`
		ContentRef   string  `json:"content_ref"`
		ChannelIDs   []int64 `json:"channel_ids"`
		DurationDays int     `json:"duration_days"`
		PostsPerDay  int     `json:"posts_per_day"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if body.TTLMinutes < 1 {
		body.TTLMinutes = 30
	}

	order, err := c.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:       body.UserID,
		Amount:       body.Amount,
		Currency:     body.Currency,
		TTL:          time.Duration(body.TTLMinutes) * time.Minute,
		ContentRef:   body.ContentRef,
		Channels:     body.ChannelIDs,
		DurationDays: body.DurationDays,
		PostsPerDay:  body.PostsPerDay,
	})
	if err != nil {
		var collision *appErrors.ErrCodeCollision
		if errors.As(err, &collision) {
			log.Println("❌ code generation exhausted retries:", err)
			http.Error(w, "could not allocate a correlation code", http.StatusInternalServerError)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := c.WatchCtx
	if ctx == nil {
		ctx = context.Background()
	}
	c.Watcher.Watch(ctx, order)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"order_id":   order.ID,
		"code":       order.Code,
		"expires_at": order.ExpiresAt,
	})
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	order, err := c.OrderService.GetOrder(id)
	if err != nil {
		var notFound *appErrors.ErrOrderNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}
