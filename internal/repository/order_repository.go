package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/promopilot/promopilot-backend/internal/errors"
	"github.com/promopilot/promopilot-backend/internal/model"
)

type OrderRepositoryInterface interface {
	Create(o *model.Order) error
	GetByID(id int) (*model.Order, error)
	GetByCode(code string) (*model.Order, error)
	CodePending(code string) (bool, error)
	MarkConfirmed(id int) (bool, error)
	MarkExpired(id int) (bool, error)
	ListPending() ([]*model.Order, error)
}

type OrderRepository struct {
	DB *sql.DB
}

const orderColumns = `id, code, user_id, amount, currency, status, content_ref, channel_set, duration_days, posts_per_day, created_at, expires_at, confirmed_at`

func (r *OrderRepository) Create(o *model.Order) error {
	o.CreatedAt = time.Now()
	if o.Status == "" {
		o.Status = model.OrderStatusPending
	}
	query := `
		INSERT INTO orders (code, user_id, amount, currency, status, content_ref, channel_set, duration_days, posts_per_day, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.DB.QueryRow(query,
		o.Code, o.UserID, o.Amount, o.Currency, o.Status,
		o.ContentRef, o.Channels, o.DurationDays, o.PostsPerDay,
		o.CreatedAt, o.ExpiresAt,
	).Scan(&o.ID)
}

func (r *OrderRepository) GetByID(id int) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	o, err := scanOrder(r.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewOrderNotFound(id)
	}
	return o, err
}

func (r *OrderRepository) GetByCode(code string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE code=$1 ORDER BY id DESC LIMIT 1`
	o, err := scanOrder(r.DB.QueryRow(query, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return o, err
}

// CodePending reports whether the code is held by a currently pending order.
// Codes of confirmed or expired orders are free to be reissued.
func (r *OrderRepository) CodePending(code string) (bool, error) {
	var count int
	err := r.DB.QueryRow(
		`SELECT COUNT(*) FROM orders WHERE code=$1 AND status=$2`,
		code, model.OrderStatusPending,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkConfirmed is a compare-and-swap from pending. A false return means the
// order was no longer pending, so the caller lost the race and must not
// treat the confirmation as its own.
func (r *OrderRepository) MarkConfirmed(id int) (bool, error) {
	query := `UPDATE orders SET status=$1, confirmed_at=NOW() WHERE id=$2 AND status=$3`
	res, err := r.DB.Exec(query, model.OrderStatusConfirmed, id, model.OrderStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *OrderRepository) MarkExpired(id int) (bool, error) {
	query := `UPDATE orders SET status=$1 WHERE id=$2 AND status=$3`
	res, err := r.DB.Exec(query, model.OrderStatusExpired, id, model.OrderStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ListPending returns the orders whose watchers must be respawned on restart.
func (r *OrderRepository) ListPending() ([]*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status=$1 ORDER BY id`
	rows, err := r.DB.Query(query, model.OrderStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*model.Order{}
	for rows.Next() {
		o := &model.Order{}
		if err := rows.Scan(
			&o.ID, &o.Code, &o.UserID, &o.Amount, &o.Currency, &o.Status,
			&o.ContentRef, &o.Channels, &o.DurationDays, &o.PostsPerDay,
			&o.CreatedAt, &o.ExpiresAt, &o.ConfirmedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.Code, &o.UserID, &o.Amount, &o.Currency, &o.Status,
		&o.ContentRef, &o.Channels, &o.DurationDays, &o.PostsPerDay,
		&o.CreatedAt, &o.ExpiresAt, &o.ConfirmedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

var _ OrderRepositoryInterface = (*OrderRepository)(nil)
