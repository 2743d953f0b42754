package repository_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/promopilot/promopilot-backend/internal/model"
	"github.com/promopilot/promopilot-backend/internal/repository"
)

func TestMarkConfirmedCAS(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &repository.OrderRepository{DB: db}

	// Pending order: the CAS wins.
	mock.ExpectExec(`UPDATE orders SET status=\$1, confirmed_at=NOW\(\) WHERE id=\$2 AND status=\$3`).
		WithArgs(model.OrderStatusConfirmed, 7, model.OrderStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := repo.MarkConfirmed(7)
	require.NoError(t, err)
	require.True(t, won)

	// Already confirmed: zero rows affected, the caller lost the race.
	mock.ExpectExec(`UPDATE orders SET status=\$1, confirmed_at=NOW\(\) WHERE id=\$2 AND status=\$3`).
		WithArgs(model.OrderStatusConfirmed, 7, model.OrderStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err = repo.MarkConfirmed(7)
	require.NoError(t, err)
	require.False(t, won)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkExpiredCAS(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &repository.OrderRepository{DB: db}

	mock.ExpectExec(`UPDATE orders SET status=\$1 WHERE id=\$2 AND status=\$3`).
		WithArgs(model.OrderStatusExpired, 7, model.OrderStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := repo.MarkExpired(7)
	require.NoError(t, err)
	require.False(t, won, "expiring a non-pending order must be a no-op")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCodePending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &repository.OrderRepository{DB: db}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE code=\$1 AND status=\$2`).
		WithArgs("AB1234", model.OrderStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	taken, err := repo.CodePending("AB1234")
	require.NoError(t, err)
	require.True(t, taken)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE code=\$1 AND status=\$2`).
		WithArgs("CD5678", model.OrderStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	taken, err = repo.CodePending("CD5678")
	require.NoError(t, err)
	require.False(t, taken)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCreateScansID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &repository.OrderRepository{DB: db}

	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	o := &model.Order{
		Code:         "AB1234",
		UserID:       1,
		Amount:       1_000_000,
		Currency:     "TON",
		Channels:     []int64{1, 2},
		DurationDays: 7,
		PostsPerDay:  2,
		ExpiresAt:    time.Now().Add(30 * time.Minute),
	}
	require.NoError(t, repo.Create(o))
	require.Equal(t, 42, o.ID)
	require.Equal(t, model.OrderStatusPending, o.Status)

	require.NoError(t, mock.ExpectationsWereMet())
}
