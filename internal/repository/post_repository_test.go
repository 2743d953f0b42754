package repository_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/promopilot/promopilot-backend/internal/model"
	"github.com/promopilot/promopilot-backend/internal/repository"
)

func TestListDueFiltersAndCaps(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &repository.PostRepository{DB: db}

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "campaign_id", "channel_id", "scheduled_time", "status",
		"published_at", "delivery_id", "error_message", "created_at",
	}).
		AddRow(1, 11, 10, now.Add(-2*time.Minute), "scheduled", nil, "", "", now).
		AddRow(2, 11, 20, now.Add(-time.Minute), "scheduled", nil, "", "", now)

	mock.ExpectQuery(`SELECT (.+) FROM posts\s+WHERE status=\$1 AND scheduled_time <= \$2\s+ORDER BY scheduled_time ASC\s+LIMIT \$3`).
		WithArgs(model.PostStatusScheduled, sqlmock.AnyArg(), 50).
		WillReturnRows(rows)

	due, err := repo.ListDue(now, 50)
	require.NoError(t, err)
	require.Len(t, due, 2)
	require.Equal(t, 1, due[0].ID)
	require.Equal(t, int64(10), due[0].ChannelID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPublishedCAS(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &repository.PostRepository{DB: db}

	mock.ExpectExec(`UPDATE posts SET status=\$1, delivery_id=\$2, published_at=\$3, error_message=''`).
		WithArgs(model.PostStatusPublished, "msg-1", sqlmock.AnyArg(), 3, model.PostStatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.MarkPublished(3, "msg-1", time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	// A post already finalized is left alone.
	mock.ExpectExec(`UPDATE posts SET status=\$1, delivery_id=\$2, published_at=\$3, error_message=''`).
		WithArgs(model.PostStatusPublished, "msg-1", sqlmock.AnyArg(), 3, model.PostStatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err = repo.MarkPublished(3, "msg-1", time.Now())
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequeueOnlyFromFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &repository.PostRepository{DB: db}

	mock.ExpectExec(`UPDATE posts SET status=\$1, scheduled_time=\$2, error_message=''`).
		WithArgs(model.PostStatusScheduled, sqlmock.AnyArg(), 3, model.PostStatusFailed).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Requeue(3, time.Now())
	require.NoError(t, err)
	require.False(t, ok, "re-queue of a non-failed post must not apply")

	require.NoError(t, mock.ExpectationsWereMet())
}
