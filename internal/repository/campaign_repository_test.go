package repository_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/promopilot/promopilot-backend/internal/model"
	"github.com/promopilot/promopilot-backend/internal/repository"
)

func campaignRows(c *model.Campaign) *sqlmock.Rows {
	// channel_set goes through pq's array text format, as the driver returns it.
	channelSet, _ := c.Channels.Value()
	return sqlmock.NewRows([]string{
		"id", "order_id", "content_ref", "channel_set", "total_posts",
		"posts_published", "posts_per_day", "status", "created_at", "updated_at",
	}).AddRow(c.ID, c.OrderID, c.ContentRef, channelSet, c.TotalPosts,
		c.PostsPublished, c.PostsPerDay, c.Status, c.CreatedAt, c.UpdatedAt)
}

func TestCreateWithPostsCommitsCampaignAndSchedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &repository.CampaignRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO campaigns`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(`INSERT INTO posts`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))
	mock.ExpectQuery(`INSERT INTO posts`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(102))
	mock.ExpectCommit()

	c := &model.Campaign{
		OrderID:     5,
		ContentRef:  "hello",
		Channels:    pq.Int64Array{1, 2},
		TotalPosts:  2,
		PostsPerDay: 2,
	}
	posts := []*model.Post{
		{ChannelID: 1, ScheduledAt: time.Now()},
		{ChannelID: 2, ScheduledAt: time.Now().Add(12 * time.Hour)},
	}

	created, err := repo.CreateWithPosts(c, posts)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, 11, c.ID)
	require.Equal(t, 11, posts[0].CampaignID)
	require.Equal(t, 101, posts[0].ID)
	require.Equal(t, 102, posts[1].ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithPostsIsIdempotentOnOrderID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &repository.CampaignRepository{DB: db}

	existing := &model.Campaign{
		ID: 11, OrderID: 5, ContentRef: "hello", Channels: pq.Int64Array{1, 2},
		TotalPosts: 2, PostsPerDay: 2, Status: model.CampaignStatusActive,
		CreatedAt: time.Now(),
	}

	mock.ExpectBegin()
	// ON CONFLICT DO NOTHING returns no row for the duplicate order.
	mock.ExpectQuery(`INSERT INTO campaigns`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT (.+) FROM campaigns WHERE order_id=\$1`).
		WithArgs(5).
		WillReturnRows(campaignRows(existing))
	mock.ExpectRollback()

	c := &model.Campaign{OrderID: 5, Channels: pq.Int64Array{1, 2}, TotalPosts: 2}
	posts := []*model.Post{{ChannelID: 1, ScheduledAt: time.Now()}}

	created, err := repo.CreateWithPosts(c, posts)
	require.NoError(t, err)
	require.False(t, created, "duplicate materialization must not create a second campaign")
	require.Equal(t, 11, c.ID, "existing campaign is handed back")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshProgressRecomputesFromPosts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &repository.CampaignRepository{DB: db}

	refreshed := &model.Campaign{
		ID: 11, OrderID: 5, Channels: pq.Int64Array{1, 2},
		TotalPosts: 14, PostsPublished: 14, PostsPerDay: 2,
		Status: model.CampaignStatusCompleted, CreatedAt: time.Now(),
	}

	mock.ExpectQuery(`UPDATE campaigns c`).
		WithArgs(11).
		WillReturnRows(campaignRows(refreshed))

	c, err := repo.RefreshProgress(11)
	require.NoError(t, err)
	require.Equal(t, 14, c.PostsPublished)
	require.Equal(t, model.CampaignStatusCompleted, c.Status)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &repository.CampaignRepository{DB: db}

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM posts WHERE campaign_id=\$1 GROUP BY status`).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("published", 6).
			AddRow("failed", 1))

	stats, err := repo.PostStats(11)
	require.NoError(t, err)
	require.Equal(t, 6, stats["published"])
	require.Equal(t, 1, stats["failed"])
	require.Equal(t, 0, stats["scheduled"], "missing statuses default to zero")

	require.NoError(t, mock.ExpectationsWereMet())
}
