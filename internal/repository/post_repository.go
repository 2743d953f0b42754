package repository

import (
	"database/sql"
	"time"

	"github.com/promopilot/promopilot-backend/internal/model"
)

type PostRepositoryInterface interface {
	GetByID(id int) (*model.Post, error)
	ListDue(now time.Time, limit int) ([]*model.Post, error)
	MarkPublished(id int, deliveryID string, at time.Time) (bool, error)
	MarkFailed(id int, errMsg string) (bool, error)
	Requeue(id int, at time.Time) (bool, error)
}

type PostRepository struct {
	DB *sql.DB
}

const postColumns = `id, campaign_id, channel_id, scheduled_time, status, published_at, delivery_id, error_message, created_at`

func (r *PostRepository) GetByID(id int) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id=$1`
	p, err := scanPost(r.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// ListDue returns scheduled posts whose time has passed, oldest first, capped
// so one scheduler tick cannot do unbounded work.
func (r *PostRepository) ListDue(now time.Time, limit int) ([]*model.Post, error) {
	query := `
		SELECT ` + postColumns + ` FROM posts
		WHERE status=$1 AND scheduled_time <= $2
		ORDER BY scheduled_time ASC
		LIMIT $3
	`
	rows, err := r.DB.Query(query, model.PostStatusScheduled, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*model.Post{}
	for rows.Next() {
		p := &model.Post{}
		if err := rows.Scan(
			&p.ID, &p.CampaignID, &p.ChannelID, &p.ScheduledAt, &p.Status,
			&p.PublishedAt, &p.DeliveryID, &p.ErrorMessage, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// MarkPublished finalizes a post with its delivery receipt. CAS from
// scheduled: a post already finalized by another tick stays untouched.
func (r *PostRepository) MarkPublished(id int, deliveryID string, at time.Time) (bool, error) {
	query := `
		UPDATE posts SET status=$1, delivery_id=$2, published_at=$3, error_message=''
		WHERE id=$4 AND status=$5
	`
	res, err := r.DB.Exec(query, model.PostStatusPublished, deliveryID, at, id, model.PostStatusScheduled)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *PostRepository) MarkFailed(id int, errMsg string) (bool, error) {
	query := `
		UPDATE posts SET status=$1, error_message=$2
		WHERE id=$3 AND status=$4
	`
	res, err := r.DB.Exec(query, model.PostStatusFailed, errMsg, id, model.PostStatusScheduled)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// Requeue is the explicit failed→scheduled transition with a fresh time.
// Failed posts are never rescheduled automatically; this is the only way back.
func (r *PostRepository) Requeue(id int, at time.Time) (bool, error) {
	query := `
		UPDATE posts SET status=$1, scheduled_time=$2, error_message=''
		WHERE id=$3 AND status=$4
	`
	res, err := r.DB.Exec(query, model.PostStatusScheduled, at, id, model.PostStatusFailed)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func scanPost(row rowScanner) (*model.Post, error) {
	var p model.Post
	err := row.Scan(
		&p.ID, &p.CampaignID, &p.ChannelID, &p.ScheduledAt, &p.Status,
		&p.PublishedAt, &p.DeliveryID, &p.ErrorMessage, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

var _ PostRepositoryInterface = (*PostRepository)(nil)
