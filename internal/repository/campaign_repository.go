package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/promopilot/promopilot-backend/internal/errors"
	"github.com/promopilot/promopilot-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	CreateWithPosts(c *model.Campaign, posts []*model.Post) (bool, error)
	GetByID(id int) (*model.Campaign, error)
	GetByOrderID(orderID int) (*model.Campaign, error)
	RefreshProgress(campaignID int) (*model.Campaign, error)
	PostStats(campaignID int) (map[string]int, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, order_id, content_ref, channel_set, total_posts, posts_published, posts_per_day, status, created_at, updated_at`

// CreateWithPosts inserts the campaign and its post schedule in one
// transaction. The insert is idempotent on order_id: if a campaign already
// exists the transaction creates nothing, the existing row is loaded into c,
// and the false return tells the caller this was a duplicate attempt.
func (r *CampaignRepository) CreateWithPosts(c *model.Campaign, posts []*model.Post) (bool, error) {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignStatusActive
	}

	tx, err := r.DB.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO campaigns (order_id, content_ref, channel_set, total_posts, posts_published, posts_per_day, status, created_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6, $7)
		ON CONFLICT (order_id) DO NOTHING
		RETURNING id
	`
	err = tx.QueryRow(query,
		c.OrderID, c.ContentRef, c.Channels, c.TotalPosts,
		c.PostsPerDay, c.Status, c.CreatedAt,
	).Scan(&c.ID)
	if err == sql.ErrNoRows {
		// Lost to an earlier materialization. Hand back the winner's row.
		existing, lookupErr := r.GetByOrderID(c.OrderID)
		if lookupErr != nil {
			return false, lookupErr
		}
		if existing == nil {
			return false, appErrors.NewMaterializationConflict(c.OrderID)
		}
		*c = *existing
		return false, nil
	}
	if err != nil {
		return false, err
	}

	postQuery := `
		INSERT INTO posts (campaign_id, channel_id, scheduled_time, status, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`
	for _, p := range posts {
		p.CampaignID = c.ID
		if p.Status == "" {
			p.Status = model.PostStatusScheduled
		}
		if err := tx.QueryRow(postQuery, p.CampaignID, p.ChannelID, p.ScheduledAt, p.Status).Scan(&p.ID); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, err
}

func (r *CampaignRepository) GetByOrderID(orderID int) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE order_id=$1`
	c, err := scanCampaign(r.DB.QueryRow(query, orderID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// RefreshProgress recomputes posts_published from the post rows and flips the
// campaign to completed when every post is published. Never increments in
// place, so concurrent calls cannot drift.
func (r *CampaignRepository) RefreshProgress(campaignID int) (*model.Campaign, error) {
	query := `
		UPDATE campaigns c
		SET posts_published = sub.cnt,
			status = CASE WHEN sub.cnt >= c.total_posts THEN 'completed' ELSE 'active' END,
			updated_at = NOW()
		FROM (
			SELECT COUNT(*) AS cnt FROM posts
			WHERE campaign_id=$1 AND status='published'
		) sub
		WHERE c.id = $1
		RETURNING ` + campaignPrefixedColumns + `
	`
	c, err := scanCampaign(r.DB.QueryRow(query, campaignID))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewCampaignNotFound(campaignID)
	}
	return c, err
}

const campaignPrefixedColumns = `c.id, c.order_id, c.content_ref, c.channel_set, c.total_posts, c.posts_published, c.posts_per_day, c.status, c.created_at, c.updated_at`

func (r *CampaignRepository) PostStats(campaignID int) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM posts WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{"scheduled": 0, "published": 0, "failed": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(
		&c.ID, &c.OrderID, &c.ContentRef, &c.Channels, &c.TotalPosts,
		&c.PostsPublished, &c.PostsPerDay, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
