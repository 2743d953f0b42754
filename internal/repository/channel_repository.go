package repository

import (
	"database/sql"

	"github.com/promopilot/promopilot-backend/internal/model"
)

// ChannelRepositoryInterface is the channel registry the dispatcher resolves
// delivery targets through.
type ChannelRepositoryInterface interface {
	GetByID(id int64) (*model.Channel, error)
	ListAll() ([]model.Channel, error)
}

type ChannelRepository struct {
	DB *sql.DB
}

// GetByID fetches a channel by ID; nil means the channel is not registered.
func (r *ChannelRepository) GetByID(id int64) (*model.Channel, error) {
	query := `
		SELECT id, chat_id, title, can_post
		FROM channels
		WHERE id = $1
	`
	row := r.DB.QueryRow(query, id)

	var c model.Channel
	if err := row.Scan(&c.ID, &c.ChatID, &c.Title, &c.CanPost); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &c, nil
}

func (r *ChannelRepository) ListAll() ([]model.Channel, error) {
	query := `
		SELECT id, chat_id, title, can_post
		FROM channels
	`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	channels := []model.Channel{}
	for rows.Next() {
		var c model.Channel
		if err := rows.Scan(&c.ID, &c.ChatID, &c.Title, &c.CanPost); err != nil {
			return nil, err
		}
		channels = append(channels, c)
	}
	return channels, nil
}

var _ ChannelRepositoryInterface = (*ChannelRepository)(nil)
