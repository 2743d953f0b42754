// internal/model/channel.go
package model

type Channel struct {
	ID      int64  `db:"id" json:"id"`
	ChatID  string `db:"chat_id" json:"chat_id"`
	Title   string `db:"title" json:"title"`
	CanPost bool   `db:"can_post" json:"can_post"`
}
