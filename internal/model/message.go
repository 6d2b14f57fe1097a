package model

import "time"

// Message is one persisted transcript row, tied to a Chat by database id.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    uint      `gorm:"not null;index" json:"chat_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	IsUser    bool      `gorm:"not null" json:"is_user"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageRecord is the queue payload for asynchronous persistence. ChatKey is
// the opaque client-generated chat id; the worker resolves it to a Chat row.
// CreatedAt is stamped by the publisher so row order survives queue races.
type MessageRecord struct {
	UserID    uint      `json:"user_id"`
	ChatKey   string    `json:"chat_id"`
	Text      string    `json:"text"`
	IsUser    bool      `json:"is_user"`
	CreatedAt time.Time `json:"created_at"`
}
