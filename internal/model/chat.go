package model

import "time"

// Chat maps an opaque client-generated chat id to a user's conversation.
type Chat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_chats_user_key" json:"user_id"`
	ChatKey   string    `gorm:"column:chat_key;size:64;not null;uniqueIndex:idx_chats_user_key" json:"chat_id"`
	Title     string    `gorm:"size:128;not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
