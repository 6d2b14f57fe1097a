package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"finbro-chat/internal/model"
)

const defaultChatTitle = "Новый чат"

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// FindOrCreate resolves the opaque chat key to a row, creating it with the
// default title on first sight.
func (r *ChatRepository) FindOrCreate(userID uint, chatKey string) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.Where("user_id = ? AND chat_key = ?", userID, chatKey).First(&chat).Error
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("query chat failed: %w", err)
	}

	chat = model.Chat{
		UserID:  userID,
		ChatKey: chatKey,
		Title:   defaultChatTitle,
	}
	if err := r.db.Create(&chat).Error; err != nil {
		return nil, fmt.Errorf("create chat failed: %w", err)
	}
	return &chat, nil
}

func (r *ChatRepository) GetByKeyAndUserID(chatKey string, userID uint) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.Where("chat_key = ? AND user_id = ?", chatKey, userID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat failed: %w", err)
	}
	return &chat, nil
}

func (r *ChatRepository) ListByUserID(userID uint) ([]model.Chat, error) {
	var chats []model.Chat
	if err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list chats failed: %w", err)
	}
	return chats, nil
}

func (r *ChatRepository) UpdateTitle(userID uint, chatKey, title string) error {
	if err := r.db.Model(&model.Chat{}).
		Where("chat_key = ? AND user_id = ?", chatKey, userID).
		Update("title", title).Error; err != nil {
		return fmt.Errorf("update chat title failed: %w", err)
	}
	return nil
}
