package app

import (
	"context"
	"strings"
	"time"

	"finbro-chat/internal/model"
)

// HistoryEntry is the wire form of one persisted message, field names as the
// widget consumes them.
type HistoryEntry struct {
	Text      string    `json:"text"`
	IsUser    bool      `json:"isUser"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryService owns the durable side of chats: direct saves, chat titles,
// per-user chat lists and cached history reads.
type HistoryService struct {
	chatStore    ChatStore
	messageStore MessageStore
	historyCache HistoryCache
}

func NewHistoryService(
	chatStore ChatStore,
	messageStore MessageStore,
	historyCache HistoryCache,
) *HistoryService {
	return &HistoryService{
		chatStore:    chatStore,
		messageStore: messageStore,
		historyCache: historyCache,
	}
}

func (s *HistoryService) SaveMessage(ctx context.Context, userID uint, chatKey, text string, isUser bool) error {
	chatKey = strings.TrimSpace(chatKey)
	text = strings.TrimSpace(text)
	if userID == 0 || chatKey == "" || text == "" {
		return ErrInvalidInput
	}

	row, err := s.chatStore.FindOrCreate(userID, chatKey)
	if err != nil {
		return err
	}
	if err := s.messageStore.Create(&model.Message{
		ChatID:    row.ID,
		Text:      text,
		IsUser:    isUser,
		CreatedAt: time.Now(),
	}); err != nil {
		return err
	}

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, chatKey)
		_ = s.historyCache.DeleteHistory(ctx, chatKey)
	}
	return nil
}

func (s *HistoryService) UpdateChatTitle(userID uint, chatKey, title string) error {
	chatKey = strings.TrimSpace(chatKey)
	title = strings.TrimSpace(title)
	if userID == 0 || chatKey == "" || title == "" {
		return ErrInvalidInput
	}
	return s.chatStore.UpdateTitle(userID, chatKey, title)
}

func (s *HistoryService) ListChats(userID uint) ([]model.Chat, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.chatStore.ListByUserID(userID)
}

// GetHistory returns the persisted transcript of one chat, oldest first. The
// store and cache both hold the full transcript; a positive limit keeps the
// newest rows. An unknown chat yields an empty list, not an error: the widget
// treats it as a fresh conversation.
func (s *HistoryService) GetHistory(ctx context.Context, userID uint, chatKey string, limit int) ([]HistoryEntry, error) {
	chatKey = strings.TrimSpace(chatKey)
	if userID == 0 || chatKey == "" {
		return nil, ErrInvalidInput
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, chatKey)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, chatKey); cacheErr == nil && hit {
				return toHistoryEntries(trimMessages(cached, limit)), nil
			}
		}
	}

	row, err := s.chatStore.GetByKeyAndUserID(chatKey, userID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return []HistoryEntry{}, nil
	}

	messages, err := s.messageStore.ListByChatID(row.ID)
	if err != nil {
		return nil, err
	}

	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, chatKey); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, chatKey, messages)
		}
	}
	return toHistoryEntries(trimMessages(messages, limit)), nil
}

// trimMessages keeps the newest limit messages, preserving ascending order.
func trimMessages(messages []model.Message, limit int) []model.Message {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}

func toHistoryEntries(messages []model.Message) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, HistoryEntry{
			Text:      m.Text,
			IsUser:    m.IsUser,
			Timestamp: m.CreatedAt,
		})
	}
	return entries
}
