package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"finbro-chat/internal/chat"
	"finbro-chat/internal/model"
)

var (
	ErrMessageEmpty = errors.New("message content is empty")
	ErrChatBusy     = errors.New("chat is already processing a message")
	ErrChatNotFound = errors.New("chat not found")
)

// AsyncMessagePublisher hands transcript records to the persist queue.
type AsyncMessagePublisher interface {
	Publish(ctx context.Context, record model.MessageRecord) error
}

// HistoryCache is the Redis-backed read cache over persisted history.
type HistoryCache interface {
	GetHistory(ctx context.Context, chatKey string) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, chatKey string, messages []model.Message) error
	DeleteHistory(ctx context.Context, chatKey string) error
	MarkDirty(ctx context.Context, chatKey string) error
	IsDirty(ctx context.Context, chatKey string) (bool, error)
}

// ChatStore is the durable side of chats, as the services consume it.
type ChatStore interface {
	FindOrCreate(userID uint, chatKey string) (*model.Chat, error)
	GetByKeyAndUserID(chatKey string, userID uint) (*model.Chat, error)
	ListByUserID(userID uint) ([]model.Chat, error)
	UpdateTitle(userID uint, chatKey, title string) error
}

// MessageStore is the durable side of transcript rows.
type MessageStore interface {
	Create(message *model.Message) error
	ListByChatID(chatID uint) ([]model.Message, error)
}

// ChatService keeps one live chat.Session per open chat view and routes user
// turns through it. Sessions exist for the process lifetime only; durable
// history goes through the persist queue and repositories.
type ChatService struct {
	chatStore    ChatStore
	messageStore MessageStore
	publisher    AsyncMessagePublisher
	historyCache HistoryCache
	bot          chat.BotClient
	logger       *slog.Logger

	mu       sync.RWMutex
	sessions map[sessionKey]*chat.Session
}

// sessionKey scopes live sessions to the identity that opened them. The same
// chat id presented by two identities maps to two sessions, so one user's
// transcript and persistence never leak into another's.
type sessionKey struct {
	userID uint
	chatID string
}

type SendMessageInput struct {
	UserID  uint
	ChatID  string
	Content string
}

type SendMessageResult struct {
	ChatID   string         `json:"chat_id"`
	Messages []chat.Message `json:"messages"`
	Notice   *chat.Notice   `json:"notice,omitempty"`
}

func NewChatService(
	chatStore ChatStore,
	messageStore MessageStore,
	publisher AsyncMessagePublisher,
	historyCache HistoryCache,
	bot chat.BotClient,
	logger *slog.Logger,
) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		chatStore:    chatStore,
		messageStore: messageStore,
		publisher:    publisher,
		historyCache: historyCache,
		bot:          bot,
		logger:       logger,
		sessions:     make(map[sessionKey]*chat.Session),
	}
}

// SendMessage runs one dispatch on the chat's session. An empty ChatID starts
// a fresh session with a generated id; identity (UserID != 0) switches on
// fire-and-forget persistence and a one-time history load.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	sess := s.session(ctx, input.UserID, input.ChatID)

	result, err := sess.Send(ctx, input.Content)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyDraft):
			return nil, ErrMessageEmpty
		case errors.Is(err, chat.ErrBusy):
			return nil, ErrChatBusy
		default:
			return nil, err
		}
	}

	if input.UserID != 0 && s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, sess.ID())
		_ = s.historyCache.DeleteHistory(ctx, sess.ID())
	}

	return &SendMessageResult{
		ChatID:   sess.ID(),
		Messages: []chat.Message{result.UserMessage, result.AssistantMessage},
		Notice:   result.Notice,
	}, nil
}

// Transcript returns the live in-memory transcript of an open session, scoped
// to the identity that opened it.
func (s *ChatService) Transcript(userID uint, chatID string) ([]chat.Message, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionKey{userID: userID, chatID: chatID}]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return sess.Transcript(), true
}

// session resolves or creates the live session for (identity, chat id).
// History is loaded before the session enters the registry, so no transcript
// visible through the registry is later replaced under a turn.
func (s *ChatService) session(ctx context.Context, userID uint, chatID string) *chat.Session {
	if chatID != "" {
		s.mu.RLock()
		sess, ok := s.sessions[sessionKey{userID: userID, chatID: chatID}]
		s.mu.RUnlock()
		if ok {
			return sess
		}
	}

	opts := []chat.Option{chat.WithLogger(s.logger)}
	if chatID != "" {
		opts = append(opts, chat.WithID(chatID))
	}
	if userID != 0 {
		if s.publisher != nil {
			opts = append(opts, chat.WithPersister(&recordPersister{userID: userID, publisher: s.publisher}))
		}
		if s.chatStore != nil && s.messageStore != nil {
			opts = append(opts, chat.WithHistorySource(&repoHistorySource{
				userID:       userID,
				chatStore:    s.chatStore,
				messageStore: s.messageStore,
			}))
		}
	}

	sess := chat.NewSession(s.bot, opts...)
	if userID != 0 {
		sess.LoadHistory(ctx)
	}

	key := sessionKey{userID: userID, chatID: sess.ID()}
	s.mu.Lock()
	if existing, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		return existing
	}
	s.sessions[key] = sess
	s.mu.Unlock()
	return sess
}

// recordPersister adapts the persist queue to the session's Persister.
type recordPersister struct {
	userID    uint
	publisher AsyncMessagePublisher
}

func (p *recordPersister) Persist(ctx context.Context, chatID string, msg chat.Message) error {
	return p.publisher.Publish(ctx, model.MessageRecord{
		UserID:    p.userID,
		ChatKey:   chatID,
		Text:      msg.Text,
		IsUser:    msg.Origin == chat.OriginUser,
		CreatedAt: msg.SentAt,
	})
}

// repoHistorySource adapts the stores to the session's HistorySource.
type repoHistorySource struct {
	userID       uint
	chatStore    ChatStore
	messageStore MessageStore
}

func (h *repoHistorySource) History(ctx context.Context, chatKey string) ([]chat.Message, error) {
	row, err := h.chatStore.GetByKeyAndUserID(chatKey, h.userID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	rows, err := h.messageStore.ListByChatID(row.ID)
	if err != nil {
		return nil, err
	}

	messages := make([]chat.Message, 0, len(rows))
	for _, r := range rows {
		origin := chat.OriginAssistant
		if r.IsUser {
			origin = chat.OriginUser
		}
		messages = append(messages, chat.Message{
			ID:     uuid.NewString(),
			Text:   r.Text,
			Origin: origin,
			SentAt: r.CreatedAt,
		})
	}
	return messages, nil
}
