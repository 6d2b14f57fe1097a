package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

var (
	ErrEmptyDraft = errors.New("draft is empty")
	ErrBusy       = errors.New("a dispatch is already in flight")
	ErrTimeout    = errors.New("bot request timed out")
)

type State int

const (
	StateIdle State = iota
	StateSending
)

// BotClient dispatches one user turn to the remote bot.
type BotClient interface {
	Ask(ctx context.Context, chatID, message string) (*Reply, error)
}

// Persister mirrors a transcript message to durable storage. Calls are issued
// fire-and-forget: failures are logged and never surface to the user.
type Persister interface {
	Persist(ctx context.Context, chatID string, msg Message) error
}

// HistorySource returns previously persisted messages for a chat id.
type HistorySource interface {
	History(ctx context.Context, chatID string) ([]Message, error)
}

type NoticeKind string

const (
	NoticeOperator NoticeKind = "operator"
	NoticeError    NoticeKind = "error"
)

// Notice is a transient user-facing notification raised by one dispatch.
type Notice struct {
	Kind        NoticeKind `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

// SendResult reports the two messages appended by one accepted turn.
type SendResult struct {
	UserMessage      Message `json:"user_message"`
	AssistantMessage Message `json:"assistant_message"`
	Notice           *Notice `json:"notice,omitempty"`
}

// Session owns one chat view's transcript and serializes its dispatches.
// The state machine allows a single transition Idle -> Sending -> Idle;
// sends arriving while Sending are rejected, not queued.
type Session struct {
	id         string
	bot        BotClient
	persister  Persister
	history    HistorySource
	logger     *slog.Logger
	persistGrp sync.WaitGroup

	mu         sync.Mutex
	state      State
	transcript *Transcript
}

type Option func(*Session)

// WithID resumes an existing chat id instead of generating a fresh one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

func WithPersister(p Persister) Option {
	return func(s *Session) { s.persister = p }
}

func WithHistorySource(src HistorySource) Option {
	return func(s *Session) { s.history = src }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

func NewSession(bot BotClient, opts ...Option) *Session {
	s := &Session{
		bot:        bot,
		logger:     slog.Default(),
		state:      StateIdle,
		transcript: NewTranscript(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = NewSessionID()
	}
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Messages()
}

// Send runs one full dispatch: append the user turn, call the remote bot and
// append exactly one assistant turn, the fixed apology on any failure. The
// user message is appended before any network I/O starts. Persistence of both
// turns is fire-and-forget and only attempted when a Persister is attached.
func (s *Session) Send(ctx context.Context, draft string) (*SendResult, error) {
	draft = strings.TrimSpace(draft)
	if draft == "" {
		return nil, ErrEmptyDraft
	}
	if !s.beginSending() {
		return nil, ErrBusy
	}
	defer s.endSending()

	userMsg := NewMessage(draft, OriginUser)
	s.append(userMsg)
	s.persistAsync(userMsg)

	reply, err := s.bot.Ask(ctx, s.id, draft)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			s.logger.Error("bot dispatch timed out", "chat_id", s.id, "error", err)
		} else {
			s.logger.Error("bot dispatch failed", "chat_id", s.id, "error", err)
		}
		apology := NewMessage(ApologyText, OriginAssistant)
		s.append(apology)
		return &SendResult{
			UserMessage:      userMsg,
			AssistantMessage: apology,
			Notice: &Notice{
				Kind:        NoticeError,
				Title:       "Ошибка",
				Description: "Не удалось отправить сообщение. Попробуйте позже.",
			},
		}, nil
	}

	assistantMsg := NewMessage(reply.Message, OriginAssistant)
	s.append(assistantMsg)
	s.persistAsync(assistantMsg)

	result := &SendResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
	}
	if reply.Command == CommandOperator {
		result.Notice = &Notice{
			Kind:        NoticeOperator,
			Title:       "Требуется оператор",
			Description: "Запрос направлен на обработку оператору",
		}
	}
	if len(reply.Media) > 0 {
		s.logger.Debug("reply carries media attachments", "chat_id", s.id, "count", len(reply.Media))
	}
	if len(reply.Link) > 0 {
		s.logger.Debug("reply carries a link", "chat_id", s.id)
	}
	if len(reply.Form) > 0 {
		s.logger.Debug("reply carries a form", "chat_id", s.id)
	}
	return result, nil
}

// LoadHistory replaces the transcript with persisted messages when at least
// one exists. Empty history or a failed load leaves the greeting-only
// transcript untouched; failures degrade silently to a fresh conversation.
func (s *Session) LoadHistory(ctx context.Context) {
	if s.history == nil {
		return
	}
	messages, err := s.history.History(ctx, s.id)
	if err != nil {
		s.logger.Warn("history load failed", "chat_id", s.id, "error", err)
		return
	}
	if len(messages) == 0 {
		return
	}
	s.mu.Lock()
	s.transcript.Replace(messages)
	s.mu.Unlock()
}

// Wait blocks until in-flight persistence calls settle. Test hook.
func (s *Session) Wait() {
	s.persistGrp.Wait()
}

func (s *Session) beginSending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return false
	}
	s.state = StateSending
	return true
}

func (s *Session) endSending() {
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
}

func (s *Session) append(msg Message) {
	s.mu.Lock()
	s.transcript.Append(msg)
	s.mu.Unlock()
}

func (s *Session) persistAsync(msg Message) {
	if s.persister == nil {
		return
	}
	s.persistGrp.Add(1)
	go func() {
		defer s.persistGrp.Done()
		if err := s.persister.Persist(context.Background(), s.id, msg); err != nil {
			s.logger.Warn("persist message failed", "chat_id", s.id, "error", err)
		}
	}()
}
