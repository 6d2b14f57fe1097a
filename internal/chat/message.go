package chat

import (
	"time"

	"github.com/google/uuid"
)

type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
)

// Message is one transcript entry. Insertion order in the transcript is
// authoritative; SentAt is display-only.
type Message struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Origin Origin    `json:"origin"`
	SentAt time.Time `json:"sent_at"`
}

func NewMessage(text string, origin Origin) Message {
	return Message{
		ID:     uuid.NewString(),
		Text:   text,
		Origin: origin,
		SentAt: time.Now(),
	}
}
