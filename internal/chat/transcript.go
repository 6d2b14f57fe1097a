package chat

// GreetingText opens every new transcript before any user interaction.
const GreetingText = "Привет! Я ФинБро — ваш финансовый помощник. Задайте мне любой вопрос о кредитах, долгах или банковских услугах!"

// ApologyText is the fixed assistant reply appended on any failed dispatch.
const ApologyText = "Извините, произошла ошибка. Попробуйте повторить запрос."

// Transcript is the ordered, append-only message sequence of one chat view.
// It is not safe for concurrent use; Session owns the locking.
type Transcript struct {
	messages []Message
}

// NewTranscript returns a transcript holding exactly the assistant greeting.
func NewTranscript() *Transcript {
	return &Transcript{
		messages: []Message{NewMessage(GreetingText, OriginAssistant)},
	}
}

func (t *Transcript) Append(msg Message) {
	t.messages = append(t.messages, msg)
}

// Replace swaps the whole transcript for previously persisted history.
func (t *Transcript) Replace(messages []Message) {
	t.messages = make([]Message, len(messages))
	copy(t.messages, messages)
}

func (t *Transcript) Messages() []Message {
	copied := make([]Message, len(t.messages))
	copy(copied, t.messages)
	return copied
}

func (t *Transcript) Len() int {
	return len(t.messages)
}
