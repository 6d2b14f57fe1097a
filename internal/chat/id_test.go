package chat_test

import (
	"strings"
	"testing"

	"finbro-chat/internal/chat"
)

func TestNewSessionIDFormat(t *testing.T) {
	id := chat.NewSessionID()

	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[0] != "chat" {
		t.Fatalf("unexpected id shape: %q", id)
	}
	if len(parts[2]) != 9 {
		t.Fatalf("expected 9-char suffix, got %q", parts[2])
	}
}

func TestNewSessionIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := chat.NewSessionID()
		if seen[id] {
			t.Fatalf("duplicate id: %q", id)
		}
		seen[id] = true
	}
}
