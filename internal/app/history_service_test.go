package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"

	"finbro-chat/internal/app"
	"finbro-chat/internal/cache"
	"finbro-chat/internal/model"
)

func seedHistoryStores(t *testing.T, count int) (*fakeChatStore, *fakeMessageStore) {
	t.Helper()
	chatStore := newFakeChatStore()
	chatStore.rows["chat_1_full"] = &model.Chat{ID: 1, UserID: 7, ChatKey: "chat_1_full"}

	base := time.Now().Add(-time.Hour)
	messageStore := &fakeMessageStore{}
	for i := 1; i <= count; i++ {
		messageStore.messages = append(messageStore.messages, model.Message{
			ID:        uint(i),
			ChatID:    1,
			Text:      fmt.Sprintf("msg-%d", i),
			IsUser:    i%2 == 1,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	return chatStore, messageStore
}

func TestGetHistoryReturnsFullTranscript(t *testing.T) {
	chatStore, messageStore := seedHistoryStores(t, 150)
	svc := app.NewHistoryService(chatStore, messageStore, nil)

	entries, err := svc.GetHistory(context.Background(), 7, "chat_1_full", 0)
	if err != nil {
		t.Fatalf("GetHistory err: %v", err)
	}
	if len(entries) != 150 {
		t.Fatalf("expected full transcript, got %d entries", len(entries))
	}
	if entries[0].Text != "msg-1" || entries[149].Text != "msg-150" {
		t.Fatalf("unexpected order: first=%q last=%q", entries[0].Text, entries[149].Text)
	}
}

func TestGetHistoryLimitKeepsNewest(t *testing.T) {
	chatStore, messageStore := seedHistoryStores(t, 150)
	svc := app.NewHistoryService(chatStore, messageStore, nil)

	entries, err := svc.GetHistory(context.Background(), 7, "chat_1_full", 100)
	if err != nil {
		t.Fatalf("GetHistory err: %v", err)
	}
	if len(entries) != 100 {
		t.Fatalf("expected 100 entries, got %d", len(entries))
	}
	if entries[0].Text != "msg-51" {
		t.Fatalf("limit must keep the newest rows, first entry is %q", entries[0].Text)
	}
	if entries[99].Text != "msg-150" {
		t.Fatalf("newest row missing, last entry is %q", entries[99].Text)
	}
}

func TestGetHistoryCachedAndStoredPathsAgree(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	historyCache := cache.NewHistoryCache(client, time.Minute, time.Second)

	chatStore, messageStore := seedHistoryStores(t, 150)
	svc := app.NewHistoryService(chatStore, messageStore, historyCache)
	ctx := context.Background()

	fromStore, err := svc.GetHistory(ctx, 7, "chat_1_full", 100)
	if err != nil {
		t.Fatalf("first GetHistory err: %v", err)
	}
	fromCache, err := svc.GetHistory(ctx, 7, "chat_1_full", 100)
	if err != nil {
		t.Fatalf("second GetHistory err: %v", err)
	}

	if len(fromStore) != len(fromCache) {
		t.Fatalf("paths disagree on length: %d != %d", len(fromStore), len(fromCache))
	}
	for i := range fromStore {
		if fromStore[i].Text != fromCache[i].Text {
			t.Fatalf("paths disagree at %d: %q != %q", i, fromStore[i].Text, fromCache[i].Text)
		}
	}
	if fromCache[0].Text != "msg-51" || fromCache[99].Text != "msg-150" {
		t.Fatalf("cached path must keep the newest rows, got first=%q last=%q", fromCache[0].Text, fromCache[99].Text)
	}
}

func TestGetHistoryUnknownChat(t *testing.T) {
	svc := app.NewHistoryService(newFakeChatStore(), &fakeMessageStore{}, nil)

	entries, err := svc.GetHistory(context.Background(), 7, "chat_missing", 0)
	if err != nil {
		t.Fatalf("GetHistory err: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("unknown chat must yield an empty list, got %d", len(entries))
	}
}

func TestSaveMessageValidatesInput(t *testing.T) {
	svc := app.NewHistoryService(newFakeChatStore(), &fakeMessageStore{}, nil)

	if err := svc.SaveMessage(context.Background(), 0, "chat_1", "текст", true); !errors.Is(err, app.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without identity, got %v", err)
	}
	if err := svc.SaveMessage(context.Background(), 7, "", "текст", true); !errors.Is(err, app.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without chat id, got %v", err)
	}
	if err := svc.SaveMessage(context.Background(), 7, "chat_1", "  ", true); !errors.Is(err, app.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank text, got %v", err)
	}
}

func TestSaveMessageStoresRow(t *testing.T) {
	chatStore := newFakeChatStore()
	messageStore := &fakeMessageStore{}
	svc := app.NewHistoryService(chatStore, messageStore, nil)

	if err := svc.SaveMessage(context.Background(), 7, "chat_9_new", "вопрос", true); err != nil {
		t.Fatalf("SaveMessage err: %v", err)
	}

	row, ok := chatStore.rows["chat_9_new"]
	if !ok {
		t.Fatal("chat row not created")
	}
	stored, err := messageStore.ListByChatID(row.ID)
	if err != nil {
		t.Fatalf("ListByChatID err: %v", err)
	}
	if len(stored) != 1 || stored[0].Text != "вопрос" || !stored[0].IsUser {
		t.Fatalf("unexpected stored row: %+v", stored)
	}
}
