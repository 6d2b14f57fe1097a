package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"finbro-chat/internal/model"
	"finbro-chat/internal/repository"
)

// MessagePersistWorker drains the persist queue into MySQL. It resolves the
// opaque chat key to a chats row first, creating it on the user's first turn.
type MessagePersistWorker struct {
	conn        *amqp.Connection
	chatRepo    *repository.ChatRepository
	messageRepo *repository.MessageRepository
	queueName   string
	logger      *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMessagePersistWorker(
	conn *amqp.Connection,
	chatRepo *repository.ChatRepository,
	messageRepo *repository.MessageRepository,
	queueName string,
	logger *slog.Logger,
) *MessagePersistWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessagePersistWorker{
		conn:        conn,
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		queueName:   queueName,
		logger:      logger,
	}
}

func (w *MessagePersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var record model.MessageRecord
				if err := json.Unmarshal(d.Body, &record); err != nil {
					w.logger.Error("worker decode record failed", "error", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.persist(record); err != nil {
					w.logger.Error("worker persist record failed", "chat_id", record.ChatKey, "error", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *MessagePersistWorker) persist(record model.MessageRecord) error {
	chat, err := w.chatRepo.FindOrCreate(record.UserID, record.ChatKey)
	if err != nil {
		return err
	}
	return w.messageRepo.Create(&model.Message{
		ChatID:    chat.ID,
		Text:      record.Text,
		IsUser:    record.IsUser,
		CreatedAt: record.CreatedAt,
	})
}

func (w *MessagePersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
