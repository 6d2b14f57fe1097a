package botclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"finbro-chat/internal/chat"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	Endpoint string
	Password string
	Timeout  time.Duration
}

// Client talks to the hosted FinBro bot endpoint. One attempt per turn,
// no retries.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type askRequest struct {
	Message  string `json:"message"`
	ChatID   string `json:"chat_id"`
	Password string `json:"password,omitempty"`
}

type askResponse struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Command string            `json:"command"`
	Media   []json.RawMessage `json:"media"`
	Link    json.RawMessage   `json:"link"`
	Form    json.RawMessage   `json:"form"`
	Error   string            `json:"error"`
}

func (c *Client) Ask(ctx context.Context, chatID, message string) (*chat.Reply, error) {
	bodyBytes, err := json.Marshal(askRequest{
		Message:  message,
		ChatID:   chatID,
		Password: c.cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal bot request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build bot request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("bot request: %w", chat.ErrTimeout)
		}
		return nil, fmt.Errorf("bot request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read bot response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bot response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed askResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse bot response failed: %w", err)
	}
	if !parsed.Status || parsed.Message == "" {
		if parsed.Error != "" {
			return nil, fmt.Errorf("bot rejected request: %s", parsed.Error)
		}
		return nil, errors.New("bot response missing status or message")
	}

	return &chat.Reply{
		Message: parsed.Message,
		Command: parsed.Command,
		Media:   parsed.Media,
		Link:    parsed.Link,
		Form:    parsed.Form,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
