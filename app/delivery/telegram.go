package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SendError is returned when a transport rejects a message.
type SendError struct {
	StatusCode  int
	Description string
	RetryAfter  time.Duration
}

func (e *SendError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("send failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("send failed with status %d: %s", e.StatusCode, e.Description)
}

// Temporary reports whether resending the same message may succeed.
func (e *SendError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// TelegramClient posts messages to the Bot API.
type TelegramClient struct {
	httpClient *http.Client
	apiURL     string
	token      string
	parseMode  string
}

func NewTelegramClient(httpClient *http.Client, apiURL, token, parseMode string) *TelegramClient {
	return &TelegramClient{
		httpClient: httpClient,
		apiURL:     strings.TrimRight(apiURL, "/"),
		token:      token,
		parseMode:  parseMode,
	}
}

func (c *TelegramClient) SendMessage(ctx context.Context, chatID, text, parseMode string) error {
	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", text)
	if parseMode != "" {
		form.Set("parse_mode", parseMode)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.apiURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The error embeds the request URL, which carries the bot token.
		return fmt.Errorf("failed to reach telegram API: %w", redactToken(err, c.token))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("failed to read telegram response: %w", err)
	}

	var result telegramResponse
	decodeErr := json.Unmarshal(body, &result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || decodeErr != nil || !result.OK {
		sendErr := &SendError{
			StatusCode:  resp.StatusCode,
			Description: result.Description,
			RetryAfter:  time.Duration(result.Parameters.RetryAfter) * time.Second,
		}
		if sendErr.Description == "" && decodeErr != nil {
			sendErr.Description = "unexpected response body"
		}
		return sendErr
	}

	return nil
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redactToken(err error, token string) error {
	if token == "" {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, "<token>"), err: err}
}

// TelegramDestination sends to a single chat.
type TelegramDestination struct {
	client    *TelegramClient
	chatID    string
	parseMode string
}

// NewTelegramDestination uses the client's parse mode for markdown messages and none for plain text.
func NewTelegramDestination(client *TelegramClient, chatID string, markdown bool) *TelegramDestination {
	d := &TelegramDestination{client: client, chatID: chatID}
	if markdown {
		d.parseMode = client.parseMode
	}
	return d
}

func (d *TelegramDestination) ID() string        { return d.chatID }
func (d *TelegramDestination) Transport() string { return TransportTelegram }

func (d *TelegramDestination) Send(ctx context.Context, msg Message) error {
	return d.client.SendMessage(ctx, d.chatID, msg.Text, d.parseMode)
}
