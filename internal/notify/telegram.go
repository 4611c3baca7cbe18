package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultTelegramAPI = "https://api.telegram.org"

// TelegramSender posts messages to one chat through the Bot API.
type TelegramSender struct {
	APIURL    string
	Token     string
	ChatID    string
	ParseMode string
	client    *http.Client
}

// NewTelegramSender returns a sender that formats messages as HTML.
func NewTelegramSender(apiURL, token, chatID string, client *http.Client) *TelegramSender {
	if apiURL == "" {
		apiURL = DefaultTelegramAPI
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &TelegramSender{
		APIURL:    strings.TrimRight(apiURL, "/"),
		Token:     token,
		ChatID:    chatID,
		ParseMode: "HTML",
		client:    client,
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (s *TelegramSender) Send(ctx context.Context, text string) error {
	if s.Token == "" || s.ChatID == "" {
		return fmt.Errorf("telegram sender not configured")
	}
	body, err := json.Marshal(sendMessageRequest{ChatID: s.ChatID, Text: text, ParseMode: s.ParseMode})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.APIURL, s.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	var decoded sendMessageResponse
	_ = json.Unmarshal(payload, &decoded)
	if resp.StatusCode/100 != 2 || !decoded.OK {
		if decoded.Description != "" {
			return fmt.Errorf("telegram status %d: %s", resp.StatusCode, decoded.Description)
		}
		return fmt.Errorf("telegram status %d", resp.StatusCode)
	}
	return nil
}
