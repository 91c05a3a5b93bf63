package channels

import (
	"context"
	"encoding/json"
	"fmt"

	domainChannel "github.com/moveline/leadgate/domains/channel"
)

const telegramAPIBase = "https://api.telegram.org"

type telegramSender struct {
	baseURL string
}

// NewTelegramSender sends messages through the Telegram Bot API.
func NewTelegramSender() domainChannel.ISender {
	return &telegramSender{baseURL: telegramAPIBase}
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (s *telegramSender) Send(ctx context.Context, msg domainChannel.Message, creds domainChannel.Credentials) error {
	if creds.Token == "" {
		return fmt.Errorf("telegram sender: missing bot token")
	}

	if msg.Text != "" {
		body, _ := json.Marshal(map[string]any{
			"chat_id": msg.To,
			"text":    msg.Text,
		})
		if err := s.call(ctx, creds.Token, "sendMessage", body); err != nil {
			return err
		}
	}
	for _, u := range msg.MediaURLs {
		body, _ := json.Marshal(map[string]any{
			"chat_id": msg.To,
			"photo":   u,
		})
		if err := s.call(ctx, creds.Token, "sendPhoto", body); err != nil {
			return err
		}
	}
	return nil
}

func (s *telegramSender) call(ctx context.Context, token, method string, body []byte) error {
	url := fmt.Sprintf("%s/bot%s/%s", s.baseURL, token, method)
	status, respBody, err := postJSON(ctx, url, nil, body)
	if err != nil {
		return fmt.Errorf("telegram %s failed: %w", method, err)
	}
	var tr telegramResponse
	if err := json.Unmarshal(respBody, &tr); err == nil && !tr.OK {
		return fmt.Errorf("telegram %s rejected: %s", method, tr.Description)
	}
	if status >= 300 {
		return statusError("telegram", status, respBody)
	}
	return nil
}
