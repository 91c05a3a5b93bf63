package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	domainChannel "github.com/moveline/leadgate/domains/channel"
)

const (
	metaAPIBase    = "https://graph.facebook.com"
	metaAPIVersion = "v21.0"
)

type metaSender struct {
	baseURL string
}

// NewMetaSender sends messages through the WhatsApp Cloud API.
func NewMetaSender() domainChannel.ISender {
	return &metaSender{baseURL: metaAPIBase}
}

func (s *metaSender) Send(ctx context.Context, msg domainChannel.Message, creds domainChannel.Credentials) error {
	if creds.Token == "" || creds.PhoneNumberID == "" {
		return fmt.Errorf("meta sender: missing access token or phone number id")
	}
	to := strings.TrimPrefix(msg.To, "whatsapp:")

	if msg.Text != "" {
		payload := map[string]any{
			"messaging_product": "whatsapp",
			"to":                to,
			"type":              "text",
			"text":              map[string]any{"body": msg.Text},
		}
		if err := s.call(ctx, creds, payload); err != nil {
			return err
		}
	}
	for _, u := range msg.MediaURLs {
		payload := map[string]any{
			"messaging_product": "whatsapp",
			"to":                to,
			"type":              "image",
			"image":             map[string]any{"link": u},
		}
		if err := s.call(ctx, creds, payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *metaSender) call(ctx context.Context, creds domainChannel.Credentials, payload map[string]any) error {
	body, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s/%s/%s/messages", s.baseURL, metaAPIVersion, creds.PhoneNumberID)
	status, respBody, err := postJSON(ctx, url, map[string]string{
		"Authorization": "Bearer " + creds.Token,
	}, body)
	if err != nil {
		return fmt.Errorf("meta send failed: %w", err)
	}
	if status >= 300 {
		return statusError("meta", status, respBody)
	}
	return nil
}
