package channel

import "context"

// Supported provider names.
const (
	ProviderTelegram = "telegram"
	ProviderMeta     = "meta"
	ProviderTwilio   = "twilio"
)

// Message is one outbound text with optional media links.
type Message struct {
	Provider  string
	To        string
	Text      string
	MediaURLs []string
}

// Credentials are the decrypted per-tenant provider credentials. Empty
// fields fall back to the globally configured account.
type Credentials struct {
	Token         string // Telegram bot token / Meta access token / Twilio auth token
	AccountID     string // Twilio account SID
	PhoneNumberID string // Meta phone number id / Twilio from number
}

// ISender delivers outbound messages through one provider API.
type ISender interface {
	Send(ctx context.Context, msg Message, creds Credentials) error
}

// IRouter picks the sender for a provider.
type IRouter interface {
	Send(ctx context.Context, tenantID string, msg Message) error
}

// IMediaFetcher downloads inbound media bytes from a provider.
type IMediaFetcher interface {
	Fetch(ctx context.Context, provider, url, providerID string, creds Credentials) (data []byte, contentType string, err error)
}
