package conversation

import "context"

// Location is a GPS pin attached to an inbound message.
type Location struct {
	Latitude  float64
	Longitude float64
	Name      string
	Address   string
}

// Media is an inbound media reference.
type Media struct {
	URL         string
	ProviderID  string
	ContentType string
}

// InboundMessage is the provider-normalized inbound event. Exactly one of
// Text / Location / Media carries the content; text wins when several are
// present.
type InboundMessage struct {
	TenantID   string
	Provider   string
	MessageID  string
	ChatID     string
	SenderName string
	Text       string
	Location   *Location
	Media      []Media
}

// Result is what the ingress path returns to the webhook handler.
type Result struct {
	Reply  string `json:"reply,omitempty"`
	Step   string `json:"step"`
	LeadID string `json:"lead_id"`
}

// IUsecase is the conversation pipeline:
// dedup -> session load (TTL) -> engine step -> guarded upsert -> finalize.
type IUsecase interface {
	ProcessInbound(ctx context.Context, msg InboundMessage) (Result, error)
	ResetChat(ctx context.Context, tenantID, provider, chatID string) error
	SoftResetChat(ctx context.Context, tenantID, chatID string) error
	CleanupExpired(ctx context.Context) (int64, error)
}
