package media

import (
	"context"
	"time"
)

// Asset is a stored media object belonging to a lead.
type Asset struct {
	ID          string
	TenantID    string
	LeadID      string
	ChatID      string
	Kind        string // image | video
	ContentType string
	SizeBytes   int64
	Width       int
	Height      int
	StorageKey  string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

type IRepository interface {
	Save(ctx context.Context, a Asset) error
	Get(ctx context.Context, assetID string) (*Asset, error)
	GetForLead(ctx context.Context, tenantID, leadID string, limit int) ([]Asset, error)
	DeleteExpired(ctx context.Context, now time.Time) ([]Asset, error)
}

// IObjectStorage stores the raw bytes under a key.
type IObjectStorage interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Item is an inbound media reference from a provider webhook.
type Item struct {
	URL         string
	ProviderID  string // e.g. Telegram file_id, Meta media id
	ContentType string
}

// IUsecase downloads, validates, re-encodes and stores inbound media.
type IUsecase interface {
	ProcessAndSave(ctx context.Context, item Item, tenantID, leadID, chatID, provider, messageID string) (*Asset, error)
	SignedURL(baseURL string, a Asset, ttl time.Duration) string
	Cleanup(ctx context.Context) (int64, error)
}
