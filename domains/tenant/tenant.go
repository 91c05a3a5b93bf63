package tenant

import (
	"context"
	"time"
)

// ChannelBinding links a provider account to a tenant. Credentials are
// stored encrypted and only decrypted inside the registry.
type ChannelBinding struct {
	Provider          string
	ProviderAccountID string
	Credentials       map[string]string
	Config            map[string]any
	IsActive          bool
}

// Tenant is a stored tenant row.
type Tenant struct {
	TenantID    string
	DisplayName string
	IsActive    bool
	Config      map[string]any
	CreatedAt   time.Time
}

// Context is the resolved per-request tenant view served from the
// registry cache.
type Context struct {
	TenantID    string
	DisplayName string
	IsActive    bool
	Config      map[string]any
	Channels    map[string]ChannelBinding // keyed by provider
}

// OperatorConfig is the per-tenant operator notification setup after
// global-settings fallback.
type OperatorConfig struct {
	Enabled  bool
	Channel  string
	Whatsapp string
}

// DispatchConfig is the per-tenant dispatch setup after fallback.
type DispatchConfig struct {
	CrewFallbackEnabled bool
}

// CreateTenantRequest is the admin API body for creating a tenant.
type CreateTenantRequest struct {
	TenantID    string         `json:"tenant_id"`
	DisplayName string         `json:"display_name"`
	Config      map[string]any `json:"config"`
}

// BindChannelRequest is the admin API body for binding a provider account
// to a tenant. Credentials arrive in plain text and are encrypted before
// they reach storage.
type BindChannelRequest struct {
	TenantID          string            `json:"tenant_id"`
	Provider          string            `json:"provider"`
	ProviderAccountID string            `json:"provider_account_id"`
	Credentials       map[string]string `json:"credentials"`
	Config            map[string]any    `json:"config"`
}

type IRepository interface {
	Create(ctx context.Context, t Tenant) error
	Get(ctx context.Context, tenantID string) (*Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
	BindChannel(ctx context.Context, tenantID string, b ChannelBinding) error
	DeactivateChannel(ctx context.Context, tenantID, provider string) error
	// ListBindings returns all active bindings with credentials still
	// encrypted; decryption happens in the registry.
	ListBindings(ctx context.Context) (map[string][]ChannelBinding, error)
}

// IRegistry resolves inbound provider accounts to tenant contexts.
type IRegistry interface {
	Resolve(ctx context.Context, provider, providerAccountID string) (*Context, error)
	GetContext(ctx context.Context, tenantID string) (*Context, error)
	OperatorConfig(ctx context.Context, tenantID string) OperatorConfig
	DispatchConfig(ctx context.Context, tenantID string) DispatchConfig
	Reload(ctx context.Context) error
}
