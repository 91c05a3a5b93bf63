package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moveline/leadgate/core/config"
	domainTenant "github.com/moveline/leadgate/domains/tenant"
	"github.com/moveline/leadgate/infrastructure/valkey"
	"github.com/moveline/leadgate/pkg/crypto"
	pkgError "github.com/moveline/leadgate/pkg/error"
)

const registryCacheTTL = 60 * time.Second

type tenantRegistry struct {
	cfg   *config.Config
	repo  domainTenant.IRepository
	cache *valkey.Client // optional cross-process cache

	mu        sync.RWMutex
	byTenant  map[string]*domainTenant.Context
	byAccount map[string]string // provider|account_id -> tenant_id
	loadedAt  time.Time
}

// NewTenantRegistry resolves provider accounts to tenant contexts with
// decrypted credentials. cache may be nil; the in-process snapshot then
// carries the full load. With no tenants in the store a default tenant is
// synthesized from the global configuration.
func NewTenantRegistry(cfg *config.Config, repo domainTenant.IRepository, cache *valkey.Client) domainTenant.IRegistry {
	return &tenantRegistry{
		cfg:       cfg,
		repo:      repo,
		cache:     cache,
		byTenant:  map[string]*domainTenant.Context{},
		byAccount: map[string]string{},
	}
}

func (r *tenantRegistry) Resolve(ctx context.Context, provider, providerAccountID string) (*domainTenant.Context, error) {
	if err := r.ensureFresh(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	tenantID, ok := r.byAccount[accountKey(provider, providerAccountID)]
	if !ok {
		// Unbound accounts land on the default tenant so a single-tenant
		// deploy needs no binding rows at all.
		tenantID = r.cfg.App.TenantID
	}
	tc := r.byTenant[tenantID]
	r.mu.RUnlock()

	if tc == nil {
		return nil, pkgError.NotFoundError(fmt.Sprintf("no tenant for %s account %s", provider, providerAccountID))
	}
	if !tc.IsActive {
		return nil, pkgError.ForbiddenError(fmt.Sprintf("tenant %s is inactive", tc.TenantID))
	}
	return tc, nil
}

func (r *tenantRegistry) GetContext(ctx context.Context, tenantID string) (*domainTenant.Context, error) {
	if err := r.ensureFresh(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	tc := r.byTenant[tenantID]
	r.mu.RUnlock()
	if tc == nil {
		return nil, pkgError.NotFoundError(fmt.Sprintf("tenant %s not found", tenantID))
	}
	return tc, nil
}

// OperatorConfig resolves the operator notification setup for a tenant,
// falling back to the global settings per key.
func (r *tenantRegistry) OperatorConfig(ctx context.Context, tenantID string) domainTenant.OperatorConfig {
	op := domainTenant.OperatorConfig{
		Enabled:  r.cfg.Operator.NotificationsEnabled,
		Channel:  r.cfg.Operator.Channel,
		Whatsapp: r.cfg.Operator.Whatsapp,
	}
	tc, err := r.GetContext(ctx, tenantID)
	if err != nil || tc == nil {
		return op
	}
	if v, ok := tc.Config["operator_notifications_enabled"].(bool); ok {
		op.Enabled = v
	}
	if v, ok := tc.Config["operator_notification_channel"].(string); ok && v != "" {
		op.Channel = v
	}
	if v, ok := tc.Config["operator_whatsapp"].(string); ok && v != "" {
		op.Whatsapp = v
	}
	return op
}

func (r *tenantRegistry) DispatchConfig(ctx context.Context, tenantID string) domainTenant.DispatchConfig {
	dc := domainTenant.DispatchConfig{
		CrewFallbackEnabled: r.cfg.Dispatch.CrewFallbackEnabled,
	}
	tc, err := r.GetContext(ctx, tenantID)
	if err != nil || tc == nil {
		return dc
	}
	if v, ok := tc.Config["crew_fallback_enabled"].(bool); ok {
		dc.CrewFallbackEnabled = v
	}
	return dc
}

// Reload drops the snapshot and loads everything again immediately.
func (r *tenantRegistry) Reload(ctx context.Context) error {
	return r.load(ctx)
}

func (r *tenantRegistry) ensureFresh(ctx context.Context) error {
	r.mu.RLock()
	fresh := time.Since(r.loadedAt) < registryCacheTTL && len(r.byTenant) > 0
	r.mu.RUnlock()
	if fresh {
		return nil
	}
	return r.load(ctx)
}

func (r *tenantRegistry) load(ctx context.Context) error {
	tenants, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tenants: %w", err)
	}
	bindings, err := r.repo.ListBindings(ctx)
	if err != nil {
		return fmt.Errorf("failed to list channel bindings: %w", err)
	}

	byTenant := map[string]*domainTenant.Context{}
	byAccount := map[string]string{}

	for _, t := range tenants {
		tc := &domainTenant.Context{
			TenantID:    t.TenantID,
			DisplayName: t.DisplayName,
			IsActive:    t.IsActive,
			Config:      t.Config,
			Channels:    map[string]domainTenant.ChannelBinding{},
		}
		for _, b := range bindings[t.TenantID] {
			decrypted, err := decryptBinding(t.TenantID, b)
			if err != nil {
				// Fail closed: a binding whose ciphertext does not open
				// under its own tenant context is never served.
				logrus.WithError(err).Errorf("[REGISTRY] dropping %s binding for tenant %s", b.Provider, t.TenantID)
				continue
			}
			tc.Channels[b.Provider] = decrypted
			byAccount[accountKey(b.Provider, b.ProviderAccountID)] = t.TenantID
		}
		byTenant[t.TenantID] = tc
	}

	if len(byTenant) == 0 {
		id := r.cfg.App.TenantID
		byTenant[id] = &domainTenant.Context{
			TenantID: id,
			IsActive: true,
			Config:   map[string]any{},
			Channels: map[string]domainTenant.ChannelBinding{},
		}
	}

	r.mu.Lock()
	r.byTenant = byTenant
	r.byAccount = byAccount
	r.loadedAt = time.Now()
	r.mu.Unlock()

	r.publishSnapshot(ctx, byTenant)
	logrus.Debugf("[REGISTRY] loaded %d tenants, %d channel bindings", len(byTenant), len(byAccount))
	return nil
}

// publishSnapshot mirrors tenant contexts into valkey so sibling processes
// (admin UI, dispatch workers) can inspect them without a DB round trip.
// Credentials are stripped before publishing.
func (r *tenantRegistry) publishSnapshot(ctx context.Context, byTenant map[string]*domainTenant.Context) {
	if r.cache == nil {
		return
	}
	inner := r.cache.Inner()
	for id, tc := range byTenant {
		public := domainTenant.Context{
			TenantID:    tc.TenantID,
			DisplayName: tc.DisplayName,
			IsActive:    tc.IsActive,
			Config:      tc.Config,
		}
		data, err := json.Marshal(public)
		if err != nil {
			continue
		}
		key := r.cache.Key("tenant", id)
		cmd := inner.B().Set().Key(key).Value(string(data)).
			Ex(registryCacheTTL * 2).Build()
		if err := inner.Do(ctx, cmd).Error(); err != nil {
			logrus.WithError(err).Debug("[REGISTRY] valkey snapshot write failed")
			return
		}
	}
}

func decryptBinding(tenantID string, b domainTenant.ChannelBinding) (domainTenant.ChannelBinding, error) {
	out := domainTenant.ChannelBinding{
		Provider:          b.Provider,
		ProviderAccountID: b.ProviderAccountID,
		Config:            b.Config,
		IsActive:          b.IsActive,
		Credentials:       map[string]string{},
	}
	tag := tenantID + ":" + b.Provider
	for k, v := range b.Credentials {
		plain, err := crypto.DecryptBound(v, tag)
		if err != nil {
			return out, err
		}
		out.Credentials[k] = plain
	}
	return out, nil
}

func accountKey(provider, accountID string) string {
	return provider + "|" + accountID
}
