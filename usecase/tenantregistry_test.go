package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainTenant "github.com/moveline/leadgate/domains/tenant"
	"github.com/moveline/leadgate/pkg/crypto"
)

type fakeTenantRepo struct {
	tenants  []domainTenant.Tenant
	bindings map[string][]domainTenant.ChannelBinding
}

func (r *fakeTenantRepo) Create(_ context.Context, t domainTenant.Tenant) error {
	r.tenants = append(r.tenants, t)
	return nil
}

func (r *fakeTenantRepo) Get(_ context.Context, tenantID string) (*domainTenant.Tenant, error) {
	for i := range r.tenants {
		if r.tenants[i].TenantID == tenantID {
			return &r.tenants[i], nil
		}
	}
	return nil, nil
}

func (r *fakeTenantRepo) List(_ context.Context) ([]domainTenant.Tenant, error) {
	return r.tenants, nil
}

func (r *fakeTenantRepo) BindChannel(_ context.Context, tenantID string, b domainTenant.ChannelBinding) error {
	if r.bindings == nil {
		r.bindings = map[string][]domainTenant.ChannelBinding{}
	}
	r.bindings[tenantID] = append(r.bindings[tenantID], b)
	return nil
}

func (r *fakeTenantRepo) DeactivateChannel(_ context.Context, _, _ string) error { return nil }

func (r *fakeTenantRepo) ListBindings(_ context.Context) (map[string][]domainTenant.ChannelBinding, error) {
	return r.bindings, nil
}

func withEncryptionKey(t *testing.T, key string) {
	t.Helper()
	require.NoError(t, crypto.SetEncryptionKey(key))
	t.Cleanup(func() { _ = crypto.SetEncryptionKey("") })
}

func TestRegistrySynthesizesDefaultTenant(t *testing.T) {
	registry := NewTenantRegistry(testConfig(), &fakeTenantRepo{}, nil)

	tc, err := registry.Resolve(context.Background(), "telegram", "bot-123")
	require.NoError(t, err)
	assert.Equal(t, "default", tc.TenantID)
	assert.True(t, tc.IsActive)
}

func TestRegistryResolvesBoundAccount(t *testing.T) {
	repo := &fakeTenantRepo{
		tenants: []domainTenant.Tenant{
			{TenantID: "default", IsActive: true},
			{TenantID: "acme", IsActive: true},
		},
		bindings: map[string][]domainTenant.ChannelBinding{
			"acme": {{
				Provider:          "meta",
				ProviderAccountID: "phone-42",
				Credentials:       map[string]string{"token": "plain-token"},
				IsActive:          true,
			}},
		},
	}
	registry := NewTenantRegistry(testConfig(), repo, nil)

	tc, err := registry.Resolve(context.Background(), "meta", "phone-42")
	require.NoError(t, err)
	assert.Equal(t, "acme", tc.TenantID)
	assert.Equal(t, "plain-token", tc.Channels["meta"].Credentials["token"])

	// Unbound accounts fall back to the default tenant.
	tc, err = registry.Resolve(context.Background(), "meta", "phone-99")
	require.NoError(t, err)
	assert.Equal(t, "default", tc.TenantID)
}

func TestRegistryInactiveTenantRejected(t *testing.T) {
	repo := &fakeTenantRepo{
		tenants: []domainTenant.Tenant{
			{TenantID: "default", IsActive: true},
			{TenantID: "closed", IsActive: false},
		},
		bindings: map[string][]domainTenant.ChannelBinding{
			"closed": {{Provider: "telegram", ProviderAccountID: "bot-1", IsActive: true}},
		},
	}
	registry := NewTenantRegistry(testConfig(), repo, nil)

	_, err := registry.Resolve(context.Background(), "telegram", "bot-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactive")
}

func TestRegistryDecryptsCredentials(t *testing.T) {
	withEncryptionKey(t, "test-key")

	sealed, err := crypto.EncryptBound("secret-token", "acme:telegram")
	require.NoError(t, err)

	repo := &fakeTenantRepo{
		tenants: []domainTenant.Tenant{{TenantID: "acme", IsActive: true}},
		bindings: map[string][]domainTenant.ChannelBinding{
			"acme": {{
				Provider:          "telegram",
				ProviderAccountID: "bot-1",
				Credentials:       map[string]string{"token": sealed},
				IsActive:          true,
			}},
		},
	}
	registry := NewTenantRegistry(testConfig(), repo, nil)

	tc, err := registry.Resolve(context.Background(), "telegram", "bot-1")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", tc.Channels["telegram"].Credentials["token"])
}

func TestRegistryDropsMisboundCredentials(t *testing.T) {
	withEncryptionKey(t, "test-key")

	// Sealed under another tenant's context; the registry must refuse it.
	sealed, err := crypto.EncryptBound("secret-token", "other:telegram")
	require.NoError(t, err)

	repo := &fakeTenantRepo{
		tenants: []domainTenant.Tenant{{TenantID: "acme", IsActive: true}},
		bindings: map[string][]domainTenant.ChannelBinding{
			"acme": {{
				Provider:          "telegram",
				ProviderAccountID: "bot-1",
				Credentials:       map[string]string{"token": sealed},
				IsActive:          true,
			}},
		},
	}
	registry := NewTenantRegistry(testConfig(), repo, nil)

	tc, err := registry.GetContext(context.Background(), "acme")
	require.NoError(t, err)
	assert.Empty(t, tc.Channels, "binding with foreign ciphertext is dropped")
}

func TestRegistryOperatorConfigOverrides(t *testing.T) {
	cfg := testConfig()
	cfg.Operator.NotificationsEnabled = true
	cfg.Operator.Channel = "whatsapp"
	cfg.Operator.Whatsapp = "whatsapp:+972500000000"

	repo := &fakeTenantRepo{
		tenants: []domainTenant.Tenant{{
			TenantID: "acme",
			IsActive: true,
			Config: map[string]any{
				"operator_whatsapp":     "whatsapp:+972501111111",
				"crew_fallback_enabled": true,
			},
		}},
	}
	registry := NewTenantRegistry(cfg, repo, nil)
	ctx := context.Background()

	op := registry.OperatorConfig(ctx, "acme")
	assert.True(t, op.Enabled)
	assert.Equal(t, "whatsapp:+972501111111", op.Whatsapp, "tenant config wins")
	assert.Equal(t, "whatsapp", op.Channel, "unset keys fall back to globals")

	dc := registry.DispatchConfig(ctx, "acme")
	assert.True(t, dc.CrewFallbackEnabled)

	// Unknown tenants get the global settings.
	op = registry.OperatorConfig(ctx, "ghost")
	assert.Equal(t, "whatsapp:+972500000000", op.Whatsapp)
}
