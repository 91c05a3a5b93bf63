package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainTenant "github.com/moveline/leadgate/domains/tenant"
)

type tenantRepo struct {
	db *gorm.DB
}

// NewTenantRepository returns the gorm-backed tenant repository.
// Binding credentials pass through unchanged; encryption and decryption
// belong to the registry layer.
func NewTenantRepository(db *gorm.DB) domainTenant.IRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, t domainTenant.Tenant) error {
	cfg, err := json.Marshal(t.Config)
	if err != nil {
		return fmt.Errorf("failed to serialize tenant config: %w", err)
	}
	m := TenantModel{
		TenantID:    t.TenantID,
		DisplayName: t.DisplayName,
		IsActive:    t.IsActive,
		Config:      string(cfg),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

func (r *tenantRepo) Get(ctx context.Context, tenantID string) (*domainTenant.Tenant, error) {
	var m TenantModel
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	return tenantFromModel(&m)
}

func (r *tenantRepo) List(ctx context.Context) ([]domainTenant.Tenant, error) {
	var models []TenantModel
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	tenants := make([]domainTenant.Tenant, 0, len(models))
	for i := range models {
		t, err := tenantFromModel(&models[i])
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, *t)
	}
	return tenants, nil
}

// BindChannel upserts on (tenant_id, provider) so rebinding an account
// replaces the previous credentials.
func (r *tenantRepo) BindChannel(ctx context.Context, tenantID string, b domainTenant.ChannelBinding) error {
	creds, err := json.Marshal(b.Credentials)
	if err != nil {
		return fmt.Errorf("failed to serialize binding credentials: %w", err)
	}
	cfg, err := json.Marshal(b.Config)
	if err != nil {
		return fmt.Errorf("failed to serialize binding config: %w", err)
	}

	m := ChannelBindingModel{
		TenantID:          tenantID,
		Provider:          b.Provider,
		ProviderAccountID: b.ProviderAccountID,
		Credentials:       string(creds),
		Config:            string(cfg),
		IsActive:          b.IsActive,
		UpdatedAt:         time.Now().UTC(),
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"provider_account_id", "credentials", "config", "is_active", "updated_at",
		}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to bind channel: %w", err)
	}
	return nil
}

func (r *tenantRepo) DeactivateChannel(ctx context.Context, tenantID, provider string) error {
	res := r.db.WithContext(ctx).Model(&ChannelBindingModel{}).
		Where("tenant_id = ? AND provider = ?", tenantID, provider).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate channel: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *tenantRepo) ListBindings(ctx context.Context) (map[string][]domainTenant.ChannelBinding, error) {
	var models []ChannelBindingModel
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list channel bindings: %w", err)
	}

	bindings := make(map[string][]domainTenant.ChannelBinding)
	for i := range models {
		b, err := bindingFromModel(&models[i])
		if err != nil {
			return nil, err
		}
		bindings[models[i].TenantID] = append(bindings[models[i].TenantID], b)
	}
	return bindings, nil
}

func tenantFromModel(m *TenantModel) (*domainTenant.Tenant, error) {
	t := &domainTenant.Tenant{
		TenantID:    m.TenantID,
		DisplayName: m.DisplayName,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
	}
	if m.Config != "" {
		if err := json.Unmarshal([]byte(m.Config), &t.Config); err != nil {
			return nil, fmt.Errorf("failed to parse tenant config: %w", err)
		}
	}
	return t, nil
}

func bindingFromModel(m *ChannelBindingModel) (domainTenant.ChannelBinding, error) {
	b := domainTenant.ChannelBinding{
		Provider:          m.Provider,
		ProviderAccountID: m.ProviderAccountID,
		IsActive:          m.IsActive,
	}
	if m.Credentials != "" {
		if err := json.Unmarshal([]byte(m.Credentials), &b.Credentials); err != nil {
			return b, fmt.Errorf("failed to parse binding credentials: %w", err)
		}
	}
	if m.Config != "" {
		if err := json.Unmarshal([]byte(m.Config), &b.Config); err != nil {
			return b, fmt.Errorf("failed to parse binding config: %w", err)
		}
	}
	return b, nil
}
