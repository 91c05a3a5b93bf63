package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domainMedia "github.com/moveline/leadgate/domains/media"
)

type mediaRepo struct {
	db *gorm.DB
}

// NewMediaRepository returns the gorm-backed media asset repository.
func NewMediaRepository(db *gorm.DB) domainMedia.IRepository {
	return &mediaRepo{db: db}
}

func (r *mediaRepo) Save(ctx context.Context, a domainMedia.Asset) error {
	m := MediaModel{
		ID:          a.ID,
		TenantID:    a.TenantID,
		LeadID:      a.LeadID,
		ChatID:      a.ChatID,
		Kind:        a.Kind,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		Width:       a.Width,
		Height:      a.Height,
		StorageKey:  a.StorageKey,
		CreatedAt:   a.CreatedAt,
		ExpiresAt:   a.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to save media asset: %w", err)
	}
	return nil
}

func (r *mediaRepo) Get(ctx context.Context, assetID string) (*domainMedia.Asset, error) {
	var m MediaModel
	err := r.db.WithContext(ctx).Where("id = ?", assetID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load media asset: %w", err)
	}
	a := assetFromModel(&m)
	return &a, nil
}

func (r *mediaRepo) GetForLead(ctx context.Context, tenantID, leadID string, limit int) ([]domainMedia.Asset, error) {
	if limit <= 0 {
		limit = 20
	}
	var models []MediaModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND lead_id = ?", tenantID, leadID).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list media assets: %w", err)
	}
	assets := make([]domainMedia.Asset, 0, len(models))
	for i := range models {
		assets = append(assets, assetFromModel(&models[i]))
	}
	return assets, nil
}

// DeleteExpired removes expired rows and returns them so the caller can
// also drop the stored bytes.
func (r *mediaRepo) DeleteExpired(ctx context.Context, now time.Time) ([]domainMedia.Asset, error) {
	var models []MediaModel
	err := r.db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expired media: %w", err)
	}
	if len(models) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&MediaModel{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete expired media: %w", err)
	}

	assets := make([]domainMedia.Asset, 0, len(models))
	for i := range models {
		assets = append(assets, assetFromModel(&models[i]))
	}
	return assets, nil
}

func assetFromModel(m *MediaModel) domainMedia.Asset {
	return domainMedia.Asset{
		ID:          m.ID,
		TenantID:    m.TenantID,
		LeadID:      m.LeadID,
		ChatID:      m.ChatID,
		Kind:        m.Kind,
		ContentType: m.ContentType,
		SizeBytes:   m.SizeBytes,
		Width:       m.Width,
		Height:      m.Height,
		StorageKey:  m.StorageKey,
		CreatedAt:   m.CreatedAt,
		ExpiresAt:   m.ExpiresAt,
	}
}
