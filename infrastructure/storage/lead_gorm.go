package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domainLead "github.com/moveline/leadgate/domains/lead"
)

type leadRepo struct {
	db *gorm.DB
}

// NewLeadRepository returns the gorm-backed lead repository.
func NewLeadRepository(db *gorm.DB) domainLead.IRepository {
	return &leadRepo{db: db}
}

// Save persists the finalized lead and returns its sequence number. Saving
// the same lead twice returns the existing sequence so finalize retries stay
// idempotent.
func (r *leadRepo) Save(ctx context.Context, tenantID, leadID, chatID string, payload domainLead.Payload) (int64, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize lead payload: %w", err)
	}

	m := LeadModel{
		TenantID: tenantID,
		LeadID:   leadID,
		ChatID:   chatID,
		Payload:  string(data),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			var existing LeadModel
			lookupErr := r.db.WithContext(ctx).
				Where("tenant_id = ? AND lead_id = ?", tenantID, leadID).
				First(&existing).Error
			if lookupErr != nil {
				return 0, fmt.Errorf("failed to load existing lead: %w", lookupErr)
			}
			return existing.LeadSeq, nil
		}
		return 0, fmt.Errorf("failed to save lead: %w", err)
	}
	return m.LeadSeq, nil
}

func (r *leadRepo) Get(ctx context.Context, tenantID, leadID string) (*domainLead.Lead, error) {
	var m LeadModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND lead_id = ?", tenantID, leadID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}
	return leadFromModel(&m)
}

func (r *leadRepo) GetRecent(ctx context.Context, tenantID string, limit int) ([]domainLead.Lead, error) {
	if limit <= 0 {
		limit = 20
	}
	var models []LeadModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	leads := make([]domainLead.Lead, 0, len(models))
	for i := range models {
		l, err := leadFromModel(&models[i])
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, nil
}

func leadFromModel(m *LeadModel) (*domainLead.Lead, error) {
	l := &domainLead.Lead{
		TenantID:  m.TenantID,
		LeadID:    m.LeadID,
		ChatID:    m.ChatID,
		LeadSeq:   m.LeadSeq,
		CreatedAt: m.CreatedAt,
	}
	if m.Payload != "" {
		if err := json.Unmarshal([]byte(m.Payload), &l.Payload); err != nil {
			return nil, fmt.Errorf("failed to parse lead payload: %w", err)
		}
	}
	return l, nil
}
