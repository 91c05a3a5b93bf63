package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	domainSession "github.com/moveline/leadgate/domains/session"
)

type sessionRepo struct {
	db *gorm.DB
}

// NewSessionStore returns the gorm-backed session store.
func NewSessionStore(db *gorm.DB) domainSession.IStore {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Get(ctx context.Context, tenantID, chatID string) (*domainSession.State, error) {
	var m SessionModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND chat_id = ?", tenantID, chatID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return sessionFromModel(&m)
}

// Upsert writes the state guarded by the updated_at value the caller saw at
// load time. A zero observedAt means the caller believes the session is new.
func (r *sessionRepo) Upsert(ctx context.Context, st *domainSession.State, observedAt time.Time) error {
	data, err := json.Marshal(st.Data)
	if err != nil {
		return fmt.Errorf("failed to serialize session data: %w", err)
	}

	// Microsecond precision survives both drivers. The bump keeps two
	// writes in the same microsecond distinguishable.
	now := time.Now().UTC().Truncate(time.Microsecond)
	if !now.After(observedAt) {
		now = observedAt.Add(time.Microsecond)
	}
	st.UpdatedAt = now

	if observedAt.IsZero() {
		m := SessionModel{
			TenantID:  st.TenantID,
			ChatID:    st.ChatID,
			LeadID:    st.LeadID,
			BotType:   st.BotType,
			Step:      st.Step,
			Language:  st.Language,
			Data:      string(data),
			UpdatedAt: now,
		}
		if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
			if isUniqueViolation(err) {
				return domainSession.ErrConflict
			}
			return fmt.Errorf("failed to create session: %w", err)
		}
		return nil
	}

	res := r.db.WithContext(ctx).Model(&SessionModel{}).
		Where("tenant_id = ? AND chat_id = ? AND updated_at = ?", st.TenantID, st.ChatID, observedAt).
		Updates(map[string]any{
			"lead_id":    st.LeadID,
			"bot_type":   st.BotType,
			"step":       st.Step,
			"language":   st.Language,
			"data":       string(data),
			"updated_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domainSession.ErrConflict
	}
	return nil
}

func (r *sessionRepo) Delete(ctx context.Context, tenantID, chatID string) error {
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND chat_id = ?", tenantID, chatID).
		Delete(&SessionModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *sessionRepo) CleanupExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	res := r.db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Delete(&SessionModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func sessionFromModel(m *SessionModel) (*domainSession.State, error) {
	st := &domainSession.State{
		TenantID:  m.TenantID,
		ChatID:    m.ChatID,
		LeadID:    m.LeadID,
		BotType:   m.BotType,
		Step:      m.Step,
		Language:  m.Language,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Data != "" {
		if err := json.Unmarshal([]byte(m.Data), &st.Data); err != nil {
			return nil, fmt.Errorf("failed to parse session data: %w", err)
		}
	}
	return st, nil
}

// isUniqueViolation matches both the SQLite and Postgres wordings.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
