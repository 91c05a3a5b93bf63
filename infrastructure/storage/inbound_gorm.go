package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	domainInbound "github.com/moveline/leadgate/domains/inbound"
	"github.com/moveline/leadgate/infrastructure/valkey"
)

// dedupFastPathTTL bounds the valkey marks; the table itself keeps marks
// for as long as the chat lives.
const dedupFastPathTTL = 24 * time.Hour

type inboundRepo struct {
	db    *gorm.DB
	cache *valkey.Client // optional
}

// NewInboundRepository returns the gorm-backed inbound dedup store. cache
// may be nil; with it, hot duplicates short-circuit before the DB insert.
func NewInboundRepository(db *gorm.DB, cache *valkey.Client) domainInbound.IRepository {
	return &inboundRepo{db: db, cache: cache}
}

// SeenOrMark records the (tenant, provider, message_id) triple. The insert
// itself is the atomicity guarantee: a unique violation means another worker
// already marked it.
func (r *inboundRepo) SeenOrMark(ctx context.Context, tenantID, provider, messageID, chatID string) (bool, error) {
	if r.cache != nil {
		key := r.cache.Key("dedup", tenantID, provider, chatID, messageID)
		if seen, err := r.cache.MarkOnce(ctx, key, dedupFastPathTTL); err == nil && seen {
			return true, nil
		}
		// A cache error or a fresh mark both fall through to the table.
	}

	m := InboundModel{
		TenantID:  tenantID,
		Provider:  provider,
		MessageID: messageID,
		ChatID:    chatID,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to mark inbound message: %w", err)
	}
	return false, nil
}

func (r *inboundRepo) DeleteForChat(ctx context.Context, tenantID, provider, chatID string) (int64, error) {
	if r.cache != nil {
		// The fast-path marks must go with the rows or a reset chat would
		// still see its old message ids as duplicates.
		if err := r.cache.DeleteByPrefix(ctx, r.cache.Key("dedup", tenantID, provider, chatID)); err != nil {
			logrus.WithError(err).Warn("[STORE] failed to clear dedup fast-path marks")
		}
	}
	res := r.db.WithContext(ctx).
		Where("tenant_id = ? AND provider = ? AND chat_id = ?", tenantID, provider, chatID).
		Delete(&InboundModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete inbound marks: %w", res.Error)
	}
	return res.RowsAffected, nil
}
