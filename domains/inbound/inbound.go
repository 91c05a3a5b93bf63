package inbound

import "context"

// IRepository is the inbound-message dedup store. SeenOrMark returns true
// when the (tenant, provider, message_id) triple was already recorded.
type IRepository interface {
	SeenOrMark(ctx context.Context, tenantID, provider, messageID, chatID string) (bool, error)
	DeleteForChat(ctx context.Context, tenantID, provider, chatID string) (int64, error)
}
