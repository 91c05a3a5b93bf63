package lead

import (
	"context"
	"time"

	"github.com/moveline/leadgate/domains/session"
)

// Payload is the finalized lead snapshot persisted when a conversation
// reaches the done step.
type Payload struct {
	TenantID string           `json:"tenant_id"`
	LeadID   string           `json:"lead_id"`
	ChatID   string           `json:"chat_id"`
	BotType  string           `json:"bot_type"`
	Step     string           `json:"step"`
	Data     session.LeadData `json:"data"`
}

// Lead is a stored lead row. LeadSeq is the per-deployment monotonic
// number operators and crews refer to.
type Lead struct {
	TenantID  string
	LeadID    string
	ChatID    string
	LeadSeq   int64
	Payload   Payload
	CreatedAt time.Time
}

type IRepository interface {
	Save(ctx context.Context, tenantID, leadID, chatID string, payload Payload) (leadSeq int64, err error)
	Get(ctx context.Context, tenantID, leadID string) (*Lead, error)
	GetRecent(ctx context.Context, tenantID string, limit int) ([]Lead, error)
}

// IFinalizer runs when a lead completes: persist the lead, enqueue
// follow-up jobs, clear the session.
type IFinalizer interface {
	Finalize(ctx context.Context, tenantID, leadID, chatID string, payload Payload) error
}
