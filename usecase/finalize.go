package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moveline/leadgate/core/config"
	domainJob "github.com/moveline/leadgate/domains/job"
	domainLead "github.com/moveline/leadgate/domains/lead"
	domainSession "github.com/moveline/leadgate/domains/session"
	domainTenant "github.com/moveline/leadgate/domains/tenant"
	"github.com/moveline/leadgate/ui/websocket"
)

type leadFinalizer struct {
	cfg      *config.Config
	leads    domainLead.IRepository
	sessions domainSession.IStore
	queue    domainJob.IQueue
	registry domainTenant.IRegistry
}

// NewLeadFinalizer persists a completed lead, clears its session, and
// enqueues the follow-up notification jobs.
func NewLeadFinalizer(
	cfg *config.Config,
	leads domainLead.IRepository,
	sessions domainSession.IStore,
	queue domainJob.IQueue,
	registry domainTenant.IRegistry,
) domainLead.IFinalizer {
	return &leadFinalizer{
		cfg:      cfg,
		leads:    leads,
		sessions: sessions,
		queue:    queue,
		registry: registry,
	}
}

func (f *leadFinalizer) Finalize(ctx context.Context, tenantID, leadID, chatID string, payload domainLead.Payload) error {
	leadSeq, err := f.leads.Save(ctx, tenantID, leadID, chatID, payload)
	if err != nil {
		return fmt.Errorf("failed to save lead: %w", err)
	}
	// The sequence number travels with the payload so notification jobs
	// can render "Заявка #N" without another lookup.
	payload.Data.SetExt("lead_number", strconv.FormatInt(leadSeq, 10))

	if err := f.sessions.Delete(ctx, tenantID, chatID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	jobPayload := map[string]any{
		"lead_id":  leadID,
		"chat_id":  chatID,
		"lead_seq": leadSeq,
		"payload":  payload,
	}

	if _, err := f.queue.Enqueue(ctx, tenantID, domainJob.TypeNotifyOperator, jobPayload, domainJob.EnqueueOptions{
		Priority:       10,
		MaxAttempts:    5,
		IdempotencyKey: leadID + ":notify_operator_v1",
	}); err != nil {
		return fmt.Errorf("failed to enqueue operator notification: %w", err)
	}

	crewEnabled := f.cfg.Dispatch.CrewFallbackEnabled
	if f.registry != nil {
		crewEnabled = f.registry.DispatchConfig(ctx, tenantID).CrewFallbackEnabled
	}
	if crewEnabled {
		delay := time.Duration(f.cfg.Dispatch.CrewFallbackDelayMs) * time.Millisecond
		if delay <= 0 {
			delay = 2 * time.Second
		}
		// Delayed so the full operator notification lands first.
		if _, err := f.queue.Enqueue(ctx, tenantID, domainJob.TypeNotifyCrew, map[string]any{
			"lead_id":  leadID,
			"lead_seq": leadSeq,
			"payload":  payload,
		}, domainJob.EnqueueOptions{
			MaxAttempts:    3,
			Delay:          delay,
			IdempotencyKey: leadID + ":crew_fallback_v1",
		}); err != nil {
			return fmt.Errorf("failed to enqueue crew fallback: %w", err)
		}
	}

	websocket.Notify(websocket.EventLeadFinalized, fmt.Sprintf("Lead #%d finalized", leadSeq), tenantID, map[string]any{
		"lead_id":  leadID,
		"lead_seq": leadSeq,
	})

	logrus.Infof("[FINALIZER] lead finalized: tenant=%s lead=%s seq=%d", tenantID, shortChat(leadID), leadSeq)
	return nil
}

func shortChat(id string) string {
	if len(id) > 8 {
		return id[:8] + "***"
	}
	return id
}
