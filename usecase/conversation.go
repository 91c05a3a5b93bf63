package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moveline/leadgate/botengine/moving"
	"github.com/moveline/leadgate/core/config"
	domainConversation "github.com/moveline/leadgate/domains/conversation"
	domainInbound "github.com/moveline/leadgate/domains/inbound"
	domainLead "github.com/moveline/leadgate/domains/lead"
	domainSession "github.com/moveline/leadgate/domains/session"
	domainTenant "github.com/moveline/leadgate/domains/tenant"
	pkgError "github.com/moveline/leadgate/pkg/error"
	"github.com/moveline/leadgate/pkg/utils"
)

// DuplicateReply marks a result produced for an already-seen message id.
// Ingress handlers must not deliver it to the client.
const DuplicateReply = "(duplicate ignored)"

type conversationService struct {
	cfg       *config.Config
	sessions  domainSession.IStore
	leads     domainLead.IRepository
	inbound   domainInbound.IRepository
	finalizer domainLead.IFinalizer
	registry  domainTenant.IRegistry
}

// NewConversationService wires the inbound pipeline:
// dedup -> session load (TTL) -> engine step -> guarded upsert -> finalize.
// registry may be nil; engine options then come from the global config only.
func NewConversationService(
	cfg *config.Config,
	sessions domainSession.IStore,
	leads domainLead.IRepository,
	inbound domainInbound.IRepository,
	finalizer domainLead.IFinalizer,
	registry domainTenant.IRegistry,
) domainConversation.IUsecase {
	return &conversationService{
		cfg:       cfg,
		sessions:  sessions,
		leads:     leads,
		inbound:   inbound,
		finalizer: finalizer,
		registry:  registry,
	}
}

func (s *conversationService) ProcessInbound(ctx context.Context, msg domainConversation.InboundMessage) (domainConversation.Result, error) {
	msgID := msg.MessageID
	if msgID == "" {
		msgID = fmt.Sprintf("dev-%d", time.Now().UnixNano())
	}

	seen, err := s.inbound.SeenOrMark(ctx, msg.TenantID, msg.Provider, msgID, msg.ChatID)
	if err != nil {
		return domainConversation.Result{}, pkgError.InternalServerError(err.Error())
	}
	if seen {
		st, err := s.loadOrNewSession(ctx, msg.TenantID, msg.ChatID)
		if err != nil {
			return domainConversation.Result{}, err
		}
		logrus.Debugf("[CONVERSATION] duplicate message ignored: tenant=%s provider=%s msg=%s", msg.TenantID, msg.Provider, msgID)
		return domainConversation.Result{Reply: DuplicateReply, Step: st.Step, LeadID: st.LeadID}, nil
	}

	existing, err := s.sessions.Get(ctx, msg.TenantID, msg.ChatID)
	if err != nil {
		return domainConversation.Result{}, pkgError.InternalServerError(err.Error())
	}

	// Expired sessions are discarded so the chat starts over cleanly.
	if existing != nil && s.elapsed(existing) > s.sessionTTL() {
		if err := s.sessions.Delete(ctx, msg.TenantID, msg.ChatID); err != nil {
			return domainConversation.Result{}, pkgError.InternalServerError(err.Error())
		}
		existing = nil
	}

	st := existing
	var observedAt time.Time
	isStale := false
	if st == nil {
		st = s.newSession(msg.TenantID, msg.ChatID)
	} else {
		observedAt = st.UpdatedAt
		isStale = s.elapsed(st) > s.staleHintAfter()
	}
	originalStep := st.Step

	if !s.botEnabled(st.BotType) {
		return domainConversation.Result{}, pkgError.NotFoundError(fmt.Sprintf("bot %s is not enabled on this deployment", st.BotType))
	}

	// Contact info is captured once so operators can reach users on
	// providers where the chat id is not a phone number.
	if msg.SenderName != "" && st.Data.GetExt("sender_name") == "" {
		st.Data.SetExt("sender_name", msg.SenderName)
	}

	eng := s.engineFor(ctx, msg.TenantID)

	var reply string
	var done bool
	switch {
	case msg.Text != "":
		if p, ok := s.prefillFor(st, msg.Text); ok {
			reply = eng.ApplyPrefill(st, p)
		} else {
			reply, done = eng.HandleText(st, msg.Text)
		}
	case msg.Location != nil:
		reply = eng.HandleLocation(st, msg.Location.Latitude, msg.Location.Longitude, msg.Location.Name, msg.Location.Address)
	case len(msg.Media) > 0:
		reply = eng.HandleMedia(st)
	default:
		return domainConversation.Result{
			Reply:  "Sorry, I didn't receive any message content.",
			Step:   st.Step,
			LeadID: st.LeadID,
		}, nil
	}

	if err := s.sessions.Upsert(ctx, st, observedAt); err != nil {
		if errors.Is(err, domainSession.ErrConflict) {
			return domainConversation.Result{}, pkgError.ConflictError("concurrent session update, message will be retried")
		}
		return domainConversation.Result{}, pkgError.InternalServerError(err.Error())
	}

	if done && st.Step == moving.StepDone {
		payload := domainLead.Payload{
			TenantID: st.TenantID,
			LeadID:   st.LeadID,
			ChatID:   st.ChatID,
			BotType:  st.BotType,
			Step:     st.Step,
			Data:     st.Data,
		}
		if s.finalizer != nil {
			if err := s.finalizer.Finalize(ctx, st.TenantID, st.LeadID, st.ChatID, payload); err != nil {
				return domainConversation.Result{}, pkgError.InternalServerError(err.Error())
			}
		} else {
			if _, err := s.leads.Save(ctx, st.TenantID, st.LeadID, st.ChatID, payload); err != nil {
				return domainConversation.Result{}, pkgError.InternalServerError(err.Error())
			}
			if err := s.sessions.Delete(ctx, st.TenantID, st.ChatID); err != nil {
				return domainConversation.Result{}, pkgError.InternalServerError(err.Error())
			}
		}
	}

	// Long-inactive chats get a resume hint, unless the conversation just
	// (re)started anyway.
	if isStale && reply != "" && originalStep != moving.StepWelcome {
		reply = moving.GetText("hint_stale_resume", st.Language) + "\n\n" + reply
	}

	return domainConversation.Result{Reply: reply, Step: st.Step, LeadID: st.LeadID}, nil
}

// ResetChat deletes the session and the inbound dedup marks for a chat.
func (s *conversationService) ResetChat(ctx context.Context, tenantID, provider, chatID string) error {
	if err := s.sessions.Delete(ctx, tenantID, chatID); err != nil {
		return pkgError.InternalServerError(err.Error())
	}
	deleted, err := s.inbound.DeleteForChat(ctx, tenantID, provider, chatID)
	if err != nil {
		return pkgError.InternalServerError(err.Error())
	}
	logrus.Infof("[CONVERSATION] chat reset: tenant=%s chat=%s deleted_inbound=%d", tenantID, chatID, deleted)
	return nil
}

// SoftResetChat deletes the session only; saved leads and dedup marks stay.
func (s *conversationService) SoftResetChat(ctx context.Context, tenantID, chatID string) error {
	if err := s.sessions.Delete(ctx, tenantID, chatID); err != nil {
		return pkgError.InternalServerError(err.Error())
	}
	return nil
}

func (s *conversationService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.sessions.CleanupExpired(ctx, s.sessionTTL())
}

func (s *conversationService) loadOrNewSession(ctx context.Context, tenantID, chatID string) (*domainSession.State, error) {
	st, err := s.sessions.Get(ctx, tenantID, chatID)
	if err != nil {
		return nil, pkgError.InternalServerError(err.Error())
	}
	if st == nil {
		st = s.newSession(tenantID, chatID)
	}
	return st, nil
}

func (s *conversationService) newSession(tenantID, chatID string) *domainSession.State {
	return &domainSession.State{
		TenantID: tenantID,
		ChatID:   chatID,
		LeadID:   utils.NewLeadID(),
		BotType:  moving.BotType,
		Step:     moving.StepWelcome,
	}
}

// prefillFor only fires on the very first message of a session.
func (s *conversationService) prefillFor(st *domainSession.State, text string) (moving.Prefill, bool) {
	if st.Step != moving.StepWelcome && st.Step != "" {
		return moving.Prefill{}, false
	}
	return moving.ParseLandingPrefill(text)
}

// botEnabled checks the deployment's bot allowlist. An empty list enables
// every compiled-in bot.
func (s *conversationService) botEnabled(botType string) bool {
	if len(s.cfg.Bots.Enabled) == 0 {
		return true
	}
	for _, id := range s.cfg.Bots.Enabled {
		if id == botType {
			return true
		}
	}
	return false
}

// engineFor resolves the per-tenant knobs, falling back to the global
// configuration when the registry has nothing for the tenant.
func (s *conversationService) engineFor(ctx context.Context, tenantID string) *moving.Engine {
	opts := moving.Options{
		OperatorPhone:          s.cfg.Operator.Whatsapp,
		EstimateDisplayEnabled: s.cfg.Estimate.DisplayEnabled,
	}
	if s.registry != nil {
		if op := s.registry.OperatorConfig(ctx, tenantID); op.Whatsapp != "" {
			opts.OperatorPhone = op.Whatsapp
		}
		if tc, err := s.registry.GetContext(ctx, tenantID); err == nil && tc != nil {
			if v, ok := tc.Config["estimate_display_enabled"].(bool); ok {
				opts.EstimateDisplayEnabled = v
			}
		}
	}
	return moving.NewEngine(opts)
}

func (s *conversationService) elapsed(st *domainSession.State) time.Duration {
	if st.UpdatedAt.IsZero() {
		return 0
	}
	return time.Since(st.UpdatedAt.UTC())
}

func (s *conversationService) sessionTTL() time.Duration {
	hours := s.cfg.Session.TTLHours
	if hours <= 0 {
		hours = 48
	}
	return time.Duration(hours) * time.Hour
}

func (s *conversationService) staleHintAfter() time.Duration {
	minutes := s.cfg.Session.StaleHintMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}
