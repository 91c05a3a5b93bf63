package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	domainChannel "github.com/moveline/leadgate/domains/channel"
	domainJob "github.com/moveline/leadgate/domains/job"
	domainLead "github.com/moveline/leadgate/domains/lead"
	domainMedia "github.com/moveline/leadgate/domains/media"
)

// JobHandlers binds the queue job types to their use-case implementations.
type JobHandlers struct {
	router        domainChannel.IRouter
	media         domainMedia.IUsecase
	notifications INotificationUsecase
}

func NewJobHandlers(
	router domainChannel.IRouter,
	media domainMedia.IUsecase,
	notifications INotificationUsecase,
) *JobHandlers {
	return &JobHandlers{
		router:        router,
		media:         media,
		notifications: notifications,
	}
}

// Registrar is the subset of the worker pool the handlers need.
type Registrar interface {
	Register(jobType string, h domainJob.Handler)
}

// RegisterAll wires every handled job type onto the pool. Pools running a
// restricted role simply never claim the other types.
func (h *JobHandlers) RegisterAll(p Registrar) {
	p.Register(domainJob.TypeOutboundReply, h.HandleOutboundReply)
	p.Register(domainJob.TypeProcessMedia, h.HandleProcessMedia)
	p.Register(domainJob.TypeNotifyOperator, h.HandleNotifyOperator)
	p.Register(domainJob.TypeNotifyCrew, h.HandleNotifyCrew)
	p.Register(domainJob.TypeMediaCleanup, h.HandleMediaCleanup)
}

type outboundReplyPayload struct {
	Provider string `json:"provider"`
	ChatID   string `json:"chat_id"`
	Text     string `json:"text"`
}

// HandleOutboundReply delivers a bot reply back to the client chat.
func (h *JobHandlers) HandleOutboundReply(ctx context.Context, j domainJob.Job) error {
	var p outboundReplyPayload
	if err := decodePayload(j.Payload, &p); err != nil {
		return err
	}
	if p.Text == "" {
		logrus.Debugf("[JOBS] outbound_reply with empty text, skipping: job=%s", j.ID)
		return nil
	}
	return h.router.Send(ctx, j.TenantID, domainChannel.Message{
		Provider: p.Provider,
		To:       p.ChatID,
		Text:     p.Text,
	})
}

type processMediaPayload struct {
	Provider  string `json:"provider"`
	LeadID    string `json:"lead_id"`
	ChatID    string `json:"chat_id"`
	MessageID string `json:"message_id"`
	Items     []struct {
		URL         string `json:"url"`
		ProviderID  string `json:"provider_id"`
		ContentType string `json:"content_type"`
	} `json:"items"`
}

// HandleProcessMedia downloads and stores every media item of one inbound
// message. The first bad item fails the whole job; expired duplicates from
// a retry fall out with the regular media cleanup.
func (h *JobHandlers) HandleProcessMedia(ctx context.Context, j domainJob.Job) error {
	var p processMediaPayload
	if err := decodePayload(j.Payload, &p); err != nil {
		return err
	}
	for _, item := range p.Items {
		_, err := h.media.ProcessAndSave(ctx, domainMedia.Item{
			URL:         item.URL,
			ProviderID:  item.ProviderID,
			ContentType: item.ContentType,
		}, j.TenantID, p.LeadID, p.ChatID, p.Provider, p.MessageID)
		if err != nil {
			return fmt.Errorf("media item failed: %w", err)
		}
	}
	return nil
}

type notifyPayload struct {
	LeadID  string             `json:"lead_id"`
	ChatID  string             `json:"chat_id"`
	LeadSeq int64              `json:"lead_seq"`
	Payload domainLead.Payload `json:"payload"`
}

func (h *JobHandlers) HandleNotifyOperator(ctx context.Context, j domainJob.Job) error {
	var p notifyPayload
	if err := decodePayload(j.Payload, &p); err != nil {
		return err
	}
	return h.notifications.NotifyOperator(ctx, j.TenantID, p.LeadSeq, p.LeadID, p.ChatID, p.Payload)
}

func (h *JobHandlers) HandleNotifyCrew(ctx context.Context, j domainJob.Job) error {
	var p notifyPayload
	if err := decodePayload(j.Payload, &p); err != nil {
		return err
	}
	return h.notifications.NotifyCrewFallback(ctx, j.TenantID, p.LeadSeq, p.LeadID, p.Payload)
}

func (h *JobHandlers) HandleMediaCleanup(ctx context.Context, j domainJob.Job) error {
	removed, err := h.media.Cleanup(ctx)
	if err != nil {
		return err
	}
	logrus.Debugf("[JOBS] media cleanup removed %d assets: job=%s", removed, j.ID)
	return nil
}

// decodePayload round-trips the stored payload map into a typed struct.
func decodePayload(payload map[string]any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("invalid job payload: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid job payload: %w", err)
	}
	return nil
}
