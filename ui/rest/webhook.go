package rest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/moveline/leadgate/core/config"
	domainChannel "github.com/moveline/leadgate/domains/channel"
	domainConversation "github.com/moveline/leadgate/domains/conversation"
	domainJob "github.com/moveline/leadgate/domains/job"
	domainTenant "github.com/moveline/leadgate/domains/tenant"
	"github.com/moveline/leadgate/pkg/utils"
	"github.com/moveline/leadgate/usecase"
)

type Webhook struct {
	Cfg          *config.Config
	Conversation domainConversation.IUsecase
	Queue        domainJob.IQueue
	Registry     domainTenant.IRegistry
}

// InitRestWebhook registers the provider ingress endpoints. These stay
// outside the basic-auth API group; providers authenticate through their
// own verify tokens and signatures.
func InitRestWebhook(app fiber.Router, cfg *config.Config, conv domainConversation.IUsecase, queue domainJob.IQueue, registry domainTenant.IRegistry) Webhook {
	handler := Webhook{Cfg: cfg, Conversation: conv, Queue: queue, Registry: registry}

	app.Post("/webhook/telegram/:account?", handler.Telegram)
	app.Get("/webhook/meta", handler.MetaVerify)
	app.Post("/webhook/meta", handler.Meta)
	app.Post("/webhook/twilio", handler.Twilio)

	return handler
}

type telegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		MessageID int64 `json:"message_id"`
		From      *struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Username  string `json:"username"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text     string `json:"text"`
		Caption  string `json:"caption"`
		Photo    []struct {
			FileID string `json:"file_id"`
		} `json:"photo"`
		Location *struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
	} `json:"message"`
}

func (h *Webhook) Telegram(c *fiber.Ctx) error {
	var update telegramUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ResponseData{
			Status: 400, Code: "BAD_REQUEST", Message: "invalid telegram update",
		})
	}
	if update.Message == nil {
		// Edited messages, channel posts and other update kinds are ignored.
		return c.JSON(utils.ResponseData{Status: 200, Code: "IGNORED", Message: "unsupported update"})
	}

	tenantID := h.resolveTenant(c, domainChannel.ProviderTelegram, c.Params("account"))

	m := update.Message
	msg := domainConversation.InboundMessage{
		TenantID:   tenantID,
		Provider:   domainChannel.ProviderTelegram,
		MessageID:  strconv.FormatInt(m.MessageID, 10),
		ChatID:     strconv.FormatInt(m.Chat.ID, 10),
		SenderName: telegramSenderName(m.From),
		Text:       m.Text,
	}
	if msg.Text == "" {
		msg.Text = m.Caption
	}
	if m.Location != nil {
		msg.Location = &domainConversation.Location{
			Latitude:  m.Location.Latitude,
			Longitude: m.Location.Longitude,
		}
	}
	if len(m.Photo) > 0 {
		// Telegram sends one photo in several resolutions, the last entry
		// is the largest.
		msg.Media = append(msg.Media, domainConversation.Media{
			ProviderID: m.Photo[len(m.Photo)-1].FileID,
		})
	}

	return h.process(c, msg)
}

func telegramSenderName(from *struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}) string {
	if from == nil {
		return ""
	}
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if name == "" {
		name = from.Username
	}
	return name
}

// MetaVerify answers the Cloud API subscription handshake.
func (h *Webhook) MetaVerify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	if mode == "subscribe" && token != "" && token == h.Cfg.Channels.MetaVerifyToken {
		return c.SendString(c.Query("hub.challenge"))
	}
	return c.SendStatus(fiber.StatusForbidden)
}

type metaWebhook struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Metadata struct {
					PhoneNumberID string `json:"phone_number_id"`
				} `json:"metadata"`
				Contacts []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
					WaID string `json:"wa_id"`
				} `json:"contacts"`
				Messages []struct {
					From string `json:"from"`
					ID   string `json:"id"`
					Type string `json:"type"`
					Text *struct {
						Body string `json:"body"`
					} `json:"text"`
					Image *struct {
						ID       string `json:"id"`
						MimeType string `json:"mime_type"`
						Caption  string `json:"caption"`
					} `json:"image"`
					Location *struct {
						Latitude  float64 `json:"latitude"`
						Longitude float64 `json:"longitude"`
						Name      string  `json:"name"`
						Address   string  `json:"address"`
					} `json:"location"`
					Button *struct {
						Text    string `json:"text"`
						Payload string `json:"payload"`
					} `json:"button"`
					Interactive *struct {
						ButtonReply *struct {
							ID    string `json:"id"`
							Title string `json:"title"`
						} `json:"button_reply"`
					} `json:"interactive"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

func (h *Webhook) Meta(c *fiber.Ctx) error {
	var hook metaWebhook
	if err := c.BodyParser(&hook); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ResponseData{
			Status: 400, Code: "BAD_REQUEST", Message: "invalid meta webhook",
		})
	}

	var last domainConversation.Result
	for _, entry := range hook.Entry {
		for _, change := range entry.Changes {
			v := change.Value
			tenantID := h.resolveTenant(c, domainChannel.ProviderMeta, v.Metadata.PhoneNumberID)
			senderName := ""
			if len(v.Contacts) > 0 {
				senderName = v.Contacts[0].Profile.Name
			}
			for _, m := range v.Messages {
				msg := domainConversation.InboundMessage{
					TenantID:   tenantID,
					Provider:   domainChannel.ProviderMeta,
					MessageID:  m.ID,
					ChatID:     m.From,
					SenderName: senderName,
				}
				switch {
				case m.Text != nil:
					msg.Text = m.Text.Body
				case m.Button != nil:
					// Template button replies carry the payload as the step
					// input.
					msg.Text = m.Button.Payload
					if msg.Text == "" {
						msg.Text = m.Button.Text
					}
				case m.Interactive != nil && m.Interactive.ButtonReply != nil:
					msg.Text = m.Interactive.ButtonReply.ID
					if msg.Text == "" {
						msg.Text = m.Interactive.ButtonReply.Title
					}
				case m.Location != nil:
					msg.Location = &domainConversation.Location{
						Latitude:  m.Location.Latitude,
						Longitude: m.Location.Longitude,
						Name:      m.Location.Name,
						Address:   m.Location.Address,
					}
				case m.Image != nil:
					msg.Media = append(msg.Media, domainConversation.Media{
						ProviderID:  m.Image.ID,
						ContentType: m.Image.MimeType,
					})
					msg.Text = m.Image.Caption
				}
				result, err := h.handleInbound(c, msg)
				utils.PanicIfNeeded(err)
				last = result
			}
		}
	}

	return c.JSON(utils.ResponseData{
		Status: 200, Code: "SUCCESS", Message: "Webhook processed", Results: last,
	})
}

func (h *Webhook) Twilio(c *fiber.Ctx) error {
	chatID := c.FormValue("From")
	if chatID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ResponseData{
			Status: 400, Code: "BAD_REQUEST", Message: "missing From",
		})
	}

	tenantID := h.resolveTenant(c, domainChannel.ProviderTwilio, c.FormValue("AccountSid"))

	msg := domainConversation.InboundMessage{
		TenantID:   tenantID,
		Provider:   domainChannel.ProviderTwilio,
		MessageID:  c.FormValue("MessageSid"),
		ChatID:     chatID,
		SenderName: c.FormValue("ProfileName"),
		Text:       c.FormValue("Body"),
	}

	if lat, lon := c.FormValue("Latitude"), c.FormValue("Longitude"); lat != "" && lon != "" {
		latF, errLat := strconv.ParseFloat(lat, 64)
		lonF, errLon := strconv.ParseFloat(lon, 64)
		if errLat == nil && errLon == nil {
			msg.Location = &domainConversation.Location{Latitude: latF, Longitude: lonF}
			msg.Text = ""
		}
	}

	numMedia, _ := strconv.Atoi(c.FormValue("NumMedia", "0"))
	for i := 0; i < numMedia; i++ {
		msg.Media = append(msg.Media, domainConversation.Media{
			URL:         c.FormValue(fmt.Sprintf("MediaUrl%d", i)),
			ContentType: c.FormValue(fmt.Sprintf("MediaContentType%d", i)),
		})
	}

	return h.process(c, msg)
}

func (h *Webhook) process(c *fiber.Ctx, msg domainConversation.InboundMessage) error {
	result, err := h.handleInbound(c, msg)
	utils.PanicIfNeeded(err)
	return c.JSON(utils.ResponseData{
		Status: 200, Code: "SUCCESS", Message: "Webhook processed", Results: result,
	})
}

// handleInbound runs the conversation pipeline and enqueues the follow-up
// delivery and media jobs. The reply goes out through the queue so a slow
// provider API never blocks the webhook response.
func (h *Webhook) handleInbound(c *fiber.Ctx, msg domainConversation.InboundMessage) (domainConversation.Result, error) {
	ctx := c.UserContext()
	result, err := h.Conversation.ProcessInbound(ctx, msg)
	if err != nil {
		return result, err
	}
	if result.Reply == usecase.DuplicateReply {
		return result, nil
	}

	if result.Reply != "" {
		_, err = h.Queue.Enqueue(ctx, msg.TenantID, domainJob.TypeOutboundReply, map[string]any{
			"provider": msg.Provider,
			"chat_id":  msg.ChatID,
			"text":     result.Reply,
		}, domainJob.EnqueueOptions{
			Priority:       5,
			IdempotencyKey: msg.Provider + ":" + msg.MessageID + ":reply",
		})
		if err != nil {
			logrus.WithError(err).Error("[WEBHOOK] failed to enqueue outbound reply")
		}
	}

	if len(msg.Media) > 0 {
		items := make([]map[string]any, 0, len(msg.Media))
		for _, m := range msg.Media {
			items = append(items, map[string]any{
				"url":          m.URL,
				"provider_id":  m.ProviderID,
				"content_type": m.ContentType,
			})
		}
		_, err = h.Queue.Enqueue(ctx, msg.TenantID, domainJob.TypeProcessMedia, map[string]any{
			"provider":   msg.Provider,
			"lead_id":    result.LeadID,
			"chat_id":    msg.ChatID,
			"message_id": msg.MessageID,
			"items":      items,
		}, domainJob.EnqueueOptions{
			IdempotencyKey: msg.Provider + ":" + msg.MessageID + ":media",
		})
		if err != nil {
			logrus.WithError(err).Error("[WEBHOOK] failed to enqueue media processing")
		}
	}

	return result, nil
}

// resolveTenant maps a provider account to a tenant, falling back to the
// configured single-tenant id when the registry cannot place it.
func (h *Webhook) resolveTenant(c *fiber.Ctx, provider, accountID string) string {
	if h.Registry != nil {
		if tc, err := h.Registry.Resolve(c.UserContext(), provider, accountID); err == nil && tc != nil {
			return tc.TenantID
		}
	}
	return h.Cfg.App.TenantID
}
