package channels

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/moveline/leadgate/core/config"
	domainChannel "github.com/moveline/leadgate/domains/channel"
	domainTenant "github.com/moveline/leadgate/domains/tenant"
)

type router struct {
	cfg      *config.Config
	registry domainTenant.IRegistry
	senders  map[string]domainChannel.ISender
}

// NewRouter dispatches outbound messages to the provider senders with the
// tenant's bound credentials, falling back to the globally configured
// accounts. registry may be nil in single-tenant deployments.
func NewRouter(cfg *config.Config, registry domainTenant.IRegistry) domainChannel.IRouter {
	return &router{
		cfg:      cfg,
		registry: registry,
		senders: map[string]domainChannel.ISender{
			domainChannel.ProviderTelegram: NewTelegramSender(),
			domainChannel.ProviderMeta:     NewMetaSender(),
			domainChannel.ProviderTwilio:   NewTwilioSender(),
		},
	}
}

func (r *router) Send(ctx context.Context, tenantID string, msg domainChannel.Message) error {
	provider := r.normalizeProvider(msg.Provider)
	sender, ok := r.senders[provider]
	if !ok {
		return fmt.Errorf("no sender for provider %s", msg.Provider)
	}

	creds := r.credsFor(ctx, tenantID, provider)
	if err := sender.Send(ctx, msg, creds); err != nil {
		return err
	}
	logrus.Infof("[CHANNEL] sent via %s: tenant=%s to=%s media=%d",
		provider, tenantID, MaskPhone(msg.To), len(msg.MediaURLs))
	return nil
}

// normalizeProvider maps the operator channel aliases onto provider names.
// "whatsapp" means whichever WhatsApp transport is configured, Twilio
// when its account is set, the Cloud API otherwise.
func (r *router) normalizeProvider(provider string) string {
	if provider != "whatsapp" {
		return provider
	}
	if r.cfg.Channels.TwilioAccountSID != "" {
		return domainChannel.ProviderTwilio
	}
	return domainChannel.ProviderMeta
}

func (r *router) credsFor(ctx context.Context, tenantID, provider string) domainChannel.Credentials {
	if r.registry != nil {
		if tc, err := r.registry.GetContext(ctx, tenantID); err == nil && tc != nil {
			if b, ok := tc.Channels[provider]; ok {
				return domainChannel.Credentials{
					Token:         b.Credentials["token"],
					AccountID:     b.Credentials["account_id"],
					PhoneNumberID: b.Credentials["phone_number_id"],
				}
			}
		}
	}
	return r.globalCreds(provider)
}

func (r *router) globalCreds(provider string) domainChannel.Credentials {
	ch := r.cfg.Channels
	switch provider {
	case domainChannel.ProviderTelegram:
		return domainChannel.Credentials{Token: ch.TelegramBotToken}
	case domainChannel.ProviderMeta:
		return domainChannel.Credentials{Token: ch.MetaAccessToken, PhoneNumberID: ch.MetaPhoneNumberID}
	case domainChannel.ProviderTwilio:
		return domainChannel.Credentials{
			Token:         ch.TwilioAuthToken,
			AccountID:     ch.TwilioAccountSID,
			PhoneNumberID: ch.TwilioFromNumber,
		}
	default:
		return domainChannel.Credentials{}
	}
}
