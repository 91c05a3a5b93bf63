package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moveline/leadgate/core/config"
	"github.com/moveline/leadgate/dispatch"
	domainChannel "github.com/moveline/leadgate/domains/channel"
	domainLead "github.com/moveline/leadgate/domains/lead"
	domainMedia "github.com/moveline/leadgate/domains/media"
	domainSession "github.com/moveline/leadgate/domains/session"
	domainTenant "github.com/moveline/leadgate/domains/tenant"
	"github.com/moveline/leadgate/integrations/translate"
)

// INotificationUsecase delivers finalized leads to the operator.
type INotificationUsecase interface {
	NotifyOperator(ctx context.Context, tenantID string, leadSeq int64, leadID, chatID string, payload domainLead.Payload) error
	NotifyCrewFallback(ctx context.Context, tenantID string, leadSeq int64, leadID string, payload domainLead.Payload) error
}

type notificationService struct {
	cfg        *config.Config
	registry   domainTenant.IRegistry
	router     domainChannel.IRouter
	mediaRepo  domainMedia.IRepository
	media      domainMedia.IUsecase
	translator translate.ITranslator
}

// NewNotificationService formats and sends operator notifications. The
// translator and media dependencies are optional.
func NewNotificationService(
	cfg *config.Config,
	registry domainTenant.IRegistry,
	router domainChannel.IRouter,
	mediaRepo domainMedia.IRepository,
	media domainMedia.IUsecase,
	translator translate.ITranslator,
) INotificationUsecase {
	return &notificationService{
		cfg:        cfg,
		registry:   registry,
		router:     router,
		mediaRepo:  mediaRepo,
		media:      media,
		translator: translator,
	}
}

func (s *notificationService) operatorConfig(ctx context.Context, tenantID string) domainTenant.OperatorConfig {
	if s.registry != nil {
		return s.registry.OperatorConfig(ctx, tenantID)
	}
	return domainTenant.OperatorConfig{
		Enabled:  s.cfg.Operator.NotificationsEnabled,
		Channel:  s.cfg.Operator.Channel,
		Whatsapp: s.cfg.Operator.Whatsapp,
	}
}

// NotifyOperator sends the full lead card. A disabled operator channel is
// a silent success so the job does not churn through retries.
func (s *notificationService) NotifyOperator(ctx context.Context, tenantID string, leadSeq int64, leadID, chatID string, payload domainLead.Payload) error {
	op := s.operatorConfig(ctx, tenantID)
	if !op.Enabled || op.Whatsapp == "" {
		logrus.Debugf("[NOTIFY] operator notifications disabled for tenant %s", tenantID)
		return nil
	}

	s.translatePayload(ctx, &payload)

	body := FormatLeadMessage(chatID, leadSeq, payload)

	var mediaURLs []string
	if payload.Data.PhotoCount > 0 && s.mediaRepo != nil && s.media != nil {
		assets, err := s.mediaRepo.GetForLead(ctx, tenantID, leadID, s.cfg.Operator.MaxInlineMedia)
		if err != nil {
			logrus.WithError(err).Warnf("[NOTIFY] failed to load media for lead %s", shortChat(leadID))
		}
		linkTTL := time.Duration(s.cfg.Media.LinkTTLHours) * time.Hour
		for _, a := range assets {
			mediaURLs = append(mediaURLs, s.media.SignedURL(s.cfg.App.BaseUrl, a, linkTTL))
		}
	}

	err := s.router.Send(ctx, tenantID, domainChannel.Message{
		Provider:  op.Channel,
		To:        op.Whatsapp,
		Text:      body,
		MediaURLs: mediaURLs,
	})
	if err != nil {
		return fmt.Errorf("operator notification failed for lead %s: %w", shortChat(leadID), err)
	}
	logrus.Infof("[NOTIFY] operator notified: tenant=%s lead=%s channel=%s", tenantID, shortChat(leadID), op.Channel)
	return nil
}

// NotifyCrewFallback sends the PII-safe crew block to the operator for
// manual forwarding to the crew group.
func (s *notificationService) NotifyCrewFallback(ctx context.Context, tenantID string, leadSeq int64, leadID string, payload domainLead.Payload) error {
	op := s.operatorConfig(ctx, tenantID)
	if !op.Enabled || op.Whatsapp == "" {
		return nil
	}

	lang := s.cfg.Operator.TargetLang
	if lang == "" {
		lang = "ru"
	}
	body := dispatch.FormatCrewMessage(leadSeq, leadID, payload, lang)

	err := s.router.Send(ctx, tenantID, domainChannel.Message{
		Provider: op.Channel,
		To:       op.Whatsapp,
		Text:     body,
	})
	if err != nil {
		return fmt.Errorf("crew fallback failed for lead %s: %w", shortChat(leadID), err)
	}
	logrus.Infof("[NOTIFY] crew fallback sent: tenant=%s lead=%s", tenantID, shortChat(leadID))
	return nil
}

// translatePayload fills the tr_* extension fields when translation is
// enabled and the client language differs from the operator's. Failures
// never block the notification.
func (s *notificationService) translatePayload(ctx context.Context, payload *domainLead.Payload) {
	if s.translator == nil || !s.cfg.Operator.TranslationEnabled {
		return
	}
	source := payload.Data.SessionLanguage
	if source == "" {
		source = "ru"
	}
	target := s.cfg.Operator.TargetLang
	if target == "" {
		target = "ru"
	}
	if source == target {
		return
	}

	fields := translate.Fields{
		CargoDescription: payload.Data.CargoDescription,
		AddrFrom:         payload.Data.AddrFrom,
		AddrTo:           payload.Data.AddrTo,
		DetailsFree:      payload.Data.DetailsFree,
	}
	out, err := s.translator.Translate(ctx, fields, source, target)
	if err != nil {
		logrus.WithError(err).Warn("[NOTIFY] lead translation failed")
		return
	}
	d := &payload.Data
	if out.CargoDescription != "" {
		d.SetExt("tr_cargo_description", out.CargoDescription)
	}
	if out.AddrFrom != "" {
		d.SetExt("tr_addr_from", out.AddrFrom)
	}
	if out.AddrTo != "" {
		d.SetExt("tr_addr_to", out.AddrTo)
	}
	if out.DetailsFree != "" {
		d.SetExt("tr_details_free", out.DetailsFree)
	}
	d.SetExt("translation_source_lang", source)
}

var operatorTimeWindows = map[string]string{
	"morning":   "утро (08:00–12:00)",
	"afternoon": "день (12:00–16:00)",
	"evening":   "вечер (16:00–20:00)",
	"flexible":  "время не определено",
}

var operatorExtras = map[string]string{
	"loaders":  "грузчики",
	"assembly": "сборка/разборка",
	"packing":  "упаковка",
}

// FormatLeadMessage renders the full operator card in Russian. Translated
// field values (tr_* extensions) replace the originals in the main body;
// the originals follow in a reference block.
func FormatLeadMessage(chatID string, leadSeq int64, p domainLead.Payload) string {
	d := p.Data

	contact := d.GetExt("sender_name")
	if contact == "" {
		contact = strings.TrimSpace(strings.TrimPrefix(chatID, "whatsapp:"))
	}

	tr := func(field, fallback string) string {
		if v := strings.TrimSpace(d.GetExt("tr_" + field)); v != "" {
			return v
		}
		return fallback
	}

	cargo := tr("cargo_description", d.CargoDescription)
	if cargo == "" {
		cargo = "не указано"
	}

	header := "📦 Новая заявка"
	if leadSeq > 0 {
		header = fmt.Sprintf("📦 Заявка #%d", leadSeq)
	}

	lines := []string{
		header,
		"📱 От: " + contact,
		"",
		"Статус: Получена\n",
		"Что везем: " + cargo + "\n",
		formatOperatorAddresses(d, tr),
	}

	if geo := formatGeoLines(d.GeoPoints); geo != "" {
		lines = append(lines, "\n📍 Геоточки:\n"+geo)
	}

	lines = append(lines,
		"\nДата: "+formatOperatorDate(d)+"\n",
		"Дополнительно: "+formatOperatorExtras(d.Extras)+"\n",
	)

	if est := d.Estimate; est != nil && (est.Min != 0 || est.Max != 0) && !d.EstimateSuppressed {
		lines = append(lines, fmt.Sprintf("💰 Оценка: %d–%d ₪", est.Min, est.Max))
	}

	if details := tr("details_free", d.DetailsFree); details != "" && details != "none" {
		lines = append(lines, "Комментарий: "+details+"\n")
	}

	if d.PhotoCount > 0 {
		lines = append(lines, fmt.Sprintf("📷 Фото: %d шт.\n", d.PhotoCount))
	}

	if block := formatOriginalsBlock(d); block != "" {
		lines = append(lines, block)
	}

	if d.SessionLanguage != "" && d.SessionLanguage != "ru" {
		names := map[string]string{"en": "English", "he": "עברית"}
		name := names[d.SessionLanguage]
		if name == "" {
			name = d.SessionLanguage
		}
		lines = append(lines, "\n🗣 Язык клиента: "+name)
	}

	return strings.Join(lines, "\n")
}

func formatOperatorAddresses(d domainSession.LeadData, tr func(string, string) string) string {
	floorSuffix := func(floor string) string {
		if floor == "" || floor == "—" {
			return ""
		}
		return " (этаж: " + floor + ")"
	}

	if len(d.Pickups) > 1 {
		var sb strings.Builder
		sb.WriteString("Адреса:\n")
		for i, p := range d.Pickups {
			addr := p.Addr
			if addr == "" {
				addr = "не указано"
			}
			sb.WriteString(fmt.Sprintf("  Забор %d: %s%s\n", i+1, addr, floorSuffix(p.Floor)))
		}
		delivery := tr("addr_to", d.AddrTo)
		if delivery == "" {
			delivery = "не указано"
		}
		sb.WriteString("  Доставка: " + delivery + floorSuffix(d.FloorTo))
		return sb.String()
	}

	pickup := tr("addr_from", d.AddrFrom)
	if pickup == "" {
		pickup = "не указано"
	}
	delivery := tr("addr_to", d.AddrTo)
	if delivery == "" {
		delivery = "не указано"
	}
	return "Адрес: " + pickup + floorSuffix(d.FloorFrom) + " → " + delivery + floorSuffix(d.FloorTo)
}

func formatOperatorDate(d domainSession.LeadData) string {
	window := d.TimeWindow
	switch {
	case strings.HasPrefix(window, "exact:"):
		window = "точное время: " + strings.TrimPrefix(window, "exact:")
	case operatorTimeWindows[window] != "":
		window = operatorTimeWindows[window]
	case window == "":
		window = "не указано"
	}
	if d.MoveDate != "" {
		return d.MoveDate + ", " + window
	}
	return window
}

func formatOperatorExtras(extras []string) string {
	if len(extras) == 0 {
		return "нет"
	}
	var parts []string
	for _, e := range extras {
		if e == "none" {
			continue
		}
		if l := operatorExtras[e]; l != "" {
			parts = append(parts, l)
		} else {
			parts = append(parts, e)
		}
	}
	if len(parts) == 0 {
		return "нет"
	}
	return strings.Join(parts, ", ")
}

func formatGeoLines(points map[string]domainSession.GeoPoint) string {
	if len(points) == 0 {
		return ""
	}
	keys := make([]string, 0, len(points))
	for k := range points {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, key := range keys {
		pt := points[key]
		label := strings.ReplaceAll(key, "_", " ")
		label = strings.ToUpper(label[:1]) + label[1:]
		link := fmt.Sprintf("https://maps.google.com/?q=%g,%g", pt.Lat, pt.Lon)
		addr := pt.Address
		if addr == "" {
			addr = pt.Name
		}
		if addr != "" {
			lines = append(lines, fmt.Sprintf("  %s: %s\n    %s", label, addr, link))
		} else {
			lines = append(lines, fmt.Sprintf("  %s: %s", label, link))
		}
	}
	return strings.Join(lines, "\n")
}

// formatOriginalsBlock shows the untranslated values so the operator can
// cross-reference the translation.
func formatOriginalsBlock(d domainSession.LeadData) string {
	source := d.GetExt("translation_source_lang")
	if source == "" {
		return ""
	}
	langLabels := map[string]string{"ru": "RU", "en": "EN", "he": "HE"}
	label := langLabels[source]
	if label == "" {
		label = strings.ToUpper(source)
	}

	type origField struct {
		key, label, value string
	}
	fields := []origField{
		{"cargo_description", "Груз", d.CargoDescription},
		{"addr_from", "Откуда", d.AddrFrom},
		{"addr_to", "Куда", d.AddrTo},
		{"details_free", "Комментарий", d.DetailsFree},
	}

	var lines []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) != "" && d.GetExt("tr_"+f.key) != "" {
			lines = append(lines, "  "+f.label+": "+f.value)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n🌐 Оригинал (" + label + "):\n" + strings.Join(lines, "\n")
}
