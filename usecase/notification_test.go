package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moveline/leadgate/core/config"
	domainChannel "github.com/moveline/leadgate/domains/channel"
	domainLead "github.com/moveline/leadgate/domains/lead"
	domainSession "github.com/moveline/leadgate/domains/session"
)

type recordingRouter struct {
	sent []domainChannel.Message
}

func (r *recordingRouter) Send(_ context.Context, _ string, msg domainChannel.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func operatorTestConfig() *config.Config {
	cfg := testConfig()
	cfg.Operator.NotificationsEnabled = true
	cfg.Operator.Channel = "whatsapp"
	cfg.Operator.Whatsapp = "whatsapp:+972500000000"
	cfg.Operator.TargetLang = "ru"
	return cfg
}

func TestNotifyOperatorSendsCard(t *testing.T) {
	router := &recordingRouter{}
	svc := NewNotificationService(operatorTestConfig(), nil, router, nil, nil, nil)

	payload := domainLead.Payload{
		Data: domainSession.LeadData{
			CargoDescription: "диван и 10 коробок",
			AddrFrom:         "Тель-Авив, Дизенгоф 1",
			AddrTo:           "Хайфа, Герцль 5",
			MoveDate:         "2026-09-01",
			TimeWindow:       "morning",
		},
	}
	require.NoError(t, svc.NotifyOperator(context.Background(), "default", 7, "lead-1", "chat-1", payload))

	require.Len(t, router.sent, 1)
	msg := router.sent[0]
	assert.Equal(t, "whatsapp", msg.Provider)
	assert.Equal(t, "whatsapp:+972500000000", msg.To)
	assert.Contains(t, msg.Text, "Заявка #7")
	assert.Contains(t, msg.Text, "диван и 10 коробок")
	assert.Contains(t, msg.Text, "утро (08:00–12:00)")
}

func TestNotifyOperatorDisabledIsSilentSuccess(t *testing.T) {
	cfg := operatorTestConfig()
	cfg.Operator.NotificationsEnabled = false

	router := &recordingRouter{}
	svc := NewNotificationService(cfg, nil, router, nil, nil, nil)

	require.NoError(t, svc.NotifyOperator(context.Background(), "default", 1, "lead-1", "chat-1", domainLead.Payload{}))
	assert.Empty(t, router.sent)
}

func TestFormatLeadMessageBasics(t *testing.T) {
	data := domainSession.LeadData{
		CargoDescription: "шкаф",
		AddrFrom:         "ул. А 1",
		AddrTo:           "ул. Б 2",
		FloorFrom:        "3",
		FloorTo:          "1",
		MoveDate:         "2026-09-15",
		TimeWindow:       "evening",
		Extras:           []string{"loaders", "packing"},
		PhotoCount:       2,
		Estimate:         &domainSession.Estimate{Min: 1200, Max: 1600, Currency: "ILS"},
	}
	data.SetExt("sender_name", "Дана")

	text := FormatLeadMessage("chat-1", 42, domainLead.Payload{Data: data})

	assert.Contains(t, text, "📦 Заявка #42")
	assert.Contains(t, text, "От: Дана")
	assert.Contains(t, text, "ул. А 1 (этаж: 3) → ул. Б 2 (этаж: 1)")
	assert.Contains(t, text, "2026-09-15, вечер (16:00–20:00)")
	assert.Contains(t, text, "грузчики, упаковка")
	assert.Contains(t, text, "💰 Оценка: 1200–1600 ₪")
	assert.Contains(t, text, "📷 Фото: 2 шт.")
}

func TestFormatLeadMessageSuppressedEstimate(t *testing.T) {
	data := domainSession.LeadData{
		Estimate:           &domainSession.Estimate{Min: 1000, Max: 1400},
		EstimateSuppressed: true,
	}
	text := FormatLeadMessage("chat-1", 1, domainLead.Payload{Data: data})
	assert.NotContains(t, text, "💰 Оценка")
}

func TestFormatLeadMessageMultiPickup(t *testing.T) {
	data := domainSession.LeadData{
		Pickups: []domainSession.Pickup{
			{Addr: "Адрес 1", Floor: "2"},
			{Addr: "Адрес 2", Floor: ""},
		},
		AddrTo: "Финиш 9",
	}
	text := FormatLeadMessage("chat-1", 0, domainLead.Payload{Data: data})

	assert.Contains(t, text, "📦 Новая заявка")
	assert.Contains(t, text, "Забор 1: Адрес 1 (этаж: 2)")
	assert.Contains(t, text, "Забор 2: Адрес 2")
	assert.Contains(t, text, "Доставка: Финиш 9")
}

func TestFormatLeadMessageTranslatedFieldsWithOriginals(t *testing.T) {
	data := domainSession.LeadData{
		CargoDescription: "ספה ושולחן",
		AddrFrom:         "תל אביב",
		AddrTo:           "חיפה",
		SessionLanguage:  "he",
	}
	data.SetExt("tr_cargo_description", "диван и стол")
	data.SetExt("tr_addr_from", "Тель-Авив")
	data.SetExt("tr_addr_to", "Хайфа")
	data.SetExt("translation_source_lang", "he")

	text := FormatLeadMessage("chat-1", 3, domainLead.Payload{Data: data})

	assert.Contains(t, text, "Что везем: диван и стол")
	assert.Contains(t, text, "Тель-Авив")
	assert.Contains(t, text, "🌐 Оригинал (HE):")
	assert.Contains(t, text, "ספה ושולחן")
	assert.Contains(t, text, "🗣 Язык клиента: עברית")
}

func TestFormatLeadMessageGeoPoints(t *testing.T) {
	data := domainSession.LeadData{
		GeoPoints: map[string]domainSession.GeoPoint{
			"addr_from": {Lat: 32.08, Lon: 34.78, Address: "Dizengoff 1, Tel Aviv"},
		},
	}
	text := FormatLeadMessage("chat-1", 1, domainLead.Payload{Data: data})

	assert.Contains(t, text, "📍 Геоточки:")
	assert.Contains(t, text, "Dizengoff 1, Tel Aviv")
	assert.Contains(t, text, "https://maps.google.com/?q=32.08,34.78")
}
