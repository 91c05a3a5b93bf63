package dispatch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moveline/leadgate/domains/lead"
	"github.com/moveline/leadgate/domains/session"
)

func sampleLead() lead.Payload {
	return lead.Payload{
		TenantID: "acme",
		LeadID:   "0a1b2c3d4e5f",
		ChatID:   "whatsapp:972500000001",
		Step:     "done",
		Data: session.LeadData{
			CargoItems: []session.ItemCount{
				{Key: "sofa_3seat", Qty: 1},
				{Key: "box_standard", Qty: 10},
			},
			VolumeCategory: "medium",
			PickupCount:    1,
			Pickups:        []session.Pickup{{Addr: "Хайфа, ул. Герцль 10", Floor: "3 этаж без лифта"}},
			AddrFrom:       "Хайфа, ул. Герцль 10",
			AddrTo:         "Тель-Авив, Дизенгоф 5",
			FloorFrom:      "3 этаж без лифта",
			FloorTo:        "2 этаж, есть лифт",
			MoveDate:       "2026-03-25",
			TimeWindow:     "morning",
			Extras:         []string{"loaders"},
			Estimate:       &session.Estimate{Min: 1160, Max: 1570, Currency: "ILS"},
		},
	}
}

func TestFormatCrewMessageBasic(t *testing.T) {
	msg := FormatCrewMessage(42, "0a1b2c3d4e5f", sampleLead(), "ru")

	assert.Contains(t, msg, "🧰 Заказ #42")
	assert.Contains(t, msg, "Маршрут: Хайфа → Тель-Авив")
	assert.Contains(t, msg, "Дата: 2026-03-25, утро (08:00–12:00)")
	assert.Contains(t, msg, "Объём: средний (1–3 м³)")
	assert.Contains(t, msg, "Этажи: 3 (без лифта) → 2 (есть лифт)")
	assert.Contains(t, msg, "Вещи: Диван (3-местный), Коробка ×10")
	assert.Contains(t, msg, "Услуги: грузчики")
	assert.Contains(t, msg, "Оценка: ₪1160–₪1570")
}

func TestFormatCrewMessageHidesStreetAddresses(t *testing.T) {
	msg := FormatCrewMessage(42, "", sampleLead(), "ru")
	assert.NotContains(t, msg, "Герцль")
	assert.NotContains(t, msg, "Дизенгоф")
	assert.NotContains(t, msg, "972500000001")
}

func TestFormatCrewMessageFallbackLeadID(t *testing.T) {
	msg := FormatCrewMessage(0, "0a1b2c3d4e5f", sampleLead(), "ru")
	assert.Contains(t, msg, "#0a1b2c3d")
}

func TestFormatCrewMessageEnglish(t *testing.T) {
	msg := FormatCrewMessage(7, "", sampleLead(), "en")
	assert.Contains(t, msg, "Job #7")
	assert.Contains(t, msg, "Route: Haifa → Tel Aviv - Yafo")
	assert.Contains(t, msg, "Volume: medium (1–3 m³)")
	assert.Contains(t, msg, "Services: movers")
}

func TestFormatCrewMessageMultiPickup(t *testing.T) {
	p := sampleLead()
	p.Data.PickupCount = 2
	p.Data.Pickups = []session.Pickup{
		{Addr: "Хайфа", Floor: "3 этаж без лифта"},
		{Addr: "Кирьят-Ата", Floor: "частный дом"},
	}

	msg := FormatCrewMessage(42, "", p, "ru")
	assert.Contains(t, msg, "Хайфа → Кирьят-Ата → Тель-Авив")
	assert.Contains(t, msg, "Забор 1: 3 (без лифта)")
	assert.Contains(t, msg, "Забор 2: 1 (есть лифт)")
	assert.Contains(t, msg, "Доставка: 2 (есть лифт)")
}

func TestFormatCrewMessageNoExtrasLineWhenEmpty(t *testing.T) {
	p := sampleLead()
	p.Data.Extras = nil

	msg := FormatCrewMessage(42, "", p, "ru")
	assert.NotContains(t, msg, "Услуги:")
}

func TestFormatCrewMessageSuppressedEstimateHidden(t *testing.T) {
	p := sampleLead()
	p.Data.EstimateSuppressed = true

	msg := FormatCrewMessage(42, "", p, "ru")
	assert.NotContains(t, msg, "Оценка:")
}

func TestFormatCrewMessageExactTimeWindow(t *testing.T) {
	p := sampleLead()
	p.Data.TimeWindow = "exact:14:30"

	msg := FormatCrewMessage(42, "", p, "ru")
	assert.Contains(t, msg, "точное время: 14:30")
}

func TestFormatCrewMessageGeoPinFallback(t *testing.T) {
	p := sampleLead()
	p.Data.AddrFrom = "какой-то переулок 7"
	p.Data.GeoPoints = map[string]session.GeoPoint{
		"pickup_1": {Lat: 32.79, Lon: 34.99, Name: "Port Area"},
	}

	msg := FormatCrewMessage(42, "", p, "ru")
	require.True(t, strings.Contains(msg, "Port Area → Тель-Авив"), msg)
}

func TestFormatCrewMessageItemCapAtEight(t *testing.T) {
	p := sampleLead()
	p.Data.CargoItems = []session.ItemCount{
		{Key: "sofa_3seat", Qty: 1}, {Key: "refrigerator", Qty: 1},
		{Key: "washing_machine", Qty: 1}, {Key: "dining_table", Qty: 1},
		{Key: "chair", Qty: 4}, {Key: "wardrobe_large", Qty: 1},
		{Key: "bed_double", Qty: 1}, {Key: "desk", Qty: 1},
		{Key: "box_standard", Qty: 30},
	}

	msg := FormatCrewMessage(42, "", p, "ru")
	assert.NotContains(t, msg, "Коробка")
	assert.Contains(t, msg, "Письменный стол")
}
