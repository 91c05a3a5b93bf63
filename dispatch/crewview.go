// Package dispatch builds crew-facing views of finalized leads. Crew
// messages are PII-safe by construction: locality instead of street
// address, no phone, no free-text comments, no media links.
package dispatch

import (
	"fmt"
	"strings"

	"github.com/moveline/leadgate/botengine/moving"
	"github.com/moveline/leadgate/domains/lead"
	"github.com/moveline/leadgate/domains/session"
)

type labelSet struct {
	job          string
	route        string
	date         string
	volume       string
	floors       string
	items        string
	services     string
	estimate     string
	notSpecified string
	elevatorYes  string
	elevatorNo   string
	pickup       string
	destination  string
}

var crewLabels = map[string]labelSet{
	"ru": {
		job: "Заказ", route: "Маршрут", date: "Дата", volume: "Объём",
		floors: "Этажи", items: "Вещи", services: "Услуги", estimate: "Оценка",
		notSpecified: "не указано", elevatorYes: "есть лифт", elevatorNo: "без лифта",
		pickup: "Забор", destination: "Доставка",
	},
	"en": {
		job: "Job", route: "Route", date: "Date", volume: "Volume",
		floors: "Floors", items: "Items", services: "Services", estimate: "Estimate",
		notSpecified: "not specified", elevatorYes: "elevator", elevatorNo: "no elevator",
		pickup: "Pickup", destination: "Delivery",
	},
	"he": {
		job: "הזמנה", route: "מסלול", date: "תאריך", volume: "נפח",
		floors: "קומות", items: "פריטים", services: "שירותים", estimate: "הערכה",
		notSpecified: "לא צוין", elevatorYes: "מעלית", elevatorNo: "ללא מעלית",
		pickup: "איסוף", destination: "משלוח",
	},
}

var crewVolumeLabels = map[string]map[string]string{
	"ru": {
		"small":  "малый (до 1 м³)",
		"medium": "средний (1–3 м³)",
		"large":  "большой (3–10 м³)",
		"xl":     "очень большой (10+ м³)",
	},
	"en": {
		"small":  "small (up to 1 m³)",
		"medium": "medium (1–3 m³)",
		"large":  "large (3–10 m³)",
		"xl":     "extra large (10+ m³)",
	},
	"he": {
		"small":  "קטן (עד 1 מ\"ק)",
		"medium": "בינוני (1–3 מ\"ק)",
		"large":  "גדול (3–10 מ\"ק)",
		"xl":     "גדול מאוד (10+ מ\"ק)",
	},
}

var crewTimeWindows = map[string]map[string]string{
	"ru": {
		"morning": "утро (08:00–12:00)", "afternoon": "день (12:00–17:00)",
		"evening": "вечер (17:00–21:00)", "flexible": "гибко",
		"exact": "точное время", "none": "не указано",
	},
	"en": {
		"morning": "morning (08:00–12:00)", "afternoon": "afternoon (12:00–17:00)",
		"evening": "evening (17:00–21:00)", "flexible": "flexible",
		"exact": "exact time", "none": "not specified",
	},
	"he": {
		"morning": "בוקר (08:00–12:00)", "afternoon": "צהריים (12:00–17:00)",
		"evening": "ערב (17:00–21:00)", "flexible": "גמיש",
		"exact": "שעה מדויקת", "none": "לא צוין",
	},
}

var crewExtras = map[string]map[string]string{
	"ru": {"loaders": "грузчики", "assembly": "сборка/разборка", "packing": "упаковка", "none": "нет", "empty": "нет"},
	"en": {"loaders": "movers", "assembly": "assembly/disassembly", "packing": "packing", "none": "none", "empty": "none"},
	"he": {"loaders": "סבלים", "assembly": "הרכבה/פירוק", "packing": "אריזה", "none": "אין", "empty": "אין"},
}

var noExtrasValues = map[string]struct{}{
	"нет": {}, "none": {}, "אין": {}, "": {},
}

const maxCrewItems = 8

// FormatCrewMessage renders a copy-paste ready crew block for a finalized
// lead. lang follows the operator's target language, not the client's.
func FormatCrewMessage(leadSeq int64, leadID string, p lead.Payload, lang string) string {
	labels, ok := crewLabels[lang]
	if !ok {
		lang = "ru"
		labels = crewLabels["ru"]
	}
	d := p.Data

	leadDisplay := "#?"
	switch {
	case leadSeq > 0:
		leadDisplay = fmt.Sprintf("#%d", leadSeq)
	case leadID != "":
		if len(leadID) > 8 {
			leadID = leadID[:8]
		}
		leadDisplay = "#" + leadID
	}

	timeWindow := formatTimeWindow(d.TimeWindow, lang)
	dateStr := timeWindow
	if d.MoveDate != "" {
		dateStr = d.MoveDate + ", " + timeWindow
	}

	volumeStr := crewVolumeLabels[lang][d.VolumeCategory]
	if volumeStr == "" {
		volumeStr = d.VolumeCategory
		if volumeStr == "" {
			volumeStr = labels.notSpecified
		}
	}

	lines := []string{
		fmt.Sprintf("🧰 %s %s", labels.job, leadDisplay),
		"",
		fmt.Sprintf("%s: %s", labels.route, formatRoute(d, labels, lang)),
		fmt.Sprintf("%s: %s", labels.date, dateStr),
		fmt.Sprintf("%s: %s", labels.volume, volumeStr),
		fmt.Sprintf("%s: %s", labels.floors, formatFloors(d, labels)),
	}

	if itemsStr := formatItems(d.CargoItems, lang); itemsStr != "" {
		lines = append(lines, fmt.Sprintf("%s: %s", labels.items, itemsStr))
	}
	extrasStr := formatExtras(d.Extras, lang)
	if _, empty := noExtrasValues[extrasStr]; !empty {
		lines = append(lines, fmt.Sprintf("%s: %s", labels.services, extrasStr))
	}
	if estStr := formatEstimate(d); estStr != "" {
		lines = append(lines, fmt.Sprintf("%s: %s", labels.estimate, estStr))
	}
	return strings.Join(lines, "\n")
}

// formatRoute shows locality names only. Geo pin names are acceptable;
// raw pickup addresses are the last resort and in practice hold just a
// city.
func formatRoute(d session.LeadData, labels labelSet, lang string) string {
	toLocality := endpointLocality(d, "delivery", d.AddrTo, lang)

	if len(d.Pickups) > 1 {
		names := make([]string, 0, len(d.Pickups)+1)
		for i, p := range d.Pickups {
			loc := pinName(d.GeoPoints, fmt.Sprintf("pickup_%d", i+1))
			if loc == "" && i == 0 {
				loc = endpointLocality(d, "pickup_1", d.AddrFrom, lang)
			}
			if loc == "" {
				loc = p.Addr
			}
			if loc == "" {
				loc = "?"
			}
			names = append(names, loc)
		}
		dest := toLocality
		if dest == "" {
			dest = "?"
		}
		return strings.Join(names, " → ") + " → " + dest
	}

	fromLocality := endpointLocality(d, "pickup_1", d.AddrFrom, lang)
	switch {
	case fromLocality != "" && toLocality != "":
		return fromLocality + " → " + toLocality
	case fromLocality != "":
		return fromLocality + " → ?"
	case toLocality != "":
		return "? → " + toLocality
	}
	return labels.notSpecified
}

// endpointLocality prefers the classified locality name, then the shared
// map pin, and never falls back to the typed street address.
func endpointLocality(d session.LeadData, geoKey, addr, lang string) string {
	if loc, ok := moving.FindLocality(addr); ok {
		return loc.LocalityName(lang)
	}
	return pinName(d.GeoPoints, geoKey)
}

func pinName(points map[string]session.GeoPoint, key string) string {
	g, ok := points[key]
	if !ok {
		return ""
	}
	if g.Name != "" {
		return g.Name
	}
	return g.Address
}

func formatFloors(d session.LeadData, labels labelSet) string {
	floorLabel := func(floor int, hasElev bool) string {
		elev := labels.elevatorNo
		if hasElev {
			elev = labels.elevatorYes
		}
		return fmt.Sprintf("%d (%s)", floor, elev)
	}

	fTo, elevTo := moving.ParseFloorInfo(d.FloorTo)

	if len(d.Pickups) > 1 {
		parts := make([]string, 0, len(d.Pickups)+1)
		for i, p := range d.Pickups {
			f, elev := moving.ParseFloorInfo(p.Floor)
			parts = append(parts, fmt.Sprintf("%s %d: %s", labels.pickup, i+1, floorLabel(f, elev)))
		}
		parts = append(parts, fmt.Sprintf("%s: %s", labels.destination, floorLabel(fTo, elevTo)))
		return strings.Join(parts, "\n  ")
	}

	fFrom, elevFrom := moving.ParseFloorInfo(d.FloorFrom)
	return floorLabel(fFrom, elevFrom) + " → " + floorLabel(fTo, elevTo)
}

func formatItems(items []session.ItemCount, lang string) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) > maxCrewItems {
		items = items[:maxCrewItems]
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		label := moving.ItemLabel(it.Key, lang)
		if it.Qty > 1 {
			parts = append(parts, fmt.Sprintf("%s ×%d", label, it.Qty))
		} else {
			parts = append(parts, label)
		}
	}
	return strings.Join(parts, ", ")
}

func formatExtras(extras []string, lang string) string {
	labels, ok := crewExtras[lang]
	if !ok {
		labels = crewExtras["ru"]
	}
	if len(extras) == 0 {
		return labels["empty"]
	}
	names := make([]string, 0, len(extras))
	for _, e := range extras {
		if e == "none" {
			continue
		}
		if l := labels[e]; l != "" {
			names = append(names, l)
		} else {
			names = append(names, e)
		}
	}
	if len(names) == 0 {
		return labels["empty"]
	}
	return strings.Join(names, ", ")
}

func formatTimeWindow(timeWindow, lang string) string {
	labels, ok := crewTimeWindows[lang]
	if !ok {
		labels = crewTimeWindows["ru"]
	}
	if strings.HasPrefix(timeWindow, "exact:") {
		return labels["exact"] + ": " + strings.TrimPrefix(timeWindow, "exact:")
	}
	if l := labels[timeWindow]; l != "" {
		return l
	}
	if timeWindow != "" {
		return timeWindow
	}
	return labels["none"]
}

// formatEstimate hides the range when it was suppressed or not shown to
// the client.
func formatEstimate(d session.LeadData) string {
	if d.EstimateSuppressed || d.EstimateDisplayDisabled || d.Estimate == nil {
		return ""
	}
	if d.Estimate.Min == 0 && d.Estimate.Max == 0 {
		return ""
	}
	return fmt.Sprintf("₪%d–₪%d", d.Estimate.Min, d.Estimate.Max)
}
