package moving

import (
	"strings"
	"unicode/utf8"
)

// landingSignature is the first line a website lead form puts into the
// first WhatsApp message. Matching is prefix-based on the lowered text.
const landingSignature = "здравствуйте! хочу узнать стоимость переезда."

// Prefill is the structured payload recovered from a landing-page message.
type Prefill struct {
	MoveType string
	AddrFrom string
	AddrTo   string
	DateText string
	Details  string
}

var prefillFieldCaps = map[string]int{
	"тип":    100,
	"откуда": 200,
	"куда":   200,
	"дата":   100,
	"детали": 500,
}

// moveTypeAllowlist keeps the landing form honest: anything else in the
// "тип" field is dropped.
var moveTypeAllowlist = map[string]struct{}{
	"квартира":                 {},
	"офис":                     {},
	"только машина + водитель": {},
	"подъёмник / window lift":  {},
}

// ParseLandingPrefill detects a landing-page lead message and extracts its
// labeled fields. Returns false for ordinary user messages.
func ParseLandingPrefill(text string) (Prefill, bool) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) == 0 {
		return Prefill{}, false
	}
	first := strings.ToLower(strings.TrimSpace(lines[0]))
	if !strings.HasPrefix(first, landingSignature) {
		return Prefill{}, false
	}

	fields := map[string]string{}
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(name))
		limit, known := prefillFieldCaps[key]
		if !known {
			continue
		}
		v := strings.TrimSpace(value)
		if utf8.RuneCountInString(v) > limit {
			v = string([]rune(v)[:limit])
		}
		fields[key] = v
	}

	p := Prefill{
		MoveType: fields["тип"],
		AddrFrom: fields["откуда"],
		AddrTo:   fields["куда"],
		DateText: fields["дата"],
		Details:  fields["детали"],
	}
	if p.MoveType != "" {
		if _, ok := moveTypeAllowlist[strings.ToLower(p.MoveType)]; !ok {
			p.MoveType = ""
		}
	}
	return p, true
}
