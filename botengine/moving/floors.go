package moving

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	groundFloorRe = regexp.MustCompile(`(?i)частн\w*\s+дом|private\s+house|בית\s+פרטי|ground\s+floor|\bground\b`)

	// Both orders: "этаж 3" and "3 этаж", plus a bare number.
	floorAfterWordRe  = regexp.MustCompile(`(?i)(?:этаж|floor|קומה)\s*[:\-]?\s*(\d{1,2})`)
	floorBeforeWordRe = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:-?[йя]|st|nd|rd|th)?\s*(?:этаж|floor)`)
	bareFloorRe       = regexp.MustCompile(`^\d{1,2}$`)

	noElevatorRe = regexp.MustCompile(`(?i)нет\s+лифт|без\s+лифт|лифта\s+нет|no\s+elevator|no\s+lift|אין\s+מעלית`)
	elevatorRe   = regexp.MustCompile(`(?i)лифт|elevator|\blift\b|מעלית`)
)

// ParseFloorInfo extracts (floor, hasElevator) from a free-text answer.
// Unparseable input defaults to ground floor with elevator so pricing
// never over-charges on a guess.
func ParseFloorInfo(text string) (int, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 1, true
	}
	if groundFloorRe.MatchString(t) {
		return 1, true
	}

	floor := 1
	if m := floorAfterWordRe.FindStringSubmatch(t); m != nil {
		floor, _ = strconv.Atoi(m[1])
	} else if m := floorBeforeWordRe.FindStringSubmatch(t); m != nil {
		floor, _ = strconv.Atoi(m[1])
	} else if bareFloorRe.MatchString(t) {
		floor, _ = strconv.Atoi(t)
	}
	if floor < 1 {
		floor = 1
	}

	// Negations first: "лифта нет" also matches the plain elevator pattern.
	hasElevator := true
	if noElevatorRe.MatchString(t) {
		hasElevator = false
	} else if elevatorRe.MatchString(t) {
		hasElevator = true
	}
	return floor, hasElevator
}
