package moving

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/moveline/leadgate/domains/session"
)

// BareQtyCap is the largest bare number accepted as a quantity. Anything
// above it is treated as an attribute (weight, model number) and the
// quantity falls back to 1.
const BareQtyCap = 200

var (
	dimensionRe = regexp.MustCompile(`(?i)\d+\s*[x×хХ]\s*\d+(\s*[x×хХ]\s*\d+)?(\s*(см|cm|мм|mm))?`)
	itemSplitRe = regexp.MustCompile(`(?i)[,\n]+|\s+и\s+|\s+and\s+|\s*\+\s*`)
	unitQtyRe   = regexp.MustCompile(`(?i)(\d+)\s*(?:шт\.?|штук)\s*`)

	explicitQtyRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s*[xх×]`),
		regexp.MustCompile(`(?i)[xх×]\s*(\d+)`),
		regexp.MustCompile(`(?i)(\d+)\s*(?:шт\.?|штук)`),
		regexp.MustCompile(`(?i)(\d+)\s*(?:pcs|pieces)`),
		regexp.MustCompile(`(?i)qty\s*[:=]\s*(\d+)`),
	}

	// Numbers glued to attribute words describe the item, not a count:
	// "шкаф 3-дверный", "диван 2-местный", "стол 50 кг".
	attrSuffixRe = regexp.MustCompile(`(?i)\d+[\s\-]*(двер|местн|seater|кг|kg|г\b|g\b|л\b|l\b|литр|liter|см|cm|мм|mm|м\b|m\b)`)

	bareNumberRe = regexp.MustCompile(`\d+`)
)

// ExtractItems recognizes catalog items with quantities in a free-text
// cargo description. Duplicate mentions of the same item are summed.
func ExtractItems(text string) []session.ItemCount {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return nil
	}
	// "120x60x50 см" style dimensions would otherwise read as quantities.
	t = dimensionRe.ReplaceAllString(t, " ")

	var (
		order  []string
		counts = map[string]int{}
	)
	for _, part := range itemSplitRe.Split(t, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = unitQtyRe.ReplaceAllString(part, "$1 ")

		key, rest := matchAlias(part)
		if key == "" {
			continue
		}
		qty := parseQty(rest)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key] += qty
	}

	out := make([]session.ItemCount, 0, len(order))
	for _, key := range order {
		out = append(out, session.ItemCount{Key: key, Qty: counts[key]})
	}
	return out
}

// matchAlias finds the longest catalog alias contained in part and returns
// its key plus the part with the alias removed once.
func matchAlias(part string) (string, string) {
	for _, alias := range aliasesByLength {
		idx := strings.Index(part, alias)
		if idx < 0 {
			continue
		}
		rest := part[:idx] + " " + part[idx+len(alias):]
		return itemAliases[alias], rest
	}
	return "", part
}

func parseQty(rest string) int {
	for _, re := range explicitQtyRes {
		if m := re.FindStringSubmatch(rest); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	if attrSuffixRe.MatchString(rest) {
		return 1
	}
	if m := bareNumberRe.FindString(rest); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 && n <= BareQtyCap {
			return n
		}
	}
	return 1
}

var (
	studioRe    = regexp.MustCompile(`(?i)студи|studio|סטודיו`)
	roomAptRe   = regexp.MustCompile(`(?i)(\d+)\s*[-–]?\s*(?:комнатн|room\s*apart)`)
	bedroomRe   = regexp.MustCompile(`(?i)(\d+)\s*(?:спальн|bedroom)`)
	bedroomHeRe = regexp.MustCompile(`(\d+)\s*חדרי?\s*שינה`)
	genericRoomsRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s*комнат`),
		regexp.MustCompile(`(?i)(\d+)\s*rooms?\b`),
		regexp.MustCompile(`(\d+)\s*חדרים`),
	}
	livingRoomRe = regexp.MustCompile(`(?i)салон|гостин|living\s*room|סלון`)
)

func volumeForRooms(rooms int) string {
	switch {
	case rooms <= 1:
		return "small"
	case rooms == 2:
		return "medium"
	case rooms == 3:
		return "large"
	default:
		return "xl"
	}
}

// VolumeFromRooms infers a volume category from apartment wording like
// "3-комнатная квартира", "2 bedroom apartment" or "студия". Bedrooms plus
// a mentioned living room count as rooms; kitchens do not.
func VolumeFromRooms(text string) (string, bool) {
	t := strings.ToLower(text)
	if studioRe.MatchString(t) {
		return "small", true
	}
	if m := roomAptRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n > 0 {
			return volumeForRooms(n), true
		}
	}

	rooms := 0
	if m := bedroomRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		rooms += n
	} else if m := bedroomHeRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		rooms += n
	} else {
		for _, re := range genericRoomsRes {
			if m := re.FindStringSubmatch(t); m != nil {
				n, _ := strconv.Atoi(m[1])
				rooms += n
				break
			}
		}
	}
	if rooms == 0 {
		return "", false
	}
	if livingRoomRe.MatchString(t) {
		rooms++
	}
	return volumeForRooms(rooms), true
}

// VolumeFromItems infers a volume category from the total estimated volume
// of recognized items. Thresholds follow the category descriptions shown
// to the user (1 / 3 / 10 m³).
func VolumeFromItems(items []session.ItemCount) (string, bool) {
	if len(items) == 0 {
		return "", false
	}
	var total float64
	for _, it := range items {
		c, ok := catalog[it.Key]
		if !ok {
			continue
		}
		qty := it.Qty
		if qty < 1 {
			qty = 1
		}
		total += c.VolumeM3 * float64(qty)
	}
	switch {
	case total <= 0:
		return "", false
	case total <= 1:
		return "small", true
	case total <= 3:
		return "medium", true
	case total <= 10:
		return "large", true
	default:
		return "xl", true
	}
}
