package moving

import (
	"regexp"
	"sort"
	"strings"
)

var (
	pureChoicesRe     = regexp.MustCompile(`^[1-4](?:[\s,]+[1-4])*$`)
	choicesThenTextRe = regexp.MustCompile(`^([1-4](?:[\s,]+[1-4])*)\s+([^\d\s].*)$`)
	choiceDigitRe     = regexp.MustCompile(`[1-4]`)

	// "1 3 + нет парковки", "2, и еще упаковать", "1 and no parking".
	// The capture group marks where the detail text begins.
	detailSepRes = []*regexp.Regexp{
		regexp.MustCompile(`,\s*([^\d\s])`),
		regexp.MustCompile(`(?i)\s+и\s+([^\d\s])`),
		regexp.MustCompile(`(?i)\s+and\s+([^\d\s])`),
		regexp.MustCompile(`(?i)\s+также\s+(\S)`),
	}
)

// ParseChoices extracts menu digits 1-4 from an answer that consists only
// of digits, spaces and commas.
func ParseChoices(text string) []string {
	t := strings.TrimSpace(text)
	if !pureChoicesRe.MatchString(t) {
		return nil
	}
	return choiceDigitRe.FindAllString(t, -1)
}

// ParseExtrasInput splits an extras answer into menu choices and a
// free-text detail tail. Supported forms:
//
//	"1 3"                   -> choices only
//	"1 3 + нет парковки"    -> choices plus details
//	"узкая лестница"        -> details only
func ParseExtrasInput(text string) (choices []string, details string) {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil, ""
	}

	if left, right, ok := splitChoicesDetails(t); ok {
		if c := ParseChoices(left); c != nil {
			return c, strings.TrimSpace(right)
		}
		// Separator present but no leading choices: all free text.
		return nil, t
	}

	if c := ParseChoices(t); c != nil {
		return c, ""
	}
	if m := choicesThenTextRe.FindStringSubmatch(t); m != nil {
		return choiceDigitRe.FindAllString(m[1], -1), strings.TrimSpace(m[2])
	}
	return nil, t
}

// splitChoicesDetails finds the first explicit separator between a choice
// list and a comment: "+", or a comma / joining word followed by text.
func splitChoicesDetails(t string) (left, right string, ok bool) {
	if idx := strings.Index(t, "+"); idx >= 0 {
		return t[:idx], t[idx+1:], true
	}
	sepAt, detailAt := -1, -1
	for _, re := range detailSepRes {
		loc := re.FindStringSubmatchIndex(t)
		if loc == nil {
			continue
		}
		if sepAt < 0 || loc[0] < sepAt {
			sepAt, detailAt = loc[0], loc[2]
		}
	}
	if sepAt < 0 {
		return "", "", false
	}
	return t[:sepAt], t[detailAt:], true
}

// mapExtraChoices converts sorted, deduplicated menu digits to service
// keys, dropping "4" (none).
func mapExtraChoices(choices []string) []string {
	uniq := map[string]struct{}{}
	for _, c := range choices {
		uniq[c] = struct{}{}
	}
	keys := make([]string, 0, len(uniq))
	for c := range uniq {
		keys = append(keys, c)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, c := range keys {
		svc := extraChoices[c]
		if svc == "" || svc == ValueNone {
			continue
		}
		out = append(out, svc)
	}
	return out
}

func containsChoice(choices []string, want string) bool {
	for _, c := range choices {
		if c == want {
			return true
		}
	}
	return false
}
