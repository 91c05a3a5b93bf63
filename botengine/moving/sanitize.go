package moving

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// ErrRejectedInput is returned when a message cannot be reduced to safe
// plain text (script URIs, or nothing left after stripping markup).
var ErrRejectedInput = errors.New("input rejected")

var (
	htmlTagRe   = regexp.MustCompile(`<[^>]{1,200}>`)
	urlRe       = regexp.MustCompile(`(?i)https?://\S+|www\.\S+`)
	scriptURIRe = regexp.MustCompile(`(?i)(javascript|vbscript|data)\s*:`)
	multiWSRe   = regexp.MustCompile(`\s{2,}`)
)

// stripMarkup reduces pasted HTML (web forms, rich clients) to its text.
// A failed parse falls back to the tag regex.
func stripMarkup(text string) string {
	if !strings.ContainsRune(text, '<') {
		return text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return htmlTagRe.ReplaceAllString(text, " ")
	}
	doc.Find("script, style").Remove()
	return doc.Text()
}

// SanitizeInput strips markup, links and control characters from a user
// message and enforces maxLen (in runes). Script URIs and messages that
// are empty after stripping are rejected.
func SanitizeInput(text string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = 500
	}
	if scriptURIRe.MatchString(text) {
		return "", ErrRejectedInput
	}

	t := stripMarkup(text)
	t = urlRe.ReplaceAllString(t, " ")
	t = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, t)
	t = multiWSRe.ReplaceAllString(t, " ")
	t = strings.TrimSpace(t)

	if t == "" {
		if strings.TrimSpace(text) == "" {
			return "", nil
		}
		return "", ErrRejectedInput
	}
	if utf8.RuneCountInString(t) > maxLen {
		t = string([]rune(t)[:maxLen])
	}
	return t, nil
}

// junkInputs are filler replies that carry no answer on their own.
var junkInputs = map[string]struct{}{
	".": {}, "..": {}, "...": {},
	"ок": {}, "ok": {}, "ага": {}, "да": {}, "нет": {}, "?": {},
}

// LooksTooShort reports whether text is shorter than minLen runes or is a
// known junk filler.
func LooksTooShort(text string, minLen int) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if utf8.RuneCountInString(t) < minLen {
		return true
	}
	_, junk := junkInputs[t]
	return junk
}

// DetectLanguage guesses ru/en/he from script usage. The confidence is the
// dominant-script share plus a small prior; Hebrew wins whenever Hebrew
// letters are present at all.
func DetectLanguage(text string) (string, float64) {
	var hebrew, cyrillic, latin, total int
	for _, r := range text {
		switch {
		case r >= 0x0590 && r <= 0x05FF:
			hebrew++
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case r < 128 && unicode.IsLetter(r):
			latin++
		}
		if unicode.IsLetter(r) {
			total++
		}
	}
	if total < 3 {
		return "", 0
	}
	conf := func(n int, prior float64) float64 {
		c := float64(n)/float64(total) + prior
		if c > 1 {
			c = 1
		}
		return c
	}
	switch {
	case hebrew > 0:
		return LangHE, conf(hebrew, 0.3)
	case cyrillic > latin:
		return LangRU, conf(cyrillic, 0.2)
	case latin > cyrillic:
		return LangEN, conf(latin, 0.2)
	}
	return "", 0
}
