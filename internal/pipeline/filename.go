package pipeline

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// unknownDateSentinel replaces the date component when the record's date
// string cannot be parsed. Derivation never fails on bad input.
const unknownDateSentinel = "unknown-date"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// asciiFold decomposes accented characters and strips the combining marks so
// labels like "São Paulo" survive sanitization instead of collapsing.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// DeriveBaseName produces the deterministic storage name for a match video:
// both team labels stripped to alphanumerics, joined with "V", then the match
// date as yyyy-mm-dd. The same inputs always yield the same name.
func DeriveBaseName(home, away, date string) string {
	return sanitizeLabel(home) + "V" + sanitizeLabel(away) + "-" + formatMatchDate(date)
}

func sanitizeLabel(label string) string {
	folded, _, err := transform.String(asciiFold, label)
	if err != nil {
		folded = label
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) && r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatMatchDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return unknownDateSentinel
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return unknownDateSentinel
}
