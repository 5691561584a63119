package util

import "strings"

// pdfJunk maps extractor artifacts that neither Postgres nor the text
// analyzers should ever see: NUL bytes, soft hyphens left over from
// line-break dehyphenation, zero-width characters and the replacement
// rune some decoders emit for unmapped glyphs.
var pdfJunk = strings.NewReplacer(
	"\x00", "",
	"­", "",
	"\uFEFF", "",
	"​", "",
	"�", "",
)

// SanitizeText cleans one extracted text span for storage and analysis.
// NUL bytes are invalid in PostgreSQL text columns; other non-printing
// controls are dropped while ordinary whitespace is kept.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = pdfJunk.Replace(s)

	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}
