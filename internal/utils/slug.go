// Package utils holds small text helpers shared by resource forms.
package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength matches the longest slug the API accepts.
const MaxSlugLength = 200

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases input, folds accents to ASCII and joins the remaining
// letters and digits with single dashes. "&" reads as "and"; apostrophes are
// dropped so "Tokyo's" becomes "tokyos".
func Slugify(input string) string {
	folded, _, err := transform.String(stripMarks, input)
	if err != nil {
		folded = input
	}
	folded = strings.ReplaceAll(strings.ToLower(folded), "&", " and ")

	var b strings.Builder
	dash := false
	for _, r := range folded {
		switch {
		case r == '\'' || r == '’':
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		default:
			dash = true
		}
	}
	slug := b.String()
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}
