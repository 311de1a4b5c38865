package export

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Section is a titled table inside a report document.
type Section struct {
	Heading string
	Data    Dataset
}

// Document groups the sections rendered into a single report file.
type Document struct {
	Title    string
	Subtitle string
	Sections []Section
}

var letterFold = strings.NewReplacer(
	"ı", "i", "İ", "I",
	"ğ", "g", "Ğ", "G",
	"ş", "s", "Ş", "S",
	"ç", "c", "Ç", "C",
	"ö", "o", "Ö", "O",
	"ü", "u", "Ü", "U",
	"ß", "ss", "ø", "o", "Ø", "O",
	"æ", "ae", "Æ", "AE", "œ", "oe", "Œ", "OE",
	"ł", "l", "Ł", "L", "đ", "d", "Đ", "D",
	"‘", "'", "’", "'", "“", "\"", "”", "\"",
	"–", "-", "—", "-",
)

// NormalizeText folds text into plain ASCII letters so core PDF fonts can render it.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	folded := letterFold.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, folded)
	if err != nil {
		return folded
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxLatin1 {
			return '?'
		}
		return r
	}, out)
}
