// Package slug derives URL slugs from post titles.
package slug

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ErrEmptySlug = errors.New("title produces an empty slug")

// Letters that do not decompose into an ASCII base letter plus marks.
var transliterations = map[rune]string{
	'ß': "ss",
	'æ': "ae",
	'ø': "o",
	'œ': "oe",
	'ł': "l",
	'đ': "d",
	'ð': "d",
	'þ': "th",
}

// Make lowercases title, folds accents to ASCII, drops punctuation and
// joins words with single hyphens. "C++ & Go!" becomes "c-go".
func Make(title string) (string, error) {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false

	emit := func(s string) {
		if pendingSep && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingSep = false
		b.WriteString(s)
	}

	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			emit(string(r))
		case isSeparator(r):
			pendingSep = true
		default:
			if s, ok := transliterations[r]; ok {
				emit(s)
			}
			// anything else is removed without leaving a separator
		}
	}

	if b.Len() == 0 {
		return "", ErrEmptySlug
	}
	return b.String(), nil
}

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || unicode.IsSpace(r)
}
