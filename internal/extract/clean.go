package extract

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrNotEnoughContent is returned by Readable when the page holds too little
// text to be worth summarizing.
var ErrNotEnoughContent = errors.New("page doesn't contain enough readable text content")

// CleanText collapses every whitespace run to a single space, except runs
// spanning a blank line, which become exactly one blank line. The result is
// trimmed. CleanText(CleanText(s)) == CleanText(s).
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	newlines := 0
	flush := func() {
		if !inRun {
			return
		}
		if newlines >= 2 {
			b.WriteString("\n\n")
		} else {
			b.WriteByte(' ')
		}
		inRun = false
		newlines = 0
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			inRun = true
			if r == '\n' {
				newlines++
			}
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()
	return strings.TrimSpace(b.String())
}

// Readable applies the minimum-output gate to an extraction: the cleaned
// text must hold at least MinReadableChars characters.
func Readable(res Result) (string, error) {
	cleaned := CleanText(res.Text)
	if utf8.RuneCountInString(cleaned) < MinReadableChars {
		return "", ErrNotEnoughContent
	}
	return cleaned, nil
}
