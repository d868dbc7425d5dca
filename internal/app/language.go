package app

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

const languageSampleRunes = 4000

// minLanguageConfidence is the confidence below which no language is reported.
const minLanguageConfidence = 0.5

// detectLanguage returns the ISO 639-1 code of the text's language and the
// detector's confidence, or "" when it cannot tell.
func detectLanguage(text string) (string, float64) {
	if strings.TrimSpace(text) == "" {
		return "", 0
	}
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().FromAllLanguages().Build()
	})
	// A few thousand characters is plenty and keeps detection fast.
	sample := truncateRunes(text, languageSampleRunes)
	lang, ok := detector.DetectLanguageOf(sample)
	if !ok {
		return "", 0
	}
	conf := detector.ComputeLanguageConfidence(sample, lang)
	if conf < minLanguageConfidence {
		return "", conf
	}
	return strings.ToLower(lang.IsoCode639_1().String()), conf
}

// truncateRunes returns s cut to at most n characters without splitting a
// rune.
func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
