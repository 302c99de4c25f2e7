package language

import (
	"context"
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

func buildAllLanguages() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().FromAllLanguages().Build()
}

// linguaDetector builds its detector on first use; the language models are
// large.
type linguaDetector struct {
	build    func() lingua.LanguageDetector
	once     sync.Once
	detector lingua.LanguageDetector
}

func newLingua(build func() lingua.LanguageDetector) *linguaDetector {
	return &linguaDetector{build: build}
}

func (l *linguaDetector) detect(ctx context.Context, text string) (string, *float64, error) {
	l.once.Do(func() {
		l.detector = l.build()
	})

	lang, ok := l.detector.DetectLanguageOf(text)
	if !ok {
		return Undetected, nil, nil
	}
	confidence := l.detector.ComputeLanguageConfidence(text, lang)
	return strings.ToLower(lang.IsoCode639_1().String()), &confidence, nil
}
