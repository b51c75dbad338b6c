// Package translate renders prose lines into a target language via the LLM
// collaborator, preserving markdown structure.
package translate

import (
	"context"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Translator converts a batch of document lines into a target language.
// Implementations must preserve markdown syntax, numbers, and punctuation,
// translating only prose, and must return exactly one output line per input
// line.
type Translator interface {
	TranslateLines(ctx context.Context, lines []string, targetLanguage string) ([]string, error)
}

// languageNames maps lowercased human language names to BCP 47 tags for
// names the roster is known to use. Codes like "fr" parse directly.
var languageNames = map[string]language.Tag{
	"english":    language.English,
	"french":     language.French,
	"spanish":    language.Spanish,
	"german":     language.German,
	"italian":    language.Italian,
	"portuguese": language.Portuguese,
	"arabic":     language.Arabic,
	"mandarin":   language.Chinese,
	"chinese":    language.Chinese,
	"punjabi":    language.Punjabi,
	"hindi":      language.Hindi,
}

// Canonical resolves a language name or BCP 47 code to its canonical English
// display name ("french", "fr", "FR" all yield "French"). Unrecognized input
// is returned title-cased as-is so an unusual roster value still renders a
// usable section heading.
func Canonical(lang string) string {
	trimmed := strings.TrimSpace(lang)
	if trimmed == "" {
		return "English"
	}

	if tag, ok := languageNames[strings.ToLower(trimmed)]; ok {
		return display.English.Tags().Name(tag)
	}
	if tag, err := language.Parse(trimmed); err == nil {
		if name := display.English.Tags().Name(tag); name != "" {
			return name
		}
	}

	return strings.ToUpper(trimmed[:1]) + trimmed[1:]
}

// IsEnglish reports whether a language name or code resolves to English.
func IsEnglish(lang string) bool {
	return Canonical(lang) == "English"
}
