package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/carnance/leadsync/internal/llm"
)

const systemPrompt = `You are a professional translator. Translate the given lines into the target language.
Rules:
- Preserve all markdown syntax (headings, bold, bullets) exactly.
- Do not translate numbers, email addresses, phone numbers, or proper nouns.
- Return exactly one output line per input line, in the same order.
- Return only the translated lines, nothing else.`

// LLMTranslator translates document lines with a chat-completion model.
type LLMTranslator struct {
	client llm.Client
}

func NewLLMTranslator(client llm.Client) *LLMTranslator {
	return &LLMTranslator{client: client}
}

// TranslateLines sends the lines joined by newlines and splits the response
// back apart. A response with the wrong line count is an error so callers can
// fall back to the untranslated text.
func (t *LLMTranslator) TranslateLines(ctx context.Context, lines []string, targetLanguage string) ([]string, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	target := Canonical(targetLanguage)
	messages := []llm.Message{
		llm.System(systemPrompt),
		llm.User(fmt.Sprintf("Target language: %s\n\nLines:\n%s", target, strings.Join(lines, "\n"))),
	}

	resp, err := t.client.Complete(ctx, messages)
	if err != nil {
		return nil, eris.Wrap(err, "translate: completion failed")
	}

	translated := strings.Split(strings.TrimSpace(resp), "\n")
	if len(translated) != len(lines) {
		zap.L().Warn("translation line count mismatch",
			zap.Int("expected", len(lines)),
			zap.Int("got", len(translated)),
			zap.String("language", target))
		return nil, eris.Errorf("translate: expected %d lines, got %d", len(lines), len(translated))
	}

	return translated, nil
}
