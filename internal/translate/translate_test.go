package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carnance/leadsync/internal/llm"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"french", "French"},
		{"French", "French"},
		{"fr", "French"},
		{"FR", "French"},
		{"english", "English"},
		{"en", "English"},
		{"spanish", "Spanish"},
		{"mandarin", "Chinese"},
		{"", "English"},
		{"klingon", "Klingon"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.in))
		})
	}
}

func TestIsEnglish(t *testing.T) {
	assert.True(t, IsEnglish("english"))
	assert.True(t, IsEnglish("en"))
	assert.True(t, IsEnglish(""))
	assert.False(t, IsEnglish("french"))
}

type fakeLLM struct {
	response string
	err      error
	lastMsgs []llm.Message
}

func (f *fakeLLM) Complete(_ context.Context, msgs []llm.Message) (string, error) {
	f.lastMsgs = msgs
	return f.response, f.err
}

func TestTranslateLines(t *testing.T) {
	fake := &fakeLLM{response: "**Nom**: Jean\n**Courriel**: j@x.com"}
	tr := NewLLMTranslator(fake)

	out, err := tr.TranslateLines(context.Background(), []string{"**Name**: Jean", "**Email**: j@x.com"}, "french")
	require.NoError(t, err)
	assert.Equal(t, []string{"**Nom**: Jean", "**Courriel**: j@x.com"}, out)

	require.Len(t, fake.lastMsgs, 2)
	assert.Equal(t, "system", fake.lastMsgs[0].Role)
	assert.True(t, strings.Contains(fake.lastMsgs[1].Content, "Target language: French"))
}

func TestTranslateLinesCountMismatch(t *testing.T) {
	fake := &fakeLLM{response: "only one line"}
	tr := NewLLMTranslator(fake)

	_, err := tr.TranslateLines(context.Background(), []string{"a", "b"}, "fr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 lines")
}

func TestTranslateLinesClientError(t *testing.T) {
	fake := &fakeLLM{err: errors.New("rate limited")}
	tr := NewLLMTranslator(fake)

	_, err := tr.TranslateLines(context.Background(), []string{"a"}, "fr")
	require.Error(t, err)
}

func TestTranslateLinesEmpty(t *testing.T) {
	tr := NewLLMTranslator(&fakeLLM{})
	out, err := tr.TranslateLines(context.Background(), nil, "fr")
	require.NoError(t, err)
	assert.Nil(t, out)
}
