package matcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carnance/leadsync/internal/llm"
	"github.com/carnance/leadsync/internal/model"
	"github.com/carnance/leadsync/internal/prompt"
)

const testPrompts = `
default_versions:
  sales_agent_matching: v1
prompts:
  sales_agent_matching:
    v1:
      system: "You are a sales routing assistant."
      user_template: "Lead:\n{lead_info}\n\nAgents:\n{agent_info}\n\nRespond with JSON."
    v2:
      system: "Routing v2."
      user_template: "{agent_context}\n\nLead:\n{lead_info}\n\nAgents:\n{agent_info}"
  sales_agent_context:
    v1:
      context: "Agents sell vehicle financing in Ontario and Quebec."
`

func testLibrary(t *testing.T) *prompt.Library {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testPrompts), 0o644))
	lib, err := prompt.Load(path, nil)
	require.NoError(t, err)
	return lib
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

var roster = []model.SalesAgent{
	{ID: "agent-1", Name: "Sarah Chen", Specialization: "SUVs", Language: "English",
		ExperienceYears: 7, SuccessRate: 82, VehicleTypes: []string{"SUV", "Truck"}},
	{ID: "agent-2", Name: "Marc Dubois", Territory: "Quebec", Language: "French"},
}

const verdict = `{"selected_agent_id":"agent-2","selected_agent_name":"Marc Dubois","confidence_score":8,"reasoning":"Territory fit.","alternative_agents":[{"agent_id":"agent-1","agent_name":"Sarah Chen","reason":"vehicle fit"}]}`

func TestMatch(t *testing.T) {
	fake := &fakeLLM{response: verdict}
	m := New(fake, testLibrary(t), roster)

	match, err := m.Match(context.Background(), model.Lead{LeadID: "L-1", FirstName: "Ana", City: "Laval"}, "")
	require.NoError(t, err)

	assert.Equal(t, "agent-2", match.SelectedAgentID)
	assert.Equal(t, 8, match.ConfidenceScore)
	require.Len(t, match.AlternativeAgents, 1)
	// Primary language backfilled from the roster entry.
	assert.Equal(t, "French", match.PrimaryLanguage)

	require.Len(t, fake.lastMsgs, 2)
	user := fake.lastMsgs[1].Content
	assert.Contains(t, user, "Lead ID: L-1")
	assert.Contains(t, user, "Agent agent-1 (Sarah Chen)")
	assert.Contains(t, user, "Success Rate: 82%")
	// v1 template has no context placeholder, so the context is prepended.
	assert.True(t, strings.HasPrefix(user, "Agents sell vehicle financing"))
}

func TestMatchContextPlaceholder(t *testing.T) {
	fake := &fakeLLM{response: verdict}
	m := New(fake, testLibrary(t), roster)

	_, err := m.Match(context.Background(), model.Lead{LeadID: "L-1"}, "v2")
	require.NoError(t, err)

	user := fake.lastMsgs[1].Content
	assert.Contains(t, user, "Agents sell vehicle financing")
	assert.NotContains(t, user, "{agent_context}")
}

func TestMatchFencedVerdict(t *testing.T) {
	fake := &fakeLLM{response: "```json\n" + verdict + "\n```"}
	m := New(fake, testLibrary(t), roster)

	match, err := m.Match(context.Background(), model.Lead{LeadID: "L-1"}, "")
	require.NoError(t, err)
	assert.Equal(t, "agent-2", match.SelectedAgentID)
}

func TestMatchEmptyRoster(t *testing.T) {
	m := New(&fakeLLM{}, testLibrary(t), nil)
	_, err := m.Match(context.Background(), model.Lead{LeadID: "L-1"}, "")
	assert.ErrorIs(t, err, ErrNoAgents)
}

func TestMatchInvalidJSON(t *testing.T) {
	fake := &fakeLLM{response: "I think agent-2 would be best."}
	m := New(fake, testLibrary(t), roster)

	_, err := m.Match(context.Background(), model.Lead{LeadID: "L-1"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse verdict")
}

func TestMatchCompletionError(t *testing.T) {
	fake := &fakeLLM{err: errors.New("timeout")}
	m := New(fake, testLibrary(t), roster)

	_, err := m.Match(context.Background(), model.Lead{LeadID: "L-1"}, "")
	require.Error(t, err)
}

func TestMatchUnknownVersion(t *testing.T) {
	m := New(&fakeLLM{response: verdict}, testLibrary(t), roster)
	_, err := m.Match(context.Background(), model.Lead{LeadID: "L-1"}, "v9")
	require.Error(t, err)
}

func TestSalaryRange(t *testing.T) {
	assert.Equal(t, "$3,500 - $5,000", salaryRange(3500, 5000))
	assert.Equal(t, "$3,500+", salaryRange(3500, 0))
	assert.Equal(t, "up to $5,000", salaryRange(0, 5000))
	assert.Empty(t, salaryRange(0, 0))
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", "Sure:\n{\"a\":1}\nHope that helps.", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.input))
		})
	}
}
