// Package matcher selects a sales agent for a lead via a structured LLM
// prompt and parses the model's JSON verdict.
package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/carnance/leadsync/internal/llm"
	"github.com/carnance/leadsync/internal/model"
	"github.com/carnance/leadsync/internal/prompt"
)

// Prompt categories served from the prompt library.
const (
	CategoryMatching = "sales_agent_matching"
	CategoryContext  = "sales_agent_context"
)

// ErrNoAgents is returned when matching is attempted with an empty roster.
var ErrNoAgents = eris.New("matcher: sales agent roster is empty")

// Matcher runs the agent-matching prompt against the configured roster.
type Matcher struct {
	client  llm.Client
	prompts *prompt.Library
	agents  []model.SalesAgent
}

func New(client llm.Client, prompts *prompt.Library, agents []model.SalesAgent) *Matcher {
	return &Matcher{client: client, prompts: prompts, agents: agents}
}

// Match selects an agent for the lead. version picks a specific prompt
// version; empty means the configured default. The verdict's primary
// language is filled in from the selected agent's roster entry.
func (m *Matcher) Match(ctx context.Context, lead model.Lead, version string) (*model.AgentMatch, error) {
	if len(m.agents) == 0 {
		return nil, ErrNoAgents
	}

	p, err := m.prompts.Get(CategoryMatching, version)
	if err != nil {
		return nil, eris.Wrap(err, "matcher: load prompt")
	}

	user := prompt.Format(p.UserTemplate, map[string]string{
		"lead_info":  leadInfo(lead),
		"agent_info": agentsInfo(m.agents),
	})
	user = m.withAgentContext(user, p)

	resp, err := m.client.Complete(ctx, []llm.Message{
		llm.System(p.System),
		llm.User(user),
	})
	if err != nil {
		return nil, eris.Wrap(err, "matcher: completion failed")
	}

	var match model.AgentMatch
	if err := json.Unmarshal([]byte(cleanJSON(resp)), &match); err != nil {
		zap.L().Error("agent match verdict is not valid JSON",
			zap.String("lead_id", lead.LeadID),
			zap.String("raw_response", resp))
		return nil, eris.Wrap(err, "matcher: parse verdict")
	}

	if match.PrimaryLanguage == "" {
		match.PrimaryLanguage = m.agentLanguage(match.SelectedAgentID)
	}
	return &match, nil
}

// withAgentContext substitutes the optional domain-context block into the
// user prompt. Templates without the placeholder get the context prepended
// instead; a missing context category is not an error.
func (m *Matcher) withAgentContext(user string, p prompt.Prompt) string {
	ctxPrompt, err := m.prompts.Get(CategoryContext, "")
	if err != nil || ctxPrompt.Context == "" {
		return user
	}

	if prompt.HasPlaceholder(user, "agent_context") {
		return prompt.Format(user, map[string]string{"agent_context": ctxPrompt.Context})
	}
	return ctxPrompt.Context + "\n\n" + user
}

func (m *Matcher) agentLanguage(agentID string) string {
	for _, a := range m.agents {
		if a.ID == agentID {
			return a.Language
		}
	}
	return ""
}

func leadName(lead model.Lead) string {
	if lead.FullName != "" {
		return lead.FullName
	}
	return strings.TrimSpace(lead.FirstName + " " + lead.LastName)
}

// leadInfo renders the lead as labeled lines, skipping empty fields.
func leadInfo(lead model.Lead) string {
	var b strings.Builder

	add := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}

	add("Lead ID", lead.LeadID)
	add("Name", leadName(lead))
	add("Email", lead.Email)
	add("Phone", lead.Phone)
	add("City", lead.City)
	add("Province/State", lead.StateProvince)
	add("Country", lead.Country)
	add("Vehicle Interest", lead.VehicleType)
	add("Credit Situation", lead.CurrentCredit)
	add("Employment", lead.EmploymentStatus)
	add("Company", lead.CompanyName)
	add("Monthly Salary", salaryRange(lead.MonthlySalaryMin, lead.MonthlySalaryMax))

	return strings.TrimRight(b.String(), "\n")
}

// agentsInfo renders each roster candidate, one block per agent, including
// only the fields that are set.
func agentsInfo(agents []model.SalesAgent) string {
	var b strings.Builder

	for i, a := range agents {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Agent %s (%s)\n", a.ID, a.Name)

		add := func(label, value string) {
			if value != "" {
				fmt.Fprintf(&b, "  %s: %s\n", label, value)
			}
		}

		add("Specialization", a.Specialization)
		add("Expertise", a.Expertise)
		if a.ExperienceYears > 0 {
			add("Experience", fmt.Sprintf("%d years", a.ExperienceYears))
		}
		add("Location", a.Location)
		add("Territory", a.Territory)
		if a.CurrentWorkload > 0 {
			add("Current Workload", fmt.Sprintf("%d leads", a.CurrentWorkload))
		}
		if a.SuccessRate > 0 {
			add("Success Rate", fmt.Sprintf("%d%%", a.SuccessRate))
		}
		add("Vehicle Types", strings.Join(a.VehicleTypes, ", "))
		add("Communication Style", a.CommunicationStyle)
		add("Language", a.Language)
	}

	return strings.TrimRight(b.String(), "\n")
}

// salaryRange formats min/max monthly salary as a currency range. Zero on
// both ends means the lead carries no salary data.
func salaryRange(min, max float64) string {
	p := message.NewPrinter(language.English)
	switch {
	case min > 0 && max > 0:
		return p.Sprintf("$%v - $%v", number.Decimal(min), number.Decimal(max))
	case min > 0:
		return p.Sprintf("$%v+", number.Decimal(min))
	case max > 0:
		return p.Sprintf("up to $%v", number.Decimal(max))
	default:
		return ""
	}
}

// cleanJSON strips markdown fences and extracts the JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
