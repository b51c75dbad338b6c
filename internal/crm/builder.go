// Package crm converts leads into Twenty CRM wire payloads, including
// bilingual task-body assembly.
package crm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/carnance/leadsync/internal/model"
	"github.com/carnance/leadsync/internal/phone"
	"github.com/carnance/leadsync/internal/translate"
	"github.com/carnance/leadsync/pkg/twentycrm"
)

// unknownName is the sentinel for leads with no usable name fields. The CRM
// rejects empty required name fields.
const unknownName = "Unknown"

// Builder assembles person and task payloads for the CRM. The translator is
// optional; without one, task bodies are English-only regardless of the
// matched agent's language.
type Builder struct {
	translator translate.Translator
}

func NewBuilder(translator translate.Translator) *Builder {
	return &Builder{translator: translator}
}

// Person builds the person-creation payload for a lead.
func (b *Builder) Person(lead model.Lead) twentycrm.PersonCreate {
	first, last := resolveName(lead)

	payload := twentycrm.PersonCreate{
		Name:         twentycrm.Name{FirstName: first, LastName: last},
		Emails:       twentycrm.Emails{PrimaryEmail: lead.Email},
		LinkedinLink: twentycrm.EmptyLink(),
		XLink:        twentycrm.EmptyLink(),
	}

	hint := lead.CountryCode
	if hint == "" {
		hint = lead.Country
	}
	num := phone.Normalize(lead.Phone, hint)
	if num.Digits != "" {
		payload.Phones = &twentycrm.Phones{
			PrimaryPhoneNumber:      num.Digits,
			PrimaryPhoneCallingCode: nullableString(num.CallingCode),
			PrimaryPhoneCountryCode: nullableString(num.CountryCode),
			AdditionalPhones:        []string{},
		}
	}

	return payload
}

// Task builds the task-creation payload for a lead. When a match is supplied
// and the matched agent's primary language is not English, the body is
// rendered bilingually with the primary language first. Translation failures
// are non-fatal; the English text stands in for the missing translation.
func (b *Builder) Task(ctx context.Context, lead model.Lead, match *model.AgentMatch) twentycrm.TaskCreate {
	task := twentycrm.TaskCreate{
		Title:  taskTitle(lead),
		Status: twentycrm.StatusBacklog,
	}
	if match != nil && match.SelectedAgentName != "" {
		task.Salesrep = match.SelectedAgentName
	}

	sections := leadSections(lead)
	if s := assignmentSection(match); s != nil {
		sections = append(sections, *s)
	}

	task.BodyV2 = &twentycrm.TaskBody{Markdown: b.renderBody(ctx, sections, match)}
	return task
}

// section is one titled block of the task document. Modeling the body as an
// ordered list of sections keeps translation and layout separate.
type section struct {
	Heading string
	Lines   []string
}

func leadSections(lead model.Lead) []section {
	s := section{Heading: "Lead Information"}

	add := func(label, value string) {
		if value != "" {
			s.Lines = append(s.Lines, fmt.Sprintf("**%s**: %s", label, value))
		}
	}

	add("Name", displayName(lead))
	add("Email", lead.Email)
	add("Phone", lead.Phone)
	add("Vehicle Interest", lead.VehicleType)
	add("Location", joinNonEmpty(", ", lead.City, lead.StateProvince))
	add("Company", lead.CompanyName)
	add("Employment", lead.EmploymentStatus)

	return []section{s}
}

func assignmentSection(match *model.AgentMatch) *section {
	if match == nil || match.SelectedAgentID == "" {
		return nil
	}

	s := &section{Heading: "Assigned Sales Agent"}
	s.Lines = append(s.Lines,
		fmt.Sprintf("**Agent**: %s", match.SelectedAgentName),
		fmt.Sprintf("**Agent ID**: %s", match.SelectedAgentID),
		fmt.Sprintf("**Confidence**: %d/10", match.ConfidenceScore),
	)
	if match.Reasoning != "" {
		s.Lines = append(s.Lines, "", "### Reasoning", match.Reasoning)
	}
	if len(match.AlternativeAgents) > 0 {
		s.Lines = append(s.Lines, "", "### Alternatives")
		alts := match.AlternativeAgents
		if len(alts) > 3 {
			alts = alts[:3]
		}
		for _, alt := range alts {
			s.Lines = append(s.Lines, fmt.Sprintf("- **%s**: %s", alt.AgentName, alt.Reason))
		}
	}
	return s
}

// renderBody renders the sections as markdown. For a non-English primary
// language the document carries two language blocks under level-2 headings,
// primary language first, separated by a horizontal rule.
func (b *Builder) renderBody(ctx context.Context, sections []section, match *model.AgentMatch) string {
	lang := "English"
	if match != nil && match.PrimaryLanguage != "" {
		lang = translate.Canonical(match.PrimaryLanguage)
	}

	english := renderSections(sections)
	if translate.IsEnglish(lang) || b.translator == nil {
		return strings.Join(english, "\n")
	}

	primary, err := b.translator.TranslateLines(ctx, english, lang)
	if err != nil {
		zap.L().Warn("task body translation failed, using english text",
			zap.String("language", lang),
			zap.Error(err))
		primary = english
	}

	var doc []string
	doc = append(doc, "## "+lang, "")
	doc = append(doc, primary...)
	doc = append(doc, "", "---", "", "## English", "")
	doc = append(doc, english...)
	return strings.Join(doc, "\n")
}

func renderSections(sections []section) []string {
	var lines []string
	for i, s := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, "### "+s.Heading, "")
		lines = append(lines, s.Lines...)
	}
	return lines
}

// taskTitle picks the first non-empty value in precedence order. Leads with
// no identifying fields at all still get a readable title.
func taskTitle(lead model.Lead) string {
	candidates := []string{
		lead.FullName,
		joinNonEmpty(" ", lead.FirstName, lead.LastName),
		lead.FirstName,
		lead.LastName,
		lead.Email,
		lead.LeadID,
	}
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return "Unknown Lead"
}

// resolveName prefers explicit first/last fields, then splits full_name on
// the first space, then falls back to the Unknown sentinel.
func resolveName(lead model.Lead) (first, last string) {
	first, last = lead.FirstName, lead.LastName
	if first == "" && last == "" && lead.FullName != "" {
		first, last, _ = strings.Cut(lead.FullName, " ")
	}
	if first == "" {
		first = unknownName
	}
	if last == "" {
		last = unknownName
	}
	return first, last
}

func displayName(lead model.Lead) string {
	if lead.FullName != "" {
		return lead.FullName
	}
	return joinNonEmpty(" ", lead.FirstName, lead.LastName)
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
