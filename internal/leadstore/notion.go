package leadstore

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/carnance/leadsync/internal/model"
)

// notionQuerier is the slice of the Notion API the source depends on,
// extracted for testing.
type notionQuerier interface {
	Query(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

// NotionSource reads leads from a Notion database. It is a read-only Source;
// leads in Notion are maintained by the sales team, not by the pipeline.
type NotionSource struct {
	db      notionQuerier
	dbID    string
	limiter *rate.Limiter
}

// NotionOption configures a NotionSource.
type NotionOption func(*NotionSource)

// WithNotionRateLimit overrides the default Notion rate limit (3 req/s).
func WithNotionRateLimit(rps float64) NotionOption {
	return func(s *NotionSource) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			s.limiter = nil
		}
	}
}

// NewNotion creates a NotionSource for the given integration token and lead
// database id.
func NewNotion(token, databaseID string, opts ...NotionOption) *NotionSource {
	s := &NotionSource{
		db:      notionapi.NewClient(notionapi.Token(token)).Database,
		dbID:    databaseID,
		limiter: rate.NewLimiter(3, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *NotionSource) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

// List pages through the database in Notion's natural order, skipping the
// first skip leads and returning at most limit.
func (s *NotionSource) List(ctx context.Context, skip, limit int) ([]model.Lead, error) {
	if limit <= 0 {
		limit = 100
	}

	var leads []model.Lead
	req := &notionapi.DatabaseQueryRequest{PageSize: 100}
	remaining := skip

	for {
		if err := s.wait(ctx); err != nil {
			return nil, eris.Wrap(err, "notion: rate limit")
		}
		resp, err := s.db.Query(ctx, notionapi.DatabaseID(s.dbID), req)
		if err != nil {
			return nil, eris.Wrapf(err, "notion: query database %s", s.dbID)
		}

		for _, page := range resp.Results {
			if remaining > 0 {
				remaining--
				continue
			}
			leads = append(leads, pageToLead(page))
			if len(leads) >= limit {
				return leads, nil
			}
		}

		if !resp.HasMore || resp.NextCursor == "" {
			return leads, nil
		}
		req.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
}

// GetByLeadID scans for a page whose Lead ID property matches. Notion has no
// server-side filter for rich-text equality across integrations we rely on,
// so this pages through the database.
func (s *NotionSource) GetByLeadID(ctx context.Context, leadID string) (*model.Lead, error) {
	req := &notionapi.DatabaseQueryRequest{PageSize: 100}

	for {
		if err := s.wait(ctx); err != nil {
			return nil, eris.Wrap(err, "notion: rate limit")
		}
		resp, err := s.db.Query(ctx, notionapi.DatabaseID(s.dbID), req)
		if err != nil {
			return nil, eris.Wrapf(err, "notion: query database %s", s.dbID)
		}

		for _, page := range resp.Results {
			lead := pageToLead(page)
			if lead.LeadID == leadID {
				return &lead, nil
			}
		}

		if !resp.HasMore || resp.NextCursor == "" {
			return nil, nil
		}
		req.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
}

// pageToLead maps a Notion page's properties onto a Lead. Missing or
// differently-typed properties are skipped.
func pageToLead(page notionapi.Page) model.Lead {
	lead := model.Lead{
		LeadID: richText(page, "Lead ID"),
	}
	if lead.LeadID == "" {
		lead.LeadID = string(page.ID)
	}

	lead.FullName = title(page, "Name")
	lead.FirstName = richText(page, "First Name")
	lead.LastName = richText(page, "Last Name")
	lead.Email = email(page, "Email")
	lead.Phone = phoneNumber(page, "Phone")
	lead.City = richText(page, "City")
	lead.StateProvince = selectName(page, "Province")
	lead.Country = selectName(page, "Country")
	lead.VehicleType = selectName(page, "Vehicle Type")
	lead.CurrentCredit = selectName(page, "Credit Situation")
	lead.EmploymentStatus = selectName(page, "Employment Status")
	lead.CompanyName = richText(page, "Company")

	return lead
}

func title(page notionapi.Page, name string) string {
	prop, ok := page.Properties[name]
	if !ok {
		return ""
	}
	tp, ok := prop.(*notionapi.TitleProperty)
	if !ok {
		return ""
	}
	var out string
	for _, rt := range tp.Title {
		out += rt.PlainText
	}
	return strings.TrimSpace(out)
}

func richText(page notionapi.Page, name string) string {
	prop, ok := page.Properties[name]
	if !ok {
		return ""
	}
	rtp, ok := prop.(*notionapi.RichTextProperty)
	if !ok {
		return ""
	}
	var out string
	for _, rt := range rtp.RichText {
		out += rt.PlainText
	}
	return strings.TrimSpace(out)
}

func email(page notionapi.Page, name string) string {
	prop, ok := page.Properties[name]
	if !ok {
		return ""
	}
	if ep, ok := prop.(*notionapi.EmailProperty); ok {
		return strings.TrimSpace(ep.Email)
	}
	return ""
}

func phoneNumber(page notionapi.Page, name string) string {
	prop, ok := page.Properties[name]
	if !ok {
		return ""
	}
	if pp, ok := prop.(*notionapi.PhoneNumberProperty); ok {
		return strings.TrimSpace(pp.PhoneNumber)
	}
	return ""
}

func selectName(page notionapi.Page, name string) string {
	prop, ok := page.Properties[name]
	if !ok {
		return ""
	}
	if sp, ok := prop.(*notionapi.SelectProperty); ok {
		return strings.TrimSpace(sp.Select.Name)
	}
	return ""
}
