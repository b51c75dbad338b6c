package mailbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/carnance/leadsync/internal/model"
)

const defaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

// GraphClient reads a Microsoft 365 mailbox via the Graph API using
// client-credentials (application) auth.
type GraphClient struct {
	baseURL string
	mailbox string
	tokens  oauth2.TokenSource
	http    *http.Client
	timeout time.Duration
}

// GraphOption configures a GraphClient.
type GraphOption func(*GraphClient)

// WithGraphBaseURL overrides the Graph API base URL.
func WithGraphBaseURL(u string) GraphOption {
	return func(c *GraphClient) { c.baseURL = u }
}

// WithGraphTimeout overrides the per-request timeout.
func WithGraphTimeout(d time.Duration) GraphOption {
	return func(c *GraphClient) { c.timeout = d }
}

// WithTokenSource replaces the client-credentials token source, used by
// tests to avoid a live token endpoint.
func WithTokenSource(ts oauth2.TokenSource) GraphOption {
	return func(c *GraphClient) { c.tokens = ts }
}

// NewGraph creates a GraphClient for the given Azure AD tenant and
// application credentials. mailbox is the monitored address.
func NewGraph(tenantID, clientID, clientSecret, mailbox string, opts ...GraphOption) *GraphClient {
	creds := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenantID),
		Scopes:       []string{"https://graph.microsoft.com/.default"},
	}

	c := &GraphClient{
		baseURL: defaultGraphBaseURL,
		mailbox: mailbox,
		tokens:  creds.TokenSource(context.Background()),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

// graphMessage mirrors the Graph message resource fields we consume.
type graphMessage struct {
	Subject string `json:"subject"`
	Body    struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
	From struct {
		EmailAddress struct {
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
	ReceivedDateTime time.Time `json:"receivedDateTime"`
	HasAttachments   bool      `json:"hasAttachments"`
}

// GetRecent fetches unread messages received within the window, newest
// first, up to maxCount.
func (c *GraphClient) GetRecent(ctx context.Context, maxCount int, window time.Duration) ([]model.EmailMessage, error) {
	if maxCount <= 0 {
		maxCount = 10
	}

	since := time.Now().UTC().Add(-window).Format(time.RFC3339)
	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("isRead eq false and receivedDateTime ge %s", since))
	query.Set("$orderby", "receivedDateTime desc")
	query.Set("$top", fmt.Sprintf("%d", maxCount))
	query.Set("$select", "subject,body,from,receivedDateTime,hasAttachments")

	endpoint := fmt.Sprintf("%s/users/%s/messages?%s", c.baseURL, url.PathEscape(c.mailbox), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "mailbox: build request")
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, eris.Wrap(err, "mailbox: acquire token")
	}
	token.SetAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "mailbox: list messages")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "mailbox: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("mailbox: graph returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Value []graphMessage `json:"value"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrap(err, "mailbox: parse response")
	}

	messages := make([]model.EmailMessage, 0, len(payload.Value))
	for _, m := range payload.Value {
		content := m.Body.Content
		if m.Body.ContentType == "html" {
			content = stripHTML(content)
		}
		messages = append(messages, model.EmailMessage{
			Subject:        m.Subject,
			Body:           content,
			Sender:         m.From.EmailAddress.Address,
			ReceivedAt:     m.ReceivedDateTime,
			HasAttachments: m.HasAttachments,
		})
	}
	return messages, nil
}
