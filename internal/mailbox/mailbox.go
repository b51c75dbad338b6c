// Package mailbox retrieves recent unread messages for lead extraction.
package mailbox

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/carnance/leadsync/internal/model"
)

// Client returns recent unread messages, newest within the recency window,
// capped at maxCount.
type Client interface {
	GetRecent(ctx context.Context, maxCount int, window time.Duration) ([]model.EmailMessage, error)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML reduces an HTML message body to plain text. Crude tag removal is
// enough for LLM extraction; layout fidelity does not matter.
func stripHTML(body string) string {
	text := tagPattern.ReplaceAllString(body, " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	return strings.Join(strings.Fields(text), " ")
}
