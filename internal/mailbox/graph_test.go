package mailbox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const graphResponse = `{
  "value": [
    {
      "subject": "New lead: Marie Tremblay",
      "body": {"contentType": "html", "content": "<p>Name: Marie&nbsp;Tremblay</p><p>Phone: 519-717-4414</p>"},
      "from": {"emailAddress": {"address": "forms@dealer.example"}},
      "receivedDateTime": "2026-08-29T14:05:00Z",
      "hasAttachments": false
    },
    {
      "subject": "Re: financing",
      "body": {"contentType": "text", "content": "plain body"},
      "from": {"emailAddress": {"address": "jean@example.com"}},
      "receivedDateTime": "2026-08-29T13:00:00Z",
      "hasAttachments": true
    }
  ]
}`

func testGraph(t *testing.T, handler http.HandlerFunc) *GraphClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"})
	return NewGraph("tenant", "client", "secret", "leads@dealer.example",
		WithGraphBaseURL(srv.URL),
		WithTokenSource(ts),
	)
}

func TestGetRecent(t *testing.T) {
	var gotPath, gotAuth string
	var gotQuery map[string][]string

	c := testGraph(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(graphResponse))
	})

	msgs, err := c.GetRecent(context.Background(), 10, 30*time.Minute)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "/users/leads@dealer.example/messages", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, []string{"10"}, gotQuery["$top"])
	assert.Contains(t, gotQuery["$filter"][0], "isRead eq false")

	assert.Equal(t, "New lead: Marie Tremblay", msgs[0].Subject)
	assert.Equal(t, "Name: Marie Tremblay Phone: 519-717-4414", msgs[0].Body)
	assert.Equal(t, "forms@dealer.example", msgs[0].Sender)
	assert.False(t, msgs[0].HasAttachments)

	assert.Equal(t, "plain body", msgs[1].Body)
	assert.True(t, msgs[1].HasAttachments)
}

func TestGetRecentHTTPError(t *testing.T) {
	c := testGraph(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":"ErrorAccessDenied"}}`))
	})

	_, err := c.GetRecent(context.Background(), 5, time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>hello <b>world</b></p>", "hello world"},
		{"a&nbsp;b &amp; c", "a b & c"},
		{"no markup", "no markup"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripHTML(tt.in))
	}
}
