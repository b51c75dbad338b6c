package twentycrm

import (
	"net/http"
	"strings"
)

// The CRM reports a duplicate person as a plain 400 with prose in the body;
// nothing in its contract guarantees the wording. The phrase tables below are
// a best-effort heuristic: anything that doesn't match stays a hard 400.

// duplicatePhrases are substrings that alone identify a duplicate-entry
// rejection (matched case-insensitively).
var duplicatePhrases = []string{
	"duplicate entry was detected",
	"duplicate entry",
}

// duplicatePhrasePairs are word pairs whose co-occurrence identifies a
// duplicate-entry rejection.
var duplicatePhrasePairs = [][2]string{
	{"duplicate", "entry"},
	{"already exists", "person"},
}

// IsDuplicateConflict reports whether a CRM error response indicates the
// entity already exists. Only 400 responses qualify; the body text is
// matched against the phrase tables case-insensitively.
func IsDuplicateConflict(statusCode int, body string) bool {
	if statusCode != http.StatusBadRequest {
		return false
	}

	text := strings.ToLower(body)
	for _, phrase := range duplicatePhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	for _, pair := range duplicatePhrasePairs {
		if strings.Contains(text, pair[0]) && strings.Contains(text, pair[1]) {
			return true
		}
	}
	return false
}
