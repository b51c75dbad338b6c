package twentycrm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConflict(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{
			name:   "canonical duplicate message",
			status: 400,
			body:   `{"messages":["Duplicate entry was detected"]}`,
			want:   true,
		},
		{
			name:   "bare duplicate entry",
			status: 400,
			body:   "duplicate entry",
			want:   true,
		},
		{
			name:   "duplicate and entry apart",
			status: 400,
			body:   "a duplicate record: this entry conflicts",
			want:   true,
		},
		{
			name:   "person already exists",
			status: 400,
			body:   "a person with this email already exists",
			want:   true,
		},
		{
			name:   "case insensitive",
			status: 400,
			body:   "DUPLICATE ENTRY WAS DETECTED",
			want:   true,
		},
		{
			name:   "already exists without person is not duplicate",
			status: 400,
			body:   "a company with this domain already exists",
			want:   false,
		},
		{
			name:   "plain validation error",
			status: 400,
			body:   `{"messages":["firstName should not be empty"]}`,
			want:   false,
		},
		{
			name:   "duplicate wording on non-400 status",
			status: 409,
			body:   "duplicate entry was detected",
			want:   false,
		},
		{
			name:   "server error",
			status: 500,
			body:   "internal error",
			want:   false,
		},
		{
			name:   "empty body",
			status: 400,
			body:   "",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateConflict(tt.status, tt.body))
		})
	}
}
