package twentycrm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPersonID(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{
			name: "top level id",
			resp: Response{"id": "p-1"},
			want: "p-1",
		},
		{
			name: "personId field",
			resp: Response{"personId": "p-2"},
			want: "p-2",
		},
		{
			name: "person field",
			resp: Response{"person": "p-3"},
			want: "p-3",
		},
		{
			name: "nested data id",
			resp: Response{"data": map[string]any{"id": "p-4"}},
			want: "p-4",
		},
		{
			name: "id precedes nested data",
			resp: Response{"id": "p-5", "data": map[string]any{"id": "other"}},
			want: "p-5",
		},
		{
			name: "person object rather than string is skipped",
			resp: Response{"person": map[string]any{"id": "p-6"}},
			want: "",
		},
		{
			name: "data not an object",
			resp: Response{"data": "p-7"},
			want: "",
		},
		{
			name: "nothing extractable",
			resp: Response{"status": "ok"},
			want: "",
		},
		{
			name: "nil response",
			resp: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPersonID(tt.resp))
		})
	}
}
