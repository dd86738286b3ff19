package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple", input: "alice", want: "alice"},
		{name: "lowercased", input: "Alice", want: "alice"},
		{name: "trimmed", input: "  bob.smith  ", want: "bob.smith"},
		{name: "digits and separators", input: "user_42-x", want: "user_42-x"},
		{name: "too short", input: "ab", wantErr: true},
		{name: "too long", input: "a123456789012345678901234567890", wantErr: true},
		{name: "spaces inside", input: "a b c", wantErr: true},
		{name: "special characters", input: "user@host", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeUsername(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
