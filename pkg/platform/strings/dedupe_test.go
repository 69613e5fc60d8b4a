package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrimLower(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "lowercases and trims",
			input:    []string{"  Example.COM ", "app.example.com"},
			expected: []string{"example.com", "app.example.com"},
		},
		{
			name:     "case-insensitive duplicates collapse to first occurrence",
			input:    []string{"Example.com", "EXAMPLE.COM", "other.com"},
			expected: []string{"example.com", "other.com"},
		},
		{
			name:     "drops empty and whitespace-only entries",
			input:    []string{"", "   ", "example.com"},
			expected: []string{"example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrimLower(tt.input))
		})
	}
}
