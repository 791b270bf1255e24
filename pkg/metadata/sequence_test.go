package metadata

import (
	"testing"
)

func TestNextCode(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		existing []string
		expected string
	}{
		{"no existing ids", "PRD", nil, "PRD-0001"},
		{"sequential ids", "PRD", []string{"PRD-0001", "PRD-0002"}, "PRD-0003"},
		{"gap uses max not count", "PRD", []string{"PRD-0001", "PRD-0003"}, "PRD-0004"},
		{"foreign prefixes ignored", "MAT", []string{"PRD-0009", "MAT-0002"}, "MAT-0003"},
		{"malformed suffixes ignored", "PO", []string{"PO-abc", "PO-", "PO-0007-x", "PO-0005"}, "PO-0006"},
		{"negative suffix ignored", "PO", []string{"PO--12", "PO-0002"}, "PO-0003"},
		{"beyond padding width", "PRD", []string{"PRD-9999"}, "PRD-10000"},
		{"unpadded existing id", "PRD", []string{"PRD-12"}, "PRD-0013"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextCode(tt.prefix, tt.existing); got != tt.expected {
				t.Errorf("NextCode(%q, %v) = %q, want %q", tt.prefix, tt.existing, got, tt.expected)
			}
		})
	}
}
