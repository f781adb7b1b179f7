package summarize

import "testing"

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{"shorter than limit", "fever", 10, "fever"},
		{"exact limit", "fever", 5, "fever"},
		{"ascii cut", "shortness of breath", 9, "shortness"},
		{"multibyte kept whole", "température 38°C", 12, "température "},
		{"zero", "fever", 0, ""},
		{"negative", "fever", -1, ""},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.input, tt.n); got != tt.expected {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.expected)
			}
		})
	}
}
