package facematch

import "testing"

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Alice@Example.com", "alice@example.com"},
		{"  bob@example.com \n", "bob@example.com"},
		{"josé@example.com", "josé@example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeEmail(tt.input); got != tt.expected {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  Ada   \t Lovelace "); got != "Ada Lovelace" {
		t.Errorf("NormalizeName = %q", got)
	}
}

func TestFoldName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Honza", "honza"},
		{"Jiří", "jiri"},
		{"Žluťoučký  kůň", "zlutoucky kun"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FoldName(tt.input); got != tt.expected {
				t.Errorf("FoldName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
