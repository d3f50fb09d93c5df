package utils

import (
	"testing"
)

func TestContainsAny(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		keywords []string
		expected bool
	}{
		{
			name:     "Contains one keyword",
			text:     "This is a test message with error",
			keywords: []string{"error", "warning", "failure"},
			expected: true,
		},
		{
			name:     "Contains multiple keywords",
			text:     "System failure detected with error code",
			keywords: []string{"error", "warning", "failure"},
			expected: true,
		},
		{
			name:     "Contains no keywords",
			text:     "This is a normal message",
			keywords: []string{"error", "warning", "failure"},
			expected: false,
		},
		{
			name:     "Case sensitive match",
			text:     "This has ERROR in caps",
			keywords: []string{"error", "warning", "failure"},
			expected: false,
		},
		{
			name:     "Case sensitive match - exact case",
			text:     "This has error in lowercase",
			keywords: []string{"error", "warning", "failure"},
			expected: true,
		},
		{
			name:     "Empty keywords",
			text:     "Any text here",
			keywords: []string{},
			expected: false,
		},
		{
			name:     "Empty text",
			text:     "",
			keywords: []string{"error", "warning"},
			expected: false,
		},
		{
			name:     "Partial word match",
			text:     "This is an errors message",
			keywords: []string{"error"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ContainsAny(tt.text, tt.keywords)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "Lowercases", text: "CRITICAL Outage", expected: "critical outage"},
		{name: "Empty text", text: "", expected: ""},
		{name: "Invalid UTF-8 replaced", text: "Down\xff now", expected: "down\uFFFD now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeText(tt.text)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Simple name", input: "OpenAI", expected: "openai"},
		{name: "Spaces and punctuation", input: "Google Cloud (GCP)", expected: "google-cloud-gcp"},
		{name: "Dotted name", input: "Fly.io", expected: "fly-io"},
		{name: "Leading and trailing junk", input: "  --Render--  ", expected: "render"},
		{name: "Empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Slugify(tt.input)
			if result != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func BenchmarkContainsAny(b *testing.B) {
	text := "This is a long text message that contains various keywords and phrases that we need to search through for performance testing"
	keywords := []string{"error", "warning", "failure", "critical", "emergency", "alert", "issue", "problem"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ContainsAny(text, keywords)
	}
}
