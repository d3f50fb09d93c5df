package utils

import "testing"

func TestHashString_KnownValues(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{"hello", "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"},
		{"The quick brown fox jumps over the lazy dog", "2fd4e1c67a2d28fced849ee1bb76e7391b93eb12"},
	}
	for _, tt := range tests {
		if got := HashString(tt.input); got != tt.want {
			t.Errorf("HashString(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestHashString_SourceKeys(t *testing.T) {
	inputs := []string{
		"https://status.openai.com/feed.rss",
		"https://status.openai.com/feed.rss/",
		"http://status.openai.com/feed.rss",
		"https://status.openai.com/feed.atom",
		"https://status.redis.io/api/v2/status.json|https://status.redis.io/api/v2/incidents.json",
		"https://status.redis.io/api/v2/status.json|",
		"|https://status.redis.io/api/v2/incidents.json",
	}

	seen := make(map[string]string, len(inputs))
	for _, in := range inputs {
		h := HashString(in)
		if len(h) != 40 {
			t.Errorf("HashString(%q) has length %d, want 40", in, len(h))
		}
		for _, c := range h {
			if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
				t.Fatalf("HashString(%q) = %q is not lowercase hex", in, h)
			}
		}
		if other, dup := seen[h]; dup {
			t.Errorf("%q and %q share key %s", in, other, h)
		}
		seen[h] = in

		if HashString(in) != h {
			t.Errorf("HashString(%q) is not stable", in)
		}
	}
}

func BenchmarkHashString(b *testing.B) {
	url := "https://status.redis.io/api/v2/status.json|https://status.redis.io/api/v2/incidents.json"
	for i := 0; i < b.N; i++ {
		HashString(url)
	}
}
