package fs

import "testing"

func TestSkipMatcher_Match(t *testing.T) {
	m := NewSkipMatcher(nil)

	tests := []struct {
		name string
		want bool
	}{
		{"@eaDir", true},
		{"Thumbs.db", true},
		{"@Recycle", true},
		{"#recycle", true},
		{".thumbnail", true},
		{"mp4", true},
		{"zip", true},
		{".git", true},     // dot prefix
		{".anything", true}, // dot prefix
		{"photos", false},
		{"2019-holiday", false},
		{"mp4s", false},
	}

	for _, tt := range tests {
		if got := m.Match(tt.name); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNewSkipMatcher_Extra(t *testing.T) {
	m := NewSkipMatcher([]string{"node_modules", "  ", "cache"})

	if !m.Match("node_modules") {
		t.Error("Match(node_modules) = false, want true")
	}
	if !m.Match("cache") {
		t.Error("Match(cache) = false, want true")
	}
	if m.Match("") {
		t.Error("Match(\"\") = true, blank extra entry was not dropped")
	}
	// Defaults still apply alongside extras.
	if !m.Match("@eaDir") {
		t.Error("Match(@eaDir) = false, want true")
	}
}
