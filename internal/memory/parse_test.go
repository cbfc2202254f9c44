package memory

import "testing"

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"bare object", `{"type": "semantic"}`, `{"type": "semantic"}`, true},
		{"wrapped in prose", `Sure! Here you go: {"type": "semantic"} Hope that helps.`, `{"type": "semantic"}`, true},
		{"markdown fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`, true},
		{"nested braces", `note {"outer": {"inner": 1}} done`, `{"outer": {"inner": 1}}`, true},
		{"no braces", "just words", "", false},
		{"reversed braces", "} backwards {", "", false},
		{"invalid fragment", `{"unterminated": `, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := firstJSONObject(tt.content)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && string(got) != tt.want {
				t.Errorf("fragment = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseStrictFloat(t *testing.T) {
	if f, ok := parseStrictFloat("  0.85\n"); !ok || f != 0.85 {
		t.Errorf("parseStrictFloat = %v, %v", f, ok)
	}
	if _, ok := parseStrictFloat("roughly 0.85"); ok {
		t.Error("commentary should not parse as a strict float")
	}
	if _, ok := parseStrictFloat(""); ok {
		t.Error("empty reply should not parse")
	}
}

func TestParseEmbeddedFraction(t *testing.T) {
	tests := []struct {
		content string
		want    float64
		ok      bool
	}{
		{"I'd rate this 0.75 overall.", 0.75, true},
		{"Score: .6 seems fair", 0.6, true},
		{"Definitely a 1.0 here", 1.0, true},
		{"0", 0, true},
		{"importance is high", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseEmbeddedFraction(tt.content)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseEmbeddedFraction(%q) = %v, %v; want %v, %v", tt.content, got, ok, tt.want, tt.ok)
		}
	}
}

func TestOverlapRelevance(t *testing.T) {
	tests := []struct {
		query, content string
		want           float64
	}{
		{"python", "python is a programming language", 0.5},
		{"python rust", "python is a programming language", 0.25},
		{"Go", "go is compiled", 0.5}, // case-insensitive
		{"haskell", "python is a programming language", 0},
		{"", "anything", 0},
	}
	for _, tt := range tests {
		if got := overlapRelevance(tt.query, tt.content); !almostEqual(got, tt.want) {
			t.Errorf("overlapRelevance(%q, %q) = %v, want %v", tt.query, tt.content, got, tt.want)
		}
	}
}
