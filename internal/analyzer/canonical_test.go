package analyzer

import (
	"testing"

	"github.com/lotas/tabdedupe/internal/types"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		input string
		mode  types.MatchMode
		want  string
	}{
		{"https://Example.COM/page", types.MatchHost, "example.com"},
		{"https://example.com:8080/page", types.MatchHost, "example.com:8080"},
		{"https://example.com/a/b/", types.MatchHostPath, "example.com/a/b"},
		{"https://example.com/a//", types.MatchHostPath, "example.com/a"},
		{"https://example.com/", types.MatchHostPath, "example.com"},
		{"https://example.com", types.MatchHostPath, "example.com"},
		{"https://example.com/page#frag", types.MatchHostPath, "example.com/page"},
		{"https://www.example.com/a/", types.MatchHostPath, "www.example.com/a"},
		{"https://www.example.com/a/", types.MatchHostPathNoWWW, "example.com/a"},
		{"https://WWW.Example.com/a", types.MatchHostPathNoWWW, "example.com/a"},
		{"https://x.com/?b=2&a=1", types.MatchHostPathQuery, "x.com?a=1&b=2"},
		{"https://x.com/p?a=2&a=1", types.MatchHostPathQuery, "x.com/p?a=1&a=2"},
		{"https://x.com/p?q=a+b&r=%2F", types.MatchHostPathQuery, "x.com/p?q=a b&r=/"},
		{"https://x.com/p?a=1&&b", types.MatchHostPathQuery, "x.com/p?a=1&b="},
		{"https://x.com/p", types.MatchHostPathQuery, "x.com/p?"},
		{"https://x.com/a%20b", types.MatchHostPath, "x.com/a%20b"},
		{"about:newtab", types.MatchHostPath, "newtab"},
		{"about:preferences", types.MatchHostPathNoWWW, "preferences"},
		{"about:preferences?x=1", types.MatchHostPathQuery, "preferences?x=1"},
		{"data:text/plain,hi", types.MatchHostPath, "text/plain,hi"},
		{"about:newtab", types.MatchHost, ""},
		{"https://a.com:443/x", types.MatchHostPath, "a.com/x"},
		{"http://a.com:80/x", types.MatchHostPath, "a.com/x"},
		{"http://a.com:443/x", types.MatchHostPath, "a.com:443/x"},
		{"https://[::1]:443/x", types.MatchHost, "[::1]"},
	}

	for _, tt := range tests {
		got := Canonicalize(tt.input, tt.mode)
		if got != tt.want {
			t.Errorf("Canonicalize(%q, %s) = %q, want %q", tt.input, tt.mode, got, tt.want)
		}
	}
}

func TestCanonicalizeFallsBackToRawInput(t *testing.T) {
	for _, raw := range []string{"not a url", "http://[::1", ""} {
		for _, mode := range types.MatchModes {
			if got := Canonicalize(raw, mode); got != raw {
				t.Errorf("Canonicalize(%q, %s) = %q, want raw input", raw, mode, got)
			}
		}
	}
}

func TestCanonicalizeEquivalence(t *testing.T) {
	a := "https://www.example.com/a/"
	b := "https://WWW.EXAMPLE.com/a"
	if Canonicalize(a, types.MatchHostPathNoWWW) != Canonicalize(b, types.MatchHostPathNoWWW) {
		t.Error("expected equal keys under host+path-no-www")
	}
	if Canonicalize(a, types.MatchHostPath) != Canonicalize(b, types.MatchHostPath) {
		t.Error("expected equal keys under host+path; only case and slash differ")
	}
	if Canonicalize("https://www.example.com/a", types.MatchHostPath) == Canonicalize("https://example.com/a", types.MatchHostPath) {
		t.Error("www and bare host must differ under host+path")
	}
	if Canonicalize("http://example.com/a", types.MatchHostPath) != Canonicalize("https://example.com/a", types.MatchHostPath) {
		t.Error("scheme is not part of the key")
	}
	if Canonicalize("https://x.com/?b=2&a=1", types.MatchHostPathQuery) != Canonicalize("https://x.com/?a=1&b=2", types.MatchHostPathQuery) {
		t.Error("query order must not matter")
	}
}

func TestCanonicalizeDeterministic(t *testing.T) {
	raw := "https://Example.com/x/?z=1&y=2#top"
	for _, mode := range types.MatchModes {
		first := Canonicalize(raw, mode)
		for i := 0; i < 3; i++ {
			if got := Canonicalize(raw, mode); got != first {
				t.Fatalf("mode %s: got %q then %q", mode, first, got)
			}
		}
	}
}
