package links_test

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"mdref/internal/links"
)

func TestNormalizeLabel(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"foo", "foo"},
		{"FOO", "foo"},
		{"  Foo   Bar  ", "foo bar"},
		{"a\tb", "a b"},
		{"", ""},
	}
	for _, c := range cases {
		if got := links.NormalizeLabel(c.input); got != c.expected {
			t.Errorf("NormalizeLabel(%q): expected %q, got %q", c.input, c.expected, got)
		}
	}
}

func definitionLink(line protocol.UInteger, ref, target string) links.Link {
	return links.Link{
		Kind: links.LinkDefinition,
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: 0},
			End:   protocol.Position{Line: line, Character: 10},
		},
		Ref:      ref,
		HrefText: target,
	}
}

func TestDefinitionSetFirstWins(t *testing.T) {
	set := links.NewDefinitionSet([]links.Link{
		definitionLink(0, "Alpha", "/first.md"),
		definitionLink(1, "alpha", "/second.md"),
		definitionLink(2, "beta", "/b.md"),
	})

	if set.Len() != 2 {
		t.Fatalf("expected 2 distinct labels, got %d", set.Len())
	}

	def, ok := set.Lookup("ALPHA")
	if !ok {
		t.Fatal("expected lookup to resolve case-insensitively")
	}
	if def.HrefText != "/first.md" {
		t.Errorf("expected first occurrence to win, got target %q", def.HrefText)
	}

	if !set.Has("  beta ") {
		t.Error("expected whitespace-insensitive membership check")
	}
	if set.Has("gamma") {
		t.Error("did not expect a definition for gamma")
	}
}
