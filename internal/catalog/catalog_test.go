package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `[
  {"name": "Knights", "description": "Armored heroes", "location": "packs/knights.zip",
   "skins": [{"name": "Red Knight", "png": "skins/red.png"}, {"name": "", "png": "skins/blue.png"}]},
  {"name": "Forest Folk", "description": "Elves and druids of the KNIGHTLY wood", "skins": []},
  {"name": "Robots", "skins": [{"name": "Unit 7", "png": "https://cdn.example.com/u7.png"}]}
]`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(c.Packs) != 3 {
		t.Fatalf("expected 3 packs, got %d", len(c.Packs))
	}
	k := c.Packs[0]
	if k.Location != "packs/knights.zip" || len(k.Skins) != 2 {
		t.Errorf("unexpected first pack %+v", k)
	}
	if k.Skins[0].PNG != "skins/red.png" {
		t.Errorf("unexpected png %q", k.Skins[0].PNG)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", "packs!"},
		{"object instead of array", `{"name": "x"}`},
		{"unnamed pack", `[{"skins": []}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.doc)); !errors.Is(err, ErrFormat) {
				t.Errorf("expected ErrFormat, got %v", err)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	c, _ := Parse(strings.NewReader(sample))
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Knights", "Forest Folk", "Robots"}},
		{"   ", []string{"Knights", "Forest Folk", "Robots"}},
		{"knight", []string{"Knights", "Forest Folk"}},
		{"ROBO", []string{"Robots"}},
		{"druids", []string{"Forest Folk"}},
		{"pirates", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := c.Filter(tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Filter(%q) returned %d packs, want %d", tt.query, len(got), len(tt.want))
			}
			for i, p := range got {
				if p.Name != tt.want[i] {
					t.Errorf("Filter(%q)[%d] = %s, want %s", tt.query, i, p.Name, tt.want[i])
				}
			}
		})
	}
}

func TestPackLookup(t *testing.T) {
	c, _ := Parse(strings.NewReader(sample))
	p, err := c.Pack("robots")
	if err != nil || p.Name != "Robots" {
		t.Errorf("case-insensitive lookup failed: %v %v", p, err)
	}
	if _, err := c.Pack("Pirates"); !errors.Is(err, ErrUnknownPack) {
		t.Errorf("expected ErrUnknownPack, got %v", err)
	}
	if _, err := p.Skin(1); !errors.Is(err, ErrIndex) {
		t.Errorf("expected ErrIndex, got %v", err)
	}
}

func TestDisplayName(t *testing.T) {
	c, _ := Parse(strings.NewReader(sample))
	skins := c.Packs[0].Skins
	if got := skins[0].DisplayName(0); got != "Red Knight" {
		t.Errorf("DisplayName = %q", got)
	}
	if got := skins[1].DisplayName(1); got != "Skin 2" {
		t.Errorf("unnamed DisplayName = %q", got)
	}
}

func TestLoadResolvesRelative(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skins.json")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := c.Resolve("skins/red.png"); got != filepath.Join(dir, "skins", "red.png") {
		t.Errorf("Resolve relative = %q", got)
	}
	if got := c.Resolve("https://cdn.example.com/u7.png"); got != "https://cdn.example.com/u7.png" {
		t.Errorf("Resolve URL = %q", got)
	}
	abs := filepath.Join(dir, "else.png")
	if got := c.Resolve(abs); got != abs {
		t.Errorf("Resolve absolute = %q", got)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

type fakeFetcher map[string]string

func (f fakeFetcher) Fetch(_ context.Context, ref string) ([]byte, error) {
	data, ok := f[ref]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(data), nil
}

func TestOpenRemote(t *testing.T) {
	f := fakeFetcher{"https://example.com/market/skins.json": sample}
	c, err := Open(context.Background(), f, "https://example.com/market/skins.json")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := c.Resolve("skins/red.png"); got != "https://example.com/market/skins/red.png" {
		t.Errorf("Resolve against URL = %q", got)
	}
	if _, err := Open(context.Background(), f, "https://example.com/other.json"); err == nil {
		t.Error("expected fetch error")
	}
}

func TestParseWithoutBase(t *testing.T) {
	c, _ := Parse(strings.NewReader(sample))
	if got := c.Resolve("skins/red.png"); got != "skins/red.png" {
		t.Errorf("Resolve without base = %q", got)
	}
}
