package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/skinforge/internal/assets"
	"github.com/Faultbox/skinforge/internal/catalog"
	"github.com/Faultbox/skinforge/pkg/atlas"
)

// workspace writes a solid skin, an undecodable file and a catalog into a temp dir.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 120, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{
		"steve.png": buf.Bytes(),
		"junk.png":  []byte("junk"),
		"skins.json": []byte(`[
			{"name": "Knights", "description": "Armored heroes", "skins": [{"name": "Steve", "png": "steve.png"}]},
			{"name": "Forest Folk", "description": "Elves", "skins": [{"png": "steve.png"}]}
		]`),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runContext(t, context.Background(), args...)
}

func runContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	root := New().RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestBuild(t *testing.T) {
	dir := workspace(t)
	tests := []struct {
		name string
		out  string
	}{
		{"binary", "steve.glb"},
		{"json", "steve.gltf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.out)
			stdout, err := run(t, "build", filepath.Join(dir, "steve.png"), "-o", out)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if !strings.Contains(stdout, out) {
				t.Errorf("output does not name %s: %q", out, stdout)
			}
			data, err := os.ReadFile(out)
			if err != nil {
				t.Fatal(err)
			}
			if tt.name == "binary" && !bytes.HasPrefix(data, []byte("glTF")) {
				t.Error("expected GLB magic")
			}
			if tt.name == "json" && !bytes.Contains(data, []byte(`"generator"`)) {
				t.Error("expected a JSON glTF document")
			}
		})
	}
}

func TestBuildFromPack(t *testing.T) {
	dir := workspace(t)
	out := filepath.Join(dir, "knight.glb")
	_, err := run(t, "build", "--catalog", filepath.Join(dir, "skins.json"), "--pack", "knights", "--index", "0", "-o", out)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("model not written: %v", err)
	}

	_, err = run(t, "build", "--catalog", filepath.Join(dir, "skins.json"), "--pack", "knights", "--index", "3")
	if !errors.Is(err, catalog.ErrIndex) {
		t.Errorf("expected ErrIndex, got %v", err)
	}
}

func TestBuildErrors(t *testing.T) {
	dir := workspace(t)
	if _, err := run(t, "build"); !errors.Is(err, ErrNoSkin) {
		t.Errorf("expected ErrNoSkin, got %v", err)
	}
	if _, err := run(t, "build", filepath.Join(dir, "junk.png"), "-o", filepath.Join(dir, "x.glb")); !errors.Is(err, atlas.ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
	if _, err := run(t, "build", filepath.Join(dir, "steve.png"), "--alpha-threshold", "300"); err == nil {
		t.Error("expected an error for an out of range threshold")
	}
}

func TestPreview(t *testing.T) {
	dir := workspace(t)
	out := filepath.Join(dir, "steve.png.preview.png")
	if _, err := run(t, "preview", filepath.Join(dir, "steve.png"), "--scale", "2", "-o", out); err != nil {
		t.Fatalf("preview: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	a, err := atlas.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if a.Width() != 32 || a.Height() != 64 {
		t.Errorf("preview %dx%d, want 32x64", a.Width(), a.Height())
	}
}

func TestInspect(t *testing.T) {
	dir := workspace(t)
	out, err := run(t, "inspect", filepath.Join(dir, "steve.png"))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"64x64", "canonical", "head", "left_leg", "36"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestPacks(t *testing.T) {
	dir := workspace(t)
	cat := filepath.Join(dir, "skins.json")

	out, err := run(t, "packs", "--catalog", cat, "--skins")
	if err != nil {
		t.Fatalf("packs: %v", err)
	}
	for _, want := range []string{"Knights", "Forest Folk", "Steve", "Skin 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("packs output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "packs", "--catalog", cat, "--json", "elves")
	if err != nil {
		t.Fatalf("packs --json: %v", err)
	}
	var packs []catalog.Pack
	if err := json.Unmarshal([]byte(out), &packs); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(packs) != 1 || packs[0].Name != "Forest Folk" {
		t.Errorf("unexpected packs %+v", packs)
	}

	out, _ = run(t, "packs", "--catalog", cat, "pirates")
	if !strings.Contains(out, "no packs match") {
		t.Errorf("expected no-match notice, got %q", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, "skinforge.toml")
	if _, err := run(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := run(t, "config", "init", path); err == nil {
		t.Error("expected an error when the file exists")
	}
	if _, err := run(t, "config", "init", "--force", path); err != nil {
		t.Errorf("config init --force: %v", err)
	}

	out, err := run(t, "config", "show", "--config", path, "--alpha-threshold", "40")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "alpha_threshold: 40") {
		t.Errorf("flag override not shown:\n%s", out)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, ref, ext, want string
	}{
		{"model.glb", "a.png", ".glb", "model.glb"},
		{"", "skins/steve.png", ".glb", "steve.glb"},
		{"", "https://example.com/s/alex.png?v=2", ".preview.png", "alex.preview.png"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.output, tt.ref, tt.ext); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.output, tt.ref, got, tt.want)
		}
	}
}

func TestBuildWatch(t *testing.T) {
	dir := workspace(t)
	out := filepath.Join(dir, "watched.glb")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if _, err := runContext(t, ctx, "build", filepath.Join(dir, "steve.png"), "--watch", "-o", out); err != nil {
		t.Fatalf("build --watch: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("initial model not written: %v", err)
	}

	_, err := run(t, "build", "https://example.com/steve.png", "--watch")
	if !errors.Is(err, assets.ErrWatch) {
		t.Errorf("expected ErrWatch for a remote skin, got %v", err)
	}
}

func TestLayoutName(t *testing.T) {
	tests := []struct {
		w, h int
		want string
	}{
		{64, 64, "canonical 64x64"},
		{64, 32, "legacy 64x32"},
		{128, 32, "legacy 64x32"},
	}
	for _, tt := range tests {
		a := atlas.New(image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h)))
		if got := layoutName(a); got != tt.want {
			t.Errorf("layoutName(%dx%d) = %q, want %q", tt.w, tt.h, got, tt.want)
		}
	}
}
