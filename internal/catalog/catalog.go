// Package catalog reads skins.json documents: an array of packs, each listing skins.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Catalog errors.
var (
	ErrFormat      = errors.New("catalog: malformed document")
	ErrUnknownPack = errors.New("catalog: unknown pack")
	ErrIndex       = errors.New("catalog: skin index out of range")
)

// Skin is one entry of a pack.
type Skin struct {
	Name string `json:"name"`
	PNG  string `json:"png"`
}

// Pack groups skins under a name.
type Pack struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"` // download link for the whole pack
	Skins       []Skin `json:"skins"`
}

// DisplayName returns the skin name, or "Skin N" for unnamed entries.
// i is the zero-based position of the skin in its pack.
func (s Skin) DisplayName(i int) string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return fmt.Sprintf("Skin %d", i+1)
}

// Skin returns the i-th skin of the pack.
func (p *Pack) Skin(i int) (Skin, error) {
	if i < 0 || i >= len(p.Skins) {
		return Skin{}, fmt.Errorf("%w: %d of %d in %q", ErrIndex, i, len(p.Skins), p.Name)
	}
	return p.Skins[i], nil
}

// Catalog is a parsed skins.json along with the location it was read from.
type Catalog struct {
	Packs []Pack
	base  string
}

// Parse decodes a catalog. Relative skin paths resolve against the working directory.
func Parse(r io.Reader) (*Catalog, error) {
	var packs []Pack
	dec := json.NewDecoder(r)
	if err := dec.Decode(&packs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	for i := range packs {
		if strings.TrimSpace(packs[i].Name) == "" {
			return nil, fmt.Errorf("%w: pack %d has no name", ErrFormat, i)
		}
	}
	return &Catalog{Packs: packs}, nil
}

// Load reads a catalog file. Relative skin paths resolve against its directory.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.base = filepath.Dir(path)
	return c, nil
}

// Fetcher is the subset of assets.Fetcher used to read remote catalogs.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Open reads a catalog from a path or URL through f.
func Open(ctx context.Context, f Fetcher, ref string) (*Catalog, error) {
	data, err := f.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	c, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	if isURL(ref) {
		c.base = ref
	} else {
		c.base = filepath.Dir(ref)
	}
	return c, nil
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Resolve turns a skin reference from the document into a fetchable path or URL.
func (c *Catalog) Resolve(ref string) string {
	if ref == "" || isURL(ref) || filepath.IsAbs(ref) || c.base == "" {
		return ref
	}
	if isURL(c.base) {
		base, err := url.Parse(c.base)
		if err != nil {
			return ref
		}
		rel, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return base.ResolveReference(rel).String()
	}
	return filepath.Join(c.base, filepath.FromSlash(path.Clean(ref)))
}

// Pack looks a pack up by name, exact match first, then case-insensitively.
func (c *Catalog) Pack(name string) (*Pack, error) {
	for i := range c.Packs {
		if c.Packs[i].Name == name {
			return &c.Packs[i], nil
		}
	}
	for i := range c.Packs {
		if strings.EqualFold(c.Packs[i].Name, name) {
			return &c.Packs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPack, name)
}

// Filter returns the packs whose name or description contains query, ignoring case.
// An empty query returns every pack.
func (c *Catalog) Filter(query string) []Pack {
	return Filter(c.Packs, query)
}

// Filter returns the packs whose name or description contains query, ignoring case.
func Filter(packs []Pack, query string) []Pack {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Pack, 0, len(packs))
	for _, p := range packs {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}
