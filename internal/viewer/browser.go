package viewer

import (
	"context"
	"errors"

	"github.com/Faultbox/skinforge/internal/assets"
	"github.com/Faultbox/skinforge/internal/catalog"
)

// ErrNoPacks is returned when a catalog has nothing to browse.
var ErrNoPacks = errors.New("catalog has no packs")

// Browser steps a Viewer through the skins of a catalog.
type Browser struct {
	ctx    context.Context
	cat    *catalog.Catalog
	view   *Viewer
	pack   int
	cursor *catalog.Cursor
}

// NewBrowser opens pack (or the first pack when empty) and shows its first skin.
func NewBrowser(ctx context.Context, cat *catalog.Catalog, v *Viewer, pack string) (*Browser, error) {
	if len(cat.Packs) == 0 {
		return nil, ErrNoPacks
	}
	b := &Browser{ctx: ctx, cat: cat, view: v}
	if pack != "" {
		p, err := cat.Pack(pack)
		if err != nil {
			return nil, err
		}
		for i := range cat.Packs {
			if &cat.Packs[i] == p {
				b.pack = i
			}
		}
	}
	b.cursor = catalog.NewCursor(&cat.Packs[b.pack])
	return b, b.show()
}

// Cursor returns the position within the current pack.
func (b *Browser) Cursor() *catalog.Cursor {
	return b.cursor
}

// NextSkin shows the next skin of the pack, wrapping around.
func (b *Browser) NextSkin() error {
	if _, err := b.cursor.Next(); err != nil {
		return err
	}
	return b.show()
}

// PrevSkin shows the previous skin of the pack, wrapping around.
func (b *Browser) PrevSkin() error {
	if _, err := b.cursor.Prev(); err != nil {
		return err
	}
	return b.show()
}

// NextPack moves to the first skin of the next pack.
func (b *Browser) NextPack() error {
	return b.switchPack(1)
}

// PrevPack moves to the first skin of the previous pack.
func (b *Browser) PrevPack() error {
	return b.switchPack(-1)
}

func (b *Browser) switchPack(delta int) error {
	n := len(b.cat.Packs)
	b.pack = ((b.pack+delta)%n + n) % n
	b.cursor = catalog.NewCursor(&b.cat.Packs[b.pack])
	return b.show()
}

// LocalRefs lists the distinct skins of the catalog that live on disk.
func (b *Browser) LocalRefs() []string {
	seen := make(map[string]bool)
	var refs []string
	for _, p := range b.cat.Packs {
		for _, s := range p.Skins {
			ref := b.cat.Resolve(s.PNG)
			if assets.IsRemote(ref) || seen[ref] {
				continue
			}
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

// Ref returns the reference of the skin under the cursor, or "" for an empty pack.
func (b *Browser) Ref() string {
	s, err := b.cursor.Current()
	if err != nil {
		return ""
	}
	return b.cat.Resolve(s.PNG)
}

// Reload loads the skin under the cursor again.
func (b *Browser) Reload() error {
	return b.show()
}

// show loads the skin under the cursor. Empty packs leave the display as it is.
func (b *Browser) show() error {
	s, err := b.cursor.Current()
	if err != nil {
		return err
	}
	_, err = b.view.Show(b.ctx, b.cat.Resolve(s.PNG))
	return err
}

// Title describes the current skin and viewer state for a window title.
func (b *Browser) Title() string {
	title := b.cursor.Title()
	switch {
	case b.view.State() == StateLoading:
		title += " [loading]"
	case b.view.Err() != nil:
		title += " [unavailable]"
	}
	return title
}
