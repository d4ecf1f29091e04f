package catalog

import "fmt"

// Cursor walks the skins of one pack with wrap-around.
type Cursor struct {
	pack  *Pack
	index int
}

// NewCursor starts at the first skin of p.
func NewCursor(p *Pack) *Cursor {
	return &Cursor{pack: p}
}

// Pack returns the pack being walked.
func (c *Cursor) Pack() *Pack { return c.pack }

// Index returns the current zero-based position.
func (c *Cursor) Index() int { return c.index }

// Len returns the number of skins in the pack.
func (c *Cursor) Len() int { return len(c.pack.Skins) }

// Current returns the skin under the cursor.
func (c *Cursor) Current() (Skin, error) {
	return c.pack.Skin(c.index)
}

// Next moves forward one skin, wrapping to the first.
func (c *Cursor) Next() (Skin, error) {
	return c.step(1)
}

// Prev moves back one skin, wrapping to the last.
func (c *Cursor) Prev() (Skin, error) {
	return c.step(-1)
}

func (c *Cursor) step(delta int) (Skin, error) {
	n := c.Len()
	if n == 0 {
		return Skin{}, fmt.Errorf("%w: pack %q is empty", ErrIndex, c.pack.Name)
	}
	c.index = ((c.index+delta)%n + n) % n
	return c.pack.Skins[c.index], nil
}

// At moves to position i. Out-of-range positions leave the cursor unchanged.
func (c *Cursor) At(i int) (Skin, error) {
	s, err := c.pack.Skin(i)
	if err != nil {
		return Skin{}, err
	}
	c.index = i
	return s, nil
}

// Title formats the current position as "pack – skin (i / n)".
func (c *Cursor) Title() string {
	if c.Len() == 0 {
		return c.pack.Name
	}
	s := c.pack.Skins[c.index]
	return fmt.Sprintf("%s – %s (%d / %d)", c.pack.Name, s.DisplayName(c.index), c.index+1, c.Len())
}
