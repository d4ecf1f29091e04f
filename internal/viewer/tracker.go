package viewer

import (
	"fmt"
	"sync"

	"github.com/Faultbox/skinforge/pkg/skin"
)

// Tracker is a headless Backend that accounts for the resources a GPU backend
// would create: one texture per face material and one buffer per voxel mesh.
type Tracker struct {
	mu       sync.Mutex
	live     map[*skin.Model]int
	uploaded []*skin.Model
	released int

	// Fail, when set, is consulted before every upload.
	Fail func(m *skin.Model) error
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{live: make(map[*skin.Model]int)}
}

// Resources returns the number of GPU objects m would need.
func Resources(m *skin.Model) int {
	if m.Placeholder {
		return len(m.Parts)
	}
	n := 0
	for _, p := range m.Parts {
		for _, mat := range p.Materials {
			if mat != nil {
				n++
			}
		}
		if len(p.Voxels) > 0 {
			n++
		}
	}
	return n
}

// Upload records m as live.
func (t *Tracker) Upload(m *skin.Model) error {
	if t.Fail != nil {
		if err := t.Fail(m); err != nil {
			return err
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.live[m]; ok {
		return fmt.Errorf("model %p uploaded twice", m)
	}
	t.live[m] = Resources(m)
	t.uploaded = append(t.uploaded, m)
	return nil
}

// Release drops m. Releasing an unknown model does nothing.
func (t *Tracker) Release(m *skin.Model) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.live[m]; ok {
		delete(t.live, m)
		t.released++
	}
}

// Live returns the number of live models and their resource total.
func (t *Tracker) Live() (models, resources int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, n := range t.live {
		models++
		resources += n
	}
	return models, resources
}

// Uploaded returns every model ever uploaded, in order.
func (t *Tracker) Uploaded() []*skin.Model {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*skin.Model(nil), t.uploaded...)
}

// Released returns the number of release calls that freed a model.
func (t *Tracker) Released() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.released
}

var _ Backend = (*Tracker)(nil)
