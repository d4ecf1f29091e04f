// Package input turns SDL2 events into viewer actions.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Action is a viewer command produced by input.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionNextSkin
	ActionPrevSkin
	ActionNextPack
	ActionPrevPack
	ActionScreenshot
	ActionResetCamera
)

// Bindings maps keys to actions.
var Bindings = map[sdl.Keycode]Action{
	sdl.K_ESCAPE:   ActionQuit,
	sdl.K_RIGHT:    ActionNextSkin,
	sdl.K_DOWN:     ActionNextSkin,
	sdl.K_LEFT:     ActionPrevSkin,
	sdl.K_UP:       ActionPrevSkin,
	sdl.K_PAGEDOWN: ActionNextPack,
	sdl.K_PAGEUP:   ActionPrevPack,
	sdl.K_F12:      ActionScreenshot,
	sdl.K_HOME:     ActionResetCamera,
}

// Frame is the input gathered during one frame.
type Frame struct {
	Actions []Action
	// Drag is the mouse movement in pixels while the left button is held.
	DragX, DragY float32
	// Wheel is the scroll amount, positive away from the user.
	Wheel float32
	// Resized is set when the window changed size.
	Resized       bool
	Width, Height int
	DragStarted   bool
	DragEnded     bool
}

// Has reports whether the frame contains a.
func (f *Frame) Has(a Action) bool {
	for _, got := range f.Actions {
		if got == a {
			return true
		}
	}
	return false
}

// Input handles all input processing.
type Input struct {
	frame    Frame
	dragging bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{frame: Frame{Actions: make([]Action, 0, 8)}}
}

// Poll drains pending SDL events and returns this frame's input.
// The returned frame is reused by the next call.
func (i *Input) Poll() *Frame {
	i.frame = Frame{Actions: i.frame.Actions[:0]}

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.frame.Actions = append(i.frame.Actions, ActionQuit)

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.frame.Resized = true
				i.frame.Width, i.frame.Height = int(e.Data1), int(e.Data2)
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				if a, ok := Bindings[e.Keysym.Sym]; ok {
					i.frame.Actions = append(i.frame.Actions, a)
				}
			}

		case *sdl.MouseButtonEvent:
			if e.Button != sdl.BUTTON_LEFT {
				continue
			}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				i.dragging = true
				i.frame.DragStarted = true
			} else if e.Type == sdl.MOUSEBUTTONUP {
				i.dragging = false
				i.frame.DragEnded = true
			}

		case *sdl.MouseMotionEvent:
			if i.dragging {
				i.frame.DragX += float32(e.XRel)
				i.frame.DragY += float32(e.YRel)
			}

		case *sdl.MouseWheelEvent:
			y := float32(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				y = -y
			}
			i.frame.Wheel += y
		}
	}
	return &i.frame
}
