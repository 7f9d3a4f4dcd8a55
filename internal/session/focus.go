package session

import "sync"

// FocusController tracks which single session is displayed in the primary
// pane. Focus is purely a UI pointer: setting or clearing it never touches
// the underlying session, which is what lets an exchange keep running and
// eventually flip a toast to done while the user is reading something else.
type FocusController struct {
	mu      sync.Mutex
	focused string
}

// NewFocusController creates a controller with nothing focused.
func NewFocusController() *FocusController {
	return &FocusController{}
}

// Focus points the primary pane at the given session id. An empty id clears
// focus.
func (f *FocusController) Focus(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focused = id
}

// Clear removes focus without touching any session.
func (f *FocusController) Clear() {
	f.Focus("")
}

// Focused returns the focused session id, or false when nothing is focused.
func (f *FocusController) Focused() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.focused == "" {
		return "", false
	}
	return f.focused, true
}

// Drop clears focus only if it currently points at id. Used when a session
// is dismissed so focus never dangles.
func (f *FocusController) Drop(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.focused == id {
		f.focused = ""
	}
}
