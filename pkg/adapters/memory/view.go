package memory

import (
	"context"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Display records one page shown by a View.
type Display struct {
	Page     domain.Page
	Path     string
	Restored bool
}

// DisplayFunc runs before a View accepts a page. Returning an error rejects the display.
type DisplayFunc func(ctx context.Context, d Display) error

// View is a headless ports.View that remembers what it displayed.
// Safe for concurrent use.
type View struct {
	mu        sync.Mutex
	initial   string
	isDefault bool
	path      string
	page      domain.Page
	displays  []Display
	onDisplay DisplayFunc
}

// ViewOption configures a View.
type ViewOption func(*View)

// AsDefault marks the view as the application's default view.
func AsDefault() ViewOption {
	return func(v *View) {
		v.isDefault = true
	}
}

// WithDisplayFunc installs a hook run before every display (e.g. to block or fail in tests).
func WithDisplayFunc(fn DisplayFunc) ViewOption {
	return func(v *View) {
		v.onDisplay = fn
	}
}

// NewView creates a headless view mounted at initialPath.
func NewView(initialPath string, opts ...ViewOption) *View {
	v := &View{initial: initialPath, path: initialPath}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *View) Path() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.path
}

func (v *View) InitialPath() string {
	return v.initial
}

func (v *View) IsDefault() bool {
	return v.isDefault
}

func (v *View) SetPage(ctx context.Context, page domain.Page, path string) error {
	return v.show(ctx, Display{Page: page, Path: path})
}

func (v *View) Restore(ctx context.Context, page domain.Page, path string) error {
	return v.show(ctx, Display{Page: page, Path: path, Restored: true})
}

// Page returns the page currently displayed.
func (v *View) Page() domain.Page {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// Displays returns every page shown so far, oldest first.
func (v *View) Displays() []Display {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Display(nil), v.displays...)
}

func (v *View) show(ctx context.Context, d Display) error {
	if v.onDisplay != nil {
		if err := v.onDisplay(ctx, d); err != nil {
			return err
		}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.path = d.Path
	v.page = d.Page
	v.displays = append(v.displays, d)
	return nil
}
