package ports

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// View is a named, independently navigable container displaying one page at a time.
// How a page is painted is up to the implementation.
type View interface {
	// Path returns the path currently displayed, including any query.
	Path() string

	// InitialPath returns the path the view was mounted with.
	InitialPath() string

	// IsDefault reports whether this is the application's default view.
	IsDefault() bool

	// SetPage displays a page for a fresh forward navigation.
	SetPage(ctx context.Context, page domain.Page, path string) error

	// Restore displays a page in response to a browser gesture.
	// It must not record history.
	Restore(ctx context.Context, page domain.Page, path string) error
}
