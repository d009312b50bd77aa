package domain

import "context"

const (
	// NotFoundPattern marks the route rendered when nothing else matches.
	NotFoundPattern = "*"

	// DefaultFallbackPath is where a guard denial without a redirect sends the user.
	DefaultFallbackPath = "/"
)

// Page is opaque to the engine. It is handed unmodified from the route table to a View.
type Page any

// NavigateOptions tune a single navigation (or the default of a route).
// Precedence: navigate options, then route options, then the active view.
type NavigateOptions struct {
	// Views lists candidate target views; the first registered one wins.
	Views []string `json:"views,omitempty" yaml:"views,omitempty" mapstructure:"views"`
}

// View returns the options targeting the given candidate views.
func View(names ...string) *NavigateOptions {
	return &NavigateOptions{Views: names}
}

// HasView reports whether options name at least one view.
func (o *NavigateOptions) HasView() bool {
	return o != nil && len(o.Views) > 0
}

// Route maps a path pattern to a page.
type Route struct {
	// Path is either a literal path, a pattern with ":name" segments, or NotFoundPattern.
	Path    string           `json:"path"`
	Page    Page             `json:"page"`
	Guard   Guard            `json:"-"`
	Options *NavigateOptions `json:"options,omitempty"`
}

// TargetView returns the view declared by the route, if any.
func (r Route) TargetView() string {
	if !r.Options.HasView() {
		return ""
	}
	return r.Options.Views[0]
}

// Guard decides whether a route may be entered. It receives the route's declared path.
// Returned errors are treated as a denial.
type Guard func(ctx context.Context, path string) (GuardResult, error)

// GuardResult is the decision of a Guard.
type GuardResult struct {
	allowed  bool
	redirect string
}

// Allow permits the navigation.
func Allow() GuardResult { return GuardResult{allowed: true} }

// Deny rejects the navigation; the engine redirects to its fallback path.
func Deny() GuardResult { return GuardResult{} }

// RedirectTo rejects the navigation and redirects to path.
func RedirectTo(path string) GuardResult { return GuardResult{redirect: path} }

// Allowed reports whether the navigation may proceed.
func (g GuardResult) Allowed() bool { return g.allowed }

// Redirect returns the redirect target, or "" for a plain denial.
func (g GuardResult) Redirect() string { return g.redirect }
