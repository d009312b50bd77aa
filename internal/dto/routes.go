package dto

// RouteFile is the on-disk shape of a route configuration (YAML or JSON).
// It uses "mapstructure" tags so any decoded document can be mapped onto it.
type RouteFile struct {
	Fallback string            `json:"fallback,omitempty" mapstructure:"fallback"`
	Routes   []RouteDefinition `json:"routes" mapstructure:"routes"`
	Views    []ViewDefinition  `json:"views,omitempty" mapstructure:"views"`
}

// RouteDefinition declares one route.
type RouteDefinition struct {
	Path string `json:"path" mapstructure:"path"`
	Page any    `json:"page" mapstructure:"page"`

	// Guard is "allow", "deny", "redirect:/path" or the name of a registered guard.
	Guard string `json:"guard,omitempty" mapstructure:"guard"`

	// View is shorthand for a single entry in Views.
	View  string   `json:"view,omitempty" mapstructure:"view"`
	Views []string `json:"views,omitempty" mapstructure:"views"`
}

// ViewDefinition declares a view the host mounts at startup.
type ViewDefinition struct {
	Name    string `json:"name" mapstructure:"name"`
	Path    string `json:"path" mapstructure:"path"`
	Default bool   `json:"default,omitempty" mapstructure:"default"`
}

// TargetViews merges View and Views, View first.
func (r RouteDefinition) TargetViews() []string {
	if r.View == "" {
		return r.Views
	}
	return append([]string{r.View}, r.Views...)
}
