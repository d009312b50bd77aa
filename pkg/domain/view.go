package domain

// ViewDescriptor is a snapshot of a registered view.
type ViewDescriptor struct {
	Name        string `json:"name"`
	IsDefault   bool   `json:"is_default"`
	CurrentPath string `json:"current_path"`
	InitialPath string `json:"initial_path"`
	Active      bool   `json:"active"`
}
