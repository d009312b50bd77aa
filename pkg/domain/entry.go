package domain

// HistoryState is the payload stored in the host's native history.
// It carries only the entry key; the full Entry is looked up in memory.
type HistoryState struct {
	Key int64 `json:"key"`
}

// Location is what the engine asks the history store to record.
type Location struct {
	Path         string           `json:"path"`
	ViewName     string           `json:"view_name"`
	RouteOptions *NavigateOptions `json:"route_options,omitempty"`
}

// Entry is one recorded navigation.
type Entry struct {
	Key int64 `json:"key"`
	Location
	// IsBacked marks entries the user navigated away from with a backward gesture.
	// They are erased by the next push.
	IsBacked bool `json:"is_backed"`
}

// State returns the native payload for the entry.
func (e Entry) State() HistoryState {
	return HistoryState{Key: e.Key}
}
