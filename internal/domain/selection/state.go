package selection

import (
	"github.com/csdewars/ewars/internal/domain/hierarchy"
)

// DateRange is an inclusive range of ISO days. An empty bound is open.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// State is the full multi-level selection plus the independent facets.
type State struct {
	Levels        map[hierarchy.Level][]string `json:"levels"`
	Organizations []string                     `json:"organizations"`
	Diseases      []string                     `json:"diseases"`
	DateRange     DateRange                    `json:"dateRange"`
}

// Selected returns the selection at level. Never nil.
func (s State) Selected(level hierarchy.Level) []string {
	if v, ok := s.Levels[level]; ok && v != nil {
		return v
	}
	return []string{}
}

// Clone deep-copies the state so reducers never alias a caller's slices.
func (s State) Clone() State {
	out := State{
		Levels:        make(map[hierarchy.Level][]string, len(s.Levels)),
		Organizations: cloneStrings(s.Organizations),
		Diseases:      cloneStrings(s.Diseases),
		DateRange:     s.DateRange,
	}
	for level, names := range s.Levels {
		out.Levels[level] = cloneStrings(names)
	}
	return out
}

// Initial selects every option at every level of h.
func Initial(h *hierarchy.Hierarchy) State {
	state := State{
		Levels:        make(map[hierarchy.Level][]string),
		Organizations: []string{},
		Diseases:      []string{},
	}
	for _, level := range h.Levels() {
		state.Levels[level] = h.Options(level)
	}
	return state
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
