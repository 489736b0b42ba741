package selection

import (
	"fmt"

	"github.com/csdewars/ewars/internal/domain/hierarchy"
	apperrors "github.com/csdewars/ewars/pkg/errors"
)

// Kind tags an Action.
type Kind string

const (
	KindSetLevel         Kind = "set_level"
	KindSetOrganizations Kind = "set_organizations"
	KindSetDiseases      Kind = "set_diseases"
	KindSetDateRange     Kind = "set_date_range"
)

// Policy decides what happens to the non-geographic facets when a level changes.
type Policy string

const (
	// PolicyFullCascade re-selects every valid descendant and leaves facets untouched.
	PolicyFullCascade Policy = "full_cascade"
	// PolicyCascadeResetFacets also clears organization and disease selections.
	PolicyCascadeResetFacets Policy = "cascade_reset_facets"
)

// Action is a single mutation of State.
type Action struct {
	Kind      Kind            `json:"kind"`
	Level     hierarchy.Level `json:"level,omitempty"`
	Names     []string        `json:"names,omitempty"`
	DateRange DateRange       `json:"dateRange,omitempty"`
}

// SetLevel builds a level action.
func SetLevel(level hierarchy.Level, names ...string) Action {
	return Action{Kind: KindSetLevel, Level: level, Names: names}
}

// Reduce applies action to state and returns the new state. The input is not modified.
func Reduce(h *hierarchy.Hierarchy, policy Policy, state State, action Action) (State, error) {
	next := state.Clone()
	switch action.Kind {
	case KindSetLevel:
		if !h.Contains(action.Level) {
			return state, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf("unknown level %q", action.Level))
		}
		next.Levels[action.Level] = cloneStrings(action.Names)
		cascade(h, next, action.Level)
		if policy == PolicyCascadeResetFacets {
			next.Organizations = []string{}
			next.Diseases = []string{}
		}
	case KindSetOrganizations:
		next.Organizations = cloneStrings(action.Names)
	case KindSetDiseases:
		next.Diseases = cloneStrings(action.Names)
	case KindSetDateRange:
		next.DateRange = action.DateRange
	default:
		return state, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf("unknown action %q", action.Kind))
	}
	return next, nil
}

// cascade fully repopulates every level below from, top-down.
func cascade(h *hierarchy.Hierarchy, state State, from hierarchy.Level) {
	parentLevel := from
	for _, level := range h.Below(from) {
		parents := state.Levels[parentLevel]
		if len(parents) == 0 {
			state.Levels[level] = []string{}
		} else {
			state.Levels[level] = h.Descendants(parentLevel, parents)
		}
		parentLevel = level
	}
}
