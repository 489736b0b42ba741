package filter

import (
	"github.com/csdewars/ewars/internal/domain/hierarchy"
	"github.com/csdewars/ewars/internal/domain/selection"
	"github.com/csdewars/ewars/internal/domain/submission"
)

// Options holds the selectable values for every facet under the current selection.
type Options struct {
	Levels        map[hierarchy.Level][]string `json:"levels"`
	Organizations []string                     `json:"organizations"`
	Diseases      []string                     `json:"diseases"`
	MinDay        string                       `json:"minDay,omitempty"`
	MaxDay        string                       `json:"maxDay,omitempty"`
}

// LevelOptions lists the distinct values at levels[k] among rows whose value at
// every ancestor level is selected there. An empty ancestor selection is no
// constraint; unlike Apply, a row with an absent ancestor value does not pass a
// non-empty ancestor selection.
func LevelOptions(records []submission.FlatRecord, levels []hierarchy.Level, k int, state selection.State) []string {
	target := levels[k]
	ancestors := make([]map[string]struct{}, k)
	for i := 0; i < k; i++ {
		ancestors[i] = toSet(state.Levels[levels[i]])
	}

	out := hierarchy.NewOrderedSet()
	for _, rec := range records {
		ok := true
		for i, selected := range ancestors {
			if len(selected) == 0 {
				continue
			}
			if _, hit := selected[rec.LevelValue(levels[i])]; !hit {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if v := rec.LevelValue(target); v != "" {
			out.Add(v)
		}
	}
	return out.Values()
}

// BuildOptions computes every facet's option list. Organization and disease
// options come from rows passing the geography facets only.
func BuildOptions(records []submission.FlatRecord, levels []hierarchy.Level, state selection.State) Options {
	opts := Options{Levels: make(map[hierarchy.Level][]string, len(levels))}
	for k, level := range levels {
		opts.Levels[level] = LevelOptions(records, levels, k, state)
	}

	orgs := hierarchy.NewOrderedSet()
	diseases := hierarchy.NewOrderedSet()
	for _, rec := range ApplyGeography(records, state) {
		if rec.Organization != "" {
			orgs.Add(rec.Organization)
		}
		for _, d := range rec.Diseases {
			if d != "" {
				diseases.Add(d)
			}
		}
	}
	opts.Organizations = orgs.Values()
	opts.Diseases = diseases.Values()

	if days := Days(records); len(days) > 0 {
		opts.MinDay = days[0]
		opts.MaxDay = days[len(days)-1]
	}
	return opts
}
