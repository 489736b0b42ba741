package filter

import (
	"sort"

	"github.com/csdewars/ewars/internal/domain/hierarchy"
	"github.com/csdewars/ewars/internal/domain/selection"
	"github.com/csdewars/ewars/internal/domain/submission"
)

// Apply returns the records passing every facet of state. A facet passes when
// its selection is empty, when the record has no value for it, or when the
// value is selected. Days outside the inclusive range fail; absent days pass.
func Apply(records []submission.FlatRecord, state selection.State) []submission.FlatRecord {
	m := newMatcher(state)
	out := make([]submission.FlatRecord, 0, len(records))
	for _, rec := range records {
		if m.geography(rec) && m.facets(rec) && m.day(rec.Day) {
			out = append(out, rec)
		}
	}
	return out
}

// ApplyGeography applies only the hierarchy facets of state.
func ApplyGeography(records []submission.FlatRecord, state selection.State) []submission.FlatRecord {
	m := newMatcher(state)
	out := make([]submission.FlatRecord, 0, len(records))
	for _, rec := range records {
		if m.geography(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Days returns the sorted distinct non-empty days in records.
func Days(records []submission.FlatRecord) []string {
	set := hierarchy.NewOrderedSet()
	for _, rec := range records {
		if rec.Day != "" {
			set.Add(rec.Day)
		}
	}
	days := set.Values()
	sort.Strings(days)
	return days
}

// Point is a map marker for a located record.
type Point struct {
	Lat    float64               `json:"lat"`
	Lng    float64               `json:"lng"`
	Record submission.FlatRecord `json:"record"`
}

// Points returns a marker for every record with usable coordinates.
func Points(records []submission.FlatRecord) []Point {
	out := make([]Point, 0)
	for _, rec := range records {
		if !rec.HasCoordinates() {
			continue
		}
		out = append(out, Point{Lat: *rec.Latitude, Lng: *rec.Longitude, Record: rec})
	}
	return out
}

type matcher struct {
	levels   map[hierarchy.Level]map[string]struct{}
	orgs     map[string]struct{}
	diseases map[string]struct{}
	dates    selection.DateRange
}

func newMatcher(state selection.State) matcher {
	m := matcher{
		levels:   make(map[hierarchy.Level]map[string]struct{}, len(state.Levels)),
		orgs:     toSet(state.Organizations),
		diseases: toSet(state.Diseases),
		dates:    state.DateRange,
	}
	for level, names := range state.Levels {
		if len(names) > 0 {
			m.levels[level] = toSet(names)
		}
	}
	return m
}

func (m matcher) geography(rec submission.FlatRecord) bool {
	for level, selected := range m.levels {
		if !passes(selected, rec.LevelValue(level)) {
			return false
		}
	}
	return true
}

func (m matcher) facets(rec submission.FlatRecord) bool {
	if !passes(m.orgs, rec.Organization) {
		return false
	}
	if len(m.diseases) == 0 || len(rec.Diseases) == 0 {
		return true
	}
	for _, d := range rec.Diseases {
		if _, ok := m.diseases[d]; ok {
			return true
		}
	}
	return false
}

func (m matcher) day(day string) bool {
	if day == "" {
		return true
	}
	if m.dates.Start != "" && day < m.dates.Start {
		return false
	}
	if m.dates.End != "" && day > m.dates.End {
		return false
	}
	return true
}

func passes(selected map[string]struct{}, value string) bool {
	if len(selected) == 0 || value == "" {
		return true
	}
	_, ok := selected[value]
	return ok
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
