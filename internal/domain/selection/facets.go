package selection

// ReconcileFacet adjusts a facet selection after its option list changed.
// An empty selection takes every option; otherwise it is pruned to options still present.
func ReconcileFacet(selected, options []string) []string {
	if len(selected) == 0 {
		return cloneStrings(options)
	}
	available := make(map[string]struct{}, len(options))
	for _, o := range options {
		available[o] = struct{}{}
	}
	out := make([]string, 0, len(selected))
	for _, s := range selected {
		if _, ok := available[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// ReconcileFacets applies ReconcileFacet to both organization and disease selections.
func ReconcileFacets(state State, organizations, diseases []string) State {
	next := state.Clone()
	next.Organizations = ReconcileFacet(state.Organizations, organizations)
	next.Diseases = ReconcileFacet(state.Diseases, diseases)
	return next
}

// ClampDateRange pulls both bounds of r into [minDay, maxDay]. Empty bounds become the limits.
func ClampDateRange(r DateRange, minDay, maxDay string) DateRange {
	if minDay == "" || maxDay == "" {
		return r
	}
	out := r
	if out.Start == "" || out.Start < minDay {
		out.Start = minDay
	}
	if out.Start > maxDay {
		out.Start = maxDay
	}
	if out.End == "" || out.End > maxDay {
		out.End = maxDay
	}
	if out.End < minDay {
		out.End = minDay
	}
	return out
}
