package selection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReconcileFacet(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, ReconcileFacet(nil, []string{"a", "b"}))
	require.Equal(t, []string{"b"}, ReconcileFacet([]string{"b", "z"}, []string{"a", "b"}))
	require.Empty(t, ReconcileFacet([]string{"z"}, []string{"a"}))
}

func TestReconcileFacets(t *testing.T) {
	state := State{Organizations: []string{"BRAC", "Gone"}}

	next := ReconcileFacets(state, []string{"BRAC", "IOM"}, []string{"malaria"})
	require.Equal(t, []string{"BRAC"}, next.Organizations)
	require.Equal(t, []string{"malaria"}, next.Diseases)
	require.Equal(t, []string{"BRAC", "Gone"}, state.Organizations)
}

func TestClampDateRange(t *testing.T) {
	cases := []struct {
		name string
		in   DateRange
		want DateRange
	}{
		{"open", DateRange{}, DateRange{Start: "2025-01-01", End: "2025-03-31"}},
		{"inside", DateRange{Start: "2025-02-01", End: "2025-02-10"}, DateRange{Start: "2025-02-01", End: "2025-02-10"}},
		{"outside", DateRange{Start: "2024-01-01", End: "2026-01-01"}, DateRange{Start: "2025-01-01", End: "2025-03-31"}},
		{"start after max", DateRange{Start: "2026-01-01", End: "2026-02-01"}, DateRange{Start: "2025-03-31", End: "2025-03-31"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ClampDateRange(tc.in, "2025-01-01", "2025-03-31"))
		})
	}

	require.Equal(t, DateRange{Start: "x"}, ClampDateRange(DateRange{Start: "x"}, "", ""))
}
