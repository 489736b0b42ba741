package selection

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/csdewars/ewars/internal/domain/hierarchy"
	apperrors "github.com/csdewars/ewars/pkg/errors"
)

type row map[hierarchy.Level]string

func (r row) LevelValue(level hierarchy.Level) string { return r[level] }

func fixture() *hierarchy.Hierarchy {
	return hierarchy.Build(hierarchy.BoundaryLevels, []row{
		{hierarchy.Division: "Chattogram", hierarchy.District: "Cox's Bazar", hierarchy.Upazila: "Teknaf"},
		{hierarchy.Division: "Chattogram", hierarchy.District: "Cox's Bazar", hierarchy.Upazila: "Ukhia"},
		{hierarchy.Division: "Chattogram", hierarchy.District: "Bandarban", hierarchy.Upazila: "Lama"},
		{hierarchy.Division: "Sylhet", hierarchy.District: "Moulvibazar", hierarchy.Upazila: "Kamalganj"},
		{hierarchy.Division: "Dhaka", hierarchy.District: "Gazipur"},
	})
}

func TestInitialSelectsEverything(t *testing.T) {
	h := fixture()
	state := Initial(h)

	require.Equal(t, h.Options(hierarchy.Division), state.Selected(hierarchy.Division))
	require.Equal(t, h.Options(hierarchy.Upazila), state.Selected(hierarchy.Upazila))
}

func TestReduceCascadeConsistency(t *testing.T) {
	h := fixture()
	state := Initial(h)

	next, err := Reduce(h, PolicyFullCascade, state, SetLevel(hierarchy.Division, "Chattogram", "Dhaka"))
	require.NoError(t, err)

	districts := h.Descendants(hierarchy.Division, []string{"Chattogram", "Dhaka"})
	require.Equal(t, districts, next.Selected(hierarchy.District))
	require.Equal(t, h.Descendants(hierarchy.District, districts), next.Selected(hierarchy.Upazila))
	require.Equal(t, []string{"Teknaf", "Ukhia", "Lama"}, next.Selected(hierarchy.Upazila))
}

func TestReduceRepopulatesRatherThanPrunes(t *testing.T) {
	h := fixture()
	state := Initial(h)

	narrowed, err := Reduce(h, PolicyFullCascade, state, SetLevel(hierarchy.Upazila, "Teknaf"))
	require.NoError(t, err)
	require.Equal(t, []string{"Teknaf"}, narrowed.Selected(hierarchy.Upazila))

	widened, err := Reduce(h, PolicyFullCascade, narrowed, SetLevel(hierarchy.District, "Cox's Bazar"))
	require.NoError(t, err)
	require.Equal(t, []string{"Teknaf", "Ukhia"}, widened.Selected(hierarchy.Upazila))
}

func TestReduceEmptySelectionEmptiesBelow(t *testing.T) {
	h := fixture()

	next, err := Reduce(h, PolicyFullCascade, Initial(h), SetLevel(hierarchy.Division))
	require.NoError(t, err)
	require.Empty(t, next.Selected(hierarchy.District))
	require.Empty(t, next.Selected(hierarchy.Upazila))
	require.NotNil(t, next.Levels[hierarchy.Upazila])
}

func TestReduceKeepsUnknownNamesVerbatim(t *testing.T) {
	h := fixture()

	next, err := Reduce(h, PolicyFullCascade, Initial(h), SetLevel(hierarchy.District, "Gazipur", "Atlantis"))
	require.NoError(t, err)
	require.Equal(t, []string{"Gazipur", "Atlantis"}, next.Selected(hierarchy.District))
	require.Empty(t, next.Selected(hierarchy.Upazila))
}

func TestReduceResetPolicyClearsFacets(t *testing.T) {
	h := fixture()
	state := Initial(h)
	state.Organizations = []string{"BRAC"}
	state.Diseases = []string{"malaria"}

	kept, err := Reduce(h, PolicyFullCascade, state, SetLevel(hierarchy.Division, "Sylhet"))
	require.NoError(t, err)
	require.Equal(t, []string{"BRAC"}, kept.Organizations)

	reset, err := Reduce(h, PolicyCascadeResetFacets, state, SetLevel(hierarchy.Division, "Sylhet"))
	require.NoError(t, err)
	require.Empty(t, reset.Organizations)
	require.Empty(t, reset.Diseases)
}

func TestReduceFacetActionsLeaveGeographyAlone(t *testing.T) {
	h := fixture()
	state := Initial(h)

	next, err := Reduce(h, PolicyCascadeResetFacets, state, Action{Kind: KindSetDiseases, Names: []string{"dengue"}})
	require.NoError(t, err)
	require.Equal(t, []string{"dengue"}, next.Diseases)
	require.Equal(t, state.Selected(hierarchy.Upazila), next.Selected(hierarchy.Upazila))

	next, err = Reduce(h, PolicyCascadeResetFacets, next, Action{Kind: KindSetDateRange, DateRange: DateRange{Start: "2025-01-01"}})
	require.NoError(t, err)
	require.Equal(t, "2025-01-01", next.DateRange.Start)
	require.Equal(t, []string{"dengue"}, next.Diseases)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	h := fixture()
	state := Initial(h)
	before := state.Clone()

	_, err := Reduce(h, PolicyCascadeResetFacets, state, SetLevel(hierarchy.Division, "Dhaka"))
	require.NoError(t, err)
	require.Equal(t, before, state)
}

func TestReduceRejectsUnknownInput(t *testing.T) {
	h := fixture()

	_, err := Reduce(h, PolicyFullCascade, Initial(h), SetLevel(hierarchy.Ward, "x"))
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = Reduce(h, PolicyFullCascade, Initial(h), Action{Kind: "toggle"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}
