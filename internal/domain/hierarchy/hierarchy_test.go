package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type row map[Level]string

func (r row) LevelValue(level Level) string { return r[level] }

func TestBuildRecordsOptionsAndChildren(t *testing.T) {
	rows := []row{
		{Division: "Chattogram", District: "Cox's Bazar", Upazila: "Teknaf"},
		{Division: "Chattogram", District: "Cox's Bazar", Upazila: "Ukhia"},
		{Division: "Chattogram", District: "Bandarban", Upazila: "Lama"},
		{Division: "Chattogram", District: "Cox's Bazar", Upazila: "Teknaf"},
		{Division: "Dhaka", District: "Gazipur"},
	}

	h := Build(BoundaryLevels, rows)

	require.Equal(t, []string{"Chattogram", "Dhaka"}, h.Options(Division))
	require.Equal(t, []string{"Cox's Bazar", "Bandarban", "Gazipur"}, h.Options(District))
	require.Equal(t, []string{"Teknaf", "Ukhia", "Lama"}, h.Options(Upazila))
	require.Equal(t, []string{"Cox's Bazar", "Bandarban"}, h.Children(Division, "Chattogram"))
	require.Equal(t, []string{"Teknaf", "Ukhia"}, h.Children(District, "Cox's Bazar"))
}

func TestBuildLeafWithoutChildrenMapsToEmptySet(t *testing.T) {
	h := Build(BoundaryLevels, []row{{Division: "Dhaka", District: "Gazipur"}})

	kids := h.Children(District, "Gazipur")
	require.NotNil(t, kids)
	require.Empty(t, kids)
	require.Contains(t, h.ChildMap(District), "Gazipur")
	require.Empty(t, h.Children(District, "Unknown"))
}

func TestBuildKeepsOrphans(t *testing.T) {
	h := Build(BoundaryLevels, []row{
		{District: "Sylhet", Upazila: "Beanibazar"},
		{Division: "Sylhet", District: "Moulvibazar"},
	})

	require.Equal(t, []string{"Sylhet", "Moulvibazar"}, h.Options(District))
	require.Equal(t, []string{"Moulvibazar"}, h.Children(Division, "Sylhet"))
	require.Equal(t, []string{"Beanibazar"}, h.Children(District, "Sylhet"))
	require.Empty(t, h.Descendants(Division, []string{"Unknown"}))
}

func TestBuildIgnoresBlankValues(t *testing.T) {
	h := Build(BoundaryLevels, []row{{Division: "  ", District: "Khulna", Upazila: ""}})

	require.Empty(t, h.Options(Division))
	require.Equal(t, []string{"Khulna"}, h.Options(District))
	require.Empty(t, h.Children(District, "Khulna"))
}

func TestChildrenAreContainedInChildOptions(t *testing.T) {
	rows := []row{
		{Division: "A", District: "A1", Upazila: "A1x", Union: "u1", Ward: "w1", Area: "v1"},
		{Division: "A", District: "A2", Upazila: "A2x", Union: "u2"},
		{Division: "B", Upazila: "orphan", Union: "u3", Ward: "w3"},
		{District: "A1", Upazila: "A1y", Ward: "w9", Area: "v9"},
	}
	h := Build(SurveyLevels, rows)

	for _, level := range SurveyLevels {
		child, ok := h.Child(level)
		if !ok {
			continue
		}
		for parent, kids := range h.ChildMap(level) {
			require.True(t, h.HasOption(level, parent), "parent %s missing at %s", parent, level)
			for _, kid := range kids {
				require.True(t, h.HasOption(child, kid), "child %s missing at %s", kid, child)
			}
		}
	}
}

func TestDescendantsUnionInParentOrder(t *testing.T) {
	h := Build(BoundaryLevels, []row{
		{Division: "A", District: "a2"},
		{Division: "B", District: "b1"},
		{Division: "A", District: "a1"},
	})

	require.Equal(t, []string{"b1", "a2", "a1"}, h.Descendants(Division, []string{"B", "A", "B"}))
}

func TestLevelNavigation(t *testing.T) {
	h := Build(SurveyLevels, []row{})

	child, ok := h.Child(Union)
	require.True(t, ok)
	require.Equal(t, Ward, child)
	_, ok = h.Child(Area)
	require.False(t, ok)
	require.Equal(t, []Level{Ward, Area}, h.Below(Union))
	require.Equal(t, []Level{Division, District}, h.Above(Upazila))
	require.False(t, h.Contains("village"))
}

func TestUnique(t *testing.T) {
	require.Equal(t, []string{"b", "a"}, Unique([]string{"b", "", "a", "b"}))
	require.NotNil(t, Unique(nil))
}
