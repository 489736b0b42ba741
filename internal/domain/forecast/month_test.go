package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/csdewars/ewars/pkg/errors"
)

func TestWindowCrossesYearBoundaries(t *testing.T) {
	months := Window(time.Date(2025, time.January, 17, 23, 0, 0, 0, time.FixedZone("BDT", 6*3600)))

	require.Equal(t, []Month{
		{Code: "2024-12-01", Label: "December 2024"},
		{Code: "2025-01-01", Label: "January 2025"},
		{Code: "2025-02-01", Label: "February 2025"},
	}, months)

	months = Window(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC))
	require.Equal(t, "2026-01-01", months[2].Code)
}

func TestPreviousMonthLabel(t *testing.T) {
	prev, err := PreviousMonthLabel("January 2025")
	require.NoError(t, err)
	require.Equal(t, "December 2024", prev)

	prev, err = PreviousMonthLabel("July 2025")
	require.NoError(t, err)
	require.Equal(t, "June 2025", prev)

	_, err = PreviousMonthLabel("Smarch 2025")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestSplitMonthKey(t *testing.T) {
	year, month, err := SplitMonthKey("2025-03-01")
	require.NoError(t, err)
	require.Equal(t, 2025, year)
	require.Equal(t, 3, month)

	_, _, err = SplitMonthKey("2025")
	require.Error(t, err)
	_, _, err = SplitMonthKey("2025-13")
	require.Error(t, err)

	first, err := ParseMonthCode("2025-03")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), first)
	require.Equal(t, "March", MonthName(3))
	require.Empty(t, MonthName(0))
}

func mustParse(t *testing.T, code string) time.Time {
	t.Helper()
	v, err := ParseMonthCode(code)
	require.NoError(t, err)
	return v
}
