package forecast

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/csdewars/ewars/pkg/errors"
	"github.com/csdewars/ewars/pkg/util"
)

const codeLayout = "2006-01-02"

// Month is one entry of a forecast window.
type Month struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// MonthName returns the English name for 1..12, or "".
func MonthName(n int) string {
	if n < 1 || n > 12 {
		return ""
	}
	return time.Month(n).String()
}

// NewMonth builds the Month for the first day of t's calendar month.
func NewMonth(t time.Time) Month {
	first := util.StartOfMonth(t)
	return Month{Code: first.Format(codeLayout), Label: fmt.Sprintf("%s %d", first.Month(), first.Year())}
}

// Window returns the previous, target and next months around target.
func Window(target time.Time) []Month {
	first := util.StartOfMonth(target)
	return []Month{
		NewMonth(first.AddDate(0, -1, 0)),
		NewMonth(first),
		NewMonth(first.AddDate(0, 1, 0)),
	}
}

// ParseMonthCode accepts "YYYY-MM" or "YYYY-MM-DD" and returns the first day of that month.
func ParseMonthCode(code string) (time.Time, error) {
	year, month, err := SplitMonthKey(code)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// SplitMonthKey extracts the year and month number from a month key.
func SplitMonthKey(key string) (year, month int, err error) {
	parts := strings.Split(strings.TrimSpace(key), "-")
	if len(parts) < 2 {
		return 0, 0, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf("invalid month key %q", key))
	}
	year, yErr := strconv.Atoi(parts[0])
	month, mErr := strconv.Atoi(parts[1])
	if yErr != nil || mErr != nil || month < 1 || month > 12 {
		return 0, 0, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf("invalid month key %q", key))
	}
	return year, month, nil
}

// PreviousMonthLabel turns "January 2025" into "December 2024".
func PreviousMonthLabel(label string) (string, error) {
	fields := strings.Fields(label)
	if len(fields) != 2 {
		return "", apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf("invalid month label %q", label))
	}
	year, err := strconv.Atoi(fields[1])
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("invalid month label %q", label), err)
	}
	for m := 1; m <= 12; m++ {
		if MonthName(m) == fields[0] {
			prev := time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
			return NewMonth(prev).Label, nil
		}
	}
	return "", apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf("invalid month label %q", label))
}
