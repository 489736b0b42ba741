package geojoin

import (
	"strconv"
	"strings"

	"github.com/csdewars/ewars/internal/domain/forecast"
)

// View joins case counts onto features for one data source.
type View interface {
	Kind() string
	CaseCount(f Feature, monthKey string) *float64
}

// ForecastView joins predictions by upazila name and month code.
type ForecastView struct {
	Records []forecast.Record
}

func (ForecastView) Kind() string { return "forecast" }

func (v ForecastView) CaseCount(f Feature, monthKey string) *float64 {
	rec, ok := forecast.Find(v.Records, f.UpazilaName, monthKey)
	if !ok {
		return nil
	}
	return rec.PredictedCases
}

// ActualRecord is one month of reported cases for an upazila.
type ActualRecord struct {
	UpazilaID   string   `json:"UpazilaID"`
	ReportYear  string   `json:"ReportYear"`
	ReportMonth string   `json:"ReportMonth"`
	Cases       *float64 `json:"CASEE"`
	Tests       *float64 `json:"TEST"`
	Deaths      *float64 `json:"DEATH"`
}

// ActualView joins reported cases by upazila ID and (year, month name).
type ActualView struct {
	Records []ActualRecord
}

func (ActualView) Kind() string { return "actual" }

func (v ActualView) CaseCount(f Feature, monthKey string) *float64 {
	rec, ok := v.Find(f.UpazilaID, monthKey)
	if !ok {
		return nil
	}
	return rec.Cases
}

// Find returns the record for id in the month named by monthKey ("YYYY-MM" or "YYYY-MM-DD").
func (v ActualView) Find(id, monthKey string) (ActualRecord, bool) {
	y, month, err := forecast.SplitMonthKey(monthKey)
	if err != nil {
		return ActualRecord{}, false
	}
	year := strconv.Itoa(y)
	name := forecast.MonthName(month)
	for _, rec := range v.Records {
		if rec.UpazilaID == id && rec.ReportYear == year && strings.EqualFold(strings.TrimSpace(rec.ReportMonth), name) {
			return rec, true
		}
	}
	return ActualRecord{}, false
}

// FilterActualsByBoundary drops records whose upazila ID is not among features.
func FilterActualsByBoundary(records []ActualRecord, features []Feature) []ActualRecord {
	known := make(map[string]struct{}, len(features))
	for _, f := range features {
		if f.UpazilaID != "" {
			known[f.UpazilaID] = struct{}{}
		}
	}
	out := make([]ActualRecord, 0, len(records))
	for _, rec := range records {
		if _, ok := known[rec.UpazilaID]; ok {
			out = append(out, rec)
		}
	}
	return out
}
