package forecast

import (
	"math"
	"strings"
)

// SeriesPoint is one month of the forecast chart. Values holds one rounded
// prediction per region, nil when the region has no result for that month.
type SeriesPoint struct {
	Month     string              `json:"month"`
	Label     string              `json:"label"`
	Threshold float64             `json:"threshold"`
	Values    map[string]*float64 `json:"values"`
}

// Find returns the record joined by trimmed, case-insensitive region name and exact month code.
func Find(records []Record, region, month string) (Record, bool) {
	key := normalizeName(region)
	for _, rec := range records {
		if rec.Month == month && normalizeName(rec.Region) == key {
			return rec, true
		}
	}
	return Record{}, false
}

// Series reshapes records into per-month, per-region chart points.
func Series(records []Record, months []Month, regions []string, threshold float64) []SeriesPoint {
	out := make([]SeriesPoint, 0, len(months))
	for _, m := range months {
		point := SeriesPoint{Month: m.Code, Label: m.Label, Threshold: threshold, Values: make(map[string]*float64, len(regions))}
		for _, region := range regions {
			rec, ok := Find(records, region, m.Code)
			if !ok || rec.PredictedCases == nil {
				point.Values[region] = nil
				continue
			}
			rounded := math.Round(*rec.PredictedCases)
			point.Values[region] = &rounded
		}
		out = append(out, point)
	}
	return out
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
