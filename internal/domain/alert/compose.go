package alert

import (
	"bytes"
	"html/template"
	"math"
	"strconv"

	"github.com/csdewars/ewars/internal/domain/forecast"
	"github.com/csdewars/ewars/internal/domain/geojoin"
)

var bodyTemplate = template.Must(template.New("alert").Parse(`<h3>Malaria Prediction Alert</h3>
<table border="1" cellspacing="0" cellpadding="4" style="border-collapse:collapse;">
  <tr>
    <th>Upazila</th>
    <th>Month</th>
    <th>Predicted Cases</th>
    <th>Risk</th>
  </tr>
{{- range .}}
  <tr>
    <td>{{.Region}}</td>
    <td>{{.Month}}</td>
    <td style="text-align:center;">{{.Cases}}</td>
    <td style="text-align:center;"><span style="color:#fff; border-radius:5px; padding:2px 7px; font-weight:bold; {{if eq .Risk "High"}}background:#ef4444;{{else if eq .Risk "Mid"}}background:#f59e42;{{else}}background:#22c55e;{{end}}">{{.Risk}}</span></td>
  </tr>
{{- end}}
</table>`))

type bodyRow struct {
	Region string
	Month  string
	Cases  string
	Risk   string
}

// ComposeBody renders the HTML table for records whose region is in upazilas.
func ComposeBody(records []forecast.Record, upazilas []string, threshold float64) (string, error) {
	if threshold <= 0 {
		threshold = geojoin.DefaultThreshold
	}
	scale := geojoin.ThresholdScale{Threshold: threshold}
	wanted := make(map[string]struct{}, len(upazilas))
	for _, u := range upazilas {
		wanted[u] = struct{}{}
	}

	rows := make([]bodyRow, 0, len(records))
	for _, rec := range records {
		if _, ok := wanted[rec.Region]; !ok {
			continue
		}
		row := bodyRow{Region: rec.Region, Month: rec.Month, Cases: "-"}
		var rounded *float64
		if rec.PredictedCases != nil {
			v := math.Round(*rec.PredictedCases)
			rounded = &v
			row.Cases = strconv.FormatFloat(v, 'f', -1, 64)
		}
		row.Risk = scale.Label(rounded)
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, rows); err != nil {
		return "", err
	}
	return buf.String(), nil
}
