package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/csdewars/ewars/internal/domain/submission"
	"github.com/csdewars/ewars/internal/domain/surveillance"
)

// ContentTypeXLSX is the MIME type of the workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Submissions"

type column struct {
	header string
	width  float64
	value  func(submission.FlatRecord) any
}

var columns = []column{
	{"Day", 12, func(r submission.FlatRecord) any { return r.Day }},
	{"Division", 14, func(r submission.FlatRecord) any { return r.Division }},
	{"District", 14, func(r submission.FlatRecord) any { return r.District }},
	{"Upazila", 14, func(r submission.FlatRecord) any { return r.Upazila }},
	{"Union", 14, func(r submission.FlatRecord) any { return r.Union }},
	{"Ward", 10, func(r submission.FlatRecord) any { return r.Ward }},
	{"Area", 14, func(r submission.FlatRecord) any { return r.Area }},
	{"Organization", 16, func(r submission.FlatRecord) any { return r.Organization }},
	{"Designation", 16, func(r submission.FlatRecord) any { return r.Designation }},
	{"Staff", 18, func(r submission.FlatRecord) any { return r.StaffName }},
	{"Patient", 18, func(r submission.FlatRecord) any { return r.PatientName }},
	{"Age", 8, func(r submission.FlatRecord) any { return r.Age }},
	{"Sex", 8, func(r submission.FlatRecord) any { return r.Sex }},
	{"Pregnant", 10, func(r submission.FlatRecord) any { return r.Pregnant }},
	{"Suspected", 10, func(r submission.FlatRecord) any { return r.SuspectedInDisease }},
	{"Diseases", 20, func(r submission.FlatRecord) any { return strings.Join(r.Diseases, ", ") }},
	{"Referred", 10, func(r submission.FlatRecord) any { return r.Referred }},
	{"Referral Place", 16, func(r submission.FlatRecord) any { return r.ReferralPlace }},
	{"Bed Net", 10, func(r submission.FlatRecord) any { return r.BedNetUse }},
	{"Handwashing", 12, func(r submission.FlatRecord) any { return r.Handwashing }},
	{"Latrine", 14, func(r submission.FlatRecord) any { return r.LatrineType }},
	{"Stagnant Water", 14, func(r submission.FlatRecord) any { return r.StagnantWater }},
	{"Mosquito Larvae", 14, func(r submission.FlatRecord) any { return r.MosquitoLarvae }},
	{"Disaster Last Week", 16, func(r submission.FlatRecord) any { return r.DisasterLastWeek }},
	{"Disaster Types", 20, func(r submission.FlatRecord) any { return strings.Join(r.DisasterTypes, ", ") }},
	{"Latitude", 12, func(r submission.FlatRecord) any { return floatCell(r.Latitude) }},
	{"Longitude", 12, func(r submission.FlatRecord) any { return floatCell(r.Longitude) }},
	{"Remarks", 24, func(r submission.FlatRecord) any { return r.Remarks }},
}

// XLSXWriter renders flattened submissions as a single-sheet workbook.
type XLSXWriter struct{}

// NewXLSXWriter constructs the writer.
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

// ContentType implements surveillance.RecordWriter.
func (XLSXWriter) ContentType() string {
	return ContentTypeXLSX
}

// WriteRecords implements surveillance.RecordWriter.
func (XLSXWriter) WriteRecords(w io.Writer, records []submission.FlatRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headers := make([]any, len(columns))
	for i, col := range columns {
		headers[i] = col.header
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, name, name, col.width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]any, len(columns))
	for i, rec := range records {
		for j, col := range columns {
			row[j] = col.value(rec)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func floatCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

var _ surveillance.RecordWriter = XLSXWriter{}
