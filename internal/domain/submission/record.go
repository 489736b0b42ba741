package submission

import "github.com/csdewars/ewars/internal/domain/hierarchy"

// FlatRecord is one normalized survey submission. Empty strings mean absent.
type FlatRecord struct {
	Division string `json:"division,omitempty"`
	District string `json:"district,omitempty"`
	Upazila  string `json:"upazila,omitempty"`
	Union    string `json:"union,omitempty"`
	Ward     string `json:"ward,omitempty"`
	Area     string `json:"area,omitempty"`

	Age           string `json:"age,omitempty"`
	Sex           string `json:"sex,omitempty"`
	Pregnant      string `json:"pregnant,omitempty"`
	HouseholdID   string `json:"hhId,omitempty"`
	HouseholdHead string `json:"hhHeadName,omitempty"`
	MobileNumber  string `json:"mobileNumber,omitempty"`
	PatientIDType string `json:"patientIdType,omitempty"`
	PatientName   string `json:"patientName,omitempty"`
	UserID        string `json:"userIdentification,omitempty"`

	SuspectedInDisease string   `json:"suspectedInDisease,omitempty"`
	SuspectedDisease   string   `json:"suspectedDisease,omitempty"`
	Diseases           []string `json:"diseases"`

	Organization string `json:"organization,omitempty"`
	Designation  string `json:"designation,omitempty"`
	StaffName    string `json:"staffName,omitempty"`

	Referred       string `json:"referred,omitempty"`
	ReferralPlace  string `json:"referralPlace,omitempty"`
	ReferredToGovt string `json:"referredToGovt,omitempty"`

	BedNetUse        string   `json:"bedNetUse,omitempty"`
	Handwashing      string   `json:"handwashing,omitempty"`
	LatrineType      string   `json:"latrineType,omitempty"`
	MosquitoLarvae   string   `json:"mosquitoLarvae,omitempty"`
	StagnantWater    string   `json:"stagnantWater,omitempty"`
	DisasterLastWeek string   `json:"disasterLastWeek,omitempty"`
	DisasterTypes    []string `json:"disasterTypes"`

	DiagnosedDengue  string `json:"diagnosedDengue,omitempty"`
	DiagnosedMalaria string `json:"diagnosedMalaria,omitempty"`
	DiagnosedAWD     string `json:"diagnosedAwd,omitempty"`

	Day       string   `json:"day,omitempty"`
	Date      string   `json:"date,omitempty"`
	Remarks   string   `json:"remarks,omitempty"`
	Location  string   `json:"location,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// LevelValue exposes the record's geography to the hierarchy builder.
func (r FlatRecord) LevelValue(level hierarchy.Level) string {
	switch level {
	case hierarchy.Division:
		return r.Division
	case hierarchy.District:
		return r.District
	case hierarchy.Upazila:
		return r.Upazila
	case hierarchy.Union:
		return r.Union
	case hierarchy.Ward:
		return r.Ward
	case hierarchy.Area:
		return r.Area
	default:
		return ""
	}
}

// HasCoordinates reports whether both coordinates are set and non-zero.
func (r FlatRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil && *r.Latitude != 0 && *r.Longitude != 0
}
