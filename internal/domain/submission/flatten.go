package submission

// Flattener maps raw submissions onto FlatRecord using a Schema.
type Flattener struct {
	schema Schema
}

// NewFlattener returns a Flattener bound to schema.
func NewFlattener(schema Schema) *Flattener {
	return &Flattener{schema: schema}
}

// Schema returns the schema in use.
func (f *Flattener) Schema() Schema {
	return f.schema
}

// Flatten normalizes DefaultSchema over raw.
func Flatten(raw map[string]any) (FlatRecord, bool) {
	return defaultFlattener.Flatten(raw)
}

var defaultFlattener = NewFlattener(DefaultSchema)

// Flatten normalizes one raw submission. It returns false only when raw is
// nil or its data member is not an object; a missing data member yields an
// empty record.
func (f *Flattener) Flatten(raw map[string]any) (FlatRecord, bool) {
	if raw == nil {
		return FlatRecord{}, false
	}
	data := map[string]any{}
	if d, present := raw["data"]; present && d != nil {
		obj, ok := d.(map[string]any)
		if !ok {
			return FlatRecord{}, false
		}
		data = obj
	}

	text := func(name string) string {
		v, _ := f.schema.Resolve(data, name)
		return Stringify(v)
	}
	list := func(name string) []string {
		v, _ := f.schema.Resolve(data, name)
		return SplitList(v)
	}

	rec := FlatRecord{
		Division:           text(FieldDivision),
		District:           text(FieldDistrict),
		Upazila:            text(FieldUpazila),
		Union:              text(FieldUnion),
		Ward:               text(FieldWard),
		Area:               text(FieldArea),
		Age:                text(FieldAge),
		Sex:                text(FieldSex),
		Pregnant:           text(FieldPregnant),
		HouseholdID:        text(FieldHouseholdID),
		HouseholdHead:      text(FieldHouseholdHead),
		MobileNumber:       text(FieldMobile),
		PatientIDType:      text(FieldPatientIDType),
		PatientName:        text(FieldPatientName),
		UserID:             text(FieldUserID),
		SuspectedInDisease: text(FieldSuspected),
		SuspectedDisease:   text(FieldSuspectedDisease),
		Diseases:           list(FieldSuspectedDisease),
		Organization:       text(FieldOrganization),
		Designation:        text(FieldDesignation),
		StaffName:          text(FieldStaffName),
		Referred:           text(FieldReferred),
		ReferralPlace:      text(FieldReferralPlace),
		ReferredToGovt:     text(FieldReferredToGovt),
		BedNetUse:          text(FieldBedNet),
		Handwashing:        text(FieldHandwashing),
		LatrineType:        text(FieldLatrine),
		MosquitoLarvae:     text(FieldLarvae),
		StagnantWater:      text(FieldStagnantWater),
		DisasterLastWeek:   text(FieldDisasterLastWeek),
		DisasterTypes:      list(FieldDisasterTypes),
		DiagnosedDengue:    text(FieldDiagnosedDengue),
		DiagnosedMalaria:   text(FieldDiagnosedMalaria),
		DiagnosedAWD:       text(FieldDiagnosedAWD),
		Date:               text(FieldDate),
		Remarks:            text(FieldRemarks),
	}

	end, _ := f.schema.Resolve(data, FieldEnd)
	if end, ok := end.(string); ok {
		if len(end) > 10 {
			end = end[:10]
		}
		rec.Day = end
	} else {
		rec.Day = text(FieldDayFallback)
	}

	if v, ok := f.schema.Resolve(data, FieldLocation); ok {
		if loc, isText := v.(string); isText {
			rec.Location = loc
			if lat, lng, parsed := ParseLocation(loc); parsed {
				rec.Latitude = &lat
				rec.Longitude = &lng
			}
		}
	}
	return rec, true
}

// FlattenAll flattens every usable submission, preserving order.
func (f *Flattener) FlattenAll(raws []map[string]any) []FlatRecord {
	out := make([]FlatRecord, 0, len(raws))
	for _, raw := range raws {
		if rec, ok := f.Flatten(raw); ok {
			out = append(out, rec)
		}
	}
	return out
}
