package submission

import "sort"

// Submission group names used by the current survey form.
const (
	GroupPatient     = "suspected_patient-related_information"
	GroupWorker      = "health_worker_s_information"
	GroupReferral    = "referral-related_information"
	GroupBehaviour   = "health_behaviour"
	GroupDisaster    = "disaster-related_information"
	GroupEnvironment = "environmental_related_information_"
	GroupDiagnosed   = "information_of_already_identified_patient_s_"
)

// Logical field names.
const (
	FieldDivision         = "division"
	FieldDistrict         = "district"
	FieldUpazila          = "upazila"
	FieldUnion            = "union"
	FieldWard             = "ward"
	FieldArea             = "area"
	FieldAge              = "age"
	FieldSex              = "sex"
	FieldPregnant         = "pregnant"
	FieldHouseholdID      = "hh_id"
	FieldHouseholdHead    = "hh_head_name"
	FieldMobile           = "mobile_number"
	FieldPatientIDType    = "patient_id_type"
	FieldSuspected        = "suspected_in_the_disease"
	FieldSuspectedDisease = "suspected_disease"
	FieldPatientName      = "patient_name"
	FieldUserID           = "user_identification"
	FieldOrganization     = "organization"
	FieldDesignation      = "designation"
	FieldStaffName        = "name_of_staff"
	FieldReferred         = "referred"
	FieldReferralPlace    = "referral_place"
	FieldReferredToGovt   = "if_referred_to_govt"
	FieldBedNet           = "bed_net_use"
	FieldHandwashing      = "handwashing"
	FieldLatrine          = "latrine_type"
	FieldLarvae           = "mosquito_larvae"
	FieldStagnantWater    = "stagnant_water"
	FieldDisasterLastWeek = "disaster_last_week"
	FieldDisasterTypes    = "disaster_types"
	FieldDiagnosedDengue  = "diagnosed_dengue"
	FieldDiagnosedMalaria = "diagnosed_malaria"
	FieldDiagnosedAWD     = "diagnosed_awd"
	FieldEnd              = "end"
	FieldDate             = "date"
	FieldDayFallback      = "day_fallback"
	FieldRemarks          = "remarks"
	FieldLocation         = "location"
)

// Path addresses a value inside a submission's data object. An empty Group
// means the top level.
type Path struct {
	Group string `json:"group,omitempty" yaml:"group,omitempty"`
	Field string `json:"field" yaml:"field"`
}

// Candidate is one source path for a logical field. Lower priority wins.
type Candidate struct {
	Path     Path `json:"path" yaml:"path"`
	Priority int  `json:"priority" yaml:"priority"`
}

// FieldSpec lists every candidate path for a logical field.
type FieldSpec struct {
	Name       string      `json:"name" yaml:"name"`
	Candidates []Candidate `json:"candidates" yaml:"candidates"`
}

// Schema is a versioned set of field fallback chains.
type Schema struct {
	Version string      `json:"version" yaml:"version"`
	Fields  []FieldSpec `json:"fields" yaml:"fields"`

	byName map[string][]Candidate
}

// NewSchema indexes fields and orders each chain by priority.
func NewSchema(version string, fields ...FieldSpec) Schema {
	s := Schema{Version: version, Fields: fields, byName: make(map[string][]Candidate, len(fields))}
	for _, f := range fields {
		chain := append([]Candidate(nil), f.Candidates...)
		sort.SliceStable(chain, func(i, j int) bool { return chain[i].Priority < chain[j].Priority })
		s.byName[f.Name] = chain
	}
	return s
}

// Candidates returns the ordered chain for a logical field.
func (s Schema) Candidates(name string) []Candidate {
	return s.byName[name]
}

// Resolve returns the first present value of a logical field in data.
func (s Schema) Resolve(data map[string]any, name string) (any, bool) {
	chain := s.byName[name]
	values := make([]any, 0, len(chain))
	for _, c := range chain {
		values = append(values, lookup(data, c.Path))
	}
	return FirstPresent(values...)
}

func lookup(data map[string]any, p Path) any {
	if p.Group == "" {
		return data[p.Field]
	}
	group, ok := data[p.Group].(map[string]any)
	if !ok {
		return nil
	}
	return group[p.Field]
}

// chain builds a FieldSpec whose priority follows argument order.
func chain(name string, paths ...Path) FieldSpec {
	spec := FieldSpec{Name: name, Candidates: make([]Candidate, len(paths))}
	for i, p := range paths {
		spec.Candidates[i] = Candidate{Path: p, Priority: i}
	}
	return spec
}

func in(group, field string) Path { return Path{Group: group, Field: field} }

func top(field string) Path { return Path{Field: field} }

// grouped is the usual "current group first, then legacy top-level alias" chain.
func grouped(name, group string, fields ...string) FieldSpec {
	paths := make([]Path, 0, 2*len(fields))
	for _, f := range fields {
		paths = append(paths, in(group, f))
	}
	for _, f := range fields {
		paths = append(paths, top(f))
	}
	return chain(name, paths...)
}

// DefaultSchema is the field resolution used for the current survey form.
var DefaultSchema = NewSchema("2025.1",
	grouped(FieldDivision, GroupPatient, "division"),
	grouped(FieldDistrict, GroupPatient, "district"),
	grouped(FieldUpazila, GroupPatient, "upazila"),
	grouped(FieldUnion, GroupPatient, "union"),
	grouped(FieldWard, GroupPatient, "ward"),
	grouped(FieldArea, GroupPatient, "area"),
	grouped(FieldAge, GroupPatient, "age"),
	grouped(FieldSex, GroupPatient, "sex"),
	grouped(FieldPregnant, GroupPatient, "pregnent", "pregnant"),
	grouped(FieldHouseholdID, GroupPatient, "hh_id"),
	grouped(FieldHouseholdHead, GroupPatient, "hh_head_name"),
	grouped(FieldMobile, GroupPatient, "mobile_number"),
	grouped(FieldPatientIDType, GroupPatient, "patient_id_type"),
	grouped(FieldSuspected, GroupPatient,
		"suspected_in_the_disease", "suspected_in_the_disease_yn", "suspected_in_the_disease_yn_new"),
	grouped(FieldSuspectedDisease, GroupPatient, "suspected_disease"),
	grouped(FieldPatientName, GroupPatient, "name_of_the_person_with_suspected_case"),
	grouped(FieldUserID, GroupPatient, "user_identification_11_9943_01976848561"),
	grouped(FieldOrganization, GroupWorker, "organization"),
	grouped(FieldDesignation, GroupWorker, "designation_1", "designation"),
	grouped(FieldStaffName, GroupWorker, "name_of_staff"),
	grouped(FieldReferred, GroupReferral, "referred", "referral", "referred_new"),
	grouped(FieldReferralPlace, GroupReferral, "referral_place"),
	grouped(FieldReferredToGovt, GroupReferral, "if_referred_to_govt"),
	grouped(FieldBedNet, GroupBehaviour, "bed_net_use_practice_during_sleep"),
	grouped(FieldHandwashing, GroupBehaviour, "handwashing_practice_with_soap__water"),
	grouped(FieldLatrine, GroupBehaviour, "type_latrine_use"),
	grouped(FieldLarvae, GroupEnvironment, "presence_of_mosquito_larvae"),
	grouped(FieldStagnantWater, GroupEnvironment, "presence_of_stagnant_water_mosquito_breeding_sites"),
	grouped(FieldDisasterLastWeek, GroupDisaster, "did_any_disaster_occur_in_last_7_days_"),
	grouped(FieldDisasterTypes, GroupDisaster, "what_types"),
	chain(FieldDiagnosedDengue,
		in(GroupDiagnosed, "no_of_already_diagnosed_cases_of_dengue_in_the_hh_1"),
		top("no_of_already_diagnosed_cases_of_dengue_in_the_hh"),
		top("no._of_already_diagnosed_cases_of_dengue_in_the_hh_1"),
		top("no._of_already_diagnosed_cases_of_dengue_in_the_hh"),
	),
	chain(FieldDiagnosedMalaria,
		in(GroupDiagnosed, "no_of_already_diagnosed_cases_of_malaria_in_the_hh"),
		top("no_of_already_diagnosed_cases_of_malaria_in_the_hh"),
		top("no._of_already_diagnosed_cases_of_malaria_in_the_hh"),
	),
	chain(FieldDiagnosedAWD,
		in(GroupDiagnosed, "no_of_already_diagnosed_cases_of_awd_in_the_hh"),
		top("no_of_already_diagnosed_cases_of_awd_in_the_hh"),
		top("no._of_already_diagnosed_cases_of_awd_in_the_hh"),
	),
	chain(FieldEnd, top("end")),
	chain(FieldDayFallback, in(GroupWorker, "date"), top("date")),
	chain(FieldDate, top("date"), in(GroupWorker, "date")),
	chain(FieldRemarks, top("remarks"), in(GroupWorker, "remarks"), in(GroupPatient, "remarks")),
	grouped(FieldLocation, GroupPatient, "location"),
)
