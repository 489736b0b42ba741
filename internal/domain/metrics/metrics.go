package metrics

import (
	"math"
	"sort"
	"strings"

	"github.com/csdewars/ewars/internal/domain/submission"
)

// Slice is one named value of a chart series.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Bundle is the full set of dashboard indicators for a record set.
type Bundle struct {
	SubmissionsOverTime []Slice `json:"submissionsOverTime"`

	SuspectedRatio  []Slice `json:"suspectedRatioPie"`
	ReferralRate    []Slice `json:"referralRatePie"`
	Gender          []Slice `json:"genderPie"`
	FacilityType    []Slice `json:"facilityTypePie"`
	BedNet          []Slice `json:"bednetPie"`
	Handwashing     []Slice `json:"washPie"`
	MosquitoBreed   []Slice `json:"mosquitoBreedPie"`
	MosquitoLarvae  []Slice `json:"mosquitoLarvaePie"`
	DisasterWeek    []Slice `json:"disasterWeekPie"`
	SuspectedByType []Slice `json:"suspectedDiseaseBar"`
	Latrine         []Slice `json:"latrineBar"`
	DisasterType    []Slice `json:"disasterTypeBar"`

	TotalSubmissions      int `json:"totalSubmissions"`
	PercentSuspected      int `json:"percentSuspected"`
	ReferralPercent       int `json:"referralRate"`
	BedNetPercent         int `json:"bednetPercent"`
	HandwashPercent       int `json:"handwashPercent"`
	MosquitoBreedPercent  int `json:"mosquitoBreedPercent"`
	MosquitoLarvaePercent int `json:"mosquitoLarvaePercent"`
	DisasterWeekPercent   int `json:"disasterWeekPercent"`
}

// Percent returns round(100*n/d), using 1 for a zero denominator.
func Percent(n, d int) int {
	if d == 0 {
		d = 1
	}
	return int(math.Round(100 * float64(n) / float64(d)))
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// yesNo counts normalized "yes" and "no" answers; other values are ignored.
type yesNo struct{ yes, no int }

func (c *yesNo) add(v string) {
	switch normalize(v) {
	case "yes":
		c.yes++
	case "no":
		c.no++
	}
}

func (c yesNo) slices(yesLabel, noLabel string) []Slice {
	return []Slice{{Name: yesLabel, Value: c.yes}, {Name: noLabel, Value: c.no}}
}

func (c yesNo) percent() int { return Percent(c.yes, c.yes+c.no) }

// tally counts categories in first-seen order.
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally { return &tally{counts: map[string]int{}} }

func (t *tally) add(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if _, ok := t.counts[name]; !ok {
		t.order = append(t.order, name)
	}
	t.counts[name]++
}

// addDistinct counts each distinct tag of one record once.
func (t *tally) addDistinct(tags []string) {
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		t.add(tag)
	}
}

func (t *tally) slices() []Slice {
	out := make([]Slice, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, Slice{Name: name, Value: t.counts[name]})
	}
	return out
}

// Compute reduces records into a Bundle.
func Compute(records []submission.FlatRecord) Bundle {
	var (
		suspected, referred, bednet, wash, breed, disaster yesNo
		larvae                                             yesNo
		male, female, other, pregnant                      int
	)
	perDay := newTally()
	diseases := newTally()
	facilities := newTally()
	latrines := newTally()
	disasterTypes := newTally()

	for _, rec := range records {
		perDay.add(rec.Day)
		suspected.add(rec.SuspectedInDisease)
		diseases.addDistinct(rec.Diseases)
		referred.add(rec.Referred)
		facilities.add(rec.ReferralPlace)

		switch sex := normalize(rec.Sex); sex {
		case "male":
			male++
		case "female":
			female++
		case "":
		default:
			other++
		}
		if normalize(rec.Pregnant) == "yes" {
			pregnant++
		}

		bednet.add(rec.BedNetUse)
		wash.add(rec.Handwashing)
		latrines.add(rec.LatrineType)
		breed.add(rec.StagnantWater)

		// Any answer other than "no" means larvae were seen.
		if v := normalize(rec.MosquitoLarvae); v == "no" {
			larvae.no++
		} else if v != "" {
			larvae.yes++
		}

		disaster.add(rec.DisasterLastWeek)
		disasterTypes.addDistinct(rec.DisasterTypes)
	}

	overTime := perDay.slices()
	sort.Slice(overTime, func(i, j int) bool { return overTime[i].Name < overTime[j].Name })

	gender := []Slice{
		{Name: "Male", Value: male},
		{Name: "Female", Value: female},
		{Name: "Pregnant", Value: pregnant},
	}
	if other > 0 {
		gender = append(gender, Slice{Name: "Other", Value: other})
	}

	return Bundle{
		SubmissionsOverTime: overTime,
		SuspectedRatio:      suspected.slices("Suspected", "Not Suspected"),
		ReferralRate:        referred.slices("Yes", "No"),
		Gender:              gender,
		FacilityType:        facilities.slices(),
		BedNet:              bednet.slices("Yes", "No"),
		Handwashing:         wash.slices("Yes", "No"),
		MosquitoBreed:       breed.slices("Yes", "No"),
		MosquitoLarvae:      larvae.slices("Yes", "No"),
		DisasterWeek:        disaster.slices("Yes", "No"),
		SuspectedByType:     diseases.slices(),
		Latrine:             latrines.slices(),
		DisasterType:        disasterTypes.slices(),

		TotalSubmissions:      len(records),
		PercentSuspected:      suspected.percent(),
		ReferralPercent:       referred.percent(),
		BedNetPercent:         bednet.percent(),
		HandwashPercent:       wash.percent(),
		MosquitoBreedPercent:  breed.percent(),
		MosquitoLarvaePercent: larvae.percent(),
		DisasterWeekPercent:   disaster.percent(),
	}
}

// Count returns the value of the named slice, or 0.
func Count(slices []Slice, name string) int {
	for _, s := range slices {
		if s.Name == name {
			return s.Value
		}
	}
	return 0
}
