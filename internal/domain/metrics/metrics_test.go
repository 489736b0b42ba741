package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/csdewars/ewars/internal/domain/submission"
)

func TestPercentGuardsZeroDenominator(t *testing.T) {
	require.Equal(t, 0, Percent(0, 0))
	require.Equal(t, 67, Percent(2, 3))
	require.Equal(t, 50, Percent(1, 2))
	require.Equal(t, 100, Percent(5, 5))
}

func TestComputeEmpty(t *testing.T) {
	b := Compute(nil)

	require.Equal(t, 0, b.TotalSubmissions)
	require.Equal(t, 0, b.PercentSuspected)
	require.Empty(t, b.SubmissionsOverTime)
	require.NotNil(t, b.SuspectedByType)
	require.Len(t, b.Gender, 3)
}

func TestComputeIndicators(t *testing.T) {
	recs := []submission.FlatRecord{
		{
			Day: "2025-01-03", SuspectedInDisease: " Yes ", Diseases: []string{"malaria", "dengue", "malaria"},
			Referred: "yes", ReferralPlace: " UHC ", Sex: "Female", Pregnant: "YES",
			BedNetUse: "yes", Handwashing: "no", LatrineType: "pit", MosquitoLarvae: "Aedes",
			StagnantWater: "yes", DisasterLastWeek: "yes", DisasterTypes: []string{"flood", "flood"},
		},
		{
			Day: "2025-01-01", SuspectedInDisease: "no", Diseases: []string{"malaria"},
			Referred: "no", ReferralPlace: "UHC", Sex: "male",
			BedNetUse: "No", MosquitoLarvae: "no", LatrineType: "pit",
		},
		{
			Day: "2025-01-03", SuspectedInDisease: "unknown", Sex: "third",
			MosquitoLarvae: "  ", DisasterTypes: []string{"cyclone"},
		},
	}

	b := Compute(recs)

	require.Equal(t, []Slice{{Name: "2025-01-01", Value: 1}, {Name: "2025-01-03", Value: 2}}, b.SubmissionsOverTime)
	require.Equal(t, []Slice{{Name: "Suspected", Value: 1}, {Name: "Not Suspected", Value: 1}}, b.SuspectedRatio)
	require.Equal(t, 50, b.PercentSuspected)
	require.Equal(t, []Slice{{Name: "malaria", Value: 2}, {Name: "dengue", Value: 1}}, b.SuspectedByType)
	require.Equal(t, []Slice{{Name: "UHC", Value: 2}}, b.FacilityType)
	require.Equal(t, 50, b.ReferralPercent)
	require.Equal(t, []Slice{
		{Name: "Male", Value: 1},
		{Name: "Female", Value: 1},
		{Name: "Pregnant", Value: 1},
		{Name: "Other", Value: 1},
	}, b.Gender)
	require.Equal(t, 50, b.BedNetPercent)
	require.Equal(t, 0, b.HandwashPercent)
	require.Equal(t, []Slice{{Name: "Yes", Value: 1}, {Name: "No", Value: 1}}, b.MosquitoLarvae)
	require.Equal(t, 100, b.MosquitoBreedPercent)
	require.Equal(t, []Slice{{Name: "pit", Value: 2}}, b.Latrine)
	require.Equal(t, []Slice{{Name: "flood", Value: 1}, {Name: "cyclone", Value: 1}}, b.DisasterType)
	require.Equal(t, 100, b.DisasterWeekPercent)
	require.Equal(t, 3, b.TotalSubmissions)
}

func TestDiseaseBreakdownBeforeDiseaseFilter(t *testing.T) {
	recs := []submission.FlatRecord{
		{Division: "Dhaka", Diseases: []string{"malaria"}},
		{Division: "Dhaka", Diseases: []string{"malaria"}},
		{Division: "Dhaka", Diseases: []string{"dengue"}},
	}

	b := Compute(recs)
	require.Equal(t, 2, Count(b.SuspectedByType, "malaria"))
	require.Equal(t, 1, Count(b.SuspectedByType, "dengue"))
	require.Equal(t, 0, Count(b.SuspectedByType, "awd"))
}
