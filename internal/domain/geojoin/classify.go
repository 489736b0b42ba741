package geojoin

import (
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Classification is the joined case count and its tier.
type Classification struct {
	CaseCount *float64 `json:"caseCount"`
	Tier      Tier     `json:"tier"`
}

// Classify joins f against view for monthKey and buckets the result with scale.
func Classify(f Feature, view View, monthKey string, scale Scale) Classification {
	count := view.CaseCount(f, monthKey)
	return Classification{CaseCount: count, Tier: scale.Tier(count)}
}

// ClassifiedFeature pairs a feature with its classification.
type ClassifiedFeature struct {
	Feature        Feature
	Classification Classification
}

// ClassifyAll classifies every feature.
func ClassifyAll(features []Feature, view View, monthKey string, scale Scale) []ClassifiedFeature {
	out := make([]ClassifiedFeature, 0, len(features))
	for _, f := range features {
		out = append(out, ClassifiedFeature{Feature: f, Classification: Classify(f, view, monthKey, scale)})
	}
	return out
}

// Marker flags a feature whose case count is above the alert threshold.
type Marker struct {
	UpazilaName string     `json:"upazila"`
	UpazilaID   string     `json:"upazilaId"`
	Center      [2]float64 `json:"center"`
	CaseCount   float64    `json:"caseCount"`
}

// Markers places a marker at the centroid of every feature with count > threshold.
func Markers(classified []ClassifiedFeature, threshold float64) []Marker {
	out := make([]Marker, 0)
	for _, c := range classified {
		count := c.Classification.CaseCount
		if count == nil || *count <= threshold || c.Feature.Geometry == nil {
			continue
		}
		out = append(out, Marker{
			UpazilaName: c.Feature.UpazilaName,
			UpazilaID:   c.Feature.UpazilaID,
			Center:      Centroid(c.Feature.Geometry).LatLng(),
			CaseCount:   *count,
		})
	}
	return out
}

// SelectFeatures keeps features whose names are selected at every level. An
// empty level does not constrain.
func SelectFeatures(features []Feature, divisions, districts, upazilas []string) []Feature {
	div, dis, upa := set(divisions), set(districts), set(upazilas)
	out := make([]Feature, 0)
	for _, f := range features {
		if selected(div, f.DivisionName) && selected(dis, f.DistrictName) && selected(upa, f.UpazilaName) {
			out = append(out, f)
		}
	}
	return out
}

func selected(names map[string]struct{}, name string) bool {
	if len(names) == 0 {
		return true
	}
	_, ok := names[name]
	return ok
}

// FeatureCollection renders classified features with caseCount, tier and centroid properties.
func FeatureCollection(classified []ClassifiedFeature) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(classified))}
	for _, c := range classified {
		extra := map[string]any{
			"tier":     string(c.Classification.Tier),
			"centroid": Centroid(c.Feature.Geometry).LatLng(),
		}
		if c.Classification.CaseCount != nil {
			extra["caseCount"] = *c.Classification.CaseCount
		} else {
			extra["caseCount"] = nil
		}
		fc.Features = append(fc.Features, EncodeFeature(c.Feature, extra))
	}
	return fc
}

func set(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
