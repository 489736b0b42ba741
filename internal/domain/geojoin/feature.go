package geojoin

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/csdewars/ewars/internal/domain/hierarchy"
	apperrors "github.com/csdewars/ewars/pkg/errors"
)

// Boundary property names in the upazila FeatureCollection.
const (
	PropDivision  = "DIV_NAME"
	PropDistrict  = "DIS_NAME"
	PropUpazila   = "UPA_NAME"
	PropUpazilaID = "UpazilaID"
)

// Feature is one upazila boundary.
type Feature struct {
	DivisionName string
	DistrictName string
	UpazilaName  string
	UpazilaID    string
	Geometry     geom.T
	Properties   map[string]any
}

// LevelValue exposes the boundary's names to the hierarchy builder.
func (f Feature) LevelValue(level hierarchy.Level) string {
	switch level {
	case hierarchy.Division:
		return f.DivisionName
	case hierarchy.District:
		return f.DistrictName
	case hierarchy.Upazila:
		return f.UpazilaName
	default:
		return ""
	}
}

// DecodeFeatureCollection parses a GeoJSON FeatureCollection of upazila boundaries.
func DecodeFeatureCollection(data []byte) ([]Feature, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid boundary geojson", err)
	}
	out := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		out = append(out, Feature{
			DivisionName: propString(f.Properties, PropDivision),
			DistrictName: propString(f.Properties, PropDistrict),
			UpazilaName:  propString(f.Properties, PropUpazila),
			UpazilaID:    NormalizeID(f.Properties[PropUpazilaID]),
			Geometry:     f.Geometry,
			Properties:   f.Properties,
		})
	}
	return out, nil
}

// EncodeFeature renders f as a GeoJSON feature with extra properties merged in.
func EncodeFeature(f Feature, extra map[string]any) *geojson.Feature {
	props := make(map[string]any, len(f.Properties)+len(extra))
	for k, v := range f.Properties {
		props[k] = v
	}
	for k, v := range extra {
		props[k] = v
	}
	return &geojson.Feature{ID: f.UpazilaID, Geometry: f.Geometry, Properties: props}
}

// NormalizeID renders a numeric or string identifier as a canonical string.
func NormalizeID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	case int:
		return strconv.Itoa(id)
	default:
		return strings.TrimSpace(fmt.Sprint(id))
	}
}

func propString(props map[string]any, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
