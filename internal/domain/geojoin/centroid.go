package geojoin

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Point is a planar coordinate, X being longitude and Y latitude.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LatLng returns the point as [lat, lng].
func (p Point) LatLng() [2]float64 {
	return [2]float64{p.Y, p.X}
}

// OuterRing returns the first ring of a Polygon, or of the first polygon of a MultiPolygon.
func OuterRing(g geom.T) []geom.Coord {
	switch v := g.(type) {
	case *geom.Polygon:
		if v == nil || v.NumLinearRings() == 0 {
			return nil
		}
		return v.LinearRing(0).Coords()
	case *geom.MultiPolygon:
		if v == nil || v.NumPolygons() == 0 {
			return nil
		}
		return OuterRing(v.Polygon(0))
	default:
		return nil
	}
}

// Centroid is the area-weighted centroid of the outer ring. Empty or
// zero-area rings yield (0,0).
func Centroid(g geom.T) Point {
	return RingCentroid(OuterRing(g))
}

// RingCentroid applies the shoelace centroid to ring. The ring may or may not repeat its first vertex.
func RingCentroid(ring []geom.Coord) Point {
	n := len(ring)
	if n == 0 {
		return Point{}
	}
	var area, cx, cy float64
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		x0, y0 := ring[j][0], ring[j][1]
		x1, y1 := ring[i][0], ring[i][1]
		f := x0*y1 - x1*y0
		area += f
		cx += (x0 + x1) * f
		cy += (y0 + y1) * f
	}
	area /= 2
	if math.Abs(area) < 1e-12 {
		return Point{}
	}
	return Point{X: cx / (6 * area), Y: cy / (6 * area)}
}
