// Package geo converts map documents to and from GeoJSON and WKT and fits
// viewports using the Web Mercator projection.
package geo

import (
	"github.com/twpayne/go-geom"
	"github.com/woozymasta/mapbbcode/bbcode"
)

// IsPolygon reports whether the path is closed: at least four coordinates
// with the last one repeating the first.
func IsPolygon(obj bbcode.Object) bool {
	n := len(obj.Coords)
	return n >= 4 && obj.Coords[0] == obj.Coords[n-1]
}

// Geometry converts an object to a Point, LineString or Polygon in [lng, lat]
// order. It returns nil for objects without coordinates.
func Geometry(obj bbcode.Object) geom.T {
	flat := make([]float64, 0, len(obj.Coords)*2)
	for _, ll := range obj.Coords {
		flat = append(flat, ll.Lng, ll.Lat)
	}

	switch {
	case len(obj.Coords) == 0:
		return nil
	case obj.IsMarker():
		return geom.NewPointFlat(geom.XY, flat)
	case IsPolygon(obj):
		return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
	default:
		return geom.NewLineStringFlat(geom.XY, flat)
	}
}

// Objects converts a geometry back to map objects sharing text and params.
// Multi geometries are split; polygon holes are dropped. ok is false for
// geometry types that cannot be represented.
func Objects(g geom.T, text string, params []string) (objs []bbcode.Object, ok bool) {
	mk := func(flat []float64, stride int) bbcode.Object {
		coords := make([]bbcode.LatLng, 0, len(flat)/stride)
		for i := 0; i+1 < len(flat); i += stride {
			coords = append(coords, bbcode.LatLng{Lat: flat[i+1], Lng: flat[i]})
		}
		return bbcode.Object{Coords: coords, Text: text, Params: params}
	}

	switch t := g.(type) {
	case *geom.Point:
		return []bbcode.Object{mk(t.FlatCoords(), t.Stride())}, true
	case *geom.LineString:
		return []bbcode.Object{mk(t.FlatCoords(), t.Stride())}, true
	case *geom.Polygon:
		if t.NumLinearRings() == 0 {
			return nil, true
		}
		ring := t.LinearRing(0)
		return []bbcode.Object{mk(ring.FlatCoords(), ring.Stride())}, true
	case *geom.MultiPoint:
		for i := 0; i < t.NumPoints(); i++ {
			p := t.Point(i)
			objs = append(objs, mk(p.FlatCoords(), p.Stride()))
		}
		return objs, true
	case *geom.MultiLineString:
		for i := 0; i < t.NumLineStrings(); i++ {
			ls := t.LineString(i)
			objs = append(objs, mk(ls.FlatCoords(), ls.Stride()))
		}
		return objs, true
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			p := t.Polygon(i)
			if p.NumLinearRings() == 0 {
				continue
			}
			ring := p.LinearRing(0)
			objs = append(objs, mk(ring.FlatCoords(), ring.Stride()))
		}
		return objs, true
	case *geom.GeometryCollection:
		for _, sub := range t.Geoms() {
			subObjs, subOK := Objects(sub, text, params)
			if !subOK {
				return nil, false
			}
			objs = append(objs, subObjs...)
		}
		return objs, true
	default:
		return nil, false
	}
}
