package geo

import (
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
	"github.com/woozymasta/mapbbcode/bbcode"
)

// MarshalWKT encodes the drawable objects of doc as a WKT GEOMETRYCOLLECTION
// with coordinates limited to digits decimal places.
func MarshalWKT(doc bbcode.Document, digits int) (string, error) {
	gc := geom.NewGeometryCollection()
	for _, obj := range doc.Objects {
		g := Geometry(obj)
		if g == nil {
			continue
		}
		if err := gc.Push(g); err != nil {
			return "", fmt.Errorf("collect geometry: %w", err)
		}
	}

	s, err := wkt.Marshal(gc, wkt.EncodeOptionWithMaxDecimalDigits(digits))
	if err != nil {
		return "", fmt.Errorf("encode wkt: %w", err)
	}
	return s, nil
}

// UnmarshalWKT decodes any WKT geometry into a document without viewport.
func UnmarshalWKT(s string) (bbcode.Document, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return bbcode.Document{}, fmt.Errorf("decode wkt: %w", err)
	}

	objs, ok := Objects(g, "", []string{})
	if !ok {
		return bbcode.Document{}, fmt.Errorf("decode wkt: unsupported geometry %T", g)
	}
	if objs == nil {
		objs = []bbcode.Object{}
	}

	return bbcode.Document{Objects: objs}, nil
}
