package geo

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/woozymasta/mapbbcode/bbcode"
)

// Feature property names.
const (
	PropText   = "text"
	PropParams = "params"
	// PropName is read as a text fallback on import.
	PropName = "name"
)

// FeatureCollection converts the drawable objects of doc to GeoJSON features.
// The viewport has no GeoJSON representation and is not carried.
func FeatureCollection(doc bbcode.Document) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}

	for _, obj := range doc.Objects {
		g := Geometry(obj)
		if g == nil {
			continue
		}

		props := map[string]interface{}{}
		if obj.Text != "" {
			props[PropText] = obj.Text
		}
		if len(obj.Params) > 0 {
			props[PropParams] = obj.Params
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   g,
			Properties: props,
		})
	}

	if b := Bounds(doc); !b.IsEmpty() {
		fc.BBox = b
	}

	return fc
}

// MarshalGeoJSON encodes doc as a GeoJSON FeatureCollection.
func MarshalGeoJSON(doc bbcode.Document) ([]byte, error) {
	return json.Marshal(FeatureCollection(doc))
}

// UnmarshalGeoJSON decodes a FeatureCollection, a single Feature or a bare
// geometry into a document without viewport. Unsupported geometries are
// skipped with a warning.
func UnmarshalGeoJSON(data []byte) (bbcode.Document, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return bbcode.Document{}, fmt.Errorf("decode geojson: %w", err)
	}

	var features []*geojson.Feature
	switch head.Type {
	case "FeatureCollection":
		var fc geojson.FeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return bbcode.Document{}, fmt.Errorf("decode feature collection: %w", err)
		}
		features = fc.Features
	case "Feature":
		var f geojson.Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return bbcode.Document{}, fmt.Errorf("decode feature: %w", err)
		}
		features = []*geojson.Feature{&f}
	default:
		var g geojson.Geometry
		if err := json.Unmarshal(data, &g); err != nil {
			return bbcode.Document{}, fmt.Errorf("decode geometry: %w", err)
		}
		t, err := g.Decode()
		if err != nil {
			return bbcode.Document{}, fmt.Errorf("decode geometry: %w", err)
		}
		features = []*geojson.Feature{{Geometry: t}}
	}

	doc := bbcode.Document{Objects: []bbcode.Object{}}
	for i, f := range features {
		if f == nil || f.Geometry == nil {
			log.Warn().Int("feature", i).Msg("Skipping feature without geometry")
			continue
		}

		text, params := featureLabel(f.Properties)
		objs, ok := Objects(f.Geometry, text, params)
		if !ok {
			log.Warn().
				Int("feature", i).
				Str("geometry", fmt.Sprintf("%T", f.Geometry)).
				Msg("Skipping unsupported geometry")
			continue
		}
		doc.Objects = append(doc.Objects, objs...)
	}

	return doc, nil
}

func featureLabel(props map[string]interface{}) (text string, params []string) {
	params = []string{}

	if s, ok := props[PropText].(string); ok {
		text = s
	} else if s, ok := props[PropName].(string); ok {
		text = s
	}

	switch v := props[PropParams].(type) {
	case []interface{}:
		for _, p := range v {
			if s, ok := p.(string); ok && s != "" {
				params = append(params, s)
			}
		}
	case []string:
		params = append(params, v...)
	}

	return text, params
}
