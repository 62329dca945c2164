package bbcode

// LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Object is one element of the map body. An object with one coordinate is a
// marker, an object with more is a path. Objects without coordinates come
// only from parsing and carry free-floating text.
type Object struct {
	Coords []LatLng `json:"coords" yaml:"coords"`
	Text   string   `json:"text,omitempty" yaml:"text,omitempty"`
	Params []string `json:"params,omitempty" yaml:"params,omitempty"`
}

// IsMarker reports whether the object is a single point.
func (o Object) IsMarker() bool {
	return len(o.Coords) == 1
}

// IsPath reports whether the object is a line or polygon.
func (o Object) IsPath() bool {
	return len(o.Coords) >= 2
}

// Document is the structured form of a map tag.
type Document struct {
	// Zoom is the initial zoom level; zero means not set.
	Zoom int `json:"zoom,omitempty" yaml:"zoom,omitempty"`
	// Center is only meaningful when Zoom is set.
	Center  *LatLng  `json:"center,omitempty" yaml:"center,omitempty"`
	Objects []Object `json:"objects" yaml:"objects"`
}

// HasViewport reports whether the document carries a zoom level.
func (d Document) HasViewport() bool {
	return d.Zoom > 0
}

// Markers returns the single-coordinate objects in document order.
func (d Document) Markers() []Object {
	var res []Object
	for _, o := range d.Objects {
		if o.IsMarker() {
			res = append(res, o)
		}
	}
	return res
}

// Paths returns the multi-coordinate objects in document order.
func (d Document) Paths() []Object {
	var res []Object
	for _, o := range d.Objects {
		if o.IsPath() {
			res = append(res, o)
		}
	}
	return res
}
