package geo

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/woozymasta/mapbbcode/bbcode"
)

// MaxLat is the latitude limit of the Web Mercator projection.
const MaxLat = 85.05112878

// FitOptions describes the map widget a viewport is fitted into.
type FitOptions struct {
	Width    int `yaml:"width" json:"width"`
	Height   int `yaml:"height" json:"height"`
	TileSize int `yaml:"tile_size,omitempty" json:"tile_size,omitempty"`
	Padding  int `yaml:"padding,omitempty" json:"padding,omitempty"`
	MaxZoom  int `yaml:"max_zoom,omitempty" json:"max_zoom,omitempty"`
}

// Enabled reports whether the options describe a usable widget size.
func (o FitOptions) Enabled() bool {
	return o.Width > 0 && o.Height > 0
}

// Project converts WGS84 degrees to Web Mercator world units in [0..1].
// Latitude is clamped to MaxLat.
func Project(ll bbcode.LatLng) (x, y float64) {
	lat := math.Max(-MaxLat, math.Min(MaxLat, ll.Lat))

	x = (ll.Lng + 180.0) / 360.0

	latRad := lat * (math.Pi / 180.0)
	mercatorY := math.Log(math.Tan(math.Pi*0.25 + latRad*0.5))
	y = 0.5 - mercatorY/(2.0*math.Pi)

	return x, y
}

// Unproject converts Web Mercator world units back to WGS84 degrees.
func Unproject(x, y float64) bbcode.LatLng {
	// x: [0..1] -> lng: [-180..180]
	lng := x*360.0 - 180.0

	// y: [0..1] -> mercatorY: [PI..-PI]
	mercatorY := math.Pi - y*2.0*math.Pi

	// Inverse Mercator projection
	latRad := (2.0 * math.Atan(math.Exp(mercatorY))) - (math.Pi * 0.5)
	lat := latRad * (180.0 / math.Pi)

	if lat > MaxLat {
		lat = MaxLat
	} else if lat < -MaxLat {
		lat = -MaxLat
	}

	return bbcode.LatLng{Lat: lat, Lng: lng}
}

// Bounds returns the extent of all coordinates in doc with X as longitude
// and Y as latitude. The result is empty when doc has no coordinates.
func Bounds(doc bbcode.Document) *geom.Bounds {
	b := geom.NewBounds(geom.XY)
	for _, obj := range doc.Objects {
		for _, ll := range obj.Coords {
			b.Extend(geom.NewPointFlat(geom.XY, []float64{ll.Lng, ll.Lat}))
		}
	}
	return b
}

// FitViewport returns the highest zoom at which every coordinate of doc fits
// into the widget, and the center of the coordinates. ok is false when the
// document has no coordinates or the options are disabled.
func FitViewport(doc bbcode.Document, opts FitOptions) (zoom int, center bbcode.LatLng, ok bool) {
	if !opts.Enabled() {
		return 0, bbcode.LatLng{}, false
	}

	b := Bounds(doc)
	if b.IsEmpty() {
		return 0, bbcode.LatLng{}, false
	}

	tileSize := opts.TileSize
	if tileSize <= 0 {
		tileSize = 256
	}
	maxZoom := opts.MaxZoom
	if maxZoom <= 0 || maxZoom > bbcode.MaxZoom {
		maxZoom = bbcode.MaxZoom
	}

	minX, maxY := Project(bbcode.LatLng{Lat: b.Min(1), Lng: b.Min(0)})
	maxX, minY := Project(bbcode.LatLng{Lat: b.Max(1), Lng: b.Max(0)})

	center = Unproject((minX+maxX)/2, (minY+maxY)/2)

	width := float64(opts.Width - 2*opts.Padding)
	height := float64(opts.Height - 2*opts.Padding)
	if width <= 0 || height <= 0 {
		return 1, center, true
	}

	zoom = maxZoom
	// world size in pixels at zoom z is tileSize * 2^z
	for z := 1; z <= maxZoom; z++ {
		world := float64(tileSize) * math.Exp2(float64(z))
		if (maxX-minX)*world > width || (maxY-minY)*world > height {
			zoom = z - 1
			break
		}
	}
	if zoom < 1 {
		zoom = 1
	}

	return zoom, center, true
}

// ApplyViewport fills an absent viewport of doc by fitting its coordinates.
// Documents that already carry a zoom are returned unchanged.
func ApplyViewport(doc bbcode.Document, opts FitOptions, digits int) bbcode.Document {
	if doc.HasViewport() {
		return doc
	}

	zoom, center, ok := FitViewport(doc, opts)
	if !ok {
		return doc
	}

	center.Lat = bbcode.Round(center.Lat, digits)
	center.Lng = bbcode.Round(center.Lng, digits)

	doc.Zoom = zoom
	doc.Center = &center
	return doc
}
