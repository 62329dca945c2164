package processor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/mapbbcode/bbcode"
	"github.com/woozymasta/mapbbcode/internal/geo"
)

func newProcessor(opts Options) *Processor {
	return New(bbcode.MustCodec(bbcode.DefaultConfig()), opts)
}

func TestConvert(t *testing.T) {
	testCases := []struct {
		name string
		opts Options
		src  string
		exp  []string
	}{
		{
			name: "markup to json",
			opts: Options{To: FormatJSON},
			src:  "[map=5,45.5,-122.6]10,20(label)[/map]",
			exp:  []string{`"zoom": 5`, `"lat": 45.5`, `"text": "label"`},
		},
		{
			name: "markup to minified json",
			opts: Options{To: FormatJSON, Minify: true},
			src:  "[map=5]10,20[/map]",
			exp:  []string{`{"zoom":5,"objects":[{"coords":[{"lat":10,"lng":20}]}]}`},
		},
		{
			name: "json to markup",
			opts: Options{From: FormatJSON, To: FormatBBCode},
			src:  `{"zoom":5,"center":{"lat":1,"lng":2},"objects":[{"coords":[{"lat":10,"lng":20}],"text":"x"}]}`,
			exp:  []string{"[map=5,1,2]10,20(x)[/map]"},
		},
		{
			name: "yaml list to markup",
			opts: Options{From: FormatYAML, To: FormatBBCode},
			src:  "- zoom: 3\n- objects:\n    - coords: [{lat: 1, lng: 2}]\n",
			exp:  []string{"[map=3][/map]\n[map]1,2[/map]"},
		},
		{
			name: "markup to geojson",
			opts: Options{To: FormatGeoJSON, Minify: true},
			src:  "[map]10,20(x)[/map]",
			exp:  []string{`"type":"FeatureCollection"`, `"coordinates":[20,10]`},
		},
		{
			name: "markup to wkt",
			opts: Options{To: FormatWKT},
			src:  "[map]10,20[/map]",
			exp:  []string{"GEOMETRYCOLLECTION", "POINT"},
		},
		{
			name: "extract all tags",
			opts: Options{To: FormatBBCode, Extract: true},
			src:  "a [map=2]1,2[/map] b [map]3,4 5,6[/map] c",
			exp:  []string{"[map=2]1,2[/map]\n[map]3,4 5,6[/map]"},
		},
		{
			name: "fit missing viewport",
			opts: Options{To: FormatBBCode, Fit: geo.FitOptions{Width: 256, Height: 256}},
			src:  "[map]0,-10; 0,10[/map]",
			exp:  []string{"[map=4,0,0]0,-10; 0,10[/map]"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := newProcessor(tc.opts).Convert([]byte(tc.src))
			if err != nil {
				t.Fatal(err)
			}
			for _, exp := range tc.exp {
				if !strings.Contains(string(out), exp) {
					t.Errorf("output misses %q:\n%s", exp, out)
				}
			}
		})
	}
}

func TestConvertErrors(t *testing.T) {
	if _, _, err := newProcessor(Options{}).Convert([]byte("no map")); !errors.Is(err, ErrNoMap) {
		t.Errorf("plain text: exp ErrNoMap, got %v", err)
	}
	if _, _, err := newProcessor(Options{Extract: true}).Convert([]byte("[map]x[/map]")); !errors.Is(err, ErrNoMap) {
		t.Errorf("extract: exp ErrNoMap, got %v", err)
	}
	if _, _, err := newProcessor(Options{From: FormatJSON}).Convert([]byte("{")); err == nil {
		t.Error("broken json: exp error")
	}
	if _, _, err := newProcessor(Options{To: "svg"}).Convert([]byte("[map][/map]")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("unknown output: exp ErrUnknownFormat, got %v", err)
	}
}

func TestFormats(t *testing.T) {
	if f, err := ParseFormat("GeoJSON"); err != nil || f != FormatGeoJSON {
		t.Errorf("ParseFormat: got %q, %v", f, err)
	}
	if _, err := ParseFormat("svg"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(svg): got %v", err)
	}

	for path, exp := range map[string]Format{
		"a.json":    FormatJSON,
		"a.YML":     FormatYAML,
		"a.geojson": FormatGeoJSON,
		"a.wkt":     FormatWKT,
		"post.txt":  FormatBBCode,
	} {
		if got := DetectFormat(path); got != exp {
			t.Errorf("DetectFormat(%q) = %q, want %q", path, got, exp)
		}
	}
}

func TestProcessFiles(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	inputs := []string{
		filepath.Join(dir, "one.txt"),
		filepath.Join(dir, "two.json"),
		filepath.Join(dir, "bad.txt"),
	}
	contents := []string{
		"[map=3]1,2(a)[/map]",
		`{"objects":[{"coords":[{"lat":3,"lng":4},{"lat":5,"lng":6}]}]}`,
		"nothing here",
	}
	for i, path := range inputs {
		if err := os.WriteFile(path, []byte(contents[i]), 0644); err != nil {
			t.Fatal(err)
		}
	}

	p := newProcessor(Options{To: FormatBBCode})
	results := p.ProcessFiles(inputs, outDir, 2, false)
	if len(results) != 3 {
		t.Fatalf("exp 3 results, got %d", len(results))
	}

	expOut := []string{"[map=3]1,2(a)[/map]", "[map]3,4 5,6[/map]"}
	for i, exp := range expOut {
		r := results[i]
		if r.Err != nil || r.Input != inputs[i] || r.Docs != 1 {
			t.Errorf("result %d: %+v", i, r)
			continue
		}
		data, err := os.ReadFile(r.Output)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != exp {
			t.Errorf("output %d: exp %q, got %q", i, exp, data)
		}
	}
	if !errors.Is(results[2].Err, ErrNoMap) {
		t.Errorf("bad input: exp ErrNoMap, got %v", results[2].Err)
	}

	if err := os.WriteFile(results[0].Output, []byte("kept"), 0644); err != nil {
		t.Fatal(err)
	}
	p.ProcessFiles(inputs[:1], outDir, 1, false)
	if data, _ := os.ReadFile(results[0].Output); string(data) != "kept" {
		t.Errorf("existing output overwritten without force: %q", data)
	}
}

func TestProcessFilesOutputCollision(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	inputs := []string{
		filepath.Join(dir, "a.bbcode"),
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.bbcode"),
	}
	contents := []string{
		"[map]1,2(first)[/map]",
		`{"objects":[{"coords":[{"lat":3,"lng":4}],"text":"second"}]}`,
		"[map]5,6[/map]",
	}
	for i, path := range inputs {
		if err := os.WriteFile(path, []byte(contents[i]), 0644); err != nil {
			t.Fatal(err)
		}
	}

	p := newProcessor(Options{To: FormatBBCode})
	results := p.ProcessFiles(inputs, outDir, 3, true)

	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("unexpected errors: %v, %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, ErrOutputCollision) {
		t.Errorf("exp ErrOutputCollision, got %v", results[1].Err)
	}
	if results[1].Output != results[0].Output {
		t.Errorf("exp shared output, got %q and %q", results[0].Output, results[1].Output)
	}

	data, err := os.ReadFile(results[0].Output)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[map]1,2(first)[/map]" {
		t.Errorf("output written by colliding input: %q", data)
	}
}
