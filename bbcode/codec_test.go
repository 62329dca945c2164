package bbcode_test

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/woozymasta/mapbbcode/bbcode"
)

func TestIsValid(t *testing.T) {
	testCases := []struct {
		name  string
		src   string
		valid bool
	}{
		{"empty map", "[map][/map]", true},
		{"no map", "no map here", false},
		{"embedded", "see [map=3]1,2[/map] here", true},
		{"upper case", "[MAP=3]1,2[/MAP]", true},
		{"zoom only", "[map=12][/map]", true},
		{"zoom and center", "[map=5,45.5,-122.6][/map]", true},
		{"three digit zoom", "[map=123][/map]", false},
		{"unclosed", "[map]1,2", false},
		{"text body", "[map]hello[/map]", false},
		{"unterminated label", "[map]1,2(abc[/map]", false},
		{"escaped close only", `[map]1,2(abc\)[/map]`, false},
		{"attributed in compact mode", `[map z="5"][/map]`, false},
		{"trailing space", "[map]1,2 ; 3,4 [/map]", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := bbcode.IsValid(tc.src); got != tc.valid {
				t.Errorf("IsValid(%q) = %v, want %v", tc.src, got, tc.valid)
			}
		})
	}
}

func TestParseExample(t *testing.T) {
	doc := bbcode.Parse("[map=5,45.5,-122.6]10,20(label); 10,20 11,21(a,b|a line)[/map]")

	exp := bbcode.Document{
		Zoom:   5,
		Center: &bbcode.LatLng{Lat: 45.5, Lng: -122.6},
		Objects: []bbcode.Object{
			{Coords: []bbcode.LatLng{{10, 20}}, Text: "label", Params: []string{}},
			{Coords: []bbcode.LatLng{{10, 20}, {11, 21}}, Text: "a line", Params: []string{"a", "b"}},
		},
	}
	if !reflect.DeepEqual(doc, exp) {
		t.Errorf("\nexp: %+v\ngot: %+v", exp, doc)
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		zoom    int
		center  *bbcode.LatLng
		objects []bbcode.Object
	}{
		{
			name:    "no match",
			src:     "nothing",
			objects: []bbcode.Object{},
		},
		{
			name:    "empty",
			src:     "[map][/map]",
			objects: []bbcode.Object{},
		},
		{
			name:    "zero zoom is unset",
			src:     "[map=0,1,2]3,4[/map]",
			objects: []bbcode.Object{{Coords: []bbcode.LatLng{{3, 4}}, Params: []string{}}},
		},
		{
			name:    "zoom without center",
			src:     "[map=17][/map]",
			zoom:    17,
			objects: []bbcode.Object{},
		},
		{
			name:    "escaped parenthesis",
			src:     `[map]10,20(a\)b)[/map]`,
			objects: []bbcode.Object{{Coords: []bbcode.LatLng{{10, 20}}, Text: "a)b", Params: []string{}}},
		},
		{
			name:    "pipe guard",
			src:     "[map]10,20(|x|y)[/map]",
			objects: []bbcode.Object{{Coords: []bbcode.LatLng{{10, 20}}, Text: "x|y", Params: []string{}}},
		},
		{
			name:    "params without text",
			src:     "[map]1,2 3,4(red,dashed|)[/map]",
			objects: []bbcode.Object{{Coords: []bbcode.LatLng{{1, 2}, {3, 4}}, Params: []string{"red", "dashed"}}},
		},
		{
			name:    "empty label",
			src:     "[map]1,2()[/map]",
			objects: []bbcode.Object{{Coords: []bbcode.LatLng{{1, 2}}, Params: []string{}}},
		},
		{
			name: "label with semicolon and spaces",
			src:  "[map]1,2(  a; b  ) ;3,4[/map]",
			objects: []bbcode.Object{
				{Coords: []bbcode.LatLng{{1, 2}}, Text: "a; b", Params: []string{}},
				{Coords: []bbcode.LatLng{{3, 4}}, Params: []string{}},
			},
		},
		{
			name: "ragged whitespace",
			src:  "[map]\n  -1.5 , 2.25\t-3,4 ;\n 5,6\n[/map]",
			objects: []bbcode.Object{
				{Coords: []bbcode.LatLng{{-1.5, 2.25}, {-3, 4}}, Params: []string{}},
				{Coords: []bbcode.LatLng{{5, 6}}, Params: []string{}},
			},
		},
		{
			name:    "multiline label",
			src:     "[map]1,2(first\nsecond)[/map]",
			objects: []bbcode.Object{{Coords: []bbcode.LatLng{{1, 2}}, Text: "first\nsecond", Params: []string{}}},
		},
		{
			name:    "first tag wins",
			src:     "[map=2]1,2[/map] [map=3]3,4[/map]",
			zoom:    2,
			objects: []bbcode.Object{{Coords: []bbcode.LatLng{{1, 2}}, Params: []string{}}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := bbcode.Parse(tc.src)
			if doc.Zoom != tc.zoom {
				t.Errorf("zoom: exp %d, got %d", tc.zoom, doc.Zoom)
			}
			if !reflect.DeepEqual(doc.Center, tc.center) {
				t.Errorf("center: exp %v, got %v", tc.center, doc.Center)
			}
			if !reflect.DeepEqual(doc.Objects, tc.objects) {
				t.Errorf("objects:\nexp: %+v\ngot: %+v", tc.objects, doc.Objects)
			}
		})
	}
}

func TestParseAttributedStyle(t *testing.T) {
	cfg := bbcode.DefaultConfig()
	cfg.TagParams = true
	codec := bbcode.MustCodec(cfg)

	doc := codec.Parse(`[map z="5" ll='45.5,-122.6']10,20[/map]`)
	if doc.Zoom != 5 {
		t.Errorf("zoom: exp 5, got %d", doc.Zoom)
	}
	if doc.Center == nil || *doc.Center != (bbcode.LatLng{Lat: 45.5, Lng: -122.6}) {
		t.Errorf("center: got %v", doc.Center)
	}
	if len(doc.Objects) != 1 {
		t.Fatalf("objects: exp 1, got %d", len(doc.Objects))
	}

	if codec.IsValid("[map=5][/map]") {
		t.Error("compact tag accepted in attributed mode")
	}
}

func TestParseSkipsUnrepresentableNumbers(t *testing.T) {
	var buf bytes.Buffer
	codec := bbcode.MustCodec(bbcode.DefaultConfig(), bbcode.WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

	huge := "1" + strings.Repeat("0", 400)
	doc := codec.Parse("[map=5," + huge + ",2]" + huge + ",1 3,4[/map]")

	if doc.Zoom != 5 {
		t.Errorf("zoom: exp 5, got %d", doc.Zoom)
	}
	if doc.Center != nil {
		t.Errorf("center: exp nil, got %v", doc.Center)
	}
	if len(doc.Objects) != 1 || !reflect.DeepEqual(doc.Objects[0].Coords, []bbcode.LatLng{{3, 4}}) {
		t.Errorf("objects: got %+v", doc.Objects)
	}

	out := buf.String()
	for _, msg := range []string{"Skipping map center", "Skipping coordinate"} {
		if !strings.Contains(out, msg) {
			t.Errorf("log does not mention %q:\n%s", msg, out)
		}
	}
}

func TestCustomBrackets(t *testing.T) {
	codec, err := bbcode.NewCodec(bbcode.Config{Brackets: "<>", DecimalDigits: 5})
	if err != nil {
		t.Fatal(err)
	}

	g := codec.Grammar()
	if got := g.OpenTagSubstring(); got != "<map" {
		t.Errorf("open substring: got %q", got)
	}
	if got := g.CloseTagSubstring(); got != "</map>" {
		t.Errorf("close substring: got %q", got)
	}

	src := "<map=3>1,2(x)</map>"
	if !codec.IsValid(src) {
		t.Fatalf("%q not valid", src)
	}
	if codec.IsValid("[map=3]1,2[/map]") {
		t.Error("square brackets accepted")
	}

	doc := codec.Parse(src)
	if got := codec.Serialize(doc); got != src {
		t.Errorf("\nexp: %q\ngot: %q", src, got)
	}
}

func TestDefaultSubstrings(t *testing.T) {
	g := bbcode.MustGrammar(bbcode.DefaultConfig())
	if got := g.OpenTagSubstring(); got != "[map" {
		t.Errorf("open substring: got %q", got)
	}
	if got := g.CloseTagSubstring(); got != "[/map]" {
		t.Errorf("close substring: got %q", got)
	}
}

func TestInvalidConfig(t *testing.T) {
	for _, cfg := range []bbcode.Config{
		{Brackets: "["},
		{Brackets: "[[]"},
		{Brackets: "[]", DecimalDigits: -1},
		{Brackets: "[]", DecimalDigits: 400},
	} {
		if _, err := bbcode.NewCodec(cfg); !errors.Is(err, bbcode.ErrInvalidConfig) {
			t.Errorf("%+v: exp ErrInvalidConfig, got %v", cfg, err)
		}
	}
}
