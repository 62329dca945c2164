// Package bbcode parses and produces map markup: a bracketed tag holding a
// viewport and a list of markers and paths with optional labels.
//
//	[map=5,45.5,-122.6]10,20(label); 10,20 11,21(a,b|a line)[/map]
package bbcode

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// ErrInvalidConfig is returned when a Config cannot produce a grammar.
var ErrInvalidConfig = errors.New("invalid map markup config")

// MaxZoom is the highest zoom level a viewport is expected to carry.
const MaxZoom = 20

// Config selects the markup dialect. It is a plain value: each Codec keeps
// its own copy and never observes later changes.
type Config struct {
	// Brackets holds the opening and closing delimiter, "[]" by default.
	Brackets string `yaml:"brackets" json:"brackets"`
	// TagParams switches the opening tag to [map z="Z" ll="LAT,LNG"].
	TagParams bool `yaml:"tag_params" json:"tag_params"`
	// DecimalDigits is the rounding precision for emitted coordinates.
	DecimalDigits int `yaml:"decimal_digits" json:"decimal_digits"`
}

// DefaultConfig returns the compact "[map=Z,LAT,LNG]" dialect with five digits.
func DefaultConfig() Config {
	return Config{Brackets: "[]", DecimalDigits: 5}
}

// MaxDecimalDigits bounds Config.DecimalDigits; beyond it float64 values
// carry no further decimal precision.
const MaxDecimalDigits = 15

// Validate checks that the bracket pair is exactly two characters and the
// digit count lies in [0, MaxDecimalDigits].
func (c Config) Validate() error {
	if utf8.RuneCountInString(c.Brackets) != 2 {
		return fmt.Errorf("%w: brackets %q must be two characters", ErrInvalidConfig, c.Brackets)
	}
	if c.DecimalDigits < 0 {
		return fmt.Errorf("%w: decimal digits %d is negative", ErrInvalidConfig, c.DecimalDigits)
	}
	if c.DecimalDigits > MaxDecimalDigits {
		return fmt.Errorf("%w: decimal digits %d exceeds %d", ErrInvalidConfig, c.DecimalDigits, MaxDecimalDigits)
	}

	return nil
}

func (c Config) openBracket() string {
	r, _ := utf8.DecodeRuneInString(c.Brackets)
	return string(r)
}

func (c Config) closeBracket() string {
	_, size := utf8.DecodeRuneInString(c.Brackets)
	return c.Brackets[size:]
}

// Submatch indexes of the map pattern.
const (
	mapZoom = 1
	mapLat  = 2
	mapLng  = 3
	mapBody = 4
)

// Submatch indexes of the anchored element pattern.
const (
	elemAll    = 1
	elemParams = 6
	elemText   = 7
)

// Grammar holds the regular expressions for one Config.
// The raw pattern strings are exported for hosts that compose their own
// expressions on top of them.
type Grammar struct {
	// Coord matches optional whitespace and "LAT,LNG"; two groups.
	Coord string
	// ParamsText matches "(params|text)"; groups are params and text.
	ParamsText string
	// Element matches one or more coordinates and an optional ParamsText.
	Element string
	// OpenTag matches the opening tag; groups are zoom, lat and lng.
	OpenTag string
	// Map matches the whole tag; group 4 is the element list.
	Map string

	openSubstr  string
	closeSubstr string

	mapRe     *regexp.Regexp
	elementRe *regexp.Regexp
	coordRe   *regexp.Regexp
	openRe    *regexp.Regexp
	closeRe   *regexp.Regexp
}

// NewGrammar builds and compiles the markup grammar for cfg.
func NewGrammar(cfg Config) (*Grammar, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	openBr := regexp.QuoteMeta(cfg.openBracket())
	closBr := regexp.QuoteMeta(cfg.closeBracket())

	g := &Grammar{
		openSubstr:  cfg.openBracket() + "map",
		closeSubstr: cfg.openBracket() + "/map" + cfg.closeBracket(),
	}

	g.Coord = `\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)`
	// The empty alternative comes first so "()" yields empty text, and the
	// lazy body stops at the first ")" not preceded by a backslash.
	g.ParamsText = `\((?:([a-zA-Z0-9,]*)\|)?(|[\s\S]*?[^\\])\)`
	g.Element = g.Coord + `(?:` + g.Coord + `)*(?:\s*` + g.ParamsText + `)?`

	var viewport string
	if cfg.TagParams {
		viewport = `\s+z=['"]([12]?\d)['"](?:\s+ll=['"]` + g.Coord + `['"])?`
	} else {
		viewport = `=([12]?\d)(?:,` + g.Coord + `)?`
	}
	g.OpenTag = openBr + `map(?:` + viewport + `)?` + closBr

	closeTag := openBr + `/map` + closBr
	g.Map = g.OpenTag + `(` + g.Element + `(?:\s*;` + g.Element + `)*)?\s*` + closeTag

	var err error
	if g.mapRe, err = regexp.Compile(`(?i)` + g.Map); err != nil {
		return nil, fmt.Errorf("compile map pattern: %w", err)
	}
	if g.elementRe, err = regexp.Compile(`^\s*(?:;\s*)?(` + g.Element + `)`); err != nil {
		return nil, fmt.Errorf("compile element pattern: %w", err)
	}
	if g.coordRe, err = regexp.Compile(`^` + g.Coord); err != nil {
		return nil, fmt.Errorf("compile coordinate pattern: %w", err)
	}
	if g.openRe, err = regexp.Compile(`(?i)` + regexp.QuoteMeta(g.openSubstr)); err != nil {
		return nil, fmt.Errorf("compile opening substring: %w", err)
	}
	if g.closeRe, err = regexp.Compile(`(?i)` + regexp.QuoteMeta(g.closeSubstr)); err != nil {
		return nil, fmt.Errorf("compile closing substring: %w", err)
	}

	return g, nil
}

// MustGrammar is like NewGrammar but panics on an invalid Config.
func MustGrammar(cfg Config) *Grammar {
	g, err := NewGrammar(cfg)
	if err != nil {
		panic(err)
	}
	return g
}

// OpenTagSubstring returns the shortest text that starts every map tag,
// "[map" by default.
func (g *Grammar) OpenTagSubstring() string {
	return g.openSubstr
}

// CloseTagSubstring returns the closing tag, "[/map]" by default.
func (g *Grammar) CloseTagSubstring() string {
	return g.closeSubstr
}
