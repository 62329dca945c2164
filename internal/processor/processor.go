// Package processor converts map markup and related formats in batches.
package processor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/woozymasta/mapbbcode/bbcode"
	"github.com/woozymasta/mapbbcode/internal/geo"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	jsonmin "github.com/tdewolff/minify/v2/json"
	"gopkg.in/yaml.v3"
)

// Format names an input or output representation.
type Format string

// Supported formats.
const (
	FormatBBCode  Format = "bbcode"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatGeoJSON Format = "geojson"
	FormatWKT     Format = "wkt"
)

// ErrNoMap is returned when markup input holds no valid map tag.
var ErrNoMap = errors.New("no valid map tag found")

// ErrUnknownFormat is returned for format names outside the supported set.
var ErrUnknownFormat = errors.New("unknown format")

// ErrOutputCollision is returned for a batch input whose output file is
// already claimed by an earlier input.
var ErrOutputCollision = errors.New("output path already used by another input")

var extensions = map[Format]string{
	FormatBBCode:  ".bbcode",
	FormatJSON:    ".json",
	FormatYAML:    ".yaml",
	FormatGeoJSON: ".geojson",
	FormatWKT:     ".wkt",
}

// Extension returns the file extension written for f.
func (f Format) Extension() string {
	return extensions[f]
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if _, ok := extensions[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

// DetectFormat guesses the input format from a file name, falling back to
// markup for anything unrecognised.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".geojson":
		return FormatGeoJSON
	case ".wkt":
		return FormatWKT
	default:
		return FormatBBCode
	}
}

// Options controls a conversion.
type Options struct {
	From Format
	To   Format
	// Extract collects every map tag of a markup input instead of the first.
	Extract bool
	// Minify writes compact JSON and GeoJSON.
	Minify bool
	// Fit fills missing viewports when enabled.
	Fit geo.FitOptions
}

// Processor converts between formats with one codec.
type Processor struct {
	codec    *bbcode.Codec
	opts     Options
	minifier *minify.M
}

// New creates a processor. An empty input format means markup for Convert
// and detection by file extension for ProcessFiles; output defaults to JSON.
func New(codec *bbcode.Codec, opts Options) *Processor {
	if opts.To == "" {
		opts.To = FormatJSON
	}

	m := minify.New()
	m.AddFunc("application/json", jsonmin.Minify)

	return &Processor{codec: codec, opts: opts, minifier: m}
}

// Convert decodes data in the input format and encodes it in the output format.
func (p *Processor) Convert(data []byte) ([]byte, int, error) {
	from := p.opts.From
	if from == "" {
		from = FormatBBCode
	}

	docs, err := p.Decode(data, from)
	if err != nil {
		return nil, 0, err
	}

	out, err := p.Encode(docs)
	if err != nil {
		return nil, 0, err
	}

	return out, len(docs), nil
}

// Decode reads documents in the given format and fits missing viewports.
func (p *Processor) Decode(data []byte, from Format) ([]bbcode.Document, error) {
	var docs []bbcode.Document

	switch from {
	case FormatBBCode:
		text := string(data)
		if p.opts.Extract {
			for _, b := range p.codec.Scan(text) {
				docs = append(docs, b.Document)
			}
			if len(docs) == 0 {
				return nil, ErrNoMap
			}
			log.Debug().Int("blocks", len(docs)).Msg("Extracted map tags")
		} else {
			if !p.codec.IsValid(text) {
				return nil, ErrNoMap
			}
			docs = append(docs, p.codec.Parse(text))
		}

	case FormatJSON:
		doc, err := decodeStructured(data, json.Unmarshal)
		if err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		docs = append(docs, doc...)

	case FormatYAML:
		doc, err := decodeStructured(data, yaml.Unmarshal)
		if err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		docs = append(docs, doc...)

	case FormatGeoJSON:
		doc, err := geo.UnmarshalGeoJSON(data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)

	case FormatWKT:
		doc, err := geo.UnmarshalWKT(string(data))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, from)
	}

	if p.opts.Fit.Enabled() {
		for i := range docs {
			docs[i] = geo.ApplyViewport(docs[i], p.opts.Fit, p.codec.Config().DecimalDigits)
		}
	}

	return docs, nil
}

// decodeStructured accepts a single document or a list of documents.
func decodeStructured(data []byte, unmarshal func([]byte, interface{}) error) ([]bbcode.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) || bytes.HasPrefix(trimmed, []byte("- ")) {
		var docs []bbcode.Document
		if err := unmarshal(trimmed, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	}

	var doc bbcode.Document
	if err := unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return []bbcode.Document{doc}, nil
}

// Encode writes documents in the output format. Several documents become a
// list in JSON and YAML, a single merged collection in GeoJSON and one line
// per document in markup and WKT.
func (p *Processor) Encode(docs []bbcode.Document) ([]byte, error) {
	switch p.opts.To {
	case FormatBBCode:
		lines := make([]string, 0, len(docs))
		for _, doc := range docs {
			lines = append(lines, p.codec.Serialize(doc))
		}
		return []byte(strings.Join(lines, "\n")), nil

	case FormatJSON:
		var v interface{} = docs
		if len(docs) == 1 {
			v = docs[0]
		}
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return p.finishJSON(out)

	case FormatYAML:
		var v interface{} = docs
		if len(docs) == 1 {
			v = docs[0]
		}
		return yaml.Marshal(v)

	case FormatGeoJSON:
		merged := bbcode.Document{}
		for _, doc := range docs {
			merged.Objects = append(merged.Objects, doc.Objects...)
		}
		out, err := geo.MarshalGeoJSON(merged)
		if err != nil {
			return nil, fmt.Errorf("encode geojson: %w", err)
		}
		if !p.opts.Minify {
			var buf bytes.Buffer
			if err := json.Indent(&buf, out, "", "  "); err != nil {
				return nil, fmt.Errorf("indent geojson: %w", err)
			}
			out = buf.Bytes()
		}
		return out, nil

	case FormatWKT:
		lines := make([]string, 0, len(docs))
		for _, doc := range docs {
			s, err := geo.MarshalWKT(doc, p.codec.Config().DecimalDigits)
			if err != nil {
				return nil, err
			}
			lines = append(lines, s)
		}
		return []byte(strings.Join(lines, "\n")), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, p.opts.To)
	}
}

func (p *Processor) finishJSON(out []byte) ([]byte, error) {
	if !p.opts.Minify {
		return out, nil
	}

	compact, err := p.minifier.Bytes("application/json", out)
	if err != nil {
		return nil, fmt.Errorf("minify json: %w", err)
	}
	return compact, nil
}
