package bbcode

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Codec converts between map markup and Documents for one Config.
// The grammar is built once in NewCodec; a Codec is safe for concurrent use.
type Codec struct {
	cfg     Config
	grammar *Grammar
	logger  *zerolog.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger routes the codec's debug messages about skipped fields to l
// instead of the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Codec) {
		c.logger = &l
	}
}

// NewCodec validates cfg and builds its grammar.
func NewCodec(cfg Config, opts ...Option) (*Codec, error) {
	g, err := NewGrammar(cfg)
	if err != nil {
		return nil, err
	}

	c := &Codec{cfg: cfg, grammar: g}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// MustCodec is like NewCodec but panics on an invalid Config.
func MustCodec(cfg Config, opts ...Option) *Codec {
	c, err := NewCodec(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Config returns the codec's configuration.
func (c *Codec) Config() Config {
	return c.cfg
}

// Grammar returns the compiled grammar.
func (c *Codec) Grammar() *Grammar {
	return c.grammar
}

func (c *Codec) log() *zerolog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return &log.Logger
}

// IsValid reports whether markup contains a map tag anywhere.
func (c *Codec) IsValid(markup string) bool {
	return c.grammar.mapRe.MatchString(markup)
}

// Parse extracts the first map tag in markup. Text without a valid tag
// yields an empty Document. Fields that fail to convert are left unset.
func (c *Codec) Parse(markup string) Document {
	doc := Document{Objects: []Object{}}

	m := c.grammar.mapRe.FindStringSubmatch(markup)
	if m == nil {
		return doc
	}

	if m[mapZoom] != "" {
		if zoom, err := strconv.Atoi(m[mapZoom]); err == nil && zoom > 0 {
			doc.Zoom = zoom
			if m[mapLng] != "" {
				center, err := parseLatLng(m[mapLat], m[mapLng])
				if err != nil {
					c.log().Debug().Err(err).Str("lat", m[mapLat]).Str("lng", m[mapLng]).Msg("Skipping map center")
				} else {
					doc.Center = &center
				}
			}
		}
	}

	items := m[mapBody]
	for itm := c.grammar.elementRe.FindStringSubmatch(items); itm != nil; itm = c.grammar.elementRe.FindStringSubmatch(items) {
		doc.Objects = append(doc.Objects, c.parseElement(itm))
		items = items[len(itm[0]):]
	}

	return doc
}

func (c *Codec) parseElement(itm []string) Object {
	obj := Object{Coords: []LatLng{}, Params: []string{}}

	s := itm[elemAll]
	for m := c.grammar.coordRe.FindStringSubmatch(s); m != nil; m = c.grammar.coordRe.FindStringSubmatch(s) {
		ll, err := parseLatLng(m[1], m[2])
		if err != nil {
			c.log().Debug().Err(err).Str("coord", strings.TrimSpace(m[0])).Msg("Skipping coordinate")
		} else {
			obj.Coords = append(obj.Coords, ll)
		}
		s = s[len(m[0]):]
	}

	if itm[elemParams] != "" {
		obj.Params = strings.Split(itm[elemParams], ",")
	}
	if itm[elemText] != "" {
		obj.Text = strings.TrimSpace(strings.ReplaceAll(itm[elemText], `\)`, ")"))
	}

	return obj
}

func parseLatLng(lat, lng string) (LatLng, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return LatLng{}, err
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return LatLng{}, err
	}
	return LatLng{Lat: la, Lng: ln}, nil
}
