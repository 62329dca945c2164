// Package config handles configuration loading for the converter and server.
package config

import (
	"fmt"
	"os"

	"github.com/woozymasta/mapbbcode/bbcode"
	"github.com/woozymasta/mapbbcode/internal/geo"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	// Markup selects the bracket pair, tag style and coordinate precision.
	Markup bbcode.Config `yaml:"markup" json:"markup"`

	// Fit fills a missing viewport from the object bounds when width and
	// height are set.
	Fit geo.FitOptions `yaml:"fit,omitempty" json:"fit,omitempty"`

	// MaxBodyBytes limits request bodies accepted by the server.
	MaxBodyBytes int64 `yaml:"max_body_bytes,omitempty" json:"max_body_bytes,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Markup: bbcode.DefaultConfig(),
		Fit: geo.FitOptions{
			TileSize: 256,
			MaxZoom:  16,
		},
		MaxBodyBytes: 1 << 20,
	}
}

// Load reads and parses the YAML configuration file from the specified path.
// Settings missing from the file keep their defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Markup.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Codec builds the markup codec described by the configuration.
func (c *Config) Codec(opts ...bbcode.Option) (*bbcode.Codec, error) {
	return bbcode.NewCodec(c.Markup, opts...)
}
