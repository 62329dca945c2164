package server

import (
	"net/http"

	"github.com/woozymasta/mapbbcode/bbcode"
	"github.com/woozymasta/mapbbcode/internal/config"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config *config.Config
	Codec  *bbcode.Codec
}

// NewServerContext builds the codec described by cfg.
func NewServerContext(cfg *config.Config) (*ServerContext, error) {
	codec, err := cfg.Codec()
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("brackets", cfg.Markup.Brackets).
		Bool("tag_params", cfg.Markup.TagParams).
		Int("decimal_digits", cfg.Markup.DecimalDigits).
		Bool("fit", cfg.Fit.Enabled()).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config: cfg,
		Codec:  codec,
	}, nil
}

// Handler returns the routed API wrapped in request logging and metrics.
func (s *ServerContext) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/validate", s.HandleValidate)
	mux.HandleFunc("POST /api/parse", s.HandleParse)
	mux.HandleFunc("POST /api/serialize", s.HandleSerialize)
	mux.HandleFunc("POST /api/geojson", s.HandleGeoJSON)
	mux.HandleFunc("POST /api/extract", s.HandleExtract)
	mux.HandleFunc("GET /healthz", s.HandleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return RequestLogger(mux)
}
