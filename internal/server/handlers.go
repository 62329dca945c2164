// Package server exposes the map markup codec over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/woozymasta/mapbbcode/bbcode"
	"github.com/woozymasta/mapbbcode/internal/geo"

	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

type serializeResponse struct {
	Markup string `json:"markup"`
}

// HandleValidate reports whether the request body contains a map tag.
func (s *ServerContext) HandleValidate(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{Valid: s.Codec.IsValid(string(body))})
}

// HandleParse converts the markup in the request body to a JSON document.
func (s *ServerContext) HandleParse(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// HandleSerialize converts a JSON document to markup. Plain text is returned
// unless the client accepts only JSON.
func (s *ServerContext) HandleSerialize(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var doc bbcode.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid document: " + err.Error()})
		return
	}

	markup := s.Codec.Serialize(doc)
	recordObjects("serialize", len(doc.Objects))

	if r.Header.Get("Accept") == "application/json" {
		writeJSON(w, http.StatusOK, serializeResponse{Markup: markup})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, markup)
}

// HandleGeoJSON converts the markup in the request body to a GeoJSON
// FeatureCollection.
func (s *ServerContext) HandleGeoJSON(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	data, err := geo.MarshalGeoJSON(doc)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode GeoJSON")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "encoding failed"})
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleExtract returns every map tag found in the request body.
func (s *ServerContext) HandleExtract(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	blocks := s.Codec.Scan(string(body))
	if blocks == nil {
		blocks = []bbcode.Block{}
	}
	for _, b := range blocks {
		recordObjects("parse", len(b.Document.Objects))
	}

	writeJSON(w, http.StatusOK, blocks)
}

// HandleHealth answers liveness probes.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// parseBody reads markup and answers 422 when it holds no map tag.
func (s *ServerContext) parseBody(w http.ResponseWriter, r *http.Request) (bbcode.Document, bool) {
	body, ok := s.readBody(w, r)
	if !ok {
		return bbcode.Document{}, false
	}

	text := string(body)
	if !s.Codec.IsValid(text) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "no valid map tag found"})
		return bbcode.Document{}, false
	}

	doc := s.Codec.Parse(text)
	recordObjects("parse", len(doc.Objects))

	if s.Config.Fit.Enabled() {
		doc = geo.ApplyViewport(doc, s.Config.Fit, s.Config.Markup.DecimalDigits)
	}

	return doc, true
}

func (s *ServerContext) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	limit := s.Config.MaxBodyBytes
	if limit <= 0 {
		limit = 1 << 20
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return nil, false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
		return nil, false
	}

	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}
