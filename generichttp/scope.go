package generichttp

import (
	"encoding/json"
	"net/http"

	"github.com/lightwell/godwf/digilent"
	"github.com/lightwell/godwf/server"
	"goji.io/pat"
)

// HTTPScope exposes an oscilloscope over HTTP.
type HTTPScope struct {
	Scope *digilent.Scope

	RouteTable server.RouteTable
}

// NewHTTPScope wraps a scope in an HTTP interface.
func NewHTTPScope(s *digilent.Scope) HTTPScope {
	h := HTTPScope{Scope: s}
	rt := server.RouteTable{
		pat.Get("/config"):          h.GetConfig,
		pat.Post("/config"):         h.SetConfig,
		pat.Get("/sample/:channel"): h.Sample,
		pat.Get("/record/:channel"): h.Record,
		pat.Post("/reset"):          h.Reset,
	}
	h.RouteTable = rt
	return h
}

// RT satisfies server.HTTPer
func (h HTTPScope) RT() server.RouteTable {
	return h.RouteTable
}

// GetConfig returns the current acquisition configuration as JSON
func (h HTTPScope) GetConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.Scope.Config()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetConfig applies an acquisition configuration from JSON
func (h HTTPScope) SetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := digilent.DefaultScopeConfig()
	err := json.NewDecoder(r.Body).Decode(&cfg)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Scope.Configure(cfg); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Sample reads a single voltage from the channel in the URL
func (h HTTPScope) Sample(w http.ResponseWriter, r *http.Request) {
	ch, err := channelParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	GetFloat(func() (float64, error) {
		return h.Scope.Sample(ch)
	})(w, r)
}

// recordT is the reply format for Record, parallel time and voltage slices.
type recordT struct {
	Times  []float64 `json:"times"`
	Values []float64 `json:"values"`
}

// Record runs a buffered acquisition on the channel in the URL and returns
// the time vector and voltages as JSON
func (h HTTPScope) Record(w http.ResponseWriter, r *http.Request) {
	ch, err := channelParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	values, times, err := h.Scope.Record(ch)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(recordT{Times: times, Values: values}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Reset returns the acquisition unit to its power-up state
func (h HTTPScope) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.Scope.Reset(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
