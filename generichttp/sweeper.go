package generichttp

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/lightwell/godwf/server"
	"github.com/lightwell/godwf/sweep"
	"github.com/lightwell/godwf/vtd"
	"goji.io/pat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// HTTPSweeper exposes the sweep controller over HTTP and serves the data
// products of the most recent sweep.
type HTTPSweeper struct {
	Controller *sweep.Controller

	RouteTable server.RouteTable

	mu   sync.Mutex
	last *vtd.Recording
}

// NewHTTPSweeper wraps a sweep controller in an HTTP interface.
func NewHTTPSweeper(c *sweep.Controller) *HTTPSweeper {
	h := &HTTPSweeper{Controller: c}
	rt := server.RouteTable{
		pat.Post("/run"):            h.Run,
		pat.Get("/csv"):             h.CSV,
		pat.Get("/text"):            h.Text,
		pat.Get("/plot/timeseries"): h.TimeSeriesPlot,
		pat.Get("/plot/transfer"):   h.TransferPlot,
	}
	h.RouteTable = rt
	return h
}

// RT satisfies server.HTTPer
func (h *HTTPSweeper) RT() server.RouteTable {
	return h.RouteTable
}

// Run executes a sweep described by a sweep.Config JSON body; fields left
// out of the body take their defaults.  The recording is retained for the
// data product routes and the reply is the sample sequence as JSON.
func (h *HTTPSweeper) Run(w http.ResponseWriter, r *http.Request) {
	cfg := sweep.DefaultConfig()
	err := json.NewDecoder(r.Body).Decode(&cfg)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := h.Controller.Run(cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rec := vtd.FromResult(res)
	h.mu.Lock()
	h.last = &rec
	h.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// lastRecording fetches the retained recording, nil before the first sweep.
func (h *HTTPSweeper) lastRecording() *vtd.Recording {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// CSV serves the last sweep as CSV
func (h *HTTPSweeper) CSV(w http.ResponseWriter, r *http.Request) {
	rec := h.lastRecording()
	if rec == nil {
		http.Error(w, "no sweep has been run", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	if err := rec.EncodeCSV(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Text serves the last sweep as printed (time, input, output) triples
func (h *HTTPSweeper) Text(w http.ResponseWriter, r *http.Request) {
	rec := h.lastRecording()
	if rec == nil {
		http.Error(w, "no sweep has been run", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	if err := rec.Fprint(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// servePNG renders a figure to the response as a PNG.
func servePNG(w http.ResponseWriter, p *plot.Plot) {
	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := wt.WriteTo(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// TimeSeriesPlot serves the voltage-vs-time figure of the last sweep as PNG
func (h *HTTPSweeper) TimeSeriesPlot(w http.ResponseWriter, r *http.Request) {
	rec := h.lastRecording()
	if rec == nil {
		http.Error(w, "no sweep has been run", http.StatusNotFound)
		return
	}
	p, err := rec.TimeSeriesPlot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	servePNG(w, p)
}

// TransferPlot serves the voltage transfer diagram of the last sweep as PNG
func (h *HTTPSweeper) TransferPlot(w http.ResponseWriter, r *http.Request) {
	rec := h.lastRecording()
	if rec == nil {
		http.Error(w, "no sweep has been run", http.StatusNotFound)
		return
	}
	p, err := rec.TransferPlot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	servePNG(w, p)
}
