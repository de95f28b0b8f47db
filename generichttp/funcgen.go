package generichttp

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lightwell/godwf/digilent"
	"github.com/lightwell/godwf/server"
	"goji.io/pat"
)

// HTTPFuncGen exposes a waveform generator over HTTP.
type HTTPFuncGen struct {
	Gen *digilent.FuncGen

	RouteTable server.RouteTable
}

// NewHTTPFuncGen wraps a generator in an HTTP interface.
func NewHTTPFuncGen(g *digilent.FuncGen) HTTPFuncGen {
	h := HTTPFuncGen{Gen: g}
	rt := server.RouteTable{
		pat.Post("/channel/:channel/waveform"):  h.SetWaveform,
		pat.Post("/channel/:channel/dc"):        h.SetDC,
		pat.Get("/channel/:channel/upload-crc"): h.UploadChecksum,
		pat.Post("/reset"):                      h.Reset,
	}
	h.RouteTable = rt
	return h
}

// RT satisfies server.HTTPer
func (h HTTPFuncGen) RT() server.RouteTable {
	return h.RouteTable
}

// SetWaveform starts an output described by a WaveformConfig JSON body on
// the channel in the URL
func (h HTTPFuncGen) SetWaveform(w http.ResponseWriter, r *http.Request) {
	ch, err := channelParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cfg := digilent.DefaultWaveform()
	err = json.NewDecoder(r.Body).Decode(&cfg)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Gen.Configure(ch, cfg); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// SetDC drives a constant level, {'f64': volts}, on the channel in the URL
func (h HTTPFuncGen) SetDC(w http.ResponseWriter, r *http.Request) {
	ch, err := channelParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	SetFloat(func(v float64) error {
		return h.Gen.SetDC(ch, v)
	})(w, r)
}

// crcT is the reply format for UploadChecksum.
type crcT struct {
	CRC uint64 `json:"crc"`
}

// UploadChecksum replies with the checksum of the last custom waveform
// uploaded to the channel in the URL, 404 if none has been
func (h HTTPFuncGen) UploadChecksum(w http.ResponseWriter, r *http.Request) {
	ch, err := channelParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	crc, ok := h.Gen.UploadChecksum(ch)
	if !ok {
		http.Error(w, fmt.Sprintf("no custom waveform uploaded to channel %d", ch), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(crcT{CRC: crc}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Reset stops output on all channels and clears their configuration
func (h HTTPFuncGen) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.Gen.Reset(0); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
