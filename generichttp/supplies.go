package generichttp

import (
	"encoding/json"
	"net/http"

	"github.com/lightwell/godwf/digilent"
	"github.com/lightwell/godwf/server"
	"goji.io/pat"
)

// SupplySetting is the JSON body accepted by HTTPSupplies.Set.
type SupplySetting struct {
	Master     bool    `json:"master"`
	PositiveOn bool    `json:"positiveOn"`
	NegativeOn bool    `json:"negativeOn"`
	PositiveV  float64 `json:"positiveV"`
	NegativeV  float64 `json:"negativeV"`
}

// HTTPSupplies exposes the programmable power rails over HTTP.
type HTTPSupplies struct {
	Supplies *digilent.Supplies

	RouteTable server.RouteTable
}

// NewHTTPSupplies wraps the supplies in an HTTP interface.
func NewHTTPSupplies(p *digilent.Supplies) HTTPSupplies {
	h := HTTPSupplies{Supplies: p}
	rt := server.RouteTable{
		pat.Post("/"):    h.Set,
		pat.Post("/off"): h.Off,
	}
	h.RouteTable = rt
	return h
}

// RT satisfies server.HTTPer
func (h HTTPSupplies) RT() server.RouteTable {
	return h.RouteTable
}

// Set applies a SupplySetting JSON body to the rails.  Voltages outside the
// rails' ranges are clamped, not rejected.
func (h HTTPSupplies) Set(w http.ResponseWriter, r *http.Request) {
	s := SupplySetting{}
	err := json.NewDecoder(r.Body).Decode(&s)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Supplies.Set(s.Master, s.PositiveOn, s.NegativeOn, s.PositiveV, s.NegativeV); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Off disables both rails and the master switch
func (h HTTPSupplies) Off(w http.ResponseWriter, r *http.Request) {
	if err := h.Supplies.Off(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
