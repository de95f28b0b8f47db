// Package server contains shared plumbing for the HTTP layer: route
// tables keyed by goji patterns and the JSON payload envelopes used by
// every instrument binding.
package server

import (
	"encoding/json"
	"fmt"
	"go/types"
	"log"
	"net/http"

	"goji.io"
)

// RouteTable maps goji patterns to http handlers.
type RouteTable map[goji.Pattern]http.HandlerFunc

// Bind attaches every route in the table to the mux.
func (rt RouteTable) Bind(mux *goji.Mux) {
	for p, h := range rt {
		mux.Handle(p, h)
	}
}

// Endpoints returns the patterns in the table as strings.
func (rt RouteTable) Endpoints() []string {
	routes := make([]string, 0, len(rt))
	for p := range rt {
		routes = append(routes, fmt.Sprint(p))
	}
	return routes
}

// HTTPer is an object which can yield its route table for binding to a mux.
type HTTPer interface {
	RT() RouteTable
}

// HumanPayload is a struct that holds the various types of data that can
// be sent in a simple reply and can self-encode to JSON.
type HumanPayload struct {
	// T holds the type of data actually populated.
	T types.BasicKind

	Bool   bool
	Int    int
	Float  float64
	String string
}

// EncodeAndRespond writes the payload as JSON under a single key named for
// its type: bool, int, f64, or str.
func (hp HumanPayload) EncodeAndRespond(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var obj interface{}
	switch hp.T {
	case types.Bool:
		obj = BoolT{Bool: hp.Bool}
	case types.Int:
		obj = IntT{Int: hp.Int}
	case types.Float64:
		obj = FloatT{F64: hp.Float}
	case types.String:
		obj = StrT{Str: hp.String}
	default:
		fstr := fmt.Sprintf("payload type %v not supported", hp.T)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		fstr := fmt.Sprintf("error encoding payload to json %q", err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusInternalServerError)
	}
}

// FloatT is a struct with a single field F64 for json requests and replies.
type FloatT struct {
	F64 float64 `json:"f64"`
}

// IntT is a struct with a single field Int for json requests and replies.
type IntT struct {
	Int int `json:"int"`
}

// BoolT is a struct with a single field Bool for json requests and replies.
type BoolT struct {
	Bool bool `json:"bool"`
}

// StrT is a struct with a single field Str for json requests and replies.
type StrT struct {
	Str string `json:"str"`
}
