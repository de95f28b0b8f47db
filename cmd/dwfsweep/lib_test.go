package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lightwell/godwf/server"
	"github.com/lightwell/godwf/sweep"
)

func mockServer(t *testing.T) *httptest.Server {
	t.Helper()
	c := DefaultConfig()
	b, err := OpenBench(c)
	if err != nil {
		t.Fatalf("opening mock bench: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	srv := httptest.NewServer(BuildMux(b))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, route string, body interface{}) *http.Response {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		t.Fatalf("encoding request body: %v", err)
	}
	resp, err := http.Post(srv.URL+route, "application/json", buf)
	if err != nil {
		t.Fatalf("POST %s: %v", route, err)
	}
	return resp
}

func mustOK(t *testing.T, resp *http.Response) {
	t.Helper()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: got HTTP %d, want 200: %s",
			resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, body)
	}
}

// Every instrument must be reachable through the serve command's mux at its
// stem, URL parameters included.
func TestBuildMuxRoutesEachInstrument(t *testing.T) {
	srv := mockServer(t)

	resp := post(t, srv, "/funcgen/channel/1/dc", server.FloatT{F64: 1.25})
	mustOK(t, resp)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/scope/sample/1")
	if err != nil {
		t.Fatal(err)
	}
	mustOK(t, resp)
	f := server.FloatT{}
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatalf("decoding sample reply: %v", err)
	}
	resp.Body.Close()
	if f.F64 != 1.25 {
		t.Errorf("sampled %G through the mux, want the programmed 1.25", f.F64)
	}

	cfg := sweep.DefaultConfig()
	cfg.StartVoltage = -1
	cfg.Amplitude = 1
	cfg.StepSize = 0.5
	cfg.SettleDelay = 0
	resp = post(t, srv, "/sweep/run", cfg)
	mustOK(t, resp)
	rec := struct {
		Samples []sweep.Sample
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decoding sweep reply: %v", err)
	}
	resp.Body.Close()
	if got, want := len(rec.Samples), 4; got != want {
		t.Errorf("sweep over the mux produced %d samples, want %d", got, want)
	}

	resp = post(t, srv, "/supplies/off", struct{}{})
	mustOK(t, resp)
	resp.Body.Close()
}

func TestBuildMuxEndpointsList(t *testing.T) {
	srv := mockServer(t)
	resp, err := http.Get(srv.URL + "/endpoints")
	if err != nil {
		t.Fatal(err)
	}
	mustOK(t, resp)
	graph := map[string][]string{}
	if err := json.NewDecoder(resp.Body).Decode(&graph); err != nil {
		t.Fatalf("decoding endpoint graph: %v", err)
	}
	resp.Body.Close()
	for _, stem := range []string{"/scope", "/funcgen", "/supplies", "/sweep"} {
		if len(graph[stem]) == 0 {
			t.Errorf("endpoint graph has no routes under %s", stem)
		}
	}
}
