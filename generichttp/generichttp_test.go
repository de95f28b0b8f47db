package generichttp_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lightwell/godwf/digilent"
	"github.com/lightwell/godwf/dwf/sim"
	"github.com/lightwell/godwf/generichttp"
	"github.com/lightwell/godwf/server"
	"github.com/lightwell/godwf/sweep"
	"goji.io"
	"goji.io/pat"
)

// bench is a sim-backed pod with every instrument mounted on one mux.
type bench struct {
	drv  *sim.Sim
	sess *digilent.Session
	srv  *httptest.Server
}

func newBench(t *testing.T) *bench {
	t.Helper()
	drv := sim.New()
	sess, err := digilent.Open(drv)
	if err != nil {
		t.Fatalf("opening session: %v", err)
	}
	t.Cleanup(func() { sess.Close() })

	scope := digilent.NewScope(sess)
	if err := scope.Configure(digilent.DefaultScopeConfig()); err != nil {
		t.Fatalf("configuring scope: %v", err)
	}
	gen := digilent.NewFuncGen(sess)
	supplies := digilent.NewSupplies(sess)
	ctl := &sweep.Controller{Scope: scope, Source: gen}

	root := goji.NewMux()
	mount := func(prefix string, h server.HTTPer) {
		sub := goji.SubMux()
		root.Handle(pat.New(prefix+"/*"), sub)
		h.RT().Bind(sub)
	}
	mount("/scope", generichttp.NewHTTPScope(scope))
	mount("/funcgen", generichttp.NewHTTPFuncGen(gen))
	mount("/supplies", generichttp.NewHTTPSupplies(supplies))
	mount("/sweep", generichttp.NewHTTPSweeper(ctl))

	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)
	return &bench{drv: drv, sess: sess, srv: srv}
}

func (b *bench) postJSON(t *testing.T, route string, body interface{}) *http.Response {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		t.Fatalf("encoding request body: %v", err)
	}
	resp, err := http.Post(b.srv.URL+route, "application/json", buf)
	if err != nil {
		t.Fatalf("POST %s: %v", route, err)
	}
	return resp
}

func (b *bench) get(t *testing.T, route string) *http.Response {
	t.Helper()
	resp, err := http.Get(b.srv.URL + route)
	if err != nil {
		t.Fatalf("GET %s: %v", route, err)
	}
	return resp
}

func wantStatus(t *testing.T, resp *http.Response, code int) {
	t.Helper()
	if resp.StatusCode != code {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: got HTTP %d, want %d: %s",
			resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, code, body)
	}
}

func decodeFloat(t *testing.T, resp *http.Response) float64 {
	t.Helper()
	defer resp.Body.Close()
	f := server.FloatT{}
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatalf("decoding float reply: %v", err)
	}
	return f.F64
}

func TestScopeSampleOverHTTP(t *testing.T) {
	b := newBench(t)
	resp := b.postJSON(t, "/supplies/", generichttp.SupplySetting{
		Master: true, PositiveOn: true, NegativeOn: true, PositiveV: 5, NegativeV: -5})
	wantStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = b.postJSON(t, "/funcgen/channel/1/dc", server.FloatT{F64: 1.5})
	wantStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	if got := decodeFloat(t, b.get(t, "/scope/sample/1")); got != 1.5 {
		t.Errorf("input channel read %G, want 1.5", got)
	}
	if got := decodeFloat(t, b.get(t, "/scope/sample/2")); got != -3 {
		t.Errorf("output channel read %G, want -3", got)
	}
}

func TestScopeConfigRoundTrip(t *testing.T) {
	b := newBench(t)
	want := digilent.ScopeConfig{SampleFrequency: 1e6, BufferSize: 512, Offset: 0.5, Range: 10}
	resp := b.postJSON(t, "/scope/config", want)
	wantStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = b.get(t, "/scope/config")
	wantStatus(t, resp, http.StatusOK)
	got := digilent.ScopeConfig{}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding config reply: %v", err)
	}
	resp.Body.Close()
	if got != want {
		t.Errorf("config round trip got %+v, want %+v", got, want)
	}
}

func TestScopeConfigRejectsBadBuffer(t *testing.T) {
	b := newBench(t)
	cfg := digilent.DefaultScopeConfig()
	cfg.BufferSize = -1
	resp := b.postJSON(t, "/scope/config", cfg)
	defer resp.Body.Close()
	wantStatus(t, resp, http.StatusInternalServerError)
}

func TestSuppliesClampOverHTTP(t *testing.T) {
	b := newBench(t)
	resp := b.postJSON(t, "/supplies/", generichttp.SupplySetting{
		Master: true, PositiveOn: true, NegativeOn: true, PositiveV: 10, NegativeV: -10})
	wantStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	pos, neg, err := b.drv.RailVoltages(b.sess.Handle())
	if err != nil {
		t.Fatalf("reading rails: %v", err)
	}
	if pos != 5 || neg != -5 {
		t.Errorf("rails at (%G, %G), want clamped to (5, -5)", pos, neg)
	}
}

func TestUploadChecksumOverHTTP(t *testing.T) {
	b := newBench(t)
	resp := b.get(t, "/funcgen/channel/1/upload-crc")
	wantStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()

	resp = b.postJSON(t, "/funcgen/channel/1/waveform", map[string]interface{}{
		"Function":  "custom",
		"Frequency": 1e3,
		"Amplitude": 1,
		"Data":      []float64{0, 0.5, 1, 0.5, 0, -0.5, -1, -0.5},
	})
	wantStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = b.get(t, "/funcgen/channel/1/upload-crc")
	wantStatus(t, resp, http.StatusOK)
	reply := struct {
		CRC uint64 `json:"crc"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatalf("decoding crc reply: %v", err)
	}
	resp.Body.Close()
	if reply.CRC == 0 {
		t.Error("checksum of uploaded waveform is zero")
	}
}

func TestWaveformRejectsUnknownFunction(t *testing.T) {
	b := newBench(t)
	resp := b.postJSON(t, "/funcgen/channel/1/waveform", map[string]interface{}{
		"Function": "sawtooth",
	})
	defer resp.Body.Close()
	wantStatus(t, resp, http.StatusBadRequest)
}

func TestSweepOverHTTP(t *testing.T) {
	b := newBench(t)
	resp := b.get(t, "/sweep/csv")
	wantStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()

	resp = b.postJSON(t, "/supplies/", generichttp.SupplySetting{
		Master: true, PositiveOn: true, NegativeOn: true, PositiveV: 5, NegativeV: -5})
	wantStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	cfg := sweep.DefaultConfig()
	cfg.StartVoltage = -1
	cfg.Amplitude = 1
	cfg.StepSize = 0.25
	cfg.SettleDelay = 0
	resp = b.postJSON(t, "/sweep/run", cfg)
	wantStatus(t, resp, http.StatusOK)
	rec := struct {
		Samples []sweep.Sample
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decoding sweep reply: %v", err)
	}
	resp.Body.Close()
	if got, want := len(rec.Samples), 8; got != want {
		t.Errorf("sweep produced %d samples, want %d", got, want)
	}

	resp = b.get(t, "/sweep/csv")
	wantStatus(t, resp, http.StatusOK)
	rows, err := csv.NewReader(resp.Body).ReadAll()
	resp.Body.Close()
	if err != nil {
		t.Fatalf("parsing csv product: %v", err)
	}
	if got, want := len(rows), 9; got != want { // header + samples
		t.Errorf("csv has %d rows, want %d", got, want)
	}

	for _, route := range []string{"/sweep/plot/timeseries", "/sweep/plot/transfer"} {
		resp = b.get(t, route)
		wantStatus(t, resp, http.StatusOK)
		if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s served Content-Type %q, want image/png", route, ct)
		}
		resp.Body.Close()
	}

	resp = b.get(t, "/sweep/text")
	wantStatus(t, resp, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !bytes.Contains(body, []byte(fmt.Sprintf("(%G", rec.Samples[0].Elapsed))) {
		t.Error("printed triples do not contain the first sample")
	}
}
