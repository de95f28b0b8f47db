package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/theckman/yacspin"
	"goji.io"
	"goji.io/pat"

	"github.com/lightwell/godwf/digilent"
	"github.com/lightwell/godwf/dwf"
	"github.com/lightwell/godwf/dwf/sim"
	"github.com/lightwell/godwf/generichttp"
	"github.com/lightwell/godwf/server"
	"github.com/lightwell/godwf/sweep"
	"github.com/lightwell/godwf/util"
	"github.com/lightwell/godwf/vtd"
)

// SupplySetup holds the rail programming applied when the bench opens.
type SupplySetup struct {
	Master     bool    `yaml:"Master"`
	PositiveOn bool    `yaml:"PositiveOn"`
	NegativeOn bool    `yaml:"NegativeOn"`
	PositiveV  float64 `yaml:"PositiveV"`
	NegativeV  float64 `yaml:"NegativeV"`
}

// SweepSetup mirrors sweep.Config with the settle delay in seconds, which
// reads better in a config file than nanoseconds.
type SweepSetup struct {
	StartVoltage    float64 `yaml:"StartVoltage"`
	Amplitude       float64 `yaml:"Amplitude"`
	StepSize        float64 `yaml:"StepSize"`
	SettleDelaySecs float64 `yaml:"SettleDelaySecs"`
	Cycles          int     `yaml:"Cycles"`
	DriveChannel    int     `yaml:"DriveChannel"`
	InputChannel    int     `yaml:"InputChannel"`
	OutputChannel   int     `yaml:"OutputChannel"`
}

// Config translates the setup into the controller's terms.
func (s SweepSetup) Config() sweep.Config {
	return sweep.Config{
		StartVoltage:  s.StartVoltage,
		Amplitude:     s.Amplitude,
		StepSize:      s.StepSize,
		SettleDelay:   util.SecsToDuration(s.SettleDelaySecs),
		Cycles:        s.Cycles,
		DriveChannel:  s.DriveChannel,
		InputChannel:  s.InputChannel,
		OutputChannel: s.OutputChannel,
	}
}

// OutputSetup names the data products written after a sweep.  Empty paths
// skip that product.
type OutputSetup struct {
	CSV           string `yaml:"CSV"`
	TimeSeriesPNG string `yaml:"TimeSeriesPNG"`
	TransferPNG   string `yaml:"TransferPNG"`
	Print         bool   `yaml:"Print"`

	// RecordCSV, when set, dumps one buffered acquisition of RecordChannel
	// after the sweep, one time,voltage row per point.
	RecordCSV     string `yaml:"RecordCSV"`
	RecordChannel int    `yaml:"RecordChannel"`
}

// Config holds the initialization parameters for the bench and, for the
// serve command, the HTTP listener.  It is to be populated by a
// json/unmarshal call.
type Config struct {
	// Addr is the address to listen at
	Addr string `yaml:"Addr"`

	Mock bool `yaml:"Mock"`

	Scope digilent.ScopeConfig `yaml:"Scope"`

	Supplies SupplySetup `yaml:"Supplies"`

	Sweep SweepSetup `yaml:"Sweep"`

	Output OutputSetup `yaml:"Output"`
}

// DefaultConfig returns the configuration run uses when no file overrides
// it: a mock bench sweeping the full negative rail in 50 mV steps.
func DefaultConfig() Config {
	d := sweep.DefaultConfig()
	return Config{
		Addr:  ":8000",
		Mock:  true,
		Scope: digilent.DefaultScopeConfig(),
		Supplies: SupplySetup{
			Master: true, PositiveOn: true, NegativeOn: true,
			PositiveV: 5, NegativeV: -5,
		},
		Sweep: SweepSetup{
			StartVoltage:    d.StartVoltage,
			Amplitude:       d.Amplitude,
			StepSize:        d.StepSize,
			SettleDelaySecs: d.SettleDelay.Seconds(),
			Cycles:          d.Cycles,
			DriveChannel:    d.DriveChannel,
			InputChannel:    d.InputChannel,
			OutputChannel:   d.OutputChannel,
		},
		Output: OutputSetup{
			CSV:           "sweep.csv",
			TimeSeriesPNG: "timeseries.png",
			TransferPNG:   "transfer.png",
			Print:         true,
			RecordChannel: 1,
		},
	}
}

// bench is an opened pod with its instruments.
type bench struct {
	sess     *digilent.Session
	scope    *digilent.Scope
	gen      *digilent.FuncGen
	supplies *digilent.Supplies
}

// OpenBench opens a session against the real runtime or the simulator,
// programs the rails, and configures the scope.  On any error the session
// is torn down before returning.
func OpenBench(c Config) (*bench, error) {
	var drv dwf.Driver
	if c.Mock {
		drv = sim.New()
	} else {
		var err error
		drv, err = dwf.New()
		if err != nil {
			return nil, err
		}
	}
	sess, err := digilent.Open(drv)
	if err != nil {
		return nil, err
	}
	b := &bench{
		sess:     sess,
		scope:    digilent.NewScope(sess),
		gen:      digilent.NewFuncGen(sess),
		supplies: digilent.NewSupplies(sess),
	}
	s := c.Supplies
	if err := b.supplies.Set(s.Master, s.PositiveOn, s.NegativeOn, s.PositiveV, s.NegativeV); err != nil {
		sess.Close()
		return nil, err
	}
	if err := b.scope.Configure(c.Scope); err != nil {
		sess.Close()
		return nil, err
	}
	return b, nil
}

// Close powers the bench down and releases the device.
func (b *bench) Close() error {
	return b.sess.Close()
}

// BuildMux hangs one submux per instrument off a goji root mux.  Submuxes
// receive the request with the stem already consumed, so the instrument
// route tables stay stem-agnostic.  The mux serves a special route,
// /endpoints, which returns the full route map as JSON.
func BuildMux(b *bench) *goji.Mux {
	root := goji.NewMux()
	root.Use(middleware.Logger)
	ctl := &sweep.Controller{Scope: b.scope, Source: b.gen}
	httpers := map[string]server.HTTPer{
		"/scope":    generichttp.NewHTTPScope(b.scope),
		"/funcgen":  generichttp.NewHTTPFuncGen(b.gen),
		"/supplies": generichttp.NewHTTPSupplies(b.supplies),
		"/sweep":    generichttp.NewHTTPSweeper(ctl),
	}
	supergraph := map[string][]string{}
	for stem, h := range httpers {
		sub := goji.SubMux()
		root.Handle(pat.New(stem+"/*"), sub)
		h.RT().Bind(sub)
		supergraph[stem] = h.RT().Endpoints()
	}
	root.HandleFunc(pat.Get("/endpoints"), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(supergraph)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return root
}

// RunSweep executes one sweep on the bench and writes the configured data
// products.
func RunSweep(c Config, b *bench) error {
	ctl := &sweep.Controller{Scope: b.scope, Source: b.gen}
	spinner, spinErr := yacspin.New(yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[14],
		Suffix:          " sweep",
		SuffixAutoColon: true,
		StopCharacter:   "✓",
		StopColors:      []string{"fgGreen"},
	})
	spinning := spinErr == nil && spinner.Start() == nil
	if spinning {
		ctl.Progress = func(step, total int) {
			spinner.Message(fmt.Sprintf("step %d of %d", step, total))
		}
	}
	res, err := ctl.Run(c.Sweep.Config())
	if spinning {
		if err != nil {
			spinner.StopFail()
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return err
	}
	rec := vtd.FromResult(res)
	if c.Output.CSV != "" {
		f, err := os.Create(c.Output.CSV)
		if err != nil {
			return err
		}
		err = rec.EncodeCSV(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	if c.Output.TimeSeriesPNG != "" && c.Output.TransferPNG != "" {
		if err := rec.SavePlots(c.Output.TimeSeriesPNG, c.Output.TransferPNG); err != nil {
			return err
		}
	}
	if c.Output.Print {
		if err := rec.Fprint(os.Stdout); err != nil {
			return err
		}
	}
	if c.Output.RecordCSV != "" {
		if err := dumpRecording(c, b); err != nil {
			return err
		}
	}
	log.Printf("%d samples (%d readings) in %v", len(res.Samples), res.Readings(), res.Total)
	return nil
}

// dumpRecording writes one buffered acquisition as time,voltage CSV rows.
func dumpRecording(c Config, b *bench) error {
	values, times, err := b.scope.Record(c.Output.RecordChannel)
	if err != nil {
		return err
	}
	f, err := os.Create(c.Output.RecordCSV)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	w.Write([]string{"time", "voltage"})
	for i := range values {
		w.Write([]string{
			strconv.FormatFloat(times[i], 'G', -1, 64),
			strconv.FormatFloat(values[i], 'G', -1, 64),
		})
	}
	w.Flush()
	err = w.Error()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
