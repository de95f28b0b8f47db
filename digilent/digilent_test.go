package digilent

import (
	"errors"
	"testing"
	"time"

	"github.com/lightwell/godwf/dwf"
	"github.com/lightwell/godwf/dwf/sim"
)

func openSim(t *testing.T) (*sim.Sim, *Session) {
	t.Helper()
	drv := sim.New()
	sess, err := Open(drv)
	if err != nil {
		t.Fatalf("could not open simulated pod: %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return drv, sess
}

func TestCloseIsIdempotent(t *testing.T) {
	_, sess := openSim(t)
	if err := sess.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestUseAfterClose(t *testing.T) {
	_, sess := openSim(t)
	sess.Close()
	scope := NewScope(sess)
	if _, err := scope.Sample(1); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestScopeConfigureValidation(t *testing.T) {
	_, sess := openSim(t)
	scope := NewScope(sess)
	cfg := DefaultScopeConfig()
	cfg.SampleFrequency = 0
	if err := scope.Configure(cfg); !errors.Is(err, ErrBadConfig) {
		t.Errorf("zero sample frequency: expected ErrBadConfig, got %v", err)
	}
	cfg = DefaultScopeConfig()
	cfg.BufferSize = -1
	if err := scope.Configure(cfg); !errors.Is(err, ErrBadConfig) {
		t.Errorf("negative buffer: expected ErrBadConfig, got %v", err)
	}
}

func TestScopeSampleTracksGenerator(t *testing.T) {
	_, sess := openSim(t)
	scope := NewScope(sess)
	if err := scope.Configure(DefaultScopeConfig()); err != nil {
		t.Fatal(err)
	}
	fg := NewFuncGen(sess)
	if err := fg.SetDC(1, 1.5); err != nil {
		t.Fatal(err)
	}
	v, err := scope.Sample(1)
	if err != nil {
		t.Fatal(err)
	}
	if v != 1.5 {
		t.Errorf("channel 1 should read the drive voltage, got %f", v)
	}
}

func TestScopeSampleAmplifierClipsAtRails(t *testing.T) {
	_, sess := openSim(t)
	scope := NewScope(sess)
	if err := scope.Configure(DefaultScopeConfig()); err != nil {
		t.Fatal(err)
	}
	sup := NewSupplies(sess)
	if err := sup.Set(true, true, true, 5, -5); err != nil {
		t.Fatal(err)
	}
	fg := NewFuncGen(sess)
	// sim amplifier gain is -2; 4 V in wants -8 V out, rails stop it at -5
	if err := fg.SetDC(1, 4); err != nil {
		t.Fatal(err)
	}
	v, err := scope.Sample(2)
	if err != nil {
		t.Fatal(err)
	}
	if v != -5 {
		t.Errorf("expected amplifier output clipped to -5, got %f", v)
	}
}

func TestRecordTimeVector(t *testing.T) {
	_, sess := openSim(t)
	scope := NewScope(sess)
	cfg := DefaultScopeConfig()
	cfg.BufferSize = 64
	cfg.SampleFrequency = 1e6
	if err := scope.Configure(cfg); err != nil {
		t.Fatal(err)
	}
	volts, times, err := scope.Record(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(volts) != 64 || len(times) != 64 {
		t.Fatalf("expected 64 points, got %d voltages and %d times", len(volts), len(times))
	}
	dt := times[1] - times[0]
	if dt != 1e-6 {
		t.Errorf("expected 1us sample spacing, got %G", dt)
	}
	if times[0] != 0 {
		t.Errorf("time vector should start at zero, got %G", times[0])
	}
}

func TestRecordTimeout(t *testing.T) {
	drv, sess := openSim(t)
	drv.PollsUntilDone = -1 // never completes
	scope := NewScope(sess)
	scope.PollTimeout = 10 * time.Millisecond
	scope.PollInterval = time.Millisecond
	if err := scope.Configure(DefaultScopeConfig()); err != nil {
		t.Fatal(err)
	}
	_, _, err := scope.Record(1)
	if !errors.Is(err, dwf.ErrAcquisitionTimeout) {
		t.Errorf("expected ErrAcquisitionTimeout, got %v", err)
	}
}

func TestSupplyClamping(t *testing.T) {
	drv, sess := openSim(t)
	sup := NewSupplies(sess)
	if err := sup.Set(true, true, true, 10, -10); err != nil {
		t.Fatal(err)
	}
	pos, neg, err := drv.RailVoltages(sess.Handle())
	if err != nil {
		t.Fatal(err)
	}
	if pos != 5 {
		t.Errorf("positive rail should clamp to exactly 5, got %f", pos)
	}
	if neg != -5 {
		t.Errorf("negative rail should clamp to exactly -5, got %f", neg)
	}
}

func TestCustomUploadVerbatim(t *testing.T) {
	drv, sess := openSim(t)
	fg := NewFuncGen(sess)
	data := []float64{-1, -0.5, 0, 0.5, 1, 0.5, 0, -0.5}
	w := DefaultWaveform()
	w.Function = dwf.FuncCustom
	w.Data = data
	if err := fg.Configure(1, w); err != nil {
		t.Fatal(err)
	}
	got, err := drv.CustomData(sess.Handle(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(data) {
		t.Fatalf("uploaded %d samples, device saw %d", len(data), len(got))
	}
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("sample %d: sent %f, device saw %f", i, data[i], got[i])
		}
	}
	if _, ok := fg.UploadChecksum(1); !ok {
		t.Error("expected a checksum to be recorded for the upload")
	}
}

func TestCustomUploadRequiresData(t *testing.T) {
	_, sess := openSim(t)
	fg := NewFuncGen(sess)
	w := DefaultWaveform()
	w.Function = dwf.FuncCustom
	if err := fg.Configure(1, w); !errors.Is(err, ErrBadConfig) {
		t.Errorf("expected ErrBadConfig for empty custom data, got %v", err)
	}
}

func TestFuncGenResetAll(t *testing.T) {
	_, sess := openSim(t)
	scope := NewScope(sess)
	if err := scope.Configure(DefaultScopeConfig()); err != nil {
		t.Fatal(err)
	}
	fg := NewFuncGen(sess)
	if err := fg.SetDC(1, 2); err != nil {
		t.Fatal(err)
	}
	// channel 0 resets every channel
	if err := fg.Reset(0); err != nil {
		t.Fatal(err)
	}
	v, err := scope.Sample(1)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0 {
		t.Errorf("expected drive to read 0 after reset, got %f", v)
	}
}
