package sweep_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightwell/godwf/sweep"
)

// bench is a test double for the scope and source: an ideal wire from the
// drive to channel 1 and a gain of -2 into channel 2, with every commanded
// drive voltage recorded.
type bench struct {
	drive    float64
	commands []float64

	failAt int // 1-based SetDC call index to fail on; 0 = never
	calls  int
}

var errBench = errors.New("bench fault")

func (b *bench) SetDC(channel int, volts float64) error {
	b.calls++
	if b.failAt != 0 && b.calls >= b.failAt {
		return errBench
	}
	b.drive = volts
	b.commands = append(b.commands, volts)
	return nil
}

func (b *bench) Sample(channel int) (float64, error) {
	if channel == 1 {
		return b.drive, nil
	}
	return -2 * b.drive, nil
}

func quickConfig() sweep.Config {
	cfg := sweep.DefaultConfig()
	cfg.SettleDelay = 0
	return cfg
}

func TestRunSampleCount(t *testing.T) {
	b := &bench{}
	c := sweep.Controller{Scope: b, Source: b}
	cfg := quickConfig() // start -5, amplitude 5, step 0.05, one cycle
	res, err := c.Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Steps())
	assert.Len(t, res.Samples, 200, "one sample per step, both phases")
	assert.Equal(t, 400, res.Readings(), "two channel readings per step")
}

func TestRunMultipleCycles(t *testing.T) {
	b := &bench{}
	c := sweep.Controller{Scope: b, Source: b}
	cfg := quickConfig()
	cfg.Cycles = 3
	res, err := c.Run(cfg)
	require.NoError(t, err)
	assert.Len(t, res.Samples, 3*2*cfg.Steps())
}

func TestElapsedMonotonic(t *testing.T) {
	b := &bench{}
	c := sweep.Controller{Scope: b, Source: b}
	res, err := c.Run(quickConfig())
	require.NoError(t, err)
	prev := -1.
	for i, s := range res.Samples {
		require.GreaterOrEqual(t, s.Elapsed, 0., "sample %d", i)
		require.GreaterOrEqual(t, s.Elapsed, prev, "sample %d out of order", i)
		prev = s.Elapsed
	}
	assert.GreaterOrEqual(t, res.Total, time.Duration(0))
}

func TestRoundTripSymmetry(t *testing.T) {
	b := &bench{}
	c := sweep.Controller{Scope: b, Source: b}
	cfg := quickConfig()
	res, err := c.Run(cfg)
	require.NoError(t, err)

	// the drive peaks at exactly start+amplitude and ends back at start
	peak := cfg.StartVoltage
	for _, v := range b.commands {
		if v > peak {
			peak = v
		}
	}
	assert.InDelta(t, cfg.StartVoltage+cfg.Amplitude, peak, 1e-9)
	assert.InDelta(t, cfg.StartVoltage, b.commands[len(b.commands)-1], 1e-9)

	// the recorded inputs stay within one step of the same bounds
	top := res.Samples[cfg.Steps()-1].Input
	assert.InDelta(t, cfg.StartVoltage+cfg.Amplitude, top, cfg.StepSize+1e-9)
	last := res.Samples[len(res.Samples)-1].Input
	assert.InDelta(t, cfg.StartVoltage, last, cfg.StepSize+1e-9)
}

func TestOutputFollowsTransferFunction(t *testing.T) {
	b := &bench{}
	c := sweep.Controller{Scope: b, Source: b}
	res, err := c.Run(quickConfig())
	require.NoError(t, err)
	for i, s := range res.Samples {
		require.InDelta(t, -2*s.Input, s.Output, 1e-9, "sample %d", i)
	}
}

func TestZeroStepsDegenerates(t *testing.T) {
	b := &bench{}
	c := sweep.Controller{Scope: b, Source: b}
	cfg := quickConfig()
	cfg.Amplitude = 0
	res, err := c.Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Steps())
	assert.Empty(t, res.Samples)
}

func TestValidateRejectsUnevenStep(t *testing.T) {
	cfg := quickConfig()
	cfg.Amplitude = 0.07
	cfg.StepSize = 0.05
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveStep(t *testing.T) {
	cfg := quickConfig()
	cfg.StepSize = 0
	assert.Error(t, cfg.Validate())
	cfg.StepSize = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateAcceptsCleanBenchNumbers(t *testing.T) {
	// 5/0.05 is not an exact integer in floats; the tolerance must accept it
	cfg := quickConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.Steps())
}

func TestDeviceErrorAbortsSweep(t *testing.T) {
	b := &bench{failAt: 5}
	c := sweep.Controller{Scope: b, Source: b}
	res, err := c.Run(quickConfig())
	require.ErrorIs(t, err, errBench)
	assert.Empty(t, res.Samples, "partial results are discarded")
}

func TestProgressCallback(t *testing.T) {
	b := &bench{}
	var last, total int
	c := sweep.Controller{Scope: b, Source: b, Progress: func(step, tot int) {
		last = step
		total = tot
	}}
	cfg := quickConfig()
	_, err := c.Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2*cfg.Steps(), last)
	assert.Equal(t, 2*cfg.Steps(), total)
}
