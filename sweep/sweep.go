/*Package sweep drives a DC transfer-characteristic measurement: a
triangular ramp on one generator channel, two scope channels sampled at
every step.

The controller only sees two small interfaces, a Sampler and a DCSource,
so it runs identically against the hardware instruments in package
digilent, the simulator, or test doubles.
*/
package sweep

import (
	"fmt"
	"math"
	"time"
)

// Sampler reads a voltage from a one-based input channel, blocking until
// the value is available.
type Sampler interface {
	Sample(channel int) (float64, error)
}

// DCSource reprograms a one-based output channel to a constant voltage.
type DCSource interface {
	SetDC(channel int, volts float64) error
}

// Config describes one sweep.
type Config struct {
	// StartVoltage is where the ramp begins and ends, in volts.
	StartVoltage float64 `yaml:"StartVoltage"`

	// Amplitude is the height of the ramp in volts; the drive rises to
	// StartVoltage+Amplitude then falls back.
	Amplitude float64 `yaml:"Amplitude"`

	// StepSize is the per-step voltage increment in volts.  Must divide
	// Amplitude evenly.
	StepSize float64 `yaml:"StepSize"`

	// SettleDelay is the wait after each step before the next measurement.
	SettleDelay time.Duration `yaml:"SettleDelay"`

	// Cycles is the number of full up-down round trips.
	Cycles int `yaml:"Cycles"`

	// DriveChannel is the generator channel carrying the ramp.
	DriveChannel int `yaml:"DriveChannel"`

	// InputChannel is the scope channel watching the drive.
	InputChannel int `yaml:"InputChannel"`

	// OutputChannel is the scope channel watching the circuit under test.
	OutputChannel int `yaml:"OutputChannel"`
}

// DefaultConfig is the bench setup this tooling grew up on: a -5 V to 0 V
// ramp in 50 mV steps, one cycle, generator channel 1 driving, scope
// channel 2 on the output of the circuit.
func DefaultConfig() Config {
	return Config{
		StartVoltage:  -5,
		Amplitude:     5,
		StepSize:      0.05,
		SettleDelay:   time.Microsecond,
		Cycles:        1,
		DriveChannel:  1,
		InputChannel:  1,
		OutputChannel: 2,
	}
}

// stepTolerance is the relative slack allowed when checking that StepSize
// divides Amplitude evenly; float division of clean bench numbers like
// 5/0.05 does not land exactly on an integer.
const stepTolerance = 1e-6

// Validate checks the config invariants.
func (c Config) Validate() error {
	if c.StepSize <= 0 {
		return fmt.Errorf("step size must be positive, got %G", c.StepSize)
	}
	if c.Amplitude < 0 {
		return fmt.Errorf("amplitude must be non-negative, got %G", c.Amplitude)
	}
	if c.Cycles < 0 {
		return fmt.Errorf("cycles must be non-negative, got %d", c.Cycles)
	}
	steps := c.Amplitude / c.StepSize
	if math.Abs(steps-math.Round(steps)) > stepTolerance*math.Max(1, steps) {
		return fmt.Errorf("amplitude %G is not an integer multiple of step size %G", c.Amplitude, c.StepSize)
	}
	if c.DriveChannel < 1 || c.InputChannel < 1 || c.OutputChannel < 1 {
		return fmt.Errorf("channels are one-based; got drive %d, input %d, output %d",
			c.DriveChannel, c.InputChannel, c.OutputChannel)
	}
	return nil
}

// Steps returns the per-phase step count, Amplitude/StepSize.  Zero when
// the amplitude is smaller than one step; such a sweep degenerates to no
// measurements rather than failing.
func (c Config) Steps() int {
	return int(math.Round(c.Amplitude / c.StepSize))
}

// Sample is one measurement: both channels read at one point of the ramp.
// Immutable once recorded; the sequence is append-only and chronological.
type Sample struct {
	// Elapsed is the time of the measurement in seconds from the start of
	// the sweep.
	Elapsed float64

	// Input is the voltage on the channel watching the drive.
	Input float64

	// Output is the voltage on the channel watching the circuit.
	Output float64
}

// Result is the product of one sweep.
type Result struct {
	Samples []Sample
	Total   time.Duration
}

// Readings is the number of individual channel readings taken, two per
// recorded sample.
func (r Result) Readings() int {
	return 2 * len(r.Samples)
}

// Controller executes sweeps.  It performs blocking device calls only;
// there is no concurrency and no retry.  The first device error aborts the
// sweep.
type Controller struct {
	Scope  Sampler
	Source DCSource

	// Progress, when non-nil, is called after every step with the step
	// index and total step count.
	Progress func(step, total int)
}

// Run executes the sweep.  Per cycle: a rising phase of Steps() iterations
// then a falling phase of the same length.  Each iteration samples the
// input channel, samples the output channel, records one Sample stamped
// with the elapsed time, steps the drive by one StepSize in the phase
// direction, reprograms the source, and waits the settle delay.  The drive
// therefore peaks at exactly StartVoltage+Amplitude and returns to
// StartVoltage at the end of every cycle.
//
// Errors are fatal: the partial sample sequence is discarded and the error
// returned.
func (c *Controller) Run(cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	steps := cfg.Steps()
	total := cfg.Cycles * 2 * steps
	drive := cfg.StartVoltage
	if err := c.Source.SetDC(cfg.DriveChannel, drive); err != nil {
		return Result{}, fmt.Errorf("priming drive at %G V: %w", drive, err)
	}
	res := Result{Samples: make([]Sample, 0, total)}
	start := time.Now()
	step := 0
	measure := func(direction float64) error {
		in, err := c.Scope.Sample(cfg.InputChannel)
		if err != nil {
			return fmt.Errorf("sampling input channel %d: %w", cfg.InputChannel, err)
		}
		out, err := c.Scope.Sample(cfg.OutputChannel)
		if err != nil {
			return fmt.Errorf("sampling output channel %d: %w", cfg.OutputChannel, err)
		}
		res.Samples = append(res.Samples, Sample{
			Elapsed: time.Since(start).Seconds(),
			Input:   in,
			Output:  out,
		})
		drive += direction * cfg.StepSize
		if err := c.Source.SetDC(cfg.DriveChannel, drive); err != nil {
			return fmt.Errorf("stepping drive to %G V: %w", drive, err)
		}
		step++
		if c.Progress != nil {
			c.Progress(step, total)
		}
		time.Sleep(cfg.SettleDelay)
		return nil
	}
	for cycle := 0; cycle < cfg.Cycles; cycle++ {
		for i := 0; i < steps; i++ {
			if err := measure(+1); err != nil {
				return Result{}, err
			}
		}
		for i := 0; i < steps; i++ {
			if err := measure(-1); err != nil {
				return Result{}, err
			}
		}
	}
	res.Total = time.Since(start)
	return res, nil
}
