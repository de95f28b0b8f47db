package digilent

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/lightwell/godwf/dwf"
)

// ScopeConfig holds the analog-in settings applied by Scope.Configure.
type ScopeConfig struct {
	// SampleFrequency is the acquisition rate in Hz.
	SampleFrequency float64 `yaml:"SampleFrequency"`

	// BufferSize is the number of points in a buffered recording.
	BufferSize int `yaml:"BufferSize"`

	// Offset is the vertical offset applied to all channels in volts.
	Offset float64 `yaml:"Offset"`

	// Range is the peak to peak input range in volts.
	Range float64 `yaml:"Range"`
}

// DefaultScopeConfig returns the settings a pod boots with for sweep work:
// 20 MHz sampling, an 8192 point buffer, no offset, the widest range.
func DefaultScopeConfig() ScopeConfig {
	return ScopeConfig{
		SampleFrequency: 20e6,
		BufferSize:      8192,
		Offset:          0,
		Range:           50,
	}
}

// Scope is the analog-in instrument of a pod.
type Scope struct {
	sess *Session
	cfg  ScopeConfig

	// PollTimeout bounds how long Record waits for the instrument to
	// report a completed acquisition.  Zero means the default of 10s.
	PollTimeout time.Duration

	// PollInterval paces the status polls during Record.  Zero means the
	// default of 1ms.
	PollInterval time.Duration
}

// NewScope returns a Scope bound to the session.
func NewScope(sess *Session) *Scope {
	return &Scope{sess: sess}
}

// Configure applies cfg to the instrument: all channels enabled, common
// offset and range, buffer size, sample frequency, decimating filter.
// The config is retained for Record's time vector.
func (s *Scope) Configure(cfg ScopeConfig) error {
	if err := s.sess.check(); err != nil {
		return err
	}
	if cfg.SampleFrequency <= 0 {
		return fmt.Errorf("sample frequency %G Hz: %w", cfg.SampleFrequency, ErrBadConfig)
	}
	if cfg.BufferSize <= 0 {
		return fmt.Errorf("buffer size %d: %w", cfg.BufferSize, ErrBadConfig)
	}
	drv, h := s.sess.drv, s.sess.h
	if err := drv.AnalogInChannelEnableSet(h, -1, true); err != nil {
		return err
	}
	if err := drv.AnalogInChannelOffsetSet(h, -1, cfg.Offset); err != nil {
		return err
	}
	if err := drv.AnalogInChannelRangeSet(h, -1, cfg.Range); err != nil {
		return err
	}
	if err := drv.AnalogInBufferSizeSet(h, cfg.BufferSize); err != nil {
		return err
	}
	if err := drv.AnalogInFrequencySet(h, cfg.SampleFrequency); err != nil {
		return err
	}
	if err := drv.AnalogInChannelFilterSet(h, -1, dwf.FilterDecimate); err != nil {
		return err
	}
	s.cfg = cfg
	return nil
}

// Config returns the settings applied by the last Configure call.
func (s *Scope) Config() ScopeConfig {
	return s.cfg
}

// Sample triggers a single acquisition cycle and returns the voltage on
// the given channel.  Blocks until the runtime returns.
func (s *Scope) Sample(channel int) (float64, error) {
	if err := s.sess.check(); err != nil {
		return 0, err
	}
	drv, h := s.sess.drv, s.sess.h
	if err := drv.AnalogInConfigure(h, false, false); err != nil {
		return 0, err
	}
	if _, err := drv.AnalogInStatus(h, false); err != nil {
		return 0, err
	}
	return drv.AnalogInStatusSample(h, channel-1)
}

// Record runs one buffered acquisition on the given channel and returns the
// captured voltages along with the time of each point relative to the start
// of the buffer.  The instrument is polled under a rate limit until it
// reports done; if it never does within PollTimeout, the error is
// dwf.ErrAcquisitionTimeout.
func (s *Scope) Record(channel int) ([]float64, []float64, error) {
	if err := s.sess.check(); err != nil {
		return nil, nil, err
	}
	drv, h := s.sess.drv, s.sess.h
	if err := drv.AnalogInConfigure(h, false, true); err != nil {
		return nil, nil, err
	}
	timeout := s.PollTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	interval := s.PollInterval
	if interval == 0 {
		interval = time.Millisecond
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	deadline := time.Now().Add(timeout)
	for {
		st, err := drv.AnalogInStatus(h, true)
		if err != nil {
			return nil, nil, err
		}
		if st == dwf.StateDone {
			break
		}
		if time.Now().After(deadline) {
			return nil, nil, fmt.Errorf("after %v: %w", timeout, dwf.ErrAcquisitionTimeout)
		}
		limiter.Wait(context.Background())
	}
	buf := make([]float64, s.cfg.BufferSize)
	if err := drv.AnalogInStatusData(h, channel-1, buf); err != nil {
		return nil, nil, err
	}
	times := make([]float64, len(buf))
	for i := range times {
		times[i] = float64(i) / s.cfg.SampleFrequency
	}
	return buf, times, nil
}

// Reset returns the analog-in instrument to its power-on state.
func (s *Scope) Reset() error {
	if err := s.sess.check(); err != nil {
		return err
	}
	return s.sess.drv.AnalogInReset(s.sess.h)
}
