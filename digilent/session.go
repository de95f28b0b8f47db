package digilent

import (
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/gousb"

	"github.com/lightwell/godwf/dwf"
)

// USB vendor IDs a pod can enumerate under.  The Analog Discovery 2 sits
// behind an FTDI bridge, newer pods use Digilent's own ID.
const (
	digilentVID = 0x1443
	ftdiVID     = 0x0403
)

// Session owns the handle to one open pod.  It is handed to the instrument
// types by injection; nothing in this package holds process-wide state.
type Session struct {
	drv  dwf.Driver
	h    dwf.Handle
	open bool
}

// Open connects to the first available pod.  The runtime enumerates slowly
// right after a device is plugged in, so the open is retried under an
// exponential backoff before giving up.  When no device ever appears, the
// USB bus is probed so the error can say whether the pod is missing or
// merely busy.
func Open(drv dwf.Driver) (*Session, error) {
	var h dwf.Handle
	op := func() error {
		var err error
		h, err = drv.DeviceOpen(dwf.FirstDevice)
		return err
	}
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         500 * time.Millisecond,
		MaxElapsedTime:      2 * time.Second,
		Clock:               backoff.SystemClock})
	if err != nil {
		if errors.Is(err, dwf.ErrNoDevice) && !busHasPod() {
			return nil, fmt.Errorf("no pod attached to the USB bus: %w", dwf.ErrNoDevice)
		}
		return nil, fmt.Errorf("opening device: %w", err)
	}
	return &Session{drv: drv, h: h, open: true}, nil
}

// busHasPod reports whether anything that could be a pod is attached.
// Diagnostic only; the runtime is the authority on what it can open.
func busHasPod() bool {
	ctx := gousb.NewContext()
	defer ctx.Close()
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(digilentVID) || desc.Vendor == gousb.ID(ftdiVID)
	})
	for _, d := range devs {
		d.Close()
	}
	if err != nil {
		return false
	}
	return len(devs) > 0
}

// Close resets the instruments so no voltage is left on the outputs, then
// releases the handle.  Safe to call more than once.
func (s *Session) Close() error {
	if !s.open {
		return nil
	}
	s.open = false
	// best effort teardown before the handle goes away
	s.drv.AnalogOutReset(s.h, -1)
	s.drv.AnalogInReset(s.h)
	s.drv.AnalogIOEnableSet(s.h, false)
	return s.drv.DeviceClose(s.h)
}

// Handle returns the raw device handle.
func (s *Session) Handle() dwf.Handle {
	return s.h
}

func (s *Session) check() error {
	if !s.open {
		return ErrClosed
	}
	return nil
}
