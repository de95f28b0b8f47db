package dwf

import "errors"

var (
	// ErrNoDevice is generated when no connected device can be opened.
	ErrNoDevice = errors.New("no WaveForms device found")

	// ErrBadHandle is generated when a handle does not refer to an open
	// device.
	ErrBadHandle = errors.New("handle does not refer to an open device")

	// ErrBadChannel is generated when a channel index does not exist on the
	// instrument.
	ErrBadChannel = errors.New("channel does not exist on the instrument")

	// ErrBadFunc is generated when a waveform function kind is outside the
	// closed set.
	ErrBadFunc = errors.New("waveform function kind is not valid")

	// ErrAcquisitionTimeout is generated when a buffered acquisition does
	// not reach the done state before the poll deadline.
	ErrAcquisitionTimeout = errors.New("acquisition did not complete before the timeout")
)
