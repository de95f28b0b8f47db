/*Package digilent provides control of Digilent WaveForms pods (Analog
Discovery 2 and friends) through the vendor runtime.

The package is split along the instruments inside the pod: Session owns the
device handle, Scope is the analog-in instrument, FuncGen is the analog-out
instrument, and Supplies is the programmable power supply on the analog I/O
instrument.  All of them borrow the Session rather than owning it, so one
open pod can serve several instruments for the lifetime of a measurement.

Channels in this package are one based, matching the silkscreen on the
hardware; the driver surface below is zero based.
*/
package digilent

import "errors"

var (
	// ErrBadConfig is generated when an instrument configuration fails
	// validation before being sent to the device.
	ErrBadConfig = errors.New("configuration is not valid for the instrument")

	// ErrClosed is generated when an instrument is used after its session
	// was closed.
	ErrClosed = errors.New("session is closed")
)
