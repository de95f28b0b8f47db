/*Package dwf provides the call surface of the WaveForms runtime ("dwf"),
the native driver for Digilent test and measurement pods (Analog Discovery,
Analog Discovery 2, ADP3x50, ...).

The runtime is a closed shared library; every entry point is synchronous and
call-and-return.  This package expresses the subset used for analog input
(oscilloscope), analog output (waveform generator) and analog I/O (power
supply) control as the Driver interface.  The real binding lives in
native.go behind the dwf build tag, since it needs the vendor SDK headers to
compile.  Package sim provides a pure Go implementation for development and
tests.

Channels at this level are zero based, direct from the SDK.  The instrument
layer (package digilent) exposes one based channels to match the labels on
the hardware.
*/
package dwf

// FirstDevice is the device index that asks the runtime for the first
// available pod.
const FirstDevice = -1

// Handle is an opaque identifier for one open device, owned by the runtime
// for the lifetime of the open.  It is only meaningful to the Driver that
// issued it.
type Handle int

// State is the acquisition state machine position reported by the analog-in
// instrument.
type State int

// Acquisition states, in the order the instrument moves through them.
const (
	StateReady   State = 0
	StateArmed   State = 1
	StateDone    State = 2
	StateRunning State = 3
	StateConfig  State = 4
	StatePrefill State = 5
	StateNotDone State = 6
	StateWait    State = 7
)

// Node addresses one synthesis node of a generator channel.  Only the
// carrier is used here; the modulation nodes exist in hardware but have no
// role in DC sweeps.
type Node int

// Generator nodes.
const (
	NodeCarrier Node = 0
	NodeFM      Node = 1
	NodeAM      Node = 2
)

// Filter selects the decimation behavior of the analog-in front end.
type Filter int

// Analog-in acquisition filters.
const (
	FilterDecimate Filter = 0
	FilterAverage  Filter = 1
	FilterMinMax   Filter = 2
)

// Func enumerates the waveform kinds a generator channel can synthesize.
// It is a closed set; Validate rejects anything else before it reaches the
// device.
type Func int

// Waveform function kinds.
const (
	FuncDC Func = iota
	FuncSine
	FuncSquare
	FuncTriangle
	FuncRampUp
	FuncRampDown
	FuncNoise
	FuncPulse
	FuncTrapezium
	FuncSinePower
	FuncCustom
)

// ValidateFunc ensures that a function kind name is valid.
// s is a member of {dc, sine, square, triangle, ramp-up, ramp-down, noise,
// pulse, trapezium, sine-power, custom}
func ValidateFunc(s string) (Func, error) {
	switch s {
	case "dc":
		return FuncDC, nil
	case "sine":
		return FuncSine, nil
	case "square":
		return FuncSquare, nil
	case "triangle":
		return FuncTriangle, nil
	case "ramp-up":
		return FuncRampUp, nil
	case "ramp-down":
		return FuncRampDown, nil
	case "noise":
		return FuncNoise, nil
	case "pulse":
		return FuncPulse, nil
	case "trapezium":
		return FuncTrapezium, nil
	case "sine-power":
		return FuncSinePower, nil
	case "custom":
		return FuncCustom, nil
	default:
		return -1, ErrBadFunc
	}
}

// FormatFunc converts a function kind to its string representation,
// the inverse of ValidateFunc
func FormatFunc(f Func) string {
	switch f {
	case FuncDC:
		return "dc"
	case FuncSine:
		return "sine"
	case FuncSquare:
		return "square"
	case FuncTriangle:
		return "triangle"
	case FuncRampUp:
		return "ramp-up"
	case FuncRampDown:
		return "ramp-down"
	case FuncNoise:
		return "noise"
	case FuncPulse:
		return "pulse"
	case FuncTrapezium:
		return "trapezium"
	case FuncSinePower:
		return "sine-power"
	case FuncCustom:
		return "custom"
	default:
		return ""
	}
}

// Driver is the set of runtime entry points used by this repository.  Each
// method is a thin shim over one FDwf* function and blocks until the
// runtime returns.
type Driver interface {
	// DeviceOpen opens the device at index, or the first available device
	// when index is FirstDevice.
	DeviceOpen(index int) (Handle, error)

	// DeviceClose releases the handle.  The runtime resets the hardware.
	DeviceClose(h Handle) error

	// AnalogInChannelEnableSet enables or disables an input channel.
	// channel -1 addresses all channels.
	AnalogInChannelEnableSet(h Handle, channel int, enable bool) error

	// AnalogInChannelOffsetSet sets the vertical offset of an input channel
	// in volts.
	AnalogInChannelOffsetSet(h Handle, channel int, offset float64) error

	// AnalogInChannelRangeSet sets the peak to peak range of an input
	// channel in volts.
	AnalogInChannelRangeSet(h Handle, channel int, rng float64) error

	// AnalogInBufferSizeSet sets the number of points in a buffered
	// acquisition.
	AnalogInBufferSizeSet(h Handle, size int) error

	// AnalogInFrequencySet sets the sample frequency in Hz.
	AnalogInFrequencySet(h Handle, hz float64) error

	// AnalogInChannelFilterSet sets the acquisition filter.  channel -1
	// addresses all channels.
	AnalogInChannelFilterSet(h Handle, channel int, f Filter) error

	// AnalogInConfigure applies the staged input configuration.  start
	// begins an acquisition.
	AnalogInConfigure(h Handle, reconfigure, start bool) error

	// AnalogInStatus polls the instrument.  readData moves captured samples
	// into the runtime's buffer for retrieval.
	AnalogInStatus(h Handle, readData bool) (State, error)

	// AnalogInStatusSample returns the most recent conversion on a channel
	// in volts.
	AnalogInStatusSample(h Handle, channel int) (float64, error)

	// AnalogInStatusData copies up to len(buf) captured samples into buf.
	AnalogInStatusData(h Handle, channel int, buf []float64) error

	// AnalogInReset returns the input instrument to its power-on state.
	AnalogInReset(h Handle) error

	// AnalogOutNodeEnableSet enables a synthesis node of an output channel.
	AnalogOutNodeEnableSet(h Handle, channel int, node Node, enable bool) error

	// AnalogOutNodeFunctionSet selects the waveform kind of a node.
	AnalogOutNodeFunctionSet(h Handle, channel int, node Node, f Func) error

	// AnalogOutNodeDataSet uploads custom waveform samples, normalized
	// voltages, played verbatim when the node function is FuncCustom.
	AnalogOutNodeDataSet(h Handle, channel int, node Node, data []float64) error

	// AnalogOutNodeFrequencySet sets the node frequency in Hz.
	AnalogOutNodeFrequencySet(h Handle, channel int, node Node, hz float64) error

	// AnalogOutNodeAmplitudeSet sets the node amplitude in volts.
	AnalogOutNodeAmplitudeSet(h Handle, channel int, node Node, volts float64) error

	// AnalogOutNodeOffsetSet sets the node offset in volts.
	AnalogOutNodeOffsetSet(h Handle, channel int, node Node, volts float64) error

	// AnalogOutNodeSymmetrySet sets the node symmetry in percent.
	AnalogOutNodeSymmetrySet(h Handle, channel int, node Node, pct float64) error

	// AnalogOutRunSet sets the run duration of a channel in seconds,
	// 0 = run forever.
	AnalogOutRunSet(h Handle, channel int, seconds float64) error

	// AnalogOutWaitSet sets the wait time before output starts, in seconds.
	AnalogOutWaitSet(h Handle, channel int, seconds float64) error

	// AnalogOutRepeatSet sets the repeat count, 0 = repeat forever.
	AnalogOutRepeatSet(h Handle, channel int, count int) error

	// AnalogOutConfigure applies the staged output configuration.  start
	// begins synthesis.
	AnalogOutConfigure(h Handle, channel int, start bool) error

	// AnalogOutReset returns an output channel to its power-on state.
	// channel -1 addresses all channels.
	AnalogOutReset(h Handle, channel int) error

	// AnalogIOChannelNodeSet writes a value to one node of an analog I/O
	// channel (supply rails, meters).
	AnalogIOChannelNodeSet(h Handle, channel, node int, value float64) error

	// AnalogIOEnableSet is the master switch for the analog I/O instrument.
	AnalogIOEnableSet(h Handle, enable bool) error
}
