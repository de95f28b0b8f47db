//go:build dwf

package dwf

/*
#cgo LDFLAGS: -ldwf
#include <stdlib.h>
#include <dwf.h>
*/
import "C"
import (
	"fmt"
	"strings"
)

// funcCodes maps the closed Func set onto the runtime's FUNC constants.
// custom sits far from the analytic kinds in the SDK numbering.
var funcCodes = map[Func]C.FUNC{
	FuncDC:        C.funcDC,
	FuncSine:      C.funcSine,
	FuncSquare:    C.funcSquare,
	FuncTriangle:  C.funcTriangle,
	FuncRampUp:    C.funcRampUp,
	FuncRampDown:  C.funcRampDown,
	FuncNoise:     C.funcNoise,
	FuncPulse:     C.funcPulse,
	FuncTrapezium: C.funcTrapezium,
	FuncSinePower: C.funcSinePower,
	FuncCustom:    C.funcCustom,
}

// Native is the cgo-backed Driver speaking to the vendor runtime.  It holds
// no state of its own; the runtime owns everything behind the handle.
type Native struct{}

var _ Driver = Native{}

// enrich converts the runtime's call status into an error decorated with
// the procedure name.  The runtime returns 1 on success.
func enrich(ok C.int, procedure string) error {
	if ok != 0 {
		return nil
	}
	var buf [512]C.char
	C.FDwfGetLastErrorMsg(&buf[0])
	msg := strings.TrimSpace(C.GoString(&buf[0]))
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Errorf("%s: %s", procedure, msg)
}

// DeviceOpen opens the device at index, -1 for the first available.
func (Native) DeviceOpen(index int) (Handle, error) {
	var h C.HDWF
	err := enrich(C.FDwfDeviceOpen(C.int(index), &h), "FDwfDeviceOpen")
	if err != nil {
		return 0, err
	}
	if h == C.hdwfNone {
		return 0, ErrNoDevice
	}
	return Handle(h), nil
}

// DeviceClose releases the handle.
func (Native) DeviceClose(h Handle) error {
	return enrich(C.FDwfDeviceClose(C.HDWF(h)), "FDwfDeviceClose")
}

func cbool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

// AnalogInChannelEnableSet enables or disables an input channel.
func (Native) AnalogInChannelEnableSet(h Handle, channel int, enable bool) error {
	return enrich(C.FDwfAnalogInChannelEnableSet(C.HDWF(h), C.int(channel), cbool(enable)),
		"FDwfAnalogInChannelEnableSet")
}

// AnalogInChannelOffsetSet sets the vertical offset of an input channel.
func (Native) AnalogInChannelOffsetSet(h Handle, channel int, offset float64) error {
	return enrich(C.FDwfAnalogInChannelOffsetSet(C.HDWF(h), C.int(channel), C.double(offset)),
		"FDwfAnalogInChannelOffsetSet")
}

// AnalogInChannelRangeSet sets the range of an input channel.
func (Native) AnalogInChannelRangeSet(h Handle, channel int, rng float64) error {
	return enrich(C.FDwfAnalogInChannelRangeSet(C.HDWF(h), C.int(channel), C.double(rng)),
		"FDwfAnalogInChannelRangeSet")
}

// AnalogInBufferSizeSet sets the buffered acquisition length.
func (Native) AnalogInBufferSizeSet(h Handle, size int) error {
	return enrich(C.FDwfAnalogInBufferSizeSet(C.HDWF(h), C.int(size)),
		"FDwfAnalogInBufferSizeSet")
}

// AnalogInFrequencySet sets the sample frequency.
func (Native) AnalogInFrequencySet(h Handle, hz float64) error {
	return enrich(C.FDwfAnalogInFrequencySet(C.HDWF(h), C.double(hz)),
		"FDwfAnalogInFrequencySet")
}

// AnalogInChannelFilterSet sets the acquisition filter.
func (Native) AnalogInChannelFilterSet(h Handle, channel int, f Filter) error {
	return enrich(C.FDwfAnalogInChannelFilterSet(C.HDWF(h), C.int(channel), C.FILTER(f)),
		"FDwfAnalogInChannelFilterSet")
}

// AnalogInConfigure applies the staged configuration and optionally starts.
func (Native) AnalogInConfigure(h Handle, reconfigure, start bool) error {
	return enrich(C.FDwfAnalogInConfigure(C.HDWF(h), cbool(reconfigure), cbool(start)),
		"FDwfAnalogInConfigure")
}

// AnalogInStatus polls the instrument state.
func (Native) AnalogInStatus(h Handle, readData bool) (State, error) {
	var st C.DwfState
	err := enrich(C.FDwfAnalogInStatus(C.HDWF(h), cbool(readData), &st),
		"FDwfAnalogInStatus")
	return State(st), err
}

// AnalogInStatusSample returns the latest conversion on a channel in volts.
func (Native) AnalogInStatusSample(h Handle, channel int) (float64, error) {
	var v C.double
	err := enrich(C.FDwfAnalogInStatusSample(C.HDWF(h), C.int(channel), &v),
		"FDwfAnalogInStatusSample")
	return float64(v), err
}

// AnalogInStatusData copies captured samples into buf.
func (Native) AnalogInStatusData(h Handle, channel int, buf []float64) error {
	if len(buf) == 0 {
		return nil
	}
	return enrich(C.FDwfAnalogInStatusData(C.HDWF(h), C.int(channel),
		(*C.double)(&buf[0]), C.int(len(buf))), "FDwfAnalogInStatusData")
}

// AnalogInReset resets the input instrument.
func (Native) AnalogInReset(h Handle) error {
	return enrich(C.FDwfAnalogInReset(C.HDWF(h)), "FDwfAnalogInReset")
}

// AnalogOutNodeEnableSet enables a synthesis node.
func (Native) AnalogOutNodeEnableSet(h Handle, channel int, node Node, enable bool) error {
	return enrich(C.FDwfAnalogOutNodeEnableSet(C.HDWF(h), C.int(channel),
		C.AnalogOutNode(node), cbool(enable)), "FDwfAnalogOutNodeEnableSet")
}

// AnalogOutNodeFunctionSet selects the waveform kind of a node.
func (Native) AnalogOutNodeFunctionSet(h Handle, channel int, node Node, f Func) error {
	code, ok := funcCodes[f]
	if !ok {
		return ErrBadFunc
	}
	return enrich(C.FDwfAnalogOutNodeFunctionSet(C.HDWF(h), C.int(channel),
		C.AnalogOutNode(node), code), "FDwfAnalogOutNodeFunctionSet")
}

// AnalogOutNodeDataSet uploads custom waveform samples.
func (Native) AnalogOutNodeDataSet(h Handle, channel int, node Node, data []float64) error {
	if len(data) == 0 {
		return nil
	}
	return enrich(C.FDwfAnalogOutNodeDataSet(C.HDWF(h), C.int(channel),
		C.AnalogOutNode(node), (*C.double)(&data[0]), C.int(len(data))),
		"FDwfAnalogOutNodeDataSet")
}

// AnalogOutNodeFrequencySet sets the node frequency.
func (Native) AnalogOutNodeFrequencySet(h Handle, channel int, node Node, hz float64) error {
	return enrich(C.FDwfAnalogOutNodeFrequencySet(C.HDWF(h), C.int(channel),
		C.AnalogOutNode(node), C.double(hz)), "FDwfAnalogOutNodeFrequencySet")
}

// AnalogOutNodeAmplitudeSet sets the node amplitude.
func (Native) AnalogOutNodeAmplitudeSet(h Handle, channel int, node Node, volts float64) error {
	return enrich(C.FDwfAnalogOutNodeAmplitudeSet(C.HDWF(h), C.int(channel),
		C.AnalogOutNode(node), C.double(volts)), "FDwfAnalogOutNodeAmplitudeSet")
}

// AnalogOutNodeOffsetSet sets the node offset.
func (Native) AnalogOutNodeOffsetSet(h Handle, channel int, node Node, volts float64) error {
	return enrich(C.FDwfAnalogOutNodeOffsetSet(C.HDWF(h), C.int(channel),
		C.AnalogOutNode(node), C.double(volts)), "FDwfAnalogOutNodeOffsetSet")
}

// AnalogOutNodeSymmetrySet sets the node symmetry.
func (Native) AnalogOutNodeSymmetrySet(h Handle, channel int, node Node, pct float64) error {
	return enrich(C.FDwfAnalogOutNodeSymmetrySet(C.HDWF(h), C.int(channel),
		C.AnalogOutNode(node), C.double(pct)), "FDwfAnalogOutNodeSymmetrySet")
}

// AnalogOutRunSet sets the run duration of a channel.
func (Native) AnalogOutRunSet(h Handle, channel int, seconds float64) error {
	return enrich(C.FDwfAnalogOutRunSet(C.HDWF(h), C.int(channel), C.double(seconds)),
		"FDwfAnalogOutRunSet")
}

// AnalogOutWaitSet sets the pre-start wait time of a channel.
func (Native) AnalogOutWaitSet(h Handle, channel int, seconds float64) error {
	return enrich(C.FDwfAnalogOutWaitSet(C.HDWF(h), C.int(channel), C.double(seconds)),
		"FDwfAnalogOutWaitSet")
}

// AnalogOutRepeatSet sets the repeat count of a channel.
func (Native) AnalogOutRepeatSet(h Handle, channel int, count int) error {
	return enrich(C.FDwfAnalogOutRepeatSet(C.HDWF(h), C.int(channel), C.int(count)),
		"FDwfAnalogOutRepeatSet")
}

// AnalogOutConfigure applies the staged configuration and optionally starts.
func (Native) AnalogOutConfigure(h Handle, channel int, start bool) error {
	return enrich(C.FDwfAnalogOutConfigure(C.HDWF(h), C.int(channel), cbool(start)),
		"FDwfAnalogOutConfigure")
}

// AnalogOutReset resets an output channel, -1 for all.
func (Native) AnalogOutReset(h Handle, channel int) error {
	return enrich(C.FDwfAnalogOutReset(C.HDWF(h), C.int(channel)), "FDwfAnalogOutReset")
}

// AnalogIOChannelNodeSet writes a value to a node of an analog I/O channel.
func (Native) AnalogIOChannelNodeSet(h Handle, channel, node int, value float64) error {
	return enrich(C.FDwfAnalogIOChannelNodeSet(C.HDWF(h), C.int(channel), C.int(node),
		C.double(value)), "FDwfAnalogIOChannelNodeSet")
}

// AnalogIOEnableSet is the master switch for the analog I/O instrument.
func (Native) AnalogIOEnableSet(h Handle, enable bool) error {
	return enrich(C.FDwfAnalogIOEnableSet(C.HDWF(h), cbool(enable)), "FDwfAnalogIOEnableSet")
}

// New returns the cgo-backed Driver.
func New() (Driver, error) {
	return Native{}, nil
}
