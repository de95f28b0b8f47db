package digilent

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/snksoft/crc"

	"github.com/lightwell/godwf/dwf"
)

// crcTable checksums custom waveform uploads.  XMODEM to match the rest of
// the lab tooling.
var crcTable = crc.NewTable(crc.XMODEM)

// WaveformConfig holds one generator channel's synthesis settings.
type WaveformConfig struct {
	// Function is the waveform kind.
	Function dwf.Func

	// Frequency in Hz.
	Frequency float64

	// Amplitude in volts.  For FuncDC the amplitude is unused; Offset
	// carries the level.
	Amplitude float64

	// Offset in volts.
	Offset float64

	// Symmetry in percent.
	Symmetry float64

	// Wait is the delay before output starts, in seconds.
	Wait float64

	// Run is the output duration in seconds, 0 = forever.
	Run float64

	// Repeat is the number of run repetitions, 0 = forever.
	Repeat int

	// Data is the carrier sample sequence for FuncCustom, normalized
	// voltages uploaded verbatim.  Ignored for every other kind.
	Data []float64
}

// DefaultWaveform returns a 1 kHz, 1 V, symmetric sine.
func DefaultWaveform() WaveformConfig {
	return WaveformConfig{
		Function:  dwf.FuncSine,
		Frequency: 1e3,
		Amplitude: 1,
		Symmetry:  50,
	}
}

// DC returns a constant-level waveform at the given offset voltage, the
// configuration a sweep steps through.
func DC(offset float64) WaveformConfig {
	return WaveformConfig{Function: dwf.FuncDC, Offset: offset, Symmetry: 50}
}

// FuncGen is the analog-out instrument of a pod.
type FuncGen struct {
	sess *Session

	// uploadCRC remembers the checksum of the last custom buffer sent to
	// each channel.  The hardware has no read-back, so this is the only
	// record of what went out.
	uploadCRC map[int]uint64
}

// NewFuncGen returns a FuncGen bound to the session.
func NewFuncGen(sess *Session) *FuncGen {
	return &FuncGen{sess: sess, uploadCRC: map[int]uint64{}}
}

// Configure programs one channel and starts it.  The vendor sequence is
// preserved: the carrier node is enabled before any parameter is written,
// and the explicit start command comes last.
func (f *FuncGen) Configure(channel int, w WaveformConfig) error {
	if err := f.sess.check(); err != nil {
		return err
	}
	if channel < 1 {
		return fmt.Errorf("generator channel %d: %w", channel, dwf.ErrBadChannel)
	}
	if w.Function == dwf.FuncCustom && len(w.Data) == 0 {
		return fmt.Errorf("custom waveform with no data: %w", ErrBadConfig)
	}
	drv, h := f.sess.drv, f.sess.h
	ch := channel - 1
	if err := drv.AnalogOutNodeEnableSet(h, ch, dwf.NodeCarrier, true); err != nil {
		return err
	}
	if err := drv.AnalogOutNodeFunctionSet(h, ch, dwf.NodeCarrier, w.Function); err != nil {
		return err
	}
	if w.Function == dwf.FuncCustom {
		if err := drv.AnalogOutNodeDataSet(h, ch, dwf.NodeCarrier, w.Data); err != nil {
			return err
		}
		f.uploadCRC[channel] = checksum(w.Data)
	}
	if err := drv.AnalogOutNodeFrequencySet(h, ch, dwf.NodeCarrier, w.Frequency); err != nil {
		return err
	}
	if err := drv.AnalogOutNodeAmplitudeSet(h, ch, dwf.NodeCarrier, w.Amplitude); err != nil {
		return err
	}
	if err := drv.AnalogOutNodeOffsetSet(h, ch, dwf.NodeCarrier, w.Offset); err != nil {
		return err
	}
	if err := drv.AnalogOutNodeSymmetrySet(h, ch, dwf.NodeCarrier, w.Symmetry); err != nil {
		return err
	}
	if err := drv.AnalogOutRunSet(h, ch, w.Run); err != nil {
		return err
	}
	if err := drv.AnalogOutWaitSet(h, ch, w.Wait); err != nil {
		return err
	}
	if err := drv.AnalogOutRepeatSet(h, ch, w.Repeat); err != nil {
		return err
	}
	return drv.AnalogOutConfigure(h, ch, true)
}

// SetDC reprograms a channel as a constant level at the given voltage.
func (f *FuncGen) SetDC(channel int, volts float64) error {
	return f.Configure(channel, DC(volts))
}

// Reset returns a channel to its power-on state.  channel 0 resets all
// channels.
func (f *FuncGen) Reset(channel int) error {
	if err := f.sess.check(); err != nil {
		return err
	}
	return f.sess.drv.AnalogOutReset(f.sess.h, channel-1)
}

// UploadChecksum returns the CRC of the last custom buffer sent on a
// channel, and whether one was ever sent.
func (f *FuncGen) UploadChecksum(channel int) (uint64, bool) {
	sum, ok := f.uploadCRC[channel]
	return sum, ok
}

// checksum computes the CRC-16/XMODEM of a sample buffer over its IEEE-754
// wire representation.
func checksum(data []float64) uint64 {
	buf := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return crcTable.CalculateCRC(buf)
}
