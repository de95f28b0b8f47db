/*Package sim provides a pure Go dwf.Driver for development and tests.

The simulator stands in for one Analog Discovery 2 style pod: two scope
channels, two generator channels, and a pair of clamped supply rails.  A
small circuit model connects them; scope channel 0 reads the generator's
carrier voltage and scope channel 1 reads the response of an inverting
amplifier driven by it, clipped at the enabled supply rails.  That is
enough to exercise every code path above the driver, including a
plausible looking transfer curve, without hardware on the bench.
*/
package sim

import (
	"math"
	"sync"

	"github.com/lightwell/godwf/dwf"
)

const (
	scopeChannels = 2
	genChannels   = 2
	ioChannels    = 2

	// analog I/O node indices, from the pod's supply channel layout
	nodeEnable  = 0
	nodeVoltage = 1
)

type genChannel struct {
	enabled   bool
	function  dwf.Func
	data      []float64
	frequency float64
	amplitude float64
	offset    float64
	symmetry  float64
	run       float64
	wait      float64
	repeat    int
	running   bool
}

type inChannel struct {
	enabled bool
	offset  float64
	rng     float64
	filter  dwf.Filter
}

type rail struct {
	voltage float64
	enabled bool
}

type device struct {
	in         [scopeChannels]inChannel
	bufferSize int
	frequency  float64

	out [genChannels]genChannel

	rails    [ioChannels]rail
	ioMaster bool

	acquiring bool
	polls     int
}

// Sim is an in-memory dwf.Driver.  The zero value has one device attached
// and completes buffered acquisitions after two status polls.
type Sim struct {
	mu      sync.Mutex
	devices map[dwf.Handle]*device
	next    dwf.Handle

	// Absent simulates an empty USB bus; DeviceOpen fails with
	// dwf.ErrNoDevice.
	Absent bool

	// Gain is the amplifier gain of the circuit model.  Zero means the
	// default of -2.
	Gain float64

	// PollsUntilDone is how many AnalogInStatus calls a buffered
	// acquisition takes to reach StateDone.  Zero means the default of 2.
	// Negative values never reach done, for timeout tests.
	PollsUntilDone int
}

var _ dwf.Driver = (*Sim)(nil)

// New returns a Sim with default circuit behavior.
func New() *Sim {
	return &Sim{}
}

func (s *Sim) gain() float64 {
	if s.Gain == 0 {
		return -2
	}
	return s.Gain
}

func (s *Sim) pollsUntilDone() int {
	if s.PollsUntilDone == 0 {
		return 2
	}
	return s.PollsUntilDone
}

func (s *Sim) device(h dwf.Handle) (*device, error) {
	d, ok := s.devices[h]
	if !ok {
		return nil, dwf.ErrBadHandle
	}
	return d, nil
}

// DeviceOpen opens the simulated pod.
func (s *Sim) DeviceOpen(index int) (dwf.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Absent {
		return 0, dwf.ErrNoDevice
	}
	if index != dwf.FirstDevice && index != 0 {
		return 0, dwf.ErrNoDevice
	}
	s.next++
	if s.devices == nil {
		s.devices = map[dwf.Handle]*device{}
	}
	d := &device{bufferSize: 8192, frequency: 20e6}
	for i := range d.out {
		d.out[i].symmetry = 50
	}
	s.devices[s.next] = d
	return s.next, nil
}

// DeviceClose releases the handle.
func (s *Sim) DeviceClose(h dwf.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[h]; !ok {
		return dwf.ErrBadHandle
	}
	delete(s.devices, h)
	return nil
}

// drive is the carrier voltage currently produced by a generator channel.
// Only the DC value matters to the sweep; analytic kinds contribute their
// offset.
func (d *device) drive(channel int) float64 {
	g := d.out[channel]
	if !g.enabled || !g.running {
		return 0
	}
	return g.offset
}

// railSpan returns the clipping limits of the amplifier model.  Disabled
// rails clamp to ground.
func (d *device) railSpan() (lo, hi float64) {
	if d.ioMaster && d.rails[1].enabled {
		lo = d.rails[1].voltage
	}
	if d.ioMaster && d.rails[0].enabled {
		hi = d.rails[0].voltage
	}
	return lo, hi
}

// read models the voltage present at a scope channel.
func (s *Sim) read(d *device, channel int) float64 {
	vin := d.drive(0)
	if channel == 0 {
		return vin
	}
	lo, hi := d.railSpan()
	vout := s.gain() * vin
	return math.Max(lo, math.Min(hi, vout))
}

func checkChannel(channel, n int) error {
	if channel < -1 || channel >= n {
		return dwf.ErrBadChannel
	}
	return nil
}

// AnalogInChannelEnableSet enables or disables an input channel.
func (s *Sim) AnalogInChannelEnableSet(h dwf.Handle, channel int, enable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.device(h)
	if err != nil {
		return err
	}
	if err := checkChannel(channel, scopeChannels); err != nil {
		return err
	}
	if channel == -1 {
		for i := range d.in {
			d.in[i].enabled = enable
		}
		return nil
	}
	d.in[channel].enabled = enable
	return nil
}

// AnalogInChannelOffsetSet sets the vertical offset of an input channel.
func (s *Sim) AnalogInChannelOffsetSet(h dwf.Handle, channel int, offset float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.device(h)
	if err != nil {
		return err
	}
	if err := checkChannel(channel, scopeChannels); err != nil {
		return err
	}
	if channel == -1 {
		for i := range d.in {
			d.in[i].offset = offset
		}
		return nil
	}
	d.in[channel].offset = offset
	return nil
}

// AnalogInChannelRangeSet sets the range of an input channel.
func (s *Sim) AnalogInChannelRangeSet(h dwf.Handle, channel int, rng float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.device(h)
	if err != nil {
		return err
	}
	if err := checkChannel(channel, scopeChannels); err != nil {
		return err
	}
	if channel == -1 {
		for i := range d.in {
			d.in[i].rng = rng
		}
		return nil
	}
	d.in[channel].rng = rng
	return nil
}

// AnalogInBufferSizeSet sets the buffered acquisition length.
func (s *Sim) AnalogInBufferSizeSet(h dwf.Handle, size int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.device(h)
	if err != nil {
		return err
	}
	d.bufferSize = size
	return nil
}

// AnalogInFrequencySet sets the sample frequency.
func (s *Sim) AnalogInFrequencySet(h dwf.Handle, hz float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.device(h)
	if err != nil {
		return err
	}
	d.frequency = hz
	return nil
}

// AnalogInChannelFilterSet sets the acquisition filter.
func (s *Sim) AnalogInChannelFilterSet(h dwf.Handle, channel int, f dwf.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.device(h)
	if err != nil {
		return err
	}
	if err := checkChannel(channel, scopeChannels); err != nil {
		return err
	}
	if channel == -1 {
		for i := range d.in {
			d.in[i].filter = f
		}
		return nil
	}
	d.in[channel].filter = f
	return nil
}

// AnalogInConfigure applies the staged input configuration.
func (s *Sim) AnalogInConfigure(h dwf.Handle, reconfigure, start bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.device(h)
	if err != nil {
		return err
	}
	if start {
		d.acquiring = true
		d.polls = 0
	}
	return nil
}

// AnalogInStatus polls the instrument state.
func (s *Sim) AnalogInStatus(h dwf.Handle, readData bool) (dwf.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.device(h)
	if err != nil {
		return 0, err
	}
	if !d.acquiring {
		return dwf.StateReady, nil
	}
	limit := s.pollsUntilDone()
	d.polls++
	if limit < 0 || d.polls < limit {
		return dwf.StateRunning, nil
	}
	d.acquiring = false
	return dwf.StateDone, nil
}

// AnalogInStatusSample returns the modeled voltage at a channel.
func (s *Sim) AnalogInStatusSample(h dwf.Handle, channel int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.device(h)
	if err != nil {
		return 0, err
	}
	if channel < 0 || channel >= scopeChannels {
		return 0, dwf.ErrBadChannel
	}
	return s.read(d, channel), nil
}

// AnalogInStatusData synthesizes the captured buffer for a channel.
func (s *Sim) AnalogInStatusData(h dwf.Handle, channel int, buf []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.device(h)
	if err != nil {
		return err
	}
	if channel < 0 || channel >= scopeChannels {
		return dwf.ErrBadChannel
	}
	g := d.out[0]
	for i := range buf {
		t := float64(i) / d.frequency
		var v float64
		switch {
		case !g.enabled || !g.running:
			v = 0
		case g.function == dwf.FuncSine:
			v = g.offset + g.amplitude*math.Sin(2*math.Pi*g.frequency*t)
		case g.function == dwf.FuncCustom && len(g.data) > 0:
			v = g.offset + g.amplitude*g.data[i%len(g.data)]
		default:
			v = g.offset
		}
		if channel == 1 {
			lo, hi := d.railSpan()
			v = math.Max(lo, math.Min(hi, s.gain()*v))
		}
		buf[i] = v
	}
	return nil
}

// AnalogInReset resets the input instrument.
func (s *Sim) AnalogInReset(h dwf.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.device(h)
	if err != nil {
		return err
	}
	for i := range d.in {
		d.in[i] = inChannel{}
	}
	d.bufferSize = 8192
	d.frequency = 20e6
	d.acquiring = false
	return nil
}

func (s *Sim) outChannel(h dwf.Handle, channel int) (*genChannel, error) {
	d, err := s.device(h)
	if err != nil {
		return nil, err
	}
	if channel < 0 || channel >= genChannels {
		return nil, dwf.ErrBadChannel
	}
	return &d.out[channel], nil
}

// AnalogOutNodeEnableSet enables a synthesis node.
func (s *Sim) AnalogOutNodeEnableSet(h dwf.Handle, channel int, node dwf.Node, enable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.outChannel(h, channel)
	if err != nil {
		return err
	}
	if node == dwf.NodeCarrier {
		g.enabled = enable
	}
	return nil
}

// AnalogOutNodeFunctionSet selects the waveform kind of a node.
func (s *Sim) AnalogOutNodeFunctionSet(h dwf.Handle, channel int, node dwf.Node, f dwf.Func) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.outChannel(h, channel)
	if err != nil {
		return err
	}
	if f < dwf.FuncDC || f > dwf.FuncCustom {
		return dwf.ErrBadFunc
	}
	if node == dwf.NodeCarrier {
		g.function = f
	}
	return nil
}

// AnalogOutNodeDataSet stores custom waveform samples verbatim.
func (s *Sim) AnalogOutNodeDataSet(h dwf.Handle, channel int, node dwf.Node, data []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.outChannel(h, channel)
	if err != nil {
		return err
	}
	if node == dwf.NodeCarrier {
		g.data = append([]float64(nil), data...)
	}
	return nil
}

// AnalogOutNodeFrequencySet sets the node frequency.
func (s *Sim) AnalogOutNodeFrequencySet(h dwf.Handle, channel int, node dwf.Node, hz float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.outChannel(h, channel)
	if err != nil {
		return err
	}
	if node == dwf.NodeCarrier {
		g.frequency = hz
	}
	return nil
}

// AnalogOutNodeAmplitudeSet sets the node amplitude.
func (s *Sim) AnalogOutNodeAmplitudeSet(h dwf.Handle, channel int, node dwf.Node, volts float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.outChannel(h, channel)
	if err != nil {
		return err
	}
	if node == dwf.NodeCarrier {
		g.amplitude = volts
	}
	return nil
}

// AnalogOutNodeOffsetSet sets the node offset.
func (s *Sim) AnalogOutNodeOffsetSet(h dwf.Handle, channel int, node dwf.Node, volts float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.outChannel(h, channel)
	if err != nil {
		return err
	}
	if node == dwf.NodeCarrier {
		g.offset = volts
	}
	return nil
}

// AnalogOutNodeSymmetrySet sets the node symmetry.
func (s *Sim) AnalogOutNodeSymmetrySet(h dwf.Handle, channel int, node dwf.Node, pct float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.outChannel(h, channel)
	if err != nil {
		return err
	}
	if node == dwf.NodeCarrier {
		g.symmetry = pct
	}
	return nil
}

// AnalogOutRunSet sets the run duration of a channel.
func (s *Sim) AnalogOutRunSet(h dwf.Handle, channel int, seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.outChannel(h, channel)
	if err != nil {
		return err
	}
	g.run = seconds
	return nil
}

// AnalogOutWaitSet sets the pre-start wait time of a channel.
func (s *Sim) AnalogOutWaitSet(h dwf.Handle, channel int, seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.outChannel(h, channel)
	if err != nil {
		return err
	}
	g.wait = seconds
	return nil
}

// AnalogOutRepeatSet sets the repeat count of a channel.
func (s *Sim) AnalogOutRepeatSet(h dwf.Handle, channel int, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.outChannel(h, channel)
	if err != nil {
		return err
	}
	g.repeat = count
	return nil
}

// AnalogOutConfigure applies the staged output configuration.
func (s *Sim) AnalogOutConfigure(h dwf.Handle, channel int, start bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.outChannel(h, channel)
	if err != nil {
		return err
	}
	g.running = start
	return nil
}

// AnalogOutReset resets an output channel, -1 for all.
func (s *Sim) AnalogOutReset(h dwf.Handle, channel int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.device(h)
	if err != nil {
		return err
	}
	if err := checkChannel(channel, genChannels); err != nil {
		return err
	}
	if channel == -1 {
		for i := range d.out {
			d.out[i] = genChannel{symmetry: 50}
		}
		return nil
	}
	d.out[channel] = genChannel{symmetry: 50}
	return nil
}

// AnalogIOChannelNodeSet writes a value to a node of an analog I/O channel.
func (s *Sim) AnalogIOChannelNodeSet(h dwf.Handle, channel, node int, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.device(h)
	if err != nil {
		return err
	}
	if channel < 0 || channel >= ioChannels {
		return dwf.ErrBadChannel
	}
	switch node {
	case nodeEnable:
		d.rails[channel].enabled = value != 0
	case nodeVoltage:
		d.rails[channel].voltage = value
	default:
		return dwf.ErrBadChannel
	}
	return nil
}

// AnalogIOEnableSet is the master switch for the analog I/O instrument.
func (s *Sim) AnalogIOEnableSet(h dwf.Handle, enable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.device(h)
	if err != nil {
		return err
	}
	d.ioMaster = enable
	return nil
}

// CustomData returns a copy of the last custom waveform uploaded to a
// generator channel.  Test hook; the hardware offers no read-back.
func (s *Sim) CustomData(h dwf.Handle, channel int) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.outChannel(h, channel)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), g.data...), nil
}

// RailVoltages returns the applied rail voltages.  Test hook.
func (s *Sim) RailVoltages(h dwf.Handle) (positive, negative float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.device(h)
	if err != nil {
		return 0, 0, err
	}
	return d.rails[0].voltage, d.rails[1].voltage, nil
}
