package digilent

import "github.com/lightwell/godwf/util"

// Analog I/O channel and node indices for the supply rails.
const (
	railPositive = 0
	railNegative = 1

	nodeEnable  = 0
	nodeVoltage = 1
)

// Supply rail limits in volts.  Commands outside these are clamped, not
// rejected; the pod itself would clip them anyway.
const (
	positiveRailMax = 5.0
	negativeRailMin = -5.0
)

// Supplies is the programmable power supply of a pod: a positive rail on
// [0, 5] V and a negative rail on [-5, 0] V behind a master switch.
type Supplies struct {
	sess *Session
}

// NewSupplies returns a Supplies bound to the session.
func NewSupplies(sess *Session) *Supplies {
	return &Supplies{sess: sess}
}

// Set programs both rails and the master switch in one call.  The voltages
// are clamped to the rail limits before being applied: each rail's voltage
// is written, then its enable, then the master enable.  There is no
// read-back; the device does not verify.
func (p *Supplies) Set(master, positiveOn, negativeOn bool, positiveV, negativeV float64) error {
	if err := p.sess.check(); err != nil {
		return err
	}
	positiveV = util.Clamp(positiveV, 0, positiveRailMax)
	negativeV = util.Clamp(negativeV, negativeRailMin, 0)
	drv, h := p.sess.drv, p.sess.h
	if err := drv.AnalogIOChannelNodeSet(h, railPositive, nodeVoltage, positiveV); err != nil {
		return err
	}
	if err := drv.AnalogIOChannelNodeSet(h, railNegative, nodeVoltage, negativeV); err != nil {
		return err
	}
	if err := drv.AnalogIOChannelNodeSet(h, railPositive, nodeEnable, boolToF(positiveOn)); err != nil {
		return err
	}
	if err := drv.AnalogIOChannelNodeSet(h, railNegative, nodeEnable, boolToF(negativeOn)); err != nil {
		return err
	}
	return drv.AnalogIOEnableSet(h, master)
}

// Off drops the master switch, leaving the rail programming in place.
func (p *Supplies) Off() error {
	if err := p.sess.check(); err != nil {
		return err
	}
	return p.sess.drv.AnalogIOEnableSet(p.sess.h, false)
}

func boolToF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
