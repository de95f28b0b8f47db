//go:build !dwf

package dwf

import "errors"

// New reports that the binary was built without the vendor runtime.  The
// dwf build tag enables the cgo-backed Driver.
func New() (Driver, error) {
	return nil, errors.New("dwf: built without the waveforms runtime, rebuild with -tags dwf")
}
