// Package catalog lists every device class that vstim can generate stimulus
// for.
package catalog

import (
	"github.com/sarchlab/vstim/devices"
	"github.com/sarchlab/vstim/devices/accum"
	"github.com/sarchlab/vstim/devices/counter"
	"github.com/sarchlab/vstim/devices/pin"
	"github.com/sarchlab/vstim/devices/scratchpad"
	"github.com/sarchlab/vstim/devices/simplecpu"
	"github.com/sarchlab/vstim/devices/uartmem"
)

// Register adds every class to r.
func Register(r *devices.Registry) {
	r.Register(counter.Class, counter.New)
	r.Register(accum.Class, accum.New)
	r.Register(accum.BigClass, accum.NewBig)
	r.Register(scratchpad.Class, scratchpad.New)
	r.Register(pin.Class, pin.New)
	r.Register(uartmem.Class, uartmem.New)
	r.Register(simplecpu.Class, simplecpu.New)
}

// NewRegistry returns a registry with every class.
func NewRegistry() *devices.Registry {
	r := devices.NewRegistry()
	Register(r)

	return r
}
