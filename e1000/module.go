// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package e1000

import "github.com/usbarmory/e1000/kernel"

var module *Driver

// Init implements the module lifecycle's entry hook: it registers a single
// "e1000" driver instance with reg, then binds it against every PCI device
// reg already knows about, the way the registration harness would replay
// on_plug for pre-existing hardware. It returns false if registration
// itself fails (e.g. a name collision), leaving nothing bound.
func Init(reg kernel.Registry, mem kernel.Memory) bool {
	d := NewDriver(mem)

	if !reg.Register(d) {
		return false
	}

	for _, dev := range reg.Devices() {
		d.OnPlug(dev)
	}

	module = d

	return true
}

// Fini implements the module lifecycle's exit hook: it disables every bound
// NIC, unregisters the driver from reg, and frees all buffers. Calling Fini
// without a prior successful Init is a no-op.
func Fini(reg kernel.Registry) {
	if module == nil {
		return
	}

	module.Close()
	reg.Unregister(module)
	module = nil
}
