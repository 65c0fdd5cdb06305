// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package e1000

import (
	"log"
	"strconv"
	"sync"

	"github.com/usbarmory/e1000/kernel"
)

// VendorID and DeviceID identify the 8254x-family variant this driver
// binds to: the QEMU/VMware emulated "e1000" (82540EM).
const (
	VendorID = 0x8086
	DeviceID = 0x100e
)

// Driver implements kernel.Driver, binding to every matching PCI device it
// is offered and keeping track of the NICs it has brought up so that Close
// can tear all of them down.
type Driver struct {
	mem kernel.Memory

	mu   sync.Mutex
	nics map[string]*NIC
	next int
}

// NewDriver returns a Driver that allocates ring and packet buffer memory
// from mem.
func NewDriver(mem kernel.Memory) *Driver {
	return &Driver{
		mem:  mem,
		nics: make(map[string]*NIC),
	}
}

// Name implements kernel.Driver.
func (d *Driver) Name() string { return "e1000" }

// Matches reports whether dev is a device this driver binds to.
func (d *Driver) Matches(dev kernel.PhysicalDevice) bool {
	return dev.VendorID() == VendorID && dev.DeviceID() == DeviceID
}

// OnPlug implements kernel.Driver. It is a no-op for devices that do not
// match VendorID/DeviceID, so a Driver can safely be registered against
// every PCI device the host kernel enumerates.
func (d *Driver) OnPlug(dev kernel.PhysicalDevice) {
	if !d.Matches(dev) {
		return
	}

	d.mu.Lock()
	name := d.nextName()
	d.mu.Unlock()

	nic, err := New(dev, d.mem, DefaultConfig(name))
	if err != nil {
		log.Printf("e1000: failed to bind %s: %v", name, err)
		return
	}

	d.mu.Lock()
	d.nics[name] = nic
	d.mu.Unlock()

	log.Printf("e1000: bound %s, mac %x", name, nic.MAC())
}

// OnUnplug implements kernel.Driver, closing and forgetting the NIC bound
// to dev, if any.
func (d *Driver) OnUnplug(dev kernel.PhysicalDevice) {
	if !d.Matches(dev) {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for name, nic := range d.nics {
		if nic.dev == dev {
			nic.Close()
			delete(d.nics, name)
			return
		}
	}
}

// NICs returns the currently bound interfaces.
func (d *Driver) NICs() []*NIC {
	d.mu.Lock()
	defer d.mu.Unlock()

	nics := make([]*NIC, 0, len(d.nics))
	for _, nic := range d.nics {
		nics = append(nics, nic)
	}

	return nics
}

// Close disables and frees every bound NIC.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for name, nic := range d.nics {
		nic.Close()
		delete(d.nics, name)
	}
}

func (d *Driver) nextName() string {
	name := "eth" + strconv.Itoa(d.next)
	d.next++
	return name
}
