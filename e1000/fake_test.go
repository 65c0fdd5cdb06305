// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package e1000

import (
	"unsafe"

	"github.com/usbarmory/e1000/kernel"
)

// fakeBAR stands in for a real memory-mapped BAR0: it is backed by a plain
// Go byte slice, so the Gateway's volatile loads/stores land on ordinary
// heap memory instead of hardware. Large enough to cover every register
// offset this package defines, including the receive address registers.
type fakeBAR struct {
	mem []byte
}

func newFakeBAR() *fakeBAR {
	return &fakeBAR{mem: make([]byte, 0x6000)}
}

func (b *fakeBAR) Kind() kernel.BARKind { return kernel.MMIO }

func (b *fakeBAR) Base() uintptr {
	return uintptr(unsafe.Pointer(&b.mem[0]))
}

// fakeDevice stands in for a probed PCI device. noStatusReg/noCommandReg
// simulate a device-shape error: a device that exposes no status or
// command word at all.
type fakeDevice struct {
	vendor uint16
	device uint16
	bar    kernel.BAR

	noStatusReg  bool
	noCommandReg bool
}

func (d *fakeDevice) VendorID() uint16 { return d.vendor }
func (d *fakeDevice) DeviceID() uint16 { return d.device }

func (d *fakeDevice) StatusReg() (uint16, bool) {
	if d.noStatusReg {
		return 0, false
	}
	return 0, true
}

func (d *fakeDevice) CommandReg() (uint16, bool) {
	if d.noCommandReg {
		return 0, false
	}
	return 0, true
}

func (d *fakeDevice) BAR(n int) kernel.BAR {
	if n == 0 {
		return d.bar
	}
	return nil
}

func (d *fakeDevice) BARs() []kernel.BAR {
	return []kernel.BAR{d.bar}
}

func newFakeGateway() *Gateway {
	gw, err := NewGateway(newFakeBAR())
	if err != nil {
		panic(err)
	}
	return gw
}
