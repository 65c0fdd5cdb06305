// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package pci implements the host's PCI enumeration service: configuration
// space access, device probing and Base Address Register decoding,
// following the PCI Local Bus Specification, revision 3.0.
//
// It is the concrete instance the e1000 driver binding is wired against,
// not part of the e1000 core itself.
package pci

import (
	"github.com/usbarmory/e1000/internal/bits"
	"github.com/usbarmory/e1000/internal/reg"
	"github.com/usbarmory/e1000/kernel"
)

const (
	configAddress = 0x0cf8
	configData    = 0x0cfc
)

const (
	maxBuses   = 256
	maxDevices = 32
)

// Header Type 0x0 offsets.
const (
	VendorID   = 0x00
	Command    = 0x04
	RevisionID = 0x08
	Bar0       = 0x10
)

// Device represents a probed PCI device and implements kernel.PhysicalDevice.
type Device struct {
	Bus    uint32
	Vendor uint16
	Device uint16
	Slot   uint32
}

func (d *Device) address(fn uint32, off uint32) uint32 {
	return 1<<31 | d.Bus<<16 | d.Slot<<11 | fn<<8 | off&0xfc
}

// Read reads the device configuration space for a given function and
// register offset. For a 16-bit-aligned, non-word-aligned offset the
// result is already shifted down into the low 16 bits.
func (d *Device) Read(fn uint32, off uint32) uint32 {
	reg.Out32(configAddress, d.address(fn, off))
	return reg.In32(configData) >> ((off & 2) * 8)
}

// Write writes the device configuration space for a given function and
// word-aligned register offset.
func (d *Device) Write(fn uint32, off uint32, val uint32) {
	if off&3 != 0 {
		return
	}

	reg.Out32(configAddress, d.address(fn, off))
	reg.Out32(configData, val)
}

// VendorID implements kernel.PhysicalDevice.
func (d *Device) VendorID() uint16 { return d.Vendor }

// DeviceID implements kernel.PhysicalDevice.
func (d *Device) DeviceID() uint16 { return d.Device }

// StatusReg implements kernel.PhysicalDevice. Status occupies the upper 16
// bits of the word at offset Command.
func (d *Device) StatusReg() (val uint16, ok bool) {
	return uint16(d.Read(0, Command+2)), true
}

// CommandReg implements kernel.PhysicalDevice.
func (d *Device) CommandReg() (val uint16, ok bool) {
	return uint16(d.Read(0, Command)), true
}

// BAR implements kernel.PhysicalDevice.
func (d *Device) BAR(n int) kernel.BAR {
	b := d.decodeBAR(n)
	if b == nil {
		return nil
	}
	return b
}

// BARs implements kernel.PhysicalDevice.
func (d *Device) BARs() []kernel.BAR {
	bars := make([]kernel.BAR, 6)

	for n := range bars {
		if b := d.decodeBAR(n); b != nil {
			bars[n] = b
		}
	}

	return bars
}

// decodeBAR reads and classifies Base Address Register n, per PCI Local Bus
// Specification rev. 3.0 §6.2.5.1.
func (d *Device) decodeBAR(n int) *BAR {
	if n < 0 || n > 5 {
		return nil
	}

	off := uint32(Bar0) + uint32(n)*4
	raw := d.Read(0, off)

	if raw == 0 {
		return nil
	}

	if raw&1 == 1 {
		// I/O space BAR: bits 2:31 hold the port base, bits 0:1 are
		// reserved/indicator bits.
		return &BAR{kind: kernel.PortIO, base: uintptr(raw &^ 0x3)}
	}

	// Memory space BAR: bits 1:2 select 32-bit or 64-bit addressing.
	switch bits.GetN(&raw, 1, 0b11) {
	case 0b00:
		return &BAR{kind: kernel.MMIO, base: uintptr(raw &^ 0xf)}
	case 0b10:
		hi := d.Read(0, off+4)
		return &BAR{kind: kernel.MMIO, base: uintptr(hi)<<32 | uintptr(raw&^0xf)}
	default:
		return nil
	}
}

func (d *Device) probe() bool {
	if d.Bus > maxBuses {
		return false
	}

	val := d.Read(0, VendorID)

	if d.Vendor = uint16(val); d.Vendor == 0xffff {
		return false
	}

	d.Device = uint16(val >> 16)

	return true
}

// Probe searches a bus for a single device matching vendor/device ID, or
// nil if none is present.
func Probe(bus int, vendor uint16, device uint16) *Device {
	d := &Device{Bus: uint32(bus)}

	for slot := uint32(0); slot < maxDevices; slot++ {
		d.Slot = slot

		if d.probe() && d.Vendor == vendor && d.Device == device {
			return d
		}
	}

	return nil
}

// Devices returns every populated slot on a bus.
func Devices(bus int) (devices []*Device) {
	for slot := uint32(0); slot < maxDevices; slot++ {
		d := &Device{Bus: uint32(bus), Slot: slot}

		if d.probe() {
			devices = append(devices, d)
		}
	}

	return
}

// BAR implements kernel.BAR over a decoded Base Address Register. The
// MMIO base address here is the physical address read from configuration
// space, returned unchanged by Base; neither this package nor the e1000
// driver binding maps it, so register accesses use it directly.
type BAR struct {
	kind kernel.BARKind
	base uintptr
}

// Kind implements kernel.BAR.
func (b *BAR) Kind() kernel.BARKind { return b.kind }

// Base implements kernel.BAR.
func (b *BAR) Base() uintptr { return b.base }
