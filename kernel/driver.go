// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package kernel declares the host contracts a device driver is bound
// against: driver registration, PCI enumeration, BAR access and the
// network-interface dispatch. These are provided by the host kernel; this
// package only describes the boundary so that a driver package can be
// built and tested without linking against a specific kernel.
package kernel

// Driver is implemented by a device driver and registered once with the
// kernel's driver-registration service. OnPlug is invoked for every
// already-present matching device at registration time and subsequently for
// each newly attached device. OnUnplug is invoked on device removal or
// module teardown and must be infallible and best-effort.
type Driver interface {
	Name() string
	OnPlug(dev PhysicalDevice)
	OnUnplug(dev PhysicalDevice)
}

// Registry is the host kernel's driver-registration harness: the thing a
// module's init/fini hooks call into to become visible to the rest of the
// kernel. Register reports whether registration succeeded (e.g. false on a
// name collision); Devices lists every PCI device already present at
// registration time, so the caller can replay OnPlug for each of them.
type Registry interface {
	Register(d Driver) bool
	Unregister(d Driver)
	Devices() []PhysicalDevice
}

// PhysicalDevice is a PCI device as reported by the host kernel's PCI
// enumeration service.
type PhysicalDevice interface {
	VendorID() uint16
	DeviceID() uint16

	// StatusReg and CommandReg return the PCI configuration-space status
	// and command words, and ok=false if the device exposes neither (a
	// device-shape error the driver must surface at construction).
	StatusReg() (val uint16, ok bool)
	CommandReg() (val uint16, ok bool)

	// BAR returns the n-th Base Address Register, or nil if absent.
	BAR(n int) BAR
	// BARs returns every BAR slot, absent ones as nil.
	BARs() []BAR
}

// BARKind discriminates a Base Address Register's address space.
type BARKind int

const (
	// MMIO identifies a memory-mapped BAR.
	MMIO BARKind = iota
	// PortIO identifies an I/O-port BAR.
	PortIO
)

// BAR is a single Base Address Register, already decoded and mapped by the
// host kernel.
type BAR interface {
	// Kind reports whether this BAR is memory-mapped or I/O-port.
	Kind() BARKind
	// Base returns the BAR's base address: a kernel-mapped virtual
	// address for MMIO, or a port number for I/O ports.
	Base() uintptr
}
