// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package pci

import (
	"sync"

	"github.com/usbarmory/e1000/kernel"
)

// Registry implements kernel.Registry directly over the real PCI
// configuration space, scanning every bus in [0, Buses) for devices. A
// host kernel with its own driver-registration bookkeeping would
// implement kernel.Registry against that bookkeeping instead; Registry is
// for one that doesn't have any yet.
type Registry struct {
	// Buses is the number of PCI buses Devices scans, starting at 0.
	Buses int

	mu      sync.Mutex
	drivers map[string]kernel.Driver
}

// NewRegistry returns a Registry scanning buses [0, buses).
func NewRegistry(buses int) *Registry {
	return &Registry{Buses: buses, drivers: make(map[string]kernel.Driver)}
}

// Register implements kernel.Registry.
func (r *Registry) Register(d kernel.Driver) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drivers[d.Name()]; exists {
		return false
	}

	r.drivers[d.Name()] = d

	return true
}

// Unregister implements kernel.Registry.
func (r *Registry) Unregister(d kernel.Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.drivers, d.Name())
}

// Devices implements kernel.Registry, walking every configured bus.
func (r *Registry) Devices() []kernel.PhysicalDevice {
	var devices []kernel.PhysicalDevice

	for bus := 0; bus < r.Buses; bus++ {
		for _, d := range Devices(bus) {
			devices = append(devices, d)
		}
	}

	return devices
}
