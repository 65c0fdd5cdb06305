// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package e1000

// Config carries the per-NIC settings New needs that cannot be discovered
// from the device itself. There is no configuration file format: a host
// kernel embedding this driver constructs a Config in code, the way it
// constructs everything else at boot.
type Config struct {
	// Name is the interface name reported by NIC.Name, e.g. "eth0".
	Name string

	// RXDescCount and TXDescCount size the receive and transmit rings.
	// Each must make descSize*count a multiple of 128.
	RXDescCount int
	TXDescCount int

	// TXBufSize is the per-descriptor DMA buffer size on the transmit
	// ring. A frame larger than this is split across consecutive
	// descriptors.
	TXBufSize int
}

// DefaultConfig returns a Config sized for standard 1500-byte MTU Ethernet
// traffic with modest ring depth.
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		RXDescCount: rxDescCount,
		TXDescCount: txDescCount,
		TXBufSize:   txBufSize,
	}
}
