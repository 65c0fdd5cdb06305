// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && amd64

// Package main binds the e1000 driver against QEMU's amd64 microvm PCI
// bus, the way a host kernel's boot sequence would.
package main

import (
	"log"

	"github.com/usbarmory/e1000"
	"github.com/usbarmory/e1000/internal/dma"
	"github.com/usbarmory/e1000/pci"
)

// dmaRegionSize must cover every ring and packet buffer arena the driver
// allocates across all bound NICs.
const dmaRegionSize = 16 << 20

// pciBuses is the number of PCI buses to probe; QEMU's microvm target
// exposes a single root bus.
const pciBuses = 1

func main() {
	reg := pci.NewRegistry(pciBuses)
	mem := dma.NewRegion(dmaRegionSize)

	if !e1000.Init(reg, mem) {
		log.Fatal("e1000: failed to register driver")
	}
}
