// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package e1000

import (
	"errors"

	"github.com/usbarmory/e1000/internal/reg"
	"github.com/usbarmory/e1000/kernel"
)

// Register map, offsets from BAR0 (8254x Family Programmer's Guide).
const (
	regSTATUS = 0x0008
	regEECD   = 0x0010
	regEERD   = 0x0014
	regRCTL   = 0x0100
	regTCTL   = 0x0400
	regTIPG   = 0x0410
	regRDBAL  = 0x2800
	regRDBAH  = 0x2804
	regRDLEN  = 0x2808
	regRDH    = 0x2810
	regRDT    = 0x2818
	regTDBAL  = 0x3800
	regTDBAH  = 0x3804
	regTDLEN  = 0x3808
	regTDH    = 0x3810
	regTDT    = 0x3818
	regRAL0   = 0x5400
	regRAH0   = 0x5404
)

// STATUS bits.
const statusLU = 1 << 1 // Link Up

// Gateway implements uniform 32-bit register access against BAR0,
// dispatched to MMIO or port I/O depending on the BAR's type. It is the
// only thing in this package that touches the device directly; everything
// else (EEPROM reader, ring manager, packet interface) is built on top of
// it.
type Gateway struct {
	bar kernel.BAR
}

// NewGateway validates and wraps a BAR for register access.
func NewGateway(bar kernel.BAR) (*Gateway, error) {
	if bar == nil {
		return nil, errors.New("e1000: missing BAR0")
	}

	return &Gateway{bar: bar}, nil
}

// ReadU32 reads a 32-bit register at offset.
func (g *Gateway) ReadU32(offset uint16) uint32 {
	if g.bar.Kind() == kernel.MMIO {
		return reg.Read(g.bar.Base() + uintptr(offset))
	}

	port := uint16(g.bar.Base())
	reg.Out32(port, uint32(offset))
	return reg.In32(port + 4)
}

// WriteU32 writes value to a 32-bit register at offset.
func (g *Gateway) WriteU32(offset uint16, value uint32) {
	if g.bar.Kind() == kernel.MMIO {
		reg.Write(g.bar.Base()+uintptr(offset), value)
		return
	}

	port := uint16(g.bar.Base())
	reg.Out32(port, uint32(offset))
	reg.Out32(port+4, value)
}
