// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package e1000 drives Intel 8254x family ("e1000") Gigabit Ethernet
// controllers, as found on real hardware and emulated by QEMU (PCI vendor
// 0x8086, device 0x100e) and VMware.
//
// The driver is split along the same lines as the controller itself: a
// Register Gateway for uniform BAR0 access (registers.go), an EEPROM Reader
// for the permanent MAC address (eeprom.go), a Ring Manager for the receive
// and transmit descriptor rings (ring.go), and a Packet Interface built on
// top of the rings (packet.go). NIC, defined here, ties the four together
// into the kernel.Interface the rest of a network stack talks to.
package e1000

import (
	"errors"

	"github.com/usbarmory/e1000/kernel"
)

// NIC is a single bound e1000 controller.
type NIC struct {
	name string

	gw     *Gateway
	eeprom *EEPROM
	mac    kernel.MAC

	rx *RXRing
	tx *TXRing

	dev kernel.PhysicalDevice

	// statusReg and commandReg are the PCI configuration-space status
	// and command words latched at construction. They are retained for
	// diagnostics, not re-read: a config-space reset after binding is
	// not reflected here.
	statusReg  uint16
	commandReg uint16
}

// New binds to dev, mapping BAR0 and bringing up the receive and transmit
// rings. A NIC is never returned half-initialized: any failure after BAR0
// validation tears down everything already allocated.
func New(dev kernel.PhysicalDevice, mem kernel.Memory, cfg Config) (*NIC, error) {
	status, ok := dev.StatusReg()
	if !ok {
		return nil, errors.New("e1000: device exposes no status register")
	}

	command, ok := dev.CommandReg()
	if !ok {
		return nil, errors.New("e1000: device exposes no command register")
	}

	bar := dev.BAR(0)

	gw, err := NewGateway(bar)
	if err != nil {
		return nil, err
	}

	eeprom := NewEEPROM(gw)

	rx, err := NewRXRing(gw, mem, cfg.RXDescCount)
	if err != nil {
		return nil, err
	}

	tx, err := NewTXRing(gw, mem, cfg.TXDescCount, cfg.TXBufSize)
	if err != nil {
		rx.Close()
		return nil, err
	}

	return &NIC{
		name:       cfg.Name,
		gw:         gw,
		eeprom:     eeprom,
		mac:        eeprom.ReadMAC(),
		rx:         rx,
		tx:         tx,
		dev:        dev,
		statusReg:  status,
		commandReg: command,
	}, nil
}

// Close disables the receiver and transmitter and frees both rings' DMA
// memory. It implements kernel.Driver's OnUnplug teardown contract.
func (n *NIC) Close() {
	n.tx.Close()
	n.rx.Close()
}

// Name implements kernel.Interface.
func (n *NIC) Name() string { return n.name }

// MAC implements kernel.Interface, returning the address latched at New.
func (n *NIC) MAC() kernel.MAC { return n.mac }

// IsUp implements kernel.Interface, reporting the controller's Link Up
// status bit.
func (n *NIC) IsUp() bool {
	status := n.gw.ReadU32(regSTATUS)
	return status&statusLU != 0
}

// Addresses implements kernel.Interface. Protocol address assignment is a
// network stack concern, not a driver one; a freshly bound NIC carries none.
func (n *NIC) Addresses() []kernel.BindAddress { return nil }

// Read implements kernel.Interface, returning at most one received packet.
// more reports whether the descriptor at the receive cursor is already Done,
// so callers can drain the ring without re-entering through a scheduler; it
// does not check that the rest of that packet has arrived. A zero-length
// buf is a pure readiness probe: it reports more without consuming
// anything from the ring.
func (n *NIC) Read(buf []byte) (count uint64, more bool, err error) {
	if len(buf) == 0 {
		return 0, n.rx.Desc(n.rx.Cur()).Done(), nil
	}

	nr, err := readPacket(n.rx, buf)
	if err != nil || nr == 0 {
		return 0, false, err
	}

	more = n.rx.Desc(n.rx.Cur()).Done()

	return uint64(nr), more, nil
}

// Write implements kernel.Interface, queuing buf for transmission.
func (n *NIC) Write(buf []byte) (count uint64, err error) {
	nw, err := writePacket(n.tx, buf)
	return uint64(nw), err
}
