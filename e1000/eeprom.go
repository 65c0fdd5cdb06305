// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package e1000

import (
	"github.com/usbarmory/e1000/internal/bits"
	"github.com/usbarmory/e1000/kernel"
)

const (
	eecdPresent = 8 // EE_PRES
	eecdRequest = 6 // EECD bus acquire/release bit
	eerdDone    = 4 // EERD DONE bit
)

// EEPROM drives the EECD/EERD request/poll state machine, fetching 16-bit
// words from the NIC's serial EEPROM and assembling the six-byte permanent
// MAC address.
type EEPROM struct {
	gw     *Gateway
	exists bool
}

// NewEEPROM detects whether an EEPROM is present behind gw.
func NewEEPROM(gw *Gateway) *EEPROM {
	e := &EEPROM{gw: gw}
	eecd := gw.ReadU32(regEECD)
	e.exists = bits.Get(&eecd, eecdPresent)
	return e
}

// Exists reports whether EEPROM detection found a chip.
func (e *EEPROM) Exists() bool {
	return e.exists
}

// ReadWord performs a single EEPROM read at the given 8-bit address:
// acquire the bus, issue the request, poll for DONE, release the bus.
func (e *EEPROM) ReadWord(addr uint8) uint16 {
	eecd := e.gw.ReadU32(regEECD)
	bits.Set(&eecd, eecdRequest)
	e.gw.WriteU32(regEECD, eecd)

	e.gw.WriteU32(regEERD, 1|(uint32(addr)<<8))

	var val uint32
	for {
		val = e.gw.ReadU32(regEERD)
		if bits.Get(&val, eerdDone) {
			break
		}
	}

	eecd = e.gw.ReadU32(regEECD)
	bits.Clear(&eecd, eecdRequest)
	e.gw.WriteU32(regEECD, eecd)

	return uint16(val >> 16)
}

// ReadMAC returns the permanent MAC address: from EEPROM words 0-2 if an
// EEPROM chip was detected, otherwise falling back to the receive address
// registers RAL0/RAH0, which the device always carries regardless of EEPROM
// presence.
func (e *EEPROM) ReadMAC() kernel.MAC {
	if e.exists {
		return e.readMACFromEEPROM()
	}
	return e.readMACFromRA()
}

func (e *EEPROM) readMACFromEEPROM() (mac kernel.MAC) {
	for i := 0; i < 3; i++ {
		word := e.ReadWord(uint8(i))
		mac[i*2] = byte(word)
		mac[i*2+1] = byte(word >> 8)
	}
	return
}

// readMACFromRA reads RAL0/RAH0, the first receive address register pair,
// which the device always populates with its permanent address at reset
// independently of whether a serial EEPROM is attached.
func (e *EEPROM) readMACFromRA() (mac kernel.MAC) {
	ral := e.gw.ReadU32(regRAL0)
	rah := e.gw.ReadU32(regRAH0)

	mac[0] = byte(ral)
	mac[1] = byte(ral >> 8)
	mac[2] = byte(ral >> 16)
	mac[3] = byte(ral >> 24)
	mac[4] = byte(rah)
	mac[5] = byte(rah >> 8)

	return
}
