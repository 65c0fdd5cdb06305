// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package reg

// In32 and Out32 are the port I/O primitives for the BAR0-as-I/O-space
// fallback path: they issue the x86 IN/OUT instructions and cannot be
// expressed in portable Go. Defined in port_amd64.s.
//
// These exist only to let the Register Gateway (see e1000/registers.go)
// talk to a legacy port-mapped BAR0; every other register access in this
// driver goes through the volatile MMIO loads/stores in reg.go instead.
func In32(port uint16) (val uint32)
func Out32(port uint16, val uint32)
