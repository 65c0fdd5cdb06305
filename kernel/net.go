// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package kernel

// MAC is a six-byte hardware address.
type MAC [6]byte

// BindAddress is an L3 address bound to an interface by a higher layer.
// Populated and owned by the network stack, not by the driver.
type BindAddress struct {
	Proto uint16
	Addr  []byte
}

// Interface is the contract the kernel's network-interface dispatch drives:
// name, up-status, MAC accessor, bound addresses, and the raw frame
// read/write pair. Protocol processing (ARP, IP, TCP) lives above this
// boundary, not in the driver.
type Interface interface {
	Name() string
	IsUp() bool
	MAC() MAC
	Addresses() []BindAddress

	// Read copies received frame bytes into buf, returning the number of
	// bytes copied and whether more data is already available to a
	// subsequent call.
	Read(buf []byte) (n uint64, more bool, err error)
	// Write submits buf for transmission, returning the number of bytes
	// accepted. A buf larger than one descriptor's buffer is split across
	// several descriptors. If the ring lacks enough free descriptors for
	// the whole of buf, nothing is queued and n is 0 with a nil err; the
	// caller is expected to retry later.
	Write(buf []byte) (n uint64, err error)
}

// Memory is the physical-memory allocator and address-translation service
// the host kernel provides. A device driver never allocates raw memory
// itself; it asks Memory for DMA-safe, physically contiguous regions and
// translates between the kernel-mapped pointer it is given and the
// physical address it must program into device registers.
//
// Order follows the buddy-allocator convention: a region of 2^order pages
// is allocated.
type Memory interface {
	AllocPages(order uint) (phys uintptr, err error)
	FreePages(phys uintptr, order uint)

	// PhysToVirt and VirtToPhys translate between a physical address and
	// the kernel-mapped pointer backing it. Both operate on addresses
	// returned by AllocPages.
	PhysToVirt(phys uintptr) uintptr
	VirtToPhys(virt uintptr) uintptr
}
