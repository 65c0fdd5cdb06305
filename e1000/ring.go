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
	"unsafe"

	"github.com/usbarmory/e1000/kernel"
)

// pageSize is the allocation granularity assumed of any kernel.Memory
// implementation, matching internal/dma.PageSize.
const pageSize = 4096

const (
	rxDescCount = 32
	txDescCount = 32
	rxBufSize   = 16384
	txBufSize   = 16384
)

// RCTL bits. BSEX paired with a BSIZE field of 0b01 selects the 16 KiB
// buffer size rxBufSize is sized for; BSIZE's meaning without BSEX is
// entirely different, so rctlBSIZE16 is only ever written together with
// rctlBSEX.
const (
	rctlEN      = 1 << 1  // Receiver Enable
	rctlUPE     = 1 << 3  // Unicast Promiscuous Enable
	rctlMPE     = 1 << 4  // Multicast Promiscuous Enable
	rctlBAM     = 1 << 15 // Broadcast Accept Mode
	rctlBSIZE16 = 0b01 << 16
	rctlBSEX    = 1 << 25 // Buffer Size Extension
)

// TCTL bits.
const (
	tctlEN   = 1 << 1 // Transmitter Enable
	tctlPSP  = 1 << 3 // Pad Short Packets
	tctlCT   = 0xF << 4
	tctlCOLD = 0x200 << 12
)

// tipgDefault is the Transmit Inter Packet Gap value for full-duplex
// 802.3 copper operation, matching QEMU and VMware's emulated e1000.
const tipgDefault = 0x0060200A

func orderFor(size uintptr) uint {
	pages := (size + pageSize - 1) / pageSize

	order := uint(0)
	for (uintptr(1) << order) < pages {
		order++
	}

	return order
}

func bytesAt(mem kernel.Memory, phys uintptr, size int) []byte {
	virt := mem.PhysToVirt(phys)
	return unsafe.Slice((*byte)(unsafe.Pointer(virt)), size)
}

// RXRing is the receive ring: a descriptor array and a sibling packet
// buffer arena, both allocated through kernel.Memory and programmed into
// RDBAL/RDBAH/RDLEN/RDH/RDT.
type RXRing struct {
	gw  *Gateway
	mem kernel.Memory

	descPhys  uintptr
	descOrder uint
	descBuf   []byte

	bufPhys  uintptr
	bufOrder uint

	count int
	cur   int
}

// NewRXRing allocates and programs a receive ring of count descriptors.
// count*descSize must be a multiple of 128.
func NewRXRing(gw *Gateway, mem kernel.Memory, count int) (*RXRing, error) {
	if count <= 0 || (count*descSize)%128 != 0 {
		return nil, errors.New("e1000: rx descriptor count must make a 128-byte multiple")
	}

	descSizeBytes := uintptr(count * descSize)
	descOrder := orderFor(descSizeBytes)

	descPhys, err := mem.AllocPages(descOrder)
	if err != nil {
		return nil, err
	}

	bufSizeBytes := uintptr(count * rxBufSize)
	bufOrder := orderFor(bufSizeBytes)

	bufPhys, err := mem.AllocPages(bufOrder)
	if err != nil {
		mem.FreePages(descPhys, descOrder)
		return nil, err
	}

	r := &RXRing{
		gw:        gw,
		mem:       mem,
		descPhys:  descPhys,
		descOrder: descOrder,
		descBuf:   bytesAt(mem, descPhys, int(descSizeBytes)),
		bufPhys:   bufPhys,
		bufOrder:  bufOrder,
		count:     count,
	}

	for i := 0; i < count; i++ {
		d := r.Desc(i)
		d.SetAddr(uint64(bufPhys) + uint64(i*rxBufSize))
		d.SetStatus(0)
	}

	r.program()

	return r, nil
}

func (r *RXRing) program() {
	r.gw.WriteU32(regRDBAL, uint32(r.descPhys))
	r.gw.WriteU32(regRDBAH, uint32(uint64(r.descPhys)>>32))
	r.gw.WriteU32(regRDLEN, uint32(r.count*descSize))
	r.gw.WriteU32(regRDH, 0)
	r.gw.WriteU32(regRDT, uint32(r.count-1))

	r.gw.WriteU32(regRCTL, rctlEN|rctlUPE|rctlMPE|rctlBAM|rctlBSEX|rctlBSIZE16)
}

// Desc returns the descriptor at ring index i, modulo the ring size.
func (r *RXRing) Desc(i int) RXDesc {
	i %= r.count
	return RXDesc{buf: r.descBuf[i*descSize : (i+1)*descSize]}
}

// PacketBuf returns the packet buffer backing descriptor i.
func (r *RXRing) PacketBuf(i int) []byte {
	i %= r.count
	return bytesAt(r.mem, r.bufPhys+uintptr(i*rxBufSize), rxBufSize)
}

// Cur returns the index of the next descriptor the driver expects the NIC
// to have filled.
func (r *RXRing) Cur() int { return r.cur }

// Advance hands the current descriptor back to the NIC by clearing its
// status and moving RDT forward, then advances the software cursor.
func (r *RXRing) Advance() {
	d := r.Desc(r.cur)
	d.SetStatus(0)

	r.gw.WriteU32(regRDT, uint32(r.cur))
	r.cur = (r.cur + 1) % r.count
}

// Close releases the ring's backing memory.
func (r *RXRing) Close() {
	r.gw.WriteU32(regRCTL, 0)
	r.mem.FreePages(r.bufPhys, r.bufOrder)
	r.mem.FreePages(r.descPhys, r.descOrder)
}

// TXRing is the Ring Manager's transmit side.
type TXRing struct {
	gw  *Gateway
	mem kernel.Memory

	descPhys  uintptr
	descOrder uint
	descBuf   []byte

	bufPhys  uintptr
	bufOrder uint
	bufSize  int

	count int
	cur   int
}

// NewTXRing allocates and programs a transmit ring of count descriptors,
// each backed by a bufSize-byte DMA buffer that outgoing packets are
// copied into before submission.
func NewTXRing(gw *Gateway, mem kernel.Memory, count int, bufSize int) (*TXRing, error) {
	if count <= 0 || (count*descSize)%128 != 0 {
		return nil, errors.New("e1000: tx descriptor count must make a 128-byte multiple")
	}

	descSizeBytes := uintptr(count * descSize)
	descOrder := orderFor(descSizeBytes)

	descPhys, err := mem.AllocPages(descOrder)
	if err != nil {
		return nil, err
	}

	bufSizeBytes := uintptr(count * bufSize)
	bufOrder := orderFor(bufSizeBytes)

	bufPhys, err := mem.AllocPages(bufOrder)
	if err != nil {
		mem.FreePages(descPhys, descOrder)
		return nil, err
	}

	t := &TXRing{
		gw:        gw,
		mem:       mem,
		descPhys:  descPhys,
		descOrder: descOrder,
		descBuf:   bytesAt(mem, descPhys, int(descSizeBytes)),
		bufPhys:   bufPhys,
		bufOrder:  bufOrder,
		bufSize:   bufSize,
		count:     count,
	}

	for i := 0; i < count; i++ {
		d := t.Desc(i)
		d.SetAddr(uint64(bufPhys) + uint64(i*bufSize))
		d.SetStatus(txStatusDD)
	}

	t.program()

	return t, nil
}

func (t *TXRing) program() {
	t.gw.WriteU32(regTDBAL, uint32(t.descPhys))
	t.gw.WriteU32(regTDBAH, uint32(uint64(t.descPhys)>>32))
	t.gw.WriteU32(regTDLEN, uint32(t.count*descSize))
	t.gw.WriteU32(regTDH, 0)
	t.gw.WriteU32(regTDT, 0)
	t.gw.WriteU32(regTIPG, tipgDefault)

	t.gw.WriteU32(regTCTL, tctlEN|tctlPSP|tctlCT|tctlCOLD)
}

// Desc returns the descriptor at ring index i, modulo the ring size.
func (t *TXRing) Desc(i int) TXDesc {
	i %= t.count
	return TXDesc{buf: t.descBuf[i*descSize : (i+1)*descSize]}
}

// PacketBuf returns the DMA buffer backing descriptor i.
func (t *TXRing) PacketBuf(i int) []byte {
	i %= t.count
	return bytesAt(t.mem, t.bufPhys+uintptr(i*t.bufSize), t.bufSize)
}

// Cur returns the index of the next descriptor available for transmission.
func (t *TXRing) Cur() int { return t.cur }

// BufSize returns the per-descriptor DMA buffer size.
func (t *TXRing) BufSize() int { return t.bufSize }

// Full reports whether the descriptor the driver would use next is still
// owned by the NIC (DD not yet set).
func (t *TXRing) Full() bool {
	return !t.Free(1)
}

// Free reports whether the next n descriptors starting at the current
// cursor are all owned by software (DD set), i.e. an n-descriptor packet
// can be submitted without touching the ring.
func (t *TXRing) Free(n int) bool {
	for i := 0; i < n; i++ {
		if !t.Desc(t.cur + i).Done() {
			return false
		}
	}

	return true
}

// Submit marks the current descriptor ready for transmission with length
// bytes of payload, advances TDT, and moves the software cursor forward.
// eop marks the descriptor as the last of a packet, setting EOP and IFCS
// alongside RS; every other descriptor of a multi-descriptor packet carries
// RS alone.
func (t *TXRing) Submit(length int, eop bool) {
	d := t.Desc(t.cur)
	d.SetLength(uint16(length))

	cmd := uint8(txCmdRS)
	if eop {
		cmd |= txCmdEOP | txCmdIFCS
	}
	d.SetCmd(cmd)
	d.SetStatus(0)

	t.cur = (t.cur + 1) % t.count
	t.gw.WriteU32(regTDT, uint32(t.cur))
}

// Close releases the ring's backing memory.
func (t *TXRing) Close() {
	t.gw.WriteU32(regTCTL, 0)
	t.mem.FreePages(t.bufPhys, t.bufOrder)
	t.mem.FreePages(t.descPhys, t.descOrder)
}
