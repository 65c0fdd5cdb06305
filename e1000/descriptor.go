// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package e1000

import "encoding/binary"

// descSize is the size in bytes of both descriptor formats. A ring's total
// length in bytes must be a multiple of 128, so descriptor counts are
// always multiples of 8.
const descSize = 16

// Receive descriptor status bits.
const (
	rxStatusDD  = 1 << 0 // Descriptor Done
	rxStatusEOP = 1 << 1 // End Of Packet
)

// Transmit descriptor command bits.
const (
	txCmdEOP  = 1 << 0 // End Of Packet
	txCmdIFCS = 1 << 1 // Insert FCS
	txCmdRS   = 1 << 3 // Report Status
)

// Transmit descriptor status bits.
const txStatusDD = 1 << 0 // Descriptor Done

// RXDesc is a typed view over one 16-byte receive descriptor slot.
// Descriptor fields are not expressed as a Go struct with unsafe pointer
// casts: the hardware layout is fixed and must not gain compiler-inserted
// padding, so every field is read and written through explicit
// little-endian byte accessors against the raw DMA-backed slice instead.
// buf is always exactly descSize bytes, a slice into the ring's backing
// arena.
type RXDesc struct {
	buf []byte
}

func (d RXDesc) Addr() uint64        { return binary.LittleEndian.Uint64(d.buf[0:8]) }
func (d RXDesc) SetAddr(v uint64)    { binary.LittleEndian.PutUint64(d.buf[0:8], v) }
func (d RXDesc) Length() uint16      { return binary.LittleEndian.Uint16(d.buf[8:10]) }
func (d RXDesc) Checksum() uint16    { return binary.LittleEndian.Uint16(d.buf[10:12]) }
func (d RXDesc) Status() uint8       { return d.buf[12] }
func (d RXDesc) SetStatus(v uint8)   { d.buf[12] = v }
func (d RXDesc) Errors() uint8       { return d.buf[13] }
func (d RXDesc) Special() uint16     { return binary.LittleEndian.Uint16(d.buf[14:16]) }
func (d RXDesc) Done() bool          { return d.Status()&rxStatusDD != 0 }
func (d RXDesc) EndOfPacket() bool   { return d.Status()&rxStatusEOP != 0 }
func (d RXDesc) HasError() bool      { return d.Errors() != 0 }

// TXDesc is the transmit-side counterpart of RXDesc.
type TXDesc struct {
	buf []byte
}

func (d TXDesc) Addr() uint64      { return binary.LittleEndian.Uint64(d.buf[0:8]) }
func (d TXDesc) SetAddr(v uint64)  { binary.LittleEndian.PutUint64(d.buf[0:8], v) }
func (d TXDesc) Length() uint16    { return binary.LittleEndian.Uint16(d.buf[8:10]) }
func (d TXDesc) SetLength(v uint16) {
	binary.LittleEndian.PutUint16(d.buf[8:10], v)
}
func (d TXDesc) CSO() uint8       { return d.buf[10] }
func (d TXDesc) SetCSO(v uint8)   { d.buf[10] = v }
func (d TXDesc) Cmd() uint8       { return d.buf[11] }
func (d TXDesc) SetCmd(v uint8)   { d.buf[11] = v }
func (d TXDesc) Status() uint8    { return d.buf[12] }
func (d TXDesc) SetStatus(v uint8) { d.buf[12] = v }
func (d TXDesc) CSS() uint8       { return d.buf[13] }
func (d TXDesc) SetCSS(v uint8)   { d.buf[13] = v }
func (d TXDesc) Special() uint16  { return binary.LittleEndian.Uint16(d.buf[14:16]) }
func (d TXDesc) Done() bool       { return d.Status()&txStatusDD != 0 }
