// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package e1000

import (
	"bytes"
	"testing"

	"github.com/usbarmory/e1000/internal/dma"
)

func TestReadPacketNotDone(t *testing.T) {
	gw := newFakeGateway()
	mem := dma.NewRegion(1 << 20)

	rx, err := NewRXRing(gw, mem, rxDescCount)
	if err != nil {
		t.Fatal(err)
	}
	defer rx.Close()

	out := make([]byte, 64)

	n, err := readPacket(rx, out)
	if err != nil {
		t.Fatal(err)
	}

	if n != 0 {
		t.Errorf("readPacket() returned %d bytes from an empty ring", n)
	}

	if rx.Cur() != 0 {
		t.Errorf("Cur() advanced despite no descriptor being Done")
	}
}

func TestReadPacketDelivers(t *testing.T) {
	gw := newFakeGateway()
	mem := dma.NewRegion(1 << 20)

	rx, err := NewRXRing(gw, mem, rxDescCount)
	if err != nil {
		t.Fatal(err)
	}
	defer rx.Close()

	payload := []byte("a minimal ethernet frame")
	copy(rx.PacketBuf(0), payload)

	d := rx.Desc(0)
	setRXLength(d, uint16(len(payload)))
	d.SetStatus(rxStatusDD | rxStatusEOP)

	out := make([]byte, 1600)

	n, err := readPacket(rx, out)
	if err != nil {
		t.Fatal(err)
	}

	if n != len(payload) {
		t.Fatalf("readPacket() returned %d bytes, want %d", n, len(payload))
	}

	if !bytes.Equal(out[:n], payload) {
		t.Errorf("readPacket() payload mismatch: %q", out[:n])
	}

	if rx.Cur() != 1 {
		t.Errorf("Cur() = %d, want 1 after delivering descriptor 0", rx.Cur())
	}
}

func TestReadPacketDiscardsOnError(t *testing.T) {
	gw := newFakeGateway()
	mem := dma.NewRegion(1 << 20)

	rx, err := NewRXRing(gw, mem, rxDescCount)
	if err != nil {
		t.Fatal(err)
	}
	defer rx.Close()

	d := rx.Desc(0)
	d.buf[13] = 1 // errors byte
	d.SetStatus(rxStatusDD | rxStatusEOP)

	out := make([]byte, 64)

	n, err := readPacket(rx, out)
	if err == nil {
		t.Fatal("expected an error for a descriptor with a nonzero errors byte")
	}

	if n != 0 {
		t.Errorf("readPacket() returned %d bytes on error", n)
	}

	if rx.Cur() != 1 {
		t.Errorf("a failed descriptor must still be handed back to the ring")
	}
}

// TestReadPacketSpansMultipleDescriptors checks that a frame delivered
// across two descriptors is reassembled into a single read, stopping at
// the descriptor carrying EOP.
func TestReadPacketSpansMultipleDescriptors(t *testing.T) {
	gw := newFakeGateway()
	mem := dma.NewRegion(1 << 20)

	rx, err := NewRXRing(gw, mem, rxDescCount)
	if err != nil {
		t.Fatal(err)
	}
	defer rx.Close()

	first := bytes.Repeat([]byte{0xAA}, 1000)
	second := bytes.Repeat([]byte{0xBB}, 500)

	copy(rx.PacketBuf(0), first)
	d0 := rx.Desc(0)
	setRXLength(d0, uint16(len(first)))
	d0.SetStatus(rxStatusDD)

	copy(rx.PacketBuf(1), second)
	d1 := rx.Desc(1)
	setRXLength(d1, uint16(len(second)))
	d1.SetStatus(rxStatusDD | rxStatusEOP)

	out := make([]byte, 2048)

	n, err := readPacket(rx, out)
	if err != nil {
		t.Fatal(err)
	}

	want := append(append([]byte{}, first...), second...)

	if n != len(want) {
		t.Fatalf("readPacket() returned %d bytes, want %d", n, len(want))
	}

	if !bytes.Equal(out[:n], want) {
		t.Errorf("readPacket() payload mismatch across a descriptor boundary")
	}

	if rx.Cur() != 2 {
		t.Errorf("Cur() = %d, want 2 after consuming two descriptors", rx.Cur())
	}
}

// TestReadPacketWaitsForFullFrame checks that a packet is never delivered
// partially: if the first descriptor is Done but the device hasn't yet
// finished a later one carrying the rest of the frame, readPacket must
// return without consuming anything.
func TestReadPacketWaitsForFullFrame(t *testing.T) {
	gw := newFakeGateway()
	mem := dma.NewRegion(1 << 20)

	rx, err := NewRXRing(gw, mem, rxDescCount)
	if err != nil {
		t.Fatal(err)
	}
	defer rx.Close()

	d0 := rx.Desc(0)
	setRXLength(d0, 10)
	d0.SetStatus(rxStatusDD) // no EOP: more descriptors expected

	out := make([]byte, 64)

	n, err := readPacket(rx, out)
	if err != nil {
		t.Fatal(err)
	}

	if n != 0 {
		t.Errorf("readPacket() returned %d bytes from an incomplete frame", n)
	}

	if rx.Cur() != 0 {
		t.Errorf("Cur() advanced despite the frame not yet being fully delivered")
	}
}

func TestWritePacket(t *testing.T) {
	gw := newFakeGateway()
	mem := dma.NewRegion(1 << 20)

	tx, err := NewTXRing(gw, mem, txDescCount, 1600)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Close()

	payload := []byte("outbound frame")

	n, err := writePacket(tx, payload)
	if err != nil {
		t.Fatal(err)
	}

	if n != len(payload) {
		t.Fatalf("writePacket() returned %d, want %d", n, len(payload))
	}

	if !bytes.Equal(tx.PacketBuf(0)[:n], payload) {
		t.Errorf("writePacket() did not copy into the ring's own DMA buffer")
	}

	if tx.Cur() != 1 {
		t.Errorf("Cur() = %d, want 1 after one Submit()", tx.Cur())
	}
}

// TestWritePacketRingFull checks the documented back-pressure contract:
// when the next descriptor is still owned by the device (the ring reports
// Full), writePacket reports success with
// zero bytes written rather than an error, and leaves TDT untouched.
func TestWritePacketRingFull(t *testing.T) {
	gw := newFakeGateway()
	mem := dma.NewRegion(1 << 20)

	tx, err := NewTXRing(gw, mem, txDescCount, 1600)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Close()

	// descriptor 0 is already in flight (DD cleared by an earlier Submit
	// that the device has not yet completed).
	tx.Desc(0).SetStatus(0)

	tdt := gw.ReadU32(regTDT)

	n, err := writePacket(tx, []byte("x"))
	if err != nil {
		t.Fatalf("writePacket() on a full ring returned an error: %v", err)
	}

	if n != 0 {
		t.Errorf("writePacket() returned %d bytes on a full ring, want 0", n)
	}

	if tx.Cur() != 0 {
		t.Errorf("Cur() advanced on a full ring")
	}

	if got := gw.ReadU32(regTDT); got != tdt {
		t.Errorf("TDT changed on a full ring: %d -> %d", tdt, got)
	}
}

func TestWritePacketZeroLength(t *testing.T) {
	gw := newFakeGateway()
	mem := dma.NewRegion(1 << 20)

	tx, err := NewTXRing(gw, mem, txDescCount, 1600)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Close()

	n, err := writePacket(tx, nil)
	if err != nil {
		t.Fatal(err)
	}

	if n != 0 {
		t.Errorf("writePacket(nil) returned %d, want 0", n)
	}

	if tx.Cur() != 0 {
		t.Errorf("Cur() advanced on a zero-length write")
	}
}

// TestWritePacketChunksAcrossDescriptors mirrors a 17000-byte write against
// a 16384-byte-per-descriptor ring: it must fill two descriptors (16384 +
// 616), with EOP|IFCS on the second only.
func TestWritePacketChunksAcrossDescriptors(t *testing.T) {
	gw := newFakeGateway()
	mem := dma.NewRegion(1 << 20)

	tx, err := NewTXRing(gw, mem, txDescCount, 16384)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Close()

	payload := make([]byte, 17000)
	for i := range payload {
		payload[i] = byte(i)
	}

	n, err := writePacket(tx, payload)
	if err != nil {
		t.Fatal(err)
	}

	if n != len(payload) {
		t.Fatalf("writePacket() returned %d, want %d", n, len(payload))
	}

	if tx.Cur() != 2 {
		t.Fatalf("Cur() = %d, want 2 after a two-descriptor submit", tx.Cur())
	}

	d0, d1 := tx.Desc(0), tx.Desc(1)

	if d0.Length() != 16384 {
		t.Errorf("descriptor 0 length = %d, want 16384", d0.Length())
	}

	if d0.Cmd() != txCmdRS {
		t.Errorf("descriptor 0 cmd = %#x, want only RS", d0.Cmd())
	}

	if d1.Length() != 616 {
		t.Errorf("descriptor 1 length = %d, want 616", d1.Length())
	}

	if d1.Cmd() != txCmdRS|txCmdEOP|txCmdIFCS {
		t.Errorf("descriptor 1 cmd = %#x, want RS|EOP|IFCS", d1.Cmd())
	}

	if !bytes.Equal(tx.PacketBuf(0)[:16384], payload[:16384]) {
		t.Errorf("descriptor 0 buffer mismatch")
	}

	if !bytes.Equal(tx.PacketBuf(1)[:616], payload[16384:]) {
		t.Errorf("descriptor 1 buffer mismatch")
	}
}

// TestWritePacketWaitsForEnoughDescriptors checks that a payload needing
// more descriptors than are currently free is rejected as a whole
// (Ok(0), no partial submission) rather than splitting what fits.
func TestWritePacketWaitsForEnoughDescriptors(t *testing.T) {
	gw := newFakeGateway()
	mem := dma.NewRegion(1 << 20)

	tx, err := NewTXRing(gw, mem, txDescCount, 16384)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Close()

	tx.Desc(1).SetStatus(0) // of the two needed, only descriptor 0 is free

	n, err := writePacket(tx, make([]byte, 17000))
	if err != nil {
		t.Fatal(err)
	}

	if n != 0 {
		t.Errorf("writePacket() returned %d, want 0 when only one of two needed descriptors is free", n)
	}

	if tx.Cur() != 0 {
		t.Errorf("Cur() advanced despite insufficient free descriptors")
	}
}

// setRXLength pokes the length field the way the device would on receipt
// of a payload; RXDesc has no exported setter since real hardware, not
// driver software, populates it.
func setRXLength(d RXDesc, n uint16) {
	d.buf[8] = byte(n)
	d.buf[9] = byte(n >> 8)
}
