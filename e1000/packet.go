// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package e1000

import "github.com/usbarmory/e1000/kernel"

// readPacket drains the receive ring. It never blocks: if the descriptors
// making up the next packet are not all Done yet, it returns immediately
// with zero bytes and no error without consuming anything. One call
// returns at most one packet, walking consecutive descriptors from the
// cursor until it reaches the one carrying the EOP status bit, rather than
// splicing a multi-descriptor packet across calls or truncating it at the
// first descriptor.
func readPacket(rx *RXRing, out []byte) (n int, err error) {
	span, hasError := 0, false

	for {
		if span >= rx.count {
			return 0, nil
		}

		d := rx.Desc(rx.Cur() + span)
		if !d.Done() {
			return 0, nil
		}

		span++

		if d.HasError() {
			hasError = true
		}

		if d.EndOfPacket() {
			break
		}
	}

	for i := 0; i < span; i++ {
		d := rx.Desc(rx.Cur())

		if !hasError {
			length := int(d.Length())
			buf := rx.PacketBuf(rx.Cur())

			if length > len(buf) {
				length = len(buf)
			}

			if room := len(out) - n; room > 0 {
				if length > room {
					length = room
				}
				n += copy(out[n:], buf[:length])
			}
		}

		rx.Advance()
	}

	if hasError {
		return 0, kernel.EIO
	}

	return n, nil
}

// writePacket feeds the transmit ring. The caller's buffer is copied into
// the ring's own DMA arena before any descriptor is submitted, so the
// caller's slice may be reused the instant this returns. Payloads larger
// than one descriptor's buffer are split across as many consecutive
// descriptors as needed, with the EOP command bit set only on the last
// one. If the ring does not currently have enough free descriptors to
// hold the whole payload, nothing is submitted and writePacket returns
// (0, nil): this is documented back-pressure, not a failure.
func writePacket(tx *TXRing, data []byte) (n int, err error) {
	if len(data) == 0 {
		return 0, nil
	}

	bufSize := tx.BufSize()
	need := (len(data) + bufSize - 1) / bufSize

	if !tx.Free(need) {
		return 0, nil
	}

	for len(data) > 0 {
		chunk := data
		if len(chunk) > bufSize {
			chunk = chunk[:bufSize]
		}

		copy(tx.PacketBuf(tx.Cur()), chunk)
		tx.Submit(len(chunk), len(chunk) == len(data))

		n += len(chunk)
		data = data[len(chunk):]
	}

	return n, nil
}
