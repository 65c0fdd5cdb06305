// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package e1000

import "testing"

func TestRXDescFields(t *testing.T) {
	d := RXDesc{buf: make([]byte, descSize)}

	d.SetAddr(0x1122334455667788)
	if got := d.Addr(); got != 0x1122334455667788 {
		t.Errorf("Addr() = %#x, want %#x", got, 0x1122334455667788)
	}

	if d.Done() || d.EndOfPacket() || d.HasError() {
		t.Errorf("freshly zeroed descriptor should report no flags set")
	}

	d.SetStatus(rxStatusDD | rxStatusEOP)

	if !d.Done() || !d.EndOfPacket() {
		t.Errorf("status bits not reflected: %#x", d.Status())
	}
}

func TestTXDescFields(t *testing.T) {
	d := TXDesc{buf: make([]byte, descSize)}

	d.SetAddr(0xaabbccdd)
	d.SetLength(64)
	d.SetCmd(txCmdEOP | txCmdIFCS | txCmdRS)

	if got := d.Addr(); got != 0xaabbccdd {
		t.Errorf("Addr() = %#x, want %#x", got, 0xaabbccdd)
	}

	if got := d.Length(); got != 64 {
		t.Errorf("Length() = %d, want 64", got)
	}

	if d.Done() {
		t.Errorf("descriptor should not be Done before the device reports it")
	}

	d.SetStatus(txStatusDD)

	if !d.Done() {
		t.Errorf("Done() false after setting txStatusDD")
	}
}
