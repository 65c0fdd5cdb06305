// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dma

// block is a single free or allocated run of pages within a Region's
// backing arena, addressed by its synthetic physical address (the arena's
// physical base plus the run's offset into it).
type block struct {
	phys uintptr
	size uintptr
}
