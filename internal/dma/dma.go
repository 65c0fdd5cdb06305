// e1000 Gigabit Ethernet driver
// https://github.com/usbarmory/e1000
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package dma provides a first-fit, buddy-order physical memory allocator
// for DMA buffers.
//
// This is the host kernel's own job in production (see the kernel package's
// Memory interface, which is all the e1000 driver actually depends on): a
// real kernel already owns the buddy allocator and the physical/virtual
// translation tables. This package gives that interface a concrete,
// self-contained implementation over a plain Go byte slice standing in for
// physical RAM, for use by tests and by any embedder that has not wired in
// its own allocator yet.
package dma

import (
	"container/list"
	"errors"
	"sync"
	"unsafe"
)

// PageSize is the allocation granularity in bytes.
const PageSize = 4096

// Region is a single physically-contiguous arena, sliced into PageSize
// pages and handed out in power-of-two runs.
type Region struct {
	mu sync.Mutex

	arena []byte
	base  uintptr // synthetic physical base address of arena[0]
	pages uintptr

	freeBlocks *list.List // of *block, ordered by phys
	usedBlocks map[uintptr]*block
}

// NewRegion allocates a Region able to satisfy requests up to size bytes,
// rounded up to a whole number of pages.
func NewRegion(size int) *Region {
	pages := (size + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}

	r := &Region{
		arena:      make([]byte, pages*PageSize),
		pages:      uintptr(pages),
		freeBlocks: list.New(),
		usedBlocks: make(map[uintptr]*block),
	}

	r.base = uintptr(unsafe.Pointer(&r.arena[0]))
	r.freeBlocks.PushFront(&block{phys: r.base, size: r.pages * PageSize})

	return r
}

// AllocPages reserves a physically contiguous run of 2^order pages and
// returns its physical address. It implements kernel.Memory.
func (r *Region) AllocPages(order uint) (phys uintptr, err error) {
	size := uintptr(PageSize) << order

	r.mu.Lock()
	defer r.mu.Unlock()

	for e := r.freeBlocks.Front(); e != nil; e = e.Next() {
		b := e.Value.(*block)

		if b.size < size {
			continue
		}

		if rem := b.size - size; rem > 0 {
			r.freeBlocks.InsertAfter(&block{phys: b.phys + size, size: rem}, e)
		}

		r.freeBlocks.Remove(e)
		r.usedBlocks[b.phys] = &block{phys: b.phys, size: size}

		return b.phys, nil
	}

	return 0, errors.New("dma: out of memory")
}

// FreePages releases a run previously returned by AllocPages. It implements
// kernel.Memory.
func (r *Region) FreePages(phys uintptr, order uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.usedBlocks[phys]
	if !ok {
		return
	}

	delete(r.usedBlocks, phys)
	r.insertFree(b)
	r.defrag()
}

// PhysToVirt translates a physical address returned by AllocPages into a
// pointer into the backing arena. It implements kernel.Memory.
func (r *Region) PhysToVirt(phys uintptr) uintptr {
	return uintptr(unsafe.Pointer(&r.arena[r.offset(phys)]))
}

// VirtToPhys is the inverse of PhysToVirt. It implements kernel.Memory.
func (r *Region) VirtToPhys(virt uintptr) uintptr {
	return r.base + (virt - uintptr(unsafe.Pointer(&r.arena[0])))
}

// Bytes returns a size-byte []byte view starting at phys, aliasing the
// backing arena, for callers that need to read or write the region directly
// rather than go through PhysToVirt and unsafe pointer arithmetic themselves.
func (r *Region) Bytes(phys uintptr, size int) []byte {
	off := r.offset(phys)
	return r.arena[off : off+uintptr(size)]
}

func (r *Region) offset(phys uintptr) uintptr {
	return phys - r.base
}

func (r *Region) insertFree(b *block) {
	for e := r.freeBlocks.Front(); e != nil; e = e.Next() {
		fb := e.Value.(*block)

		if fb.phys > b.phys {
			r.freeBlocks.InsertBefore(b, e)
			return
		}
	}

	r.freeBlocks.PushBack(b)
}

func (r *Region) defrag() {
	for e := r.freeBlocks.Front(); e != nil; {
		b := e.Value.(*block)
		next := e.Next()

		if next == nil {
			break
		}

		nb := next.Value.(*block)

		if b.phys+b.size == nb.phys {
			b.size += nb.size
			r.freeBlocks.Remove(next)
			continue
		}

		e = next
	}
}
