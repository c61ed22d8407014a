// Package mem implements a tiny malloc-style allocator over a fixed slab.
//
// The allocator exists because the demonstrations in this repository need
// what Go's runtime refuses to provide: an allocation call that hands out
// exactly the number of bytes asked for, places blocks deterministically
// next to each other, and signals exhaustion by returning nil instead of
// panicking. Chunk headers live inline in the slab, one word before each
// payload, so writes past the end of an undersized block land on the
// allocator's own bookkeeping.
package mem

import (
	"fmt"
	"io"
	"unsafe"
)

// WordSize is the allocation granularity in bytes.
const WordSize = 8

const usedBit = 1

// Heap is a fixed-size slab carved into a chain of chunks. Every chunk is
// a one-word header followed by its payload; the header stores the payload
// size in words shifted left once, with the low bit marking the chunk used.
type Heap struct {
	words []uint64
}

// New returns a heap over a fresh slab of the given size in bytes. The
// size is rounded down to whole words and must leave room for at least one
// header and one payload word.
func New(size int) *Heap {
	n := size / WordSize
	if n < 2 {
		panic("mem: heap too small")
	}
	h := &Heap{words: make([]uint64, n)}
	h.words[0] = uint64(n-1) << 1
	return h
}

// Malloc hands out a pointer to n bytes, or nil when no free chunk can
// serve the request. The payload is word-aligned and zeroed.
func (h *Heap) Malloc(n int) unsafe.Pointer {
	if n <= 0 {
		return nil
	}
	need := (n + WordSize - 1) / WordSize

	i := 0
	for i < len(h.words) {
		size, used, ok := h.chunk(i)
		if !ok {
			// The chain is damaged past this point; nothing
			// behind it can be trusted to be free.
			return nil
		}
		if !used && size >= need {
			if size-need >= 2 {
				h.words[i+1+need] = uint64(size-need-1) << 1
				size = need
			}
			h.words[i] = uint64(size)<<1 | usedBit
			for j := i + 1; j <= i+size; j++ {
				h.words[j] = 0
			}
			return unsafe.Pointer(&h.words[i+1])
		}
		i += 1 + size
	}
	return nil
}

// Free returns the chunk holding p to the heap and merges adjacent free
// chunks. Freeing a pointer that is not the start of a live payload
// panics.
func (h *Heap) Free(p unsafe.Pointer) {
	i := h.index(p) - 1
	size, used, ok := h.chunk(i)
	if !ok || !used {
		panic("mem: free of unallocated block")
	}
	h.words[i] = uint64(size) << 1
	h.coalesce()
}

// Dump writes a block map of the slab: one letter per word, a new letter
// per chunk, upper case while the chunk is in use. When the walk runs into
// a header that cannot be right it says so and stops; a demonstration that
// scribbles past its allocation ends up here.
func (h *Heap) Dump(w io.Writer) {
	var n rune
	i := 0
	for i < len(h.words) {
		size, used, ok := h.chunk(i)
		if !ok {
			fmt.Fprintf(w, "!! corrupted chunk header at word %d: %#x\n", i, h.words[i])
			return
		}
		c := 'a' + n
		if used {
			c = 'A' + n
		}
		for j := 0; j <= size; j++ {
			fmt.Fprintf(w, "%c", c)
		}
		n = (n + 1) % 26
		i += 1 + size
	}
	fmt.Fprintln(w)
}

// chunk decodes the header at word i. ok is false when the header cannot
// describe a chunk that fits in the slab.
func (h *Heap) chunk(i int) (size int, used bool, ok bool) {
	hdr := h.words[i]
	size = int(hdr >> 1)
	if size <= 0 || size > len(h.words) || i+1+size > len(h.words) {
		return 0, false, false
	}
	return size, hdr&usedBit != 0, true
}

func (h *Heap) coalesce() {
	i := 0
	for i < len(h.words) {
		size, used, ok := h.chunk(i)
		if !ok {
			return
		}
		next := i + 1 + size
		if !used && next < len(h.words) {
			nsize, nused, nok := h.chunk(next)
			if nok && !nused {
				h.words[i] = uint64(size+1+nsize) << 1
				continue // the chunk after that one may be free too
			}
		}
		i = next
	}
}

// index maps p back to its payload's first word. It panics when p does not
// point at a word inside the slab.
func (h *Heap) index(p unsafe.Pointer) int {
	base := uintptr(unsafe.Pointer(&h.words[0]))
	off := uintptr(p) - base
	if off%WordSize != 0 || off >= uintptr(len(h.words))*WordSize {
		panic("mem: pointer outside heap")
	}
	return int(off / WordSize)
}
