package mem

import (
	"bytes"
	"strings"
	"testing"
	"unsafe"
)

func TestMallocStaysInsideSlab(t *testing.T) {
	h := New(256)
	p := h.Malloc(24)
	if p == nil {
		t.Fatal("allocation failed on a fresh heap")
	}

	base := uintptr(unsafe.Pointer(&h.words[0]))
	off := uintptr(p) - base
	if off%WordSize != 0 {
		t.Errorf("payload at offset %d is not word aligned", off)
	}
	if off+24 > uintptr(len(h.words))*WordSize {
		t.Errorf("payload at offset %d overruns the slab", off)
	}
}

func TestMallocRoundsUpToWords(t *testing.T) {
	h := New(64)
	p := h.Malloc(1)
	if p == nil {
		t.Fatal("allocation failed")
	}
	// one payload word plus one header word
	if got := h.words[0] >> 1; got != 1 {
		t.Errorf("1-byte request got %d payload words, want 1", got)
	}
}

func TestMallocExhaustionReturnsNil(t *testing.T) {
	h := New(32) // one header plus three payload words
	if p := h.Malloc(32); p != nil {
		t.Error("request larger than the slab succeeded")
	}
	if p := h.Malloc(24); p == nil {
		t.Fatal("exact-fit request failed")
	}
	if p := h.Malloc(1); p != nil {
		t.Error("allocation succeeded on a full heap")
	}
}

func TestMallocRejectsNonPositiveSizes(t *testing.T) {
	h := New(64)
	if p := h.Malloc(0); p != nil {
		t.Error("zero-byte request returned a pointer")
	}
	if p := h.Malloc(-8); p != nil {
		t.Error("negative request returned a pointer")
	}
}

func TestSequentialAllocationsAreOneHeaderApart(t *testing.T) {
	h := New(256)
	p1 := h.Malloc(1)
	p2 := h.Malloc(1)
	if p1 == nil || p2 == nil {
		t.Fatal("allocation failed")
	}
	if gap := uintptr(p2) - uintptr(p1); gap != 2*WordSize {
		t.Errorf("gap between sequential 1-byte blocks is %d, want %d", gap, 2*WordSize)
	}
}

func TestFreeMakesRoomAgain(t *testing.T) {
	h := New(32)
	p := h.Malloc(24)
	if p == nil {
		t.Fatal("allocation failed")
	}
	h.Free(p)
	if q := h.Malloc(24); q == nil {
		t.Error("allocation failed after freeing the whole heap")
	}
}

func TestFreeCoalescesNeighbors(t *testing.T) {
	h := New(64)
	a := h.Malloc(8)
	b := h.Malloc(8)
	c := h.Malloc(8)
	if a == nil || b == nil || c == nil {
		t.Fatal("allocation failed")
	}
	h.Free(a)
	h.Free(c)
	h.Free(b)

	// seven payload words are usable only if all chunks merged back
	if p := h.Malloc(56); p == nil {
		t.Error("coalescing left the heap fragmented")
	}
}

func TestMallocZeroesRecycledMemory(t *testing.T) {
	h := New(64)
	p := h.Malloc(8)
	if p == nil {
		t.Fatal("allocation failed")
	}
	*(*uint64)(p) = 0xDEADBEEF
	h.Free(p)

	q := h.Malloc(8)
	if q == nil {
		t.Fatal("allocation failed")
	}
	if v := *(*uint64)(q); v != 0 {
		t.Errorf("recycled payload reads %#x, want 0", v)
	}
}

func TestDoubleFreePanics(t *testing.T) {
	h := New(64)
	p := h.Malloc(8)
	h.Free(p)
	defer func() {
		if recover() == nil {
			t.Error("double free did not panic")
		}
	}()
	h.Free(p)
}

func TestFreeForeignPointerPanics(t *testing.T) {
	h := New(64)
	var outside uint64
	defer func() {
		if recover() == nil {
			t.Error("freeing a foreign pointer did not panic")
		}
	}()
	h.Free(unsafe.Pointer(&outside))
}

func TestDumpShowsChunkStates(t *testing.T) {
	h := New(64)
	if p := h.Malloc(8); p == nil {
		t.Fatal("allocation failed")
	}

	var buf bytes.Buffer
	h.Dump(&buf)
	if got := strings.TrimRight(buf.String(), "\n"); got != "AAbbbbbb" {
		t.Errorf("block map %q, want %q", got, "AAbbbbbb")
	}
}

func TestDumpReportsCorruptedHeader(t *testing.T) {
	h := New(64)
	if p := h.Malloc(8); p == nil {
		t.Fatal("allocation failed")
	}
	h.words[2] = 0x0303030303030303 // stomp the next chunk's header

	var buf bytes.Buffer
	h.Dump(&buf)
	if !strings.Contains(buf.String(), "corrupted chunk header") {
		t.Errorf("dump did not report corruption: %q", buf.String())
	}
}
