// Package demo holds the demonstrations: straight-line routines that
// allocate less memory than a record needs, write through it anyway, and
// narrate what comes back out. Nothing here is a bug to be fixed; the
// misuse is the subject matter. All reinterpretation of raw bytes is kept
// in unsafe.go.
package demo

import (
	"errors"
	"fmt"
	"io"

	"malloc-roulette/mem"
)

// ErrOutOfMemory is returned when the slab cannot serve a demonstration's
// allocation. It is the only failure the demonstrations recognize.
var ErrOutOfMemory = errors.New("out of memory")

// Object is the two-field victim record. Unsigned fields let the
// narration spell fun words with hex literals.
type Object struct {
	Field1 uint32
	Field2 uint32
}

// Wide is the twenty-field victim record for the extreme demonstration.
type Wide struct {
	Field1  int64
	Field2  int64
	Field3  int64
	Field4  int64
	Field5  int64
	Field6  int64
	Field7  int64
	Field8  int64
	Field9  int64
	Field10 int64
	Field11 int64
	Field12 int64
	Field13 int64
	Field14 int64
	Field15 int64
	Field16 int64
	Field17 int64
	Field18 int64
	Field19 int64
	Field20 int64
}

// rouletteBytes is what the extreme demonstration actually allocates for a
// Wide. Small enough to be absurd, large enough that the overflow stays
// inside the demo's own slab instead of the Go heap.
const rouletteBytes = 16

// IntAdjacency allocates a single byte for each of two 32-bit integers
// and reports whether the allocator happened to place the blocks back to
// back. It does not try to control that; the outcome is an observation.
func IntAdjacency(h *mem.Heap, w io.Writer) error {
	fmt.Fprintln(w, "Let's try to allocate just one byte for integers.")

	// This isn't safe for a pretty obvious reason: a uint32 view over a
	// 1-byte block claims 4 bytes that were never ours. Whether writes
	// through it collide with anything depends on what the allocator
	// put next door.
	raw1 := h.Malloc(1)
	if raw1 == nil {
		return fmt.Errorf("int demo: %w", ErrOutOfMemory)
	}
	p1 := u32At(raw1)

	raw2 := h.Malloc(1)
	if raw2 == nil {
		return fmt.Errorf("int demo: %w", ErrOutOfMemory)
	}
	p2 := u32At(raw2)

	fmt.Fprintf(w, "Address of p1: %p\n", p1)
	fmt.Fprintf(w, "Address of p2: %p\n", p2)

	if uintptr(raw1)+1 == uintptr(raw2) {
		fmt.Fprintln(w, "p1 and p2 magically landed next to each other!")
	} else {
		fmt.Fprintln(w, "p1 and p2 are not immediately next to each other.")
		fmt.Fprintf(w, "The allocator left %d bytes between them.\n", uintptr(raw2)-uintptr(raw1)-1)
	}

	h.Free(raw1)
	h.Free(raw2)
	return nil
}

// ObjectOverlap allocates an Object and a half, plants two Object views
// on the block four bytes apart, and shows how writes through one corrupt
// the other. The aliasing is exact: p1.Field2 and p2.Field1 are the same
// four bytes.
func ObjectOverlap(h *mem.Heap, w io.Writer) error {
	fmt.Fprintln(w, "Let's try allocating the wrong size when using")
	fmt.Fprintln(w, "a struct, guaranteeing that the objects are next")
	fmt.Fprintln(w, "to each other in memory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Let's \"fake it 'till we make it\". We'll first allocate a block")
	fmt.Fprintln(w, "with enough space for an entire Object (and a half). This is")
	fmt.Fprintln(w, "completely legal. But then we'll overlap two views on it to")
	fmt.Fprintln(w, "simulate what it'd be like if we only allocated half the space")
	fmt.Fprintln(w, "necessary for the second Object.")

	fmt.Fprintf(w, "We'll allocate %d bytes for the block.\n", objectSize+objectSize/2)
	raw := h.Malloc(int(objectSize + objectSize/2))
	if raw == nil {
		return fmt.Errorf("object demo: %w", ErrOutOfMemory)
	}

	fmt.Fprintln(w, "Now that we have the block, let's plant the second view halfway in.")
	p1 := objectAt(raw, 0)
	p2 := objectAt(raw, objectSize/2)

	fmt.Fprintf(w, "Address of p1: %p\n", p1)
	fmt.Fprintf(w, "Address of p2: %p\n", p2)

	fmt.Fprintln(w, "Initialize fields on p1:")
	fmt.Fprintln(w, " > p1.Field1: 0x12341234")
	fmt.Fprintln(w, " > p1.Field2: 0x56785678")

	p1.Field1 = 0x12341234
	p1.Field2 = 0x56785678

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Inspect values of p1:")
	fmt.Fprintf(w, " > p1.Field1: %#x\n", p1.Field1)
	fmt.Fprintf(w, " > p1.Field2: %#x\n", p1.Field2)

	fmt.Fprintln(w, "Now for the dangerous part: we'll poke the fields on p2.")
	fmt.Fprintln(w, "Initialize fields on p2:")
	fmt.Fprintln(w, " > p2.Field1: 0xdeadbeef")
	fmt.Fprintln(w, " > p2.Field2: 0x8badf00d")

	p2.Field1 = 0xDEADBEEF
	p2.Field2 = 0x8BADF00D

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Inspect values of p2:")
	fmt.Fprintf(w, " > p2.Field1: %#x\n", p2.Field1)
	fmt.Fprintf(w, " > p2.Field2: %#x\n", p2.Field2)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Great, looks like everything on p2 is set properly.")
	fmt.Fprintln(w, "Let's double-check everything to make sure everything's in order.")
	fmt.Fprintf(w, " > p1.Field1: %#x\n", p1.Field1)
	fmt.Fprintf(w, " > p1.Field2: %#x\n", p1.Field2)
	fmt.Fprintf(w, " > p2.Field1: %#x\n", p2.Field1)
	fmt.Fprintf(w, " > p2.Field2: %#x\n", p2.Field2)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Well that can't be right...")
	fmt.Fprintln(w, "Let's poke p1 again...")
	fmt.Fprintln(w, " > Set p1.Field2 to 0xfeedc0de")

	p1.Field2 = 0xFEEDC0DE

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Now let's look again...")
	fmt.Fprintf(w, " > p1.Field1: %#x\n", p1.Field1)
	fmt.Fprintf(w, " > p1.Field2: %#x\n", p1.Field2)
	fmt.Fprintf(w, " > p2.Field1: %#x\n", p2.Field1)
	fmt.Fprintf(w, " > p2.Field2: %#x\n", p2.Field2)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Let's look at a memory layout (using dummy addresses).")
	fmt.Fprint(w,
		"/-----|-----|-----|-----|-----|-----|-----|-----|-----|-----|-----|-----\\\n",
		"| 0x1 | 0x2 | 0x3 | 0x4 | 0x5 | 0x6 | 0x7 | 0x8 | 0x9 | 0xA | 0xB | 0xC |\n",
		"|-----|-----|-----|-----|-----|-----|-----|-----|-----|-----|-----|-----|\n",
		"|                  <--  p1  -->                 |                       |\n",
		"|                       |                  <--  p2  -->                 |\n",
		"\\-----|-----|-----|-----|-----|-----|-----|-----|-----|-----|-----|-----/\n",
	)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "In this diagram, p1 and p2 are laid on top of each other.")
	fmt.Fprintln(w, "Let's look at where each field is.")
	fmt.Fprint(w,
		"/-----|-----|-----|-----|-----|-----|-----|-----|-----|-----|-----|-----\\\n",
		"| 0x1 | 0x2 | 0x3 | 0x4 | 0x5 | 0x6 | 0x7 | 0x8 | 0x9 | 0xA | 0xB | 0xC |\n",
		"|-----|-----|-----|-----|-----|-----|-----|-----|-----|-----|-----|-----|\n",
		"|       p1.Field1       |       p1.Field2       |                       |\n",
		"|                       |       p2.Field1       |       p2.Field2       |\n",
		"\\-----|-----|-----|-----|-----|-----|-----|-----|-----|-----|-----|-----/\n",
	)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "p1.Field2 and p2.Field1 share the same memory.")
	fmt.Fprintln(w, "Any changes to p1.Field2 are reflected in p2.Field1 and vice versa.")

	// Danger: p1 and p2 can't be trusted as names for the memory we
	// allocated. Only the pointer the allocator handed out goes back.
	h.Free(raw)
	return nil
}

// WideRoulette allocates a tenth of what a Wide needs, writes all twenty
// fields, and reads them back. Nothing stops the writes; they run
// straight over whatever lives behind the block. Silent corruption or a
// crash, depending on the neighborhood.
func WideRoulette(h *mem.Heap, w io.Writer) error {
	fmt.Fprintf(w, "A Wide record needs %d bytes. We'll allocate %d and write\n", wideSize, rouletteBytes)
	fmt.Fprintln(w, "every field anyway. Whether that corrupts something important")
	fmt.Fprintln(w, "or nothing you'd ever notice is up to whatever happens to live")
	fmt.Fprintln(w, "behind the block. Roulette.")

	fmt.Fprintln(w)
	fmt.Fprintln(w, "The heap before:")
	h.Dump(w)

	raw := h.Malloc(rouletteBytes)
	if raw == nil {
		return fmt.Errorf("wide demo: %w", ErrOutOfMemory)
	}
	wd := wideAt(raw)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Writing all twenty fields...")

	wd.Field1 = 0x0101010101010101
	wd.Field2 = 0x0202020202020202
	wd.Field3 = 0x0303030303030303
	wd.Field4 = 0x0404040404040404
	wd.Field5 = 0x0505050505050505
	wd.Field6 = 0x0606060606060606
	wd.Field7 = 0x0707070707070707
	wd.Field8 = 0x0808080808080808
	wd.Field9 = 0x0909090909090909
	wd.Field10 = 0x0A0A0A0A0A0A0A0A
	wd.Field11 = 0x0B0B0B0B0B0B0B0B
	wd.Field12 = 0x0C0C0C0C0C0C0C0C
	wd.Field13 = 0x0D0D0D0D0D0D0D0D
	wd.Field14 = 0x0E0E0E0E0E0E0E0E
	wd.Field15 = 0x0F0F0F0F0F0F0F0F
	wd.Field16 = 0x1010101010101010
	wd.Field17 = 0x1111111111111111
	wd.Field18 = 0x1212121212121212
	wd.Field19 = 0x1313131313131313
	wd.Field20 = 0x1414141414141414

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Reading every field back:")
	for i, v := range wideWords(wd) {
		fmt.Fprintf(w, " > Field%-2d: %#x\n", i+1, v)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Every field reads back fine. The heap, however:")
	h.Dump(w)
	fmt.Fprintln(w, "The writes ran straight over the allocator's bookkeeping for")
	fmt.Fprintln(w, "everything behind our block. Nothing checked, nothing faulted,")
	fmt.Fprintln(w, "and nothing allocated after this point can be trusted.")

	h.Free(raw)
	return nil
}
