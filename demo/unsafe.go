package demo

import "unsafe"

// This file is the one place where raw heap bytes become typed records.
// Every cast here is deliberately invalid: the views returned are not
// backed by allocations of their own size, which is the entire point of
// the demonstrations. Do not imitate any of it.

const objectSize = unsafe.Sizeof(Object{})
const wideSize = unsafe.Sizeof(Wide{})

// objectAt views the bytes at p+off as an Object, whether or not eight
// bytes of the allocation remain past off.
func objectAt(p unsafe.Pointer, off uintptr) *Object {
	return (*Object)(unsafe.Pointer(uintptr(p) + off))
}

// wideAt views the bytes at p as a Wide, no matter how few were
// allocated.
func wideAt(p unsafe.Pointer) *Wide {
	return (*Wide)(p)
}

// u32At views the bytes at p as a uint32.
func u32At(p unsafe.Pointer) *uint32 {
	return (*uint32)(p)
}

// wideWords flattens a Wide into its twenty words for read-back loops.
func wideWords(w *Wide) *[20]int64 {
	return (*[20]int64)(unsafe.Pointer(w))
}
