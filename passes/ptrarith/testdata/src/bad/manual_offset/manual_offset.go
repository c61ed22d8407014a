package manual_offset

import "unsafe"

type Object struct {
	Field1 uint32
	Field2 uint32
}

func SplitBlock() {
	var block [12]byte

	p1 := (*Object)(unsafe.Pointer(&block))
	p2 := (*Object)(unsafe.Pointer(uintptr(unsafe.Pointer(&block)) + 4)) // want "pointer manufactured from raw integer arithmetic"

	p1.Field1 = 0x12341234
	p2.Field1 = 0xDEADBEEF
}
