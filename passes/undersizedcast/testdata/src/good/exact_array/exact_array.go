package exact_array

import "unsafe"

type Object struct {
	Field1 uint32
	Field2 uint32
}

func WholeArray() {
	var buf [8]byte

	obj := (*Object)(unsafe.Pointer(&buf)) // ok, sizes match

	obj.Field1 = 0x12341234
}
