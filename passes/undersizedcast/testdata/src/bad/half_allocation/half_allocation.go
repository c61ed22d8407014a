package half_allocation

import "unsafe"

type Object struct {
	Field1 uint32
	Field2 uint32
}

func HalfAnObject() {
	var half [4]byte

	obj := (*Object)(unsafe.Pointer(&half)) // want "unsafe cast to a type larger than its source value"

	obj.Field1 = 0x12341234
	obj.Field2 = 0x8BADF00D // lands past the end of half
}
