package first_element

import "unsafe"

type Object struct {
	Field1 uint32
	Field2 uint32
}

func FromByte() {
	buf := make([]byte, 16)

	// only the element's own byte is judged; the view still claims
	// seven bytes no type ever promised it
	obj := (*Object)(unsafe.Pointer(&buf[0])) // want "unsafe cast to a type larger than its source value"

	obj.Field1 = 0x12341234
}
