package field_offset

import "unsafe"

type Object struct {
	Field1 uint32
	Field2 uint32
}

func SecondField(o *Object) *uint32 {
	return (*uint32)(unsafe.Pointer(uintptr(unsafe.Pointer(o)) + unsafe.Offsetof(o.Field2))) // ok
}
