package no_arith

import "unsafe"

func Reinterpret(p unsafe.Pointer) *uint64 {
	return (*uint64)(p) // ok
}
