package smaller_struct

import "unsafe"

type Narrow struct {
	A uint32
}

type Wide struct {
	A uint32
	B uint32
	C uint32
}

func Widen() {
	n := Narrow{A: 1}

	w := (*Wide)(unsafe.Pointer(&n)) // want "unsafe cast to a type larger than its source value"

	_ = w
}
