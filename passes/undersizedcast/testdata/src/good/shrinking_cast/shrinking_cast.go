package shrinking_cast

import "unsafe"

type Narrow struct {
	A uint32
}

type Wide struct {
	A uint32
	B uint32
	C uint32
}

func Shrink() {
	w := Wide{A: 1, B: 2, C: 3}

	n := (*Narrow)(unsafe.Pointer(&w)) // ok, the view fits inside the source

	_ = n
}
