package no_cast

type Object struct {
	Field1 uint32
	Field2 uint32
}

func Copy(o Object) Object {
	return o // ok
}
