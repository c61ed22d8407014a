package walk_past_end

import "unsafe"

func Next(p unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(uintptr(p) + 8) // want "pointer manufactured from raw integer arithmetic"
}
