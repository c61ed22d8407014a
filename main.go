// Malloc-roulette runs a fixed sequence of memory-misuse demonstrations
// against its own slab allocator and narrates what it observes. The
// twenty-field under-allocation roulette only runs with -extreme.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"malloc-roulette/demo"
	"malloc-roulette/mem"
)

// oomExitCode is returned to the environment when the slab cannot serve a
// demonstration's allocation.
const oomExitCode = 93

const heapSize = 4096

var extreme = flag.Bool("extreme", false, "also run the twenty-field under-allocation roulette")

func main() {
	flag.Parse()

	// The integer demo is quite unreliable: it trusts that two
	// allocations land right next to each other in order to have a
	// visible effect. The object demo forces the issue by overlapping
	// two views on a single block instead.
	scenarios := []func(*mem.Heap, io.Writer) error{
		demo.IntAdjacency,
		demo.ObjectOverlap,
	}
	if *extreme {
		scenarios = append(scenarios, demo.WideRoulette)
	}

	heap := mem.New(heapSize)
	for i, scenario := range scenarios {
		if i > 0 {
			fmt.Print("\n====================================================\n\n")
		}
		if err := scenario(heap, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "Out of memory.")
			os.Exit(oomExitCode)
		}
	}
}
