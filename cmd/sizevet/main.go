// Sizevet runs the repository's unsafe-cast analyzers over packages, the
// same way go vet would. Pointed at the demo package it reports every
// trick the demonstrations pull.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"malloc-roulette/passes/ptrarith"
	"malloc-roulette/passes/undersizedcast"
)

func main() {
	multichecker.Main(
		ptrarith.Analyzer,
		undersizedcast.Analyzer,
	)
}
