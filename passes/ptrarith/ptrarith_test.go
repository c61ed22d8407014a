package ptrarith_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"
	"malloc-roulette/passes/ptrarith"
)

func Test(t *testing.T) {
	testdata := analysistest.TestData()
	testPackages := []string{
		"bad/manual_offset",
		"bad/walk_past_end",

		"good/field_offset",
		"good/no_arith",
	}
	analysistest.Run(t, testdata, ptrarith.Analyzer, testPackages...)
}
