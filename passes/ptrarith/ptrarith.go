package ptrarith

import (
	"go/ast"
	"go/token"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports unsafe.Pointer conversions built from integer
// arithmetic. A pointer manufactured this way names whatever bytes the
// arithmetic happens to hit; nothing ties it to an allocation anymore.
// Arithmetic whose offset comes from unsafe.Offsetof is accepted, since
// that is the vetted way to address a field through its struct.
var Analyzer = &analysis.Analyzer{
	Name:             "ptrarith",
	Doc:              "reports pointers manufactured from raw integer arithmetic",
	Run:              run,
	Requires:         []*analysis.Analyzer{inspect.Analyzer},
	RunDespiteErrors: true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspectResult := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	inspectResult.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		node := n.(*ast.CallExpr)
		if manufacturesPointer(node) {
			pass.Reportf(n.Pos(), "pointer manufactured from raw integer arithmetic")
		}
	})

	return nil, nil
}

func manufacturesPointer(expr *ast.CallExpr) bool {
	if !isUnsafePointerConversion(expr) {
		return false
	}

	arith, ok := expr.Args[0].(*ast.BinaryExpr)
	if !ok {
		return false
	}

	if arith.Op != token.ADD && arith.Op != token.SUB {
		return false
	}

	return !derivedFromOffsetof(arith)
}

func isUnsafePointerConversion(expr *ast.CallExpr) bool {
	sel, ok := expr.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Pointer" {
		return false
	}

	pkg, ok := sel.X.(*ast.Ident)
	if !ok || pkg.Name != "unsafe" {
		return false
	}

	return len(expr.Args) == 1
}

func derivedFromOffsetof(arith *ast.BinaryExpr) bool {
	found := false
	ast.Inspect(arith, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		pkg, ok := sel.X.(*ast.Ident)
		if ok && pkg.Name == "unsafe" && sel.Sel.Name == "Offsetof" {
			found = true
			return false
		}
		return true
	})
	return found
}
