package undersizedcast

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer is a golang.org/x/tools/go/analysis style linter pass.
// Use this with the Vet-style infrastructure.
//
// It reports casts of the form (*T)(unsafe.Pointer(src)) where the static
// size of src's storage is smaller than the size of T, so the resulting
// view claims bytes that were never allocated for it. Only statically
// sized sources (basics, structs, arrays) are judged; a cast from the
// address of a slice or array element is judged by the element's own
// storage.
var Analyzer = &analysis.Analyzer{
	Name:             "undersizedcast",
	Doc:              "reports unsafe casts that reinterpret a value as a larger type",
	Run:              run,
	Requires:         []*analysis.Analyzer{inspect.Analyzer},
	RunDespiteErrors: true,
}

/**
 * run is the entry point to the analysis pass
 */
func run(pass *analysis.Pass) (interface{}, error) {
	// get results from required inspect analyzer
	inspectResult := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	// filter AST of package under analysis for CallExpr nodes
	inspectResult.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		// check if the node is a misuse
		node := n.(*ast.CallExpr)
		if castToLargerType(node, pass) {
			// if so, report a warning
			pass.Reportf(n.Pos(), "unsafe cast to a type larger than its source value")
		}
	})

	return nil, nil
}

/**
 * checks if a CallExpr node casts a value to a pointer type whose pointee is larger than the value's own storage
 */
func castToLargerType(expr *ast.CallExpr, pass *analysis.Pass) bool {
	// first, check if this node represents a direct cast using unsafe
	src, dst, ok := detectUnsafeCast(expr)
	if !ok {
		return false
	}

	// it is a cast. Get the source value's storage type
	srcType := sourceValueType(src, pass)
	if srcType == nil {
		return false
	}

	// and the type the cast claims to produce
	dstTv, ok := pass.TypesInfo.Types[dst]
	if !ok || dstTv.Type == nil {
		return false
	}

	// then, compare the sizes under the current build's sizing rules
	return pass.TypesSizes.Sizeof(dstTv.Type) > pass.TypesSizes.Sizeof(srcType)
}

/*
 * checks if an AST node is a cast using unsafe, returning the source expression and the target type expression
 */
func detectUnsafeCast(expr *ast.CallExpr) (ast.Expr, ast.Expr, bool) {
	// check if there are arguments to the call expression at all
	if len(expr.Args) == 0 {
		return nil, nil, false
	}

	// now, extract the source expression in the cast and check if it is a CallExpr too. This is necessary because we
	// try to filter casts that involve an intermediate unsafe.Pointer step
	sourceCastCallExpr, ok := expr.Args[0].(*ast.CallExpr)
	if !ok {
		return nil, nil, false
	}

	// extract the potential intermediate unsafe.Pointer step and check whether it is a selector expression
	sourceCastUnsafePointerSelector, ok := sourceCastCallExpr.Fun.(*ast.SelectorExpr)
	if !ok {
		return nil, nil, false
	}

	// now, check whether it is unsafe.Pointer indeed
	sourceCastUnsafePointerSelectorX, ok := sourceCastUnsafePointerSelector.X.(*ast.Ident)
	if !ok {
		return nil, nil, false
	}

	if sourceCastUnsafePointerSelector.Sel.Name != "Pointer" || sourceCastUnsafePointerSelectorX.Name != "unsafe" {
		return nil, nil, false
	}

	if len(sourceCastCallExpr.Args) == 0 {
		return nil, nil, false
	}

	// we have an unsafe cast. Now, extract the source expression, and take care of a potential & operator
	var sourceExpr ast.Expr
	sourceUnary, ok := sourceCastCallExpr.Args[0].(*ast.UnaryExpr)
	if ok && sourceUnary.Op == token.AND {
		sourceExpr = sourceUnary.X
	} else {
		sourceExpr = sourceCastCallExpr.Args[0]
	}

	// extract the target expression, and take care of parenthesis and a star operator
	targetParen, ok := expr.Fun.(*ast.ParenExpr)
	if !ok {
		return nil, nil, false
	}

	targetStar, ok := targetParen.X.(*ast.StarExpr)
	if !ok {
		return nil, nil, false
	}

	// finally, we know that this is a cast involving unsafe, return the source and destination
	return sourceExpr, targetStar.X, true
}

/**
 * finds the storage type behind the source expression of a cast: the pointee for pointer sources, the value type
 * otherwise. Returns nil for sources whose storage cannot be sized statically.
 */
func sourceValueType(expr ast.Expr, pass *analysis.Pass) types.Type {
	tv, ok := pass.TypesInfo.Types[expr]
	if !ok || tv.Type == nil {
		return nil
	}

	t := tv.Type.Underlying()
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem().Underlying()
	}

	switch basic := t.(type) {
	case *types.Basic:
		// untyped constants, uintptr, and unsafe.Pointer carry no storage of their own to judge
		if basic.Info()&types.IsUntyped != 0 {
			return nil
		}
		if basic.Kind() == types.Uintptr || basic.Kind() == types.UnsafePointer {
			return nil
		}
	case *types.Struct, *types.Array:
		// statically sized, fine
	default:
		return nil
	}

	return t
}
