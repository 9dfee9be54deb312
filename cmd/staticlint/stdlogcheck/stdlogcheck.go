// Package stdlogcheck reports uses of the standard log package's printing
// functions inside internal packages, which are expected to log through zap.
package stdlogcheck

import (
	"errors"
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer is the stdlogcheck analyzer.
var Analyzer = &analysis.Analyzer{
	Name:     "stdlogcheck",
	Doc:      "reports standard log print, fatal and panic calls in internal packages",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var errNoInspector = errors.New("stdlogcheck: inspect result has unexpected type")

var prefixes = []string{"Print", "Fatal", "Panic"}

func run(pass *analysis.Pass) (any, error) {
	if pass.Pkg == nil || !isInternal(pass.Pkg.Path()) {
		return nil, nil
	}

	insp, ok := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	if !ok {
		return nil, errNoInspector
	}

	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return
		}
		if name, ok := stdLogFunc(pass, call); ok {
			pass.Reportf(call.Pos(), "log.%s in internal package; use the injected *zap.Logger", name)
		}
	})
	return nil, nil
}

func isInternal(path string) bool {
	return strings.HasPrefix(path, "internal/") || strings.Contains(path, "/internal/") || strings.HasSuffix(path, "/internal")
}

// stdLogFunc reports whether call targets a package-level printing function
// of "log" and returns its name.
func stdLogFunc(pass *analysis.Pass, call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || pass.TypesInfo == nil {
		return "", false
	}
	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil || fn.Pkg().Path() != "log" {
		return "", false
	}
	if sig, ok := fn.Type().(*types.Signature); !ok || sig.Recv() != nil {
		return "", false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(fn.Name(), p) {
			return fn.Name(), true
		}
	}
	return "", false
}
