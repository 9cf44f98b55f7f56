package golang

import (
	"go/token"
	"slices"
	"unicode"

	"github.com/dave/dst"
	"github.com/dave/dst/dstutil"

	"github.com/toejough/regionize/internal/decl"
)

// accessOf maps Go's export rule onto an access level.
func accessOf(name string) decl.Access {
	if name == "" {
		return decl.AccessNone
	}

	if unicode.IsUpper([]rune(name)[0]) {
		return decl.AccessPublic
	}

	return decl.AccessPrivate
}

// containsIota checks if an expression contains the iota identifier.
func containsIota(expr dst.Expr) bool {
	if expr == nil {
		return false
	}

	found := false

	dstutil.Apply(expr, func(c *dstutil.Cursor) bool {
		if ident, ok := c.Node().(*dst.Ident); ok && ident.Name == "iota" {
			found = true
			return false
		}

		return true
	}, nil)

	return found
}

// enumType returns the named type of an iota const block, or "" when the
// block is untyped.
func enumType(gen *dst.GenDecl) string {
	if len(gen.Specs) == 0 {
		return ""
	}

	vspec, ok := gen.Specs[0].(*dst.ValueSpec)
	if !ok || vspec.Type == nil {
		return ""
	}

	return typeName(vspec.Type)
}

// enumTypes collects the named types of every iota const block in the file.
func enumTypes(file *dst.File) map[string]bool {
	types := make(map[string]bool)

	for _, d := range file.Decls {
		gen, ok := d.(*dst.GenDecl)
		if !ok || !isIotaBlock(gen) {
			continue
		}

		if name := enumType(gen); name != "" {
			types[name] = true
		}
	}

	return types
}

// funcName returns "Recv.Name" for methods and "Name" for functions.
func funcName(fn *dst.FuncDecl) string {
	if recv := receiverName(fn.Recv); recv != "" {
		return recv + "." + fn.Name.Name
	}

	return fn.Name.Name
}

// isIotaBlock checks if a const block uses iota.
func isIotaBlock(gen *dst.GenDecl) bool {
	if gen.Tok != token.CONST {
		return false
	}

	for _, spec := range gen.Specs {
		vspec, ok := spec.(*dst.ValueSpec)
		if !ok {
			continue
		}

		if slices.ContainsFunc(vspec.Values, containsIota) {
			return true
		}
	}

	return false
}

func receiverName(recv *dst.FieldList) string {
	if recv == nil || len(recv.List) == 0 {
		return ""
	}

	return typeName(recv.List[0].Type)
}

// typeName extracts the bare type name from a type expression.
func typeName(expr dst.Expr) string {
	switch e := expr.(type) {
	case *dst.Ident:
		return e.Name
	case *dst.SelectorExpr:
		return e.Sel.Name
	case *dst.StarExpr:
		return typeName(e.X)
	case *dst.IndexExpr:
		return typeName(e.X)
	case *dst.IndexListExpr:
		return typeName(e.X)
	}

	return ""
}
