package categorize

import "github.com/toejough/regionize/internal/decl"

// TopLevel is one of the fixed file-level categories.
type TopLevel int

// TopLevel values, in print order.
const (
	Imports TopLevel = iota
	TypeAliases
	Interfaces
	Classes
	Enums
	Functions
)

// Caption returns the region caption of the category.
func (t TopLevel) Caption() string {
	switch t {
	case Imports:
		return "Imports"
	case TypeAliases:
		return "Type aliases"
	case Interfaces:
		return "Interfaces"
	case Classes:
		return "Classes"
	case Enums:
		return "Enums"
	default:
		return "Functions"
	}
}

// IsRegion reports whether the category is wrapped in region markers.
// Imports are printed bare.
func (t TopLevel) IsRegion() bool {
	return t != Imports
}

// CategorizedTopLevel holds file-level declarations by category, each in
// source order.
type CategorizedTopLevel struct {
	Imports     []*decl.Declaration
	TypeAliases []*decl.Declaration
	Interfaces  []*decl.Declaration
	Classes     []*decl.Declaration
	Enums       []*decl.Declaration
	Functions   []*decl.Declaration
	Unknown     []*decl.Declaration
}

// Get returns the declarations of one category.
func (ct *CategorizedTopLevel) Get(t TopLevel) []*decl.Declaration {
	switch t {
	case Imports:
		return ct.Imports
	case TypeAliases:
		return ct.TypeAliases
	case Interfaces:
		return ct.Interfaces
	case Classes:
		return ct.Classes
	case Enums:
		return ct.Enums
	default:
		return ct.Functions
	}
}

// ShouldOrganize reports whether the file-level pass applies: more than one
// non-import declaration, or at least one function.
func (ct *CategorizedTopLevel) ShouldOrganize() bool {
	n := len(ct.TypeAliases) + len(ct.Interfaces) + len(ct.Classes) + len(ct.Enums) + len(ct.Functions)

	return n > 1 || len(ct.Functions) > 0
}

// AllTopLevel returns the file-level categories in print order.
func AllTopLevel() []TopLevel {
	return []TopLevel{Imports, TypeAliases, Interfaces, Classes, Enums, Functions}
}

// CategorizeTopLevel buckets file-level declarations.
func CategorizeTopLevel(decls []*decl.Declaration) *CategorizedTopLevel {
	ct := &CategorizedTopLevel{}

	for _, d := range decls {
		switch d.Kind {
		case decl.KindImport:
			ct.Imports = append(ct.Imports, d)
		case decl.KindTypeAlias:
			ct.TypeAliases = append(ct.TypeAliases, d)
		case decl.KindInterface:
			ct.Interfaces = append(ct.Interfaces, d)
		case decl.KindClass:
			ct.Classes = append(ct.Classes, d)
		case decl.KindEnum:
			ct.Enums = append(ct.Enums, d)
		case decl.KindFunction:
			ct.Functions = append(ct.Functions, d)
		default:
			ct.Unknown = append(ct.Unknown, d)
		}
	}

	return ct
}
