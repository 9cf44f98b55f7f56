// Package decl defines the declaration model shared by the front ends and the
// organizing engine.
package decl

import "context"

// Access is the explicitly written accessibility of a declaration.
type Access int

// Access values.
const (
	AccessNone Access = iota
	AccessPublic
	AccessProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	default:
		return "none"
	}
}

// Kind identifies which variant of declaration a node is.
type Kind int

// Kind values.
const (
	KindUnknown Kind = iota
	// top level
	KindImport
	KindTypeAlias
	KindInterface
	KindClass
	KindEnum
	KindFunction
	// members
	KindProperty
	KindGetter
	KindSetter
	KindMethod
	KindConstructor
	KindIndex
)

func (k Kind) String() string {
	switch k {
	case KindImport:
		return "import"
	case KindTypeAlias:
		return "type alias"
	case KindInterface:
		return "interface"
	case KindClass:
		return "class"
	case KindEnum:
		return "enum"
	case KindFunction:
		return "function"
	case KindProperty:
		return "property"
	case KindGetter:
		return "getter"
	case KindSetter:
		return "setter"
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	case KindIndex:
		return "index"
	default:
		return "unknown"
	}
}

// IsContainer reports whether declarations of this kind carry members.
func (k Kind) IsContainer() bool {
	return k == KindClass || k == KindInterface
}

// Declaration is an immutable snapshot of one parsed declaration.
//
// Offsets are byte offsets into the source the declaration was parsed from:
// FullStart includes leading trivia (comments and blank lines), Start is the
// first token of the declaration proper (decorators included) and End is
// one past its last byte.
type Declaration struct {
	Kind   Kind
	Name   string
	Access Access

	IsStatic   bool
	IsReadOnly bool
	IsConst    bool
	IsAbstract bool

	// IsArrowFunctionProperty is set for properties initialized with a
	// function expression.
	IsArrowFunctionProperty bool

	Decorators []string

	FullStart int
	Start     int
	End       int

	// CodeEnd is where the declaration's code stops, before a comment
	// attached to its last line. Zero means End.
	CodeEnd int

	// ModifierOffset is where an explicit access modifier belongs: after
	// decorators, before static/async/get/set and friends. -1 if unknown.
	ModifierOffset int

	// Container fields, set for classes and interfaces only.
	MembersStart int
	MembersEnd   int
	Members      []*Declaration
}

// HasUnknownMembers reports whether any member could not be recognized.
func (d *Declaration) HasUnknownMembers() bool {
	for _, m := range d.Members {
		if m.Kind == KindUnknown {
			return true
		}
	}

	return false
}

// CodeText returns the declaration's code in src without any trailing
// comment on its last line.
func (d *Declaration) CodeText(src string) string {
	end := d.End
	if d.CodeEnd > d.Start && d.CodeEnd < d.End {
		end = d.CodeEnd
	}

	if d.Start < 0 || end > len(src) || d.Start >= end {
		return ""
	}

	return src[d.Start:end]
}

// IsDecorated reports whether the declaration has at least one decorator.
func (d *Declaration) IsDecorated() bool {
	return len(d.Decorators) > 0
}

// Parser turns source text into top-level declarations, each container
// carrying its members.
type Parser interface {
	Parse(ctx context.Context, src []byte) ([]*Declaration, error)
}

// Containers returns the class and interface declarations among decls.
func Containers(decls []*Declaration) []*Declaration {
	var containers []*Declaration

	for _, d := range decls {
		if d.Kind.IsContainer() {
			containers = append(containers, d)
		}
	}

	return containers
}

// AllUnknown reports whether no declaration in decls was recognized.
func AllUnknown(decls []*Declaration) bool {
	for _, d := range decls {
		if d.Kind != KindUnknown {
			return false
		}
	}

	return true
}
