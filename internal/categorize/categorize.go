// Package categorize provides declaration categorization for class and
// interface members and for file-level declarations.
package categorize

import (
	"slices"
	"strings"
	"unicode"

	"github.com/toejough/regionize/internal/decl"
)

// Category identifies one member bucket. It is a structured key over
// orthogonal attributes; Mutability is only meaningful for properties and
// Static/Abstract never both hold.
type Category struct {
	Kind       MemberKind
	Visibility Visibility
	Static     bool
	Abstract   bool
	Mutability Mutability
}

// String returns the canonical configuration name of the category, e.g.
// "privateStaticConstProperties" or "constructors".
func (c Category) String() string {
	if c.Kind == Constructors {
		return "constructors"
	}

	var b strings.Builder

	b.WriteString(c.Visibility.String())

	if c.Static {
		b.WriteString("Static")
	}

	if c.Abstract {
		b.WriteString("Abstract")
	}

	if c.Kind == Properties {
		b.WriteString(c.Mutability.String())
	}

	b.WriteString(c.Kind.String())

	return b.String()
}

// Caption returns the title-cased caption used for auto-completed rules,
// e.g. "Private Static Const Properties".
func (c Category) Caption() string {
	return TitleCase(c.String())
}

// CategorizedMembers holds a container's members bucketed by category, each
// bucket in source order.
type CategorizedMembers struct {
	Container decl.Kind
	Buckets   map[Category][]*decl.Declaration
}

// Get returns the members of one category.
func (cm *CategorizedMembers) Get(c Category) []*decl.Declaration {
	return cm.Buckets[c]
}

// Len returns the number of categorized members.
func (cm *CategorizedMembers) Len() int {
	n := 0
	for _, b := range cm.Buckets {
		n += len(b)
	}

	return n
}

// MemberKind is the kind axis of a category.
type MemberKind int

// MemberKind values.
const (
	Properties MemberKind = iota
	Constructors
	Indexes
	Accessors
	Methods
)

func (k MemberKind) String() string {
	switch k {
	case Properties:
		return "Properties"
	case Constructors:
		return "Constructors"
	case Indexes:
		return "Indexes"
	case Accessors:
		return "GettersAndSetters"
	default:
		return "Methods"
	}
}

// Mutability is the const/readonly axis of property categories.
type Mutability int

// Mutability values.
const (
	Mutable Mutability = iota
	ReadOnly
	Const
)

func (m Mutability) String() string {
	switch m {
	case Const:
		return "Const"
	case ReadOnly:
		return "ReadOnly"
	default:
		return ""
	}
}

// Visibility is the effective visibility axis of a category.
type Visibility int

// Visibility values.
const (
	Public Visibility = iota
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "public"
	}
}

// All returns every category in default order with accessors after
// constructors.
func All() []Category {
	return DefaultOrder(false)
}

// CategorizeMembers buckets the members of a class or interface.
func CategorizeMembers(container *decl.Declaration, arrowsAsMethods bool) *CategorizedMembers {
	cm := &CategorizedMembers{
		Container: container.Kind,
		Buckets:   make(map[Category][]*decl.Declaration),
	}

	for _, m := range container.Members {
		if m.Kind == decl.KindUnknown {
			continue
		}

		c := Classify(m, container.Kind, arrowsAsMethods)
		cm.Buckets[c] = append(cm.Buckets[c], m)
	}

	return cm
}

// Classify maps a member declaration to exactly one category.
//
// Interface members are always public and never static or abstract. An
// unwritten access modifier classifies as public; the declaration keeps
// AccessNone so printing can add the modifier.
func Classify(d *decl.Declaration, container decl.Kind, arrowsAsMethods bool) Category {
	if d.Kind == decl.KindConstructor {
		return Category{Kind: Constructors}
	}

	c := Category{Visibility: visibility(d, container)}

	kind := d.Kind
	if kind == decl.KindProperty && d.IsArrowFunctionProperty && arrowsAsMethods {
		kind = decl.KindMethod
	}

	switch kind {
	case decl.KindProperty:
		c.Kind = Properties
		c.Mutability = mutability(d)
	case decl.KindIndex:
		c.Kind = Indexes
	case decl.KindGetter, decl.KindSetter:
		c.Kind = Accessors
	default:
		c.Kind = Methods
	}

	if container == decl.KindInterface {
		return c
	}

	c.Static = d.IsStatic
	if c.Kind != Properties {
		c.Abstract = d.IsAbstract && !d.IsStatic
	}

	return c
}

// Compare orders declarations by name (ordinal), then by FullStart.
func Compare(a, b *decl.Declaration) int {
	if n := strings.Compare(a.Name, b.Name); n != 0 {
		return n
	}

	return a.FullStart - b.FullStart
}

// DefaultOrder returns every category in default order. Properties come
// first (private to public), then constructors, indexes, accessors and
// methods (public to private). With accessorsBeforeCtor the accessor
// categories move in front of constructors.
func DefaultOrder(accessorsBeforeCtor bool) []Category {
	order := make([]Category, 0, 46)

	for _, vis := range []Visibility{Private, Protected, Public} {
		for _, mut := range []Mutability{Const, ReadOnly, Mutable} {
			order = append(order,
				Category{Kind: Properties, Visibility: vis, Static: true, Mutability: mut},
				Category{Kind: Properties, Visibility: vis, Mutability: mut},
			)
		}
	}

	accessors := flavored(Accessors)
	if accessorsBeforeCtor {
		order = append(order, accessors...)
	}

	order = append(order, Category{Kind: Constructors})
	order = append(order, flavored(Indexes)...)

	if !accessorsBeforeCtor {
		order = append(order, accessors...)
	}

	return append(order, flavored(Methods)...)
}

// Lookup resolves a category from its configuration name.
func Lookup(name string) (Category, bool) {
	for _, c := range All() {
		if c.String() == name {
			return c, true
		}
	}

	return Category{}, false
}

// Names returns the configuration names of every category in default order.
func Names() []string {
	all := All()
	names := make([]string, 0, len(all))

	for _, c := range all {
		names = append(names, c.String())
	}

	return names
}

// SortByName stable-sorts declarations with Compare.
func SortByName(decls []*decl.Declaration) {
	slices.SortStableFunc(decls, Compare)
}

// TitleCase splits a camel-case name into capitalized words.
func TitleCase(name string) string {
	var b strings.Builder

	for i, r := range name {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}

		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}

		b.WriteRune(r)
	}

	return b.String()
}

// ValidFor reports whether a category can hold members of the container kind.
func ValidFor(c Category, container decl.Kind) bool {
	if container != decl.KindInterface {
		return true
	}

	return c.Visibility == Public && !c.Static && !c.Abstract && c.Kind != Constructors
}

// flavored returns the static, instance and abstract categories of a kind for
// each visibility, public first.
func flavored(kind MemberKind) []Category {
	cats := make([]Category, 0, 9)

	for _, vis := range []Visibility{Public, Protected, Private} {
		cats = append(cats,
			Category{Kind: kind, Visibility: vis, Static: true},
			Category{Kind: kind, Visibility: vis},
			Category{Kind: kind, Visibility: vis, Abstract: true},
		)
	}

	return cats
}

func mutability(d *decl.Declaration) Mutability {
	switch {
	case d.IsConst:
		return Const
	case d.IsReadOnly:
		return ReadOnly
	default:
		return Mutable
	}
}

func visibility(d *decl.Declaration, container decl.Kind) Visibility {
	if container == decl.KindInterface {
		return Public
	}

	switch d.Access {
	case decl.AccessProtected:
		return Protected
	case decl.AccessPrivate:
		return Private
	default:
		return Public
	}
}
