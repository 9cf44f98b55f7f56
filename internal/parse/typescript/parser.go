// Package typescript reads TypeScript declarations with tree-sitter.
package typescript

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	tsgrammar "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/toejough/regionize/internal/decl"
)

// ErrSyntax is returned when the source does not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// Parser parses TypeScript (or TSX) source into declarations.
// A Parser is safe for concurrent use; every call builds its own tree-sitter
// parser.
type Parser struct {
	tsx bool
}

// New returns a parser for plain TypeScript.
func New() *Parser {
	return &Parser{}
}

// NewTSX returns a parser for TypeScript with JSX.
func NewTSX() *Parser {
	return &Parser{tsx: true}
}

// Parse returns the file-level declarations of src in source order.
func (p *Parser) Parse(ctx context.Context, src []byte) ([]*decl.Declaration, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if p.tsx {
		parser.SetLanguage(tsx.GetLanguage())
	} else {
		parser.SetLanguage(tsgrammar.GetLanguage())
	}

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		row, col := firstError(root)
		return nil, fmt.Errorf("%w at %d:%d", ErrSyntax, row+1, col+1)
	}

	w := &walker{src: src}

	return w.topLevel(root), nil
}

type walker struct {
	src []byte
}

// sequence tracks trivia and separators while walking a list of siblings.
type sequence struct {
	prevEnd int
	last    *decl.Declaration
	lastRow uint32
}

func (s *sequence) push(d *decl.Declaration, endRow uint32) {
	s.last = d
	s.lastRow = endRow
	s.prevEnd = d.End
}

func (w *walker) text(n *sitter.Node) string {
	return n.Content(w.src)
}

func (w *walker) topLevel(root *sitter.Node) []*decl.Declaration {
	var (
		decls []*decl.Declaration
		seq   sequence
	)

	for i := range int(root.ChildCount()) {
		n := root.Child(i)

		if w.attachable(&seq, n) {
			continue
		}

		if n.Type() == "comment" {
			continue
		}

		d := w.declaration(n)
		d.FullStart = seq.prevEnd
		decls = append(decls, d)
		seq.push(d, n.EndPoint().Row)
	}

	return decls
}

// attachable extends the previous declaration over a separator that follows
// it on the same line, or over a comment starting on its last line. It
// reports whether the node was consumed.
func (w *walker) attachable(seq *sequence, n *sitter.Node) bool {
	if seq.last == nil || int(n.StartByte()) < seq.last.End {
		return false
	}

	switch n.Type() {
	case ";", ",", "empty_statement":
		gap := string(w.src[seq.last.End:n.StartByte()])
		if strings.Trim(gap, " \t") != "" {
			return false
		}

		seq.last.CodeEnd = int(n.EndByte())
	case "comment":
		if n.StartPoint().Row != seq.lastRow {
			return false
		}
	default:
		return false
	}

	seq.last.End = int(n.EndByte())
	seq.lastRow = n.EndPoint().Row
	seq.prevEnd = seq.last.End

	return true
}

func (w *walker) declaration(n *sitter.Node) *decl.Declaration {
	d := &decl.Declaration{
		Start:          int(n.StartByte()),
		End:            int(n.EndByte()),
		CodeEnd:        int(n.EndByte()),
		ModifierOffset: -1,
	}

	inner := n
	if n.Type() == "export_statement" {
		inner = n.ChildByFieldName("declaration")
		if inner == nil {
			// export { a }, export default expression, export * from ...
			return d
		}
	}

	d.Decorators = w.decorators(n)

	switch inner.Type() {
	case "import_statement":
		d.Kind = decl.KindImport
	case "type_alias_declaration":
		d.Kind = decl.KindTypeAlias
	case "interface_declaration":
		d.Kind = decl.KindInterface
		w.container(d, inner.ChildByFieldName("body"), decl.KindInterface)
	case "class_declaration", "abstract_class_declaration":
		d.Kind = decl.KindClass
		d.IsAbstract = inner.Type() == "abstract_class_declaration"
		w.container(d, inner.ChildByFieldName("body"), decl.KindClass)
	case "enum_declaration":
		d.Kind = decl.KindEnum
	case "function_declaration", "generator_function_declaration", "function_signature":
		d.Kind = decl.KindFunction
	default:
		return d
	}

	if name := inner.ChildByFieldName("name"); name != nil {
		d.Name = w.text(name)
	}

	return d
}

// decorators returns the decorator names written directly on n.
func (w *walker) decorators(n *sitter.Node) []string {
	var names []string

	for i := range int(n.NamedChildCount()) {
		c := n.NamedChild(i)
		if c.Type() == "decorator" {
			names = append(names, decoratorName(w.text(c)))
		}
	}

	return names
}

func (w *walker) container(d *decl.Declaration, body *sitter.Node, kind decl.Kind) {
	if body == nil {
		d.Kind = decl.KindUnknown
		return
	}

	var (
		seq        sequence
		decorators []*sitter.Node
	)

	for i := range int(body.ChildCount()) {
		n := body.Child(i)

		switch n.Type() {
		case "{":
			d.MembersStart = int(n.EndByte())
			seq.prevEnd = d.MembersStart

			continue
		case "}":
			d.MembersEnd = int(n.StartByte())

			continue
		case "decorator":
			decorators = append(decorators, n)

			continue
		}

		if w.attachable(&seq, n) || n.Type() == "comment" {
			continue
		}

		m := w.member(n, kind)
		if len(decorators) > 0 {
			m.Start = int(decorators[0].StartByte())

			for _, dec := range decorators {
				m.Decorators = append(m.Decorators, decoratorName(w.text(dec)))
			}

			decorators = nil
		}

		m.FullStart = seq.prevEnd
		d.Members = append(d.Members, m)
		seq.push(m, n.EndPoint().Row)
	}

	tail := d.MembersEnd
	if seq.last != nil {
		tail = seq.last.End
	}

	// Decorators without a member have no declaration to travel with.
	if len(decorators) > 0 {
		d.Members = append(d.Members, &decl.Declaration{Kind: decl.KindUnknown, FullStart: tail, Start: tail, End: d.MembersEnd})
		return
	}

	// Comments after the last member stay where they are, below the members.
	if d.MembersEnd > tail && strings.TrimSpace(string(w.src[tail:d.MembersEnd])) != "" {
		d.MembersEnd = tail
	}
}

// member builds a class or interface member from its node.
func (w *walker) member(n *sitter.Node, container decl.Kind) *decl.Declaration {
	m := &decl.Declaration{
		Start:          int(n.StartByte()),
		End:            int(n.EndByte()),
		CodeEnd:        int(n.EndByte()),
		ModifierOffset: -1,
	}

	switch n.Type() {
	case "public_field_definition", "property_signature":
		m.Kind = decl.KindProperty
	case "method_definition", "method_signature", "abstract_method_signature":
		m.Kind = decl.KindMethod
	case "index_signature":
		m.Kind = decl.KindIndex
	default:
		return m
	}

	name := n.ChildByFieldName("name")
	if name != nil {
		m.Name = w.text(name)
		if name.Type() == "private_property_identifier" {
			m.Access = decl.AccessPrivate
		}
	}

	if n.Type() == "abstract_method_signature" {
		m.IsAbstract = true
	}

	w.modifiers(m, n, name)

	if m.Kind == decl.KindMethod && m.Name == "constructor" && container == decl.KindClass {
		m.Kind = decl.KindConstructor
	}

	if m.Kind == decl.KindProperty {
		if value := n.ChildByFieldName("value"); value != nil {
			switch value.Type() {
			case "arrow_function", "function_expression", "function":
				m.IsArrowFunctionProperty = true
			case "as_expression":
				m.IsConst = constAssertion.MatchString(w.text(value))
			}
		}
	}

	return m
}

var constAssertion = regexp.MustCompile(`\bas\s+const$`)

// modifiers reads the keywords written before the member name and records
// where an access modifier belongs.
func (w *walker) modifiers(m *decl.Declaration, n, name *sitter.Node) {
	for i := range int(n.ChildCount()) {
		c := n.Child(i)
		if name != nil && c.StartByte() >= name.StartByte() {
			break
		}

		if c.Type() == "[" {
			break
		}

		if c.Type() != "decorator" && m.ModifierOffset == -1 {
			m.ModifierOffset = int(c.StartByte())
		}

		switch c.Type() {
		case "accessibility_modifier":
			m.Access = access(w.text(c))
		case "static":
			m.IsStatic = true
		case "readonly":
			m.IsReadOnly = true
		case "abstract":
			m.IsAbstract = true
		case "get":
			m.Kind = decl.KindGetter
		case "set":
			m.Kind = decl.KindSetter
		case "decorator":
			m.Decorators = append(m.Decorators, decoratorName(w.text(c)))
		}
	}

	if m.ModifierOffset == -1 && name != nil {
		m.ModifierOffset = int(name.StartByte())
	}
}

func access(s string) decl.Access {
	switch strings.TrimSpace(s) {
	case "public":
		return decl.AccessPublic
	case "protected":
		return decl.AccessProtected
	case "private":
		return decl.AccessPrivate
	default:
		return decl.AccessNone
	}
}

// decoratorName returns the decorator's callee without "@" and arguments.
func decoratorName(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "@")
	if i := strings.IndexAny(s, "(<"); i >= 0 {
		s = s[:i]
	}

	return strings.TrimSpace(s)
}

func firstError(n *sitter.Node) (row, col uint32) {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n.StartPoint().Row, n.StartPoint().Column
	}

	for i := range int(n.ChildCount()) {
		c := n.Child(i)
		if c.HasError() {
			return firstError(c)
		}
	}

	return n.StartPoint().Row, n.StartPoint().Column
}
