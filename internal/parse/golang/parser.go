// Package golang reads Go declarations with dst so the organizer can treat
// Go files like TypeScript ones: interfaces carry members, iota blocks are
// enums and other named types stand in for classes.
package golang

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"

	"github.com/toejough/regionize/internal/decl"
)

// ErrSyntax is returned when the source does not parse.
var ErrSyntax = errors.New("syntax error")

// Parser parses Go source into declarations.
type Parser struct{}

// New returns a Go parser.
func New() *Parser {
	return &Parser{}
}

// Format re-prints src through the dst restorer.
func (p *Parser) Format(src []byte) ([]byte, error) {
	dec := decorator.NewDecorator(token.NewFileSet())

	file, err := dec.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	var buf bytes.Buffer

	err = decorator.NewRestorer().Fprint(&buf, file)
	if err != nil {
		return nil, fmt.Errorf("failed to print: %w", err)
	}

	return buf.Bytes(), nil
}

// Parse returns the file-level declarations of src in source order. The
// package clause and anything before it are never part of a declaration.
func (p *Parser) Parse(ctx context.Context, src []byte) ([]*decl.Declaration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	dec := decorator.NewDecorator(fset)

	file, err := dec.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	astFile, ok := dec.Map.Ast.Nodes[file].(*ast.File)
	if !ok {
		return nil, fmt.Errorf("%w: no file node", ErrSyntax)
	}

	w := &walker{src: src, fset: fset, dec: dec, enums: enumTypes(file)}
	prevEnd := w.offset(astFile.Name.End())
	decls := make([]*decl.Declaration, 0, len(file.Decls))

	for _, d := range file.Decls {
		node := dec.Map.Ast.Nodes[d]

		dd := &decl.Declaration{
			FullStart:      prevEnd,
			Start:          w.offset(node.Pos()),
			End:            w.withTrailingComment(w.offset(node.End())),
			CodeEnd:        w.offset(node.End()),
			ModifierOffset: -1,
		}

		switch d := d.(type) {
		case *dst.FuncDecl:
			dd.Kind = decl.KindFunction
			dd.Name = funcName(d)
		case *dst.GenDecl:
			w.genDecl(dd, d)
		}

		decls = append(decls, dd)
		prevEnd = dd.End
	}

	return decls, nil
}

type walker struct {
	src   []byte
	fset  *token.FileSet
	dec   *decorator.Decorator
	enums map[string]bool
}

func (w *walker) genDecl(d *decl.Declaration, gen *dst.GenDecl) {
	switch gen.Tok {
	case token.IMPORT:
		d.Kind = decl.KindImport
	case token.CONST:
		if isIotaBlock(gen) {
			d.Kind = decl.KindEnum
			d.Name = enumType(gen)
		}
	case token.TYPE:
		// Grouped type blocks stay as written.
		if len(gen.Specs) != 1 {
			return
		}

		spec, ok := gen.Specs[0].(*dst.TypeSpec)
		if !ok {
			return
		}

		d.Name = spec.Name.Name
		d.Access = accessOf(d.Name)

		switch {
		case spec.Assign:
			d.Kind = decl.KindTypeAlias
		case w.enums[d.Name]:
			d.Kind = decl.KindEnum
		default:
			if iface, ok := w.dec.Map.Ast.Nodes[spec.Type].(*ast.InterfaceType); ok {
				d.Kind = decl.KindInterface
				w.interfaceMembers(d, iface)

				return
			}

			d.Kind = decl.KindClass
		}
	}
}

// interfaceMembers records the method set of an interface. Embedded
// interfaces and type constraints are unknown members.
func (w *walker) interfaceMembers(d *decl.Declaration, iface *ast.InterfaceType) {
	if iface.Methods == nil || !iface.Methods.Opening.IsValid() {
		return
	}

	d.MembersStart = w.offset(iface.Methods.Opening) + 1
	d.MembersEnd = w.offset(iface.Methods.Closing)
	prevEnd := d.MembersStart

	for _, field := range iface.Methods.List {
		m := &decl.Declaration{
			FullStart:      prevEnd,
			Start:          w.offset(field.Pos()),
			End:            w.withTrailingComment(w.offset(field.End())),
			CodeEnd:        w.offset(field.End()),
			ModifierOffset: -1,
		}

		if _, isFunc := field.Type.(*ast.FuncType); isFunc && len(field.Names) == 1 {
			m.Kind = decl.KindMethod
			m.Name = field.Names[0].Name
			m.Access = accessOf(m.Name)
		}

		d.Members = append(d.Members, m)
		prevEnd = m.End
	}

	// Comments after the last method stay below the method set.
	if prevEnd > d.MembersStart && len(bytes.TrimSpace(w.src[prevEnd:d.MembersEnd])) > 0 {
		d.MembersEnd = prevEnd
	}
}

func (w *walker) offset(pos token.Pos) int {
	return w.fset.Position(pos).Offset
}

// withTrailingComment extends end over a line comment on the same line.
func (w *walker) withTrailingComment(end int) int {
	rest := w.src[end:]
	if nl := bytes.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}

	trimmed := bytes.TrimLeft(rest, " \t")
	if !bytes.HasPrefix(trimmed, []byte("//")) {
		return end
	}

	return end + len(bytes.TrimRight(rest, " \t\r"))
}
