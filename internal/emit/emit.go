// Package emit renders group trees back into source text.
package emit

import (
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/toejough/regionize/internal/decl"
	"github.com/toejough/regionize/internal/reassemble"
)

// Exported constants.
const (
	RegionEnd   = "// #endregion"
	RegionStart = "// #region"
)

// Options controls how groups are rendered.
type Options struct {
	// IndentationLevel is 0 for file-level declarations and 1 for members.
	IndentationLevel int
	// Indentation is one indentation unit of the file.
	Indentation string
	// NewLine overrides the line terminator detected from the source.
	NewLine string

	AddRowNumberInRegionName    bool
	AddPublicModifierIfMissing  bool
	AddRegionIndentation        bool
	AddRegionCaptionToRegionEnd bool
	GroupElementsWithDecorators bool

	Logger *zap.Logger
}

// DetectIndentation returns the indentation unit of the first indented line:
// a tab, four spaces or two spaces. Two spaces when nothing is indented.
func DetectIndentation(src string) string {
	for line := range strings.SplitSeq(src, "\n") {
		switch {
		case strings.HasPrefix(line, "\t"):
			return "\t"
		case strings.HasPrefix(line, "    "):
			return "    "
		case strings.HasPrefix(line, "  "):
			return "  "
		}
	}

	return "  "
}

// DetectNewLine returns "\r\n" if the source uses it anywhere, "\n" otherwise.
func DetectNewLine(src string) string {
	if strings.Contains(src, "\r\n") {
		return "\r\n"
	}

	return "\n"
}

// Print renders every non-empty group and splices the result into src in
// place of [start, end). Text before the span loses its trailing whitespace
// and text after it loses its leading blank lines, keeping the indentation of
// the line it continues on.
func Print(groups []reassemble.Group, src string, start, end int, opts Options) string {
	nl := opts.NewLine
	if nl == "" {
		nl = DetectNewLine(src)
	}

	p := &printer{src: src, opts: opts, log: opts.Logger}
	if p.log == nil {
		p.log = zap.NewNop()
	}

	for _, g := range groups {
		if g.Count() == 0 {
			continue
		}

		switch g := g.(type) {
		case *reassemble.Region:
			p.region(g)
		case *reassemble.Leaf:
			p.leaf(g)
			p.out.blank()
		}
	}

	start, end = clamp(start, len(src)), clamp(end, len(src))

	var b strings.Builder

	b.WriteString(strings.TrimRightFunc(src[:start], unicode.IsSpace))
	b.WriteString(nl)
	b.WriteString(p.out.join(nl))
	b.WriteString(nl)
	b.WriteString(trimLeadingLines(src[end:]))

	return strings.TrimLeftFunc(b.String(), unicode.IsSpace)
}

// trimLeadingLines drops the leading whitespace of s up to and including its
// last line break.
func trimLeadingLines(s string) string {
	rest := strings.TrimLeftFunc(s, unicode.IsSpace)
	lead := s[:len(s)-len(rest)]

	if i := strings.LastIndexByte(lead, '\n'); i >= 0 {
		return s[i+1:]
	}

	return rest
}

// lineBuffer collects rendered lines. Blank lines are markers that collapse
// into one and vanish at either end.
type lineBuffer struct {
	entries []string
}

func (l *lineBuffer) blank() {
	l.entries = append(l.entries, "")
}

func (l *lineBuffer) join(nl string) string {
	out := make([]string, 0, len(l.entries))

	for _, e := range l.entries {
		if e == "" && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}

		out = append(out, e)
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	return strings.Join(out, nl)
}

func (l *lineBuffer) line(s string) {
	l.entries = append(l.entries, s)
}

type printer struct {
	src  string
	opts Options
	log  *zap.Logger
	out  lineBuffer
}

func (p *printer) code(d *decl.Declaration) string {
	text := span(p.src, d.Start, d.End)

	if p.opts.AddPublicModifierIfMissing && d.Access == decl.AccessNone && injectable(d.Kind) {
		rewritten, ok := InjectPublic(p.src, d)
		if ok {
			text = rewritten
		} else {
			p.log.Debug("public modifier not injected",
				zap.String("name", d.Name),
				zap.Stringer("kind", d.Kind))
		}
	}

	return strings.TrimSpace(text)
}

func (p *printer) leaf(l *reassemble.Leaf) {
	indent := ""
	if p.opts.IndentationLevel == 1 {
		indent = p.opts.Indentation
	}

	for i, d := range l.Decls {
		if p.opts.GroupElementsWithDecorators && i > 0 && l.Decls[i-1].IsDecorated() && !d.IsDecorated() {
			p.out.blank()
		}

		if comment := strings.TrimSpace(span(p.src, d.FullStart, d.Start)); comment != "" {
			p.out.line(indent + comment)
		}

		p.out.line(indent + p.code(d))

		if strings.HasSuffix(strings.TrimSpace(d.CodeText(p.src)), "}") || (d.Kind == decl.KindProperty && d.IsArrowFunctionProperty) {
			p.out.blank()
		}
	}
}

func (p *printer) marker(prefix, caption string, withCaption bool, count int) string {
	var b strings.Builder

	if p.opts.AddRegionIndentation {
		b.WriteString(p.opts.Indentation)
	}

	b.WriteString(prefix)

	if withCaption && caption != "" {
		b.WriteString(" " + caption)
	}

	if p.opts.AddRowNumberInRegionName {
		fmt.Fprintf(&b, " (%d)", count)
	}

	return b.String()
}

func (p *printer) region(r *reassemble.Region) {
	count := r.Count()

	p.out.line(p.marker(RegionStart, r.Caption, true, count))
	p.out.blank()

	for _, child := range r.Children {
		if child.Count() == 0 {
			continue
		}

		switch c := child.(type) {
		case *reassemble.Leaf:
			p.leaf(c)
			p.out.blank()
		case *reassemble.Region:
			p.region(c)
		}
	}

	p.out.blank()
	p.out.line(p.marker(RegionEnd, r.Caption, p.opts.AddRegionCaptionToRegionEnd, count))
	p.out.blank()
}

func clamp(i, n int) int {
	return max(0, min(i, n))
}

func span(src string, start, end int) string {
	start, end = clamp(start, len(src)), clamp(end, len(src))
	if start >= end {
		return ""
	}

	return src[start:end]
}
