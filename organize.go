// Package regionize groups the members of TypeScript classes and interfaces
// into captioned "// #region" blocks, and the declarations of a file into
// imports, type aliases, interfaces, classes, enums and functions.
//
// # Basic Usage
//
// The simplest way to organize code is with default settings:
//
//	result, err := regionize.Source(src)
//
// # Custom Configuration
//
// For custom ordering, load or create a config:
//
//	cfg, err := regionize.LoadConfig(".regionize.toml")
//	result, err := regionize.SourceWithConfig(src, cfg)
//
// Or modify the default config:
//
//	cfg := regionize.DefaultConfig()
//	cfg.Members.Order = []regionize.MemberGroup{
//		{Caption: "Fields", MemberTypes: []string{"privateProperties", "publicProperties"}},
//		{Caption: "API", MemberTypes: []string{"publicMethods"}, MemberReorder: "alphabetical"},
//	}
//	result, err := regionize.SourceWithConfig(src, cfg)
//
// # Member Types
//
// Members are classified by kind (property, constructor, index, accessor,
// method), visibility, static, abstract and, for properties, const or
// readonly. MemberTypes lists every resulting name. Groups left out of the
// configured order are appended in the default order.
//
// # Go Sources
//
// Go files are organized the same way: interfaces are containers whose
// methods are grouped, iota blocks are enums and other named types are
// filed with the classes. Struct fields are never moved.
package regionize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/toejough/regionize/internal/categorize"
	"github.com/toejough/regionize/internal/decl"
	"github.com/toejough/regionize/internal/emit"
	"github.com/toejough/regionize/internal/parse/golang"
	"github.com/toejough/regionize/internal/parse/typescript"
	"github.com/toejough/regionize/internal/reassemble"
)

// Exported variables.
var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// Language selects the front end used to read a source.
type Language int

// Language values.
const (
	TypeScript Language = iota
	TSX
	Go
)

// LanguageForPath picks the language from a file extension.
func LanguageForPath(path string) (Language, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return TypeScript, nil
	case ".tsx":
		return TSX, nil
	case ".go":
		return Go, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, path)
	}
}

// ParseLanguage parses a language name as accepted by the CLI.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(s) {
	case "ts", "typescript":
		return TypeScript, nil
	case "tsx":
		return TSX, nil
	case "go", "golang":
		return Go, nil
	default:
		return 0, fmt.Errorf("%w: %q (valid: ts, tsx, go)", ErrUnsupportedLanguage, s)
	}
}

func (l Language) String() string {
	switch l {
	case TSX:
		return "tsx"
	case Go:
		return "go"
	default:
		return "typescript"
	}
}

func (l Language) parser() decl.Parser {
	switch l {
	case TSX:
		return typescript.NewTSX()
	case Go:
		return golang.New()
	default:
		return typescript.New()
	}
}

// Option configures an Organizer.
type Option func(*Organizer)

// WithLogger sets the logger used for debug events. The default discards
// everything.
func WithLogger(log *zap.Logger) Option {
	return func(o *Organizer) {
		if log != nil {
			o.log = log
		}
	}
}

// Organizer rewrites sources. It holds no per-call state and is safe for
// concurrent use.
type Organizer struct {
	log *zap.Logger
}

// New returns an Organizer.
func New(opts ...Option) *Organizer {
	o := &Organizer{log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Organize regroups src. Sources that do not parse, or in which nothing is
// recognized, are returned unchanged. Errors report an invalid config or a
// canceled context.
func (o *Organizer) Organize(ctx context.Context, lang Language, src string, cfg *Config) (string, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	rules, err := cfg.policy()
	if err != nil {
		return "", err
	}

	log := o.log.With(zap.Stringer("language", lang))
	parser := lang.parser()

	out := emit.RemoveRegions(src)
	indentation := emit.DetectIndentation(out)

	decls, err := parser.Parse(ctx, []byte(out))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		log.Debug("source left unchanged", zap.Error(err))

		return src, nil
	}

	if decl.AllUnknown(decls) {
		log.Debug("no declarations recognized", zap.Int("nodes", len(decls)))
		return src, nil
	}

	top := categorize.CategorizeTopLevel(decls)

	switch {
	case len(top.Unknown) > 0:
		log.Debug("file-level pass skipped", zap.Int("unknown", len(top.Unknown)))
	case !top.ShouldOrganize():
		log.Debug("file-level pass not needed")
	default:
		out = emit.Print(reassemble.TopLevel(top), out, decls[0].FullStart, decls[len(decls)-1].End, emit.Options{
			Indentation:                 indentation,
			AddRowNumberInRegionName:    cfg.Regions.AddRowNumberInRegionName,
			AddRegionCaptionToRegionEnd: cfg.Regions.AddRegionCaptionToRegionEnd,
			GroupElementsWithDecorators: cfg.Members.GroupPropertiesWithDecorators,
			Logger:                      log,
		})

		decls, err = parser.Parse(ctx, []byte(out))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}

			log.Warn("file-level output no longer parses", zap.Error(err))

			return src, nil
		}
	}

	// Containers are rewritten last to first so earlier offsets stay valid.
	containers := decl.Containers(decls)
	slices.SortFunc(containers, func(a, b *decl.Declaration) int {
		return b.FullStart - a.FullStart
	})

	for _, c := range containers {
		if len(c.Members) == 0 {
			continue
		}

		if c.HasUnknownMembers() {
			log.Debug("container skipped", zap.String("name", c.Name), zap.Stringer("kind", c.Kind))
			continue
		}

		groups := reassemble.Members(c, rules, cfg.Members.TreatArrowFunctionPropertiesAsMethods)
		out = emit.Print(groups, out, c.MembersStart, c.MembersEnd, emit.Options{
			IndentationLevel:            1,
			Indentation:                 indentation,
			AddRowNumberInRegionName:    cfg.Regions.AddRowNumberInRegionName,
			AddPublicModifierIfMissing:  cfg.Members.AddPublicModifierIfMissing && c.Kind == decl.KindClass,
			AddRegionIndentation:        cfg.Regions.AddRegionIndentation,
			AddRegionCaptionToRegionEnd: cfg.Regions.AddRegionCaptionToRegionEnd,
			GroupElementsWithDecorators: cfg.Members.GroupPropertiesWithDecorators,
			Logger:                      log.With(zap.String("container", c.Name)),
		})
	}

	if !cfg.Regions.UseRegions {
		out = emit.RemoveRegions(out)
	}

	// A file that needed no change keeps its formatting. Any other Go file
	// is printed whole by gofmt rules.
	if f, ok := parser.(formatter); ok && out != src {
		formatted, err := f.Format([]byte(out))
		if err != nil {
			log.Warn("output not reformatted", zap.Error(err))
			return out, nil
		}

		out = string(formatted)
	}

	return out, nil
}

// MemberTypes returns every member type name accepted in a member group, in
// default order.
func MemberTypes() []string {
	return categorize.Names()
}

// File returns the organized text of the file at path using the default
// configuration. The file itself is not written.
func File(path string) (string, error) {
	return FileWithConfig(context.Background(), path, DefaultConfig())
}

// FileWithConfig reads path, picks the language from its extension and
// returns the organized text.
func FileWithConfig(ctx context.Context, path string, cfg *Config) (string, error) {
	lang, err := LanguageForPath(path)
	if err != nil {
		return "", err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	return New().Organize(ctx, lang, string(src), cfg)
}

// Source organizes TypeScript source code with the default configuration.
//
// Example:
//
//	organized, err := regionize.Source(src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(organized)
func Source(src string) (string, error) {
	return SourceWithConfig(src, DefaultConfig())
}

// SourceWithConfig organizes TypeScript source code using the provided
// configuration.
//
// Example with modified default config:
//
//	cfg := regionize.DefaultConfig()
//	cfg.Regions.AddRowNumberInRegionName = false
//	result, err := regionize.SourceWithConfig(src, cfg)
func SourceWithConfig(src string, cfg *Config) (string, error) {
	return New().Organize(context.Background(), TypeScript, src, cfg)
}

type formatter interface {
	Format(src []byte) ([]byte, error)
}
