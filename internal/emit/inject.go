package emit

import (
	"regexp"
	"strings"

	"github.com/toejough/regionize/internal/decl"
)

// InjectPublic returns the declaration text with a "public" modifier added.
// It prefers the modifier offset recorded by the parser and falls back to
// matching the declaration's head against its name. ok is false when neither
// applies; the text is then returned unchanged.
func InjectPublic(src string, d *decl.Declaration) (string, bool) {
	text := span(src, d.Start, d.End)

	if d.ModifierOffset >= d.Start && d.ModifierOffset < d.End {
		off := d.ModifierOffset - d.Start
		return text[:off] + "public " + text[off:], true
	}

	if d.Name == "" {
		return text, false
	}

	for _, p := range headPatterns(d) {
		if rewritten, ok := replaceFirst(p.re, text, p.repl); ok {
			return rewritten, true
		}
	}

	return text, false
}

type headPattern struct {
	re   *regexp.Regexp
	repl string
}

// headPatterns returns the declaration-head patterns for d, most specific first.
// Every pattern captures the text before the head as ${1} so names are not
// matched inside longer identifiers.
func headPatterns(d *decl.Declaration) []headPattern {
	name := regexp.QuoteMeta(d.Name)
	lit := strings.ReplaceAll(d.Name, "$", "$$")
	lead := `(^|[^\w$.#])`

	pattern := func(expr, repl string) headPattern {
		return headPattern{re: regexp.MustCompile(lead + expr), repl: "${1}" + repl}
	}

	switch d.Kind {
	case decl.KindMethod:
		if d.IsStatic {
			return []headPattern{
				pattern(`static\s+async\s+`+name+`(\s*[<(])`, "public static async "+lit+"${2}"),
				pattern(`static\s+`+name+`(\s*[<(])`, "public static "+lit+"${2}"),
			}
		}

		return []headPattern{
			pattern(`async\s+`+name+`(\s*[<(])`, "public async "+lit+"${2}"),
			pattern(name+`(\s*[<(])`, "public "+lit+"${2}"),
		}
	case decl.KindProperty:
		if d.IsStatic {
			return []headPattern{
				pattern(`static\s+`+name+`(\s*[:=;?!]|\s*$)`, "public static "+lit+"${2}"),
			}
		}

		return []headPattern{
			pattern(name+`(\s*[:=;?!]|\s*$)`, "public "+lit+"${2}"),
		}
	case decl.KindGetter, decl.KindSetter:
		keyword := "get"
		if d.Kind == decl.KindSetter {
			keyword = "set"
		}

		if d.IsStatic {
			return []headPattern{
				pattern(`static\s+`+keyword+`\s+`+name+`(\s*\()`, "public static "+keyword+" "+lit+"${2}"),
			}
		}

		return []headPattern{
			pattern(keyword+`\s+`+name+`(\s*\()`, "public "+keyword+" "+lit+"${2}"),
		}
	default:
		return nil
	}
}

// injectable reports whether a member of this kind may receive a public
// modifier.
func injectable(k decl.Kind) bool {
	switch k {
	case decl.KindMethod, decl.KindProperty, decl.KindGetter, decl.KindSetter:
		return true
	default:
		return false
	}
}

func replaceFirst(re *regexp.Regexp, text, repl string) (string, bool) {
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, false
	}

	expanded := re.ExpandString(nil, repl, text, loc)

	return text[:loc[0]] + string(expanded) + text[loc[1]:], true
}
