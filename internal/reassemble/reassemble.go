// Package reassemble builds ordering policies and arranges categorized
// declarations into captioned group trees.
package reassemble

import (
	"errors"
	"fmt"
	"slices"

	"github.com/toejough/regionize/internal/categorize"
	"github.com/toejough/regionize/internal/decl"
)

// Exported variables.
var (
	ErrUnknownMemberType = errors.New("unknown member type")
	ErrUnknownReorder    = errors.New("unknown member reorder")
)

// Config holds configuration for building an ordering policy.
type Config struct {
	Order               []RuleConfig // User-ordered rules, possibly incomplete
	AccessorsBeforeCtor bool         // Default placement of accessor categories
}

// Group is a node of a group tree: either a *Leaf or a *Region.
type Group interface {
	// Count returns the number of declarations below the node.
	Count() int
	isGroup()
}

// Leaf is a flat, ordered list of declarations.
type Leaf struct {
	Decls []*decl.Declaration
}

// Count returns the number of declarations in the leaf.
func (l *Leaf) Count() int {
	return len(l.Decls)
}

func (*Leaf) isGroup() {}

// Region is a captioned group of child groups.
type Region struct {
	Caption  string
	Children []Group
}

// Count returns the total number of declarations in the region.
func (r *Region) Count() int {
	n := 0
	for _, child := range r.Children {
		n += child.Count()
	}

	return n
}

// Leaves returns the non-empty leaves of the region, depth first.
func (r *Region) Leaves() []*Leaf {
	var leaves []*Leaf

	for _, child := range r.Children {
		switch c := child.(type) {
		case *Leaf:
			if c.Count() > 0 {
				leaves = append(leaves, c)
			}
		case *Region:
			leaves = append(leaves, c.Leaves()...)
		}
	}

	return leaves
}

func (*Region) isGroup() {}

// Reorder selects how declarations are ordered inside a rule.
type Reorder string

// Reorder values.
const (
	ReorderNone         Reorder = "none"
	ReorderAlphabetical Reorder = "alphabetical"
)

// ParseReorder parses a configured reorder mode. Empty means none.
func ParseReorder(s string) (Reorder, error) {
	switch s {
	case "", string(ReorderNone):
		return ReorderNone, nil
	case string(ReorderAlphabetical), "alphabetically":
		return ReorderAlphabetical, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: none, alphabetical)", ErrUnknownReorder, s)
	}
}

// Rule collects a set of categories under one caption.
type Rule struct {
	Caption    string
	Categories []categorize.Category
	Reorder    Reorder
}

// RuleConfig is the configured, by-name form of a Rule.
type RuleConfig struct {
	Caption       string
	MemberTypes   []string
	MemberReorder string
}

// Members arranges a container's members into one region per rule, in rule
// order. Each category of a rule becomes its own leaf, in source order unless
// the rule is alphabetical. Rules that collect nothing still produce an
// (empty) region.
func Members(container *decl.Declaration, rules []Rule, arrowsAsMethods bool) []Group {
	cm := categorize.CategorizeMembers(container, arrowsAsMethods)
	groups := make([]Group, 0, len(rules))

	for _, rule := range rules {
		region := &Region{Caption: rule.Caption}

		for _, c := range rule.Categories {
			if !categorize.ValidFor(c, container.Kind) {
				continue
			}

			decls := slices.Clone(cm.Get(c))
			if rule.Reorder == ReorderAlphabetical {
				categorize.SortByName(decls)
			}

			region.Children = append(region.Children, &Leaf{Decls: decls})
		}

		groups = append(groups, region)
	}

	return groups
}

// Policy builds the effective rule list: configured rules in order with each
// category kept at its first occurrence only, followed by a single-category
// rule for every category the configuration never mentions.
func Policy(cfg *Config) ([]Rule, error) {
	rules := make([]Rule, 0, len(cfg.Order))
	seen := make(map[categorize.Category]bool)

	for _, rc := range cfg.Order {
		reorder, err := ParseReorder(rc.MemberReorder)
		if err != nil {
			return nil, err
		}

		rule := Rule{Caption: rc.Caption, Reorder: reorder}

		for _, name := range rc.MemberTypes {
			c, ok := categorize.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownMemberType, name)
			}

			if seen[c] {
				continue
			}

			seen[c] = true
			rule.Categories = append(rule.Categories, c)
		}

		rules = append(rules, rule)
	}

	for _, c := range categorize.DefaultOrder(cfg.AccessorsBeforeCtor) {
		if seen[c] {
			continue
		}

		rules = append(rules, Rule{
			Caption:    c.Caption(),
			Categories: []categorize.Category{c},
			Reorder:    ReorderNone,
		})
	}

	return rules, nil
}

// TopLevel arranges file-level declarations into the fixed categories.
// Imports form a bare leaf; every other category is a region.
func TopLevel(ct *categorize.CategorizedTopLevel) []Group {
	groups := make([]Group, 0, len(categorize.AllTopLevel()))

	for _, t := range categorize.AllTopLevel() {
		leaf := &Leaf{Decls: ct.Get(t)}

		if !t.IsRegion() {
			groups = append(groups, leaf)
			continue
		}

		groups = append(groups, &Region{Caption: t.Caption(), Children: []Group{leaf}})
	}

	return groups
}
