package regionize

import (
	"context"
	"fmt"
	"slices"

	"github.com/toejough/regionize/internal/decl"
	"github.com/toejough/regionize/internal/emit"
	"github.com/toejough/regionize/internal/reassemble"
)

// ContainerOrder represents the member regions of one class or interface
// and their order in the source.
type ContainerOrder struct {
	Name    string
	Kind    string // "class" or "interface"
	Regions []RegionPosition
}

// InOrder reports whether every region already sits at its expected
// position with its members kept together.
func (c ContainerOrder) InOrder() bool {
	for _, r := range c.Regions {
		if r.Position != r.Expected || r.Scattered {
			return false
		}
	}

	return true
}

// RegionPosition locates one populated region inside a container.
type RegionPosition struct {
	Caption   string
	Position  int  // Position of first member in the source (1-indexed)
	Expected  int  // Position once organized (1-indexed)
	Scattered bool // Members of the region are interleaved with others
}

// AnalyzeMemberOrder analyzes the current member order of every class and
// interface in src. Region markers are ignored. Containers that would be
// skipped when organizing are left out.
func AnalyzeMemberOrder(lang Language, src string, cfg *Config) ([]ContainerOrder, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	rules, err := cfg.policy()
	if err != nil {
		return nil, err
	}

	decls, err := lang.parser().Parse(context.Background(), []byte(emit.RemoveRegions(src)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	var orders []ContainerOrder

	for _, c := range decl.Containers(decls) {
		if len(c.Members) == 0 || c.HasUnknownMembers() {
			continue
		}

		orders = append(orders, containerOrder(c, reassemble.Members(c, rules, cfg.Members.TreatArrowFunctionPropertiesAsMethods)))
	}

	return orders, nil
}

func containerOrder(c *decl.Declaration, groups []reassemble.Group) ContainerOrder {
	region := make(map[*decl.Declaration]int)
	captions := make([]string, len(groups))

	for i, g := range groups {
		r, ok := g.(*reassemble.Region)
		if !ok {
			continue
		}

		captions[i] = r.Caption

		for _, leaf := range r.Leaves() {
			for _, d := range leaf.Decls {
				region[d] = i
			}
		}
	}

	// Walk the members in source order to record region transitions.
	var (
		seen     []int
		last     = -1
		regions  = make(map[int]*RegionPosition)
		position = 0
	)

	for _, m := range c.Members {
		i, ok := region[m]
		if !ok {
			continue
		}

		if i == last {
			continue
		}

		if rp, visited := regions[i]; visited {
			rp.Scattered = true
		} else {
			position++
			regions[i] = &RegionPosition{Caption: captions[i], Position: position}
			seen = append(seen, i)
		}

		last = i
	}

	expected := slices.Clone(seen)
	slices.Sort(expected)

	order := ContainerOrder{Name: c.Name, Kind: c.Kind.String()}
	for _, i := range seen {
		rp := regions[i]
		rp.Expected = slices.Index(expected, i) + 1
		order.Regions = append(order.Regions, *rp)
	}

	return order
}
