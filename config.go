package regionize

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/toejough/regionize/internal/categorize"
	"github.com/toejough/regionize/internal/reassemble"
)

// Exported constants.
const (
	ConfigFileName     = ".regionize.toml"
	YAMLConfigFileName = ".regionize.yaml"
)

// Exported variables.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ValidReorders    = map[string]bool{
		"":               true,
		"none":           true,
		"alphabetical":   true,
		"alphabetically": true,
	}
)

// Config holds all configuration for regionize.
//
// Example usage:
//
//	cfg := regionize.DefaultConfig()
//	cfg.Regions.UseRegions = false
//	result, err := regionize.SourceWithConfig(src, cfg)
//
// Or load from file:
//
//	cfg, err := regionize.LoadConfig(".regionize.toml")
//	result, err := regionize.SourceWithConfig(src, cfg)
type Config struct {
	// Regions controls the region markers written around groups.
	Regions RegionsConfig

	// Members controls how class and interface members are grouped.
	Members MembersConfig
}

// Validate checks that the config is valid.
func (c *Config) Validate() error {
	for _, g := range c.Members.Order {
		for _, name := range g.MemberTypes {
			if _, ok := categorize.Lookup(name); !ok {
				return fmt.Errorf("%w: unknown member type %q in group %q", ErrInvalidConfig, name, g.Caption)
			}
		}

		if !ValidReorders[g.MemberReorder] {
			return fmt.Errorf("%w: unknown member reorder %q in group %q (valid: none, alphabetical)",
				ErrInvalidConfig, g.MemberReorder, g.Caption)
		}
	}

	return nil
}

// policy builds the effective member ordering, completing the configured
// groups with every member type they leave out.
func (c *Config) policy() ([]reassemble.Rule, error) {
	order := make([]reassemble.RuleConfig, 0, len(c.Members.Order))
	for _, g := range c.Members.Order {
		order = append(order, reassemble.RuleConfig{
			Caption:       g.Caption,
			MemberTypes:   g.MemberTypes,
			MemberReorder: g.MemberReorder,
		})
	}

	rules, err := reassemble.Policy(&reassemble.Config{
		Order:               order,
		AccessorsBeforeCtor: c.Members.AccessorsBeforeCtor,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return rules, nil
}

// MemberGroup collects member types under one region caption.
//
// Member type names are the camelCase category names listed by
// MemberTypes, e.g. "privateStaticConstProperties" or "publicMethods".
type MemberGroup struct {
	Caption       string
	MemberTypes   []string
	MemberReorder string // "none" (default) or "alphabetical"
}

// MembersConfig controls member grouping.
type MembersConfig struct {
	// AddPublicModifierIfMissing writes "public" on class members without
	// an access modifier.
	AddPublicModifierIfMissing bool

	// AccessorsBeforeCtor places getters and setters before constructors
	// in the default order.
	AccessorsBeforeCtor bool

	// GroupPropertiesWithDecorators separates decorated members from the
	// undecorated ones that follow them with a blank line.
	GroupPropertiesWithDecorators bool

	// TreatArrowFunctionPropertiesAsMethods files properties initialized
	// with a function under the methods of the same visibility.
	TreatArrowFunctionPropertiesAsMethods bool

	// Order lists member groups in the desired output order. Member types
	// not mentioned get a group of their own, appended in default order.
	Order []MemberGroup
}

// RegionsConfig controls region markers.
type RegionsConfig struct {
	// UseRegions keeps the markers in the output. Without it the output is
	// grouped but unmarked.
	UseRegions bool

	AddRowNumberInRegionName    bool
	AddRegionIndentation        bool
	AddRegionCaptionToRegionEnd bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Regions: RegionsConfig{
			UseRegions:                  true,
			AddRowNumberInRegionName:    true,
			AddRegionIndentation:        true,
			AddRegionCaptionToRegionEnd: true,
		},
		Members: MembersConfig{
			AddPublicModifierIfMissing: true,
		},
	}
}

// FindConfig searches for a config file starting from the given directory,
// walking up the directory tree until it finds one or reaches a boundary.
// Returns empty string if no config file is found.
// Boundaries are: .git directory, go.mod or package.json file, or filesystem root.
func FindConfig(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range []string{ConfigFileName, YAMLConfigFileName, ".regionize.yml"} {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath, nil
			}
		}

		for _, boundary := range []string{".git", "go.mod", "package.json"} {
			if _, err := os.Stat(filepath.Join(dir, boundary)); err == nil {
				return "", nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}

		dir = parent
	}
}

// LoadConfig loads configuration from a TOML or YAML file, chosen by
// extension. If the file doesn't exist, returns default config.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var fileCfg fileConfig

	if isYAML(path) {
		err = yaml.Unmarshal(data, &fileCfg)
	} else {
		_, err = toml.Decode(string(data), &fileCfg)
	}

	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	fileCfg.mergeInto(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WriteDefaultConfig writes the default configuration as TOML, or as YAML
// when format is "yaml".
func WriteDefaultConfig(w io.Writer, format string) error {
	fileCfg := toFileConfig(DefaultConfig())

	if format == "yaml" || format == "yml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(fileCfg); err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}

		return enc.Close()
	}

	if _, err := io.WriteString(w, "# regionize configuration. Member types: regionize --list-member-types\n\n"); err != nil {
		return err
	}

	if err := toml.NewEncoder(w).Encode(fileCfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}

// fileConfig mirrors Config but uses pointers/nil to detect unset values.
type fileConfig struct {
	Regions fileRegionsConfig `toml:"regions" yaml:"regions"`
	Members fileMembersConfig `toml:"members" yaml:"members"`
}

func (f *fileConfig) mergeInto(cfg *Config) {
	setBool(&cfg.Regions.UseRegions, f.Regions.UseRegions)
	setBool(&cfg.Regions.AddRowNumberInRegionName, f.Regions.AddRowNumberInRegionName)
	setBool(&cfg.Regions.AddRegionIndentation, f.Regions.AddRegionIndentation)
	setBool(&cfg.Regions.AddRegionCaptionToRegionEnd, f.Regions.AddRegionCaptionToRegionEnd)

	setBool(&cfg.Members.AddPublicModifierIfMissing, f.Members.AddPublicModifierIfMissing)
	setBool(&cfg.Members.AccessorsBeforeCtor, f.Members.AccessorsBeforeCtor)
	setBool(&cfg.Members.GroupPropertiesWithDecorators, f.Members.GroupPropertiesWithDecorators)
	setBool(&cfg.Members.TreatArrowFunctionPropertiesAsMethods, f.Members.TreatArrowFunctionPropertiesAsMethods)

	if f.Members.Order != nil {
		cfg.Members.Order = make([]MemberGroup, 0, len(f.Members.Order))
		for _, g := range f.Members.Order {
			cfg.Members.Order = append(cfg.Members.Order, MemberGroup(g))
		}
	}
}

type fileMemberGroup struct {
	Caption       string   `toml:"caption" yaml:"caption"`
	MemberTypes   []string `toml:"member_types" yaml:"member_types"`
	MemberReorder string   `toml:"member_reorder,omitempty" yaml:"member_reorder,omitempty"`
}

type fileMembersConfig struct {
	AddPublicModifierIfMissing            *bool             `toml:"add_public_modifier_if_missing" yaml:"add_public_modifier_if_missing"`
	AccessorsBeforeCtor                   *bool             `toml:"accessors_before_ctor" yaml:"accessors_before_ctor"`
	GroupPropertiesWithDecorators         *bool             `toml:"group_properties_with_decorators" yaml:"group_properties_with_decorators"`
	TreatArrowFunctionPropertiesAsMethods *bool             `toml:"treat_arrow_function_properties_as_methods" yaml:"treat_arrow_function_properties_as_methods"`
	Order                                 []fileMemberGroup `toml:"order,omitempty" yaml:"order,omitempty"`
}

type fileRegionsConfig struct {
	UseRegions                  *bool `toml:"use_regions" yaml:"use_regions"`
	AddRowNumberInRegionName    *bool `toml:"add_row_number_in_region_name" yaml:"add_row_number_in_region_name"`
	AddRegionIndentation        *bool `toml:"add_region_indentation" yaml:"add_region_indentation"`
	AddRegionCaptionToRegionEnd *bool `toml:"add_region_caption_to_region_end" yaml:"add_region_caption_to_region_end"`
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func toFileConfig(cfg *Config) fileConfig {
	ptr := func(b bool) *bool { return &b }

	f := fileConfig{
		Regions: fileRegionsConfig{
			UseRegions:                  ptr(cfg.Regions.UseRegions),
			AddRowNumberInRegionName:    ptr(cfg.Regions.AddRowNumberInRegionName),
			AddRegionIndentation:        ptr(cfg.Regions.AddRegionIndentation),
			AddRegionCaptionToRegionEnd: ptr(cfg.Regions.AddRegionCaptionToRegionEnd),
		},
		Members: fileMembersConfig{
			AddPublicModifierIfMissing:            ptr(cfg.Members.AddPublicModifierIfMissing),
			AccessorsBeforeCtor:                   ptr(cfg.Members.AccessorsBeforeCtor),
			GroupPropertiesWithDecorators:         ptr(cfg.Members.GroupPropertiesWithDecorators),
			TreatArrowFunctionPropertiesAsMethods: ptr(cfg.Members.TreatArrowFunctionPropertiesAsMethods),
		},
	}

	for _, g := range cfg.Members.Order {
		f.Members.Order = append(f.Members.Order, fileMemberGroup(g))
	}

	return f
}
