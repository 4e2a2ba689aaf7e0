// Package config holds the generator's static tables: which types are
// scanned, which modifiers are skipped, which enums are required and which
// hand-written modifiers are merged in. Defaults are embedded; a TOML file can
// replace any key.
package config

import (
	_ "embed"
	"go/token"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

//go:embed defaults.toml
var defaults string

// Parameter is one parameter of a hand-written schema signature.
type Parameter struct {
	FirstName  string `toml:"first_name"`
	SecondName string `toml:"second_name"`
	Type       string `toml:"type"`
}

// Signature is a hand-written schema signature.
type Signature struct {
	Parameters []Parameter `toml:"parameters"`
}

// Config is read-only after Load or Default returns.
type Config struct {
	Package            string                 `toml:"package"`
	Sources            string                 `toml:"sources"`
	Targets            []string               `toml:"targets"`
	Denylist           []string               `toml:"denylist"`
	RequiredTypes      []string               `toml:"required_types"`
	ExtraModifierTypes []string               `toml:"extra_modifier_types"`
	ExtraModifiers     map[string][]Signature `toml:"extra_modifiers"`
	Disambiguate       []string               `toml:"disambiguate"`
	ParseableMarkers   []string               `toml:"parseable_markers"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	var c Config
	if _, err := toml.Decode(defaults, &c); err != nil {
		return nil, errors.Wrap(err, "decoding embedded defaults")
	}
	return &c, c.Validate()
}

// Load reads path over the embedded defaults: keys present in the file
// replace the default value for that key, absent keys keep it.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	// Tables decode by merging; a file that names extra_modifiers replaces
	// the whole table.
	var file struct {
		ExtraModifiers map[string][]Signature `toml:"extra_modifiers"`
	}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	if file.ExtraModifiers != nil {
		c.ExtraModifiers = nil
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.WithHint(
			errors.Newf("config %s: unknown keys %s", path, strings.Join(keys, ", ")),
			"valid keys are package, sources, targets, denylist, required_types, "+
				"extra_modifier_types, extra_modifiers, disambiguate, parseable_markers",
		)
	}
	return c, c.Validate()
}

// Validate checks values that would otherwise produce uncompilable output.
func (c *Config) Validate() error {
	if !token.IsIdentifier(c.Package) {
		return errors.Newf("package %q is not a valid Go identifier", c.Package)
	}
	if len(c.Targets) == 0 {
		return errors.New("targets must name at least one extended type")
	}
	for _, t := range c.ExtraModifierTypes {
		if !strings.HasPrefix(t, "_") || !strings.HasSuffix(ExtraBaseName(t), "Modifier") {
			return errors.Newf("extra modifier type %q must look like _NameModifier", t)
		}
	}
	for name, sigs := range c.ExtraModifiers {
		for i, sig := range sigs {
			for j, p := range sig.Parameters {
				if p.FirstName == "" || p.Type == "" {
					return errors.Newf("extra_modifiers.%s[%d] parameter %d needs first_name and type", name, i, j)
				}
			}
		}
	}
	return nil
}

// IsTarget reports whether functions in extensions of typ are candidate
// modifiers.
func (c *Config) IsTarget(typ string) bool { return slices.Contains(c.Targets, typ) }

// IsDenied reports whether name is excluded from generation.
func (c *Config) IsDenied(name string) bool { return slices.Contains(c.Denylist, name) }

// IsRequired reports whether the enum called name gets a parser.
func (c *Config) IsRequired(name string) bool { return slices.Contains(c.RequiredTypes, name) }

// Disambiguates reports whether the child-content rule applies to name.
func (c *Config) Disambiguates(name string) bool { return slices.Contains(c.Disambiguate, name) }

// IsMarker reports whether name marks an auxiliary type as parseable.
func (c *Config) IsMarker(name string) bool { return slices.Contains(c.ParseableMarkers, name) }

// ExtraBaseName strips generic parameters: _ScaleModifier<R> becomes
// _ScaleModifier.
func ExtraBaseName(typ string) string {
	base, _, _ := strings.Cut(typ, "<")
	return base
}

// ExtraModifierName derives the modifier name from a hand-written type:
// _Rotation3DEffectModifier<R> becomes rotation3DEffect.
func ExtraModifierName(typ string) string {
	name := strings.TrimSuffix(strings.TrimPrefix(ExtraBaseName(typ), "_"), "Modifier")
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
