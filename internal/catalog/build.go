package catalog

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/phobologic/modgen/internal/config"
	"github.com/phobologic/modgen/internal/iface"
	"github.com/phobologic/modgen/internal/model"
)

// Build produces the catalog for f. Modifiers that are internal, denylisted
// or left without a valid signature are reported to diag as
// "`name` will be skipped" and omitted.
func Build(f *iface.File, cfg *config.Config, diag io.Writer) (*model.Catalog, error) {
	col := Collect(f, cfg)

	names := append([]string(nil), col.Names...)
	sort.Strings(names)

	cat := &model.Catalog{
		Deprecations: make(map[string]string),
	}
	for _, name := range names {
		sigs := retained(name, col.Overloads[name], cfg)
		if len(sigs) == 0 {
			if _, err := fmt.Fprintf(diag, "`%s` will be skipped\n", name); err != nil {
				return nil, errors.Wrap(err, "writing diagnostics")
			}
			continue
		}
		cat.Modifiers = append(cat.Modifiers, model.Modifier{Name: name, Signatures: sigs})
	}

	for name, msg := range col.Deprecations {
		if !strings.HasPrefix(name, "_") {
			cat.Deprecations[name] = msg
		}
	}

	cat.Enums = Enums(f, cfg)

	cat.Extras = append([]string(nil), cfg.ExtraModifierTypes...)
	sort.Strings(cat.Extras)

	extra, err := ExtraSignatures(cfg)
	if err != nil {
		return nil, err
	}
	cat.ExtraSignatures = extra
	return cat, nil
}

// retained applies the skip rules, validation, deduplication and
// disambiguation to one modifier's overloads.
func retained(name string, sigs []model.Signature, cfg *config.Config) []model.Signature {
	if strings.HasPrefix(name, "_") || cfg.IsDenied(name) {
		return nil
	}
	var valid []model.Signature
	for _, s := range sigs {
		if Valid(s) {
			valid = append(valid, s)
		}
	}
	return Disambiguate(name, Dedupe(valid), cfg)
}

// ExtraSignatures converts the hand-written schema signatures in cfg.
func ExtraSignatures(cfg *config.Config) (map[string][]model.Signature, error) {
	out := make(map[string][]model.Signature, len(cfg.ExtraModifiers))
	for name, sigs := range cfg.ExtraModifiers {
		for _, s := range sigs {
			sig := model.Signature{Parameters: make([]model.Parameter, len(s.Parameters))}
			for i, p := range s.Parameters {
				t, err := iface.ParseType(p.Type)
				if err != nil {
					return nil, errors.Wrapf(err, "extra modifier %s: type %q", name, p.Type)
				}
				sig.Parameters[i] = model.Parameter{FirstName: p.FirstName, SecondName: p.SecondName, Type: t}
			}
			out[name] = append(out[name], sig)
		}
	}
	return out, nil
}
