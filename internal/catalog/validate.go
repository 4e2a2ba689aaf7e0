package catalog

import (
	"github.com/phobologic/modgen/internal/config"
	"github.com/phobologic/modgen/internal/model"
)

// Valid reports whether every parameter of sig can be expressed in the
// generated parser. A signature is rejected when a parameter
//
//   - is a builder closure that takes arguments,
//   - is a plain closure returning something other than Void or (),
//   - or is a FocusState binding.
func Valid(sig model.Signature) bool {
	for _, p := range sig.Parameters {
		fn := p.Type.Function()
		if p.Builder() != "" {
			if fn == nil || len(fn.Args) != 0 {
				return false
			}
			continue
		}
		if fn != nil && !fn.Result.IsVoid() {
			return false
		}
		if p.Type.Mentions("FocusState") {
			return false
		}
	}
	return true
}

// Dedupe folds sigs left to right, dropping any signature that duplicates
// one already kept. Dedupe(Dedupe(s)) equals Dedupe(s).
func Dedupe(sigs []model.Signature) []model.Signature {
	var out []model.Signature
	for _, next := range sigs {
		dup := false
		for _, prev := range out {
			if prev.Duplicates(next) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, next)
		}
	}
	return out
}

// Disambiguate drops the child-content form of a modifier configured for it
// when a sibling differs only by taking a toolbar-content reference at the
// same position. Builder overload resolution always prefers child content,
// so the reference form would otherwise be unreachable.
func Disambiguate(name string, sigs []model.Signature, cfg *config.Config) []model.Signature {
	if !cfg.Disambiguates(name) {
		return sigs
	}
	var out []model.Signature
	for i, s := range sigs {
		shadowed := false
		for j, o := range sigs {
			if i != j && shadows(o, s) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			out = append(out, s)
		}
	}
	return out
}

// shadows reports whether ref is the toolbar-content twin of child.
func shadows(ref, child model.Signature) bool {
	if len(ref.Parameters) != len(child.Parameters) {
		return false
	}
	pivot := -1
	for k, c := range child.Parameters {
		r := ref.Parameters[k]
		if c.Builder() == model.ViewBuilder && r.Builder() == model.ToolbarContentBuilder && c.FirstName == r.FirstName {
			if pivot >= 0 {
				return false
			}
			pivot = k
			continue
		}
		if c.FirstName != r.FirstName || c.SimpleType() != r.SimpleType() {
			return false
		}
	}
	return pivot >= 0
}
