package emit

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/modgen/internal/graph"
	"github.com/phobologic/modgen/internal/model"
	"github.com/phobologic/modgen/internal/toon"
)

// Schema formats accepted by Encode.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOON = "toon"
)

// Formats lists the accepted schema formats.
var Formats = []string{FormatJSON, FormatYAML, FormatTOON}

// Schema builds the schema document for cat. Hand-written signatures are
// merged first and replaced by generated ones of the same name. decls come
// from the secondary source scan: parseable enums and the types they reach
// add enum entries, and every reachable name is listed in Types. Interface
// enums win over scanned enums of the same name.
func Schema(cat *model.Catalog, decls []model.TypeDecl) *model.Schema {
	s := &model.Schema{
		Modifiers: make(map[string][]model.SchemaSignature),
		Enums:     make(map[string][]string),
		Types:     []string{},
	}
	for name, sigs := range cat.ExtraSignatures {
		s.Modifiers[name] = schemaSignatures(sigs)
	}
	for _, m := range cat.Modifiers {
		s.Modifiers[m.Name] = schemaSignatures(m.Signatures)
	}

	reachable := graph.Reachable(decls)
	for name, cases := range graph.Enums(decls, reachable) {
		s.Enums[name] = cases
	}
	for _, e := range cat.Enums {
		cases := make([]string, len(e.Cases))
		for i, c := range e.Cases {
			cases[i] = c.Name
		}
		s.Enums[e.Name] = cases
	}
	s.Types = append(s.Types, reachable...)
	return s
}

func schemaSignatures(sigs []model.Signature) []model.SchemaSignature {
	out := make([]model.SchemaSignature, len(sigs))
	for i, sig := range sigs {
		params := make([]model.SchemaParameter, len(sig.Parameters))
		for j, p := range sig.Parameters {
			params[j] = model.SchemaParameter{
				FirstName:  p.FirstName,
				SecondName: p.SecondName,
				Type:       schemaType(p),
			}
		}
		out[i] = model.SchemaSignature{Parameters: params}
	}
	return out
}

// schemaType is the canonical type text, except that builder closures are
// described by the reference they are parsed as.
func schemaType(p model.Parameter) string {
	switch p.Builder() {
	case model.ViewBuilder, model.ToolbarContentBuilder:
		return p.SimpleType()
	}
	return p.Type.String()
}

// Encode writes s to w in format. Map keys are sorted by every encoder.
func Encode(w io.Writer, s *model.Schema, format string) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return errors.Wrap(enc.Encode(s), "encoding json schema")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return errors.Wrap(err, "encoding yaml schema")
		}
		return errors.Wrap(enc.Close(), "encoding yaml schema")
	case FormatTOON:
		_, err := io.WriteString(w, toon.Encode(s)+"\n")
		return errors.Wrap(err, "writing toon schema")
	}
	return errors.WithHint(
		errors.Newf("unknown schema format %q", format),
		"use one of json, yaml or toon",
	)
}
