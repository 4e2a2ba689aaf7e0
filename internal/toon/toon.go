// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/phobologic/modgen/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a schema document into TOON format. Map keys are emitted
// in sorted order; signatures and parameters keep catalog order.
func Encode(s *model.Schema) string {
	var parts []string

	names := sortedKeys(s.Modifiers)

	var modifierRows [][]string
	for _, name := range names {
		modifierRows = append(modifierRows, []string{name, fmt.Sprintf("%d", len(s.Modifiers[name]))})
	}
	parts = append(parts, formatTabular("modifiers", []string{"name", "signatures"}, modifierRows))

	var paramRows [][]string
	for _, name := range names {
		for i, sig := range s.Modifiers[name] {
			for j, p := range sig.Parameters {
				paramRows = append(paramRows, []string{
					name,
					fmt.Sprintf("%d", i),
					fmt.Sprintf("%d", j),
					p.FirstName,
					p.SecondName,
					p.Type,
				})
			}
		}
	}
	parts = append(parts, formatTabular("parameters",
		[]string{"modifier", "signature", "position", "firstName", "secondName", "type"}, paramRows))

	var enumRows [][]string
	for _, name := range sortedKeys(s.Enums) {
		enumRows = append(enumRows, []string{name, strings.Join(s.Enums[name], " ")})
	}
	parts = append(parts, formatTabular("enums", []string{"name", "cases"}, enumRows))

	var typeRows [][]string
	for _, name := range s.Types {
		typeRows = append(typeRows, []string{name})
	}
	parts = append(parts, formatTabular("types", []string{"name"}, typeRows))

	return strings.Join(parts, "\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
