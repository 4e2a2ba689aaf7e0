package emit

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/phobologic/modgen/internal/config"
	"github.com/phobologic/modgen/internal/model"
)

// exported capitalizes the first letter of a Swift identifier, so onHover
// becomes OnHover. The rest of the name keeps its camel case.
func exported(name string) string {
	name = strings.Trim(name, "`")
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return cases.Upper(language.Und).String(string(r)) + name[size:]
}

// unexported lowers the first letter of an exported Go name.
func unexported(name string) string {
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return cases.Lower(language.Und).String(string(r)) + name[size:]
}

// typeName turns a qualified Swift type name into a Go type name:
// Image.DynamicRange becomes ImageDynamicRange.
func typeName(qualified string) string {
	var b strings.Builder
	for _, part := range strings.Split(qualified, ".") {
		b.WriteString(exported(part))
	}
	return b.String()
}

// fieldNames picks a unique exported struct field name per parameter. The
// call-site label is preferred, then the local name.
func fieldNames(sig model.Signature) []string {
	names := make([]string, len(sig.Parameters))
	seen := make(map[string]bool)
	for i, p := range sig.Parameters {
		base := p.FirstName
		if base == "_" || base == "" {
			base = p.LocalName()
		}
		name := exported(base)
		if name == "" || name == "_" {
			name = fmt.Sprintf("Arg%d", i)
		}
		if seen[name] {
			name = fmt.Sprintf("%s%d", name, i)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

// selector renders the Swift-style name of an overload, e.g.
// fade(_:animated:).
func selector(name string, sig model.Signature) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for _, p := range sig.Parameters {
		b.WriteString(p.FirstName)
		b.WriteByte(':')
	}
	b.WriteByte(')')
	return b.String()
}

// extraParser names the host function that parses a hand-written modifier
// type: _ScaleModifier<R> is parsed by ParseScaleModifier.
func extraParser(typ string) string {
	return "Parse" + exported(strings.TrimLeft(config.ExtraBaseName(typ), "_"))
}

var platformConstants = map[string]string{
	"iOS":         "dispatch.IOS",
	"macOS":       "dispatch.MacOS",
	"macCatalyst": "dispatch.MacCatalyst",
	"tvOS":        "dispatch.TVOS",
	"watchOS":     "dispatch.WatchOS",
	"visionOS":    "dispatch.VisionOS",
}

func platformConstant(p string) string {
	if c, ok := platformConstants[p]; ok {
		return c
	}
	return fmt.Sprintf("dispatch.Platform(%q)", p)
}
