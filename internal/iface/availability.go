package iface

import (
	"strconv"
	"strings"
)

// PlatformVersion is one "introduced" requirement, e.g. iOS 16.0.
type PlatformVersion struct {
	Platform string
	Version  string
}

// Availability is the merged content of a declaration's @available
// attributes. Platforms the generator does not target (application
// extensions, swift language versions) are dropped.
type Availability struct {
	Introduced  []PlatformVersion
	Unavailable []string

	// Deprecated is set by a bare `deprecated` or a deprecation version
	// below the "future" sentinel.
	Deprecated bool
	// Obsoleted is set by `obsoleted:` or `*, unavailable`.
	Obsoleted bool
	Message   string
	Renamed   string
}

// futureDeprecation is the version interfaces use to announce a deprecation
// that has not happened yet.
const futureDeprecation = 100000

var platformNames = map[string]string{
	"iOS":         "iOS",
	"macOS":       "macOS",
	"OSX":         "macOS",
	"macCatalyst": "macCatalyst",
	"tvOS":        "tvOS",
	"watchOS":     "watchOS",
	"visionOS":    "visionOS",
	"xrOS":        "visionOS",
}

// IsEmpty reports whether a carries no platform constraint.
func (a Availability) IsEmpty() bool {
	return len(a.Introduced) == 0 && len(a.Unavailable) == 0
}

// Retired reports whether a declaration with this availability should no
// longer be generated.
func (a Availability) Retired() bool {
	return a.Deprecated || a.Obsoleted
}

// Merge returns a with b's constraints added. Requirements already present
// in a win.
func (a Availability) Merge(b Availability) Availability {
	out := Availability{
		Introduced:  append([]PlatformVersion(nil), a.Introduced...),
		Unavailable: append([]string(nil), a.Unavailable...),
		Deprecated:  a.Deprecated || b.Deprecated,
		Obsoleted:   a.Obsoleted || b.Obsoleted,
		Message:     a.Message,
		Renamed:     a.Renamed,
	}
	for _, pv := range b.Introduced {
		out.addIntroduced(pv)
	}
	for _, p := range b.Unavailable {
		out.addUnavailable(p)
	}
	if out.Message == "" {
		out.Message = b.Message
	}
	if out.Renamed == "" {
		out.Renamed = b.Renamed
	}
	return out
}

func (a *Availability) addIntroduced(pv PlatformVersion) {
	for _, have := range a.Introduced {
		if have.Platform == pv.Platform {
			return
		}
	}
	a.Introduced = append(a.Introduced, pv)
}

func (a *Availability) addUnavailable(p string) {
	for _, have := range a.Unavailable {
		if have == p {
			return
		}
	}
	a.Unavailable = append(a.Unavailable, p)
}

func availabilityOf(attrs []Attribute) Availability {
	var a Availability
	for _, attr := range attrs {
		if attr.Name == "available" {
			a.apply(attr.Args)
		}
	}
	return a
}

// apply merges one @available argument list. Two shapes exist:
//
//	@available(iOS 16.0, macOS 13.0, *)
//	@available(iOS, introduced: 16.0, deprecated: 17.0, message: "...")
func (a *Availability) apply(args []Token) {
	groups := splitArgs(args)
	if len(groups) == 0 {
		return
	}
	if len(groups) > 1 && len(groups[0]) == 1 && isLongFormEntry(groups[1]) {
		a.applyLong(groups[0][0].Text, groups[1:])
		return
	}
	for _, g := range groups {
		if len(g) != 2 || g[1].Kind != Number {
			continue
		}
		if p, ok := platformNames[g[0].Text]; ok {
			a.addIntroduced(PlatformVersion{Platform: p, Version: g[1].Text})
		}
	}
}

func isLongFormEntry(g []Token) bool {
	if len(g) == 0 || g[0].Kind != Ident {
		return false
	}
	switch g[0].Text {
	case "introduced", "deprecated", "obsoleted", "unavailable", "message", "renamed", "noasync":
		return true
	}
	return false
}

func (a *Availability) applyLong(platform string, entries [][]Token) {
	p, known := platformNames[platform]
	wildcard := platform == "*"
	if !known && !wildcard {
		return
	}
	for _, e := range entries {
		value := ""
		if len(e) >= 3 && e[1].Text == ":" {
			value = e[2].Text
			if e[2].Kind == String {
				value = unescape(value)
			}
		}
		switch e[0].Text {
		case "introduced":
			if known && value != "" {
				a.addIntroduced(PlatformVersion{Platform: p, Version: value})
			}
		case "deprecated":
			if value == "" || !isFutureVersion(value) {
				a.Deprecated = true
			}
		case "obsoleted":
			a.Obsoleted = true
		case "unavailable":
			if wildcard {
				a.Obsoleted = true
			} else {
				a.addUnavailable(p)
			}
		case "message":
			if a.Message == "" {
				a.Message = value
			}
		case "renamed":
			if a.Renamed == "" {
				a.Renamed = value
			}
		}
	}
}

func isFutureVersion(v string) bool {
	major, _, _ := strings.Cut(v, ".")
	n, err := strconv.Atoi(major)
	return err == nil && n >= futureDeprecation
}

// splitArgs splits attribute arguments at top-level commas.
func splitArgs(args []Token) [][]Token {
	var groups [][]Token
	depth, start := 0, 0
	for i, t := range args {
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case ",":
			if depth == 0 && t.Kind == Punct {
				if i > start {
					groups = append(groups, args[start:i])
				}
				start = i + 1
			}
		}
	}
	if start < len(args) {
		groups = append(groups, args[start:])
	}
	return groups
}

// unescape resolves the escapes that appear in interface string literals.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
