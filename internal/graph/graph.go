// Package graph builds the reference graph between scanned type
// declarations and resolves which types parseable declarations depend on.
package graph

import (
	"sort"
	"strings"

	"github.com/phobologic/modgen/internal/model"
)

// Dependency is a reference from one declared type to another.
type Dependency struct {
	Source string
	Target string
}

// definitions indexes declared names. A nested type is reachable through its
// qualified name and through its last component.
func definitions(decls []model.TypeDecl) map[string]string {
	defines := make(map[string]string)
	for i := range decls {
		name := decls[i].Name
		defines[name] = name
		if j := strings.LastIndexByte(name, '.'); j >= 0 {
			if _, taken := defines[name[j+1:]]; !taken {
				defines[name[j+1:]] = name
			}
		}
	}
	return defines
}

// BuildGraph creates edges for every reference that resolves to a scanned
// declaration. Self-references are dropped; edges are deduplicated and sorted.
func BuildGraph(decls []model.TypeDecl) []Dependency {
	defines := definitions(decls)

	seen := make(map[Dependency]struct{})
	var deps []Dependency
	for i := range decls {
		d := &decls[i]
		for _, ref := range d.References {
			target, ok := defines[ref]
			if !ok || target == d.Name {
				continue
			}
			dep := Dependency{Source: d.Name, Target: target}
			if _, dup := seen[dep]; dup {
				continue
			}
			seen[dep] = struct{}{}
			deps = append(deps, dep)
		}
	}

	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Source != deps[j].Source {
			return deps[i].Source < deps[j].Source
		}
		return deps[i].Target < deps[j].Target
	})

	return deps
}

// Reachable returns the names of parseable declarations plus every scanned
// type they transitively reference, sorted.
func Reachable(decls []model.TypeDecl) []string {
	out := make(map[string][]string)
	for _, d := range BuildGraph(decls) {
		out[d.Source] = append(out[d.Source], d.Target)
	}

	visited := make(map[string]struct{})
	var queue []string
	for i := range decls {
		if decls[i].Parseable {
			queue = append(queue, decls[i].Name)
		}
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, ok := visited[name]; ok {
			continue
		}
		visited[name] = struct{}{}
		queue = append(queue, out[name]...)
	}

	return sortedKeys(visited)
}

// Enums returns the case lists of the enum declarations named in names. When
// a name is declared more than once the first declaration with cases wins.
func Enums(decls []model.TypeDecl, names []string) map[string][]string {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	enums := make(map[string][]string)
	for i := range decls {
		d := &decls[i]
		if d.Kind != model.EnumKind || len(d.Cases) == 0 {
			continue
		}
		if _, ok := want[d.Name]; !ok {
			continue
		}
		if _, done := enums[d.Name]; !done {
			enums[d.Name] = d.Cases
		}
	}
	return enums
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
