package cloak

import "strings"

// PathSet names the dot-notation paths selected for transformation.
// Insertion order is irrelevant; membership and prefix-narrowing are the
// only operations the traversal uses.
type PathSet map[string]struct{}

// NewPathSet builds a set from dot-notation path strings.
func NewPathSet(paths ...string) PathSet {
	set := make(PathSet, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}

// Selected reports whether path is an exact member of the set.
func (s PathSet) Selected(path string) bool {
	_, ok := s[path]
	return ok
}

// Narrow returns the members that descend from parent, with the
// "parent." prefix stripped. The result is the set visible to the
// recursive call processing parent's children.
func (s PathSet) Narrow(parent string) PathSet {
	prefix := parent + "."
	narrowed := make(PathSet)
	for p := range s {
		if strings.HasPrefix(p, prefix) {
			narrowed[p[len(prefix):]] = struct{}{}
		}
	}
	return narrowed
}

// defaultPaths is the selection used when the caller supplies none: the
// top-level field names of the root value. Whole top-level fields are then
// transformed as units, since the names are bare keys rather than deep paths.
func defaultPaths(value map[string]any) PathSet {
	set := make(PathSet, len(value))
	for key := range value {
		set[key] = struct{}{}
	}
	return set
}
