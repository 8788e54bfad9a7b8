package formtree

import (
	"errors"
	"fmt"
	"strings"
)

// Separator joins path segments.
const Separator = "."

// ErrInvalidPath marks malformed paths and names. It signals a caller bug,
// never a registration race.
var ErrInvalidPath = errors.New("invalid path")

// Path is a validated, ordered sequence of child names. The empty Path
// addresses the root.
type Path []string

// ParsePath splits s on dots. The empty string is the root path. Empty
// segments ("a..b", ".a", "a.") are rejected.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	segments := strings.Split(s, Separator)
	for i, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment at position %d", ErrInvalidPath, s, i)
		}
	}
	return Path(segments), nil
}

// MustParsePath is like ParsePath but panics on error. Intended for
// literals in tests and fixtures.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ValidateName checks that name can be used as a single path segment.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidPath)
	}
	if strings.Contains(name, Separator) {
		return fmt.Errorf("%w: name %q contains %q", ErrInvalidPath, name, Separator)
	}
	return nil
}

// String joins the segments with dots.
func (p Path) String() string {
	return strings.Join(p, Separator)
}

// IsRoot reports whether p addresses the root.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Child returns a new path with name appended. p is not modified.
func (p Path) Child(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// Parent returns the path without its last segment. The root's parent is
// the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p[:len(p)-1:len(p)-1]
}

// Base returns the last segment, or "" for the root.
func (p Path) Base() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i, seg := range prefix {
		if p[i] != seg {
			return false
		}
	}
	return true
}

// Equal reports whether p and other address the same node.
func (p Path) Equal(other Path) bool {
	return len(p) == len(other) && p.HasPrefix(other)
}
