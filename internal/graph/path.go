package graph

import "strings"

// ComponentPath lists component names from the root to a component. It is
// part of a node's identity because the same declaration can be owned by
// several components of one tree.
type ComponentPath []string

// String renders the path as "Root → Child"
func (p ComponentPath) String() string {
	return strings.Join(p, " → ")
}

// Current returns the last component of the path
func (p ComponentPath) Current() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Parent returns the path without its last component
func (p ComponentPath) Parent() ComponentPath {
	if len(p) <= 1 {
		return nil
	}
	return p[:len(p)-1]
}

// Child returns the path extended by name
func (p ComponentPath) Child(name string) ComponentPath {
	out := make(ComponentPath, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// AtRoot reports whether the path names the root component
func (p ComponentPath) AtRoot() bool {
	return len(p) == 1
}

// Depth returns the number of components in the path
func (p ComponentPath) Depth() int {
	return len(p)
}

// Equal reports whether two paths name the same component
func (p ComponentPath) Equal(other ComponentPath) bool {
	return p.String() == other.String()
}

// IsAncestorOf reports whether p is a strict prefix of other
func (p ComponentPath) IsAncestorOf(other ComponentPath) bool {
	if len(p) >= len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
