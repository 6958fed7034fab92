package models

import (
	"github.com/toyz/bindgraph/internal/annotations"
)

// Scope is the canonical rendering of a scope annotation. The zero value is
// the unscoped state.
type Scope string

// Unscoped is the absence of any scope
const Unscoped Scope = ""

// ScopeOf returns the scope for a scope annotation
func ScopeOf(a annotations.AnnotationRef) Scope {
	return Scope(a.String())
}

// IsUnscoped reports whether s is the unscoped state
func (s Scope) IsUnscoped() bool {
	return s == Unscoped
}

// Annotation returns the annotation the scope was built from
func (s Scope) Annotation() annotations.AnnotationRef {
	a, err := annotations.Parse(string(s))
	if err != nil {
		return annotations.AnnotationRef{}
	}
	return a
}

// IsSingleton reports whether s is the broadest lifetime scope
func (s Scope) IsSingleton() bool {
	return !s.IsUnscoped() && s.Annotation().Is(annotations.Singleton)
}

// IsReusable reports whether s is the reusable scope, which may be used in
// any component
func (s Scope) IsReusable() bool {
	return !s.IsUnscoped() && s.Annotation().Is(annotations.Reusable)
}

// String renders the scope, or "unscoped"
func (s Scope) String() string {
	if s.IsUnscoped() {
		return "unscoped"
	}
	return string(s)
}
