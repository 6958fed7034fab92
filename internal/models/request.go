package models

import (
	"github.com/toyz/bindgraph/internal/types"
)

// RequestKind describes how a dependent wants its dependency delivered
type RequestKind int

const (
	Instance RequestKind = iota
	Provider
	Lazy
	ProviderOfLazy
)

// String returns the string representation of the request kind
func (k RequestKind) String() string {
	switch k {
	case Instance:
		return "INSTANCE"
	case Provider:
		return "PROVIDER"
	case Lazy:
		return "LAZY"
	case ProviderOfLazy:
		return "PROVIDER_OF_LAZY"
	default:
		return "UNKNOWN"
	}
}

// IsDeferred reports whether the request defers construction, which is what
// allows it to break a dependency cycle
func (k RequestKind) IsDeferred() bool {
	switch k {
	case Provider, Lazy, ProviderOfLazy:
		return true
	default:
		return false
	}
}

// Wrap returns the type a request of this kind asks for
func (k RequestKind) Wrap(t types.TypeRef) types.TypeRef {
	switch k {
	case Provider:
		return types.ProviderOf(t)
	case Lazy:
		return types.Named(types.LazyName, t)
	case ProviderOfLazy:
		return types.ProviderOf(types.Named(types.LazyName, t))
	default:
		return t
	}
}

// RequestForType splits a requested type into its request kind and the
// type of the key actually looked up
func RequestForType(t types.TypeRef) (RequestKind, types.TypeRef) {
	if inner, ok := t.Unwrap(types.ProviderName); ok {
		if lazy, ok := inner.Unwrap(types.LazyName); ok {
			return ProviderOfLazy, lazy
		}
		return Provider, inner
	}
	if inner, ok := t.Unwrap(types.LazyName); ok {
		return Lazy, inner
	}
	return Instance, t
}

// DependencyRequest is one dependency of a binding. Element is empty for
// synthetic requests that have no source-level request site.
type DependencyRequest struct {
	Kind    RequestKind
	Key     Key
	Element string
}

// IsSynthetic reports whether the request has no request site
func (r DependencyRequest) IsSynthetic() bool {
	return r.Element == ""
}

// String renders the request as it appears in diagnostics
func (r DependencyRequest) String() string {
	if r.Kind == Instance {
		return r.Key.String()
	}
	return r.Kind.String() + " " + r.Key.String()
}
