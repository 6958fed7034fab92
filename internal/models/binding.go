package models

import (
	"github.com/toyz/bindgraph/internal/annotations"
	"github.com/toyz/bindgraph/internal/types"
)

// BindingKind is the closed set of ways a key can be satisfied
type BindingKind int

const (
	Injection BindingKind = iota
	Provision
	AssistedInjection
	AssistedFactory
	ComponentBinding
	ComponentProvision
	ComponentDependency
	SubcomponentCreator
	BoundInstance
	Delegate
	MultiboundSet
	MultiboundMap
)

// String returns the string representation of the binding kind
func (k BindingKind) String() string {
	switch k {
	case Injection:
		return "INJECTION"
	case Provision:
		return "PROVISION"
	case AssistedInjection:
		return "ASSISTED_INJECTION"
	case AssistedFactory:
		return "ASSISTED_FACTORY"
	case ComponentBinding:
		return "COMPONENT"
	case ComponentProvision:
		return "COMPONENT_PROVISION"
	case ComponentDependency:
		return "COMPONENT_DEPENDENCY"
	case SubcomponentCreator:
		return "SUBCOMPONENT_CREATOR"
	case BoundInstance:
		return "BOUND_INSTANCE"
	case Delegate:
		return "DELEGATE"
	case MultiboundSet:
		return "MULTIBOUND_SET"
	case MultiboundMap:
		return "MULTIBOUND_MAP"
	default:
		return "UNKNOWN"
	}
}

// IsSynthesized reports whether bindings of this kind are created on demand
// rather than declared
func (k BindingKind) IsSynthesized() bool {
	switch k {
	case Injection, AssistedInjection, AssistedFactory, MultiboundSet, MultiboundMap:
		return true
	default:
		return false
	}
}

// IsMultibound reports whether the kind aggregates contributions
func (k BindingKind) IsMultibound() bool {
	return k == MultiboundSet || k == MultiboundMap
}

// ContributionType says how a declaration contributes to its key
type ContributionType int

const (
	Unique ContributionType = iota
	SetContribution
	SetValuesContribution
	MapContribution
)

// String returns the string representation of the contribution type
func (c ContributionType) String() string {
	switch c {
	case Unique:
		return "UNIQUE"
	case SetContribution:
		return "SET"
	case SetValuesContribution:
		return "SET_VALUES"
	case MapContribution:
		return "MAP"
	default:
		return "UNKNOWN"
	}
}

// IsMultibinding reports whether the contribution is part of a collection
func (c ContributionType) IsMultibinding() bool {
	return c != Unique
}

// AssistedParameter is the identity used to match factory method parameters
// with assisted constructor parameters
type AssistedParameter struct {
	Type types.TypeRef
	ID   string
}

// String renders the parameter as "@Assisted(id) Type"
func (p AssistedParameter) String() string {
	if p.ID == "" {
		return p.Type.String()
	}
	return "@Assisted(\"" + p.ID + "\") " + p.Type.String()
}

// Identity returns a comparable form of the parameter
func (p AssistedParameter) Identity() string {
	return p.Type.String() + "#" + p.ID
}

// Binding is a resolved recipe satisfying one key. Dependencies are kept in
// construction argument order.
type Binding struct {
	Key                    Key
	Kind                   BindingKind
	ContributionType       ContributionType
	Dependencies           []DependencyRequest
	Element                string
	ContributingModule     string
	RequiresModuleInstance bool
	Scope                  Scope
	MapKey                 *annotations.AnnotationRef

	// AssistedParams are the assisted parameters in constructor order for
	// ASSISTED_INJECTION bindings, and in factory method order for
	// ASSISTED_FACTORY bindings.
	AssistedParams []AssistedParameter
	// AssistedOrder maps each factory method parameter to the index of the
	// matching assisted constructor parameter (ASSISTED_FACTORY only).
	AssistedOrder []int
}

// IsScoped reports whether the binding carries a scope
func (b *Binding) IsScoped() bool {
	return !b.Scope.IsUnscoped()
}

// IsContribution reports whether the binding contributes to a multibinding
func (b *Binding) IsContribution() bool {
	return b.ContributionType.IsMultibinding()
}

// Describe returns the declaring element, or a description of the binding
// if it has none
func (b *Binding) Describe() string {
	if b.Element != "" {
		return b.Element
	}
	return b.Kind.String() + " " + b.Key.String()
}
