package registry

import (
	"fmt"
	"strings"

	"github.com/toyz/bindgraph/internal/annotations"
	"github.com/toyz/bindgraph/internal/types"
	"github.com/toyz/bindgraph/internal/utils"
)

// Kind classifies what role an annotation type plays in the binding model
type Kind int

const (
	Other Kind = iota
	Qualifier
	Scope
	MapKey
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case Qualifier:
		return "qualifier"
	case Scope:
		return "scope"
	case MapKey:
		return "map key"
	default:
		return "other"
	}
}

// Entry describes a registered annotation type
type Entry struct {
	Kind Kind
	// KeyType is the canonical map key type for MapKey annotations. Empty
	// means the key type is inferred from the annotation's value element.
	KeyType string
}

// AnnotationRegistry knows which annotation types are qualifiers, scopes and
// map keys. Lookups accept either the qualified or the simple name.
type AnnotationRegistry struct {
	*utils.BaseRegistry[string, Entry]
}

// Built-in annotation kinds, always registered
var builtins = map[string]Entry{
	annotations.Singleton: {Kind: Scope},
	annotations.Reusable:  {Kind: Scope},
	annotations.Named:     {Kind: Qualifier},
	"StringKey":           {Kind: MapKey, KeyType: "String"},
	"IntKey":              {Kind: MapKey, KeyType: "Integer"},
	"LongKey":             {Kind: MapKey, KeyType: "Long"},
	"ClassKey":            {Kind: MapKey, KeyType: "Class<?>"},
}

// NewAnnotationRegistry creates a registry holding the built-in kinds
func NewAnnotationRegistry() *AnnotationRegistry {
	r := &AnnotationRegistry{
		BaseRegistry: utils.NewBaseRegistry[string, Entry]("annotation", "annotation type", "annotation kind"),
	}
	r.SetValidator(utils.ChainValidators(
		utils.NotEmptyKeyValidator[Entry]("annotation type"),
		utils.NoConflictValidator[string, Entry]("annotation type"),
	))
	for name, entry := range builtins {
		_ = r.Register(name, entry)
	}
	return r
}

// RegisterQualifier registers a qualifier annotation type
func (r *AnnotationRegistry) RegisterQualifier(name string) error {
	return r.Register(name, Entry{Kind: Qualifier})
}

// RegisterScope registers a scope annotation type
func (r *AnnotationRegistry) RegisterScope(name string) error {
	return r.Register(name, Entry{Kind: Scope})
}

// RegisterMapKey registers a map key annotation type whose key type is
// inferred from its value
func (r *AnnotationRegistry) RegisterMapKey(name string) error {
	return r.Register(name, Entry{Kind: MapKey})
}

// KindOf returns the kind of the annotation's type
func (r *AnnotationRegistry) KindOf(a annotations.AnnotationRef) Kind {
	if e, ok := r.lookup(a); ok {
		return e.Kind
	}
	return Other
}

func (r *AnnotationRegistry) lookup(a annotations.AnnotationRef) (Entry, bool) {
	if e, ok := r.Get(a.Type); ok {
		return e, true
	}
	return r.Get(a.SimpleName())
}

// IsQualifier reports whether a is a qualifier annotation
func (r *AnnotationRegistry) IsQualifier(a annotations.AnnotationRef) bool {
	return r.KindOf(a) == Qualifier
}

// IsScope reports whether a is a scope annotation
func (r *AnnotationRegistry) IsScope(a annotations.AnnotationRef) bool {
	return r.KindOf(a) == Scope
}

// IsMapKey reports whether a is a map key annotation
func (r *AnnotationRegistry) IsMapKey(a annotations.AnnotationRef) bool {
	return r.KindOf(a) == MapKey
}

// Qualifiers returns the qualifier annotations in list, in order
func (r *AnnotationRegistry) Qualifiers(list []annotations.AnnotationRef) []annotations.AnnotationRef {
	return r.filter(list, Qualifier)
}

// Scopes returns the scope annotations in list, in order
func (r *AnnotationRegistry) Scopes(list []annotations.AnnotationRef) []annotations.AnnotationRef {
	return r.filter(list, Scope)
}

// MapKeys returns the map key annotations in list, in order
func (r *AnnotationRegistry) MapKeys(list []annotations.AnnotationRef) []annotations.AnnotationRef {
	return r.filter(list, MapKey)
}

func (r *AnnotationRegistry) filter(list []annotations.AnnotationRef, kind Kind) []annotations.AnnotationRef {
	var out []annotations.AnnotationRef
	for _, a := range list {
		if r.KindOf(a) == kind {
			out = append(out, a)
		}
	}
	return out
}

// MapKeyType returns the type of the map key described by a map key
// annotation.
func (r *AnnotationRegistry) MapKeyType(a annotations.AnnotationRef) (types.TypeRef, error) {
	e, ok := r.lookup(a)
	if !ok || e.Kind != MapKey {
		return types.TypeRef{}, fmt.Errorf("%s is not a map key annotation", a)
	}
	if e.KeyType != "" {
		return types.Parse(e.KeyType)
	}
	v, ok := a.Element("value")
	if !ok {
		return types.Named(a.Type), nil
	}
	switch v.Kind {
	case annotations.StringValue:
		return types.Named("String"), nil
	case annotations.NumberValue:
		return types.Named("Integer"), nil
	case annotations.BoolValue:
		return types.Named("Boolean"), nil
	case annotations.ClassValue:
		return types.Parse("Class<?>")
	case annotations.EnumValue:
		if i := strings.LastIndex(v.Text, "."); i > 0 {
			return types.Parse(v.Text[:i])
		}
	}
	return types.TypeRef{}, fmt.Errorf("cannot infer the key type of %s", a)
}
