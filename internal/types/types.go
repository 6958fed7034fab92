package types

import (
	"fmt"
	"strings"
)

// Kind represents the structural category of a type reference
type Kind int

const (
	Invalid Kind = iota
	Primitive
	Declared
	Array
	TypeVariable
	Wildcard
	Void
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Declared:
		return "declared"
	case Array:
		return "array"
	case TypeVariable:
		return "type-variable"
	case Wildcard:
		return "wildcard"
	case Void:
		return "void"
	default:
		return "invalid"
	}
}

// Framework type names recognised when unwrapping requests and building
// multibinding keys.
const (
	ProviderName = "Provider"
	LazyName     = "Lazy"
	SetName      = "Set"
	MapName      = "Map"
)

var primitives = map[string]bool{
	"boolean": true,
	"byte":    true,
	"short":   true,
	"int":     true,
	"long":    true,
	"char":    true,
	"float":   true,
	"double":  true,
}

// IsPrimitiveName reports whether name is a primitive type keyword
func IsPrimitiveName(name string) bool {
	return primitives[name]
}

// TypeRef is a structural description of a type. Two TypeRefs describe the
// same type iff their canonical strings are equal.
type TypeRef struct {
	Kind  Kind
	Name  string    // qualified name, primitive keyword or type variable name
	Args  []TypeRef // type arguments of a declared type
	Elem  *TypeRef  // array component, or wildcard bound
	Bound string    // "extends" or "super" for bounded wildcards
}

// Named returns a declared type reference
func Named(name string, args ...TypeRef) TypeRef {
	return TypeRef{Kind: Declared, Name: name, Args: args}
}

// ArrayOf returns an array type with the given component
func ArrayOf(elem TypeRef) TypeRef {
	e := elem
	return TypeRef{Kind: Array, Elem: &e}
}

// SetOf returns Set<elem>
func SetOf(elem TypeRef) TypeRef {
	return Named(SetName, elem)
}

// MapOf returns Map<key, value>
func MapOf(key, value TypeRef) TypeRef {
	return Named(MapName, key, value)
}

// ProviderOf returns Provider<t>
func ProviderOf(t TypeRef) TypeRef {
	return Named(ProviderName, t)
}

// String renders the canonical form of the type. The canonical form is
// re-parseable by Parse.
func (t TypeRef) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t TypeRef) write(b *strings.Builder) {
	switch t.Kind {
	case Primitive, TypeVariable:
		b.WriteString(t.Name)
	case Void:
		b.WriteString("void")
	case Declared:
		b.WriteString(t.Name)
		if len(t.Args) > 0 {
			b.WriteByte('<')
			for i, arg := range t.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				arg.write(b)
			}
			b.WriteByte('>')
		}
	case Array:
		if t.Elem != nil {
			t.Elem.write(b)
		}
		b.WriteString("[]")
	case Wildcard:
		b.WriteByte('?')
		if t.Elem != nil {
			b.WriteByte(' ')
			b.WriteString(t.Bound)
			b.WriteByte(' ')
			t.Elem.write(b)
		}
	default:
		b.WriteString("<invalid>")
	}
}

// Equal compares two types by canonical form
func Equal(a, b TypeRef) bool {
	return a.String() == b.String()
}

// IsDeclared reports whether t is a declared (class or interface) type
func (t TypeRef) IsDeclared() bool {
	return t.Kind == Declared
}

// Is reports whether t is a declared type with the given raw name
func (t TypeRef) Is(name string) bool {
	return t.Kind == Declared && t.Name == name
}

// Raw returns the type without its type arguments
func (t TypeRef) Raw() TypeRef {
	if t.Kind != Declared {
		return t
	}
	return TypeRef{Kind: Declared, Name: t.Name}
}

// SimpleName returns the last segment of a declared type's name
func (t TypeRef) SimpleName() string {
	if i := strings.LastIndex(t.Name, "."); i >= 0 {
		return t.Name[i+1:]
	}
	return t.Name
}

// IsValidBindingType reports whether t may be used as a binding's type:
// primitive, array, type variable or declared.
func (t TypeRef) IsValidBindingType() bool {
	switch t.Kind {
	case Primitive, Array, TypeVariable, Declared:
		return true
	default:
		return false
	}
}

// HasWildcardArgs reports whether t, or any of its direct type arguments,
// is a wildcard.
func (t TypeRef) HasWildcardArgs() bool {
	if t.Kind == Wildcard {
		return true
	}
	for _, arg := range t.Args {
		if arg.Kind == Wildcard {
			return true
		}
	}
	return false
}

// ContainsTypeVariable reports whether a type variable occurs anywhere in t
func (t TypeRef) ContainsTypeVariable() bool {
	switch t.Kind {
	case TypeVariable:
		return true
	case Declared:
		for _, arg := range t.Args {
			if arg.ContainsTypeVariable() {
				return true
			}
		}
	case Array, Wildcard:
		if t.Elem != nil {
			return t.Elem.ContainsTypeVariable()
		}
	}
	return false
}

// Substitute replaces type variables according to bindings
func Substitute(t TypeRef, bindings map[string]TypeRef) TypeRef {
	if len(bindings) == 0 {
		return t
	}
	switch t.Kind {
	case TypeVariable:
		if bound, ok := bindings[t.Name]; ok {
			return bound
		}
		return t
	case Declared:
		if len(t.Args) == 0 {
			// Parsed without a type-parameter scope, a variable looks like a
			// declared type.
			if bound, ok := bindings[t.Name]; ok {
				return bound
			}
			return t
		}
		args := make([]TypeRef, len(t.Args))
		for i, arg := range t.Args {
			args[i] = Substitute(arg, bindings)
		}
		return TypeRef{Kind: Declared, Name: t.Name, Args: args}
	case Array, Wildcard:
		if t.Elem == nil {
			return t
		}
		elem := Substitute(*t.Elem, bindings)
		return TypeRef{Kind: t.Kind, Elem: &elem, Bound: t.Bound}
	default:
		return t
	}
}

// Bind pairs type parameter names with type arguments
func Bind(params []string, args []TypeRef) (map[string]TypeRef, error) {
	if len(params) != len(args) {
		return nil, fmt.Errorf("expected %d type arguments, got %d", len(params), len(args))
	}
	bindings := make(map[string]TypeRef, len(params))
	for i, p := range params {
		bindings[p] = args[i]
	}
	return bindings, nil
}

// Unwrap strips a single layer of the named framework wrapper. ok is false if
// t is not such a wrapper.
func (t TypeRef) Unwrap(wrapper string) (TypeRef, bool) {
	if t.Kind == Declared && t.Name == wrapper && len(t.Args) == 1 {
		return t.Args[0], true
	}
	return TypeRef{}, false
}

// IsRawFramework reports whether t names a framework wrapper without its type
// argument, e.g. a bare Provider.
func (t TypeRef) IsRawFramework() bool {
	return t.Kind == Declared && len(t.Args) == 0 && (t.Name == ProviderName || t.Name == LazyName)
}
