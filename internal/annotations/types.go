package annotations

import (
	"sort"
	"strings"

	"github.com/toyz/bindgraph/internal/types"
)

// Well-known annotation names understood by the binding model
const (
	Inject          = "Inject"
	AssistedInject  = "AssistedInject"
	Assisted        = "Assisted"
	AssistedFactory = "AssistedFactory"
	Provides        = "Provides"
	Binds           = "Binds"
	Multibinds      = "Multibinds"
	IntoSet         = "IntoSet"
	ElementsIntoSet = "ElementsIntoSet"
	IntoMap         = "IntoMap"
	BindsInstance   = "BindsInstance"
	Module          = "Module"
	Component       = "Component"
	Subcomponent    = "Subcomponent"
	Singleton       = "Singleton"
	Reusable        = "Reusable"
	Named           = "Named"
)

// ValueKind represents the kind of an annotation element value
type ValueKind int

const (
	StringValue ValueKind = iota
	NumberValue
	BoolValue
	EnumValue
	ClassValue
	ArrayValue
	AnnotationValue
)

// String returns the string representation of the value kind
func (k ValueKind) String() string {
	switch k {
	case StringValue:
		return "string"
	case NumberValue:
		return "number"
	case BoolValue:
		return "bool"
	case EnumValue:
		return "enum"
	case ClassValue:
		return "class"
	case ArrayValue:
		return "array"
	case AnnotationValue:
		return "annotation"
	default:
		return "unknown"
	}
}

// Value is a single annotation element value
type Value struct {
	Kind       ValueKind
	Text       string         // canonical scalar text (quoted for strings)
	Elems      []Value        // array elements
	Annotation *AnnotationRef // nested annotation
	Type       *types.TypeRef // class literal
}

// Element is a named annotation element
type Element struct {
	Name  string
	Value Value
}

// AnnotationRef is a structural description of an annotation instance.
// Elements are kept sorted by name so rendering is canonical.
type AnnotationRef struct {
	Type     string
	Elements []Element
}

// New creates an annotation reference, normalizing element order
func New(annotationType string, elements ...Element) AnnotationRef {
	sorted := append([]Element(nil), elements...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return AnnotationRef{Type: annotationType, Elements: sorted}
}

// Marker creates an annotation without elements
func Marker(annotationType string) AnnotationRef {
	return AnnotationRef{Type: annotationType}
}

// StringElement creates a string-valued element
func StringElement(name, value string) Element {
	return Element{Name: name, Value: Value{Kind: StringValue, Text: quote(value)}}
}

// NamedQualifier returns @Named(value="name")
func NamedQualifier(name string) AnnotationRef {
	return New(Named, StringElement("value", name))
}

// String renders the canonical form of the annotation
func (a AnnotationRef) String() string {
	var b strings.Builder
	a.write(&b)
	return b.String()
}

func (a AnnotationRef) write(b *strings.Builder) {
	b.WriteByte('@')
	b.WriteString(a.Type)
	if len(a.Elements) == 0 {
		return
	}
	b.WriteByte('(')
	for i, e := range a.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Name)
		b.WriteByte('=')
		e.Value.write(b)
	}
	b.WriteByte(')')
}

// String renders the canonical form of the value
func (v Value) String() string {
	var b strings.Builder
	v.write(&b)
	return b.String()
}

func (v Value) write(b *strings.Builder) {
	switch v.Kind {
	case ArrayValue:
		b.WriteByte('{')
		for i, e := range v.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			e.write(b)
		}
		b.WriteByte('}')
	case AnnotationValue:
		if v.Annotation != nil {
			v.Annotation.write(b)
		}
	case ClassValue:
		if v.Type != nil {
			b.WriteString(v.Type.String())
		}
		b.WriteString(".class")
	default:
		b.WriteString(v.Text)
	}
}

// Equal compares two annotations structurally, recursing through arrays,
// nested annotations, enums, primitives and class literals.
func Equal(a, b AnnotationRef) bool {
	return a.String() == b.String()
}

// Element returns the named element value
func (a AnnotationRef) Element(name string) (Value, bool) {
	for _, e := range a.Elements {
		if e.Name == name {
			return e.Value, true
		}
	}
	return Value{}, false
}

// SimpleName returns the last segment of the annotation type name
func (a AnnotationRef) SimpleName() string {
	if i := strings.LastIndex(a.Type, "."); i >= 0 {
		return a.Type[i+1:]
	}
	return a.Type
}

// Is reports whether the annotation has the given type, matching either the
// qualified or the simple name.
func (a AnnotationRef) Is(name string) bool {
	return a.Type == name || a.SimpleName() == name
}

// Find returns the first annotation of the given type
func Find(list []AnnotationRef, name string) (AnnotationRef, bool) {
	for _, a := range list {
		if a.Is(name) {
			return a, true
		}
	}
	return AnnotationRef{}, false
}

// Has reports whether list contains an annotation of the given type
func Has(list []AnnotationRef, name string) bool {
	_, ok := Find(list, name)
	return ok
}

// Count returns how many annotations in list match any of names
func Count(list []AnnotationRef, names ...string) int {
	n := 0
	for _, a := range list {
		for _, name := range names {
			if a.Is(name) {
				n++
				break
			}
		}
	}
	return n
}

// Canonicalize rewrites class literals inside the annotation using aliases
func (a AnnotationRef) Canonicalize(aliases types.Aliases) (AnnotationRef, error) {
	out := AnnotationRef{Type: a.Type, Elements: make([]Element, len(a.Elements))}
	for i, e := range a.Elements {
		v, err := e.Value.canonicalize(aliases)
		if err != nil {
			return AnnotationRef{}, err
		}
		out.Elements[i] = Element{Name: e.Name, Value: v}
	}
	return out, nil
}

func (v Value) canonicalize(aliases types.Aliases) (Value, error) {
	switch v.Kind {
	case ClassValue:
		if v.Type == nil {
			return v, nil
		}
		t, err := aliases.Canonicalize(*v.Type)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ClassValue, Type: &t}, nil
	case ArrayValue:
		elems := make([]Value, len(v.Elems))
		for i, e := range v.Elems {
			c, err := e.canonicalize(aliases)
			if err != nil {
				return Value{}, err
			}
			elems[i] = c
		}
		return Value{Kind: ArrayValue, Elems: elems}, nil
	case AnnotationValue:
		if v.Annotation == nil {
			return v, nil
		}
		nested, err := v.Annotation.Canonicalize(aliases)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: AnnotationValue, Annotation: &nested}, nil
	default:
		return v, nil
	}
}
