package models

import (
	"github.com/toyz/bindgraph/internal/annotations"
	"github.com/toyz/bindgraph/internal/types"
)

// Modifier is a declaration modifier
type Modifier string

const (
	Private  Modifier = "private"
	Abstract Modifier = "abstract"
	Static   Modifier = "static"
	Default  Modifier = "default"
)

// Parameter is a constructor or method parameter
type Parameter struct {
	Name        string
	Type        types.TypeRef
	Annotations []annotations.AnnotationRef
	Assisted    bool
	AssistedID  string
}

// AssistedIdentity returns the parameter's assisted matching identity
func (p Parameter) AssistedIdentity() AssistedParameter {
	return AssistedParameter{Type: p.Type, ID: p.AssistedID}
}

// Method is a method declared on a class, module, component or creator
type Method struct {
	Owner       string
	Name        string
	Params      []Parameter
	Returns     types.TypeRef
	Annotations []annotations.AnnotationRef
	Modifiers   []Modifier
	TypeParams  []string
	Overrides   bool
}

// Element returns the element identifier "Owner#name"
func (m Method) Element() string {
	return m.Owner + "#" + m.Name
}

// ParamElement returns the element identifier of the i-th parameter
func (m Method) ParamElement(i int) string {
	return m.Element() + "(" + m.Params[i].Name + ")"
}

// Has reports whether the method carries the modifier
func (m Method) Has(mod Modifier) bool {
	return hasModifier(m.Modifiers, mod)
}

// IsAbstract reports whether the method has no body
func (m Method) IsAbstract() bool {
	return m.Has(Abstract)
}

// IsVoid reports whether the method returns nothing
func (m Method) IsVoid() bool {
	return m.Returns.Kind == types.Void
}

// Constructor is a class constructor
type Constructor struct {
	Owner       string
	Params      []Parameter
	Annotations []annotations.AnnotationRef
	Modifiers   []Modifier
}

// Element returns the element identifier "Owner#<init>"
func (c Constructor) Element() string {
	return c.Owner + "#<init>"
}

// ParamElement returns the element identifier of the i-th parameter
func (c Constructor) ParamElement(i int) string {
	return c.Element() + "(" + c.Params[i].Name + ")"
}

// IsPrivate reports whether the constructor is private
func (c Constructor) IsPrivate() bool {
	return hasModifier(c.Modifiers, Private)
}

// Class is a declared type: an injectable class, an interface, an assisted
// factory or a component dependency.
type Class struct {
	Name         string
	Abstract     bool
	Interface    bool
	TypeParams   []string
	Supertypes   []types.TypeRef
	Annotations  []annotations.AnnotationRef
	Constructors []Constructor
	Methods      []Method
}

// Type returns the declared type of the class, with its type variables
func (c *Class) Type() types.TypeRef {
	args := make([]types.TypeRef, len(c.TypeParams))
	for i, p := range c.TypeParams {
		args[i] = types.TypeRef{Kind: types.TypeVariable, Name: p}
	}
	return types.Named(c.Name, args...)
}

// IsConcrete reports whether instances of the class can be constructed
func (c *Class) IsConcrete() bool {
	return !c.Abstract && !c.Interface
}

// AbstractMethods returns the methods without a body, in declaration order
func (c *Class) AbstractMethods() []Method {
	return abstractMethods(c.Methods, c.Interface)
}

// HasNoArgConstructor reports whether the class can be instantiated without
// arguments
func (c *Class) HasNoArgConstructor() bool {
	if len(c.Constructors) == 0 {
		return true
	}
	for _, ctor := range c.Constructors {
		if len(ctor.Params) == 0 && !ctor.IsPrivate() {
			return true
		}
	}
	return false
}

// Module is a module declaration
type Module struct {
	Name          string
	Abstract      bool
	Interface     bool
	TypeParams    []string
	Includes      []types.TypeRef
	Subcomponents []types.TypeRef
	Annotations   []annotations.AnnotationRef
	Constructors  []Constructor
	Methods       []Method
}

// IsInstantiable reports whether the framework can construct the module
// itself, so it need not be supplied by a creator
func (m *Module) IsInstantiable() bool {
	if m.Abstract || m.Interface {
		return true
	}
	needsInstance := false
	for _, method := range m.Methods {
		if !method.Has(Static) && !method.IsAbstract() && annotations.Has(method.Annotations, annotations.Provides) {
			needsInstance = true
		}
	}
	if !needsInstance {
		return true
	}
	c := Class{Constructors: m.Constructors}
	return c.HasNoArgConstructor()
}

// ComponentKind distinguishes root components from subcomponents
type ComponentKind int

const (
	RootComponent ComponentKind = iota
	Subcomponent
)

// String returns the string representation of the component kind
func (k ComponentKind) String() string {
	if k == Subcomponent {
		return "subcomponent"
	}
	return "component"
}

// Component is a component or subcomponent declaration
type Component struct {
	Name         string
	Kind         ComponentKind
	Interface    bool
	Scopes       []annotations.AnnotationRef
	Modules      []types.TypeRef
	Dependencies []types.TypeRef
	Annotations  []annotations.AnnotationRef
	Methods      []Method
	Creator      *Creator
}

// Type returns the declared type of the component
func (c *Component) Type() types.TypeRef {
	return types.Named(c.Name)
}

// AbstractMethods returns the entry point candidates in declaration order
func (c *Component) AbstractMethods() []Method {
	return abstractMethods(c.Methods, c.Interface)
}

// CreatorKind distinguishes builders from factories
type CreatorKind int

const (
	Builder CreatorKind = iota
	Factory
)

// String returns the string representation of the creator kind
func (k CreatorKind) String() string {
	if k == Factory {
		return "factory"
	}
	return "builder"
}

// Creator is a component builder or factory type
type Creator struct {
	Name         string
	Kind         CreatorKind
	IsClass      bool
	TypeParams   []string
	Constructors []Constructor
	Methods      []Method
}

// Type returns the declared type of the creator
func (c *Creator) Type() types.TypeRef {
	return types.Named(c.Name)
}

// AbstractMethods returns the creator methods without a body
func (c *Creator) AbstractMethods() []Method {
	return abstractMethods(c.Methods, !c.IsClass)
}

func abstractMethods(methods []Method, isInterface bool) []Method {
	var out []Method
	for _, m := range methods {
		if m.Has(Static) || m.Has(Default) {
			continue
		}
		if isInterface || m.IsAbstract() {
			out = append(out, m)
		}
	}
	return out
}

func hasModifier(mods []Modifier, mod Modifier) bool {
	for _, m := range mods {
		if m == mod {
			return true
		}
	}
	return false
}
