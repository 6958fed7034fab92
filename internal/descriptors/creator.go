package descriptors

import (
	"github.com/toyz/bindgraph/internal/annotations"
	"github.com/toyz/bindgraph/internal/bindings"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/types"
)

// RequirementKind is what a component creator must be given
type RequirementKind int

const (
	ModuleRequirement RequirementKind = iota
	DependencyRequirement
	BoundInstanceRequirement
)

// String returns the string representation of the requirement kind
func (k RequirementKind) String() string {
	switch k {
	case ModuleRequirement:
		return "module"
	case DependencyRequirement:
		return "dependency"
	default:
		return "bound instance"
	}
}

// ComponentRequirement is a module instance, dependency instance or bound
// instance that a creator supplies
type ComponentRequirement struct {
	Kind RequirementKind
	Type string
	Key  models.Key
}

// String renders the requirement for diagnostics
func (r ComponentRequirement) String() string {
	if r.Kind == BoundInstanceRequirement {
		return r.Kind.String() + " " + r.Key.String()
	}
	return r.Kind.String() + " " + r.Type
}

// Setter is one creator element that supplies a requirement: a builder
// setter method or a factory method parameter
type Setter struct {
	Requirement ComponentRequirement
	Element     string
	Method      models.Method
	Param       models.Parameter
}

// CreatorDescriptor is the parsed contract of a component builder or factory
type CreatorDescriptor struct {
	Creator *models.Creator
	// FactoryMethod is the factory's creating method, or the builder's build
	// method. Nil when the creator has none.
	FactoryMethod *models.Method
	// BuildMethods lists every zero-parameter abstract method of a builder
	BuildMethods []models.Method
	Setters      []Setter
	// Invalid lists abstract methods matching neither a setter nor a build
	// method
	Invalid []models.Method
}

// Kind returns whether the creator is a builder or a factory
func (c *CreatorDescriptor) Kind() models.CreatorKind {
	return c.Creator.Kind
}

// SettersFor returns every setter supplying req
func (c *CreatorDescriptor) SettersFor(req ComponentRequirement) []Setter {
	var out []Setter
	for _, s := range c.Setters {
		if s.Requirement == req {
			out = append(out, s)
		}
	}
	return out
}

// Requirements returns the distinct requirements supplied, in order
func (c *CreatorDescriptor) Requirements() []ComponentRequirement {
	var out []ComponentRequirement
	seen := make(map[ComponentRequirement]bool)
	for _, s := range c.Setters {
		if !seen[s.Requirement] {
			seen[s.Requirement] = true
			out = append(out, s.Requirement)
		}
	}
	return out
}

// newCreatorDescriptor parses the creator of a component whose module
// closure is modules
func newCreatorDescriptor(f *bindings.Factory, creator *models.Creator, modules map[string]bool) *CreatorDescriptor {
	d := &CreatorDescriptor{Creator: creator}
	methods := creator.AbstractMethods()

	if creator.Kind == models.Factory {
		if len(methods) > 0 {
			m := methods[0]
			d.FactoryMethod = &m
			for i, p := range m.Params {
				d.Setters = append(d.Setters, Setter{
					Requirement: requirementFor(f, p, nil, modules),
					Element:     m.ParamElement(i),
					Method:      m,
					Param:       p,
				})
			}
		}
		return d
	}

	for _, m := range methods {
		switch len(m.Params) {
		case 0:
			d.BuildMethods = append(d.BuildMethods, m)
			if d.FactoryMethod == nil {
				bm := m
				d.FactoryMethod = &bm
			}
		case 1:
			p := m.Params[0]
			d.Setters = append(d.Setters, Setter{
				Requirement: requirementFor(f, p, m.Annotations, modules),
				Element:     m.Element(),
				Method:      m,
				Param:       p,
			})
		default:
			d.Invalid = append(d.Invalid, m)
		}
	}
	return d
}

func requirementFor(f *bindings.Factory, p models.Parameter, methodAnnotations []annotations.AnnotationRef, modules map[string]bool) ComponentRequirement {
	all := append(append([]annotations.AnnotationRef(nil), p.Annotations...), methodAnnotations...)
	if annotations.Has(all, annotations.BindsInstance) {
		return ComponentRequirement{
			Kind: BoundInstanceRequirement,
			Type: p.Type.String(),
			Key:  models.NewKey(p.Type, f.Qualifier(all)),
		}
	}
	if p.Type.Kind == types.Declared && modules[p.Type.Name] {
		return ComponentRequirement{Kind: ModuleRequirement, Type: p.Type.Name}
	}
	return ComponentRequirement{Kind: DependencyRequirement, Type: p.Type.String()}
}
