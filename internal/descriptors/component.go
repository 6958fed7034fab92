package descriptors

import (
	"fmt"

	"github.com/toyz/bindgraph/internal/bindings"
	"github.com/toyz/bindgraph/internal/errors"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/source"
	"github.com/toyz/bindgraph/internal/types"
	"github.com/toyz/bindgraph/internal/utils"
)

// EntryPointKind classifies an abstract component method
type EntryPointKind int

const (
	// ProvisionMethod returns an object from the graph
	ProvisionMethod EntryPointKind = iota
	// ChildFactoryMethod returns a subcomponent, taking its modules
	ChildFactoryMethod
	// ChildCreatorMethod returns a subcomponent builder or factory
	ChildCreatorMethod
	// InvalidMethod matches none of the shapes above
	InvalidMethod
)

// String returns the string representation of the entry point kind
func (k EntryPointKind) String() string {
	switch k {
	case ProvisionMethod:
		return "provision"
	case ChildFactoryMethod:
		return "subcomponent factory method"
	case ChildCreatorMethod:
		return "subcomponent creator method"
	default:
		return "invalid"
	}
}

// EntryPoint is one abstract method of a component
type EntryPoint struct {
	Method  models.Method
	Kind    EntryPointKind
	Request models.DependencyRequest
	Child   string
	Reason  string
}

// ComponentDescriptor is one node of the component tree. Children are owned
// exclusively; the same subcomponent under two parents gets two descriptors.
type ComponentDescriptor struct {
	Name         string
	Component    *models.Component
	Scopes       []models.Scope
	Dependencies []types.TypeRef
	// DeclaredModules are the modules listed on the component, resolved
	DeclaredModules []*ModuleDescriptor
	// Modules is the transitive module closure
	Modules     []*ModuleDescriptor
	EntryPoints []EntryPoint
	Creator     *CreatorDescriptor
	Children    []*ComponentDescriptor
	// RecursiveChildren names subcomponents that would contain themselves
	RecursiveChildren []string
	// Synthetic is set for the stand-in component built to validate a module
	// on its own
	Synthetic bool
}

// Kind returns whether the descriptor is a root component or subcomponent
func (d *ComponentDescriptor) Kind() models.ComponentKind {
	return d.Component.Kind
}

// HasScope reports whether the component carries scope s
func (d *ComponentDescriptor) HasScope(s models.Scope) bool {
	for _, own := range d.Scopes {
		if own == s {
			return true
		}
	}
	return false
}

// HasModule reports whether the named module is in the component's closure
func (d *ComponentDescriptor) HasModule(name string) bool {
	for _, m := range d.Modules {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Child returns the child descriptor with the given name
func (d *ComponentDescriptor) Child(name string) (*ComponentDescriptor, bool) {
	for _, c := range d.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ComponentFactory builds component descriptor trees
type ComponentFactory struct {
	bindings *bindings.Factory
	modules  *ModuleFactory
	cache    *utils.Cache[string, *ComponentDescriptor]
}

// NewComponentFactory creates a component descriptor factory
func NewComponentFactory(b *bindings.Factory, modules *ModuleFactory) *ComponentFactory {
	return &ComponentFactory{
		bindings: b,
		modules:  modules,
		cache:    utils.NewCache[string, *ComponentDescriptor](),
	}
}

// Reset drops every cached descriptor
func (f *ComponentFactory) Reset() {
	f.cache.Clear()
}

// ForComponent returns the descriptor tree rooted at the named component
func (f *ComponentFactory) ForComponent(name string) models.Result[*ComponentDescriptor] {
	if d, ok := f.cache.Get(name); ok {
		return models.Ok(d)
	}
	comp, st := f.bindings.Source().Component(name)
	switch st {
	case source.Pending:
		return models.Defer[*ComponentDescriptor](name)
	case source.Absent:
		return models.Fail[*ComponentDescriptor](errors.Newf(errors.ManifestErrorCode, "%s is not a component", name).WithElement(name))
	}
	r := f.create(comp, nil)
	if r.IsResolved() {
		f.cache.Set(name, r.Value)
	}
	return r
}

// ForModule returns a stand-in root component that installs only the named
// module, used to validate the module's full binding graph
func (f *ComponentFactory) ForModule(name string) models.Result[*ComponentDescriptor] {
	comp := &models.Component{
		Name:    name,
		Kind:    models.RootComponent,
		Modules: []types.TypeRef{types.Named(name)},
	}
	r := f.create(comp, nil)
	if r.IsResolved() {
		r.Value.Synthetic = true
	}
	return r
}

func (f *ComponentFactory) create(comp *models.Component, ancestors []string) models.Result[*ComponentDescriptor] {
	var pending models.PendingSet
	d := &ComponentDescriptor{
		Name:         comp.Name,
		Component:    comp,
		Dependencies: comp.Dependencies,
	}
	for _, s := range comp.Scopes {
		d.Scopes = append(d.Scopes, models.ScopeOf(s))
	}

	for _, mt := range comp.Modules {
		r := f.modules.Create(mt.Name)
		switch r.Status {
		case models.Deferred:
			pending.Add(r.Pending...)
		case models.Resolved:
			d.DeclaredModules = append(d.DeclaredModules, r.Value)
		}
	}
	d.Modules = Transitive(d.DeclaredModules)

	moduleNames := make(map[string]bool, len(d.Modules))
	for _, m := range d.Modules {
		moduleNames[m.Name] = true
	}
	if comp.Creator != nil {
		d.Creator = newCreatorDescriptor(f.bindings, comp.Creator, moduleNames)
	}

	lineage := append(append([]string(nil), ancestors...), comp.Name)
	var childNames []string
	seenChild := make(map[string]bool)
	addChild := func(name string) {
		if !seenChild[name] {
			seenChild[name] = true
			childNames = append(childNames, name)
		}
	}

	for _, m := range comp.AbstractMethods() {
		ep, wait := f.classify(m)
		if wait != "" {
			pending.Add(wait)
			continue
		}
		d.EntryPoints = append(d.EntryPoints, ep)
		if ep.Child != "" {
			addChild(ep.Child)
		}
	}
	for _, md := range d.Modules {
		for _, decl := range md.Subcomponents {
			addChild(decl.Subcomponent)
		}
	}

	for _, name := range childNames {
		if contains(lineage, name) {
			d.RecursiveChildren = append(d.RecursiveChildren, name)
			continue
		}
		child, st := f.bindings.Source().Component(name)
		switch st {
		case source.Pending:
			pending.Add(name)
			continue
		case source.Absent:
			continue
		}
		if child.Kind != models.Subcomponent {
			continue
		}
		r := f.create(child, lineage)
		switch r.Status {
		case models.Deferred:
			pending.Add(r.Pending...)
		case models.Resolved:
			d.Children = append(d.Children, r.Value)
		}
	}

	if !pending.Empty() {
		return models.Defer[*ComponentDescriptor](pending.List()...)
	}
	return models.Ok(d)
}

// classify sorts an abstract component method into an entry point kind. A
// non-empty wait names a type that must be available before the method can
// be classified.
func (f *ComponentFactory) classify(m models.Method) (EntryPoint, string) {
	src := f.bindings.Source()
	ep := EntryPoint{Method: m, Kind: InvalidMethod}
	ret := m.Returns

	if ret.Kind == types.Declared && len(ret.Args) == 0 {
		if sub, st := src.Component(ret.Name); st == source.Found {
			if sub.Kind == models.Subcomponent {
				ep.Kind = ChildFactoryMethod
				ep.Child = sub.Name
			} else {
				ep.Reason = fmt.Sprintf("returns the root component %s", sub.Name)
			}
			return ep, ""
		} else if st == source.Pending {
			return ep, ret.Name
		}
		if owner, st := src.CreatorOwner(ret.Name); st == source.Found {
			if owner.Kind != models.Subcomponent {
				ep.Reason = fmt.Sprintf("returns the creator of root component %s", owner.Name)
			} else if len(m.Params) > 0 {
				ep.Reason = "subcomponent creator methods may not have parameters"
			} else {
				ep.Kind = ChildCreatorMethod
				ep.Child = owner.Name
			}
			return ep, ""
		} else if st == source.Pending {
			return ep, ret.Name
		}
	}

	switch {
	case m.IsVoid():
		ep.Reason = "component methods must return a value"
	case len(m.Params) > 0:
		ep.Reason = "provision methods may not have parameters"
	case len(m.TypeParams) > 0:
		ep.Reason = "component methods may not declare type parameters"
	default:
		ep.Kind = ProvisionMethod
		ep.Request = f.bindings.Request(ret, m.Annotations, m.Element())
	}
	return ep, ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
