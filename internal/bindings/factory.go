package bindings

import (
	"github.com/toyz/bindgraph/internal/annotations"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/registry"
	"github.com/toyz/bindgraph/internal/source"
	"github.com/toyz/bindgraph/internal/types"
	"github.com/toyz/bindgraph/internal/utils"
)

// Factory creates bindings, one constructor per binding kind. Implicit
// injection bindings are memoized for the lifetime of the batch since they
// carry no component-specific state.
type Factory struct {
	src        source.Source
	injections *utils.Cache[models.Key, models.Result[*models.Binding]]
}

// NewFactory creates a binding factory reading declarations from src
func NewFactory(src source.Source) *Factory {
	return &Factory{
		src:        src,
		injections: utils.NewCache[models.Key, models.Result[*models.Binding]](),
	}
}

// Reset drops every memoized binding and switches to a new batch
func (f *Factory) Reset(src source.Source) {
	f.src = src
	f.injections.Clear()
}

// Source returns the declaration source of the current batch
func (f *Factory) Source() source.Source {
	return f.src
}

func (f *Factory) registry() *registry.AnnotationRegistry {
	return f.src.Registry()
}

// Qualifier returns the first qualifier annotation in list, if any
func (f *Factory) Qualifier(list []annotations.AnnotationRef) *annotations.AnnotationRef {
	qs := f.registry().Qualifiers(list)
	if len(qs) == 0 {
		return nil
	}
	q := qs[0]
	return &q
}

// Scope returns the first scope annotation in list, if any
func (f *Factory) Scope(list []annotations.AnnotationRef) models.Scope {
	scopes := f.registry().Scopes(list)
	if len(scopes) == 0 {
		return models.Unscoped
	}
	return models.ScopeOf(scopes[0])
}

// Request builds the dependency request for a parameter or method of type t
func (f *Factory) Request(t types.TypeRef, list []annotations.AnnotationRef, element string) models.DependencyRequest {
	kind, inner := models.RequestForType(t)
	return models.DependencyRequest{
		Kind:    kind,
		Key:     models.NewKey(inner, f.Qualifier(list)),
		Element: element,
	}
}

// ContributionTypeOf returns how a binding method contributes to its key
func ContributionTypeOf(list []annotations.AnnotationRef) models.ContributionType {
	switch {
	case annotations.Has(list, annotations.IntoSet):
		return models.SetContribution
	case annotations.Has(list, annotations.ElementsIntoSet):
		return models.SetValuesContribution
	case annotations.Has(list, annotations.IntoMap):
		return models.MapContribution
	default:
		return models.Unique
	}
}

// MapKeyOf returns the first map key annotation in list, if any
func (f *Factory) MapKeyOf(list []annotations.AnnotationRef) *annotations.AnnotationRef {
	keys := f.registry().MapKeys(list)
	if len(keys) == 0 {
		return nil
	}
	k := keys[0]
	return &k
}

// ContributionKey returns the key a binding method contributes to, along
// with its contribution type and map key.
func (f *Factory) ContributionKey(m models.Method) (models.Key, models.ContributionType, *annotations.AnnotationRef) {
	qualifier := f.Qualifier(m.Annotations)
	ct := ContributionTypeOf(m.Annotations)
	id := models.NewContributionID(m.Element())

	switch ct {
	case models.SetContribution:
		return models.NewKey(types.SetOf(m.Returns), qualifier).WithContribution(id), ct, nil
	case models.SetValuesContribution:
		return models.NewKey(m.Returns, qualifier).WithContribution(id), ct, nil
	case models.MapContribution:
		mapKey := f.MapKeyOf(m.Annotations)
		keyType := types.TypeRef{Kind: types.Wildcard}
		if mapKey != nil {
			if t, err := f.registry().MapKeyType(*mapKey); err == nil {
				keyType = t
			}
		}
		return models.NewKey(types.MapOf(keyType, m.Returns), qualifier).WithContribution(id), ct, mapKey
	default:
		return models.NewKey(m.Returns, qualifier), ct, nil
	}
}

// Provision creates the binding for a provider method of a module
func (f *Factory) Provision(m models.Method, module string) *models.Binding {
	key, ct, mapKey := f.ContributionKey(m)
	deps := make([]models.DependencyRequest, 0, len(m.Params))
	for i, p := range m.Params {
		deps = append(deps, f.Request(p.Type, p.Annotations, m.ParamElement(i)))
	}
	return &models.Binding{
		Key:                    key,
		Kind:                   models.Provision,
		ContributionType:       ct,
		Dependencies:           deps,
		Element:                m.Element(),
		ContributingModule:     module,
		RequiresModuleInstance: !m.Has(models.Static) && !m.IsAbstract(),
		Scope:                  f.Scope(m.Annotations),
		MapKey:                 mapKey,
	}
}

// Delegate creates the binding for a binds method. Its single dependency is
// the bound implementation.
func (f *Factory) Delegate(m models.Method, module string) *models.Binding {
	key, ct, mapKey := f.ContributionKey(m)
	var deps []models.DependencyRequest
	if len(m.Params) > 0 {
		p := m.Params[0]
		deps = append(deps, f.Request(p.Type, p.Annotations, m.ParamElement(0)))
	}
	return &models.Binding{
		Key:                key,
		Kind:               models.Delegate,
		ContributionType:   ct,
		Dependencies:       deps,
		Element:            m.Element(),
		ContributingModule: module,
		Scope:              f.Scope(m.Annotations),
		MapKey:             mapKey,
	}
}

// Component creates the binding that lets a component be injected into its
// own graph
func (f *Factory) Component(c *models.Component) *models.Binding {
	return &models.Binding{
		Key:     models.KeyOf(c.Type()),
		Kind:    models.ComponentBinding,
		Element: c.Name,
	}
}

// ComponentDependency creates the binding for an instance of a component
// dependency
func (f *Factory) ComponentDependency(dep types.TypeRef) *models.Binding {
	return &models.Binding{
		Key:     models.KeyOf(dep),
		Kind:    models.ComponentDependency,
		Element: dep.String(),
	}
}

// ComponentProvisions creates one binding per provision method exposed by a
// component dependency. Unknown dependency types yield no bindings.
func (f *Factory) ComponentProvisions(dep types.TypeRef) models.Result[[]*models.Binding] {
	var methods []models.Method
	if comp, st := f.src.Component(dep.Name); st == source.Found {
		methods = comp.AbstractMethods()
	} else if class, cst := f.src.Class(dep.Name); cst == source.Found {
		for _, m := range class.Methods {
			if !m.Has(models.Static) && !m.Has(models.Private) {
				methods = append(methods, m)
			}
		}
	} else if st == source.Pending || cst == source.Pending {
		return models.Defer[[]*models.Binding](dep.Name)
	}

	var out []*models.Binding
	for _, m := range methods {
		if len(m.Params) > 0 || m.IsVoid() {
			continue
		}
		out = append(out, &models.Binding{
			Key:     models.NewKey(m.Returns, f.Qualifier(m.Annotations)),
			Kind:    models.ComponentProvision,
			Element: m.Element(),
			Scope:   f.Scope(m.Annotations),
		})
	}
	return models.Ok(out)
}

// BoundInstance creates the binding for an instance passed to a component
// creator
func (f *Factory) BoundInstance(key models.Key, element string) *models.Binding {
	return &models.Binding{
		Key:     key,
		Kind:    models.BoundInstance,
		Element: element,
	}
}

// SubcomponentCreator creates the binding for a subcomponent creator
// declared through a module
func (f *Factory) SubcomponentCreator(decl SubcomponentDeclaration, creator types.TypeRef) *models.Binding {
	return &models.Binding{
		Key:                models.KeyOf(creator),
		Kind:               models.SubcomponentCreator,
		Element:            decl.Element(),
		ContributingModule: decl.Module,
	}
}
