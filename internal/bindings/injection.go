package bindings

import (
	"github.com/toyz/bindgraph/internal/annotations"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/source"
	"github.com/toyz/bindgraph/internal/types"
)

// InjectConstructor returns the constructor annotated @Inject or
// @AssistedInject, if any. With several, the first one wins; reporting the
// extra ones is left to validation.
func InjectConstructor(c *models.Class) *models.Constructor {
	for i := range c.Constructors {
		ctor := &c.Constructors[i]
		if annotations.Has(ctor.Annotations, annotations.Inject) || annotations.Has(ctor.Annotations, annotations.AssistedInject) {
			return ctor
		}
	}
	return nil
}

// IsAssistedConstructor reports whether ctor is an assisted injection
// constructor
func IsAssistedConstructor(ctor *models.Constructor) bool {
	return ctor != nil && annotations.Has(ctor.Annotations, annotations.AssistedInject)
}

// Injection returns the implicit binding for key, synthesized from an
// injectable constructor or an assisted factory type. A resolved result with
// a nil value means the key is not implicitly injectable.
func (f *Factory) Injection(key models.Key) models.Result[*models.Binding] {
	if key.IsQualified() || key.Contribution != "" {
		return models.Ok[*models.Binding](nil)
	}
	return f.injections.GetOrCompute(key, func() (models.Result[*models.Binding], bool) {
		r := f.injection(key)
		return r, !r.IsDeferred()
	})
}

func (f *Factory) injection(key models.Key) models.Result[*models.Binding] {
	none := models.Ok[*models.Binding](nil)

	t := key.TypeRef()
	if !t.IsDeclared() || t.IsRawFramework() {
		return none
	}
	class, st := f.src.Class(t.Name)
	switch st {
	case source.Pending:
		return models.Defer[*models.Binding](t.Name)
	case source.Absent:
		return none
	}

	if annotations.Has(class.Annotations, annotations.AssistedFactory) {
		return f.assistedFactory(key, t, class)
	}
	if !class.IsConcrete() {
		return none
	}
	ctor := InjectConstructor(class)
	if ctor == nil {
		return none
	}
	vars, ok := typeBindings(class, t)
	if !ok {
		return none
	}

	b := &models.Binding{
		Key:     key,
		Kind:    models.Injection,
		Element: ctor.Element(),
		Scope:   f.Scope(class.Annotations),
	}
	if IsAssistedConstructor(ctor) {
		b.Kind = models.AssistedInjection
	}
	for i, p := range ctor.Params {
		pt := types.Substitute(p.Type, vars)
		if b.Kind == models.AssistedInjection && p.Assisted {
			b.AssistedParams = append(b.AssistedParams, models.AssistedParameter{Type: pt, ID: p.AssistedID})
			continue
		}
		b.Dependencies = append(b.Dependencies, f.Request(pt, p.Annotations, ctor.ParamElement(i)))
	}
	return models.Ok(b)
}

// typeBindings pairs the class's type parameters with the key's type
// arguments. A raw reference to a generic class is not injectable.
func typeBindings(class *models.Class, t types.TypeRef) (map[string]types.TypeRef, bool) {
	if len(class.TypeParams) == 0 {
		return nil, len(t.Args) == 0
	}
	if t.ContainsTypeVariable() {
		return nil, false
	}
	vars, err := types.Bind(class.TypeParams, t.Args)
	if err != nil {
		return nil, false
	}
	return vars, true
}

// FactoryMethod returns the single abstract method of an assisted factory
// type, if it has exactly one
func FactoryMethod(class *models.Class) (models.Method, bool) {
	methods := class.AbstractMethods()
	if len(methods) != 1 {
		return models.Method{}, false
	}
	return methods[0], true
}

// FactoryParams returns the assisted parameter identities of a factory
// method, in declaration order
func FactoryParams(m models.Method) []models.AssistedParameter {
	out := make([]models.AssistedParameter, 0, len(m.Params))
	for _, p := range m.Params {
		out = append(out, p.AssistedIdentity())
	}
	return out
}

func (f *Factory) assistedFactory(key models.Key, t types.TypeRef, class *models.Class) models.Result[*models.Binding] {
	m, ok := FactoryMethod(class)
	if !ok {
		return models.Ok[*models.Binding](nil)
	}
	vars, ok := typeBindings(class, t)
	if !ok {
		return models.Ok[*models.Binding](nil)
	}
	target := types.Substitute(m.Returns, vars)
	params := FactoryParams(m)
	for i := range params {
		params[i].Type = types.Substitute(params[i].Type, vars)
	}

	b := &models.Binding{
		Key:            key,
		Kind:           models.AssistedFactory,
		Element:        class.Name,
		AssistedParams: params,
		Dependencies: []models.DependencyRequest{
			{Kind: models.Provider, Key: models.KeyOf(target)},
		},
	}

	assisted := f.Injection(models.KeyOf(target))
	if assisted.IsDeferred() {
		return assisted
	}
	if ai := assisted.Value; ai != nil && ai.Kind == models.AssistedInjection {
		if order, ok := MatchAssisted(params, ai.AssistedParams); ok {
			b.AssistedOrder = order
		}
	}
	return models.Ok(b)
}

// MatchAssisted pairs factory parameters with assisted constructor
// parameters by (type, identifier). ok is false unless both lists hold the
// same set of identities, each exactly once. order[i] is the constructor
// position of factory parameter i.
func MatchAssisted(factory, ctor []models.AssistedParameter) (order []int, ok bool) {
	if len(factory) != len(ctor) {
		return nil, false
	}
	positions := make(map[string]int, len(ctor))
	for i, p := range ctor {
		id := p.Identity()
		if _, dup := positions[id]; dup {
			return nil, false
		}
		positions[id] = i
	}
	order = make([]int, len(factory))
	used := make(map[string]bool, len(factory))
	for i, p := range factory {
		id := p.Identity()
		pos, found := positions[id]
		if !found || used[id] {
			return nil, false
		}
		used[id] = true
		order[i] = pos
	}
	return order, true
}
