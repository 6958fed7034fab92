package validation

import (
	"github.com/toyz/bindgraph/internal/annotations"
	"github.com/toyz/bindgraph/internal/bindings"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/source"
)

// ValidateClass checks an injectable type: its inject constructor, its
// scope and, for assisted injection, its assisted parameters. Assisted
// factory types are checked against their target.
func (v *Validator) ValidateClass(c *models.Class) *Report {
	return v.classes.GetOrCompute(c.Name, func() (*Report, bool) {
		r := NewReport(c.Name)
		v.validateInjectable(c, r)
		if annotations.Has(c.Annotations, annotations.AssistedFactory) {
			v.validateAssistedFactory(c, r)
		}
		return r, true
	})
}

func (v *Validator) validateInjectable(c *models.Class, r *Report) {
	var injected []models.Constructor
	for _, ctor := range c.Constructors {
		inject := annotations.Has(ctor.Annotations, annotations.Inject)
		assisted := annotations.Has(ctor.Annotations, annotations.AssistedInject)
		if inject && assisted {
			r.Error(ctor.Element(), "constructors cannot be annotated with both @Inject and @AssistedInject")
		}
		if inject || assisted {
			injected = append(injected, ctor)
		}
	}
	scopes := v.registry().Scopes(c.Annotations)
	if len(scopes) > 1 {
		r.ErrorOn(c.Name, scopes[1].String(), "%s may not use more than one scope: %s", c.Name, joinAnnotations(scopes))
	}
	if len(injected) == 0 {
		return
	}
	if len(injected) > 1 {
		r.Error(c.Name, "types may only contain one injected constructor, found %d", len(injected))
	}

	for _, ctor := range injected {
		if ctor.IsPrivate() {
			r.Error(ctor.Element(), "injected constructors may not be private")
		}
		if !c.IsConcrete() {
			r.Error(ctor.Element(), "injected constructors cannot be declared on abstract types")
		}
		assistedCtor := bindings.IsAssistedConstructor(&ctor)
		if assistedCtor && len(scopes) > 0 {
			r.ErrorOn(c.Name, scopes[0].String(), "@AssistedInject types cannot be scoped")
		}

		seen := make(map[string]bool)
		for i, p := range ctor.Params {
			element := ctor.ParamElement(i)
			if p.Assisted {
				if !assistedCtor {
					r.Error(element, "@Assisted parameters can only be used within an @AssistedInject constructor")
					continue
				}
				id := p.AssistedIdentity()
				if seen[id.Identity()] {
					r.Error(element, "@AssistedInject constructor has duplicate @Assisted type: %s", id)
				}
				seen[id.Identity()] = true
				continue
			}
			v.checkRequest(r, element, p.Type, p.Annotations)
		}
	}
}

func (v *Validator) validateAssistedFactory(c *models.Class, r *Report) {
	if c.IsConcrete() {
		r.Error(c.Name, "the @AssistedFactory type must be abstract or an interface")
	}
	methods := c.AbstractMethods()
	if len(methods) != 1 {
		r.Error(c.Name, "the @AssistedFactory type should contain a single abstract, non-default method but found %d", len(methods))
		return
	}
	m := methods[0]
	if len(m.TypeParams) > 0 {
		r.Error(m.Element(), "@AssistedFactory methods may not declare type parameters")
	}

	ret := m.Returns
	invalid := func() {
		r.Error(m.Element(), "invalid return type: %s. An assisted factory's abstract method must return a type with an @AssistedInject constructor", ret)
	}
	if !ret.IsDeclared() {
		invalid()
		return
	}
	target, st := v.src().Class(ret.Name)
	switch st {
	case source.Pending:
		return
	case source.Absent:
		invalid()
		return
	}
	ctor := bindings.InjectConstructor(target)
	if !bindings.IsAssistedConstructor(ctor) {
		invalid()
		return
	}

	var expected []models.AssistedParameter
	for _, p := range ctor.Params {
		if p.Assisted {
			expected = append(expected, p.AssistedIdentity())
		}
	}
	actual := bindings.FactoryParams(m)
	if _, ok := bindings.MatchAssisted(actual, expected); !ok {
		r.Error(m.Element(), "the parameters in the factory method must match the @Assisted parameters in %s.\n      Actual: %s\n    Expected: %s",
			target.Name, describeParams(actual), describeParams(expected))
	}
}
