package validation

import (
	"fmt"
	"strings"

	"github.com/toyz/bindgraph/internal/annotations"
	"github.com/toyz/bindgraph/internal/bindings"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/source"
	"github.com/toyz/bindgraph/internal/types"
)

type abstractness int

const (
	mustBeConcrete abstractness = iota
	mustBeAbstract
)

type paramRule int

const (
	anyParams paramRule = iota
	oneAssignableParam
	noParams
)

// methodRules configures the checks run for one kind of binding method
type methodRules struct {
	annotation          string
	allowsMultibindings bool
	allowsScoping       bool
	abstractness        abstractness
	params              paramRule
}

var bindingMethodRules = []methodRules{
	{
		annotation:          annotations.Provides,
		allowsMultibindings: true,
		allowsScoping:       true,
		abstractness:        mustBeConcrete,
		params:              anyParams,
	},
	{
		annotation:          annotations.Binds,
		allowsMultibindings: true,
		allowsScoping:       true,
		abstractness:        mustBeAbstract,
		params:              oneAssignableParam,
	},
	{
		annotation:          annotations.Multibinds,
		allowsMultibindings: false,
		allowsScoping:       false,
		abstractness:        mustBeAbstract,
		params:              noParams,
	},
}

// methodCheck is one independent rule over a binding method
type methodCheck func(v *Validator, m models.Method, mod *models.Module, rules methodRules, r *Report)

var methodChecks = []methodCheck{
	checkMethodVisibility,
	checkMethodTypeParams,
	checkMethodAbstractness,
	checkMethodReturnType,
	checkMethodParams,
	checkMethodQualifiers,
	checkMethodScopes,
	checkMethodMultibindings,
}

// IsBindingMethod reports whether m declares a binding
func IsBindingMethod(m models.Method) bool {
	return annotations.Count(m.Annotations, annotations.Provides, annotations.Binds, annotations.Multibinds) > 0
}

// ValidateBindingMethod checks the shape of a provides, binds or multibinds
// method declared in mod
func (v *Validator) ValidateBindingMethod(m models.Method, mod *models.Module) *Report {
	r := NewReport(m.Element())
	if n := annotations.Count(m.Annotations, annotations.Provides, annotations.Binds, annotations.Multibinds); n > 1 {
		r.Error(m.Element(), "binding methods may not have more than one of @Provides, @Binds and @Multibinds")
		return r
	}
	for _, rules := range bindingMethodRules {
		if !annotations.Has(m.Annotations, rules.annotation) {
			continue
		}
		for _, check := range methodChecks {
			check(v, m, mod, rules, r)
		}
	}
	return r
}

func checkMethodVisibility(v *Validator, m models.Method, mod *models.Module, rules methodRules, r *Report) {
	if m.Has(models.Private) {
		r.Error(m.Element(), "@%s methods may not be private", rules.annotation)
	}
}

func checkMethodTypeParams(v *Validator, m models.Method, mod *models.Module, rules methodRules, r *Report) {
	if len(m.TypeParams) > 0 {
		r.Error(m.Element(), "@%s methods may not have type parameters", rules.annotation)
	}
}

func checkMethodAbstractness(v *Validator, m models.Method, mod *models.Module, rules methodRules, r *Report) {
	switch rules.abstractness {
	case mustBeAbstract:
		if !m.IsAbstract() {
			r.Error(m.Element(), "@%s methods must be abstract", rules.annotation)
		}
	case mustBeConcrete:
		if m.IsAbstract() {
			r.Error(m.Element(), "@%s methods cannot be abstract", rules.annotation)
			return
		}
		if mod != nil && (mod.Abstract || mod.Interface) && !m.Has(models.Static) {
			r.Error(m.Element(), "@%s methods in abstract modules must be static", rules.annotation)
		}
	}
}

func checkMethodReturnType(v *Validator, m models.Method, mod *models.Module, rules methodRules, r *Report) {
	ret := m.Returns
	if ret.Kind == types.Void {
		r.Error(m.Element(), "@%s methods must return a value (not void)", rules.annotation)
		return
	}
	if !ret.IsValidBindingType() {
		r.Error(m.Element(), "@%s methods must return a primitive, an array, a type variable, or a declared type", rules.annotation)
		return
	}
	if ret.Is(types.ProviderName) || ret.Is(types.LazyName) {
		r.Error(m.Element(), "@%s methods must not return framework types: %s", rules.annotation, ret)
		return
	}
	if rules.annotation == annotations.Multibinds {
		if !bindings.IsSetType(ret) && !bindings.IsMapType(ret) {
			r.Error(m.Element(), "@Multibinds methods must return Map<K, V> or Set<T>")
		} else if ret.HasWildcardArgs() {
			r.Error(m.Element(), "@Multibinds methods must return a type without wildcard arguments: %s", ret)
		}
		return
	}
	if annotations.Has(m.Annotations, annotations.ElementsIntoSet) && !bindings.IsSetType(ret) {
		r.Error(m.Element(), "@ElementsIntoSet methods must return a Set")
	}
}

func checkMethodParams(v *Validator, m models.Method, mod *models.Module, rules methodRules, r *Report) {
	switch rules.params {
	case noParams:
		if len(m.Params) > 0 {
			r.Error(m.Element(), "@%s methods cannot have parameters", rules.annotation)
		}
		return
	case oneAssignableParam:
		if len(m.Params) != 1 {
			r.Error(m.Element(), "@%s methods must have exactly one parameter, whose type is assignable to the return type", rules.annotation)
			return
		}
		p := m.Params[0]
		target := m.Returns
		if ok, pending := v.assignable(p.Type, target); !ok && !pending {
			r.Error(m.ParamElement(0), "@%s methods' parameter type must be assignable to the return type: %s is not a subtype of %s", rules.annotation, p.Type, target)
		}
	}
	for i, p := range m.Params {
		v.checkRequest(r, m.ParamElement(i), p.Type, p.Annotations)
	}
}

func checkMethodQualifiers(v *Validator, m models.Method, mod *models.Module, rules methodRules, r *Report) {
	v.checkQualifiers(r, m.Element(), m.Annotations)
}

func checkMethodScopes(v *Validator, m models.Method, mod *models.Module, rules methodRules, r *Report) {
	scopes := v.registry().Scopes(m.Annotations)
	if len(scopes) == 0 {
		return
	}
	if !rules.allowsScoping {
		r.ErrorOn(m.Element(), scopes[0].String(), "@%s methods cannot be scoped", rules.annotation)
		return
	}
	if len(scopes) > 1 {
		r.ErrorOn(m.Element(), scopes[1].String(), "%s may not use more than one scope: %s", m.Element(), joinAnnotations(scopes))
	}
}

func checkMethodMultibindings(v *Validator, m models.Method, mod *models.Module, rules methodRules, r *Report) {
	n := annotations.Count(m.Annotations, annotations.IntoSet, annotations.ElementsIntoSet, annotations.IntoMap)
	mapKeys := v.registry().MapKeys(m.Annotations)

	if n > 0 && !rules.allowsMultibindings {
		r.Error(m.Element(), "@%s methods cannot have multibinding annotations", rules.annotation)
		return
	}
	if n > 1 {
		r.Error(m.Element(), "binding methods may not have more than one multibinding annotation")
		return
	}
	if annotations.Has(m.Annotations, annotations.IntoMap) {
		switch len(mapKeys) {
		case 0:
			r.Error(m.Element(), "@IntoMap methods must have a map key annotation")
		case 1:
		default:
			r.ErrorOn(m.Element(), mapKeys[1].String(), "@IntoMap methods may not have more than one map key annotation: %s", joinAnnotations(mapKeys))
		}
		return
	}
	if len(mapKeys) > 0 {
		r.ErrorOn(m.Element(), mapKeys[0].String(), "map key annotations are only allowed on @IntoMap methods")
	}
}

// assignable reports whether from is the same type as to or one of its
// subtypes. pending is set when a supertype could not be read yet.
func (v *Validator) assignable(from, to types.TypeRef) (ok, pending bool) {
	seen := make(map[string]bool)
	var walk func(t types.TypeRef) (bool, bool)
	walk = func(t types.TypeRef) (bool, bool) {
		if t.String() == to.String() {
			return true, false
		}
		if !t.IsDeclared() || seen[t.String()] {
			return false, false
		}
		seen[t.String()] = true
		class, st := v.src().Class(t.Name)
		switch st {
		case source.Pending:
			return false, true
		case source.Absent:
			return false, false
		}
		vars := map[string]types.TypeRef{}
		if len(class.TypeParams) == len(t.Args) && len(t.Args) > 0 {
			vars, _ = types.Bind(class.TypeParams, t.Args)
		}
		anyPending := false
		for _, super := range class.Supertypes {
			ok, p := walk(types.Substitute(super, vars))
			if ok {
				return true, false
			}
			anyPending = anyPending || p
		}
		return false, anyPending
	}
	return walk(from)
}

func describeMethods(methods []models.Method) string {
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.Element()
	}
	return strings.Join(names, ", ")
}

func describeParams(params []models.AssistedParameter) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(names, ", "))
}
