package validation

import (
	"fmt"
	"strings"

	"github.com/toyz/bindgraph/internal/descriptors"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/source"
	"github.com/toyz/bindgraph/internal/utils"
)

// ValidateComponent checks the component tree rooted at root: its entry
// points, creators, subcomponent factory methods, scopes, repeated modules
// and component dependencies. Modules and injectable classes are validated
// separately.
func (v *Validator) ValidateComponent(root *descriptors.ComponentDescriptor) *Report {
	r := NewReport(root.Name)
	v.validateDependencyCycles(root.Component, r)
	v.validateScopeHierarchy(root.Component, r)
	v.validateTree(root, nil, r)
	return r
}

func (v *Validator) validateTree(d *descriptors.ComponentDescriptor, ancestors []*descriptors.ComponentDescriptor, parent *Report) {
	r := NewReport(d.Name)
	comp := d.Component

	for _, mt := range comp.Modules {
		if _, st := v.src().Module(mt.Name); st == source.Absent {
			r.Error(d.Name, "%s is listed as a module of %s but is not a module", mt, d.Name)
		}
	}
	for _, dep := range comp.Dependencies {
		if !dep.IsDeclared() {
			r.Error(d.Name, "%s is listed as a dependency of %s but is not a declared type", dep, d.Name)
			continue
		}
		if source.Declared(v.src(), dep.Name) == source.Absent {
			r.Error(d.Name, "%s is listed as a dependency of %s but is not declared", dep, d.Name)
		}
	}
	if comp.Kind == models.Subcomponent && len(comp.Dependencies) > 0 {
		r.Error(d.Name, "subcomponents may not declare component dependencies")
	}

	for _, ep := range d.EntryPoints {
		switch ep.Kind {
		case descriptors.InvalidMethod:
			r.Error(ep.Method.Element(), "%s is not a valid component method: %s", ep.Method.Element(), ep.Reason)
		case descriptors.ProvisionMethod:
			v.checkRequest(r, ep.Method.Element(), ep.Method.Returns, ep.Method.Annotations)
		case descriptors.ChildFactoryMethod:
			if child, ok := d.Child(ep.Child); ok {
				v.validateChildFactoryMethod(ep.Method, child, append(ancestors, d), r)
			}
		}
	}

	inherited := make(map[string]bool)
	for _, a := range ancestors {
		for _, md := range a.Modules {
			inherited[md.Name] = true
		}
	}
	if d.Creator != nil {
		r.AddSubreport(v.ValidateCreator(d, inherited))
	}

	for _, name := range d.RecursiveChildren {
		r.Error(d.Name, "%s is a subcomponent of itself through %s", name, d.Name)
	}

	if len(ancestors) > 0 {
		v.validateAncestorScopes(d, ancestors, r)
		v.validateRepeatedModules(d, ancestors, r)
	}
	v.validateSiblingModules(d, r)

	lineage := append(append([]*descriptors.ComponentDescriptor(nil), ancestors...), d)
	for _, child := range d.Children {
		v.validateTree(child, lineage, r)
	}
	parent.AddSubreport(r)
}

// validateChildFactoryMethod checks the parameters of a method returning a
// subcomponent: each must be a module of the child not already installed by
// an ancestor, passed once, and every module the child cannot instantiate
// must be passed.
func (v *Validator) validateChildFactoryMethod(m models.Method, child *descriptors.ComponentDescriptor, ancestors []*descriptors.ComponentDescriptor, r *Report) {
	passed := make(map[string]bool)
	for i, p := range m.Params {
		element := m.ParamElement(i)
		name := p.Type.Name
		switch {
		case !p.Type.IsDeclared() || !child.HasModule(name):
			r.Error(element, "%s is not a module of %s", p.Type, child.Name)
		case installedIn(ancestors, name) != "":
			r.Error(element, "%s is present in %s. A subcomponent cannot use an instance of a module that differs from its parent", name, installedIn(ancestors, name))
		case passed[name]:
			r.Error(element, "%s is passed more than once", name)
		}
		passed[name] = true
	}
	if child.Creator != nil {
		return
	}
	var missing []string
	for _, md := range child.Modules {
		if passed[md.Name] || installedIn(ancestors, md.Name) != "" || md.Module.IsInstantiable() {
			continue
		}
		missing = append(missing, md.Name)
	}
	if len(missing) > 0 {
		r.Error(m.Element(), "%s requires modules which have no visible default constructors. Add the following modules as parameters to this method: %s", child.Name, strings.Join(missing, ", "))
	}
}

func installedIn(ancestors []*descriptors.ComponentDescriptor, module string) string {
	for _, a := range ancestors {
		if a.HasModule(module) {
			return a.Name
		}
	}
	return ""
}

func (v *Validator) validateAncestorScopes(d *descriptors.ComponentDescriptor, ancestors []*descriptors.ComponentDescriptor, r *Report) {
	for _, s := range d.Scopes {
		for _, a := range ancestors {
			if a.HasScope(s) {
				r.Error(d.Name, "%s has conflicting scopes: %s also has %s", d.Name, a.Name, s)
			}
		}
	}
}

// validateRepeatedModules reports modules with scoped bindings that a
// subcomponent installs again after an ancestor installed them
func (v *Validator) validateRepeatedModules(d *descriptors.ComponentDescriptor, ancestors []*descriptors.ComponentDescriptor, r *Report) {
	var repeated []string
	for _, md := range d.DeclaredModules {
		for _, closure := range descriptors.Transitive([]*descriptors.ModuleDescriptor{md}) {
			if closure.HasScopedBinding() && installedIn(ancestors, closure.Name) != "" && !contains(repeated, closure.Name) {
				repeated = append(repeated, closure.Name)
			}
		}
	}
	if len(repeated) > 0 {
		r.Error(d.Name, "%s repeats modules with scoped bindings, so it cannot be a subcomponent of %s. The following modules are already present: %s",
			d.Name, ancestors[len(ancestors)-1].Name, strings.Join(repeated, ", "))
	}
}

// validateSiblingModules reports modules with scoped bindings installed by
// two children of d, which would create two instances of each scoped binding
func (v *Validator) validateSiblingModules(d *descriptors.ComponentDescriptor, r *Report) {
	owner := make(map[string]string)
	for _, child := range d.Children {
		for _, md := range child.Modules {
			if !md.HasScopedBinding() || d.HasModule(md.Name) {
				continue
			}
			if first, ok := owner[md.Name]; ok && first != child.Name {
				r.Error(d.Name, "%s is installed by both %s and %s, and has scoped bindings", md.Name, first, child.Name)
				continue
			}
			owner[md.Name] = child.Name
		}
	}
}

// validateDependencyCycles walks the component dependency edges depth
// first and reports the first cycle found, with its full path
func (v *Validator) validateDependencyCycles(root *models.Component, r *Report) {
	var stack []string
	onStack := make(map[string]bool)
	done := make(map[string]bool)

	var visit func(c *models.Component) bool
	visit = func(c *models.Component) bool {
		stack = append(stack, c.Name)
		onStack[c.Name] = true
		defer func() {
			stack = stack[:len(stack)-1]
			onStack[c.Name] = false
			done[c.Name] = true
		}()
		for _, dep := range v.componentDependencies(c) {
			if onStack[dep.Name] {
				start := indexOf(stack, dep.Name)
				path := append(append([]string(nil), stack[start:]...), dep.Name)
				r.Error(root.Name, "%s contains a cycle in its component dependencies:\n    %s", root.Name, strings.Join(path, " → "))
				return true
			}
			if !done[dep.Name] && visit(dep) {
				return true
			}
		}
		return false
	}
	visit(root)
}

// validateScopeHierarchy walks the component dependency edges, tracking the
// scopes on the current path. A dependency repeating a scope already on the
// path is an error, reported once per dependency and conflicting ancestor.
// Each component is walked once per distinct set of scopes above it.
func (v *Validator) validateScopeHierarchy(root *models.Component, r *Report) {
	var path []*models.Component
	onPath := make(map[string]bool)
	walked := make(map[string]bool)
	reported := make(map[string]bool)

	var visit func(c *models.Component)
	visit = func(c *models.Component) {
		path = append(path, c)
		onPath[c.Name] = true
		defer func() {
			path = path[:len(path)-1]
			onPath[c.Name] = false
		}()

		memo := c.Name + "|" + pathScopes(path)
		if walked[memo] {
			return
		}
		walked[memo] = true

		for _, dep := range v.componentDependencies(c) {
			if onPath[dep.Name] {
				continue
			}
			depScopes := scopesOf(dep)
			if conflict := v.scopeConflict(path, depScopes); conflict != nil {
				if id := conflict.Name + "|" + dep.Name; !reported[id] {
					reported[id] = true
					r.Error(root.Name, "%s depends on scoped components in a non-hierarchical scope ordering:\n%s", root.Name, describeScopePath(append(append([]*models.Component(nil), path...), dep)))
				}
				continue
			}
			if v.config.StrictSingleton && len(depScopes) > 0 && hasSingleton(scopesOf(c)) {
				if id := "@Singleton|" + c.Name + "|" + dep.Name; !reported[id] {
					reported[id] = true
					r.Error(root.Name, "this @Singleton component cannot depend on scoped components:\n    %s %s", strings.Join(scopeStrings(depScopes), " "), dep.Name)
				}
				continue
			}
			visit(dep)
		}
	}
	visit(root)
}

// pathScopes is the sorted, distinct set of scopes held by the components on
// path
func pathScopes(path []*models.Component) string {
	seen := make(map[string]bool)
	for _, c := range path {
		for _, s := range scopesOf(c) {
			seen[s.String()] = true
		}
	}
	return strings.Join(utils.SortedKeys(seen), ",")
}

func (v *Validator) scopeConflict(path []*models.Component, scopes []models.Scope) *models.Component {
	for _, c := range path {
		for _, s := range scopesOf(c) {
			for _, other := range scopes {
				if s == other {
					return c
				}
			}
		}
	}
	return nil
}

func (v *Validator) componentDependencies(c *models.Component) []*models.Component {
	var out []*models.Component
	for _, dep := range c.Dependencies {
		if !dep.IsDeclared() {
			continue
		}
		if comp, st := v.src().Component(dep.Name); st == source.Found {
			out = append(out, comp)
		}
	}
	return out
}

func scopesOf(c *models.Component) []models.Scope {
	out := make([]models.Scope, 0, len(c.Scopes))
	for _, a := range c.Scopes {
		out = append(out, models.ScopeOf(a))
	}
	return out
}

func hasSingleton(scopes []models.Scope) bool {
	for _, s := range scopes {
		if s.IsSingleton() {
			return true
		}
	}
	return false
}

func scopeStrings(scopes []models.Scope) []string {
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = s.String()
	}
	return out
}

func describeScopePath(path []*models.Component) string {
	lines := make([]string, len(path))
	for i, c := range path {
		lines[i] = fmt.Sprintf("    %s %s", strings.Join(scopeStrings(scopesOf(c)), " "), c.Name)
	}
	return strings.Join(lines, "\n")
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func contains(list []string, s string) bool {
	return indexOf(list, s) >= 0
}
