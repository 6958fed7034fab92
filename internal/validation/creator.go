package validation

import (
	"strings"

	"github.com/toyz/bindgraph/internal/descriptors"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/types"
)

// ValidateCreator checks the builder or factory of a component. inherited
// names the modules already installed by ancestors, which the creator must
// not be required to supply.
func (v *Validator) ValidateCreator(d *descriptors.ComponentDescriptor, inherited map[string]bool) *Report {
	c := d.Creator
	r := NewReport(c.Creator.Name)
	creator := c.Creator
	kind := creator.Kind.String()

	if len(creator.TypeParams) > 0 {
		r.Error(creator.Name, "component %ss may not have type parameters", kind)
	}
	if creator.IsClass {
		switch {
		case len(creator.Constructors) > 1:
			r.Error(creator.Name, "component %s classes may have only one constructor", kind)
		case len(creator.Constructors) == 1:
			ctor := creator.Constructors[0]
			if len(ctor.Params) > 0 || ctor.IsPrivate() {
				r.Error(ctor.Element(), "component %s classes must have a non-private, zero-argument constructor", kind)
			}
		}
	}

	switch creator.Kind {
	case models.Builder:
		v.validateBuilder(d, r)
	case models.Factory:
		v.validateFactory(d, r)
	}
	v.validateRequirements(d, inherited, r)
	return r
}

func (v *Validator) validateBuilder(d *descriptors.ComponentDescriptor, r *Report) {
	c := d.Creator
	switch len(c.BuildMethods) {
	case 0:
		r.Error(c.Creator.Name, "component builders must have exactly one no-argument method that returns %s", d.Name)
	case 1:
		m := c.BuildMethods[0]
		if !returnsComponent(m, d) {
			r.Error(m.Element(), "the build method of a component builder must return %s", d.Name)
		}
	default:
		r.Error(c.Creator.Name, "component builders may have only one build method; found: %s", describeMethods(c.BuildMethods))
	}
	for _, m := range c.Invalid {
		r.Error(m.Element(), "builder methods must have exactly one parameter, or none for the build method")
	}
	for _, s := range c.Setters {
		ret := s.Method.Returns
		if ret.Kind != types.Void && !ret.Is(c.Creator.Name) {
			r.Error(s.Element, "builder setter methods must return void or %s", c.Creator.Name)
		}
	}
}

func (v *Validator) validateFactory(d *descriptors.ComponentDescriptor, r *Report) {
	c := d.Creator
	methods := c.Creator.AbstractMethods()
	if len(methods) != 1 {
		r.Error(c.Creator.Name, "component factories must have exactly one abstract method; found %d", len(methods))
		return
	}
	if !returnsComponent(methods[0], d) {
		r.Error(methods[0].Element(), "the factory method of a component factory must return %s", d.Name)
	}
}

func (v *Validator) validateRequirements(d *descriptors.ComponentDescriptor, inherited map[string]bool, r *Report) {
	c := d.Creator
	dependencies := make(map[string]bool, len(d.Dependencies))
	for _, dep := range d.Dependencies {
		dependencies[dep.String()] = true
	}

	for _, req := range c.Requirements() {
		setters := c.SettersFor(req)
		if len(setters) > 1 {
			elements := make([]string, len(setters))
			for i, s := range setters {
				elements[i] = s.Element
			}
			r.Error(setters[1].Element, "%s is set more than once: %s", req, strings.Join(elements, ", "))
		}
		if req.Kind == descriptors.DependencyRequirement && !dependencies[req.Type] {
			r.Error(setters[0].Element, "%s is neither a module nor a dependency of %s", req.Type, d.Name)
		}
	}

	var missing []string
	for _, md := range d.Modules {
		if inherited[md.Name] || md.Module.IsInstantiable() {
			continue
		}
		req := descriptors.ComponentRequirement{Kind: descriptors.ModuleRequirement, Type: md.Name}
		if len(c.SettersFor(req)) == 0 {
			missing = append(missing, md.Name)
		}
	}
	for _, dep := range d.Dependencies {
		req := descriptors.ComponentRequirement{Kind: descriptors.DependencyRequirement, Type: dep.String()}
		if len(c.SettersFor(req)) == 0 {
			missing = append(missing, dep.String())
		}
	}
	if len(missing) > 0 {
		r.Error(c.Creator.Name, "component %s is missing setters for required modules or components: [%s]", c.Kind(), strings.Join(missing, ", "))
	}
}

func returnsComponent(m models.Method, d *descriptors.ComponentDescriptor) bool {
	return m.Returns.Is(d.Name)
}
