package validation

import (
	"github.com/toyz/bindgraph/internal/annotations"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/source"
)

// ValidateModule checks a module's binding methods, includes and declared
// subcomponents
func (v *Validator) ValidateModule(mod *models.Module) *Report {
	return v.modules.GetOrCompute(mod.Name, func() (*Report, bool) {
		r := NewReport(mod.Name)

		byName := make(map[string][]models.Method)
		var names []string
		for _, m := range mod.Methods {
			if !IsBindingMethod(m) {
				continue
			}
			if _, seen := byName[m.Name]; !seen {
				names = append(names, m.Name)
			}
			byName[m.Name] = append(byName[m.Name], m)
			if m.Overrides {
				r.Error(m.Element(), "binding methods may not override another method")
			}
			r.AddSubreport(v.ValidateBindingMethod(m, mod))
		}
		for _, name := range names {
			if methods := byName[name]; len(methods) > 1 {
				r.Error(methods[1].Element(), "cannot have more than one binding method with the same name in a single module: %s", describeMethods(methods))
			}
		}

		v.validateIncludes(mod, r)
		v.validateModuleSubcomponents(mod, r)
		return r, true
	})
}

func (v *Validator) validateIncludes(mod *models.Module, r *Report) {
	element := mod.Name
	for _, inc := range mod.Includes {
		if inc.Name == mod.Name {
			r.ErrorOn(element, annotations.Module, "%s includes itself", mod.Name)
			continue
		}
		included, st := v.src().Module(inc.Name)
		switch st {
		case source.Pending:
			continue
		case source.Absent:
			r.ErrorOn(element, annotations.Module, "%s is listed in includes but is not a module", inc)
			continue
		}
		if len(inc.Args) > 0 || len(included.TypeParams) > 0 {
			r.ErrorOn(element, annotations.Module, "%s is listed in includes but is generic", inc)
		}
	}
}

func (v *Validator) validateModuleSubcomponents(mod *models.Module, r *Report) {
	for _, sub := range mod.Subcomponents {
		comp, st := v.src().Component(sub.Name)
		switch st {
		case source.Pending:
			continue
		case source.Absent:
			r.ErrorOn(mod.Name, annotations.Module, "%s is listed in subcomponents but is not a subcomponent", sub)
			continue
		}
		if comp.Kind != models.Subcomponent {
			r.ErrorOn(mod.Name, annotations.Module, "%s is listed in subcomponents but is not a subcomponent", sub)
			continue
		}
		if comp.Creator == nil {
			r.ErrorOn(mod.Name, annotations.Module, "%s doesn't have a builder or factory, which is required when it is listed in a module's subcomponents", sub)
		}
	}
}
