package descriptors

import (
	"github.com/toyz/bindgraph/internal/annotations"
	"github.com/toyz/bindgraph/internal/bindings"
	"github.com/toyz/bindgraph/internal/errors"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/source"
	"github.com/toyz/bindgraph/internal/utils"
)

// ModuleDescriptor is the set of binding declarations contributed by one
// module, plus the modules it includes
type ModuleDescriptor struct {
	Name          string
	Module        *models.Module
	Bindings      []*models.Binding
	Multibindings []bindings.MultibindingDeclaration
	Subcomponents []bindings.SubcomponentDeclaration
	Includes      []*ModuleDescriptor
}

// HasScopedBinding reports whether any binding of the module carries a scope
func (d *ModuleDescriptor) HasScopedBinding() bool {
	for _, b := range d.Bindings {
		if b.IsScoped() && !b.Scope.IsReusable() {
			return true
		}
	}
	return false
}

// ModuleFactory builds module descriptors, once per module per batch
type ModuleFactory struct {
	bindings *bindings.Factory
	cache    *utils.Cache[string, *ModuleDescriptor]
}

// NewModuleFactory creates a module descriptor factory
func NewModuleFactory(b *bindings.Factory) *ModuleFactory {
	return &ModuleFactory{
		bindings: b,
		cache:    utils.NewCache[string, *ModuleDescriptor](),
	}
}

// Reset drops every cached descriptor
func (f *ModuleFactory) Reset() {
	f.cache.Clear()
}

// Create returns the descriptor for the named module. Includes that are not
// modules, are generic, or name the module itself are skipped; reporting
// them is the module validator's job.
func (f *ModuleFactory) Create(name string) models.Result[*ModuleDescriptor] {
	if d, ok := f.cache.Get(name); ok {
		return models.Ok(d)
	}
	mod, st := f.bindings.Source().Module(name)
	switch st {
	case source.Pending:
		return models.Defer[*ModuleDescriptor](name)
	case source.Absent:
		return models.Fail[*ModuleDescriptor](errors.Newf(errors.ManifestErrorCode, "%s is not a module", name).WithElement(name))
	}

	d := &ModuleDescriptor{Name: name, Module: mod}
	for _, m := range mod.Methods {
		switch {
		case annotations.Has(m.Annotations, annotations.Provides):
			d.Bindings = append(d.Bindings, f.bindings.Provision(m, name))
		case annotations.Has(m.Annotations, annotations.Binds):
			d.Bindings = append(d.Bindings, f.bindings.Delegate(m, name))
		case annotations.Has(m.Annotations, annotations.Multibinds):
			d.Multibindings = append(d.Multibindings, f.bindings.Multibinds(m, name))
		}
	}
	for _, sub := range mod.Subcomponents {
		d.Subcomponents = append(d.Subcomponents, bindings.SubcomponentDeclaration{Subcomponent: sub.Name, Module: name})
	}

	// Cached before walking includes so include cycles terminate
	f.cache.Set(name, d)
	for _, inc := range mod.Includes {
		if inc.Name == name || len(inc.Args) > 0 {
			continue
		}
		r := f.Create(inc.Name)
		switch r.Status {
		case models.Deferred:
			f.cache.Delete(name)
			return r
		case models.Resolved:
			if len(r.Value.Module.TypeParams) == 0 {
				d.Includes = append(d.Includes, r.Value)
			}
		}
	}
	return models.Ok(d)
}

// Transitive returns the modules and everything they include, deduplicated
// by module name, in depth-first declaration order
func Transitive(roots []*ModuleDescriptor) []*ModuleDescriptor {
	var out []*ModuleDescriptor
	seen := make(map[string]bool)
	var visit func(d *ModuleDescriptor)
	visit = func(d *ModuleDescriptor) {
		if seen[d.Name] {
			return
		}
		seen[d.Name] = true
		out = append(out, d)
		for _, inc := range d.Includes {
			visit(inc)
		}
	}
	for _, d := range roots {
		visit(d)
	}
	return out
}
