package bindings

import (
	"sort"

	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/types"
)

// MultibindingDeclaration declares a possibly empty set or map
type MultibindingDeclaration struct {
	Key     models.Key
	Element string
	Module  string
}

// SubcomponentDeclaration is a subcomponent listed by a module
type SubcomponentDeclaration struct {
	Subcomponent string
	Module       string
}

// Element returns the declaring element of the declaration
func (d SubcomponentDeclaration) Element() string {
	return d.Module + "(subcomponents=" + d.Subcomponent + ")"
}

// Multibinds creates the declaration for a multibinds method
func (f *Factory) Multibinds(m models.Method, module string) MultibindingDeclaration {
	return MultibindingDeclaration{
		Key:     models.NewKey(m.Returns, f.Qualifier(m.Annotations)),
		Element: m.Element(),
		Module:  module,
	}
}

// IsSetType reports whether t is Set<T>
func IsSetType(t types.TypeRef) bool {
	return t.Is(types.SetName) && len(t.Args) == 1
}

// IsMapType reports whether t is Map<K, V>
func IsMapType(t types.TypeRef) bool {
	return t.Is(types.MapName) && len(t.Args) == 2
}

// CollectionKey returns the key that contributions to k are registered
// under. Map<K, Provider<V>> is served by the contributions to Map<K, V>.
// deferred reports whether the values are delivered as providers.
func CollectionKey(k models.Key) (collection models.Key, deferred bool) {
	t := k.TypeRef()
	if IsMapType(t) {
		if v, ok := t.Args[1].Unwrap(types.ProviderName); ok {
			return k.WithType(types.MapOf(t.Args[0], v)), true
		}
	}
	return k, false
}

// MultiboundSet synthesizes the set binding aggregating contributions, in
// contribution order
func (f *Factory) MultiboundSet(key models.Key, contributions []*models.Binding) *models.Binding {
	deps := make([]models.DependencyRequest, 0, len(contributions))
	for _, c := range contributions {
		deps = append(deps, models.DependencyRequest{Kind: models.Instance, Key: c.Key})
	}
	return &models.Binding{Key: key, Kind: models.MultiboundSet, Dependencies: deps}
}

// MultiboundMap synthesizes the map binding aggregating contributions,
// ordered by map key. Contributions without a map key sort last. When the
// map's values are providers each entry is requested as a provider.
func (f *Factory) MultiboundMap(key models.Key, contributions []*models.Binding) *models.Binding {
	_, deferred := CollectionKey(key)
	kind := models.Instance
	if deferred {
		kind = models.Provider
	}
	sorted := append([]*models.Binding(nil), contributions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].MapKey, sorted[j].MapKey
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.String() < b.String()
	})
	deps := make([]models.DependencyRequest, 0, len(sorted))
	for _, c := range sorted {
		deps = append(deps, models.DependencyRequest{Kind: kind, Key: c.Key})
	}
	return &models.Binding{Key: key, Kind: models.MultiboundMap, Dependencies: deps}
}
