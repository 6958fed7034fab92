package graph

import (
	"github.com/toyz/bindgraph/internal/bindings"
	"github.com/toyz/bindgraph/internal/descriptors"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/source"
)

// resolution is what a key resolves to from one component
type resolution struct {
	key      models.Key
	owner    ComponentPath
	bindings []*models.Binding
	deferred bool
}

func (r *resolution) missing() bool {
	return len(r.bindings) == 0
}

// Factory builds binding graphs from component descriptors
type Factory struct {
	bindings *bindings.Factory
}

// NewFactory creates a binding graph factory
func NewFactory(b *bindings.Factory) *Factory {
	return &Factory{bindings: b}
}

// Create resolves the component tree rooted at root. In full binding graph
// mode every binding declared in the tree is resolved, not only those
// reachable from entry points.
func (f *Factory) Create(root *descriptors.ComponentDescriptor, fullBindingGraph bool) models.Result[*BindingGraph] {
	b := &builder{
		factory:   f,
		resolvers: make(map[string]*resolver),
		graph: &BindingGraph{
			root:             root,
			network:          NewNetwork(),
			fullBindingGraph: fullBindingGraph,
			components:       make(map[string]*descriptors.ComponentDescriptor),
			resolutions:      make(map[string]map[models.Key]string),
		},
		synthesizedSeen: make(map[*models.Binding]bool),
	}
	b.newResolver(nil, root)
	if !b.pending.Empty() {
		return models.Defer[*BindingGraph](b.pending.List()...)
	}
	b.build()
	if !b.pending.Empty() {
		return models.Defer[*BindingGraph](b.pending.List()...)
	}
	return models.Ok(b.graph)
}

type builder struct {
	factory         *Factory
	graph           *BindingGraph
	resolvers       map[string]*resolver
	order           []*resolver
	pending         models.PendingSet
	synthesizedSeen map[*models.Binding]bool
}

// resolver resolves keys for one component, delegating to its parent
type resolver struct {
	b      *builder
	parent *resolver
	desc   *descriptors.ComponentDescriptor
	path   ComponentPath

	explicit          map[models.Key][]*models.Binding
	explicitOrder     []models.Key
	contributions     map[models.Key][]*models.Binding
	contributionIndex map[models.Key]*models.Binding
	declarations      map[models.Key][]bindings.MultibindingDeclaration
	collectionOrder   []models.Key

	resolved   map[models.Key]*resolution
	inProgress map[models.Key]bool
}

func (b *builder) newResolver(parent *resolver, desc *descriptors.ComponentDescriptor) *resolver {
	path := ComponentPath{desc.Name}
	if parent != nil {
		path = parent.path.Child(desc.Name)
	}
	r := &resolver{
		b:                 b,
		parent:            parent,
		desc:              desc,
		path:              path,
		explicit:          make(map[models.Key][]*models.Binding),
		contributions:     make(map[models.Key][]*models.Binding),
		contributionIndex: make(map[models.Key]*models.Binding),
		declarations:      make(map[models.Key][]bindings.MultibindingDeclaration),
		resolved:          make(map[models.Key]*resolution),
		inProgress:        make(map[models.Key]bool),
	}
	b.resolvers[path.String()] = r
	b.order = append(b.order, r)
	b.graph.components[path.String()] = desc
	b.graph.paths = append(b.graph.paths, path)
	r.collectBindings()

	for _, child := range desc.Children {
		b.newResolver(r, child)
	}
	return r
}

// collectBindings registers every binding declared for the component:
// its own component binding, module bindings, bound instances, component
// dependencies and module-declared subcomponent creators.
func (r *resolver) collectBindings() {
	f := r.b.factory.bindings
	src := f.Source()

	if !r.desc.Synthetic {
		r.addExplicit(f.Component(r.desc.Component))
	}

	for _, md := range r.desc.Modules {
		if r.installedInAncestor(md.Name) {
			continue
		}
		for _, binding := range md.Bindings {
			if binding.IsContribution() {
				ck := binding.Key.WithoutContribution()
				r.noteCollection(ck)
				r.contributions[ck] = append(r.contributions[ck], binding)
				r.contributionIndex[binding.Key] = binding
				continue
			}
			r.addExplicit(binding)
		}
		for _, decl := range md.Multibindings {
			r.noteCollection(decl.Key)
			r.declarations[decl.Key] = append(r.declarations[decl.Key], decl)
		}
		for _, decl := range md.Subcomponents {
			child, st := src.Component(decl.Subcomponent)
			if st == source.Pending {
				r.b.pending.Add(decl.Subcomponent)
				continue
			}
			if st == source.Found && child.Creator != nil {
				r.addExplicit(f.SubcomponentCreator(decl, child.Creator.Type()))
			}
		}
	}

	if c := r.desc.Creator; c != nil {
		for _, s := range c.Setters {
			if s.Requirement.Kind == descriptors.BoundInstanceRequirement {
				r.addExplicit(f.BoundInstance(s.Requirement.Key, s.Element))
			}
		}
	}

	for _, dep := range r.desc.Dependencies {
		r.addExplicit(f.ComponentDependency(dep))
		provisions := f.ComponentProvisions(dep)
		if provisions.IsDeferred() {
			r.b.pending.Add(provisions.Pending...)
			continue
		}
		for _, p := range provisions.Value {
			r.addExplicit(p)
		}
	}
}

func (r *resolver) addExplicit(b *models.Binding) {
	if _, seen := r.explicit[b.Key]; !seen {
		r.explicitOrder = append(r.explicitOrder, b.Key)
	}
	r.explicit[b.Key] = append(r.explicit[b.Key], b)
}

func (r *resolver) noteCollection(k models.Key) {
	if _, seen := r.contributions[k]; seen {
		return
	}
	if _, seen := r.declarations[k]; seen {
		return
	}
	r.collectionOrder = append(r.collectionOrder, k)
}

func (r *resolver) installedInAncestor(module string) bool {
	for a := r.parent; a != nil; a = a.parent {
		if a.desc.HasModule(module) {
			return true
		}
	}
	return false
}

// lineage returns the resolvers from the root down to r
func (r *resolver) lineage() []*resolver {
	var out []*resolver
	for c := r; c != nil; c = c.parent {
		out = append([]*resolver{c}, out...)
	}
	return out
}

// resolve returns what key resolves to from this component. It returns nil
// only while the same key is already being resolved here.
func (r *resolver) resolve(key models.Key) *resolution {
	if res, ok := r.resolved[key]; ok {
		return res
	}
	if r.inProgress[key] {
		return nil
	}
	r.inProgress[key] = true
	res := r.compute(key)
	delete(r.inProgress, key)
	r.resolved[key] = res
	return res
}

func (r *resolver) compute(key models.Key) *resolution {
	if key.Contribution != "" {
		if b, ok := r.contributionIndex[key]; ok {
			return r.own(key, b)
		}
		if r.parent != nil {
			return r.inherit(key)
		}
		return r.unsatisfied(key, false)
	}

	ck, _ := bindings.CollectionKey(key)
	local := r.explicit[key]
	multibound := r.isCollection(ck) && (len(r.contributions[ck]) > 0 || len(r.declarations[ck]) > 0)

	if len(local) > 0 || multibound {
		// Explicit bindings of every ancestor stay visible, so a key bound
		// both here and above surfaces as a duplicate.
		var all []*models.Binding
		for _, a := range r.lineage() {
			if a == r {
				break
			}
			all = append(all, a.explicit[key]...)
		}
		all = append(all, local...)
		if multibound || (r.parent != nil && r.visibleMultibinding(ck)) {
			all = append(all, r.synthesizeMultibinding(key, ck))
		}
		return r.own(key, all...)
	}

	if r.parent != nil {
		return r.inherit(key)
	}

	implicit := r.b.factory.bindings.Injection(key)
	switch implicit.Status {
	case models.Deferred:
		r.b.pending.Add(implicit.Pending...)
		return r.unsatisfied(key, true)
	case models.Resolved:
		if implicit.Value != nil {
			return r.own(key, implicit.Value)
		}
	}
	return r.unsatisfied(key, false)
}

// inherit resolves key in the parent and takes ownership when the binding
// must be re-resolved here: a synthesized binding whose scope this component
// carries, or a binding with a dependency resolved below its owner.
func (r *resolver) inherit(key models.Key) *resolution {
	parent := r.parent.resolve(key)
	if parent == nil {
		return r.unsatisfied(key, false)
	}
	if parent.missing() || !r.mustOwn(parent) {
		return parent
	}
	return r.own(key, parent.bindings...)
}

func (r *resolver) mustOwn(parent *resolution) bool {
	for _, b := range parent.bindings {
		if b.IsScoped() && !b.Scope.IsReusable() {
			if b.Kind.IsSynthesized() && r.desc.HasScope(b.Scope) {
				return true
			}
			continue
		}
		for _, dep := range b.Dependencies {
			res := r.resolve(dep.Key)
			if res != nil && !res.missing() && res.owner.Depth() > parent.owner.Depth() {
				return true
			}
		}
	}
	return false
}

func (r *resolver) own(key models.Key, bs ...*models.Binding) *resolution {
	return &resolution{key: key, owner: r.path, bindings: bs}
}

// unsatisfied records a key with no binding. Missing keys are owned by the
// root so each one surfaces once however many components request it.
func (r *resolver) unsatisfied(key models.Key, deferred bool) *resolution {
	root := r.lineage()[0]
	return &resolution{key: key, owner: root.path, deferred: deferred}
}

func (r *resolver) isCollection(ck models.Key) bool {
	t := ck.TypeRef()
	return bindings.IsSetType(t) || bindings.IsMapType(t)
}

func (r *resolver) visibleMultibinding(ck models.Key) bool {
	if !r.isCollection(ck) {
		return false
	}
	for a := r; a != nil; a = a.parent {
		if len(a.contributions[ck]) > 0 || len(a.declarations[ck]) > 0 {
			return true
		}
	}
	return false
}

// synthesizeMultibinding aggregates every contribution visible from this
// component, ancestors first, each in declaration order
func (r *resolver) synthesizeMultibinding(key, ck models.Key) *models.Binding {
	var contributions []*models.Binding
	for _, a := range r.lineage() {
		contributions = append(contributions, a.contributions[ck]...)
	}
	f := r.b.factory.bindings
	if bindings.IsMapType(ck.TypeRef()) {
		return f.MultiboundMap(key, contributions)
	}
	return f.MultiboundSet(key, contributions)
}

// roots returns the keys resolved as roots of the network in full binding
// graph mode: every declared binding and every declared collection
func (r *resolver) roots() []models.Key {
	keys := append([]models.Key(nil), r.explicitOrder...)
	keys = append(keys, r.collectionOrder...)
	for _, ck := range r.collectionOrder {
		for _, c := range r.contributions[ck] {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// build walks the resolvers from their entry points, adding every reachable
// resolution to the network
func (b *builder) build() {
	g := b.graph
	var queue []*resolution
	enqueue := func(from *resolver, res *resolution) string {
		id := b.addNode(res)
		if _, ok := g.resolutions[from.path.String()]; !ok {
			g.resolutions[from.path.String()] = make(map[models.Key]string)
		}
		g.resolutions[from.path.String()][res.key] = id
		queue = append(queue, res)
		return id
	}

	for _, r := range b.order {
		compID := componentNodeID(r.path)
		g.network.AddNode(&Node{ID: compID, Kind: ComponentNode, Path: r.path, Component: r.desc})
		if r.parent != nil {
			g.network.AddEdge(&Edge{From: componentNodeID(r.parent.path), To: compID, Kind: ChildFactoryEdge})
		}
		for _, ep := range r.desc.EntryPoints {
			if ep.Kind != descriptors.ProvisionMethod {
				continue
			}
			res := r.resolve(ep.Request.Key)
			if res == nil {
				continue
			}
			to := enqueue(r, res)
			g.network.AddEdge(&Edge{From: compID, To: to, Kind: DependencyEdge, Request: ep.Request, EntryPoint: true})
		}
		if g.fullBindingGraph {
			for _, key := range r.roots() {
				if res := r.resolve(key); res != nil {
					enqueue(r, res)
				}
			}
		}
	}

	visited := make(map[string]bool)
	for len(queue) > 0 {
		res := queue[0]
		queue = queue[1:]
		id := NodeID(res.owner, res.key)
		if visited[id] {
			continue
		}
		visited[id] = true

		owner := b.resolvers[res.owner.String()]
		for _, binding := range res.bindings {
			b.noteSynthesized(binding)
			for _, dep := range binding.Dependencies {
				target := owner.resolve(dep.Key)
				if target == nil {
					continue
				}
				to := enqueue(owner, target)
				g.network.AddEdge(&Edge{From: id, To: to, Kind: DependencyEdge, Request: dep, Binding: binding})
			}
		}
	}
}

func (b *builder) addNode(res *resolution) string {
	id := NodeID(res.owner, res.key)
	node := &Node{ID: id, Kind: BindingNode, Path: res.owner, Key: res.key, Bindings: res.bindings}
	if res.missing() {
		node.Kind = MissingNode
		node.Deferred = res.deferred
	}
	b.graph.network.AddNode(node)
	return id
}

func (b *builder) noteSynthesized(binding *models.Binding) {
	switch binding.Kind {
	case models.Injection, models.AssistedInjection, models.AssistedFactory:
		if !b.synthesizedSeen[binding] {
			b.synthesizedSeen[binding] = true
			b.graph.synthesized = append(b.graph.synthesized, binding)
		}
	}
}
