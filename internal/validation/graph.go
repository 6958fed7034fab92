package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toyz/bindgraph/internal/bindings"
	"github.com/toyz/bindgraph/internal/graph"
	"github.com/toyz/bindgraph/internal/models"
)

// graphCheck is one pass over a resolved binding graph
type graphCheck func(v *Validator, g *graph.BindingGraph, r *Report)

var graphChecks = []graphCheck{
	checkDependencyCycles,
	checkDuplicateBindings,
	checkMissingBindings,
	checkAssistedRequests,
	checkDuplicateMapKeys,
	checkIncompatibleScopes,
}

// ValidateGraph runs the graph-level checks. Missing bindings are not
// reported for full binding graphs, which have no entry points.
func (v *Validator) ValidateGraph(g *graph.BindingGraph) *Report {
	r := NewReport(g.RootComponent().Name)
	for _, check := range graphChecks {
		check(v, g, r)
	}
	return r
}

// checkDependencyCycles reports each cycle of instance requests once,
// starting from the cycle's earliest node
func checkDependencyCycles(v *Validator, g *graph.BindingGraph, r *Report) {
	network := g.Network()
	position := make(map[string]int)
	for i, n := range network.Nodes() {
		position[n.ID] = i
	}
	for _, scc := range network.Cycles(graph.InstanceDependencies) {
		start := scc[0]
		for _, id := range scc[1:] {
			if position[id] < position[start] {
				start = id
			}
		}
		path := network.CyclePath(start, graph.InstanceDependencies)
		if len(path) == 0 {
			continue
		}
		// synthesized bindings have no element; fall back to the first
		// request site on the cycle
		first, _ := network.Node(start)
		anchor, anchored := first.Path.Current(), false
		if b := first.Binding(); b != nil && b.Element != "" {
			anchor, anchored = b.Element, true
		}
		lines := make([]string, 0, len(path))
		for _, e := range path {
			to, _ := network.Node(e.To)
			if e.Request.IsSynthetic() {
				from, _ := network.Node(e.From)
				lines = append(lines, fmt.Sprintf("    %s is contributed to %s", to, from.Key))
				continue
			}
			if !anchored {
				anchor, anchored = e.Request.Element, true
			}
			lines = append(lines, fmt.Sprintf("    %s is injected at\n        %s", to, e.Request.Element))
		}
		r.Error(anchor, "found a dependency cycle:\n%s", strings.Join(lines, "\n"))
	}
}

func checkDuplicateBindings(v *Validator, g *graph.BindingGraph, r *Report) {
	for _, n := range g.BindingNodes() {
		if len(n.Bindings) < 2 {
			continue
		}
		lines := make([]string, len(n.Bindings))
		for i, b := range n.Bindings {
			lines[i] = "    " + b.Describe()
		}
		r.Error(n.Path.Current(), "%s is bound multiple times:\n%s", n.Key, strings.Join(lines, "\n"))
	}
}

func checkMissingBindings(v *Validator, g *graph.BindingGraph, r *Report) {
	if g.IsFullBindingGraph() {
		return
	}
	for _, n := range g.MissingNodes() {
		if n.Deferred {
			continue
		}
		var requests []string
		for _, e := range g.Network().InEdges(n.ID) {
			if e.Request.Element != "" && !contains(requests, e.Request.Element) {
				requests = append(requests, e.Request.Element)
			}
		}
		what := "an @Inject constructor or an @Provides-annotated method"
		if n.Key.IsQualified() {
			what = "an @Provides-annotated method"
		}
		r.Error(n.Path.Current(), "%s cannot be provided without %s.\n    %s is requested at\n        %s",
			n.Key, what, n.Key, strings.Join(requests, "\n        "))
	}
}

// checkAssistedRequests reports requests for assisted injection types made
// anywhere but from their assisted factory
func checkAssistedRequests(v *Validator, g *graph.BindingGraph, r *Report) {
	network := g.Network()
	for _, e := range network.Edges() {
		if e.Kind != graph.DependencyEdge || e.Request.IsSynthetic() {
			continue
		}
		to, ok := network.Node(e.To)
		if !ok || to.Binding() == nil || to.Binding().Kind != models.AssistedInjection {
			continue
		}
		r.Error(e.Request.Element, "%s cannot be requested directly; inject its assisted factory instead", to.Key)
	}
}

// checkDuplicateMapKeys reports each map key bound more than once. Map<K, V>,
// Map<K, Provider<V>> and the copies re-owned by subcomponents share their
// contributions, so a duplicate is reported once per collection key.
func checkDuplicateMapKeys(v *Validator, g *graph.BindingGraph, r *Report) {
	reported := make(map[string]bool)
	for _, n := range g.BindingNodes() {
		for _, b := range n.Bindings {
			if b.Kind != models.MultiboundMap {
				continue
			}
			collection, _ := bindings.CollectionKey(n.Key)
			byKey := make(map[string][]*models.Binding)
			var order []string
			for _, dep := range b.Dependencies {
				entry, ok := g.Lookup(n.Path, dep.Key)
				if !ok || entry.Binding() == nil || entry.Binding().MapKey == nil {
					continue
				}
				mk := entry.Binding().MapKey.String()
				if _, seen := byKey[mk]; !seen {
					order = append(order, mk)
				}
				byKey[mk] = append(byKey[mk], entry.Binding())
			}
			for _, mk := range order {
				entries := byKey[mk]
				if len(entries) < 2 {
					continue
				}
				elements := make([]string, len(entries))
				lines := make([]string, len(entries))
				for i, e := range entries {
					elements[i] = e.Element
					lines[i] = "    " + e.Describe()
				}
				sort.Strings(elements)
				id := collection.String() + "|" + mk + "|" + strings.Join(elements, ",")
				if reported[id] {
					continue
				}
				reported[id] = true
				r.Error(n.Path.Current(), "the same map key is bound more than once for %s: %s\n%s", collection, mk, strings.Join(lines, "\n"))
			}
		}
	}
}

// checkIncompatibleScopes reports scoped bindings owned by a component that
// does not carry their scope, once per component
func checkIncompatibleScopes(v *Validator, g *graph.BindingGraph, r *Report) {
	byComponent := make(map[string][]string)
	var order []graph.ComponentPath
	for _, n := range g.BindingNodes() {
		b := n.Binding()
		if len(n.Bindings) != 1 || !b.IsScoped() || b.Scope.IsReusable() {
			continue
		}
		switch b.Kind {
		case models.Injection, models.Provision, models.Delegate:
		default:
			continue
		}
		d, ok := g.Component(n.Path)
		if !ok || d.Synthetic || d.HasScope(b.Scope) {
			continue
		}
		id := n.Path.String()
		if _, seen := byComponent[id]; !seen {
			order = append(order, n.Path)
		}
		byComponent[id] = append(byComponent[id], fmt.Sprintf("    %s %s", b.Scope, b.Describe()))
	}
	for _, path := range order {
		d, _ := g.Component(path)
		scopes := "(unscoped)"
		if len(d.Scopes) > 0 {
			scopes = "scoped with " + strings.Join(scopeStrings(d.Scopes), " ")
		}
		r.Error(d.Name, "%s %s may not reference bindings with different scopes:\n%s", d.Name, scopes, strings.Join(byComponent[path.String()], "\n"))
	}
}
