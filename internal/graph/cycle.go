package graph

// EdgeFilter selects the edges a traversal follows
type EdgeFilter func(*Edge) bool

// InstanceDependencies follows only dependency edges requesting an eager
// instance. Deferred requests break cycles at run time, so cycles through
// them are legal.
func InstanceDependencies(e *Edge) bool {
	return e.Kind == DependencyEdge && !e.EntryPoint && !e.Request.Kind.IsDeferred()
}

type cycleDetector struct {
	network *Network
	follow  EdgeFilter
	index   int
	stack   []string
	onStack map[string]bool
	indices map[string]int
	lowlink map[string]int
	sccs    [][]string
}

// Cycles returns the strongly connected components of the network that form
// cycles over the followed edges: components of two or more nodes, or a
// single node with an edge to itself. Each component is listed once, in a
// deterministic order.
func (n *Network) Cycles(follow EdgeFilter) [][]string {
	d := &cycleDetector{
		network: n,
		follow:  follow,
		onStack: make(map[string]bool),
		indices: make(map[string]int),
		lowlink: make(map[string]int),
	}
	for _, id := range n.order {
		if _, visited := d.indices[id]; !visited {
			d.strongConnect(id)
		}
	}

	var cycles [][]string
	for _, scc := range d.sccs {
		if len(scc) > 1 {
			cycles = append(cycles, scc)
			continue
		}
		id := scc[0]
		for _, e := range n.out[id] {
			if follow(e) && e.To == id {
				cycles = append(cycles, scc)
				break
			}
		}
	}
	return cycles
}

func (d *cycleDetector) strongConnect(id string) {
	d.indices[id] = d.index
	d.lowlink[id] = d.index
	d.index++
	d.stack = append(d.stack, id)
	d.onStack[id] = true

	for _, e := range d.network.out[id] {
		if !d.follow(e) {
			continue
		}
		dep := e.To
		if _, exists := d.network.nodes[dep]; !exists {
			continue
		}
		if _, visited := d.indices[dep]; !visited {
			d.strongConnect(dep)
			d.lowlink[id] = min(d.lowlink[id], d.lowlink[dep])
		} else if d.onStack[dep] {
			d.lowlink[id] = min(d.lowlink[id], d.indices[dep])
		}
	}

	if d.lowlink[id] == d.indices[id] {
		var scc []string
		for {
			n := len(d.stack) - 1
			w := d.stack[n]
			d.stack = d.stack[:n]
			d.onStack[w] = false
			scc = append(scc, w)
			if w == id {
				break
			}
		}
		d.sccs = append(d.sccs, scc)
	}
}

// CyclePath returns a cycle through start over the followed edges, as the
// list of edges taken, or nil if start is on no cycle
func (n *Network) CyclePath(start string, follow EdgeFilter) []*Edge {
	visited := make(map[string]bool)
	var path []*Edge

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		for _, e := range n.out[id] {
			if !follow(e) {
				continue
			}
			path = append(path, e)
			if e.To == start {
				return true
			}
			if !visited[e.To] && dfs(e.To) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}

	if dfs(start) {
		return path
	}
	return nil
}
