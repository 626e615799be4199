package graph

import (
	"sort"
	"strings"

	"github.com/archlint/archlint/internal/domain"
)

// ExternalSink is the synthetic node every unresolved reference points at.
const ExternalSink = "<external>"

// Edge is one directed dependency from a module to another module or to the
// external sink. Target carries the framework/standard/unknown class for
// external edges and is empty for internal ones.
type Edge struct {
	From      string
	To        string
	Kind      domain.RefKind
	Symbol    string
	Qualifier string
	Member    string
	Call      string
	Line      int
	Target    domain.MarkerClass
}

// External reports whether the edge points at the external sink.
func (e Edge) External() bool { return e.To == ExternalSink }

// Graph is the dependency graph over a project model. It records structure
// only and never filters; rules decide what matters.
type Graph struct {
	model *domain.ProjectModel
	out   map[string][]Edge
	in    map[string][]Edge
	edges int
}

// Build resolves every module reference against the model and assembles the
// graph. Modules are visited in sorted path order and references in
// declaration order, so the edge set is identical across runs.
func Build(model *domain.ProjectModel) *Graph {
	g := &Graph{
		model: model,
		out:   make(map[string][]Edge, model.Len()),
		in:    make(map[string][]Edge),
	}

	for _, path := range model.Paths() {
		m := model.Module(path)
		for _, ref := range m.Refs {
			e := Edge{
				From:   path,
				Kind:   ref.Kind,
				Symbol: ref.Symbol,
				Member: ref.Member,
				Call:   ref.Call,
				Line:   ref.Line,
			}
			target, qualifier, ok := model.Resolve(m, ref.Symbol)
			e.Qualifier = qualifier
			if ok {
				if target == path {
					continue
				}
				e.To = target
			} else {
				e.To = ExternalSink
				e.Target = domain.ClassifyExternalSymbol(ref.Symbol, qualifier)
			}
			g.out[path] = append(g.out[path], e)
			g.in[e.To] = append(g.in[e.To], e)
			g.edges++
		}
	}
	return g
}

// Model returns the project model the graph was built over.
func (g *Graph) Model() *domain.ProjectModel { return g.model }

// Edges returns the outgoing edges of a module in declaration order.
func (g *Graph) Edges(from string) []Edge { return g.out[from] }

// InEdges returns the incoming edges of a module or the external sink.
func (g *Graph) InEdges(to string) []Edge { return g.in[to] }

// EdgeCount returns the total number of directed edges.
func (g *Graph) EdgeCount() int { return g.edges }

// AllEdges returns every edge, sources in sorted path order.
func (g *Graph) AllEdges() []Edge {
	out := make([]Edge, 0, g.edges)
	for _, path := range g.model.Paths() {
		out = append(out, g.out[path]...)
	}
	return out
}

// InternalEdges returns every module-to-module edge, external sink excluded.
func (g *Graph) InternalEdges() []Edge {
	var out []Edge
	for _, e := range g.AllEdges() {
		if !e.External() {
			out = append(out, e)
		}
	}
	return out
}

// Cycles finds all dependency cycles between modules using DFS with
// grey/black coloring. Each cycle is rotated to its smallest element and
// deduplicated, so the output is deterministic.
func (g *Graph) Cycles() [][]string {
	if g == nil || g.model.Len() == 0 {
		return nil
	}

	const (
		white = 0
		grey  = 1
		black = 2
	)

	adjacency := make(map[string][]string, g.model.Len())
	for _, path := range g.model.Paths() {
		seen := make(map[string]bool)
		for _, e := range g.out[path] {
			if e.External() || seen[e.To] {
				continue
			}
			seen[e.To] = true
			adjacency[path] = append(adjacency[path], e.To)
		}
		sort.Strings(adjacency[path])
	}

	color := make(map[string]int)
	parent := make(map[string]string)
	var cycles [][]string
	recorded := make(map[string]bool)

	var dfs func(u string)
	dfs = func(u string) {
		color[u] = grey
		for _, v := range adjacency[u] {
			if color[v] == grey {
				cycle := []string{v}
				cur := u
				for cur != v {
					cycle = append(cycle, cur)
					cur = parent[cur]
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				normalized := normalizeCycle(cycle)
				key := strings.Join(normalized, "→")
				if !recorded[key] {
					recorded[key] = true
					cycles = append(cycles, normalized)
				}
			} else if color[v] == white {
				parent[v] = u
				dfs(v)
			}
		}
		color[u] = black
	}

	for _, path := range g.model.Paths() {
		if color[path] == white {
			dfs(path)
		}
	}
	return cycles
}

// normalizeCycle rotates a cycle so the lexicographically smallest element
// is first.
func normalizeCycle(cycle []string) []string {
	if len(cycle) == 0 {
		return cycle
	}
	minIdx := 0
	for i, s := range cycle {
		if s < cycle[minIdx] {
			minIdx = i
		}
	}
	result := make([]string, len(cycle))
	for i := range cycle {
		result[i] = cycle[(minIdx+i)%len(cycle)]
	}
	return result
}

// LayerEdge summarizes the module edges between two layers.
type LayerEdge struct {
	From  domain.Layer
	To    domain.Layer
	Count int
}

// LayerEdges aggregates internal edges by the layer pair they connect,
// sorted by source then target layer.
func (g *Graph) LayerEdges() []LayerEdge {
	counts := make(map[[2]domain.Layer]int)
	for _, e := range g.InternalEdges() {
		from := g.model.Module(e.From).Layer
		to := g.model.Module(e.To).Layer
		counts[[2]domain.Layer{from, to}]++
	}
	out := make([]LayerEdge, 0, len(counts))
	for k, c := range counts {
		out = append(out, LayerEdge{From: k[0], To: k[1], Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}
