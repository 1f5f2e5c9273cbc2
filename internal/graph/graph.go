// Package graph holds the directed page graph used by the PageRank engine.
// Vertices live in an arena addressed by their first-seen sequence number;
// identifier lookups are only needed at the API boundary.
package graph

// Vertex is one page. Out holds the sequence numbers of edge targets in input
// order, duplicates and self-loops included.
type Vertex struct {
	ID   string
	Seq  int
	Out  []int
	Rank float64
}

// OutDegree counts outgoing edges, repeats included.
func (v *Vertex) OutDegree() int {
	return len(v.Out)
}

// Graph is built once by Parse or AddEdge calls and is read-only afterwards,
// apart from SetRanks.
type Graph struct {
	vertices []Vertex
	index    map[string]int
	numEdges int
	declared int
}

func New() *Graph {
	return &Graph{
		index: make(map[string]int),
	}
}

// Intern returns the sequence number for id, assigning the next one on first
// sight.
func (g *Graph) Intern(id string) int {
	if seq, ok := g.index[id]; ok {
		return seq
	}
	seq := len(g.vertices)
	g.vertices = append(g.vertices, Vertex{ID: id, Seq: seq})
	g.index[id] = seq
	return seq
}

// AddEdge records src -> dst. The source is interned before the destination.
func (g *Graph) AddEdge(src, dst string) {
	s := g.Intern(src)
	d := g.Intern(dst)
	g.vertices[s].Out = append(g.vertices[s].Out, d)
	g.numEdges++
}

func (g *Graph) Lookup(id string) (int, bool) {
	seq, ok := g.index[id]
	return seq, ok
}

// Len is the number of distinct vertices.
func (g *Graph) Len() int {
	return len(g.vertices)
}

func (g *Graph) NumEdges() int {
	return g.numEdges
}

// Declared is the advisory vertex count from the edge-list header.
func (g *Graph) Declared() int {
	return g.declared
}

// At returns the vertex with the given sequence number. It panics when seq is
// out of range, like a slice index.
func (g *Graph) At(seq int) *Vertex {
	return &g.vertices[seq]
}

func (g *Graph) ID(seq int) string {
	return g.vertices[seq].ID
}

// Targets lists the identifiers of v's edge targets in input order.
func (g *Graph) Targets(seq int) []string {
	out := g.vertices[seq].Out
	ids := make([]string, len(out))
	for i, t := range out {
		ids[i] = g.vertices[t].ID
	}
	return ids
}

// SetRanks writes ranks into the vertices. ranks is indexed by sequence
// number and must have Len() entries.
func (g *Graph) SetRanks(ranks []float64) {
	for i := range g.vertices {
		g.vertices[i].Rank = ranks[i]
	}
}
