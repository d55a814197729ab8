package dbbuild

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"genezip/internal/taxonomy"
)

// similarityGraph is an undirected graph of taxonomies, with an edge
// between two taxonomies whenever a pair of their representative genomes'
// ANI met the clustering threshold. It is the same nodeFor/node/edge
// shape cmd/cmpint's discordance graph uses, repurposed here so
// genus-level ANI results feed gonum's connected-components finder
// instead of a DOT renderer.
type similarityGraph struct {
	*simple.UndirectedGraph
	idFor map[taxonomy.Taxonomy]int64
}

func newSimilarityGraph() *similarityGraph {
	return &similarityGraph{
		UndirectedGraph: simple.NewUndirectedGraph(),
		idFor:           make(map[taxonomy.Taxonomy]int64),
	}
}

type taxonomyNode struct {
	id  int64
	tax taxonomy.Taxonomy
}

func (n taxonomyNode) ID() int64 { return n.id }

func (g *similarityGraph) nodeFor(tax taxonomy.Taxonomy) graph.Node {
	if id, ok := g.idFor[tax]; ok {
		return g.Node(id)
	}
	id := g.NewNode().ID()
	g.idFor[tax] = id
	n := taxonomyNode{id: id, tax: tax}
	g.AddNode(n)
	return n
}

// addSimilar records that a and b met the clustering threshold.
func (g *similarityGraph) addSimilar(a, b taxonomy.Taxonomy) {
	g.SetEdge(g.NewEdge(g.nodeFor(a), g.nodeFor(b)))
}

// clusters partitions every taxonomy in taxa into connected components of
// the similarity graph: pairs is the full set of pairwise ANI results
// between representative genome paths, and pathToTaxonomy translates
// those paths back to the taxonomy each genome was sampled for. Taxonomies
// never connected by a qualifying pair form their own singleton cluster.
func clusters(taxa []taxonomy.Taxonomy, pairs []ANIPair, pathToTaxonomy map[string]taxonomy.Taxonomy, threshold float64) ([][]taxonomy.Taxonomy, error) {
	g := newSimilarityGraph()
	for _, tax := range taxa {
		g.nodeFor(tax)
	}
	for _, p := range pairs {
		if p.ANI < threshold {
			continue
		}
		a, ok := pathToTaxonomy[p.A]
		if !ok {
			return nil, fmt.Errorf("dbbuild: ani result references unknown path %q", p.A)
		}
		b, ok := pathToTaxonomy[p.B]
		if !ok {
			return nil, fmt.Errorf("dbbuild: ani result references unknown path %q", p.B)
		}
		g.addSimilar(a, b)
	}

	components := topo.ConnectedComponents(g)
	out := make([][]taxonomy.Taxonomy, 0, len(components))
	for _, comp := range components {
		var members []taxonomy.Taxonomy
		for _, n := range comp {
			tn, ok := n.(taxonomyNode)
			if !ok {
				return nil, fmt.Errorf("dbbuild: unexpected graph node type %T", n)
			}
			members = append(members, tn.tax)
		}
		out = append(out, members)
	}
	return out, nil
}

// ANIPair is one pairwise ANI comparison result between two genome paths.
type ANIPair struct {
	A, B string
	ANI  float64
}
