package facematch

import (
	"fmt"
	"sort"

	"github.com/coder/hnsw"
	"github.com/google/uuid"
)

const (
	IndexExact = "exact"
	IndexHNSW  = "hnsw"
)

// Entry is one registered descriptor.
type Entry struct {
	UserID     uuid.UUID
	Descriptor []float32
}

// Hit is a user within the threshold of a query, with its exact distance.
type Hit struct {
	UserID   uuid.UUID
	Distance float64
}

// Index answers "which users are strictly closer than t to this face".
// Implementations are immutable after construction and safe for concurrent use.
type Index interface {
	Within(query []float32, threshold float64) []Hit
	Len() int
}

// NewIndex builds the index named by kind over entries.
func NewIndex(kind string, entries []Entry, neighbors int) (Index, error) {
	switch kind {
	case "", IndexExact:
		return NewExactIndex(entries), nil
	case IndexHNSW:
		return NewHNSWIndex(entries, neighbors), nil
	default:
		return nil, fmt.Errorf("unknown match index %q", kind)
	}
}

// ExactIndex compares the query with every entry.
type ExactIndex struct {
	entries []Entry
}

func NewExactIndex(entries []Entry) *ExactIndex {
	return &ExactIndex{entries: entries}
}

func (x *ExactIndex) Len() int { return len(x.entries) }

func (x *ExactIndex) Within(query []float32, threshold float64) []Hit {
	var hits []Hit
	for _, e := range x.entries {
		if d := CosineDistance(query, e.Descriptor); d < threshold {
			hits = append(hits, Hit{UserID: e.UserID, Distance: d})
		}
	}
	sortHits(hits)
	return hits
}

// HNSWIndex orders candidates with a coder/hnsw graph, then sweeps the
// entries the graph did not return so that no user within the threshold is
// lost. Results always equal ExactIndex.
type HNSWIndex struct {
	graph   *hnsw.Graph[int]
	entries []Entry
	k       int
}

func NewHNSWIndex(entries []Entry, neighbors int) *HNSWIndex {
	if neighbors <= 0 {
		neighbors = 16
	}
	idx := &HNSWIndex{k: neighbors * 2}
	if len(entries) == 0 {
		return idx
	}

	g := hnsw.NewGraph[int]()
	g.M = neighbors
	g.Distance = hnsw.CosineDistance

	dim := len(entries[0].Descriptor)
	for _, e := range entries {
		// the graph requires one dimension
		if len(e.Descriptor) == 0 || len(e.Descriptor) != dim {
			continue
		}
		g.Add(hnsw.MakeNode(len(idx.entries), e.Descriptor))
		idx.entries = append(idx.entries, e)
	}
	idx.graph = g
	return idx
}

func (x *HNSWIndex) Len() int { return len(x.entries) }

func (x *HNSWIndex) Within(query []float32, threshold float64) []Hit {
	if x.graph == nil || len(x.entries) == 0 || len(query) != len(x.entries[0].Descriptor) {
		return nil
	}
	k := x.k
	if k > len(x.entries) {
		k = len(x.entries)
	}

	scored := make([]bool, len(x.entries))
	var hits []Hit
	score := func(i int) {
		if scored[i] {
			return
		}
		scored[i] = true
		if d := CosineDistance(query, x.entries[i].Descriptor); d < threshold {
			hits = append(hits, Hit{UserID: x.entries[i].UserID, Distance: d})
		}
	}
	for _, n := range x.graph.Search(query, k) {
		score(n.Key)
	}
	// graph recall is approximate
	for i := range x.entries {
		score(i)
	}
	sortHits(hits)
	return hits
}

func sortHits(hits []Hit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].UserID.String() < hits[j].UserID.String()
	})
}
