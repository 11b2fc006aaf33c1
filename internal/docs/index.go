package docs

import (
	"errors"
	"sync"

	"github.com/coder/hnsw"
)

const indexMaxNeighbors = 16

// chunkIndex wraps an HNSW graph for chunk vector search, keyed by the
// chunk key ("<doc_id>_<n>").
type chunkIndex struct {
	graph *hnsw.Graph[string]
	mu    sync.RWMutex
}

func newChunkIndex() *chunkIndex {
	return &chunkIndex{}
}

// Rebuild replaces the graph with one built from the given chunks.
// Chunks without embeddings are skipped.
func (c *chunkIndex) Rebuild(chunks []Chunk) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(chunks) == 0 {
		c.graph = nil
		return
	}

	g := hnsw.NewGraph[string]()
	g.M = indexMaxNeighbors
	g.Ml = 1.0 / float64(indexMaxNeighbors)
	g.Distance = hnsw.CosineDistance

	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(chunks[i].Key, chunks[i].Embedding))
	}
	c.graph = g
}

// Search returns the keys of the k nearest chunks to the query vector.
func (c *chunkIndex) Search(query []float32, k int) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.graph == nil {
		return nil, errors.New("index not initialized")
	}

	neighbors := c.graph.Search(query, k)
	keys := make([]string, len(neighbors))
	for i, n := range neighbors {
		keys[i] = n.Key
	}
	return keys, nil
}

func (c *chunkIndex) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.graph == nil {
		return 0
	}
	return c.graph.Len()
}
