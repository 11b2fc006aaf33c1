// Package docs implements document upload and retrieval-augmented
// question answering. Uploaded files are chunked, embedded and indexed
// in an in-memory HNSW graph; the chunk store is a single JSON file
// reloaded and re-indexed on startup.
package docs

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/renameio"
	"github.com/jarvislab/jarvis/internal/ai"
)

const queryTopK = 5

// ErrNoText means nothing extractable was found in an uploaded file,
// either an unsupported format or an empty document.
var ErrNoText = errors.New("no text extracted from document")

// Chunk is one embedded slice of an uploaded document.
type Chunk struct {
	Key       string    `json:"key"` // "<doc_id>_<n>"
	DocID     string    `json:"doc_id"`
	Filename  string    `json:"filename"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// DocumentInfo identifies one uploaded document.
type DocumentInfo struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

// QueryResult is the answer to a question, with the filenames the
// retrieved context came from and a preview of that context.
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Context string   `json:"context,omitempty"`
}

// Service owns the chunk store and the vector index. The chat provider
// is optional; without one, queries fall back to raw excerpts.
type Service struct {
	uploadsDir string
	chunksPath string
	embedder   ai.Embedder
	provider   ai.Provider

	mu     sync.Mutex
	chunks []Chunk
	index  *chunkIndex
}

// NewService loads the chunk store from dataDir and rebuilds the vector
// index. A missing or corrupt store starts empty.
func NewService(dataDir string, embedder ai.Embedder, provider ai.Provider) (*Service, error) {
	uploadsDir := filepath.Join(dataDir, "uploads")
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	s := &Service{
		uploadsDir: uploadsDir,
		chunksPath: filepath.Join(dataDir, "chunks.json"),
		embedder:   embedder,
		provider:   provider,
		index:      newChunkIndex(),
	}

	data, err := os.ReadFile(s.chunksPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read chunk store: %w", err)
		}
	} else if err := json.Unmarshal(data, &s.chunks); err != nil {
		log.Printf("chunk store is corrupt, starting empty: %v", err)
		s.chunks = nil
	}
	s.index.Rebuild(s.chunks)
	if n := s.index.Count(); n > 0 {
		log.Printf("documents: indexed %d chunks from %d document(s)", n, len(s.List()))
	}

	return s, nil
}

func (s *Service) save() error {
	data, err := json.MarshalIndent(s.chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chunk store: %w", err)
	}
	if err := renameio.WriteFile(s.chunksPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write chunk store: %w", err)
	}
	return nil
}

// Upload extracts, chunks, embeds and indexes a document. The original
// file is kept under the uploads dir; if embedding or persisting fails,
// it is removed again so no orphan is left behind. Re-uploading the same
// content replaces its previous chunks.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	text, err := ExtractText(filename, data)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}

	sum := md5.Sum(data)
	docID := hex.EncodeToString(sum[:])[:12]

	uploadPath := filepath.Join(s.uploadsDir, docID+"_"+filepath.Base(filename))
	if err := renameio.WriteFile(uploadPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	cleanup := func() {
		if err := os.Remove(uploadPath); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to clean up upload %s: %v", uploadPath, err)
		}
	}

	parts := chunkText(text, chunkSize, chunkOverlap)
	vectors, err := s.embedder.Embed(ctx, parts)
	if err != nil {
		cleanup()
		return "", fmt.Errorf("failed to embed document: %w", err)
	}
	if len(vectors) != len(parts) {
		cleanup()
		return "", fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(parts))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chunks[:0:0]
	for _, c := range s.chunks {
		if c.DocID != docID {
			kept = append(kept, c)
		}
	}
	for i, part := range parts {
		kept = append(kept, Chunk{
			Key:       fmt.Sprintf("%s_%d", docID, i),
			DocID:     docID,
			Filename:  filepath.Base(filename),
			Text:      part,
			Embedding: vectors[i],
		})
	}

	previous := s.chunks
	s.chunks = kept
	if err := s.save(); err != nil {
		s.chunks = previous
		cleanup()
		return "", err
	}
	s.index.Rebuild(s.chunks)

	return docID, nil
}

// Query answers a question from the uploaded documents. An empty store
// and an empty retrieval both produce friendly answers rather than
// errors; only embedding faults surface as errors.
func (s *Service) Query(ctx context.Context, question string) (*QueryResult, error) {
	s.mu.Lock()
	byKey := make(map[string]Chunk, len(s.chunks))
	for _, c := range s.chunks {
		byKey[c.Key] = c
	}
	s.mu.Unlock()

	if len(byKey) == 0 {
		return &QueryResult{
			Answer:  "No documents uploaded yet. Upload documents first to ask questions.",
			Sources: []string{},
		}, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one question", len(vectors))
	}

	keys, err := s.index.Search(vectors[0], queryTopK)
	if err != nil {
		return nil, err
	}

	var texts []string
	var sources []string
	seen := map[string]bool{}
	for _, key := range keys {
		c, ok := byKey[key]
		if !ok {
			continue
		}
		texts = append(texts, c.Text)
		if !seen[c.Filename] {
			seen[c.Filename] = true
			sources = append(sources, c.Filename)
		}
	}
	if len(texts) == 0 {
		return &QueryResult{
			Answer:  "No relevant content found in documents.",
			Sources: []string{},
		}, nil
	}

	context := strings.Join(texts, "\n\n")
	return &QueryResult{
		Answer:  s.answer(ctx, question, context),
		Sources: sources,
		Context: truncate(context, 500),
	}, nil
}

// answer grounds the chat provider on the retrieved context. Without a
// provider, or when the provider fails, it degrades to a raw excerpt.
func (s *Service) answer(ctx context.Context, question, context string) string {
	if s.provider != nil {
		reply, err := s.provider.Chat(ctx,
			"Answer based only on the context. Say 'I don't know' if not found.",
			[]ai.Message{{
				Role:    ai.RoleUser,
				Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", context, question),
			}},
		)
		if err == nil {
			return reply
		}
		log.Printf("chat provider failed, falling back to excerpt: %v", err)
	}
	return "Relevant excerpt from documents:\n\n" + truncate(context, 400) + "..."
}

// List returns the distinct uploaded documents in chunk order.
func (s *Service) List() []DocumentInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	docs := []DocumentInfo{}
	for _, c := range s.chunks {
		if seen[c.DocID] {
			continue
		}
		seen[c.DocID] = true
		docs = append(docs, DocumentInfo{ID: c.DocID, Filename: c.Filename})
	}
	return docs
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
