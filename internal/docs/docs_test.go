package docs

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/jarvislab/jarvis/internal/ai"
)

// keywordEmbedder produces deterministic vectors: one dimension per
// known keyword, so retrieval is exact without a real model.
type keywordEmbedder struct {
	keywords []string
	err      error
}

func (e *keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(e.keywords)+1)
		vec[len(e.keywords)] = 0.01
		for j, kw := range e.keywords {
			if strings.Contains(strings.ToLower(text), kw) {
				vec[j] = 1
			}
		}
		vectors[i] = vec
	}
	return vectors, nil
}

type fakeProvider struct {
	reply string
	err   error
	last  []ai.Message
}

func (p *fakeProvider) Name() string        { return "fake" }
func (p *fakeProvider) GetUsage() *ai.Usage { return &ai.Usage{} }
func (p *fakeProvider) ResetUsage()         {}

func (p *fakeProvider) Chat(ctx context.Context, systemPrompt string, messages []ai.Message) (string, error) {
	p.last = messages
	return p.reply, p.err
}

func testEmbedder() *keywordEmbedder {
	return &keywordEmbedder{keywords: []string{"reactor", "suit"}}
}

func newTestService(t *testing.T, provider ai.Provider) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc, err := NewService(dir, testEmbedder(), provider)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc, dir
}

func TestChunkText(t *testing.T) {
	text := strings.Repeat("a", 1000)
	chunks := chunkText(text, 500, 50)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for 1000 chars, got %d", len(chunks))
	}
	if len(chunks[0]) != 500 || len(chunks[1]) != 500 {
		t.Errorf("expected full-size chunks, got %d and %d", len(chunks[0]), len(chunks[1]))
	}
	// The last window starts at 900.
	if len(chunks[2]) != 100 {
		t.Errorf("expected 100-char tail, got %d", len(chunks[2]))
	}
}

func TestChunkText_Overlap(t *testing.T) {
	var sb strings.Builder
	for i := 0; sb.Len() < 600; i++ {
		sb.WriteString("word ")
	}
	chunks := chunkText(sb.String(), 500, 50)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	// The second chunk re-reads the last 50 chars of the first.
	tail := chunks[0][len(chunks[0])-50:]
	if !strings.HasPrefix(chunks[1], tail) {
		t.Error("expected consecutive chunks to overlap")
	}
}

func TestChunkText_DropsWhitespace(t *testing.T) {
	if chunks := chunkText("   \n\t  ", 500, 50); len(chunks) != 0 {
		t.Errorf("expected no chunks for whitespace input, got %d", len(chunks))
	}
}

func TestExtractText(t *testing.T) {
	got, err := ExtractText("notes.txt", []byte("line1\r\nline2"))
	if err != nil || got != "line1\nline2" {
		t.Errorf("unexpected extraction: %q, %v", got, err)
	}
	got, err = ExtractText("README.MD", []byte("# title"))
	if err != nil || got != "# title" {
		t.Errorf("expected markdown to extract, got %q, %v", got, err)
	}
	got, err = ExtractText("archive.zip", []byte("PK\x03\x04"))
	if err != nil || got != "" {
		t.Errorf("expected unsupported format to extract nothing, got %q, %v", got, err)
	}
}

func TestExtractText_RejectsMalformed(t *testing.T) {
	if _, err := ExtractText("scan.pdf", []byte("%PDF-1.4 truncated")); err == nil {
		t.Error("expected an error for a truncated PDF")
	}
	if _, err := ExtractText("report.docx", []byte("not a zip archive")); err == nil {
		t.Error("expected an error for a malformed DOCX")
	}
}

func TestUpload_RejectsEmptyExtraction(t *testing.T) {
	svc, _ := newTestService(t, nil)

	if _, err := svc.Upload(context.Background(), "archive.zip", []byte("PK\x03\x04")); !errors.Is(err, ErrNoText) {
		t.Errorf("expected ErrNoText for unsupported format, got %v", err)
	}
	if _, err := svc.Upload(context.Background(), "empty.txt", []byte("   ")); !errors.Is(err, ErrNoText) {
		t.Errorf("expected ErrNoText for blank file, got %v", err)
	}
}

func TestUpload_MalformedDocumentFails(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Upload(context.Background(), "scan.pdf", []byte("%PDF-1.4 truncated"))
	if err == nil || errors.Is(err, ErrNoText) {
		t.Errorf("expected an extraction error for a truncated PDF, got %v", err)
	}
}

func TestUpload_AssignsStableDocID(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	id1, err := svc.Upload(ctx, "a.txt", []byte("the arc reactor powers the suit"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if len(id1) != 12 {
		t.Errorf("expected 12-char doc id, got %q", id1)
	}

	// Same content, same id, no duplicate listing.
	id2, err := svc.Upload(ctx, "a.txt", []byte("the arc reactor powers the suit"))
	if err != nil {
		t.Fatalf("re-upload failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("expected content-addressed id, got %q and %q", id1, id2)
	}
	if docs := svc.List(); len(docs) != 1 {
		t.Errorf("expected one listed document, got %d", len(docs))
	}
}

func TestUpload_EmbedFailureRemovesUpload(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewService(dir, &keywordEmbedder{err: errors.New("model offline")}, nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if _, err := svc.Upload(context.Background(), "a.txt", []byte("reactor notes")); err == nil {
		t.Fatal("expected upload to fail")
	}

	entries, err := os.ReadDir(svc.uploadsDir)
	if err != nil {
		t.Fatalf("failed to read uploads dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected stored upload to be cleaned up, found %d files", len(entries))
	}
}

func TestQuery_NoDocuments(t *testing.T) {
	svc, _ := newTestService(t, nil)

	result, err := svc.Query(context.Background(), "what powers the suit?")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !strings.Contains(result.Answer, "No documents uploaded yet") {
		t.Errorf("unexpected answer %q", result.Answer)
	}
	if len(result.Sources) != 0 {
		t.Errorf("expected no sources, got %v", result.Sources)
	}
}

func TestQuery_RetrievesRelevantChunks(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "reactor.txt", []byte("the arc reactor is a fusion power source")); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if _, err := svc.Upload(ctx, "suit.txt", []byte("the suit armor is made of a gold titanium alloy")); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	result, err := svc.Query(ctx, "tell me about the reactor")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(result.Sources) == 0 || result.Sources[0] != "reactor.txt" {
		t.Errorf("expected reactor.txt as top source, got %v", result.Sources)
	}
	// No provider configured: the answer is a raw excerpt.
	if !strings.Contains(result.Answer, "Relevant excerpt") || !strings.Contains(result.Answer, "arc reactor") {
		t.Errorf("unexpected fallback answer %q", result.Answer)
	}
	if !strings.Contains(result.Context, "arc reactor") {
		t.Errorf("expected context preview, got %q", result.Context)
	}
}

func TestQuery_UsesProvider(t *testing.T) {
	provider := &fakeProvider{reply: "It is a fusion power source."}
	svc, _ := newTestService(t, provider)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "reactor.txt", []byte("the arc reactor is a fusion power source")); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	result, err := svc.Query(ctx, "what is the reactor?")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if result.Answer != "It is a fusion power source." {
		t.Errorf("expected provider answer, got %q", result.Answer)
	}
	if len(provider.last) != 1 || !strings.Contains(provider.last[0].Content, "Context:") {
		t.Errorf("expected grounded prompt, got %+v", provider.last)
	}
}

func TestQuery_ProviderFailureFallsBack(t *testing.T) {
	provider := &fakeProvider{err: errors.New("quota exceeded")}
	svc, _ := newTestService(t, provider)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "reactor.txt", []byte("the arc reactor is a fusion power source")); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	result, err := svc.Query(ctx, "what is the reactor?")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !strings.Contains(result.Answer, "Relevant excerpt") {
		t.Errorf("expected excerpt fallback on provider failure, got %q", result.Answer)
	}
}

func TestService_ReloadsStoreOnStartup(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewService(dir, testEmbedder(), nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	if _, err := svc.Upload(context.Background(), "reactor.txt", []byte("the arc reactor is a fusion power source")); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	reloaded, err := NewService(dir, testEmbedder(), nil)
	if err != nil {
		t.Fatalf("failed to reload service: %v", err)
	}
	if docs := reloaded.List(); len(docs) != 1 || docs[0].Filename != "reactor.txt" {
		t.Fatalf("expected reloaded store to list reactor.txt, got %+v", docs)
	}
	if reloaded.index.Count() != len(reloaded.chunks) {
		t.Errorf("expected every chunk indexed, got %d of %d",
			reloaded.index.Count(), len(reloaded.chunks))
	}

	result, err := reloaded.Query(context.Background(), "reactor?")
	if err != nil {
		t.Fatalf("query after reload failed: %v", err)
	}
	if len(result.Sources) == 0 {
		t.Error("expected the rebuilt index to retrieve chunks")
	}
}
