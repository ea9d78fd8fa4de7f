package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/graphein/backend/pkg/ingest"
	"github.com/graphein/backend/pkg/model"
	"github.com/graphein/backend/pkg/ner"
	"github.com/graphein/backend/pkg/provenance"
	"github.com/graphein/backend/pkg/relation"
	"github.com/graphein/backend/pkg/store"

	"github.com/google/uuid"
)

// memoryDocuments implements store.DocumentStore and store.TraceStore in
// memory for pipeline tests.
type memoryDocuments struct {
	byHash    map[string]*model.SourceDocument
	byID      map[uuid.UUID]*model.SourceDocument
	traces    []model.KnowledgeTrace
	saveErr   error
	tracesErr error
}

func newMemoryDocuments() *memoryDocuments {
	return &memoryDocuments{
		byHash: make(map[string]*model.SourceDocument),
		byID:   make(map[uuid.UUID]*model.SourceDocument),
	}
}

func (m *memoryDocuments) SaveDocument(_ context.Context, doc *model.SourceDocument) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.byHash[doc.ContentHash] = doc
	m.byID[doc.ID] = doc
	return nil
}

func (m *memoryDocuments) GetDocument(_ context.Context, id uuid.UUID) (*model.SourceDocument, error) {
	return m.byID[id], nil
}

func (m *memoryDocuments) FindDocumentByHash(_ context.Context, contentHash string) (*model.SourceDocument, error) {
	return m.byHash[contentHash], nil
}

func (m *memoryDocuments) ListDocuments(context.Context, int) ([]model.SourceDocument, error) {
	return nil, nil
}

func (m *memoryDocuments) SaveTraces(_ context.Context, traces []model.KnowledgeTrace) error {
	if m.tracesErr != nil {
		return m.tracesErr
	}
	m.traces = append(m.traces, traces...)
	return nil
}

func (m *memoryDocuments) GetTrace(context.Context, uuid.UUID) (*model.KnowledgeTrace, error) {
	return nil, nil
}

func (m *memoryDocuments) FindTraces(context.Context, store.TraceQuery) ([]model.KnowledgeTrace, error) {
	return nil, nil
}

func newTestPipeline(t *testing.T, docs *memoryDocuments) *Pipeline {
	t.Helper()

	ingestor := ingest.NewProcessor(ingest.ProcessorParams{DocumentsDir: t.TempDir()})
	tagger := ner.NewLexiconTagger(map[string]string{
		"张三":     "PERSON",
		"北京科技公司": "ORG",
	})

	pipe, err := New(Params{
		Ingestor:   ingestor,
		Recognizer: ner.NewRecognizer(tagger, nil),
		Inferrer:   relation.NewInferrer(nil),
		Tracer:     provenance.NewTracer(),
		Documents:  docs,
		Traces:     docs,
	})
	if err != nil {
		t.Fatalf("failed to build pipeline: %v", err)
	}
	return pipe
}

func TestNewRequiresStages(t *testing.T) {
	if _, err := New(Params{}); err == nil {
		t.Error("expected error without ingestor")
	}
	ingestor := ingest.NewProcessor(ingest.ProcessorParams{})
	if _, err := New(Params{Ingestor: ingestor}); err == nil {
		t.Error("expected error without recognizer")
	}
}

func TestProcessFile(t *testing.T) {
	docs := newMemoryDocuments()
	pipe := newTestPipeline(t, docs)

	content := []byte("张三在北京科技公司工作。")
	summary, err := pipe.ProcessFile(context.Background(), content, "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Status != StatusCompleted {
		t.Errorf("status = %q, want %q (error: %s)", summary.Status, StatusCompleted, summary.ExtractionError)
	}
	if summary.EntitiesCount != 2 {
		t.Errorf("entities = %d, want 2", summary.EntitiesCount)
	}
	if summary.RelationshipsCount != 1 {
		t.Errorf("relationships = %d, want 1", summary.RelationshipsCount)
	}
	// One trace per entity plus one for the relationship.
	if summary.TracesCount != 3 {
		t.Errorf("traces = %d, want 3", summary.TracesCount)
	}
	if len(docs.byID) != 1 {
		t.Errorf("stored %d documents, want 1", len(docs.byID))
	}
	if len(docs.traces) != 3 {
		t.Errorf("stored %d traces, want 3", len(docs.traces))
	}

	stored := docs.byID[summary.DocumentID]
	if stored == nil {
		t.Fatal("document not stored under the summary id")
	}
	if stored.Type != model.DocumentTypeText {
		t.Errorf("document type = %q, want %q", stored.Type, model.DocumentTypeText)
	}
	if stored.ContentHash == "" {
		t.Error("document has no content hash")
	}
}

func TestProcessFileDuplicate(t *testing.T) {
	docs := newMemoryDocuments()
	pipe := newTestPipeline(t, docs)
	content := []byte("张三在北京科技公司工作。")

	first, err := pipe.ProcessFile(context.Background(), content, "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := pipe.ProcessFile(context.Background(), content, "copy.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Status != StatusDuplicate {
		t.Errorf("status = %q, want %q", second.Status, StatusDuplicate)
	}
	if second.DocumentID != first.DocumentID {
		t.Error("duplicate does not reference the original document")
	}
	if second.EntitiesCount != 0 {
		t.Error("duplicate was re-extracted")
	}
	if len(docs.byID) != 1 {
		t.Errorf("stored %d documents, want 1 after duplicate upload", len(docs.byID))
	}
}

func TestProcessFileDuplicateRemovesCopies(t *testing.T) {
	docs := newMemoryDocuments()
	docsDir := t.TempDir()
	archiveDir := t.TempDir()

	ingestor := ingest.NewProcessor(ingest.ProcessorParams{
		DocumentsDir: docsDir,
		Archiver:     ingest.NewLocalArchiver(archiveDir),
	})
	tagger := ner.NewLexiconTagger(map[string]string{"张三": "PERSON"})
	pipe, err := New(Params{
		Ingestor:   ingestor,
		Recognizer: ner.NewRecognizer(tagger, nil),
		Documents:  docs,
		Traces:     docs,
	})
	if err != nil {
		t.Fatalf("failed to build pipeline: %v", err)
	}

	content := []byte("张三在家。")
	for _, name := range []string{"notes.txt", "copy.txt"} {
		if _, err := pipe.ProcessFile(context.Background(), content, name); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Only the kept document's copies survive the duplicate upload.
	for dir, what := range map[string]string{docsDir: "working copies", archiveDir: "archived copies"} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("read %s: %v", what, err)
		}
		if len(entries) != 1 {
			t.Errorf("%d %s after duplicate upload, want 1", len(entries), what)
		}
	}
}

func TestProcessFileIngestFailure(t *testing.T) {
	docs := newMemoryDocuments()
	pipe := newTestPipeline(t, docs)

	summary, err := pipe.ProcessFile(context.Background(), nil, "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Status != StatusFailed {
		t.Errorf("status = %q, want %q", summary.Status, StatusFailed)
	}
	if summary.ExtractionError == "" {
		t.Error("failed summary carries no error")
	}
	if len(docs.byID) != 0 {
		t.Error("failed ingest stored a document")
	}
}

func TestProcessFileTraceFailureIsPartial(t *testing.T) {
	docs := newMemoryDocuments()
	docs.tracesErr = errors.New("trace store down")
	pipe := newTestPipeline(t, docs)

	summary, err := pipe.ProcessFile(context.Background(), []byte("张三在北京科技公司工作。"), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Status != StatusPartial {
		t.Errorf("status = %q, want %q", summary.Status, StatusPartial)
	}
	if summary.ExtractionError == "" {
		t.Error("partial summary carries no error")
	}
	// Extraction itself still succeeded and the document is kept.
	if summary.EntitiesCount != 2 {
		t.Errorf("entities = %d, want 2", summary.EntitiesCount)
	}
	if len(docs.byID) != 1 {
		t.Error("document was not kept after trace failure")
	}
}

func TestProcessFileSaveDocumentFailure(t *testing.T) {
	docs := newMemoryDocuments()
	docs.saveErr = errors.New("database down")
	pipe := newTestPipeline(t, docs)

	if _, err := pipe.ProcessFile(context.Background(), []byte("text"), "notes.txt"); err == nil {
		t.Fatal("expected error when the document cannot be saved")
	}
}
