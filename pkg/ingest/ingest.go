package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/model"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"
)

// Archiver stores the frozen copy of an ingested document and returns the
// path or object key of the stored copy.
type Archiver interface {
	Archive(ctx context.Context, key string, filename string, data []byte) (string, error)

	// Remove deletes an archived copy by the path or key Archive returned.
	// Archives are immutable while their document exists; Remove is only
	// for copies whose document was never kept.
	Remove(ctx context.Context, archivedPath string) error
}

// Result is the outcome of processing one file or URL. A Result is always
// returned; when processing fails, Err is set and Document is nil. Callers
// must check Err before using Document.
type Result struct {
	Document *model.SourceDocument
	Text     string
	Metadata map[string]any
	Err      string
}

// Processor normalizes uploaded bytes and URLs into plain text plus
// structural metadata, and records the SourceDocument for each artifact.
type Processor struct {
	documentsDir string
	archiver     Archiver
	encoding     string
}

// ProcessorParams configures a Processor.
type ProcessorParams struct {
	DocumentsDir string
	Archiver     Archiver
	// Encoding names the tiktoken encoding used for token counts.
	// Defaults to cl100k_base.
	Encoding string
}

// NewProcessor creates a document processor writing working copies under
// params.DocumentsDir.
func NewProcessor(params ProcessorParams) *Processor {
	enc := params.Encoding
	if enc == "" {
		enc = "cl100k_base"
	}
	return &Processor{
		documentsDir: params.DocumentsDir,
		archiver:     params.Archiver,
		encoding:     enc,
	}
}

func failure(format string, args ...any) Result {
	return Result{Metadata: map[string]any{}, Err: fmt.Sprintf(format, args...)}
}

// ProcessFile ingests raw uploaded bytes. The content hash is computed from
// the raw bytes before any parsing so duplicate and changed uploads can be
// detected regardless of parser behavior.
func (p *Processor) ProcessFile(ctx context.Context, content []byte, filename string) Result {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return failure("missing file extension in filename: %s", filename)
	}
	if len(content) == 0 {
		return failure("empty file: %s", filename)
	}

	id := uuid.New()
	contentHash := hashContent(content)

	filePath := ""
	if p.documentsDir != "" {
		if err := os.MkdirAll(p.documentsDir, 0o750); err != nil {
			return failure("failed to create documents dir: %v", err)
		}
		filePath = filepath.Join(p.documentsDir, fmt.Sprintf("%s_%s", id, filepath.Base(filename)))
		if err := os.WriteFile(filePath, content, 0o640); err != nil {
			return failure("failed to write working copy: %v", err)
		}
	}

	text, metadata, err := p.extract(ctx, content, ext)
	if err != nil {
		// Decoding as plain text is the last resort before giving up.
		text = decodeText(content)
		if strings.TrimSpace(text) == "" {
			return failure("failed to extract content: %v", err)
		}
		metadata = map[string]any{"note": fmt.Sprintf("extracted as plain text after error: %v", err)}
	}
	metadata["file_size"] = len(content)
	p.addTokenCount(metadata, text)

	now := time.Now().UTC()
	doc := &model.SourceDocument{
		ID:          id,
		Title:       filename,
		Type:        documentType(ext),
		ContentHash: contentHash,
		FilePath:    filePath,
		Metadata:    metadata,
		AccessedAt:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if p.archiver != nil {
		archived, err := p.archiver.Archive(ctx, id.String(), filename, content)
		if err != nil {
			// The working copy is still usable; archiving failure is not fatal.
			logger.Warn("[Ingest] Failed to create archive copy", "document_id", id, "err", err)
		} else {
			doc.ArchivedPath = archived
		}
	}

	return Result{Document: doc, Text: text, Metadata: metadata}
}

// Discard removes the working copy and archived copy of a document that
// was not kept, for example because its content hash matched an existing
// document. Missing copies are not an error.
func (p *Processor) Discard(ctx context.Context, doc *model.SourceDocument) error {
	if doc == nil {
		return nil
	}

	var errs []error
	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("remove working copy: %w", err))
		}
	}
	if doc.ArchivedPath != "" && p.archiver != nil {
		if err := p.archiver.Remove(ctx, doc.ArchivedPath); err != nil {
			errs = append(errs, fmt.Errorf("remove archived copy: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ExtractText re-runs text extraction on raw document content, for
// example on an archived copy when re-verifying traces. docType is one of
// the document type constants.
func (p *Processor) ExtractText(ctx context.Context, content []byte, docType string) (string, error) {
	var ext string
	switch docType {
	case model.DocumentTypePDF:
		ext = "pdf"
	case model.DocumentTypeDocx:
		ext = "docx"
	case model.DocumentTypeWebpage:
		text, _, err := extractReadable(content, nil)
		return text, err
	default:
		ext = "txt"
	}
	text, _, err := p.extract(ctx, content, ext)
	return text, err
}

func (p *Processor) extract(ctx context.Context, content []byte, ext string) (string, map[string]any, error) {
	switch ext {
	case "pdf":
		return extractPDF(ctx, content)
	case "docx", "doc":
		return extractDocx(content)
	case "txt", "md", "text":
		text, meta := extractText(content)
		return text, meta, nil
	default:
		text, meta := extractText(content)
		if strings.TrimSpace(text) == "" {
			return "", nil, fmt.Errorf("unsupported file type: %s", ext)
		}
		return text, meta, nil
	}
}

func (p *Processor) addTokenCount(metadata map[string]any, text string) {
	enc, err := tiktoken.GetEncoding(p.encoding)
	if err != nil {
		logger.Debug("[Ingest] Token encoding unavailable", "encoding", p.encoding, "err", err)
		return
	}
	metadata["token_count"] = len(enc.Encode(text, nil, nil))
}

func documentType(ext string) string {
	switch ext {
	case "pdf":
		return model.DocumentTypePDF
	case "docx", "doc":
		return model.DocumentTypeDocx
	case "txt", "md", "text":
		return model.DocumentTypeText
	case "csv", "json":
		return model.DocumentTypeStructured
	default:
		return ext
	}
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return "sha256:" + hex.EncodeToString(sum[:])
}
