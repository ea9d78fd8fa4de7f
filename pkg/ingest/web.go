package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/model"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const maxFetchBytes = 20 << 20

var (
	fetchGroup singleflight.Group
	reTitle    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
)

type fetched struct {
	payload     []byte
	contentType string
}

// ProcessURL fetches a URL, extracts its readable text content and archives
// the raw payload as the frozen copy. Concurrent requests for the same URL
// share one fetch.
func (p *Processor) ProcessURL(ctx context.Context, rawURL string) Result {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return failure("invalid url: %s", rawURL)
	}

	v, err, _ := fetchGroup.Do(rawURL, func() (any, error) {
		return fetchURL(ctx, rawURL)
	})
	if err != nil {
		return failure("failed to fetch url: %v", err)
	}
	f := v.(*fetched)

	id := uuid.New()
	contentHash := hashContent(f.payload)
	now := time.Now().UTC()

	var text string
	metadata := map[string]any{
		"content_type": f.contentType,
		"fetched_at":   now.Format(time.RFC3339),
		"file_size":    len(f.payload),
	}

	if strings.Contains(f.contentType, "text/html") {
		extracted, title, err := extractReadable(f.payload, parsed)
		if err != nil {
			return failure("%v", err)
		}
		text = extracted
		if title != "" {
			metadata["title"] = title
		}
	} else {
		text = decodeText(f.payload)
	}

	if strings.TrimSpace(text) == "" {
		return failure("no readable content at %s", rawURL)
	}
	p.addTokenCount(metadata, text)

	title, _ := metadata["title"].(string)
	if title == "" {
		title = rawURL
	}

	doc := &model.SourceDocument{
		ID:          id,
		Title:       title,
		Type:        model.DocumentTypeWebpage,
		ContentHash: contentHash,
		URL:         rawURL,
		Metadata:    metadata,
		AccessedAt:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if p.archiver != nil {
		archived, err := p.archiver.Archive(ctx, id.String(), archiveName(parsed), f.payload)
		if err != nil {
			logger.Warn("[Ingest] Failed to archive web capture", "document_id", id, "err", err)
		} else {
			doc.ArchivedPath = archived
		}
	}

	return Result{Document: doc, Text: text, Metadata: metadata}
}

// extractReadable pulls the main article text and title out of an HTML
// payload. base may be nil when the origin URL is unknown.
func extractReadable(payload []byte, base *url.URL) (string, string, error) {
	article, err := readability.FromReader(bytes.NewReader(payload), base)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse html: %w", err)
	}
	var builder strings.Builder
	if err := article.RenderText(&builder); err != nil {
		return "", "", fmt.Errorf("failed to render article text: %w", err)
	}
	return builder.String(), htmlTitle(payload), nil
}

func fetchURL(ctx context.Context, rawURL string) (*fetched, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &fetched{
		payload:     payload,
		contentType: resp.Header.Get("Content-Type"),
	}, nil
}

func htmlTitle(payload []byte) string {
	m := reTitle.FindSubmatch(payload)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(string(m[1]))
}

func archiveName(u *url.URL) string {
	name := strings.TrimSuffix(u.Host+strings.ReplaceAll(u.Path, "/", "_"), "_")
	if name == "" {
		name = "capture"
	}
	return name + ".html"
}
