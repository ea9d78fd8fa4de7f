package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/graphein/backend/internal/storage"
	"github.com/graphein/backend/pkg/leaselock"
	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/pipeline"
)

// withExtractionLease serializes extraction per key across workers. With
// no lock client configured the work runs directly.
func withExtractionLease(ctx context.Context, locks *leaselock.Client, key string, fn func(ctx context.Context) error) error {
	if locks == nil {
		return fn(ctx)
	}
	return locks.WithLease(ctx, "extract:"+key, leaselock.Options{
		TTL: 10 * time.Minute,
	}, fn)
}

// ExtractFileMsg asks the worker to run extraction on an uploaded file.
// FileKey is the S3 object key of the upload; CorrelationID ties worker
// logs back to the originating request.
type ExtractFileMsg struct {
	FileKey       string `json:"file_key"`
	Filename      string `json:"filename"`
	CorrelationID string `json:"correlation_id"`
}

// ExtractURLMsg asks the worker to fetch and extract a web page.
type ExtractURLMsg struct {
	URL           string `json:"url"`
	CorrelationID string `json:"correlation_id"`
}

// ProcessExtractFile downloads the uploaded file from S3 and runs the
// extraction pipeline on it.
func ProcessExtractFile(
	ctx context.Context,
	s3Client *awss3.Client,
	locks *leaselock.Client,
	pipe *pipeline.Pipeline,
	msg string,
) error {
	data := new(ExtractFileMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("unmarshal extract message: %w", err)
	}
	if data.FileKey == "" {
		return fmt.Errorf("extract message missing file key")
	}

	return withExtractionLease(ctx, locks, data.FileKey, func(ctx context.Context) error {
		content, err := storage.GetFile(ctx, s3Client, data.FileKey)
		if err != nil {
			return err
		}

		summary, err := pipe.ProcessFile(ctx, content, data.Filename)
		if err != nil {
			return err
		}

		logger.Info("[Queue] Extraction finished",
			"correlation_id", data.CorrelationID,
			"file_key", data.FileKey,
			"document_id", summary.DocumentID,
			"status", summary.Status,
			"entities", summary.EntitiesCount,
			"relationships", summary.RelationshipsCount)
		return nil
	})
}

// ProcessExtractURL fetches a web page and runs the extraction pipeline on
// its readable content.
func ProcessExtractURL(
	ctx context.Context,
	locks *leaselock.Client,
	pipe *pipeline.Pipeline,
	msg string,
) error {
	data := new(ExtractURLMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("unmarshal url message: %w", err)
	}
	if data.URL == "" {
		return fmt.Errorf("url message missing url")
	}

	return withExtractionLease(ctx, locks, data.URL, func(ctx context.Context) error {
		summary, err := pipe.ProcessURL(ctx, data.URL)
		if err != nil {
			return err
		}

		logger.Info("[Queue] URL extraction finished",
			"correlation_id", data.CorrelationID,
			"url", data.URL,
			"document_id", summary.DocumentID,
			"status", summary.Status,
			"entities", summary.EntitiesCount,
			"relationships", summary.RelationshipsCount)
		return nil
	})
}
