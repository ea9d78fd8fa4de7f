package routes

import (
	"net/http"

	"github.com/graphein/backend/internal/server/middleware"
	serverutil "github.com/graphein/backend/internal/server/util"
	"github.com/graphein/backend/internal/storage"
	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/provenance"

	"github.com/labstack/echo/v4"
)

// VerifyTraceHandler re-checks a trace against the archived copy of its
// source document: the archived bytes are re-extracted and the recorded
// span is compared with the stored fingerprint.
func VerifyTraceHandler(c echo.Context) error {
	id, err := serverutil.ParseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	trace, err := app.Traces.GetTrace(ctx, id)
	if err != nil {
		logger.Error("Failed to get trace", "trace_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if trace == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Trace not found"})
	}

	doc, err := app.Documents.GetDocument(ctx, trace.DocumentID)
	if err != nil {
		logger.Error("Failed to get document for trace", "trace_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if doc == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Source document not found"})
	}
	if doc.ArchivedPath == "" {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Document has no archived copy to verify against"})
	}

	content, err := storage.GetFile(ctx, app.S3, doc.ArchivedPath)
	if err != nil {
		logger.Error("Failed to fetch archived copy", "document_id", doc.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	text, err := app.Ingestor.ExtractText(ctx, content, doc.Type)
	if err != nil {
		logger.Error("Failed to re-extract document text", "document_id", doc.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	result := provenance.Verify(*trace, text)
	return c.JSON(http.StatusOK, result)
}
