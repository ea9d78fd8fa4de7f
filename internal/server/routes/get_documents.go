package routes

import (
	"net/http"

	"github.com/graphein/backend/internal/server/middleware"
	serverutil "github.com/graphein/backend/internal/server/util"
	"github.com/graphein/backend/internal/storage"
	"github.com/graphein/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

func ListDocumentsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	docs, err := app.Documents.ListDocuments(ctx, serverutil.ParseLimitQuery(c))
	if err != nil {
		logger.Error("Failed to list documents", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, map[string]any{"documents": docs})
}

func GetDocumentHandler(c echo.Context) error {
	id, err := serverutil.ParseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	doc, err := app.Documents.GetDocument(ctx, id)
	if err != nil {
		logger.Error("Failed to get document", "document_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if doc == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Document not found"})
	}

	return c.JSON(http.StatusOK, doc)
}

// GetDocumentDownloadHandler returns a short-lived presigned link to the
// archived copy of the document.
func GetDocumentDownloadHandler(c echo.Context) error {
	id, err := serverutil.ParseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	doc, err := app.Documents.GetDocument(ctx, id)
	if err != nil {
		logger.Error("Failed to get document", "document_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if doc == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Document not found"})
	}
	if doc.ArchivedPath == "" {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Document has no archived copy"})
	}

	link, err := storage.GenerateDownloadLink(ctx, app.S3, doc.ArchivedPath)
	if err != nil {
		logger.Error("Failed to generate download link", "document_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"url": link})
}
