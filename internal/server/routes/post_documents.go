package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/graphein/backend/internal/queue"
	"github.com/graphein/backend/internal/server/middleware"
	"github.com/graphein/backend/internal/storage"
	"github.com/graphein/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// UploadDocumentsHandler accepts multipart file uploads, stores them in S3
// and queues each for extraction. Processing is asynchronous; the response
// carries the correlation id to follow in worker logs.
func UploadDocumentsHandler(c echo.Context) error {
	type uploadedFile struct {
		Filename      string `json:"filename"`
		FileKey       string `json:"file_key"`
		CorrelationID string `json:"correlation_id"`
	}

	type uploadResponse struct {
		Message string         `json:"message"`
		Files   []uploadedFile `json:"files,omitempty"`
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Message: "Invalid request body",
		})
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Message: "No files provided",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	var accepted []uploadedFile
	for _, file := range uploads {
		src, err := file.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, uploadResponse{
				Message: "Invalid request body",
			})
		}

		uploadID, err := gonanoid.New()
		if err != nil {
			src.Close()
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Internal server error",
			})
		}

		key, err := storage.PutFile(
			ctx,
			app.S3,
			fmt.Sprintf("uploads/%s/%s", uploadID, file.Filename),
			file.Filename,
			src,
		)
		src.Close()
		if err != nil {
			logger.Error("Failed to upload file", "filename", file.Filename, "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Internal server error",
			})
		}

		msg := queue.ExtractFileMsg{
			FileKey:       key,
			Filename:      file.Filename,
			CorrelationID: uploadID,
		}
		msgBytes, err := json.Marshal(msg)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Internal server error",
			})
		}
		if err := queue.PublishFIFO(app.Queue, queue.ExtractQueue, msgBytes); err != nil {
			logger.Error("Failed to queue extraction", "file_key", key, "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Internal server error",
			})
		}

		accepted = append(accepted, uploadedFile{
			Filename:      file.Filename,
			FileKey:       key,
			CorrelationID: uploadID,
		})
	}

	return c.JSON(http.StatusAccepted, uploadResponse{
		Message: "Files queued for extraction",
		Files:   accepted,
	})
}

// UploadDocumentFromURLHandler queues a web page for fetching and
// extraction.
func UploadDocumentFromURLHandler(c echo.Context) error {
	type urlBody struct {
		URL string `json:"url" validate:"required,url"`
	}

	type urlResponse struct {
		Message       string `json:"message"`
		CorrelationID string `json:"correlation_id,omitempty"`
	}

	data := new(urlBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, urlResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, urlResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App

	correlationID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, urlResponse{
			Message: "Internal server error",
		})
	}

	msg := queue.ExtractURLMsg{
		URL:           data.URL,
		CorrelationID: correlationID,
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, urlResponse{
			Message: "Internal server error",
		})
	}
	if err := queue.PublishFIFO(app.Queue, queue.URLQueue, msgBytes); err != nil {
		logger.Error("Failed to queue url extraction", "url", data.URL, "err", err)
		return c.JSON(http.StatusInternalServerError, urlResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusAccepted, urlResponse{
		Message:       "URL queued for extraction",
		CorrelationID: correlationID,
	})
}

// ProcessDocumentHandler runs the extraction pipeline synchronously on a
// single uploaded file and returns the summary. Meant for small documents
// and interactive use; large batches should go through the queue.
func ProcessDocumentHandler(c echo.Context) error {
	type processResponse struct {
		Message string `json:"message"`
		Summary any    `json:"summary,omitempty"`
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, processResponse{
			Message: "No file provided",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, processResponse{
			Message: "Invalid request body",
		})
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, processResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	summary, err := app.Pipeline.ProcessFile(ctx, content, file.Filename)
	if err != nil {
		logger.Error("Failed to process document", "filename", file.Filename, "err", err)
		return c.JSON(http.StatusInternalServerError, processResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, processResponse{
		Message: "Document processed",
		Summary: summary,
	})
}
