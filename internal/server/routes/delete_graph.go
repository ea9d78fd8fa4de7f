package routes

import (
	"net/http"

	"github.com/graphein/backend/internal/server/middleware"
	serverutil "github.com/graphein/backend/internal/server/util"
	"github.com/graphein/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DeleteGraphItemHandler removes an entity or relationship by id. Entity
// deletion detaches all connected edges. Traces pointing at the deleted
// item stay behind as audit records.
func DeleteGraphItemHandler(c echo.Context) error {
	id, err := serverutil.ParseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	deleted, err := app.Graph.Delete(ctx, id)
	if err != nil {
		logger.Error("Failed to delete graph item", "id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":    "Deleted",
		"deleted_id": id,
	})
}
