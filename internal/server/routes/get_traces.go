package routes

import (
	"net/http"

	"github.com/graphein/backend/internal/server/middleware"
	serverutil "github.com/graphein/backend/internal/server/util"
	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

// FindTracesHandler lists knowledge traces filtered by entity,
// relationship or document.
func FindTracesHandler(c echo.Context) error {
	entityID, err := serverutil.ParseUUIDQuery(c, "entity_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	relationshipID, err := serverutil.ParseUUIDQuery(c, "relationship_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	documentID, err := serverutil.ParseUUIDQuery(c, "document_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	traces, err := app.Traces.FindTraces(ctx, store.TraceQuery{
		EntityID:       entityID,
		RelationshipID: relationshipID,
		DocumentID:     documentID,
		Limit:          serverutil.ParseLimitQuery(c),
	})
	if err != nil {
		logger.Error("Failed to find traces", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, map[string]any{"traces": traces})
}
