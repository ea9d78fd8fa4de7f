package routes

import (
	"net/http"

	"github.com/graphein/backend/internal/server/middleware"
	serverutil "github.com/graphein/backend/internal/server/util"
	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

func FindRelationshipsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	entityID, err := serverutil.ParseUUIDQuery(c, "entity_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	query := store.RelationshipQuery{
		Type:  c.QueryParam("type"),
		Limit: serverutil.ParseLimitQuery(c),
	}
	if entityID != nil {
		query.EntityID = *entityID
	}

	relationships, err := app.Graph.FindRelationships(ctx, query)
	if err != nil {
		logger.Error("Failed to find relationships", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, map[string]any{"relationships": relationships})
}

func GetRelationshipHandler(c echo.Context) error {
	id, err := serverutil.ParseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	rel, err := app.Graph.ReadRelationship(ctx, id)
	if err != nil {
		logger.Error("Failed to read relationship", "relationship_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if rel == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Relationship not found"})
	}

	return c.JSON(http.StatusOK, rel)
}
