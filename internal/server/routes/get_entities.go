package routes

import (
	"net/http"

	"github.com/graphein/backend/internal/server/middleware"
	serverutil "github.com/graphein/backend/internal/server/util"
	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

func FindEntitiesHandler(c echo.Context) error {
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	entities, err := app.Graph.FindEntities(ctx, store.EntityQuery{
		Type:  c.QueryParam("type"),
		Name:  c.QueryParam("name"),
		Tag:   c.QueryParam("tag"),
		Limit: serverutil.ParseLimitQuery(c),
	})
	if err != nil {
		logger.Error("Failed to find entities", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, map[string]any{"entities": entities})
}

func GetEntityHandler(c echo.Context) error {
	id, err := serverutil.ParseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	entity, err := app.Graph.ReadEntity(ctx, id)
	if err != nil {
		logger.Error("Failed to read entity", "entity_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if entity == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Entity not found"})
	}

	return c.JSON(http.StatusOK, entity)
}

// GetEntityHistoryHandler lists the revision chain of an entity, newest
// first.
func GetEntityHistoryHandler(c echo.Context) error {
	id, err := serverutil.ParseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	history, err := app.Versions.History(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Entity not found"})
		}
		logger.Error("Failed to load entity history", "entity_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, map[string]any{"history": history})
}

// GetEntityDiffHandler compares two revisions of an entity.
func GetEntityDiffHandler(c echo.Context) error {
	fromID, err := serverutil.ParseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	toID, err := serverutil.ParseUUIDParam(c, "other_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	diff, err := app.Versions.Compare(ctx, fromID, toID)
	if err != nil {
		if isNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Entity not found"})
		}
		logger.Error("Failed to diff entity revisions", "from", fromID, "to", toID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, diff)
}
