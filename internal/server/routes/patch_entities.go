package routes

import (
	"errors"
	"net/http"

	"github.com/graphein/backend/internal/server/middleware"
	serverutil "github.com/graphein/backend/internal/server/util"
	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/model"
	"github.com/graphein/backend/pkg/store"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// EditEntityHandler records the edit as a new revision by default: the
// current node stays in place and a successor with version+1 is created.
// With in_place set, the node itself is rewritten instead (properties
// replaced, type label swapped) and no revision is recorded; that is meant
// for corrections that should not show up in the entity's history.
func EditEntityHandler(c echo.Context) error {
	type editEntityBody struct {
		Type               *string        `json:"type"`
		Name               *string        `json:"name"`
		Description        *string        `json:"description"`
		Properties         map[string]any `json:"properties"`
		Tags               []string       `json:"tags"`
		Importance         *int           `json:"importance"`
		UnderstandingLevel *int           `json:"understanding_level"`
		PersonalNotes      *string        `json:"personal_notes"`
		InPlace            bool           `json:"in_place"`
	}

	type editEntityResponse struct {
		Message string        `json:"message"`
		Entity  *model.Entity `json:"entity,omitempty"`
	}

	id, err := serverutil.ParseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, editEntityResponse{Message: err.Error()})
	}

	data := new(editEntityBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, editEntityResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	current, err := app.Graph.ReadEntity(ctx, id)
	if err != nil {
		logger.Error("Failed to read entity", "entity_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, editEntityResponse{
			Message: "Internal server error",
		})
	}
	if current == nil {
		return c.JSON(http.StatusNotFound, editEntityResponse{
			Message: "Entity not found",
		})
	}

	updated := *current
	if data.Type != nil {
		if !model.KnownEntityType(*data.Type) {
			return c.JSON(http.StatusBadRequest, editEntityResponse{
				Message: "Unknown entity type: " + *data.Type,
			})
		}
		updated.Type = *data.Type
		updated.Category = model.EntityTypeCategory(*data.Type)
	}
	if data.Name != nil {
		updated.Name = *data.Name
	}
	if data.Description != nil {
		updated.Description = *data.Description
	}
	if data.Properties != nil {
		updated.Properties = data.Properties
	}
	if data.Tags != nil {
		updated.Tags = data.Tags
	}
	if data.Importance != nil {
		updated.Importance = *data.Importance
	}
	if data.UnderstandingLevel != nil {
		updated.UnderstandingLevel = *data.UnderstandingLevel
	}
	if data.PersonalNotes != nil {
		updated.PersonalNotes = *data.PersonalNotes
	}

	if data.InPlace {
		result, err := app.Graph.UpdateEntity(ctx, id, updated)
		if err != nil {
			logger.Error("Failed to update entity", "entity_id", id, "err", err)
			return c.JSON(http.StatusInternalServerError, editEntityResponse{
				Message: "Internal server error",
			})
		}
		if result == nil {
			return c.JSON(http.StatusNotFound, editEntityResponse{
				Message: "Entity not found",
			})
		}
		return c.JSON(http.StatusOK, editEntityResponse{
			Message: "Entity updated",
			Entity:  result,
		})
	}

	revision, err := app.Versions.NewRevision(ctx, id, updated)
	if err != nil {
		if isNotFound(err) {
			return c.JSON(http.StatusNotFound, editEntityResponse{
				Message: "Entity not found",
			})
		}
		logger.Error("Failed to create entity revision", "entity_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, editEntityResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, editEntityResponse{
		Message: "Entity updated",
		Entity:  revision,
	})
}
