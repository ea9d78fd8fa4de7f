package routes

import (
	"net/http"

	"github.com/graphein/backend/internal/server/middleware"
	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/model"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// CreateEntityHandler creates a manually curated entity. Manual entries
// get full confidence; extracted ones come in through the pipeline
// instead.
func CreateEntityHandler(c echo.Context) error {
	type createEntityBody struct {
		Type          string         `json:"type" validate:"required"`
		Name          string         `json:"name" validate:"required"`
		Description   string         `json:"description"`
		Properties    map[string]any `json:"properties"`
		Tags          []string       `json:"tags"`
		Importance    int            `json:"importance"`
		PersonalNotes string         `json:"personal_notes"`
	}

	type createEntityResponse struct {
		Message string        `json:"message"`
		Entity  *model.Entity `json:"entity,omitempty"`
	}

	data := new(createEntityBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createEntityResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createEntityResponse{
			Message: "Invalid request body",
		})
	}
	if !model.KnownEntityType(data.Type) {
		return c.JSON(http.StatusBadRequest, createEntityResponse{
			Message: "Unknown entity type: " + data.Type,
		})
	}

	entity := model.NewEntity(data.Type, data.Name)
	entity.Description = data.Description
	entity.Properties = data.Properties
	entity.Tags = data.Tags
	entity.Importance = data.Importance
	entity.PersonalNotes = data.PersonalNotes
	entity.Category = model.EntityTypeCategory(data.Type)
	entity.ExtractionMethod = model.MethodManual
	entity.Confidence = model.Score(model.MethodManual, "")

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	if err := app.Graph.CreateEntity(ctx, entity); err != nil {
		logger.Error("Failed to create entity", "name", data.Name, "err", err)
		return c.JSON(http.StatusInternalServerError, createEntityResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusCreated, createEntityResponse{
		Message: "Entity created",
		Entity:  &entity,
	})
}
