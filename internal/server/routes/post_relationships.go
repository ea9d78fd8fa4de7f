package routes

import (
	"net/http"

	"github.com/graphein/backend/internal/server/middleware"
	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/model"

	_ "github.com/go-playground/validator"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CreateRelationshipHandler creates a manually curated edge between two
// existing entities.
func CreateRelationshipHandler(c echo.Context) error {
	type createRelationshipBody struct {
		Type          string         `json:"type" validate:"required"`
		SourceID      uuid.UUID      `json:"source_id" validate:"required"`
		TargetID      uuid.UUID      `json:"target_id" validate:"required"`
		Properties    map[string]any `json:"properties"`
		Bidirectional bool           `json:"bidirectional"`
		Evidence      string         `json:"evidence"`
	}

	type createRelationshipResponse struct {
		Message      string              `json:"message"`
		Relationship *model.Relationship `json:"relationship,omitempty"`
	}

	data := new(createRelationshipBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createRelationshipResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createRelationshipResponse{
			Message: "Invalid request body",
		})
	}
	if data.SourceID == data.TargetID {
		return c.JSON(http.StatusBadRequest, createRelationshipResponse{
			Message: "Source and target must be different entities",
		})
	}

	rel := model.NewRelationship(data.Type, data.SourceID, data.TargetID)
	rel.Properties = data.Properties
	rel.Bidirectional = data.Bidirectional
	rel.Evidence = data.Evidence
	rel.ExtractionMethod = model.MethodManual
	rel.Certainty = model.Score(model.MethodManual, "")
	rel.Confidence = rel.Certainty

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	if err := app.Graph.CreateRelationship(ctx, rel); err != nil {
		if isNotFound(err) {
			return c.JSON(http.StatusNotFound, createRelationshipResponse{
				Message: "Source or target entity not found",
			})
		}
		logger.Error("Failed to create relationship", "type", data.Type, "err", err)
		return c.JSON(http.StatusInternalServerError, createRelationshipResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusCreated, createRelationshipResponse{
		Message:      "Relationship created",
		Relationship: &rel,
	})
}
