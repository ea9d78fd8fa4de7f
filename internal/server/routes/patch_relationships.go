package routes

import (
	"net/http"

	"github.com/graphein/backend/internal/server/middleware"
	serverutil "github.com/graphein/backend/internal/server/util"
	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/model"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// EditRelationshipHandler updates an edge in place. A type change moves
// the edge to its new type while keeping the id.
func EditRelationshipHandler(c echo.Context) error {
	type editRelationshipBody struct {
		Type          *string        `json:"type"`
		Properties    map[string]any `json:"properties"`
		Bidirectional *bool          `json:"bidirectional"`
		Certainty     *float64       `json:"certainty"`
		Evidence      *string        `json:"evidence"`
	}

	type editRelationshipResponse struct {
		Message      string              `json:"message"`
		Relationship *model.Relationship `json:"relationship,omitempty"`
	}

	id, err := serverutil.ParseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, editRelationshipResponse{Message: err.Error()})
	}

	data := new(editRelationshipBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, editRelationshipResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	current, err := app.Graph.ReadRelationship(ctx, id)
	if err != nil {
		logger.Error("Failed to read relationship", "relationship_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, editRelationshipResponse{
			Message: "Internal server error",
		})
	}
	if current == nil {
		return c.JSON(http.StatusNotFound, editRelationshipResponse{
			Message: "Relationship not found",
		})
	}

	updated := *current
	if data.Type != nil {
		updated.Type = *data.Type
	}
	if data.Properties != nil {
		updated.Properties = data.Properties
	}
	if data.Bidirectional != nil {
		updated.Bidirectional = *data.Bidirectional
	}
	if data.Certainty != nil {
		updated.Certainty = *data.Certainty
	}
	if data.Evidence != nil {
		updated.Evidence = *data.Evidence
	}

	result, err := app.Graph.UpdateRelationship(ctx, id, updated)
	if err != nil {
		logger.Error("Failed to update relationship", "relationship_id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, editRelationshipResponse{
			Message: "Internal server error",
		})
	}
	if result == nil {
		return c.JSON(http.StatusNotFound, editRelationshipResponse{
			Message: "Relationship not found",
		})
	}

	return c.JSON(http.StatusOK, editRelationshipResponse{
		Message:      "Relationship updated",
		Relationship: result,
	})
}
