package routes

import (
	"net/http"

	"github.com/graphein/backend/pkg/model"

	"github.com/labstack/echo/v4"
)

// GetEntityTypesHandler lists the entity type vocabulary grouped by
// category.
func GetEntityTypesHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"basic":    model.EntityTypes(model.CategoryBasic),
		"domain":   model.EntityTypes(model.CategoryDomain),
		"personal": model.EntityTypes(model.CategoryPersonal),
	})
}
