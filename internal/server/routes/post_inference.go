package routes

import (
	"net/http"

	"github.com/graphein/backend/internal/server/middleware"
	"github.com/graphein/backend/pkg/inference"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// ApplyInferenceHandler runs every inference rule over the graph and
// reports how many edges each rule derived.
func ApplyInferenceHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	report := app.Inference.ApplyAll(c.Request().Context())
	return c.JSON(http.StatusOK, report)
}

// ListInferenceRulesHandler lists the active rule set.
func ListInferenceRulesHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, map[string]any{
		"rules": app.Inference.Rules(),
	})
}

// CreateInferenceRuleHandler adds a rule to the set.
func CreateInferenceRuleHandler(c echo.Context) error {
	type createRuleBody struct {
		Name       string  `json:"name" validate:"required"`
		Type       string  `json:"type" validate:"required"`
		Confidence float64 `json:"confidence"`
	}

	data := new(createRuleBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if data.Confidence == 0 {
		data.Confidence = 1.0
	}

	app := c.(*middleware.AppContext).App
	rule := inference.Rule{Name: data.Name, Type: data.Type, Confidence: data.Confidence}
	if err := app.Inference.AddRule(rule); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, rule)
}

// DeleteInferenceRuleHandler removes a rule by name.
func DeleteInferenceRuleHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	if !app.Inference.RemoveRule(c.Param("name")) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Rule not found"})
	}
	return c.NoContent(http.StatusNoContent)
}
