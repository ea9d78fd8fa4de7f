package server

import (
	"github.com/graphein/backend/internal/server/middleware"
	"github.com/graphein/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Document routes
	apiRoutes.POST("/documents", routes.UploadDocumentsHandler)
	apiRoutes.POST("/documents/url", routes.UploadDocumentFromURLHandler)
	apiRoutes.POST("/documents/process", routes.ProcessDocumentHandler)
	apiRoutes.GET("/documents", routes.ListDocumentsHandler)
	apiRoutes.GET("/documents/:id", routes.GetDocumentHandler)
	apiRoutes.GET("/documents/:id/download", routes.GetDocumentDownloadHandler)

	// Entity routes
	apiRoutes.GET("/entities", routes.FindEntitiesHandler)
	apiRoutes.POST("/entities", routes.CreateEntityHandler)
	apiRoutes.GET("/entities/:id", routes.GetEntityHandler)
	apiRoutes.PATCH("/entities/:id", routes.EditEntityHandler)
	apiRoutes.GET("/entities/:id/history", routes.GetEntityHistoryHandler)
	apiRoutes.GET("/entities/:id/diff/:other_id", routes.GetEntityDiffHandler)
	apiRoutes.GET("/entity-types", routes.GetEntityTypesHandler)

	// Relationship routes
	apiRoutes.GET("/relationships", routes.FindRelationshipsHandler)
	apiRoutes.POST("/relationships", routes.CreateRelationshipHandler)
	apiRoutes.GET("/relationships/:id", routes.GetRelationshipHandler)
	apiRoutes.PATCH("/relationships/:id", routes.EditRelationshipHandler)

	// Entity and relationship deletion share one endpoint; the id decides.
	apiRoutes.DELETE("/graph/:id", routes.DeleteGraphItemHandler)

	// Trace routes
	apiRoutes.GET("/traces", routes.FindTracesHandler)
	apiRoutes.POST("/traces/:id/verify", routes.VerifyTraceHandler)

	// Inference routes
	apiRoutes.POST("/inference/apply", routes.ApplyInferenceHandler)
	apiRoutes.GET("/inference/rules", routes.ListInferenceRulesHandler)
	apiRoutes.POST("/inference/rules", routes.CreateInferenceRuleHandler)
	apiRoutes.DELETE("/inference/rules/:name", routes.DeleteInferenceRuleHandler)
}
