package middleware

import (
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/graphein/backend/pkg/inference"
	"github.com/graphein/backend/pkg/ingest"
	"github.com/graphein/backend/pkg/pipeline"
	"github.com/graphein/backend/pkg/store"
	"github.com/graphein/backend/pkg/version"
)

// App bundles the shared dependencies every request handler can reach
// through its context.
type App struct {
	DBConn    *pgxpool.Pool
	Queue     *amqp091.Channel
	S3        *s3.Client
	Graph     store.GraphStore
	Documents store.DocumentStore
	Traces    store.TraceStore
	Ingestor  *ingest.Processor
	Pipeline  *pipeline.Pipeline
	Versions  *version.Service
	Inference *inference.Engine

	MasterAPIKey string
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
