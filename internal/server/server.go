package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/graphein/backend/internal/queue"
	mid "github.com/graphein/backend/internal/server/middleware"
	"github.com/graphein/backend/internal/storage"
	"github.com/graphein/backend/internal/util"
	"github.com/graphein/backend/pkg/inference"
	"github.com/graphein/backend/pkg/ingest"
	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/ner"
	"github.com/graphein/backend/pkg/pipeline"
	"github.com/graphein/backend/pkg/provenance"
	"github.com/graphein/backend/pkg/relation"
	neo4jstore "github.com/graphein/backend/pkg/store/neo4j"
	pgxstore "github.com/graphein/backend/pkg/store/pgx"
	"github.com/graphein/backend/pkg/version"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	databaseURL := util.GetEnv("DATABASE_URL")
	migrationsDir := util.GetEnvString("MIGRATIONS_DIR", "migrations")
	if err := pgxstore.RunMigrations(migrationsDir, databaseURL); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}

	conn, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()
	docStorage := pgxstore.NewStorage(conn)

	graph, err := neo4jstore.New(ctx, neo4jstore.ConfigFromEnv())
	if err != nil {
		logger.Fatal("Failed to connect to Neo4j", "err", err)
	}
	defer graph.Close(ctx)
	if err := graph.InitSchema(ctx); err != nil {
		logger.Warn("Failed to initialize graph schema", "err", err)
	}

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	s3 := storage.NewS3Client(ctx)

	ingestor := ingest.NewProcessor(ingest.ProcessorParams{
		DocumentsDir: util.GetEnvString("DOCUMENTS_DIR", "data/documents"),
		Archiver:     storage.NewS3Archiver(s3),
	})
	tagger := ner.NewLexiconTagger(loadLexicon(util.GetEnv("LEXICON_PATH")))
	recognizer := ner.NewRecognizer(tagger, graph)
	inferrer := relation.NewInferrer(graph)
	tracer := provenance.NewTracer()

	pipe, err := pipeline.New(pipeline.Params{
		Ingestor:   ingestor,
		Recognizer: recognizer,
		Inferrer:   inferrer,
		Tracer:     tracer,
		Documents:  docStorage,
		Traces:     docStorage,
	})
	if err != nil {
		logger.Fatal("Failed to build pipeline", "err", err)
	}

	app := &mid.App{
		DBConn:       conn,
		Queue:        ch,
		S3:           s3,
		Graph:        graph,
		Documents:    docStorage,
		Traces:       docStorage,
		Ingestor:     ingestor,
		Pipeline:     pipe,
		Versions:     version.NewService(graph),
		Inference:    inference.NewEngine(graph),
		MasterAPIKey: util.GetEnv("MASTER_API_KEY"),
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1G"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

// loadLexicon reads a JSON file mapping surface forms to NER labels. An
// empty path or unreadable file yields a tagger with only the builtin
// patterns.
func loadLexicon(path string) map[string]string {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read lexicon file", "path", path, "err", err)
		return nil
	}
	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("Failed to parse lexicon file", "path", path, "err", err)
		return nil
	}
	return entries
}
