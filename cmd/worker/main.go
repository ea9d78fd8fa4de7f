package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/graphein/backend/internal/queue"
	"github.com/graphein/backend/internal/storage"
	"github.com/graphein/backend/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/graphein/backend/pkg/ingest"
	"github.com/graphein/backend/pkg/leaselock"
	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/logger/console"
	"github.com/graphein/backend/pkg/ner"
	"github.com/graphein/backend/pkg/pipeline"
	"github.com/graphein/backend/pkg/provenance"
	"github.com/graphein/backend/pkg/relation"
	neo4jstore "github.com/graphein/backend/pkg/store/neo4j"
	pgxstore "github.com/graphein/backend/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	// Init s3 client
	client := storage.NewS3Client(ctx)

	// Init pgx client
	pgConn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()
	docStorage := pgxstore.NewStorage(pgConn)
	locks := leaselock.New(pgConn)

	// Init neo4j graph store
	graph, err := neo4jstore.New(ctx, neo4jstore.ConfigFromEnv())
	if err != nil {
		logger.Fatal("Unable to connect to Neo4j", "err", err)
	}
	defer graph.Close(ctx)

	// Extraction pipeline
	ingestor := ingest.NewProcessor(ingest.ProcessorParams{
		DocumentsDir: util.GetEnvString("DOCUMENTS_DIR", "data/documents"),
		Archiver:     storage.NewS3Archiver(client),
	})
	tagger := ner.NewLexiconTagger(nil)
	pipe, err := pipeline.New(pipeline.Params{
		Ingestor:   ingestor,
		Recognizer: ner.NewRecognizer(tagger, graph),
		Inferrer:   relation.NewInferrer(graph),
		Tracer:     provenance.NewTracer(),
		Documents:  docStorage,
		Traces:     docStorage,
	})
	if err != nil {
		logger.Fatal("Failed to build pipeline", "err", err)
	}

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	// Init rabbitmq queues if not exist
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	maxRetries := util.GetEnvInt("QUEUE_MAX_RETRIES", 10)

	logger.Info("Listening for messages")

	// Single consumer channel with prefetch=1 so only one message is
	// processed at a time across all queues.
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	err = consumerCh.Qos(1, 0, true)
	if err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	type queuedMessage struct {
		msg       amqp.Delivery
		queueName string
	}

	messageChan := make(chan queuedMessage)

	for _, queueName := range queue.Queues {
		go func(qName string) {
			consumerTag := fmt.Sprintf("%s_consumer", qName)
			msgs, err := consumerCh.Consume(
				qName,
				consumerTag,
				false, // autoAck
				false, // exclusive
				false, // noLocal
				false, // noWait
				nil,   // args
			)
			if err != nil {
				logger.Fatal("Failed to start consuming", "queue", qName, "err", err)
			}

			for {
				select {
				case <-ctx.Done():
					logger.Info("Stopping consumer", "queue", qName)
					return
				case msg, ok := <-msgs:
					if !ok {
						logger.Info("Message channel closed", "queue", qName)
						return
					}
					messageChan <- queuedMessage{msg: msg, queueName: qName}
				}
			}
		}(queueName)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case qm := <-messageChan:
				startTime := time.Now()
				logger.Info("Received message", "queue", qm.queueName)

				var processingErr error
				switch qm.queueName {
				case queue.ExtractQueue:
					processingErr = queue.ProcessExtractFile(ctx, client, locks, pipe, string(qm.msg.Body))
				case queue.URLQueue:
					processingErr = queue.ProcessExtractURL(ctx, locks, pipe, string(qm.msg.Body))
				}

				// If there was an error send to retry or dead-letter, otherwise ack the message
				if processingErr != nil {
					logger.Error("Error processing message", "queue", qm.queueName, "err", processingErr)
					queue.HandleProcessingError(consumerCh, qm.msg, qm.queueName, maxRetries)
				} else {
					err = qm.msg.Ack(false)
					if err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "queue", qm.queueName)
				}

				processingDuration := time.Since(startTime)
				hours := int(processingDuration.Hours())
				minutes := int(processingDuration.Minutes()) % 60
				seconds := int(processingDuration.Seconds()) % 60
				logger.Info(
					"Processing time",
					"duration", fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds),
				)
				logger.Info("Waiting for next message")
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}
