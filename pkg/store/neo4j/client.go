// Package neo4jstore persists the knowledge graph in Neo4j. Entities are
// nodes carrying the Entity label plus one type label; relationships are
// typed edges between them.
package neo4jstore

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/graphein/backend/internal/util"
)

type Config struct {
	URI      string
	Username string
	Password string
	Database string

	ConnectTimeout time.Duration
	MaxPoolSize    int
}

// ConfigFromEnv reads the NEO4J_* variables.
func ConfigFromEnv() Config {
	return Config{
		URI:            util.GetEnvString("NEO4J_URI", "bolt://localhost:7687"),
		Username:       util.GetEnvString("NEO4J_USER", "neo4j"),
		Password:       util.GetEnvString("NEO4J_PASSWORD", ""),
		Database:       util.GetEnvString("NEO4J_DATABASE", ""),
		ConnectTimeout: time.Duration(util.GetEnvInt("NEO4J_TIMEOUT_SECONDS", 10)) * time.Second,
		MaxPoolSize:    util.GetEnvInt("NEO4J_MAX_POOL_SIZE", 50),
	}
}

// Store implements store.GraphStore on a Neo4j driver.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

// New connects to Neo4j and verifies connectivity before returning.
func New(ctx context.Context, cfg Config) (*Store, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		if cfg.MaxPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxPoolSize
		}
		c.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	// The database may still be starting when we come up; give it a few tries.
	err = util.RetryErrWithContext(ctx, 3, time.Second, func(ctx context.Context) error {
		verifyCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return driver.VerifyConnectivity(verifyCtx)
	})
	if err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}

	return &Store{driver: driver, database: cfg.Database}, nil
}

func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.driver == nil {
		return nil
	}
	return s.driver.Close(ctx)
}

func (s *Store) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.database,
	})
}

// InitSchema creates the uniqueness constraints the store relies on.
// Failures are returned but callers may treat them as non-fatal.
func (s *Store) InitSchema(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	stmts := []string{
		`CREATE CONSTRAINT entity_id_unique IF NOT EXISTS FOR (e:Entity) REQUIRE e.id IS UNIQUE`,
		`CREATE INDEX entity_name IF NOT EXISTS FOR (e:Entity) ON (e.name)`,
	}
	for _, stmt := range stmts {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return fmt.Errorf("neo4j: schema init: %w", err)
		}
		if _, err := res.Consume(ctx); err != nil {
			return fmt.Errorf("neo4j: schema init: %w", err)
		}
	}
	return nil
}
