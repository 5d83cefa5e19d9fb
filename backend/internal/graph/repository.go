package graph

import (
	"context"
	"errors"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"kinnected/backend/pkg/apperrors"
	"kinnected/backend/pkg/logger"
)

// Repository handles all Neo4j database operations
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Named("graph"),
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// schemaStatements are the uniqueness constraints and lookup indexes the data
// model relies on. The pair_key and placeholder_key constraints are the final
// arbiter for duplicate-relation races: concurrent identical requests can both
// pass the existence pre-check, and the loser fails here with a conflict.
// Properties absent from a node are exempt from its uniqueness constraint, so
// pair_key (set only on real relations) and placeholder_key (set only on
// placeholders) act as partial indexes.
var schemaStatements = []string{
	`CREATE CONSTRAINT account_id IF NOT EXISTS FOR (a:Account) REQUIRE a.id IS UNIQUE`,
	`CREATE CONSTRAINT account_username IF NOT EXISTS FOR (a:Account) REQUIRE a.username_lower IS UNIQUE`,
	`CREATE CONSTRAINT account_email IF NOT EXISTS FOR (a:Account) REQUIRE a.email IS UNIQUE`,
	`CREATE CONSTRAINT relation_id IF NOT EXISTS FOR (r:Relation) REQUIRE r.id IS UNIQUE`,
	`CREATE CONSTRAINT relation_pair IF NOT EXISTS FOR (r:Relation) REQUIRE r.pair_key IS UNIQUE`,
	`CREATE CONSTRAINT relation_placeholder IF NOT EXISTS FOR (r:Relation) REQUIRE r.placeholder_key IS UNIQUE`,
	`CREATE CONSTRAINT relation_placeholder_id IF NOT EXISTS FOR (r:Relation) REQUIRE r.placeholder_id IS UNIQUE`,
	`CREATE INDEX relation_owner IF NOT EXISTS FOR (r:Relation) ON (r.owner_id)`,
	`CREATE INDEX relation_target IF NOT EXISTS FOR (r:Relation) ON (r.target_id)`,
}

// EnsureSchema creates the constraints and indexes if they do not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, stmt := range schemaStatements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return apperrors.Server("Failed to apply schema", err)
		}
	}

	r.logger.Info("Graph schema ensured", zap.Int("statements", len(schemaStatements)))
	return nil
}

// translateError maps Neo4j constraint violations onto the conflict error kind
// so persistence detail never leaks to callers. conflictMessage names the
// uniqueness rule that a constraint violation on this query would mean.
func translateError(err error, conflictMessage, field string) error {
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) && strings.Contains(neoErr.Code, "ConstraintValidationFailed") {
		return apperrors.Conflict(conflictMessage, field)
	}
	return apperrors.Server("Database operation failed", err)
}
