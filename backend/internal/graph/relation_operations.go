package graph

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"kinnected/backend/pkg/apperrors"
)

// ============================================================================
// Relation Operations
// ============================================================================

const relationProjection = `r {.id, .owner_id, .target_id, .relation_type, .status,
	.is_placeholder, .full_name, .nickname, .description, .placeholder_id,
	.created_at, .updated_at}`

const relationReturn = relationProjection + ` as rel,
	owner {.id, .username, .name, .profile_picture} as from_user,
	target {.id, .username, .name, .profile_picture} as to_user`

// PairKey computes the symmetric uniqueness key for a real relation between
// two accounts. The key is direction-independent so A->B and B->A collide.
func PairKey(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return userA + "|" + userB
}

// PlaceholderKey computes the upsert identity of a placeholder relation:
// owner plus case-folded display name plus relation type.
func PlaceholderKey(ownerID, name string, relType RelationType) string {
	return ownerID + "|" + strings.ToLower(strings.TrimSpace(name)) + "|" + string(relType)
}

// UpsertPlaceholder creates a placeholder relation, or updates the display
// fields of the existing one with the same owner, name, and type. The MERGE on
// placeholder_key makes resubmission idempotent. Returns created=false when an
// existing record was updated in place.
func (r *Repository) UpsertPlaceholder(ctx context.Context, ownerID string, relType RelationType, fullName, nickname, description string) (*Relation, bool, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	name := fullName
	if name == "" {
		name = nickname
	}

	now := time.Now().UTC().Format(time.RFC3339)
	freshID := uuid.NewString()
	freshPlaceholderID := uuid.NewString()

	query := `
		MATCH (owner:Account {id: $ownerID})
		MERGE (r:Relation {placeholder_key: $placeholderKey})
		ON CREATE SET
			r.id = $id,
			r.owner_id = $ownerID,
			r.relation_type = $relType,
			r.status = 'accepted',
			r.is_placeholder = true,
			r.full_name = $fullName,
			r.nickname = $nickname,
			r.description = $description,
			r.placeholder_id = $placeholderID,
			r.created_at = datetime($now),
			r.updated_at = datetime($now)
		ON MATCH SET
			r.full_name = $fullName,
			r.nickname = $nickname,
			r.description = $description,
			r.updated_at = datetime($now)
		MERGE (owner)-[:OWNS]->(r)
		WITH r, owner
		OPTIONAL MATCH (r)-[:TARGETS]->(target:Account)
		RETURN ` + relationReturn

	result, err := session.Run(ctx, query, map[string]interface{}{
		"ownerID":        ownerID,
		"placeholderKey": PlaceholderKey(ownerID, name, relType),
		"id":             freshID,
		"relType":        string(relType),
		"fullName":       fullName,
		"nickname":       nickname,
		"description":    description,
		"placeholderID":  freshPlaceholderID,
		"now":            now,
	})
	if err != nil {
		return nil, false, translateError(err, "Placeholder relation already exists", "relation")
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, false, translateError(err, "Placeholder relation already exists", "relation")
		}
		return nil, false, apperrors.NotFound("User not found")
	}

	rel := scanRelation(result.Record())
	// MERGE kept the original id on a match, so a fresh id means creation
	created := rel.ID == freshID

	r.logger.Debug("Placeholder relation upserted",
		zap.String("owner_id", ownerID),
		zap.String("relation_id", rel.ID),
		zap.Bool("created", created),
	)
	return rel, created, nil
}

// FindRelationBetween looks up the relation between two accounts in either
// direction, returning nil when none exists
func (r *Repository) FindRelationBetween(ctx context.Context, userA, userB string) (*Relation, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (r:Relation {pair_key: $pairKey})
		MATCH (owner:Account {id: r.owner_id})
		OPTIONAL MATCH (r)-[:TARGETS]->(target:Account)
		RETURN ` + relationReturn + `
		LIMIT 1
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"pairKey": PairKey(userA, userB),
	})
	if err != nil {
		return nil, apperrors.Server("Failed to look up relation", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, apperrors.Server("Failed to look up relation", err)
		}
		return nil, nil
	}

	return scanRelation(result.Record()), nil
}

// CreatePendingRelation creates a new pending relation between two existing
// accounts. A concurrent duplicate loses to the pair_key constraint and
// surfaces as a conflict.
func (r *Repository) CreatePendingRelation(ctx context.Context, fromID, toID string, relType RelationType) (*Relation, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		MATCH (owner:Account {id: $fromID})
		MATCH (target:Account {id: $toID})
		CREATE (r:Relation {
			id: $id,
			owner_id: $fromID,
			target_id: $toID,
			relation_type: $relType,
			status: 'pending',
			is_placeholder: false,
			pair_key: $pairKey,
			created_at: datetime($now),
			updated_at: datetime($now)
		})
		CREATE (owner)-[:OWNS]->(r)-[:TARGETS]->(target)
		RETURN ` + relationReturn

	result, err := session.Run(ctx, query, map[string]interface{}{
		"fromID":  fromID,
		"toID":    toID,
		"id":      uuid.NewString(),
		"relType": string(relType),
		"pairKey": PairKey(fromID, toID),
		"now":     now,
	})
	if err != nil {
		return nil, translateError(err, "Relation already exists", "relation")
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, translateError(err, "Relation already exists", "relation")
		}
		return nil, apperrors.NotFound("User not found")
	}

	rel := scanRelation(result.Record())
	r.logger.Info("Pending relation created",
		zap.String("relation_id", rel.ID),
		zap.String("from", fromID),
		zap.String("to", toID),
	)
	return rel, nil
}

// ReviveRejectedRelation overwrites a rejected relation with a fresh pending
// request, possibly flipping its direction. Reusing the record avoids
// colliding with the pair_key constraint on resubmission after a decline.
// Returns nil when the relation no longer exists or is not rejected.
func (r *Repository) ReviveRejectedRelation(ctx context.Context, relationID, fromID, toID string, relType RelationType) (*Relation, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		MATCH (r:Relation {id: $relationID})
		WHERE r.status = 'rejected'
		MATCH (owner:Account {id: $fromID})
		MATCH (target:Account {id: $toID})
		OPTIONAL MATCH ()-[oldOwns:OWNS]->(r)
		OPTIONAL MATCH (r)-[oldTargets:TARGETS]->()
		DELETE oldOwns, oldTargets
		CREATE (owner)-[:OWNS]->(r)-[:TARGETS]->(target)
		SET r.owner_id = $fromID,
		    r.target_id = $toID,
		    r.relation_type = $relType,
		    r.status = 'pending',
		    r.updated_at = datetime($now)
		RETURN ` + relationReturn

	result, err := session.Run(ctx, query, map[string]interface{}{
		"relationID": relationID,
		"fromID":     fromID,
		"toID":       toID,
		"relType":    string(relType),
		"now":        now,
	})
	if err != nil {
		return nil, apperrors.Server("Failed to revive relation", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, apperrors.Server("Failed to revive relation", err)
		}
		return nil, nil
	}

	rel := scanRelation(result.Record())
	r.logger.Info("Rejected relation revived",
		zap.String("relation_id", rel.ID),
		zap.String("from", fromID),
		zap.String("to", toID),
	)
	return rel, nil
}

// AcceptedRelations returns every accepted relation where the account is
// owner or target, parties resolved to display summaries. A party whose
// account was deleted resolves to nil; the relation record itself survives.
func (r *Repository) AcceptedRelations(ctx context.Context, userID string) ([]*Relation, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (r:Relation)
		WHERE r.status = 'accepted' AND (r.owner_id = $userID OR r.target_id = $userID)
		OPTIONAL MATCH (owner:Account {id: r.owner_id})
		OPTIONAL MATCH (r)-[:TARGETS]->(target:Account)
		RETURN ` + relationReturn + `
		ORDER BY r.created_at
	`

	return r.collectRelations(ctx, session, query, map[string]interface{}{"userID": userID})
}

// PendingRequests returns every pending relation targeting the account, with
// the requester resolved. This is the account's actionable inbox.
func (r *Repository) PendingRequests(ctx context.Context, userID string) ([]*Relation, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (r:Relation)
		WHERE r.target_id = $userID AND r.status = 'pending'
		OPTIONAL MATCH (owner:Account {id: r.owner_id})
		OPTIONAL MATCH (r)-[:TARGETS]->(target:Account)
		RETURN ` + relationReturn + `
		ORDER BY r.created_at
	`

	return r.collectRelations(ctx, session, query, map[string]interface{}{"userID": userID})
}

// UpdateRequestStatus transitions a pending request targeting the caller to the
// given status. Returns nil when no such pending request exists; "wrong state"
// and "does not exist" are indistinguishable on purpose.
func (r *Repository) UpdateRequestStatus(ctx context.Context, requestID, callerID string, status RelationStatus) (*Relation, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		MATCH (r:Relation {id: $requestID})
		WHERE r.target_id = $callerID AND r.status = 'pending'
		SET r.status = $status,
		    r.updated_at = datetime($now)
		WITH r
		OPTIONAL MATCH (owner:Account {id: r.owner_id})
		OPTIONAL MATCH (r)-[:TARGETS]->(target:Account)
		RETURN ` + relationReturn

	result, err := session.Run(ctx, query, map[string]interface{}{
		"requestID": requestID,
		"callerID":  callerID,
		"status":    string(status),
		"now":       now,
	})
	if err != nil {
		return nil, apperrors.Server("Failed to update request", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, apperrors.Server("Failed to update request", err)
		}
		return nil, nil
	}

	rel := scanRelation(result.Record())
	r.logger.Info("Request status updated",
		zap.String("relation_id", rel.ID),
		zap.String("status", string(status)),
	)
	return rel, nil
}

func (r *Repository) collectRelations(ctx context.Context, session neo4j.SessionWithContext, query string, params map[string]interface{}) ([]*Relation, error) {
	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, apperrors.Server("Failed to list relations", err)
	}

	relations := []*Relation{}
	for result.Next(ctx) {
		relations = append(relations, scanRelation(result.Record()))
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.Server("Failed to list relations", err)
	}

	return relations, nil
}

// ============================================================================
// Scanning
// ============================================================================

func scanRelation(record *neo4j.Record) *Relation {
	rel := getMapFromRecord(record, "rel")
	if rel == nil {
		return nil
	}

	relation := &Relation{
		ID:            getStringFromMap(rel, "id"),
		Type:          RelationType(getStringFromMap(rel, "relation_type")),
		Status:        RelationStatus(getStringFromMap(rel, "status")),
		IsPlaceholder: getBoolFromMap(rel, "is_placeholder"),
		FullName:      getStringFromMap(rel, "full_name"),
		Nickname:      getStringFromMap(rel, "nickname"),
		Description:   getStringFromMap(rel, "description"),
		PlaceholderID: getStringFromMap(rel, "placeholder_id"),
		CreatedAt:     getTimeFromMap(rel, "created_at"),
		UpdatedAt:     getTimeFromMap(rel, "updated_at"),
	}

	relation.FromUser = scanSummary(getMapFromRecord(record, "from_user"))
	relation.ToUser = scanSummary(getMapFromRecord(record, "to_user"))

	return relation
}

func scanSummary(m map[string]interface{}) *AccountSummary {
	if m == nil {
		return nil
	}
	return &AccountSummary{
		ID:             getStringFromMap(m, "id"),
		Username:       getStringFromMap(m, "username"),
		FullName:       getStringFromMap(m, "name"),
		ProfilePicture: getStringFromMap(m, "profile_picture"),
	}
}
