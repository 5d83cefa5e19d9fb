// Package family implements the relationship graph operations: relation
// creation and upsert, symmetric listings, and the connection-request
// workflow.
package family

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"kinnected/backend/internal/graph"
	"kinnected/backend/pkg/apperrors"
	"kinnected/backend/pkg/logger"
)

// Repository is the slice of the graph store the family service needs
type Repository interface {
	GetAccountByID(ctx context.Context, id string) (*graph.Account, error)
	UpsertPlaceholder(ctx context.Context, ownerID string, relType graph.RelationType, fullName, nickname, description string) (*graph.Relation, bool, error)
	FindRelationBetween(ctx context.Context, userA, userB string) (*graph.Relation, error)
	CreatePendingRelation(ctx context.Context, fromID, toID string, relType graph.RelationType) (*graph.Relation, error)
	ReviveRejectedRelation(ctx context.Context, relationID, fromID, toID string, relType graph.RelationType) (*graph.Relation, error)
	AcceptedRelations(ctx context.Context, userID string) ([]*graph.Relation, error)
	PendingRequests(ctx context.Context, userID string) ([]*graph.Relation, error)
	UpdateRequestStatus(ctx context.Context, requestID, callerID string, status graph.RelationStatus) (*graph.Relation, error)
}

// Service handles family-graph operations
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a family service
func NewService(repo Repository) *Service {
	return &Service{
		repo:   repo,
		logger: logger.Named("family"),
	}
}

// AddOrUpdate creates a relation for the owner, or updates an existing
// placeholder in place. Returns created=false when a placeholder resubmission
// updated the existing record.
func (s *Service) AddOrUpdate(ctx context.Context, ownerID string, input *AddRelationInput) (*graph.Relation, bool, error) {
	if input.Placeholder != nil {
		return s.addPlaceholder(ctx, ownerID, input)
	}
	return s.addRealRelation(ctx, ownerID, input)
}

// A placeholder cannot reject itself, so it is created already accepted.
func (s *Service) addPlaceholder(ctx context.Context, ownerID string, input *AddRelationInput) (*graph.Relation, bool, error) {
	p := input.Placeholder
	return s.repo.UpsertPlaceholder(ctx, ownerID, input.Type, p.FullName, p.Nickname, p.Description)
}

func (s *Service) addRealRelation(ctx context.Context, ownerID string, input *AddRelationInput) (*graph.Relation, bool, error) {
	targetID := input.Real.UserID

	if targetID == ownerID {
		return nil, false, apperrors.Validation("Cannot create a relation with yourself")
	}

	// Both parties must exist; check them concurrently
	var owner, target *graph.Account
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owner, err = s.repo.GetAccountByID(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		target, err = s.repo.GetAccountByID(gctx, targetID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	if owner == nil || target == nil {
		return nil, false, apperrors.NotFound("User not found")
	}

	existing, err := s.repo.FindRelationBetween(ctx, ownerID, targetID)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		if existing.Status != graph.StatusRejected {
			return nil, false, apperrors.Conflict("Relation already exists", "relation")
		}

		// A declined request may be resubmitted; the record is reset to
		// pending rather than recreated so the pair constraint holds
		revived, err := s.repo.ReviveRejectedRelation(ctx, existing.ID, ownerID, targetID, input.Type)
		if err != nil {
			return nil, false, err
		}
		if revived == nil {
			// Lost a race with a concurrent resubmission
			return nil, false, apperrors.Conflict("Relation already exists", "relation")
		}
		return revived, true, nil
	}

	rel, err := s.repo.CreatePendingRelation(ctx, ownerID, targetID, input.Type)
	if err != nil {
		return nil, false, err
	}
	return rel, true, nil
}

// Relations lists the accepted relations of the subject account (default: the
// viewer), projected into the flat display shape. Pending and rejected
// relations never appear here.
func (s *Service) Relations(ctx context.Context, viewerID, subjectID string) ([]*graph.RelationView, error) {
	if subjectID == "" {
		subjectID = viewerID
	}

	relations, err := s.repo.AcceptedRelations(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	views := make([]*graph.RelationView, 0, len(relations))
	for _, rel := range relations {
		views = append(views, BuildView(rel, subjectID, viewerID))
	}
	return views, nil
}

// PendingRequests returns the caller's inbox of pending requests
func (s *Service) PendingRequests(ctx context.Context, userID string) ([]*graph.Relation, error) {
	return s.repo.PendingRequests(ctx, userID)
}

// Accept transitions a pending request targeting the caller to accepted.
// Missing, foreign, and already-decided requests all fail with NotFound.
func (s *Service) Accept(ctx context.Context, callerID, requestID string) (*graph.Relation, error) {
	rel, err := s.repo.UpdateRequestStatus(ctx, requestID, callerID, graph.StatusAccepted)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, apperrors.NotFound("Connection request not found")
	}
	return rel, nil
}

// Reject transitions a pending request targeting the caller to rejected
func (s *Service) Reject(ctx context.Context, callerID, requestID string) error {
	rel, err := s.repo.UpdateRequestStatus(ctx, requestID, callerID, graph.StatusRejected)
	if err != nil {
		return err
	}
	if rel == nil {
		return apperrors.NotFound("Connection request not found")
	}
	return nil
}

// BuildView projects a relation into the display shape for the subject
// account: the other party's identity, or the placeholder's own display name.
// The owner's private annotations are stripped for any other viewer.
func BuildView(rel *graph.Relation, subjectID, viewerID string) *graph.RelationView {
	view := &graph.RelationView{
		ID:            rel.ID,
		RelationType:  rel.Type,
		IsPlaceholder: rel.IsPlaceholder,
		Status:        rel.Status,
	}

	if rel.IsPlaceholder {
		view.DisplayName = rel.FullName
		if view.DisplayName == "" {
			view.DisplayName = rel.Nickname
		}
		if viewerID == rel.OwnerID() {
			view.Nickname = rel.Nickname
			view.Description = rel.Description
		}
		return view
	}

	other := rel.ToUser
	if rel.TargetID() == subjectID {
		other = rel.FromUser
	}
	if other != nil {
		view.DisplayName = other.FullName
		view.UserID = other.ID
		view.Username = other.Username
		view.ProfilePicture = other.ProfilePicture
	}
	return view
}
