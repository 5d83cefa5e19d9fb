package family

import (
	"strings"

	"github.com/google/uuid"
	"kinnected/backend/internal/graph"
	"kinnected/backend/pkg/apperrors"
)

// AddRelationRequest is the wire shape for relation creation
type AddRelationRequest struct {
	ToUser        string `json:"toUser"`
	RelationType  string `json:"relationType"`
	IsPlaceholder bool   `json:"isPlaceholder"`
	FullName      string `json:"fullName"`
	Nickname      string `json:"nickname"`
	Description   string `json:"description"`
}

// RealTarget identifies a registered account as the relation target
type RealTarget struct {
	UserID string
}

// PlaceholderTarget describes an unregistered relative
type PlaceholderTarget struct {
	FullName    string
	Nickname    string
	Description string
}

// AddRelationInput is the validated form of an add-relation request. Exactly
// one of Real or Placeholder is set, so downstream code never re-checks the
// conditional field requirements.
type AddRelationInput struct {
	Type        graph.RelationType
	Real        *RealTarget
	Placeholder *PlaceholderTarget
}

// ParseAddRelation validates the wire request and resolves it into one of the
// two target shapes
func ParseAddRelation(req AddRelationRequest) (*AddRelationInput, error) {
	relType := graph.RelationType(req.RelationType)
	if !relType.Valid() {
		return nil, apperrors.ValidationField("relationType", "Invalid relation type")
	}

	if req.IsPlaceholder {
		fullName := strings.TrimSpace(req.FullName)
		nickname := strings.TrimSpace(req.Nickname)
		if fullName == "" && nickname == "" {
			return nil, apperrors.Validation("Placeholder relations require a full name or nickname")
		}
		return &AddRelationInput{
			Type: relType,
			Placeholder: &PlaceholderTarget{
				FullName:    fullName,
				Nickname:    nickname,
				Description: strings.TrimSpace(req.Description),
			},
		}, nil
	}

	if req.ToUser == "" {
		return nil, apperrors.ValidationField("toUser", "Target user is required")
	}
	if _, err := uuid.Parse(req.ToUser); err != nil {
		return nil, apperrors.ValidationField("toUser", "Invalid target user ID")
	}

	return &AddRelationInput{
		Type: relType,
		Real: &RealTarget{UserID: req.ToUser},
	}, nil
}
