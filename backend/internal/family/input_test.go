package family

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kinnected/backend/internal/graph"
	"kinnected/backend/pkg/apperrors"
)

func TestParseAddRelationReal(t *testing.T) {
	target := uuid.NewString()
	input, err := ParseAddRelation(AddRelationRequest{
		ToUser:       target,
		RelationType: "sibling",
	})
	require.NoError(t, err)
	require.NotNil(t, input.Real)
	assert.Nil(t, input.Placeholder)
	assert.Equal(t, graph.RelationSibling, input.Type)
	assert.Equal(t, target, input.Real.UserID)
}

func TestParseAddRelationPlaceholder(t *testing.T) {
	input, err := ParseAddRelation(AddRelationRequest{
		RelationType:  "mother",
		IsPlaceholder: true,
		FullName:      "  Margaret  ",
		Description:   "Lives in Porto",
	})
	require.NoError(t, err)
	require.NotNil(t, input.Placeholder)
	assert.Nil(t, input.Real)
	assert.Equal(t, "Margaret", input.Placeholder.FullName)
	assert.Equal(t, "Lives in Porto", input.Placeholder.Description)
}

func TestParseAddRelationInvalidType(t *testing.T) {
	_, err := ParseAddRelation(AddRelationRequest{
		ToUser:       uuid.NewString(),
		RelationType: "cousin",
	})
	require.Error(t, err)

	appErr := apperrors.AsError(err)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, "relationType", appErr.Field)
}

func TestParseAddRelationPlaceholderNeedsName(t *testing.T) {
	_, err := ParseAddRelation(AddRelationRequest{
		RelationType:  "father",
		IsPlaceholder: true,
		FullName:      "   ",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestParseAddRelationRealNeedsTarget(t *testing.T) {
	_, err := ParseAddRelation(AddRelationRequest{RelationType: "spouse"})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = ParseAddRelation(AddRelationRequest{
		RelationType: "spouse",
		ToUser:       "not-a-uuid",
	})
	require.Error(t, err)
	assert.Equal(t, "toUser", apperrors.AsError(err).Field)
}
