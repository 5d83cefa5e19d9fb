package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairKeyIsSymmetric(t *testing.T) {
	assert.Equal(t, PairKey("a", "b"), PairKey("b", "a"))
	assert.Equal(t, "a|b", PairKey("b", "a"))
	assert.NotEqual(t, PairKey("a", "b"), PairKey("a", "c"))
}

func TestPlaceholderKeyFoldsName(t *testing.T) {
	assert.Equal(t,
		PlaceholderKey("owner", "Margaret", RelationMother),
		PlaceholderKey("owner", "  mArGaReT ", RelationMother),
	)

	// Different type or owner means a different relative
	assert.NotEqual(t,
		PlaceholderKey("owner", "Margaret", RelationMother),
		PlaceholderKey("owner", "Margaret", RelationSpouse),
	)
	assert.NotEqual(t,
		PlaceholderKey("owner-a", "Margaret", RelationMother),
		PlaceholderKey("owner-b", "Margaret", RelationMother),
	)
}

func TestRelationTypeValid(t *testing.T) {
	for _, rt := range RelationTypes {
		assert.True(t, rt.Valid())
	}
	assert.False(t, RelationType("cousin").Valid())
	assert.False(t, RelationType("").Valid())
}

func TestAccountUpdateEmpty(t *testing.T) {
	assert.True(t, (&AccountUpdate{}).Empty())

	bio := "hello"
	assert.False(t, (&AccountUpdate{Bio: &bio}).Empty())
}

func TestRelationOwnerAndTarget(t *testing.T) {
	rel := &Relation{
		FromUser: &AccountSummary{ID: "from"},
		ToUser:   &AccountSummary{ID: "to"},
	}
	assert.Equal(t, "from", rel.OwnerID())
	assert.Equal(t, "to", rel.TargetID())

	placeholder := &Relation{FromUser: &AccountSummary{ID: "from"}}
	assert.Equal(t, "", placeholder.TargetID())
}
