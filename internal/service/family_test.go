package service

import (
	"context"
	"testing"
	"time"

	"famtreebot/internal/models"
	"famtreebot/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFamilyFixture(t *testing.T) (*FamilyService, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	return NewFamilyService(store.Users(), store.Trees(), store.Members(), store.Events(), testLogger()), store
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	family, _ := newFamilyFixture(t)
	ctx := context.Background()

	first, err := family.EnsureUser(ctx, "+15550001")
	require.NoError(t, err)

	second, err := family.EnsureUser(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := family.EnsureUser(ctx, "+15550002")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestGetMemberNotFound(t *testing.T) {
	family, _ := newFamilyFixture(t)

	_, err := family.GetMember(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddRelationshipRejectsCrossTreeMembers(t *testing.T) {
	family, _ := newFamilyFixture(t)
	ctx := context.Background()

	owner, err := family.EnsureUser(ctx, "+15550001")
	require.NoError(t, err)

	treeA, err := family.CreateTree(ctx, owner)
	require.NoError(t, err)
	treeB, err := family.CreateTree(ctx, owner)
	require.NoError(t, err)

	parent, err := family.CreateMember(ctx, &models.Member{TreeID: treeA.ID, Name: "Parent", Gender: models.GenderMale, GenerationLevel: 1})
	require.NoError(t, err)
	stranger, err := family.CreateMember(ctx, &models.Member{TreeID: treeB.ID, Name: "Stranger", Gender: models.GenderFemale, GenerationLevel: 1})
	require.NoError(t, err)

	err = family.AddRelationship(ctx, treeA.ID, parent.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	relationships, err := family.RelationshipsOf(ctx, treeA.ID)
	require.NoError(t, err)
	assert.Empty(t, relationships)
}

func TestAddEventRequiresExistingMember(t *testing.T) {
	family, _ := newFamilyFixture(t)

	_, err := family.AddEvent(context.Background(), 999, "Birthday", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTreeCascades(t *testing.T) {
	family, store := newFamilyFixture(t)
	ctx := context.Background()

	owner, err := family.EnsureUser(ctx, "+15550001")
	require.NoError(t, err)

	tree, err := family.CreateTree(ctx, owner)
	require.NoError(t, err)

	parent, err := family.CreateMember(ctx, &models.Member{TreeID: tree.ID, Name: "Parent", Gender: models.GenderFemale, GenerationLevel: 1})
	require.NoError(t, err)
	child, err := family.CreateMember(ctx, &models.Member{TreeID: tree.ID, Name: "Child", Gender: models.GenderMale, GenerationLevel: 2})
	require.NoError(t, err)
	require.NoError(t, family.AddRelationship(ctx, tree.ID, parent.ID, child.ID))

	_, err = family.AddEvent(ctx, parent.ID, "Birthday", time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, family.DeleteTree(ctx, tree.ID))

	members, err := family.MembersOf(ctx, tree.ID)
	require.NoError(t, err)
	assert.Empty(t, members)

	relationships, err := family.RelationshipsOf(ctx, tree.ID)
	require.NoError(t, err)
	assert.Empty(t, relationships)

	events, err := family.EventsOf(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, events)

	grant, err := store.Trees().GetGrant(ctx, tree.ID, owner.ID)
	require.NoError(t, err)
	assert.Nil(t, grant)
}
