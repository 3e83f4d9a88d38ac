package session

import (
	"context"
	"testing"
	"time"

	"famtreebot/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client)
}

func TestRedisStoreGetMissingReturnsEmptySession(t *testing.T) {
	store := newRedisStore(t)

	sess, err := store.Get(context.Background(), "+15550001")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, State(""), sess.State)
	assert.Nil(t, sess.AddMember)
	assert.Nil(t, sess.Edit)
	assert.Nil(t, sess.Event)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	dob := time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)
	sess := &Session{
		State: StateAddMemberPhone,
		AddMember: &AddMemberDraft{
			Name:       "Root",
			DOB:        &dob,
			Gender:     models.GenderFemale,
			RelativeID: 7,
		},
	}

	require.NoError(t, store.Save(ctx, "+15550001", sess))

	got, err := store.Get(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestRedisStoreDelete(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "+15550001", &Session{State: StateDeleteConfirm}))
	require.NoError(t, store.Delete(ctx, "+15550001"))

	got, err := store.Get(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, State(""), got.State)
}

func TestRedisStoreKeysAreIsolatedPerUser(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "+15550001", &Session{State: StateEditSelectField, Edit: &EditDraft{MemberID: 3}}))
	require.NoError(t, store.Save(ctx, "+15550002", &Session{State: StateEventDate, Event: &EventDraft{MemberID: 9, EventType: "Birthday"}}))

	first, err := store.Get(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, StateEditSelectField, first.State)
	require.NotNil(t, first.Edit)
	assert.Equal(t, int64(3), first.Edit.MemberID)

	second, err := store.Get(ctx, "+15550002")
	require.NoError(t, err)
	assert.Equal(t, StateEventDate, second.State)
	require.NotNil(t, second.Event)
	assert.Equal(t, "Birthday", second.Event.EventType)
}

func TestMemoryStoreMatchesRedisBehaviour(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	got, err := store.Get(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, State(""), got.State)

	sess := &Session{State: StateAddMemberDOB, AddMember: &AddMemberDraft{Name: "Root"}}
	require.NoError(t, store.Save(ctx, "+15550001", sess))

	// Mutations after Save must not leak into the stored copy.
	sess.AddMember.Name = "Changed"

	got, err = store.Get(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, "Root", got.AddMember.Name)

	require.NoError(t, store.Delete(ctx, "+15550001"))
	got, err = store.Get(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, State(""), got.State)
}
