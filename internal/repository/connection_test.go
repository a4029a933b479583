package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"alumnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionRepository_PairIsUniqueInBothDirections(t *testing.T) {
	db := newTestDB(t)
	repo := NewConnectionRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	require.NoError(t, repo.Create(ctx, &models.Connection{RequesterID: alice.ID, ReceiverID: bob.ID}))

	err := repo.Create(ctx, &models.Connection{RequesterID: bob.ID, ReceiverID: alice.ID})
	assert.True(t, errors.Is(err, ErrPairExists))

	var count int64
	require.NoError(t, db.Model(&models.Connection{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	conn, err := repo.GetBetween(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, conn)
	assert.Equal(t, alice.ID, conn.RequesterID)
	assert.Equal(t, models.ConnectionStatusPending, conn.Status)
}

func TestConnectionRepository_SelfRequestRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewConnectionRepository(db)
	alice := createUser(t, db, "alice")

	err := repo.Create(context.Background(), &models.Connection{RequesterID: alice.ID, ReceiverID: alice.ID})
	assert.True(t, models.HasCode(err, models.CodeSelfRequest))
}

func TestConnectionRepository_GetBetween_None(t *testing.T) {
	db := newTestDB(t)
	repo := NewConnectionRepository(db)

	conn, err := repo.GetBetween(context.Background(), 1, 2)
	assert.NoError(t, err)
	assert.Nil(t, conn)
}

func TestConnectionRepository_Accept(t *testing.T) {
	db := newTestDB(t)
	repo := NewConnectionRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	require.NoError(t, repo.Create(ctx, &models.Connection{RequesterID: alice.ID, ReceiverID: bob.ID}))

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	conn, err := repo.Accept(ctx, bob.ID, alice.ID, 10, now)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionStatusAccepted, conn.Status)

	var gems []int
	require.NoError(t, db.Model(&models.User{}).Order("id").Pluck("alumni_gems", &gems).Error)
	assert.Equal(t, []int{10, 10}, gems)

	t.Run("second accept is not found", func(t *testing.T) {
		_, err := repo.Accept(ctx, bob.ID, alice.ID, 10, now)
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})

	t.Run("requester cannot accept their own request", func(t *testing.T) {
		carol := createUser(t, db, "carol")
		require.NoError(t, repo.Create(ctx, &models.Connection{RequesterID: carol.ID, ReceiverID: alice.ID}))
		_, err := repo.Accept(ctx, carol.ID, alice.ID, 10, now)
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})
}

func TestConnectionRepository_AcceptRollsBackWhenRewardFails(t *testing.T) {
	db := newTestDB(t)
	repo := NewConnectionRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	require.NoError(t, repo.Create(ctx, &models.Connection{RequesterID: alice.ID, ReceiverID: bob.ID}))

	// a soft-deleted requester makes the two-row reward update come up short
	require.NoError(t, db.Delete(alice).Error)

	_, err := repo.Accept(ctx, bob.ID, alice.ID, 10, time.Now())
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeInternal))

	conn, err := repo.GetBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionStatusPending, conn.Status)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, bob.ID).Error)
	assert.Zero(t, reloaded.AlumniGems)
}

func TestConnectionRepository_Ignore(t *testing.T) {
	db := newTestDB(t)
	repo := NewConnectionRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	require.NoError(t, repo.Create(ctx, &models.Connection{RequesterID: alice.ID, ReceiverID: bob.ID}))

	conn, err := repo.Ignore(ctx, bob.ID, alice.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionStatusIgnored, conn.Status)

	_, err = repo.Accept(ctx, bob.ID, alice.ID, 10, time.Now())
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, alice.ID).Error)
	assert.Zero(t, reloaded.AlumniGems)
}

func TestConnectionRepository_DeleteAccepted(t *testing.T) {
	db := newTestDB(t)
	repo := NewConnectionRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	require.NoError(t, repo.Create(ctx, &models.Connection{RequesterID: alice.ID, ReceiverID: bob.ID}))

	_, err := repo.DeleteAccepted(ctx, alice.ID, bob.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound), "pending pair cannot be removed")

	_, err = repo.Accept(ctx, bob.ID, alice.ID, 10, time.Now())
	require.NoError(t, err)

	conns, err := repo.ListConnections(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, "bob", conns[0].Username)

	removed, err := repo.DeleteAccepted(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, removed.RequesterID)

	conns, err = repo.ListConnections(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, conns)

	existing, err := repo.GetBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, existing)
}

func TestConnectionRepository_ListConnectionsBothDirections(t *testing.T) {
	db := newTestDB(t)
	repo := NewConnectionRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	dave := createUser(t, db, "dave")

	require.NoError(t, repo.Create(ctx, &models.Connection{RequesterID: alice.ID, ReceiverID: bob.ID}))
	require.NoError(t, repo.Create(ctx, &models.Connection{RequesterID: carol.ID, ReceiverID: alice.ID}))
	require.NoError(t, repo.Create(ctx, &models.Connection{RequesterID: dave.ID, ReceiverID: alice.ID}))
	_, err := repo.Accept(ctx, bob.ID, alice.ID, 1, time.Now())
	require.NoError(t, err)
	_, err = repo.Accept(ctx, alice.ID, carol.ID, 1, time.Now())
	require.NoError(t, err)

	conns, err := repo.ListConnections(ctx, alice.ID)
	require.NoError(t, err)
	names := make([]string, 0, len(conns))
	for _, c := range conns {
		names = append(names, c.Username)
	}
	assert.Equal(t, []string{"bob", "carol"}, names)
}

func TestConnectionRepository_ListPendingAndSent(t *testing.T) {
	db := newTestDB(t)
	repo := NewConnectionRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob", func(u *models.User) { u.Profession = "Engineer" })
	carol := createUser(t, db, "carol")

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &models.Connection{RequesterID: bob.ID, ReceiverID: alice.ID, CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &models.Connection{RequesterID: carol.ID, ReceiverID: alice.ID, CreatedAt: base.Add(time.Hour)}))

	pending, err := repo.ListPendingFor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "carol", pending[0].RequesterUsername, "newest first")
	assert.Equal(t, "bob", pending[1].RequesterUsername)
	assert.Equal(t, "Engineer", pending[1].RequesterProfession)
	assert.Equal(t, bob.ID, pending[1].RequesterID)

	sent, err := repo.ListSentBy(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "alice", sent[0].ReceiverUsername)

	none, err := repo.ListPendingFor(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestConnectionRepository_ListSuggestionsExcludesRelated(t *testing.T) {
	db := newTestDB(t)
	repo := NewConnectionRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	pendingOut := createUser(t, db, "pending_out")
	pendingIn := createUser(t, db, "pending_in")
	accepted := createUser(t, db, "accepted")
	ignored := createUser(t, db, "ignored")
	createUser(t, db, "gone", inactive)
	stranger := createUser(t, db, "stranger")

	require.NoError(t, repo.Create(ctx, &models.Connection{RequesterID: alice.ID, ReceiverID: pendingOut.ID}))
	require.NoError(t, repo.Create(ctx, &models.Connection{RequesterID: pendingIn.ID, ReceiverID: alice.ID}))
	require.NoError(t, repo.Create(ctx, &models.Connection{RequesterID: accepted.ID, ReceiverID: alice.ID}))
	_, err := repo.Accept(ctx, alice.ID, accepted.ID, 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, &models.Connection{RequesterID: alice.ID, ReceiverID: ignored.ID}))
	_, err = repo.Ignore(ctx, ignored.ID, alice.ID, time.Now())
	require.NoError(t, err)

	suggestions, err := repo.ListSuggestions(ctx, alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, stranger.ID, suggestions[0].ID)
}

func TestConnectionRepository_ListSuggestionsLimit(t *testing.T) {
	db := newTestDB(t)
	repo := NewConnectionRepository(db)
	alice := createUser(t, db, "alice")
	for _, name := range []string{"u1", "u2", "u3", "u4"} {
		createUser(t, db, name)
	}

	suggestions, err := repo.ListSuggestions(context.Background(), alice.ID, 2)
	require.NoError(t, err)
	assert.Len(t, suggestions, 2)
	for _, s := range suggestions {
		assert.NotEqual(t, alice.ID, s.ID)
	}
}
