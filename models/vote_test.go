package models_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"doc-garage/apperror"
	"doc-garage/models"
	"doc-garage/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVoteModel(t *testing.T) (models.VoteModel, *store.MemoryDocumentStore, *store.MemoryVoteStore) {
	t.Helper()

	documents := store.NewMemoryDocumentStore()
	votes := store.NewMemoryVoteStore()

	return models.VoteModel{Documents: documents, Votes: votes}, documents, votes
}

func seedDocument(t *testing.T, documents *store.MemoryDocumentStore, id string) {
	t.Helper()

	err := documents.Upsert(context.Background(), &models.Document{
		ID:      id,
		Title:   "some title",
		Content: "some content",
	})
	require.NoError(t, err)
}

func TestCastVoteFirstVote(t *testing.T) {
	vm, documents, _ := newVoteModel(t)
	seedDocument(t, documents, "d1")

	res, err := vm.CastVote("d1", "u1", models.VoteUp)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, int32(1), res.UpVotes)
	assert.Equal(t, int32(0), res.DownVotes)

	doc, err := documents.GetByID(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), doc.UpVotes)
	assert.False(t, doc.TouchedTS.IsZero())
}

func TestCastVoteRepeatedSameVote(t *testing.T) {
	vm, documents, _ := newVoteModel(t)
	seedDocument(t, documents, "d1")

	_, err := vm.CastVote("d1", "u1", models.VoteUp)
	require.NoError(t, err)

	// repeating the same action is answered, not an error
	res, err := vm.CastVote("d1", "u1", models.VoteUp)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, int32(1), res.UpVotes)
	assert.Equal(t, int32(0), res.DownVotes)
}

func TestCastVoteFlip(t *testing.T) {
	vm, documents, _ := newVoteModel(t)
	seedDocument(t, documents, "d1")

	_, err := vm.CastVote("d1", "u1", models.VoteUp)
	require.NoError(t, err)

	res, err := vm.CastVote("d1", "u1", models.VoteDown)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, int32(0), res.UpVotes)
	assert.Equal(t, int32(1), res.DownVotes)

	// still a single event for the pair
	events, err := vm.GetUserVotes("u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.VoteDown, events[0].Vote)
}

func TestCastVoteTwoUsers(t *testing.T) {
	vm, documents, _ := newVoteModel(t)
	seedDocument(t, documents, "d1")

	_, err := vm.CastVote("d1", "u1", models.VoteUp)
	require.NoError(t, err)

	res, err := vm.CastVote("d1", "u2", models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, int32(1), res.UpVotes)
	assert.Equal(t, int32(1), res.DownVotes)
}

func TestCastVoteConcurrentUsers(t *testing.T) {
	vm, documents, _ := newVoteModel(t)
	seedDocument(t, documents, "d1")

	// casts on the same document are serialized, so no count may get lost
	const voters = 32

	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := vm.CastVote("d1", fmt.Sprintf("u%d", n), models.VoteUp)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	doc, err := documents.GetByID(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, int32(voters), doc.UpVotes)
	assert.Equal(t, int32(0), doc.DownVotes)
}

func TestCastVoteCountersNeverNegative(t *testing.T) {
	vm, documents, votes := newVoteModel(t)
	seedDocument(t, documents, "d1")

	// event exists but the counters drifted to zero
	err := votes.Insert(context.Background(), &models.VoteEvent{
		DocumentID: "d1",
		UserID:     "u1",
		Vote:       models.VoteUp,
		VoteTS:     time.Now(),
	})
	require.NoError(t, err)

	res, err := vm.CastVote("d1", "u1", models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, int32(0), res.UpVotes)
	assert.Equal(t, int32(1), res.DownVotes)
}

func TestCastVoteUnknownDocument(t *testing.T) {
	vm, _, _ := newVoteModel(t)

	_, err := vm.CastVote("missing", "u1", models.VoteUp)
	assert.Equal(t, models.ErrDocumentNotFound, err)
}

func TestCastVoteInvalidType(t *testing.T) {
	vm, documents, _ := newVoteModel(t)
	seedDocument(t, documents, "d1")

	_, err := vm.CastVote("d1", "u1", "sideways")
	assert.Equal(t, models.ErrInvalidVoteType, err)
}

func TestDecayedScoresEmptySet(t *testing.T) {
	// no store wired at all - an empty id set must not touch it
	vm := models.VoteModel{}

	signals, err := vm.DecayedScores(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestDecayedScoresFreshAndAged(t *testing.T) {
	vm, documents, votes := newVoteModel(t)
	seedDocument(t, documents, "d1")

	now := time.Now()

	// one fresh vote and one that is exactly one half-life old
	err := votes.Insert(context.Background(), &models.VoteEvent{
		DocumentID: "d1", UserID: "u1", Vote: models.VoteUp, VoteTS: now,
	})
	require.NoError(t, err)
	err = votes.Insert(context.Background(), &models.VoteEvent{
		DocumentID: "d1", UserID: "u2", Vote: models.VoteUp, VoteTS: now.Add(-models.DefaultHalfLifeHours * time.Hour),
	})
	require.NoError(t, err)

	signals, err := vm.DecayedScores(context.Background(), []string{"d1"})
	require.NoError(t, err)

	assert.InDelta(t, 1.5, signals["d1"].Up, 0.01)
	assert.Zero(t, signals["d1"].Down)
}

func TestDecayedScoresOlderWeighsLess(t *testing.T) {
	vm, documents, votes := newVoteModel(t)
	seedDocument(t, documents, "d1")
	seedDocument(t, documents, "d2")

	now := time.Now()

	err := votes.Insert(context.Background(), &models.VoteEvent{
		DocumentID: "d1", UserID: "u1", Vote: models.VoteDown, VoteTS: now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	err = votes.Insert(context.Background(), &models.VoteEvent{
		DocumentID: "d2", UserID: "u1", Vote: models.VoteDown, VoteTS: now.Add(-10 * 24 * time.Hour),
	})
	require.NoError(t, err)

	signals, err := vm.DecayedScores(context.Background(), []string{"d1", "d2"})
	require.NoError(t, err)

	assert.Greater(t, signals["d1"].Down, signals["d2"].Down)
	assert.Greater(t, signals["d2"].Down, 0.0)
}

func TestDecayedScoresFutureVoteTreatedAsFresh(t *testing.T) {
	vm, documents, votes := newVoteModel(t)
	seedDocument(t, documents, "d1")

	// clock skew: a timestamp slightly in the future must not blow up the weight
	err := votes.Insert(context.Background(), &models.VoteEvent{
		DocumentID: "d1", UserID: "u1", Vote: models.VoteUp, VoteTS: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	signals, err := vm.DecayedScores(context.Background(), []string{"d1"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, signals["d1"].Up, 0.001)
}

func TestGetUserVotes(t *testing.T) {
	vm, documents, _ := newVoteModel(t)
	seedDocument(t, documents, "d1")
	seedDocument(t, documents, "d2")

	// no votes yet
	_, err := vm.GetUserVotes("u1")
	assert.Equal(t, apperror.ErrNoData, err)

	_, err = vm.CastVote("d1", "u1", models.VoteUp)
	require.NoError(t, err)
	_, err = vm.CastVote("d2", "u1", models.VoteDown)
	require.NoError(t, err)

	votes, err := vm.GetUserVotes("u1")
	require.NoError(t, err)
	assert.Len(t, votes, 2)
}
