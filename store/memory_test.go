package store

import (
	"context"
	"testing"
	"time"

	"doc-garage/apperror"
	"doc-garage/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDocumentStore(t *testing.T) {
	s := NewMemoryDocumentStore()
	ctx := context.Background()

	_, err := s.GetByID(ctx, "d1")
	assert.Equal(t, apperror.ErrNoData, err)

	err = s.Upsert(ctx, &models.Document{ID: "d1", Title: "one", Content: "c1"})
	require.NoError(t, err)

	doc, err := s.GetByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "one", doc.Title)

	// counters survive a re-upsert
	err = s.UpdateCounters(ctx, "d1", 3, 1, time.Now())
	require.NoError(t, err)
	err = s.Upsert(ctx, &models.Document{ID: "d1", Title: "renamed", Content: "c1"})
	require.NoError(t, err)

	doc, err = s.GetByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", doc.Title)
	assert.Equal(t, int32(3), doc.UpVotes)
	assert.Equal(t, int32(1), doc.DownVotes)

	inserted, err := s.UpsertMany(ctx, []models.Document{
		{ID: "d1", Title: "again", Content: "c1"},
		{ID: "d2", Title: "two", Content: "c2"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)

	docs, err := s.GetByIDs(ctx, []string{"d1", "d2", "nope"})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	err = s.UpdateCounters(ctx, "nope", 1, 0, time.Now())
	assert.Equal(t, apperror.ErrNoData, err)

	// the replicated visit count survives a re-upsert too
	err = s.Upsert(ctx, &models.Document{ID: "d3", Title: "three", Content: "c3", Visits: 9})
	require.NoError(t, err)
	err = s.Upsert(ctx, &models.Document{ID: "d3", Title: "three", Content: "c3"})
	require.NoError(t, err)

	doc, err = s.GetByID(ctx, "d3")
	require.NoError(t, err)
	assert.Equal(t, int64(9), doc.Visits)
}

func TestMemoryVoteStore(t *testing.T) {
	s := NewMemoryVoteStore()
	ctx := context.Background()

	_, err := s.FindOne(ctx, "d1", "u1")
	assert.Equal(t, apperror.ErrNoData, err)

	event := &models.VoteEvent{DocumentID: "d1", UserID: "u1", Vote: models.VoteUp, VoteTS: time.Now()}
	err = s.Insert(ctx, event)
	require.NoError(t, err)
	require.False(t, event.ID.IsZero())

	got, err := s.FindOne(ctx, "d1", "u1")
	require.NoError(t, err)
	assert.Equal(t, models.VoteUp, got.Vote)

	err = s.Update(ctx, event.ID, models.VoteDown, time.Now())
	require.NoError(t, err)

	got, err = s.FindOne(ctx, "d1", "u1")
	require.NoError(t, err)
	assert.Equal(t, models.VoteDown, got.Vote)

	err = s.Insert(ctx, &models.VoteEvent{DocumentID: "d2", UserID: "u1", Vote: models.VoteUp, VoteTS: time.Now().Add(time.Minute)})
	require.NoError(t, err)

	events, err := s.FindByDocumentIDs(ctx, []string{"d1", "d2"})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	// newest first, limit applied
	events, err = s.FindByUserID(ctx, "u1", 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "d2", events[0].DocumentID)
}
