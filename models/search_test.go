package models_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"doc-garage/models"
	"doc-garage/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRetriever replaces the external search engine
type stubRetriever struct {
	candidates []models.Candidate
	err        error

	gotQuery string
	gotAlpha float64
	gotLimit int
}

func (s *stubRetriever) HybridSearch(ctx context.Context, query string, vector []float32, alpha float64, limit int) ([]models.Candidate, error) {
	s.gotQuery = query
	s.gotAlpha = alpha
	s.gotLimit = limit
	return s.candidates, s.err
}

func newSearchModel(retriever *stubRetriever, documents *store.MemoryDocumentStore, signals map[string]models.VoteSignal) models.SearchModel {
	return models.SearchModel{
		Retriever: retriever,
		Documents: documents,
		DecayedScores: func(ctx context.Context, documentIDs []string) (map[string]models.VoteSignal, error) {
			return signals, nil
		},
	}
}

func seedRanked(t *testing.T, documents *store.MemoryDocumentStore, id string, upVotes int32, downVotes int32) {
	t.Helper()

	err := documents.Upsert(context.Background(), &models.Document{ID: id, Title: id, Content: id})
	require.NoError(t, err)
	err = documents.UpdateCounters(context.Background(), id, upVotes, downVotes, time.Now())
	require.NoError(t, err)
}

func TestRankQueryMissing(t *testing.T) {
	sm := newSearchModel(&stubRetriever{}, store.NewMemoryDocumentStore(), nil)

	_, err := sm.Rank(&models.SearchParams{Query: "   "})
	assert.Equal(t, models.ErrQueryMissing, err)
}

func TestRankAppliesDefaults(t *testing.T) {
	retriever := &stubRetriever{}
	sm := newSearchModel(retriever, store.NewMemoryDocumentStore(), nil)

	_, err := sm.Rank(&models.SearchParams{Query: "go concurrency", Alpha: -1})
	require.NoError(t, err)

	assert.Equal(t, "go concurrency", retriever.gotQuery)
	assert.InDelta(t, models.DefaultAlpha, retriever.gotAlpha, 0.001)
	assert.Equal(t, 20, retriever.gotLimit)
}

func TestRankFusesVoteSignal(t *testing.T) {
	documents := store.NewMemoryDocumentStore()

	// six raw votes: counts towards the ranking
	seedRanked(t, documents, "a", 4, 2)
	// five raw votes: relevance only
	seedRanked(t, documents, "b", 3, 2)

	retriever := &stubRetriever{candidates: []models.Candidate{
		{DocumentID: "a", RerankScore: 0.8},
		{DocumentID: "b", RerankScore: 0.9},
	}}

	signals := map[string]models.VoteSignal{
		"a": {Up: 2.5, Down: 0.5},
	}

	sm := newSearchModel(retriever, documents, signals)

	ranked, err := sm.Rank(&models.SearchParams{Query: "q"})
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	// 0.7*0.8 + 0.3*(2.5-0.5) = 1.16 beats the plain 0.9
	assert.Equal(t, "a", ranked[0].Document.ID)
	assert.InDelta(t, 1.16, ranked[0].CombinedScore, 0.001)
	assert.InDelta(t, 2.0, ranked[0].NetVotes, 0.001)

	assert.Equal(t, "b", ranked[1].Document.ID)
	assert.InDelta(t, 0.9, ranked[1].CombinedScore, 0.001)
	assert.Zero(t, ranked[1].NetVotes)
}

func TestRankNegativeSignalDemotes(t *testing.T) {
	documents := store.NewMemoryDocumentStore()

	seedRanked(t, documents, "a", 1, 9)
	seedRanked(t, documents, "b", 0, 0)

	retriever := &stubRetriever{candidates: []models.Candidate{
		{DocumentID: "a", RerankScore: 0.9},
		{DocumentID: "b", RerankScore: 0.7},
	}}

	signals := map[string]models.VoteSignal{
		"a": {Up: 0.5, Down: 4.5},
	}

	sm := newSearchModel(retriever, documents, signals)

	ranked, err := sm.Rank(&models.SearchParams{Query: "q"})
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	// 0.7*0.9 + 0.3*(-4.0) = -0.57 falls behind the unvoted 0.7
	assert.Equal(t, "b", ranked[0].Document.ID)
	assert.Equal(t, "a", ranked[1].Document.ID)
	assert.InDelta(t, -0.57, ranked[1].CombinedScore, 0.001)
}

func TestRankTruncatesToTopK(t *testing.T) {
	documents := store.NewMemoryDocumentStore()

	var candidates []models.Candidate
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	for i, id := range ids {
		seedRanked(t, documents, id, 0, 0)
		candidates = append(candidates, models.Candidate{DocumentID: id, RerankScore: float64(len(ids) - i)})
	}

	sm := newSearchModel(&stubRetriever{candidates: candidates}, documents, nil)

	ranked, err := sm.Rank(&models.SearchParams{Query: "q", TopK: 3})
	require.NoError(t, err)
	assert.Len(t, ranked, 3)
	assert.Equal(t, "a", ranked[0].Document.ID)

	// default topK
	ranked, err = sm.Rank(&models.SearchParams{Query: "q"})
	require.NoError(t, err)
	assert.Len(t, ranked, models.DefaultTopK)
}

func TestRankSkipsStaleIndexEntries(t *testing.T) {
	documents := store.NewMemoryDocumentStore()
	seedRanked(t, documents, "a", 0, 0)

	retriever := &stubRetriever{candidates: []models.Candidate{
		{DocumentID: "vanished", RerankScore: 0.99},
		{DocumentID: "a", RerankScore: 0.5},
	}}

	sm := newSearchModel(retriever, documents, nil)

	ranked, err := sm.Rank(&models.SearchParams{Query: "q"})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "a", ranked[0].Document.ID)
}

func TestRankStableOnTies(t *testing.T) {
	documents := store.NewMemoryDocumentStore()
	seedRanked(t, documents, "first", 0, 0)
	seedRanked(t, documents, "second", 0, 0)

	retriever := &stubRetriever{candidates: []models.Candidate{
		{DocumentID: "first", RerankScore: 0.5},
		{DocumentID: "second", RerankScore: 0.5},
	}}

	sm := newSearchModel(retriever, documents, nil)

	ranked, err := sm.Rank(&models.SearchParams{Query: "q"})
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	// equal scores keep the engine's order
	assert.Equal(t, "first", ranked[0].Document.ID)
	assert.Equal(t, "second", ranked[1].Document.ID)
}

func TestRankPropagatesEngineError(t *testing.T) {
	retriever := &stubRetriever{err: errors.New("engine down")}
	sm := newSearchModel(retriever, store.NewMemoryDocumentStore(), nil)

	_, err := sm.Rank(&models.SearchParams{Query: "q"})
	assert.Error(t, err)
}
