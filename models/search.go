package models

import (
	"context"
	"sort"
	"strings"
	"time"

	"doc-garage/analytics"
	"doc-garage/apperror"
	"doc-garage/helpers"
)

// scoring constants
// documents at or below the signal threshold are ranked by relevance alone,
// so one or two votes cannot dominate the ordering; a meaningful vote
// history re-ranks by recent sentiment
const (
	DefaultAlpha = 0.3 // keyword/vector blend passed through to the engine
	DefaultTopK  = 5

	candidateLimit     = 20 // pool fetched from the engine before re-ranking
	lowSignalThreshold = 5  // strict: exactly 5 raw votes is still low-signal

	rerankWeight = 0.7
	votesWeight  = 0.3
)

// Candidate is one hit delivered by the external hybrid search engine
type Candidate struct {
	DocumentID  string
	RerankScore float64
}

// Retriever is the contract of the external hybrid search engine (alpha
// blends keyword vs. vector matching inside the engine - an opaque knob here)
type Retriever interface {
	HybridSearch(ctx context.Context, query string, vector []float32, alpha float64, limit int) ([]Candidate, error)
}

// SearchParams is passed as the search params
type SearchParams struct {
	Query  string
	Vector []float32 // query embedding, computed by the caller's pipeline
	Alpha  float64
	TopK   int
	UserID string // for analytics only
}

// RankedDocument is the list item returned by Rank
type RankedDocument struct {
	Document      Document `json:"document"`
	RerankScore   float64  `json:"rerankScore"`
	NetVotes      float64  `json:"netVotes"` // decayed up minus decayed down
	CombinedScore float64  `json:"combinedScore"`
}

// SearchModel provides the logic to the interface and access to the collaborators
type SearchModel struct {
	Retriever Retriever
	Documents DocumentStore
	// injected from the vote model (see environment)
	DecayedScores func(ctx context.Context, documentIDs []string) (map[string]VoteSignal, error)
	Tracker       *analytics.Tracker
}

// Rank asks the search engine for candidates and fuses their relevance score
// with the decayed community vote signal:
//   high-signal (raw votes > threshold): 0.7*rerank + 0.3*netVotes
//   low-signal: rerank only
// The result is sorted descending; ties keep the engine's original order.
func (m SearchModel) Rank(params *SearchParams) ([]RankedDocument, error) {

	query := strings.TrimSpace(params.Query)
	if query == "" {
		return nil, ErrQueryMissing
	}

	alpha := params.Alpha
	if alpha < 0 || alpha > 1 {
		alpha = DefaultAlpha
	}

	topK := params.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // nach 10 Sekunden abbrechen

	candidates, err := m.Retriever.HybridSearch(ctx, query, params.Vector, alpha, candidateLimit)
	if err != nil {
		// transient engine errors are the caller's retry problem
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// join with the document store - counters are owned there,
	// not in the search engine's copy
	ids := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		ids = append(ids, candidate.DocumentID)
	}

	documents, err := m.Documents.GetByIDs(ctx, ids)
	if err != nil && err != apperror.ErrNoData {
		return nil, err
	}

	byID := make(map[string]Document, len(documents))
	for _, document := range documents {
		byID[document.ID] = document
	}

	ranked := make([]RankedDocument, 0, len(candidates))
	var highSignal []string

	for _, candidate := range candidates {
		document, ok := byID[candidate.DocumentID]
		if !ok {
			// the engine knows documents the store does not (stale index) - skip
			continue
		}

		addDocumentLookups(&document)

		ranked = append(ranked, RankedDocument{
			Document:      document,
			RerankScore:   candidate.RerankScore,
			CombinedScore: candidate.RerankScore, // low-signal default
		})

		if document.UpVotes+document.DownVotes > lowSignalThreshold {
			highSignal = append(highSignal, document.ID)
		}
	}

	// one batched aggregation for all high-signal candidates
	if len(highSignal) > 0 {
		signals, err := m.DecayedScores(ctx, highSignal)
		if err != nil {
			return nil, err
		}

		for i := range ranked {
			document := ranked[i].Document
			if document.UpVotes+document.DownVotes > lowSignalThreshold {
				signal := signals[document.ID]
				ranked[i].NetVotes = signal.Up - signal.Down
				ranked[i].CombinedScore = rerankWeight*ranked[i].RerankScore + votesWeight*ranked[i].NetVotes
			}
		}
	}

	// stable: equal scores keep the engine's order
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CombinedScore > ranked[j].CombinedScore
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	if m.Tracker != nil {
		resultIDs := make([]string, 0, len(ranked))
		for _, r := range ranked {
			resultIDs = append(resultIDs, r.Document.ID)
		}
		// fire & forget
		m.Tracker.SaveSearch(query, alpha, params.UserID, resultIDs)
	}

	return ranked, nil
}
