package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"doc-garage/apperror"
	"doc-garage/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryDocumentStore keeps the documents in a map, for tests and local runs
// without a database.
type MemoryDocumentStore struct {
	mu        sync.RWMutex
	documents map[string]models.Document
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{documents: make(map[string]models.Document)}
}

func (s *MemoryDocumentStore) GetByID(ctx context.Context, id string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	document, ok := s.documents[id]
	if !ok {
		return nil, apperror.ErrNoData
	}

	return &document, nil
}

func (s *MemoryDocumentStore) GetByIDs(ctx context.Context, ids []string) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var documents []models.Document
	for _, id := range ids {
		if document, ok := s.documents[id]; ok {
			documents = append(documents, document)
		}
	}

	return documents, nil
}

func (s *MemoryDocumentStore) Upsert(ctx context.Context, document *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsert(*document)

	return nil
}

func (s *MemoryDocumentStore) UpsertMany(ctx context.Context, documents []models.Document) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inserted int64
	for _, document := range documents {
		if s.upsert(document) {
			inserted++
		}
	}

	return inserted, nil
}

// upsert replaces the descriptive fields and keeps the counters of an
// existing record, like the mongo version does. Caller holds the lock.
func (s *MemoryDocumentStore) upsert(document models.Document) bool {
	existing, ok := s.documents[document.ID]
	if ok {
		document.UpVotes = existing.UpVotes
		document.DownVotes = existing.DownVotes
		document.TouchedTS = existing.TouchedTS
		document.Visits = existing.Visits
	}
	s.documents[document.ID] = document
	return !ok
}

func (s *MemoryDocumentStore) UpdateCounters(ctx context.Context, id string, upVotes int32, downVotes int32, touchedTS time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	document, ok := s.documents[id]
	if !ok {
		return apperror.ErrNoData
	}

	document.UpVotes = upVotes
	document.DownVotes = downVotes
	document.TouchedTS = touchedTS
	s.documents[id] = document

	return nil
}

// MemoryVoteStore keeps the vote events in a slice, for tests.
type MemoryVoteStore struct {
	mu     sync.RWMutex
	events []models.VoteEvent
}

func NewMemoryVoteStore() *MemoryVoteStore {
	return &MemoryVoteStore{}
}

func (s *MemoryVoteStore) FindOne(ctx context.Context, documentID string, userID string) (*models.VoteEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.events {
		if s.events[i].DocumentID == documentID && s.events[i].UserID == userID {
			event := s.events[i]
			return &event, nil
		}
	}

	return nil, apperror.ErrNoData
}

func (s *MemoryVoteStore) Insert(ctx context.Context, event *models.VoteEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	s.events = append(s.events, *event)

	return nil
}

func (s *MemoryVoteStore) Update(ctx context.Context, id primitive.ObjectID, vote string, voteTS time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i].Vote = vote
			s.events[i].VoteTS = voteTS
			return nil
		}
	}

	return apperror.ErrNoData
}

func (s *MemoryVoteStore) FindByDocumentIDs(ctx context.Context, documentIDs []string) ([]models.VoteEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(documentIDs))
	for _, id := range documentIDs {
		wanted[id] = true
	}

	var events []models.VoteEvent
	for _, event := range s.events {
		if wanted[event.DocumentID] {
			events = append(events, event)
		}
	}

	return events, nil
}

func (s *MemoryVoteStore) FindByUserID(ctx context.Context, userID string, limit int64) ([]models.VoteEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []models.VoteEvent
	for _, event := range s.events {
		if event.UserID == userID {
			events = append(events, event)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].VoteTS.After(events[j].VoteTS)
	})

	if limit > 0 && int64(len(events)) > limit {
		events = events[:limit]
	}

	return events, nil
}
