package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store adapters owned by the models.
// The models receive implementations via the environment (dependency-injection,
// no package-level DB handles); the mongo-backed versions live in the store
// package, an in-memory version exists for tests and local development.
// "not found" is always signalled with apperror.ErrNoData, never a nil result.

// DocumentStore persists the documents incl. their vote counters
type DocumentStore interface {
	GetByID(ctx context.Context, id string) (*Document, error)
	GetByIDs(ctx context.Context, ids []string) ([]Document, error)
	Upsert(ctx context.Context, document *Document) error
	UpsertMany(ctx context.Context, documents []Document) (int64, error)
	UpdateCounters(ctx context.Context, id string, upVotes int32, downVotes int32, touchedTS time.Time) error
}

// VoteStore persists one vote event per (document, user) pair
type VoteStore interface {
	FindOne(ctx context.Context, documentID string, userID string) (*VoteEvent, error)
	Insert(ctx context.Context, event *VoteEvent) error
	Update(ctx context.Context, id primitive.ObjectID, vote string, voteTS time.Time) error
	FindByDocumentIDs(ctx context.Context, documentIDs []string) ([]VoteEvent, error)
	FindByUserID(ctx context.Context, userID string, limit int64) ([]VoteEvent, error)
}
