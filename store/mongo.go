// Package store contains the adapter implementations behind the models'
// DocumentStore/VoteStore contracts: a MongoDB-backed version for production
// and an in-memory version for tests and local development.
package store

import (
	"context"
	"time"

	"doc-garage/apperror"
	"doc-garage/helpers"
	"doc-garage/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDocumentStore persists documents in a mongo collection
type MongoDocumentStore struct {
	Collection *mongo.Collection
}

func NewMongoDocumentStore(collection *mongo.Collection) *MongoDocumentStore {
	return &MongoDocumentStore{Collection: collection}
}

// GetByID reads one document
func (s *MongoDocumentStore) GetByID(ctx context.Context, id string) (*models.Document, error) {

	var document models.Document

	err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&document)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNoData
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &document, nil
}

// GetByIDs reads a batch of documents in one query
// (missing ids are simply absent from the result, that's not an error)
func (s *MongoDocumentStore) GetByIDs(ctx context.Context, ids []string) ([]models.Document, error) {

	if len(ids) == 0 {
		return nil, nil
	}

	filter := bson.D{
		{Key: "_id", Value: bson.D{
			{Key: "$in", Value: ids},
		}},
	}

	cursor, err := s.Collection.Find(ctx, filter)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var documents []models.Document
	err = cursor.All(ctx, &documents)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return documents, nil
}

// Upsert writes one document; the content-derived _id turns repeated inserts
// into in-place replacements. Counters are only set on first insert so a
// re-ingestion does not reset an existing vote history.
func (s *MongoDocumentStore) Upsert(ctx context.Context, document *models.Document) error {

	filter := bson.D{{Key: "_id", Value: document.ID}}
	update := upsertFields(document)

	opts := options.Update().SetUpsert(true)

	_, err := s.Collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// UpsertMany writes a batch of documents in one bulk write
// returns the number of documents that were actually new
func (s *MongoDocumentStore) UpsertMany(ctx context.Context, documents []models.Document) (int64, error) {

	if len(documents) == 0 {
		return 0, nil
	}

	wm := make([]mongo.WriteModel, 0, len(documents))
	for i := range documents {
		wm = append(wm, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "_id", Value: documents[i].ID}}).
			SetUpdate(upsertFields(&documents[i])).
			SetUpsert(true))
	}

	// unordered: one bad document must not abort the whole batch
	opts := options.BulkWrite().SetOrdered(false)

	res, err := s.Collection.BulkWrite(ctx, wm, opts)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	return res.UpsertedCount, nil
}

// UpdateCounters stores the new counter pair and the interaction timestamp
func (s *MongoDocumentStore) UpdateCounters(ctx context.Context, id string, upVotes int32, downVotes int32, touchedTS time.Time) error {

	filter := bson.D{{Key: "_id", Value: id}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "upVotes", Value: upVotes},
			{Key: "downVotes", Value: downVotes},
			{Key: "touchedTS", Value: touchedTS},
		}},
	}

	res, err := s.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if res.MatchedCount == 0 {
		return apperror.ErrNoData
	}

	return nil
}

// descriptive fields are replaced, counters only initialized
func upsertFields(document *models.Document) bson.D {
	return bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "title", Value: document.Title},
			{Key: "content", Value: document.Content},
			{Key: "languageCD", Value: document.LanguageCode},
			{Key: "fileTypeCD", Value: document.FileTypeCode},
			{Key: "url", Value: document.URL},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "upVotes", Value: int32(0)},
			{Key: "downVotes", Value: int32(0)},
			{Key: "touchedTS", Value: document.TouchedTS},
		}},
	}
}

// MongoVoteStore persists the vote events in a mongo collection
type MongoVoteStore struct {
	Collection *mongo.Collection
}

func NewMongoVoteStore(collection *mongo.Collection) *MongoVoteStore {
	return &MongoVoteStore{Collection: collection}
}

// FindOne reads the (single) event of a user on a document
func (s *MongoVoteStore) FindOne(ctx context.Context, documentID string, userID string) (*models.VoteEvent, error) {

	filter := bson.D{
		{Key: "documentID", Value: documentID},
		{Key: "userID", Value: userID},
	}

	var event models.VoteEvent

	err := s.Collection.FindOne(ctx, filter).Decode(&event)
	if err != nil {
		// it's NOT an error if the user didn't vote
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNoData
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &event, nil
}

// Insert writes a new vote event
func (s *MongoVoteStore) Insert(ctx context.Context, event *models.VoteEvent) error {

	_, err := s.Collection.InsertOne(ctx, event)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// Update flips type and timestamp of an existing event (in place, no history)
func (s *MongoVoteStore) Update(ctx context.Context, id primitive.ObjectID, vote string, voteTS time.Time) error {

	filter := bson.D{{Key: "_id", Value: id}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "vote", Value: vote},
			{Key: "voteTS", Value: voteTS},
		}},
	}

	res, err := s.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	if res.MatchedCount == 0 {
		return apperror.ErrNoData
	}

	return nil
}

// FindByDocumentIDs scans all events of a batch of documents
// (used by the decay aggregation)
func (s *MongoVoteStore) FindByDocumentIDs(ctx context.Context, documentIDs []string) ([]models.VoteEvent, error) {

	if len(documentIDs) == 0 {
		return nil, nil
	}

	filter := bson.D{
		{Key: "documentID", Value: bson.D{
			{Key: "$in", Value: documentIDs},
		}},
	}

	cursor, err := s.Collection.Find(ctx, filter)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var events []models.VoteEvent
	err = cursor.All(ctx, &events)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return events, nil
}

// FindByUserID returns the most recent events of one user
func (s *MongoVoteStore) FindByUserID(ctx context.Context, userID string, limit int64) ([]models.VoteEvent, error) {

	filter := bson.D{{Key: "userID", Value: userID}}

	sort := bson.D{{Key: "voteTS", Value: -1}}
	opts := options.Find().SetSort(sort).SetLimit(limit)

	cursor, err := s.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var events []models.VoteEvent
	err = cursor.All(ctx, &events)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return events, nil
}
