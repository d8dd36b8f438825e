package models_test

import (
	"context"
	"testing"
	"time"

	"doc-garage/helpers"
	"doc-garage/models"
	"doc-garage/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestIngestValidation(t *testing.T) {
	dm := models.DocumentModel{Store: store.NewMemoryDocumentStore()}

	_, err := dm.Ingest(nil)
	assert.Equal(t, models.ErrNothingToIngest, err)

	_, err = dm.Ingest([]models.DocumentUpload{{Title: "  ", Content: "text"}})
	assert.Equal(t, models.ErrTitleMissing, err)

	_, err = dm.Ingest([]models.DocumentUpload{{Title: "a title", Content: "  "}})
	assert.Equal(t, models.ErrContentMissing, err)
}

func TestIngestContentIdentity(t *testing.T) {
	documents := store.NewMemoryDocumentStore()
	dm := models.DocumentModel{Store: documents}

	// identical content twice in one batch collapses into one record
	inserted, err := dm.Ingest([]models.DocumentUpload{
		{Title: "original", Content: "same text"},
		{Title: "copycat", Content: "same text"},
		{Title: "other", Content: "different text"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)
}

func TestIngestIdempotent(t *testing.T) {
	documents := store.NewMemoryDocumentStore()
	dm := models.DocumentModel{Store: documents}

	uploads := []models.DocumentUpload{{Title: "a title", Content: "stable text"}}

	inserted, err := dm.Ingest(uploads)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)

	// re-running the same batch inserts nothing new
	inserted, err = dm.Ingest(uploads)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)
}

func TestIngestPreservesVoteHistory(t *testing.T) {
	documents := store.NewMemoryDocumentStore()
	dm := models.DocumentModel{Store: documents}

	_, err := dm.Ingest([]models.DocumentUpload{{Title: "a title", Content: "voted text"}})
	require.NoError(t, err)

	doc, err := dm.GetDocument(helpers.ContentID("voted text"))
	require.NoError(t, err)

	err = documents.UpdateCounters(context.Background(), doc.ID, 2, 1, time.Now())
	require.NoError(t, err)

	// re-ingestion with a new title keeps the counters
	_, err = dm.Ingest([]models.DocumentUpload{{Title: "new title", Content: "voted text"}})
	require.NoError(t, err)

	doc, err = dm.GetDocument(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "new title", doc.Title)
	assert.Equal(t, int32(2), doc.UpVotes)
	assert.Equal(t, int32(1), doc.DownVotes)
}

func TestGetDocumentNotFound(t *testing.T) {
	dm := models.DocumentModel{Store: store.NewMemoryDocumentStore()}

	_, err := dm.GetDocument("missing")
	assert.Equal(t, models.ErrDocumentNotFound, err)
}

// the replicated visit count lives in the documents collection, so the
// field has to make the round trip through the store codec
func TestDocumentVisitsPersisted(t *testing.T) {
	raw, err := bson.Marshal(models.Document{ID: "d1", Visits: 7})
	require.NoError(t, err)

	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	assert.Equal(t, int64(7), fields["visits"])

	var document models.Document
	require.NoError(t, bson.Unmarshal(raw, &document))
	assert.Equal(t, int64(7), document.Visits)
}
