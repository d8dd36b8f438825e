package models

import (
	"context"
	"strings"
	"time"

	"doc-garage/analytics"
	"doc-garage/apperror"
	"doc-garage/database"
	"doc-garage/helpers"
	"doc-garage/lookups"
)

// Document is the "interface" used for client communication.
// The id is derived from the content (helpers.ContentID), so re-ingesting
// identical content overwrites in place instead of creating a duplicate.
// The descriptive fields are immutable after ingestion; the vote counters
// are maintained by the vote model only.
type Document struct {
	ID           string    `json:"id" bson:"_id"`
	Title        string    `json:"title" bson:"title"`
	Content      string    `json:"content" bson:"content"`
	LanguageCode int32     `json:"languageCode" bson:"languageCD"`
	LanguageText string    `json:"languageText" bson:"-"`
	FileTypeCode int32     `json:"fileTypeCode" bson:"fileTypeCD"`
	FileTypeText string    `json:"fileTypeText" bson:"-"`
	URL          string    `json:"url" bson:"url"`
	UpVotes      int32     `json:"upVotes" bson:"upVotes"`     // raw lifetime totals - intentionally
	DownVotes    int32     `json:"downVotes" bson:"downVotes"` // not the decayed ranking signal
	TouchedTS    time.Time `json:"touchedTS" bson:"touchedTS"` // last vote on this document
	Visits       int64     `json:"visits" bson:"visits"`       // replicated count plus the live analytics window
}

// DocumentUpload is the ingestion payload; language and file type are passed
// as readable texts and resolved to codes here
type DocumentUpload struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Language string `json:"language"`
	FileType string `json:"fileType"`
	URL      string `json:"url"`
}

// DocumentModel provides the logic to the interface and access to the database
type DocumentModel struct {
	Store   DocumentStore
	Tracker *analytics.Tracker
}

// Validate checks given values and sets defaults where applicable (immutable)
func (m DocumentModel) Validate(upload DocumentUpload) (*DocumentUpload, error) {

	cleaned := upload

	cleaned.Title = strings.TrimSpace(cleaned.Title)
	if cleaned.Title == "" {
		return nil, ErrTitleMissing
	}

	if strings.TrimSpace(cleaned.Content) == "" {
		return nil, ErrContentMissing
	}

	return &cleaned, nil
}

// Ingest upserts a batch of documents in one bulk write.
// Ids are content-derived, hence the operation is idempotent and safe to
// re-run after a partial failure. The store only sets the counters on first
// insert, so re-ingesting does not wipe an existing vote history.
func (m DocumentModel) Ingest(uploads []DocumentUpload) (int64, error) {

	if len(uploads) == 0 {
		return 0, ErrNothingToIngest
	}

	documents := make([]Document, 0, len(uploads))
	for _, u := range uploads {

		cleaned, err := m.Validate(u)
		if err != nil {
			return 0, err
		}

		documents = append(documents, Document{
			ID:           helpers.ContentID(cleaned.Content),
			Title:        cleaned.Title,
			Content:      cleaned.Content,
			LanguageCode: languageCode(cleaned.Language),
			FileTypeCode: fileTypeCode(cleaned.FileType),
			URL:          cleaned.URL,
			UpVotes:      0,
			DownVotes:    0,
			TouchedTS:    time.Now(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // nach 10 Sekunden abbrechen

	return m.Store.UpsertMany(ctx, documents)
}

// GetDocument returns one document incl. look-up texts and its live visit count
func (m DocumentModel) GetDocument(id string) (*Document, error) {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // nach 10 Sekunden abbrechen

	document, err := m.Store.GetByID(ctx, id)
	if err != nil {
		if err == apperror.ErrNoData {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	addDocumentLookups(document)

	// aged visit counts are replicated into the store, the last 30 days are
	// still in the analytics cache (value is -1 when analytics are off)
	if m.Tracker != nil {
		live, _ := m.Tracker.GetVisits("document", document.ID, time.Now().AddDate(0, 0, -30))
		if live > 0 {
			document.Visits += live
		}
	}

	return document, nil
}

// internal helpers

// texts sent in payloads are resolved against the lookup map; unknown texts
// fall back to the symbol defaults rather than failing the whole batch
func languageCode(text string) int32 {
	code, err := database.GetLookupValue(lookups.LookupType(lookups.LTlang), text)
	if err != nil {
		return lookups.LANGen
	}
	return code
}

func fileTypeCode(text string) int32 {
	code, err := database.GetLookupValue(lookups.LookupType(lookups.LTfileType), text)
	if err != nil {
		return lookups.FTunknown
	}
	return code
}

// actually that's not immutable, but ok here
func addDocumentLookups(document *Document) *Document {
	document.LanguageText = database.GetLookupText(lookups.LookupType(lookups.LTlang), document.LanguageCode)
	document.FileTypeText = database.GetLookupText(lookups.LookupType(lookups.LTfileType), document.FileTypeCode)

	return document
}
