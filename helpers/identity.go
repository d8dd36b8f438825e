package helpers

import "github.com/google/uuid"

// ContentID derives the document identifier from its content (UUID v5).
// Deterministic: ingesting the same content again yields the same id,
// which turns inserts into in-place upserts (no duplicates).
func ContentID(content string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(content)).String()
}
