package database

import (
	"os"

	"go.mongodb.org/mongo-driver/mongo"
)

// collection names
// (kept here so no other package deals with strings)
const (
	colDocuments = "documents"
	colVotes     = "votes"
	colUsers     = "users"
	colSystem    = "system"
)

// Collections provides typed access to the mongo collections.
// It replaces ad-hoc "name -> handle" look-ups spread over the code base,
// so a typo in a collection name cannot survive compilation.
type Collections struct {
	client *mongo.Client
}

// NewCollections wraps a connected client
func NewCollections(client *mongo.Client) *Collections {
	return &Collections{client: client}
}

func (c *Collections) db() *mongo.Database {
	return c.client.Database(os.Getenv("DB_NAME"))
}

// Documents holds the ingested documents incl. their vote counters
func (c *Collections) Documents() *mongo.Collection {
	return c.db().Collection(colDocuments)
}

// Votes holds one vote event per (document, user) pair
func (c *Collections) Votes() *mongo.Collection {
	return c.db().Collection(colVotes)
}

// Users holds the accounts
func (c *Collections) Users() *mongo.Collection {
	return c.db().Collection(colUsers)
}
