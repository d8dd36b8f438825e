package environment

import (
	"os"
	"strconv"

	"doc-garage/analytics"
	"doc-garage/client"
	"doc-garage/database"
	"doc-garage/models"
	"doc-garage/retrieval"
	"doc-garage/store"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Environment is used for dependency-injection (package de-coupling)
type Environment struct {
	Tracker       *analytics.Tracker
	Requests      *client.Registry
	UserModel     models.UserModel
	DocumentModel models.DocumentModel
	VoteModel     models.VoteModel
	SearchModel   models.SearchModel
}

// newEnv operates as the constructor to initialize the collection references (private)
func newEnv(mongoClient *mongo.Client, influxClient *influxdb2.Client) *Environment {
	env := &Environment{}

	collections := database.NewCollections(mongoClient)

	// prepare analytics gathering (document visits & searches)
	// always create the object so no further checking is needed in the models
	env.Tracker = new(analytics.Tracker)
	env.Tracker.SetConnections(influxClient, collections.Documents())

	org := os.Getenv("ANALYTICS_ORG")
	env.Tracker.VisitorAPI = database.InfluxAPI{
		WriteAPI:  (*influxClient).WriteAPIBlocking(org, os.Getenv("ANALYTICS_VISITORS_BUCKET")),
		QueryAPI:  (*influxClient).QueryAPI(org),
		DeleteAPI: (*influxClient).DeleteAPI(),
	}
	env.Tracker.SearchAPI = database.InfluxAPI{
		WriteAPI:  (*influxClient).WriteAPIBlocking(org, os.Getenv("ANALYTICS_SEARCHES_BUCKET")),
		QueryAPI:  (*influxClient).QueryAPI(org),
		DeleteAPI: (*influxClient).DeleteAPI(),
	}

	env.Requests = new(client.Registry)
	env.Requests.Initialize()

	env.UserModel.Client = mongoClient
	env.UserModel.Collection = collections.Users()

	// inject user model function to analytics tracker after its initialization
	env.Tracker.GetUserName = env.UserModel.GetUserName

	documents := store.NewMongoDocumentStore(collections.Documents())
	votes := store.NewMongoVoteStore(collections.Votes())

	env.DocumentModel.Store = documents
	env.DocumentModel.Tracker = env.Tracker

	env.VoteModel.Documents = documents
	env.VoteModel.Votes = votes
	env.VoteModel.HalfLifeHours = halfLifeHours()

	env.SearchModel.Retriever = retrieval.NewClient()
	env.SearchModel.Documents = documents
	// inject the vote model's aggregation into the search model
	env.SearchModel.DecayedScores = env.VoteModel.DecayedScores
	env.SearchModel.Tracker = env.Tracker

	return env
}

// half-life is configured in days, the models work in hours
func halfLifeHours() float64 {
	days, err := strconv.ParseFloat(os.Getenv("VOTE_HALFLIFE_DAYS"), 64)
	if err != nil || days <= 0 {
		return models.DefaultHalfLifeHours
	}
	return days * 24
}

// Env is the singleton registry
var Env *Environment

// Initialize injects the database connections into the models
// (do not confuse with package init)
func Initialize() {
	Env = newEnv(database.GetConnection(), database.GetInfluxConnection())
}
