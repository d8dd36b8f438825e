package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"doc-garage/authentication"
	"doc-garage/controllers"
	"doc-garage/database"
	"doc-garage/environment"
	"doc-garage/middleware"
	"doc-garage/models"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	router = gin.Default()
)

// called BEFORE the program execution (main)
// the order of the package inits is undefined though!
func init() {
	// Load Config
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
}

func handleRequests() {
	router.Use(middleware.CORSMiddleware())

	router.GET("/lookups", controllers.ListLookups)

	// auth-related
	router.POST("/login", controllers.Login)
	router.POST("/logout", authentication.TokenAuthMiddleware(), controllers.Logout)
	router.POST("/refresh", controllers.Refresh) // no middleware, the at may be expired
	router.POST("/register", controllers.Register)

	router.POST("/user/exists", controllers.UserExists)
	router.POST("/email/exists", controllers.EMailExists)

	// user-mgmt
	router.GET("/users/:id", authentication.TokenAuthMiddleware(), controllers.GetUser)
	router.POST("/user/changePass", authentication.TokenAuthMiddleware(), controllers.ChangePassword)
	router.POST("/user/verifyPass", authentication.TokenAuthMiddleware(), controllers.VerifyPassword)

	router.GET("/user/preference", authentication.TokenAuthMiddleware(), controllers.GetPreference)
	router.PUT("/user/preference", authentication.TokenAuthMiddleware(), controllers.UpdatePreference)

	// documents
	// GET has no BODY (Go/Gin & Postman would support it, Angular does not) - hence parameters
	router.GET("/documents/:id", controllers.GetDocument)
	router.POST("/documents", authentication.TokenAuthMiddleware(), controllers.IngestDocuments)

	// votes
	router.POST("/documents/:id/votes", authentication.TokenAuthMiddleware(), controllers.CastVote)
	router.GET("/user/votes", authentication.TokenAuthMiddleware(), controllers.GetUserVotes)

	// ranked search
	router.POST("/search", controllers.Search)

	// usage stats
	router.GET("/stats/visits", controllers.GetVisits)
	router.GET("/stats/visitors", authentication.TokenAuthMiddleware(), controllers.ListVisitors)

	// ops
	router.GET("/monitor/requests/count", controllers.CountRequests)
	router.GET("/monitor/requests/dump", controllers.DumpRequests)
	router.POST("/monitor/requests/flush", controllers.FlushRequests)

	switch os.Getenv("APP_ENV") {
	case "DEV":
		router.Run(":" + os.Getenv("API_PORT"))
	case "PRD":
		router.RunTLS(":"+os.Getenv("API_PORT"), os.Getenv("APP_CERTFILE"), os.Getenv("APP_KEYFILE"))
	default:
		panic(fmt.Errorf("APP_ENV not set"))
	}
}

func main() {
	// connect to the main database (mongoDB)
	err := database.OpenConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseConnection()

	// connect to the JWT store (redis)
	err = authentication.OpenConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer authentication.CloseConnection()

	// connect to the analytics cache (influxDB)
	err = database.OpenInfluxConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseInfluxConnection()

	// Initialize the Models
	environment.Initialize()

	// expire the request and vote-lock registries in the background
	go func() {
		for range time.Tick(15 * time.Minute) {
			environment.Env.Requests.Flush()
			models.FlushVoteLocks()
		}
	}()

	// move aged visit counts from the analytics cache into the documents collection
	go func() {
		for range time.Tick(24 * time.Hour) {
			environment.Env.Tracker.Replicate()
		}
	}()

	fmt.Println("Doc-Garage running...")
	handleRequests()
}
