package analytics

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"doc-garage/database"
	"doc-garage/helpers"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Tracker collects usage events (visits, searches) in the analytics cache
// (influxDB) and periodically replicates aggregated counts to MongoDB.
type Tracker struct {
	influxClient influxdb2.Client
	VisitorAPI   database.InfluxAPI
	SearchAPI    database.InfluxAPI
	documents    *mongo.Collection
	GetUserName  func(ID string) (string, error)
}

// Visit is one profile view, used by the visitor listing
type Visit struct {
	VisitTS  time.Time `json:"visitTS"`
	ObjectID string    `json:"-"`
	UserID   string    `json:"userID"`
	UserName string    `json:"userName"`
}

// SetConnections initializes the instance
func (t *Tracker) SetConnections(influxClient *influxdb2.Client, documents *mongo.Collection) {
	t.influxClient = *influxClient
	t.documents = documents
}

// SaveVisitor stores event data in the analytics cache
func (t *Tracker) SaveVisitor(domain string, objectID string, userID string) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return
	}

	// include object type (domain) in key name,
	// so this information can be "wrapped" in aggregation queries

	p := influxdb2.NewPoint(
		"visit",
		map[string]string{"profileId": domain + "_" + objectID},
		map[string]interface{}{"userId": userID},
		time.Now())

	// ToDo: log Error
	t.VisitorAPI.WriteAPI.WritePoint(context.Background(), p)

}

// SaveSearch stores event data in the analytics cache
// one point per returned document, so hit counts can be aggregated per document
func (t *Tracker) SaveSearch(term string, alpha float64, userID string, documentIDs []string) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return
	}

	// do not log any empty search
	if term == "" {
		return
	}

	ts := time.Now()

	for _, id := range documentIDs {
		p := influxdb2.NewPoint(
			"search", // measurement
			map[string]string{"documentId": id}, // tag
			searchFields(term, alpha, userID),
			ts)

		// ToDo: log Error
		t.SearchAPI.WriteAPI.WritePoint(context.Background(), p)
	}

	// flush called implicitly
}

// searchFields builds the common field set of a search point
// the user is logged so popular searches can be related to roles later on
func searchFields(term string, alpha float64, userID string) map[string]interface{} {
	return map[string]interface{}{
		"domain": "document",
		"alpha":  alpha,
		"term":   term,
		"userId": userID}
}

// GetVisits counts the number of visits of a profile
// the value is "live" - meaning it's read from the analytics cache (influxDB)
// which is set to a maximum period (TTL) of 30 days
func (t *Tracker) GetVisits(domain string, objectID string, startDT time.Time) (int64, error) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return -1, nil
	}

	flux := `from(bucket: "%s")
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == "visit" and r["profileId"] == "%s")
		|> count()
		|> yield(name: "count")`

	id := domain + "_" + objectID
	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_VISITORS_BUCKET"),
		startDT.Format(time.RFC3339),
		id)

	result, err := t.VisitorAPI.QueryAPI.Query(context.Background(), flux)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	// nur 1 record
	var res interface{}
	for result.Next() {
		res = result.Record().Value()
	}

	var cnt int64 = 0
	if res != nil {
		cnt = res.(int64)
	}

	return cnt, nil
}

// ListVisitors returns the last visitors of a profile (one entry per user)
func (t *Tracker) ListVisitors(objectID string, startDT time.Time) ([]Visit, error) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return nil, nil
	}

	flux := `import "strings"
		from(bucket: "%s")
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == "visit" and strings.containsStr(substr: "%s", v: r.profileId))
		|> group(columns: ["_value"], mode:"by")
		|> max(column: "_time")
		|> sort(columns: ["_time"], desc: true)
		|> limit(n:10, offset: 0)`

	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_VISITORS_BUCKET"),
		startDT.Format(time.RFC3339),
		objectID)

	result, err := t.VisitorAPI.QueryAPI.Query(context.Background(), flux)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var visit Visit
	var visits []Visit
	for result.Next() {
		visit.VisitTS = result.Record().Time()
		visit.ObjectID = objectID
		if result.Record().Value() == nil {
			visit.UserID = ""
			visit.UserName = ""
		} else {
			visit.UserID = result.Record().Value().(string)
			visit.UserName, _ = t.GetUserName(visit.UserID)
		}

		visits = append(visits, visit)
	}

	// the flux query sorts correctly in the GUI, the slice comes back unordered
	sort.Slice(visits, func(i, j int) bool {
		return visits[j].VisitTS.Before(visits[i].VisitTS)
	})

	return visits, nil
}

// Replicate moves the visit counts from the cache (influxDB) into the
// documents collection (field "visits"), then the cache entries expire via TTL
func (t *Tracker) Replicate() {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return
	}

	ctx := context.Background()

	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.Now().UTC().Location()) // just start somewhere as the minimum date
	stop := time.Now().AddDate(0, -1, 0)                                    // move everything older than one month

	// 1. get counts from influxDB
	flux := `from(bucket: "%s")
	|> range(start: %s, stop: %s)
	|> filter(fn: (r) => r["_measurement"] == "visit")
	|> count()
	|> yield(name: "count")`

	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_VISITORS_BUCKET"),
		start.Format(time.RFC3339),
		stop.Format(time.RFC3339))

	result, err := t.VisitorAPI.QueryAPI.Query(ctx, flux)
	if err != nil {
		// ToDO: Log Error
		fmt.Println(helpers.WrapError(err, helpers.FuncName()))
		return
	}

	// 2. save counts to MongoDB (bulk)
	var opModels []mongo.WriteModel

	var strs []string // used to "extract" object type from key
	for result.Next() {

		strs = strings.Split(result.Record().ValueByKey("profileId").(string), "_")
		if strs[0] != "document" {
			continue
		}

		operation := bson.D{
			{Key: "$inc", Value: bson.D{
				{Key: "visits", Value: result.Record().Value()}, // value of the projection function (count)
			}},
		}

		opModel := mongo.NewUpdateOneModel()
		opModel.SetFilter(bson.D{{Key: "_id", Value: strs[1]}}).SetUpdate(operation)

		opModels = append(opModels, opModel)
	}

	// abort if no data to process
	if len(opModels) == 0 {
		fmt.Printf("%v: %v document visit(s) replicated.\n", time.Now().Format(time.RFC3339), 0)
		return
	}

	opts := options.BulkWrite().SetOrdered(false)

	res, err := t.documents.BulkWrite(ctx, opModels, opts)
	if err != nil {
		// ToDO: Log Error
		fmt.Println(helpers.WrapError(err, helpers.FuncName()))
		return
	}

	fmt.Printf("%v: %v document visit(s) replicated.\n", time.Now().Format(time.RFC3339), res.MatchedCount)
}
