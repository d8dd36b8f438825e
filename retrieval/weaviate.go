// Package retrieval talks to the Weaviate search service. Only the hybrid
// query with the optional reranker is used, so the raw GraphQL endpoint is
// called directly instead of pulling in a client SDK.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"doc-garage/helpers"
	"doc-garage/models"
)

// Client queries one Weaviate class
type Client struct {
	URL          string
	ClassName    string
	CohereAPIKey string
	HTTPClient   *http.Client
}

// NewClient builds a client from the environment
func NewClient() *Client {
	return &Client{
		URL:          os.Getenv("WEAVIATE_URL"),
		ClassName:    os.Getenv("WEAVIATE_CLASS"),
		CohereAPIKey: os.Getenv("COHERE_APIKEY"),
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// graphQLResponse is the part of the answer we care about
type graphQLResponse struct {
	Data map[string]map[string][]struct {
		DocID      string `json:"docId"`
		Additional struct {
			Score  string `json:"score"`
			Rerank []struct {
				Score *float64 `json:"score"`
			} `json:"rerank"`
		} `json:"_additional"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// HybridSearch runs a hybrid (keyword + vector) query and returns the
// candidates in rank order. When a reranker module is active its score is
// preferred over the fusion score.
func (c *Client) HybridSearch(ctx context.Context, query string, vector []float32, alpha float64, limit int) ([]models.Candidate, error) {

	gql, err := c.buildQuery(query, vector, alpha, limit)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	body, err := json.Marshal(map[string]string{"query": gql})
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL+"/v1/graphql", bytes.NewReader(body))
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}
	req.Header.Set("Content-Type", "application/json")
	if c.CohereAPIKey != "" {
		req.Header.Set("X-Cohere-Api-Key", c.CohereAPIKey)
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, helpers.WrapError(fmt.Errorf("search service returned status %d", res.StatusCode), helpers.FuncName())
	}

	var parsed graphQLResponse
	err = json.NewDecoder(res.Body).Decode(&parsed)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if len(parsed.Errors) > 0 {
		return nil, helpers.WrapError(fmt.Errorf("search service: %s", parsed.Errors[0].Message), helpers.FuncName())
	}

	items := parsed.Data["Get"][c.ClassName]

	candidates := make([]models.Candidate, 0, len(items))
	for _, item := range items {
		score := 0.0
		if s, err := strconv.ParseFloat(item.Additional.Score, 64); err == nil {
			score = s
		}
		if len(item.Additional.Rerank) > 0 && item.Additional.Rerank[0].Score != nil {
			score = *item.Additional.Rerank[0].Score
		}
		candidates = append(candidates, models.Candidate{
			DocumentID:  item.DocID,
			RerankScore: score,
		})
	}

	return candidates, nil
}

// buildQuery assembles the GraphQL document for one hybrid search
func (c *Client) buildQuery(query string, vector []float32, alpha float64, limit int) (string, error) {

	var hybrid strings.Builder
	fmt.Fprintf(&hybrid, "query: %s, alpha: %g", strconv.Quote(query), alpha)
	if len(vector) > 0 {
		vec, err := json.Marshal(vector)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&hybrid, ", vector: %s", vec)
	}

	rerank := ""
	if c.CohereAPIKey != "" {
		rerank = fmt.Sprintf("rerank(property: \"content\", query: %s) { score }", strconv.Quote(query))
	}

	gql := fmt.Sprintf(`{
  Get {
    %s(hybrid: { %s }, limit: %d) {
      docId
      _additional { score %s }
    }
  }
}`, c.ClassName, hybrid.String(), limit, rerank)

	return gql, nil
}
