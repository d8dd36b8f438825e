package retrieval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string) *Client {
	return &Client{
		URL:        url,
		ClassName:  "Passage",
		HTTPClient: http.DefaultClient,
	}
}

func TestHybridSearchParsesCandidates(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/graphql", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body["query"], "hybrid")
		assert.Contains(t, body["query"], "alpha: 0.3")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {"Get": {"Passage": [
				{"docId": "a", "_additional": {"score": "0.8", "rerank": [{"score": 0.91}]}},
				{"docId": "b", "_additional": {"score": "0.55"}}
			]}}
		}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)

	candidates, err := c.HybridSearch(context.Background(), "go testing", nil, 0.3, 20)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// reranker score wins over the fusion score when present
	assert.Equal(t, "a", candidates[0].DocumentID)
	assert.InDelta(t, 0.91, candidates[0].RerankScore, 0.001)

	assert.Equal(t, "b", candidates[1].DocumentID)
	assert.InDelta(t, 0.55, candidates[1].RerankScore, 0.001)
}

func TestHybridSearchSendsVectorAndKey(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Cohere-Api-Key"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body["query"], "vector: [0.1,0.2]")
		assert.Contains(t, body["query"], "rerank(property: \"content\"")

		w.Write([]byte(`{"data": {"Get": {"Passage": []}}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.CohereAPIKey = "secret"

	candidates, err := c.HybridSearch(context.Background(), "q", []float32{0.1, 0.2}, 0.5, 20)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestHybridSearchGraphQLError(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors": [{"message": "class not found"}]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).HybridSearch(context.Background(), "q", nil, 0.3, 20)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class not found")
}

func TestHybridSearchBadStatus(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).HybridSearch(context.Background(), "q", nil, 0.3, 20)
	assert.Error(t, err)
}
