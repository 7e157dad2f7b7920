// internal/search/jobs_test.go
package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

// newFakeES points an ES client at an httptest server. The product header is
// required or the client refuses the response.
func newFakeES(t *testing.T, handler http.HandlerFunc) (*elasticsearch.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, srv
}

func searchResponse(ids ...string) string {
	hits := make([]map[string]interface{}, len(ids))
	for i, id := range ids {
		hits[i] = map[string]interface{}{"_id": id}
	}
	body, _ := json.Marshal(map[string]interface{}{
		"hits": map[string]interface{}{
			"total": map[string]interface{}{"value": len(ids)},
			"hits":  hits,
		},
	})
	return string(body)
}

// ==========================
// JobIndex Tests
// ==========================

func TestJobIndex_Index(t *testing.T) {
	var captured jobDocument
	var path string

	client, _ := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"created"}`))
	})

	index := NewJobIndex(client, "jobs", logger.NewTestLogger(t))

	posted := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	job := &models.Job{
		ID:          "job-1",
		Title:       "Backend Engineer",
		Description: "Build services in Go",
		Location:    "Austin",
		JobType:     models.JobTypeFullTime,
		Skills:      []string{"Go", "PostgreSQL"},
		CompanyID:   "company-1",
		CompanyName: "Acme",
		SalaryMin:   90000,
		SalaryMax:   140000,
		PostedAt:    &posted,
	}

	require.NoError(t, index.Index(context.Background(), job))
	assert.Equal(t, "/jobs/_doc/job-1", path)
	assert.Equal(t, "Backend Engineer", captured.Title)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, captured.Skills)
	assert.Equal(t, "2026-06-01T09:00:00Z", captured.PostedAt)
}

func TestJobIndex_Search(t *testing.T) {
	var captured map[string]interface{}

	client, _ := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchResponse("job-2", "job-1")))
	})

	index := NewJobIndex(client, "jobs", logger.NewTestLogger(t))

	ids, total, err := index.Search(context.Background(), models.JobSearchFilters{
		Query: "golang backend",
		Page:  1,
		Limit: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"job-2", "job-1"}, ids)
	assert.Equal(t, 2, total)
	assert.Contains(t, captured, "query")
}

func TestJobIndex_Delete_MissingDocumentOK(t *testing.T) {
	client, _ := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"result":"not_found"}`))
	})

	index := NewJobIndex(client, "jobs", logger.NewTestLogger(t))
	assert.NoError(t, index.Delete(context.Background(), "job-gone"))
}

func TestJobIndex_Similar_NoSkillsShortCircuits(t *testing.T) {
	called := false
	client, _ := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	index := NewJobIndex(client, "jobs", logger.NewTestLogger(t))

	ids, err := index.Similar(context.Background(), nil, "Austin", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.False(t, called, "no skills means no query at all")
}

func TestJobIndex_SearchErrorSurfaced(t *testing.T) {
	client, _ := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"shard failure"}`))
	})

	index := NewJobIndex(client, "jobs", logger.NewTestLogger(t))

	_, _, err := index.Search(context.Background(), models.JobSearchFilters{Page: 1, Limit: 10})
	assert.Error(t, err)
}

// ==========================
// Query Builder Tests
// ==========================

func TestBuildSearchQuery_FreeTextAndFilters(t *testing.T) {
	q := buildSearchQuery(models.JobSearchFilters{
		Query:     "golang",
		Location:  "Austin",
		JobType:   "full-time",
		Skills:    []string{"Go"},
		SalaryMin: 90000,
		CompanyID: "company-1",
	})

	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})

	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 2, "free text and location are scored clauses")
	multiMatch := must[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "golang", multiMatch["query"])
	assert.Equal(t, []string{"title^3", "skills^2", "description", "company_name"}, multiMatch["fields"])

	filter := boolQuery["filter"].([]interface{})
	assert.Len(t, filter, 3)
}

func TestBuildSearchQuery_NoFiltersMatchesAll(t *testing.T) {
	q := buildSearchQuery(models.JobSearchFilters{Page: 1, Limit: 20})

	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0].(map[string]interface{}), "match_all")
	assert.NotContains(t, boolQuery, "filter")
}

func TestBuildSearchQuery_ExperienceFilter(t *testing.T) {
	q := buildSearchQuery(models.JobSearchFilters{ExperienceMax: 5})

	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filter := boolQuery["filter"].([]interface{})
	require.Len(t, filter, 1)

	rangeClause := filter[0].(map[string]interface{})["range"].(map[string]interface{})
	expMin := rangeClause["experience_min"].(map[string]interface{})
	assert.Equal(t, 5.0, expMin["lte"], "seeker with 5 years matches jobs requiring at most 5")
}

func TestBuildSimilarQuery(t *testing.T) {
	q := buildSimilarQuery([]string{"Go", "Kubernetes"}, "Austin")

	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	should := boolQuery["should"].([]interface{})
	require.Len(t, should, 2)

	mlt := should[0].(map[string]interface{})["more_like_this"].(map[string]interface{})
	assert.Equal(t, "Go Kubernetes", mlt["like"])
	assert.Equal(t, 1, boolQuery["minimum_should_match"])
}

func TestBuildSimilarQuery_NoLocation(t *testing.T) {
	q := buildSimilarQuery([]string{"Go"}, "")

	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	should := boolQuery["should"].([]interface{})
	assert.Len(t, should, 1)
}
