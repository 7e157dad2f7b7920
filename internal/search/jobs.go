// internal/search/jobs.go

// Package search maintains the Elasticsearch job index used by /api/jobs
// filtered queries and the recommendation candidate lookup. PostgreSQL stays
// the source of truth; search returns job IDs that the store rehydrates.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// jobsMapping keeps searchable text analyzed and filter fields as keywords.
const jobsMapping = `{
	"mappings": {
		"properties": {
			"title":          {"type": "text"},
			"description":    {"type": "text"},
			"location":       {"type": "text", "fields": {"raw": {"type": "keyword"}}},
			"job_type":       {"type": "keyword"},
			"skills":         {"type": "text", "fields": {"raw": {"type": "keyword"}}},
			"company_id":     {"type": "keyword"},
			"company_name":   {"type": "text"},
			"experience_min": {"type": "float"},
			"experience_max": {"type": "float"},
			"salary_min":     {"type": "integer"},
			"salary_max":     {"type": "integer"},
			"posted_at":      {"type": "date"}
		}
	}
}`

// jobDocument is the indexed projection of a job.
type jobDocument struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Location      string   `json:"location"`
	JobType       string   `json:"job_type"`
	Skills        []string `json:"skills"`
	CompanyID     string   `json:"company_id"`
	CompanyName   string   `json:"company_name"`
	ExperienceMin float64  `json:"experience_min"`
	ExperienceMax float64  `json:"experience_max"`
	SalaryMin     int      `json:"salary_min"`
	SalaryMax     int      `json:"salary_max"`
	PostedAt      string   `json:"posted_at,omitempty"`
}

type JobIndex struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewJobIndex(es *elasticsearch.Client, index string, log logger.Logger) *JobIndex {
	return &JobIndex{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "jobIndex"}),
	}
}

// Mapping returns the index mapping for bootstrap-time index creation.
func (i *JobIndex) Mapping() string {
	return jobsMapping
}

// Index writes or replaces the job document.
func (i *JobIndex) Index(ctx context.Context, job *models.Job) error {
	doc := jobDocument{
		Title:         job.Title,
		Description:   job.Description,
		Location:      job.Location,
		JobType:       string(job.JobType),
		Skills:        job.Skills,
		CompanyID:     job.CompanyID,
		CompanyName:   job.CompanyName,
		ExperienceMin: job.ExperienceMin,
		ExperienceMax: job.ExperienceMax,
		SalaryMin:     job.SalaryMin,
		SalaryMax:     job.SalaryMax,
	}
	if job.PostedAt != nil {
		doc.PostedAt = job.PostedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: job.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, i.es)
	if err != nil {
		return apperrors.NewIndexingFailedError(job.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewIndexingFailedError(job.ID, fmt.Errorf("index response: %s", res.Status()))
	}

	return nil
}

// Delete removes a closed job from the index. A missing document is fine.
func (i *JobIndex) Delete(ctx context.Context, jobID string) error {
	req := esapi.DeleteRequest{
		Index:      i.index,
		DocumentID: jobID,
	}

	res, err := req.Do(ctx, i.es)
	if err != nil {
		return apperrors.NewIndexingFailedError(jobID, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return apperrors.NewIndexingFailedError(jobID, fmt.Errorf("delete response: %s", res.Status()))
	}

	return nil
}

// Search runs the filtered job query and returns matching job IDs in
// relevance order plus the total hit count.
func (i *JobIndex) Search(ctx context.Context, filters models.JobSearchFilters) ([]string, int, error) {
	queryBody := buildSearchQuery(filters)

	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, 0, apperrors.NewInternalError(err)
	}

	from := (filters.Page - 1) * filters.Limit
	size := filters.Limit

	req := esapi.SearchRequest{
		Index: []string{i.index},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &size,
	}

	res, err := req.Do(ctx, i.es)
	if err != nil {
		return nil, 0, apperrors.NewSearchQueryFailedError("jobs.search", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, apperrors.NewSearchQueryFailedError("jobs.search",
			fmt.Errorf("search response: %s", res.Status()))
	}

	return parseHits(res)
}

// Similar returns job IDs matching the seeker's skill profile via
// more_like_this, the candidate set for recommendations.
func (i *JobIndex) Similar(ctx context.Context, skills []string, location string, size int) ([]string, error) {
	if len(skills) == 0 {
		return []string{}, nil
	}

	queryBody := buildSimilarQuery(skills, location)

	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	from := 0
	req := esapi.SearchRequest{
		Index: []string{i.index},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &size,
	}

	res, err := req.Do(ctx, i.es)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError("jobs.similar", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError("jobs.similar",
			fmt.Errorf("search response: %s", res.Status()))
	}

	ids, _, err := parseHits(res)
	return ids, err
}

func parseHits(res *esapi.Response) ([]string, int, error) {
	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, apperrors.NewSearchQueryFailedError("jobs.parseHits", err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.ID)
	}

	return ids, parsed.Hits.Total.Value, nil
}
