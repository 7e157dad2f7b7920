// internal/search/queries.go
package search

import "jobmate-backend/internal/models"

// buildSearchQuery assembles the bool query for filtered job search.
// Free text goes into must (scored), everything else into filter.
func buildSearchQuery(filters models.JobSearchFilters) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if filters.Query != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  filters.Query,
				"fields": []string{"title^3", "skills^2", "description", "company_name"},
				"type":   "best_fields",
			},
		})
	}

	if filters.Location != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"match": map[string]interface{}{
				"location": filters.Location,
			},
		})
	}

	if filters.JobType != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"job_type": filters.JobType},
		})
	}

	if filters.CompanyID != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"company_id": filters.CompanyID},
		})
	}

	if len(filters.Skills) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"skills.raw": filters.Skills},
		})
	}

	// A seeker with N years matches jobs whose entry bar is at or below N.
	if filters.ExperienceMax > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"experience_min": map[string]interface{}{"lte": filters.ExperienceMax},
			},
		})
	}

	if filters.SalaryMin > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"salary_max": map[string]interface{}{"gte": filters.SalaryMin},
			},
		})
	}

	if filters.SalaryMax > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"salary_min": map[string]interface{}{"lte": filters.SalaryMax},
			},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(mustClauses) > 0 {
		boolQuery["must"] = mustClauses
	} else {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{"match_all": map[string]interface{}{}},
		}
	}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"posted_at": map[string]interface{}{"order": "desc", "missing": "_last"}},
		},
	}
}

// buildSimilarQuery matches jobs against a seeker's skills with a soft
// location preference.
func buildSimilarQuery(skills []string, location string) map[string]interface{} {
	shouldClauses := []interface{}{
		map[string]interface{}{
			"more_like_this": map[string]interface{}{
				"fields":          []string{"skills", "title", "description"},
				"like":            joinSkills(skills),
				"min_term_freq":   1,
				"min_doc_freq":    1,
				"max_query_terms": 25,
			},
		},
	}

	if location != "" {
		shouldClauses = append(shouldClauses, map[string]interface{}{
			"match": map[string]interface{}{
				"location": map[string]interface{}{"query": location, "boost": 0.5},
			},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               shouldClauses,
				"minimum_should_match": 1,
			},
		},
	}
}

func joinSkills(skills []string) string {
	out := ""
	for i, s := range skills {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}
