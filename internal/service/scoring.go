// internal/service/scoring.go
package service

import (
	"sort"
	"strings"

	"jobmate-backend/internal/models"
)

// Recommendation weights. Skills dominate; salary matters least because
// many postings omit a range.
const (
	weightSkills     = 0.40
	weightExperience = 0.25
	weightLocation   = 0.20
	weightSalary     = 0.15

	// neutralScore is used when either side lacks the data to compare.
	neutralScore = 50
)

// RecommendedJob pairs a job with its heuristic fit score (0-100).
type RecommendedJob struct {
	Job      models.Job `json:"job"`
	FitScore int        `json:"fitScore"`
	FitBreak FitFactors `json:"fitFactors"`
}

type FitFactors struct {
	SkillsFit     int `json:"skillsFit"`
	ExperienceFit int `json:"experienceFit"`
	LocationFit   int `json:"locationFit"`
	SalaryFit     int `json:"salaryFit"`
}

// scoreJob computes the weighted fit of a job for the seeker.
func scoreJob(user *models.User, job *models.Job) (int, FitFactors) {
	factors := FitFactors{
		SkillsFit:     scoreSkills(user.Skills, job.Skills),
		ExperienceFit: scoreExperience(user.ExperienceYears, job.ExperienceMin, job.ExperienceMax),
		LocationFit:   scoreLocation(user.Location, job.Location, job.JobType),
		SalaryFit:     neutralScore, // no seeker salary expectation on file
	}

	total := int(
		float64(factors.SkillsFit)*weightSkills +
			float64(factors.ExperienceFit)*weightExperience +
			float64(factors.LocationFit)*weightLocation +
			float64(factors.SalaryFit)*weightSalary)

	return total, factors
}

// scoreSkills is the overlap ratio between the seeker's skills and the
// job's required skills, case-insensitive.
func scoreSkills(userSkills, jobSkills []string) int {
	if len(jobSkills) == 0 || len(userSkills) == 0 {
		return neutralScore
	}

	have := make(map[string]bool, len(userSkills))
	for _, s := range userSkills {
		have[strings.ToLower(strings.TrimSpace(s))] = true
	}

	matched := 0
	for _, s := range jobSkills {
		if have[strings.ToLower(strings.TrimSpace(s))] {
			matched++
		}
	}

	return matched * 100 / len(jobSkills)
}

// scoreExperience tiers the seeker's experience against the job's band.
func scoreExperience(years, min, max float64) int {
	if min == 0 && max == 0 {
		return neutralScore
	}

	switch {
	case years >= min && (max == 0 || years <= max):
		return 100
	case years >= min:
		// Overqualified; still a plausible fit.
		return 75
	case min-years <= 1:
		return 60
	case min-years <= 2:
		return 40
	default:
		return 20
	}
}

func scoreLocation(userLocation, jobLocation string, jobType models.JobType) int {
	if jobType == models.JobTypeRemote {
		return 100
	}
	if userLocation == "" || jobLocation == "" {
		return neutralScore
	}

	ul := strings.ToLower(userLocation)
	jl := strings.ToLower(jobLocation)
	if ul == jl || strings.Contains(jl, ul) || strings.Contains(ul, jl) {
		return 100
	}
	return 25
}

// rankJobs scores and sorts the candidate set, best fit first. Ties break
// on recency so fresh postings surface.
func rankJobs(user *models.User, jobs []models.Job, limit int) []RecommendedJob {
	ranked := make([]RecommendedJob, 0, len(jobs))
	for i := range jobs {
		score, factors := scoreJob(user, &jobs[i])
		ranked = append(ranked, RecommendedJob{
			Job:      jobs[i],
			FitScore: score,
			FitBreak: factors,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].FitScore != ranked[j].FitScore {
			return ranked[i].FitScore > ranked[j].FitScore
		}
		pi, pj := ranked[i].Job.PostedAt, ranked[j].Job.PostedAt
		if pi == nil || pj == nil {
			return pj == nil && pi != nil
		}
		return pi.After(*pj)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
