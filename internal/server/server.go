// internal/server/server.go

// Package server is the HTTP surface of the portal: routing, middleware,
// request decoding/validation and response envelopes. Business rules live
// in internal/service.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"jobmate-backend/internal/auth"
	"jobmate-backend/internal/common/config"
	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/common/observability"
	"jobmate-backend/internal/common/validation"
	"jobmate-backend/internal/models"
	"jobmate-backend/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TokenVerifier checks bearer tokens. Satisfied by auth.TokenService.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// Service interfaces the handlers depend on; the concrete types in
// internal/service satisfy them. Tests substitute fakes.

type UserAPI interface {
	Register(ctx context.Context, input *service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, update *service.ProfileUpdate) (*models.User, error)
	Deactivate(ctx context.Context, claims *auth.Claims) error
}

type CompanyAPI interface {
	Create(ctx context.Context, recruiterID string, company *models.Company) (*models.Company, error)
	Update(ctx context.Context, recruiterID string, company *models.Company) (*models.Company, error)
	Get(ctx context.Context, id string) (*models.Company, error)
	List(ctx context.Context, page, limit int) ([]models.Company, error)
}

type JobAPI interface {
	Create(ctx context.Context, recruiterID string, job *models.Job) (*models.Job, error)
	Update(ctx context.Context, recruiterID string, job *models.Job) (*models.Job, error)
	Close(ctx context.Context, recruiterID, jobID string) error
	Get(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, filters models.JobSearchFilters) (*service.JobList, error)
	ListForRecruiter(ctx context.Context, recruiterID string) ([]models.Job, error)
}

type RecommendationAPI interface {
	Recommend(ctx context.Context, seekerID string, limit int) ([]service.RecommendedJob, error)
}

type ApplicationAPI interface {
	Apply(ctx context.Context, seekerID, jobID, coverLetter string) (*models.JobApplication, error)
	ListMine(ctx context.Context, seekerID string) ([]models.JobApplication, error)
	ListForJob(ctx context.Context, recruiterID, jobID string) ([]models.JobApplication, error)
	UpdateStatus(ctx context.Context, recruiterID, applicationID string, next models.ApplicationStatus) (*models.JobApplication, error)
}

type ChatAPI interface {
	SendMessage(ctx context.Context, userID, conversationID, message string) (*service.ChatTurn, error)
	GetConversation(ctx context.Context, userID, conversationID string) (*models.ConversationWithMessages, error)
	ListConversations(ctx context.Context, userID string) ([]models.ChatConversation, error)
}

type AnalysisAPI interface {
	ExplainMatch(ctx context.Context, userID, jobID string) (*models.AnalysisResponse, error)
	ATSScore(ctx context.Context, userID, jobID string) (*models.AnalysisResponse, error)
	PredictCareer(ctx context.Context, userID string) (*models.AnalysisResponse, error)
}

// HealthCheck probes one backing dependency for the readiness endpoint.
type HealthCheck func(ctx context.Context) error

// Deps bundles everything the server needs.
type Deps struct {
	Tokens          TokenVerifier
	Users           UserAPI
	Companies       CompanyAPI
	Jobs            JobAPI
	Recommendations RecommendationAPI
	Applications    ApplicationAPI
	Chat            ChatAPI
	Analysis        AnalysisAPI
	ReadyChecks     map[string]HealthCheck
	OptionalChecks  map[string]HealthCheck
	Observability   *observability.Observability
}

type Server struct {
	cfg    config.ServerConfig
	logger logger.Logger
	errors *apperrors.ErrorHandler
	obs    *observability.Observability

	tokens          TokenVerifier
	users           UserAPI
	companies       CompanyAPI
	jobs            JobAPI
	recommendations RecommendationAPI
	applications    ApplicationAPI
	chat            ChatAPI
	analysis        AnalysisAPI
	readyChecks     map[string]HealthCheck
	optionalChecks  map[string]HealthCheck

	httpServer *http.Server
}

func New(cfg config.ServerConfig, deps Deps, log logger.Logger) *Server {
	s := &Server{
		cfg:             cfg,
		logger:          log.WithFields(map[string]interface{}{"component": "server"}),
		errors:          apperrors.NewErrorHandler(log),
		obs:             deps.Observability,
		tokens:          deps.Tokens,
		users:           deps.Users,
		companies:       deps.Companies,
		jobs:            deps.Jobs,
		recommendations: deps.Recommendations,
		applications:    deps.Applications,
		chat:            deps.Chat,
		analysis:        deps.Analysis,
		readyChecks:     deps.ReadyChecks,
		optionalChecks:  deps.OptionalChecks,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      chain(s.Routes(), s.recovery, s.requestLogging),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}

	return s
}

// Routes builds the route table. Method-pattern ServeMux keeps the
// dispatch in the standard library.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	anyUser := s.requireAuth()
	seeker := s.requireAuth(models.RoleSeeker)
	recruiter := s.requireAuth(models.RoleRecruiter)

	// Operational endpoints.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Accounts.
	mux.HandleFunc("POST /api/users/register", s.handleRegister)
	mux.HandleFunc("POST /api/users/login", s.handleLogin)
	mux.Handle("POST /api/users/logout", anyUser(http.HandlerFunc(s.handleLogout)))
	mux.Handle("GET /api/users/me", anyUser(http.HandlerFunc(s.handleProfile)))
	mux.Handle("PUT /api/users/me", anyUser(http.HandlerFunc(s.handleUpdateProfile)))
	mux.Handle("DELETE /api/users/me", anyUser(http.HandlerFunc(s.handleDeactivate)))

	// Jobs. "recommended" and "mine" must be registered explicitly so the
	// {id} pattern does not swallow them.
	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.Handle("GET /api/jobs/recommended", seeker(http.HandlerFunc(s.handleRecommendedJobs)))
	mux.Handle("GET /api/jobs/mine", recruiter(http.HandlerFunc(s.handleMyJobs)))
	mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	mux.Handle("POST /api/jobs", recruiter(http.HandlerFunc(s.handleCreateJob)))
	mux.Handle("PUT /api/jobs/{id}", recruiter(http.HandlerFunc(s.handleUpdateJob)))
	mux.Handle("DELETE /api/jobs/{id}", recruiter(http.HandlerFunc(s.handleCloseJob)))
	mux.Handle("GET /api/jobs/{id}/applications", recruiter(http.HandlerFunc(s.handleJobApplications)))

	// Companies.
	mux.HandleFunc("GET /api/companies", s.handleListCompanies)
	mux.HandleFunc("GET /api/companies/{id}", s.handleGetCompany)
	mux.Handle("POST /api/companies", recruiter(http.HandlerFunc(s.handleCreateCompany)))
	mux.Handle("PUT /api/companies/{id}", recruiter(http.HandlerFunc(s.handleUpdateCompany)))

	// Applications.
	mux.Handle("POST /api/users/apply", seeker(http.HandlerFunc(s.handleApply)))
	mux.Handle("GET /api/users/applications", seeker(http.HandlerFunc(s.handleMyApplications)))
	mux.Handle("PUT /api/applications/{id}/status", recruiter(http.HandlerFunc(s.handleApplicationStatus)))

	// Chat.
	mux.Handle("POST /api/chat/message", anyUser(http.HandlerFunc(s.handleChatMessage)))
	mux.Handle("GET /api/chat/conversations", anyUser(http.HandlerFunc(s.handleListConversations)))
	mux.Handle("GET /api/chat/conversations/{id}", anyUser(http.HandlerFunc(s.handleGetConversation)))

	// ML analysis.
	mux.Handle("POST /api/analysis/match", seeker(http.HandlerFunc(s.handleAnalysisMatch)))
	mux.Handle("POST /api/analysis/ats", seeker(http.HandlerFunc(s.handleAnalysisATS)))
	mux.Handle("POST /api/analysis/career", seeker(http.HandlerFunc(s.handleAnalysisCareer)))

	return mux
}

// Start serves until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{"addr": s.cfg.Addr()})
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleReady reports per-dependency readiness; a failed required check
// flips the response to 503. Optional checks are reported only, since the
// endpoints that use them degrade on their own when they fail.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true
	for name, check := range s.readyChecks {
		if err := check(ctx); err != nil {
			checks[name] = "unavailable: " + err.Error()
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}
	for name, check := range s.optionalChecks {
		if err := check(ctx); err != nil {
			checks[name] = "degraded: " + err.Error()
		} else {
			checks[name] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{
		"success": healthy,
		"data":    checks,
	})
}

// decodeValid decodes the body into dst and runs struct validation,
// responding on failure. Returns false when the request was already
// answered.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := decodeBody(r, dst); err != nil {
		respondValidation(w, "malformed JSON body: "+err.Error())
		return false
	}
	return s.validateStruct(w, dst)
}

func (s *Server) validateStruct(w http.ResponseWriter, v interface{}) bool {
	result := validation.ValidateStruct(v)
	if !result.Valid {
		details, _ := json.Marshal(result.Errors)
		respondValidation(w, string(details))
		return false
	}
	return true
}
