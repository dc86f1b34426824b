// Package api exposes the testing workflow engine over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/hivecraft/patternhive/internal/middleware"
	"github.com/hivecraft/patternhive/internal/services"
	"github.com/hivecraft/patternhive/internal/store"
)

type Router struct {
	auth         *services.AuthService
	applications *services.ApplicationService
	assignments  *services.AssignmentService
	feedback     *services.FeedbackService
	rewards      *services.RewardService
	metrics      *services.MetricsService
	store        store.Store
	validate     *validator.Validate
}

func NewRouter(st store.Store) *Router {
	rewards := services.NewRewardService(st)
	metrics := services.NewMetricsService(st)
	return &Router{
		auth:         services.NewAuthService(st, middleware.SignToken),
		applications: services.NewApplicationService(st),
		assignments:  services.NewAssignmentService(st, rewards, metrics),
		feedback:     services.NewFeedbackService(st),
		rewards:      rewards,
		metrics:      metrics,
		store:        st,
		validate:     validator.New(),
	}
}

// Handler builds the full route table.
func (rt *Router) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", rt.handleRegister).Methods("POST")
	api.HandleFunc("/auth/login", rt.handleLogin).Methods("POST")

	api.Handle("/patterns", authed(rt.handleCreatePattern)).Methods("POST")
	api.HandleFunc("/patterns/{id}/metrics", rt.handlePatternMetrics).Methods("GET")
	api.Handle("/patterns/{id}/metrics/recompute", authed(rt.handleRecomputeMetrics)).Methods("POST")

	api.Handle("/testing/applications", authed(rt.handleSubmitApplication)).Methods("POST")
	api.Handle("/testing/applications/me", authed(rt.handleMyApplication)).Methods("GET")
	api.Handle("/testing/applications/{id}/review", admin(rt.handleReviewApplication)).Methods("POST")

	api.Handle("/assignments", authed(rt.handleCreateAssignment)).Methods("POST")
	api.Handle("/assignments", authed(rt.handleListAssignments)).Methods("GET")
	api.Handle("/assignments/{id}", authed(rt.handleGetAssignment)).Methods("GET")
	api.Handle("/assignments/{id}", authed(rt.handlePatchAssignment)).Methods("PATCH")
	api.Handle("/assignments/{id}/accept", authed(rt.handleAccept)).Methods("POST")
	api.Handle("/assignments/{id}/start", authed(rt.handleStart)).Methods("POST")
	api.Handle("/assignments/{id}/cancel", authed(rt.handleCancel)).Methods("POST")
	api.Handle("/assignments/{id}/complete", authed(rt.handleComplete)).Methods("POST")
	api.Handle("/assignments/{id}/feedback", authed(rt.handleListFeedback)).Methods("GET")

	api.Handle("/feedback", authed(rt.handlePostFeedback)).Methods("POST")
	api.Handle("/feedback/{id}/respond", authed(rt.handleRespondFeedback)).Methods("POST")

	api.HandleFunc("/testers/{id}/stats", rt.handleTesterStats).Methods("GET")
	api.HandleFunc("/leaderboard", rt.handleLeaderboard).Methods("GET")
	api.Handle("/analytics", admin(rt.handleAnalytics)).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "name": "PatternHive API"})
	})

	return middleware.WithAuth(r)
}

func authed(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(h)
}

func admin(h http.HandlerFunc) http.Handler {
	return middleware.RequireRole(services.RoleAdmin, h)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusForCode(code services.ErrorCode) int {
	switch code {
	case services.ErrorInvalid:
		return http.StatusBadRequest
	case services.ErrorUnauthorized:
		return http.StatusUnauthorized
	case services.ErrorForbidden:
		return http.StatusForbidden
	case services.ErrorNotFound:
		return http.StatusNotFound
	case services.ErrorConflict, services.ErrorDuplicatePending, services.ErrorAlreadyCompleted:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		writeJSON(w, statusForCode(se.Code), map[string]any{"error": se.Message, "code": se.Code})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
}

func (rt *Router) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, services.NewInvalidError("invalid request body"))
		return false
	}
	if err := rt.validate.Struct(v); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return false
	}
	return true
}
