package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hivecraft/patternhive/internal/middleware"
	"github.com/hivecraft/patternhive/internal/services"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"`
	Role     string `json:"role" validate:"omitempty,oneof=tester creator admin"`
}

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !rt.decode(w, r, &req) {
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "user_id": res.UserID, "role": res.Role})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !rt.decode(w, r, &req) {
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "user_id": res.UserID, "role": res.Role})
}

type createPatternRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	Category string `json:"category"`
}

func (rt *Router) handleCreatePattern(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	var req createPatternRequest
	if !rt.decode(w, r, &req) {
		return
	}
	p := &services.Pattern{
		ID:        req.ID,
		CreatorID: claims.UID,
		Name:      req.Name,
		Category:  req.Category,
		CreatedAt: time.Now().UTC(),
	}
	if p.ID == "" {
		p.ID = "p" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	if err := rt.store.InsertPattern(p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type submitApplicationRequest struct {
	WhyTesting      string `json:"why_testing" validate:"required"`
	ExperienceLevel string `json:"experience_level" validate:"required,oneof=beginner intermediate advanced"`
	Availability    string `json:"availability"`
	Comments        string `json:"comments"`
	UserName        string `json:"user_name"`
}

func (rt *Router) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	var req submitApplicationRequest
	if !rt.decode(w, r, &req) {
		return
	}
	app, err := rt.applications.Submit(services.ApplicationInput{
		UserID:          claims.UID,
		UserName:        req.UserName,
		UserEmail:       claims.Email,
		WhyTesting:      req.WhyTesting,
		ExperienceLevel: req.ExperienceLevel,
		Availability:    req.Availability,
		Comments:        req.Comments,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (rt *Router) handleMyApplication(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	app, err := rt.applications.FindByUser(claims.UID)
	if err != nil {
		writeError(w, err)
		return
	}
	if app == nil {
		writeError(w, services.NewNotFoundError("no application for this user"))
		return
	}
	writeJSON(w, http.StatusOK, app)
}

type reviewApplicationRequest struct {
	Status string `json:"status" validate:"required,oneof=approved disapproved"`
}

func (rt *Router) handleReviewApplication(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	var req reviewApplicationRequest
	if !rt.decode(w, r, &req) {
		return
	}
	app, err := rt.applications.Review(mux.Vars(r)["id"], req.Status, claims.UID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

type createAssignmentRequest struct {
	PatternID      string    `json:"pattern_id" validate:"required"`
	TesterID       string    `json:"tester_id" validate:"required"`
	Deadline       time.Time `json:"deadline" validate:"required"`
	EstimatedHours int       `json:"estimated_hours" validate:"required,gt=0"`
	RewardCoins    int       `json:"reward_coins" validate:"gte=0"`
	RewardPoints   int       `json:"reward_points" validate:"gte=0"`
}

func (rt *Router) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	var req createAssignmentRequest
	if !rt.decode(w, r, &req) {
		return
	}
	creatorID := ""
	if claims.Role == services.RoleCreator {
		creatorID = claims.UID
	}
	a, err := rt.assignments.Create(services.AssignmentInput{
		PatternID:      req.PatternID,
		TesterID:       req.TesterID,
		CreatorID:      creatorID,
		Deadline:       req.Deadline,
		EstimatedHours: req.EstimatedHours,
		RewardCoins:    req.RewardCoins,
		RewardPoints:   req.RewardPoints,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (rt *Router) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		list []*services.TestAssignment
		err  error
	)
	switch {
	case q.Get("tester_id") != "":
		list, err = rt.assignments.ListByTester(q.Get("tester_id"))
	case q.Get("pattern_id") != "":
		list, err = rt.assignments.ListByPattern(q.Get("pattern_id"))
	case q.Get("creator_id") != "":
		list, err = rt.assignments.ListByCreator(q.Get("creator_id"))
	default:
		writeError(w, services.NewInvalidError("tester_id, pattern_id or creator_id query required"))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (rt *Router) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	a, err := rt.assignments.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (rt *Router) handlePatchAssignment(w http.ResponseWriter, r *http.Request) {
	var patch services.AssignmentPatch
	if !rt.decode(w, r, &patch) {
		return
	}
	a, err := rt.assignments.Update(mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (rt *Router) transition(w http.ResponseWriter, r *http.Request, op func(string) (*services.TestAssignment, error)) {
	a, err := op(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (rt *Router) handleAccept(w http.ResponseWriter, r *http.Request) {
	rt.transition(w, r, rt.assignments.Accept)
}

func (rt *Router) handleStart(w http.ResponseWriter, r *http.Request) {
	rt.transition(w, r, rt.assignments.Start)
}

func (rt *Router) handleCancel(w http.ResponseWriter, r *http.Request) {
	rt.transition(w, r, rt.assignments.Cancel)
}

type completeRequest struct {
	Rating     int      `json:"rating" validate:"omitempty,min=1,max=5"`
	Clarity    int      `json:"clarity" validate:"omitempty,min=1,max=5"`
	Accuracy   int      `json:"accuracy" validate:"omitempty,min=1,max=5"`
	Difficulty string   `json:"difficulty" validate:"omitempty,oneof=easier as_expected harder"`
	Message    string   `json:"message" validate:"required"`
	Images     []string `json:"images"`
}

func (rt *Router) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !rt.decode(w, r, &req) {
		return
	}
	a, rewards, err := rt.assignments.Complete(mux.Vars(r)["id"], services.FinalReview{
		Rating:     req.Rating,
		Clarity:    req.Clarity,
		Accuracy:   req.Accuracy,
		Difficulty: req.Difficulty,
		Message:    req.Message,
		Images:     req.Images,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignment": a, "rewards": rewards})
}

func (rt *Router) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	list, err := rt.feedback.ListByAssignment(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type postFeedbackRequest struct {
	AssignmentID string   `json:"assignment_id" validate:"required"`
	Type         string   `json:"type" validate:"required,oneof=question issue progress_update"`
	Message      string   `json:"message" validate:"required"`
	Images       []string `json:"images"`
	Rating       int      `json:"rating" validate:"omitempty,min=1,max=5"`
	Clarity      int      `json:"clarity" validate:"omitempty,min=1,max=5"`
	Accuracy     int      `json:"accuracy" validate:"omitempty,min=1,max=5"`
	Difficulty   string   `json:"difficulty" validate:"omitempty,oneof=easier as_expected harder"`
}

func (rt *Router) handlePostFeedback(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	var req postFeedbackRequest
	if !rt.decode(w, r, &req) {
		return
	}
	a, err := rt.assignments.Get(req.AssignmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	fb, err := rt.feedback.Post(services.FeedbackInput{
		AssignmentID: a.ID,
		TesterID:     claims.UID,
		PatternID:    a.PatternID,
		CreatorID:    a.CreatorID,
		Type:         req.Type,
		Message:      req.Message,
		Images:       req.Images,
		Rating:       req.Rating,
		Clarity:      req.Clarity,
		Accuracy:     req.Accuracy,
		Difficulty:   req.Difficulty,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fb)
}

type respondFeedbackRequest struct {
	Response string `json:"response" validate:"required"`
}

func (rt *Router) handleRespondFeedback(w http.ResponseWriter, r *http.Request) {
	var req respondFeedbackRequest
	if !rt.decode(w, r, &req) {
		return
	}
	fb, err := rt.feedback.Respond(mux.Vars(r)["id"], req.Response)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fb)
}

func (rt *Router) handlePatternMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := rt.metrics.MetricsByPattern(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if m == nil {
		writeError(w, services.NewNotFoundError("no metrics for this pattern"))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (rt *Router) handleRecomputeMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := rt.metrics.RecomputePatternMetrics(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (rt *Router) handleTesterStats(w http.ResponseWriter, r *http.Request) {
	st, err := rt.rewards.StatsByUser(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if st == nil {
		writeError(w, services.NewNotFoundError("no stats for this tester"))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (rt *Router) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, services.NewInvalidError("limit must be a positive integer"))
			return
		}
		limit = n
	}
	entries, err := rt.rewards.Leaderboard(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (rt *Router) handleAnalytics(w http.ResponseWriter, _ *http.Request) {
	out, err := rt.metrics.Analytics()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
