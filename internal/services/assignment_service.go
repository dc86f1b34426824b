package services

import (
	"strings"
	"time"
)

// AssignmentStore is the slice of the store the lifecycle manager needs.
type AssignmentStore interface {
	InsertAssignment(a *TestAssignment) (*TestAssignment, error)
	GetAssignment(id string) (*TestAssignment, error)
	UpdateAssignment(a *TestAssignment) error
	ListAssignmentsByTester(testerID string) ([]*TestAssignment, error)
	ListAssignmentsByPattern(patternID string) ([]*TestAssignment, error)
	ListAssignmentsByCreator(creatorID string) ([]*TestAssignment, error)
	GetPatternByID(id string) (*Pattern, error)
	InsertFeedback(fb *TestFeedback) (*TestFeedback, error)
}

// AssignmentInput carries the creation parameters of an assignment.
// Rewards are fixed here and never change afterwards.
type AssignmentInput struct {
	PatternID      string
	TesterID       string
	CreatorID      string
	Deadline       time.Time
	EstimatedHours int
	RewardCoins    int
	RewardPoints   int
}

// AssignmentPatch is the merge-patch accepted by Update. Status is
// deliberately absent: transitions go through the named operations.
type AssignmentPatch struct {
	Progress       *int       `json:"progress,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	EstimatedHours *int       `json:"estimated_hours,omitempty"`
}

// FinalReview carries the completion-time feedback of a tester.
type FinalReview struct {
	Rating     int
	Clarity    int
	Accuracy   int
	Difficulty string
	Message    string
	Images     []string
}

type AssignmentService struct {
	store   AssignmentStore
	rewards *RewardService
	metrics *MetricsService
	now     func() time.Time
	idGen   func() string
}

func NewAssignmentService(store AssignmentStore, rewards *RewardService, metrics *MetricsService) *AssignmentService {
	return &AssignmentService{
		store:   store,
		rewards: rewards,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
		idGen:   func() string { return shortID(12) },
	}
}

// Create records a new pending assignment with progress 0. Double
// assignment of the same tester/pattern pair is the caller's concern.
func (s *AssignmentService) Create(input AssignmentInput) (*TestAssignment, error) {
	if strings.TrimSpace(input.PatternID) == "" || strings.TrimSpace(input.TesterID) == "" {
		return nil, NewInvalidError("pattern_id and tester_id required")
	}
	if input.EstimatedHours <= 0 {
		return nil, NewInvalidError("estimated_hours must be positive")
	}
	if input.RewardCoins < 0 || input.RewardPoints < 0 {
		return nil, NewInvalidError("rewards must not be negative")
	}
	p, err := s.store.GetPatternByID(input.PatternID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NewNotFoundError("pattern not found")
	}
	creatorID := input.CreatorID
	if creatorID == "" {
		creatorID = p.CreatorID
	}
	a := &TestAssignment{
		ID:             s.idGen(),
		PatternID:      input.PatternID,
		TesterID:       input.TesterID,
		CreatorID:      creatorID,
		Status:         AssignmentPending,
		AssignedAt:     s.now(),
		Deadline:       input.Deadline,
		Progress:       0,
		EstimatedHours: input.EstimatedHours,
		RewardCoins:    input.RewardCoins,
		RewardPoints:   input.RewardPoints,
	}
	return s.store.InsertAssignment(a)
}

func (s *AssignmentService) get(id string) (*TestAssignment, error) {
	a, err := s.store.GetAssignment(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, NewNotFoundError("assignment not found")
	}
	return a, nil
}

// Get returns the assignment or a not_found error.
func (s *AssignmentService) Get(id string) (*TestAssignment, error) { return s.get(id) }

// Accept moves a pending assignment to accepted.
func (s *AssignmentService) Accept(id string) (*TestAssignment, error) {
	a, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if a.Status != AssignmentPending {
		return nil, NewConflictError("only a pending assignment can be accepted")
	}
	now := s.now()
	a.Status = AssignmentAccepted
	a.AcceptedAt = &now
	if err := s.store.UpdateAssignment(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Start moves an accepted assignment to in_progress.
func (s *AssignmentService) Start(id string) (*TestAssignment, error) {
	a, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if a.Status != AssignmentAccepted {
		return nil, NewConflictError("only an accepted assignment can be started")
	}
	now := s.now()
	a.Status = AssignmentInProgress
	a.StartedAt = &now
	if err := s.store.UpdateAssignment(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel terminates an assignment that has not reached a terminal state.
func (s *AssignmentService) Cancel(id string) (*TestAssignment, error) {
	a, err := s.get(id)
	if err != nil {
		return nil, err
	}
	switch a.Status {
	case AssignmentCompleted:
		return nil, NewConflictError("a completed assignment cannot be cancelled")
	case AssignmentCancelled:
		return nil, NewConflictError("assignment already cancelled")
	}
	a.Status = AssignmentCancelled
	if err := s.store.UpdateAssignment(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update merge-patches progress, deadline and estimated hours. Progress
// 100 is reserved: it is set only by Complete, keeping progress==100
// equivalent to status==completed.
func (s *AssignmentService) Update(id string, patch AssignmentPatch) (*TestAssignment, error) {
	a, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if a.Status == AssignmentCompleted || a.Status == AssignmentCancelled {
		return nil, NewConflictError("assignment is in a terminal state")
	}
	if patch.Progress != nil {
		p := *patch.Progress
		if p < 0 || p > 99 {
			return nil, NewInvalidError("progress must be between 0 and 99; 100 is set on completion")
		}
		a.Progress = p
	}
	if patch.Deadline != nil {
		a.Deadline = *patch.Deadline
	}
	if patch.EstimatedHours != nil {
		if *patch.EstimatedHours <= 0 {
			return nil, NewInvalidError("estimated_hours must be positive")
		}
		a.EstimatedHours = *patch.EstimatedHours
	}
	if err := s.store.UpdateAssignment(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssignmentService) ListByTester(testerID string) ([]*TestAssignment, error) {
	return s.store.ListAssignmentsByTester(testerID)
}

func (s *AssignmentService) ListByPattern(patternID string) ([]*TestAssignment, error) {
	return s.store.ListAssignmentsByPattern(patternID)
}

func (s *AssignmentService) ListByCreator(creatorID string) ([]*TestAssignment, error) {
	return s.store.ListAssignmentsByCreator(creatorID)
}

// Complete is the only path to status=completed. It appends the single
// final_review feedback entry, transitions the assignment, pays out the
// fixed rewards exactly once and refreshes both derived aggregates.
func (s *AssignmentService) Complete(id string, review FinalReview) (*TestAssignment, *RewardSummary, error) {
	a, err := s.get(id)
	if err != nil {
		return nil, nil, err
	}
	if a.Status == AssignmentCompleted {
		return nil, nil, NewAlreadyCompletedError("assignment already completed")
	}
	if a.Status == AssignmentCancelled {
		return nil, nil, NewConflictError("a cancelled assignment cannot be completed")
	}
	if !validScore(review.Rating) || !validScore(review.Clarity) || !validScore(review.Accuracy) {
		return nil, nil, NewInvalidError("rating, clarity and accuracy must be between 1 and 5")
	}
	if !validDifficulty(review.Difficulty) {
		return nil, nil, NewInvalidError("difficulty must be easier, as_expected or harder")
	}

	now := s.now()
	if _, err := s.store.InsertFeedback(&TestFeedback{
		ID:           s.idGen(),
		AssignmentID: a.ID,
		TesterID:     a.TesterID,
		PatternID:    a.PatternID,
		CreatorID:    a.CreatorID,
		Type:         FeedbackFinalReview,
		Message:      strings.TrimSpace(review.Message),
		Images:       review.Images,
		Rating:       review.Rating,
		Clarity:      review.Clarity,
		Accuracy:     review.Accuracy,
		Difficulty:   review.Difficulty,
		CreatedAt:    now,
	}); err != nil {
		return nil, nil, err
	}

	a.Status = AssignmentCompleted
	a.Progress = 100
	a.CompletedAt = &now
	if err := s.store.UpdateAssignment(a); err != nil {
		return nil, nil, err
	}

	summary, err := s.rewards.Payout(a)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.rewards.RecomputeTesterStats(a.TesterID); err != nil {
		return nil, nil, err
	}
	if _, err := s.metrics.RecomputePatternMetrics(a.PatternID); err != nil {
		return nil, nil, err
	}
	return a, summary, nil
}
