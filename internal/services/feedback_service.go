package services

import (
	"sort"
	"strings"
	"time"
)

// FeedbackStore is the slice of the store the feedback channel needs.
type FeedbackStore interface {
	InsertFeedback(fb *TestFeedback) (*TestFeedback, error)
	GetFeedback(id string) (*TestFeedback, error)
	UpdateFeedback(fb *TestFeedback) error
	ListFeedbackByAssignment(assignmentID string) ([]*TestFeedback, error)
	ListFeedbackByPattern(patternID string) ([]*TestFeedback, error)
}

// FeedbackInput carries one tester→creator message. Rating, clarity and
// accuracy are optional; when present they must be in 1..5.
type FeedbackInput struct {
	AssignmentID string
	TesterID     string
	PatternID    string
	CreatorID    string
	Type         string
	Message      string
	Images       []string
	Rating       int
	Clarity      int
	Accuracy     int
	Difficulty   string
}

type FeedbackService struct {
	store FeedbackStore
	now   func() time.Time
	idGen func() string
}

func NewFeedbackService(store FeedbackStore) *FeedbackService {
	return &FeedbackService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func() string { return shortID(12) },
	}
}

func validScore(v int) bool { return v == 0 || (v >= 1 && v <= 5) }

func validDifficulty(d string) bool {
	switch d {
	case "", DifficultyEasier, DifficultyAsExpected, DifficultyHarder:
		return true
	}
	return false
}

func (in *FeedbackInput) validate() error {
	if strings.TrimSpace(in.AssignmentID) == "" {
		return NewInvalidError("assignment_id required")
	}
	if strings.TrimSpace(in.Message) == "" {
		return NewInvalidError("message required")
	}
	switch in.Type {
	case FeedbackQuestion, FeedbackIssue, FeedbackProgressUpdate:
	case FeedbackFinalReview:
		return NewInvalidError("final_review is created by assignment completion")
	default:
		return NewInvalidError("unknown feedback type")
	}
	if !validScore(in.Rating) || !validScore(in.Clarity) || !validScore(in.Accuracy) {
		return NewInvalidError("rating, clarity and accuracy must be between 1 and 5")
	}
	if !validDifficulty(in.Difficulty) {
		return NewInvalidError("difficulty must be easier, as_expected or harder")
	}
	return nil
}

// Post appends a feedback entry. The assignment's status is deliberately
// not checked: follow-up messages after completion are allowed.
func (s *FeedbackService) Post(input FeedbackInput) (*TestFeedback, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	fb := &TestFeedback{
		ID:           s.idGen(),
		AssignmentID: input.AssignmentID,
		TesterID:     input.TesterID,
		PatternID:    input.PatternID,
		CreatorID:    input.CreatorID,
		Type:         input.Type,
		Message:      strings.TrimSpace(input.Message),
		Images:       input.Images,
		Rating:       input.Rating,
		Clarity:      input.Clarity,
		Accuracy:     input.Accuracy,
		Difficulty:   input.Difficulty,
		CreatedAt:    s.now(),
	}
	return s.store.InsertFeedback(fb)
}

// Respond attaches a creator reply to an existing entry.
func (s *FeedbackService) Respond(feedbackID, response string) (*TestFeedback, error) {
	if strings.TrimSpace(response) == "" {
		return nil, NewInvalidError("response required")
	}
	fb, err := s.store.GetFeedback(feedbackID)
	if err != nil {
		return nil, err
	}
	if fb == nil {
		return nil, NewNotFoundError("feedback not found")
	}
	now := s.now()
	fb.Response = strings.TrimSpace(response)
	fb.RespondedAt = &now
	if err := s.store.UpdateFeedback(fb); err != nil {
		return nil, err
	}
	return fb, nil
}

// ListByAssignment returns the conversation in ascending CreatedAt order.
func (s *FeedbackService) ListByAssignment(assignmentID string) ([]*TestFeedback, error) {
	entries, err := s.store.ListFeedbackByAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

// ListByPattern returns all feedback for a pattern, unsorted. Used for
// metrics extraction.
func (s *FeedbackService) ListByPattern(patternID string) ([]*TestFeedback, error) {
	return s.store.ListFeedbackByPattern(patternID)
}
