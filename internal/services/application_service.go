package services

import (
	"strings"
	"time"
)

// ApplicationStore is the slice of the store the intake service needs.
type ApplicationStore interface {
	InsertApplication(app *TestingApplication) (*TestingApplication, error)
	GetApplication(id string) (*TestingApplication, error)
	UpdateApplication(app *TestingApplication) error
	ListApplicationsByUser(userID string) ([]*TestingApplication, error)
}

// ApplicationInput carries the user-submitted fields of a tester
// application.
type ApplicationInput struct {
	UserID          string
	UserName        string
	UserEmail       string
	WhyTesting      string
	ExperienceLevel string
	Availability    string
	Comments        string
}

type ApplicationService struct {
	store      ApplicationStore
	now        func() time.Time
	idGen      func() string
	reviewLock bool
}

type ApplicationOption func(*ApplicationService)

// WithReviewLock makes Review reject applications that have already been
// reviewed. The default mirrors the original marketplace behavior, where
// an admin may re-review (and overwrite) a decision.
func WithReviewLock() ApplicationOption {
	return func(s *ApplicationService) { s.reviewLock = true }
}

func NewApplicationService(store ApplicationStore, opts ...ApplicationOption) *ApplicationService {
	s := &ApplicationService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func() string { return shortID(12) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validExperienceLevel(level string) bool {
	switch level {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return true
	}
	return false
}

// Submit creates a pending application. A user may hold at most one
// pending application at a time, regardless of past decisions.
func (s *ApplicationService) Submit(input ApplicationInput) (*TestingApplication, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, NewInvalidError("user_id required")
	}
	if strings.TrimSpace(input.WhyTesting) == "" {
		return nil, NewInvalidError("why_testing required")
	}
	if !validExperienceLevel(input.ExperienceLevel) {
		return nil, NewInvalidError("experience_level must be beginner, intermediate or advanced")
	}
	existing, err := s.store.ListApplicationsByUser(input.UserID)
	if err != nil {
		return nil, err
	}
	for _, app := range existing {
		if app.Status == ApplicationPending {
			return nil, NewDuplicatePendingError("a pending application already exists for this user")
		}
	}
	app := &TestingApplication{
		ID:              s.idGen(),
		UserID:          input.UserID,
		UserName:        strings.TrimSpace(input.UserName),
		UserEmail:       strings.TrimSpace(input.UserEmail),
		WhyTesting:      strings.TrimSpace(input.WhyTesting),
		ExperienceLevel: input.ExperienceLevel,
		Availability:    strings.TrimSpace(input.Availability),
		Comments:        strings.TrimSpace(input.Comments),
		Status:          ApplicationPending,
		CreatedAt:       s.now(),
	}
	return s.store.InsertApplication(app)
}

// Review records an admin decision on an application. Unless the service
// was built with WithReviewLock, an already-reviewed application may be
// reviewed again and the previous decision is overwritten.
func (s *ApplicationService) Review(applicationID, status, reviewedBy string) (*TestingApplication, error) {
	if status != ApplicationApproved && status != ApplicationDisapproved {
		return nil, NewInvalidError("status must be approved or disapproved")
	}
	app, err := s.store.GetApplication(applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, NewNotFoundError("application not found")
	}
	if s.reviewLock && app.Status != ApplicationPending {
		return nil, NewConflictError("application already reviewed")
	}
	now := s.now()
	app.Status = status
	app.ReviewedAt = &now
	app.ReviewedBy = reviewedBy
	if err := s.store.UpdateApplication(app); err != nil {
		return nil, err
	}
	return app, nil
}

// FindByUser returns the user's application, first by insertion order if
// several exist historically, or nil when the user never applied.
func (s *ApplicationService) FindByUser(userID string) (*TestingApplication, error) {
	apps, err := s.store.ListApplicationsByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, nil
	}
	return apps[0], nil
}
