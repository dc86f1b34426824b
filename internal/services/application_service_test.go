package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubApplicationStore struct {
	apps []*TestingApplication
}

func (s *stubApplicationStore) InsertApplication(app *TestingApplication) (*TestingApplication, error) {
	cp := *app
	s.apps = append(s.apps, &cp)
	return app, nil
}

func (s *stubApplicationStore) GetApplication(id string) (*TestingApplication, error) {
	for _, app := range s.apps {
		if app.ID == id {
			cp := *app
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubApplicationStore) UpdateApplication(app *TestingApplication) error {
	for i, existing := range s.apps {
		if existing.ID == app.ID {
			cp := *app
			s.apps[i] = &cp
			return nil
		}
	}
	return NewNotFoundError("application not found")
}

func (s *stubApplicationStore) ListApplicationsByUser(userID string) ([]*TestingApplication, error) {
	out := []*TestingApplication{}
	for _, app := range s.apps {
		if app.UserID == userID {
			cp := *app
			out = append(out, &cp)
		}
	}
	return out, nil
}

func validApplicationInput(userID string) ApplicationInput {
	return ApplicationInput{
		UserID:          userID,
		UserName:        "Casey",
		UserEmail:       "casey@example.com",
		WhyTesting:      "I test every sock pattern I can get",
		ExperienceLevel: ExperienceIntermediate,
		Availability:    "10h/week",
	}
}

func TestSubmitApplication(t *testing.T) {
	store := &stubApplicationStore{}
	svc := NewApplicationService(store)

	app, err := svc.Submit(validApplicationInput("u1"))
	require.NoError(t, err)
	require.Equal(t, ApplicationPending, app.Status)
	require.NotEmpty(t, app.ID)
	require.False(t, app.CreatedAt.IsZero())
}

func TestSubmitApplicationRejectsSecondPending(t *testing.T) {
	store := &stubApplicationStore{}
	svc := NewApplicationService(store)

	_, err := svc.Submit(validApplicationInput("u1"))
	require.NoError(t, err)
	_, err = svc.Submit(validApplicationInput("u1"))
	require.True(t, IsCode(err, ErrorDuplicatePending), "expected duplicate_pending, got %v", err)

	// A different user is unaffected.
	_, err = svc.Submit(validApplicationInput("u2"))
	require.NoError(t, err)
}

func TestSubmitApplicationAllowedAfterReview(t *testing.T) {
	store := &stubApplicationStore{}
	svc := NewApplicationService(store)

	app, err := svc.Submit(validApplicationInput("u1"))
	require.NoError(t, err)
	_, err = svc.Review(app.ID, ApplicationDisapproved, "admin1")
	require.NoError(t, err)

	_, err = svc.Submit(validApplicationInput("u1"))
	require.NoError(t, err)
}

func TestSubmitApplicationValidation(t *testing.T) {
	svc := NewApplicationService(&stubApplicationStore{})

	input := validApplicationInput("u1")
	input.WhyTesting = "  "
	_, err := svc.Submit(input)
	require.True(t, IsCode(err, ErrorInvalid))

	input = validApplicationInput("u1")
	input.ExperienceLevel = "wizard"
	_, err = svc.Submit(input)
	require.True(t, IsCode(err, ErrorInvalid))
}

func TestReviewApplication(t *testing.T) {
	store := &stubApplicationStore{}
	svc := NewApplicationService(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	app, err := svc.Submit(validApplicationInput("u1"))
	require.NoError(t, err)

	reviewed, err := svc.Review(app.ID, ApplicationApproved, "admin1")
	require.NoError(t, err)
	require.Equal(t, ApplicationApproved, reviewed.Status)
	require.Equal(t, "admin1", reviewed.ReviewedBy)
	require.NotNil(t, reviewed.ReviewedAt)

	// Re-review overwrites the decision by default.
	reviewed, err = svc.Review(app.ID, ApplicationDisapproved, "admin2")
	require.NoError(t, err)
	require.Equal(t, ApplicationDisapproved, reviewed.Status)
	require.Equal(t, "admin2", reviewed.ReviewedBy)
}

func TestReviewApplicationNotFound(t *testing.T) {
	svc := NewApplicationService(&stubApplicationStore{})
	_, err := svc.Review("missing", ApplicationApproved, "admin1")
	require.True(t, IsCode(err, ErrorNotFound))
}

func TestReviewApplicationBadStatus(t *testing.T) {
	svc := NewApplicationService(&stubApplicationStore{})
	_, err := svc.Review("any", ApplicationPending, "admin1")
	require.True(t, IsCode(err, ErrorInvalid))
}

func TestReviewLock(t *testing.T) {
	store := &stubApplicationStore{}
	svc := NewApplicationService(store, WithReviewLock())

	app, err := svc.Submit(validApplicationInput("u1"))
	require.NoError(t, err)
	_, err = svc.Review(app.ID, ApplicationApproved, "admin1")
	require.NoError(t, err)

	_, err = svc.Review(app.ID, ApplicationDisapproved, "admin2")
	require.True(t, IsCode(err, ErrorConflict))
}

func TestFindByUser(t *testing.T) {
	store := &stubApplicationStore{}
	svc := NewApplicationService(store)

	missing, err := svc.FindByUser("u1")
	require.NoError(t, err)
	require.Nil(t, missing)

	first, err := svc.Submit(validApplicationInput("u1"))
	require.NoError(t, err)
	_, err = svc.Review(first.ID, ApplicationDisapproved, "admin1")
	require.NoError(t, err)
	_, err = svc.Submit(validApplicationInput("u1"))
	require.NoError(t, err)

	found, err := svc.FindByUser("u1")
	require.NoError(t, err)
	require.Equal(t, first.ID, found.ID, "expected first application by insertion order")
}
