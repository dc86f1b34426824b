package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hivecraft/patternhive/internal/services"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	conn, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	// Each pool connection would get its own in-memory database.
	conn.SetMaxOpenConns(1)
	require.NoError(t, RunMigrations(conn))
	st, err := NewSQLiteStore(conn)
	require.NoError(t, err)
	return st
}

func TestMigrationsAreIdempotent(t *testing.T) {
	conn, err := Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()
	conn.SetMaxOpenConns(1)
	require.NoError(t, RunMigrations(conn))
	require.NoError(t, RunMigrations(conn))
}

func TestApplicationRoundTrip(t *testing.T) {
	st := newTestStore(t)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	app := &services.TestingApplication{
		ID:              "app1",
		UserID:          "u1",
		UserName:        "Alex",
		UserEmail:       "alex@example.com",
		WhyTesting:      "cables",
		ExperienceLevel: services.ExperienceAdvanced,
		Status:          services.ApplicationPending,
		CreatedAt:       created,
	}
	_, err := st.InsertApplication(app)
	require.NoError(t, err)

	got, err := st.GetApplication("app1")
	require.NoError(t, err)
	require.Equal(t, services.ApplicationPending, got.Status)
	require.Nil(t, got.ReviewedAt)
	require.True(t, got.CreatedAt.Equal(created))

	reviewed := created.Add(time.Hour)
	got.Status = services.ApplicationApproved
	got.ReviewedAt = &reviewed
	got.ReviewedBy = "admin1"
	require.NoError(t, st.UpdateApplication(got))

	got, err = st.GetApplication("app1")
	require.NoError(t, err)
	require.Equal(t, services.ApplicationApproved, got.Status)
	require.NotNil(t, got.ReviewedAt)
	require.Equal(t, "admin1", got.ReviewedBy)

	list, err := st.ListApplicationsByUser("u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestUpdateMissingRowsReportNotFound(t *testing.T) {
	st := newTestStore(t)
	err := st.UpdateAssignment(&services.TestAssignment{ID: "nope"})
	require.True(t, services.IsCode(err, services.ErrorNotFound))
	err = st.UpdateApplication(&services.TestingApplication{ID: "nope"})
	require.True(t, services.IsCode(err, services.ErrorNotFound))
	err = st.UpdateUser(&services.User{ID: "nope"})
	require.True(t, services.IsCode(err, services.ErrorNotFound))

	// Reads report absence as a nil row, not an error.
	a, err := st.GetAssignment("nope")
	require.NoError(t, err)
	require.Nil(t, a)
}

func TestWorkflowAgainstSQLite(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.InsertUser(&services.User{ID: "t1", Email: "tester@example.com", Role: services.RoleTester}))
	require.NoError(t, st.InsertPattern(&services.Pattern{ID: "pat1", CreatorID: "c1", Name: "Cabled Mittens", Category: "knitting"}))

	rewards := services.NewRewardService(st)
	metrics := services.NewMetricsService(st)
	assignments := services.NewAssignmentService(st, rewards, metrics)

	a, err := assignments.Create(services.AssignmentInput{
		PatternID:      "pat1",
		TesterID:       "t1",
		Deadline:       time.Now().UTC().Add(7 * 24 * time.Hour),
		EstimatedHours: 6,
		RewardCoins:    60,
		RewardPoints:   30,
	})
	require.NoError(t, err)
	_, err = assignments.Accept(a.ID)
	require.NoError(t, err)
	_, err = assignments.Start(a.ID)
	require.NoError(t, err)

	_, summary, err := assignments.Complete(a.ID, services.FinalReview{
		Rating: 5, Clarity: 4, Accuracy: 5,
		Difficulty: services.DifficultyAsExpected,
		Message:    "Great!",
	})
	require.NoError(t, err)
	require.Equal(t, &services.RewardSummary{Coins: 60, Points: 30, XP: 16}, summary)

	u, err := st.GetUserByID("t1")
	require.NoError(t, err)
	require.Equal(t, 60, u.CoinBalance)
	require.Equal(t, 30, u.PointBalance)
	txs, err := st.ListCoinTransactionsByUser("t1")
	require.NoError(t, err)
	require.Len(t, txs, 1)

	stats, err := st.GetTesterStats("t1")
	require.NoError(t, err)
	require.Equal(t, 16, stats.XP)
	require.Equal(t, 1, stats.TotalTestsCompleted)
	require.Contains(t, stats.Badges, "First Test")
	require.Equal(t, []string{"knitting"}, stats.Specialties)

	m, err := st.GetPatternMetrics("pat1")
	require.NoError(t, err)
	require.Equal(t, 1, m.CompletedTests)
	require.InDelta(t, 5.0, m.AverageRating, 1e-9)

	fbs, err := st.ListFeedbackByAssignment(a.ID)
	require.NoError(t, err)
	require.Len(t, fbs, 1)
	require.Equal(t, services.FeedbackFinalReview, fbs[0].Type)
	require.Empty(t, fbs[0].Images)
}

func TestFeedbackImagesRoundTrip(t *testing.T) {
	st := newTestStore(t)
	fb := &services.TestFeedback{
		ID:           "fb1",
		AssignmentID: "a1",
		TesterID:     "t1",
		PatternID:    "pat1",
		Type:         services.FeedbackIssue,
		Message:      "chart off by one",
		Images:       []string{"https://img.example.com/1.jpg", "https://img.example.com/2.jpg"},
		CreatedAt:    time.Now().UTC(),
	}
	_, err := st.InsertFeedback(fb)
	require.NoError(t, err)
	got, err := st.GetFeedback("fb1")
	require.NoError(t, err)
	require.Equal(t, fb.Images, got.Images)
	require.Nil(t, got.RespondedAt)
}
