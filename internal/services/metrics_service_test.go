package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubMetricsStore struct {
	assignments []*TestAssignment
	feedback    []*TestFeedback
	metrics     map[string]*PatternTestMetrics
	stats       []*TesterStats
}

func newStubMetricsStore() *stubMetricsStore {
	return &stubMetricsStore{metrics: map[string]*PatternTestMetrics{}}
}

func (s *stubMetricsStore) ListAssignmentsByPattern(patternID string) ([]*TestAssignment, error) {
	out := []*TestAssignment{}
	for _, a := range s.assignments {
		if a.PatternID == patternID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubMetricsStore) ListAllAssignments() ([]*TestAssignment, error) {
	return s.assignments, nil
}

func (s *stubMetricsStore) ListFeedbackByPattern(patternID string) ([]*TestFeedback, error) {
	out := []*TestFeedback{}
	for _, fb := range s.feedback {
		if fb.PatternID == patternID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (s *stubMetricsStore) UpsertPatternMetrics(m *PatternTestMetrics) error {
	cp := *m
	s.metrics[m.PatternID] = &cp
	return nil
}

func (s *stubMetricsStore) GetPatternMetrics(patternID string) (*PatternTestMetrics, error) {
	if m, ok := s.metrics[patternID]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (s *stubMetricsStore) ListAllTesterStats() ([]*TesterStats, error) {
	return s.stats, nil
}

func patternAssignment(id, patternID, status string, hours float64) *TestAssignment {
	a := &TestAssignment{ID: id, PatternID: patternID, Status: status}
	if status == AssignmentCompleted {
		started := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
		completed := started.Add(time.Duration(hours * float64(time.Hour)))
		a.StartedAt = &started
		a.CompletedAt = &completed
	}
	return a
}

func TestRecomputePatternMetrics(t *testing.T) {
	store := newStubMetricsStore()
	store.assignments = []*TestAssignment{
		patternAssignment("a1", "pat1", AssignmentCompleted, 4),
		patternAssignment("a2", "pat1", AssignmentCompleted, 8),
		patternAssignment("a3", "pat1", AssignmentInProgress, 0),
		patternAssignment("a4", "pat1", AssignmentCancelled, 0),
		patternAssignment("a5", "other", AssignmentCompleted, 2),
	}
	store.feedback = []*TestFeedback{
		{PatternID: "pat1", Type: FeedbackFinalReview, Rating: 5, Clarity: 4, Accuracy: 5, Difficulty: DifficultyAsExpected},
		{PatternID: "pat1", Type: FeedbackFinalReview, Rating: 3, Clarity: 2, Accuracy: 3, Difficulty: DifficultyHarder},
		{PatternID: "pat1", Type: FeedbackIssue, Message: "row 12 chart is off"},
		{PatternID: "pat1", Type: FeedbackIssue, Message: "row 12 chart is off"},
		{PatternID: "pat1", Type: FeedbackIssue, Message: "sleeve count wrong"},
		{PatternID: "pat1", Type: FeedbackQuestion, Message: "which yarn weight?"},
	}
	svc := NewMetricsService(store)

	m, err := svc.RecomputePatternMetrics("pat1")
	require.NoError(t, err)
	require.Equal(t, 4, m.TotalTests)
	require.Equal(t, 2, m.CompletedTests)
	require.InDelta(t, 4.0, m.AverageRating, 1e-9)
	require.InDelta(t, 3.0, m.AverageClarity, 1e-9)
	require.InDelta(t, 4.0, m.AverageAccuracy, 1e-9)
	require.InDelta(t, 2.5, m.AverageDifficulty, 1e-9)
	require.InDelta(t, 6.0, m.AverageCompletionTime, 1e-9)
	require.Equal(t, []string{"row 12 chart is off", "sleeve count wrong"}, m.CommonIssues)
	require.False(t, m.LastUpdated.IsZero())

	// The row is upserted.
	stored, err := svc.MetricsByPattern("pat1")
	require.NoError(t, err)
	require.Equal(t, m.CompletedTests, stored.CompletedTests)
}

func TestRecomputePatternMetricsEmpty(t *testing.T) {
	svc := NewMetricsService(newStubMetricsStore())
	m, err := svc.RecomputePatternMetrics("pat1")
	require.NoError(t, err)
	require.Zero(t, m.TotalTests)
	require.Zero(t, m.AverageRating)
	require.Zero(t, m.AverageClarity)
	require.Zero(t, m.AverageCompletionTime)
	require.Empty(t, m.CommonIssues)
}

func TestRecomputePatternMetricsCapsIssues(t *testing.T) {
	store := newStubMetricsStore()
	msgs := []string{"one", "two", "three", "four", "five", "six", "seven"}
	for _, msg := range msgs {
		store.feedback = append(store.feedback, &TestFeedback{PatternID: "pat1", Type: FeedbackIssue, Message: msg})
	}
	svc := NewMetricsService(store)

	m, err := svc.RecomputePatternMetrics("pat1")
	require.NoError(t, err)
	require.Len(t, m.CommonIssues, 5)
	require.Equal(t, []string{"one", "two", "three", "four", "five"}, m.CommonIssues)
}

func TestRecomputePatternMetricsMissingStartSkewsLow(t *testing.T) {
	store := newStubMetricsStore()
	started := patternAssignment("a1", "pat1", AssignmentCompleted, 10)
	unstarted := patternAssignment("a2", "pat1", AssignmentCompleted, 10)
	unstarted.StartedAt = nil
	store.assignments = []*TestAssignment{started, unstarted}
	svc := NewMetricsService(store)

	m, err := svc.RecomputePatternMetrics("pat1")
	require.NoError(t, err)
	require.InDelta(t, 5.0, m.AverageCompletionTime, 1e-9)
}

func TestPlatformAnalytics(t *testing.T) {
	store := newStubMetricsStore()
	store.stats = []*TesterStats{
		{UserID: "t1", TotalTestsInProgress: 1, TotalCoinsEarned: 100, TotalPointsEarned: 50},
		{UserID: "t2", TotalCoinsEarned: 40, TotalPointsEarned: 10},
	}
	store.assignments = []*TestAssignment{
		patternAssignment("a1", "pat1", AssignmentCompleted, 1),
		patternAssignment("a2", "pat1", AssignmentCompleted, 1),
		patternAssignment("a3", "pat2", AssignmentCompleted, 1),
		patternAssignment("a4", "pat3", AssignmentInProgress, 0),
	}
	svc := NewMetricsService(store)

	out, err := svc.Analytics()
	require.NoError(t, err)
	require.Equal(t, 2, out.TotalTesters)
	require.Equal(t, 1, out.ActiveTesters)
	require.Equal(t, 4, out.TotalTests)
	require.Equal(t, 3, out.CompletedTests)
	require.InDelta(t, 75.0, out.AverageCompletionRate, 1e-9)
	require.Equal(t, 200, out.TotalRewardsDistributed)
	require.Equal(t, []TopPattern{{PatternID: "pat1", CompletedTests: 2}, {PatternID: "pat2", CompletedTests: 1}}, out.TopPatterns)
}

func TestPlatformAnalyticsEmpty(t *testing.T) {
	svc := NewMetricsService(newStubMetricsStore())
	out, err := svc.Analytics()
	require.NoError(t, err)
	require.Zero(t, out.TotalTests)
	require.Zero(t, out.AverageCompletionRate)
	require.Empty(t, out.TopPatterns)
}
