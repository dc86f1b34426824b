package services

import (
	"sort"
	"time"
)

// MetricsStore is the slice of the store the aggregator reads from and
// writes its derived rows to.
type MetricsStore interface {
	ListAssignmentsByPattern(patternID string) ([]*TestAssignment, error)
	ListAllAssignments() ([]*TestAssignment, error)
	ListFeedbackByPattern(patternID string) ([]*TestFeedback, error)
	UpsertPatternMetrics(m *PatternTestMetrics) error
	GetPatternMetrics(patternID string) (*PatternTestMetrics, error)
	ListAllTesterStats() ([]*TesterStats, error)
}

// PlatformAnalytics is the platform-wide rollup consumed by the admin
// dashboard.
type PlatformAnalytics struct {
	TotalTesters            int          `json:"total_testers"`
	ActiveTesters           int          `json:"active_testers"`
	TotalTests              int          `json:"total_tests"`
	CompletedTests          int          `json:"completed_tests"`
	AverageCompletionRate   float64      `json:"average_completion_rate"`
	TotalRewardsDistributed int          `json:"total_rewards_distributed"`
	TopPatterns             []TopPattern `json:"top_patterns"`
}

// TopPattern ranks a pattern by how many of its assignments completed.
type TopPattern struct {
	PatternID      string `json:"pattern_id"`
	CompletedTests int    `json:"completed_tests"`
}

const maxCommonIssues = 5

type MetricsService struct {
	store MetricsStore
	now   func() time.Time
}

func NewMetricsService(store MetricsStore) *MetricsService {
	return &MetricsService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func difficultyScore(d string) (float64, bool) {
	switch d {
	case DifficultyEasier:
		return 1, true
	case DifficultyAsExpected:
		return 2, true
	case DifficultyHarder:
		return 3, true
	}
	return 0, false
}

// RecomputePatternMetrics rebuilds a pattern's derived row wholesale from
// its assignments and feedback and overwrites the stored row. It never
// merges partial state.
func (s *MetricsService) RecomputePatternMetrics(patternID string) (*PatternTestMetrics, error) {
	assignments, err := s.store.ListAssignmentsByPattern(patternID)
	if err != nil {
		return nil, err
	}
	feedback, err := s.store.ListFeedbackByPattern(patternID)
	if err != nil {
		return nil, err
	}

	m := &PatternTestMetrics{
		PatternID:    patternID,
		CommonIssues: []string{},
		LastUpdated:  s.now(),
	}

	var completionHours float64
	for _, a := range assignments {
		m.TotalTests++
		if a.Status != AssignmentCompleted {
			continue
		}
		m.CompletedTests++
		// Completed assignments without a StartedAt contribute zero
		// hours to the sum while staying in the denominator; the
		// original marketplace behaved this way and it is preserved.
		if a.StartedAt != nil && a.CompletedAt != nil {
			completionHours += a.CompletedAt.Sub(*a.StartedAt).Hours()
		}
	}
	if m.CompletedTests > 0 {
		m.AverageCompletionTime = completionHours / float64(m.CompletedTests)
	}

	var ratingSum, claritySum, accuracySum float64
	var ratingN, clarityN, accuracyN int
	var difficultySum float64
	var difficultyN int
	seenIssues := map[string]bool{}
	for _, fb := range feedback {
		switch fb.Type {
		case FeedbackFinalReview:
			if fb.Rating >= 1 {
				ratingSum += float64(fb.Rating)
				ratingN++
			}
			if fb.Clarity >= 1 {
				claritySum += float64(fb.Clarity)
				clarityN++
			}
			if fb.Accuracy >= 1 {
				accuracySum += float64(fb.Accuracy)
				accuracyN++
			}
			if score, ok := difficultyScore(fb.Difficulty); ok {
				difficultySum += score
				difficultyN++
			}
		case FeedbackIssue:
			if len(m.CommonIssues) < maxCommonIssues && !seenIssues[fb.Message] {
				seenIssues[fb.Message] = true
				m.CommonIssues = append(m.CommonIssues, fb.Message)
			}
		}
	}
	if ratingN > 0 {
		m.AverageRating = ratingSum / float64(ratingN)
	}
	if clarityN > 0 {
		m.AverageClarity = claritySum / float64(clarityN)
	}
	if accuracyN > 0 {
		m.AverageAccuracy = accuracySum / float64(accuracyN)
	}
	if difficultyN > 0 {
		m.AverageDifficulty = difficultySum / float64(difficultyN)
	}

	if err := s.store.UpsertPatternMetrics(m); err != nil {
		return nil, err
	}
	return m, nil
}

// MetricsByPattern reads the stored derived row, or nil if the pattern
// has never been through a recompute.
func (s *MetricsService) MetricsByPattern(patternID string) (*PatternTestMetrics, error) {
	return s.store.GetPatternMetrics(patternID)
}

// Analytics computes the platform-wide rollup over all assignments and
// tester stats.
func (s *MetricsService) Analytics() (*PlatformAnalytics, error) {
	stats, err := s.store.ListAllTesterStats()
	if err != nil {
		return nil, err
	}
	assignments, err := s.store.ListAllAssignments()
	if err != nil {
		return nil, err
	}

	out := &PlatformAnalytics{
		TotalTesters: len(stats),
		TopPatterns:  []TopPattern{},
	}
	for _, st := range stats {
		if st.TotalTestsInProgress > 0 {
			out.ActiveTesters++
		}
		out.TotalRewardsDistributed += st.TotalCoinsEarned + st.TotalPointsEarned
	}

	completedByPattern := map[string]int{}
	for _, a := range assignments {
		out.TotalTests++
		if a.Status == AssignmentCompleted {
			out.CompletedTests++
			completedByPattern[a.PatternID]++
		}
	}
	if out.TotalTests > 0 {
		out.AverageCompletionRate = float64(out.CompletedTests) / float64(out.TotalTests) * 100
	}

	for id, n := range completedByPattern {
		out.TopPatterns = append(out.TopPatterns, TopPattern{PatternID: id, CompletedTests: n})
	}
	sort.SliceStable(out.TopPatterns, func(i, j int) bool {
		if out.TopPatterns[i].CompletedTests != out.TopPatterns[j].CompletedTests {
			return out.TopPatterns[i].CompletedTests > out.TopPatterns[j].CompletedTests
		}
		return out.TopPatterns[i].PatternID < out.TopPatterns[j].PatternID
	})
	if len(out.TopPatterns) > 5 {
		out.TopPatterns = out.TopPatterns[:5]
	}
	return out, nil
}
