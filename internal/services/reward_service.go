package services

import (
	"fmt"
	"sort"
	"time"
)

// RewardStore is the slice of the store the reward and leveling engine
// needs: the user registry, the two ledgers, and the records its derived
// aggregates are computed from.
type RewardStore interface {
	GetUserByID(id string) (*User, error)
	UpdateUser(u *User) error
	InsertCoinTransaction(tx *CoinTransaction) error
	InsertPointsTransaction(tx *PointsTransaction) error
	ListAssignmentsByTester(testerID string) ([]*TestAssignment, error)
	ListFeedbackByTester(testerID string) ([]*TestFeedback, error)
	GetPatternByID(id string) (*Pattern, error)
	GetTesterStats(userID string) (*TesterStats, error)
	UpsertTesterStats(st *TesterStats) error
	ListAllTesterStats() ([]*TesterStats, error)
}

// RewardSummary is returned to the caller of Complete.
type RewardSummary struct {
	Coins  int `json:"coins"`
	Points int `json:"points"`
	XP     int `json:"xp"`
}

// LeaderboardEntry joins a tester's stats with their user record.
type LeaderboardEntry struct {
	Stats *TesterStats `json:"stats"`
	User  *User        `json:"user"`
}

type RewardService struct {
	store RewardStore
	now   func() time.Time
	idGen func() string
}

func NewRewardService(store RewardStore) *RewardService {
	return &RewardService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func() string { return shortID(12) },
	}
}

// XPForAssignment is the progression credit for one completed assignment.
func XPForAssignment(a *TestAssignment) int { return 10 + a.EstimatedHours }

// LevelForXP buckets accumulated XP into a level, starting at 1.
func LevelForXP(xp int) int { return xp/100 + 1 }

var completionBadges = []struct {
	threshold int
	name      string
}{
	{1, "First Test"},
	{5, "Novice Tester"},
	{10, "Experienced Tester"},
	{25, "Expert Tester"},
	{50, "Master Tester"},
	{100, "Legend Tester"},
}

var levelBadges = []struct {
	threshold int
	name      string
}{
	{5, "Level 5 Achiever"},
	{10, "Level 10 Achiever"},
}

// BadgesFor derives the badge set from a completed-test count and level.
// Thresholds only ever add badges, so the set is monotonic under further
// completions.
func BadgesFor(completed, level int) []string {
	badges := []string{}
	for _, b := range completionBadges {
		if completed >= b.threshold {
			badges = append(badges, b.name)
		}
	}
	for _, b := range levelBadges {
		if level >= b.threshold {
			badges = append(badges, b.name)
		}
	}
	return badges
}

// Payout credits an assignment's fixed rewards to the tester's balances
// and writes one row to each ledger, so balances stay reconstructable.
// It is invoked only from AssignmentService.Complete, which holds the
// exactly-once guard.
func (s *RewardService) Payout(a *TestAssignment) (*RewardSummary, error) {
	user, err := s.store.GetUserByID(a.TesterID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NewNotFoundError("tester not found")
	}
	now := s.now()
	user.CoinBalance += a.RewardCoins
	user.PointBalance += a.RewardPoints
	if err := s.store.UpdateUser(user); err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("pattern test reward (assignment %s)", a.ID)
	if err := s.store.InsertCoinTransaction(&CoinTransaction{
		ID:          s.idGen(),
		UserID:      a.TesterID,
		Amount:      a.RewardCoins,
		Type:        TransactionTestingReward,
		Description: desc,
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}
	if err := s.store.InsertPointsTransaction(&PointsTransaction{
		ID:          s.idGen(),
		UserID:      a.TesterID,
		Amount:      a.RewardPoints,
		Type:        TransactionTestingReward,
		Description: desc,
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}
	return &RewardSummary{Coins: a.RewardCoins, Points: a.RewardPoints, XP: XPForAssignment(a)}, nil
}

// RecomputeTesterStats rebuilds a tester's derived row from scratch over
// all of their assignments and final reviews, then upserts it. JoinedAt
// is preserved from an existing row.
func (s *RewardService) RecomputeTesterStats(userID string) (*TesterStats, error) {
	assignments, err := s.store.ListAssignmentsByTester(userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	st := &TesterStats{
		UserID:       userID,
		Specialties:  []string{},
		Badges:       []string{},
		JoinedAt:     now,
		LastActiveAt: now,
	}
	if prev, err := s.store.GetTesterStats(userID); err != nil {
		return nil, err
	} else if prev != nil {
		st.JoinedAt = prev.JoinedAt
	}

	var completionHours float64
	seenCategories := map[string]bool{}
	for _, a := range assignments {
		switch a.Status {
		case AssignmentCompleted:
			st.TotalTestsCompleted++
			st.XP += XPForAssignment(a)
			st.TotalCoinsEarned += a.RewardCoins
			st.TotalPointsEarned += a.RewardPoints
			// Assignments that were never started contribute zero hours
			// while staying in the denominator, matching the original
			// marketplace computation.
			if a.StartedAt != nil && a.CompletedAt != nil {
				completionHours += a.CompletedAt.Sub(*a.StartedAt).Hours()
			}
			if p, err := s.store.GetPatternByID(a.PatternID); err != nil {
				return nil, err
			} else if p != nil && p.Category != "" && !seenCategories[p.Category] {
				seenCategories[p.Category] = true
				st.Specialties = append(st.Specialties, p.Category)
			}
		case AssignmentInProgress:
			st.TotalTestsInProgress++
		}
	}
	st.Level = LevelForXP(st.XP)
	if st.TotalTestsCompleted > 0 {
		st.AverageCompletionTime = completionHours / float64(st.TotalTestsCompleted)
	}

	feedback, err := s.store.ListFeedbackByTester(userID)
	if err != nil {
		return nil, err
	}
	ratingSum, ratingCount := 0, 0
	for _, fb := range feedback {
		if fb.Type == FeedbackFinalReview && fb.Rating >= 1 {
			ratingSum += fb.Rating
			ratingCount++
		}
	}
	if ratingCount > 0 {
		st.AverageRating = float64(ratingSum) / float64(ratingCount)
	}

	st.Badges = BadgesFor(st.TotalTestsCompleted, st.Level)
	if err := s.store.UpsertTesterStats(st); err != nil {
		return nil, err
	}
	return st, nil
}

// StatsByUser reads the stored derived row, or nil if the user has never
// been through a recompute.
func (s *RewardService) StatsByUser(userID string) (*TesterStats, error) {
	return s.store.GetTesterStats(userID)
}

// Leaderboard returns the top testers by completed tests, joined with
// their user record. Entries whose user cannot be resolved are dropped.
func (s *RewardService) Leaderboard(limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	all, err := s.store.ListAllTesterStats()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].TotalTestsCompleted > all[j].TotalTestsCompleted
	})
	if len(all) > limit {
		all = all[:limit]
	}
	entries := make([]*LeaderboardEntry, 0, len(all))
	for _, st := range all {
		user, err := s.store.GetUserByID(st.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			continue
		}
		entries = append(entries, &LeaderboardEntry{Stats: st, User: user})
	}
	return entries, nil
}
