package services

import "time"

// Application status values.
const (
	ApplicationPending     = "pending"
	ApplicationApproved    = "approved"
	ApplicationDisapproved = "disapproved"
)

// Experience levels a tester can declare on an application.
const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceAdvanced     = "advanced"
)

// Assignment status values. Transitions are driven by the named
// operations on AssignmentService, never by raw status writes.
const (
	AssignmentPending    = "pending"
	AssignmentAccepted   = "accepted"
	AssignmentInProgress = "in_progress"
	AssignmentCompleted  = "completed"
	AssignmentCancelled  = "cancelled"
)

// Feedback entry types.
const (
	FeedbackQuestion       = "question"
	FeedbackIssue          = "issue"
	FeedbackProgressUpdate = "progress_update"
	FeedbackFinalReview    = "final_review"
)

// Perceived difficulty reported in a final review.
const (
	DifficultyEasier     = "easier"
	DifficultyAsExpected = "as_expected"
	DifficultyHarder     = "harder"
)

// TestingApplication is a user's request to become a pattern tester.
// At most one pending application may exist per user.
type TestingApplication struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	UserName        string     `json:"user_name"`
	UserEmail       string     `json:"user_email"`
	WhyTesting      string     `json:"why_testing"`
	ExperienceLevel string     `json:"experience_level"`
	Availability    string     `json:"availability"`
	Comments        string     `json:"comments,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy      string     `json:"reviewed_by,omitempty"`
}

// TestAssignment is one tester's commitment to test one pattern for one
// creator. Rewards are fixed at creation time and paid exactly once.
type TestAssignment struct {
	ID             string     `json:"id"`
	PatternID      string     `json:"pattern_id"`
	TesterID       string     `json:"tester_id"`
	CreatorID      string     `json:"creator_id"`
	Status         string     `json:"status"`
	AssignedAt     time.Time  `json:"assigned_at"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Deadline       time.Time  `json:"deadline"`
	Progress       int        `json:"progress"`
	EstimatedHours int        `json:"estimated_hours"`
	RewardCoins    int        `json:"reward_coins"`
	RewardPoints   int        `json:"reward_points"`
}

// TestFeedback is one message in the tester↔creator exchange for an
// assignment. Entries are append-only; only a creator response may be
// attached after the fact.
type TestFeedback struct {
	ID           string     `json:"id"`
	AssignmentID string     `json:"assignment_id"`
	TesterID     string     `json:"tester_id"`
	PatternID    string     `json:"pattern_id"`
	CreatorID    string     `json:"creator_id"`
	Type         string     `json:"type"`
	Message      string     `json:"message"`
	Images       []string   `json:"images,omitempty"`
	Rating       int        `json:"rating,omitempty"`
	Clarity      int        `json:"clarity,omitempty"`
	Accuracy     int        `json:"accuracy,omitempty"`
	Difficulty   string     `json:"difficulty,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
	Response     string     `json:"response,omitempty"`
}

// PatternTestMetrics is a derived row per pattern, always recomputed
// wholesale from the assignments and feedback for that pattern.
type PatternTestMetrics struct {
	PatternID             string    `json:"pattern_id"`
	TotalTests            int       `json:"total_tests"`
	CompletedTests        int       `json:"completed_tests"`
	AverageRating         float64   `json:"average_rating"`
	AverageCompletionTime float64   `json:"average_completion_time"`
	AverageDifficulty     float64   `json:"average_difficulty"`
	AverageClarity        float64   `json:"average_clarity"`
	AverageAccuracy       float64   `json:"average_accuracy"`
	CommonIssues          []string  `json:"common_issues"`
	LastUpdated           time.Time `json:"last_updated"`
}

// TesterStats is a derived row per tester, recomputed from scratch after
// every completion.
type TesterStats struct {
	UserID                string    `json:"user_id"`
	Level                 int       `json:"level"`
	XP                    int       `json:"xp"`
	TotalTestsCompleted   int       `json:"total_tests_completed"`
	TotalTestsInProgress  int       `json:"total_tests_in_progress"`
	AverageRating         float64   `json:"average_rating"`
	AverageCompletionTime float64   `json:"average_completion_time"`
	Specialties           []string  `json:"specialties"`
	Badges                []string  `json:"badges"`
	TotalCoinsEarned      int       `json:"total_coins_earned"`
	TotalPointsEarned     int       `json:"total_points_earned"`
	JoinedAt              time.Time `json:"joined_at"`
	LastActiveAt          time.Time `json:"last_active_at"`
}

// User is the slice of the user registry this engine touches: identity,
// role and the two reward balances.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"` // tester, creator or admin
	PassHash     []byte    `json:"-"`
	CoinBalance  int       `json:"coin_balance"`
	PointBalance int       `json:"point_balance"`
	CreatedAt    time.Time `json:"created_at"`
}

// Pattern is the read-only view of a marketplace pattern the engine needs
// for existence checks and specialty derivation.
type Pattern struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creator_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TransactionTestingReward is the ledger transaction type written by
// reward payouts.
const TransactionTestingReward = "testing_reward"

// CoinTransaction is one append-only coin ledger row. Balances must be
// reconstructable by summing a user's rows.
type CoinTransaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      int       `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PointsTransaction is one append-only points ledger row.
type PointsTransaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      int       `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
