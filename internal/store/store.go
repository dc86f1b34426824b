// Package store defines the persistence contract of the testing engine
// and its indexed in-memory implementation. Services depend on narrow
// structural subsets of Store, so either implementation (memory or
// SQLite) can back any service directly.
package store

import "github.com/hivecraft/patternhive/internal/services"

type Store interface {
	// Testing applications.
	InsertApplication(app *services.TestingApplication) (*services.TestingApplication, error)
	GetApplication(id string) (*services.TestingApplication, error)
	UpdateApplication(app *services.TestingApplication) error
	ListApplicationsByUser(userID string) ([]*services.TestingApplication, error)

	// Test assignments.
	InsertAssignment(a *services.TestAssignment) (*services.TestAssignment, error)
	GetAssignment(id string) (*services.TestAssignment, error)
	UpdateAssignment(a *services.TestAssignment) error
	ListAssignmentsByTester(testerID string) ([]*services.TestAssignment, error)
	ListAssignmentsByPattern(patternID string) ([]*services.TestAssignment, error)
	ListAssignmentsByCreator(creatorID string) ([]*services.TestAssignment, error)
	ListAllAssignments() ([]*services.TestAssignment, error)

	// Test feedback.
	InsertFeedback(fb *services.TestFeedback) (*services.TestFeedback, error)
	GetFeedback(id string) (*services.TestFeedback, error)
	UpdateFeedback(fb *services.TestFeedback) error
	ListFeedbackByAssignment(assignmentID string) ([]*services.TestFeedback, error)
	ListFeedbackByPattern(patternID string) ([]*services.TestFeedback, error)
	ListFeedbackByTester(testerID string) ([]*services.TestFeedback, error)

	// Derived rows.
	UpsertPatternMetrics(m *services.PatternTestMetrics) error
	GetPatternMetrics(patternID string) (*services.PatternTestMetrics, error)
	UpsertTesterStats(st *services.TesterStats) error
	GetTesterStats(userID string) (*services.TesterStats, error)
	ListAllTesterStats() ([]*services.TesterStats, error)

	// User registry collaborator.
	InsertUser(u *services.User) error
	GetUserByID(id string) (*services.User, error)
	FindUserByEmail(email string) (*services.User, error)
	UpdateUser(u *services.User) error

	// Pattern catalog collaborator (read-mostly).
	InsertPattern(p *services.Pattern) error
	GetPatternByID(id string) (*services.Pattern, error)

	// Append-only reward ledgers.
	InsertCoinTransaction(tx *services.CoinTransaction) error
	InsertPointsTransaction(tx *services.PointsTransaction) error
	ListCoinTransactionsByUser(userID string) ([]*services.CoinTransaction, error)
	ListPointsTransactionsByUser(userID string) ([]*services.PointsTransaction, error)
}
