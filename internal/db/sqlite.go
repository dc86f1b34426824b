// Package db provides the SQLite-backed implementation of the engine's
// store contract.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hivecraft/patternhive/internal/logging"
	"github.com/hivecraft/patternhive/internal/services"
	"github.com/hivecraft/patternhive/internal/store"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*sql.DB, error) {
	return sql.Open("sqlite3", path)
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func encodeStrings(v []string) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeStrings(ns sql.NullString) []string {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		logging.S().Warnw("sqlite store: decode string slice", "err", err)
		return []string{}
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) InsertApplication(app *services.TestingApplication) (*services.TestingApplication, error) {
	_, err := s.db.Exec(`INSERT INTO testing_applications
		(id, user_id, user_name, user_email, why_testing, experience_level, availability, comments, status, created_at, reviewed_at, reviewed_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.UserID, app.UserName, app.UserEmail, app.WhyTesting, app.ExperienceLevel,
		app.Availability, app.Comments, app.Status, app.CreatedAt, toNullTime(app.ReviewedAt), toNullString(app.ReviewedBy))
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return app, nil
}

func scanApplication(r rowScanner) (*services.TestingApplication, error) {
	var app services.TestingApplication
	var reviewedAt sql.NullTime
	var reviewedBy sql.NullString
	err := r.Scan(&app.ID, &app.UserID, &app.UserName, &app.UserEmail, &app.WhyTesting,
		&app.ExperienceLevel, &app.Availability, &app.Comments, &app.Status, &app.CreatedAt,
		&reviewedAt, &reviewedBy)
	if err != nil {
		return nil, err
	}
	app.ReviewedAt = fromNullTime(reviewedAt)
	app.ReviewedBy = reviewedBy.String
	return &app, nil
}

const applicationColumns = `id, user_id, user_name, user_email, why_testing, experience_level, availability, comments, status, created_at, reviewed_at, reviewed_by`

func (s *SQLiteStore) GetApplication(id string) (*services.TestingApplication, error) {
	row := s.db.QueryRow(`SELECT `+applicationColumns+` FROM testing_applications WHERE id = ?`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

func (s *SQLiteStore) UpdateApplication(app *services.TestingApplication) error {
	res, err := s.db.Exec(`UPDATE testing_applications SET
		user_name = ?, user_email = ?, why_testing = ?, experience_level = ?, availability = ?,
		comments = ?, status = ?, reviewed_at = ?, reviewed_by = ? WHERE id = ?`,
		app.UserName, app.UserEmail, app.WhyTesting, app.ExperienceLevel, app.Availability,
		app.Comments, app.Status, toNullTime(app.ReviewedAt), toNullString(app.ReviewedBy), app.ID)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.NewNotFoundError("application not found")
	}
	return nil
}

func (s *SQLiteStore) ListApplicationsByUser(userID string) ([]*services.TestingApplication, error) {
	rows, err := s.db.Query(`SELECT `+applicationColumns+` FROM testing_applications WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()
	out := []*services.TestingApplication{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

const assignmentColumns = `id, pattern_id, tester_id, creator_id, status, assigned_at, accepted_at, started_at, completed_at, deadline, progress, estimated_hours, reward_coins, reward_points`

func (s *SQLiteStore) InsertAssignment(a *services.TestAssignment) (*services.TestAssignment, error) {
	_, err := s.db.Exec(`INSERT INTO test_assignments
		(id, pattern_id, tester_id, creator_id, status, assigned_at, accepted_at, started_at, completed_at, deadline, progress, estimated_hours, reward_coins, reward_points)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.PatternID, a.TesterID, a.CreatorID, a.Status, a.AssignedAt,
		toNullTime(a.AcceptedAt), toNullTime(a.StartedAt), toNullTime(a.CompletedAt),
		a.Deadline, a.Progress, a.EstimatedHours, a.RewardCoins, a.RewardPoints)
	if err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}
	return a, nil
}

func scanAssignment(r rowScanner) (*services.TestAssignment, error) {
	var a services.TestAssignment
	var acceptedAt, startedAt, completedAt sql.NullTime
	err := r.Scan(&a.ID, &a.PatternID, &a.TesterID, &a.CreatorID, &a.Status, &a.AssignedAt,
		&acceptedAt, &startedAt, &completedAt, &a.Deadline, &a.Progress, &a.EstimatedHours,
		&a.RewardCoins, &a.RewardPoints)
	if err != nil {
		return nil, err
	}
	a.AcceptedAt = fromNullTime(acceptedAt)
	a.StartedAt = fromNullTime(startedAt)
	a.CompletedAt = fromNullTime(completedAt)
	return &a, nil
}

func (s *SQLiteStore) GetAssignment(id string) (*services.TestAssignment, error) {
	row := s.db.QueryRow(`SELECT `+assignmentColumns+` FROM test_assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) UpdateAssignment(a *services.TestAssignment) error {
	res, err := s.db.Exec(`UPDATE test_assignments SET
		status = ?, accepted_at = ?, started_at = ?, completed_at = ?, deadline = ?,
		progress = ?, estimated_hours = ? WHERE id = ?`,
		a.Status, toNullTime(a.AcceptedAt), toNullTime(a.StartedAt), toNullTime(a.CompletedAt),
		a.Deadline, a.Progress, a.EstimatedHours, a.ID)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.NewNotFoundError("assignment not found")
	}
	return nil
}

func (s *SQLiteStore) listAssignments(where string, args ...any) ([]*services.TestAssignment, error) {
	q := `SELECT ` + assignmentColumns + ` FROM test_assignments`
	if where != "" {
		q += ` WHERE ` + where
	}
	q += ` ORDER BY rowid`
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()
	out := []*services.TestAssignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListAssignmentsByTester(testerID string) ([]*services.TestAssignment, error) {
	return s.listAssignments(`tester_id = ?`, testerID)
}

func (s *SQLiteStore) ListAssignmentsByPattern(patternID string) ([]*services.TestAssignment, error) {
	return s.listAssignments(`pattern_id = ?`, patternID)
}

func (s *SQLiteStore) ListAssignmentsByCreator(creatorID string) ([]*services.TestAssignment, error) {
	return s.listAssignments(`creator_id = ?`, creatorID)
}

func (s *SQLiteStore) ListAllAssignments() ([]*services.TestAssignment, error) {
	return s.listAssignments("")
}

const feedbackColumns = `id, assignment_id, tester_id, pattern_id, creator_id, type, message, images, rating, clarity, accuracy, difficulty, created_at, responded_at, response`

func (s *SQLiteStore) InsertFeedback(fb *services.TestFeedback) (*services.TestFeedback, error) {
	images, err := encodeStrings(fb.Images)
	if err != nil {
		return nil, fmt.Errorf("encode feedback images: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO test_feedback
		(id, assignment_id, tester_id, pattern_id, creator_id, type, message, images, rating, clarity, accuracy, difficulty, created_at, responded_at, response)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fb.ID, fb.AssignmentID, fb.TesterID, fb.PatternID, fb.CreatorID, fb.Type, fb.Message,
		images, fb.Rating, fb.Clarity, fb.Accuracy, fb.Difficulty, fb.CreatedAt,
		toNullTime(fb.RespondedAt), fb.Response)
	if err != nil {
		return nil, fmt.Errorf("insert feedback: %w", err)
	}
	return fb, nil
}

func scanFeedback(r rowScanner) (*services.TestFeedback, error) {
	var fb services.TestFeedback
	var images sql.NullString
	var respondedAt sql.NullTime
	err := r.Scan(&fb.ID, &fb.AssignmentID, &fb.TesterID, &fb.PatternID, &fb.CreatorID,
		&fb.Type, &fb.Message, &images, &fb.Rating, &fb.Clarity, &fb.Accuracy, &fb.Difficulty,
		&fb.CreatedAt, &respondedAt, &fb.Response)
	if err != nil {
		return nil, err
	}
	if images.Valid {
		fb.Images = decodeStrings(images)
	}
	fb.RespondedAt = fromNullTime(respondedAt)
	return &fb, nil
}

func (s *SQLiteStore) GetFeedback(id string) (*services.TestFeedback, error) {
	row := s.db.QueryRow(`SELECT `+feedbackColumns+` FROM test_feedback WHERE id = ?`, id)
	fb, err := scanFeedback(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get feedback: %w", err)
	}
	return fb, nil
}

func (s *SQLiteStore) UpdateFeedback(fb *services.TestFeedback) error {
	res, err := s.db.Exec(`UPDATE test_feedback SET responded_at = ?, response = ? WHERE id = ?`,
		toNullTime(fb.RespondedAt), fb.Response, fb.ID)
	if err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.NewNotFoundError("feedback not found")
	}
	return nil
}

func (s *SQLiteStore) listFeedback(where string, args ...any) ([]*services.TestFeedback, error) {
	rows, err := s.db.Query(`SELECT `+feedbackColumns+` FROM test_feedback WHERE `+where+` ORDER BY rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()
	out := []*services.TestFeedback{}
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListFeedbackByAssignment(assignmentID string) ([]*services.TestFeedback, error) {
	return s.listFeedback(`assignment_id = ?`, assignmentID)
}

func (s *SQLiteStore) ListFeedbackByPattern(patternID string) ([]*services.TestFeedback, error) {
	return s.listFeedback(`pattern_id = ?`, patternID)
}

func (s *SQLiteStore) ListFeedbackByTester(testerID string) ([]*services.TestFeedback, error) {
	return s.listFeedback(`tester_id = ?`, testerID)
}

func (s *SQLiteStore) UpsertPatternMetrics(m *services.PatternTestMetrics) error {
	issues, err := encodeStrings(m.CommonIssues)
	if err != nil {
		return fmt.Errorf("encode common issues: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO test_metrics
		(pattern_id, total_tests, completed_tests, average_rating, average_completion_time, average_difficulty, average_clarity, average_accuracy, common_issues, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pattern_id) DO UPDATE SET
			total_tests = excluded.total_tests,
			completed_tests = excluded.completed_tests,
			average_rating = excluded.average_rating,
			average_completion_time = excluded.average_completion_time,
			average_difficulty = excluded.average_difficulty,
			average_clarity = excluded.average_clarity,
			average_accuracy = excluded.average_accuracy,
			common_issues = excluded.common_issues,
			last_updated = excluded.last_updated`,
		m.PatternID, m.TotalTests, m.CompletedTests, m.AverageRating, m.AverageCompletionTime,
		m.AverageDifficulty, m.AverageClarity, m.AverageAccuracy, issues, m.LastUpdated)
	if err != nil {
		return fmt.Errorf("upsert pattern metrics: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetPatternMetrics(patternID string) (*services.PatternTestMetrics, error) {
	row := s.db.QueryRow(`SELECT pattern_id, total_tests, completed_tests, average_rating, average_completion_time, average_difficulty, average_clarity, average_accuracy, common_issues, last_updated
		FROM test_metrics WHERE pattern_id = ?`, patternID)
	var m services.PatternTestMetrics
	var issues sql.NullString
	err := row.Scan(&m.PatternID, &m.TotalTests, &m.CompletedTests, &m.AverageRating,
		&m.AverageCompletionTime, &m.AverageDifficulty, &m.AverageClarity, &m.AverageAccuracy,
		&issues, &m.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pattern metrics: %w", err)
	}
	m.CommonIssues = decodeStrings(issues)
	return &m, nil
}

func (s *SQLiteStore) UpsertTesterStats(st *services.TesterStats) error {
	specialties, err := encodeStrings(st.Specialties)
	if err != nil {
		return fmt.Errorf("encode specialties: %w", err)
	}
	badges, err := encodeStrings(st.Badges)
	if err != nil {
		return fmt.Errorf("encode badges: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO tester_stats
		(user_id, level, xp, total_tests_completed, total_tests_in_progress, average_rating, average_completion_time, specialties, badges, total_coins_earned, total_points_earned, joined_at, last_active_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			level = excluded.level,
			xp = excluded.xp,
			total_tests_completed = excluded.total_tests_completed,
			total_tests_in_progress = excluded.total_tests_in_progress,
			average_rating = excluded.average_rating,
			average_completion_time = excluded.average_completion_time,
			specialties = excluded.specialties,
			badges = excluded.badges,
			total_coins_earned = excluded.total_coins_earned,
			total_points_earned = excluded.total_points_earned,
			joined_at = excluded.joined_at,
			last_active_at = excluded.last_active_at`,
		st.UserID, st.Level, st.XP, st.TotalTestsCompleted, st.TotalTestsInProgress,
		st.AverageRating, st.AverageCompletionTime, specialties, badges,
		st.TotalCoinsEarned, st.TotalPointsEarned, st.JoinedAt, st.LastActiveAt)
	if err != nil {
		return fmt.Errorf("upsert tester stats: %w", err)
	}
	return nil
}

const statsColumns = `user_id, level, xp, total_tests_completed, total_tests_in_progress, average_rating, average_completion_time, specialties, badges, total_coins_earned, total_points_earned, joined_at, last_active_at`

func scanStats(r rowScanner) (*services.TesterStats, error) {
	var st services.TesterStats
	var specialties, badges sql.NullString
	err := r.Scan(&st.UserID, &st.Level, &st.XP, &st.TotalTestsCompleted, &st.TotalTestsInProgress,
		&st.AverageRating, &st.AverageCompletionTime, &specialties, &badges,
		&st.TotalCoinsEarned, &st.TotalPointsEarned, &st.JoinedAt, &st.LastActiveAt)
	if err != nil {
		return nil, err
	}
	st.Specialties = decodeStrings(specialties)
	st.Badges = decodeStrings(badges)
	return &st, nil
}

func (s *SQLiteStore) GetTesterStats(userID string) (*services.TesterStats, error) {
	row := s.db.QueryRow(`SELECT `+statsColumns+` FROM tester_stats WHERE user_id = ?`, userID)
	st, err := scanStats(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tester stats: %w", err)
	}
	return st, nil
}

func (s *SQLiteStore) ListAllTesterStats() ([]*services.TesterStats, error) {
	rows, err := s.db.Query(`SELECT ` + statsColumns + ` FROM tester_stats`)
	if err != nil {
		return nil, fmt.Errorf("list tester stats: %w", err)
	}
	defer rows.Close()
	out := []*services.TesterStats{}
	for rows.Next() {
		st, err := scanStats(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertUser(u *services.User) error {
	_, err := s.db.Exec(`INSERT INTO users (id, email, name, role, pass_hash, coin_balance, point_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.Role, u.PassHash, u.CoinBalance, u.PointBalance, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func scanUser(r rowScanner) (*services.User, error) {
	var u services.User
	var hash []byte
	err := r.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &hash, &u.CoinBalance, &u.PointBalance, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.PassHash = hash
	return &u, nil
}

func (s *SQLiteStore) GetUserByID(id string) (*services.User, error) {
	row := s.db.QueryRow(`SELECT id, email, name, role, pass_hash, coin_balance, point_balance, created_at FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) FindUserByEmail(email string) (*services.User, error) {
	row := s.db.QueryRow(`SELECT id, email, name, role, pass_hash, coin_balance, point_balance, created_at FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) UpdateUser(u *services.User) error {
	res, err := s.db.Exec(`UPDATE users SET email = ?, name = ?, role = ?, pass_hash = ?, coin_balance = ?, point_balance = ? WHERE id = ?`,
		u.Email, u.Name, u.Role, u.PassHash, u.CoinBalance, u.PointBalance, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.NewNotFoundError("user not found")
	}
	return nil
}

func (s *SQLiteStore) InsertPattern(p *services.Pattern) error {
	_, err := s.db.Exec(`INSERT INTO patterns (id, creator_id, name, category, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.CreatorID, p.Name, p.Category, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert pattern: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetPatternByID(id string) (*services.Pattern, error) {
	row := s.db.QueryRow(`SELECT id, creator_id, name, category, created_at FROM patterns WHERE id = ?`, id)
	var p services.Pattern
	err := row.Scan(&p.ID, &p.CreatorID, &p.Name, &p.Category, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pattern: %w", err)
	}
	return &p, nil
}

func (s *SQLiteStore) InsertCoinTransaction(tx *services.CoinTransaction) error {
	_, err := s.db.Exec(`INSERT INTO coin_transactions (id, user_id, amount, type, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Amount, tx.Type, tx.Description, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert coin transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertPointsTransaction(tx *services.PointsTransaction) error {
	_, err := s.db.Exec(`INSERT INTO points_transactions (id, user_id, amount, type, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Amount, tx.Type, tx.Description, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert points transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListCoinTransactionsByUser(userID string) ([]*services.CoinTransaction, error) {
	rows, err := s.db.Query(`SELECT id, user_id, amount, type, description, created_at FROM coin_transactions WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("list coin transactions: %w", err)
	}
	defer rows.Close()
	out := []*services.CoinTransaction{}
	for rows.Next() {
		var tx services.CoinTransaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &tx)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListPointsTransactionsByUser(userID string) ([]*services.PointsTransaction, error) {
	rows, err := s.db.Query(`SELECT id, user_id, amount, type, description, created_at FROM points_transactions WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("list points transactions: %w", err)
	}
	defer rows.Close()
	out := []*services.PointsTransaction{}
	for rows.Next() {
		var tx services.PointsTransaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &tx)
	}
	return out, rows.Err()
}
