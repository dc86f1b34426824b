package store

import (
	"sync"

	"github.com/hivecraft/patternhive/internal/services"
)

// MemoryStore keeps every collection in maps keyed by id, with
// insertion-order slices for the filtered listings. All methods copy on
// the way in and out, so callers never share struct memory with the
// store.
type MemoryStore struct {
	mu sync.RWMutex

	applications     map[string]*services.TestingApplication
	applicationOrder []string

	assignments     map[string]*services.TestAssignment
	assignmentOrder []string

	feedback      map[string]*services.TestFeedback
	feedbackOrder []string

	metrics     map[string]*services.PatternTestMetrics
	testerStats map[string]*services.TesterStats

	users    map[string]*services.User
	patterns map[string]*services.Pattern

	coinLedger   []*services.CoinTransaction
	pointsLedger []*services.PointsTransaction
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		applications: map[string]*services.TestingApplication{},
		assignments:  map[string]*services.TestAssignment{},
		feedback:     map[string]*services.TestFeedback{},
		metrics:      map[string]*services.PatternTestMetrics{},
		testerStats:  map[string]*services.TesterStats{},
		users:        map[string]*services.User{},
		patterns:     map[string]*services.Pattern{},
	}
}

func copyApplication(app *services.TestingApplication) *services.TestingApplication {
	if app == nil {
		return nil
	}
	cp := *app
	return &cp
}

func copyAssignment(a *services.TestAssignment) *services.TestAssignment {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

func copyFeedback(fb *services.TestFeedback) *services.TestFeedback {
	if fb == nil {
		return nil
	}
	cp := *fb
	cp.Images = append([]string(nil), fb.Images...)
	return &cp
}

func copyStats(st *services.TesterStats) *services.TesterStats {
	if st == nil {
		return nil
	}
	cp := *st
	cp.Specialties = append([]string(nil), st.Specialties...)
	cp.Badges = append([]string(nil), st.Badges...)
	return &cp
}

func copyMetrics(m *services.PatternTestMetrics) *services.PatternTestMetrics {
	if m == nil {
		return nil
	}
	cp := *m
	cp.CommonIssues = append([]string(nil), m.CommonIssues...)
	return &cp
}

func copyUser(u *services.User) *services.User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PassHash = append([]byte(nil), u.PassHash...)
	return &cp
}

func copyPattern(p *services.Pattern) *services.Pattern {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (s *MemoryStore) InsertApplication(app *services.TestingApplication) (*services.TestingApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[app.ID] = copyApplication(app)
	s.applicationOrder = append(s.applicationOrder, app.ID)
	return copyApplication(app), nil
}

func (s *MemoryStore) GetApplication(id string) (*services.TestingApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyApplication(s.applications[id]), nil
}

func (s *MemoryStore) UpdateApplication(app *services.TestingApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[app.ID]; !ok {
		return services.NewNotFoundError("application not found")
	}
	s.applications[app.ID] = copyApplication(app)
	return nil
}

func (s *MemoryStore) ListApplicationsByUser(userID string) ([]*services.TestingApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.TestingApplication{}
	for _, id := range s.applicationOrder {
		if app := s.applications[id]; app != nil && app.UserID == userID {
			out = append(out, copyApplication(app))
		}
	}
	return out, nil
}

func (s *MemoryStore) InsertAssignment(a *services.TestAssignment) (*services.TestAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.ID] = copyAssignment(a)
	s.assignmentOrder = append(s.assignmentOrder, a.ID)
	return copyAssignment(a), nil
}

func (s *MemoryStore) GetAssignment(id string) (*services.TestAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyAssignment(s.assignments[id]), nil
}

func (s *MemoryStore) UpdateAssignment(a *services.TestAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[a.ID]; !ok {
		return services.NewNotFoundError("assignment not found")
	}
	s.assignments[a.ID] = copyAssignment(a)
	return nil
}

func (s *MemoryStore) listAssignments(match func(*services.TestAssignment) bool) []*services.TestAssignment {
	out := []*services.TestAssignment{}
	for _, id := range s.assignmentOrder {
		if a := s.assignments[id]; a != nil && match(a) {
			out = append(out, copyAssignment(a))
		}
	}
	return out
}

func (s *MemoryStore) ListAssignmentsByTester(testerID string) ([]*services.TestAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listAssignments(func(a *services.TestAssignment) bool { return a.TesterID == testerID }), nil
}

func (s *MemoryStore) ListAssignmentsByPattern(patternID string) ([]*services.TestAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listAssignments(func(a *services.TestAssignment) bool { return a.PatternID == patternID }), nil
}

func (s *MemoryStore) ListAssignmentsByCreator(creatorID string) ([]*services.TestAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listAssignments(func(a *services.TestAssignment) bool { return a.CreatorID == creatorID }), nil
}

func (s *MemoryStore) ListAllAssignments() ([]*services.TestAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listAssignments(func(*services.TestAssignment) bool { return true }), nil
}

func (s *MemoryStore) InsertFeedback(fb *services.TestFeedback) (*services.TestFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback[fb.ID] = copyFeedback(fb)
	s.feedbackOrder = append(s.feedbackOrder, fb.ID)
	return copyFeedback(fb), nil
}

func (s *MemoryStore) GetFeedback(id string) (*services.TestFeedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyFeedback(s.feedback[id]), nil
}

func (s *MemoryStore) UpdateFeedback(fb *services.TestFeedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.feedback[fb.ID]; !ok {
		return services.NewNotFoundError("feedback not found")
	}
	s.feedback[fb.ID] = copyFeedback(fb)
	return nil
}

func (s *MemoryStore) listFeedback(match func(*services.TestFeedback) bool) []*services.TestFeedback {
	out := []*services.TestFeedback{}
	for _, id := range s.feedbackOrder {
		if fb := s.feedback[id]; fb != nil && match(fb) {
			out = append(out, copyFeedback(fb))
		}
	}
	return out
}

func (s *MemoryStore) ListFeedbackByAssignment(assignmentID string) ([]*services.TestFeedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listFeedback(func(fb *services.TestFeedback) bool { return fb.AssignmentID == assignmentID }), nil
}

func (s *MemoryStore) ListFeedbackByPattern(patternID string) ([]*services.TestFeedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listFeedback(func(fb *services.TestFeedback) bool { return fb.PatternID == patternID }), nil
}

func (s *MemoryStore) ListFeedbackByTester(testerID string) ([]*services.TestFeedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listFeedback(func(fb *services.TestFeedback) bool { return fb.TesterID == testerID }), nil
}

func (s *MemoryStore) UpsertPatternMetrics(m *services.PatternTestMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics[m.PatternID] = copyMetrics(m)
	return nil
}

func (s *MemoryStore) GetPatternMetrics(patternID string) (*services.PatternTestMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMetrics(s.metrics[patternID]), nil
}

func (s *MemoryStore) UpsertTesterStats(st *services.TesterStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.testerStats[st.UserID] = copyStats(st)
	return nil
}

func (s *MemoryStore) GetTesterStats(userID string) (*services.TesterStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyStats(s.testerStats[userID]), nil
}

func (s *MemoryStore) ListAllTesterStats() ([]*services.TesterStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*services.TesterStats, 0, len(s.testerStats))
	for _, st := range s.testerStats {
		out = append(out, copyStats(st))
	}
	return out, nil
}

func (s *MemoryStore) InsertUser(u *services.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *MemoryStore) GetUserByID(id string) (*services.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.users[id]), nil
}

func (s *MemoryStore) FindUserByEmail(email string) (*services.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) UpdateUser(u *services.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return services.NewNotFoundError("user not found")
	}
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *MemoryStore) InsertPattern(p *services.Pattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns[p.ID] = copyPattern(p)
	return nil
}

func (s *MemoryStore) GetPatternByID(id string) (*services.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyPattern(s.patterns[id]), nil
}

func (s *MemoryStore) InsertCoinTransaction(tx *services.CoinTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tx
	s.coinLedger = append(s.coinLedger, &cp)
	return nil
}

func (s *MemoryStore) InsertPointsTransaction(tx *services.PointsTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tx
	s.pointsLedger = append(s.pointsLedger, &cp)
	return nil
}

func (s *MemoryStore) ListCoinTransactionsByUser(userID string) ([]*services.CoinTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.CoinTransaction{}
	for _, tx := range s.coinLedger {
		if tx.UserID == userID {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListPointsTransactionsByUser(userID string) ([]*services.PointsTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.PointsTransaction{}
	for _, tx := range s.pointsLedger {
		if tx.UserID == userID {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out, nil
}
