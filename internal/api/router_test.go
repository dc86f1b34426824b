package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hivecraft/patternhive/internal/api"
	"github.com/hivecraft/patternhive/internal/store"
)

type client struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(api.NewRouter(store.NewMemoryStore()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.server.URL+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func register(t *testing.T, srv *httptest.Server, email, role string) (*client, string) {
	t.Helper()
	c := &client{t: t, server: srv}
	var res map[string]any
	status := c.do("POST", "/api/auth/register", map[string]any{
		"email": email, "password": "correct-horse", "name": email, "role": role,
	}, &res)
	require.Equal(t, http.StatusOK, status)
	c.token = res["token"].(string)
	return c, res["user_id"].(string)
}

func TestWorkflowOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	admin, _ := register(t, srv, "admin@example.com", "admin")
	creator, _ := register(t, srv, "creator@example.com", "creator")
	tester, testerID := register(t, srv, "tester@example.com", "tester")

	var pattern map[string]any
	status := creator.do("POST", "/api/patterns", map[string]any{
		"name": "Cabled Mittens", "category": "knitting",
	}, &pattern)
	require.Equal(t, http.StatusOK, status)
	patternID := pattern["id"].(string)

	// Application round trip.
	var app map[string]any
	status = tester.do("POST", "/api/testing/applications", map[string]any{
		"why_testing": "love cables", "experience_level": "advanced",
	}, &app)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "pending", app["status"])

	// A second pending application is refused.
	status = tester.do("POST", "/api/testing/applications", map[string]any{
		"why_testing": "again", "experience_level": "advanced",
	}, nil)
	require.Equal(t, http.StatusConflict, status)

	// Only admins may review.
	reviewPath := fmt.Sprintf("/api/testing/applications/%s/review", app["id"])
	status = creator.do("POST", reviewPath, map[string]any{"status": "approved"}, nil)
	require.Equal(t, http.StatusForbidden, status)
	status = admin.do("POST", reviewPath, map[string]any{"status": "approved"}, &app)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "approved", app["status"])

	// Assignment lifecycle.
	var assignment map[string]any
	status = creator.do("POST", "/api/assignments", map[string]any{
		"pattern_id":      patternID,
		"tester_id":       testerID,
		"deadline":        time.Now().UTC().Add(14 * 24 * time.Hour),
		"estimated_hours": 6,
		"reward_coins":    60,
		"reward_points":   30,
	}, &assignment)
	require.Equal(t, http.StatusOK, status)
	aid := assignment["id"].(string)

	// Starting before accepting is a conflict.
	status = tester.do("POST", "/api/assignments/"+aid+"/start", nil, nil)
	require.Equal(t, http.StatusConflict, status)

	status = tester.do("POST", "/api/assignments/"+aid+"/accept", nil, &assignment)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "accepted", assignment["status"])
	status = tester.do("POST", "/api/assignments/"+aid+"/start", nil, &assignment)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "in_progress", assignment["status"])

	// Progress updates cap below completion.
	status = tester.do("PATCH", "/api/assignments/"+aid, map[string]any{"progress": 100}, nil)
	require.Equal(t, http.StatusBadRequest, status)
	status = tester.do("PATCH", "/api/assignments/"+aid, map[string]any{"progress": 40}, &assignment)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 40, assignment["progress"])

	// Mid-test feedback.
	var fb map[string]any
	status = tester.do("POST", "/api/feedback", map[string]any{
		"assignment_id": aid, "type": "issue", "message": "row 12 chart is off by one",
	}, &fb)
	require.Equal(t, http.StatusOK, status)
	status = creator.do("POST", fmt.Sprintf("/api/feedback/%s/respond", fb["id"]), map[string]any{
		"response": "fixed in v2",
	}, &fb)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "fixed in v2", fb["response"])

	// Completion pays out and closes the assignment.
	var completion struct {
		Assignment map[string]any `json:"assignment"`
		Rewards    map[string]int `json:"rewards"`
	}
	review := map[string]any{
		"rating": 5, "clarity": 5, "accuracy": 5,
		"difficulty": "as_expected", "message": "Great!",
	}
	status = tester.do("POST", "/api/assignments/"+aid+"/complete", review, &completion)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "completed", completion.Assignment["status"])
	require.EqualValues(t, 100, completion.Assignment["progress"])
	require.Equal(t, map[string]int{"coins": 60, "points": 30, "xp": 16}, completion.Rewards)

	// Completing twice is a conflict, not a second payout.
	status = tester.do("POST", "/api/assignments/"+aid+"/complete", review, nil)
	require.Equal(t, http.StatusConflict, status)

	// The completion inserted the final review into the conversation.
	var conversation []map[string]any
	status = tester.do("GET", "/api/assignments/"+aid+"/feedback", nil, &conversation)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, conversation, 2)
	require.Equal(t, "final_review", conversation[1]["type"])

	// Derived views are publicly readable.
	var stats map[string]any
	status = tester.do("GET", "/api/testers/"+testerID+"/stats", nil, &stats)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 16, stats["xp"])
	require.Contains(t, stats["badges"], "First Test")

	var metrics map[string]any
	status = tester.do("GET", "/api/patterns/"+patternID+"/metrics", nil, &metrics)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, metrics["completed_tests"])

	var board []map[string]any
	status = tester.do("GET", "/api/leaderboard?limit=5", nil, &board)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, board, 1)

	// Analytics is admin only.
	status = tester.do("GET", "/api/analytics", nil, nil)
	require.Equal(t, http.StatusForbidden, status)
	var analytics map[string]any
	status = admin.do("GET", "/api/analytics", nil, &analytics)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, analytics["total_tests"])
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)
	anon := &client{t: t, server: srv}

	status := anon.do("POST", "/api/assignments", map[string]any{}, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	var health map[string]any
	status = anon.do("GET", "/health", nil, &health)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, health["ok"])
}

func TestLoginAfterRegister(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alex@example.com", "tester")

	anon := &client{t: t, server: srv}
	var res map[string]any
	status := anon.do("POST", "/api/auth/login", map[string]any{
		"email": "alex@example.com", "password": "correct-horse",
	}, &res)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, res["token"])

	status = anon.do("POST", "/api/auth/login", map[string]any{
		"email": "alex@example.com", "password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, status)
}
