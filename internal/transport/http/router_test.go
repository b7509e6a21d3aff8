package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/infra/memory"
	"adaptive-quiz-service/internal/metrics"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testEnv struct {
	server  *httptest.Server
	history *memory.HistoryStore
}

type envOptions struct {
	secret string
	rps    float64
	burst  int
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	history := memory.NewHistoryStore()
	pools := memory.NewPoolRepository(memory.NewStaticPoolLoader(domain.Pools{
		domain.DifficultyEasy:   testQuestions(domain.DifficultyEasy, 10),
		domain.DifficultyMedium: testQuestions(domain.DifficultyMedium, 10),
		domain.DifficultyHard:   testQuestions(domain.DifficultyHard, 10),
	}), time.Minute)
	rec := metrics.New()

	quiz := app.NewQuizService(memory.NewSessionStore(time.Hour), pools, history, app.WithMetrics(rec))
	deps := RouterDeps{
		Sessions: NewSessionHandler(quiz, nil),
		History:  NewHistoryHandler(app.NewHistoryService(history), nil),
		Users:    NewUserHandler(app.NewUserService(memory.NewUserStore()), nil),
		WS:       NewWSHandler(quiz, nil),
		Auth:     NewAuthenticator(opts.secret, ""),
		Metrics:  rec,
	}
	if opts.rps > 0 {
		deps.Limiter = NewRateLimiter(opts.rps, opts.burst)
	}
	server := httptest.NewServer(NewRouter(deps))
	t.Cleanup(server.Close)
	return &testEnv{server: server, history: history}
}

func testQuestions(d domain.Difficulty, n int) []domain.QuestionRecord {
	out := make([]domain.QuestionRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.QuestionRecord{
			ID:            i + 1,
			Question:      fmt.Sprintf("%s #%d", d, i+1),
			Options:       []string{"wrong", "right"},
			CorrectAnswer: "right",
			Difficulty:    d,
			Tags:          []string{"t-" + string(d)},
			Explanation:   "right is right",
		})
	}
	return out
}

func (e *testEnv) do(t *testing.T, method, path, user string, body interface{}) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func TestSessionLifecycleOverREST(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, body := env.do(t, http.MethodPost, "/api/sessions/", "u1", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID := body["sessionId"].(string)
	current := body["current"].(map[string]any)
	assert.Equal(t, "easy", current["difficulty"])
	assert.NotContains(t, current, "correct_answer")

	var last map[string]any
	for i := 0; i < app.QuestionsPerSession; i++ {
		resp, last = env.do(t, http.MethodPost, "/api/sessions/"+sessionID+"/answers", "u1", map[string]string{"option": "right"})
		require.Equal(t, http.StatusOK, resp.StatusCode, "answer %d: %v", i+1, last)
	}
	assert.Equal(t, true, last["completed"])
	assert.Equal(t, float64(37), last["score"])
	historyID := last["historyId"].(string)
	require.NotEmpty(t, historyID)

	resp, body = env.do(t, http.MethodPost, "/api/sessions/"+sessionID+"/finish", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, historyID, body["historyId"])

	resp, _ = env.do(t, http.MethodPost, "/api/sessions/"+sessionID+"/answers", "u1", map[string]string{"option": "right"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/quiz/histories/"+historyID, "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(10), body["totalQuestions"])
}

func TestAnswerValidation(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	_, body := env.do(t, http.MethodPost, "/api/sessions/", "u1", nil)
	sessionID := body["sessionId"].(string)

	resp, _ := env.do(t, http.MethodPost, "/api/sessions/"+sessionID+"/answers", "u1", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodPost, "/api/sessions/"+sessionID+"/answers", "u1", map[string]string{"option": "maybe"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", body["error"].(map[string]any)["code"])

	resp, _ = env.do(t, http.MethodPost, "/api/sessions/"+sessionID+"/answers", "u2", map[string]string{"option": "right"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = env.do(t, http.MethodPost, "/api/sessions/"+sessionID+"/skip", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["correct"])
	assert.Equal(t, "right", body["correctAnswer"])

	resp, _ = env.do(t, http.MethodDelete, "/api/sessions/"+sessionID, "u1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, "/api/sessions/"+sessionID, "u1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMissingUserIsUnauthorized(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	resp, _ := env.do(t, http.MethodPost, "/api/sessions/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHistoryEndpoints(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, body := env.do(t, http.MethodGet, "/api/quiz/histories", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, body) // decodes [] into a nil map

	submission := map[string]any{
		"score":          5,
		"correctAnswers": 2,
		"totalQuestions": 2,
		"questions": []map[string]any{
			{"question": "a", "options": []string{"x", "y"}, "correct_answer": "x", "difficulty": "easy", "tags": []string{"go"}, "userAnswer": "x"},
			{"question": "b", "options": []string{"x", "y"}, "correct_answer": "y", "difficulty": "medium", "tags": []string{"go"}, "userAnswer": "y"},
		},
	}
	resp, body = env.do(t, http.MethodPost, "/api/quiz/save-history", "u1", submission)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)
	tags := body["tagAnalysis"].(map[string]any)["go"].(map[string]any)
	assert.Equal(t, float64(2), tags["correct"])

	resp, body = env.do(t, http.MethodPost, "/api/quiz/save-history", "u1", map[string]any{"score": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api/quiz/histories", nil)
	req.Header.Set("X-User-ID", "u1")
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	var items []domain.HistoryListItem
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)

	resp, _ = env.do(t, http.MethodGet, "/api/quiz/histories/"+id, "u2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserEndpoints(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	profile := map[string]string{"authId": "auth0|1", "email": "ada@example.com", "picture": "p", "givenName": "Ada"}

	resp, body := env.do(t, http.MethodPost, "/api/users/auth", "", profile)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Ada", body["name"])

	resp, _ = env.do(t, http.MethodPost, "/api/users/auth", "", profile)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/users/auth", "", map[string]string{"authId": "x", "email": "ada@example.com", "picture": "p"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/users/auth", "", map[string]string{"authId": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/users/auth0%7C1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ada@example.com", body["email"])
}

func TestJWTAuthentication(t *testing.T) {
	env := newTestEnv(t, envOptions{secret: testSecret})

	sign := func(secret string, claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	call := func(token string) int {
		req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api/quiz/histories", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		req.Header.Set("X-User-ID", "spoofed")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	valid := sign(testSecret, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	assert.Equal(t, http.StatusOK, call(valid))
	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusUnauthorized, call(sign("other", jwt.MapClaims{"sub": "u1"})))
	assert.Equal(t, http.StatusUnauthorized, call(sign(testSecret, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()})))
	assert.Equal(t, http.StatusUnauthorized, call(sign(testSecret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})))
}

func TestRateLimiter(t *testing.T) {
	env := newTestEnv(t, envOptions{rps: 1, burst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, _ := env.do(t, http.MethodGet, "/api/quiz/histories", "u1", nil)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	resp, err := http.Get(env.server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health checks are not rate limited")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.do(t, http.MethodPost, "/api/sessions/", "u1", nil)

	resp, err := http.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	out := buf.String()
	assert.Contains(t, out, "quiz_sessions_started_total 1")
	assert.True(t, strings.Contains(out, `route="/api/sessions/"`), "route label uses chi pattern")
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidOption, http.StatusBadRequest},
		{domain.ErrHistoryNotFound, http.StatusNotFound},
		{domain.ErrSessionBusy, http.StatusConflict},
		{&domain.LoadError{Difficulty: domain.DifficultyHard, Err: errors.New("boom")}, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: %w", domain.ErrPersistence, errors.New("db down")), http.StatusBadGateway},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got, _ := statusFor(tc.err)
		assert.Equal(t, tc.want, got, tc.err.Error())
	}
}
