package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/game"
	"github.com/abhisek/chemquest/internal/logging"
	"github.com/abhisek/chemquest/internal/progress"
	"github.com/abhisek/chemquest/internal/session"
	"github.com/abhisek/chemquest/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*gin.Engine, *game.Game) {
	t.Helper()
	st, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	reg, err := curriculum.Default()
	require.NoError(t, err)

	logger := logging.Discard()
	g := game.New(game.Options{
		Registry: reg,
		Profiles: st.ProfileRepo(),
		Events:   st.EventRepo(),
		Planner:  session.NewSeededPlanner(1),
		Saver:    progress.NewSaver(st.ProfileRepo(), progress.WithDebounce(time.Hour), progress.WithLogger(logger)),
		Logger:   logger,
	})
	t.Cleanup(func() { g.Close(context.Background()) })

	return NewRouter(NewHandler(g, "local", logger)), g
}

func do(t *testing.T, r http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["remote_content"])
}

func TestListLevels_NewProfile(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(t, r, http.MethodGet, "/levels", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	levels := decode[[]LevelSummary](t, w)
	require.Len(t, levels, 3)
	assert.Equal(t, "elements", levels[0].ID)
	assert.True(t, levels[0].Unlocked)
	assert.False(t, levels[1].Unlocked)
	assert.Positive(t, levels[0].TotalQuestions)
}

func TestGetLevel(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodGet, "/levels/elements", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	lvl := decode[LevelResponse](t, w)
	assert.Equal(t, "elements", lvl.Level.ID)
	assert.NotEmpty(t, lvl.Level.Phases)
	assert.False(t, lvl.Offline)

	assert.Equal(t, http.StatusForbidden, do(t, r, http.MethodGet, "/levels/reactions", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/levels/alchemy", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/levels/elements?phase=x", "", nil).Code)
}

func TestSubmitResult_ThenProfileAndMistakes(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodPost, "/levels/elements/results", "mei", ResultRequest{
		XP:         25,
		CorrectIDs: []string{"el-symbol-fe"},
		Mistakes:   []MistakeRequest{{QuestionID: "el-symbol-na", Answer: "S"}},
		Questions:  2,
		FirstTry:   1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	prof := decode[ProfileResponse](t, w)
	assert.Equal(t, "mei", prof.UserID)
	assert.Equal(t, 25, prof.TotalXP)
	assert.Equal(t, 1, prof.Mistakes)
	assert.True(t, prof.Levels[1].Unlocked)

	// Other users are unaffected.
	other := decode[ProfileResponse](t, do(t, r, http.MethodGet, "/profile", "", nil))
	assert.Equal(t, "local", other.UserID)
	assert.Zero(t, other.TotalXP)

	book := decode[[]MistakeResponse](t, do(t, r, http.MethodGet, "/mistakes?level=elements", "mei", nil))
	require.Len(t, book, 1)
	assert.Equal(t, "S", book[0].Answer)
	assert.Equal(t, curriculum.KindMultipleChoice, book[0].Question.Kind)

	wrong := 0
	w = do(t, r, http.MethodPost, "/mistakes/"+book[0].ID+"/retry", "mei", RetryRequest{Choice: &wrong})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[RetryResponse](t, w).Correct)

	right := 1
	w = do(t, r, http.MethodPost, "/mistakes/"+book[0].ID+"/retry", "mei", RetryRequest{Choice: &right})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[RetryResponse](t, w)
	assert.True(t, resp.Correct)
	assert.True(t, resp.Resolved)

	book = decode[[]MistakeResponse](t, do(t, r, http.MethodGet, "/mistakes", "mei", nil))
	assert.Empty(t, book)

	w = do(t, r, http.MethodPost, "/mistakes/missing/retry", "mei", RetryRequest{Text: "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitResult_InlineQuestion(t *testing.T) {
	r, _ := newTestServer(t)
	doc := curriculum.QuestionDoc{
		ID:     "remote-1",
		Kind:   curriculum.KindFreeText,
		Prompt: "Formula of table salt?",
		Answer: "NaCl",
	}
	w := do(t, r, http.MethodPost, "/levels/elements/results", "", ResultRequest{
		Mistakes: []MistakeRequest{{Question: &doc, Answer: "NaClO"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	book := decode[[]MistakeResponse](t, do(t, r, http.MethodGet, "/mistakes", "", nil))
	require.Len(t, book, 1)
	assert.Equal(t, "remote-1", book[0].Question.ID)

	w = do(t, r, http.MethodPost, "/mistakes/"+book[0].ID+"/retry", "", RetryRequest{Text: "N a C l"})
	assert.True(t, decode[RetryResponse](t, w).Correct)
}

func TestSubmitResult_Rejects(t *testing.T) {
	r, _ := newTestServer(t)

	tests := []struct {
		name string
		path string
		body any
		code int
	}{
		{"negative xp", "/levels/elements/results", ResultRequest{XP: -5}, http.StatusBadRequest},
		{"unknown question", "/levels/elements/results", ResultRequest{Mistakes: []MistakeRequest{{QuestionID: "nope"}}}, http.StatusBadRequest},
		{"empty mistake", "/levels/elements/results", ResultRequest{Mistakes: []MistakeRequest{{Answer: "x"}}}, http.StatusBadRequest},
		{"unknown level", "/levels/alchemy/results", ResultRequest{}, http.StatusNotFound},
		{"locked level", "/levels/ions/results", ResultRequest{XP: 999}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}
}
