package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analist0/tehillim-hub/internal/application/command"
	"github.com/analist0/tehillim-hub/internal/application/query"
	"github.com/analist0/tehillim-hub/internal/domain/achievement"
	"github.com/analist0/tehillim-hub/internal/domain/cycle"
	"github.com/analist0/tehillim-hub/internal/infrastructure/persistence/memory"
	httpapi "github.com/analist0/tehillim-hub/internal/interface/http"
	"github.com/analist0/tehillim-hub/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := memory.NewProgressStore()
	ledger := memory.NewUnlockLedger()
	engine := achievement.NewEngine(achievement.DefaultCatalog(), store, ledger)
	calc := cycle.Default()

	cfg := httpapi.DefaultConfig()
	cfg.RateLimitPerMinute = 0

	srv := httpapi.NewServer(cfg, httpapi.Dependencies{
		RecordProgressHandler:    command.NewRecordProgressHandler(store),
		MergeIdentityHandler:     command.NewMergeIdentityHandler(store),
		CheckAchievementsHandler: command.NewCheckAchievementsHandler(engine),
		GetProgressHandler:       query.NewGetProgressHandler(store),
		ListProgressHandler:      query.NewListProgressHandler(store),
		GetStatisticsHandler:     query.NewGetStatisticsHandler(store),
		ListAchievementsHandler:  query.NewListAchievementsHandler(engine),
		GetCyclePositionHandler:  query.NewGetCyclePositionHandler(calc),
		GetDailyReadingHandler:   query.NewGetDailyReadingHandler(calc, nil),
		Logger:                   logger.New(logger.Options{Level: logger.LevelError}),
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, method, url string, headers map[string]string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestRecordAndGetProgress(t *testing.T) {
	ts := newTestServer(t)
	headers := map[string]string{"X-User-Handle": "miriam"}

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/v1/progress", headers, map[string]interface{}{
		"chapter":     23,
		"verse":       6,
		"verses_read": 6,
		"completed":   true,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	var recorded struct {
		Record struct {
			IdentityKey string `json:"identity_key"`
			Chapter     int    `json:"chapter"`
			Completed   bool   `json:"completed"`
		} `json:"record"`
		CurrentStreakDays int `json:"current_streak_days"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &recorded))
	assert.Equal(t, "miriam", recorded.Record.IdentityKey)
	assert.Equal(t, 23, recorded.Record.Chapter)
	assert.True(t, recorded.Record.Completed)
	assert.Equal(t, 1, recorded.CurrentStreakDays)

	resp, env = doJSON(t, http.MethodGet, ts.URL+"/api/v1/progress/23", headers, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	// A chapter with no progress yet answers 200 with null data.
	resp, env = doJSON(t, http.MethodGet, ts.URL+"/api/v1/progress/24", headers, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	if len(env.Data) > 0 {
		assert.JSONEq(t, "null", string(env.Data))
	}
}

func TestRecordProgressValidation(t *testing.T) {
	ts := newTestServer(t)
	headers := map[string]string{"X-User-Handle": "miriam"}

	t.Run("chapter out of range", func(t *testing.T) {
		resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/v1/progress", headers, map[string]interface{}{
			"chapter": 151,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.NotNil(t, env.Error)
	})

	t.Run("missing identity", func(t *testing.T) {
		resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/v1/progress", nil, map[string]interface{}{
			"chapter": 1,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.NotNil(t, env.Error)
		assert.Equal(t, "missing_identity", env.Error.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/progress", bytes.NewBufferString("{"))
		require.NoError(t, err)
		req.Header.Set("X-User-Handle", "miriam")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestStatisticsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	headers := map[string]string{"X-Session-Token": "sess-42"}

	for _, ch := range []int{1, 2, 3} {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/progress", headers, map[string]interface{}{
			"chapter": ch, "verses_read": 5, "completed": true,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, env := doJSON(t, http.MethodGet, ts.URL+"/api/v1/statistics", headers, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snap struct {
		ChaptersRead int `json:"chapters_read"`
		VersesRead   int `json:"verses_read"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, 3, snap.ChaptersRead)
	assert.Equal(t, 15, snap.VersesRead)

	// A different session sees none of it.
	other := map[string]string{"X-Session-Token": "sess-43"}
	_, env = doJSON(t, http.MethodGet, ts.URL+"/api/v1/statistics", other, nil)
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, 0, snap.ChaptersRead)
}

func TestAchievementEndpoints(t *testing.T) {
	ts := newTestServer(t)
	headers := map[string]string{"X-User-Handle": "aron"}

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/progress", headers, map[string]interface{}{
		"chapter": 1, "verses_read": 6, "completed": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/v1/achievements/check", headers, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var check struct {
		NewlyUnlocked []struct {
			ID string `json:"id"`
		} `json:"newly_unlocked"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &check))
	require.Len(t, check.NewlyUnlocked, 1)
	assert.Equal(t, "first_chapter", check.NewlyUnlocked[0].ID)

	// Second check unlocks nothing new.
	_, env = doJSON(t, http.MethodPost, ts.URL+"/api/v1/achievements/check", headers, nil)
	require.NoError(t, json.Unmarshal(env.Data, &check))
	assert.Empty(t, check.NewlyUnlocked)

	_, env = doJSON(t, http.MethodGet, ts.URL+"/api/v1/achievements", headers, nil)
	var listing struct {
		Unlocked []struct {
			ID string `json:"id"`
		} `json:"unlocked"`
		Locked []struct {
			ID string `json:"id"`
		} `json:"locked"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	assert.Len(t, listing.Unlocked, 1)
	assert.NotEmpty(t, listing.Locked)
}

func TestCycleAndDailyReading(t *testing.T) {
	ts := newTestServer(t)

	resp, env := doJSON(t, http.MethodGet, ts.URL+"/api/v1/cycle/position?date=2024-03-08", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var pos struct {
		Position struct {
			Tractate string `json:"tractate"`
			Daf      int    `json:"daf"`
			Amud     string `json:"amud"`
		} `json:"position"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &pos))
	assert.Equal(t, "Berakhot", pos.Position.Tractate)
	assert.Equal(t, 2, pos.Position.Daf)
	assert.Equal(t, "a", pos.Position.Amud)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/v1/cycle/position?date=bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = doJSON(t, http.MethodGet, ts.URL+"/api/v1/reading/today", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var daily struct {
		Date    string `json:"date"`
		Portion struct {
			StartChapter int `json:"start_chapter"`
			EndChapter   int `json:"end_chapter"`
		} `json:"portion"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &daily))
	assert.NotEmpty(t, daily.Date)
	assert.GreaterOrEqual(t, daily.Portion.StartChapter, 1)
	assert.LessOrEqual(t, daily.Portion.EndChapter, 150)
}

func TestMergeIdentityEndpoint(t *testing.T) {
	ts := newTestServer(t)
	session := map[string]string{"X-Session-Token": "sess-merge"}

	for _, ch := range []int{10, 11} {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/progress", session, map[string]interface{}{
			"chapter": ch, "verses_read": 2,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/v1/identity/merge", nil, map[string]interface{}{
		"session_handle": "sess-merge",
		"user_handle":    "devorah",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var merged struct {
		MergedChapters int `json:"merged_chapters"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &merged))
	assert.Equal(t, 2, merged.MergedChapters)

	// The user now owns the progress.
	user := map[string]string{"X-User-Handle": "devorah"}
	_, env = doJSON(t, http.MethodGet, ts.URL+"/api/v1/statistics", user, nil)
	var snap struct {
		ChaptersRead int `json:"chapters_read"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, 2, snap.ChaptersRead)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/health", "/healthz", "/ready", "/live"} {
		resp, env := doJSON(t, http.MethodGet, ts.URL+path, nil, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.True(t, env.Success, path)
	}

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
