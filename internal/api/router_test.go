package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"recipe-finder/internal/api/middleware"
	"recipe-finder/internal/core/kitchen"
	"recipe-finder/internal/core/session"
	"recipe-finder/internal/infrastructure/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const recipesBody = `{"recipes":[
	{"Dish Name":"Chicken Biryani","Ingredients":"rice, chicken, yogurt"},
	{"Dish Name":"Tomato Curry","Ingredients":["2 ripe tomatoes","onion","garlic"],"Steps to Cook":"1. Fry onion 2. Add tomato"}
]}`

type upstream struct {
	srv       *httptest.Server
	fail      atomic.Bool
	mu        sync.Mutex
	lastQuery string
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/find_recipe", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.lastQuery = r.URL.RawQuery
		u.mu.Unlock()
		if u.fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(recipesBody))
	})
	mux.HandleFunc("/find_recipe_by_query", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"name":"Quick Poha","ingredients":"poha, peanuts"}]}`))
	})
	mux.HandleFunc("/detect_items", func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("file"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"no file"}`))
			return
		}
		w.Write([]byte(`{"detected_items":{"ingredients":["tomatoes","Okra"]}}`))
	})
	mux.HandleFunc("/festival_recipes", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"festival":"Diwali","date":"2025-10-20","recipes":[{"heading":"Kaju Katli","url":"https://ifn/kaju","tags":["sweet","hard"]}]}]}`))
	})
	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)
	return u
}

func (u *upstream) query() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastQuery
}

func testConfig(base string) *config.Config {
	return &config.Config{
		App:         config.AppConfig{Debug: true, Version: "test", Env: "test"},
		Server:      config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 1 << 20},
		RecipeAPI:   config.RecipeAPIConfig{BaseURL: base, Timeout: 2 * time.Second},
		Detection:   config.DetectionConfig{Mode: config.DetectionRemote, BaseURL: base, Timeout: 2 * time.Second},
		Featured:    config.FeaturedConfig{Enabled: true, URL: base + "/festival_recipes", Timeout: 2 * time.Second},
		Matcher:     config.MatcherConfig{MinResults: 4},
		Session:     config.SessionConfig{Backend: config.SessionMemory, TTL: time.Hour, MaxSize: 100},
		Image:       config.ImageConfig{MaxSizeBytes: 1 << 20, MaxDimension: 256},
		DedupWindow: time.Millisecond,
	}
}

type client struct {
	t       *testing.T
	router  *gin.Engine
	session string
}

func newClient(t *testing.T, cfg *config.Config) *client {
	t.Helper()
	return newClientWithStore(t, cfg, session.NewMemoryStore(cfg.Session))
}

func newClientWithStore(t *testing.T, cfg *config.Config, store session.Store) *client {
	t.Helper()
	t.Cleanup(func() { _ = store.Close() })
	router, err := SetupRouter(cfg, store)
	require.NoError(t, err)
	return &client{t: t, router: router}
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

func (c *client) send(req *http.Request) *httptest.ResponseRecorder {
	if c.session != "" {
		req.Header.Set(middleware.HeaderSessionID, c.session)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	if id := w.Header().Get(middleware.HeaderSessionID); id != "" {
		c.session = id
	}
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) kitchen.Snapshot {
	t.Helper()
	var snap kitchen.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap), w.Body.String())
	return snap
}

func TestSessionLifecycle(t *testing.T) {
	u := newUpstream(t)
	c := newClient(t, testConfig(u.srv.URL))

	w := c.do(http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	first := c.session
	require.NotEmpty(t, first)

	var created struct {
		SessionID string           `json:"session_id"`
		State     kitchen.Snapshot `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, first, created.SessionID)
	assert.Len(t, created.State.Catalog, 10)
	assert.False(t, created.State.CanSearch)

	c.do(http.MethodPost, "/api/v1/selection/toggle/rice", nil)
	w = c.do(http.MethodGet, "/api/v1/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first, c.session, "known sessions are reused")
	assert.Equal(t, []kitchen.Selected{{ID: "rice", Name: "Rice"}}, decodeSnapshot(t, w).Selected)

	c.session = "unknown-session"
	w = c.do(http.MethodGet, "/api/v1/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "unknown-session", c.session)
	assert.Empty(t, decodeSnapshot(t, w).Selected)
}

func TestSearchFlow(t *testing.T) {
	u := newUpstream(t)
	c := newClient(t, testConfig(u.srv.URL))

	w := c.do(http.MethodPost, "/api/v1/search", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "NO_INGREDIENTS")

	c.do(http.MethodPost, "/api/v1/selection/toggle/tomatoes", nil)
	c.do(http.MethodPost, "/api/v1/selection/toggle/onions", nil)

	w = c.do(http.MethodPost, "/api/v1/search", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ingredients=tomatoes&ingredients=onions", u.query())

	snap := decodeSnapshot(t, w)
	require.Len(t, snap.Results, 2)
	assert.Equal(t, "Tomato Curry", snap.Results[0].Recipe.Name)
	assert.Equal(t, 2, snap.Results[0].Count)
	assert.Equal(t, []bool{true, true, false}, snap.Results[0].Highlights)
	assert.Equal(t, []string{"1. Fry onion", "2. Add tomato"}, snap.Results[0].Recipe.Steps)
	assert.Equal(t, "Chicken Biryani", snap.Results[1].Recipe.Name)
	assert.True(t, snap.Results[1].Backfilled)

	w = c.do(http.MethodGet, "/api/v1/results", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Tomato Curry")
}

func TestSearchFailureAndRetry(t *testing.T) {
	u := newUpstream(t)
	c := newClient(t, testConfig(u.srv.URL))
	c.do(http.MethodPost, "/api/v1/selection/toggle/garlic", nil)

	u.fail.Store(true)
	w := c.do(http.MethodPost, "/api/v1/search", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decodeSnapshot(t, w)
	assert.Empty(t, snap.Results)
	assert.Contains(t, snap.Error, "status: 502")

	u.fail.Store(false)
	w = c.do(http.MethodPost, "/api/v1/search/retry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeSnapshot(t, w)
	assert.Empty(t, snap.Error)
	assert.Equal(t, "Tomato Curry", snap.Results[0].Recipe.Name)
}

func TestSearchQuery(t *testing.T) {
	u := newUpstream(t)
	c := newClient(t, testConfig(u.srv.URL))

	w := c.do(http.MethodPost, "/api/v1/search/query", gin.H{"query": "   "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeSnapshot(t, w).Results)

	w = c.do(http.MethodPost, "/api/v1/search/query", gin.H{"query": "something quick"})
	require.Equal(t, http.StatusOK, w.Code)
	snap := decodeSnapshot(t, w)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "Quick Poha", snap.Results[0].Recipe.Name)
	assert.Equal(t, kitchen.SearchQuery, snap.LastSearch)
}

func TestCatalogAndSelection(t *testing.T) {
	u := newUpstream(t)
	c := newClient(t, testConfig(u.srv.URL))

	w := c.do(http.MethodPost, "/api/v1/selection/toggle/dragonfruit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodPost, "/api/v1/selection/custom", gin.H{"text": "  "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeSnapshot(t, w).Selected)

	w = c.do(http.MethodPost, "/api/v1/selection/custom", gin.H{"text": "Curry Leaves"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []kitchen.Selected{{ID: "curry-leaves", Name: "Curry Leaves"}}, decodeSnapshot(t, w).Selected)

	w = c.do(http.MethodPost, "/api/v1/catalog", gin.H{"name": "Jaggery"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"jaggery"`)

	w = c.do(http.MethodPost, "/api/v1/selection/bulk", gin.H{"ids": []string{"rice", "jaggery", " "}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeSnapshot(t, w).Selected, 3)

	w = c.do(http.MethodDelete, "/api/v1/catalog/rice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "default ingredients cannot be removed")

	w = c.do(http.MethodDelete, "/api/v1/catalog/curry-leaves", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeSnapshot(t, w).Selected, 2)

	w = c.do(http.MethodDelete, "/api/v1/selection/rice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []kitchen.Selected{{ID: "jaggery", Name: "Jaggery"}}, decodeSnapshot(t, w).Selected)

	w = c.do(http.MethodDelete, "/api/v1/selection", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeSnapshot(t, w).Selected)

	w = c.do(http.MethodGet, "/api/v1/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jaggery")
}

func TestVoice(t *testing.T) {
	u := newUpstream(t)
	c := newClient(t, testConfig(u.srv.URL))

	w := c.do(http.MethodPost, "/api/v1/voice", gin.H{"transcript": " "})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "NO_SPEECH")

	w = c.do(http.MethodPost, "/api/v1/voice", gin.H{"transcript": "rice, paneer and green peas"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Added []string         `json:"added"`
		State kitchen.Snapshot `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"rice", "paneer", "green-peas"}, resp.Added)
	assert.Len(t, resp.State.Selected, 3)
}

func multipartImage(t *testing.T, field string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "fridge.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("not really a jpeg"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDetect(t *testing.T) {
	u := newUpstream(t)
	c := newClient(t, testConfig(u.srv.URL))
	c.do(http.MethodPost, "/api/v1/selection/toggle/tomatoes", nil)

	body, contentType := multipartImage(t, "file")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/detect", body)
	req.Header.Set("Content-Type", contentType)
	w := c.send(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Detected []string         `json:"detected"`
		Error    string           `json:"error"`
		State    kitchen.Snapshot `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"tomatoes", "Okra"}, resp.Detected)
	assert.Empty(t, resp.Error)
	assert.Equal(t, []kitchen.Selected{{ID: "tomatoes", Name: "Tomatoes"}, {ID: "okra", Name: "Okra"}}, resp.State.Selected)

	body, contentType = multipartImage(t, "photo")
	req = httptest.NewRequest(http.MethodPost, "/api/v1/detect", body)
	req.Header.Set("Content-Type", contentType)
	w = c.send(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetect_RemoteFailureIsReportedInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model offline"}`))
	}))
	defer srv.Close()

	c := newClient(t, testConfig(srv.URL))
	body, contentType := multipartImage(t, "file")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/detect", body)
	req.Header.Set("Content-Type", contentType)
	w := c.send(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "model offline")
	assert.Contains(t, w.Body.String(), `"detected":[]`)
}

func TestFeatured(t *testing.T) {
	u := newUpstream(t)
	c := newClient(t, testConfig(u.srv.URL))

	w := c.do(http.MethodGet, "/api/v1/featured", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"diwali"`)
	assert.Contains(t, w.Body.String(), `"difficulty":"HARD"`)

	cfg := testConfig(u.srv.URL)
	cfg.Featured.Enabled = false
	w = newClient(t, cfg).do(http.MethodGet, "/api/v1/featured", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"onam"`)
}

func TestHealthEndpoints(t *testing.T) {
	u := newUpstream(t)
	c := newClient(t, testConfig(u.srv.URL))

	for path, want := range map[string]string{
		"/health": `"status":"ok"`,
		"/ready":  `"status":"ready"`,
		"/live":   `"status":"alive"`,
	} {
		w := c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.True(t, strings.Contains(w.Body.String(), want), path)
	}
}

func TestCORSExposesSessionHeader(t *testing.T) {
	u := newUpstream(t)
	c := newClient(t, testConfig(u.srv.URL))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := c.send(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), middleware.HeaderSessionID)
}

func TestSearchAgainWithinDedupWindow(t *testing.T) {
	u := newUpstream(t)
	cfg := testConfig(u.srv.URL)
	cfg.DedupWindow = time.Minute
	c := newClient(t, cfg)

	c.do(http.MethodPost, "/api/v1/selection/toggle/tomatoes", nil)
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/v1/search", nil).Code)

	c.do(http.MethodPost, "/api/v1/selection/toggle/rice", nil)
	w := c.do(http.MethodPost, "/api/v1/search", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ingredients=tomatoes&ingredients=rice", u.query())

	u.fail.Store(true)
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/v1/search", nil).Code)
	u.fail.Store(false)

	w = c.do(http.MethodPost, "/api/v1/search/retry", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap := decodeSnapshot(t, w)
	assert.Empty(t, snap.Error)
	assert.NotEmpty(t, snap.Results)
}

func TestRedisSession_ToggleDuringSearchIsKept(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.Write([]byte(recipesBody))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	cfg := testConfig(srv.URL)
	store := session.NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	c := newClientWithStore(t, cfg, store)

	c.do(http.MethodPost, "/api/v1/selection/toggle/tomatoes", nil)
	id := c.session
	require.NotEmpty(t, id)

	done := make(chan int)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/search", nil)
		req.Header.Set(middleware.HeaderSessionID, id)
		w := httptest.NewRecorder()
		c.router.ServeHTTP(w, req)
		done <- w.Code
	}()

	<-entered
	w := c.do(http.MethodPost, "/api/v1/selection/toggle/rice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	close(release)
	assert.Equal(t, http.StatusOK, <-done)

	w = c.do(http.MethodGet, "/api/v1/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []kitchen.Selected{{ID: "tomatoes", Name: "Tomatoes"}, {ID: "rice", Name: "Rice"}}, decodeSnapshot(t, w).Selected)
}
