package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spencer-p/celesun/pkg/almanac"
	"github.com/spencer-p/celesun/pkg/engine"
	"github.com/spencer-p/celesun/pkg/settings"
)

type memStore struct {
	mu    sync.Mutex
	saved *settings.Settings
}

func (m *memStore) Load(context.Context) (settings.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return settings.Defaults(), nil
	}
	return *m.saved, nil
}

func (m *memStore) Save(_ context.Context, s settings.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = &s
	return nil
}

type fixture struct {
	router  *mux.Router
	board   *Board
	store   *memStore
	updates chan engine.Config
}

func newFixture(t *testing.T, publish bool) *fixture {
	t.Helper()
	f := &fixture{
		router:  mux.NewRouter(),
		board:   NewBoard(settings.Defaults()),
		store:   &memStore{},
		updates: make(chan engine.Config, 1),
	}
	Register(f.router, "/", Options{
		Board:         f.board,
		Store:         f.store,
		Updates:       f.updates,
		ArcSamples:    50,
		Refresh:       time.Minute,
		SessionKey:    "test-session-key",
		EncryptionKey: "test-encryption-key",
	})
	if publish {
		now := time.Date(2024, time.June, 21, 12, 0, 0, 0, time.UTC)
		_, m := engine.New(almanac.Keep94{}).Tick(engine.State{}, now, settings.Defaults().EngineConfig(50))
		f.board.Publish(m)
	}
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestUnavailableBeforeFirstTick(t *testing.T) {
	f := newFixture(t, false)
	for _, target := range []string{"/", "/dial.svg", "/api/v1/dial"} {
		rec := f.do(httptest.NewRequest("GET", target, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}

func TestDialJSON(t *testing.T) {
	f := newFixture(t, true)
	rec := f.do(httptest.NewRequest("GET", "/api/v1/dial", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Europe/Paris", got["time_zone"])
	assert.Equal(t, "SSW", got["sun_compass_direction"])
	assert.Equal(t, true, got["is_daytime"])
	assert.Len(t, got["daylight_arc"], 51)
}

func TestDialSVGCached(t *testing.T) {
	f := newFixture(t, true)
	first := f.do(httptest.NewRequest("GET", "/dial.svg?size=200", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "image/svg+xml", first.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(first.Body.String(), `<svg viewBox="0 0 200 230"`))

	second := f.do(httptest.NewRequest("GET", "/dial.svg?size=200", nil))
	assert.Equal(t, first.Body.String(), second.Body.String())

	other := f.do(httptest.NewRequest("GET", "/dial.svg", nil))
	assert.True(t, strings.HasPrefix(other.Body.String(), `<svg viewBox="0 0 400 430"`))
}

func TestDialSVGDrawFailure(t *testing.T) {
	board := NewBoard(settings.Defaults())
	now := time.Date(2024, time.June, 21, 12, 0, 0, 0, time.UTC)
	_, m := engine.New(almanac.Keep94{}).Tick(engine.State{}, now, settings.Defaults().EngineConfig(50))
	board.Publish(m)

	s := newServer("/", Options{Board: board, Store: &memStore{}, SessionKey: "k", EncryptionKey: "k"})
	s.draw = func(w io.Writer, _ engine.RenderModel, _ settings.Appearance, _ int) (int, error) {
		n, _ := io.WriteString(w, `<svg viewBox="0 0 400 430"`)
		return n, errors.New("out of ink")
	}
	r := mux.NewRouter()
	s.register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/dial.svg", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<svg")
	assert.Contains(t, rec.Body.String(), "out of ink")

	// Nothing half drawn is cached either.
	s.draw = drawDial
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/dial.svg", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasSuffix(rec.Body.String(), "</svg>"))
}

func TestIndex(t *testing.T) {
	f := newFixture(t, true)
	rec := f.do(httptest.NewRequest("GET", "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{"<svg", "Rise: ", "Next event: Sunset", "Sun Direction: ", `href="/config"`} {
		assert.Contains(t, body, want)
	}
}

func TestConfigGet(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(httptest.NewRequest("GET", "/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Europe/Paris"`)
	assert.Contains(t, rec.Body.String(), `value="#ffff00"`)
}

func TestConfigPostGlobal(t *testing.T) {
	f := newFixture(t, true)
	rec := f.do(postForm("/config", url.Values{
		"scope":          {"global"},
		"latitude":       {"36.9741"},
		"longitude":      {"-122.0308"},
		"timezone":       {"America/Los_Angeles"},
		"offset":         {"450"},
		"gradient_color": {"#ff8000"},
		"dark_mode":      {"on"},
	}))
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/", rec.Header().Get("Location"))

	want := settings.Defaults()
	want.Location = almanac.SantaCruz
	want.TimeZone = "America/Los_Angeles"
	want.Offset = 90
	want.GradientColor = settings.RGB{255, 128, 0}
	want.DarkMode = true

	require.NotNil(t, f.store.saved)
	assert.Equal(t, want, *f.store.saved)
	assert.Equal(t, want, f.board.Settings())
	select {
	case cfg := <-f.updates:
		assert.Equal(t, want.EngineConfig(50), cfg)
	default:
		t.Errorf("engine not updated")
	}
}

func TestConfigPostInvalid(t *testing.T) {
	f := newFixture(t, true)
	rec := f.do(postForm("/config", url.Values{
		"scope":    {"global"},
		"latitude": {"123"},
		"offset":   {"a lot"},
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid settings")
	assert.Nil(t, f.store.saved)
	assert.Empty(t, f.updates)
	assert.Equal(t, settings.Defaults(), f.board.Settings())
}

func TestConfigPostVisitor(t *testing.T) {
	f := newFixture(t, true)
	rec := f.do(postForm("/config", url.Values{
		"scope":     {"visitor"},
		"offset":    {"-90"},
		"dark_mode": {"on"},
	}))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Nil(t, f.store.saved)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	offsetOf := func(req *http.Request) float64 {
		rec := f.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		var m engine.RenderModel
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
		return m.Offset
	}

	mine := httptest.NewRequest("GET", "/api/v1/dial", nil)
	for _, c := range cookies {
		mine.AddCookie(c)
	}
	assert.Equal(t, 270.0, offsetOf(mine))
	assert.Equal(t, 0.0, offsetOf(httptest.NewRequest("GET", "/api/v1/dial", nil)))

	page := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		page.AddCookie(c)
	}
	assert.Contains(t, f.do(page).Body.String(), `class="dark"`)
}

func TestPathJoinPreservePrefix(t *testing.T) {
	table := []struct{ prefix, suffix, want string }{
		{"/", "/", "/"},
		{"", "/", "/"},
		{"/celesun", "/", "/celesun/"},
		{"/celesun/", "", "/celesun/"},
		{"/celesun", "config", "/celesun/config"},
	}
	for _, tc := range table {
		assert.Equal(t, tc.want, pathJoinPreservePrefix(tc.prefix, tc.suffix), "%q + %q", tc.prefix, tc.suffix)
	}
}
