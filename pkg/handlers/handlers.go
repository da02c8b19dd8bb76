package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"github.com/spencer-p/celesun/pkg/cache"
	"github.com/spencer-p/celesun/pkg/engine"
	"github.com/spencer-p/celesun/pkg/settings"
	"github.com/spencer-p/celesun/pkg/visualize"
)

//go:embed static
var content embed.FS

// Board holds the latest model published by the engine loop and the settings
// it was rendered with. It is safe for concurrent use.
type Board struct {
	mu       sync.RWMutex
	model    engine.RenderModel
	ok       bool
	settings settings.Settings
}

func NewBoard(s settings.Settings) *Board {
	return &Board{settings: s}
}

func (b *Board) Publish(m engine.RenderModel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.model = m
	b.ok = true
}

// Latest returns the last published model. ok is false until the first
// Publish.
func (b *Board) Latest() (m engine.RenderModel, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.model, b.ok
}

func (b *Board) Settings() settings.Settings {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.settings
}

func (b *Board) SetSettings(s settings.Settings) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings = s
}

// Options are the collaborators of the HTTP handlers.
type Options struct {
	Board *Board
	Store settings.Store
	// Updates receives the new engine configuration after a global
	// settings change.
	Updates    chan<- engine.Config
	ArcSamples int
	// Refresh is how often pages reload and how long a rendered dial is
	// cached.
	Refresh time.Duration

	SessionKey    string
	EncryptionKey string
	SecureCookies bool

	Logger *slog.Logger
}

type server struct {
	opts     Options
	prefix   string
	logger   *slog.Logger
	sessions *sessions.CookieStore
	svgs     *cache.Timed[[]byte]
	draw     func(w io.Writer, m engine.RenderModel, a settings.Appearance, size int) (int, error)

	indexTemplate  *template.Template
	configTemplate *template.Template
}

func Register(r *mux.Router, prefix string, opts Options) {
	newServer(prefix, opts).register(r)
}

func newServer(prefix string, opts Options) *server {
	if opts.Refresh <= 0 {
		opts.Refresh = time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{
		opts:           opts,
		prefix:         pathJoinPreservePrefix(prefix, "/"),
		logger:         logger,
		sessions:       newSessionStore(opts.SessionKey, opts.EncryptionKey, opts.SecureCookies),
		svgs:           cache.NewTimed[[]byte](opts.Refresh),
		draw:           drawDial,
		indexTemplate:  template.Must(template.ParseFS(content, "static/index.template.html")),
		configTemplate: template.Must(template.ParseFS(content, "static/config.template.html")),
	}
	return s
}

func (s *server) register(r *mux.Router) {
	r.Handle("/", s.makeIndexHandler()).Methods("GET")
	r.Handle("/dial.svg", s.makeDialSVGHandler()).Methods("GET")
	r.Handle("/api/v1/dial", s.makeDialJSONHandler()).Methods("GET")
	r.Handle("/config", s.makeConfigHandler()).Methods("GET", "POST")
}

// view is the latest model as the visitor asked to see it.
func (s *server) view(r *http.Request) (engine.RenderModel, settings.Settings, bool) {
	m, ok := s.opts.Board.Latest()
	current := s.opts.Board.Settings()
	session, _ := s.sessions.Get(r, sessionName)
	current = visitorSettings(session, current)
	if !ok {
		return m, current, false
	}
	return m.Rotated(current.Offset), current, true
}

func (s *server) unavailable(w http.ResponseWriter) {
	w.Header().Add("Retry-After", "1")
	w.WriteHeader(http.StatusServiceUnavailable)
	fmt.Fprintf(w, "No dial rendered yet")
}

func (s *server) makeDialJSONHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m, _, ok := s.view(r)
		if !ok {
			s.unavailable(w)
			return
		}
		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(m); err != nil {
			s.logger.Error("Failed to encode JSON result", "err", err)
		}
	})
}

func (s *server) makeDialSVGHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m, current, ok := s.view(r)
		if !ok {
			s.unavailable(w)
			return
		}
		size := visualize.DefaultSize
		if v, err := strconv.Atoi(r.FormValue("size")); err == nil {
			size = v
		}

		// The same tick seen with the same preferences draws the same image.
		key := fmt.Sprintf("%d %v %v %d", m.Now.UnixNano(), current.Offset, current.Appearance, size)
		w.Header().Add("Content-Type", "image/svg+xml")
		if cached, ok := s.svgs.Get(key); ok {
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}

		// Draw the whole image before committing to a status.
		var svg bytes.Buffer
		if _, err := s.draw(&svg, m, current.Appearance, size); err != nil {
			s.logger.Error("Failed to draw dial", "err", err)
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, "Failed to draw dial: %v", err)
			return
		}
		s.svgs.Set(key, svg.Bytes())
		w.WriteHeader(http.StatusOK)
		w.Write(svg.Bytes())
	})
}

func drawDial(w io.Writer, m engine.RenderModel, a settings.Appearance, size int) (int, error) {
	img := visualize.NewDial(m, a)
	img.SetSize(size)
	return img.Encode(w)
}

type indexInput struct {
	Model      engine.RenderModel
	Settings   settings.Settings
	Appearance settings.Appearance
	Panel      []visualize.Line
	SVG        template.HTML
	Prefix     string
	Refresh    int
}

func (s *server) makeIndexHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m, current, ok := s.view(r)
		if !ok {
			s.unavailable(w)
			return
		}
		var svg bytes.Buffer
		if _, err := s.draw(&svg, m, current.Appearance, visualize.DefaultSize); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, "Failed to draw dial: %v", err)
			s.logger.Error("Failed to draw dial", "err", err)
			return
		}

		input := indexInput{
			Model:      m,
			Settings:   current,
			Appearance: current.Appearance,
			Panel:      visualize.Panel(m),
			SVG:        template.HTML(svg.String()),
			Prefix:     s.prefix,
			Refresh:    max(1, int(s.opts.Refresh.Seconds())),
		}
		w.Header().Add("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if err := s.indexTemplate.Execute(w, input); err != nil {
			s.logger.Error("Failed to execute template", "err", err)
		}
	})
}

// pathJoinPreservePrefix joins suffix onto prefix, keeping a trailing slash
// on prefix when suffix adds nothing.
func pathJoinPreservePrefix(prefix string, suffix string) string {
	if prefix == "" {
		prefix = "/"
	}
	trimmedPrefix := path.Join(prefix, "")
	result := path.Join(prefix, suffix)
	if result == trimmedPrefix {
		if !strings.HasSuffix(result, "/") {
			result += "/"
		}
		return result
	}
	return result
}
