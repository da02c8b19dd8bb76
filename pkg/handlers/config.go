package handlers

import (
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"cloudeng.io/errors"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/pbkdf2"

	"github.com/spencer-p/celesun/pkg/settings"
)

const (
	sessionName     = "celesun"
	sessionOffset   = "offset"
	sessionDarkMode = "dark_mode"
	// See https://developer.chrome.com/blog/cookie-max-age-expires.
	defaultMaxAge = 60 * 60 * 24 * 400 // 400 days in seconds.

	// scopeGlobal marks a settings form meant for everyone rather than
	// the visitor's own view.
	scopeGlobal = "global"
)

func newSessionStore(sessionKey, encryptionKey string, secure bool) *sessions.CookieStore {
	store := &sessions.CookieStore{
		Codecs: securecookie.CodecsFromPairs(
			[]byte(sessionKey),
			deriveEncryptionKey(encryptionKey),
		),
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   defaultMaxAge,
			Secure:   secure,
			HttpOnly: true,
		},
	}
	store.MaxAge(defaultMaxAge)
	return store
}

func deriveEncryptionKey(password string) []byte {
	return pbkdf2.Key([]byte(password), []byte(sessionName), 4096, 32, sha1.New)
}

// visitorSettings applies the visitor's own rotation and theme on top of the
// global settings.
func visitorSettings(session *sessions.Session, global settings.Settings) settings.Settings {
	if offset, ok := session.Values[sessionOffset].(float64); ok {
		global.Offset = offset
	}
	if dark, ok := session.Values[sessionDarkMode].(bool); ok {
		global.DarkMode = dark
	}
	return global
}

type configInput struct {
	Settings settings.Settings
	Prefix   string
	Error    error
}

func (s *server) makeConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.sessions.Get(r, sessionName)
		current := visitorSettings(session, s.opts.Board.Settings())

		if r.Method == "GET" {
			s.renderConfig(w, http.StatusOK, current, nil)
			return
		}

		// Parse the form data.
		if err := r.ParseForm(); err != nil {
			s.renderConfig(w, http.StatusBadRequest, current, fmt.Errorf("failed to parse form: %w", err))
			return
		}

		if r.PostForm.Get("scope") == scopeGlobal {
			next, err := settingsFromForm(s.opts.Board.Settings(), r.PostForm)
			if err != nil {
				s.renderConfig(w, http.StatusBadRequest, current, err)
				return
			}
			if err := s.opts.Store.Save(r.Context(), next); err != nil {
				s.logger.Error("Failed to save settings", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprintf(w, "Failed to save settings: %v", err)
				return
			}
			s.opts.Board.SetSettings(next)
			s.svgs.Purge()
			if s.opts.Updates != nil {
				select {
				case s.opts.Updates <- next.EngineConfig(s.opts.ArcSamples):
				case <-r.Context().Done():
					return
				}
			}
			s.logger.Info("Saved settings", "settings", next.String())

			// The visitor now sees what everyone sees.
			delete(session.Values, sessionOffset)
			delete(session.Values, sessionDarkMode)
		} else {
			view, err := viewFromForm(current, r.PostForm)
			if err != nil {
				s.renderConfig(w, http.StatusBadRequest, current, err)
				return
			}
			session.Values[sessionOffset] = view.Offset
			session.Values[sessionDarkMode] = view.DarkMode
		}

		if err := session.Save(r, w); err != nil {
			s.logger.Warn("Failed to save session", "err", err)
		}
		http.Redirect(w, r, s.prefix, http.StatusFound)
	}
}

func (s *server) renderConfig(w http.ResponseWriter, code int, current settings.Settings, err error) {
	w.Header().Add("Content-Type", "text/html")
	w.WriteHeader(code)
	input := configInput{
		Settings: current,
		Prefix:   s.prefix,
		Error:    err,
	}
	if err := s.configTemplate.Execute(w, input); err != nil {
		s.logger.Error("Failed to write config template", "err", err)
	}
}

func parseFloatField(errs *errors.M, form url.Values, name string, fallback float64) float64 {
	raw := strings.TrimSpace(form.Get(name))
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		errs.Append(fmt.Errorf("%w: %s %q is not a number", settings.ErrInvalidSettings, name, raw))
		return fallback
	}
	return f
}

// viewFromForm reads only the fields a visitor may change for themselves.
func viewFromForm(base settings.Settings, form url.Values) (settings.Settings, error) {
	errs := &errors.M{}
	base.Offset = parseFloatField(errs, form, "offset", 0)
	base.DarkMode = form.Get("dark_mode") != ""
	if err := errs.Err(); err != nil {
		return base, err
	}
	base = base.Normalize()
	return base, base.Validate()
}

// settingsFromForm reads a full settings form. Empty fields keep the value
// from base.
func settingsFromForm(base settings.Settings, form url.Values) (settings.Settings, error) {
	errs := &errors.M{}
	next := base
	next.Latitude = parseFloatField(errs, form, "latitude", base.Latitude)
	next.Longitude = parseFloatField(errs, form, "longitude", base.Longitude)
	next.Offset = parseFloatField(errs, form, "offset", 0)
	if tz := strings.TrimSpace(form.Get("timezone")); tz != "" {
		next.TimeZone = tz
	}
	next.DarkMode = form.Get("dark_mode") != ""
	if raw := form.Get("gradient_color"); raw != "" {
		c, err := settings.ParseHex(raw)
		if err != nil {
			errs.Append(err)
		} else {
			next.GradientColor = c
		}
	}
	if font := strings.TrimSpace(form.Get("font_family")); font != "" {
		next.FontFamily = font
	}
	if err := errs.Err(); err != nil {
		return base, err
	}

	next = next.Normalize()
	if err := next.Validate(); err != nil {
		return base, err
	}
	return next, nil
}
