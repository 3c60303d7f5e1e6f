package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/httpsession/core/cookie"
	"github.com/dmitrymomot/httpsession/core/session"
)

type sessionKey struct{}

// SessionConfig configures the session middleware. Field defaults apply
// through DefaultSessionConfig and SessionConfigFromEnv; a zero value
// passed to SessionWithConfig gets only Store, CookieName, CookiePath,
// and Logger backfilled.
type SessionConfig struct {
	// Store resolves and persists session data (default: volatile MemoryStore)
	Store session.Store

	CookieName     string
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieHTTPOnly bool
	CookieSameSite http.SameSite
	// CookieMaxAge bounds the session cookie lifetime in seconds
	// (0 = browser-session cookie)
	CookieMaxAge int

	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool
	// Logger for structured logging (default: slog with io.Discard)
	Logger *slog.Logger
}

// SessionCookieConfig provides environment-based configuration for the
// session cookie attributes.
type SessionCookieConfig struct {
	Name     string        `env:"SESSION_COOKIE_NAME" envDefault:"sessionid"`
	Path     string        `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	Domain   string        `env:"SESSION_COOKIE_DOMAIN" envDefault:""`
	Secure   bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	HTTPOnly bool          `env:"SESSION_COOKIE_HTTP_ONLY" envDefault:"true"`
	SameSite http.SameSite `env:"SESSION_COOKIE_SAME_SITE" envDefault:"2"` // SameSiteLaxMode
	MaxAge   int           `env:"SESSION_COOKIE_MAX_AGE" envDefault:"0"`
}

// DefaultSessionConfig returns a SessionConfig with the documented
// defaults: cookie "sessionid" on path "/", HttpOnly, SameSite=Lax,
// not Secure, browser-session lifetime.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		CookieName:     "sessionid",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	}
}

// SessionConfigFromEnv loads the cookie attributes from environment
// variables. Store, Skip, and Logger must be set by the caller.
func SessionConfigFromEnv() (SessionConfig, error) {
	cookieCfg, err := env.ParseAs[SessionCookieConfig]()
	if err != nil {
		return SessionConfig{}, err
	}
	return SessionConfig{
		CookieName:     cookieCfg.Name,
		CookiePath:     cookieCfg.Path,
		CookieDomain:   cookieCfg.Domain,
		CookieSecure:   cookieCfg.Secure,
		CookieHTTPOnly: cookieCfg.HTTPOnly,
		CookieSameSite: cookieCfg.SameSite,
		CookieMaxAge:   cookieCfg.MaxAge,
	}, nil
}

// Session creates middleware that resolves a session from the request
// cookie, binds it into the request context, and persists or deletes it
// right before the response is sent. A nil store selects the volatile
// in-memory store.
//
// Usage:
//
//	mux := http.NewServeMux()
//	mux.Handle("/", handler)
//
//	store := session.NewMemoryStore()
//	srv := &http.Server{Handler: middleware.Session(store)(mux)}
//
//	// In handlers:
//	func handler(w http.ResponseWriter, r *http.Request) {
//		sess, ok := middleware.GetSession(r.Context())
//		if !ok {
//			http.Error(w, "no session", http.StatusInternalServerError)
//			return
//		}
//		sess.Set("theme", "dark")
//	}
func Session(store session.Store) func(http.Handler) http.Handler {
	cfg := DefaultSessionConfig()
	cfg.Store = store
	return SessionWithConfig(cfg)
}

// SessionWithConfig creates a session middleware with custom configuration.
//
// The middleware:
//   - Reads the configured cookie (absent cookie means no session key)
//   - Resolves id and data through the store; unknown or invalid keys
//     yield a fresh empty session, never an error response
//   - Binds a new session into the request context
//   - Delegates to the next handler without writing anything itself
//   - On response finalization, before headers are flushed: deletes
//     emptied sessions (expiring the cookie), writes modified sessions
//     (setting the cookie to the key the store returned), and leaves
//     untouched sessions alone
//
// Construction is validated eagerly: nonsensical cookie settings panic
// at wiring time rather than surfacing per request.
func SessionWithConfig(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.CookieMaxAge < 0 {
		panic("session middleware: CookieMaxAge must not be negative")
	}
	if cfg.Store == nil {
		cfg.Store = session.NewMemoryStore()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "sessionid"
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			key, err := cookie.Get(r, cfg.CookieName)
			if err != nil {
				key = "" // absent cookie means no session
			}

			id, data, err := cfg.Store.Resolve(r.Context(), key)
			if err != nil {
				cfg.Logger.ErrorContext(r.Context(), "session middleware: failed to resolve session", "error", err)
				// Degrade gracefully: the request proceeds without a session
				next.ServeHTTP(w, r)
				return
			}

			sess := session.New(id, data)
			r = r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess))

			sw := &sessionWriter{
				ResponseWriter: w,
				commit: func() {
					commitSession(r.Context(), cfg, w, sess)
				},
			}

			next.ServeHTTP(sw, r)

			// Handler produced no body and no explicit status; commit now
			// so the cookie lands on the implicit 200.
			sw.commitOnce()
		})
	}
}

// GetSession retrieves the session bound by the middleware.
// Returns the session and true if found, nil and false otherwise.
func GetSession(ctx context.Context) (*session.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(sessionKey{}).(*session.Session)
	return sess, ok
}

// MustGetSession retrieves the session from context or panics if absent.
// Use this when session existence is guaranteed by middleware.
func MustGetSession(ctx context.Context) *session.Session {
	sess, ok := GetSession(ctx)
	if !ok {
		panic("session not found in context")
	}
	return sess
}

// commitSession is the before-send persistence decision. It runs exactly
// once per request, after downstream handling and before headers flush.
func commitSession(ctx context.Context, cfg SessionConfig, w http.ResponseWriter, sess *session.Session) {
	opts := []cookie.Option{
		cookie.WithPath(cfg.CookiePath),
		cookie.WithDomain(cfg.CookieDomain),
		cookie.WithSecure(cfg.CookieSecure),
		cookie.WithHTTPOnly(cfg.CookieHTTPOnly),
		cookie.WithSameSite(cfg.CookieSameSite),
	}

	switch {
	case sess.IsEmpty():
		if _, err := cfg.Store.Delete(ctx, sess.ID()); err != nil {
			cfg.Logger.ErrorContext(ctx, "session middleware: failed to delete session", "error", err)
			return
		}
		opts = append(opts, cookie.WithMaxAge(-1))
		if err := cookie.Set(w, cfg.CookieName, sess.ID(), opts...); err != nil {
			cfg.Logger.ErrorContext(ctx, "session middleware: failed to expire session cookie", "error", err)
		}

	case sess.IsModified():
		key, err := cfg.Store.Write(ctx, sess.ID(), sess.Snapshot())
		if err != nil {
			cfg.Logger.ErrorContext(ctx, "session middleware: failed to write session", "error", err)
			return
		}
		if cfg.CookieMaxAge > 0 {
			opts = append(opts, cookie.WithMaxAge(cfg.CookieMaxAge))
		}
		if err := cookie.Set(w, cfg.CookieName, key, opts...); err != nil {
			cfg.Logger.ErrorContext(ctx, "session middleware: failed to set session cookie", "error", err)
		}
	}
	// Untouched session: no storage call, no cookie mutation.
}

// sessionWriter defers the session persistence decision until the last
// moment headers can still be modified: the first WriteHeader or Write
// call, or handler return, whichever comes first.
type sessionWriter struct {
	http.ResponseWriter
	once   sync.Once
	commit func()
}

func (w *sessionWriter) commitOnce() {
	w.once.Do(w.commit)
}

func (w *sessionWriter) WriteHeader(statusCode int) {
	w.commitOnce()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commitOnce()
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher for streaming handlers. Flushing sends
// headers, so the session commits first.
func (w *sessionWriter) Flush() {
	w.commitOnce()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap supports http.ResponseController.
func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
