// Package middleware provides the HTTP session middleware for standard
// net/http handler chains.
//
// The middleware resolves a session from the request cookie through a
// pluggable session.Store, binds it into the request context, and makes
// the persistence decision exactly once per request, right before
// response headers are flushed:
//
//   - emptied sessions are deleted from storage and the cookie expired
//   - modified sessions are written and the cookie refreshed with the
//     key returned by the store (stateless token stores return a new
//     token here)
//   - untouched sessions cause no storage call and no cookie mutation
//
// Usage:
//
//	store := session.NewMemoryStore()
//
//	mux := http.NewServeMux()
//	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
//		sess := middleware.MustGetSession(r.Context())
//		sess.Set("theme", "dark")
//	})
//
//	http.ListenAndServe(":8080", middleware.Session(store)(mux))
//
// Configuration can come from the environment:
//
//	cfg, err := middleware.SessionConfigFromEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//	cfg.Store = store
//	handler := middleware.SessionWithConfig(cfg)(mux)
package middleware
