// Package session provides per-request HTTP session state with pluggable
// storage backends.
//
// A Session is a concurrency-safe key-value container created once per
// request. It tracks two one-way flags — accessed and modified — that the
// middleware inspects at response time to decide whether to persist,
// delete, or ignore the session. The flags are derived per request and
// never stored.
//
// # Stores
//
// Three Store implementations ship with the package:
//
//   - MemoryStore: volatile process-wide map, for development and
//     single-instance deployments.
//   - TokenStore: stateless; session data round-trips inside the cookie
//     value itself as a signed JWS (or encrypted JWE) compact token.
//   - RedisStore: durable JSON blobs in Redis.
//
// Any type implementing Store plugs into the middleware the same way.
//
// # Basic Usage
//
// Resolve, mutate, persist:
//
//	store := session.NewMemoryStore()
//
//	id, data, err := store.Resolve(ctx, cookieValue)
//	if err != nil {
//		return err
//	}
//
//	sess := session.New(id, data)
//	sess.Set("cart", []string{"sku-1"})
//
//	if sess.IsModified() {
//		key, err := store.Write(ctx, sess.ID(), sess.Snapshot())
//		// set key as the response cookie value
//		_ = key
//		_ = err
//	}
//
// Stateless tokens instead of server-side state:
//
//	store, err := session.NewTokenStore(secret)                          // JWS, HS256
//	store, err = session.NewTokenStore(secret, session.WithEncryption("")) // JWE, A256GCM
//
// With TokenStore the key returned by Write is a freshly signed token
// encoding the data; there is nothing to delete server-side.
//
// # Resolution Semantics
//
// Store.Resolve never fails a request because of a bad session: an
// absent cookie, an unknown id, a token signed with the wrong secret, or
// an unreachable Redis all produce a fresh id with empty data. Only
// Write and Delete surface backend errors.
package session
