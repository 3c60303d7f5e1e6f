package cookie

import (
	"errors"
	"net/http"
	"time"
)

// MaxCookieSize is the maximum serialized size for a cookie (4KB),
// matching the limit enforced by common browsers.
const MaxCookieSize = 4096

// Set writes a cookie with the given name and value, applying secure
// defaults (Path=/, HttpOnly, SameSite=Lax) unless overridden by opts.
// Returns ErrCookieTooLarge when the serialized header exceeds
// MaxCookieSize, which matters for stateless token sessions where the
// value carries the whole payload.
func Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	options := applyOptions(defaults(), opts)

	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   options.MaxAge,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	}

	// A negative MaxAge expires the cookie; pin Expires too for clients
	// that predate Max-Age.
	if options.MaxAge < 0 {
		c.Expires = time.Unix(0, 0)
	}

	if header := c.String(); len(header) > MaxCookieSize {
		return ErrCookieTooLarge{
			Name: name,
			Size: len(header),
			Max:  MaxCookieSize,
		}
	}

	http.SetCookie(w, c)
	return nil
}

// Get retrieves a cookie value from the request.
func Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete expires the named cookie immediately. The value is kept empty;
// use Set with WithMaxAge(-1) to expire a cookie while echoing a value.
func Delete(w http.ResponseWriter, name string, opts ...Option) {
	options := applyOptions(defaults(), opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
}

func defaults() Options {
	return Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
