// Package cookie provides small helpers for reading and writing HTTP
// cookies with secure defaults (Path=/, HttpOnly, SameSite=Lax) and a
// browser-compatible 4KB size limit. Attributes are adjusted through
// functional options.
package cookie
