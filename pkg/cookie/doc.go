// Package cookie writes and reads HTTP cookies with consistent defaults and optional
// HMAC-SHA256 signatures.
//
// A Manager is created with one or more secrets (at least 32 characters each). The first
// secret signs new cookies; every secret is tried when verifying, so secrets can be rotated
// by prepending a new one and dropping the old one once its cookies have expired.
//
//	mgr, err := cookie.New([]string{os.Getenv("COOKIE_SECRET")},
//		cookie.WithSecure(true),
//	)
//
//	_ = mgr.SetSigned(w, "sid", token, cookie.WithMaxAge(3600))
//	token, err := mgr.GetSigned(r, "sid")
//
// Signed values are stored as base64url(value) "." base64url(mac). A cookie whose signature
// does not verify yields ErrInvalidSignature; a missing cookie yields ErrCookieNotFound.
// Has reports presence only and does no verification.
package cookie
