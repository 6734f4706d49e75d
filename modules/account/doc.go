// Package account exposes the account lifecycle over JSON HTTP.
//
// NewRouter returns a chi router meant to be mounted at /auth:
//
//	POST /register             201
//	POST /verify-email         200
//	POST /login                200, sets the session cookie
//	POST /logout               204, clears the cookie, idempotent
//	POST /logout-all           204, requires a session
//	POST /forgot-password      202, same body for every address
//	POST /reset-password       200
//	POST /resend-verification  202, same body for every address
//	GET  /me                   200, requires a session
//
// Session tokens travel only in the cookie; response bodies never carry them.
// MapError translates auth errors into the HTTP error kinds of the API.
package account
