// Package gate protects routes in two tiers.
//
// The edge tier (RequireSessionCookie, Edge) only checks that a session cookie is present. It
// never touches storage, so it is cheap enough to run in front of whole route families, and it
// proves nothing about validity.
//
// The authoritative tier (Gate.RequireUser, Gate.LoadUser) resolves cookie → session → user
// through the identity service and stores the user in the request context. RequireVerified and
// RequirePaid then check account state on top of it.
//
//	g := gate.New(svc, transport, gate.WithLogger(log))
//
//	r.Route("/app", func(r chi.Router) {
//		r.Use(gate.RequireSessionCookie(transport), g.RequireUser)
//		r.With(gate.RequireVerified, g.RequirePaid).Get("/premium/report", report)
//	})
package gate
