// Package binder decodes request bodies into typed request structs for handler.Wrap.
//
//	r.Post("/auth/login", handler.Wrap(h.login,
//		handler.WithBinder[handler.Context, LoginRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, LoginRequest](errorHandler),
//	))
//
// Binding failures wrap one of the package errors; the error handler maps them to 400.
// String fields are left exactly as sent: passwords must not be trimmed or rewritten.
package binder
