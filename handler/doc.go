// Package handler turns typed handler functions into http.HandlerFunc.
//
// A HandlerFunc receives a Context and a bound request value and returns a Response:
//
//	type LoginRequest struct {
//		Email    string `json:"email"`
//		Password string `json:"password"`
//	}
//
//	func login(ctx handler.Context, req LoginRequest) handler.Response {
//		res, err := svc.Login(ctx, req.Email, req.Password)
//		if err != nil {
//			return handler.Error(err)
//		}
//		return handler.JSON(res.User)
//	}
//
//	r.Post("/login", handler.Wrap(login,
//		handler.WithBinder[handler.Context, LoginRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, LoginRequest](errorHandler),
//	))
//
// Binding failures, render failures and Error responses all reach one ErrorHandler.
// NewErrorHandler renders them as JSON envelopes:
//
//	{"error": {"code": "validation_error", "message": "...", "details": {"email": ["is required"]}}}
//
// HTTPError carries an explicit status and code. validator.ValidationErrors become 422,
// binder errors 400, and errors exposing RetryAfter() set the Retry-After header.
// Everything else is logged and reported as a generic 500.
package handler
