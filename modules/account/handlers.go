package account

import (
	"net/http"

	"github.com/dmitrymomot/authgate/handler"
	"github.com/dmitrymomot/authgate/pkg/gate"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (rt *routes) register(ctx handler.Context, req credentialsRequest) handler.Response {
	if _, err := rt.svc.Register(ctx, req.Email, req.Password); err != nil {
		return handler.Error(err)
	}
	// The body never depends on the account: hidden duplicates look like new sign-ups.
	return handler.JSON(messageView{Message: msgRegistered}, handler.WithJSONStatus(http.StatusCreated))
}

func (rt *routes) verifyEmail(ctx handler.Context, req tokenRequest) handler.Response {
	user, err := rt.svc.VerifyEmail(ctx, req.Token)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newUserView(user, rt.svc.Now()))
}

func (rt *routes) resendVerification(ctx handler.Context, req emailRequest) handler.Response {
	if err := rt.svc.ResendVerification(ctx, req.Email); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(messageView{Message: msgVerifySent}, handler.WithJSONStatus(http.StatusAccepted))
}

func (rt *routes) login(ctx handler.Context, req credentialsRequest) handler.Response {
	res, err := rt.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return handler.Error(err)
	}

	now := rt.svc.Now()
	rt.transport.SetToken(ctx.ResponseWriter(), res.SessionToken, sessionCookieTTL(res, now))

	return handler.JSON(loginView{
		User:      newUserView(res.User, now),
		ExpiresAt: res.ExpiresAt,
	})
}

func (rt *routes) logout(ctx handler.Context, _ struct{}) handler.Response {
	if tok, err := rt.transport.GetToken(ctx.Request()); err == nil {
		if err := rt.svc.Logout(ctx, tok); err != nil {
			return handler.Error(err)
		}
	}
	rt.transport.ClearToken(ctx.ResponseWriter())
	return handler.Empty()
}

func (rt *routes) logoutAll(ctx handler.Context, _ struct{}) handler.Response {
	user := gate.UserFromContext(ctx)
	if user == nil {
		return handler.Error(handler.ErrUnauthorized)
	}
	if err := rt.svc.LogoutAll(ctx, user.ID); err != nil {
		return handler.Error(err)
	}
	rt.transport.ClearToken(ctx.ResponseWriter())
	return handler.Empty()
}

func (rt *routes) forgotPassword(ctx handler.Context, req emailRequest) handler.Response {
	if err := rt.svc.RequestPasswordReset(ctx, req.Email); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(messageView{Message: msgResetSent}, handler.WithJSONStatus(http.StatusAccepted))
}

func (rt *routes) resetPassword(ctx handler.Context, req resetPasswordRequest) handler.Response {
	if _, err := rt.svc.ResetPassword(ctx, req.Token, req.Password); err != nil {
		return handler.Error(err)
	}
	// Every session was revoked, including the caller's.
	rt.transport.ClearToken(ctx.ResponseWriter())
	return handler.JSON(messageView{Message: msgPasswordReset})
}

func (rt *routes) me(ctx handler.Context, _ struct{}) handler.Response {
	user := gate.UserFromContext(ctx)
	if user == nil {
		return handler.Error(handler.ErrUnauthorized)
	}
	return handler.JSON(newUserView(user, rt.svc.Now()))
}
