package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/fasthttp/router"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/identity"
	"github.com/taskdeck/taskdeck/internal/perrors"
	"github.com/taskdeck/taskdeck/internal/services"
	"github.com/taskdeck/taskdeck/internal/session"
	"github.com/valyala/fasthttp"
)

type UserResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Role          string `json:"role"`
}

type LogoutResponse struct {
	RedirectURL string `json:"redirectUrl"`
}

func RegisterAuthRoutes(r *router.Router, svc *services.Services, auth *identity.Authenticator, conf *config.Config) {
	// Kick off the OIDC code flow against the provider's hosted UI
	r.GET("/api/auth/login", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		csrf := make([]byte, 16)
		rand.Read(csrf)

		state := identity.OAuthState{
			CSRF:      base64.RawURLEncoding.EncodeToString(csrf),
			Redirect:  "/dashboard",
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
		}

		encodedState, err := auth.GetSignedState(state)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create signed state", err)
			return
		}

		ctx.Redirect(auth.AuthCodeURL(encodedState), fasthttp.StatusTemporaryRedirect)
	})

	// Code exchange: verify tokens, sync the user mirror, mint a session
	r.GET("/api/auth/callback", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		encodedState := ctx.URI().QueryArgs().Peek("state")
		code := ctx.URI().QueryArgs().Peek("code")

		if encodedState == nil || code == nil {
			writeError(ctx, stdCtx, "missing parameters", perrors.NewErrInvalidRequest("missing parameters", errors.New("missing parameters")))
			return
		}

		state, err := auth.VerifySignedState(string(encodedState))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to decode state", perrors.NewErrInvalidRequest("Failed to decode state", err))
			return
		}

		token, err := auth.Exchange(stdCtx, string(code))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to exchange token", err)
			return
		}

		// Authenticity check on the ID token; the userinfo endpoint is the
		// authoritative profile source afterwards.
		if _, err := auth.VerifyIDToken(stdCtx, token); err != nil {
			writeError(ctx, stdCtx, "Failed to verify ID token", perrors.NewErrUnauthorized("Failed to verify ID token", err))
			return
		}

		profile, err := auth.FetchUserInfo(stdCtx, token)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to fetch user info", err)
			return
		}

		u, err := svc.User.UpsertFromProfile(stdCtx, profile)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to sync user", err)
			return
		}

		sessionID, err := session.NewID()
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create session", err)
			return
		}

		sess := &session.Session{
			ID:          sessionID,
			UserID:      u.ID,
			Username:    u.Username,
			AccessToken: token.AccessToken,
			ExpiresAt:   time.Now().Add(conf.SESSION_TTL),
		}

		if err := svc.Sessions.Create(stdCtx, sess); err != nil {
			writeError(ctx, stdCtx, "Failed to create session", err)
			return
		}

		session.SetCookie(ctx, sess.ID, sess.ExpiresAt)

		redirect := state.Redirect
		if redirect == "" {
			redirect = "/dashboard"
		}
		ctx.Redirect(redirect, fasthttp.StatusFound)
	})

	// Get current user info
	r.GET("/api/auth/me", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		sess := sessionFromCtx(ctx)
		if sess == nil {
			ctx.SetStatusCode(fasthttp.StatusUnauthorized)
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", errors.New("no session")))
			return
		}

		u, err := svc.User.GetByID(stdCtx, sess.UserID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to get user", err)
			return
		}

		writeOK(ctx, stdCtx, "success", UserResponse{
			ID:            u.ID,
			Username:      u.Username,
			Name:          u.Name,
			Email:         u.Email,
			EmailVerified: u.EmailVerified,
			Role:          u.Role,
		})
	})

	// Federated logout: drop the local session and hand the browser the
	// provider's end-session URL
	r.POST("/api/auth/logout", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		if token := session.FromRequest(ctx); token != "" {
			if err := svc.Sessions.Delete(stdCtx, token); err != nil {
				writeError(ctx, stdCtx, "Failed to delete session", err)
				return
			}
		}
		session.ClearCookie(ctx)

		writeOK(ctx, stdCtx, "success", LogoutResponse{
			RedirectURL: auth.LogoutURL(),
		})
	})

	// GET logout is the provider's post-logout bounce target: clear local
	// state and land on the public page
	r.GET("/api/auth/logout", func(ctx *fasthttp.RequestCtx) {
		if token := session.FromRequest(ctx); token != "" {
			_ = svc.Sessions.Delete(requestContext(ctx), token)
		}
		session.ClearCookie(ctx)

		ctx.Redirect("/", fasthttp.StatusFound)
	})
}
