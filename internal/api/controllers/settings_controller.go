package controllers

import (
	"errors"

	"github.com/fasthttp/router"
	"github.com/taskdeck/taskdeck/internal/perrors"
	"github.com/taskdeck/taskdeck/internal/services"
	user2 "github.com/taskdeck/taskdeck/internal/services/user"
	"github.com/valyala/fasthttp"
)

type ConfirmEmailRequest struct {
	Code string `json:"code"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

func RegisterSettingsRoutes(r *router.Router, svc *services.Services) {
	// Update name/email with the identity provider, mirroring email locally
	r.PUT("/api/settings/profile", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		sess := sessionFromCtx(ctx)

		var body user2.UpdateProfileRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		if err := svc.User.UpdateProfile(stdCtx, sess.UserID, sess.Username, &body); err != nil {
			switch {
			case errors.Is(err, user2.ErrNoFieldsToUpdate), errors.Is(err, user2.ErrInvalidEmail):
				writeError(ctx, stdCtx, "Invalid profile update", perrors.NewErrInvalidRequest("Invalid profile update", err))
			default:
				writeError(ctx, stdCtx, "Failed to update profile", perrors.NewErrInternalServerError("Failed to update profile", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Profile updated successfully!", nil)
	})

	// Ask the provider to re-send the email verification code
	r.POST("/api/settings/email/resend", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		sess := sessionFromCtx(ctx)

		if err := svc.User.ResendVerificationEmail(stdCtx, sess.AccessToken); err != nil {
			writeError(ctx, stdCtx, "Failed to send verification email", perrors.NewErrInternalServerError("Failed to send verification email", err))
			return
		}

		writeOK(ctx, stdCtx, "Verification email sent successfully!", nil)
	})

	// Confirm the email attribute with the provider-issued code
	r.POST("/api/settings/email/confirm", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		sess := sessionFromCtx(ctx)

		var body ConfirmEmailRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		if body.Code == "" {
			writeError(ctx, stdCtx, "Code is required", perrors.NewErrInvalidRequest("Code is required", errors.New("code is required")))
			return
		}

		if err := svc.User.ConfirmEmail(stdCtx, sess.UserID, sess.AccessToken, body.Code); err != nil {
			writeError(ctx, stdCtx, "Failed to verify email", perrors.NewErrInternalServerError("Failed to verify email", err))
			return
		}

		writeOK(ctx, stdCtx, "Email verified successfully", nil)
	})

	// Set a new permanent password with the provider
	r.PUT("/api/settings/password", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		sess := sessionFromCtx(ctx)

		var body UpdatePasswordRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		if err := svc.User.UpdatePassword(stdCtx, sess.Username, body.Password); err != nil {
			switch {
			case errors.Is(err, user2.ErrPasswordTooShort):
				writeError(ctx, stdCtx, "Password must be at least 8 characters long", perrors.NewErrInvalidRequest("Password must be at least 8 characters long", err))
			default:
				writeError(ctx, stdCtx, "Failed to update password", perrors.NewErrInternalServerError("Failed to update password", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Password updated successfully!", nil)
	})
}
