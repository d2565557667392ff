package session

import (
	"time"

	"github.com/valyala/fasthttp"
)

const CookieName = "taskdeck_session"

// SetCookie issues the session cookie on the response.
func SetCookie(ctx *fasthttp.RequestCtx, sessionID string, expiresAt time.Time) {
	var cookie fasthttp.Cookie
	cookie.SetKey(CookieName)
	cookie.SetValue(sessionID)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(false) // MUST be true in production (HTTPS)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	cookie.SetExpire(expiresAt)
	ctx.Response.Header.SetCookie(&cookie)
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(ctx *fasthttp.RequestCtx) {
	var cookie fasthttp.Cookie
	cookie.SetKey(CookieName)
	cookie.SetValue("")
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetExpire(time.Now().Add(-1 * time.Hour))
	ctx.Response.Header.SetCookie(&cookie)
}

// FromRequest reads the opaque session token from the request cookies.
func FromRequest(ctx *fasthttp.RequestCtx) string {
	return string(ctx.Request.Header.Cookie(CookieName))
}
