package controllers

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

// RegisterPageRoutes serves minimal placeholders for the browser routes so
// the guard's route matrix is observable. Real presentation lives in the
// frontend; these carry no contract beyond being guarded.
func RegisterPageRoutes(r *router.Router) {
	pages := map[string]string{
		"/":          "taskdeck",
		"/dashboard": "dashboard",
		"/tasks":     "tasks",
		"/settings":  "settings",
	}

	for path, title := range pages {
		title := title
		r.GET(path, func(ctx *fasthttp.RequestCtx) {
			ctx.SetContentType("text/html; charset=utf-8")
			ctx.SetStatusCode(fasthttp.StatusOK)
			_, _ = ctx.WriteString("<!doctype html><title>" + title + "</title>")
		})
	}
}
