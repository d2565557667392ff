package api

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/fasthttp/router"
	"github.com/taskdeck/taskdeck/internal/api/controllers"
	"github.com/taskdeck/taskdeck/internal/api/response"
	"github.com/taskdeck/taskdeck/internal/identity"
	"github.com/taskdeck/taskdeck/internal/perrors"
	"github.com/taskdeck/taskdeck/internal/session"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/propagation"
)

var tracePropagator = propagation.TraceContext{}

func (s *Server) initRoutes() fasthttp.RequestHandler {
	r := router.New()

	r.GET("/api/health", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		_, _ = ctx.Write([]byte("OK"))
	})

	auth, err := identity.New(context.Background(), s.conf)
	if err != nil {
		log.Fatal(err)
	}

	controllers.RegisterPageRoutes(r)
	controllers.RegisterAuthRoutes(r, s.services, auth, s.conf)
	controllers.RegisterTaskRoutes(r, s.services)
	controllers.RegisterSettingsRoutes(r, s.services)

	return s.withMiddlewares(r.Handler)
}

// withMiddlewares wraps the router with CORS, request logging, trace
// propagation and the session guard. The guard runs before every handler
// and re-resolves the session from the store on each request; nothing is
// cached across requests.
func (s *Server) withMiddlewares(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		applyCORS(ctx)
		if string(ctx.Method()) == fasthttp.MethodOptions {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}

		start := time.Now()
		uri := ctx.URI()
		requestURI := string(uri.FullURI())
		slog.Info("Started processing", slog.String("method", string(ctx.Method())), slog.String("request_uri", requestURI))

		h := http.Header{}
		ctx.Request.Header.VisitAll(func(k, v []byte) {
			h[string(k)] = []string{string(v)}
		})
		traceCtx := tracePropagator.Extract(ctx, propagation.HeaderCarrier(h))
		ctx.SetUserValue(controllers.TraceContextKey, traceCtx)

		sess := s.resolveSession(ctx)

		switch guardDecision(string(ctx.Path()), sess != nil) {
		case guardRedirectLanding:
			ctx.Redirect("/", fasthttp.StatusFound)
			return
		case guardRedirectDashboard:
			ctx.Redirect("/dashboard", fasthttp.StatusFound)
			return
		case guardDenyAPI:
			response.NewResponse[any](traceCtx, "Unauthorized", nil).
				WithError(perrors.NewErrUnauthorized("Unauthorized", errors.New("authentication required"))).
				Write(ctx)
			return
		}

		if sess != nil {
			ctx.SetUserValue(controllers.SessionKey, sess)
		}

		next(ctx)

		slog.Info("Finished processing", slog.String("method", string(ctx.Method())), slog.String("request_uri", requestURI), slog.Duration("duration", time.Since(start)))
	}
}

// resolveSession exchanges the session cookie for the live session record.
// Expired records are deleted on sight so a dead cookie behaves exactly like
// a missing one.
func (s *Server) resolveSession(ctx *fasthttp.RequestCtx) *session.Session {
	token := session.FromRequest(ctx)
	if token == "" {
		return nil
	}

	sess, err := s.services.Sessions.Get(ctx, token)
	if err != nil {
		slog.Error("Failed to resolve session", slog.Any("error", err))
		return nil
	}
	if sess == nil {
		return nil
	}

	if sess.Expired(time.Now()) {
		if err := s.services.Sessions.Delete(ctx, token); err != nil {
			slog.Error("Failed to delete expired session", slog.Any("error", err))
		}
		return nil
	}

	return sess
}

func applyCORS(ctx *fasthttp.RequestCtx) {
	headers := &ctx.Response.Header
	headers.Set("Access-Control-Allow-Origin", string(ctx.Request.Header.Peek("Origin")))
	headers.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS,PATCH")
	headers.Set("Access-Control-Allow-Headers", os.Getenv("ALLOWED_HEADERS"))
	headers.Set("Access-Control-Allow-Credentials", "true")
}
