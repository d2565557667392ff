package controllers

import (
	"context"
	"errors"
	"fmt"

	json "github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/internal/api/response"
	"github.com/taskdeck/taskdeck/internal/session"
	"github.com/valyala/fasthttp"
)

// SessionKey is the request user-value under which the guard middleware
// stores the resolved session.
const SessionKey = "session"

// TraceContextKey is the request user-value carrying the context extracted
// from the incoming trace headers.
const TraceContextKey = "traceCtx"

// requestContext returns the context for downstream calls: the propagated
// trace context when the middleware stored one, Background otherwise.
func requestContext(ctx *fasthttp.RequestCtx) context.Context {
	if traceCtx, ok := ctx.UserValue(TraceContextKey).(context.Context); ok {
		return traceCtx
	}

	return context.Background()
}

// sessionFromCtx returns the session the guard middleware resolved, or nil
// for unauthenticated requests that slipped past on a public route.
func sessionFromCtx(ctx *fasthttp.RequestCtx) *session.Session {
	sess, _ := ctx.UserValue(SessionKey).(*session.Session)
	return sess
}

func parseBody(ctx *fasthttp.RequestCtx, target any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return errors.New("request body is empty")
	}

	return json.Unmarshal(body, target)
}

func writeError(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, err error) {
	response.NewResponse[any](stdCtx, message, nil).WithError(err).Write(ctx)
}

func writeOK(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, data any) {
	response.NewResponse(stdCtx, message, data).Write(ctx)
}

func pathParam(ctx *fasthttp.RequestCtx, key string) (string, error) {
	val := ctx.UserValue(key)
	if val == nil {
		return "", fmt.Errorf("%s is required", key)
	}

	return fmt.Sprint(val), nil
}

func pathParamUUID(ctx *fasthttp.RequestCtx, key string) (uuid.UUID, error) {
	val, err := pathParam(ctx, key)
	if err != nil {
		return uuid.Nil, err
	}

	return uuid.Parse(val)
}
