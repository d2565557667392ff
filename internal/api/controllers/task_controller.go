package controllers

import (
	"errors"

	"github.com/fasthttp/router"
	"github.com/taskdeck/taskdeck/internal/perrors"
	"github.com/taskdeck/taskdeck/internal/services"
	task2 "github.com/taskdeck/taskdeck/internal/services/task"
	"github.com/valyala/fasthttp"
)

// ToggleTaskRequest carries the completion status the client last saw; the
// server flips relative to it.
type ToggleTaskRequest struct {
	Completed bool `json:"completed"`
}

func RegisterTaskRoutes(r *router.Router, svc *services.Services) {
	// List the caller's tasks, newest first
	r.GET("/api/tasks", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		sess := sessionFromCtx(ctx)

		tasks, err := svc.Task.List(stdCtx, sess.UserID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to fetch tasks", perrors.NewErrInternalServerError("Failed to fetch tasks", err))
			return
		}

		writeOK(ctx, stdCtx, "Tasks retrieved successfully", tasks)
	})

	// Create task
	r.POST("/api/tasks", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		sess := sessionFromCtx(ctx)

		var body task2.CreateTaskRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		caller, err := svc.User.GetByID(stdCtx, sess.UserID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to get user", perrors.NewErrInternalServerError("Failed to get user", err))
			return
		}

		created, err := svc.Task.Create(stdCtx, caller, &body)
		if err != nil {
			switch {
			case errors.Is(err, task2.ErrNotAllowed):
				writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrForbidden("Unauthorized", err))
			case errors.Is(err, task2.ErrInvalidInput):
				writeError(ctx, stdCtx, "Invalid task", perrors.NewErrInvalidRequest("Invalid task", err))
			default:
				writeError(ctx, stdCtx, "Failed to create task", perrors.NewErrInternalServerError("Failed to create task", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Task created successfully", created)
	})

	// Partial update of the caller's task
	r.PUT("/api/tasks/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		sess := sessionFromCtx(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body task2.UpdateTaskRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		updated, err := svc.Task.Update(stdCtx, id, &body, sess.UserID)
		if err != nil {
			switch {
			case errors.Is(err, task2.ErrTaskNotFound):
				writeError(ctx, stdCtx, "Task not found or unauthorized", perrors.NewErrNotFound("Task not found or unauthorized", err))
			case errors.Is(err, task2.ErrInvalidInput):
				writeError(ctx, stdCtx, "Invalid task", perrors.NewErrInvalidRequest("Invalid task", err))
			default:
				writeError(ctx, stdCtx, "Failed to update task", perrors.NewErrInternalServerError("Failed to update task", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Task updated successfully", updated)
	})

	// Delete the caller's task
	r.DELETE("/api/tasks/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		sess := sessionFromCtx(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		if err := svc.Task.Delete(stdCtx, id, sess.UserID); err != nil {
			switch {
			case errors.Is(err, task2.ErrTaskNotFound):
				writeError(ctx, stdCtx, "Task not found or unauthorized", perrors.NewErrNotFound("Task not found or unauthorized", err))
			default:
				writeError(ctx, stdCtx, "Failed to delete task", perrors.NewErrInternalServerError("Failed to delete task", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Task deleted successfully", nil)
	})

	// Toggle completion relative to the client's last-seen status
	r.POST("/api/tasks/{id}/toggle", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		sess := sessionFromCtx(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body ToggleTaskRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		toggled, err := svc.Task.ToggleCompletion(stdCtx, id, body.Completed, sess.UserID)
		if err != nil {
			switch {
			case errors.Is(err, task2.ErrTaskNotFound):
				writeError(ctx, stdCtx, "Task not found or unauthorized", perrors.NewErrNotFound("Task not found or unauthorized", err))
			default:
				writeError(ctx, stdCtx, "Failed to update task", perrors.NewErrInternalServerError("Failed to update task", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Task updated successfully", toggled)
	})
}
