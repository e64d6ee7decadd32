package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// WorkspaceIDKey is the context key for the caller's workspace ID
	WorkspaceIDKey contextKey = "workspace_id"
	// WorkspaceHeader carries the workspace a request operates on
	WorkspaceHeader = "X-Workspace-ID"
)

// RequireWorkspace resolves the workspace from the X-Workspace-ID header and stores it
// in both the echo context and the request context. Requests without a valid
// positive workspace ID are rejected with 400.
func RequireWorkspace() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(WorkspaceHeader))
			if raw == "" {
				return badRequestError(c, "Missing "+WorkspaceHeader+" header")
			}

			id, err := strconv.ParseInt(raw, 10, 32)
			if err != nil || id <= 0 {
				return badRequestError(c, "Invalid "+WorkspaceHeader+" header")
			}

			workspaceID := int32(id)
			c.Set(string(WorkspaceIDKey), workspaceID)
			ctx := context.WithValue(c.Request().Context(), WorkspaceIDKey, workspaceID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetWorkspaceID retrieves the workspace ID from the echo context, or 0 when absent
func GetWorkspaceID(c echo.Context) int32 {
	if id, ok := c.Get(string(WorkspaceIDKey)).(int32); ok {
		return id
	}
	return 0
}

// WorkspaceIDFromContext retrieves the workspace ID from a request context
func WorkspaceIDFromContext(ctx context.Context) (int32, bool) {
	id, ok := ctx.Value(WorkspaceIDKey).(int32)
	return id, ok
}
