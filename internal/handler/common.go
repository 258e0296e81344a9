package handler // handler defines http handlers

import (
	"context" // context bounds the best-effort cache purge
	"errors"  // errors provides sentinel values used in getUserID
	"strconv" // strconv converts strings to numeric types

	"github.com/labstack/echo/v4"  // echo defines request context types
	"github.com/redis/go-redis/v9" // redis client for cache purging

	"github.com/uicode-market/uicode/internal/middleware" // cache purge helper
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// JWTAuth stores the raw claim value, which decodes as float64 for numeric
// subjects, so every plausible representation is handled here once.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// isAdmin reports whether the authenticated caller carries the ADMIN role.
// Route groups already gate the admin surface; this is only for the one
// shared endpoint (component delete) where owner and admin both qualify.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "ADMIN"
}

// pathID parses a numeric :id path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// purge drops the cached public listing after a confirmed mutation.
func purge(ctx context.Context, rdb *redis.Client, prefix string) error {
	return middleware.PurgeCache(ctx, rdb, prefix)
}
