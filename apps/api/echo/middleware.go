package echoapi

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// requestTimeout bounds the context of every request, and so every upstream call made for it.
func requestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if timeout <= 0 {
				return next(ctx)
			}
			c, cancel := context.WithTimeout(ctx.Request().Context(), timeout)
			defer cancel()
			ctx.SetRequest(ctx.Request().WithContext(c))
			return next(ctx)
		}
	}
}
