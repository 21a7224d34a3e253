package middleware

import (
	"github.com/labstack/echo/v4"
)

// KeyLimiter decides whether a request for key may proceed.
type KeyLimiter interface {
	Allow(key string) bool
}

// RateLimit rejects requests from clients whose bucket is empty by calling deny.
func RateLimit(l KeyLimiter, deny echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return deny(c)
			}
			return next(c)
		}
	}
}
