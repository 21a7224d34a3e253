package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"OptionStrat/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover returns recovery middleware. The stack is logged, never returned.
func Recover(l *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					perr, ok := r.(error)
					if !ok {
						perr = fmt.Errorf("%v", r)
					}
					l.Error("panic recovered",
						logger.Error(perr),
						logger.String("uri", c.Request().RequestURI),
						logger.String("request_id", GetRequestID(c)),
						logger.String("stack", string(debug.Stack())),
					)
					if !c.Response().Committed {
						err = c.JSON(http.StatusInternalServerError, map[string]interface{}{
							"success":   false,
							"error":     "Internal server error",
							"timestamp": time.Now().UTC(),
						})
					}
				}
			}()
			return next(c)
		}
	}
}
