package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// Now returns the timestamp stamped on response envelopes.
func Now() time.Time { return now() }

// SuccessResponse writes data as the raw JSON body with status 200.
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// DataResponse writes data inside a {success, data, timestamp} envelope.
func DataResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, DataEnvelope{
		Success:   true,
		Data:      data,
		Timestamp: now(),
	})
}

// ListResponse writes a list payload.
func ListResponse(c echo.Context, rows interface{}, total int64) error {
	return DataResponse(c, &ListDataResponse{
		Rows:  rows,
		Total: total,
	})
}

// AttachmentResponse writes data as a downloadable JSON file.
func AttachmentResponse(c echo.Context, filename string, data interface{}) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+filename)
	return c.JSON(http.StatusOK, data)
}

// ErrorJSON writes the failure envelope with the given status.
func ErrorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorResponse{
		Success:   false,
		Error:     message,
		Timestamp: now(),
	})
}

// InternalServerErrorResponse writes the generic 500 envelope.
func InternalServerErrorResponse(c echo.Context) error {
	return ErrorJSON(c, http.StatusInternalServerError, "Internal server error")
}

// ErrorBody maps err to a status and failure envelope. Errors that are not
// *AppError become a generic 500.
func ErrorBody(err error) (int, ErrorResponse) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status, ErrorResponse{
			Success:   false,
			Error:     appErr.Message,
			Code:      appErr.Code,
			Details:   appErr.Details,
			Timestamp: now(),
		}
	}
	return http.StatusInternalServerError, ErrorResponse{
		Success:   false,
		Error:     "Internal server error",
		Timestamp: now(),
	}
}

// AppErrorResponse writes application error response.
func AppErrorResponse(c echo.Context, err error) error {
	status, body := ErrorBody(err)
	return c.JSON(status, body)
}

// ErrorHandler is the echo HTTPErrorHandler that renders every failure as
// an ErrorResponse. Internal error text never reaches the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		_ = AppErrorResponse(c, appErr)
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound:
			_ = ErrorJSON(c, he.Code, "Endpoint not found")
		case http.StatusMethodNotAllowed:
			_ = ErrorJSON(c, he.Code, "Method not allowed")
		case http.StatusInternalServerError:
			_ = InternalServerErrorResponse(c)
		default:
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			_ = ErrorJSON(c, he.Code, msg)
		}
		return
	}

	_ = InternalServerErrorResponse(c)
}
