package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/radio-transcriber/errors"
	usecaseErrors "github.com/johnquangdev/radio-transcriber/internal/usecase/errors"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID returns the request ID set by the RequestID middleware, or
// the one the client sent
func getRequestID(c echo.Context) string {
	if c == nil {
		return ""
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	if c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	})
}

// toAppError maps usecase sentinels onto application errors. Anything else
// that is not already an AppError becomes an internal error.
func toAppError(err error) errors.AppError {
	var appErr errors.AppError
	switch {
	case stdErrors.As(err, &appErr):
		return appErr
	case stdErrors.Is(err, usecaseErrors.ErrCatalogDisabled):
		return errors.ErrNotImplemented("transcript catalog")
	case stdErrors.Is(err, usecaseErrors.ErrNoBackends),
		stdErrors.Is(err, usecaseErrors.ErrNoTranscript):
		return errors.ErrCollaboratorUnavailable("transcription", err)
	case stdErrors.Is(err, usecaseErrors.ErrInvalidSidecar),
		stdErrors.Is(err, usecaseErrors.ErrUnsupportedFormat),
		stdErrors.Is(err, usecaseErrors.ErrEmptyAudioPath):
		e := errors.ErrInvalidArgument(err.Error())
		e.Raw = err
		return e
	default:
		return errors.ErrInternal(err)
	}
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	appErr := toAppError(err)

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.String("app_code", appErr.Code.String()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    int(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	}
	if appErr.Raw != nil {
		body.Info = appErr.Raw.Error()
	}
	status := appErr.HTTPCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, body)
}
