package echoapi

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/application"
	"github.com/aredu/arcportal/core/document"
	msgdom "github.com/aredu/arcportal/core/message"
	"github.com/aredu/arcportal/core/notification"
	"github.com/aredu/arcportal/core/progress"
	"github.com/aredu/arcportal/core/task"
	"github.com/aredu/arcportal/core/user"
)

var (
	unauthorizedErr         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	authenticationFailedErr = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	forbiddenHTTPErr        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	notFoundHTTPErr         = echo.NewHTTPError(http.StatusNotFound, "not found")
	tokenSigningError       = errors.New("failed to sign token")
)

var notFoundErrs = []error{
	user.ErrNotFound,
	application.ErrNotFound,
	application.ErrDocumentNotFound,
	progress.ErrNotFound,
	document.ErrNotFound,
	task.ErrNotFound,
	notification.ErrNotFound,
}

var conflictErrs = []error{
	msgdom.ErrSendInFlight,
	application.ErrCancellationExists,
}

func appHTTPErrorHandler(err error, c echo.Context) {
	var code int
	var message interface{}

	switch err := err.(type) {
	case *echo.HTTPError:
		if err.Internal != nil {
			if herr, ok := err.Internal.(*echo.HTTPError); ok {
				err = herr
			}
		}
		code = err.Code
		message = err.Message
	case validator.ValidationErrors:
		fldErrs := make(map[string]string)
		for _, vErr := range err {
			fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
		}
		code = http.StatusBadRequest
		message = fldErrs
	case *core.ValidationError:
		if err.Fields != nil {
			fldErrs := make(map[string]string)
			for _, fErr := range err.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			message = fldErrs
		} else {
			message = err.Error()
		}
		code = http.StatusBadRequest
	default:
		code, message = classify(err)
	}

	if m, ok := message.(string); ok {
		message = echo.Map{"error": m}
	}

	// Send response
	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead { // Issue #608
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, message)
		}
		if code >= http.StatusInternalServerError {
			c.Echo().Logger.Error(err)
		}
	}
}

func classify(err error) (int, interface{}) {
	if errors.Is(err, core.ErrPermissionDenied) {
		return http.StatusForbidden, core.ErrPermissionDenied.Error()
	}
	for _, sentinel := range notFoundErrs {
		if errors.Is(err, sentinel) {
			return http.StatusNotFound, sentinel.Error()
		}
	}
	for _, sentinel := range conflictErrs {
		if errors.Is(err, sentinel) {
			return http.StatusConflict, sentinel.Error()
		}
	}
	// any other error is a server error
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
