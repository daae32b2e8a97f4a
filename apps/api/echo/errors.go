package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"

	"github.com/serafinsanchez/googleclassroom-portal/core"
	"github.com/serafinsanchez/googleclassroom-portal/core/account"
	"github.com/serafinsanchez/googleclassroom-portal/core/classroom"
	"github.com/serafinsanchez/googleclassroom-portal/core/drive"
	"github.com/serafinsanchez/googleclassroom-portal/core/writing"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errInvalidOAuthState    = echo.NewHTTPError(http.StatusBadRequest, "invalid oauth state")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// upstreamStatus returns the status of the Google API error wrapped by err, if it is a client or server error.
func upstreamStatus(err error) (int, bool) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code >= http.StatusBadRequest && gerr.Code < 600 {
		return gerr.Code, true
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *classroom.PartialGradeError:
			code = http.StatusBadGateway
			message = echo.Map{
				"error":      "submission graded but not returned",
				"details":    origErr.Err.Error(),
				"submission": origErr.Submission,
			}
		case *writing.InvalidResponseError:
			code = http.StatusBadGateway
			message = echo.Map{
				"error":       "Failed to parse analysis result",
				"details":     origErr.Err.Error(),
				"rawResponse": origErr.Raw,
			}
		case *core.UpstreamError:
			code = http.StatusInternalServerError
			if status, ok := upstreamStatus(origErr); ok {
				code = status
			}
			details := origErr.Op
			if origErr.Err != nil {
				details = origErr.Err.Error()
			}
			message = echo.Map{"error": origErr.Op + " failed", "details": details}
			logger.Error(err.Error(), logArgs(ctx, err)...)
		default:
			switch {
			case errors.Is(err, account.ErrNotFound):
				code = errHttpNotFound.Code
				message = errHttpNotFound.Message
			case errors.Is(err, writing.ErrModelUnavailable):
				code = http.StatusServiceUnavailable
				message = writing.ErrModelUnavailable.Error()
			case errors.Is(err, drive.ErrFileTooLarge):
				code = http.StatusRequestEntityTooLarge
				message = drive.ErrFileTooLarge.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = echo.Map{"error": msg, "details": err.Error()}
				logger.Error(msg, logArgs(ctx, errors.Wrap(err, msg))...)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			if m, ok := message.(echo.Map); ok {
				m["debug"] = err.Error()
			}
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// logArgs appends the account of the request, if any, to the logger args.
func logArgs(ctx echo.Context, args ...interface{}) []interface{} {
	if acc, err := getContextAccount(ctx); err == nil {
		args = append(args, acc)
	}
	return args
}
