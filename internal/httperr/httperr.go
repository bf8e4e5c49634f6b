// Package httperr defines the closed set of error kinds the API can return
// and the single boundary where they are converted into HTTP responses.
// Every failure in the service collapses into one of these kinds before it
// reaches a client; internal detail (driver errors, stack traces) is logged
// server-side and never serialized.
package httperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind identifies a category of failure. The string value is what clients
// see in the `error` field of an error response.
type Kind string

const (
	KindUserAlreadyExists Kind = "UserAlreadyExists"
	KindNotFound          Kind = "NotFound"
	KindUnauthorized      Kind = "Unauthorized"
	KindInvalidBody       Kind = "InvalidBody"
	KindCode500           Kind = "Code500"
)

// statusOf maps each kind to its HTTP status code.
func statusOf(k Kind) int {
	switch k {
	case KindUserAlreadyExists, KindInvalidBody:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is the tagged error type handlers and middleware return. Msg is an
// optional human-readable hint attached only to request-shape failures;
// credential or token failures never carry one. The wrapped cause, if any,
// stays server-side.
type Error struct {
	Kind Kind
	Msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.err }

// Status returns the HTTP status code for the error's kind.
func (e *Error) Status() int { return statusOf(e.Kind) }

// New returns an Error of the given kind with no message or cause.
func New(kind Kind) *Error { return &Error{Kind: kind} }

// Wrap returns an Error of the given kind that records err as its internal
// cause. The cause is logged at the response boundary, not serialized.
func Wrap(kind Kind, err error) *Error { return &Error{Kind: kind, err: err} }

// WithMsg attaches a client-visible message. Only request-shape validation
// failures should carry one.
func (e *Error) WithMsg(msg string) *Error {
	e.Msg = msg
	return e
}

// response is the JSON body of every error response: {error: <kind>, msg?}.
type response struct {
	Error Kind   `json:"error"`
	Msg   string `json:"msg,omitempty"`
}

// Handler is installed as Echo's HTTPErrorHandler. It is the only place a
// failure becomes a response. Unknown errors and echo.HTTPError values are
// normalized into the closed kind set; internal causes are logged with the
// request path for call-site context before conversion.
func Handler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var e *Error
	if !errors.As(err, &e) {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			switch he.Code {
			case http.StatusNotFound:
				e = New(KindNotFound)
			case http.StatusUnauthorized:
				e = New(KindUnauthorized)
			case http.StatusBadRequest:
				e = New(KindInvalidBody)
			default:
				e = Wrap(KindCode500, err)
			}
		} else {
			e = Wrap(KindCode500, err)
		}
	}

	if e.Kind == KindCode500 {
		c.Logger().Errorf("%s %s → %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(e.Status())
		return
	}
	_ = c.JSON(e.Status(), response{Error: e.Kind, Msg: e.Msg})
}
