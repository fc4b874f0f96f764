package client

import "fmt"

// Kind classifies every failure the client surfaces.
type Kind string

const (
	KindValidation  Kind = "ValidationError"
	KindAuth        Kind = "AuthError"
	KindRateLimited Kind = "RateLimited"
	KindNetwork     Kind = "NetworkError"
	KindServer      Kind = "ServerError"
)

const (
	msgNetwork        = "Network connection error, please check your internet connection"
	msgRateLimited    = "Too many requests, please try again later"
	msgUnauthorized   = "Your session has expired, please sign in again"
	msgDefaultFailure = "An error occurred"
)

// Error is the uniform error returned by the client and the stores built on it.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

// Sentinels for errors.Is; they match any Error of the same kind.
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrAuth        = &Error{Kind: KindAuth}
	ErrRateLimited = &Error{Kind: KindRateLimited}
	ErrNetwork     = &Error{Kind: KindNetwork}
	ErrServer      = &Error{Kind: KindServer}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind so that errors.Is(err, ErrAuth) works for any auth failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Validation builds a ValidationError for input rejected before any request.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Message returns the user-facing text of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
