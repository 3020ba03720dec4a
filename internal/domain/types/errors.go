package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel error kinds shared by the client components. Match them with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNetwork    = errors.New("network error")
	ErrServer     = errors.New("server error")
	ErrNotFound   = errors.New("not found")
)

// Error carries the failing operation, its kind and, for server replies, the HTTP status.
type Error struct {
	Op      string
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	kind := "error"
	if e.Kind != nil {
		kind = e.Kind.Error()
	}
	switch {
	case e.Op != "" && msg != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, kind, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, kind)
	case msg != "":
		return fmt.Sprintf("%s: %s", kind, msg)
	default:
		return kind
	}
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of the given kind for op.
func NewKind(op string, kind error) *Error {
	return &Error{Op: op, Kind: kind}
}

// Wrap attaches op to err, keeping the kind of an inner *Error. Returns nil for nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return &Error{Op: op, Kind: te.Kind, Status: te.Status, Message: te.Message, Err: err}
	}
	return &Error{Op: op, Err: err}
}

// Validation reports locally rejected input.
func Validation(op, msg string) *Error {
	return &Error{Op: op, Kind: ErrValidation, Message: msg}
}

// Server reports a non-2xx reply or an unreadable 2xx body.
func Server(op string, status int, msg string) *Error {
	return &Error{Op: op, Kind: ErrServer, Status: status, Message: msg}
}

// Network reports a transport failure: dial, timeout, read.
func Network(op string, err error) *Error {
	return &Error{Op: op, Kind: ErrNetwork, Err: err}
}

// NotFound reports a missing remote entity.
func NotFound(op, msg string) *Error {
	return &Error{Op: op, Kind: ErrNotFound, Status: http.StatusNotFound, Message: msg}
}

// KindOf returns the sentinel kind of err, or nil if err is not a classified error.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrServer, ErrNetwork} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
