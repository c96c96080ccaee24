package blogfront

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrUnauthorized = Statusf(401, "You must be logged in to do this")

	ErrNotFound = Statusf(404, "Not found")

	ErrFeatureDisabled = Statusf(400, "Feature disabled by administrator")
)

var _ error = &statusError{}

type statusError struct {
	Code int
	Text string

	WrappedError error
}

func (s *statusError) LogValue() slog.Value {
	if s == nil {
		return slog.Value{}
	}
	if s.WrappedError != nil {
		return slog.GroupValue(slog.String("text", s.Text), slog.Any("err", s.WrappedError))
	}
	return slog.StringValue(s.Text)
}

func (s *statusError) Error() string {
	return s.Text
}

func (s *statusError) Unwrap() error {
	return s.WrappedError
}

func (s *statusError) Is(target error) bool {
	if err, ok := target.(*statusError); ok {
		return err.Text == s.Text
	}
	return false
}

func Statusf(status int, format string, args ...any) error {
	return &statusError{Code: status, Text: fmt.Sprintf(format, args...)}
}

// WrapError keeps err for logging and errors.Is, but displays text.
// The code is inherited from err if it is a status error, otherwise it is 500.
func WrapError(err error, text string) error {
	if err == nil {
		return nil
	}
	return &statusError{Code: ErrorCode(err), Text: text, WrappedError: err}
}

func ErrorCode(err error) int {
	if err == nil {
		return 200
	}
	var err2 *statusError
	if errors.As(err, &err2) {
		return err2.Code
	}
	return 500
}

// ErrorText returns the display text of the outermost status error, or fallback
func ErrorText(err error, fallback string) string {
	var err2 *statusError
	if errors.As(err, &err2) && err2.Text != "" {
		return err2.Text
	}
	return fallback
}
