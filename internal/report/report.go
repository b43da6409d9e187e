// Package report is the single error-surfacing capability shared by the
// feature components. Failures are classified into a small taxonomy
// (network, auth, validation, domain) and either logged or raised as a
// user-facing alert through a Notifier.
package report

import (
	"errors"
	"fmt"
	"log/slog"
)

// Kind classifies a failure for consistent user messaging.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindDomain     Kind = "domain"
)

// Error is a classified failure. Field is set for validation errors so the
// caller can focus the offending input.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a validation error naming the input field that should
// receive focus.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

// Domain builds a domain-rule error.
func Domain(msg string) *Error {
	return &Error{Kind: KindDomain, Msg: msg}
}

// StatusClassifier is implemented by transport errors that carry an HTTP
// status code.
type StatusClassifier interface {
	StatusCode() int
}

// Classify maps an arbitrary error onto the taxonomy. Transport errors with
// a 401/403 status are auth failures, any other status is a domain-rule
// failure enforced server-side, and everything else is network.
func Classify(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	var sc StatusClassifier
	if errors.As(err, &sc) {
		switch sc.StatusCode() {
		case 401, 403:
			return KindAuth
		default:
			return KindDomain
		}
	}
	return KindNetwork
}

// Notifier receives blocking, user-facing alerts. The terminal UI prints
// them; tests count them.
type Notifier interface {
	Alert(msg string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(msg string)

func (f NotifierFunc) Alert(msg string) { f(msg) }

// Reporter fans failures out to a structured log and, when asked, to the
// notifier. A nil notifier drops alerts.
type Reporter struct {
	log      *slog.Logger
	notifier Notifier
}

func New(log *slog.Logger, notifier Notifier) *Reporter {
	if log == nil {
		log = slog.Default()
	}
	return &Reporter{log: log, notifier: notifier}
}

// Silent records a failure without user feedback.
func (r *Reporter) Silent(op string, err error) {
	r.log.Error(op, "kind", Classify(err), "error", err)
}

// Surface records a failure and raises exactly one alert with the given
// user-facing message.
func (r *Reporter) Surface(op, msg string, err error) {
	r.log.Error(op, "kind", Classify(err), "error", err)
	if r.notifier != nil {
		r.notifier.Alert(msg)
	}
}
