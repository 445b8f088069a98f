package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrEmptyUpload     = errors.New("empty upload")
	ErrStorage         = errors.New("storage failure")
	ErrCollaborator    = errors.New("collaborator error")
	ErrUnexpected      = errors.New("unexpected error")
)

// Kind is the stable, machine-readable code for an error marker.
type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindPayloadTooLarge Kind = "payload_too_large"
	KindEmptyUpload     Kind = "empty_upload"
	KindStorage         Kind = "storage_failure"
	KindCollaborator    Kind = "collaborator_error"
	KindUnexpected      Kind = "unexpected_error"
)

// HTTPStatus returns the response status associated with the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidInput, KindEmptyUpload:
		return http.StatusBadRequest
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// DefaultMessage is the caller-facing text used when an error carries none.
func (k Kind) DefaultMessage() string {
	switch k {
	case KindInvalidInput:
		return "Invalid request."
	case KindPayloadTooLarge:
		return "Uploaded file is too large."
	case KindEmptyUpload:
		return "Uploaded file is empty."
	case KindStorage:
		return "Failed to store the uploaded file."
	case KindCollaborator:
		return "Transcription service failed. Please try again later."
	default:
		return "An unexpected error occurred while transcribing the file."
	}
}

type taggedError struct {
	marker  error
	detail  string
	message string
	public  bool
	cause   error
}

func (e *taggedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.marker, e.detail, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.marker, e.detail)
}

func (e *taggedError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.marker}
	}
	return []error{e.marker, e.cause}
}

// Wrap tags err with marker and records message as the text that may be shown
// to the caller. The component and operation are only used for the internal
// error string. The marker should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	if marker == nil {
		marker = ErrUnexpected
	}
	return &taggedError{
		marker:  marker,
		detail:  buildDetail(component, operation, message),
		message: strings.TrimSpace(message),
		cause:   err,
	}
}

// WrapPublic is Wrap for failures whose message is safe to show even when the
// marker is ErrCollaborator or ErrUnexpected.
func WrapPublic(marker error, component, operation, message string, err error) error {
	wrapped := Wrap(marker, component, operation, message, err).(*taggedError)
	wrapped.public = wrapped.message != ""
	return wrapped
}

// Classify maps an error onto the taxonomy. Errors without a marker are
// unexpected.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrPayloadTooLarge):
		return KindPayloadTooLarge
	case errors.Is(err, ErrEmptyUpload):
		return KindEmptyUpload
	case errors.Is(err, ErrStorage):
		return KindStorage
	case errors.Is(err, ErrCollaborator):
		return KindCollaborator
	default:
		return KindUnexpected
	}
}

// Message returns the caller-facing message for err. Collaborator and
// unexpected failures use the generic text unless they were built with
// WrapPublic, so backend details never leak into responses.
func Message(err error) string {
	kind := Classify(err)
	if kind == "" {
		return ""
	}
	var tagged *taggedError
	if !errors.As(err, &tagged) || tagged.message == "" {
		return kind.DefaultMessage()
	}
	if (kind == KindCollaborator || kind == KindUnexpected) && !tagged.public {
		return kind.DefaultMessage()
	}
	return tagged.message
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "request failure"
	}
	return strings.Join(parts, ": ")
}
