package nutrition

import (
	"errors"
	"strings"
)

// Kind is the user-facing error category of a failed submission.
type Kind int

const (
	KindMissingInput Kind = iota + 1
	KindInvalidInput
	KindCredential
	KindTransport
	KindService
)

func (k Kind) String() string {
	switch k {
	case KindMissingInput:
		return "missing_input"
	case KindInvalidInput:
		return "invalid_input"
	case KindCredential:
		return "credential"
	case KindTransport:
		return "transport"
	case KindService:
		return "service"
	}
	return "unknown"
}

var (
	ErrNoImage           = errors.New("no image provided")
	ErrMissingCredential = errors.New("API key is not configured")
	ErrEmptyCompletion   = errors.New("model returned an empty response")
)

// Error attaches a Kind to the underlying failure. Its message is the
// underlying message, so users see what the service actually said.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap tags err with kind. Errors that already carry a kind keep it.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

func MissingInput(err error) error    { return Wrap(KindMissingInput, err) }
func InvalidInput(err error) error    { return Wrap(KindInvalidInput, err) }
func CredentialError(err error) error { return Wrap(KindCredential, err) }
func TransportError(err error) error  { return Wrap(KindTransport, err) }
func ServiceError(err error) error    { return Wrap(KindService, err) }

// KindOf reports the kind carried by err. Untagged errors count as service
// failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindService
}

// UserMessage is the text shown in place of a result.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if KindOf(err) == KindMissingInput {
		return "Please upload an image to analyze."
	}
	return "Analysis failed: " + strings.TrimSpace(err.Error())
}

// Hint suggests what the user can do next.
func Hint(kind Kind) string {
	switch kind {
	case KindMissingInput:
		return "Choose a JPEG, PNG or WebP photo of your meal and submit again."
	case KindInvalidInput:
		return "Check the photo format and size, then try again."
	case KindCredential:
		return "The analysis service is not configured correctly. Please check your API key."
	default:
		return "Please try again or check your API key."
	}
}
