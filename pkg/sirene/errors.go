package sirene

import (
	"errors"
	"fmt"
)

// Kind identifies a class of registry failure. The set is closed.
type Kind string

const (
	KindInvalidInput  Kind = "invalid_input"
	KindConfiguration Kind = "configuration"
	KindTransport     Kind = "transport"
	KindServer        Kind = "server"
	KindNotFound      Kind = "not_found"
	KindDecode        Kind = "decode"
	KindAPI           Kind = "api"
)

// User-facing messages, in the language of the forms they are shown in.
const (
	MsgInvalidInput  = "Le SIRET fourni est invalide ou mal formaté."
	MsgConfiguration = "La clé API Siren n'est pas configurée."
	MsgUnavailable   = "Le service API Siren est temporairement indisponible. Veuillez réessayer dans quelques instants."
	MsgNotFound      = "Aucune entreprise trouvée avec ce SIRET. Veuillez vérifier le numéro saisi."
	MsgDecode        = "Erreur lors du décodage de la réponse API."
	msgAPIFormat     = "Erreur API (%d). Veuillez réessayer."
)

// Error is the typed failure returned by the registry client and the lookup
// service. Message is safe to show to an end user; Err carries the detail
// that should only be logged.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sirene: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("sirene: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error of the given kind with its default message.
func NewError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Message: DefaultMessage(kind, 0), Err: cause}
}

// InvalidInput builds a KindInvalidInput error carrying a custom message,
// typically the identifier validator's.
func InvalidInput(message string) *Error {
	if message == "" {
		message = MsgInvalidInput
	}
	return &Error{Kind: KindInvalidInput, Message: message}
}

// DefaultMessage returns the user-facing text for kind. status is only used
// by KindAPI.
func DefaultMessage(kind Kind, status int) string {
	switch kind {
	case KindInvalidInput:
		return MsgInvalidInput
	case KindConfiguration:
		return MsgConfiguration
	case KindTransport, KindServer:
		return MsgUnavailable
	case KindNotFound:
		return MsgNotFound
	case KindDecode:
		return MsgDecode
	default:
		return fmt.Sprintf(msgAPIFormat, status)
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// UserMessage returns the user-facing message of err, or the generic
// unavailability text for errors outside the taxonomy.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return MsgUnavailable
}
