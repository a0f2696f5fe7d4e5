package domain

import "errors"

// Kind identifies one failure class in the closed error taxonomy. Values
// double as the wire codes the resolver service attaches to its errors, so
// a recognized code maps onto a kind without translation.
type Kind string

const (
	KindNotConfigured    Kind = "E_NOT_CONFIGURED"
	KindInvalidKeyFormat Kind = "E_INVALID_KEY_FORMAT"
	KindInvalidKey       Kind = "E_INVALID_KEY"
	KindNetworkError     Kind = "E_NETWORK_ERROR"
	KindServerError      Kind = "E_SERVER_ERROR"
	KindInvalidURL       Kind = "E_INVALID_URL"
	KindLinkNotFound     Kind = "E_LINK_NOT_FOUND"
	KindDecodingError    Kind = "E_DECODING_ERROR"
)

func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k belongs to the closed set.
func (k Kind) Valid() bool {
	switch k {
	case KindNotConfigured, KindInvalidKeyFormat, KindInvalidKey,
		KindNetworkError, KindServerError, KindInvalidURL,
		KindLinkNotFound, KindDecodingError:
		return true
	}
	return false
}

// KindFromCode maps a wire code onto a kind. Unrecognized codes report
// false; callers fall back to KindServerError.
func KindFromCode(code string) (Kind, bool) {
	k := Kind(code)
	if k.Valid() {
		return k, true
	}
	return "", false
}

// Error is the single error type crossing this layer's boundary.
type Error struct {
	Kind    Kind
	Message string
}

// NewError builds a typed error.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

// Coder is implemented by external errors that carry a wire code. The
// resolver client's error type satisfies it; anything else maps to the
// generic server-error kind.
type Coder interface {
	ErrorCode() string
}

// FromExternal maps an arbitrary error from the resolver boundary onto the
// typed model. A typed error passes through untouched; a recognized wire
// code keeps its kind; everything else becomes KindServerError. The source
// message is preserved verbatim in all cases. Never returns nil for a
// non-nil input.
func FromExternal(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	var coded Coder
	if errors.As(err, &coded) {
		if kind, ok := KindFromCode(coded.ErrorCode()); ok {
			return &Error{Kind: kind, Message: err.Error()}
		}
	}
	return &Error{Kind: KindServerError, Message: err.Error()}
}

// IsKind reports whether err is a typed error of the given kind.
func IsKind(err error, kind Kind) bool {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind == kind
	}
	return false
}
