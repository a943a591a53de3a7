package status

import "errors"

// HTTPError is an error which is going to be reported to the client as a response
// with the corresponding code.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

// CodeOf extracts the code of an HTTPError. Any other error is reported as
// an internal server error.
func CodeOf(err error) Code {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return InternalServerError
}

var (
	ErrEmptyRequest          = NewError(BadRequest, "empty request")
	ErrMalformedRequestLine  = NewError(BadRequest, "malformed request line")
	ErrUnknownMethod         = NewError(BadRequest, "unknown request method")
	ErrBadRequest            = NewError(BadRequest, "bad request")
	ErrNotFound              = NewError(NotFound, "not found")
	ErrRequestEntityTooLarge = NewError(RequestEntityTooLarge, "request entity too large")
	ErrInternalServerError   = NewError(InternalServerError, "internal server error")
)
