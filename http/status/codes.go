package status

import "strconv"

type (
	Code   uint16
	Status string
)

// HTTP status codes the server is able to emit. Handlers may use any other
// code as well, it'll be rendered with a generic reason phrase.
const (
	OK             Code = 200 // RFC 9110, 15.3.1
	Created        Code = 201 // RFC 9110, 15.3.2
	NoContent      Code = 204 // RFC 9110, 15.3.5
	PartialContent Code = 206 // RFC 9110, 15.3.7

	MovedPermanently  Code = 301 // RFC 9110, 15.4.2
	Found             Code = 302 // RFC 9110, 15.4.3
	SeeOther          Code = 303 // RFC 9110, 15.4.4
	NotModified       Code = 304 // RFC 9110, 15.4.5
	TemporaryRedirect Code = 307 // RFC 9110, 15.4.8
	PermanentRedirect Code = 308 // RFC 9110, 15.4.9

	BadRequest            Code = 400 // RFC 9110, 15.5.1
	Unauthorized          Code = 401 // RFC 9110, 15.5.2
	Forbidden             Code = 403 // RFC 9110, 15.5.4
	NotFound              Code = 404 // RFC 9110, 15.5.5
	MethodNotAllowed      Code = 405 // RFC 9110, 15.5.6
	NotAcceptable         Code = 406 // RFC 9110, 15.5.7
	RequestTimeout        Code = 408 // RFC 9110, 15.5.9
	RequestEntityTooLarge Code = 413 // RFC 9110, 15.5.14
	RequestURITooLong     Code = 414 // RFC 9110, 15.5.15
	Teapot                Code = 418 // RFC 9110, 15.5.19 (Unused)
	TooManyRequests       Code = 429 // RFC 6585, 4
	HeaderFieldsTooLarge  Code = 431 // RFC 6585, 5

	InternalServerError     Code = 500 // RFC 9110, 15.6.1
	NotImplemented          Code = 501 // RFC 9110, 15.6.2
	ServiceUnavailable      Code = 503 // RFC 9110, 15.6.4
	HTTPVersionNotSupported Code = 505 // RFC 9110, 15.6.6
)

// KnownCodes lists every code having a reason phrase of its own.
var KnownCodes = []Code{
	OK, Created, NoContent, PartialContent,
	MovedPermanently, Found, SeeOther, NotModified, TemporaryRedirect, PermanentRedirect,
	BadRequest, Unauthorized, Forbidden, NotFound, MethodNotAllowed, NotAcceptable,
	RequestTimeout, RequestEntityTooLarge, RequestURITooLong, Teapot, TooManyRequests,
	HeaderFieldsTooLarge,
	InternalServerError, NotImplemented, ServiceUnavailable, HTTPVersionNotSupported,
}

// Text returns a reason phrase for the code. Unknown codes are rendered
// as "Unknown Status Code".
func Text(code Code) Status {
	switch code {
	case OK:
		return "OK"
	case Created:
		return "Created"
	case NoContent:
		return "No Content"
	case PartialContent:
		return "Partial Content"
	case MovedPermanently:
		return "Moved Permanently"
	case Found:
		return "Found"
	case SeeOther:
		return "See Other"
	case NotModified:
		return "Not Modified"
	case TemporaryRedirect:
		return "Temporary Redirect"
	case PermanentRedirect:
		return "Permanent Redirect"
	case BadRequest:
		return "Bad Request"
	case Unauthorized:
		return "Unauthorized"
	case Forbidden:
		return "Forbidden"
	case NotFound:
		return "Not Found"
	case MethodNotAllowed:
		return "Method Not Allowed"
	case NotAcceptable:
		return "Not Acceptable"
	case RequestTimeout:
		return "Request Timeout"
	case RequestEntityTooLarge:
		return "Payload Too Large"
	case RequestURITooLong:
		return "URI Too Long"
	case Teapot:
		return "I'm a teapot"
	case TooManyRequests:
		return "Too Many Requests"
	case HeaderFieldsTooLarge:
		return "Request Header Fields Too Large"
	case InternalServerError:
		return "Internal Server Error"
	case NotImplemented:
		return "Not Implemented"
	case ServiceUnavailable:
		return "Service Unavailable"
	case HTTPVersionNotSupported:
		return "HTTP Version Not Supported"
	default:
		return "Unknown Status Code"
	}
}

// StringCode returns the decimal representation of the code.
func StringCode(code Code) string {
	return strconv.Itoa(int(code))
}

const protocol = "HTTP/1.1 "

var lines = func() map[Code]string {
	m := make(map[Code]string, len(KnownCodes))
	for _, code := range KnownCodes {
		m[code] = renderLine(code)
	}

	return m
}()

// Line returns the complete status line, e.g. "HTTP/1.1 200 OK\r\n". Lines for known
// codes are pre-rendered.
func Line(code Code) string {
	if line, found := lines[code]; found {
		return line
	}

	return renderLine(code)
}

func renderLine(code Code) string {
	return protocol + StringCode(code) + " " + string(Text(code)) + "\r\n"
}
