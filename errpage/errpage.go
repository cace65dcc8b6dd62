// Package errpage renders the default HTML error body a server-role
// Context falls back to when a request fails before any handler ever sees
// it. It mirrors the escaping helper the core engine already exports
// rather than pulling in a templating dependency for a one-line body.
package errpage

import "github.com/httpcore/httpcore"

// Render builds the (status, body) pair for kind, HTML-escaping the
// message text. Suitable as the errorPage callback passed to
// httpcore.NewServerConn / reactor.ServeServerConn / reactor.ListenAndServe.
func Render(kind httpcore.ErrorKind) (int, []byte) {
	status := httpcore.StatusForError(kind)
	title := statusTitle(status)
	msg := kind.String()

	var body []byte
	body = append(body, "<!doctype html>\n<html>\n<head><title>"...)
	body = appendInt(body, status)
	body = append(body, ' ')
	body = httpcore.AppendHTMLEscape(body, title)
	body = append(body, "</title></head>\n<body>\n<h1>"...)
	body = httpcore.AppendHTMLEscape(body, title)
	body = append(body, "</h1>\n<p>"...)
	body = httpcore.AppendHTMLEscape(body, msg)
	body = append(body, "</p>\n</body>\n</html>\n"...)
	return status, body
}

func appendInt(dst []byte, n int) []byte {
	return httpcore.AppendUint(dst, n)
}

func statusTitle(status int) string {
	switch status {
	case httpcore.StatusBadRequest:
		return "Bad Request"
	case httpcore.StatusRequestTimeout:
		return "Request Timeout"
	case httpcore.StatusRequestEntityTooLarge:
		return "Payload Too Large"
	case httpcore.StatusRequestHeaderFieldsTooLarge:
		return "Request Header Fields Too Large"
	default:
		return "Error"
	}
}
