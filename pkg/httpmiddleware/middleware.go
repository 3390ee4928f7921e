// Package httpmiddleware provides composable net/http middleware: request
// identity, logging, instrumentation, CORS, rate limiting, and panic recovery.
package httpmiddleware

import "net/http"

// Middleware transforms an http.Handler into another http.Handler.
type Middleware func(http.Handler) http.Handler

// Wrap applies middlewares to h in reverse order, so the first middleware in
// the list becomes the outermost one.
func Wrap(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
