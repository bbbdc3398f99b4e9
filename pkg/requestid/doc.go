// Package requestid tags every HTTP request with a correlation ID taken
// from X-Request-ID or freshly generated, and exposes it to handlers and
// to the logger through the request context.
package requestid
