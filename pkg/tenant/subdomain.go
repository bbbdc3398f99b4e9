package tenant

import (
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// HeaderForwardedHost is consulted when the request carries no Host.
const HeaderForwardedHost = "X-Forwarded-Host"

// excludedSubdomains never identify a tenant, they address the platform itself.
var excludedSubdomains = map[string]struct{}{
	"www":   {},
	"api":   {},
	"admin": {},
	"app":   {},
}

var localHostMarkers = []string{"localhost", "127.0.0.1"}

// Request is the part of an HTTP request the extractor looks at.
type Request struct {
	Host          string
	ForwardedHost string
	Query         url.Values
}

// RequestFromHTTP captures the host headers and query of r.
func RequestFromHTTP(r *http.Request) Request {
	fwd := r.Header.Get(HeaderForwardedHost)
	// Proxies may append their own host: "client, proxy1".
	if i := strings.IndexByte(fwd, ','); i >= 0 {
		fwd = fwd[:i]
	}
	return Request{
		Host:          r.Host,
		ForwardedHost: strings.TrimSpace(fwd),
		Query:         r.URL.Query(),
	}
}

// Extractor pulls a candidate tenant identifier out of a request host.
//
// The localhost rules ("acme-localhost:3000", the query override and the
// fallback identifier) apply only when development mode is enabled. Without
// it a localhost host is treated like any other and names no tenant, so a
// production deployment cannot be steered by a crafted Host header.
// tenantd enables development mode whenever APP_ENV is development.
type Extractor struct {
	devMode       bool
	devQueryParam string
	devFallback   string
	logger        *slog.Logger
}

// NewExtractor creates an extractor. Development rules only apply when devMode is set.
func NewExtractor(devMode bool, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		devMode:       devMode,
		devQueryParam: DefaultDevQueryParam,
		devFallback:   DefaultDevFallback,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the candidate identifier, or false when the request does not name a tenant.
func (e *Extractor) Extract(req Request) (string, bool) {
	host := req.Host
	if host == "" {
		host = req.ForwardedHost
	}
	if host == "" {
		e.logger.Debug("no host header on request, cannot extract tenant")
		return "", false
	}

	host = stripPort(host)

	if e.devMode && isLocalHost(host) {
		return e.extractDev(host, req.Query)
	}

	parts := strings.Split(host, ".")
	if len(parts) < 3 || parts[0] == "" {
		return "", false
	}

	candidate := parts[0]
	if _, excluded := excludedSubdomains[strings.ToLower(candidate)]; excluded {
		return "", false
	}
	return candidate, true
}

// extractDev handles hosts such as "acme-localhost:3000" or "localhost:3000?tenant=acme".
func (e *Extractor) extractDev(host string, query url.Values) (string, bool) {
	dash := strings.IndexByte(host, '-')
	dot := strings.IndexByte(host, '.')
	if dash > 0 && (dot < 0 || dash < dot) {
		return host[:dash], true
	}

	if v := strings.TrimSpace(query.Get(e.devQueryParam)); v != "" {
		return v, true
	}
	if e.devFallback == "" {
		return "", false
	}
	return e.devFallback, true
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	// No port, but possibly a bracketed IPv6 literal.
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}

func isLocalHost(host string) bool {
	for _, marker := range localHostMarkers {
		if strings.Contains(host, marker) {
			return true
		}
	}
	return false
}
