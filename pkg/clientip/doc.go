// Package clientip resolves the originating client address of a request
// behind reverse proxies (CF-Connecting-IP, X-Forwarded-For, X-Real-IP,
// then RemoteAddr) so rejected tenant lookups can be traced to a caller.
package clientip
