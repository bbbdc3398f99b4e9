package tenant

import (
	"regexp"
	"strings"
)

const (
	minSubdomainLength = 2
	maxSubdomainLength = 50
)

var subdomainRegex = regexp.MustCompile(`(?i)^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)

// reservedSubdomains overlaps the extractor's exclusion set and adds
// operational names that must never be handed out to a tenant.
var reservedSubdomains = map[string]struct{}{
	"www":     {},
	"api":     {},
	"admin":   {},
	"app":     {},
	"mail":    {},
	"ftp":     {},
	"blog":    {},
	"support": {},
	"help":    {},
	"docs":    {},
	"status":  {},
	"cdn":     {},
	"assets":  {},
}

// ValidSubdomain reports whether s is an acceptable tenant identifier.
func ValidSubdomain(s string) bool {
	return ValidateSubdomain(s) == nil
}

// ValidateSubdomain returns the first rule s violates, or nil.
func ValidateSubdomain(s string) error {
	if s == "" {
		return ErrSubdomainEmpty
	}
	if len(s) < minSubdomainLength || len(s) > maxSubdomainLength {
		return ErrSubdomainLength
	}
	if !subdomainRegex.MatchString(s) {
		return ErrSubdomainFormat
	}
	if IsReservedSubdomain(s) {
		return ErrSubdomainReserved
	}
	return nil
}

// IsReservedSubdomain reports whether s is a reserved name, ignoring case.
func IsReservedSubdomain(s string) bool {
	_, ok := reservedSubdomains[strings.ToLower(s)]
	return ok
}
