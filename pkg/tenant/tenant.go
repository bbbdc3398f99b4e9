package tenant

import (
	"context"
	"maps"
)

// Status is the lifecycle state of a tenant as reported by the store.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// IsActive reports whether a tenant in this state may be resolved.
func (s Status) IsActive() bool {
	return s == StatusActive
}

// Settings holds per-tenant configuration overrides (theme, feature toggles, ...).
// Values are JSON-like; keys the application does not know about pass through untouched.
type Settings map[string]any

// Merge returns a new map containing defaults overlaid with the tenant overrides.
// Neither input is modified.
func (s Settings) Merge(defaults map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(s))
	maps.Copy(out, defaults)
	maps.Copy(out, s)
	return out
}

// String returns the setting under key if it holds a string.
func (s Settings) String(key string) (string, bool) {
	v, ok := s[key].(string)
	return v, ok
}

// Tenant represents a tenant in the system with the information
// needed for request-scoped operations and UI display.
type Tenant struct {
	ID        string   `json:"id"`
	Subdomain string   `json:"subdomain"`
	Name      string   `json:"name"`
	Status    Status   `json:"status"`
	Settings  Settings `json:"settings,omitempty"`
}

// Clone returns a copy that shares no mutable state with t.
// Nested values inside Settings are copied by reference.
func (t *Tenant) Clone() *Tenant {
	if t == nil {
		return nil
	}
	c := *t
	c.Settings = maps.Clone(t.Settings)
	return &c
}

// Active reports whether the tenant may be resolved.
func (t *Tenant) Active() bool {
	return t != nil && t.Status.IsActive()
}

// Store is the backing store the resolver delegates to. Tenant isolation itself
// is enforced by the store (row-level security); this package only triggers it.
type Store interface {
	// LookupTenantBySubdomain returns zero or more records matching the subdomain,
	// regardless of their status.
	LookupTenantBySubdomain(ctx context.Context, subdomain string) ([]Tenant, error)

	// SetTenantContext scopes the remainder of the request's queries to tenantID.
	SetTenantContext(ctx context.Context, tenantID string) error
}
