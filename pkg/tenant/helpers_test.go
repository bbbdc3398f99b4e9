package tenant_test

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// stubStore counts remote calls and serves canned records.
type stubStore struct {
	mu        sync.Mutex
	records   map[string][]tenant.Tenant
	lookupErr error
	setErr    error
	panicMsg  string
	delay     time.Duration

	lookups atomic.Int32
	sets    []string
}

func newStubStore(records ...tenant.Tenant) *stubStore {
	s := &stubStore{records: make(map[string][]tenant.Tenant)}
	for _, r := range records {
		s.records[r.Subdomain] = append(s.records[r.Subdomain], r)
	}
	return s
}

func (s *stubStore) LookupTenantBySubdomain(ctx context.Context, subdomain string) ([]tenant.Tenant, error) {
	s.mu.Lock()
	panicMsg, delay, err := s.panicMsg, s.delay, s.lookupErr
	recs := slices.Clone(s.records[subdomain])
	s.mu.Unlock()
	s.lookups.Add(1)

	if panicMsg != "" {
		panic(panicMsg)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *stubStore) SetTenantContext(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.sets = append(s.sets, tenantID)
	return nil
}

func (s *stubStore) failLookups(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookupErr = err
}

// replace swaps the records served for r.Subdomain.
func (s *stubStore) replace(r tenant.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.Subdomain] = []tenant.Tenant{r}
}

func (s *stubStore) contextSets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sets)
}

func acme() tenant.Tenant {
	return tenant.Tenant{
		ID:        "7f1d2c8e-3b4a-4c6d-9e8f-0a1b2c3d4e5f",
		Subdomain: "acme",
		Name:      "Acme",
		Status:    tenant.StatusActive,
		Settings:  tenant.Settings{"theme": "dark"},
	}
}

// fakeClock is a manually advanced clock for cache expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
