package tenant_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func host(h string) tenant.Request {
	return tenant.Request{Host: h}
}

func TestResolver_Scenarios(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("active tenant resolves and scopes the store", func(t *testing.T) {
		t.Parallel()
		store := newStubStore(acme())
		r := tenant.NewResolver(store)

		res := r.Resolve(ctx, host("acme.example.com"))
		require.True(t, res.OK())
		assert.Nil(t, res.Error)
		assert.Equal(t, tenant.StateResolved, res.Step)
		assert.Equal(t, "Acme", res.Tenant.Name)
		assert.Equal(t, []string{acme().ID}, store.contextSets())
	})

	t.Run("excluded host yields INVALID_SUBDOMAIN", func(t *testing.T) {
		t.Parallel()
		store := newStubStore(acme())
		r := tenant.NewResolver(store)

		res := r.Resolve(ctx, host("www.example.com"))
		require.NotNil(t, res.Error)
		assert.Nil(t, res.Tenant)
		assert.Equal(t, tenant.CodeInvalidSubdomain, res.Error.Code)
		assert.Equal(t, tenant.StateExtracting, res.Step)
		assert.Zero(t, store.lookups.Load())
	})

	t.Run("absent tenant yields TENANT_NOT_FOUND and is cached", func(t *testing.T) {
		t.Parallel()
		store := newStubStore()
		r := tenant.NewResolver(store)

		for range 2 {
			res := r.Resolve(ctx, host("ab.example.com"))
			require.NotNil(t, res.Error)
			assert.Nil(t, res.Tenant)
			assert.Equal(t, tenant.CodeTenantNotFound, res.Error.Code)
		}
		assert.Equal(t, int32(1), store.lookups.Load())
	})

	t.Run("suspended tenant is indistinguishable from absent", func(t *testing.T) {
		t.Parallel()
		store := newStubStore(tenant.Tenant{ID: "t2", Subdomain: "go", Name: "Go", Status: tenant.StatusSuspended})
		r := tenant.NewResolver(store)

		res := r.Resolve(ctx, host("go.example.com"))
		require.NotNil(t, res.Error)
		assert.Nil(t, res.Tenant)
		assert.Equal(t, tenant.CodeTenantNotFound, res.Error.Code)
		assert.Empty(t, store.contextSets())
	})
}

func TestResolver_ValidationFailure(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	r := tenant.NewResolver(store)

	for _, h := range []string{"a.example.com", "acme-.example.com", "support.example.com", "ac_me.example.com"} {
		res := r.Resolve(context.Background(), host(h))
		require.NotNil(t, res.Error, h)
		assert.Equal(t, tenant.CodeInvalidSubdomainFormat, res.Error.Code, h)
		assert.Equal(t, tenant.StateValidating, res.Step, h)
	}
	assert.Zero(t, store.lookups.Load())
}

func TestResolver_NormalizesCase(t *testing.T) {
	t.Parallel()
	store := newStubStore(acme())
	r := tenant.NewResolver(store)

	res := r.Resolve(context.Background(), host("ACME.example.com"))
	require.True(t, res.OK())
	res = r.Resolve(context.Background(), host("acme.example.com"))
	require.True(t, res.OK())
	assert.Equal(t, int32(1), store.lookups.Load())
}

func TestResolver_PicksActiveRecord(t *testing.T) {
	t.Parallel()
	old := acme()
	old.ID = "old"
	old.Status = tenant.StatusInactive
	store := newStubStore(old, acme())
	r := tenant.NewResolver(store)

	res := r.Resolve(context.Background(), host("acme.example.com"))
	require.True(t, res.OK())
	assert.Equal(t, acme().ID, res.Tenant.ID)
}

func TestResolver_StoreErrorsAreNotCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStubStore(acme())
	dbErr := errors.New("connection refused")
	store.failLookups(dbErr)
	r := tenant.NewResolver(store)

	res := r.Resolve(ctx, host("acme.example.com"))
	require.NotNil(t, res.Error)
	assert.Nil(t, res.Tenant)
	assert.Equal(t, tenant.CodeResolutionError, res.Error.Code)
	assert.Equal(t, tenant.StateLookingUp, res.Step)
	assert.ErrorIs(t, res.Error, tenant.ErrLookupFailed)
	assert.ErrorIs(t, res.Error, dbErr)

	stats, err := r.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)

	store.failLookups(nil)
	res = r.Resolve(ctx, host("acme.example.com"))
	require.True(t, res.OK())
	assert.Equal(t, int32(2), store.lookups.Load())
}

func TestResolver_ContextSetFailure(t *testing.T) {
	t.Parallel()
	store := newStubStore(acme())
	store.setErr = errors.New("permission denied for function set_tenant_context")
	r := tenant.NewResolver(store)

	res := r.Resolve(context.Background(), host("acme.example.com"))
	require.NotNil(t, res.Error)
	assert.Nil(t, res.Tenant, "never hand out an unscoped tenant")
	assert.Equal(t, tenant.CodeResolutionError, res.Error.Code)
	assert.Equal(t, tenant.StateSettingContext, res.Step)
	assert.ErrorIs(t, res.Error, tenant.ErrContextSetFailed)
}

func TestResolver_RecoversPanics(t *testing.T) {
	t.Parallel()
	store := newStubStore(acme())
	store.panicMsg = "driver exploded"
	r := tenant.NewResolver(store)

	var res tenant.Result
	require.NotPanics(t, func() {
		res = r.Resolve(context.Background(), host("acme.example.com"))
	})
	require.NotNil(t, res.Error)
	assert.Nil(t, res.Tenant)
	assert.Equal(t, tenant.CodeResolutionError, res.Error.Code)
	assert.ErrorIs(t, res.Error, tenant.ErrResolverPanic)
	assert.Equal(t, tenant.StateLookingUp, res.Step)
}

func TestResolver_LookupTimeout(t *testing.T) {
	t.Parallel()
	store := newStubStore(acme())
	store.delay = time.Second
	r := tenant.NewResolver(store, tenant.WithLookupTimeout(20*time.Millisecond))

	res := r.Resolve(context.Background(), host("acme.example.com"))
	require.NotNil(t, res.Error)
	assert.Equal(t, tenant.CodeResolutionError, res.Error.Code)
	assert.ErrorIs(t, res.Error, context.DeadlineExceeded)
}

func TestResolver_CacheExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newFakeClock()
	store := newStubStore(acme())
	r := tenant.NewResolver(store,
		tenant.WithCache(tenant.NewMemoryCache(tenant.DefaultCacheTTL, tenant.WithClock(clock.Now))),
	)

	require.True(t, r.Resolve(ctx, host("acme.example.com")).OK())
	clock.Advance(tenant.DefaultCacheTTL - time.Second)
	require.True(t, r.Resolve(ctx, host("acme.example.com")).OK())
	assert.Equal(t, int32(1), store.lookups.Load())

	clock.Advance(time.Second)
	require.True(t, r.Resolve(ctx, host("acme.example.com")).OK())
	assert.Equal(t, int32(2), store.lookups.Load())
}

func TestResolver_ContextIsSetOnEveryRequest(t *testing.T) {
	t.Parallel()
	store := newStubStore(acme())
	r := tenant.NewResolver(store)

	for range 3 {
		require.True(t, r.Resolve(context.Background(), host("acme.example.com")).OK())
	}
	assert.Len(t, store.contextSets(), 3, "cached lookups still scope each request")
}

func TestResolver_CollapsesConcurrentMisses(t *testing.T) {
	t.Parallel()
	store := newStubStore(acme())
	store.delay = 50 * time.Millisecond
	r := tenant.NewResolver(store)

	var wg sync.WaitGroup
	results := make([]tenant.Result, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve(context.Background(), host("acme.example.com"))
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		assert.True(t, res.OK())
	}
	assert.Equal(t, int32(1), store.lookups.Load())
}

func TestResolver_CallersCannotCorruptCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStubStore(acme())
	r := tenant.NewResolver(store)

	first := r.Resolve(ctx, host("acme.example.com"))
	require.True(t, first.OK())
	first.Tenant.Name = "Mutated"
	first.Tenant.Settings["theme"] = "hacked"

	second := r.Resolve(ctx, host("acme.example.com"))
	require.True(t, second.OK())
	assert.Equal(t, "Acme", second.Tenant.Name)
	assert.Equal(t, "dark", second.Tenant.Settings["theme"])
	assert.Equal(t, int32(1), store.lookups.Load(), "second request is a cache hit")
}

func TestResolver_SharedFetchResultsAreIndependent(t *testing.T) {
	t.Parallel()
	store := newStubStore(acme())
	store.delay = 50 * time.Millisecond
	r := tenant.NewResolver(store)

	var wg sync.WaitGroup
	results := make([]tenant.Result, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve(context.Background(), host("acme.example.com"))
		}(i)
	}
	wg.Wait()

	require.True(t, results[0].OK())
	require.True(t, results[1].OK())
	assert.NotSame(t, results[0].Tenant, results[1].Tenant)
	results[0].Tenant.Settings["theme"] = "hacked"
	assert.Equal(t, "dark", results[1].Tenant.Settings["theme"])
}

func TestResolver_InvalidateDuringFetch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStubStore(acme())
	store.delay = 200 * time.Millisecond
	r := tenant.NewResolver(store)

	inflight := make(chan tenant.Result, 1)
	go func() { inflight <- r.Resolve(ctx, host("acme.example.com")) }()
	require.Eventually(t, func() bool { return store.lookups.Load() == 1 },
		time.Second, 5*time.Millisecond)

	renamed := acme()
	renamed.Name = "Acme v2"
	store.replace(renamed)
	require.NoError(t, r.Invalidate(ctx, "acme"))

	// A request arriving after the invalidation does not join the stale fetch.
	fresh := r.Resolve(ctx, host("acme.example.com"))
	require.True(t, fresh.OK())
	assert.Equal(t, "Acme v2", fresh.Tenant.Name)

	old := <-inflight
	require.True(t, old.OK())
	assert.Equal(t, "Acme", old.Tenant.Name)

	// The stale result was not written back over the fresh one.
	again := r.Resolve(ctx, host("acme.example.com"))
	require.True(t, again.OK())
	assert.Equal(t, "Acme v2", again.Tenant.Name)
	assert.Equal(t, int32(2), store.lookups.Load())
}

func TestResolver_ClearAllDuringFetch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStubStore(acme())
	store.delay = 100 * time.Millisecond
	r := tenant.NewResolver(store)

	done := make(chan tenant.Result, 1)
	go func() { done <- r.Resolve(ctx, host("acme.example.com")) }()
	require.Eventually(t, func() bool { return store.lookups.Load() == 1 },
		time.Second, 5*time.Millisecond)

	require.NoError(t, r.ClearAll(ctx))
	require.True(t, (<-done).OK())

	stats, err := r.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Entries, "fetch started before the clear is not cached")
}

func TestResolver_DevMode(t *testing.T) {
	t.Parallel()
	store := newStubStore(acme(), tenant.Tenant{ID: "d1", Subdomain: "demo", Name: "Demo", Status: tenant.StatusActive})
	r := tenant.NewResolver(store, tenant.WithDevMode(true))

	res := r.Resolve(context.Background(), host("acme-localhost:3000"))
	require.True(t, res.OK())
	assert.Equal(t, "acme", res.Tenant.Subdomain)

	res = r.Resolve(context.Background(), host("localhost:3000"))
	require.True(t, res.OK())
	assert.Equal(t, "demo", res.Tenant.Subdomain)
}

func TestResolver_ResolveSubdomain(t *testing.T) {
	t.Parallel()
	store := newStubStore(acme())
	r := tenant.NewResolver(store)

	res := r.ResolveSubdomain(context.Background(), "Acme")
	require.True(t, res.OK())
	assert.Equal(t, acme().ID, res.Tenant.ID)

	res = r.ResolveSubdomain(context.Background(), "")
	require.NotNil(t, res.Error)
	assert.Equal(t, tenant.CodeInvalidSubdomain, res.Error.Code)
}

func TestResolver_Admin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStubStore(acme())
	r := tenant.NewResolver(store)

	require.True(t, r.Resolve(ctx, host("acme.example.com")).OK())
	r.Resolve(ctx, host("beta.example.com"))

	stats, err := r.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "beta"}, stats.Keys)

	require.NoError(t, r.Invalidate(ctx, "ACME"))
	stats, err = r.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, stats.Keys)

	require.True(t, r.Resolve(ctx, host("acme.example.com")).OK())
	assert.Equal(t, int32(3), store.lookups.Load())

	require.NoError(t, r.ClearAll(ctx))
	stats, err = r.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)
}

func TestResolver_FromConfig(t *testing.T) {
	t.Parallel()
	store := newStubStore(acme())
	cfg := tenant.Config{
		CacheTTL:      time.Minute,
		LookupTimeout: time.Second,
		DevMode:       true,
		DevQueryParam: "t",
		DevFallback:   "acme",
	}
	r := tenant.NewResolverFromConfig(cfg, store, nil, nil)

	res := r.Resolve(context.Background(), host("localhost:8080"))
	require.True(t, res.OK())
	assert.Equal(t, "acme", res.Tenant.Subdomain)
}

func TestResult_JSON(t *testing.T) {
	t.Parallel()
	store := newStubStore()
	r := tenant.NewResolver(store)

	res := r.Resolve(context.Background(), host("www.example.com"))
	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var body struct {
		Tenant *tenant.Tenant `json:"tenant"`
		Error  struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Nil(t, body.Tenant)
	assert.Equal(t, "INVALID_SUBDOMAIN", body.Error.Code)
	assert.NotEmpty(t, body.Error.Message)
	assert.Contains(t, body.Error.Details, "www.example.com")
	assert.Contains(t, string(raw), `"tenant":null`)
}
