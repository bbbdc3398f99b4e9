package tenant_test

import (
	"context"
	"testing"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func BenchmarkExtractor(b *testing.B) {
	ex := tenant.NewExtractor(false)
	req := tenant.Request{Host: "acme.example.com:443"}

	for b.Loop() {
		if _, ok := ex.Extract(req); !ok {
			b.Fatal("expected a candidate")
		}
	}
}

func BenchmarkValidateSubdomain(b *testing.B) {
	for b.Loop() {
		if !tenant.ValidSubdomain("acme-corp") {
			b.Fatal("expected valid")
		}
	}
}

func BenchmarkResolveCached(b *testing.B) {
	r := tenant.NewResolver(newStubStore(acme()))
	ctx := context.Background()
	req := tenant.Request{Host: "acme.example.com"}
	if !r.Resolve(ctx, req).OK() {
		b.Fatal("warm-up failed")
	}

	b.ReportAllocs()
	for b.Loop() {
		if !r.Resolve(ctx, req).OK() {
			b.Fatal("resolution failed")
		}
	}
}

func BenchmarkResolveCachedParallel(b *testing.B) {
	r := tenant.NewResolver(newStubStore(acme()), tenant.WithCache(tenant.NewMemoryCache(tenant.DefaultCacheTTL)))
	ctx := context.Background()
	req := tenant.Request{Host: "acme.example.com"}

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			r.Resolve(ctx, req)
		}
	})
}
