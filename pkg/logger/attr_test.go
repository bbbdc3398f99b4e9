package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

func TestGroup(t *testing.T) {
	attr := logger.Group("tenant", slog.String("id", "1"), slog.String("subdomain", "acme"))
	require.Equal(t, "tenant", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "subdomain", g[1].Key)
}

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestTenantAttrs(t *testing.T) {
	assert.Equal(t, "acme", logger.Subdomain("acme").Value.String())
	assert.Equal(t, "tenant_id", logger.TenantID("t1").Key)
	assert.True(t, logger.TenantID("").Equal(slog.Attr{}))
	assert.Equal(t, "TENANT_NOT_FOUND", logger.ErrorCode("TENANT_NOT_FOUND").Value.String())
	assert.True(t, logger.RequestID("").Equal(slog.Attr{}))
	assert.Equal(t, "component", logger.Component("tenant.lookup").Key)
	assert.InDelta(t, 1500.0, logger.Duration(1500*time.Millisecond).Value.Float64(), 0.001)
}
