package tenant_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func TestCode_HTTPStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, tenant.CodeInvalidSubdomain.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, tenant.CodeInvalidSubdomainFormat.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, tenant.CodeTenantNotFound.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, tenant.CodeResolutionError.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, tenant.Code("SOMETHING_ELSE").HTTPStatus())
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	res := tenant.NewResolver(newStubStore()).ResolveSubdomain(t.Context(), "-bad")
	wrapped := fmt.Errorf("handler: %w", res.Error)

	code, ok := tenant.ErrorCode(wrapped)
	assert.True(t, ok)
	assert.Equal(t, tenant.CodeInvalidSubdomainFormat, code)
	assert.ErrorIs(t, wrapped, tenant.ErrSubdomainFormat)
	assert.Contains(t, res.Error.Error(), "INVALID_SUBDOMAIN_FORMAT")

	_, ok = tenant.ErrorCode(errors.New("plain"))
	assert.False(t, ok)
}
