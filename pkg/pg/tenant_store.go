package pg

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

var functionNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// Querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// TenantStore implements tenant.Store on top of two database functions:
// one returning tenant rows for a subdomain, one activating row-level
// security for the current session.
type TenantStore struct {
	db         Querier
	lookupSQL  string
	contextSQL string
}

// NewTenantStore creates a store calling the functions named in cfg.
// Lookups run on db; context activation always runs on the connection
// pinned by ConnMiddleware, since it must affect that session only.
func NewTenantStore(db Querier, cfg Config) (*TenantStore, error) {
	lookupFn, err := functionIdentifier(cfg.LookupFunction, "lookup_tenant_by_subdomain")
	if err != nil {
		return nil, err
	}
	contextFn, err := functionIdentifier(cfg.ContextFunction, "set_tenant_context")
	if err != nil {
		return nil, err
	}

	return &TenantStore{
		db:         db,
		lookupSQL:  fmt.Sprintf("SELECT id::text, subdomain, name, status, settings FROM %s($1)", lookupFn),
		contextSQL: fmt.Sprintf("SELECT %s($1)", contextFn),
	}, nil
}

// LookupTenantBySubdomain returns every row the lookup function yields, active or not.
func (s *TenantStore) LookupTenantBySubdomain(ctx context.Context, subdomain string) ([]tenant.Tenant, error) {
	rows, err := s.db.Query(ctx, s.lookupSQL, subdomain)
	if err != nil {
		if IsUndefinedFunctionError(err) {
			return nil, fmt.Errorf("tenant lookup function is not installed: %w", err)
		}
		return nil, err
	}

	out, err := pgx.CollectRows(rows, scanTenant)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetTenantContext scopes the pinned session to tenantID.
func (s *TenantStore) SetTenantContext(ctx context.Context, tenantID string) error {
	conn, ok := ConnFromContext(ctx)
	if !ok {
		return ErrNoConnInContext
	}

	id, err := uuid.Parse(tenantID)
	if err != nil {
		return errors.Join(ErrMalformedTenantRow, err)
	}

	_, err = conn.Exec(ctx, s.contextSQL, id.String())
	return err
}

func scanTenant(row pgx.CollectableRow) (tenant.Tenant, error) {
	var (
		t       tenant.Tenant
		rawID   string
		status  string
		name    *string
		setting map[string]any
	)
	if err := row.Scan(&rawID, &t.Subdomain, &name, &status, &setting); err != nil {
		return tenant.Tenant{}, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return tenant.Tenant{}, errors.Join(ErrMalformedTenantRow, err)
	}
	t.ID = id.String()
	t.Status = tenant.Status(status)
	t.Settings = setting
	if name != nil {
		t.Name = *name
	}
	return t, nil
}

func functionIdentifier(name, fallback string) (string, error) {
	if name == "" {
		name = fallback
	}
	if !functionNameRegex.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFunctionName, name)
	}
	return name, nil
}
