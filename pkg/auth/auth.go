// Package auth binds the tenant context of a request from its JWT
// bearer token.
package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apierr "github.com/aiverse/datafabric/pkg/api/types/errors"
	"github.com/aiverse/datafabric/pkg/domain"
)

const tenantContextKey = "datafabric.tenant"

// Claims are the token claims this domain requires.
type Claims struct {
	OrganizationID string `json:"organization_id"`
	WorkspaceID    string `json:"workspace_id"`
	UserID         string `json:"user_id"`
	jwt.RegisteredClaims
}

// ParseToken validates a signed token and extracts the tenant context.
func ParseToken(token string, key []byte) (domain.TenantContext, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(
		token, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return domain.TenantContext{}, err
	}
	if !parsed.Valid {
		return domain.TenantContext{}, fmt.Errorf("invalid token")
	}

	organizationID, err := uuid.Parse(claims.OrganizationID)
	if err != nil {
		return domain.TenantContext{}, fmt.Errorf("claim organization_id: %w", err)
	}
	workspaceID, err := uuid.Parse(claims.WorkspaceID)
	if err != nil {
		return domain.TenantContext{}, fmt.Errorf("claim workspace_id: %w", err)
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return domain.TenantContext{}, fmt.Errorf("claim user_id: %w", err)
	}

	return domain.TenantContext{
		OrganizationID: organizationID,
		WorkspaceID:    workspaceID,
		UserID:         userID,
	}, nil
}

// NewToken signs a token for a tenant. Used by tests and local tooling.
func NewToken(tenant domain.TenantContext, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		OrganizationID: tenant.OrganizationID.String(),
		WorkspaceID:    tenant.WorkspaceID.String(),
		UserID:         tenant.UserID.String(),
	})
	return token.SignedString(key)
}

// Middleware rejects requests without a valid bearer token and stores
// the tenant context on the echo context for Tenant to read.
func Middleware(key []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				return apierr.Unauthorized("bearer token is required")
			}
			tenant, err := ParseToken(token, key)
			if err != nil {
				return apierr.Unauthorized("invalid bearer token")
			}
			c.Set(tenantContextKey, tenant)
			return next(c)
		}
	}
}

// Tenant reads the tenant context Middleware stored on the request.
func Tenant(c echo.Context) (domain.TenantContext, bool) {
	tenant, ok := c.Get(tenantContextKey).(domain.TenantContext)
	return tenant, ok
}
