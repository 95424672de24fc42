package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/workdesk/internal/domain"
)

// Codec failure classes. Callers surface all three token errors uniformly as
// "unauthorized"; the distinction exists for logging only.
var (
	ErrMissingSecret    = errors.New("auth: signing secret not configured")
	ErrTokenMalformed   = errors.New("auth: token malformed")
	ErrInvalidSignature = errors.New("auth: token signature invalid")
	ErrTokenExpired     = errors.New("auth: token expired")
)

// DefaultSessionTTL applies when no TTL is configured. There is no refresh
// flow; every switch operation re-mints a full-TTL token.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionContext is the single canonical token payload. Every endpoint that
// issues a token produces a value of this one schema; no handler merges extra
// fields ad hoc.
type SessionContext struct {
	PrincipalID      string                 `json:"principal_id"`
	PrincipalType    domain.PrincipalType   `json:"principal_type"`
	OrganizationID   string                 `json:"organization_id"`
	OrganizationRole domain.Role            `json:"organization_role,omitempty"`
	DepartmentID     *string                `json:"department_id,omitempty"`
	DepartmentRole   domain.Role            `json:"department_role,omitempty"`
	ProjectID        *string                `json:"project_id,omitempty"`
	ProjectRole      domain.Role            `json:"project_role,omitempty"`
	DepartmentRoles  map[string]domain.Role `json:"department_roles,omitempty"`
	ProjectRoles     map[string]domain.Role `json:"project_roles,omitempty"`
}

// Claims wraps a SessionContext with registered JWT claims.
type Claims struct {
	SessionContext
	jwt.RegisteredClaims
}

// TokenCodec issues and validates signed session-context tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec builds a codec. The signing secret is mandatory; a missing
// secret is a configuration fault, not a fallback to unsigned tokens.
func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the configured session lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Encode serializes and signs the session context.
func (c *TokenCodec) Encode(sc SessionContext) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(c.ttl)
	claims := &Claims{
		SessionContext: sc,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sc.PrincipalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Decode verifies signature and expiry and returns the embedded session
// context. Decode never judges whether the context is authorized for
// anything; that is the evaluator's job.
func (c *TokenCodec) Decode(tokenStr string) (*SessionContext, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidSignature
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	return &claims.SessionContext, nil
}
