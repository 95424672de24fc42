package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workdesk/internal/domain"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

const sessionKey = "auth_session"

// AuthMiddleware validates bearer tokens and stores the decoded session
// context in request locals. Tokens are self-contained; no store lookup
// happens here, handlers re-check the store for privileged operations.
type AuthMiddleware struct {
	codec *TokenCodec
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(codec *TokenCodec) *AuthMiddleware {
	return &AuthMiddleware{codec: codec}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	return m.attach(c, parts[1])
}

// HandleQueryToken authenticates via the token query parameter. The stream
// transport cannot carry an Authorization header.
func (m *AuthMiddleware) HandleQueryToken(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return apperrors.NewUnauthorized("missing token")
	}
	return m.attach(c, token)
}

func (m *AuthMiddleware) attach(c *fiber.Ctx, token string) error {
	sc, err := m.codec.Decode(token)
	if err != nil {
		// Malformed, tampered, and expired tokens all read the same to the
		// client so failures cannot be used as a forgery oracle.
		return apperrors.NewUnauthorized("invalid token")
	}
	c.Locals(sessionKey, sc)
	return c.Next()
}

// SessionFromContext retrieves the decoded session context.
func SessionFromContext(c *fiber.Ctx) (*SessionContext, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	sc, ok := val.(*SessionContext)
	return sc, ok
}

// RequireOrganizationRole ensures the caller's organization role meets the
// minimum level.
func RequireOrganizationRole(min domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if domain.RoleLevel(sc.OrganizationRole) < domain.RoleLevel(min) || domain.RoleLevel(min) == 0 {
			return apperrors.NewForbidden("access denied")
		}
		return c.Next()
	}
}

// RequireUserPrincipal ensures the caller is a user, not an organization
// acting for itself.
func RequireUserPrincipal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc, ok := SessionFromContext(c)
		if !ok || sc.PrincipalType != domain.PrincipalTypeUser {
			return apperrors.NewForbidden("access denied")
		}
		return c.Next()
	}
}
