package driven

import (
	"time"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
)

// AuthAdapter issues and validates actor tokens. Tokens carry the acting
// user, their company (empty for system operators) and their role.
type AuthAdapter interface {
	// GenerateToken creates a signed token for the given actor.
	GenerateToken(userID, companyID string, role domain.Role, ttl time.Duration) (string, error)

	// ParseToken validates a token and returns its claims.
	// Returns domain.ErrTokenInvalid for malformed or expired tokens.
	ParseToken(token string) (*domain.TokenClaims, error)
}
