package domain

// Role is the coarse actor role carried in actor tokens. Enforcement policy
// lives outside this service; the role is only passed through for audit and
// for the thin HTTP guards.
type Role string

const (
	RoleSystemAdmin Role = "system_admin"
	RoleTenantAdmin Role = "tenant_admin"
	RoleTenantUser  Role = "tenant_user"
)

// TokenClaims are the claims carried by an actor token.
type TokenClaims struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      Role   `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
