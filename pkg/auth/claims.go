package auth

import (
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting an admin JWT.
type AccessTokenPayload struct {
	AdminID  uuid.UUID
	Username string
	Role     enums.AdminRole
	JTI      string
}

// AccessTokenClaims is the typed JWT handed to the admin console.
type AccessTokenClaims struct {
	AdminID  uuid.UUID       `json:"admin_id"`
	Username string          `json:"username"`
	Role     enums.AdminRole `json:"role"`
	jwt.RegisteredClaims
}
