package models

import "github.com/golang-jwt/jwt/v5"

// AdminRole values accepted by the admin surface.
const (
	RoleSuperAdmin = "SUPERADMIN"
	RoleAdmin      = "ADMIN"
)

// JWTClaims are the registered plus custom claims carried by admin
// access tokens. Tokens are issued by the identity service; this API
// only validates them.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
