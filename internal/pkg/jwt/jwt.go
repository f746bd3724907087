package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Role is the caller's role as carried in the access token.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// CanReview reports whether the role may approve or reject requests.
func (r Role) CanReview() bool {
	return r == RoleManager || r == RoleAdmin
}

var ErrInvalidClaims = errors.New("token claims are missing user_id or role")

// Identity is the verified caller of a request.
type Identity struct {
	UserID string
	Role   Role
}

type Service interface {
	// GenerateAccessToken signs a token in the shape issued by the identity
	// provider. Used by tooling and tests; this service never logs users in.
	GenerateAccessToken(userID string, role Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime time.Duration) *JWTService {
	if accessTokenExpirationTime <= 0 {
		accessTokenExpirationTime = time.Hour
	}
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(userID string, role Role) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpirationTime).Unix()

	claims := map[string]interface{}{
		"user_id": userID,
		"role":    string(role),
		"type":    "access",
		"exp":     expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// IdentityFromClaims reads the caller identity out of verified claims.
func IdentityFromClaims(claims map[string]interface{}) (Identity, error) {
	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || !Role(role).IsValid() {
		return Identity{}, ErrInvalidClaims
	}
	return Identity{UserID: userID, Role: Role(role)}, nil
}
