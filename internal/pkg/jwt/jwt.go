package jwt

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	tokenTypeAccess = "access"
	tokenTypeSSE    = "sse"

	// sseTokenExpiration bounds how long an EventSource URL stays usable.
	sseTokenExpiration = 5 * time.Minute
)

var ErrInvalidClaims = errors.New("token claims are missing or malformed")

// Claims are the identity fields carried by an access token.
type Claims struct {
	UserID   string
	Username string
	Role     user.Role
}

type Service interface {
	GenerateAccessToken(userID, username string, role user.Role) (token string, expiresAt int64, err error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpiration time.Duration) Service {
	return &JWTService{
		accessTokenExpiration: accessTokenExpiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(userID, username string, role user.Role) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		"user_id":  userID,
		"username": username,
		"role":     string(role),
		"type":     tokenTypeAccess,
		"exp":      expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// GenerateSSEToken issues a short-lived token for the event stream, which
// browsers can only authenticate through the query string.
func (j *JWTService) GenerateSSEToken(userID string) (token string, expiresIn int, err error) {
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    tokenTypeSSE,
		"exp":     time.Now().Add(sseTokenExpiration).Unix(),
	})
	if err != nil {
		return "", 0, err
	}
	return tokenString, int(sseTokenExpiration.Seconds()), nil
}

// ValidateSSEToken returns the user of a token from GenerateSSEToken.
// Access tokens are rejected.
func (j *JWTService) ValidateSSEToken(tokenString string) (userID string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != tokenTypeSSE {
		return "", ErrInvalidClaims
	}
	userIDVal, ok := token.Get("user_id")
	if !ok {
		return "", ErrInvalidClaims
	}
	userID, ok = userIDVal.(string)
	if !ok || userID == "" {
		return "", ErrInvalidClaims
	}
	return userID, nil
}

// ClaimsFromMap extracts access-token claims as produced by jwtauth.FromContext.
func ClaimsFromMap(m map[string]interface{}) (Claims, error) {
	if t, _ := m["type"].(string); t != tokenTypeAccess {
		return Claims{}, ErrInvalidClaims
	}
	userID, _ := m["user_id"].(string)
	role, _ := m["role"].(string)
	if userID == "" || !user.Role(role).Valid() {
		return Claims{}, ErrInvalidClaims
	}
	username, _ := m["username"].(string)
	return Claims{
		UserID:   userID,
		Username: username,
		Role:     user.Role(role),
	}, nil
}
