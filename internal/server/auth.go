package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ownerKey = "owner"

// ErrMissingSecret is returned when token verification is requested without
// a configured signing key.
var ErrMissingSecret = errors.New("jwt secret not configured")

var errNoSubject = errors.New("token has no subject")

// Claims are the bearer-token claims. Subject is the owner id every path
// operation is scoped to.
type Claims struct {
	jwt.RegisteredClaims
}

// Authenticator issues and verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	issuer string
}

// NewAuthenticator creates an Authenticator. issuer may be empty, in which
// case tokens of any issuer are accepted.
func NewAuthenticator(secret, issuer string) (*Authenticator, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Authenticator{secret: []byte(secret), issuer: issuer}, nil
}

// Issue signs a token for ownerID valid for ttl.
func (a *Authenticator) Issue(ownerID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   ownerID,
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse verifies token and returns its owner id.
func (a *Authenticator) Parse(token string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errNoSubject
	}
	return claims.Subject, nil
}

// middleware rejects requests without a valid bearer token and stores the
// owner id on the context.
func (a *Authenticator) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		owner, err := a.Parse(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

func owner(c *gin.Context) string {
	return c.GetString(ownerKey)
}
