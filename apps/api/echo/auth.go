package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/planner/core"
)

const (
	contextTokenKey = "userToken"
	tokenAudience   = "Planner"
)

var errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

func newJWTConfig(secret string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(secret),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// NewClaims returns the claims of a token issued by issuer to p, valid for exp.
func NewClaims(p core.Principal, issuer string, exp time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    issuer,
			Subject:   p.ID,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(exp).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: p.Username,
		Email:    p.Email,
	}
}

// GenerateToken generates a JWT token string representing the Claims, signed with secret.
func GenerateToken(claims *Claims, secret string) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// contextPrincipal returns who the request is made for, or the zero Principal.
func contextPrincipal(ctx echo.Context) core.Principal {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return core.Principal{}
	}
	return core.Principal{ID: claims.Subject, Username: claims.Username, Email: claims.Email}
}
