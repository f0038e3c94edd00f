package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/user"
)

const contextUserKey = "user"

// appJWTConfig is the default JWT auth middleware config.
func appJWTConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(core.Conf.GetString("secretKey")),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

func Authenticate(ctx context.Context, email, pwd string, svc *user.Service) (*Claims, error) {
	if usr, err := svc.GetByEmail(ctx, email); err == nil {
		if err := usr.CheckPassword(pwd); err == nil {
			now := time.Now()
			claims := &Claims{
				StandardClaims: jwt.StandardClaims{
					Issuer:    core.Conf.GetString("appName"),
					Subject:   usr.UID,
					ExpiresAt: now.Add(core.Conf.GetDuration("jwtExpirationDelta")).Unix(),
					IssuedAt:  now.Unix(),
				},
				Role:        usr.Role,
				DisplayName: usr.DisplayName,
			}
			return claims, nil
		}
	}
	return nil, authenticationFailedErr
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	cfg := appJWTConfig()
	method := jwt.GetSigningMethod(cfg.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(cfg.SigningKey.([]byte))
	if err != nil {
		return "", tokenSigningError
	}
	return ss, nil
}

func getContextClaims(c echo.Context) (*Claims, error) {
	if token, ok := c.Get(appJWTConfig().ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return claims, nil
		}
	}
	return nil, unauthorizedErr
}

func getContextUser(c echo.Context, svc *user.Service) (user.User, error) {
	if usr, ok := c.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(c)
	if err != nil {
		return user.User{}, err
	}

	usr, err := svc.GetByUID(c.Request().Context(), claims.Subject)
	if err != nil {
		return user.User{}, unauthorizedErr
	}
	c.Set(contextUserKey, usr)
	return usr, nil
}

// capabilityMiddleware rejects requests whose token's role lacks the
// capability; the service layer re-checks with the full user record.
func capabilityMiddleware(capability user.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := getContextClaims(c)
			if err != nil {
				return err
			}
			if user.Can(claims.Role, capability) {
				return next(c)
			}
			return forbiddenHTTPErr
		}
	}
}

func staffMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := getContextClaims(c)
			if err != nil {
				return err
			}
			if user.IsStaff(claims.Role) {
				return next(c)
			}
			return forbiddenHTTPErr
		}
	}
}
