package auth

import (
	"context"
	"errors"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	apperrors "crmbridge/internal/errors"
	"crmbridge/internal/model"
)

// ContextKey is the echo context key holding the authenticated *Identity.
const ContextKey = "user"

// UserLookup resolves the user a token was issued to.
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// Identity is the authenticated principal attached to a request.
type Identity struct {
	User   *model.User
	Claims *Claims
}

// Middleware returns an echo middleware that authenticates the request from the
// Authorization header. A leading "Bearer " is optional. The token must verify,
// must not be revoked and must belong to an existing active user.
func Middleware(jwtService *JWTService, store TokenStoreInterface, users UserLookup) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return authenticate(c.Request().Context(), jwtService, store, users, auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var parseErr *echojwt.TokenParsingError
			if !errors.As(err, &parseErr) {
				err = apperrors.ErrTokenMissing
			}
			httpErr := apperrors.MapErrorToHTTP(err)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	})
}

func authenticate(ctx context.Context, jwtService *JWTService, store TokenStoreInterface, users UserLookup, header string) (*Identity, error) {
	fields := strings.Fields(header)
	if len(fields) > 0 && strings.EqualFold(fields[0], "bearer") {
		fields = fields[1:]
	}
	token := strings.Join(fields, " ")

	claims, err := jwtService.Verify(token)
	if err != nil {
		return nil, err
	}

	if store != nil {
		revoked, err := store.IsTokenRevoked(ctx, claims.ID)
		if err == nil && revoked {
			return nil, apperrors.ErrTokenMalformed
		}
	}

	user, err := users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTokenMalformed
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrTokenMalformed
	}

	return &Identity{User: user, Claims: claims}, nil
}

// IdentityFromContext returns the identity stored by Middleware.
func IdentityFromContext(c echo.Context) (*Identity, bool) {
	identity, ok := c.Get(ContextKey).(*Identity)
	return identity, ok && identity != nil
}
