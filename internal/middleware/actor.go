package middleware

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"clientdesk/internal/auth"
	"clientdesk/internal/errors"
	"clientdesk/internal/model"
	"clientdesk/internal/policy"
)

const (
	tokenKey = "user"
	actorKey = "actor"
	userKey  = "current_user"
)

// UserResolver loads the stored user behind a token. Resolve may serve a
// cached copy; Reload always reads storage.
type UserResolver interface {
	Resolve(ctx context.Context, id uint) (*model.User, error)
	Reload(ctx context.Context, id uint) (*model.User, error)
}

// JWT validates the bearer token and stores it under the "user" key.
func JWT(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    secret,
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		TokenLookup:   "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:    tokenKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return auth.NewClaims()
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errors.ErrUnauthenticated
		},
	})
}

// Actor resolves the authenticated user from storage and exposes it as a
// policy.Actor. The stored role wins over the role inside the token. Reads
// may use the cached user; writes always check the stored row.
func Actor(users UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(tokenKey).(*jwt.Token)
			if !ok {
				return errors.ErrUnauthenticated
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok || claims.UserID == 0 {
				return errors.ErrUnauthenticated
			}

			resolve := users.Resolve
			if !safeMethod(c.Request().Method) {
				resolve = users.Reload
			}
			user, err := resolve(c.Request().Context(), claims.UserID)
			if err != nil {
				if stderrors.Is(err, errors.ErrManagerNotFound) {
					return errors.ErrUnauthenticated
				}
				return err
			}

			c.Set(userKey, user)
			c.Set(actorKey, policy.ActorFromUser(user))
			return next(c)
		}
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// ActorFrom returns the actor stored by Actor.
func ActorFrom(c echo.Context) (policy.Actor, error) {
	actor, ok := c.Get(actorKey).(policy.Actor)
	if !ok {
		return policy.Actor{}, errors.ErrUnauthenticated
	}
	return actor, nil
}

// CurrentUser returns the user stored by Actor.
func CurrentUser(c echo.Context) (*model.User, error) {
	user, ok := c.Get(userKey).(*model.User)
	if !ok {
		return nil, errors.ErrUnauthenticated
	}
	return user, nil
}

// SetActor stores an actor directly. Handler tests use it to skip token checks.
func SetActor(c echo.Context, actor policy.Actor) {
	c.Set(actorKey, actor)
}
