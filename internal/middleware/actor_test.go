package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientdesk/internal/auth"
	"clientdesk/internal/errors"
	"clientdesk/internal/model"
	"clientdesk/internal/policy"
)

type stubResolver map[uint]*model.User

func (s stubResolver) Resolve(_ context.Context, id uint) (*model.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, errors.ErrManagerNotFound
}

func (s stubResolver) Reload(ctx context.Context, id uint) (*model.User, error) {
	return s.Resolve(ctx, id)
}

// staleResolver serves a cached copy of a user that storage no longer has.
type staleResolver struct {
	cached  *model.User
	reloads int
}

func (s *staleResolver) Resolve(context.Context, uint) (*model.User, error) {
	return s.cached, nil
}

func (s *staleResolver) Reload(context.Context, uint) (*model.User, error) {
	s.reloads++
	return nil, errors.ErrManagerNotFound
}

func run(t *testing.T, header string, users UserResolver) (policy.Actor, error) {
	t.Helper()
	return runMethod(t, http.MethodGet, header, users)
}

func runMethod(t *testing.T, method, header string, users UserResolver) (policy.Actor, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got policy.Actor
	h := JWT([]byte("secret"))(Actor(users)(func(c echo.Context) error {
		var err error
		got, err = ActorFrom(c)
		return err
	}))
	return got, h(c)
}

func TestActor(t *testing.T) {
	jwtService := auth.NewJWTService("secret")
	token, err := jwtService.GenerateAccessToken(&model.User{ID: 4, Role: model.RoleAdmin})
	require.NoError(t, err)

	t.Run("stored role wins over token role", func(t *testing.T) {
		actor, err := run(t, "Bearer "+token, stubResolver{4: {ID: 4, Role: model.RoleManager}})
		require.NoError(t, err)
		assert.Equal(t, policy.Actor{ID: 4, Role: model.RoleManager}, actor)
	})

	t.Run("deleted user", func(t *testing.T) {
		_, err := run(t, "Bearer "+token, stubResolver{})
		assert.ErrorIs(t, err, errors.ErrUnauthenticated)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := run(t, "", stubResolver{})
		assert.ErrorIs(t, err, errors.ErrUnauthenticated)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other, err := auth.NewJWTService("other").GenerateAccessToken(&model.User{ID: 4})
		require.NoError(t, err)
		_, err = run(t, "Bearer "+other, stubResolver{4: {ID: 4}})
		assert.ErrorIs(t, err, errors.ErrUnauthenticated)
	})
}

func TestActor_WritesBypassCachedUser(t *testing.T) {
	token, err := auth.NewJWTService("secret").GenerateAccessToken(&model.User{ID: 4, Role: model.RoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		method      string
		wantErr     error
		wantReloads int
	}{
		{method: http.MethodGet},
		{method: http.MethodHead},
		{method: http.MethodPost, wantErr: errors.ErrUnauthenticated, wantReloads: 1},
		{method: http.MethodPut, wantErr: errors.ErrUnauthenticated, wantReloads: 1},
		{method: http.MethodDelete, wantErr: errors.ErrUnauthenticated, wantReloads: 1},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			users := &staleResolver{cached: &model.User{ID: 4, Role: model.RoleAdmin}}

			_, err := runMethod(t, tt.method, "Bearer "+token, users)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantReloads, users.reloads)
		})
	}
}

func TestActorFrom_Missing(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := ActorFrom(c)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)
}
