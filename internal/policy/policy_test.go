package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clientdesk/internal/errors"
	"clientdesk/internal/model"
)

func uintPtr(v uint) *uint { return &v }

func TestCanClient(t *testing.T) {
	manager := Actor{ID: 1, Role: model.RoleManager}
	superManager := Actor{ID: 2, Role: model.RoleSuperManager}
	admin := Actor{ID: 3, Role: model.RoleAdmin}

	own := &model.Client{ID: 10, ManagerID: uintPtr(1)}
	foreign := &model.Client{ID: 11, ManagerID: uintPtr(99)}
	unassigned := &model.Client{ID: 12}

	tests := []struct {
		name     string
		actor    Actor
		op       Operation
		target   *model.Client
		expected bool
	}{
		{"manager lists clients", manager, ClientViewAny, nil, true},
		{"manager creates client", manager, ClientCreate, nil, true},
		{"manager views own client", manager, ClientView, own, true},
		{"manager updates own client", manager, ClientUpdate, own, true},
		{"manager deletes own client", manager, ClientDelete, own, true},
		{"manager views foreign client", manager, ClientView, foreign, false},
		{"manager updates foreign client", manager, ClientUpdate, foreign, false},
		{"manager deletes foreign client", manager, ClientDelete, foreign, false},
		{"manager cannot claim unassigned client", manager, ClientView, unassigned, false},
		{"manager changes manager of own client", manager, ClientChangeManager, own, false},
		{"super manager views foreign client", superManager, ClientView, foreign, true},
		{"super manager deletes unassigned client", superManager, ClientDelete, unassigned, true},
		{"super manager changes manager", superManager, ClientChangeManager, foreign, true},
		{"admin updates foreign client", admin, ClientUpdate, foreign, true},
		{"admin changes manager", admin, ClientChangeManager, unassigned, true},
		{"unknown operation", admin, Operation("client.export"), own, false},
		{"user operation on client policy", admin, UserDelete, own, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanClient(tt.actor, tt.op, tt.target))
		})
	}
}

func TestCanUser(t *testing.T) {
	ops := []Operation{
		UserViewAny, UserView, UserCreate, UserUpdate,
		UserDelete, UserChangePassword, UserChangeManager,
	}
	target := &model.User{ID: 5, Role: model.RoleManager}

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			assert.False(t, CanUser(Actor{ID: 1, Role: model.RoleManager}, op, target))
			assert.False(t, CanUser(Actor{ID: 5, Role: model.RoleManager}, op, target), "self is no exception")
			assert.True(t, CanUser(Actor{ID: 2, Role: model.RoleSuperManager}, op, target))
			assert.True(t, CanUser(Actor{ID: 3, Role: model.RoleAdmin}, op, target))
		})
	}

	assert.False(t, CanUser(Actor{ID: 3, Role: model.RoleAdmin}, ClientView, target))
}

func TestAuthorize(t *testing.T) {
	manager := Actor{ID: 1, Role: model.RoleManager}

	err := AuthorizeClient(manager, ClientView, &model.Client{ManagerID: uintPtr(2)})
	assert.ErrorIs(t, err, errors.ErrForbidden)

	assert.NoError(t, AuthorizeClient(manager, ClientView, &model.Client{ManagerID: uintPtr(1)}))

	err = AuthorizeUser(manager, UserViewAny, nil)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	assert.NoError(t, AuthorizeUser(Actor{ID: 2, Role: model.RoleAdmin}, UserDelete, &model.User{ID: 1}))
}
