// Package policy decides whether an actor may perform an operation on a
// client or a staff user. Every decision is a pure function of the actor and
// the target; handlers and services call Authorize before touching storage.
package policy

import (
	"clientdesk/internal/errors"
	"clientdesk/internal/metrics"
	"clientdesk/internal/model"
)

// Operation names an authorizable action.
type Operation string

const (
	ClientViewAny       Operation = "client.view_any"
	ClientView          Operation = "client.view"
	ClientCreate        Operation = "client.create"
	ClientUpdate        Operation = "client.update"
	ClientDelete        Operation = "client.delete"
	ClientChangeManager Operation = "client.change_manager"

	UserViewAny        Operation = "user.view_any"
	UserView           Operation = "user.view"
	UserCreate         Operation = "user.create"
	UserUpdate         Operation = "user.update"
	UserDelete         Operation = "user.delete"
	UserChangePassword Operation = "user.change_password"
	UserChangeManager  Operation = "user.change_manager"
)

// Actor is the authenticated user performing a request.
type Actor struct {
	ID   uint
	Role model.Role
}

// ActorFromUser builds an Actor from a stored user.
func ActorFromUser(u *model.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// OutranksManager reports whether the actor holds a role above manager.
func (a Actor) OutranksManager() bool {
	return a.Role.OutranksManager()
}

// CanClient decides a client operation. target may be nil for ClientViewAny
// and ClientCreate.
func CanClient(actor Actor, op Operation, target *model.Client) bool {
	switch op {
	case ClientViewAny, ClientCreate:
		return true
	case ClientView, ClientUpdate, ClientDelete:
		if actor.OutranksManager() {
			return true
		}
		return actor.Role == model.RoleManager && target != nil && target.OwnedBy(actor.ID)
	case ClientChangeManager:
		return actor.OutranksManager()
	}
	return false
}

// CanUser decides an operation on staff users. The target never changes the
// outcome: only actors above manager may touch staff records.
func CanUser(actor Actor, op Operation, _ *model.User) bool {
	switch op {
	case UserViewAny, UserView, UserCreate, UserUpdate, UserDelete, UserChangePassword, UserChangeManager:
		return actor.OutranksManager()
	}
	return false
}

// AuthorizeClient returns errors.ErrForbidden when CanClient denies.
func AuthorizeClient(actor Actor, op Operation, target *model.Client) error {
	if !CanClient(actor, op, target) {
		denied(op)
		return errors.ErrForbidden
	}
	return nil
}

// AuthorizeUser returns errors.ErrForbidden when CanUser denies.
func AuthorizeUser(actor Actor, op Operation, target *model.User) error {
	if !CanUser(actor, op, target) {
		denied(op)
		return errors.ErrForbidden
	}
	return nil
}

func denied(op Operation) {
	metrics.AuthorizationDenied.WithLabelValues(string(op)).Inc()
}
