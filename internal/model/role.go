package model

// Role is the privilege tier of a User.
type Role string

const (
	RoleManager      Role = "manager"
	RoleSuperManager Role = "super_manager"
	RoleAdmin        Role = "admin"
)

// Roles lists every accepted role value.
var Roles = []Role{RoleManager, RoleSuperManager, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleSuperManager, RoleAdmin:
		return true
	}
	return false
}

// OutranksManager reports whether r sits above the manager tier.
// super_manager and admin are equivalent for every permission check.
func (r Role) OutranksManager() bool {
	return r == RoleSuperManager || r == RoleAdmin
}

// CanSucceed reports whether a user with role r may take over a deleted
// manager's clients. Admins are not accepted as successors.
func (r Role) CanSucceed() bool {
	return r == RoleManager || r == RoleSuperManager
}

func (r Role) String() string {
	return string(r)
}
