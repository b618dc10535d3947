package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole(t *testing.T) {
	tests := []struct {
		role            Role
		valid           bool
		outranksManager bool
		canSucceed      bool
	}{
		{RoleManager, true, false, true},
		{RoleSuperManager, true, true, true},
		{RoleAdmin, true, true, false},
		{Role("superadmin"), false, false, false},
		{Role(""), false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.role.Valid())
			assert.Equal(t, tt.outranksManager, tt.role.OutranksManager())
			assert.Equal(t, tt.canSucceed, tt.role.CanSucceed())
		})
	}
}

func TestClientOwnedBy(t *testing.T) {
	id := uint(7)
	assert.True(t, (&Client{ManagerID: &id}).OwnedBy(7))
	assert.False(t, (&Client{ManagerID: &id}).OwnedBy(8))
	assert.False(t, (&Client{}).OwnedBy(0), "an unassigned client belongs to nobody")
}
