package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clientdesk/internal/model"
)

type statement struct {
	sql  string
	vars []interface{}
}

// recordStatements captures every statement built on db after it runs.
func recordStatements(t *testing.T, db *gorm.DB) *[]statement {
	t.Helper()
	var got []statement
	record := func(tx *gorm.DB) {
		got = append(got, statement{
			sql:  tx.Statement.SQL.String(),
			vars: append([]interface{}(nil), tx.Statement.Vars...),
		})
	}
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:record_query", record))
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("test:record_update", record))
	require.NoError(t, db.Callback().Delete().After("gorm:delete").Register("test:record_delete", record))
	return &got
}

func TestClientRepository_ReassignManager(t *testing.T) {
	db := dryRunDB(t)
	got := recordStatements(t, db)

	moved, err := NewClientRepository(db).ReassignManager(context.Background(), 5, 9)

	require.NoError(t, err)
	assert.Zero(t, moved)
	require.Len(t, *got, 1)
	stmt := (*got)[0]
	assert.Contains(t, stmt.sql, "UPDATE `clients` SET `manager_id`=?")
	assert.Contains(t, stmt.sql, "WHERE manager_id = ?")
	require.NotEmpty(t, stmt.vars)
	assert.Equal(t, uint(9), stmt.vars[0])
	assert.Equal(t, uint(5), stmt.vars[len(stmt.vars)-1])
}

func TestEmailTaken(t *testing.T) {
	tests := []struct {
		name        string
		run         func(db *gorm.DB) (bool, error)
		table       string
		contains    []string
		notContains []string
		vars        []interface{}
	}{
		{
			name: "client create checks every row",
			run: func(db *gorm.DB) (bool, error) {
				return NewClientRepository(db).EmailTaken(context.Background(), "a@example.com", 0)
			},
			table:       "`clients`",
			contains:    []string{"email = ?"},
			notContains: []string{"id <>"},
			vars:        []interface{}{"a@example.com"},
		},
		{
			name: "client update excludes itself",
			run: func(db *gorm.DB) (bool, error) {
				return NewClientRepository(db).EmailTaken(context.Background(), "a@example.com", 10)
			},
			table:    "`clients`",
			contains: []string{"email = ?", "id <> ?"},
			vars:     []interface{}{"a@example.com", uint(10)},
		},
		{
			name: "user create checks every row",
			run: func(db *gorm.DB) (bool, error) {
				return NewUserRepository(db).EmailTaken(context.Background(), "m@example.com", 0)
			},
			table:       "`users`",
			contains:    []string{"email = ?"},
			notContains: []string{"id <>"},
			vars:        []interface{}{"m@example.com"},
		},
		{
			name: "user update excludes itself",
			run: func(db *gorm.DB) (bool, error) {
				return NewUserRepository(db).EmailTaken(context.Background(), "m@example.com", 4)
			},
			table:    "`users`",
			contains: []string{"email = ?", "id <> ?"},
			vars:     []interface{}{"m@example.com", uint(4)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := dryRunDB(t)
			got := recordStatements(t, db)

			taken, err := tt.run(db)

			require.NoError(t, err)
			assert.False(t, taken)
			require.Len(t, *got, 1)
			stmt := (*got)[0]
			assert.Contains(t, stmt.sql, "SELECT count(*) FROM "+tt.table)
			for _, fragment := range tt.contains {
				assert.Contains(t, stmt.sql, fragment)
			}
			for _, fragment := range tt.notContains {
				assert.NotContains(t, stmt.sql, fragment)
			}
			assert.Equal(t, tt.vars, stmt.vars)
		})
	}
}

func TestDelete(t *testing.T) {
	t.Run("client", func(t *testing.T) {
		db := dryRunDB(t)
		got := recordStatements(t, db)

		err := NewClientRepository(db).Delete(context.Background(), 10)

		// nothing executes in dry-run mode, so no row is affected
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		require.Len(t, *got, 1)
		assert.Contains(t, (*got)[0].sql, "DELETE FROM `clients` WHERE `clients`.`id` = ?")
		assert.Equal(t, []interface{}{uint(10)}, (*got)[0].vars)
	})

	t.Run("user", func(t *testing.T) {
		db := dryRunDB(t)
		got := recordStatements(t, db)

		err := NewUserRepository(db).Delete(context.Background(), 5)

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		require.Len(t, *got, 1)
		assert.Contains(t, (*got)[0].sql, "DELETE FROM `users` WHERE `users`.`id` = ?")
		assert.Equal(t, []interface{}{uint(5)}, (*got)[0].vars)
	})
}

func TestUpdate_NeverInserts(t *testing.T) {
	t.Run("client", func(t *testing.T) {
		db := dryRunDB(t)
		got := recordStatements(t, db)
		managerID := uint(7)

		err := NewClientRepository(db).Update(context.Background(), &model.Client{
			ID: 10, Name: "Acme", Email: "acme@example.com", ManagerID: &managerID,
		})

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		require.Len(t, *got, 1)
		stmt := (*got)[0]
		assert.Contains(t, stmt.sql, "UPDATE `clients` SET")
		for _, column := range []string{"`name`=?", "`email`=?", "`manager_id`=?", "`updated_at`=?"} {
			assert.Contains(t, stmt.sql, column)
		}
		assert.NotContains(t, stmt.sql, "INSERT")
		assert.NotContains(t, stmt.sql, "`created_at`")
		assert.Equal(t, uint(10), stmt.vars[len(stmt.vars)-1])
	})

	t.Run("user writes false and empty values", func(t *testing.T) {
		db := dryRunDB(t)
		got := recordStatements(t, db)

		err := NewUserRepository(db).Update(context.Background(), &model.User{
			ID: 4, Name: "Jane", Email: "jane@example.com", Role: model.RoleManager, IsActive: false,
		})

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		require.Len(t, *got, 1)
		stmt := (*got)[0]
		for _, column := range []string{"`name`=?", "`email`=?", "`password`=?", "`role`=?", "`is_active`=?"} {
			assert.Contains(t, stmt.sql, column)
		}
		assert.NotContains(t, stmt.sql, "INSERT")
		assert.Contains(t, stmt.vars, false)
		assert.Equal(t, uint(4), stmt.vars[len(stmt.vars)-1])
	})
}

func TestUserRepository_ClientsSharesHandle(t *testing.T) {
	tx := dryRunDB(t)

	clients, ok := (&userRepository{db: tx}).Clients().(*clientRepository)

	require.True(t, ok)
	assert.Same(t, tx, clients.db)

	// statements from the derived repository land on the same handle
	got := recordStatements(t, tx)
	_, err := clients.ReassignManager(context.Background(), 5, 9)
	require.NoError(t, err)
	assert.Len(t, *got, 1)
}
