package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"clientdesk/internal/model"
)

// dryRunDB builds statements against the MySQL dialect without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:password@tcp(127.0.0.1:3306)/clientdesk?parseTime=True",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestListQuery_Normalize(t *testing.T) {
	q := ListQuery{Page: -3, PerPage: 0, Search: "  ann  "}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPerPage, q.PerPage)
	assert.Equal(t, "ann", q.Search)

	assert.True(t, ListQuery{SortOrder: "DESC"}.Descending())
	assert.False(t, ListQuery{SortOrder: "sideways"}.Descending())
	assert.False(t, ListQuery{}.Descending())
}

func TestClientScopes(t *testing.T) {
	managerID := uint(42)

	tests := []struct {
		name        string
		managerID   *uint
		q           ListQuery
		contains    []string
		notContains []string
		vars        []interface{}
	}{
		{
			name:      "manager portfolio with search and sort",
			managerID: &managerID,
			q:         ListQuery{Search: "Ann", SortBy: "name", SortOrder: "desc", Page: 2},
			contains: []string{
				"manager_id = ?",
				"LOWER(name) LIKE ?",
				"LOWER(email) LIKE ?",
				"ORDER BY `name` DESC",
			},
			vars: []interface{}{uint(42), "%ann%", "%ann%"},
		},
		{
			name:        "privileged actor sees every client",
			q:           ListQuery{SortBy: "email"},
			contains:    []string{"ORDER BY `email`"},
			notContains: []string{"manager_id", "LIKE"},
		},
		{
			name:        "unknown sort column falls back to id",
			managerID:   &managerID,
			q:           ListQuery{SortBy: "password; DROP TABLE clients", SortOrder: "desc"},
			contains:    []string{"manager_id = ?", "ORDER BY `id`"},
			notContains: []string{"DROP", "DESC"},
		},
		{
			name:        "is_active is not a client sort column",
			q:           ListQuery{SortBy: "is_active"},
			contains:    []string{"ORDER BY `id`"},
			notContains: []string{"is_active"},
		},
		{
			name:     "like wildcards in search are escaped",
			q:        ListQuery{Search: "50%_off"},
			contains: []string{"LOWER(name) LIKE ?"},
			vars:     []interface{}{`%50\%\_off%`, `%50\%\_off%`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.q.Normalize()
			var clients []model.Client
			stmt := dryRunDB(t).Model(&model.Client{}).
				Scopes(ownedBy(tt.managerID), search(q.Search), sorted(clientSortColumns, q), paginate(q)).
				Find(&clients).Statement
			sql := stmt.SQL.String()

			for _, fragment := range tt.contains {
				assert.Contains(t, sql, fragment)
			}
			for _, fragment := range tt.notContains {
				assert.NotContains(t, sql, fragment)
			}
			for _, v := range tt.vars {
				assert.Contains(t, stmt.Vars, v)
			}
		})
	}
}

func TestUserScopes_SortByIsActive(t *testing.T) {
	q := ListQuery{SortBy: "is_active", SortOrder: "desc"}.Normalize()
	var users []model.User
	stmt := dryRunDB(t).Model(&model.User{}).
		Scopes(search(q.Search), sorted(userSortColumns, q), paginate(q)).
		Find(&users).Statement

	assert.Contains(t, stmt.SQL.String(), "ORDER BY `is_active` DESC")
	assert.NotContains(t, stmt.SQL.String(), "LIKE")
}
