package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPerPage is the page size used when ListQuery.PerPage is not set.
const DefaultPerPage = 15

var (
	clientSortColumns = map[string]struct{}{"id": {}, "name": {}, "email": {}}
	userSortColumns   = map[string]struct{}{"id": {}, "name": {}, "email": {}, "is_active": {}}
)

// ListQuery carries the search, sort and paging options of a listing.
type ListQuery struct {
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// Normalize clamps paging values to usable defaults.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Descending reports whether the requested order is descending.
func (q ListQuery) Descending() bool {
	return strings.EqualFold(strings.TrimSpace(q.SortOrder), "desc")
}

// ownedBy restricts clients to a single manager when managerID is set.
func ownedBy(managerID *uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if managerID == nil {
			return db
		}
		return db.Where("manager_id = ?", *managerID)
	}
}

// search matches term as a case-insensitive substring of name or email.
func search(term string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		return db.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", pattern, pattern)
	}
}

// sorted orders by an allow-listed column. Anything else falls back to id ascending.
func sorted(allowed map[string]struct{}, q ListQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column := strings.ToLower(strings.TrimSpace(q.SortBy))
		if _, ok := allowed[column]; !ok {
			return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
		}
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: q.Descending()})
		if column != "id" {
			// stable paging across equal values
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
		}
		return db
	}
}

func paginate(q ListQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((q.Page - 1) * q.PerPage).Limit(q.PerPage)
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
