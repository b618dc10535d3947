package model

import "time"

// User is a staff account: a manager, super manager or admin.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"column:password;size:255;not null"` // Never expose in JSON
	Role         Role      `json:"role" gorm:"size:32;not null;default:'manager';index"`
	IsActive     bool      `json:"is_active" gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsManager reports whether the user sits on the lowest tier.
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

// ManagerOption is the trimmed row used by manager pick-lists.
type ManagerOption struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
