package model

import "time"

// Client is a customer record optionally owned by a manager.
type Client struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null;index"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	ManagerID *uint     `json:"manager_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Manager *User `json:"manager,omitempty" gorm:"foreignKey:ManagerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// OwnedBy reports whether the client is assigned to the user with the given id.
// An unassigned client is owned by nobody.
func (c *Client) OwnedBy(userID uint) bool {
	return c.ManagerID != nil && *c.ManagerID == userID
}
