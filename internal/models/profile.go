package models

import "time"

// Role is the access level stored on a profile.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Profile is the remote record of a signed-up shopper. Cart and Wishlist are the
// profile snapshot, a mirror of the shopper's lists that outlives the session.
type Profile struct {
	ID        string     `json:"id" gorm:"primaryKey;column:id;type:varchar(36)"`
	Username  string     `json:"username" gorm:"column:username;uniqueIndex;not null"`
	Email     string     `json:"email,omitempty" gorm:"column:email"`
	Role      Role       `json:"role" gorm:"column:role;default:USER"`
	IsBanned  bool       `json:"isBanned" gorm:"column:isbanned"`
	Cart      []CartItem `json:"cart_data" gorm:"column:cart_data;serializer:json"`
	Wishlist  []string   `json:"wishlist_data" gorm:"column:wishlist_data;serializer:json"`
	CreatedAt time.Time  `json:"createdAt" gorm:"column:createdat"`
}

// TableName keeps the collection name used by the hosted store.
func (Profile) TableName() string { return "profiles" }

// ProfilePatch is a partial profile update. Nil fields are left untouched.
type ProfilePatch struct {
	Cart     *[]CartItem
	Wishlist *[]string
	Role     *Role
}

// IsEmpty reports whether the patch changes nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.Cart == nil && p.Wishlist == nil && p.Role == nil
}
