package models

import "time"

// Account is a credential record of the auth collaborator. The shopper-facing
// data lives on Profile, keyed by the same ID.
type Account struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Username  string    `json:"username" gorm:"type:varchar(100)"` // sign-up metadata, may be empty
	Password  string    `json:"-" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Account) TableName() string { return "accounts" }
