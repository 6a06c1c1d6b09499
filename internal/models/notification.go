package models

import "time"

// Notification is a message to a shopper, created when an operator advances one of their orders.
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"column:userid;index"`
	Title     string    `json:"title" gorm:"column:title;not null"`
	Message   string    `json:"message" gorm:"column:message;not null"`
	IsRead    bool      `json:"isRead" gorm:"column:isread"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:createdat"`
}

func (Notification) TableName() string { return "notifications" }
