package models

import (
	"gorm.io/gorm"
)

// Notification is a durably recorded push notification for one user, kept so
// the user can retrieve it after reconnecting
type Notification struct {
	ID       string `json:"id" gorm:"primaryKey"`
	UserID   string `json:"userId" gorm:"column:user_id;not null;index"`
	Title    string `json:"title" gorm:"not null"`
	Message  string `json:"message"`
	Metadata string `json:"metadata"`
	Read     bool   `json:"read" gorm:"default:false"`
	gorm.Model
}

// TableName specifies the table name for Notification Model
func (Notification) TableName() string {
	return "notifications"
}
