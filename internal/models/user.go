package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an employee account in the system
type User struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	Username   string     `json:"username" gorm:"unique;not null"`
	Password   string     `json:"-" gorm:"not null"`
	FullName   string     `json:"fullName" gorm:"column:full_name"`
	Role       string     `json:"role" gorm:"default:'operator'"`
	LastSeenAt *time.Time `json:"lastSeenAt" gorm:"column:last_seen_at"`
	gorm.Model
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
