package models

import (
	"gorm.io/gorm"
)

// ChatMessage is one persisted chat message. Direct messages carry a receiver
// id; broadcast messages leave it empty.
type ChatMessage struct {
	ID         string `json:"id" gorm:"primaryKey"`
	SenderID   string `json:"senderId" gorm:"column:sender_id;not null;index"`
	SenderName string `json:"senderName" gorm:"column:sender_name"`
	ReceiverID string `json:"receiverId" gorm:"column:receiver_id;index"`
	Body       string `json:"body" gorm:"not null"`
	gorm.Model
}

// TableName specifies the table name for ChatMessage Model
func (ChatMessage) TableName() string {
	return "chat_messages"
}
