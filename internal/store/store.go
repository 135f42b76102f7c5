package store

import (
	"encoding/json"
	"log"
	"time"

	"mill-ops-api/internal/database"
	"mill-ops-api/internal/models"
	"mill-ops-api/internal/realtime"

	"github.com/google/uuid"
)

// Store persists realtime side effects: chat history, notification records
// and last-seen timestamps. Every method is invoked fire-and-forget from the
// realtime core, so failures are logged and never propagated.
type Store struct{}

// New creates a store backed by the process database.
func New() *Store {
	return &Store{}
}

// SaveMessage implements realtime.MessageStore.
func (s *Store) SaveMessage(msg realtime.InboundMessage) {
	rec := models.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   msg.Sender,
		SenderName: msg.SenderName,
		ReceiverID: msg.Receiver,
		Body:       msg.Body,
	}
	if err := database.GetDB().Create(&rec).Error; err != nil {
		log.Printf("store: save chat message: %v", err)
	}
}

// RecordNotification implements realtime.NotificationRecorder.
func (s *Store) RecordNotification(identity string, n realtime.Notification) {
	metadata := ""
	if len(n.Metadata) > 0 {
		if data, err := json.Marshal(n.Metadata); err == nil {
			metadata = string(data)
		}
	}
	rec := models.Notification{
		ID:       uuid.NewString(),
		UserID:   identity,
		Title:    n.Title,
		Message:  n.Message,
		Metadata: metadata,
	}
	if err := database.GetDB().Create(&rec).Error; err != nil {
		log.Printf("store: record notification for %s: %v", identity, err)
	}
}

// RecordLastSeen implements realtime.LastSeenRecorder.
func (s *Store) RecordLastSeen(identity string, at time.Time) {
	err := database.GetDB().Model(&models.User{}).
		Where("id = ?", identity).
		Update("last_seen_at", at).Error
	if err != nil {
		log.Printf("store: record last seen for %s: %v", identity, err)
	}
}
