package models

import (
	"time"
)

// Notification is a durable, in-portal message to a single recipient.
// Created as a side effect of state transitions inside the same transaction;
// only the read flag ever changes afterwards, and only by its recipient.
type Notification struct {
	ID          string    `json:"id" db:"id"`
	RecipientID string    `json:"recipient_id" db:"recipient_id"`
	Title       string    `json:"title" db:"title"`
	Message     string    `json:"message" db:"message"`
	Category    string    `json:"category" db:"category"`
	IsRead      bool      `json:"is_read" db:"is_read"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Notification categories
const (
	NotifyCategoryMembership = "membership"
	NotifyCategoryModeration = "moderation"
	NotifyCategoryHelpDesk   = "helpdesk"
)
