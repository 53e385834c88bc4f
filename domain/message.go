// Package domain contains core concepts of the chat relay.
// This file defines Message types and related rules.
// Messages are immutable once stamped by the dispatcher.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DraftMessage is a message sending intent, before the engine stamps it.
type DraftMessage struct {
	SenderID      string `validate:"required"`
	ReceiverID    string `validate:"required"`
	Content       string
	AttachmentURL string
}

// Message represents an immutable chat event between two participants.
type Message struct {
	ID            uuid.UUID // unique identifier
	SenderID      string
	ReceiverID    string
	Content       string
	AttachmentURL string
	CreatedAt     time.Time // dispatch time, not composition time
}

// TypingSignal is an ephemeral indication that a participant is typing.
// It is never persisted and is dropped when the receiver is unreachable.
type TypingSignal struct {
	SenderID   string
	ReceiverID string
	IsTyping   bool
}
