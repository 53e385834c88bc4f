package event

import (
	"chat-relay/domain"
)

// Kind names an outbound transport event as seen on the wire.
type Kind string

const (
	KindOnlineIDList        Kind = "online-id-list"
	KindMessageReceived     Kind = "message-received"
	KindMessageNotification Kind = "message-notification"
	KindTypingStatus        Kind = "typing-status"
	KindError               Kind = "error"
)

// Outbound is an event addressed to one or many live connections.
// The transport layer owns the encoding; the engine only picks targets.
type Outbound interface {
	Kind() Kind
}

// OnlineIDList carries the full set of currently online participant ids.
// Broadcast to every live connection on each presence change.
type OnlineIDList struct {
	IDs []string
}

func (OnlineIDList) Kind() Kind { return KindOnlineIDList }

// MessageReceived is the channel broadcast carrying the stored message.
type MessageReceived struct {
	Message domain.Message
}

func (MessageReceived) Kind() Kind { return KindMessageReceived }

// MessageNotification is the direct delivery to the receiver's connection,
// independent of channel membership. Consumers must tolerate receiving both
// MessageReceived and MessageNotification with the same message id.
type MessageNotification struct {
	Message domain.Message
}

func (MessageNotification) Kind() Kind { return KindMessageNotification }

// TypingStatus is forwarded to the receiver's direct connection only.
type TypingStatus struct {
	SenderID string
	IsTyping bool
}

func (TypingStatus) Kind() Kind { return KindTypingStatus }

// DispatchError reports a failed send-message back to the originating
// connection. Code is "invalid-message", "persistence-failure" or
// "internal".
type DispatchError struct {
	Code string
}

func (DispatchError) Kind() Kind { return KindError }
