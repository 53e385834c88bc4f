package observability

import "sync/atomic"

// EngineStats is a point-in-time snapshot of the routing engine counters.
type EngineStats struct {
	MessagesDispatched     uint64 `json:"messages_dispatched"`
	NotificationsDelivered uint64 `json:"notifications_delivered"`
	TypingRelayed          uint64 `json:"typing_relayed"`
	DeliveryDrops          uint64 `json:"delivery_drops"`
	PersistenceFailures    uint64 `json:"persistence_failures"`
	RejectedMessages       uint64 `json:"rejected_messages"`
}

// MonitoringManager aggregates realtime telemetry for the engine.
// All counters are atomic; Snapshot may be called from any goroutine.
type MonitoringManager struct {
	messagesDispatched     uint64
	notificationsDelivered uint64
	typingRelayed          uint64
	deliveryDrops          uint64
	persistenceFailures    uint64
	rejectedMessages       uint64
}

func NewMonitoringManager() *MonitoringManager {
	return &MonitoringManager{}
}

func (mm *MonitoringManager) IncrMessagesDispatched() {
	atomic.AddUint64(&mm.messagesDispatched, 1)
}

func (mm *MonitoringManager) IncrNotificationsDelivered() {
	atomic.AddUint64(&mm.notificationsDelivered, 1)
}

func (mm *MonitoringManager) IncrTypingRelayed() {
	atomic.AddUint64(&mm.typingRelayed, 1)
}

func (mm *MonitoringManager) IncrDeliveryDrops() {
	atomic.AddUint64(&mm.deliveryDrops, 1)
}

func (mm *MonitoringManager) IncrPersistenceFailures() {
	atomic.AddUint64(&mm.persistenceFailures, 1)
}

func (mm *MonitoringManager) IncrRejectedMessages() {
	atomic.AddUint64(&mm.rejectedMessages, 1)
}

func (mm *MonitoringManager) Snapshot() EngineStats {
	return EngineStats{
		MessagesDispatched:     atomic.LoadUint64(&mm.messagesDispatched),
		NotificationsDelivered: atomic.LoadUint64(&mm.notificationsDelivered),
		TypingRelayed:          atomic.LoadUint64(&mm.typingRelayed),
		DeliveryDrops:          atomic.LoadUint64(&mm.deliveryDrops),
		PersistenceFailures:    atomic.LoadUint64(&mm.persistenceFailures),
		RejectedMessages:       atomic.LoadUint64(&mm.rejectedMessages),
	}
}
