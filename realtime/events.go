package realtime

import "fmt"

// Event names, shared with the frontend.
const (
	EventNewOrder           = "newOrder"
	EventOrderStatusUpdate  = "orderStatusUpdate"
	EventOrderStatusChanged = "orderStatusChanged"
	EventPublicOrderUpdate  = "publicOrderUpdate"
	EventOrderCompleted     = "orderCompleted"
	EventOrderDeleted       = "orderDeleted"
	EventPublicOrderDeleted = "publicOrderDeleted"
)

// TopicBroadcast addresses every connected client.
const TopicBroadcast = "*"

// TopicPublicOrders carries the aggregate order board updates.
const TopicPublicOrders = "public-orders"

// OrderTopic is the per-order tracking room, keyed by the human-facing
// order number.
func OrderTopic(orderNumber int) string {
	return fmt.Sprintf("order-%d", orderNumber)
}

// UserTopic addresses a single customer, e.g. for completion notices.
func UserTopic(userID int) string {
	return fmt.Sprintf("user-%d", userID)
}
