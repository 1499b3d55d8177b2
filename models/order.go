package models

import "time"

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
)

// statusPriority drives the admin listing order: pending work first,
// completed last, anything unrecognized at the bottom.
var statusPriority = map[string]int{
	StatusPending:   1,
	StatusApproved:  2,
	StatusPreparing: 3,
	StatusReady:     4,
	StatusCompleted: 5,
}

func StatusPriority(status string) int {
	if p, ok := statusPriority[status]; ok {
		return p
	}
	return 6
}

func IsValidStatus(status string) bool {
	_, ok := statusPriority[status]
	return ok
}

// EstimatedTime maps a status to the human-readable wait shown on the
// tracking screens.
func EstimatedTime(status string) string {
	switch status {
	case StatusPending:
		return "5-10 minutes"
	case StatusApproved:
		return "15-20 minutes"
	case StatusPreparing:
		return "10-15 minutes"
	case StatusReady:
		return "Ready for pickup"
	case StatusCompleted:
		return "Completed"
	default:
		return "Calculating..."
	}
}

type Order struct {
	ID            int         `json:"id"`
	OrderNumber   int         `json:"order_number"`
	UserID        int         `json:"user_id"`
	CustomerName  string      `json:"customer_name,omitempty"`
	CustomerEmail string      `json:"customer_email,omitempty"`
	Items         []OrderItem `json:"items"`
	Total         float64     `json:"total"`
	Status        string      `json:"status"`
	PaymentMethod string      `json:"payment_method"`
	PaymentID     *int        `json:"payment_id,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

type OrderItem struct {
	MenuID   int     `json:"menu_id"`
	Name     string  `json:"name,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Quantity int     `json:"quantity"`
}

type Payment struct {
	ID        int       `json:"id"`
	OrderID   int       `json:"order_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// TrackedOrder is the reduced projection served on the public tracking
// endpoint; it carries no customer identity.
type TrackedOrder struct {
	OrderNumber   int         `json:"order_number"`
	Status        string      `json:"status"`
	Total         float64     `json:"total"`
	Items         []OrderItem `json:"items"`
	EstimatedTime string      `json:"estimated_time"`
	CreatedAt     time.Time   `json:"created_at"`
}

// PublicOrder is the aggregate board entry for approved/completed orders.
type PublicOrder struct {
	ID            int         `json:"id"`
	OrderNumber   int         `json:"order_number"`
	Status        string      `json:"status"`
	Total         float64     `json:"total"`
	CustomerName  string      `json:"customer_name"`
	Items         []OrderItem `json:"items"`
	EstimatedTime string      `json:"estimated_time"`
	IsCompleted   bool        `json:"is_completed"`
	CreatedAt     time.Time   `json:"created_at"`
}
