package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"food-ordering/models"
	"food-ordering/realtime"
)

var (
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrUnknownMenuItem = errors.New("unknown menu item")
)

// OrderStore is the persistence surface the lifecycle manager needs.
// *repositories.OrderRepository implements it; tests substitute mocks.
type OrderStore interface {
	NextOrderNumber(ctx context.Context) (int, error)
	Create(ctx context.Context, order *models.Order) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id int) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber int) (*models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	FindByUser(ctx context.Context, userID int) ([]models.Order, error)
	FindByStatuses(ctx context.Context, statuses []string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id int, status string) error
	Delete(ctx context.Context, id int) error
	FindPaymentByOrder(ctx context.Context, orderID int) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID int, status string) error
}

// MenuChecker validates line-item references at checkout.
type MenuChecker interface {
	FindByID(ctx context.Context, id int) (*models.MenuItem, error)
}

// DiscountResetter zeroes a user's discount balance after payment.
type DiscountResetter interface {
	ResetDiscount(ctx context.Context, userID int) error
}

// Notifier is the realtime fan-out. *realtime.Hub implements it.
type Notifier interface {
	Publish(topic string, event realtime.Event)
	Broadcast(event realtime.Event)
}

// ConfirmationMailer sends the checkout receipt. *models.EmailService
// implements it; a nil mailer disables email entirely.
type ConfirmationMailer interface {
	SendOrderConfirmationEmail(toEmail string, orderNumber int, total float64) error
}

type OrderService struct {
	orders      OrderStore
	menu        MenuChecker
	users       DiscountResetter
	notifier    Notifier
	mailer      ConfirmationMailer
	deleteDelay time.Duration
}

func NewOrderService(orders OrderStore, menu MenuChecker, users DiscountResetter, notifier Notifier, mailer ConfirmationMailer, deleteDelay time.Duration) *OrderService {
	return &OrderService{
		orders:      orders,
		menu:        menu,
		users:       users,
		notifier:    notifier,
		mailer:      mailer,
		deleteDelay: deleteDelay,
	}
}

// Create builds a pending order with a fresh sequential order number,
// records its payment, and announces it to all connected clients.
func (s *OrderService) Create(ctx context.Context, userID int, req models.CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range req.Items {
		if _, err := s.menu.FindByID(ctx, item.MenuID); err != nil {
			return nil, fmt.Errorf("%w: %d", ErrUnknownMenuItem, item.MenuID)
		}
	}

	orderNumber, err := s.orders.NextOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("order number assignment failed: %w", err)
	}

	order := &models.Order{
		OrderNumber:   orderNumber,
		UserID:        userID,
		Total:         req.Total,
		Status:        models.StatusPending,
		PaymentMethod: req.PaymentMethod,
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, models.OrderItem{MenuID: item.MenuID, Quantity: item.Quantity})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	payment := &models.Payment{OrderID: order.ID, Amount: order.Total, Method: order.PaymentMethod}
	if err := s.orders.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}
	order.PaymentID = &payment.ID

	// reload for item names/prices and customer identity
	if enriched, err := s.orders.FindByID(ctx, order.ID); err == nil {
		order = enriched
	}

	s.notifier.Broadcast(realtime.Event{Name: realtime.EventNewOrder, Data: order})

	if s.mailer != nil && order.CustomerEmail != "" {
		go func(toEmail string, orderNumber int, total float64) {
			if err := s.mailer.SendOrderConfirmationEmail(toEmail, orderNumber, total); err != nil {
				log.Printf("Error sending confirmation for order #%d: %v", orderNumber, err)
			}
		}(order.CustomerEmail, order.OrderNumber, order.Total)
	}

	return order, nil
}

// UpdateStatus persists a transition and fans it out to the order's
// tracking room, the public board, and the admin dashboards. Reaching
// completed also notifies the owner and schedules the order's removal.
func (s *OrderService) UpdateStatus(ctx context.Context, id int, status string) (*models.Order, error) {
	if !models.IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(realtime.OrderTopic(order.OrderNumber), realtime.Event{
		Name: realtime.EventOrderStatusUpdate,
		Data: map[string]interface{}{
			"order_number":   order.OrderNumber,
			"status":         order.Status,
			"estimated_time": models.EstimatedTime(order.Status),
		},
	})

	s.notifier.Publish(realtime.TopicPublicOrders, realtime.Event{
		Name: realtime.EventPublicOrderUpdate,
		Data: map[string]interface{}{
			"order_id":       order.ID,
			"order_number":   order.OrderNumber,
			"status":         order.Status,
			"customer_name":  anonymize(order.CustomerName),
			"estimated_time": models.EstimatedTime(order.Status),
			"is_completed":   order.Status == models.StatusCompleted,
		},
	})

	s.notifier.Broadcast(realtime.Event{Name: realtime.EventOrderStatusChanged, Data: order})

	if order.Status == models.StatusCompleted {
		s.notifier.Publish(realtime.UserTopic(order.UserID), realtime.Event{
			Name: realtime.EventOrderCompleted,
			Data: map[string]interface{}{"message": "Your order is ready!"},
		})
		s.scheduleDelete(*order)
	}

	return order, nil
}

// scheduleDelete removes the order after the configured delay. The timer
// lives only in this process: a restart before it fires loses the
// deletion, a known gap accepted from the source behavior.
func (s *OrderService) scheduleDelete(order models.Order) {
	time.AfterFunc(s.deleteDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.orders.Delete(ctx, order.ID); err != nil {
			log.Printf("Error deleting completed order %d: %v", order.ID, err)
			return
		}

		s.notifier.Broadcast(realtime.Event{Name: realtime.EventOrderDeleted, Data: order.ID})
		s.notifier.Publish(realtime.OrderTopic(order.OrderNumber), realtime.Event{
			Name: realtime.EventOrderDeleted,
			Data: order.OrderNumber,
		})
		s.notifier.Publish(realtime.TopicPublicOrders, realtime.Event{
			Name: realtime.EventPublicOrderDeleted,
			Data: order.ID,
		})
	})
}

// ListAll returns every order for the admin view: active work first by
// status priority, ties broken by ascending creation time. The ordering is
// recomputed on each call, it is presentation policy, not storage order.
func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(orders, func(i, j int) bool {
		pi, pj := models.StatusPriority(orders[i].Status), models.StatusPriority(orders[j].Status)
		if pi != pj {
			return pi < pj
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID int) ([]models.Order, error) {
	return s.orders.FindByUser(ctx, userID)
}

// Track serves the unauthenticated tracking projection by order number.
func (s *OrderService) Track(ctx context.Context, orderNumber int) (*models.TrackedOrder, error) {
	order, err := s.orders.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	return &models.TrackedOrder{
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		Total:         order.Total,
		Items:         order.Items,
		EstimatedTime: models.EstimatedTime(order.Status),
		CreatedAt:     order.CreatedAt,
	}, nil
}

// ListPublic returns approved and completed orders, newest first, for the
// public board.
func (s *OrderService) ListPublic(ctx context.Context) ([]models.PublicOrder, error) {
	orders, err := s.orders.FindByStatuses(ctx, []string{models.StatusApproved, models.StatusCompleted})
	if err != nil {
		return nil, err
	}

	public := []models.PublicOrder{}
	for _, order := range orders {
		public = append(public, models.PublicOrder{
			ID:            order.ID,
			OrderNumber:   order.OrderNumber,
			Status:        order.Status,
			Total:         order.Total,
			CustomerName:  anonymize(order.CustomerName),
			Items:         order.Items,
			EstimatedTime: models.EstimatedTime(order.Status),
			IsCompleted:   order.Status == models.StatusCompleted,
			CreatedAt:     order.CreatedAt,
		})
	}
	return public, nil
}

// ProcessPayment is the mock always-succeeds payment transition. It also
// consumes the owner's whole discount balance, however much of it was
// actually applied to this order.
func (s *OrderService) ProcessPayment(ctx context.Context, orderID int) (*models.Payment, error) {
	payment, err := s.orders.FindPaymentByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.orders.UpdatePaymentStatus(ctx, payment.ID, "completed"); err != nil {
		return nil, err
	}
	payment.Status = "completed"

	if order, err := s.orders.FindByID(ctx, orderID); err == nil {
		if err := s.users.ResetDiscount(ctx, order.UserID); err != nil {
			log.Printf("Error resetting discount for user %d: %v", order.UserID, err)
		}
	}

	return payment, nil
}

func (s *OrderService) PaymentStatus(ctx context.Context, orderID int) (string, error) {
	payment, err := s.orders.FindPaymentByOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	return payment.Status, nil
}

func anonymize(name string) string {
	if name == "" {
		return "Anonymous"
	}
	return name
}
