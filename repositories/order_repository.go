package repositories

import (
	"context"
	"errors"
	"time"

	"food-ordering/models"

	"github.com/jackc/pgx/v5"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// NextOrderNumber atomically increments and reads the orderNumber sequence.
// The single-statement upsert is linearizable in Postgres, so concurrent
// checkouts can never draw the same value.
func (r *OrderRepository) NextOrderNumber(ctx context.Context) (int, error) {
	var seq int
	err := models.DB.QueryRow(ctx, `
		INSERT INTO counters (name, seq) VALUES ('orderNumber', 1)
		ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1
		RETURNING seq
	`).Scan(&seq)
	return seq, err
}

// Create persists the order and its line items in one transaction and
// fills in the generated id and creation time.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	tx, err := models.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (order_number, user_id, total, status, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, order.OrderNumber, order.UserID, order.Total, order.Status, order.PaymentMethod, time.Now()).
		Scan(&order.ID)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		_, err = tx.Exec(ctx,
			"INSERT INTO order_items (order_id, menu_id, quantity) VALUES ($1, $2, $3)",
			order.ID, item.MenuID, item.Quantity)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// CreatePayment records the payment row for an order and links it back.
// This is a separate write from Create: a crash in between leaves an order
// without a payment record, which the design accepts.
func (r *OrderRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	err := models.DB.QueryRow(ctx, `
		INSERT INTO payments (order_id, amount, method, status, created_at)
		VALUES ($1, $2, $3, 'pending', $4)
		RETURNING id, status
	`, payment.OrderID, payment.Amount, payment.Method, time.Now()).
		Scan(&payment.ID, &payment.Status)
	if err != nil {
		return err
	}

	_, err = models.DB.Exec(ctx, "UPDATE orders SET payment_id=$1 WHERE id=$2",
		payment.ID, payment.OrderID)
	return err
}

func (r *OrderRepository) FindByID(ctx context.Context, id int) (*models.Order, error) {
	return r.findOne(ctx, "o.id = $1", id)
}

func (r *OrderRepository) FindByOrderNumber(ctx context.Context, orderNumber int) (*models.Order, error) {
	return r.findOne(ctx, "o.order_number = $1", orderNumber)
}

func (r *OrderRepository) findOne(ctx context.Context, where string, arg interface{}) (*models.Order, error) {
	orders, err := r.find(ctx, where, arg)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return &orders[0], nil
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, "")
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID int) ([]models.Order, error) {
	return r.find(ctx, "o.user_id = $1", userID)
}

// FindByStatuses returns matching orders newest first.
func (r *OrderRepository) FindByStatuses(ctx context.Context, statuses []string) ([]models.Order, error) {
	return r.find(ctx, "o.status = ANY($1)", statuses)
}

func (r *OrderRepository) find(ctx context.Context, where string, args ...interface{}) ([]models.Order, error) {
	query := `
		SELECT o.id, o.order_number, o.user_id, o.total, o.status,
		       o.payment_method, o.payment_id, o.created_at,
		       COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM orders o
		LEFT JOIN users u ON o.user_id = u.id
	`
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY o.created_at DESC"

	rows, err := models.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	ids := []int{}
	for rows.Next() {
		var o models.Order
		err := rows.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Total, &o.Status,
			&o.PaymentMethod, &o.PaymentID, &o.CreatedAt,
			&o.CustomerName, &o.CustomerEmail)
		if err != nil {
			return nil, err
		}
		o.Items = []models.OrderItem{}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if list, ok := items[orders[i].ID]; ok {
			orders[i].Items = list
		}
	}
	return orders, nil
}

// loadItems fetches line items for a set of orders in one query, enriched
// with current menu names and prices.
func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []int) (map[int][]models.OrderItem, error) {
	rows, err := models.DB.Query(ctx, `
		SELECT oi.order_id, oi.menu_id, oi.quantity,
		       COALESCE(m.name, 'Unknown Item'), COALESCE(m.price, 0)
		FROM order_items oi
		LEFT JOIN menu_items m ON oi.menu_id = m.id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id
	`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := map[int][]models.OrderItem{}
	for rows.Next() {
		var orderID int
		var item models.OrderItem
		if err := rows.Scan(&orderID, &item.MenuID, &item.Quantity, &item.Name, &item.Price); err != nil {
			return nil, err
		}
		items[orderID] = append(items[orderID], item)
	}
	return items, rows.Err()
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	tag, err := models.DB.Exec(ctx, "UPDATE orders SET status=$1 WHERE id=$2", status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id int) error {
	tx, err := models.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM order_items WHERE order_id=$1", id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, "DELETE FROM orders WHERE id=$1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return tx.Commit(ctx)
}

// FindPaymentByOrder looks up the payment attached to an order.
func (r *OrderRepository) FindPaymentByOrder(ctx context.Context, orderID int) (*models.Payment, error) {
	p := &models.Payment{}
	err := models.DB.QueryRow(ctx, `
		SELECT id, order_id, amount, method, status, created_at
		FROM payments WHERE order_id = $1
	`, orderID).Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.Status, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, paymentID int, status string) error {
	_, err := models.DB.Exec(ctx, "UPDATE payments SET status=$1 WHERE id=$2", status, paymentID)
	return err
}
