package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"food-ordering/models"
	"food-ordering/realtime"
	"food-ordering/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock OrderStore

type mockOrderStore struct {
	mu            sync.Mutex
	seq           int
	nextID        int
	nextPaymentID int
	orders        map[int]*models.Order
	payments      map[int]*models.Payment

	// filled in on Create when set, standing in for the user join
	customerName  string
	customerEmail string
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{
		orders:   make(map[int]*models.Order),
		payments: make(map[int]*models.Payment),
	}
}

func (m *mockOrderStore) NextOrderNumber(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq, nil
}

func (m *mockOrderStore) Create(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	order.ID = m.nextID
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if m.customerName != "" {
		order.CustomerName = m.customerName
	}
	if m.customerEmail != "" {
		order.CustomerEmail = m.customerEmail
	}
	stored := *order
	m.orders[order.ID] = &stored
	return nil
}

func (m *mockOrderStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextPaymentID++
	payment.ID = m.nextPaymentID
	payment.Status = "pending"
	stored := *payment
	m.payments[payment.OrderID] = &stored
	if order, ok := m.orders[payment.OrderID]; ok {
		order.PaymentID = &stored.ID
	}
	return nil
}

func (m *mockOrderStore) FindByID(ctx context.Context, id int) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, repositories.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *mockOrderStore) FindByOrderNumber(ctx context.Context, orderNumber int) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.orders {
		if order.OrderNumber == orderNumber {
			copied := *order
			return &copied, nil
		}
	}
	return nil, repositories.ErrOrderNotFound
}

func (m *mockOrderStore) FindAll(ctx context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := []models.Order{}
	for _, order := range m.orders {
		all = append(all, *order)
	}
	return all, nil
}

func (m *mockOrderStore) FindByUser(ctx context.Context, userID int) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mine := []models.Order{}
	for _, order := range m.orders {
		if order.UserID == userID {
			mine = append(mine, *order)
		}
	}
	return mine, nil
}

func (m *mockOrderStore) FindByStatuses(ctx context.Context, statuses []string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := []models.Order{}
	for _, order := range m.orders {
		for _, s := range statuses {
			if order.Status == s {
				matched = append(matched, *order)
				break
			}
		}
	}
	return matched, nil
}

func (m *mockOrderStore) UpdateStatus(ctx context.Context, id int, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return repositories.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (m *mockOrderStore) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return repositories.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *mockOrderStore) FindPaymentByOrder(ctx context.Context, orderID int) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[orderID]
	if !ok {
		return nil, repositories.ErrOrderNotFound
	}
	copied := *payment
	return &copied, nil
}

func (m *mockOrderStore) UpdatePaymentStatus(ctx context.Context, paymentID int, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, payment := range m.payments {
		if payment.ID == paymentID {
			payment.Status = status
			return nil
		}
	}
	return repositories.ErrOrderNotFound
}

// Mock MenuChecker

type mockMenu struct {
	items map[int]models.MenuItem
}

func newMockMenu(ids ...int) *mockMenu {
	m := &mockMenu{items: make(map[int]models.MenuItem)}
	for _, id := range ids {
		m.items[id] = models.MenuItem{ID: id, Name: "Item", Price: 5}
	}
	return m
}

func (m *mockMenu) FindByID(ctx context.Context, id int) (*models.MenuItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrMenuItemNotFound
	}
	return &item, nil
}

// Mock DiscountResetter

type mockUsers struct {
	mu        sync.Mutex
	discounts map[int]int
}

func newMockUsers() *mockUsers {
	return &mockUsers{discounts: make(map[int]int)}
}

func (m *mockUsers) ResetDiscount(ctx context.Context, userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discounts[userID] = 0
	return nil
}

// Mock Notifier

type published struct {
	topic string
	event realtime.Event
}

type mockNotifier struct {
	mu     sync.Mutex
	events []published
}

func (m *mockNotifier) Publish(topic string, event realtime.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, published{topic: topic, event: event})
}

func (m *mockNotifier) Broadcast(event realtime.Event) {
	m.Publish(realtime.TopicBroadcast, event)
}

func (m *mockNotifier) has(topic, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.events {
		if p.topic == topic && p.event.Name == name {
			return true
		}
	}
	return false
}

// Mock ConfirmationMailer

type mailed struct {
	toEmail     string
	orderNumber int
	total       float64
}

type mockMailer struct {
	mu   sync.Mutex
	sent []mailed
}

func (m *mockMailer) SendOrderConfirmationEmail(toEmail string, orderNumber int, total float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mailed{toEmail: toEmail, orderNumber: orderNumber, total: total})
	return nil
}

func (m *mockMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newTestOrderService(store *mockOrderStore, menu *mockMenu, notifier *mockNotifier, delay time.Duration) *OrderService {
	return NewOrderService(store, menu, newMockUsers(), notifier, nil, delay)
}

func TestCreate_AssignsPendingStatusAndPayment(t *testing.T) {
	store := newMockOrderStore()
	notifier := &mockNotifier{}
	svc := newTestOrderService(store, newMockMenu(1, 2), notifier, time.Minute)

	order, err := svc.Create(context.Background(), 7, models.CreateOrderRequest{
		Items:         []models.OrderItemRequest{{MenuID: 1, Quantity: 2}, {MenuID: 2, Quantity: 1}},
		Total:         15,
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, 1, order.OrderNumber)
	require.NotNil(t, order.PaymentID)

	payment, err := store.FindPaymentByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Total, payment.Amount)
	assert.Equal(t, "card", payment.Method)
	assert.Equal(t, "pending", payment.Status)

	assert.True(t, notifier.has(realtime.TopicBroadcast, realtime.EventNewOrder))
}

func TestCreate_SendsConfirmationEmail(t *testing.T) {
	store := newMockOrderStore()
	store.customerEmail = "alice@example.com"
	mailer := &mockMailer{}
	svc := NewOrderService(store, newMockMenu(1), newMockUsers(), &mockNotifier{}, mailer, time.Minute)

	order, err := svc.Create(context.Background(), 7, models.CreateOrderRequest{
		Items:         []models.OrderItemRequest{{MenuID: 1, Quantity: 1}},
		Total:         5,
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return mailer.sentCount() == 1 }, time.Second, 5*time.Millisecond)

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Equal(t, "alice@example.com", mailer.sent[0].toEmail)
	assert.Equal(t, order.OrderNumber, mailer.sent[0].orderNumber)
	assert.Equal(t, order.Total, mailer.sent[0].total)
}

func TestCreate_NoEmailWithoutAddressOrMailer(t *testing.T) {
	// no address on the order
	store := newMockOrderStore()
	mailer := &mockMailer{}
	svc := NewOrderService(store, newMockMenu(1), newMockUsers(), &mockNotifier{}, mailer, time.Minute)

	_, err := svc.Create(context.Background(), 1, models.CreateOrderRequest{
		Items:         []models.OrderItemRequest{{MenuID: 1, Quantity: 1}},
		Total:         5,
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, mailer.sentCount())

	// no mailer configured at all
	store = newMockOrderStore()
	store.customerEmail = "bob@example.com"
	svc = newTestOrderService(store, newMockMenu(1), &mockNotifier{}, time.Minute)

	_, err = svc.Create(context.Background(), 2, models.CreateOrderRequest{
		Items:         []models.OrderItemRequest{{MenuID: 1, Quantity: 1}},
		Total:         5,
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
}

func TestCreate_RejectsEmptyAndUnknownItems(t *testing.T) {
	svc := newTestOrderService(newMockOrderStore(), newMockMenu(1), &mockNotifier{}, time.Minute)

	_, err := svc.Create(context.Background(), 1, models.CreateOrderRequest{
		Total: 10, PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = svc.Create(context.Background(), 1, models.CreateOrderRequest{
		Items:         []models.OrderItemRequest{{MenuID: 99, Quantity: 1}},
		Total:         10,
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, ErrUnknownMenuItem)
}

func TestCreate_ConcurrentOrderNumbersAreDistinct(t *testing.T) {
	store := newMockOrderStore()
	svc := newTestOrderService(store, newMockMenu(1), &mockNotifier{}, time.Minute)

	const n = 50
	var wg sync.WaitGroup
	numbers := make(chan int, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := svc.Create(context.Background(), 1, models.CreateOrderRequest{
				Items:         []models.OrderItemRequest{{MenuID: 1, Quantity: 1}},
				Total:         5,
				PaymentMethod: "cash",
			})
			if !assert.NoError(t, err) {
				return
			}
			numbers <- order.OrderNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[int]bool{}
	for number := range numbers {
		assert.False(t, seen[number], "order number %d assigned twice", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	svc := newTestOrderService(newMockOrderStore(), newMockMenu(1), &mockNotifier{}, time.Minute)

	_, err := svc.UpdateStatus(context.Background(), 1, "burnt")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus_MissingOrder(t *testing.T) {
	svc := newTestOrderService(newMockOrderStore(), newMockMenu(1), &mockNotifier{}, time.Minute)

	_, err := svc.UpdateStatus(context.Background(), 42, models.StatusApproved)
	assert.True(t, errors.Is(err, repositories.ErrOrderNotFound))
}

func TestUpdateStatus_FansOutToAllAudiences(t *testing.T) {
	store := newMockOrderStore()
	notifier := &mockNotifier{}
	svc := newTestOrderService(store, newMockMenu(1), notifier, time.Minute)

	order, err := svc.Create(context.Background(), 3, models.CreateOrderRequest{
		Items:         []models.OrderItemRequest{{MenuID: 1, Quantity: 1}},
		Total:         5,
		PaymentMethod: "online",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, models.StatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, updated.Status)

	assert.True(t, notifier.has(realtime.OrderTopic(order.OrderNumber), realtime.EventOrderStatusUpdate))
	assert.True(t, notifier.has(realtime.TopicPublicOrders, realtime.EventPublicOrderUpdate))
	assert.True(t, notifier.has(realtime.TopicBroadcast, realtime.EventOrderStatusChanged))
	assert.False(t, notifier.has(realtime.UserTopic(3), realtime.EventOrderCompleted))
}

func TestUpdateStatus_CompletedSchedulesDeletion(t *testing.T) {
	store := newMockOrderStore()
	notifier := &mockNotifier{}
	svc := newTestOrderService(store, newMockMenu(1), notifier, 20*time.Millisecond)

	order, err := svc.Create(context.Background(), 5, models.CreateOrderRequest{
		Items:         []models.OrderItemRequest{{MenuID: 1, Quantity: 1}},
		Total:         5,
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, models.StatusCompleted)
	require.NoError(t, err)

	assert.True(t, notifier.has(realtime.UserTopic(5), realtime.EventOrderCompleted))

	// still present before the delay fires
	_, err = store.FindByID(context.Background(), order.ID)
	assert.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := store.FindByID(context.Background(), order.ID)
		return errors.Is(err, repositories.ErrOrderNotFound)
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return notifier.has(realtime.TopicBroadcast, realtime.EventOrderDeleted) &&
			notifier.has(realtime.OrderTopic(order.OrderNumber), realtime.EventOrderDeleted) &&
			notifier.has(realtime.TopicPublicOrders, realtime.EventPublicOrderDeleted)
	}, time.Second, 5*time.Millisecond)

	_, err = svc.Track(context.Background(), order.OrderNumber)
	assert.True(t, errors.Is(err, repositories.ErrOrderNotFound))
}

func TestListAll_StatusPriorityThenCreationTime(t *testing.T) {
	store := newMockOrderStore()
	svc := newTestOrderService(store, newMockMenu(1), &mockNotifier{}, time.Minute)

	base := time.Now()
	seed := []struct {
		status string
		at     time.Time
	}{
		{models.StatusCompleted, base},
		{models.StatusPending, base.Add(2 * time.Second)},
		{models.StatusReady, base.Add(time.Second)},
		{models.StatusPending, base.Add(time.Second)},
		{models.StatusPreparing, base},
		{models.StatusApproved, base},
	}
	for i, s := range seed {
		order := &models.Order{OrderNumber: i + 1, UserID: 1, Total: 5, Status: s.status,
			PaymentMethod: "cash", CreatedAt: s.at}
		require.NoError(t, store.Create(context.Background(), order))
	}

	orders, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, len(seed))

	statuses := []string{}
	for _, o := range orders {
		statuses = append(statuses, o.Status)
	}
	assert.Equal(t, []string{
		models.StatusPending, models.StatusPending,
		models.StatusApproved, models.StatusPreparing,
		models.StatusReady, models.StatusCompleted,
	}, statuses)

	// within equal priority, older first
	assert.True(t, orders[0].CreatedAt.Before(orders[1].CreatedAt))
}

func TestListPublic_FiltersAnonymizesAndFlags(t *testing.T) {
	store := newMockOrderStore()
	svc := newTestOrderService(store, newMockMenu(1), &mockNotifier{}, time.Minute)

	named := &models.Order{OrderNumber: 1, UserID: 1, Total: 5, Status: models.StatusApproved,
		PaymentMethod: "cash", CustomerName: "Alice", CreatedAt: time.Now()}
	nameless := &models.Order{OrderNumber: 2, UserID: 2, Total: 7, Status: models.StatusCompleted,
		PaymentMethod: "card", CreatedAt: time.Now()}
	hidden := &models.Order{OrderNumber: 3, UserID: 3, Total: 9, Status: models.StatusPending,
		PaymentMethod: "cash", CreatedAt: time.Now()}
	for _, o := range []*models.Order{named, nameless, hidden} {
		require.NoError(t, store.Create(context.Background(), o))
	}

	public, err := svc.ListPublic(context.Background())
	require.NoError(t, err)
	require.Len(t, public, 2)

	byNumber := map[int]models.PublicOrder{}
	for _, p := range public {
		byNumber[p.OrderNumber] = p
	}
	assert.Equal(t, "Alice", byNumber[1].CustomerName)
	assert.False(t, byNumber[1].IsCompleted)
	assert.Equal(t, "Anonymous", byNumber[2].CustomerName)
	assert.True(t, byNumber[2].IsCompleted)
}

func TestTrack_ProjectionAndNotFound(t *testing.T) {
	store := newMockOrderStore()
	svc := newTestOrderService(store, newMockMenu(1), &mockNotifier{}, time.Minute)

	order := &models.Order{OrderNumber: 9, UserID: 1, Total: 12, Status: models.StatusApproved,
		PaymentMethod: "cash", CustomerName: "Bob", CreatedAt: time.Now()}
	require.NoError(t, store.Create(context.Background(), order))

	tracked, err := svc.Track(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 9, tracked.OrderNumber)
	assert.Equal(t, "15-20 minutes", tracked.EstimatedTime)

	_, err = svc.Track(context.Background(), 1000)
	assert.True(t, errors.Is(err, repositories.ErrOrderNotFound))
}

func TestProcessPayment_CompletesAndResetsDiscount(t *testing.T) {
	store := newMockOrderStore()
	users := newMockUsers()
	users.discounts[4] = 55
	svc := NewOrderService(store, newMockMenu(1), users, &mockNotifier{}, nil, time.Minute)

	order, err := svc.Create(context.Background(), 4, models.CreateOrderRequest{
		Items:         []models.OrderItemRequest{{MenuID: 1, Quantity: 1}},
		Total:         5,
		PaymentMethod: "online",
	})
	require.NoError(t, err)

	payment, err := svc.ProcessPayment(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", payment.Status)
	assert.Equal(t, 0, users.discounts[4])

	status, err := svc.PaymentStatus(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", status)
}

func TestPaymentStatus_UnknownOrder(t *testing.T) {
	svc := newTestOrderService(newMockOrderStore(), newMockMenu(1), &mockNotifier{}, time.Minute)

	_, err := svc.PaymentStatus(context.Background(), 123)
	assert.True(t, errors.Is(err, repositories.ErrOrderNotFound))
}
