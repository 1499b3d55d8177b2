package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"food-ordering/models"
	"food-ordering/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCardStore struct {
	mu        sync.Mutex
	nextID    int
	cards     map[int]*models.ScratchCard
	discounts map[int]int
}

func newMockCardStore() *mockCardStore {
	return &mockCardStore{
		cards:     make(map[int]*models.ScratchCard),
		discounts: make(map[int]int),
	}
}

func (m *mockCardStore) Create(ctx context.Context, card *models.ScratchCard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	card.ID = m.nextID
	card.Scratched = false
	card.CreatedAt = time.Now()
	stored := *card
	m.cards[card.ID] = &stored
	return nil
}

func (m *mockCardStore) FindByID(ctx context.Context, id int) (*models.ScratchCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	card, ok := m.cards[id]
	if !ok {
		return nil, repositories.ErrCardNotFound
	}
	copied := *card
	return &copied, nil
}

func (m *mockCardStore) FindByUser(ctx context.Context, userID int) ([]models.ScratchCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mine := []models.ScratchCard{}
	for _, card := range m.cards {
		if card.UserID == userID {
			mine = append(mine, *card)
		}
	}
	return mine, nil
}

func (m *mockCardStore) CountScratchedAbove(ctx context.Context, threshold int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, card := range m.cards {
		if card.Scratched && card.Prize != nil && *card.Prize > threshold {
			count++
		}
	}
	return count, nil
}

func (m *mockCardStore) ApplyPrize(ctx context.Context, cardID, userID, prize int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	card, ok := m.cards[cardID]
	if !ok {
		return repositories.ErrCardNotFound
	}
	if card.Scratched {
		return repositories.ErrAlreadyScratched
	}
	card.Prize = &prize
	card.Scratched = true
	m.discounts[userID] += prize
	return nil
}

func (m *mockCardStore) addScratched(userID, prize int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.cards[m.nextID] = &models.ScratchCard{
		ID: m.nextID, UserID: userID, Prize: &prize, Scratched: true, CreatedAt: time.Now(),
	}
}

func TestCreateCard_StartsUnscratched(t *testing.T) {
	store := newMockCardStore()
	svc := NewScratchService(store)

	card, err := svc.CreateCard(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, card.Scratched)
	assert.Nil(t, card.Prize)
}

func TestScratch_CreditsDiscountByPrize(t *testing.T) {
	store := newMockCardStore()
	svc := NewScratchService(store)

	card, err := svc.CreateCard(context.Background(), 1)
	require.NoError(t, err)

	prize, err := svc.Scratch(context.Background(), card.ID, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, prize, 1)
	assert.LessOrEqual(t, prize, 30)
	assert.Equal(t, prize, store.discounts[1])

	stored, err := store.FindByID(context.Background(), card.ID)
	require.NoError(t, err)
	assert.True(t, stored.Scratched)
	require.NotNil(t, stored.Prize)
	assert.Equal(t, prize, *stored.Prize)
}

func TestScratch_SecondAttemptRejectedWithoutMutation(t *testing.T) {
	store := newMockCardStore()
	svc := NewScratchService(store)

	card, err := svc.CreateCard(context.Background(), 1)
	require.NoError(t, err)

	first, err := svc.Scratch(context.Background(), card.ID, 1)
	require.NoError(t, err)

	_, err = svc.Scratch(context.Background(), card.ID, 1)
	assert.ErrorIs(t, err, repositories.ErrAlreadyScratched)

	stored, err := store.FindByID(context.Background(), card.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Prize)
	assert.Equal(t, first, *stored.Prize)
	assert.Equal(t, first, store.discounts[1])
}

func TestScratch_OtherUsersCardForbidden(t *testing.T) {
	store := newMockCardStore()
	svc := NewScratchService(store)

	card, err := svc.CreateCard(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.Scratch(context.Background(), card.ID, 2)
	assert.ErrorIs(t, err, ErrNotCardOwner)

	stored, err := store.FindByID(context.Background(), card.ID)
	require.NoError(t, err)
	assert.False(t, stored.Scratched)
	assert.Nil(t, stored.Prize)
	assert.Equal(t, 0, store.discounts[2])
}

func TestScratch_UnknownCard(t *testing.T) {
	svc := NewScratchService(newMockCardStore())

	_, err := svc.Scratch(context.Background(), 99, 1)
	assert.ErrorIs(t, err, repositories.ErrCardNotFound)
}

func TestScratch_FullRangeBeforeCap(t *testing.T) {
	store := newMockCardStore()
	store.addScratched(9, 25)
	store.addScratched(9, 25)
	store.addScratched(9, 25) // three high prizes, still under the cap

	svc := NewScratchService(store)
	var sawRange int
	svc.intN = func(n int) int {
		sawRange = n
		return n - 1
	}

	card, err := svc.CreateCard(context.Background(), 1)
	require.NoError(t, err)

	prize, err := svc.Scratch(context.Background(), card.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 30, sawRange)
	assert.Equal(t, 30, prize)
}

func TestScratch_CappedRangeAfterFourHighPrizes(t *testing.T) {
	store := newMockCardStore()
	for i := 0; i < 4; i++ {
		store.addScratched(9, 21)
	}

	svc := NewScratchService(store)
	var sawRange int
	svc.intN = func(n int) int {
		sawRange = n
		return 0
	}

	card, err := svc.CreateCard(context.Background(), 1)
	require.NoError(t, err)

	prize, err := svc.Scratch(context.Background(), card.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 20, sawRange)
	assert.Equal(t, 1, prize)
}

func TestScratch_LowHighPrizesDoNotCountTowardCap(t *testing.T) {
	store := newMockCardStore()
	for i := 0; i < 10; i++ {
		store.addScratched(9, 20) // at the threshold, not above it
	}

	svc := NewScratchService(store)
	var sawRange int
	svc.intN = func(n int) int {
		sawRange = n
		return 0
	}

	card, err := svc.CreateCard(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.Scratch(context.Background(), card.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 30, sawRange)
}
