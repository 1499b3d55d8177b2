package services

import (
	"context"
	"errors"
	"math/rand/v2"

	"food-ordering/models"
	"food-ordering/repositories"
)

var ErrNotCardOwner = errors.New("scratch card belongs to another user")

// Reward rule: prizes are drawn uniformly from [1,30] until four scratched
// cards above 20 exist anywhere in the system, after which draws come from
// [1,20] only.
const (
	highPrizeThreshold = 20
	highPrizeCap       = 4
	fullRangeMax       = 30
	cappedRangeMax     = 20
)

// CardStore is the persistence surface of the prize policy.
// *repositories.ScratchCardRepository implements it.
type CardStore interface {
	Create(ctx context.Context, card *models.ScratchCard) error
	FindByID(ctx context.Context, id int) (*models.ScratchCard, error)
	FindByUser(ctx context.Context, userID int) ([]models.ScratchCard, error)
	CountScratchedAbove(ctx context.Context, threshold int) (int, error)
	ApplyPrize(ctx context.Context, cardID, userID, prize int) error
}

type ScratchService struct {
	cards CardStore
	intN  func(n int) int
}

func NewScratchService(cards CardStore) *ScratchService {
	return &ScratchService{cards: cards, intN: rand.IntN}
}

// CreateCard issues an unscratched card with no prize assigned yet.
func (s *ScratchService) CreateCard(ctx context.Context, userID int) (*models.ScratchCard, error) {
	card := &models.ScratchCard{UserID: userID}
	if err := s.cards.Create(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *ScratchService) ListCards(ctx context.Context, userID int) ([]models.ScratchCard, error) {
	return s.cards.FindByUser(ctx, userID)
}

// Scratch assigns the card's prize exactly once and credits it to the
// owner's discount balance. Replaying against a scratched card is rejected
// without touching the stored prize or the balance.
func (s *ScratchService) Scratch(ctx context.Context, cardID, userID int) (int, error) {
	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return 0, err
	}
	if card.UserID != userID {
		return 0, ErrNotCardOwner
	}
	if card.Scratched {
		return 0, repositories.ErrAlreadyScratched
	}

	highPrizeCount, err := s.cards.CountScratchedAbove(ctx, highPrizeThreshold)
	if err != nil {
		return 0, err
	}

	max := fullRangeMax
	if highPrizeCount >= highPrizeCap {
		max = cappedRangeMax
	}
	prize := s.intN(max) + 1

	if err := s.cards.ApplyPrize(ctx, cardID, userID, prize); err != nil {
		return 0, err
	}
	return prize, nil
}
