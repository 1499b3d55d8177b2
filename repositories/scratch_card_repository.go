package repositories

import (
	"context"
	"errors"

	"food-ordering/models"

	"github.com/jackc/pgx/v5"
)

var (
	ErrCardNotFound     = errors.New("scratch card not found")
	ErrAlreadyScratched = errors.New("scratch card already scratched")
)

type ScratchCardRepository struct{}

func NewScratchCardRepository() *ScratchCardRepository {
	return &ScratchCardRepository{}
}

func (r *ScratchCardRepository) Create(ctx context.Context, card *models.ScratchCard) error {
	return models.DB.QueryRow(ctx, `
		INSERT INTO scratch_cards (user_id, scratched, created_at)
		VALUES ($1, false, now())
		RETURNING id, scratched, created_at
	`, card.UserID).Scan(&card.ID, &card.Scratched, &card.CreatedAt)
}

func (r *ScratchCardRepository) FindByID(ctx context.Context, id int) (*models.ScratchCard, error) {
	card := &models.ScratchCard{}
	err := models.DB.QueryRow(ctx, `
		SELECT id, user_id, prize, scratched, created_at
		FROM scratch_cards WHERE id = $1
	`, id).Scan(&card.ID, &card.UserID, &card.Prize, &card.Scratched, &card.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (r *ScratchCardRepository) FindByUser(ctx context.Context, userID int) ([]models.ScratchCard, error) {
	rows, err := models.DB.Query(ctx, `
		SELECT id, user_id, prize, scratched, created_at
		FROM scratch_cards WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []models.ScratchCard{}
	for rows.Next() {
		var c models.ScratchCard
		if err := rows.Scan(&c.ID, &c.UserID, &c.Prize, &c.Scratched, &c.CreatedAt); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// CountScratchedAbove counts scratched cards across all users whose prize
// exceeds the threshold. This feeds the fairness cap on high-value draws.
func (r *ScratchCardRepository) CountScratchedAbove(ctx context.Context, threshold int) (int, error) {
	var count int
	err := models.DB.QueryRow(ctx,
		"SELECT COUNT(*) FROM scratch_cards WHERE scratched = true AND prize > $1",
		threshold).Scan(&count)
	return count, err
}

// ApplyPrize marks the card scratched with its prize and credits the
// owner's discount balance, atomically. The scratched=false guard makes a
// concurrent double scratch lose the race instead of overwriting the prize.
func (r *ScratchCardRepository) ApplyPrize(ctx context.Context, cardID, userID, prize int) error {
	tx, err := models.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE scratch_cards SET prize=$1, scratched=true
		WHERE id=$2 AND scratched=false
	`, prize, cardID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyScratched
	}

	_, err = tx.Exec(ctx, "UPDATE users SET discount = discount + $1 WHERE id = $2", prize, userID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
