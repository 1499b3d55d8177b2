package repositories

import (
	"context"
	"errors"
	"time"

	"food-ordering/models"

	"github.com/jackc/pgx/v5"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password, role, discount, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
		RETURNING id, created_at
	`
	return models.DB.QueryRow(ctx, query,
		user.Name, user.Email, user.Password, user.Role, time.Now(),
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = $1", email)
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := models.DB.QueryRow(ctx,
		"SELECT id, name, email, password, role, discount, created_at FROM users WHERE "+where, arg,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Role, &user.Discount, &user.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ResetDiscount zeroes the accumulated balance, called once a payment for
// one of the user's orders is processed.
func (r *UserRepository) ResetDiscount(ctx context.Context, userID int) error {
	_, err := models.DB.Exec(ctx, "UPDATE users SET discount = 0 WHERE id = $1", userID)
	return err
}
