package repositories

import (
	"context"
	"errors"

	"food-ordering/models"

	"github.com/jackc/pgx/v5"
)

var ErrMenuItemNotFound = errors.New("menu item not found")

type MenuRepository struct{}

func NewMenuRepository() *MenuRepository {
	return &MenuRepository{}
}

func (r *MenuRepository) FindAll(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := models.DB.Query(ctx, `
		SELECT id, name, description, price, category, image, quantity, available
		FROM menu_items ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var m models.MenuItem
		err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Price,
			&m.Category, &m.Image, &m.Quantity, &m.Available)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *MenuRepository) FindByID(ctx context.Context, id int) (*models.MenuItem, error) {
	m := &models.MenuItem{}
	err := models.DB.QueryRow(ctx, `
		SELECT id, name, description, price, category, image, quantity, available
		FROM menu_items WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.Description, &m.Price,
		&m.Category, &m.Image, &m.Quantity, &m.Available)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MenuRepository) Create(ctx context.Context, item *models.MenuItem) error {
	return models.DB.QueryRow(ctx, `
		INSERT INTO menu_items (name, description, price, category, image, quantity, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, item.Name, item.Description, item.Price, item.Category,
		item.Image, item.Quantity, item.Available).Scan(&item.ID)
}

func (r *MenuRepository) Update(ctx context.Context, item *models.MenuItem) error {
	tag, err := models.DB.Exec(ctx, `
		UPDATE menu_items
		SET name=$1, description=$2, price=$3, category=$4, image=$5, quantity=$6, available=$7
		WHERE id=$8
	`, item.Name, item.Description, item.Price, item.Category,
		item.Image, item.Quantity, item.Available, item.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

func (r *MenuRepository) Delete(ctx context.Context, id int) error {
	tag, err := models.DB.Exec(ctx, "DELETE FROM menu_items WHERE id=$1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}
