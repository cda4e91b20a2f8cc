package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/autodealer/showroom/internal/core/domain"
)

const carColumns = `c.id, c.room_id, c.title, c.brand, c.model, c.year, c.price, c.mileage, c.fuel_type,
	c.transmission, c.color, c.description, c.images, c.status, c.created_at, c.updated_at`

// CarRepository implements ports.CarRepository.
type CarRepository struct {
	db DB
}

func NewCarRepository(db DB) *CarRepository {
	return &CarRepository{db: db}
}

func scanCar(row pgx.Row) (*domain.Car, error) {
	c := &domain.Car{}
	err := row.Scan(&c.ID, &c.RoomID, &c.Title, &c.Brand, &c.Model, &c.Year, &c.Price, &c.Mileage,
		&c.FuelType, &c.Transmission, &c.Color, &c.Description, &c.Images, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if c.Images == nil {
		c.Images = []string{}
	}
	return c, nil
}

func (r *CarRepository) Create(ctx context.Context, c *domain.Car) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO cars (id, room_id, title, brand, model, year, price, mileage, fuel_type,
			transmission, color, description, images, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		c.ID, c.RoomID, c.Title, c.Brand, c.Model, c.Year, c.Price, c.Mileage, c.FuelType,
		c.Transmission, c.Color, c.Description, c.Images, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert car: %w", err)
	}
	return nil
}

func (r *CarRepository) FindByID(ctx context.Context, id string) (*domain.Car, error) {
	c, err := scanCar(r.db.QueryRow(ctx, `SELECT `+carColumns+` FROM cars c WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCarNotFound
		}
		return nil, fmt.Errorf("find car: %w", err)
	}
	return c, nil
}

func (r *CarRepository) List(ctx context.Context, f domain.CarFilter) ([]*domain.Car, int64, error) {
	var w filter
	w.raw("r.is_active")
	if f.RoomID != "" {
		w.add("c.room_id = $%d", f.RoomID)
	}
	if f.Brand != "" {
		w.add("c.brand ILIKE $%d", likePattern(f.Brand))
	}
	if f.Status != "" {
		w.add("c.status = $%d", f.Status)
	}
	if f.MinPrice > 0 {
		w.add("c.price >= $%d", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		w.add("c.price <= $%d", f.MaxPrice)
	}
	from := ` FROM cars c JOIN rooms r ON r.id = c.room_id`

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+from+w.where(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cars: %w", err)
	}

	limit, args := w.page(f.Page, f.Limit)
	rows, err := r.db.Query(ctx, `SELECT `+carColumns+from+w.where()+` ORDER BY c.created_at DESC`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	cars := make([]*domain.Car, 0)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan car: %w", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate cars: %w", err)
	}
	return cars, total, nil
}

func (r *CarRepository) Update(ctx context.Context, c *domain.Car) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE cars SET title = $1, brand = $2, model = $3, year = $4, price = $5, mileage = $6, fuel_type = $7,
			transmission = $8, color = $9, description = $10, images = $11, status = $12, updated_at = $13
		 WHERE id = $14`,
		c.Title, c.Brand, c.Model, c.Year, c.Price, c.Mileage, c.FuelType,
		c.Transmission, c.Color, c.Description, c.Images, c.Status, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update car: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCarNotFound
	}
	return nil
}

func (r *CarRepository) SetStatus(ctx context.Context, id string, status domain.CarStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE cars SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("set car status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCarNotFound
	}
	return nil
}

// Delete removes the car with its bookings in one transaction.
func (r *CarRepository) Delete(ctx context.Context, id string) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE payments SET booking_id = NULL WHERE booking_id IN (SELECT id FROM bookings WHERE car_id = $1)`, id); err != nil {
			return fmt.Errorf("detach payments: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE car_id = $1`, id); err != nil {
			return fmt.Errorf("delete car bookings: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM cars WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete car: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrCarNotFound
		}
		return nil
	})
}

func (r *CarRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cars`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cars: %w", err)
	}
	return n, nil
}
