package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/autodealer/showroom/internal/core/domain"
)

const roomColumns = `id, owner_id, name, description, location, phone, image_url, is_active, created_at, updated_at`

// RoomRepository implements ports.RoomRepository.
type RoomRepository struct {
	db DB
}

func NewRoomRepository(db DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func scanRoom(row pgx.Row) (*domain.Room, error) {
	rm := &domain.Room{}
	err := row.Scan(&rm.ID, &rm.OwnerID, &rm.Name, &rm.Description, &rm.Location,
		&rm.Phone, &rm.ImageURL, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rm, nil
}

func (r *RoomRepository) Create(ctx context.Context, rm *domain.Room) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO rooms (`+roomColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rm.ID, rm.OwnerID, rm.Name, rm.Description, rm.Location, rm.Phone, rm.ImageURL, rm.IsActive, rm.CreatedAt, rm.UpdatedAt)
	if err != nil {
		if uniqueConstraint(err) == "rooms_owner_id_key" {
			return domain.ErrRoomAlreadyOwned
		}
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

func (r *RoomRepository) FindByID(ctx context.Context, id string) (*domain.Room, error) {
	return r.findOne(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
}

func (r *RoomRepository) FindByOwner(ctx context.Context, ownerID string) (*domain.Room, error) {
	return r.findOne(ctx, `SELECT `+roomColumns+` FROM rooms WHERE owner_id = $1`, ownerID)
}

func (r *RoomRepository) findOne(ctx context.Context, sql string, arg any) (*domain.Room, error) {
	rm, err := scanRoom(r.db.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("find room: %w", err)
	}
	return rm, nil
}

func (r *RoomRepository) List(ctx context.Context, f domain.RoomFilter) ([]*domain.Room, int64, error) {
	var w filter
	if f.ActiveOnly {
		w.raw("is_active")
	}
	if f.Search != "" {
		w.add("(name ILIKE $%[1]d OR location ILIKE $%[1]d)", likePattern(f.Search))
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM rooms`+w.where(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}

	limit, args := w.page(f.Page, f.Limit)
	rows, err := r.db.Query(ctx, `SELECT `+roomColumns+` FROM rooms`+w.where()+` ORDER BY created_at DESC`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]*domain.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rooms: %w", err)
	}
	return rooms, total, nil
}

func (r *RoomRepository) Update(ctx context.Context, rm *domain.Room) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE rooms SET name = $1, description = $2, location = $3, phone = $4, image_url = $5, updated_at = $6 WHERE id = $7`,
		rm.Name, rm.Description, rm.Location, rm.Phone, rm.ImageURL, rm.UpdatedAt, rm.ID)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (r *RoomRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE rooms SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set room active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		return deleteRoomTx(ctx, tx, id)
	})
}

// deleteRoomTx removes a room and everything that hangs off it.
func deleteRoomTx(ctx context.Context, tx pgx.Tx, id string) error {
	steps := []string{
		`DELETE FROM chat_messages WHERE conversation_id IN (SELECT id FROM chat_conversations WHERE room_id = $1)`,
		`DELETE FROM chat_conversations WHERE room_id = $1`,
		`UPDATE payments SET room_id = NULL, booking_id = NULL WHERE room_id = $1`,
		`DELETE FROM bookings WHERE room_id = $1`,
		`DELETE FROM cars WHERE room_id = $1`,
	}
	for _, sql := range steps {
		if _, err := tx.Exec(ctx, sql, id); err != nil {
			return fmt.Errorf("delete room dependents: %w", err)
		}
	}
	tag, err := tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (r *RoomRepository) Count(ctx context.Context) (int64, int64, error) {
	var total, active int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM rooms`).Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("count rooms: %w", err)
	}
	return total, active, nil
}
