package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRoomRepository stores rooms in PostgreSQL using pgx directly
// (no ORM).
type PostgresRoomRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRoomRepository constructs a PostgresRoomRepository.
func NewPostgresRoomRepository(db *pgxpool.Pool) *PostgresRoomRepository {
	return &PostgresRoomRepository{db: db}
}

func (r *PostgresRoomRepository) Create(ctx context.Context, room *model.Room) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO rooms (id, name, capacity, last_allocated_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		room.ID, room.Name, room.Capacity, nullableTime(room.LastAllocatedAt), room.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

func (r *PostgresRoomRepository) List(ctx context.Context) ([]model.Room, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, capacity, last_allocated_at, created_at
		 FROM rooms
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()
	return scanRooms(rows)
}

func (r *PostgresRoomRepository) GetByID(ctx context.Context, id string) (*model.Room, error) {
	var room model.Room
	var last sql.NullTime
	err := r.db.QueryRow(ctx,
		`SELECT id, name, capacity, last_allocated_at, created_at
		 FROM rooms WHERE id = $1`,
		id,
	).Scan(&room.ID, &room.Name, &room.Capacity, &last, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	if last.Valid {
		room.LastAllocatedAt = last.Time
	}
	return &room, nil
}

func (r *PostgresRoomRepository) FindByCapacity(ctx context.Context, minCapacity int) ([]model.Room, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, capacity, last_allocated_at, created_at
		 FROM rooms
		 WHERE capacity >= $1`,
		minCapacity,
	)
	if err != nil {
		return nil, fmt.Errorf("find rooms by capacity: %w", err)
	}
	defer rows.Close()
	return scanRooms(rows)
}

func scanRooms(rows pgx.Rows) ([]model.Room, error) {
	var rooms []model.Room
	for rows.Next() {
		var room model.Room
		var last sql.NullTime
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &last, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		if last.Valid {
			room.LastAllocatedAt = last.Time
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// PostgresBookingRepository stores bookings in PostgreSQL.
type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

// NewPostgresBookingRepository constructs a PostgresBookingRepository.
func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{db: db}
}

func (r *PostgresBookingRepository) ListByRoom(ctx context.Context, roomID string) ([]model.Booking, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, room_id, requester, participants, start_time, end_time, created_at
		 FROM bookings
		 WHERE room_id = $1
		 ORDER BY start_time ASC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.RoomID, &b.Requester, &b.Participants,
			&b.StartTime, &b.EndTime, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// Commit performs the read-validate-write sequence inside a single
// transaction with a row-level lock on the room.
//
// Two concurrent commits for the same room would otherwise both read the
// same booking snapshot and both insert, producing an overlap. The
// SELECT ... FOR UPDATE serialises them: the second transaction blocks
// on the room row until the first commits, then re-runs the overlap
// query and sees the fresh booking.
func (r *PostgresBookingRepository) Commit(ctx context.Context, booking *model.Booking) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock the room row for the duration of the transaction.
	var capacity int
	err = tx.QueryRow(ctx,
		`SELECT capacity FROM rooms WHERE id = $1 FOR UPDATE`,
		booking.RoomID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock room row: %w", err)
	}
	if booking.Participants > capacity {
		return ErrCapacityExceeded
	}

	// Re-check for overlap under the lock. Half-open semantics: a
	// booking ending exactly when this one starts is not a conflict.
	var conflict model.Booking
	err = tx.QueryRow(ctx,
		`SELECT id, room_id, requester, participants, start_time, end_time, created_at
		 FROM bookings
		 WHERE room_id = $1 AND start_time < $3 AND end_time > $2
		 ORDER BY start_time ASC
		 LIMIT 1`,
		booking.RoomID, booking.StartTime, booking.EndTime,
	).Scan(&conflict.ID, &conflict.RoomID, &conflict.Requester, &conflict.Participants,
		&conflict.StartTime, &conflict.EndTime, &conflict.CreatedAt)
	if err == nil {
		return &SlotConflictError{Conflict: conflict}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check overlap: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO bookings (id, room_id, requester, participants, start_time, end_time, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		booking.ID, booking.RoomID, booking.Requester, booking.Participants,
		booking.StartTime, booking.EndTime, booking.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE rooms SET last_allocated_at = $2 WHERE id = $1`,
		booking.RoomID, booking.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("update room allocation time: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
