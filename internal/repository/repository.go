// Package repository defines the persistence interfaces the allocation
// engine depends on, the domain error taxonomy, and the PostgreSQL,
// Redis, and in-memory implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist, or
// when no room satisfies a capacity requirement.
var ErrNotFound = errors.New("not found")

// ErrCapacityExceeded is returned when a booking asks for more
// participants than the room can hold.
var ErrCapacityExceeded = errors.New("participant count exceeds room capacity")

// ErrRoomBusy is returned when the per-room exclusion could not be
// acquired promptly. It is retryable; callers should back off and retry.
var ErrRoomBusy = errors.New("room is busy, retry later")

// SlotConflictError rejects a booking whose interval overlaps an
// existing one. It carries the conflicting booking for diagnostics.
type SlotConflictError struct {
	Conflict model.Booking
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot conflicts with booking %s [%s, %s)",
		e.Conflict.ID,
		e.Conflict.StartTime.Format("15:04:05"),
		e.Conflict.EndTime.Format("15:04:05"))
}

// RoomRepository handles persistence for rooms.
type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	List(ctx context.Context) ([]model.Room, error)
	GetByID(ctx context.Context, id string) (*model.Room, error)
	// FindByCapacity returns every room with capacity >= minCapacity.
	FindByCapacity(ctx context.Context, minCapacity int) ([]model.Room, error)
}

// BookingRepository handles persistence for bookings.
type BookingRepository interface {
	ListByRoom(ctx context.Context, roomID string) ([]model.Booking, error)
	// Commit atomically inserts the booking and advances the room's
	// last_allocated_at to the booking's creation time. The overlap check
	// is re-run under the room's exclusive lock inside the same
	// transaction, so either both writes happen or neither does, and two
	// overlapping bookings can never both commit — even across processes.
	Commit(ctx context.Context, booking *model.Booking) error
}

// LayoutRepository handles persistence for floor-plan layouts.
type LayoutRepository interface {
	// Load returns ErrNotFound when no layout is stored under id.
	Load(ctx context.Context, id string) (model.Layout, error)
	Save(ctx context.Context, id string, l model.Layout) error
}
