// Package service implements the allocation and reconciliation engine:
// room suggestion, atomic booking, and layout merging. It orchestrates
// the pure schedule/layout logic against the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/layout"
	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/model"
	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/repository"
	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/schedule"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLockWait bounds how long Book waits for a room's exclusion slot
// before giving up with the retryable busy error.
const DefaultLockWait = 250 * time.Millisecond

// AllocationService coordinates room selection and booking.
type AllocationService struct {
	rooms    repository.RoomRepository
	bookings repository.BookingRepository
	locks    *roomLocks
	lockWait time.Duration
	logger   *zap.Logger
}

// NewAllocationService constructs an AllocationService. A non-positive
// lockWait falls back to DefaultLockWait.
func NewAllocationService(
	rooms repository.RoomRepository,
	bookings repository.BookingRepository,
	lockWait time.Duration,
	logger *zap.Logger,
) *AllocationService {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &AllocationService{
		rooms:    rooms,
		bookings: bookings,
		locks:    newRoomLocks(),
		lockWait: lockWait,
		logger:   logger,
	}
}

// CreateRoom validates the request and persists a new room.
func (s *AllocationService) CreateRoom(ctx context.Context, req model.CreateRoomRequest) (*model.Room, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("room name is required")
	}
	if req.Capacity <= 0 {
		return nil, fmt.Errorf("capacity must be a positive integer")
	}

	room := &model.Room{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Capacity:  req.Capacity,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	s.logger.Info("room created",
		zap.String("room_id", room.ID),
		zap.Int("capacity", room.Capacity))
	return room, nil
}

// ListRooms returns all rooms.
func (s *AllocationService) ListRooms(ctx context.Context) ([]model.Room, error) {
	return s.rooms.List(ctx)
}

// GetRoom returns a single room by ID.
func (s *AllocationService) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, fmt.Errorf("room id is required")
	}
	return s.rooms.GetByID(ctx, id)
}

// ListBookings returns all bookings for a room, soonest first.
func (s *AllocationService) ListBookings(ctx context.Context, roomID string) ([]model.Booking, error) {
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	return s.bookings.ListByRoom(ctx, roomID)
}

// SuggestRoom returns the best-fit room for the required capacity:
// smallest sufficient capacity, least recently allocated among equals,
// lowest ID as the final tie-break. Returns ErrNotFound when no room is
// large enough.
func (s *AllocationService) SuggestRoom(ctx context.Context, requiredCapacity int) (*model.Room, error) {
	if requiredCapacity <= 0 {
		return nil, fmt.Errorf("required capacity must be a positive integer")
	}
	candidates, err := s.rooms.FindByCapacity(ctx, requiredCapacity)
	if err != nil {
		return nil, err
	}
	room, ok := schedule.SelectRoom(candidates, requiredCapacity)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return room, nil
}

// Book resolves a target room (directly or via the selector), validates
// the candidate interval against existing bookings, and commits. The
// read-validate-write sequence runs under the room's exclusion slot so
// two overlapping requests for the same room can never both succeed;
// requests for different rooms proceed without contention.
//
// On any rejection no state changes: the commit itself is a single
// transaction at the repository layer.
func (s *AllocationService) Book(ctx context.Context, req model.BookingRequest) (*model.Booking, error) {
	req.Requester = strings.TrimSpace(req.Requester)
	if req.Requester == "" {
		return nil, fmt.Errorf("requester is required")
	}
	if req.Participants <= 0 {
		return nil, fmt.Errorf("participants must be a positive integer")
	}
	candidate := schedule.Interval{Start: req.StartTime, End: req.EndTime}
	if !candidate.Valid() {
		return nil, fmt.Errorf("start time must be before end time")
	}

	room, err := s.resolveRoom(ctx, req)
	if err != nil {
		return nil, err
	}
	if !room.Fits(req.Participants) {
		return nil, repository.ErrCapacityExceeded
	}

	release, ok := s.locks.acquire(ctx, room.ID, s.lockWait)
	if !ok {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, repository.ErrRoomBusy
	}
	defer release()

	existing, err := s.bookings.ListByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	if conflict := schedule.FirstConflict(candidate, existing); conflict != nil {
		return nil, &repository.SlotConflictError{Conflict: *conflict}
	}

	booking := &model.Booking{
		ID:           uuid.New().String(),
		RoomID:       room.ID,
		Requester:    req.Requester,
		Participants: req.Participants,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.bookings.Commit(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info("booking committed",
		zap.String("booking_id", booking.ID),
		zap.String("room_id", room.ID),
		zap.Time("start", booking.StartTime),
		zap.Time("end", booking.EndTime))
	return booking, nil
}

func (s *AllocationService) resolveRoom(ctx context.Context, req model.BookingRequest) (*model.Room, error) {
	if req.RoomID != "" {
		return s.rooms.GetByID(ctx, req.RoomID)
	}
	return s.SuggestRoom(ctx, req.Participants)
}

// LayoutService merges and persists floor-plan layouts.
type LayoutService struct {
	layouts repository.LayoutRepository
	logger  *zap.Logger
}

// NewLayoutService constructs a LayoutService.
func NewLayoutService(layouts repository.LayoutRepository, logger *zap.Logger) *LayoutService {
	return &LayoutService{layouts: layouts, logger: logger}
}

// Merge combines two layouts last-writer-wins. Pure; never fails.
func (s *LayoutService) Merge(local, remote model.Layout) model.Layout {
	return layout.Merge(local, remote)
}

// GetLayout loads a stored layout by ID.
func (s *LayoutService) GetLayout(ctx context.Context, id string) (model.Layout, error) {
	if id == "" {
		return nil, fmt.Errorf("layout id is required")
	}
	return s.layouts.Load(ctx, id)
}

// Sync merges a client's layout into the stored one and persists the
// result. A missing stored layout is treated as empty, so the first sync
// simply stores the client's state. Store failures surface as errors;
// the merge itself cannot fail, and because it is convergent, retrying
// a sync (or syncing the same state twice) is harmless.
func (s *LayoutService) Sync(ctx context.Context, id string, client model.Layout) (model.Layout, error) {
	if id == "" {
		return nil, fmt.Errorf("layout id is required")
	}
	stored, err := s.layouts.Load(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	merged := layout.Merge(stored, client)
	if err := s.layouts.Save(ctx, id, merged); err != nil {
		return nil, err
	}
	s.logger.Info("layout synced",
		zap.String("layout_id", id),
		zap.Int("elements", len(merged)))
	return merged, nil
}
