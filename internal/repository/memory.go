package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/model"
	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/schedule"
)

// MemoryStore is an in-memory implementation of the room, booking, and
// layout repositories behind a single mutex. It backs the unit tests and
// the DB_ENABLED=false development mode.
type MemoryStore struct {
	mu       sync.Mutex
	rooms    map[string]model.Room
	bookings map[string][]model.Booking // keyed by room ID
	layouts  map[string]model.Layout
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:    make(map[string]model.Room),
		bookings: make(map[string][]model.Booking),
		layouts:  make(map[string]model.Layout),
	}
}

func (s *MemoryStore) Create(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = *room
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := make([]model.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
	return rooms, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &room, nil
}

func (s *MemoryStore) FindByCapacity(ctx context.Context, minCapacity int) ([]model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rooms []model.Room
	for _, r := range s.rooms {
		if r.Capacity >= minCapacity {
			rooms = append(rooms, r)
		}
	}
	return rooms, nil
}

func (s *MemoryStore) ListByRoom(ctx context.Context, roomID string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, len(s.bookings[roomID]))
	copy(out, s.bookings[roomID])
	return out, nil
}

// Commit mirrors the Postgres transaction: room existence, capacity, and
// overlap are all re-checked inside the critical section, and the
// booking insert and room update land together or not at all.
func (s *MemoryStore) Commit(ctx context.Context, booking *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[booking.RoomID]
	if !ok {
		return ErrNotFound
	}
	if booking.Participants > room.Capacity {
		return ErrCapacityExceeded
	}

	candidate := schedule.Interval{Start: booking.StartTime, End: booking.EndTime}
	if conflict := schedule.FirstConflict(candidate, s.bookings[booking.RoomID]); conflict != nil {
		return &SlotConflictError{Conflict: *conflict}
	}

	s.bookings[booking.RoomID] = append(s.bookings[booking.RoomID], *booking)
	room.LastAllocatedAt = booking.CreatedAt
	s.rooms[booking.RoomID] = room
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (model.Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.layouts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, id string, l model.Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[id] = l.Clone()
	return nil
}
