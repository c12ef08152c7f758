package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/model"
	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 12, hour, min, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (*AllocationService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := NewAllocationService(store, store, 2*time.Second, zap.NewNop())
	return svc, store
}

func addRoom(t *testing.T, svc *AllocationService, name string, capacity int) *model.Room {
	t.Helper()
	room, err := svc.CreateRoom(context.Background(), model.CreateRoomRequest{
		Name:     name,
		Capacity: capacity,
	})
	require.NoError(t, err)
	return room
}

func TestCreateRoomValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, model.CreateRoomRequest{Name: "  ", Capacity: 4})
	assert.Error(t, err)

	_, err = svc.CreateRoom(ctx, model.CreateRoomRequest{Name: "R1", Capacity: 0})
	assert.Error(t, err)
}

func TestBookScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	r1 := addRoom(t, svc, "R1", 4)

	// Existing booking [10:00, 11:00).
	first, err := svc.Book(ctx, model.BookingRequest{
		RoomID: r1.ID, Requester: "alice", Participants: 3,
		StartTime: at(10, 0), EndTime: at(11, 0),
	})
	require.NoError(t, err)

	t.Run("back to back succeeds", func(t *testing.T) {
		_, err := svc.Book(ctx, model.BookingRequest{
			RoomID: r1.ID, Requester: "bob", Participants: 2,
			StartTime: at(11, 0), EndTime: at(11, 30),
		})
		assert.NoError(t, err)
	})

	t.Run("contained interval conflicts", func(t *testing.T) {
		_, err := svc.Book(ctx, model.BookingRequest{
			RoomID: r1.ID, Requester: "carol", Participants: 2,
			StartTime: at(10, 30), EndTime: at(10, 45),
		})
		var conflict *repository.SlotConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, first.ID, conflict.Conflict.ID,
			"rejection carries the conflicting booking")
	})

	t.Run("too many participants", func(t *testing.T) {
		_, err := svc.Book(ctx, model.BookingRequest{
			RoomID: r1.ID, Requester: "dave", Participants: 6,
			StartTime: at(12, 0), EndTime: at(13, 0),
		})
		assert.ErrorIs(t, err, repository.ErrCapacityExceeded)
	})
}

func TestBookPreconditions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	r1 := addRoom(t, svc, "R1", 4)

	tests := []struct {
		name string
		req  model.BookingRequest
	}{
		{"missing requester", model.BookingRequest{
			RoomID: r1.ID, Participants: 2, StartTime: at(9, 0), EndTime: at(10, 0)}},
		{"zero participants", model.BookingRequest{
			RoomID: r1.ID, Requester: "a", StartTime: at(9, 0), EndTime: at(10, 0)}},
		{"inverted interval", model.BookingRequest{
			RoomID: r1.ID, Requester: "a", Participants: 2,
			StartTime: at(10, 0), EndTime: at(9, 0)}},
		{"empty interval", model.BookingRequest{
			RoomID: r1.ID, Requester: "a", Participants: 2,
			StartTime: at(9, 0), EndTime: at(9, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Book(ctx, tt.req)
			assert.Error(t, err)

			bookings, err := svc.ListBookings(ctx, r1.ID)
			require.NoError(t, err)
			assert.Empty(t, bookings, "rejected requests must not change state")
		})
	}
}

func TestBookUnknownRoom(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Book(context.Background(), model.BookingRequest{
		RoomID: "does-not-exist", Requester: "a", Participants: 1,
		StartTime: at(9, 0), EndTime: at(10, 0),
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSuggestRoomBestFit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	addRoom(t, svc, "small", 4)
	addRoom(t, svc, "big", 6)

	room, err := svc.SuggestRoom(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, room.Capacity, "best fit returns the capacity-4 room")

	_, err = svc.SuggestRoom(ctx, 10)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAutoSelectionSpreadsLoad(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	addRoom(t, svc, "east", 4)
	addRoom(t, svc, "west", 4)

	// Two bookings without a room: the second lands on the other room
	// because the first advanced its target's last_allocated_at.
	b1, err := svc.Book(ctx, model.BookingRequest{
		Requester: "a", Participants: 2, StartTime: at(9, 0), EndTime: at(10, 0),
	})
	require.NoError(t, err)
	b2, err := svc.Book(ctx, model.BookingRequest{
		Requester: "b", Participants: 2, StartTime: at(9, 0), EndTime: at(10, 0),
	})
	require.NoError(t, err)

	assert.NotEqual(t, b1.RoomID, b2.RoomID)
}

// Under concurrent identical requests for one room, exactly one booking
// commits; every other caller sees the slot conflict.
func TestConcurrentBookingAtomicity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	r1 := addRoom(t, svc, "R1", 10)

	const callers = 32
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Book(ctx, model.BookingRequest{
				RoomID: r1.ID, Requester: "racer", Participants: 2,
				StartTime: at(10, 0), EndTime: at(11, 0),
			})
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		default:
			var conflict *repository.SlotConflictError
			require.ErrorAs(t, err, &conflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, conflicts)

	bookings, err := svc.ListBookings(ctx, r1.ID)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

// stallingBookings delays ListByRoom until released, keeping the room's
// exclusion slot occupied long enough for a second caller to time out.
type stallingBookings struct {
	repository.BookingRepository
	entered chan struct{}
	release chan struct{}
	stalled atomic.Bool
}

func (s *stallingBookings) ListByRoom(ctx context.Context, roomID string) ([]model.Booking, error) {
	if s.stalled.CompareAndSwap(false, true) {
		close(s.entered)
		<-s.release
	}
	return s.BookingRepository.ListByRoom(ctx, roomID)
}

func TestBookBusyWhenRoomLockHeld(t *testing.T) {
	store := repository.NewMemoryStore()
	stall := &stallingBookings{
		BookingRepository: store,
		entered:           make(chan struct{}),
		release:           make(chan struct{}),
	}
	svc := NewAllocationService(store, stall, 20*time.Millisecond, zap.NewNop())
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, model.CreateRoomRequest{Name: "R1", Capacity: 4})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Book(ctx, model.BookingRequest{
			RoomID: room.ID, Requester: "slow", Participants: 2,
			StartTime: at(9, 0), EndTime: at(10, 0),
		})
		done <- err
	}()

	// Wait until the first caller holds the room slot, then collide.
	<-stall.entered
	_, err = svc.Book(ctx, model.BookingRequest{
		RoomID: room.ID, Requester: "fast", Participants: 2,
		StartTime: at(12, 0), EndTime: at(13, 0),
	})
	assert.ErrorIs(t, err, repository.ErrRoomBusy)

	close(stall.release)
	require.NoError(t, <-done)
}

func TestBookDifferentRoomsDoNotContend(t *testing.T) {
	store := repository.NewMemoryStore()
	stall := &stallingBookings{
		BookingRepository: store,
		entered:           make(chan struct{}),
		release:           make(chan struct{}),
	}
	svc := NewAllocationService(store, stall, 20*time.Millisecond, zap.NewNop())
	ctx := context.Background()

	r1, err := svc.CreateRoom(ctx, model.CreateRoomRequest{Name: "R1", Capacity: 4})
	require.NoError(t, err)
	r2, err := svc.CreateRoom(ctx, model.CreateRoomRequest{Name: "R2", Capacity: 4})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Book(ctx, model.BookingRequest{
			RoomID: r1.ID, Requester: "slow", Participants: 2,
			StartTime: at(9, 0), EndTime: at(10, 0),
		})
		done <- err
	}()

	<-stall.entered
	// The other room's slot is free, so this proceeds immediately.
	_, err = svc.Book(ctx, model.BookingRequest{
		RoomID: r2.ID, Requester: "fast", Participants: 2,
		StartTime: at(9, 0), EndTime: at(10, 0),
	})
	assert.NoError(t, err)

	close(stall.release)
	require.NoError(t, <-done)
}

func TestBookUpdatesLastAllocatedAt(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	r1 := addRoom(t, svc, "R1", 4)
	require.True(t, r1.LastAllocatedAt.IsZero())

	booking, err := svc.Book(ctx, model.BookingRequest{
		RoomID: r1.ID, Requester: "a", Participants: 2,
		StartTime: at(9, 0), EndTime: at(10, 0),
	})
	require.NoError(t, err)

	updated, err := store.GetByID(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.CreatedAt, updated.LastAllocatedAt)
}

func TestListBookingsUnknownRoom(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ListBookings(context.Background(), "nope")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}
