// Package model defines the core domain types for the workspace
// management backend: meeting rooms, bookings, and floor-plan layouts.
package model

import (
	"encoding/json"
	"time"
)

// Room is a bookable meeting room. Capacity is fixed at creation;
// LastAllocatedAt moves forward on every successful booking and is the
// zero time for rooms that have never been booked.
type Room struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Capacity        int       `json:"capacity"`
	LastAllocatedAt time.Time `json:"last_allocated_at,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Fits reports whether the room can hold the given number of participants.
func (r *Room) Fits(participants int) bool {
	return participants <= r.Capacity
}

// Booking is a committed reservation of a room for the half-open time
// range [StartTime, EndTime). Bookings are immutable once committed.
type Booking struct {
	ID           string    `json:"id"`
	RoomID       string    `json:"room_id"`
	Requester    string    `json:"requester"`
	Participants int       `json:"participants"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	CreatedAt    time.Time `json:"created_at"`
}

// LayoutElement is one positioned element of a floor plan. The payload is
// opaque to the merge logic; Timestamp is assigned monotonically by the
// client that wrote the element.
type LayoutElement struct {
	Value     json.RawMessage `json:"value"`
	Timestamp int64           `json:"timestamp"`
}

// Layout maps element keys to their latest known state.
type Layout map[string]LayoutElement

// Clone returns a copy of the layout. Element payloads are shared;
// callers must not mutate them in place.
func (l Layout) Clone() Layout {
	out := make(Layout, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// CreateRoomRequest is the payload for creating a room.
type CreateRoomRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// BookingRequest asks for a room over a time range. RoomID is optional:
// when empty the engine selects the best-fit room itself.
type BookingRequest struct {
	RoomID       string    `json:"room_id,omitempty"`
	Requester    string    `json:"requester"`
	Participants int       `json:"participants"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// MergeLayoutsRequest carries two independently edited layouts to merge.
type MergeLayoutsRequest struct {
	Local  Layout `json:"local"`
	Remote Layout `json:"remote"`
}

// ErrorResponse is a standard JSON error envelope. Conflict is populated
// only for slot-conflict rejections and carries the booking that blocked
// the request.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Conflict *Booking `json:"conflict,omitempty"`
}
