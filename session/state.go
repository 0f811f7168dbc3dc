// Package session is the asynchronous TCP server that terminates
// client connections, authenticates users, maintains in-memory room
// and user state, dispatches room/user/chat events, persists users
// and loose props and checks bans through store.Store (spec.md
// §4.M, §3.6, §5).
package session

import (
	"sync"

	"github.com/palace-core/palace/proto"
	"github.com/palace-core/palace/wire"
)

// Session is one logged-on user's in-memory state (spec.md §3.6).
// The outbox channel is the only field the dispatcher writes from a
// goroutine other than the connection's own — everything else is
// owned by the connection goroutine and the Registry's lock.
type Session struct {
	UserID      int32
	Username    string
	CurrentRoom int16
	Addr        string
	Order       proto.ByteOrder

	Face  int16
	Color int16
	Props []wire.AssetSpec
	Pos   wire.Point

	// Outbox is a channel of pre-encoded frames the connection's
	// write loop drains (spec.md §3.6, §5). It is buffered to 256
	// frames and is not unbounded: once it is full, further frames
	// sent via trySend are dropped.
	Outbox chan []byte
}

// newOutbox returns a channel buffered to 256 frames, sized to absorb
// a burst of broadcast traffic. The capacity is fixed: Broadcast and
// Send enqueue via trySend, which never blocks and drops a frame when
// the buffer is full.
func newOutbox() chan []byte {
	return make(chan []byte, 256)
}

// ActiveRoom is an in-memory room: the ordered list of UserIds
// currently occupying it, plus the mutable door/spot state a
// room-authored script can change at runtime (spec.md §3.6, §4.G).
// Ordering of Occupants matches join order, so UserList frames
// present occupants in a stable, predictable sequence. All of this is
// guarded by the owning Registry's single RWMutex, never its own
// lock, per spec.md §5.
type ActiveRoom struct {
	RoomID     int16
	Occupants  []int32
	DoorLocked map[int16]bool
	SpotState  map[int16]int16
	LooseProps []LooseProp
}

// LooseProp is a prop dropped on a room's floor at runtime (distinct
// from store.RoomLooseProp, which is its persisted form).
type LooseProp struct {
	PropID wire.AssetSpec
	Pos    wire.Point
}

func (r *ActiveRoom) indexOf(userID int32) int {
	for i, id := range r.Occupants {
		if id == userID {
			return i
		}
	}
	return -1
}

func newActiveRoom(roomID int16) *ActiveRoom {
	return &ActiveRoom{
		RoomID:     roomID,
		DoorLocked: make(map[int16]bool),
		SpotState:  make(map[int16]int16),
	}
}

func (r *ActiveRoom) remove(userID int32) {
	i := r.indexOf(userID)
	if i < 0 {
		return
	}
	r.Occupants = append(r.Occupants[:i], r.Occupants[i+1:]...)
}

// Registry holds every live Session and ActiveRoom, guarded by a
// single RWMutex (spec.md §5: "Shared state... both live behind a
// single read/write lock; read-heavy operations... acquire a shared
// guard, mutations... acquire an exclusive guard. Critical sections
// are bounded — they do not perform I/O while holding the lock").
type Registry struct {
	mu       sync.RWMutex
	sessions map[int32]*Session
	rooms    map[int16]*ActiveRoom
	nextID   int32
}

// NewRegistry returns an empty Registry. UserId allocation starts at
// 1 — 0 is reserved as "none" (spec.md §3.1).
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[int32]*Session),
		rooms:    make(map[int16]*ActiveRoom),
		nextID:   1,
	}
}

// AllocateUserID hands out the next monotonically increasing UserId.
func (reg *Registry) AllocateUserID() int32 {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	id := reg.nextID
	reg.nextID++
	return id
}

// Join registers sess and places it in roomID's occupant list,
// creating the ActiveRoom if this is its first occupant (spec.md
// §3.6 invariants).
func (reg *Registry) Join(sess *Session, roomID int16) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	sess.CurrentRoom = roomID
	reg.sessions[sess.UserID] = sess
	room, ok := reg.rooms[roomID]
	if !ok {
		room = newActiveRoom(roomID)
		reg.rooms[roomID] = room
	}
	room.Occupants = append(room.Occupants, sess.UserID)
}

// Move transfers userID from its current room to dest, returning the
// old room id. Removing the last occupant of a room deletes the
// ActiveRoom entirely (spec.md §3.6 invariant).
func (reg *Registry) Move(userID int32, dest int16) (oldRoom int16, ok bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	sess, exists := reg.sessions[userID]
	if !exists {
		return 0, false
	}
	oldRoom = sess.CurrentRoom
	if old, ok := reg.rooms[oldRoom]; ok {
		old.remove(userID)
		if len(old.Occupants) == 0 {
			delete(reg.rooms, oldRoom)
		}
	}
	sess.CurrentRoom = dest
	room, ok := reg.rooms[dest]
	if !ok {
		room = newActiveRoom(dest)
		reg.rooms[dest] = room
	}
	room.Occupants = append(room.Occupants, userID)
	return oldRoom, true
}

// Leave removes userID from shared state entirely, on connection
// close (spec.md §4.M "Graceful shutdown").
func (reg *Registry) Leave(userID int32) (roomID int16, ok bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	sess, exists := reg.sessions[userID]
	if !exists {
		return 0, false
	}
	roomID = sess.CurrentRoom
	if room, ok := reg.rooms[roomID]; ok {
		room.remove(userID)
		if len(room.Occupants) == 0 {
			delete(reg.rooms, roomID)
		}
	}
	delete(reg.sessions, userID)
	close(sess.Outbox)
	return roomID, true
}

// allSessions returns a snapshot of every currently connected
// session, for server-wide fanout (GlobalMsg, superuser broadcast).
func (reg *Registry) allSessions() []*Session {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*Session, 0, len(reg.sessions))
	for _, sess := range reg.sessions {
		out = append(out, sess)
	}
	return out
}

// Get returns the live Session for userID, if connected.
func (reg *Registry) Get(userID int32) (*Session, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	sess, ok := reg.sessions[userID]
	return sess, ok
}

// GetByUsername finds a currently-connected session by name,
// case-insensitively, for the duplicate-logon check (spec.md §9).
func (reg *Registry) GetByUsername(username string) (*Session, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	for _, sess := range reg.sessions {
		if equalFold(sess.Username, username) {
			return sess, true
		}
	}
	return nil, false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// Occupants returns a copy of roomID's current occupant list, or nil
// if the room has no ActiveRoom (i.e. is empty).
func (reg *Registry) Occupants(roomID int16) []int32 {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]int32, len(room.Occupants))
	copy(out, room.Occupants)
	return out
}

// RoomOccupantCount reports how many sessions currently occupy
// roomID, for ListOfAllRooms (spec.md §4.M).
func (reg *Registry) RoomOccupantCount(roomID int16) int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return 0
	}
	return len(room.Occupants)
}

// Room returns the live ActiveRoom for roomID, if it currently has
// any occupants. Callers must not mutate the fields of the returned
// value without going through a Registry method — it is a direct
// pointer into registry-owned state, exposed only so door/spot
// builtins can read current lock and picture state.
func (reg *Registry) Room(roomID int16) (*ActiveRoom, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[roomID]
	return room, ok
}

// SetDoorLocked sets a hotspot's lock state within roomID, creating
// the ActiveRoom if the room is currently unoccupied but still
// reachable (e.g. a scheduled script locking a door ahead of anyone
// entering).
func (reg *Registry) SetDoorLocked(roomID, hotspotID int16, locked bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		room = newActiveRoom(roomID)
		reg.rooms[roomID] = room
	}
	room.DoorLocked[hotspotID] = locked
}

// IsDoorLocked reports a hotspot's current lock state within roomID.
func (reg *Registry) IsDoorLocked(roomID, hotspotID int16) bool {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return false
	}
	return room.DoorLocked[hotspotID]
}

// SetSpotState sets a hotspot's current picture-state index.
func (reg *Registry) SetSpotState(roomID, hotspotID int16, state int16) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		room = newActiveRoom(roomID)
		reg.rooms[roomID] = room
	}
	room.SpotState[hotspotID] = state
}

// AddLooseProp appends a loose prop to roomID's in-memory floor.
func (reg *Registry) AddLooseProp(roomID int16, prop LooseProp) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		room = newActiveRoom(roomID)
		reg.rooms[roomID] = room
	}
	room.LooseProps = append(room.LooseProps, prop)
}

// ClearLooseProps empties roomID's in-memory floor.
func (reg *Registry) ClearLooseProps(roomID int16) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if room, ok := reg.rooms[roomID]; ok {
		room.LooseProps = nil
	}
}

// Broadcast encodes payload for every occupant of roomID except
// excludeUserID (pass 0 to exclude no one, since 0 is never a live
// UserId), in that recipient's own byte order, and enqueues it on
// their outbox. Lookup happens under a read guard; encoding and
// delivery happen without holding the lock (spec.md §5: "the
// dispatcher enqueues copies of the broadcast message to each
// recipient's outbox and releases the lock").
func (reg *Registry) Broadcast(roomID int16, excludeUserID int32, ref int32, payload proto.Payload) {
	reg.mu.RLock()
	room, ok := reg.rooms[roomID]
	if !ok {
		reg.mu.RUnlock()
		return
	}
	targets := make([]*Session, 0, len(room.Occupants))
	for _, uid := range room.Occupants {
		if uid == excludeUserID {
			continue
		}
		if sess, ok := reg.sessions[uid]; ok {
			targets = append(targets, sess)
		}
	}
	reg.mu.RUnlock()

	for _, sess := range targets {
		trySend(sess.Outbox, proto.EncodeFrame(ref, payload, sess.Order))
	}
}

// Send encodes payload in userID's own byte order and enqueues it on
// their outbox, if connected.
func (reg *Registry) Send(userID int32, ref int32, payload proto.Payload) bool {
	sess, ok := reg.Get(userID)
	if !ok {
		return false
	}
	trySend(sess.Outbox, proto.EncodeFrame(ref, payload, sess.Order))
	return true
}

// trySend enqueues frame without blocking the caller. A closed or
// full outbox silently drops the frame rather than failing the
// broadcaster (spec.md §5 "Cancellation": "Broadcast sends that
// target a closed receiver are silently dropped").
func trySend(outbox chan []byte, frame []byte) {
	defer func() { recover() }() // guards against a send racing Leave's close(outbox)
	select {
	case outbox <- frame:
	default:
	}
}
