package session

import (
	"sync"

	"github.com/palace-core/palace/iptscrae/roomscript"
)

// Catalog is the read-mostly table of parsed room declarations loaded
// from room-template files at startup (spec.md §4.G, §4.M). It is
// guarded by its own RWMutex, separate from Registry's: template
// content is immutable after load except for an operator's explicit
// reload, so most access is a read lookup that never contends with
// the hot per-connection occupancy path.
type Catalog struct {
	mu    sync.RWMutex
	rooms map[int16]roomscript.RoomDecl
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{rooms: make(map[int16]roomscript.RoomDecl)}
}

// Put installs or replaces a room's declaration.
func (c *Catalog) Put(decl roomscript.RoomDecl) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[decl.ID] = decl
}

// Get returns a room's declaration, if loaded.
func (c *Catalog) Get(roomID int16) (roomscript.RoomDecl, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.rooms[roomID]
	return d, ok
}

// RoomIDs returns every loaded room id, unordered.
func (c *Catalog) RoomIDs() []int16 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]int16, 0, len(c.rooms))
	for id := range c.rooms {
		ids = append(ids, id)
	}
	return ids
}

// FindDoor returns the DoorDecl with the given hotspot id in roomID,
// if any.
func (c *Catalog) FindDoor(roomID, hotspotID int16) (roomscript.DoorDecl, bool) {
	d, ok := c.Get(roomID)
	if !ok {
		return roomscript.DoorDecl{}, false
	}
	for _, door := range d.Doors {
		if door.ID == hotspotID {
			return door, true
		}
	}
	return roomscript.DoorDecl{}, false
}

// FindSpot returns the SpotDecl with the given hotspot id in roomID,
// if any.
func (c *Catalog) FindSpot(roomID, hotspotID int16) (roomscript.SpotDecl, bool) {
	d, ok := c.Get(roomID)
	if !ok {
		return roomscript.SpotDecl{}, false
	}
	for _, spot := range d.Spots {
		if spot.ID == hotspotID {
			return spot, true
		}
	}
	return roomscript.SpotDecl{}, false
}
