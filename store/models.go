// Package store is the durable persistence layer for users, rooms,
// hotspots, props and bans (spec.md §3.7, §4.L). It wraps a pooled
// SQL connection with typed, context-scoped read/write methods; schema
// creation is idempotent and runs once at Open.
package store

// User is a persisted account row, created on first successful logon
// (guest autocreate) and kept indefinitely (spec.md §3.7).
type User struct {
	UserID          int64
	Username        string
	PasswordHash    string // empty for guests
	WizardPassword  string // empty unless the user holds wizard status
	Flags           int64
	RegistrationDate int64 // unix seconds
	LastLogin       int64  // unix seconds, 0 if never
}

// Room is a persisted room template header; the declarative room-file
// VarBuf content (strings, polygons, pictures) lives in Hotspot/
// HotspotPoint rows and the in-memory template cache, not here —
// RoomData holds the last wire-encoded RoomRec bytes so a restart
// doesn't require reparsing room files before the room can be served.
type Room struct {
	RoomID          int16
	Name            string
	Artist          string
	BackgroundImage string
	Flags           int64
	MaxOccupancy    int64
	FacesID         int32
	RoomData        []byte
}

// Hotspot is a persisted hotspot belonging to a room (spec.md §3.4,
// §3.7). Polygon vertices are stored separately as HotspotPoint rows.
type Hotspot struct {
	HotspotID       int64
	RoomID          int16
	ID              int16
	Name            string
	Type            int16
	DestRoomID      int16
	DestHotspotID   int16
	LocH            int16
	LocV            int16
	ScriptEventMask uint32
	ScriptText      string
	State           int16
}

// HotspotPoint is one polygon vertex of a Hotspot, ordered by Order.
type HotspotPoint struct {
	ID        int64
	HotspotID int64
	Order     int
	PosH      int16
	PosV      int16
}

// Prop is a registered avatar accessory, uniquely identified by its
// asset CRC32 (spec.md §3.7: "Prop(prop_id uniquely by crc32)").
type Prop struct {
	PropID    int64
	CRC32     uint32
	Name      string
	Flags     int64
	Width     int16
	Height    int16
	FilePath  string
	CreatedAt int64
}

// RoomLooseProp is a prop dropped loose on a room's floor, persisted
// so it survives a server restart.
type RoomLooseProp struct {
	ID     int64
	RoomID int16
	PropID int64
	PosH   int16
	PosV   int16
}

// Ban is an entry in the ban list, keyed by either a user id or an IP
// address (or both), with an optional expiry (spec.md §3.7).
type Ban struct {
	BanID          int64
	UserID         int64 // 0 if this ban is IP-only
	IPAddress      string
	Reason         string
	BannedAt       int64
	ExpiresAt      int64 // 0 means never
	BannedByUserID int64
}

// AssetCacheEntry is a lookup-table row mapping an asset identity to
// the last time the server observed it (SPEC_FULL §3.7 expansion):
// pure identity metadata, never asset bytes — the asset codec/storage
// layer is out of scope (spec.md §1).
type AssetCacheEntry struct {
	AssetType string
	AssetID   int32
	CRC32     uint32
	LastSeen  int64
}
