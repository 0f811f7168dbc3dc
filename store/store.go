package store

import (
	"context"
	"database/sql"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/inconshreveable/log15"
	_ "github.com/mattn/go-sqlite3"
)

// Store wraps a pooled *sql.DB with the read/write operations the
// session runtime and bootstrap need. One Store, one backend — the
// convention the Ethereum example's ethdb packages follow (DESIGN.md).
type Store struct {
	db  *sql.DB
	log log15.Logger

	// assetCache holds recently-seen AssetSpec identities (SPEC_FULL
	// §3.7 expansion) so GETPROPS/HASPROP-adjacent lookups and the
	// qAst/sAst/rAst wire ops don't round-trip to SQL on every hit.
	assetCache *lru.Cache[string, AssetCacheEntry]
}

// Open connects to the sqlite database at path (created if missing),
// enables foreign keys and WAL journaling, and runs idempotent schema
// creation (spec.md §4.L, §6.5).
func Open(ctx context.Context, path string, log log15.Logger) (*Store, error) {
	if log == nil {
		log = log15.New()
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(10)

	cache, err := lru.New[string, AssetCacheEntry](4096)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create asset cache: %w", err)
	}

	s := &Store{db: db, log: log.New("component", "store"), assetCache: cache}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE COLLATE NOCASE,
	password_hash TEXT NOT NULL DEFAULT '',
	wizard_password TEXT NOT NULL DEFAULT '',
	flags INTEGER NOT NULL DEFAULT 8,
	registration_date INTEGER NOT NULL,
	last_login INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);

CREATE TABLE IF NOT EXISTS rooms (
	room_id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	artist TEXT NOT NULL DEFAULT '',
	background_image TEXT NOT NULL DEFAULT '',
	flags INTEGER NOT NULL DEFAULT 0,
	max_occupancy INTEGER NOT NULL DEFAULT 0,
	faces_id INTEGER NOT NULL DEFAULT 0,
	room_data BLOB
);

CREATE TABLE IF NOT EXISTS props (
	prop_id INTEGER PRIMARY KEY AUTOINCREMENT,
	crc32 INTEGER NOT NULL UNIQUE,
	name TEXT NOT NULL,
	flags INTEGER NOT NULL DEFAULT 0,
	width INTEGER NOT NULL DEFAULT 0,
	height INTEGER NOT NULL DEFAULT 0,
	file_path TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_props_crc32 ON props(crc32);

CREATE TABLE IF NOT EXISTS room_loose_props (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id INTEGER NOT NULL REFERENCES rooms(room_id) ON DELETE CASCADE,
	prop_id INTEGER NOT NULL REFERENCES props(prop_id) ON DELETE CASCADE,
	pos_h INTEGER NOT NULL,
	pos_v INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_room_loose_props_room ON room_loose_props(room_id);

CREATE TABLE IF NOT EXISTS hotspots (
	hotspot_id INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id INTEGER NOT NULL REFERENCES rooms(room_id) ON DELETE CASCADE,
	id INTEGER NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	type INTEGER NOT NULL DEFAULT 0,
	dest_room_id INTEGER NOT NULL DEFAULT 0,
	dest_hotspot_id INTEGER NOT NULL DEFAULT 0,
	loc_h INTEGER NOT NULL DEFAULT 0,
	loc_v INTEGER NOT NULL DEFAULT 0,
	script_event_mask INTEGER NOT NULL DEFAULT 0,
	script_text TEXT NOT NULL DEFAULT '',
	state INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_hotspots_room ON hotspots(room_id);

CREATE TABLE IF NOT EXISTS hotspot_points (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hotspot_id INTEGER NOT NULL REFERENCES hotspots(hotspot_id) ON DELETE CASCADE,
	point_order INTEGER NOT NULL,
	pos_h INTEGER NOT NULL,
	pos_v INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_hotspot_points_hotspot ON hotspot_points(hotspot_id);

CREATE TABLE IF NOT EXISTS bans (
	ban_id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL DEFAULT 0,
	ip_address TEXT NOT NULL DEFAULT '',
	reason TEXT NOT NULL DEFAULT '',
	banned_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0,
	banned_by_user_id INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_bans_user ON bans(user_id);
CREATE INDEX IF NOT EXISTS idx_bans_ip ON bans(ip_address);
`

// defaultRooms seeds the lobby/gate and main hall on first boot
// (spec.md §6.5: "insert a minimal default room set... if the rooms
// table is empty").
var defaultRooms = []Room{
	{RoomID: 0, Name: "Gate", Artist: "System", MaxOccupancy: 50},
	{RoomID: 1, Name: "Main Hall", Artist: "System", MaxOccupancy: 100},
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms").Scan(&count); err != nil {
		return fmt.Errorf("store: count rooms: %w", err)
	}
	if count == 0 {
		for _, r := range defaultRooms {
			if err := s.CreateRoom(ctx, r); err != nil {
				return fmt.Errorf("store: seed default rooms: %w", err)
			}
		}
		s.log.Info("seeded default room set", "count", len(defaultRooms))
	}
	return nil
}
