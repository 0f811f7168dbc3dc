package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "palace.db")
	s, err := Open(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenSeedsDefaultRooms(t *testing.T) {
	s := openTestStore(t)
	rooms, err := s.GetAllRooms(context.Background())
	if err != nil {
		t.Fatalf("GetAllRooms: %v", err)
	}
	if len(rooms) != len(defaultRooms) {
		t.Fatalf("expected %d seeded rooms, got %d", len(defaultRooms), len(rooms))
	}
	if rooms[0].RoomID != 0 || rooms[0].Name != "Gate" {
		t.Fatalf("expected room 0 to be the Gate, got %+v", rooms[0])
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palace.db")
	ctx := context.Background()

	s1, err := Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if _, err := s1.CreateUser(ctx, "alice", ""); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	s1.Close()

	s2, err := Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer s2.Close()

	u, err := s2.GetUserByName(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByName after reopen: %v", err)
	}
	if u.Username != "alice" {
		t.Fatalf("expected alice to survive reopen, got %+v", u)
	}

	rooms, err := s2.GetAllRooms(ctx)
	if err != nil {
		t.Fatalf("GetAllRooms after reopen: %v", err)
	}
	if len(rooms) != len(defaultRooms) {
		t.Fatalf("reopen should not reseed rooms, got %d", len(rooms))
	}
}

func TestCreateAndLookupUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.CreateUser(ctx, "Bob", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	byName, err := s.GetUserByName(ctx, "bob") // COLLATE NOCASE
	if err != nil {
		t.Fatalf("GetUserByName case-insensitive: %v", err)
	}
	if byName.UserID != id {
		t.Fatalf("expected user id %d, got %d", id, byName.UserID)
	}

	byID, err := s.GetUserByID(ctx, id)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if byID.Username != "Bob" {
		t.Fatalf("expected username Bob, got %q", byID.Username)
	}

	if _, err := s.GetUserByName(ctx, "nobody"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateLastLogin(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.CreateUser(ctx, "carol", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	before, err := s.GetUserByID(ctx, id)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if before.LastLogin == 0 {
		t.Fatalf("expected a non-zero last_login on creation")
	}
	if err := s.UpdateLastLogin(ctx, id); err != nil {
		t.Fatalf("UpdateLastLogin: %v", err)
	}
}

func TestBans(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.CreateUser(ctx, "dave", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	banned, err := s.IsUserBanned(ctx, id)
	if err != nil {
		t.Fatalf("IsUserBanned: %v", err)
	}
	if banned {
		t.Fatalf("dave should not be banned yet")
	}

	if _, err := s.CreateBan(ctx, Ban{UserID: id, Reason: "testing"}); err != nil {
		t.Fatalf("CreateBan: %v", err)
	}
	banned, err = s.IsUserBanned(ctx, id)
	if err != nil {
		t.Fatalf("IsUserBanned after ban: %v", err)
	}
	if !banned {
		t.Fatalf("dave should be banned")
	}

	ipBanned, err := s.IsIPBanned(ctx, "203.0.113.1")
	if err != nil {
		t.Fatalf("IsIPBanned: %v", err)
	}
	if ipBanned {
		t.Fatalf("unrelated ip should not be banned")
	}
	if _, err := s.CreateBan(ctx, Ban{IPAddress: "203.0.113.1"}); err != nil {
		t.Fatalf("CreateBan by ip: %v", err)
	}
	ipBanned, err = s.IsIPBanned(ctx, "203.0.113.1")
	if err != nil {
		t.Fatalf("IsIPBanned after ban: %v", err)
	}
	if !ipBanned {
		t.Fatalf("ip should now be banned")
	}
}

func TestExpiredBanDoesNotCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.CreateUser(ctx, "erin", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := s.CreateBan(ctx, Ban{UserID: id, ExpiresAt: 1}); err != nil { // long expired
		t.Fatalf("CreateBan: %v", err)
	}
	banned, err := s.IsUserBanned(ctx, id)
	if err != nil {
		t.Fatalf("IsUserBanned: %v", err)
	}
	if banned {
		t.Fatalf("expired ban should not count as banned")
	}
}

func TestHotspotsAndPoints(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	hsID, err := s.CreateHotspot(ctx, Hotspot{RoomID: 0, ID: 1, Name: "Door to Hall", Type: 1, DestRoomID: 1})
	if err != nil {
		t.Fatalf("CreateHotspot: %v", err)
	}
	for i, pt := range [][2]int16{{0, 0}, {10, 0}, {10, 10}, {0, 10}} {
		if err := s.AddHotspotPoint(ctx, HotspotPoint{HotspotID: hsID, Order: i, PosH: pt[0], PosV: pt[1]}); err != nil {
			t.Fatalf("AddHotspotPoint: %v", err)
		}
	}

	hotspots, err := s.GetRoomHotspots(ctx, 0)
	if err != nil {
		t.Fatalf("GetRoomHotspots: %v", err)
	}
	if len(hotspots) != 1 || hotspots[0].Name != "Door to Hall" {
		t.Fatalf("expected one hotspot named Door to Hall, got %+v", hotspots)
	}

	points, err := s.GetHotspotPoints(ctx, hsID)
	if err != nil {
		t.Fatalf("GetHotspotPoints: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 polygon points, got %d", len(points))
	}
	if points[1].PosH != 10 {
		t.Fatalf("expected points to come back in order, got %+v", points)
	}
}

func TestRoomLoosePropsLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	propID, err := s.RegisterProp(ctx, Prop{CRC32: 0xDEADBEEF, Name: "hat"})
	if err != nil {
		t.Fatalf("RegisterProp: %v", err)
	}
	// Re-registering the same crc32 must not create a duplicate row.
	again, err := s.RegisterProp(ctx, Prop{CRC32: 0xDEADBEEF, Name: "hat"})
	if err != nil {
		t.Fatalf("RegisterProp (dup): %v", err)
	}
	if again != propID {
		t.Fatalf("expected re-registration to return the same prop id, got %d != %d", again, propID)
	}

	if _, err := s.AddRoomLooseProp(ctx, RoomLooseProp{RoomID: 0, PropID: propID, PosH: 5, PosV: 5}); err != nil {
		t.Fatalf("AddRoomLooseProp: %v", err)
	}
	props, err := s.GetRoomLooseProps(ctx, 0)
	if err != nil {
		t.Fatalf("GetRoomLooseProps: %v", err)
	}
	if len(props) != 1 {
		t.Fatalf("expected 1 loose prop, got %d", len(props))
	}

	if err := s.ClearRoomLooseProps(ctx, 0); err != nil {
		t.Fatalf("ClearRoomLooseProps: %v", err)
	}
	props, err = s.GetRoomLooseProps(ctx, 0)
	if err != nil {
		t.Fatalf("GetRoomLooseProps after clear: %v", err)
	}
	if len(props) != 0 {
		t.Fatalf("expected loose props cleared, got %d", len(props))
	}
}

func TestAssetCache(t *testing.T) {
	s := openTestStore(t)
	if _, ok := s.LookupAsset("Prop", 42, 0); ok {
		t.Fatalf("expected no cached entry before NoteAssetSeen")
	}
	s.NoteAssetSeen("Prop", 42, 0xCAFE)
	entry, ok := s.LookupAsset("Prop", 42, 0xCAFE)
	if !ok {
		t.Fatalf("expected cached entry after NoteAssetSeen")
	}
	if entry.AssetID != 42 || entry.CRC32 != 0xCAFE {
		t.Fatalf("unexpected cache entry: %+v", entry)
	}
}
