package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func scanRoom(row interface{ Scan(...any) error }) (Room, error) {
	var r Room
	var roomID int64
	err := row.Scan(&roomID, &r.Name, &r.Artist, &r.BackgroundImage,
		&r.Flags, &r.MaxOccupancy, &r.FacesID, &r.RoomData)
	r.RoomID = int16(roomID)
	return r, err
}

// GetRoom looks up a room by id (spec.md §4.L).
func (s *Store) GetRoom(ctx context.Context, roomID int16) (Room, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT room_id, name, artist, background_image, flags, max_occupancy, faces_id, room_data
		 FROM rooms WHERE room_id = ?`, roomID)
	r, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Room{}, ErrNotFound
	}
	if err != nil {
		return Room{}, fmt.Errorf("store: get room %d: %w", roomID, err)
	}
	return r, nil
}

// GetAllRooms returns every persisted room, ordered by id — used to
// answer ListOfAllRooms (spec.md §4.M).
func (s *Store) GetAllRooms(ctx context.Context) ([]Room, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT room_id, name, artist, background_image, flags, max_occupancy, faces_id, room_data
		 FROM rooms ORDER BY room_id`)
	if err != nil {
		return nil, fmt.Errorf("store: get all rooms: %w", err)
	}
	defer rows.Close()

	var out []Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan room: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateRoom inserts or replaces a room's persisted template header
// (loaded from a room-template file at startup or admin command,
// spec.md §3.7 lifecycle).
func (s *Store) CreateRoom(ctx context.Context, r Room) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rooms (room_id, name, artist, background_image, flags, max_occupancy, faces_id, room_data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(room_id) DO UPDATE SET
		   name=excluded.name, artist=excluded.artist, background_image=excluded.background_image,
		   flags=excluded.flags, max_occupancy=excluded.max_occupancy, faces_id=excluded.faces_id,
		   room_data=excluded.room_data`,
		r.RoomID, r.Name, r.Artist, r.BackgroundImage, r.Flags, r.MaxOccupancy, r.FacesID, r.RoomData)
	if err != nil {
		return fmt.Errorf("store: create room %d: %w", r.RoomID, err)
	}
	return nil
}

// GetRoomHotspots returns every hotspot belonging to roomID, ordered
// by their in-room id.
func (s *Store) GetRoomHotspots(ctx context.Context, roomID int16) ([]Hotspot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT hotspot_id, room_id, id, name, type, dest_room_id, dest_hotspot_id,
		        loc_h, loc_v, script_event_mask, script_text, state
		 FROM hotspots WHERE room_id = ? ORDER BY id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("store: get hotspots for room %d: %w", roomID, err)
	}
	defer rows.Close()

	var out []Hotspot
	for rows.Next() {
		var h Hotspot
		var rid, destRoomID, destHotspotID int64
		if err := rows.Scan(&h.HotspotID, &rid, &h.ID, &h.Name, &h.Type, &destRoomID,
			&destHotspotID, &h.LocH, &h.LocV, &h.ScriptEventMask, &h.ScriptText, &h.State); err != nil {
			return nil, fmt.Errorf("store: scan hotspot: %w", err)
		}
		h.RoomID = int16(rid)
		h.DestRoomID = int16(destRoomID)
		h.DestHotspotID = int16(destHotspotID)
		out = append(out, h)
	}
	return out, rows.Err()
}

// CreateHotspot inserts a hotspot belonging to roomID and returns its
// assigned row id.
func (s *Store) CreateHotspot(ctx context.Context, h Hotspot) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO hotspots (room_id, id, name, type, dest_room_id, dest_hotspot_id,
		                       loc_h, loc_v, script_event_mask, script_text, state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.RoomID, h.ID, h.Name, h.Type, h.DestRoomID, h.DestHotspotID,
		h.LocH, h.LocV, h.ScriptEventMask, h.ScriptText, h.State)
	if err != nil {
		return 0, fmt.Errorf("store: create hotspot in room %d: %w", h.RoomID, err)
	}
	return res.LastInsertId()
}

// GetHotspotPoints returns a hotspot's polygon vertices in order.
func (s *Store) GetHotspotPoints(ctx context.Context, hotspotID int64) ([]HotspotPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, hotspot_id, point_order, pos_h, pos_v
		 FROM hotspot_points WHERE hotspot_id = ? ORDER BY point_order`, hotspotID)
	if err != nil {
		return nil, fmt.Errorf("store: get points for hotspot %d: %w", hotspotID, err)
	}
	defer rows.Close()

	var out []HotspotPoint
	for rows.Next() {
		var p HotspotPoint
		if err := rows.Scan(&p.ID, &p.HotspotID, &p.Order, &p.PosH, &p.PosV); err != nil {
			return nil, fmt.Errorf("store: scan hotspot point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AddHotspotPoint appends one polygon vertex to hotspotID.
func (s *Store) AddHotspotPoint(ctx context.Context, p HotspotPoint) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hotspot_points (hotspot_id, point_order, pos_h, pos_v) VALUES (?, ?, ?, ?)`,
		p.HotspotID, p.Order, p.PosH, p.PosV)
	if err != nil {
		return fmt.Errorf("store: add point to hotspot %d: %w", p.HotspotID, err)
	}
	return nil
}

// GetRoomLooseProps returns every loose prop currently persisted for
// roomID.
func (s *Store) GetRoomLooseProps(ctx context.Context, roomID int16) ([]RoomLooseProp, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room_id, prop_id, pos_h, pos_v FROM room_loose_props WHERE room_id = ?`, roomID)
	if err != nil {
		return nil, fmt.Errorf("store: get loose props for room %d: %w", roomID, err)
	}
	defer rows.Close()

	var out []RoomLooseProp
	for rows.Next() {
		var p RoomLooseProp
		var rid int64
		if err := rows.Scan(&p.ID, &rid, &p.PropID, &p.PosH, &p.PosV); err != nil {
			return nil, fmt.Errorf("store: scan loose prop: %w", err)
		}
		p.RoomID = int16(rid)
		out = append(out, p)
	}
	return out, rows.Err()
}

// AddRoomLooseProp persists a prop dropped loose in a room (the
// ADDLOOSEPROP builtin, spec.md §4.J).
func (s *Store) AddRoomLooseProp(ctx context.Context, p RoomLooseProp) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO room_loose_props (room_id, prop_id, pos_h, pos_v) VALUES (?, ?, ?, ?)`,
		p.RoomID, p.PropID, p.PosH, p.PosV)
	if err != nil {
		return 0, fmt.Errorf("store: add loose prop to room %d: %w", p.RoomID, err)
	}
	return res.LastInsertId()
}

// ClearRoomLooseProps removes every persisted loose prop from roomID
// (the CLEARLOOSEPROPS builtin, spec.md §4.J).
func (s *Store) ClearRoomLooseProps(ctx context.Context, roomID int16) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM room_loose_props WHERE room_id = ?`, roomID)
	if err != nil {
		return fmt.Errorf("store: clear loose props for room %d: %w", roomID, err)
	}
	return nil
}
