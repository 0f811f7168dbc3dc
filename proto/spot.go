package proto

import "github.com/palace-core/palace/wire"

func init() {
	register(KindSpotState, decodeSpotState)
	register(KindSpotStateLocal, decodeSpotStateLocal)
	register(KindDoorLockStatus, decodeDoorLockStatus)
	register(KindSpotStateQuery, decodeSpotStateQuery)
	register(KindPictMove, decodePictMove)
}

// SpotState broadcasts a hotspot's new picture-state index to the
// whole room, e.g. after a script's SETSPOTSTATE or a door opening
// (spec.md §4.G).
type SpotState struct {
	HotspotID int16
	State     int16
}

func (SpotState) Kind() Kind { return KindSpotState }

func (m SpotState) Encode(w *Writer) {
	w.I16(m.HotspotID)
	w.I16(m.State)
}

func decodeSpotState(r *Reader) (Payload, error) {
	id, err := r.I16()
	if err != nil {
		return nil, err
	}
	st, err := r.I16()
	if err != nil {
		return nil, err
	}
	return SpotState{HotspotID: id, State: st}, nil
}

// SpotStateLocal is the same notification limited to the sender's own
// client (e.g. a script's local-only picture change).
type SpotStateLocal struct {
	HotspotID int16
	State     int16
}

func (SpotStateLocal) Kind() Kind { return KindSpotStateLocal }

func (m SpotStateLocal) Encode(w *Writer) {
	w.I16(m.HotspotID)
	w.I16(m.State)
}

func decodeSpotStateLocal(r *Reader) (Payload, error) {
	id, err := r.I16()
	if err != nil {
		return nil, err
	}
	st, err := r.I16()
	if err != nil {
		return nil, err
	}
	return SpotStateLocal{HotspotID: id, State: st}, nil
}

// DoorLockStatus reports whether a lockable door is currently locked.
type DoorLockStatus struct {
	HotspotID int16
	Locked    bool
}

func (DoorLockStatus) Kind() Kind { return KindDoorLockStatus }

func (m DoorLockStatus) Encode(w *Writer) {
	w.I16(m.HotspotID)
	if m.Locked {
		w.I16(int16(HotspotLocked))
	} else {
		w.I16(int16(HotspotUnlocked))
	}
}

func decodeDoorLockStatus(r *Reader) (Payload, error) {
	id, err := r.I16()
	if err != nil {
		return nil, err
	}
	st, err := r.I16()
	if err != nil {
		return nil, err
	}
	return DoorLockStatus{HotspotID: id, Locked: HotspotState(st) == HotspotLocked}, nil
}

// SpotStateQuery asks the server for a hotspot's current state, used
// by a client joining a room that already has open doors or toggled
// spots.
type SpotStateQuery struct {
	HotspotID int16
}

func (SpotStateQuery) Kind() Kind          { return KindSpotStateQuery }
func (m SpotStateQuery) Encode(w *Writer) { w.I16(m.HotspotID) }

func decodeSpotStateQuery(r *Reader) (Payload, error) {
	v, err := r.I16()
	if err != nil {
		return nil, err
	}
	return SpotStateQuery{HotspotID: v}, nil
}

// PictMove reports a picture layer's new position. The session
// runtime decodes it but never sends it; the MOVE builtin moves the
// user (UserMove), not a picture.
type PictMove struct {
	PicID int16
	Pos   wire.Point
}

func (PictMove) Kind() Kind { return KindPictMove }

func (m PictMove) Encode(w *Writer) {
	w.I16(m.PicID)
	w.Point(m.Pos)
}

func decodePictMove(r *Reader) (Payload, error) {
	var m PictMove
	var err error
	if m.PicID, err = r.I16(); err != nil {
		return nil, err
	}
	if m.Pos, err = r.Point(); err != nil {
		return nil, err
	}
	return m, nil
}
