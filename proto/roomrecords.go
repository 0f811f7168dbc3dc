package proto

import "github.com/palace-core/palace/wire"

// RoomFlags are room attribute bits (spec.md §3.4; order and values
// grounded on the original implementation's flags module).
type RoomFlags uint16

const (
	RoomFlagAuthorLocked  RoomFlags = 0x0001
	RoomFlagPrivate       RoomFlags = 0x0002
	RoomFlagNoPainting    RoomFlags = 0x0004
	RoomFlagClosed        RoomFlags = 0x0008
	RoomFlagCyborgFreeZone RoomFlags = 0x0010
	RoomFlagHidden        RoomFlags = 0x0020
	RoomFlagNoGuests      RoomFlags = 0x0040
	RoomFlagWizardsOnly   RoomFlags = 0x0080
	RoomFlagDropZone      RoomFlags = 0x0100
	RoomFlagNoLooseProps  RoomFlags = 0x0200
)

// HotspotType is a closed enum of hotspot behaviors (spec.md §3.4).
type HotspotType int16

const (
	HotspotNormal        HotspotType = 0
	HotspotDoor          HotspotType = 1
	HotspotShutableDoor  HotspotType = 2
	HotspotLockableDoor  HotspotType = 3
	HotspotBolt          HotspotType = 4
	HotspotNavArea       HotspotType = 5
)

// HotspotState is extensible; Unlocked/Locked are the two states the
// spec names.
type HotspotState int16

const (
	HotspotUnlocked HotspotState = 0
	HotspotLocked   HotspotState = 1
)

// offsetAbsent is the sentinel for "no such variable section".
const offsetAbsent = int16(-1)

// HotspotRecord is the 48-byte fixed-size hotspot record embedded in
// a room's varBuf (spec.md §3.4). Offsets are byte offsets into the
// enclosing RoomRec.VarBuf.
type HotspotRecord struct {
	ScriptEventMask uint32
	Flags           int32
	SecureInfo      int32
	RefCon          int32
	Loc             wire.Point
	ID              int16
	Dest            int16
	NbrPoints       int16
	PointsOffset    int16
	Type            HotspotType
	GroupID         int16
	NbrScripts      int16
	ScriptRecOffset int16
	State           HotspotState
	NbrStates       int16
	StateRecOffset  int16
	NameOffset      int16
	ScriptTextOffset int16
}

const HotspotRecordSize = 48

func (h HotspotRecord) Encode(w *Writer) {
	w.U32(h.ScriptEventMask)
	w.I32(h.Flags)
	w.I32(h.SecureInfo)
	w.I32(h.RefCon)
	w.Point(h.Loc)
	w.I16(h.ID)
	w.I16(h.Dest)
	w.I16(h.NbrPoints)
	w.I16(h.PointsOffset)
	w.I16(int16(h.Type))
	w.I16(h.GroupID)
	w.I16(h.NbrScripts)
	w.I16(h.ScriptRecOffset)
	w.I16(int16(h.State))
	w.I16(h.NbrStates)
	w.I16(h.StateRecOffset)
	w.I16(h.NameOffset)
	w.I16(h.ScriptTextOffset)
	w.Zero(2) // alignment padding
}

func decodeHotspotRecord(r *Reader) (HotspotRecord, error) {
	var h HotspotRecord
	var err error
	if h.ScriptEventMask, err = r.U32(); err != nil {
		return h, err
	}
	if h.Flags, err = r.I32(); err != nil {
		return h, err
	}
	if h.SecureInfo, err = r.I32(); err != nil {
		return h, err
	}
	if h.RefCon, err = r.I32(); err != nil {
		return h, err
	}
	if h.Loc, err = r.Point(); err != nil {
		return h, err
	}
	if h.ID, err = r.I16(); err != nil {
		return h, err
	}
	if h.Dest, err = r.I16(); err != nil {
		return h, err
	}
	if h.NbrPoints, err = r.I16(); err != nil {
		return h, err
	}
	if h.PointsOffset, err = r.I16(); err != nil {
		return h, err
	}
	typ, err := r.I16()
	if err != nil {
		return h, err
	}
	h.Type = HotspotType(typ)
	if h.GroupID, err = r.I16(); err != nil {
		return h, err
	}
	if h.NbrScripts, err = r.I16(); err != nil {
		return h, err
	}
	if h.ScriptRecOffset, err = r.I16(); err != nil {
		return h, err
	}
	st, err := r.I16()
	if err != nil {
		return h, err
	}
	h.State = HotspotState(st)
	if h.NbrStates, err = r.I16(); err != nil {
		return h, err
	}
	if h.StateRecOffset, err = r.I16(); err != nil {
		return h, err
	}
	if h.NameOffset, err = r.I16(); err != nil {
		return h, err
	}
	if h.ScriptTextOffset, err = r.I16(); err != nil {
		return h, err
	}
	if err = r.Skip(2); err != nil {
		return h, err
	}
	return h, nil
}

// LoosePropRecord is the 26-byte loose-prop record: 4 bytes of
// client-private padding, an 8-byte AssetSpec with 2-byte trailing
// alignment, flags, ref_con, and a location point (spec.md §3.4; the
// exact byte count is resolved from original_source, see DESIGN.md).
type LoosePropRecord struct {
	PropSpec wire.AssetSpec
	Flags    int32
	RefCon   int32
	Loc      wire.Point
}

const LoosePropRecordSize = 26

func (p LoosePropRecord) encode(w *Writer) {
	w.Zero(4) // client-private padding
	w.AssetSpec(p.PropSpec)
	w.Zero(2) // AssetSpec trailing alignment
	w.I32(p.Flags)
	w.I32(p.RefCon)
	w.Point(p.Loc)
}

func decodeLoosePropRecord(r *Reader) (LoosePropRecord, error) {
	var p LoosePropRecord
	if err := r.Skip(4); err != nil {
		return p, err
	}
	var err error
	if p.PropSpec, err = r.AssetSpec(); err != nil {
		return p, err
	}
	if err := r.Skip(2); err != nil {
		return p, err
	}
	if p.Flags, err = r.I32(); err != nil {
		return p, err
	}
	if p.RefCon, err = r.I32(); err != nil {
		return p, err
	}
	if p.Loc, err = r.Point(); err != nil {
		return p, err
	}
	return p, nil
}

// PictureRecord is the 12-byte picture-layer record.
type PictureRecord struct {
	RefCon      int32
	PicID       int16
	NameOffset  int16
	TransColor  int16
}

const PictureRecordSize = 12

func (p PictureRecord) Encode(w *Writer) {
	w.I32(p.RefCon)
	w.I16(p.PicID)
	w.I16(p.NameOffset)
	w.I16(p.TransColor)
	w.Zero(2)
}

func decodePictureRecord(r *Reader) (PictureRecord, error) {
	var p PictureRecord
	var err error
	if p.RefCon, err = r.I32(); err != nil {
		return p, err
	}
	if p.PicID, err = r.I16(); err != nil {
		return p, err
	}
	if p.NameOffset, err = r.I16(); err != nil {
		return p, err
	}
	if p.TransColor, err = r.I16(); err != nil {
		return p, err
	}
	if err = r.Skip(2); err != nil {
		return p, err
	}
	return p, nil
}

// StateRecord is a picture-state triple (picId, xOff, yOff) used by
// hotspot/room state-record arrays (spec.md §4.G).
type StateRecord struct {
	PicID int16
	XOff  int16
	YOff  int16
}

const StateRecordSize = 6

func (s StateRecord) Encode(w *Writer) {
	w.I16(s.PicID)
	w.I16(s.XOff)
	w.I16(s.YOff)
}

func decodeStateRecord(r *Reader) (StateRecord, error) {
	var s StateRecord
	var err error
	if s.PicID, err = r.I16(); err != nil {
		return s, err
	}
	if s.XOff, err = r.I16(); err != nil {
		return s, err
	}
	if s.YOff, err = r.I16(); err != nil {
		return s, err
	}
	return s, nil
}
