package roomscript

import (
	"fmt"

	"github.com/palace-core/palace/proto"
	"github.com/palace-core/palace/wire"
)

// EncodeError reports a limit a RoomDecl violated while being
// converted to a wire room template (spec.md §4.H).
type EncodeError struct {
	Msg string
}

func (e *EncodeError) Error() string { return e.Msg }

// offsetAbsent marks an optional PString field as not present, mirroring
// proto's own sentinel for the same wire convention (spec.md §3.4).
const offsetAbsent = int16(-1)

func varBufTooLarge(size int) error {
	return &EncodeError{Msg: fmt.Sprintf("varBuf too large: %d bytes (max 32767)", size)}
}

func tooManyHotspots(count int) error {
	return &EncodeError{Msg: fmt.Sprintf("too many hotspots: %d (max 32767)", count)}
}

func tooManyPictures(count int) error {
	return &EncodeError{Msg: fmt.Sprintf("too many pictures: %d (max 32767)", count)}
}

func tooManyPoints(hotspotID int16, count int) error {
	return &EncodeError{Msg: fmt.Sprintf("too many points in hotspot %d: %d (max 32767)", hotspotID, count)}
}

func tooManyStates(hotspotID int16, count int) error {
	return &EncodeError{Msg: fmt.Sprintf("too many states in hotspot %d: %d (max 32767)", hotspotID, count)}
}

func stringTooLong(field string, length int) error {
	return &EncodeError{Msg: fmt.Sprintf("string too long for field %q: %d bytes (max 255)", field, length)}
}

// varBufBuilder appends PStrings and fixed-size records to a growing
// room-template variable section, tracking 4-byte-aligned offsets for
// the record arrays (spec.md §3.4, §4.H).
type varBufBuilder struct {
	w *proto.Writer
}

func newVarBufBuilder() *varBufBuilder {
	return &varBufBuilder{w: proto.NewWriter(proto.BigEndian)}
}

func (b *varBufBuilder) offset() int { return b.w.Len() }

func (b *varBufBuilder) writePString(field, s string) (int16, error) {
	if len(s) > 255 {
		return 0, stringTooLong(field, len(s))
	}
	off := b.offset()
	if off > 32767 {
		return 0, varBufTooLarge(off)
	}
	if err := b.w.PString(s); err != nil {
		return 0, err
	}
	return int16(off), nil
}

func (b *varBufBuilder) writeOptionalPString(field string, s *string) (int16, error) {
	if s == nil {
		return offsetAbsent, nil
	}
	return b.writePString(field, *s)
}

// alignTo4 pads with zero bytes to the next 4-byte boundary.
func (b *varBufBuilder) alignTo4() {
	pad := (4 - (b.offset() % 4)) % 4
	b.w.Zero(pad)
}

func (b *varBufBuilder) writeHotspots(hotspots []proto.HotspotRecord) (int16, error) {
	b.alignTo4()
	off := b.offset()
	if off > 32767 {
		return 0, varBufTooLarge(off)
	}
	for _, h := range hotspots {
		h.Encode(b.w)
	}
	return int16(off), nil
}

func (b *varBufBuilder) writePictures(pics []proto.PictureRecord) (int16, error) {
	b.alignTo4()
	off := b.offset()
	if off > 32767 {
		return 0, varBufTooLarge(off)
	}
	for _, p := range pics {
		p.Encode(b.w)
	}
	return int16(off), nil
}

func (b *varBufBuilder) writeStates(states []StateDecl) (int16, error) {
	b.alignTo4()
	off := b.offset()
	if off > 32767 {
		return 0, varBufTooLarge(off)
	}
	for _, s := range states {
		proto.StateRecord{PicID: s.PicID, XOff: s.XOffset, YOff: s.YOffset}.Encode(b.w)
	}
	return int16(off), nil
}

func (b *varBufBuilder) writePoints(points []wire.Point) (int16, error) {
	b.alignTo4()
	off := b.offset()
	if off > 32767 {
		return 0, varBufTooLarge(off)
	}
	for _, p := range points {
		b.w.Point(p)
	}
	return int16(off), nil
}

func (b *varBufBuilder) finish() []byte { return b.w.Bytes() }

func convertFlags(f RoomFlags) proto.RoomFlags {
	var out proto.RoomFlags
	if f.Private {
		out |= proto.RoomFlagPrivate
	}
	if f.NoPainting {
		out |= proto.RoomFlagNoPainting
	}
	if f.NoCyborgs {
		out |= proto.RoomFlagCyborgFreeZone
	}
	if f.Hidden {
		out |= proto.RoomFlagHidden
	}
	if f.NoGuests {
		out |= proto.RoomFlagNoGuests
	}
	return out
}

// EncodeRoom converts a parsed RoomDecl into a RoomRec wire template.
// Only static data is produced — nbr_people, nbr_lprops, and
// nbr_draw_cmds are runtime fields the session server fills in once
// the room is live, so they're always zero here (spec.md §4.H).
func EncodeRoom(room RoomDecl) (proto.RoomRec, error) {
	buf := newVarBufBuilder()

	roomNameOff, err := buf.writeOptionalPString("name", room.Name)
	if err != nil {
		return proto.RoomRec{}, err
	}
	pictNameOff, err := buf.writeOptionalPString("pict", room.Pict)
	if err != nil {
		return proto.RoomRec{}, err
	}
	artistNameOff, err := buf.writeOptionalPString("artist", room.Artist)
	if err != nil {
		return proto.RoomRec{}, err
	}
	passwordOff, err := buf.writeOptionalPString("password", room.Password)
	if err != nil {
		return proto.RoomRec{}, err
	}

	nbrPictures := len(room.Pictures)
	if nbrPictures > 32767 {
		return proto.RoomRec{}, tooManyPictures(nbrPictures)
	}
	pictureRecs := make([]proto.PictureRecord, 0, nbrPictures)
	for _, pd := range room.Pictures {
		nameOff, err := buf.writePString("picture name", pd.Name)
		if err != nil {
			return proto.RoomRec{}, err
		}
		transColor := int16(-1)
		if pd.TransColor != nil {
			transColor = *pd.TransColor
		}
		pictureRecs = append(pictureRecs, proto.PictureRecord{
			RefCon:     0,
			PicID:      pd.ID,
			NameOffset: nameOff,
			TransColor: transColor,
		})
	}
	var pictureOff int16
	if len(pictureRecs) > 0 {
		if pictureOff, err = buf.writePictures(pictureRecs); err != nil {
			return proto.RoomRec{}, err
		}
	}

	nbrHotspots := len(room.Doors) + len(room.Spots)
	if nbrHotspots > 32767 {
		return proto.RoomRec{}, tooManyHotspots(nbrHotspots)
	}
	hotspots := make([]proto.HotspotRecord, 0, nbrHotspots)
	for _, door := range room.Doors {
		h, err := encodeDoorHotspot(door, buf)
		if err != nil {
			return proto.RoomRec{}, err
		}
		hotspots = append(hotspots, h)
	}
	for _, spot := range room.Spots {
		h, err := encodeSpotHotspot(spot, buf)
		if err != nil {
			return proto.RoomRec{}, err
		}
		hotspots = append(hotspots, h)
	}
	var hotspotOff int16
	if len(hotspots) > 0 {
		if hotspotOff, err = buf.writeHotspots(hotspots); err != nil {
			return proto.RoomRec{}, err
		}
	}

	varBuf := buf.finish()
	if len(varBuf) > 32767 {
		return proto.RoomRec{}, varBufTooLarge(len(varBuf))
	}

	return proto.RoomRec{
		RoomFlags:        convertFlags(room.Flags),
		FacesID:          0,
		RoomID:           room.ID,
		RoomNameOffset:   roomNameOff,
		PictNameOffset:   pictNameOff,
		ArtistNameOffset: artistNameOff,
		PasswordOffset:   passwordOff,
		NbrHotspots:      int16(nbrHotspots),
		HotspotOffset:    hotspotOff,
		NbrPictures:      int16(nbrPictures),
		PictureOffset:    pictureOff,
		NbrDrawCmds:      0,
		FirstDrawCmd:     0,
		NbrPeople:        0,
		NbrLprops:        0,
		FirstLprop:       0,
		VarBuf:           varBuf,
	}, nil
}

func encodeDoorHotspot(door DoorDecl, buf *varBufBuilder) (proto.HotspotRecord, error) {
	if len(door.Outline) > 32767 {
		return proto.HotspotRecord{}, tooManyPoints(door.ID, len(door.Outline))
	}
	if len(door.Picts) > 32767 {
		return proto.HotspotRecord{}, tooManyStates(door.ID, len(door.Picts))
	}

	nameOff, err := buf.writeOptionalPString("door name", door.Name)
	if err != nil {
		return proto.HotspotRecord{}, err
	}

	var ptsOff int16
	if len(door.Outline) > 0 {
		if ptsOff, err = buf.writePoints(door.Outline); err != nil {
			return proto.HotspotRecord{}, err
		}
	}

	var stateOff int16
	if len(door.Picts) > 0 {
		if stateOff, err = buf.writeStates(door.Picts); err != nil {
			return proto.HotspotRecord{}, err
		}
	}

	var mask uint32
	if door.Script != nil {
		for _, h := range door.Script.Handlers {
			mask |= h.Event.ToMask()
		}
	}

	loc := wire.Point{}
	if len(door.Outline) > 0 {
		loc = door.Outline[0]
	}

	return proto.HotspotRecord{
		ScriptEventMask: mask,
		Loc:             loc,
		ID:              door.ID,
		Dest:            door.Dest,
		NbrPoints:       int16(len(door.Outline)),
		PointsOffset:    ptsOff,
		Type:            proto.HotspotDoor,
		State:           proto.HotspotUnlocked,
		NbrStates:       int16(len(door.Picts)),
		StateRecOffset:  stateOff,
		NameOffset:      nameOff,
	}, nil
}

func encodeSpotHotspot(spot SpotDecl, buf *varBufBuilder) (proto.HotspotRecord, error) {
	if len(spot.Outline) > 32767 {
		return proto.HotspotRecord{}, tooManyPoints(spot.ID, len(spot.Outline))
	}
	if len(spot.Picts) > 32767 {
		return proto.HotspotRecord{}, tooManyStates(spot.ID, len(spot.Picts))
	}

	nameOff, err := buf.writeOptionalPString("spot name", spot.Name)
	if err != nil {
		return proto.HotspotRecord{}, err
	}

	var ptsOff int16
	if len(spot.Outline) > 0 {
		if ptsOff, err = buf.writePoints(spot.Outline); err != nil {
			return proto.HotspotRecord{}, err
		}
	}

	var stateOff int16
	if len(spot.Picts) > 0 {
		if stateOff, err = buf.writeStates(spot.Picts); err != nil {
			return proto.HotspotRecord{}, err
		}
	}

	var mask uint32
	if spot.Script != nil {
		for _, h := range spot.Script.Handlers {
			mask |= h.Event.ToMask()
		}
	}

	loc := wire.Point{}
	if len(spot.Outline) > 0 {
		loc = spot.Outline[0]
	}

	return proto.HotspotRecord{
		ScriptEventMask: mask,
		Loc:             loc,
		ID:              spot.ID,
		NbrPoints:       int16(len(spot.Outline)),
		PointsOffset:    ptsOff,
		Type:            proto.HotspotNormal,
		State:           proto.HotspotUnlocked,
		NbrStates:       int16(len(spot.Picts)),
		StateRecOffset:  stateOff,
		NameOffset:      nameOff,
	}, nil
}
