package proto

func init() {
	register(KindRoomDesc, decodeRoomDesc)
	register(KindRoomDescEnd, decodeRoomDescEnd)
	register(KindRoomGoto, decodeRoomGoto)
	register(KindListOfAllRooms, decodeListOfAllRooms)
}

// RoomRecFixedSize is the byte size of RoomRec's fixed-width header,
// not counting VarBuf (spec.md §3.4).
const RoomRecFixedSize = 40

// RoomRec is the room template: a fixed 40-byte header of counts and
// byte offsets into VarBuf, the variable-length section holding the
// room's name, picture name, artist name, password, and the hotspot,
// picture and loose-prop record arrays (spec.md §3.4, §6.1).
//
// Offsets are relative to the start of VarBuf; -1 marks an absent
// section.
type RoomRec struct {
	RoomFlags     RoomFlags
	FacesID       int32
	RoomID        int16
	RoomNameOffset   int16
	PictNameOffset   int16
	ArtistNameOffset int16
	PasswordOffset   int16
	NbrHotspots   int16
	HotspotOffset int16
	NbrPictures   int16
	PictureOffset int16
	NbrDrawCmds   int16
	FirstDrawCmd  int16
	NbrPeople     int16
	NbrLprops     int16
	FirstLprop    int16
	VarBuf        []byte
}

func (m RoomRec) Kind() Kind { return KindRoomDesc }

func (m RoomRec) Encode(w *Writer) {
	w.I32(int32(m.RoomFlags))
	w.I32(m.FacesID)
	w.I16(m.RoomID)
	w.I16(m.RoomNameOffset)
	w.I16(m.PictNameOffset)
	w.I16(m.ArtistNameOffset)
	w.I16(m.PasswordOffset)
	w.I16(m.NbrHotspots)
	w.I16(m.HotspotOffset)
	w.I16(m.NbrPictures)
	w.I16(m.PictureOffset)
	w.I16(m.NbrDrawCmds)
	w.I16(m.FirstDrawCmd)
	w.I16(m.NbrPeople)
	w.I16(m.NbrLprops)
	w.I16(m.FirstLprop)
	w.Zero(2)
	w.I16(int16(len(m.VarBuf)))
	w.Raw(m.VarBuf)
}

func decodeRoomDesc(r *Reader) (Payload, error) {
	var m RoomRec
	flags, err := r.I32()
	if err != nil {
		return nil, err
	}
	m.RoomFlags = RoomFlags(flags)
	if m.FacesID, err = r.I32(); err != nil {
		return nil, err
	}
	if m.RoomID, err = r.I16(); err != nil {
		return nil, err
	}
	if m.RoomNameOffset, err = r.I16(); err != nil {
		return nil, err
	}
	if m.PictNameOffset, err = r.I16(); err != nil {
		return nil, err
	}
	if m.ArtistNameOffset, err = r.I16(); err != nil {
		return nil, err
	}
	if m.PasswordOffset, err = r.I16(); err != nil {
		return nil, err
	}
	if m.NbrHotspots, err = r.I16(); err != nil {
		return nil, err
	}
	if m.HotspotOffset, err = r.I16(); err != nil {
		return nil, err
	}
	if m.NbrPictures, err = r.I16(); err != nil {
		return nil, err
	}
	if m.PictureOffset, err = r.I16(); err != nil {
		return nil, err
	}
	if m.NbrDrawCmds, err = r.I16(); err != nil {
		return nil, err
	}
	if m.FirstDrawCmd, err = r.I16(); err != nil {
		return nil, err
	}
	if m.NbrPeople, err = r.I16(); err != nil {
		return nil, err
	}
	if m.NbrLprops, err = r.I16(); err != nil {
		return nil, err
	}
	if m.FirstLprop, err = r.I16(); err != nil {
		return nil, err
	}
	if err = r.Skip(2); err != nil {
		return nil, err
	}
	lenVars, err := r.I16()
	if err != nil {
		return nil, err
	}
	buf, err := r.Bytes(int(lenVars))
	if err != nil {
		return nil, err
	}
	m.VarBuf = append([]byte(nil), buf...)
	return m, nil
}

// Hotspots decodes the hotspot record array out of VarBuf using
// HotspotOffset/NbrHotspots.
func (m RoomRec) Hotspots() ([]HotspotRecord, error) {
	if m.NbrHotspots == 0 {
		return nil, nil
	}
	r := NewReaderFromBuf(m.VarBuf[m.HotspotOffset:])
	out := make([]HotspotRecord, 0, m.NbrHotspots)
	for i := int16(0); i < m.NbrHotspots; i++ {
		h, err := decodeHotspotRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// Pictures decodes the picture record array out of VarBuf using
// PictureOffset/NbrPictures.
func (m RoomRec) Pictures() ([]PictureRecord, error) {
	if m.NbrPictures == 0 {
		return nil, nil
	}
	r := NewReaderFromBuf(m.VarBuf[m.PictureOffset:])
	out := make([]PictureRecord, 0, m.NbrPictures)
	for i := int16(0); i < m.NbrPictures; i++ {
		p, err := decodePictureRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// LooseProps decodes the loose-prop record array out of VarBuf using
// FirstLprop/NbrLprops.
func (m RoomRec) LooseProps() ([]LoosePropRecord, error) {
	if m.NbrLprops == 0 {
		return nil, nil
	}
	r := NewReaderFromBuf(m.VarBuf[m.FirstLprop:])
	out := make([]LoosePropRecord, 0, m.NbrLprops)
	for i := int16(0); i < m.NbrLprops; i++ {
		p, err := decodeLoosePropRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// stringAt reads a PString out of VarBuf at offset, or "" if offset
// is the absent sentinel.
func (m RoomRec) stringAt(offset int16) (string, error) {
	if offset < 0 {
		return "", nil
	}
	r := NewReaderFromBuf(m.VarBuf[offset:])
	return r.PString()
}

func (m RoomRec) RoomName() (string, error)   { return m.stringAt(m.RoomNameOffset) }
func (m RoomRec) PictName() (string, error)   { return m.stringAt(m.PictNameOffset) }
func (m RoomRec) ArtistName() (string, error) { return m.stringAt(m.ArtistNameOffset) }
func (m RoomRec) Password() (string, error)   { return m.stringAt(m.PasswordOffset) }

// RoomDescEnd marks the end of a (possibly multi-frame) room
// description transfer.
type RoomDescEnd struct{}

func (RoomDescEnd) Kind() Kind       { return KindRoomDescEnd }
func (RoomDescEnd) Encode(w *Writer) {}

func decodeRoomDescEnd(r *Reader) (Payload, error) { return RoomDescEnd{}, nil }

// RoomGoto asks the server to move the sender to a different room.
type RoomGoto struct {
	Dest int16
}

func (RoomGoto) Kind() Kind          { return KindRoomGoto }
func (m RoomGoto) Encode(w *Writer) { w.I16(m.Dest) }

func decodeRoomGoto(r *Reader) (Payload, error) {
	v, err := r.I16()
	if err != nil {
		return nil, err
	}
	return RoomGoto{Dest: v}, nil
}

// RoomListRec is one entry of the server's room directory.
type RoomListRec struct {
	RoomID     int16
	RoomFlags  RoomFlags
	NbrUsers   int16
	Name       string // Str31
}

const roomListRecSize = 38

func (r RoomListRec) encode(w *Writer) {
	w.I16(r.RoomID)
	w.I16(int16(r.RoomFlags))
	w.I16(r.NbrUsers)
	_ = w.Str31(r.Name)
}

func decodeRoomListRec(r *Reader) (RoomListRec, error) {
	var m RoomListRec
	var err error
	if m.RoomID, err = r.I16(); err != nil {
		return m, err
	}
	flags, err := r.I16()
	if err != nil {
		return m, err
	}
	m.RoomFlags = RoomFlags(flags)
	if m.NbrUsers, err = r.I16(); err != nil {
		return m, err
	}
	if m.Name, err = r.Str31(); err != nil {
		return m, err
	}
	return m, nil
}

// ListOfAllRooms is the server's full room directory.
type ListOfAllRooms struct {
	Rooms []RoomListRec
}

func (ListOfAllRooms) Kind() Kind { return KindListOfAllRooms }

func (m ListOfAllRooms) Encode(w *Writer) {
	for _, r := range m.Rooms {
		r.encode(w)
	}
}

func decodeListOfAllRooms(r *Reader) (Payload, error) {
	n := r.Len() / roomListRecSize
	rooms := make([]RoomListRec, 0, n)
	for r.Len() > 0 {
		rec, err := decodeRoomListRec(r)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, rec)
	}
	return ListOfAllRooms{Rooms: rooms}, nil
}

// NewReaderFromBuf wraps a raw varBuf slice (always big-endian
// internally: the room template is generated and consumed server-side
// regardless of the connection's wire byte order).
func NewReaderFromBuf(b []byte) *Reader {
	return NewReader(b, BigEndian)
}
