package proto

import "github.com/palace-core/palace/wire"

func init() {
	register(KindUserList, decodeUserList)
	register(KindListOfAllUsers, decodeListOfAllUsers)
	register(KindUserNew, decodeUserNew)
	register(KindUserExit, decodeUserExit)
	register(KindUserMove, decodeUserMove)
	register(KindUserName, decodeUserName)
	register(KindUserColor, decodeUserColor)
	register(KindUserFace, decodeUserFace)
	register(KindUserProps, decodeUserProps)
	register(KindUserDesc, decodeUserDesc)
}

// NumUserProps is the maximum number of worn props a user may carry
// simultaneously (spec.md glossary: "Prop").
const NumUserProps = 9

// UserRec is the 142-byte fixed record describing an occupant,
// embedded (repeated) in UserList/ListOfAllUsers and standalone in
// UserNew (spec.md §6.3).
type UserRec struct {
	UserID      int32
	RoomPos     wire.Point
	Props       [NumUserProps]wire.AssetSpec
	RoomID      int16
	Face        int16
	Color       int16
	AwayFlag    int16
	OpenToMsgs  int16
	NbrProps    int16
	Name        string // Str31
}

func (u UserRec) encode(w *Writer) {
	w.I32(u.UserID)
	w.Point(u.RoomPos)
	for _, p := range u.Props {
		w.AssetSpec(p)
		w.Zero(2)
	}
	w.I16(u.RoomID)
	w.I16(u.Face)
	w.I16(u.Color)
	w.I16(u.AwayFlag)
	w.I16(u.OpenToMsgs)
	w.I16(u.NbrProps)
	_ = w.Str31(u.Name)
}

func decodeUserRec(r *Reader) (UserRec, error) {
	var u UserRec
	var err error
	if u.UserID, err = r.I32(); err != nil {
		return u, err
	}
	if u.RoomPos, err = r.Point(); err != nil {
		return u, err
	}
	for i := range u.Props {
		if u.Props[i], err = r.AssetSpec(); err != nil {
			return u, err
		}
		if err = r.Skip(2); err != nil {
			return u, err
		}
	}
	if u.RoomID, err = r.I16(); err != nil {
		return u, err
	}
	if u.Face, err = r.I16(); err != nil {
		return u, err
	}
	if u.Color, err = r.I16(); err != nil {
		return u, err
	}
	if u.AwayFlag, err = r.I16(); err != nil {
		return u, err
	}
	if u.OpenToMsgs, err = r.I16(); err != nil {
		return u, err
	}
	if u.NbrProps, err = r.I16(); err != nil {
		return u, err
	}
	if u.Name, err = r.Str31(); err != nil {
		return u, err
	}
	return u, nil
}

// UserList carries every occupant of the current room, sent on logon
// and room transition (spec.md §6.1).
type UserList struct {
	Users []UserRec
}

func (UserList) Kind() Kind { return KindUserList }

func (m UserList) Encode(w *Writer) {
	for _, u := range m.Users {
		u.encode(w)
	}
}

func decodeUserList(r *Reader) (Payload, error) {
	users, err := decodeUserRecs(r)
	if err != nil {
		return nil, err
	}
	return UserList{Users: users}, nil
}

// ListOfAllUsers carries every connected user across all rooms.
type ListOfAllUsers struct {
	Users []UserRec
}

func (ListOfAllUsers) Kind() Kind { return KindListOfAllUsers }

func (m ListOfAllUsers) Encode(w *Writer) {
	for _, u := range m.Users {
		u.encode(w)
	}
}

func decodeListOfAllUsers(r *Reader) (Payload, error) {
	users, err := decodeUserRecs(r)
	if err != nil {
		return nil, err
	}
	return ListOfAllUsers{Users: users}, nil
}

func decodeUserRecs(r *Reader) ([]UserRec, error) {
	const userRecSize = 142
	n := r.Len() / userRecSize
	users := make([]UserRec, 0, n)
	for r.Len() > 0 {
		u, err := decodeUserRec(r)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// UserNew announces a single occupant joining the current room.
type UserNew struct {
	User UserRec
}

func (UserNew) Kind() Kind          { return KindUserNew }
func (m UserNew) Encode(w *Writer) { m.User.encode(w) }

func decodeUserNew(r *Reader) (Payload, error) {
	u, err := decodeUserRec(r)
	if err != nil {
		return nil, err
	}
	return UserNew{User: u}, nil
}

// UserExit announces an occupant leaving; the departing user's id
// travels in the frame's reference number, the payload is empty.
type UserExit struct{}

func (UserExit) Kind() Kind       { return KindUserExit }
func (UserExit) Encode(w *Writer) {}

func decodeUserExit(r *Reader) (Payload, error) { return UserExit{}, nil }

// UserMove reports a user's new room-relative position; the moving
// user's id travels in the frame's reference number.
type UserMove struct {
	Pos wire.Point
}

func (UserMove) Kind() Kind { return KindUserMove }
func (m UserMove) Encode(w *Writer) { w.Point(m.Pos) }

func decodeUserMove(r *Reader) (Payload, error) {
	p, err := r.Point()
	if err != nil {
		return nil, err
	}
	return UserMove{Pos: p}, nil
}

// UserName announces a user's new display name; the user's id travels
// in the frame's reference number.
type UserName struct {
	Name string // Str31
}

func (UserName) Kind() Kind          { return KindUserName }
func (m UserName) Encode(w *Writer) { _ = w.Str31(m.Name) }

func decodeUserName(r *Reader) (Payload, error) {
	s, err := r.Str31()
	if err != nil {
		return nil, err
	}
	return UserName{Name: s}, nil
}

// UserColor announces a user's new avatar color.
type UserColor struct {
	Color int16
}

func (UserColor) Kind() Kind          { return KindUserColor }
func (m UserColor) Encode(w *Writer) { w.I16(m.Color) }

func decodeUserColor(r *Reader) (Payload, error) {
	v, err := r.I16()
	if err != nil {
		return nil, err
	}
	return UserColor{Color: v}, nil
}

// UserFace announces a user's new face/expression.
type UserFace struct {
	Face int16
}

func (UserFace) Kind() Kind          { return KindUserFace }
func (m UserFace) Encode(w *Writer) { w.I16(m.Face) }

func decodeUserFace(r *Reader) (Payload, error) {
	v, err := r.I16()
	if err != nil {
		return nil, err
	}
	return UserFace{Face: v}, nil
}

// UserProps announces a user's full current set of worn props.
type UserProps struct {
	Props [NumUserProps]wire.AssetSpec
}

func (UserProps) Kind() Kind { return KindUserProps }

func (m UserProps) Encode(w *Writer) {
	for _, p := range m.Props {
		w.AssetSpec(p)
	}
}

func decodeUserProps(r *Reader) (Payload, error) {
	var m UserProps
	for i := range m.Props {
		p, err := r.AssetSpec()
		if err != nil {
			return nil, err
		}
		m.Props[i] = p
	}
	return m, nil
}

// UserDesc announces a user's free-text description/away message.
type UserDesc struct {
	Desc string // CString
}

func (UserDesc) Kind() Kind          { return KindUserDesc }
func (m UserDesc) Encode(w *Writer) { _ = w.CString(m.Desc) }

func decodeUserDesc(r *Reader) (Payload, error) {
	s, err := r.CString()
	if err != nil {
		return nil, err
	}
	return UserDesc{Desc: s}, nil
}
