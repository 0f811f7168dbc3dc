package proto

import "github.com/palace-core/palace/wire"

func init() {
	register(KindNewLooseProp, decodeNewLooseProp)
	register(KindMoveLooseProp, decodeMoveLooseProp)
	register(KindDropLooseProp, decodeDropLooseProp)
}

// NewLooseProp announces a prop dropped loose on the floor of a room
// (spec.md §4.H, §6.5).
type NewLooseProp struct {
	RefCon int32
	Spec   wire.AssetSpec
	Pos    wire.Point
}

func (NewLooseProp) Kind() Kind { return KindNewLooseProp }

func (m NewLooseProp) Encode(w *Writer) {
	w.I32(m.RefCon)
	w.AssetSpec(m.Spec)
	w.Point(m.Pos)
}

func decodeNewLooseProp(r *Reader) (Payload, error) {
	var m NewLooseProp
	var err error
	if m.RefCon, err = r.I32(); err != nil {
		return nil, err
	}
	if m.Spec, err = r.AssetSpec(); err != nil {
		return nil, err
	}
	if m.Pos, err = r.Point(); err != nil {
		return nil, err
	}
	return m, nil
}

// MoveLooseProp reports a loose prop sliding to a new position within
// the room, identified by its ref_con.
type MoveLooseProp struct {
	RefCon int32
	Pos    wire.Point
}

func (MoveLooseProp) Kind() Kind { return KindMoveLooseProp }

func (m MoveLooseProp) Encode(w *Writer) {
	w.I32(m.RefCon)
	w.Point(m.Pos)
}

func decodeMoveLooseProp(r *Reader) (Payload, error) {
	var m MoveLooseProp
	var err error
	if m.RefCon, err = r.I32(); err != nil {
		return nil, err
	}
	if m.Pos, err = r.Point(); err != nil {
		return nil, err
	}
	return m, nil
}

// DropLooseProp removes a loose prop from the room, e.g. when picked
// back up or expired.
type DropLooseProp struct {
	RefCon int32
}

func (DropLooseProp) Kind() Kind          { return KindDropLooseProp }
func (m DropLooseProp) Encode(w *Writer) { w.I32(m.RefCon) }

func decodeDropLooseProp(r *Reader) (Payload, error) {
	v, err := r.I32()
	if err != nil {
		return nil, err
	}
	return DropLooseProp{RefCon: v}, nil
}
