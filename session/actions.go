package session

import (
	"context"
	"fmt"

	"github.com/inconshreveable/log15"

	iptctx "github.com/palace-core/palace/iptscrae/context"
	"github.com/palace-core/palace/proto"
	"github.com/palace-core/palace/store"
	"github.com/palace-core/palace/wire"
)

// scriptActions implements iptscrae/context.Actions, wiring a script
// handler's requests into the live Registry and persistent store
// (spec.md §4.K: "tests supply a mock that records calls; the
// session runtime supplies the real one wiring these into wire
// messages and state mutations").
type scriptActions struct {
	reg   *Registry
	store *store.Store
	log   log15.Logger

	userID int32
}

func newScriptActions(reg *Registry, st *store.Store, log log15.Logger, userID int32) *scriptActions {
	return &scriptActions{reg: reg, store: st, log: log, userID: userID}
}

func (a *scriptActions) currentRoom() int16 {
	if sess, ok := a.reg.Get(a.userID); ok {
		return sess.CurrentRoom
	}
	return 0
}

// Say broadcasts a room-visible chat bubble attributed to the
// originating user, same wire shape as an ordinary Talk (spec.md §9
// scenario: an ENTER handler's SAY produces a room-broadcast Talk).
func (a *scriptActions) Say(message string) {
	a.reg.Broadcast(a.currentRoom(), 0, a.userID, proto.Talk{Text: message})
}

// Chat behaves like Say; Palace scripts historically distinguish the
// two only by calling convention, not by wire effect.
func (a *scriptActions) Chat(message string) { a.Say(message) }

func (a *scriptActions) LocalMsg(message string) {
	a.reg.Send(a.userID, a.userID, proto.StatusMsg{Text: message})
}

func (a *scriptActions) RoomMsg(message string) {
	a.reg.Broadcast(a.currentRoom(), 0, a.userID, proto.RoomMsg{Text: message})
}

func (a *scriptActions) PrivateMsg(userID int32, message string) {
	a.reg.Send(userID, a.userID, proto.Whisper{TargetUserID: userID, Text: message})
}

func (a *scriptActions) GlobalMsg(message string) {
	for _, sess := range a.reg.allSessions() {
		a.reg.Send(sess.UserID, a.userID, proto.GlobalMsg{Text: message})
	}
}

func (a *scriptActions) StatusMsg(message string) {
	a.reg.Send(a.userID, a.userID, proto.StatusMsg{Text: message})
}

func (a *scriptActions) SuperuserMsg(message string) {
	for _, sess := range a.reg.allSessions() {
		a.reg.Send(sess.UserID, a.userID, proto.StatusMsg{Text: "[WIZARD] " + message})
	}
}

func (a *scriptActions) LogMsg(message string) {
	a.log.Info("script log", "user", a.userID, "message", message)
}

func (a *scriptActions) GotoRoom(roomID int16) {
	old, ok := a.reg.Move(a.userID, roomID)
	if !ok {
		return
	}
	a.reg.Broadcast(old, a.userID, a.userID, proto.UserExit{})
	if sess, ok := a.reg.Get(a.userID); ok {
		a.reg.Broadcast(roomID, a.userID, a.userID, userNewPayload(sess))
	}
}

func (a *scriptActions) GotoURL(url string) {
	a.reg.Send(a.userID, 0, proto.DisplayUrl{URL: url})
}

func (a *scriptActions) GotoURLFrame(url, _ string) { a.GotoURL(url) }

func (a *scriptActions) LockDoor(doorID int32) {
	a.setDoorLock(doorID, true)
}

func (a *scriptActions) UnlockDoor(doorID int32) {
	a.setDoorLock(doorID, false)
}

func (a *scriptActions) setDoorLock(doorID int32, locked bool) {
	room := a.currentRoom()
	hotspotID := int16(doorID)
	a.reg.SetDoorLocked(room, hotspotID, locked)
	a.reg.Broadcast(room, 0, 0, proto.DoorLockStatus{HotspotID: hotspotID, Locked: locked})
}

func (a *scriptActions) SetFace(faceID int16) {
	if sess, ok := a.reg.Get(a.userID); ok {
		sess.Face = faceID
	}
	a.reg.Broadcast(a.currentRoom(), a.userID, a.userID, proto.UserFace{Face: faceID})
}

func (a *scriptActions) SetColor(color int16) {
	if sess, ok := a.reg.Get(a.userID); ok {
		sess.Color = color
	}
	a.reg.Broadcast(a.currentRoom(), a.userID, a.userID, proto.UserColor{Color: color})
}

func (a *scriptActions) SetProps(props []wire.AssetSpec) {
	if sess, ok := a.reg.Get(a.userID); ok {
		sess.Props = props
	}
	var rec proto.UserProps
	copy(rec.Props[:], props)
	a.reg.Broadcast(a.currentRoom(), a.userID, a.userID, rec)
}

func (a *scriptActions) SetPos(x, y int16) {
	p := wire.Point{H: x, V: y}
	if sess, ok := a.reg.Get(a.userID); ok {
		sess.Pos = p
	}
	a.reg.Broadcast(a.currentRoom(), a.userID, a.userID, proto.UserMove{Pos: p})
}

func (a *scriptActions) MoveUser(dx, dy int16) {
	sess, ok := a.reg.Get(a.userID)
	if !ok {
		return
	}
	a.SetPos(sess.Pos.H+dx, sess.Pos.V+dy)
}

func (a *scriptActions) SetSpotState(spotID int32, state int32) {
	room := a.currentRoom()
	hotspotID, st := int16(spotID), int16(state)
	a.reg.SetSpotState(room, hotspotID, st)
	a.reg.Broadcast(room, 0, 0, proto.SpotState{HotspotID: hotspotID, State: st})
}

func (a *scriptActions) AddLooseProp(propID int32, x, y int16) {
	room := a.currentRoom()
	spec := wire.AssetSpec{ID: propID}
	pos := wire.Point{H: x, V: y}
	a.reg.AddLooseProp(room, LooseProp{PropID: spec, Pos: pos})
	a.reg.Broadcast(room, 0, propID, proto.NewLooseProp{RefCon: propID, Spec: spec, Pos: pos})

	if a.store != nil {
		prop, err := a.store.GetPropByCRC32(context.Background(), spec.CRC)
		if err == nil {
			if _, err := a.store.AddRoomLooseProp(context.Background(), store.RoomLooseProp{
				RoomID: room, PropID: prop.PropID, PosH: x, PosV: y,
			}); err != nil {
				a.log.Warn("persist loose prop failed", "room", room, "err", err)
			}
		}
	}
}

func (a *scriptActions) ClearLooseProps() {
	room := a.currentRoom()
	a.reg.ClearLooseProps(room)
	a.reg.Broadcast(room, 0, 0, proto.DropLooseProp{RefCon: 0})
	if a.store != nil {
		if err := a.store.ClearRoomLooseProps(context.Background(), room); err != nil {
			a.log.Warn("clear loose props failed", "room", room, "err", err)
		}
	}
}

func (a *scriptActions) PlaySound(soundID int32) {
	a.reg.Send(a.userID, 0, proto.StatusMsg{Text: fmt.Sprintf("[sound %d]", soundID)})
}

func (a *scriptActions) PlayMidi(midiID int32) {
	a.reg.Send(a.userID, 0, proto.StatusMsg{Text: fmt.Sprintf("[midi %d]", midiID)})
}

func (a *scriptActions) StopMidi() {
	a.reg.Send(a.userID, 0, proto.StatusMsg{Text: "[midi stop]"})
}

func (a *scriptActions) Beep() {
	a.reg.Send(a.userID, 0, proto.StatusMsg{Text: "[beep]"})
}

func (a *scriptActions) LaunchApp(url string) { a.GotoURL(url) }

var _ iptctx.Actions = (*scriptActions)(nil)
