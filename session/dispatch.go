package session

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/palace-core/palace/iptscrae/ast"
	iptctx "github.com/palace-core/palace/iptscrae/context"
	"github.com/palace-core/palace/iptscrae/roomscript"
	"github.com/palace-core/palace/iptscrae/vm"
	"github.com/palace-core/palace/proto"
	"github.com/palace-core/palace/store"
	"github.com/palace-core/palace/wire/cipher"
)

// defaultRoomID is where a logon lands when the client's
// AuxRegistrationRec doesn't request a specific room.
const defaultRoomID = int16(0)

// dispatch routes one decoded payload to its handler (spec.md §4.M).
// Frames arriving before a successful Logon, other than Logon itself,
// are rejected by closing the connection — there is no valid session
// to act on behalf of.
func (c *Conn) dispatch(h proto.Header, msg proto.Payload) error {
	if c.userID == 0 {
		if logon, ok := msg.(proto.Logon); ok {
			return c.handleLogon(logon)
		}
		return fmt.Errorf("session: frame %s received before logon", h.Kind)
	}

	switch m := msg.(type) {
	case proto.RoomGoto:
		return c.handleRoomGoto(m)
	case proto.Talk:
		c.reg.Broadcast(c.currentRoom(), 0, c.userID, m)
		return nil
	case proto.XTalk:
		return c.handleXTalk(m)
	case proto.Whisper:
		c.reg.Send(m.TargetUserID, c.userID, m)
		return nil
	case proto.XWhisper:
		return c.handleXWhisper(m)
	case proto.ListOfAllRooms:
		return c.handleListOfAllRooms()
	case proto.Ping:
		return c.writeDirect(h.Ref, proto.Pong{})
	case proto.DoorLock:
		return c.handleDoorLock(m.HotspotID, true)
	case proto.DoorUnlock:
		return c.handleDoorLock(m.HotspotID, false)
	case proto.SpotStateQuery:
		state := c.roomSpotState(m.HotspotID)
		return c.writeDirect(int32(m.HotspotID), proto.SpotState{HotspotID: m.HotspotID, State: state})
	case proto.Logoff:
		return fmt.Errorf("session: %w", errLoggingOff)
	default:
		c.log.Debug("unhandled frame kind", "kind", h.Kind.String())
		return nil
	}
}

var errLoggingOff = fmt.Errorf("peer sent logoff")

func (c *Conn) currentRoom() int16 {
	if sess, ok := c.reg.Get(c.userID); ok {
		return sess.CurrentRoom
	}
	return defaultRoomID
}

func (c *Conn) roomSpotState(hotspotID int16) int16 {
	room, ok := c.reg.Room(c.currentRoom())
	if !ok {
		return 0
	}
	return room.SpotState[hotspotID]
}

// handleLogon implements spec.md §4.M's numbered Logon sequence.
func (c *Conn) handleLogon(m proto.Logon) error {
	ctx := context.Background()
	ip := remoteIP(c.nc)

	if c.st != nil {
		banned, err := c.st.IsIPBanned(ctx, ip)
		if err != nil {
			return fmt.Errorf("session: check ip ban: %w", err)
		}
		if banned {
			_ = c.writeDirect(0, proto.ServerDown{Reason: proto.ServerDownReasonKicked, Message: "banned"})
			return fmt.Errorf("session: ip %s is banned", ip)
		}
	}

	username := m.Rec.Username
	if username == "" {
		username = fmt.Sprintf("Guest%d", time.Now().UnixNano()%100000)
	}

	// Reject a second concurrent logon under the same name rather
	// than silently displacing the first connection (DESIGN.md Open
	// Questions: duplicate logon is rejected with Logoff).
	if _, already := c.reg.GetByUsername(username); already {
		_ = c.writeDirect(0, proto.Logoff{})
		return fmt.Errorf("session: %q is already logged on", username)
	}

	var userID int64
	if c.st != nil {
		u, err := c.st.GetUserByName(ctx, username)
		switch {
		case err == nil:
			userID = u.UserID
		case err == store.ErrNotFound:
			userID, err = c.st.CreateUser(ctx, username, "")
			if err != nil {
				return fmt.Errorf("session: autocreate user %q: %w", username, err)
			}
		default:
			return fmt.Errorf("session: look up user %q: %w", username, err)
		}

		banned, err := c.st.IsUserBanned(ctx, userID)
		if err != nil {
			return fmt.Errorf("session: check user ban: %w", err)
		}
		if banned {
			_ = c.writeDirect(0, proto.ServerDown{Reason: proto.ServerDownReasonKicked, Message: "banned"})
			return fmt.Errorf("session: user %q is banned", username)
		}
		if err := c.st.UpdateLastLogin(ctx, userID); err != nil {
			return fmt.Errorf("session: update last login: %w", err)
		}
	} else {
		userID = int64(c.reg.AllocateUserID())
	}

	roomID := m.Rec.DesiredRoom
	if _, ok := c.cat.Get(roomID); !ok {
		roomID = defaultRoomID
	}

	c.userID = int32(userID)
	sess := &Session{
		UserID:   c.userID,
		Username: username,
		Addr:     c.nc.RemoteAddr().String(),
		Order:    c.order,
		Outbox:   newOutbox(),
	}
	c.reg.Join(sess, roomID)
	go c.runWriter(sess)

	c.log.Info("logon", "user", c.userID, "username", username, "room", roomID)

	// Order matters here: spec.md §4.M step 5 and the §8.2 scenario 1
	// fanout test both require ServerInfo, UserList, RoomDesc,
	// RoomDescEnd, in that sequence.
	if err := c.writeDirect(0, proto.ServerInfo{Name: c.serverName}); err != nil {
		return err
	}
	if err := c.writeDirect(0, userListPayload(c.reg.Occupants(roomID), c.reg)); err != nil {
		return err
	}
	if err := c.sendRoomDescription(roomID); err != nil {
		return err
	}

	c.reg.Broadcast(roomID, c.userID, c.userID, userNewPayload(sess))
	c.fireEvent(roomID, ast.SignOn, nil)
	c.fireEvent(roomID, ast.Enter, nil)
	return nil
}

// handleRoomGoto implements spec.md §4.M's RoomGoto transition.
func (c *Conn) handleRoomGoto(m proto.RoomGoto) error {
	if _, ok := c.cat.Get(m.Dest); !ok {
		return c.writeDirect(0, proto.StatusMsg{Text: "no such room"})
	}

	old, ok := c.reg.Move(c.userID, m.Dest)
	if !ok {
		return nil
	}
	c.reg.Broadcast(old, c.userID, c.userID, proto.UserExit{})
	c.fireEvent(old, ast.Leave, nil)

	if err := c.sendRoomDescription(m.Dest); err != nil {
		return err
	}
	if err := c.writeDirect(0, userListPayload(c.reg.Occupants(m.Dest), c.reg)); err != nil {
		return err
	}

	if sess, ok := c.reg.Get(c.userID); ok {
		c.reg.Broadcast(m.Dest, c.userID, c.userID, userNewPayload(sess))
	}
	c.fireEvent(m.Dest, ast.Enter, nil)
	return nil
}

func (c *Conn) handleXTalk(m proto.XTalk) error {
	plain := cipher.Decrypt(m.CipherText)
	c.reg.Broadcast(c.currentRoom(), 0, c.userID, proto.XTalk{CipherText: cipher.Encrypt(plain)})
	return nil
}

func (c *Conn) handleXWhisper(m proto.XWhisper) error {
	plain := cipher.Decrypt(m.CipherText)
	c.reg.Send(m.TargetUserID, c.userID, proto.XWhisper{
		TargetUserID: m.TargetUserID,
		CipherText:   cipher.Encrypt(plain),
	})
	return nil
}

func (c *Conn) handleListOfAllRooms() error {
	var rooms []proto.RoomRec
	for _, id := range c.cat.RoomIDs() {
		decl, _ := c.cat.Get(id)
		rec, err := roomscript.EncodeRoom(decl)
		if err != nil {
			continue
		}
		rec.NbrPeople = int16(c.reg.RoomOccupantCount(id))
		rooms = append(rooms, rec)
	}
	return c.writeDirect(0, proto.ListOfAllRooms{Rooms: rooms})
}

func (c *Conn) handleDoorLock(hotspotID int16, locked bool) error {
	roomID := c.currentRoom()
	if _, ok := c.cat.FindDoor(roomID, hotspotID); !ok {
		return nil
	}
	actions := newScriptActions(c.reg, c.st, c.log, c.userID)
	if locked {
		actions.LockDoor(int32(hotspotID))
		c.fireEvent(roomID, ast.Lock, nil)
	} else {
		actions.UnlockDoor(int32(hotspotID))
		c.fireEvent(roomID, ast.Unlock, nil)
	}
	return nil
}

// sendRoomDescription sends RoomDesc followed by RoomDescEnd for
// roomID, per spec.md §4.M step 5.
func (c *Conn) sendRoomDescription(roomID int16) error {
	decl, ok := c.cat.Get(roomID)
	if !ok {
		return fmt.Errorf("session: room %d not loaded", roomID)
	}
	rec, err := roomscript.EncodeRoom(decl)
	if err != nil {
		return fmt.Errorf("session: encode room %d: %w", roomID, err)
	}
	rec.NbrPeople = int16(c.reg.RoomOccupantCount(roomID))
	if err := c.writeDirect(0, rec); err != nil {
		return err
	}
	return c.writeDirect(0, proto.RoomDescEnd{})
}

// fireEvent runs every door/spot script handler in roomID matching
// eventType against the Cyborg-limited Vm, bounded by the server's
// concurrency semaphore (spec.md §4.I, §4.K).
func (c *Conn) fireEvent(roomID int16, eventType ast.EventType, eventData map[string]ast.Value) {
	decl, ok := c.cat.Get(roomID)
	if !ok {
		return
	}
	sess, ok := c.reg.Get(c.userID)
	if !ok {
		return
	}

	run := func(script *ast.Script) {
		if script == nil || c.cyborgSem == nil {
			return
		}
		if err := c.cyborgSem.Acquire(context.Background(), 1); err != nil {
			return
		}
		defer c.cyborgSem.Release(1)

		actions := newScriptActions(c.reg, c.st, c.log, c.userID)
		ictx := iptctx.New(iptctx.Cyborg, actions)
		ictx.UserID = c.userID
		ictx.UserName = sess.Username
		ictx.RoomID = roomID
		ictx.RoomName = derefOr(decl.Name, "")
		ictx.EventType = eventType
		if eventData != nil {
			ictx.EventData = eventData
		}
		machine := vm.WithLimits(c.cyborgLimits)
		if err := machine.ExecuteHandler(*script, eventType, ictx); err != nil {
			c.log.Debug("script handler error", "room", roomID, "event", eventType.Name(), "err", err)
		}
	}

	for _, door := range decl.Doors {
		run(door.Script)
	}
	for _, spot := range decl.Spots {
		run(spot.Script)
	}
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// userNewPayload renders a live Session as the UserRec a UserNew/
// UserList frame carries.
func userNewPayload(sess *Session) proto.UserNew {
	return proto.UserNew{User: toUserRec(sess)}
}

func toUserRec(sess *Session) proto.UserRec {
	var rec proto.UserRec
	rec.UserID = sess.UserID
	rec.RoomPos = sess.Pos
	copy(rec.Props[:], sess.Props)
	rec.RoomID = sess.CurrentRoom
	rec.Face = sess.Face
	rec.Color = sess.Color
	rec.NbrProps = int16(len(sess.Props))
	rec.Name = sess.Username
	return rec
}

func userListPayload(occupants []int32, reg *Registry) proto.UserList {
	var out proto.UserList
	for _, uid := range occupants {
		if sess, ok := reg.Get(uid); ok {
			out.Users = append(out.Users, toUserRec(sess))
		}
	}
	return out
}

func remoteIP(nc interface{ RemoteAddr() net.Addr }) string {
	addr := nc.RemoteAddr().String()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
