package builtins

import (
	"fmt"
	"time"

	"github.com/palace-core/palace/iptscrae/ast"
	"github.com/palace-core/palace/iptscrae/context"
	"github.com/palace-core/palace/wire"
)

// eventInt reads an integer event-data field set by the dispatcher
// before a handler runs (e.g. "door_id" for an ON LOCK/UNLOCK
// handler), defaulting to def when absent.
func eventInt(ctx *context.Context, key string, def int32) int32 {
	if ctx == nil {
		return def
	}
	if v, ok := ctx.EventData[key]; ok && v.Kind == ast.KindInt {
		return v.Int
	}
	return def
}

func registerPalace(r map[string]Func) {
	r["SAY"] = msgBuiltin("SAY", func(a context.Actions, s string) { a.Say(s) })
	r["CHAT"] = msgBuiltin("CHAT", func(a context.Actions, s string) { a.Chat(s) })
	r["LOCALMSG"] = msgBuiltin("LOCALMSG", func(a context.Actions, s string) { a.LocalMsg(s) })
	r["ROOMMSG"] = msgBuiltin("ROOMMSG", func(a context.Actions, s string) { a.RoomMsg(s) })
	r["GLOBALMSG"] = msgBuiltin("GLOBALMSG", func(a context.Actions, s string) { a.GlobalMsg(s) })
	r["STATUSMSG"] = msgBuiltin("STATUSMSG", func(a context.Actions, s string) { a.StatusMsg(s) })
	r["LOGMSG"] = msgBuiltin("LOGMSG", func(a context.Actions, s string) { a.LogMsg(s) })

	r["SUSRMSG"] = func(m Machine, ctx *context.Context) error {
		message, err := m.Pop("SUSRMSG")
		if err != nil {
			return err
		}
		if ctx.SecurityLevel != context.Admin {
			return errTypeError("SUSRMSG requires admin privileges")
		}
		ctx.Actions.SuperuserMsg(message.String())
		return nil
	}

	r["PRIVATEMSG"] = func(m Machine, ctx *context.Context) error {
		message, err := m.Pop("PRIVATEMSG")
		if err != nil {
			return err
		}
		userID, err := m.Pop("PRIVATEMSG user_id")
		if err != nil {
			return err
		}
		ctx.Actions.PrivateMsg(userID.ToInt(), message.String())
		return nil
	}

	r["SAYAT"] = func(m Machine, ctx *context.Context) error {
		y, err := m.Pop("SAYAT y")
		if err != nil {
			return err
		}
		x, err := m.Pop("SAYAT x")
		if err != nil {
			return err
		}
		message, err := m.Pop("SAYAT message")
		if err != nil {
			return err
		}
		ctx.Actions.Say(fmt.Sprintf("@%d,%d: %s", x.ToInt(), y.ToInt(), message.String()))
		return nil
	}

	r["USERNAME"] = func(m Machine, ctx *context.Context) error {
		m.Push(ast.Str(ctx.UserName))
		return nil
	}
	r["WHOME"] = func(m Machine, ctx *context.Context) error {
		m.Push(ast.Int32(ctx.UserID))
		return nil
	}
	r["ME"] = r["WHOME"]
	r["ID"] = r["WHOME"]
	r["USERID"] = r["WHOME"]

	r["WHONAME"] = func(m Machine, ctx *context.Context) error {
		userID, err := m.Pop("WHONAME")
		if err != nil {
			return err
		}
		if userID.ToInt() == ctx.UserID {
			m.Push(ast.Str(ctx.UserName))
		} else {
			m.Push(ast.Str(fmt.Sprintf("User%d", userID.ToInt())))
		}
		return nil
	}

	r["SETFACE"] = func(m Machine, ctx *context.Context) error {
		v, err := m.Pop("SETFACE")
		if err != nil {
			return err
		}
		ctx.Actions.SetFace(int16(v.ToInt()))
		return nil
	}
	r["SETCOLOR"] = func(m Machine, ctx *context.Context) error {
		v, err := m.Pop("SETCOLOR")
		if err != nil {
			return err
		}
		ctx.Actions.SetColor(int16(v.ToInt()))
		return nil
	}

	r["GETPROPS"] = func(m Machine, ctx *context.Context) error {
		m.Push(ast.Int32(int32(len(ctx.UserProps))))
		for _, p := range ctx.UserProps {
			m.Push(ast.Int32(int32(p.CRC)))
			m.Push(ast.Int32(p.ID))
		}
		return nil
	}
	r["SETPROPS"] = func(m Machine, ctx *context.Context) error {
		n, err := m.Pop("SETPROPS num_props")
		if err != nil {
			return err
		}
		if n.ToInt() < 0 {
			return errTypeError("SETPROPS num_props must be non-negative")
		}
		props := make([]wire.AssetSpec, 0, n.ToInt())
		for i := int32(0); i < n.ToInt(); i++ {
			id, err := m.Pop("SETPROPS prop id")
			if err != nil {
				return err
			}
			crc, err := m.Pop("SETPROPS prop crc")
			if err != nil {
				return err
			}
			props = append(props, wire.AssetSpec{ID: id.ToInt(), CRC: uint32(crc.ToInt())})
		}
		ctx.Actions.SetProps(props)
		return nil
	}
	r["NAKED"] = func(_ Machine, ctx *context.Context) error {
		ctx.Actions.SetProps(nil)
		return nil
	}
	r["DONPROP"] = func(m Machine, ctx *context.Context) error {
		id, err := m.Pop("DONPROP id")
		if err != nil {
			return err
		}
		crc, err := m.Pop("DONPROP crc")
		if err != nil {
			return err
		}
		props := append(append([]wire.AssetSpec{}, ctx.UserProps...), wire.AssetSpec{ID: id.ToInt(), CRC: uint32(crc.ToInt())})
		ctx.Actions.SetProps(props)
		return nil
	}
	r["DOFFPROP"] = dropPropByID
	r["REMOVEPROP"] = dropPropByID
	r["DROPPROP"] = func(_ Machine, ctx *context.Context) error {
		if len(ctx.UserProps) == 0 {
			ctx.Actions.SetProps(nil)
			return nil
		}
		ctx.Actions.SetProps(ctx.UserProps[:len(ctx.UserProps)-1])
		return nil
	}
	r["USERPROP"] = func(m Machine, ctx *context.Context) error {
		index, err := m.Pop("USERPROP")
		if err != nil {
			return err
		}
		i := index.ToInt()
		if i >= 0 && int(i) < len(ctx.UserProps) {
			m.Push(ast.Int32(int32(ctx.UserProps[i].CRC)))
			m.Push(ast.Int32(ctx.UserProps[i].ID))
		} else {
			m.Push(ast.Int32(0))
			m.Push(ast.Int32(0))
		}
		return nil
	}
	r["NBRUSERPROPS"] = func(m Machine, ctx *context.Context) error {
		m.Push(ast.Int32(int32(len(ctx.UserProps))))
		return nil
	}
	r["TOPPROP"] = func(m Machine, ctx *context.Context) error {
		if len(ctx.UserProps) == 0 {
			m.Push(ast.Int32(0))
			m.Push(ast.Int32(0))
			return nil
		}
		last := ctx.UserProps[len(ctx.UserProps)-1]
		m.Push(ast.Int32(int32(last.CRC)))
		m.Push(ast.Int32(last.ID))
		return nil
	}
	r["HASPROP"] = func(m Machine, ctx *context.Context) error {
		id, err := m.Pop("HASPROP")
		if err != nil {
			return err
		}
		has := int32(0)
		for _, p := range ctx.UserProps {
			if p.ID == id.ToInt() {
				has = 1
				break
			}
		}
		m.Push(ast.Int32(has))
		return nil
	}
	r["MACRO"] = func(m Machine, _ *context.Context) error {
		_, err := m.Pop("MACRO")
		return err
	}

	r["ROOMNAME"] = func(m Machine, ctx *context.Context) error {
		m.Push(ast.Str(ctx.RoomName))
		return nil
	}
	r["ROOMID"] = func(m Machine, ctx *context.Context) error {
		m.Push(ast.Int32(int32(ctx.RoomID)))
		return nil
	}
	r["GOTOROOM"] = func(m Machine, ctx *context.Context) error {
		roomID, err := m.Pop("GOTOROOM")
		if err != nil {
			return err
		}
		ctx.Actions.GotoRoom(int16(roomID.ToInt()))
		return nil
	}
	r["LOCK"] = func(m Machine, ctx *context.Context) error {
		doorID, err := m.Pop("LOCK")
		if err != nil {
			return err
		}
		ctx.Actions.LockDoor(doorID.ToInt())
		return nil
	}
	r["UNLOCK"] = func(m Machine, ctx *context.Context) error {
		doorID, err := m.Pop("UNLOCK")
		if err != nil {
			return err
		}
		ctx.Actions.UnlockDoor(doorID.ToInt())
		return nil
	}

	r["POSX"] = func(m Machine, ctx *context.Context) error {
		m.Push(ast.Int32(int32(ctx.UserPosX)))
		return nil
	}
	r["POSY"] = func(m Machine, ctx *context.Context) error {
		m.Push(ast.Int32(int32(ctx.UserPosY)))
		return nil
	}
	setPos := func(m Machine, ctx *context.Context) error {
		y, err := m.Pop("SETPOS y")
		if err != nil {
			return err
		}
		x, err := m.Pop("SETPOS x")
		if err != nil {
			return err
		}
		ctx.Actions.SetPos(int16(x.ToInt()), int16(y.ToInt()))
		ctx.UserPosX, ctx.UserPosY = int16(x.ToInt()), int16(y.ToInt())
		return nil
	}
	r["SETPOS"] = setPos
	r["SETLOC"] = setPos
	r["MOVE"] = func(m Machine, ctx *context.Context) error {
		dy, err := m.Pop("MOVE dy")
		if err != nil {
			return err
		}
		dx, err := m.Pop("MOVE dx")
		if err != nil {
			return err
		}
		ctx.Actions.MoveUser(int16(dx.ToInt()), int16(dy.ToInt()))
		ctx.UserPosX += int16(dx.ToInt())
		ctx.UserPosY += int16(dy.ToInt())
		return nil
	}
	r["WHOPOS"] = func(m Machine, ctx *context.Context) error {
		userID, err := m.Pop("WHOPOS")
		if err != nil {
			return err
		}
		if userID.ToInt() == ctx.UserID {
			m.Push(ast.Int32(int32(ctx.UserPosX)))
			m.Push(ast.Int32(int32(ctx.UserPosY)))
		} else {
			m.Push(ast.Int32(0))
			m.Push(ast.Int32(0))
		}
		return nil
	}

	r["GOTOURL"] = func(m Machine, ctx *context.Context) error {
		url, err := m.Pop("GOTOURL")
		if err != nil {
			return err
		}
		ctx.Actions.GotoURL(url.String())
		return nil
	}
	r["GOTOURLFRAME"] = func(m Machine, ctx *context.Context) error {
		frame, err := m.Pop("GOTOURLFRAME frame")
		if err != nil {
			return err
		}
		url, err := m.Pop("GOTOURLFRAME url")
		if err != nil {
			return err
		}
		ctx.Actions.GotoURLFrame(url.String(), frame.String())
		return nil
	}
	r["NETGOTO"] = func(m Machine, ctx *context.Context) error {
		roomID, err := m.Pop("NETGOTO room_id")
		if err != nil {
			return err
		}
		server, err := m.Pop("NETGOTO server")
		if err != nil {
			return err
		}
		ctx.Actions.GotoURL(fmt.Sprintf("palace://%s?room=%d", server.String(), roomID.ToInt()))
		return nil
	}

	r["NBRROOMUSERS"] = func(m Machine, _ *context.Context) error {
		m.Push(ast.Int32(1))
		return nil
	}
	r["ROOMUSER"] = func(m Machine, ctx *context.Context) error {
		index, err := m.Pop("ROOMUSER")
		if err != nil {
			return err
		}
		if index.ToInt() == 0 {
			m.Push(ast.Int32(ctx.UserID))
		} else {
			m.Push(ast.Int32(0))
		}
		return nil
	}

	r["WHOCHAT"] = eventUserIDOrSelf("chat_user_id")
	r["WHOTARGET"] = eventUserIDOrSelf("target_user_id")

	r["ISGOD"] = isAdmin
	r["ISWIZARD"] = isAdmin
	r["ISGUEST"] = func(m Machine, _ *context.Context) error {
		m.Push(ast.Int32(0))
		return nil
	}
	r["KILLUSER"] = func(m Machine, ctx *context.Context) error {
		_, err := m.Pop("KILLUSER")
		if err != nil {
			return err
		}
		if ctx.SecurityLevel != context.Admin {
			return errTypeError("KILLUSER requires admin privileges")
		}
		return nil
	}

	r["DOORIDX"] = eventIntPush("door_id", -1)
	r["NBRDOORS"] = constInt(0)
	r["DEST"] = popAndConstInt("DEST", 0)
	r["ISLOCKED"] = popAndConstInt("ISLOCKED", 0)

	r["SPOTIDX"] = eventIntPush("spot_id", -1)
	r["NBRSPOTS"] = constInt(0)
	r["SPOTNAME"] = func(m Machine, _ *context.Context) error {
		if _, err := m.Pop("SPOTNAME"); err != nil {
			return err
		}
		m.Push(ast.Str(""))
		return nil
	}
	r["SPOTDEST"] = popAndConstInt("SPOTDEST", 0)
	r["INSPOT"] = popAndConstInt("INSPOT", 0)
	r["GETSPOTSTATE"] = popAndConstInt("GETSPOTSTATE", 0)
	r["SETSPOTSTATE"] = func(m Machine, ctx *context.Context) error {
		state, err := m.Pop("SETSPOTSTATE state")
		if err != nil {
			return err
		}
		spotID, err := m.Pop("SETSPOTSTATE spot_id")
		if err != nil {
			return err
		}
		ctx.Actions.SetSpotState(spotID.ToInt(), state.ToInt())
		return nil
	}
	r["SETSPOTSTATELOCAL"] = func(m Machine, _ *context.Context) error {
		if _, err := m.Pop("SETSPOTSTATELOCAL state"); err != nil {
			return err
		}
		_, err := m.Pop("SETSPOTSTATELOCAL spot_id")
		return err
	}
	r["SETPICLOC"] = func(m Machine, _ *context.Context) error {
		if _, err := m.Pop("SETPICLOC y"); err != nil {
			return err
		}
		_, err := m.Pop("SETPICLOC x")
		return err
	}

	r["ADDLOOSEPROP"] = func(m Machine, ctx *context.Context) error {
		y, err := m.Pop("ADDLOOSEPROP y")
		if err != nil {
			return err
		}
		x, err := m.Pop("ADDLOOSEPROP x")
		if err != nil {
			return err
		}
		propID, err := m.Pop("ADDLOOSEPROP prop_id")
		if err != nil {
			return err
		}
		ctx.Actions.AddLooseProp(propID.ToInt(), int16(x.ToInt()), int16(y.ToInt()))
		return nil
	}
	r["CLEARLOOSEPROPS"] = func(_ Machine, ctx *context.Context) error {
		ctx.Actions.ClearLooseProps()
		return nil
	}
	r["SHOWLOOSEPROPS"] = func(m Machine, _ *context.Context) error {
		_, err := m.Pop("SHOWLOOSEPROPS")
		return err
	}

	r["SERVERNAME"] = func(m Machine, ctx *context.Context) error {
		m.Push(ast.Str(ctx.ServerName))
		return nil
	}
	r["CLIENTTYPE"] = func(m Machine, _ *context.Context) error {
		m.Push(ast.Str("Palace"))
		return nil
	}
	r["IPTVERSION"] = constInt(1)
	r["DATETIME"] = func(m Machine, _ *context.Context) error {
		m.Push(ast.Str(fmt.Sprintf("%d", time.Now().Unix())))
		return nil
	}
	r["TICKS"] = func(m Machine, _ *context.Context) error {
		m.Push(ast.Int32(int32(time.Now().UnixMilli())))
		return nil
	}
	r["MOUSEPOS"] = func(m Machine, _ *context.Context) error {
		m.Push(ast.Int32(0))
		m.Push(ast.Int32(0))
		return nil
	}
	r["DELAY"] = func(m Machine, _ *context.Context) error {
		_, err := m.Pop("DELAY")
		return err
	}
	r["DIMROOM"] = func(m Machine, _ *context.Context) error {
		_, err := m.Pop("DIMROOM")
		return err
	}
	r["GLOBAL"] = func(m Machine, _ *context.Context) error {
		name, err := m.Pop("GLOBAL")
		if err != nil {
			return err
		}
		if v, ok := m.Variable(name.String()); ok {
			m.Push(v)
		} else {
			m.Push(ast.Int32(0))
		}
		return nil
	}

	r["SOUND"] = func(m Machine, ctx *context.Context) error {
		id, err := m.Pop("SOUND")
		if err != nil {
			return err
		}
		ctx.Actions.PlaySound(id.ToInt())
		return nil
	}
	r["MIDIPLAY"] = func(m Machine, ctx *context.Context) error {
		id, err := m.Pop("MIDIPLAY")
		if err != nil {
			return err
		}
		ctx.Actions.PlayMidi(id.ToInt())
		return nil
	}
	r["MIDISTOP"] = func(_ Machine, ctx *context.Context) error {
		ctx.Actions.StopMidi()
		return nil
	}
	r["BEEP"] = func(_ Machine, ctx *context.Context) error {
		ctx.Actions.Beep()
		return nil
	}
	r["LAUNCHAPP"] = func(m Machine, ctx *context.Context) error {
		url, err := m.Pop("LAUNCHAPP")
		if err != nil {
			return err
		}
		ctx.Actions.LaunchApp(url.String())
		return nil
	}

	// Painting/pen builtins are UI-side drawing effects this server
	// never rasterizes; they consume their stack operands and are
	// otherwise no-ops, matching the grounding source's own stubs.
	r["LINE"] = popN(4)
	r["LINETO"] = popN(2)
	r["PENPOS"] = func(m Machine, _ *context.Context) error {
		m.Push(ast.Int32(0))
		m.Push(ast.Int32(0))
		return nil
	}
	r["PENTO"] = popN(2)
	r["PENSIZE"] = popN(1)
	r["PENCOLOR"] = popN(1)
	r["PENFRONT"] = noop
	r["PENBACK"] = noop
	r["PAINTCLEAR"] = noop
	r["PAINTUNDO"] = noop
}

func msgBuiltin(op string, send func(context.Actions, string)) Func {
	return func(m Machine, ctx *context.Context) error {
		message, err := m.Pop(op)
		if err != nil {
			return err
		}
		send(ctx.Actions, message.String())
		return nil
	}
}

func dropPropByID(m Machine, ctx *context.Context) error {
	id, err := m.Pop("DOFFPROP id")
	if err != nil {
		return err
	}
	kept := make([]wire.AssetSpec, 0, len(ctx.UserProps))
	for _, p := range ctx.UserProps {
		if p.ID != id.ToInt() {
			kept = append(kept, p)
		}
	}
	ctx.Actions.SetProps(kept)
	return nil
}

func eventUserIDOrSelf(key string) Func {
	return func(m Machine, ctx *context.Context) error {
		m.Push(ast.Int32(eventInt(ctx, key, ctx.UserID)))
		return nil
	}
}

func eventIntPush(key string, def int32) Func {
	return func(m Machine, ctx *context.Context) error {
		m.Push(ast.Int32(eventInt(ctx, key, def)))
		return nil
	}
}

func isAdmin(m Machine, ctx *context.Context) error {
	v := int32(0)
	if ctx.SecurityLevel == context.Admin {
		v = 1
	}
	m.Push(ast.Int32(v))
	return nil
}

func constInt(n int32) Func {
	return func(m Machine, _ *context.Context) error {
		m.Push(ast.Int32(n))
		return nil
	}
}

func popAndConstInt(op string, n int32) Func {
	return func(m Machine, _ *context.Context) error {
		if _, err := m.Pop(op); err != nil {
			return err
		}
		m.Push(ast.Int32(n))
		return nil
	}
}

func popN(n int) Func {
	return func(m Machine, _ *context.Context) error {
		for i := 0; i < n; i++ {
			if _, err := m.Pop("pop"); err != nil {
				return err
			}
		}
		return nil
	}
}

func noop(Machine, *context.Context) error { return nil }
