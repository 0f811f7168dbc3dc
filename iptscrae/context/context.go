// Package context carries the per-execution state a script handler
// runs with: whose event it is, which room, and the capability
// interface the VM calls back into to actually affect the server
// (spec.md §4.K).
package context

import (
	"github.com/palace-core/palace/iptscrae/ast"
	"github.com/palace-core/palace/wire"
)

// SecurityLevel restricts which builtins a script may call.
type SecurityLevel int

const (
	// Server is full privilege: room scripts written by the room's owner.
	Server SecurityLevel = iota
	// Cyborg is the sandboxed profile for user-authored scripts:
	// LOCK/UNLOCK/GOTOROOM/SUSRMSG/KILLUSER are denied.
	Cyborg
	// Admin is elevated privilege for server-operator scripts.
	Admin
)

// Actions is the capability interface the VM calls back into to
// perform Palace operations a script requested. Implementations wire
// these to the owning session/room.
type Actions interface {
	Say(message string)
	Chat(message string)
	LocalMsg(message string)
	RoomMsg(message string)
	PrivateMsg(userID int32, message string)
	GlobalMsg(message string)
	StatusMsg(message string)
	SuperuserMsg(message string)
	LogMsg(message string)

	GotoRoom(roomID int16)
	GotoURL(url string)
	GotoURLFrame(url, frame string)

	LockDoor(doorID int32)
	UnlockDoor(doorID int32)

	SetFace(faceID int16)
	SetColor(color int16)
	SetProps(props []wire.AssetSpec)
	SetPos(x, y int16)
	MoveUser(dx, dy int16)

	SetSpotState(spotID int32, state int32)
	AddLooseProp(propID int32, x, y int16)
	ClearLooseProps()

	PlaySound(soundID int32)
	PlayMidi(midiID int32)
	StopMidi()
	Beep()
	LaunchApp(url string)
}

// NoopActions implements Actions by doing nothing — useful for
// testing scripts that don't need to observe side effects.
type NoopActions struct{}

func (NoopActions) Say(string)        {}
func (NoopActions) Chat(string)       {}
func (NoopActions) LocalMsg(string)   {}
func (NoopActions) RoomMsg(string)    {}
func (NoopActions) PrivateMsg(int32, string) {}
func (NoopActions) GlobalMsg(string)  {}
func (NoopActions) StatusMsg(string)  {}
func (NoopActions) SuperuserMsg(string) {}
func (NoopActions) LogMsg(string)     {}

func (NoopActions) GotoRoom(int16)         {}
func (NoopActions) GotoURL(string)         {}
func (NoopActions) GotoURLFrame(string, string) {}

func (NoopActions) LockDoor(int32)   {}
func (NoopActions) UnlockDoor(int32) {}

func (NoopActions) SetFace(int16)             {}
func (NoopActions) SetColor(int16)            {}
func (NoopActions) SetProps([]wire.AssetSpec) {}
func (NoopActions) SetPos(int16, int16)       {}
func (NoopActions) MoveUser(int16, int16)     {}

func (NoopActions) SetSpotState(int32, int32)    {}
func (NoopActions) AddLooseProp(int32, int16, int16) {}
func (NoopActions) ClearLooseProps()             {}

func (NoopActions) PlaySound(int32)  {}
func (NoopActions) PlayMidi(int32)   {}
func (NoopActions) StopMidi()        {}
func (NoopActions) Beep()            {}
func (NoopActions) LaunchApp(string) {}

// Context is the per-handler-invocation state visible to a script:
// identity of the triggering user and room, the event that fired, any
// event-specific data, and the Actions callback surface.
type Context struct {
	SecurityLevel SecurityLevel

	UserID    int32
	UserName  string
	UserFace  int16
	UserProps []wire.AssetSpec

	UserPosX int16
	UserPosY int16

	RoomID   int16
	RoomName string

	ServerName string

	EventType EventType
	EventData map[string]ast.Value

	Actions Actions
}

// EventType is re-exported from ast so callers of this package don't
// need a second import for the common case of setting Context.EventType.
type EventType = ast.EventType

// New returns a Context with zero-valued identity fields, ready for a
// caller to populate before dispatching a handler.
func New(level SecurityLevel, actions Actions) *Context {
	return &Context{
		SecurityLevel: level,
		EventType:     ast.Select,
		EventData:     make(map[string]ast.Value),
		Actions:       actions,
	}
}

// cyborgDenied lists the builtins the Cyborg security profile may not
// call (spec.md §4.K): forcing navigation or door state, superuser
// messages and killing users are reserved for the Server and Admin
// profiles.
var cyborgDenied = map[string]bool{
	"LOCK": true, "UNLOCK": true, "GOTOROOM": true,
	"SUSRMSG": true, "KILLUSER": true,
}

// IsFunctionAllowed reports whether name may be called at this
// context's security level.
func (c *Context) IsFunctionAllowed(name string) bool {
	switch c.SecurityLevel {
	case Server, Admin:
		return true
	default: // Cyborg
		return !cyborgDenied[name]
	}
}
