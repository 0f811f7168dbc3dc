// Package roomscript handles the declarative room-file meta-syntax
// server operators write to define rooms, doors, and spots (e.g. a
// Mansion.ipt file) — distinct from the event-handler scripting
// language in iptscrae/parser (spec.md §4.G).
//
//	ROOM
//	  ID 100
//	  NAME "Entrance Hall"
//	  PICT "entrance.gif"
//	  ARTIST "Jane Doe"
//	  PRIVATE
//
//	  DOOR
//	    ID 1
//	    DEST 200
//	    OUTLINE 10,10 50,10 50,200 10,200
//	  ENDDOOR
//
//	  SPOT
//	    ID 2
//	    NAME "Button"
//	    OUTLINE 100,100 200,100 200,200 100,200
//	    SCRIPT
//	      ON SELECT { "You clicked!" SAY }
//	    ENDSCRIPT
//	  ENDSPOT
//	ENDROOM
package roomscript

import (
	"github.com/palace-core/palace/iptscrae/ast"
	"github.com/palace-core/palace/wire"
)

// RoomDecl is a complete room declaration parsed from a server script
// file.
type RoomDecl struct {
	ID       int16
	Name     *string
	Pict     *string
	Artist   *string
	Password *string
	Flags    RoomFlags
	Pictures []PictureDecl
	Doors    []DoorDecl
	Spots    []SpotDecl
}

// RoomFlags are the boolean switches a ROOM block may set.
type RoomFlags struct {
	Private    bool
	NoPainting bool
	NoCyborgs  bool
	Hidden     bool
	NoGuests   bool
}

// PictureDecl is an additional picture layer drawn in the room.
type PictureDecl struct {
	ID         int16
	Name       string
	TransColor *int16
}

// DoorDecl is a hotspot that transports the user to another room.
type DoorDecl struct {
	ID      int16
	Dest    int16
	Name    *string
	Outline []wire.Point
	Picts   []StateDecl
	Script  *ast.Script
}

// SpotDecl is a plain (non-door) hotspot.
type SpotDecl struct {
	ID      int16
	Name    *string
	Outline []wire.Point
	Picts   []StateDecl
	Script  *ast.Script
}

// StateDecl is one picture+offset state in a hotspot's Picts list.
// State 0 is the hotspot's resting appearance; later entries are
// selected by SpotState/SETSPOTSTATE (spec.md §4.H).
type StateDecl struct {
	PicID   int16
	XOffset int16
	YOffset int16
}
