package roomscript

import (
	"testing"

	"github.com/palace-core/palace/wire"
)

func TestParseSimpleRoom(t *testing.T) {
	rooms, err := ParseRooms(`
ROOM
  ID 100
  NAME "Test Room"
  PICT "background.gif"
ENDROOM
`)
	if err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 1 {
		t.Fatalf("got %d rooms, want 1", len(rooms))
	}
	if rooms[0].ID != 100 {
		t.Fatalf("id = %d, want 100", rooms[0].ID)
	}
	if rooms[0].Name == nil || *rooms[0].Name != "Test Room" {
		t.Fatalf("name = %v, want Test Room", rooms[0].Name)
	}
	if rooms[0].Pict == nil || *rooms[0].Pict != "background.gif" {
		t.Fatalf("pict = %v, want background.gif", rooms[0].Pict)
	}
}

func TestParseRoomWithFlags(t *testing.T) {
	rooms, err := ParseRooms(`
ROOM
  ID 200
  NAME "Private Room"
  PRIVATE
  NOPAINTING
  HIDDEN
ENDROOM
`)
	if err != nil {
		t.Fatal(err)
	}
	flags := rooms[0].Flags
	if !flags.Private || !flags.NoPainting || !flags.Hidden || flags.NoCyborgs {
		t.Fatalf("flags = %#v, want private+noPainting+hidden only", flags)
	}
}

func TestParseDoor(t *testing.T) {
	rooms, err := ParseRooms(`
ROOM
  ID 100
  DOOR
    ID 1
    DEST 200
    OUTLINE 10,10 50,10 50,200 10,200
  ENDDOOR
ENDROOM
`)
	if err != nil {
		t.Fatal(err)
	}
	if len(rooms[0].Doors) != 1 {
		t.Fatalf("got %d doors, want 1", len(rooms[0].Doors))
	}
	door := rooms[0].Doors[0]
	if door.ID != 1 || door.Dest != 200 {
		t.Fatalf("door = %#v, want id=1 dest=200", door)
	}
	if len(door.Outline) != 4 || door.Outline[0] != (wire.Point{H: 10, V: 10}) {
		t.Fatalf("outline = %v, want 4 points starting at (10,10)", door.Outline)
	}
}

func TestParseSpotWithOutline(t *testing.T) {
	rooms, err := ParseRooms(`
ROOM
  ID 100
  SPOT
    ID 2
    NAME "Button"
    OUTLINE 100,100 200,100 200,200 100,200
  ENDSPOT
ENDROOM
`)
	if err != nil {
		t.Fatal(err)
	}
	spot := rooms[0].Spots[0]
	if spot.ID != 2 || spot.Name == nil || *spot.Name != "Button" {
		t.Fatalf("spot = %#v, want id=2 name=Button", spot)
	}
	if len(spot.Outline) != 4 {
		t.Fatalf("got %d outline points, want 4", len(spot.Outline))
	}
}

func TestParsePicts(t *testing.T) {
	rooms, err := ParseRooms(`
ROOM
  ID 100
  SPOT
    ID 2
    PICTS
      100,0,0
      101,10,-5
    ENDPICTS
  ENDSPOT
ENDROOM
`)
	if err != nil {
		t.Fatal(err)
	}
	picts := rooms[0].Spots[0].Picts
	if len(picts) != 2 {
		t.Fatalf("got %d picts, want 2", len(picts))
	}
	if picts[0] != (StateDecl{PicID: 100, XOffset: 0, YOffset: 0}) {
		t.Fatalf("pict 0 = %#v", picts[0])
	}
	if picts[1] != (StateDecl{PicID: 101, XOffset: 10, YOffset: -5}) {
		t.Fatalf("pict 1 = %#v", picts[1])
	}
}

func TestParseMultipleRooms(t *testing.T) {
	rooms, err := ParseRooms(`
ROOM
  ID 100
  NAME "Room 1"
ENDROOM

ROOM
  ID 200
  NAME "Room 2"
ENDROOM
`)
	if err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 2 || rooms[0].ID != 100 || rooms[1].ID != 200 {
		t.Fatalf("rooms = %#v, want ids 100, 200", rooms)
	}
}

func TestParsePictureDecl(t *testing.T) {
	rooms, err := ParseRooms(`
ROOM
  ID 100
  PICTURE
    ID 1
    NAME "overlay.gif"
    TRANSCOLOR 255
  ENDPICTURE
ENDROOM
`)
	if err != nil {
		t.Fatal(err)
	}
	pic := rooms[0].Pictures[0]
	if pic.ID != 1 || pic.Name != "overlay.gif" || pic.TransColor == nil || *pic.TransColor != 255 {
		t.Fatalf("picture = %#v", pic)
	}
}

func TestParseSpotWithScript(t *testing.T) {
	rooms, err := ParseRooms(`
ROOM
  ID 100
  SPOT
    ID 2
    SCRIPT
      ON SELECT {
        "You clicked!" SAY
      }
    ENDSCRIPT
  ENDSPOT
ENDROOM
`)
	if err != nil {
		t.Fatal(err)
	}
	spot := rooms[0].Spots[0]
	if spot.Script == nil {
		t.Fatal("spot script is nil")
	}
	if len(spot.Script.Handlers) != 1 {
		t.Fatalf("got %d handlers, want 1", len(spot.Script.Handlers))
	}
}

func TestParseNegativeCoordinates(t *testing.T) {
	rooms, err := ParseRooms(`
ROOM
  ID 100
  SPOT
    ID 2
    OUTLINE -10,20 30,-40
  ENDSPOT
ENDROOM
`)
	if err != nil {
		t.Fatal(err)
	}
	outline := rooms[0].Spots[0].Outline
	if len(outline) != 2 {
		t.Fatalf("got %d points, want 2", len(outline))
	}
	if outline[0] != (wire.Point{H: -10, V: 20}) || outline[1] != (wire.Point{H: 30, V: -40}) {
		t.Fatalf("outline = %v", outline)
	}
}
