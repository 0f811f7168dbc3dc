package roomscript

import (
	"testing"

	"github.com/palace-core/palace/proto"
	"github.com/palace-core/palace/wire"
)

func strp(s string) *string { return &s }

func TestConvertFlags(t *testing.T) {
	got := convertFlags(RoomFlags{Private: true, NoPainting: true})
	if got&proto.RoomFlagPrivate == 0 || got&proto.RoomFlagNoPainting == 0 {
		t.Fatalf("flags = %v, want Private|NoPainting", got)
	}
	if got&proto.RoomFlagCyborgFreeZone != 0 || got&proto.RoomFlagHidden != 0 || got&proto.RoomFlagNoGuests != 0 {
		t.Fatalf("flags = %v, want no other bits set", got)
	}
}

func TestVarBufBuilderPString(t *testing.T) {
	b := newVarBufBuilder()
	off1, err := b.writePString("f", "Hello")
	if err != nil {
		t.Fatal(err)
	}
	if off1 != 0 || b.offset() != 6 {
		t.Fatalf("off1=%d offset=%d, want 0, 6", off1, b.offset())
	}
	off2, err := b.writePString("f", "World")
	if err != nil {
		t.Fatal(err)
	}
	if off2 != 6 || b.offset() != 12 {
		t.Fatalf("off2=%d offset=%d, want 6, 12", off2, b.offset())
	}
	buf := b.finish()
	if len(buf) != 12 || buf[0] != 5 || string(buf[1:6]) != "Hello" || buf[6] != 5 || string(buf[7:12]) != "World" {
		t.Fatalf("buf = %v", buf)
	}
}

func TestVarBufBuilderOptionalPString(t *testing.T) {
	b := newVarBufBuilder()
	off1, err := b.writeOptionalPString("f", strp("Test"))
	if err != nil {
		t.Fatal(err)
	}
	if off1 != 0 {
		t.Fatalf("off1 = %d, want 0", off1)
	}
	off2, err := b.writeOptionalPString("f", nil)
	if err != nil {
		t.Fatal(err)
	}
	if off2 != offsetAbsent {
		t.Fatalf("off2 = %d, want -1", off2)
	}
	if b.offset() != 5 {
		t.Fatalf("offset = %d, want 5", b.offset())
	}
}

func TestVarBufBuilderAlignment(t *testing.T) {
	b := newVarBufBuilder()
	if _, err := b.writePString("f", "Hi"); err != nil {
		t.Fatal(err)
	}
	if b.offset() != 3 {
		t.Fatalf("offset = %d, want 3", b.offset())
	}
	b.alignTo4()
	if b.offset() != 4 {
		t.Fatalf("offset after align = %d, want 4", b.offset())
	}
	if _, err := b.writePString("f", "Test"); err != nil {
		t.Fatal(err)
	}
	if b.offset() != 9 {
		t.Fatalf("offset = %d, want 9", b.offset())
	}
	b.alignTo4()
	if b.offset() != 12 {
		t.Fatalf("offset after align = %d, want 12", b.offset())
	}
}

func TestEncodeSimpleRoom(t *testing.T) {
	rec, err := EncodeRoom(RoomDecl{
		ID:   100,
		Name: strp("Test Room"),
		Pict: strp("test.gif"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.RoomID != 100 {
		t.Fatalf("room id = %d, want 100", rec.RoomID)
	}
	if rec.NbrHotspots != 0 || rec.NbrPictures != 0 {
		t.Fatalf("expected no hotspots/pictures, got %d/%d", rec.NbrHotspots, rec.NbrPictures)
	}
	name, err := rec.RoomName()
	if err != nil {
		t.Fatal(err)
	}
	if name != "Test Room" {
		t.Fatalf("room name = %q, want Test Room", name)
	}
	pict, err := rec.PictName()
	if err != nil {
		t.Fatal(err)
	}
	if pict != "test.gif" {
		t.Fatalf("pict name = %q, want test.gif", pict)
	}
}

func TestEncodeRoomWithDoorsAndSpots(t *testing.T) {
	rec, err := EncodeRoom(RoomDecl{
		ID: 100,
		Doors: []DoorDecl{
			{ID: 1, Dest: 200, Outline: []wire.Point{
				{H: 10, V: 10}, {H: 50, V: 10}, {H: 50, V: 200}, {H: 10, V: 200},
			}},
		},
		Spots: []SpotDecl{
			{ID: 2, Name: strp("Button"), Outline: []wire.Point{
				{H: 100, V: 100}, {H: 200, V: 100}, {H: 200, V: 200}, {H: 100, V: 200},
			}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.NbrHotspots != 2 {
		t.Fatalf("nbr hotspots = %d, want 2", rec.NbrHotspots)
	}
	hotspots, err := rec.Hotspots()
	if err != nil {
		t.Fatal(err)
	}
	if len(hotspots) != 2 {
		t.Fatalf("decoded %d hotspots, want 2", len(hotspots))
	}
	if hotspots[0].Type != proto.HotspotDoor || hotspots[0].Dest != 200 {
		t.Fatalf("hotspot 0 = %#v, want door dest=200", hotspots[0])
	}
	if hotspots[1].Type != proto.HotspotNormal {
		t.Fatalf("hotspot 1 = %#v, want normal spot", hotspots[1])
	}
}
