package proto

import (
	"bytes"
	"testing"

	"github.com/kylelemons/godebug/pretty"

	"github.com/palace-core/palace/wire"
)

func roundTrip(t *testing.T, p Payload, order ByteOrder) Payload {
	t.Helper()
	frame := EncodeFrame(7, p, order)
	h, payload, consumed, err := Scan(frame, order)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if consumed != len(frame) {
		t.Fatalf("consumed %d, want %d", consumed, len(frame))
	}
	if h.Kind != p.Kind() {
		t.Fatalf("kind = %s, want %s", h.Kind, p.Kind())
	}
	if h.Ref != 7 {
		t.Fatalf("ref = %d, want 7", h.Ref)
	}
	got, err := DecodePayload(h, payload, order)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	return got
}

func TestFrameRoundTripBothOrders(t *testing.T) {
	for _, order := range []ByteOrder{BigEndian, LittleEndian} {
		got := roundTrip(t, Talk{Text: "hello room"}, order)
		tk, ok := got.(Talk)
		if !ok || tk.Text != "hello room" {
			t.Fatalf("order %v: got %#v", order, got)
		}
	}
}

func TestTiyidEmptyPayload(t *testing.T) {
	got := roundTrip(t, Tiyid{}, BigEndian)
	if _, ok := got.(Tiyid); !ok {
		t.Fatalf("got %#v", got)
	}
}

func TestDetectByteOrder(t *testing.T) {
	be := PutHeader(Header{Kind: KindTiyid}, BigEndian)
	order, err := DetectByteOrder(be)
	if err != nil || order != BigEndian {
		t.Fatalf("big-endian probe: order=%v err=%v", order, err)
	}

	le := PutHeader(Header{Kind: KindTiyid}, LittleEndian)
	order, err = DetectByteOrder(le)
	if err != nil || order != LittleEndian {
		t.Fatalf("little-endian probe: order=%v err=%v", order, err)
	}
}

func TestDetectByteOrderRejectsNonTiyid(t *testing.T) {
	bad := PutHeader(Header{Kind: KindTalk}, BigEndian)
	if _, err := DetectByteOrder(bad); err == nil {
		t.Fatal("expected error for non-Tiyid first frame")
	}
}

func TestScanShortFrame(t *testing.T) {
	frame := EncodeFrame(1, Talk{Text: "x"}, BigEndian)
	_, _, _, err := Scan(frame[:len(frame)-1], BigEndian)
	if err != ErrShortFrame {
		t.Fatalf("err = %v, want ErrShortFrame", err)
	}
}

func TestHeaderValidateRejectsHugeLength(t *testing.T) {
	h := Header{Kind: KindTalk, Length: MaxPayloadLen + 1}
	if err := h.Validate(); err == nil {
		t.Fatal("expected error for oversized length")
	}
}

func TestUserRecRoundTrip(t *testing.T) {
	u := UserRec{
		UserID:  42,
		RoomPos: wire.Point{V: 10, H: 20},
		RoomID:  1,
		Face:    3,
		Color:   5,
		Name:    "Alice",
	}
	u.Props[0] = wire.AssetSpec{ID: 100, CRC: 0xdeadbeef}
	got := roundTrip(t, UserNew{User: u}, BigEndian)
	un, ok := got.(UserNew)
	if !ok {
		t.Fatalf("got %#v", got)
	}
	if diff := pretty.Compare(u, un.User); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUserListMultipleRecords(t *testing.T) {
	users := []UserRec{
		{UserID: 1, Name: "A"},
		{UserID: 2, Name: "B"},
		{UserID: 3, Name: "C"},
	}
	got := roundTrip(t, UserList{Users: users}, BigEndian)
	ul, ok := got.(UserList)
	if !ok || len(ul.Users) != 3 {
		t.Fatalf("got %#v", got)
	}
	for i, u := range ul.Users {
		if u.UserID != users[i].UserID || u.Name != users[i].Name {
			t.Fatalf("user %d mismatch: %#v", i, u)
		}
	}
}

func TestAuxRegistrationRecRoundTrip(t *testing.T) {
	rec := AuxRegistrationRec{
		RegCRC:                   1,
		Counter:                  2,
		Username:                 "wiz",
		WizardPassword:           "secret",
		AuxFlags:                 int32(MachineMacPPC) | (1 << 31),
		RequestedProtocolVersion: 1,
	}
	got := roundTrip(t, Logon{Rec: rec}, BigEndian)
	lg, ok := got.(Logon)
	if !ok {
		t.Fatalf("got %#v", got)
	}
	if diff := pretty.Compare(rec, lg.Rec); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if lg.Rec.MachineType() != MachineMacPPC || !lg.Rec.Authenticated() {
		t.Fatalf("derived accessors wrong: %#v", lg.Rec)
	}
}

func TestRoomRecVarBufAccessors(t *testing.T) {
	w := NewWriter(BigEndian)
	roomNameOfst := int16(w.Len())
	_ = w.PString("Gate")
	pictNameOfst := int16(w.Len())
	_ = w.PString("gate.pict")

	rec := RoomRec{
		RoomFlags:      RoomFlagNoGuests,
		RoomID:         0,
		RoomNameOffset: roomNameOfst,
		PictNameOffset: pictNameOfst,
		ArtistNameOffset: offsetAbsent,
		PasswordOffset:   offsetAbsent,
		VarBuf:         w.Bytes(),
	}

	got := roundTrip(t, rec, BigEndian)
	rr, ok := got.(RoomRec)
	if !ok {
		t.Fatalf("got %#v", got)
	}
	name, err := rr.RoomName()
	if err != nil || name != "Gate" {
		t.Fatalf("RoomName() = %q, %v", name, err)
	}
	pict, err := rr.PictName()
	if err != nil || pict != "gate.pict" {
		t.Fatalf("PictName() = %q, %v", pict, err)
	}
	if pw, err := rr.Password(); err != nil || pw != "" {
		t.Fatalf("Password() = %q, %v", pw, err)
	}
	if rr.RoomFlags&RoomFlagNoGuests == 0 {
		t.Fatal("expected RoomFlagNoGuests set")
	}
}

func TestRoomRecHotspotsAndLoosePropsArrays(t *testing.T) {
	vw := NewWriter(BigEndian)
	hotspotOfst := int16(vw.Len())
	h1 := HotspotRecord{ID: 1, Type: HotspotDoor, State: HotspotLocked, NameOffset: offsetAbsent, ScriptTextOffset: offsetAbsent}
	h2 := HotspotRecord{ID: 2, Type: HotspotNormal, NameOffset: offsetAbsent, ScriptTextOffset: offsetAbsent}
	h1.Encode(vw)
	h2.Encode(vw)

	lpropOfst := int16(vw.Len())
	lp := LoosePropRecord{PropSpec: wire.AssetSpec{ID: 9, CRC: 1}, Loc: wire.Point{V: 1, H: 2}}
	lp.encode(vw)

	rec := RoomRec{
		NbrHotspots:   2,
		HotspotOffset: hotspotOfst,
		NbrLprops:     1,
		FirstLprop:    lpropOfst,
		VarBuf:        vw.Bytes(),
	}

	got := roundTrip(t, rec, BigEndian)
	rr := got.(RoomRec)

	hotspots, err := rr.Hotspots()
	if err != nil {
		t.Fatalf("Hotspots: %v", err)
	}
	if len(hotspots) != 2 || hotspots[0].ID != 1 || hotspots[1].Type != HotspotNormal {
		t.Fatalf("hotspots mismatch: %#v", hotspots)
	}
	if hotspots[0].State != HotspotLocked {
		t.Fatalf("hotspot state mismatch: %#v", hotspots[0])
	}

	props, err := rr.LooseProps()
	if err != nil {
		t.Fatalf("LooseProps: %v", err)
	}
	if len(props) != 1 || props[0].PropSpec.ID != 9 || props[0].Loc.H != 2 {
		t.Fatalf("loose props mismatch: %#v", props)
	}
}

func TestListOfAllRoomsRoundTrip(t *testing.T) {
	rooms := []RoomListRec{
		{RoomID: 0, NbrUsers: 3, Name: "Gate"},
		{RoomID: 1, NbrUsers: 0, Name: "Main Hall"},
	}
	got := roundTrip(t, ListOfAllRooms{Rooms: rooms}, BigEndian)
	lr, ok := got.(ListOfAllRooms)
	if !ok || len(lr.Rooms) != 2 {
		t.Fatalf("got %#v", got)
	}
	if lr.Rooms[1].Name != "Main Hall" {
		t.Fatalf("room name mismatch: %#v", lr.Rooms[1])
	}
}

func TestXTalkCarriesCipherBytesOpaquely(t *testing.T) {
	cipher := []byte{0x01, 0x02, 0x03}
	got := roundTrip(t, XTalk{CipherText: cipher}, BigEndian)
	xt, ok := got.(XTalk)
	if !ok || !bytes.Equal(xt.CipherText, cipher) {
		t.Fatalf("got %#v", got)
	}
}

func TestAssetSendChunkRoundTrip(t *testing.T) {
	m := AssetSend{
		Type:        wire.AssetType{'P', 'r', 'o', 'p'},
		Spec:        wire.AssetSpec{ID: 5, CRC: 99},
		BlockOffset: 0,
		TotalSize:   10,
		Data:        []byte("0123456789"),
	}
	got := roundTrip(t, m, BigEndian)
	as, ok := got.(AssetSend)
	if !ok || string(as.Data) != "0123456789" || as.Type.String() != "Prop" {
		t.Fatalf("got %#v", got)
	}
}

func TestServerDownOptionalMessage(t *testing.T) {
	got := roundTrip(t, ServerDown{Reason: ServerDownReasonKicked}, BigEndian)
	sd, ok := got.(ServerDown)
	if !ok || sd.Message != "" {
		t.Fatalf("got %#v", got)
	}

	got = roundTrip(t, ServerDown{Reason: ServerDownReasonShutdown, Message: "bye"}, BigEndian)
	sd, ok = got.(ServerDown)
	if !ok || sd.Message != "bye" {
		t.Fatalf("got %#v", got)
	}
}

func TestDecodePayloadUnknownKind(t *testing.T) {
	h := Header{Kind: kindOf("????")}
	if _, err := DecodePayload(h, nil, BigEndian); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
