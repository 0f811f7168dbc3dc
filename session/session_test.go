package session

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/palace-core/palace/proto"
	"github.com/palace-core/palace/wire/cipher"
)

// testClient is a hand-rolled Palace wire client: just enough of the
// handshake and frame I/O to drive the scenarios in spec.md §8.2
// without pulling in a GUI or asset layer.
type testClient struct {
	t    *testing.T
	nc   net.Conn
	name string
}

func dialTestClient(t *testing.T, addr, username string, desiredRoom int16) *testClient {
	t.Helper()
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { nc.Close() })
	c := &testClient{t: t, nc: nc, name: username}

	// Probe handshake: send Tiyid, read the server's Tiyid reply.
	if _, err := nc.Write(proto.EncodeFrame(0, proto.Tiyid{}, proto.BigEndian)); err != nil {
		t.Fatalf("write tiyid: %v", err)
	}
	if _, _, err := c.readFrame(); err != nil {
		t.Fatalf("read tiyid reply: %v", err)
	}

	logon := proto.Logon{Rec: proto.AuxRegistrationRec{Username: username, DesiredRoom: desiredRoom}}
	if _, err := nc.Write(proto.EncodeFrame(0, logon, proto.BigEndian)); err != nil {
		t.Fatalf("write logon: %v", err)
	}
	return c
}

func (c *testClient) readFrame() (proto.Header, proto.Payload, error) {
	header := make([]byte, proto.HeaderSize)
	if _, err := io.ReadFull(c.nc, header); err != nil {
		return proto.Header{}, nil, err
	}
	h, err := proto.ParseHeader(header, proto.BigEndian)
	if err != nil {
		return proto.Header{}, nil, err
	}
	payload := make([]byte, h.Length)
	if _, err := io.ReadFull(c.nc, payload); err != nil {
		return proto.Header{}, nil, err
	}
	msg, err := proto.DecodePayload(h, payload, proto.BigEndian)
	return h, msg, err
}

func (c *testClient) expectKind(want proto.Kind) (proto.Header, proto.Payload) {
	c.t.Helper()
	c.nc.SetReadDeadline(time.Now().Add(2 * time.Second))
	h, msg, err := c.readFrame()
	if err != nil {
		c.t.Fatalf("%s: read frame: %v", c.name, err)
	}
	if h.Kind != want {
		c.t.Fatalf("%s: got kind %s, want %s", c.name, h.Kind, want)
	}
	return h, msg
}

func (c *testClient) send(ref int32, p proto.Payload) {
	c.t.Helper()
	if _, err := c.nc.Write(proto.EncodeFrame(ref, p, proto.BigEndian)); err != nil {
		c.t.Fatalf("%s: write: %v", c.name, err)
	}
}

const defaultTestRooms = `
ROOM
  ID 0
  NAME "Gate"
ENDROOM
ROOM
  ID 1
  NAME "Main Hall"
ENDROOM
`

func startTestServer(t *testing.T) *Server {
	t.Helper()
	return startTestServerWithRooms(t, defaultTestRooms)
}

func startTestServerWithRooms(t *testing.T, roomSource string) *Server {
	t.Helper()
	srv := NewServer("127.0.0.1:0", "Test Palace", nil, nil)
	if err := srv.LoadRoomFile(roomSource); err != nil {
		t.Fatalf("LoadRoomFile: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close() // release the port; ListenAndServe re-binds it below
	srv.Addr = addr

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.ListenAndServe(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the listener a moment to bind before any client dials.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if conn, err := net.Dial("tcp", addr); err == nil {
			conn.Close()
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	return srv
}

// TestTwoClientChatFanout implements spec.md §8.2 scenario 1.
func TestTwoClientChatFanout(t *testing.T) {
	srv := startTestServer(t)

	alice := dialTestClient(t, srv.Addr, "Alice", 0)
	alice.expectKind(proto.KindServerInfo)
	_, ulMsg := alice.expectKind(proto.KindUserList)
	if ul, ok := ulMsg.(proto.UserList); !ok || len(ul.Users) != 1 {
		t.Fatalf("Alice's initial UserList = %#v, want 1 user", ulMsg)
	}
	alice.expectKind(proto.KindRoomDesc)
	alice.expectKind(proto.KindRoomDescEnd)

	bob := dialTestClient(t, srv.Addr, "Bob", 0)
	bob.expectKind(proto.KindServerInfo)
	bob.expectKind(proto.KindUserList)
	bob.expectKind(proto.KindRoomDesc)
	bob.expectKind(proto.KindRoomDescEnd)

	// Alice sees Bob's arrival.
	_, newMsg := alice.expectKind(proto.KindUserNew)
	un, ok := newMsg.(proto.UserNew)
	if !ok || un.User.Name != "Bob" {
		t.Fatalf("Alice's UserNew = %#v, want Bob", newMsg)
	}

	bob.send(0, proto.Talk{Text: "hi"})

	hA, talkA := alice.expectKind(proto.KindTalk)
	hB, talkB := bob.expectKind(proto.KindTalk)
	if talkA.(proto.Talk).Text != "hi" || talkB.(proto.Talk).Text != "hi" {
		t.Fatalf("talk text mismatch: alice=%v bob=%v", talkA, talkB)
	}
	if hA.Ref != un.User.UserID || hB.Ref != un.User.UserID {
		t.Fatalf("talk ref = %d/%d, want Bob's user id %d", hA.Ref, hB.Ref, un.User.UserID)
	}
}

// TestScriptGreetingOnEnter implements spec.md §8.2 scenario 4: a
// room's ENTER handler fires on logon and its SAY broadcasts to the
// room as a Talk frame.
func TestScriptGreetingOnEnter(t *testing.T) {
	srv := startTestServerWithRooms(t, `
ROOM
  ID 0
  NAME "Gate"
  SPOT
    ID 1
    SCRIPT
      ON ENTER {
        USERNAME " has entered!" & SAY
      }
    ENDSCRIPT
  ENDSPOT
ENDROOM
`)

	alice := dialTestClient(t, srv.Addr, "Alice", 0)
	alice.expectKind(proto.KindServerInfo)
	alice.expectKind(proto.KindUserList)
	alice.expectKind(proto.KindRoomDesc)
	alice.expectKind(proto.KindRoomDescEnd)

	_, msg := alice.expectKind(proto.KindTalk)
	talk, ok := msg.(proto.Talk)
	if !ok || talk.Text != "Alice has entered!" {
		t.Fatalf("ENTER greeting = %#v, want \"Alice has entered!\"", msg)
	}
}

// TestEncryptedWhisperIsolation implements spec.md §8.2 scenario 3:
// only the addressed target receives the XWhisper, and nobody (not
// even the sender) sees it echoed back.
func TestEncryptedWhisperIsolation(t *testing.T) {
	srv := startTestServer(t)

	alice := dialTestClient(t, srv.Addr, "Alice", 0)
	alice.expectKind(proto.KindServerInfo)
	alice.expectKind(proto.KindUserList)
	alice.expectKind(proto.KindRoomDesc)
	alice.expectKind(proto.KindRoomDescEnd)

	bob := dialTestClient(t, srv.Addr, "Bob", 0)
	bob.expectKind(proto.KindServerInfo)
	bob.expectKind(proto.KindUserList)
	bob.expectKind(proto.KindRoomDesc)
	bob.expectKind(proto.KindRoomDescEnd)

	_, newMsg := alice.expectKind(proto.KindUserNew)
	bobID := newMsg.(proto.UserNew).User.UserID

	carol := dialTestClient(t, srv.Addr, "Carol", 0)
	carol.expectKind(proto.KindServerInfo)
	carol.expectKind(proto.KindUserList)
	carol.expectKind(proto.KindRoomDesc)
	carol.expectKind(proto.KindRoomDescEnd)
	alice.expectKind(proto.KindUserNew) // Carol's arrival
	bob.expectKind(proto.KindUserNew)

	plain := []byte("secret")
	alice.send(0, proto.XWhisper{TargetUserID: bobID, CipherText: cipher.Encrypt(plain)})

	_, msg := bob.expectKind(proto.KindXWhisper)
	got := cipher.Decrypt(msg.(proto.XWhisper).CipherText)
	if string(got) != "secret" {
		t.Fatalf("bob decrypted %q, want %q", got, "secret")
	}

	// Neither Alice nor Carol should receive anything further; give
	// the dispatcher a beat to (incorrectly) fan it out if it were
	// buggy, then confirm nothing arrived.
	assertNoFrame(t, alice.nc, "alice")
	assertNoFrame(t, carol.nc, "carol")
}

func assertNoFrame(t *testing.T, nc net.Conn, who string) {
	t.Helper()
	nc.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	b := make([]byte, 1)
	n, err := nc.Read(b)
	if n > 0 {
		t.Fatalf("%s unexpectedly received a frame byte %v", who, b[:n])
	}
	ne, ok := err.(net.Error)
	if !ok || !ne.Timeout() {
		t.Fatalf("%s: expected a read timeout, got %v", who, err)
	}
}
