package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/inconshreveable/log15"
	"golang.org/x/sync/semaphore"

	"github.com/palace-core/palace/iptscrae/vm"
	"github.com/palace-core/palace/proto"
	"github.com/palace-core/palace/store"
)

// readBufSize is the chunk size each socket Read call requests;
// proto.Scan reassembles frames that straddle chunk boundaries out of
// the accumulating buffer.
const readBufSize = 4096

// Conn is one client connection's runtime: its own byte order (set
// once by the Tiyid probe), the registry/catalog/store it reads and
// writes through, and the user it becomes once logon succeeds
// (spec.md §4.M: "AwaitingLogon → Active → (moving rooms ↔ Active) →
// Closed").
type Conn struct {
	nc  net.Conn
	reg *Registry
	cat *Catalog
	st  *store.Store
	log log15.Logger

	serverName   string
	cyborgSem    *semaphore.Weighted
	cyborgLimits vm.Limits

	order  proto.ByteOrder
	userID int32 // 0 until logon succeeds
}

// NewConn wraps an accepted socket. serve must be called exactly
// once to drive it.
func NewConn(nc net.Conn, reg *Registry, cat *Catalog, st *store.Store, log log15.Logger, serverName string, cyborgSem *semaphore.Weighted, cyborgLimits vm.Limits) *Conn {
	return &Conn{
		nc:           nc,
		reg:          reg,
		cat:          cat,
		st:           st,
		log:          log.New("remote", nc.RemoteAddr().String()),
		serverName:   serverName,
		cyborgSem:    cyborgSem,
		cyborgLimits: cyborgLimits,
	}
}

// Serve runs the connection's full lifecycle to completion: the
// Tiyid handshake, the read-dispatch loop, and graceful unregistration
// on exit (spec.md §4.M). It returns when the connection is done,
// never before.
func (c *Conn) Serve(ctx context.Context) error {
	defer c.nc.Close()

	header := make([]byte, proto.HeaderSize)
	if _, err := io.ReadFull(c.nc, header); err != nil {
		return fmt.Errorf("session: read tiyid probe: %w", err)
	}
	order, err := proto.DetectByteOrder(header)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	c.order = order

	if _, err := c.nc.Write(proto.EncodeFrame(0, proto.Tiyid{}, c.order)); err != nil {
		return fmt.Errorf("session: write tiyid reply: %w", err)
	}

	err = c.readLoop(ctx)
	c.handleDisconnect()
	return err
}

// readLoop accumulates socket bytes and dispatches each complete
// frame as it becomes available.
func (c *Conn) readLoop(ctx context.Context) error {
	var buf bytes.Buffer
	chunk := make([]byte, readBufSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.refreshDeadline()
		n, err := c.nc.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if derr := c.drainFrames(&buf); derr != nil {
				return derr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("session: read: %w", err)
		}
	}
}

func (c *Conn) drainFrames(buf *bytes.Buffer) error {
	for {
		h, payload, consumed, err := proto.Scan(buf.Bytes(), c.order)
		if errors.Is(err, proto.ErrShortFrame) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("session: frame: %w", err)
		}

		msg, decodeErr := proto.DecodePayload(h, payload, c.order)
		rest := append([]byte(nil), buf.Bytes()[consumed:]...)
		buf.Reset()
		buf.Write(rest)

		if decodeErr != nil {
			if errors.Is(decodeErr, proto.ErrUnknownKind) {
				c.log.Debug("skipping unknown frame kind", "kind", h.Kind.String())
				continue
			}
			return fmt.Errorf("session: decode %s: %w", h.Kind, decodeErr)
		}
		if err := c.dispatch(h, msg); err != nil {
			return err
		}
	}
}

// writeDirect sends a frame on this connection's own goroutine,
// bypassing the Session's Outbox and writer goroutine. It carries
// replies to this client alone: logon rejections, the logon sequence
// (ServerInfo, UserList, RoomDesc, RoomDescEnd), room descriptions
// on RoomGoto, room lists, Pong and spot-state answers.
func (c *Conn) writeDirect(ref int32, payload proto.Payload) error {
	_, err := c.nc.Write(proto.EncodeFrame(ref, payload, c.order))
	return err
}

// runWriter drains sess.Outbox to the socket until the channel is
// closed (by Registry.Leave). A failed write is logged and the loop
// goes on draining.
func (c *Conn) runWriter(sess *Session) {
	for frame := range sess.Outbox {
		if _, err := c.nc.Write(frame); err != nil {
			c.log.Debug("writer stopped", "err", err)
			// Draining continues so Leave's close never blocks on a
			// full channel; the socket is already being torn down by
			// the reader side.
			continue
		}
	}
}

func (c *Conn) handleDisconnect() {
	if c.userID == 0 {
		return
	}
	roomID, ok := c.reg.Leave(c.userID)
	if !ok {
		return
	}
	c.reg.Broadcast(roomID, c.userID, c.userID, proto.UserExit{})
	c.log.Info("user disconnected", "user", c.userID, "room", roomID)
}

// idleDeadline is applied before every socket read of the read loop,
// from the first frame after the Tiyid probe, per spec.md §7's
// requirement that a dead peer eventually be reclaimed;
// Ping/Pong keep an active client's deadline refreshed.
const idleDeadline = 5 * time.Minute

func (c *Conn) refreshDeadline() {
	_ = c.nc.SetReadDeadline(time.Now().Add(idleDeadline))
}
