package proto

func init() {
	register(KindTiyid, decodeTiyid)
	register(KindServerInfo, decodeServerInfo)
	register(KindServerDown, decodeServerDown)
	register(KindDisplayUrl, decodeDisplayUrl)
	register(KindNoOp, decodeNoOp)
	register(KindPing, decodePing)
	register(KindPong, decodePong)
	register(KindLogoff, decodeLogoff)
}

// Tiyid is the empty endianness-probe message every connection sends
// first (spec.md §4.C, §9).
type Tiyid struct{}

func (Tiyid) Kind() Kind        { return KindTiyid }
func (Tiyid) Encode(w *Writer) {}

func decodeTiyid(r *Reader) (Payload, error) { return Tiyid{}, nil }

// ServerInfo announces server identity and capability flags on
// successful logon (spec.md §6.1).
type ServerInfo struct {
	Permissions  uint32
	Name         string // Str63
	Options      uint32
	UploadCaps   uint32
	DownloadCaps uint32
}

func (ServerInfo) Kind() Kind { return KindServerInfo }

func (m ServerInfo) Encode(w *Writer) {
	w.U32(m.Permissions)
	_ = w.Str63(m.Name)
	w.U32(m.Options)
	w.U32(m.UploadCaps)
	w.U32(m.DownloadCaps)
}

func decodeServerInfo(r *Reader) (Payload, error) {
	var m ServerInfo
	var err error
	if m.Permissions, err = r.U32(); err != nil {
		return nil, err
	}
	if m.Name, err = r.Str63(); err != nil {
		return nil, err
	}
	if m.Options, err = r.U32(); err != nil {
		return nil, err
	}
	if m.UploadCaps, err = r.U32(); err != nil {
		return nil, err
	}
	if m.DownloadCaps, err = r.U32(); err != nil {
		return nil, err
	}
	return m, nil
}

// ServerDown reason codes.
const (
	ServerDownReasonShutdown     = int32(0)
	ServerDownReasonUnresponsive = int32(1)
	ServerDownReasonKicked       = int32(2)
)

// ServerDown tells the client the server is closing the connection;
// Reason travels in the frame's reference number, Message is optional
// (spec.md §6.1).
type ServerDown struct {
	Reason  int32
	Message string
}

func (ServerDown) Kind() Kind { return KindServerDown }

func (m ServerDown) Encode(w *Writer) {
	if m.Message != "" {
		_ = w.CString(m.Message)
	}
}

func decodeServerDown(r *Reader) (Payload, error) {
	var m ServerDown
	if r.Len() > 0 {
		s, err := r.CString()
		if err != nil {
			return nil, err
		}
		m.Message = s
	}
	return m, nil
}

// DisplayUrl asks the client to open a URL.
type DisplayUrl struct {
	URL string
}

func (DisplayUrl) Kind() Kind { return KindDisplayUrl }

func (m DisplayUrl) Encode(w *Writer) { _ = w.CString(m.URL) }

func decodeDisplayUrl(r *Reader) (Payload, error) {
	s, err := r.CString()
	if err != nil {
		return nil, err
	}
	return DisplayUrl{URL: s}, nil
}

// NoOp is an empty keepalive/filler message.
type NoOp struct{}

func (NoOp) Kind() Kind       { return KindNoOp }
func (NoOp) Encode(w *Writer) {}

func decodeNoOp(r *Reader) (Payload, error) { return NoOp{}, nil }

// Ping is an empty keepalive request.
type Ping struct{}

func (Ping) Kind() Kind       { return KindPing }
func (Ping) Encode(w *Writer) {}

func decodePing(r *Reader) (Payload, error) { return Ping{}, nil }

// Pong is an empty keepalive reply, echoing the request's reference
// number at the frame level.
type Pong struct{}

func (Pong) Kind() Kind       { return KindPong }
func (Pong) Encode(w *Writer) {}

func decodePong(r *Reader) (Payload, error) { return Pong{}, nil }

// Logoff is an empty graceful-disconnect notice.
type Logoff struct{}

func (Logoff) Kind() Kind       { return KindLogoff }
func (Logoff) Encode(w *Writer) {}

func decodeLogoff(r *Reader) (Payload, error) { return Logoff{}, nil }
