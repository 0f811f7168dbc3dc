package proto

func init() {
	register(KindTalk, decodeTalk)
	register(KindXTalk, decodeXTalk)
	register(KindWhisper, decodeWhisper)
	register(KindXWhisper, decodeXWhisper)
	register(KindGlobalMsg, decodeGlobalMsg)
	register(KindRoomMsg, decodeRoomMsg)
	register(KindStatusMsg, decodeStatusMsg)
}

// Talk is a plain-text chat bubble addressed to the whole room; the
// speaker's user id travels in the frame's reference number
// (spec.md §6.4).
type Talk struct {
	Text string // CString
}

func (Talk) Kind() Kind          { return KindTalk }
func (m Talk) Encode(w *Writer) { _ = w.CString(m.Text) }

func decodeTalk(r *Reader) (Payload, error) {
	s, err := r.CString()
	if err != nil {
		return nil, err
	}
	return Talk{Text: s}, nil
}

// XTalk is a chat bubble whose text is obscured with the XOR lookup
// cipher (spec.md §6.4, §5). The payload bytes must be run through
// wire/cipher before interpretation as MacRoman text; this type holds
// the still-encrypted bytes.
type XTalk struct {
	CipherText []byte
}

func (XTalk) Kind() Kind          { return KindXTalk }
func (m XTalk) Encode(w *Writer) { w.Raw(m.CipherText) }

func decodeXTalk(r *Reader) (Payload, error) {
	b, err := r.Bytes(r.Len())
	if err != nil {
		return nil, err
	}
	return XTalk{CipherText: append([]byte(nil), b...)}, nil
}

// Whisper is a plain-text chat bubble addressed to a single target
// user, named by id in the payload.
type Whisper struct {
	TargetUserID int32
	Text         string // CString
}

func (Whisper) Kind() Kind { return KindWhisper }

func (m Whisper) Encode(w *Writer) {
	w.I32(m.TargetUserID)
	_ = w.CString(m.Text)
}

func decodeWhisper(r *Reader) (Payload, error) {
	id, err := r.I32()
	if err != nil {
		return nil, err
	}
	s, err := r.CString()
	if err != nil {
		return nil, err
	}
	return Whisper{TargetUserID: id, Text: s}, nil
}

// XWhisper is a Whisper whose text is cipher-obscured, same caveat as
// XTalk.
type XWhisper struct {
	TargetUserID int32
	CipherText   []byte
}

func (XWhisper) Kind() Kind { return KindXWhisper }

func (m XWhisper) Encode(w *Writer) {
	w.I32(m.TargetUserID)
	w.Raw(m.CipherText)
}

func decodeXWhisper(r *Reader) (Payload, error) {
	id, err := r.I32()
	if err != nil {
		return nil, err
	}
	b, err := r.Bytes(r.Len())
	if err != nil {
		return nil, err
	}
	return XWhisper{TargetUserID: id, CipherText: append([]byte(nil), b...)}, nil
}

// GlobalMsg is a server-wide announcement, visible regardless of room.
type GlobalMsg struct {
	Text string // CString
}

func (GlobalMsg) Kind() Kind          { return KindGlobalMsg }
func (m GlobalMsg) Encode(w *Writer) { _ = w.CString(m.Text) }

func decodeGlobalMsg(r *Reader) (Payload, error) {
	s, err := r.CString()
	if err != nil {
		return nil, err
	}
	return GlobalMsg{Text: s}, nil
}

// RoomMsg is a server announcement visible to the current room only.
type RoomMsg struct {
	Text string // CString
}

func (RoomMsg) Kind() Kind          { return KindRoomMsg }
func (m RoomMsg) Encode(w *Writer) { _ = w.CString(m.Text) }

func decodeRoomMsg(r *Reader) (Payload, error) {
	s, err := r.CString()
	if err != nil {
		return nil, err
	}
	return RoomMsg{Text: s}, nil
}

// StatusMsg is a transient status line shown in the client's log
// area, not a chat bubble.
type StatusMsg struct {
	Text string // CString
}

func (StatusMsg) Kind() Kind          { return KindStatusMsg }
func (m StatusMsg) Encode(w *Writer) { _ = w.CString(m.Text) }

func decodeStatusMsg(r *Reader) (Payload, error) {
	s, err := r.CString()
	if err != nil {
		return nil, err
	}
	return StatusMsg{Text: s}, nil
}
