package proto

import "github.com/palace-core/palace/wire"

func init() {
	register(KindAssetQuery, decodeAssetQuery)
	register(KindAssetSend, decodeAssetSend)
	register(KindAssetReceive, decodeAssetReceive)
}

// AssetQuery asks whether the peer already holds a given asset (by
// type and id/crc), so the sender can skip retransmitting art the
// peer has cached (spec.md §6.1).
type AssetQuery struct {
	Type wire.AssetType
	Spec wire.AssetSpec
}

func (AssetQuery) Kind() Kind { return KindAssetQuery }

func (m AssetQuery) Encode(w *Writer) {
	w.Raw(m.Type[:])
	w.AssetSpec(m.Spec)
}

func decodeAssetQuery(r *Reader) (Payload, error) {
	var m AssetQuery
	var err error
	if m.Type, err = r.AssetType(); err != nil {
		return nil, err
	}
	if m.Spec, err = r.AssetSpec(); err != nil {
		return nil, err
	}
	return m, nil
}

// assetBlockHeader carries the chunking fields shared by AssetSend and
// AssetReceive: an asset's binary data may cross several frames, so
// each frame names its byte offset and the asset's total size.
type assetBlockHeader struct {
	Type        wire.AssetType
	Spec        wire.AssetSpec
	BlockOffset uint32
	TotalSize   uint32
}

func (h assetBlockHeader) encode(w *Writer) {
	w.Raw(h.Type[:])
	w.AssetSpec(h.Spec)
	w.U32(h.BlockOffset)
	w.U32(h.TotalSize)
}

func decodeAssetBlockHeader(r *Reader) (assetBlockHeader, error) {
	var h assetBlockHeader
	var err error
	if h.Type, err = r.AssetType(); err != nil {
		return h, err
	}
	if h.Spec, err = r.AssetSpec(); err != nil {
		return h, err
	}
	if h.BlockOffset, err = r.U32(); err != nil {
		return h, err
	}
	if h.TotalSize, err = r.U32(); err != nil {
		return h, err
	}
	return h, nil
}

// AssetSend transfers one chunk of an asset's binary data, uploaded
// by a client to the server (e.g. a custom prop).
type AssetSend struct {
	Type        wire.AssetType
	Spec        wire.AssetSpec
	BlockOffset uint32
	TotalSize   uint32
	Data        []byte
}

func (AssetSend) Kind() Kind { return KindAssetSend }

func (m AssetSend) Encode(w *Writer) {
	assetBlockHeader{m.Type, m.Spec, m.BlockOffset, m.TotalSize}.encode(w)
	w.Raw(m.Data)
}

func decodeAssetSend(r *Reader) (Payload, error) {
	h, err := decodeAssetBlockHeader(r)
	if err != nil {
		return nil, err
	}
	data, err := r.Bytes(r.Len())
	if err != nil {
		return nil, err
	}
	return AssetSend{
		Type: h.Type, Spec: h.Spec,
		BlockOffset: h.BlockOffset, TotalSize: h.TotalSize,
		Data: append([]byte(nil), data...),
	}, nil
}

// AssetReceive transfers one chunk of an asset's binary data back to
// a requesting client.
type AssetReceive struct {
	Type        wire.AssetType
	Spec        wire.AssetSpec
	BlockOffset uint32
	TotalSize   uint32
	Data        []byte
}

func (AssetReceive) Kind() Kind { return KindAssetReceive }

func (m AssetReceive) Encode(w *Writer) {
	assetBlockHeader{m.Type, m.Spec, m.BlockOffset, m.TotalSize}.encode(w)
	w.Raw(m.Data)
}

func decodeAssetReceive(r *Reader) (Payload, error) {
	h, err := decodeAssetBlockHeader(r)
	if err != nil {
		return nil, err
	}
	data, err := r.Bytes(r.Len())
	if err != nil {
		return nil, err
	}
	return AssetReceive{
		Type: h.Type, Spec: h.Spec,
		BlockOffset: h.BlockOffset, TotalSize: h.TotalSize,
		Data: append([]byte(nil), data...),
	}, nil
}
