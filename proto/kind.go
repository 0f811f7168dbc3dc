// Package proto implements the Palace wire frame layer: the 12-byte
// frame header, the closed per-kind payload codec table, and the
// room-template wire record (spec.md §3.2, §3.4, §6.1-§6.5).
package proto

import "encoding/binary"

// Kind identifies a message's 4-character ASCII tag, packed
// big-endian as a uint32 the way it appears on the wire.
type Kind uint32

// kindOf packs a 4-byte ASCII tag into a Kind.
func kindOf(tag string) Kind {
	if len(tag) != 4 {
		panic("proto: kind tag must be 4 bytes: " + tag)
	}
	return Kind(binary.BigEndian.Uint32([]byte(tag)))
}

// String renders the kind as its 4-character tag.
func (k Kind) String() string {
	b := []byte{byte(k >> 24), byte(k >> 16), byte(k >> 8), byte(k)}
	return string(b)
}

// Swapped returns k with its 4 bytes reversed, the form a
// little-endian peer would have sent it in (used only for the Tiyid
// endianness probe, per spec.md §4.C).
func (k Kind) Swapped() Kind {
	b := uint32(k)
	return Kind(b>>24 | (b>>8)&0xff00 | (b<<8)&0xff0000 | b<<24)
}

// Message kinds, per spec.md §6.1. Declared as package vars (not
// untyped consts) since they are derived from their 4-character tags
// rather than hand-computed hex literals, to keep the tag the single
// source of truth.
var (
	KindTiyid          = kindOf("tiyr")
	KindLogon          = kindOf("regi")
	KindAltLogonReply  = kindOf("rep2")
	KindServerInfo     = kindOf("sinf")
	KindUserList       = kindOf("rprs")
	KindListOfAllUsers = kindOf("uLst")
	KindUserNew        = kindOf("nprs")
	KindUserExit       = kindOf("eprs")
	KindUserMove       = kindOf("uLoc")
	KindUserName       = kindOf("usrN")
	KindUserColor      = kindOf("usrC")
	KindUserFace       = kindOf("usrF")
	KindUserProps      = kindOf("usrP")
	KindUserDesc       = kindOf("usrD")
	KindRoomDesc       = kindOf("room")
	KindRoomDescEnd    = kindOf("endr")
	KindRoomGoto       = kindOf("navR")
	KindListOfAllRooms = kindOf("rLst")
	KindTalk           = kindOf("talk")
	KindXTalk          = kindOf("xtlk")
	KindWhisper        = kindOf("whis")
	KindXWhisper       = kindOf("xwis")
	KindGlobalMsg      = kindOf("gmsg")
	KindRoomMsg        = kindOf("rmsg")
	KindStatusMsg      = kindOf("smsg")
	KindPing           = kindOf("ping")
	KindPong           = kindOf("pong")
	KindDoorLock       = kindOf("lock")
	KindDoorUnlock     = kindOf("unlk")
	KindSpotState      = kindOf("opSn")
	KindSpotStateLocal = kindOf("opSd")
	KindDoorLockStatus = kindOf("coLs")
	KindSpotStateQuery = kindOf("sSta")
	KindNewLooseProp   = kindOf("nPrp")
	KindMoveLooseProp  = kindOf("mPrp")
	KindDropLooseProp  = kindOf("dPrp")
	KindPictMove       = kindOf("pLoc")
	KindAssetQuery     = kindOf("qAst")
	KindAssetSend      = kindOf("sAst")
	KindAssetReceive   = kindOf("rAst")
	KindSuperUser      = kindOf("susr")
	KindKillUser       = kindOf("kill")
	KindServerDown     = kindOf("down")
	KindDisplayUrl     = kindOf("durl")
	KindNoOp           = kindOf("NOOP")
	KindLogoff         = kindOf("bye ")
)
