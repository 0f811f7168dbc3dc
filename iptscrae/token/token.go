// Package token defines the lexical tokens of Iptscrae source text,
// shared by the event-handler script grammar and the declarative
// room-file grammar (spec.md §3.5, §4.D).
package token

import "strings"

// Pos is a source position used for error reporting.
type Pos struct {
	Line   int
	Column int
}

// Kind identifies a token's lexical category.
type Kind int

const (
	Invalid Kind = iota

	Integer
	String
	Ident

	// Script keywords.
	On
	If
	Else
	While
	Do
	Break

	// Room-file keywords, enabled only when the lexer is scanning room
	// source (spec.md §4.D, §4.G).
	Room
	EndRoom
	Door
	EndDoor
	Spot
	EndSpot
	Script
	EndScript
	ID
	Name
	Pict
	Artist
	Dest
	Outline
	Picts
	EndPicts
	Picture
	EndPicture
	TransColor
	Private
	NoPainting
	NoCyborgs
	Hidden
	NoGuests

	// Operators.
	Plus
	Minus
	Star
	Slash
	Percent
	Ampersand
	Equals
	NotEquals
	Less
	Greater
	LessEq
	GreaterEq

	// Delimiters.
	LeftBrace
	RightBrace
	LeftParen
	RightParen
	Comma

	Comment
	Newline
	EOF
)

// Token is one lexed unit: its kind, literal text (for identifiers,
// strings and comments) or integer value, and source position.
type Token struct {
	Kind   Kind
	Text   string
	IntVal int32
	Pos    Pos
}

var scriptKeywords = map[string]Kind{
	"ON":    On,
	"IF":    If,
	"ELSE":  Else,
	"WHILE": While,
	"DO":    Do,
	"BREAK": Break,
}

var roomKeywords = map[string]Kind{
	"ROOM":       Room,
	"ENDROOM":    EndRoom,
	"DOOR":       Door,
	"ENDDOOR":    EndDoor,
	"SPOT":       Spot,
	"ENDSPOT":    EndSpot,
	"SCRIPT":     Script,
	"ENDSCRIPT":  EndScript,
	"ID":         ID,
	"NAME":       Name,
	"PICT":       Pict,
	"ARTIST":     Artist,
	"DEST":       Dest,
	"OUTLINE":    Outline,
	"PICTS":      Picts,
	"ENDPICTS":   EndPicts,
	"PICTURE":    Picture,
	"ENDPICTURE": EndPicture,
	"TRANSCOLOR": TransColor,
	"PRIVATE":    Private,
	"NOPAINTING": NoPainting,
	"NOCYBORGS":  NoCyborgs,
	"HIDDEN":     Hidden,
	"NOGUESTS":   NoGuests,
}

// Lookup resolves an identifier to a keyword Kind, case-insensitively.
// roomScript enables the room-file keyword set in addition to the
// script keywords (spec.md §4.D: room keywords are a superset enabled
// by a parse-mode flag). If ident is not a keyword under the active
// set, it returns (Ident, false) — the identifier is still a valid
// Ident token, just not a keyword.
func Lookup(ident string, roomScript bool) (Kind, bool) {
	upper := strings.ToUpper(ident)
	if k, ok := scriptKeywords[upper]; ok {
		return k, true
	}
	if roomScript {
		if k, ok := roomKeywords[upper]; ok {
			return k, true
		}
	}
	return Ident, false
}

// IsKeyword reports whether k is one of the keyword kinds (as opposed
// to Ident, a literal, an operator, or a delimiter).
func IsKeyword(k Kind) bool {
	switch k {
	case On, If, Else, While, Do, Break,
		Room, EndRoom, Door, EndDoor, Spot, EndSpot, Script, EndScript,
		ID, Name, Pict, Artist, Dest, Outline, Picts, EndPicts,
		Picture, EndPicture, TransColor, Private, NoPainting, NoCyborgs,
		Hidden, NoGuests:
		return true
	default:
		return false
	}
}
