package roomscript

import (
	"fmt"

	"github.com/palace-core/palace/iptscrae/ast"
	"github.com/palace-core/palace/iptscrae/lexer"
	"github.com/palace-core/palace/iptscrae/parser"
	"github.com/palace-core/palace/iptscrae/token"
	"github.com/palace-core/palace/wire"
)

// Error is a room-script parse error.
type Error struct {
	Msg string
	Pos token.Pos
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Msg, e.Pos.Line, e.Pos.Column)
}

// Parser parses a server script file (e.g. Mansion.ipt) into its
// declared rooms, using the room-script keyword superset of the
// lexer (spec.md §4.G).
type Parser struct {
	tokens []token.Token
	pos    int
}

// New lexes source with the room-script keyword set enabled and
// returns a Parser ready to read ROOM declarations from it.
func New(source string) (*Parser, error) {
	toks, err := lexer.Tokenize(source, true)
	if err != nil {
		return nil, err
	}
	return &Parser{tokens: toks}, nil
}

// ParseRooms parses every ROOM...ENDROOM block in source.
func ParseRooms(source string) ([]RoomDecl, error) {
	p, err := New(source)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}

// Parse reads every ROOM declaration from the token stream, in file
// order.
func (p *Parser) Parse() ([]RoomDecl, error) {
	var rooms []RoomDecl

	p.skipNewlines()
	for !p.isAtEnd() {
		if p.current().Kind == token.Comment || p.current().Kind == token.Newline {
			p.advance()
			continue
		}
		if p.current().Kind != token.Room {
			return nil, p.errorf("expected ROOM keyword, found %s", p.describe(p.current()))
		}
		room, err := p.parseRoom()
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
		p.skipNewlines()
	}

	return rooms, nil
}

func (p *Parser) parseRoom() (RoomDecl, error) {
	if err := p.expect(token.Room); err != nil {
		return RoomDecl{}, err
	}
	p.skipNewlines()

	var decl RoomDecl
	haveID := false

	for !p.isAtEnd() && p.current().Kind != token.EndRoom {
		p.skipNewlines()
		if p.isAtEnd() || p.current().Kind == token.EndRoom {
			break
		}

		switch p.current().Kind {
		case token.ID:
			p.advance()
			id, err := p.parseInt16()
			if err != nil {
				return RoomDecl{}, err
			}
			decl.ID = id
			haveID = true
		case token.Name:
			p.advance()
			s, err := p.parseString()
			if err != nil {
				return RoomDecl{}, err
			}
			decl.Name = &s
		case token.Pict:
			p.advance()
			s, err := p.parseString()
			if err != nil {
				return RoomDecl{}, err
			}
			decl.Pict = &s
		case token.Artist:
			p.advance()
			s, err := p.parseString()
			if err != nil {
				return RoomDecl{}, err
			}
			decl.Artist = &s
		case token.Private:
			p.advance()
			decl.Flags.Private = true
		case token.NoPainting:
			p.advance()
			decl.Flags.NoPainting = true
		case token.NoCyborgs:
			p.advance()
			decl.Flags.NoCyborgs = true
		case token.Hidden:
			p.advance()
			decl.Flags.Hidden = true
		case token.NoGuests:
			p.advance()
			decl.Flags.NoGuests = true
		case token.Picture:
			pic, err := p.parsePicture()
			if err != nil {
				return RoomDecl{}, err
			}
			decl.Pictures = append(decl.Pictures, pic)
		case token.Door:
			door, err := p.parseDoor()
			if err != nil {
				return RoomDecl{}, err
			}
			decl.Doors = append(decl.Doors, door)
		case token.Spot:
			spot, err := p.parseSpot()
			if err != nil {
				return RoomDecl{}, err
			}
			decl.Spots = append(decl.Spots, spot)
		case token.Comment, token.Newline:
			p.advance()
		default:
			return RoomDecl{}, p.errorf("unexpected token in room block: %s", p.describe(p.current()))
		}
		p.skipNewlines()
	}

	if err := p.expect(token.EndRoom); err != nil {
		return RoomDecl{}, err
	}
	if !haveID {
		return RoomDecl{}, p.errorf("room must have an ID")
	}
	return decl, nil
}

func (p *Parser) parsePicture() (PictureDecl, error) {
	if err := p.expect(token.Picture); err != nil {
		return PictureDecl{}, err
	}
	p.skipNewlines()

	var pic PictureDecl
	haveID, haveName := false, false

	for !p.isAtEnd() && p.current().Kind != token.EndPicture {
		p.skipNewlines()
		if p.isAtEnd() || p.current().Kind == token.EndPicture {
			break
		}
		switch p.current().Kind {
		case token.ID:
			p.advance()
			id, err := p.parseInt16()
			if err != nil {
				return PictureDecl{}, err
			}
			pic.ID = id
			haveID = true
		case token.Name:
			p.advance()
			s, err := p.parseString()
			if err != nil {
				return PictureDecl{}, err
			}
			pic.Name = s
			haveName = true
		case token.TransColor:
			p.advance()
			c, err := p.parseInt16()
			if err != nil {
				return PictureDecl{}, err
			}
			pic.TransColor = &c
		case token.Comment, token.Newline:
			p.advance()
		default:
			return PictureDecl{}, p.errorf("unexpected token in PICTURE block: %s", p.describe(p.current()))
		}
		p.skipNewlines()
	}

	if err := p.expect(token.EndPicture); err != nil {
		return PictureDecl{}, err
	}
	if !haveID {
		return PictureDecl{}, p.errorf("PICTURE must have an ID")
	}
	if !haveName {
		return PictureDecl{}, p.errorf("PICTURE must have a NAME")
	}
	return pic, nil
}

func (p *Parser) parseDoor() (DoorDecl, error) {
	if err := p.expect(token.Door); err != nil {
		return DoorDecl{}, err
	}
	p.skipNewlines()

	var door DoorDecl
	haveID, haveDest := false, false

	for !p.isAtEnd() && p.current().Kind != token.EndDoor {
		p.skipNewlines()
		if p.isAtEnd() || p.current().Kind == token.EndDoor {
			break
		}
		switch p.current().Kind {
		case token.ID:
			p.advance()
			id, err := p.parseInt16()
			if err != nil {
				return DoorDecl{}, err
			}
			door.ID = id
			haveID = true
		case token.Dest:
			p.advance()
			dest, err := p.parseInt16()
			if err != nil {
				return DoorDecl{}, err
			}
			door.Dest = dest
			haveDest = true
		case token.Name:
			p.advance()
			s, err := p.parseString()
			if err != nil {
				return DoorDecl{}, err
			}
			door.Name = &s
		case token.Outline:
			p.advance()
			outline, err := p.parseOutline()
			if err != nil {
				return DoorDecl{}, err
			}
			door.Outline = outline
		case token.Picts:
			picts, err := p.parsePicts()
			if err != nil {
				return DoorDecl{}, err
			}
			door.Picts = picts
		case token.Script:
			script, err := p.parseScriptBlock()
			if err != nil {
				return DoorDecl{}, err
			}
			door.Script = script
		case token.Comment, token.Newline:
			p.advance()
		default:
			return DoorDecl{}, p.errorf("unexpected token in DOOR block: %s", p.describe(p.current()))
		}
		p.skipNewlines()
	}

	if err := p.expect(token.EndDoor); err != nil {
		return DoorDecl{}, err
	}
	if !haveID {
		return DoorDecl{}, p.errorf("DOOR must have an ID")
	}
	if !haveDest {
		return DoorDecl{}, p.errorf("DOOR must have a DEST")
	}
	return door, nil
}

func (p *Parser) parseSpot() (SpotDecl, error) {
	if err := p.expect(token.Spot); err != nil {
		return SpotDecl{}, err
	}
	p.skipNewlines()

	var spot SpotDecl
	haveID := false

	for !p.isAtEnd() && p.current().Kind != token.EndSpot {
		p.skipNewlines()
		if p.isAtEnd() || p.current().Kind == token.EndSpot {
			break
		}
		switch p.current().Kind {
		case token.ID:
			p.advance()
			id, err := p.parseInt16()
			if err != nil {
				return SpotDecl{}, err
			}
			spot.ID = id
			haveID = true
		case token.Name:
			p.advance()
			s, err := p.parseString()
			if err != nil {
				return SpotDecl{}, err
			}
			spot.Name = &s
		case token.Outline:
			p.advance()
			outline, err := p.parseOutline()
			if err != nil {
				return SpotDecl{}, err
			}
			spot.Outline = outline
		case token.Picts:
			picts, err := p.parsePicts()
			if err != nil {
				return SpotDecl{}, err
			}
			spot.Picts = picts
		case token.Script:
			script, err := p.parseScriptBlock()
			if err != nil {
				return SpotDecl{}, err
			}
			spot.Script = script
		case token.Comment, token.Newline:
			p.advance()
		default:
			return SpotDecl{}, p.errorf("unexpected token in SPOT block: %s", p.describe(p.current()))
		}
		p.skipNewlines()
	}

	if err := p.expect(token.EndSpot); err != nil {
		return SpotDecl{}, err
	}
	if !haveID {
		return SpotDecl{}, p.errorf("SPOT must have an ID")
	}
	return spot, nil
}

// outlineTerminators are the keywords that can legally follow an
// OUTLINE's point list — their presence, not a delimiter, marks the
// list's end.
var outlineTerminators = map[token.Kind]bool{
	token.EndRoom: true, token.EndDoor: true, token.EndSpot: true,
	token.Door: true, token.Spot: true, token.Picture: true, token.Picts: true,
	token.Script: true, token.ID: true, token.Name: true, token.Dest: true,
	token.Pict: true, token.Artist: true, token.Private: true,
	token.NoPainting: true, token.NoCyborgs: true, token.Hidden: true, token.NoGuests: true,
}

// parseOutline parses "OUTLINE h,v h,v h,v ..." — a whitespace
// separated list of comma-joined coordinate pairs, ending at whichever
// room-block keyword comes next.
func (p *Parser) parseOutline() ([]wire.Point, error) {
	var points []wire.Point
	for {
		p.skipNewlines()
		if p.isAtEnd() || outlineTerminators[p.current().Kind] {
			break
		}
		h, err := p.parseInt16()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.Comma); err != nil {
			return nil, err
		}
		v, err := p.parseInt16()
		if err != nil {
			return nil, err
		}
		points = append(points, wire.Point{H: h, V: v})
	}
	return points, nil
}

// parsePicts parses "PICTS picID,xOffset,yOffset ... ENDPICTS".
func (p *Parser) parsePicts() ([]StateDecl, error) {
	if err := p.expect(token.Picts); err != nil {
		return nil, err
	}
	p.skipNewlines()

	var states []StateDecl
	for !p.isAtEnd() && p.current().Kind != token.EndPicts {
		p.skipNewlines()
		if p.current().Kind == token.Comment || p.current().Kind == token.Newline {
			p.advance()
			continue
		}
		if p.current().Kind == token.EndPicts {
			break
		}

		picID, err := p.parseInt16()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.Comma); err != nil {
			return nil, err
		}
		xOff, err := p.parseInt16()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.Comma); err != nil {
			return nil, err
		}
		yOff, err := p.parseInt16()
		if err != nil {
			return nil, err
		}
		states = append(states, StateDecl{PicID: picID, XOffset: xOff, YOffset: yOff})
		p.skipNewlines()
	}

	if err := p.expect(token.EndPicts); err != nil {
		return nil, err
	}
	return states, nil
}

// parseScriptBlock collects the raw tokens between SCRIPT and its
// matching ENDSCRIPT (tracking nesting depth in case a script body
// ever contains the literal words), then hands them to the
// event-handler parser to build an ast.Script.
func (p *Parser) parseScriptBlock() (*ast.Script, error) {
	if err := p.expect(token.Script); err != nil {
		return nil, err
	}
	p.skipNewlines()

	var scriptTokens []token.Token
	depth := 1
collecting:
	for !p.isAtEnd() && depth > 0 {
		tok := p.current()
		switch tok.Kind {
		case token.Script:
			depth++
		case token.EndScript:
			depth--
			if depth == 0 {
				break collecting
			}
		}
		scriptTokens = append(scriptTokens, tok)
		p.advance()
	}

	if err := p.expect(token.EndScript); err != nil {
		return nil, err
	}

	if len(scriptTokens) > 0 {
		scriptTokens = append(scriptTokens, token.Token{Kind: token.EOF, Pos: scriptTokens[len(scriptTokens)-1].Pos})
	} else {
		scriptTokens = append(scriptTokens, token.Token{Kind: token.EOF})
	}

	script, err := parser.New(scriptTokens).Parse()
	if err != nil {
		return nil, err
	}
	return &script, nil
}

func (p *Parser) current() token.Token { return p.tokens[p.pos] }

func (p *Parser) isAtEnd() bool { return p.current().Kind == token.EOF }

func (p *Parser) advance() {
	if !p.isAtEnd() {
		p.pos++
	}
}

func (p *Parser) skipNewlines() {
	for p.current().Kind == token.Newline || p.current().Kind == token.Comment {
		p.advance()
	}
}

func (p *Parser) expect(k token.Kind) error {
	if p.current().Kind != k {
		return p.errorf("expected %s, found %s", p.describeKind(k), p.describe(p.current()))
	}
	p.advance()
	return nil
}

func (p *Parser) parseInt16() (int16, error) {
	switch p.current().Kind {
	case token.Integer:
		n := p.current().IntVal
		p.advance()
		if n < -32768 || n > 32767 {
			return 0, p.errorf("integer %d out of range for int16", n)
		}
		return int16(n), nil
	case token.Minus:
		p.advance()
		if p.current().Kind != token.Integer {
			return 0, p.errorf("expected integer after minus sign, found %s", p.describe(p.current()))
		}
		n := -p.current().IntVal
		p.advance()
		if n < -32768 || n > 32767 {
			return 0, p.errorf("integer %d out of range for int16", n)
		}
		return int16(n), nil
	default:
		return 0, p.errorf("expected integer, found %s", p.describe(p.current()))
	}
}

func (p *Parser) parseString() (string, error) {
	if p.current().Kind != token.String {
		return "", p.errorf("expected string, found %s", p.describe(p.current()))
	}
	s := p.current().Text
	p.advance()
	return s, nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...), Pos: p.current().Pos}
}

func (p *Parser) describe(t token.Token) string {
	switch t.Kind {
	case token.Integer:
		return fmt.Sprintf("integer %d", t.IntVal)
	case token.String:
		return fmt.Sprintf("string %q", t.Text)
	case token.Ident:
		return fmt.Sprintf("identifier '%s'", t.Text)
	case token.EOF:
		return "end of file"
	default:
		return p.describeKind(t.Kind)
	}
}

func (p *Parser) describeKind(k token.Kind) string {
	names := map[token.Kind]string{
		token.On: "ON", token.If: "IF", token.Else: "ELSE", token.While: "WHILE",
		token.Do: "DO", token.Break: "BREAK",
		token.Room: "ROOM", token.EndRoom: "ENDROOM", token.Door: "DOOR", token.EndDoor: "ENDDOOR",
		token.Spot: "SPOT", token.EndSpot: "ENDSPOT", token.Script: "SCRIPT", token.EndScript: "ENDSCRIPT",
		token.ID: "ID", token.Name: "NAME", token.Pict: "PICT", token.Artist: "ARTIST",
		token.Dest: "DEST", token.Outline: "OUTLINE", token.Picts: "PICTS", token.EndPicts: "ENDPICTS",
		token.Picture: "PICTURE", token.EndPicture: "ENDPICTURE", token.TransColor: "TRANSCOLOR",
		token.Private: "PRIVATE", token.NoPainting: "NOPAINTING", token.NoCyborgs: "NOCYBORGS",
		token.Hidden: "HIDDEN", token.NoGuests: "NOGUESTS", token.Comma: ",",
	}
	if n, ok := names[k]; ok {
		return n
	}
	return "token"
}
