package lexer

import (
	"testing"

	"github.com/palace-core/palace/iptscrae/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexIntegers(t *testing.T) {
	toks, err := Tokenize("42 -17 0", false)
	if err != nil {
		t.Fatal(err)
	}
	want := []int32{42, -17, 0}
	for i, w := range want {
		if toks[i].Kind != token.Integer || toks[i].IntVal != w {
			t.Fatalf("token %d = %#v, want Integer(%d)", i, toks[i], w)
		}
	}
}

func TestLexStrings(t *testing.T) {
	toks, err := Tokenize(`"hello" "world" "test\"quote"`, false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"hello", "world", `test"quote`}
	for i, w := range want {
		if toks[i].Kind != token.String || toks[i].Text != w {
			t.Fatalf("token %d = %#v, want String(%q)", i, toks[i], w)
		}
	}
}

func TestLexIdentifiers(t *testing.T) {
	toks, err := Tokenize("foo bar_baz test123", false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"foo", "bar_baz", "test123"}
	for i, w := range want {
		if toks[i].Kind != token.Ident || toks[i].Text != w {
			t.Fatalf("token %d = %#v, want Ident(%q)", i, toks[i], w)
		}
	}
}

func TestLexKeywords(t *testing.T) {
	toks, err := Tokenize("ON IF ELSE WHILE DO BREAK", false)
	if err != nil {
		t.Fatal(err)
	}
	want := []token.Kind{token.On, token.If, token.Else, token.While, token.Do, token.Break}
	got := kinds(toks[:len(want)])
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexOperators(t *testing.T) {
	toks, err := Tokenize("+ - * / % & = != < > <= >=", false)
	if err != nil {
		t.Fatal(err)
	}
	want := []token.Kind{
		token.Plus, token.Minus, token.Star, token.Slash, token.Percent,
		token.Ampersand, token.Equals, token.NotEquals, token.Less,
		token.Greater, token.LessEq, token.GreaterEq,
	}
	got := kinds(toks[:len(want)])
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexComments(t *testing.T) {
	toks, err := Tokenize("# a comment\n42", false)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != token.Comment {
		t.Fatalf("token 0 = %#v, want Comment", toks[0])
	}
	if toks[1].Kind != token.Newline {
		t.Fatalf("token 1 = %#v, want Newline", toks[1])
	}
	if toks[2].Kind != token.Integer || toks[2].IntVal != 42 {
		t.Fatalf("token 2 = %#v, want Integer(42)", toks[2])
	}
}

func TestLexScriptExample(t *testing.T) {
	toks, err := Tokenize("ON ENTER {\n\"Welcome!\" SAY\n}", false)
	if err != nil {
		t.Fatal(err)
	}
	var filtered []token.Token
	for _, tk := range toks {
		if tk.Kind != token.Newline {
			filtered = append(filtered, tk)
		}
	}
	want := []token.Kind{token.On, token.Ident, token.LeftBrace, token.String, token.Ident, token.RightBrace, token.EOF}
	got := kinds(filtered)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	if _, err := Tokenize(`"unterminated`, false); err == nil {
		t.Fatal("expected error")
	}
}

func TestInvalidCharacter(t *testing.T) {
	if _, err := Tokenize("@invalid", false); err == nil {
		t.Fatal("expected error")
	}
}

func TestRoomKeywordsOnlyWhenEnabled(t *testing.T) {
	toks, err := Tokenize("ROOM", false)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != token.Ident {
		t.Fatalf("ROOM without room-script mode = %v, want Ident", toks[0].Kind)
	}

	toks, err = Tokenize("ROOM", true)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != token.Room {
		t.Fatalf("ROOM with room-script mode = %v, want Room", toks[0].Kind)
	}
}
