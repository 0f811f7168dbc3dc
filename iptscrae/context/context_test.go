package context

import (
	"testing"

	"github.com/palace-core/palace/iptscrae/ast"
)

func TestSecurityLevel(t *testing.T) {
	server := New(Server, NoopActions{})
	if !server.IsFunctionAllowed("LOCK") || !server.IsFunctionAllowed("GOTOROOM") {
		t.Fatal("server context should allow LOCK and GOTOROOM")
	}

	cyborg := New(Cyborg, NoopActions{})
	if cyborg.IsFunctionAllowed("LOCK") || cyborg.IsFunctionAllowed("GOTOROOM") {
		t.Fatal("cyborg context should deny LOCK and GOTOROOM")
	}
	if !cyborg.IsFunctionAllowed("SAY") || !cyborg.IsFunctionAllowed("WHONAME") {
		t.Fatal("cyborg context should allow SAY and WHONAME")
	}
}

func TestContextCreation(t *testing.T) {
	ctx := New(Server, NoopActions{})
	if ctx.SecurityLevel != Server || ctx.UserID != 0 || ctx.UserName != "" || ctx.RoomID != 0 {
		t.Fatalf("ctx = %#v, want zero-valued identity fields", ctx)
	}
}

func TestEventData(t *testing.T) {
	ctx := New(Server, NoopActions{})
	ctx.EventData["hotspot_id"] = ast.Int32(42)
	v, ok := ctx.EventData["hotspot_id"]
	if !ok || v.Int != 42 {
		t.Fatalf("event data = %#v, want Int32(42)", v)
	}
}
