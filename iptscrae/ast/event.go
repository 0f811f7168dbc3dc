package ast

import "strings"

// EventType is the closed set of handler events a script may react
// to (spec.md §3.5).
type EventType int

const (
	Select EventType = iota
	Lock
	Unlock
	Hide
	Show
	Startup
	Alarm
	Custom
	InChat
	PropChange
	Enter
	Leave
	OutChat
	SignOn
	SignOff
	Macro0
	Macro1
	Macro2
	Macro3
	Macro4
	Macro5
	Macro6
	Macro7
	Macro8
	Macro9
)

var eventMasks = map[EventType]uint32{
	Select:     1 << 0,
	Lock:       1 << 1,
	Unlock:     1 << 2,
	Hide:       1 << 3,
	Show:       1 << 4,
	Startup:    1 << 5,
	Alarm:      1 << 6,
	Custom:     1 << 7,
	InChat:     1 << 8,
	PropChange: 1 << 9,
	Enter:      1 << 10,
	Leave:      1 << 11,
	OutChat:    1 << 12,
	SignOn:     1 << 13,
	SignOff:    1 << 14,
	Macro0:     1 << 15,
	Macro1:     1 << 16,
	Macro2:     1 << 17,
	Macro3:     1 << 18,
	Macro4:     1 << 19,
	Macro5:     1 << 20,
	Macro6:     1 << 21,
	Macro7:     1 << 22,
	Macro8:     1 << 23,
	Macro9:     1 << 24,
}

var eventNames = map[EventType]string{
	Select: "SELECT", Lock: "LOCK", Unlock: "UNLOCK", Hide: "HIDE",
	Show: "SHOW", Startup: "STARTUP", Alarm: "ALARM", Custom: "CUSTOM",
	InChat: "INCHAT", PropChange: "PROPCHANGE", Enter: "ENTER",
	Leave: "LEAVE", OutChat: "OUTCHAT", SignOn: "SIGNON",
	SignOff: "SIGNOFF", Macro0: "MACRO0", Macro1: "MACRO1",
	Macro2: "MACRO2", Macro3: "MACRO3", Macro4: "MACRO4",
	Macro5: "MACRO5", Macro6: "MACRO6", Macro7: "MACRO7",
	Macro8: "MACRO8", Macro9: "MACRO9",
}

// ToMask returns the bit this event sets in a hotspot's 32-bit event
// mask.
func (e EventType) ToMask() uint32 { return eventMasks[e] }

// Name renders the event's canonical uppercase name.
func (e EventType) Name() string { return eventNames[e] }

// EventTypeFromName parses a case-insensitive event name, the lookup
// the script parser performs for every ON handler (spec.md §4.F).
func EventTypeFromName(name string) (EventType, bool) {
	for e, n := range eventNames {
		if n == strings.ToUpper(name) {
			return e, true
		}
	}
	return 0, false
}
