package smf

import "fmt"

type Kind int

const (
	Ignored Kind = iota
	NoteOn
	NoteOff
	KeyPressure
	Controller
	ProgramChange
	ChannelPressure
	PitchBend
	Controller14
	RegisteredParameter
	NonRegisteredParameter
	SysEx
)

var kindNames = [...]string{
	Ignored:                "ignored",
	NoteOn:                 "noteon",
	NoteOff:                "noteoff",
	KeyPressure:            "keypress",
	Controller:             "controller",
	ProgramChange:          "pgmchange",
	ChannelPressure:        "chanpress",
	PitchBend:              "pitchbend",
	Controller14:           "control14",
	RegisteredParameter:    "regparam",
	NonRegisteredParameter: "nonregparam",
	SysEx:                  "sysex",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a kind name back to its Kind. Unknown names are Ignored.
func ParseKind(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return Kind(k)
		}
	}
	return Ignored
}

// Event is a performance event already stamped with a sequencer tick.
//
// Note and Velocity are used by the note kinds. Param and Value carry the
// controller number and value for the controller kinds, Value alone is the
// program, pressure or signed pitch bend (-8192..8191). Data is the raw
// system exclusive payload.
type Event struct {
	Kind    Kind
	Tick    uint32
	Queue   int
	Port    int
	Channel uint8

	Note     uint8
	Velocity uint8

	Param uint32
	Value int32

	Data []byte
}
