package seq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2"

	"github.com/Garik-/smfrec/pkg/smf"
)

func TestFromMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  midi.Message
		want smf.Event
	}{
		{"note on", midi.NoteOn(1, 60, 100), smf.Event{Kind: smf.NoteOn, Channel: 1, Note: 60, Velocity: 100}},
		{"note off", midi.NoteOff(2, 60), smf.Event{Kind: smf.NoteOff, Channel: 2, Note: 60}},
		{"note on without velocity", midi.Message{0x93, 60, 0}, smf.Event{Kind: smf.NoteOn, Channel: 3, Note: 60}},
		{"note off with velocity", midi.Message{0x84, 60, 64}, smf.Event{Kind: smf.NoteOff, Channel: 4, Note: 60, Velocity: 64}},
		{"key pressure", midi.PolyAfterTouch(3, 61, 20), smf.Event{Kind: smf.KeyPressure, Channel: 3, Note: 61, Velocity: 20}},
		{"controller", midi.ControlChange(4, 7, 99), smf.Event{Kind: smf.Controller, Channel: 4, Param: 7, Value: 99}},
		{"program", midi.ProgramChange(5, 12), smf.Event{Kind: smf.ProgramChange, Channel: 5, Value: 12}},
		{"channel pressure", midi.AfterTouch(6, 33), smf.Event{Kind: smf.ChannelPressure, Channel: 6, Value: 33}},
		{"pitch bend", midi.Pitchbend(7, -100), smf.Event{Kind: smf.PitchBend, Channel: 7, Value: -100}},
		{"pitch bend max", midi.Pitchbend(7, 8191), smf.Event{Kind: smf.PitchBend, Channel: 7, Value: 8191}},
		{"clock", midi.Message{0xF8}, smf.Event{Kind: smf.Ignored}},
		{"song position", midi.Message{0xF2, 0x00, 0x01}, smf.Event{Kind: smf.Ignored}},
		{"truncated", midi.Message{0x90, 0x3C}, smf.Event{Kind: smf.Ignored, Channel: 0}},
		{"data byte", midi.Message{0x3C}, smf.Event{Kind: smf.Ignored}},
		{"empty", midi.Message{}, smf.Event{Kind: smf.Ignored}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want.Tick = 42
			assert.Equal(t, tt.want, FromMessage(42, tt.msg))
		})
	}
}

func TestFromMessage_SysEx(t *testing.T) {
	msg := midi.Message{0xF0, 0x7E, 0x7F, 0x09, 0x01, 0xF7}
	ev := FromMessage(7, msg)

	assert.Equal(t, smf.SysEx, ev.Kind)
	assert.Equal(t, []byte{0xF0, 0x7E, 0x7F, 0x09, 0x01, 0xF7}, ev.Data)

	// the event owns its payload
	msg[1] = 0
	assert.Equal(t, byte(0x7E), ev.Data[1])
}
