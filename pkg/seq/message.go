package seq

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/Garik-/smfrec/pkg/smf"
)

// dataLen is the number of data bytes a channel voice command carries.
func dataLen(status byte) int {
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 1
	}
	return 2
}

// FromMessage converts a raw MIDI wire message received at tick into an
// event for the default queue and port. Real-time, system common and
// truncated messages become smf.Ignored.
func FromMessage(tick uint32, msg midi.Message) smf.Event {
	ev := smf.Event{Kind: smf.Ignored, Tick: tick}

	if len(msg) == 0 || msg[0]&0x80 == 0 {
		return ev
	}
	if msg[0] < 0xF0 && len(msg) < dataLen(msg[0])+1 {
		return ev
	}

	var sysex []byte
	if msg[0] == 0xF0 && msg.GetSysEx(&sysex) {
		// the recorder wants the whole message, framing bytes included
		ev.Kind = smf.SysEx
		ev.Data = append([]byte(nil), msg...)
		return ev
	}
	if msg.Is(midi.RealTimeMsg) || msg.Is(midi.SysCommonMsg) {
		return ev
	}

	var ch, key, vel, ctl, val uint8
	var rel int16
	var abs uint16

	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		ev.Kind = smf.NoteOn
		ev.Note, ev.Velocity = key, vel
	case msg.GetNoteOff(&ch, &key, &vel):
		// a note on with velocity 0 stays a note on in the file
		ev.Kind = smf.NoteOff
		if msg[0]&0xF0 == 0x90 {
			ev.Kind = smf.NoteOn
		}
		ev.Note, ev.Velocity = key, vel
	case msg.GetPolyAfterTouch(&ch, &key, &vel):
		ev.Kind = smf.KeyPressure
		ev.Note, ev.Velocity = key, vel
	case msg.GetControlChange(&ch, &ctl, &val):
		ev.Kind = smf.Controller
		ev.Param, ev.Value = uint32(ctl), int32(val)
	case msg.GetProgramChange(&ch, &val):
		ev.Kind = smf.ProgramChange
		ev.Value = int32(val)
	case msg.GetAfterTouch(&ch, &val):
		ev.Kind = smf.ChannelPressure
		ev.Value = int32(val)
	case msg.GetPitchBend(&ch, &rel, &abs):
		ev.Kind = smf.PitchBend
		ev.Value = int32(rel)
	default:
		return ev
	}

	ev.Channel = ch
	return ev
}
