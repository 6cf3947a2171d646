package smf

import (
	"go.uber.org/zap"
)

// controller numbers used by (non-)registered parameter messages
const (
	ctlDataEntryMSB   = 0x06
	ctlDataEntryLSB   = 0x26
	ctlNonRegParamLSB = 0x62
	ctlNonRegParamMSB = 0x63
	ctlRegParamLSB    = 0x64
	ctlRegParamMSB    = 0x65
)

// channel voice commands
const (
	cmdNoteOff         = 0x80
	cmdNoteOn          = 0x90
	cmdKeyPressure     = 0xA0
	cmdControl         = 0xB0
	cmdProgramChange   = 0xC0
	cmdChannelPressure = 0xD0
	cmdPitchBend       = 0xE0

	cmdSysEx       = 0xF0
	cmdSysExEscape = 0xF7
	metaTempo      = 0x51
	metaTimeSig    = 0x58
	metaEndOfTrack = 0x2F
	metaStatus     = 0xFF
)

// Recorder turns a stream of events into the body of a single SMF track.
// It is not safe for concurrent use.
type Recorder struct {
	opts    Options
	track   Track
	origin  uint32
	started bool
	events  int
	log     *zap.Logger
}

// NewRecorder validates opts and, for musical timing, writes the tempo and
// time signature meta events at the start of the track.
func NewRecorder(opts Options) (*Recorder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	r := &Recorder{opts: opts, log: recorderLog.Named("recorder")}

	if !opts.SMPTE() {
		tempo := opts.Tempo()
		r.track.meta(metaTempo, byte(tempo>>16), byte(tempo>>8), byte(tempo))
		ts := opts.TimeSignature
		r.track.meta(metaTimeSig, byte(ts.Numerator), ts.exponent(), 24, 8)
	}

	r.log.Debug("new", zap.Int("bpm", opts.BPM), zap.Int("frames", opts.Frames), zap.Int("ticks", opts.Ticks))
	return r, nil
}

func (r *Recorder) Options() Options {
	return r.opts
}

func (r *Recorder) Track() *Track {
	return &r.track
}

// Events returns the number of events accepted so far.
func (r *Recorder) Events() int {
	return r.events
}

// Relative converts a sequencer tick to the track time line. Until the
// first event is accepted the origin is tick 0.
func (r *Recorder) Relative(tick uint32) uint32 {
	if !r.started {
		return tick
	}
	if tick < r.origin {
		return 0
	}
	return tick - r.origin
}

// Record appends ev to the track. Events for another queue or port and
// events of unknown kind are dropped.
func (r *Recorder) Record(ev Event) {
	if ev.Queue != r.opts.Queue || ev.Port != r.opts.Port {
		r.log.Debug("skip", zap.Int("queue", ev.Queue), zap.Int("port", ev.Port))
		return
	}

	if !r.started {
		r.origin = ev.Tick
		r.started = true
	}

	t := &r.track
	tick := r.Relative(ev.Tick)
	ch := ev.Channel & 0x0F
	param := byte(ev.Param & 0x7F)

	switch ev.Kind {
	case NoteOn:
		t.message(tick, cmdNoteOn|ch, ev.Note&0x7F, ev.Velocity&0x7F)
	case NoteOff:
		t.message(tick, cmdNoteOff|ch, ev.Note&0x7F, ev.Velocity&0x7F)
	case KeyPressure:
		t.message(tick, cmdKeyPressure|ch, ev.Note&0x7F, ev.Velocity&0x7F)
	case Controller:
		t.message(tick, cmdControl|ch, param, byte(ev.Value&0x7F))
	case ProgramChange:
		t.message(tick, cmdProgramChange|ch, byte(ev.Value&0x7F))
	case ChannelPressure:
		t.message(tick, cmdChannelPressure|ch, byte(ev.Value&0x7F))
	case PitchBend:
		v := ev.Value + 8192
		t.message(tick, cmdPitchBend|ch, byte(v&0x7F), byte((v>>7)&0x7F))
	case Controller14:
		t.message(tick, cmdControl|ch, param, byte((ev.Value>>7)&0x7F))
		if param < 0x20 {
			t.message(tick, cmdControl|ch, param+0x20, byte(ev.Value&0x7F))
		}
	case NonRegisteredParameter:
		r.parameter(tick, ch, ctlNonRegParamLSB, ctlNonRegParamMSB, ev)
	case RegisteredParameter:
		r.parameter(tick, ch, ctlRegParamLSB, ctlRegParamMSB, ev)
	case SysEx:
		if len(ev.Data) == 0 {
			return
		}
		cmd := byte(cmdSysExEscape)
		if ev.Data[0] == cmdSysEx {
			cmd = cmdSysEx
		}
		t.body.WriteVarint(t.delta(tick))
		t.status(cmd)
		t.body.WriteVarint(uint32(len(ev.Data)))
		t.body.Write(ev.Data)
	default:
		r.log.Debug("ignore", zap.Stringer("kind", ev.Kind), zap.Uint32("tick", ev.Tick))
		return
	}

	r.events++
}

// parameter writes the four controller messages of an (N)RPN change.
func (r *Recorder) parameter(tick uint32, ch byte, lsb, msb byte, ev Event) {
	t := &r.track
	cmd := byte(cmdControl) | ch
	t.message(tick, cmd, lsb, byte(ev.Param&0x7F))
	t.message(tick, cmd, msb, byte((ev.Param>>7)&0x7F))
	t.message(tick, cmd, ctlDataEntryMSB, byte((ev.Value>>7)&0x7F))
	t.message(tick, cmd, ctlDataEntryLSB, byte(ev.Value&0x7F))
}

// WriteTo streams the track to w and closes it with an end of track event
// at finalTick, given on the sequencer time line.
func (r *Recorder) WriteTo(w *Writer, finalTick uint32) error {
	if err := w.Stream(&r.track); err != nil {
		return err
	}
	if err := w.Finalize(&r.track, r.Relative(finalTick)); err != nil {
		return err
	}
	return w.PatchLength(&r.track)
}
