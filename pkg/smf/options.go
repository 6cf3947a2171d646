package smf

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	defaultBPM        = 120
	defaultTicks      = 384
	defaultSMPTETicks = 40
)

var (
	ErrInvalidTempo         = errors.New("invalid tempo")
	ErrInvalidFrames        = errors.New("invalid number of frames/s")
	ErrInvalidTicks         = errors.New("invalid number of ticks")
	ErrInvalidTimeSignature = errors.New("invalid time signature")
)

type TimeSignature struct {
	Numerator   int
	Denominator int
}

// ParseTimeSignature parses "nn:dd".
func ParseTimeSignature(s string) (TimeSignature, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return TimeSignature{}, errors.Wrap(ErrInvalidTimeSignature, s)
	}
	num, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeSignature{}, errors.Wrap(ErrInvalidTimeSignature, s)
	}
	den, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeSignature{}, errors.Wrap(ErrInvalidTimeSignature, s)
	}
	ts := TimeSignature{Numerator: num, Denominator: den}
	if err := ts.validate(); err != nil {
		return TimeSignature{}, err
	}
	return ts, nil
}

func (ts TimeSignature) validate() error {
	if ts.Numerator < 1 || ts.Numerator > 64 || ts.Denominator < 1 || ts.Denominator > 64 {
		return errors.Wrapf(ErrInvalidTimeSignature, "%d:%d", ts.Numerator, ts.Denominator)
	}
	return nil
}

// exponent returns the denominator as a power of two, rounded down.
func (ts TimeSignature) exponent() byte {
	var dd byte
	for x := ts.Denominator; x > 1; x /= 2 {
		dd++
	}
	return dd
}

// Options describe the timing of the recorded file and the destination
// the recorder listens on.
type Options struct {
	BPM           int
	Frames        int // 0 for musical timing, otherwise SMPTE frames per second
	Ticks         int // per quarter note, or per frame with SMPTE
	TimeSignature TimeSignature

	Queue int
	Port  int
}

func DefaultOptions() Options {
	return Options{
		BPM:           defaultBPM,
		TimeSignature: TimeSignature{Numerator: 4, Denominator: 4},
	}
}

// SMPTE reports whether the file uses frame based timing.
func (o Options) SMPTE() bool {
	return o.Frames != 0
}

// Validate checks the ranges and fills in the default resolution.
func (o *Options) Validate() error {
	if o.BPM < 4 || o.BPM > 6000 {
		return errors.Wrapf(ErrInvalidTempo, "%d bpm", o.BPM)
	}
	switch o.Frames {
	case 0, 24, 25, 29, 30:
	default:
		return errors.Wrapf(ErrInvalidFrames, "%d", o.Frames)
	}
	if o.Ticks < 0 || o.Ticks > 0x7FFF {
		return errors.Wrapf(ErrInvalidTicks, "%d", o.Ticks)
	}
	if o.Ticks == 0 {
		o.Ticks = defaultTicks
		if o.SMPTE() {
			o.Ticks = defaultSMPTETicks
		}
	}
	if o.SMPTE() && o.Ticks > 0xFF {
		o.Ticks = 0xFF
	}
	return o.TimeSignature.validate()
}

// Tempo returns microseconds per quarter note.
func (o Options) Tempo() int {
	return 60000000 / o.BPM
}

// Division returns the header time division field.
func (o Options) Division() uint16 {
	division := uint16(o.Ticks)
	if o.SMPTE() {
		division |= uint16(0x100-o.Frames) << 8
	}
	return division
}
