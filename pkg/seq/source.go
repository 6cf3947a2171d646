package seq

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"

	"github.com/Garik-/smfrec/pkg/smf"
)

// defaultMaxLine bounds a single JSON line. Longer lines are skipped.
const defaultMaxLine = 4 << 20

var (
	// ErrBadEvent reports a line that could not be decoded. The source
	// stays usable after it.
	ErrBadEvent = errors.New("bad event")
)

// Source delivers timestamped events. Next returns io.EOF when there are
// no more events. Tick reports the current position of the clock the
// events are stamped with.
type Source interface {
	Next(ctx context.Context) (smf.Event, error)
	Tick() uint32
}

type jsonEvent struct {
	Type     string `json:"type"`
	Tick     uint32 `json:"tick"`
	Queue    int    `json:"queue"`
	Port     int    `json:"port"`
	Channel  uint8  `json:"channel"`
	Note     uint8  `json:"note"`
	Velocity uint8  `json:"velocity"`
	Param    uint32 `json:"param"`
	Value    int32  `json:"value"`
	Data     string `json:"data"`
	Raw      string `json:"raw"`
}

// JSONSource reads events from a stream with one JSON object per line.
//
// A line either carries a wire message in hex,
//
//	{"tick":0,"raw":"90 3c 64"}
//
// or a sequencer event by type name,
//
//	{"tick":0,"type":"rpn","channel":0,"param":0,"value":8192}
//
// and {"type":"end","tick":N} marks the final clock position.
type JSONSource struct {
	r       *bufio.Reader
	buf     []byte
	line    int
	maxLine int

	mu      sync.Mutex
	maxTick uint32
	endTick uint32
	hasEnd  bool

	log *zap.Logger
}

func NewJSONSource(r io.Reader) *JSONSource {
	return &JSONSource{
		r:       bufio.NewReaderSize(r, 64*1024),
		maxLine: defaultMaxLine,
		log:     sourceLog.Named("json"),
	}
}

// readLine returns the next line without its terminator. A line longer
// than maxLine is consumed and reported as ErrBadEvent.
func (s *JSONSource) readLine() ([]byte, error) {
	s.buf = s.buf[:0]
	n := 0
	for {
		chunk, err := s.r.ReadSlice('\n')
		n += len(chunk)
		if n <= s.maxLine {
			s.buf = append(s.buf, chunk...)
		}

		switch {
		case err == bufio.ErrBufferFull:
			continue
		case err == io.EOF && n > 0:
		case err != nil:
			if err == io.EOF {
				return nil, err
			}
			return nil, errors.Wrap(err, "read events")
		}

		s.line++
		if n > s.maxLine {
			return nil, errors.Wrapf(ErrBadEvent, "line %d: longer than %d bytes", s.line, s.maxLine)
		}
		return s.buf, nil
	}
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.Join(strings.Fields(s), ""))
}

func (s *JSONSource) Next(ctx context.Context) (smf.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return smf.Event{}, err
		}
		line, err := s.readLine()
		if err != nil {
			return smf.Event{}, err
		}

		text := bytes.TrimSpace(line)
		if len(text) == 0 {
			continue
		}

		var je jsonEvent
		if err := json.Unmarshal(text, &je); err != nil {
			return smf.Event{}, errors.Wrapf(ErrBadEvent, "line %d: %v", s.line, err)
		}

		if je.Type == "end" {
			s.mu.Lock()
			s.endTick, s.hasEnd = je.Tick, true
			s.mu.Unlock()
			s.log.Debug("end", zap.Uint32("tick", je.Tick))
			continue
		}

		ev, err := je.event()
		if err != nil {
			return smf.Event{}, errors.Wrapf(ErrBadEvent, "line %d: %v", s.line, err)
		}

		s.mu.Lock()
		if ev.Tick > s.maxTick {
			s.maxTick = ev.Tick
		}
		s.mu.Unlock()

		return ev, nil
	}
}

func (je *jsonEvent) event() (smf.Event, error) {
	if je.Raw != "" {
		b, err := decodeHex(je.Raw)
		if err != nil {
			return smf.Event{}, err
		}
		ev := FromMessage(je.Tick, midi.Message(b))
		ev.Queue, ev.Port = je.Queue, je.Port
		return ev, nil
	}

	ev := smf.Event{
		Kind:     parseKind(je.Type),
		Tick:     je.Tick,
		Queue:    je.Queue,
		Port:     je.Port,
		Channel:  je.Channel,
		Note:     je.Note,
		Velocity: je.Velocity,
		Param:    je.Param,
		Value:    je.Value,
	}
	if je.Data != "" {
		b, err := decodeHex(je.Data)
		if err != nil {
			return smf.Event{}, err
		}
		ev.Data = b
	}
	return ev, nil
}

// short names used by sequencer dumps
var kindAliases = map[string]smf.Kind{
	"rpn":  smf.RegisteredParameter,
	"nrpn": smf.NonRegisteredParameter,
}

func parseKind(name string) smf.Kind {
	name = strings.ToLower(name)
	if k, ok := kindAliases[name]; ok {
		return k
	}
	return smf.ParseKind(name)
}

// Tick returns the end tick if one was given, otherwise the latest event tick.
func (s *JSONSource) Tick() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasEnd {
		return s.endTick
	}
	return s.maxTick
}
