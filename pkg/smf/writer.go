package smf

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type writerState int

const (
	stateIdle writerState = iota
	stateHeaderWritten
	stateStreaming
	stateFinalized
	stateClosed
)

var (
	headerChunkID = [4]byte{0x4D, 0x54, 0x68, 0x64}
	trackChunkID  = [4]byte{0x4D, 0x54, 0x72, 0x6B}

	// ErrState is returned when the writer steps are called out of order.
	ErrState = errors.New("writer called out of order")
)

const headerSize = 6

type fileHeader struct {
	ID        [4]byte
	Size      uint32
	Format    uint16
	NumTracks uint16
	Division  uint16
}

// Writer assembles a Type 0 file around a recorded track.
//
// When the output is an io.WriteSeeker the header is written first with a
// zero track length, which is patched once the track is complete. Any other
// output gets the whole file in one go from Finalize.
type Writer struct {
	w  io.Writer
	ws io.WriteSeeker

	state      writerState
	division   uint16
	sizeOffset int64
	epilogue   int
	written    int64
	log        *zap.Logger
}

func NewWriter(w io.Writer) *Writer {
	ws, _ := w.(io.WriteSeeker)
	return &Writer{w: w, ws: ws, log: writerLog.Named("writer")}
}

// Seekable reports whether the length can be patched in place.
func (w *Writer) Seekable() bool {
	return w.ws != nil
}

// Written returns the number of bytes sent to the output.
func (w *Writer) Written() int64 {
	return w.written
}

func (w *Writer) expect(s writerState) error {
	if w.state != s {
		return errors.Wrapf(ErrState, "state %d, want %d", w.state, s)
	}
	return nil
}

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.written += int64(n)
	return err
}

func (w *Writer) writeHeader(trackSize uint32) error {
	h := fileHeader{
		ID:        headerChunkID,
		Size:      headerSize,
		Format:    0,
		NumTracks: 1,
		Division:  w.division,
	}
	if err := binary.Write(w.w, binary.BigEndian, &h); err != nil {
		return errors.Wrap(err, "write header")
	}
	w.written += 14

	if err := binary.Write(w.w, binary.BigEndian, trackChunkID); err != nil {
		return errors.Wrap(err, "write track header")
	}
	w.written += 4

	if w.ws != nil {
		offset, err := w.ws.Seek(0, io.SeekCurrent)
		if err != nil {
			return errors.Wrap(err, "get track length offset")
		}
		w.sizeOffset = offset
	}

	if err := binary.Write(w.w, binary.BigEndian, trackSize); err != nil {
		return errors.Wrap(err, "write track length")
	}
	w.written += 4
	return nil
}

// WriteHeader emits the file header and the track chunk header with a
// placeholder length.
func (w *Writer) WriteHeader(division uint16) error {
	if err := w.expect(stateIdle); err != nil {
		return err
	}
	w.division = division

	if w.ws != nil {
		if err := w.writeHeader(0); err != nil {
			return err
		}
		w.log.Debug("header", zap.Uint16("division", division), zap.Int64("sizeOffset", w.sizeOffset))
	}

	w.state = stateHeaderWritten
	return nil
}

// Stream copies the recorded track body to the output.
func (w *Writer) Stream(t *Track) error {
	if err := w.expect(stateHeaderWritten); err != nil {
		return err
	}

	if w.ws != nil {
		if err := t.body.Chunks(w.write); err != nil {
			return errors.Wrap(err, "write track")
		}
		w.log.Debug("stream", zap.Int("size", t.Len()))
	}

	w.state = stateStreaming
	return nil
}

// Finalize appends the end of track meta event at finalTick, given on the
// track time line. The epilogue goes straight to the output.
func (w *Writer) Finalize(t *Track, finalTick uint32) error {
	if err := w.expect(stateStreaming); err != nil {
		return err
	}

	var buf [8]byte
	epilogue := AppendVarint(buf[:0], t.delta(finalTick))
	epilogue = append(epilogue, metaStatus, metaEndOfTrack)
	epilogue = AppendVarint(epilogue, 0)
	w.epilogue = len(epilogue)

	if w.ws == nil {
		if err := w.writeHeader(uint32(t.Len() + w.epilogue)); err != nil {
			return err
		}
		if err := t.body.Chunks(w.write); err != nil {
			return errors.Wrap(err, "write track")
		}
	}

	if err := w.write(epilogue); err != nil {
		return errors.Wrap(err, "write end of track")
	}

	w.log.Debug("finalize", zap.Uint32("tick", finalTick), zap.Int("epilogue", w.epilogue))
	w.state = stateFinalized
	return nil
}

// PatchLength rewrites the track length in the header and restores the
// write position.
func (w *Writer) PatchLength(t *Track) error {
	if err := w.expect(stateFinalized); err != nil {
		return err
	}
	w.state = stateClosed

	if w.ws == nil {
		return nil
	}

	size := uint32(t.Len() + w.epilogue)

	end, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "get end position")
	}
	if _, err := w.ws.Seek(w.sizeOffset, io.SeekStart); err != nil {
		return errors.Wrap(err, "seek to track length")
	}
	if err := binary.Write(w.ws, binary.BigEndian, size); err != nil {
		return errors.Wrap(err, "write track length")
	}
	if _, err := w.ws.Seek(end, io.SeekStart); err != nil {
		return errors.Wrap(err, "seek to end")
	}

	w.log.Debug("patch", zap.Uint32("size", size), zap.Int64("offset", w.sizeOffset))
	return nil
}
