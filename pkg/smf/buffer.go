package smf

import (
	"io"
)

// chunkSize matches the page-friendly block size of the original recorder.
const chunkSize = 4088

type chunk [chunkSize]byte

// Buffer is an append-only byte store built from fixed-size chunks.
// Growing it never moves bytes that were already written.
type Buffer struct {
	chunks []*chunk
	used   int // bytes used in the last chunk
	size   int
}

func (b *Buffer) WriteByte(c byte) error {
	if len(b.chunks) == 0 || b.used == chunkSize {
		b.chunks = append(b.chunks, new(chunk))
		b.used = 0
	}
	b.chunks[len(b.chunks)-1][b.used] = c
	b.used++
	b.size++
	return nil
}

func (b *Buffer) Write(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		if len(b.chunks) == 0 || b.used == chunkSize {
			b.chunks = append(b.chunks, new(chunk))
			b.used = 0
		}
		n := copy(b.chunks[len(b.chunks)-1][b.used:], p)
		b.used += n
		b.size += n
		p = p[n:]
	}
	return total, nil
}

// WriteVarint appends v as a variable-length quantity.
func (b *Buffer) WriteVarint(v uint32) {
	var tmp [5]byte
	b.Write(AppendVarint(tmp[:0], v))
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return b.size
}

// Chunks calls fn for every chunk in write order. The last chunk is cut to
// its used length. Iteration stops at the first error.
func (b *Buffer) Chunks(fn func(p []byte) error) error {
	for i, c := range b.chunks {
		n := chunkSize
		if i == len(b.chunks)-1 {
			n = b.used
		}
		if err := fn(c[:n]); err != nil {
			return err
		}
	}
	return nil
}

func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	var total int64
	err := b.Chunks(func(p []byte) error {
		n, err := w.Write(p)
		total += int64(n)
		return err
	})
	return total, err
}

// Bytes returns a contiguous copy of the buffer.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, 0, b.size)
	b.Chunks(func(p []byte) error {
		out = append(out, p...)
		return nil
	})
	return out
}
