package smf

import (
	"fmt"
)

// message is one decoded track event. status holds the effective status
// byte and explicit reports whether it was present on the wire.
type message struct {
	delta    uint32
	status   byte
	explicit bool
	data     []byte
}

type trackDecoder struct {
	buf        []byte
	offset     int
	lastStatus byte
}

func decodeVarint(buf []byte) (x uint32, n int) {
	for _, b := range buf {
		x = x<<7 | uint32(b&0x7F)
		n++
		if b&0x80 == 0 {
			return x, n
		}
	}
	return x, n
}

func (d *trackDecoder) readByte() (byte, error) {
	if d.offset >= len(d.buf) {
		return 0, fmt.Errorf("unexpected end of track at %d", d.offset)
	}
	b := d.buf[d.offset]
	d.offset++
	return b, nil
}

func (d *trackDecoder) varLen() (uint32, error) {
	v, n := decodeVarint(d.buf[d.offset:])
	if n == 0 || d.buf[d.offset+n-1]&0x80 != 0 {
		return 0, fmt.Errorf("truncated variable length at %d", d.offset)
	}
	d.offset += n
	return v, nil
}

func (d *trackDecoder) bytes(n int) ([]byte, error) {
	if d.offset+n > len(d.buf) {
		return nil, fmt.Errorf("unexpected end of track at %d", d.offset)
	}
	p := d.buf[d.offset : d.offset+n]
	d.offset += n
	return p, nil
}

func dataLen(status byte) int {
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 1
	}
	return 2
}

func (d *trackDecoder) parseEvent() (message, error) {
	var m message
	var err error

	if m.delta, err = d.varLen(); err != nil {
		return m, err
	}

	b, err := d.readByte()
	if err != nil {
		return m, err
	}

	if b&0x80 == 0 {
		if d.lastStatus == 0 {
			return m, fmt.Errorf("running status without status at %d", d.offset)
		}
		m.status = d.lastStatus
		d.offset--
	} else {
		m.status = b
		m.explicit = true
	}

	switch {
	case m.status < 0xF0:
		d.lastStatus = m.status
		m.data, err = d.bytes(dataLen(m.status))
	case m.status == 0xFF:
		d.lastStatus = 0
		var typ byte
		if typ, err = d.readByte(); err != nil {
			return m, err
		}
		var l uint32
		if l, err = d.varLen(); err != nil {
			return m, err
		}
		var p []byte
		p, err = d.bytes(int(l))
		m.data = append([]byte{typ}, p...)
	case m.status == 0xF0 || m.status == 0xF7:
		d.lastStatus = 0
		var l uint32
		if l, err = d.varLen(); err != nil {
			return m, err
		}
		m.data, err = d.bytes(int(l))
	default:
		err = fmt.Errorf("unexpected status %#x at %d", m.status, d.offset)
	}
	return m, err
}

func decodeTrack(body []byte) ([]message, error) {
	d := &trackDecoder{buf: body}
	var out []message
	for d.offset < len(body) {
		m, err := d.parseEvent()
		if err != nil {
			return out, err
		}
		out = append(out, m)
	}
	return out, nil
}
