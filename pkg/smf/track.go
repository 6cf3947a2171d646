package smf

// Track holds the body of the single track being recorded together with
// the state needed to compute delta times and running status.
type Track struct {
	body       Buffer
	lastTick   uint32
	lastStatus byte // 0 when there is no running status
}

// Len returns the size of the track body without its chunk header.
func (t *Track) Len() int {
	return t.body.Len()
}

// Body gives read access to the recorded bytes.
func (t *Track) Body() *Buffer {
	return &t.body
}

// delta returns the non-negative tick distance from the previous event.
func (t *Track) delta(tick uint32) uint32 {
	var d uint32
	if tick > t.lastTick {
		d = tick - t.lastTick
	}
	t.lastTick = tick
	return d
}

// status writes cmd unless running status makes it redundant.
// System bytes never start a running status and cancel the current one.
func (t *Track) status(cmd byte) {
	if cmd != t.lastStatus {
		t.body.WriteByte(cmd)
	}
	if cmd < 0xF0 {
		t.lastStatus = cmd
	} else {
		t.lastStatus = 0
	}
}

// message writes one (delta-time, status, data) triple.
func (t *Track) message(tick uint32, cmd byte, data ...byte) {
	t.body.WriteVarint(t.delta(tick))
	t.status(cmd)
	t.body.Write(data)
}

// meta writes a meta event at delta-time zero without touching running status.
func (t *Track) meta(typ byte, data ...byte) {
	t.body.WriteVarint(0)
	t.body.WriteByte(metaStatus)
	t.body.WriteByte(typ)
	t.body.WriteVarint(uint32(len(data)))
	t.body.Write(data)
}
