package smf

// MaxVarint is the largest value a MIDI variable-length quantity can hold.
const MaxVarint = 1<<28 - 1

// AppendVarint appends v as a MIDI variable-length quantity.
// Values above MaxVarint are not rejected, the top byte keeps only two bits.
func AppendVarint(dst []byte, v uint32) []byte {
	if v >= 1<<28 {
		dst = append(dst, 0x80|byte((v>>28)&0x03))
	}
	if v >= 1<<21 {
		dst = append(dst, 0x80|byte((v>>21)&0x7F))
	}
	if v >= 1<<14 {
		dst = append(dst, 0x80|byte((v>>14)&0x7F))
	}
	if v >= 1<<7 {
		dst = append(dst, 0x80|byte((v>>7)&0x7F))
	}
	return append(dst, byte(v&0x7F))
}
