package codec

import "fmt"

// bcdEncodeLE encodes a value as little-endian BCD over width bytes,
// two decimal digits per byte with the lower digit in the low nibble.
// Values that do not fit in width*2 digits are rejected, never truncated.
func bcdEncodeLE(v int64, width int) ([]byte, error) {
	if v < 0 {
		return nil, fmt.Errorf("cannot BCD-encode negative value %d", v)
	}
	out := make([]byte, width)
	rem := v
	for i := 0; i < width; i++ {
		lo := byte(rem % 10)
		rem /= 10
		hi := byte(rem % 10)
		rem /= 10
		out[i] = hi<<4 | lo
	}
	if rem != 0 {
		return nil, fmt.Errorf("value %d exceeds %d BCD digits", v, width*2)
	}
	return out, nil
}

// bcdDecodeLE decodes little-endian BCD bytes into an integer
func bcdDecodeLE(d []byte) int64 {
	var v int64
	var scale int64 = 1
	for _, b := range d {
		v += int64(b&0x0F) * scale
		scale *= 10
		v += int64(b>>4) * scale
		scale *= 10
	}
	return v
}

// bcdEncodeBE2 encodes a 0-9999 value as 2-byte big-endian BCD, the
// layout CI-V uses for level and meter data
func bcdEncodeBE2(v int) []byte {
	return []byte{
		byte(v/1000%10)<<4 | byte(v/100%10),
		byte(v/10%10)<<4 | byte(v%10),
	}
}

// bcdDecodeBE2 decodes 2-byte big-endian BCD level data
func bcdDecodeBE2(d []byte) int {
	return int(d[0]>>4)*1000 + int(d[0]&0x0F)*100 + int(d[1]>>4)*10 + int(d[1]&0x0F)
}
