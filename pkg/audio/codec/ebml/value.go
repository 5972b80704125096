package ebml

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Uint decodes a big-endian unsigned integer payload of 0 to 8 bytes.
func Uint(data []byte) (uint64, error) {
	if len(data) > 8 {
		return 0, fmt.Errorf("ebml: %d-byte unsigned integer", len(data))
	}
	var v uint64
	for _, b := range data {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// Int decodes a big-endian two's complement integer payload of 0 to 8 bytes.
func Int(data []byte) (int64, error) {
	if len(data) > 8 {
		return 0, fmt.Errorf("ebml: %d-byte signed integer", len(data))
	}
	if len(data) == 0 {
		return 0, nil
	}
	v := int64(int8(data[0]))
	for _, b := range data[1:] {
		v = v<<8 | int64(b)
	}
	return v, nil
}

// Float decodes a 0, 4 or 8 byte IEEE 754 payload.
func Float(data []byte) (float64, error) {
	switch len(data) {
	case 0:
		return 0, nil
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(data))), nil
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(data)), nil
	default:
		return 0, fmt.Errorf("ebml: %d-byte float", len(data))
	}
}

// String decodes an ASCII or UTF-8 payload, dropping trailing NUL padding.
func String(data []byte) string {
	return strings.TrimRight(string(data), "\x00")
}
