package xls

import (
	"math"
	"strconv"
)

// RK is the compact 32-bit number encoding used by RK and MULRK records.
//
// Bit 0 set means the value was multiplied by 100. Bit 1 set means the upper
// 30 bits are a signed integer; otherwise they are the upper 30 bits of an
// IEEE-754 double whose low 34 bits are zero.
type RK uint32

// Float64 decodes the RK value.
func (rk RK) Float64() float64 {
	var v float64

	if rk&0x02 != 0 {
		v = float64(int32(rk) >> 2)
	} else {
		v = math.Float64frombits(uint64(rk&0xFFFFFFFC) << 32)
	}

	if rk&0x01 != 0 {
		v /= 100
	}

	return v
}

// String returns the RK value formatted as a plain number.
func (rk RK) String() string {
	return strconv.FormatFloat(rk.Float64(), 'f', -1, 64)
}

// DecodeRK converts a raw RK field to a double.
func DecodeRK(raw uint32) float64 {
	return RK(raw).Float64()
}

// DecodeDoubleFromPacked rebuilds a double from its high and low 32-bit words.
func DecodeDoubleFromPacked(high, low uint32) float64 {
	return math.Float64frombits(uint64(high)<<32 | uint64(low))
}
