// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// Flag bit positions within the F (and F') register. The Z80 layout is
// used for both models; on an I8080 the Y, X and N bits are forced as
// described in maskModel.
const (
	FlagC  = 1 << 0 // carry
	FlagN  = 1 << 1 // add/subtract
	FlagPV = 1 << 2 // parity/overflow
	FlagX  = 1 << 3 // undocumented, copy of bit 3 of a result
	FlagH  = 1 << 4 // half carry
	FlagY  = 1 << 5 // undocumented, copy of bit 5 of a result
	FlagZ  = 1 << 6 // zero
	FlagS  = 1 << 7 // sign
)

// szp holds the Sign, Zero and Parity bits for every possible 8-bit
// result. H, N, C and V depend on the operand pair and carry-in and are
// computed explicitly by each instruction; S/Z/P depend only on the
// result byte and are cheap to precompute once.
var szp [256]byte

// szyx holds the Sign, Zero, undocumented-Y and undocumented-X bits for
// every possible 8-bit result (no parity).
var szyx [256]byte

// szyxp holds Sign, Zero, Y, X and Parity together, the combination used
// by most arithmetic and logic instructions on the Z80.
var szyxp [256]byte

func init() {
	for i := 0; i < 256; i++ {
		b := byte(i)

		var s, z, y, x byte
		if b&0x80 != 0 {
			s = FlagS
		}
		if b == 0 {
			z = FlagZ
		}
		y = b & FlagY
		x = b & FlagX

		p := byte(0)
		if evenParity(b) {
			p = FlagPV
		}

		szp[i] = s | z | p
		szyx[i] = s | z | y | x
		szyxp[i] = s | z | y | x | p
	}
}

// evenParity reports whether b has an even number of set bits.
func evenParity(b byte) bool {
	b ^= b >> 4
	b ^= b >> 2
	b ^= b >> 1
	return b&1 == 0
}

// maskModel adjusts a flag byte for the bits the given model's F
// register cannot represent. On an I8080, bit 5 and bit 3 never carry
// the undocumented Y/X meaning and bit 1 is hardwired high (it is not a
// programmer-visible "N" the way it is on a Z80), so every 8080 flag
// write is expected to pass through this before landing in F.
func maskModel(model Model, f byte) byte {
	if model == I8080 {
		f = (f &^ (FlagY | FlagX)) | FlagN
	}
	return f
}
