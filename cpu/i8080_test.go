// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/retrocore/z80emu/cpu"
)

// 8080 hardware has no signed-overflow flag: P always reflects the
// parity of the result, never a Z80-style V bit. These cases are chosen
// so the two readings disagree (odd parity with a signed overflow, and
// even parity with none), which is exactly what the shared add8/sub8
// ALU helpers get wrong without parity8080 rebuilding P.
func TestI8080ArithmeticParityNotOverflow(t *testing.T) {
	cases := []struct {
		name  string
		code  []byte
		steps int
		wantA byte
		wantP bool
	}{
		{
			name:  "ADI no overflow, even parity => P set",
			code:  []byte{0x3e, 0x01, 0xc6, 0x02}, // MVI A,1 / ADI 2 -> 3 (overflow=false, parity even)
			steps: 2,
			wantA: 0x03,
			wantP: true,
		},
		{
			name:  "ADI signed overflow, odd parity => P clear",
			code:  []byte{0x3e, 0x7f, 0xc6, 0x01}, // MVI A,$7F / ADI 1 -> $80 (overflow=true, parity odd)
			steps: 2,
			wantA: 0x80,
			wantP: false,
		},
		{
			name:  "ADD B with half carry, parity only",
			code:  []byte{0x3e, 0x0f, 0x06, 0x01, 0x80}, // MVI A,$0F / MVI B,1 / ADD B -> $10
			steps: 3,
			wantA: 0x10,
			wantP: false, // $10 = 0001_0000, odd parity
		},
		{
			name:  "SUI no borrow, even parity => P set",
			code:  []byte{0x3e, 0x05, 0xd6, 0x02}, // MVI A,5 / SUI 2 -> 3 (0000_0011, even parity)
			steps: 2,
			wantA: 0x03,
			wantP: true,
		},
		{
			name:  "SUB signed overflow, odd parity => P clear",
			code:  []byte{0x3e, 0x80, 0x06, 0x01, 0x90}, // MVI A,$80 / MVI B,1 / SUB B -> $7F (overflow=true, odd parity)
			steps: 3,
			wantA: 0x7f,
			wantP: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := new8080(tc.code)
			step(c, tc.steps)
			expectA(t, c, tc.wantA)
			expectFlag(t, c, cpu.FlagPV, tc.wantP)
			expectFlag(t, c, cpu.FlagY, false)
			expectFlag(t, c, cpu.FlagX, false)
			expectFlag(t, c, cpu.FlagN, true) // N is hardwired high on I8080
		})
	}
}

// CMP/CPI affect flags only; A must be left untouched and P/V must still
// read as plain parity of the (discarded) comparison result.
func TestI8080CompareParity(t *testing.T) {
	code := []byte{
		0x3e, 0x7f, // MVI A,$7F
		0x06, 0x01, // MVI B,1
		0xb8, // CMP B -> result $7E, discarded; parity even
	}
	c := new8080(code)
	step(c, 3)
	expectA(t, c, 0x7f) // CMP never writes A
	expectFlag(t, c, cpu.FlagPV, true)
}

// INR/DCR only ever touch S/Z/P/H (carry is left alone), and P is parity
// on the 8080 the same as every other ALU result.
func TestI8080IncDecParity(t *testing.T) {
	code := []byte{
		0x3e, 0x7f, // MVI A,$7F
		0x37, // STC (set carry, to confirm INR leaves it alone)
		0x3c, // INR A -> $80 (odd parity => P clear)
	}
	c := new8080(code)
	step(c, 3)
	expectA(t, c, 0x80)
	expectFlag(t, c, cpu.FlagPV, false)
	expectFlag(t, c, cpu.FlagC, true) // INR must not touch C

	code2 := []byte{
		0x3e, 0x01, // MVI A,1
		0x3d, // DCR A -> 0 (even parity => P set)
	}
	c2 := new8080(code2)
	step(c2, 2)
	expectA(t, c2, 0x00)
	expectFlag(t, c2, cpu.FlagPV, true)
	expectFlag(t, c2, cpu.FlagZ, true)
}
