// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/retrocore/z80emu/cpu"
)

// The I8080 has no Y/X flags and always sets F bit 1 (N) after any
// operation that touches F.
func TestI8080FlagsMaskYX(t *testing.T) {
	code := []byte{
		0x3e, 0x0f, // MVI A,$0F
		0x06, 0x19, // MVI B,$19
		0x80, // ADD B  -> A=$28, result has bit 5 and bit 3 both set
	}
	c := new8080(code)
	step(c, 3)

	expectFlag(t, c, cpu.FlagY, false)
	expectFlag(t, c, cpu.FlagX, false)
	expectFlag(t, c, cpu.FlagN, true)
}

// INC/DEC preserve carry and recompute every other flag, matching the
// documented Z80 behavior that these are the only ALU ops that don't
// touch C.
func TestIncDecPreservesCarry(t *testing.T) {
	code := []byte{
		0x37, // SCF (set carry)
		0x3c, // INC A (A was 0, becomes 1)
	}
	c := newZ80(code)
	step(c, 2)
	expectFlag(t, c, cpu.FlagC, true)
	expectA(t, c, 1)
}

// CPL complements A and sets H and N, leaving S/Z/P/C untouched.
func TestCPL(t *testing.T) {
	code := []byte{
		0x3e, 0x5a, // LD A,$5A
		0x2f, // CPL
	}
	c := newZ80(code)
	step(c, 2)
	expectA(t, c, 0xa5)
	expectFlag(t, c, cpu.FlagH, true)
	expectFlag(t, c, cpu.FlagN, true)
}

// SCF sets carry and clears H/N.
func TestSCFCCF(t *testing.T) {
	code := []byte{
		0x37, // SCF
		0x3f, // CCF (complements carry, moves old C into H)
	}
	c := newZ80(code)
	step(c, 1)
	expectFlag(t, c, cpu.FlagC, true)
	expectFlag(t, c, cpu.FlagH, false)
	expectFlag(t, c, cpu.FlagN, false)

	step(c, 1)
	expectFlag(t, c, cpu.FlagC, false)
	expectFlag(t, c, cpu.FlagH, true)
}
