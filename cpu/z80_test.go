// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/retrocore/z80emu/cpu"
)

func TestIndexedLoadAndIncrement(t *testing.T) {
	code := []byte{
		0xdd, 0x21, 0x00, 0x50, // LD IX,$5000
		0xdd, 0x36, 0x02, 0x2a, // LD (IX+2),$2A
		0xdd, 0x34, 0x02, // INC (IX+2)
	}
	c := newZ80(code)
	step(c, 3)
	expectMem(t, c, 0x5002, 0x2b)
}

func TestIndexedHalfRegisters(t *testing.T) {
	code := []byte{
		0xdd, 0x26, 0x7f, // LD IXh,$7F
		0xdd, 0x2e, 0x01, // LD IXl,$01
		0xdd, 0x7c, // LD A,IXh
	}
	c := newZ80(code)
	step(c, 3)
	expectA(t, c, 0x7f)
	if c.Reg.IX != 0x7f01 {
		t.Errorf("IX incorrect after half-register loads: $%04X", c.Reg.IX)
	}
}

func TestDDCBBit(t *testing.T) {
	code := []byte{
		0xdd, 0x21, 0x00, 0x60, // LD IX,$6000
		0xdd, 0xcb, 0x03, 0x7e, // BIT 7,(IX+3)
	}
	c := newZ80(code)
	c.Mem.Write(0x6003, 0x80)
	step(c, 2)
	expectFlag(t, c, cpu.FlagZ, false)
}

func TestCBRotateRegister(t *testing.T) {
	code := []byte{
		0x3e, 0x81, // LD A,$81
		0xcb, 0x07, // RLC A
	}
	c := newZ80(code)
	step(c, 2)
	expectA(t, c, 0x03)
	expectFlag(t, c, cpu.FlagC, true)
}

func TestNEGComplementsAccumulator(t *testing.T) {
	code := []byte{
		0x3e, 0x01, // LD A,1
		0xed, 0x44, // NEG
	}
	c := newZ80(code)
	step(c, 2)
	expectA(t, c, 0xff)
	expectFlag(t, c, cpu.FlagC, true)
	expectFlag(t, c, cpu.FlagN, true)
}

func TestRETNRestoresIFF1FromIFF2ButRETIDoesNot(t *testing.T) {
	retn := []byte{
		0xed, 0x45, // RETN
	}
	c := newZ80(retn)
	c.Reg.SP = 0x2000
	c.Mem.Write(0x2000, 0x00)
	c.Mem.Write(0x2001, 0x10)
	c.Reg.IFF1 = false
	c.Reg.IFF2 = true
	step(c, 1)
	if !c.Reg.IFF1 {
		t.Error("RETN did not restore IFF1 from IFF2")
	}

	reti := []byte{
		0xed, 0x4d, // RETI
	}
	c2 := newZ80(reti)
	c2.Reg.SP = 0x2000
	c2.Mem.Write(0x2000, 0x00)
	c2.Mem.Write(0x2001, 0x10)
	c2.Reg.IFF1 = false
	c2.Reg.IFF2 = true
	step(c2, 1)
	if c2.Reg.IFF1 {
		t.Error("RETI incorrectly restored IFF1 from IFF2")
	}
}

func TestConditionalJump(t *testing.T) {
	code := []byte{
		0xaf,             // XOR A       (Z becomes set)
		0xca, 0x00, 0x10, // JP Z,$1000
	}
	c := newZ80(code)
	step(c, 2)
	expectPC(t, c, 0x1000)
}

func TestExDeHl(t *testing.T) {
	code := []byte{
		0x21, 0x34, 0x12, // LD HL,$1234
		0x11, 0x78, 0x56, // LD DE,$5678
		0xeb, // EX DE,HL
	}
	c := newZ80(code)
	step(c, 3)
	expectHL(t, c, 0x5678)
	if c.Reg.DE() != 0x1234 {
		t.Errorf("DE incorrect after EX DE,HL: $%04X", c.Reg.DE())
	}
}

func TestUndocumentedOpcodeTraps(t *testing.T) {
	code := []byte{0xed, 0xff} // no defined ED $FF meaning in this decoder
	c := newZ80(code)
	step(c, 1)
	if c.Err == nil {
		t.Fatal("expected a trap error for an unimplemented ED opcode")
	}
}
