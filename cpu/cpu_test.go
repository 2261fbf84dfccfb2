// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/retrocore/z80emu/cpu"
)

func newZ80(code []byte) *cpu.CPU {
	mem := cpu.NewBus()
	mem.Load(code, 0x0000, true)
	c := cpu.NewCPU(cpu.Z80, mem, nil)
	c.Reg.Init()
	return c
}

func new8080(code []byte) *cpu.CPU {
	mem := cpu.NewBus()
	mem.Load(code, 0x0000, true)
	c := cpu.NewCPU(cpu.I8080, mem, nil)
	c.Reg.Init()
	return c
}

func step(c *cpu.CPU, n int) {
	for i := 0; i < n; i++ {
		c.Step()
	}
}

func expectPC(t *testing.T, c *cpu.CPU, pc uint16) {
	t.Helper()
	if c.Reg.PC != pc {
		t.Errorf("PC incorrect. exp: $%04X, got: $%04X", pc, c.Reg.PC)
	}
}

func expectA(t *testing.T, c *cpu.CPU, a byte) {
	t.Helper()
	if c.Reg.A != a {
		t.Errorf("A incorrect. exp: $%02X, got: $%02X", a, c.Reg.A)
	}
}

func expectF(t *testing.T, c *cpu.CPU, f byte) {
	t.Helper()
	if c.Reg.F != f {
		t.Errorf("F incorrect. exp: %08b, got: %08b", f, c.Reg.F)
	}
}

func expectFlag(t *testing.T, c *cpu.CPU, bit byte, want bool) {
	t.Helper()
	got := c.Reg.F&bit != 0
	if got != want {
		t.Errorf("flag %08b incorrect. exp: %v, got: %v (F=%08b)", bit, want, got, c.Reg.F)
	}
}

func expectMem(t *testing.T, c *cpu.CPU, addr uint16, v byte) {
	t.Helper()
	got := c.Mem.Read(addr)
	if got != v {
		t.Errorf("memory at $%04X incorrect. exp: $%02X, got: $%02X", addr, v, got)
	}
}

func expectHL(t *testing.T, c *cpu.CPU, hl uint16) {
	t.Helper()
	if c.Reg.HL() != hl {
		t.Errorf("HL incorrect. exp: $%04X, got: $%04X", hl, c.Reg.HL())
	}
}

// DAA after ADD: 0x15 + 0x27 in BCD should read 0x42 with carry clear.
func TestDAAAfterAdd(t *testing.T) {
	code := []byte{
		0x3e, 0x15, // LD A,$15
		0x06, 0x27, // LD B,$27
		0x80,       // ADD A,B
		0x27,       // DAA
	}
	c := newZ80(code)
	step(c, 4)
	expectA(t, c, 0x42)
	expectFlag(t, c, cpu.FlagC, false)
}

// LDIR copies a 3-byte block and leaves BC=0, PC past the instruction.
func TestLDIR(t *testing.T) {
	code := []byte{
		0x21, 0x00, 0x20, // LD HL,$2000
		0x11, 0x00, 0x30, // LD DE,$3000
		0x01, 0x03, 0x00, // LD BC,3
		0xed, 0xb0, // LDIR
	}
	c := newZ80(code)
	c.Mem.Write(0x2000, 0xaa)
	c.Mem.Write(0x2001, 0xbb)
	c.Mem.Write(0x2002, 0xcc)

	step(c, 3)
	// LDIR re-executes itself once per Step until BC==0.
	for c.Reg.BC() != 0 {
		c.Step()
	}

	expectMem(t, c, 0x3000, 0xaa)
	expectMem(t, c, 0x3001, 0xbb)
	expectMem(t, c, 0x3002, 0xcc)
	if c.Reg.BC() != 0 {
		t.Errorf("BC not zero after LDIR: $%04X", c.Reg.BC())
	}
}

// ANA B on the 8080 always clears carry and forces N (F bit 1) high.
func Test8080ANA(t *testing.T) {
	code := []byte{
		0x3e, 0xff, // MVI A,$FF
		0x06, 0x0f, // MVI B,$0F
		0xa0, // ANA B
	}
	c := new8080(code)
	step(c, 3)
	expectA(t, c, 0x0f)
	expectFlag(t, c, cpu.FlagC, false)
	expectFlag(t, c, cpu.FlagN, true)
	expectFlag(t, c, cpu.FlagY, false)
	expectFlag(t, c, cpu.FlagX, false)
}

// BIT 7,(HL) sources its undocumented Y/X flags from the high byte of
// the WZ latch, not from the tested byte itself.
func TestBitHLUndocumentedFromWZ(t *testing.T) {
	code := []byte{
		0x21, 0x00, 0x40, // LD HL,$4000
		0xcb, 0x7e, // BIT 7,(HL)
	}
	c := newZ80(code)
	c.Undocumented = true
	c.Mem.Write(0x4000, 0x80)

	step(c, 2)

	expectFlag(t, c, cpu.FlagZ, false)
	// WZ was set to HL ($4000) by the (HL) access; Y/X come from its
	// high byte, $40, whose bit 5 is clear and bit 3 is clear.
	expectFlag(t, c, cpu.FlagY, false)
	expectFlag(t, c, cpu.FlagX, false)
}

// IM 2 vectors through the table pointed to by I:vector.
func TestIM2Interrupt(t *testing.T) {
	code := []byte{
		0xed, 0x5e, // IM 2
		0x3e, 0x20, // LD A,$20
		0xed, 0x47, // LD I,A
		0xfb, // EI
		0x00, // NOP (runs while EI protection holds)
		0x00, // NOP (interrupt delivered here instead)
	}
	c := newZ80(code)
	c.Mem.Write(0x2080, 0x00) // vector low byte
	c.Mem.Write(0x2081, 0x30) // vector high byte -> handler at $3000
	c.Mem.Write(0x3000, 0x76) // HALT, so we can tell we got there

	step(c, 4) // IM 2; LD A,$20; LD I,A; EI

	c.RequestInterrupt(0x80)
	step(c, 1) // NOP executes; interrupt still protected for one instruction
	expectPC(t, c, 0x0008)

	step(c, 1) // interrupt now delivered instead of the second NOP
	expectPC(t, c, 0x3000)
}

// IM 2 forces the low bit of the device-supplied vector byte to 0 before
// forming I:vector, so an odd byte still lands on the even table entry.
func TestIM2InterruptOddVectorMasksLowBit(t *testing.T) {
	code := []byte{
		0xed, 0x5e, // IM 2
		0x3e, 0x20, // LD A,$20
		0xed, 0x47, // LD I,A
		0xfb, // EI
		0x00, // NOP (runs while EI protection holds)
		0x00, // NOP (interrupt delivered here instead)
	}
	c := newZ80(code)
	c.Mem.Write(0x2080, 0x00) // vector low byte for the masked (even) entry
	c.Mem.Write(0x2081, 0x30) // vector high byte -> handler at $3000
	c.Mem.Write(0x3000, 0x76) // HALT, so we can tell we got there

	step(c, 4) // IM 2; LD A,$20; LD I,A; EI

	c.RequestInterrupt(0x81) // odd data byte; CPU must clear bit 0
	step(c, 1)
	step(c, 1)
	expectPC(t, c, 0x3000)
}

// EI immediately followed by RET must complete the RET before the
// interrupt already pending is allowed to fire.
func TestEIRETAtomicity(t *testing.T) {
	code := []byte{
		0xfb,       // EI            @0000
		0xc9,       // RET           @0001
		0x00, 0x00, // padding
	}
	c := newZ80(code)
	c.Reg.SP = 0x2000
	c.Mem.Write(0x2000, 0x00)
	c.Mem.Write(0x2001, 0x10) // return address $1000
	c.Mem.Write(0x1000, 0x00) // NOP at the return target

	c.RequestInterrupt(0xff)

	step(c, 1) // EI
	expectPC(t, c, 0x0001)

	step(c, 1) // RET, still protected by the EI just executed
	expectPC(t, c, 0x1000)

	step(c, 1) // interrupt now delivered instead of the NOP at $1000
	if c.Reg.PC == 0x1001 {
		t.Errorf("interrupt was not delivered after EI;RET settled")
	}
}

func TestResetClearsPCAndIFF(t *testing.T) {
	c := newZ80([]byte{0xfb}) // EI
	step(c, 1)
	if !c.Reg.IFF1 {
		t.Fatal("EI did not set IFF1")
	}
	c.Reg.PC = 0x1234
	c.Reset()
	expectPC(t, c, 0)
	if c.Reg.IFF1 {
		t.Errorf("Reset did not clear IFF1")
	}
}

func TestModelSwitch(t *testing.T) {
	c := newZ80([]byte{0x00})
	c.RequestModelSwitch(cpu.I8080)
	if c.Err == nil || c.Err.Kind != cpu.ErrModelSwitch {
		t.Fatalf("expected ErrModelSwitch, got %v", c.Err)
	}
	c.ApplyModelSwitch()
	if c.Model != cpu.I8080 {
		t.Errorf("model not switched")
	}
	if c.Err != nil {
		t.Errorf("Err not cleared after ApplyModelSwitch")
	}
}
