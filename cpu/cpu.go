// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu implements an instruction-accurate Z80 and I8080 emulator:
// the register file and flag model, the decoded instruction semantics for
// both opcode spaces (including the Z80's CB/ED/DD/FD/DDCB/FDCB prefix
// planes), the 64 KiB memory bus, the 256-slot I/O port bus, and the
// interrupt/bus-request fabric that couples the CPU to peripherals.
package cpu

import "math/rand"

// Model selects which processor the CPU currently emulates.
type Model int

const (
	Z80 Model = iota
	I8080
)

func (m Model) String() string {
	if m == I8080 {
		return "8080"
	}
	return "Z80"
}

// CPU is the shared execution context for both the Z80 and I8080
// decoders. Devices hold a pointer to it and reach the interrupt/DMA
// fabric through RequestInterrupt, RequestNMI, StartBusRequest and
// EndBusRequest; everything else about it is single-threaded and must
// only be touched from the goroutine that calls Step/Run.
type CPU struct {
	Model Model
	Reg   Registers
	Mem   Memory
	Port  Ports

	// Cycles is the running total of T-states consumed, used by the
	// scheduler for throttling.
	Cycles uint64

	// Err holds the reason the most recent Step stopped being able to
	// make progress. Only ErrModelSwitch is meant to be recovered from;
	// every other kind is terminal until Reset.
	Err *CPUError

	// Undocumented is not consulted by the decoders. The Z80's
	// undocumented opcodes (the IXh/IXl/IYh/IYl register forms, SLL, the
	// DDCB/FDCB register copy-back forms) always execute, and the
	// undocumented Y/X flag bits are always computed, whatever its value.
	Undocumented bool

	intr          interruptFabric
	intProtection bool // sole consumer: Step

	debugger    *Debugger
	waitStep    StepHook
	waitIntStep StepHook

	busStatus byte

	pendingModel Model

	// storeByte indirects every memory write through the debugger's
	// data-breakpoint hook when one is attached, exactly as the
	// teacher's single-function-pointer trick avoids a branch on every
	// store when no debugger is present.
	storeByte func(c *CPU, addr uint16, v byte)
}

// NewCPU creates a CPU bound to the given memory and port bus, starting
// in the requested model with all registers at their zero value except
// SP, which starts at $FFFF (call PowerOn immediately after to emulate
// cold power-on noise instead).
func NewCPU(model Model, mem Memory, port Ports) *CPU {
	if port == nil {
		port = NewPortBus()
	}
	c := &CPU{
		Model: model,
		Mem:   mem,
		Port:  port,
	}
	c.intr.reset()
	c.Reg.Init()
	c.storeByte = (*CPU).storeByteNormal
	return c
}

// AttachDebugger attaches a debugger that receives breakpoint
// notifications whenever PC reaches a breakpoint address or a byte is
// stored to a data-breakpoint address.
func (c *CPU) AttachDebugger(d *Debugger) {
	c.debugger = d
	c.storeByte = (*CPU).storeByteDebugger
}

// DetachDebugger removes the current debugger.
func (c *CPU) DetachDebugger() {
	c.debugger = nil
	c.storeByte = (*CPU).storeByteNormal
}

func (c *CPU) storeByteNormal(addr uint16, v byte) {
	c.Mem.Write(addr, v)
}

func (c *CPU) storeByteDebugger(addr uint16, v byte) {
	c.debugger.onDataStore(c, addr, v)
	c.Mem.Write(addr, v)
}

// writeMem routes every decoder-initiated memory store through the
// debugger hook (see storeByte above).
func (c *CPU) writeMem(addr uint16, v byte) {
	c.setStatus(StatusMEMW)
	c.storeByte(c, addr, v)
}

func (c *CPU) readMem(addr uint16) byte {
	c.setStatus(StatusMEMR)
	return c.Mem.Read(addr)
}

// PowerOn randomizes every register except PC, and clears interrupt
// state, mimicking the noise a real CPU wakes up with. PC is set to
// zero. Use Reset for a warm reset instead.
func (c *CPU) PowerOn() {
	var buf [28]byte
	rand.Read(buf[:])
	c.Reg = Registers{
		A: buf[0], F: buf[1], B: buf[2], C: buf[3], D: buf[4], E: buf[5], H: buf[6], L: buf[7],
		A2: buf[8], F2: buf[9], B2: buf[10], C2: buf[11], D2: buf[12], E2: buf[13], H2: buf[14], L2: buf[15],
		IX: uint16(buf[16])<<8 | uint16(buf[17]),
		IY: uint16(buf[18])<<8 | uint16(buf[19]),
		SP: uint16(buf[20])<<8 | uint16(buf[21]),
		I:  buf[22],
		r:  buf[23] & 0x7f,
		r7: buf[24] & 0x80,
		WZ: uint16(buf[25])<<8 | uint16(buf[26]),
	}
	c.Reg.PC = 0
	c.intProtection = false
	c.intr.reset()
	c.Err = nil
}

// Reset performs a warm reset: IFF, pending interrupts, int_protection
// and int_data are cleared and PC is forced to zero. On the Z80 model,
// I, R and IM are also reset to zero. Shared 8-bit/16-bit registers
// otherwise retain their values.
func (c *CPU) Reset() {
	c.Reg.IFF1 = false
	c.Reg.IFF2 = false
	c.Reg.PC = 0
	c.intProtection = false
	c.intr.intPending.Store(false)
	c.intr.intData.Store(-1)
	c.intr.nmiPending.Store(false)
	if c.Model == Z80 {
		c.Reg.I = 0
		c.Reg.SetR(0)
		c.Reg.IM = 0
	}
	c.Err = nil
}

// RequestModelSwitch asks the scheduler to switch models at the next
// instruction boundary. It sets Err to the ErrModelSwitch pseudo-error;
// a scheduler must call ApplyModelSwitch upon observing it, then clear
// Err and continue the run loop.
func (c *CPU) RequestModelSwitch(model Model) {
	c.pendingModel = model
	c.Err = newError(ErrModelSwitch, c.Reg.PC, "model switch requested")
}

// ApplyModelSwitch performs the actual model switch requested by
// RequestModelSwitch. Shared registers persist; switching to I8080
// forces N=1, Y=0, X=0 in F (I8080 has no Y/X and always sets N after
// arithmetic).
func (c *CPU) ApplyModelSwitch() {
	c.Model = c.pendingModel
	if c.Model == I8080 {
		c.Reg.F = (c.Reg.F | FlagN) &^ (FlagY | FlagX)
	}
	c.Err = nil
}

// Step executes exactly one instruction (or one interrupt/NMI delivery,
// or one DMA hand-off cycle, all of which count as "one step" for
// scheduling purposes) and updates Cycles accordingly. If Err is
// already set, Step does nothing; callers must Reset or resolve a
// ModelSwitch first.
func (c *CPU) Step() {
	if c.Err != nil {
		return
	}

	c.Cycles += c.serviceBusRequest()
	if c.Err != nil {
		return
	}

	protected := c.intProtection
	c.intProtection = false

	switch c.Model {
	case Z80:
		if !protected && c.serviceZ80Interrupts() {
			return
		}
		c.stepZ80()
	case I8080:
		if !protected && c.serviceI8080Interrupt() {
			return
		}
		c.stepI8080()
	}

	if c.debugger != nil {
		c.debugger.onUpdatePC(c, c.Reg.PC)
	}
}
