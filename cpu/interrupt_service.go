// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// serviceZ80Interrupts implements gate steps (b) and (c) for the Z80
// model: NMI takes priority over a maskable interrupt, and a maskable
// interrupt is only deliverable when IFF1 is set. It returns true if it
// consumed this step (an interrupt was entered), in which case the
// caller must not also fetch and execute an instruction.
func (c *CPU) serviceZ80Interrupts() bool {
	if c.intr.nmiPending.Load() {
		c.intr.nmiPending.Store(false)
		c.Reg.IFF1 = false
		c.setStatus(StatusM1)
		if c.waitIntStep != nil {
			c.waitIntStep(c, c.busStatus)
		}
		c.Reg.IncR()
		c.push(c.Reg.PC)
		c.Reg.PC = 0x0066
		c.Cycles += 11
		return true
	}

	if !c.intr.intPending.Load() || !c.Reg.IFF1 {
		return false
	}
	data := c.intr.intData.Load()
	c.intr.intPending.Store(false)
	c.Reg.IFF1 = false
	c.Reg.IFF2 = false
	c.setStatus(StatusINTA)
	if c.waitIntStep != nil {
		c.waitIntStep(c, c.busStatus)
	}
	c.Reg.IncR()

	switch c.Reg.IM {
	case 0:
		if data < 0 {
			c.Err = newError(ErrIntError, c.Reg.PC, "IM 0 interrupt acknowledged with no data byte")
			return true
		}
		c.Cycles += 2 + c.execOpcodeZ80(byte(data))
	case 1:
		c.push(c.Reg.PC)
		c.Reg.PC = 0x0038
		c.Cycles += 13
	case 2:
		if data < 0 {
			c.Err = newError(ErrIntError, c.Reg.PC, "IM 2 interrupt acknowledged with no data byte")
			return true
		}
		vec := uint16(c.Reg.I)<<8 | uint16(byte(data)&0xfe)
		lo := c.readMem(vec)
		hi := c.readMem(vec + 1)
		c.push(c.Reg.PC)
		c.Reg.PC = uint16(hi)<<8 | uint16(lo)
		c.Cycles += 19
	}
	return true
}

// serviceI8080Interrupt implements the I8080's single interrupt input:
// a device places one byte on the data bus (almost always a one-byte
// RST) and the CPU executes it directly in place of a normal fetch.
// Multi-byte injected opcodes are not supported; a device that needs
// one should use RST and let software vector from there.
func (c *CPU) serviceI8080Interrupt() bool {
	if !c.intr.intPending.Load() || !c.Reg.IFF1 {
		return false
	}
	data := c.intr.intData.Load()
	c.intr.intPending.Store(false)
	c.Reg.IFF1 = false
	c.setStatus(StatusINTA)
	if c.waitIntStep != nil {
		c.waitIntStep(c, c.busStatus)
	}
	c.Reg.IncR()
	if data < 0 {
		c.Err = newError(ErrIntError, c.Reg.PC, "interrupt acknowledged with no data byte latched")
		return true
	}
	c.Cycles += c.execOpcode8080(byte(data))
	return true
}
