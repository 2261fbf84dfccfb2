// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// push writes a 16-bit value to the stack, high byte first, and
// decrements SP twice. Shared by CALL, RST, PUSH and interrupt/NMI
// entry on both models.
func (c *CPU) push(v uint16) {
	c.Reg.SP--
	c.writeMem(c.Reg.SP, byte(v>>8))
	c.Reg.SP--
	c.writeMem(c.Reg.SP, byte(v))
}

// pop reads a 16-bit value off the stack, low byte first, and
// increments SP twice.
func (c *CPU) pop() uint16 {
	lo := c.readMem(c.Reg.SP)
	c.Reg.SP++
	hi := c.readMem(c.Reg.SP)
	c.Reg.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// fetchOpcode reads the byte at PC, advances PC, increments the
// refresh counter and marks the bus status as an M1 cycle. It is used
// for the opcode byte itself and for every accepted prefix byte (CB,
// ED, DD, FD), which is why R increments once per prefix byte as well
// as once for the final opcode.
func (c *CPU) fetchOpcode() byte {
	c.setStatus(StatusM1 | StatusMEMR)
	b := c.Mem.Fetch(c.Reg.PC)
	c.Reg.PC++
	c.Reg.IncR()
	if c.waitStep != nil {
		c.waitStep(c, c.busStatus)
	}
	return b
}

// fetchByte reads the byte at PC and advances PC, without the M1/R
// side effects of fetchOpcode. Used for immediate operands and
// displacement bytes.
func (c *CPU) fetchByte() byte {
	b := c.readMem(c.Reg.PC)
	c.Reg.PC++
	return b
}

// fetchWord reads a little-endian 16-bit immediate at PC and advances
// PC by two.
func (c *CPU) fetchWord() uint16 {
	lo := c.fetchByte()
	hi := c.fetchByte()
	return uint16(hi)<<8 | uint16(lo)
}
