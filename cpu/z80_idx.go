// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// execIndexed implements the DD/FD-prefixed plane, which redirects most
// HL-based addressing to IX/IY (with an 8-bit signed displacement for
// (HL)-style memory access) and additionally exposes the undocumented
// 8-bit IXh/IXl/IYh/IYl register halves. Every opcode that does not
// reference H, L or (HL) at all is unaffected by the prefix on real
// hardware (it just burns the prefix's extra time), so those fall
// through to the ordinary unprefixed decoder unchanged.
//
// Returns the T-states of everything from this opcode byte onward; the
// caller (execOpcodeZ80) has already charged the 4 states for the
// prefix byte itself.
func (c *CPU) execIndexed(ix *uint16, op byte) uint64 {
	if op == 0xcb {
		d := c.fetchByte()
		op2 := c.fetchByte()
		return 11 + c.execIndexedCB(*ix, d, op2)
	}

	switch op {
	case 0x21: // LD IX,nnnn
		*ix = c.fetchWord()
		return 10
	case 0x22: // LD (nnnn),IX
		addr := c.fetchWord()
		WriteWord(c.Mem, addr, *ix)
		c.Reg.WZ = addr + 1
		return 16
	case 0x2a: // LD IX,(nnnn)
		addr := c.fetchWord()
		*ix = ReadWord(c.Mem, addr)
		c.Reg.WZ = addr + 1
		return 16
	case 0x23: // INC IX
		*ix++
		return 6
	case 0x2b: // DEC IX
		*ix--
		return 6
	case 0x26: // LD IXh,n
		*ix = (*ix & 0x00ff) | uint16(c.fetchByte())<<8
		return 7
	case 0x2e: // LD IXl,n
		*ix = (*ix & 0xff00) | uint16(c.fetchByte())
		return 7
	case 0x24: // INC IXh
		res, f, _ := inc8(byte(*ix >> 8))
		*ix = (*ix & 0x00ff) | uint16(res)<<8
		c.Reg.F = (c.Reg.F & FlagC) | (f &^ FlagC)
		return 4
	case 0x25: // DEC IXh
		res, f, _ := dec8(byte(*ix >> 8))
		*ix = (*ix & 0x00ff) | uint16(res)<<8
		c.Reg.F = (c.Reg.F & FlagC) | (f &^ FlagC)
		return 4
	case 0x2c: // INC IXl
		res, f, _ := inc8(byte(*ix))
		*ix = (*ix & 0xff00) | uint16(res)
		c.Reg.F = (c.Reg.F & FlagC) | (f &^ FlagC)
		return 4
	case 0x2d: // DEC IXl
		res, f, _ := dec8(byte(*ix))
		*ix = (*ix & 0xff00) | uint16(res)
		c.Reg.F = (c.Reg.F & FlagC) | (f &^ FlagC)
		return 4

	case 0x09, 0x19, 0x29, 0x39: // ADD IX,rp (rp=2 means ADD IX,IX)
		rp := (op >> 4) & 3
		var operand uint16
		if rp == 2 {
			operand = *ix
		} else {
			operand = c.getPairBC_DE_HL_SP(rp)
		}
		c.Reg.WZ = *ix + 1
		res, f := add16(*ix, operand, c.Reg.F)
		*ix = res
		c.Reg.F = f
		return 11

	case 0x34: // INC (IX+d)
		addr := *ix + uint16(int8(c.fetchByte()))
		c.Reg.WZ = addr
		v := c.readMem(addr)
		res, f, _ := inc8(v)
		c.writeMem(addr, res)
		c.Reg.F = (c.Reg.F & FlagC) | (f &^ FlagC)
		return 19
	case 0x35: // DEC (IX+d)
		addr := *ix + uint16(int8(c.fetchByte()))
		c.Reg.WZ = addr
		v := c.readMem(addr)
		res, f, _ := dec8(v)
		c.writeMem(addr, res)
		c.Reg.F = (c.Reg.F & FlagC) | (f &^ FlagC)
		return 19
	case 0x36: // LD (IX+d),n
		d := c.fetchByte()
		n := c.fetchByte()
		addr := *ix + uint16(int8(d))
		c.Reg.WZ = addr
		c.writeMem(addr, n)
		return 15

	case 0xe1: // POP IX
		*ix = c.pop()
		return 10
	case 0xe5: // PUSH IX
		c.push(*ix)
		return 11
	case 0xe3: // EX (SP),IX
		lo := c.readMem(c.Reg.SP)
		hi := c.readMem(c.Reg.SP + 1)
		c.writeMem(c.Reg.SP, byte(*ix))
		c.writeMem(c.Reg.SP+1, byte(*ix>>8))
		*ix = uint16(hi)<<8 | uint16(lo)
		c.Reg.WZ = *ix
		return 19
	case 0xe9: // JP (IX)
		c.Reg.PC = *ix
		return 4
	case 0xf9: // LD SP,IX
		c.Reg.SP = *ix
		return 6
	}

	if op >= 0x40 && op <= 0x7f && op != 0x76 {
		dst := (op >> 3) & 7
		src := op & 7
		if dst == 6 || src == 6 {
			addr := *ix + uint16(int8(c.fetchByte()))
			c.Reg.WZ = addr
			if dst == 6 {
				c.writeMem(addr, c.getReg8(src))
			} else {
				c.setReg8(dst, c.readMem(addr))
			}
			return 15
		}
		c.setReg8IX(ix, dst, c.getReg8IX(ix, src))
		return 4
	}

	if op >= 0x80 && op <= 0xbf {
		src := op & 7
		if src == 6 {
			addr := *ix + uint16(int8(c.fetchByte()))
			c.Reg.WZ = addr
			c.aluA((op>>3)&7, c.readMem(addr))
			return 15
		}
		c.aluA((op>>3)&7, c.getReg8IX(ix, src))
		return 4
	}

	// Anything else does not reference H, L or (HL) and is unaffected
	// by the prefix beyond the extra time already charged for it.
	return c.execOpcodeZ80(op)
}

func (c *CPU) getReg8IX(ix *uint16, idx byte) byte {
	switch idx & 7 {
	case 4:
		return byte(*ix >> 8)
	case 5:
		return byte(*ix)
	default:
		return c.getReg8(idx)
	}
}

func (c *CPU) setReg8IX(ix *uint16, idx byte, v byte) {
	switch idx & 7 {
	case 4:
		*ix = (*ix & 0x00ff) | uint16(v)<<8
	case 5:
		*ix = (*ix & 0xff00) | uint16(v)
	default:
		c.setReg8(idx, v)
	}
}
