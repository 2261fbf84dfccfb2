// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// execCB implements the CB-prefixed plane: 8 rotate/shift operations
// over 0x00-0x3f, then BIT/RES/SET over the remaining three quarters,
// each addressable against any of the 8 register-field targets
// (0-5,7=register, 6=(HL)). Returns the T-states for everything after
// the CB byte itself (already charged by the caller).
func (c *CPU) execCB(op byte) uint64 {
	idx := op & 7
	n := uint((op >> 3) & 7)
	v := c.getReg8(idx)

	if op < 0x40 {
		res, f := c.shiftOrRotate((op>>3)&7, v)
		c.setReg8(idx, res)
		c.Reg.F = f
		if idx == 6 {
			return 11
		}
		return 4
	}

	switch {
	case op < 0x80: // BIT n,r
		ioBits := v
		if idx == 6 {
			ioBits = byte(c.Reg.WZ >> 8)
		}
		c.Reg.F = bit(v, n, c.Reg.F, ioBits)
		if idx == 6 {
			return 8
		}
		return 4
	case op < 0xc0: // RES n,r
		c.setReg8(idx, res(v, n))
		if idx == 6 {
			return 11
		}
		return 4
	default: // SET n,r
		c.setReg8(idx, set(v, n))
		if idx == 6 {
			return 11
		}
		return 4
	}
}

// shiftOrRotate applies one of the 8 CB rotate/shift operations to v
// and returns the new value and flags. SLL (op 6) is undocumented; it
// is executed unconditionally, since no decoder checks CPU.Undocumented.
func (c *CPU) shiftOrRotate(op byte, v byte) (byte, byte) {
	switch op & 7 {
	case 0:
		return rlc(v)
	case 1:
		return rrc(v)
	case 2:
		return rl(v, c.Reg.flag(FlagC))
	case 3:
		return rr(v, c.Reg.flag(FlagC))
	case 4:
		return sla(v)
	case 5:
		return sra(v)
	case 6:
		return sll(v)
	default:
		return srl(v)
	}
}

// execIndexedCB implements the DDCB/FDCB plane: displacement byte,
// then a CB-style opcode whose register field is ignored for
// everything except the "undocumented" copy-back forms (which this
// core does not special-case further; the (IX+d)/(IY+d) operand is
// always the true target, matching documented behavior for BIT and the
// common case for RES/SET/rotate). Returns the T-states beyond the 15
// already charged by execOpcodeZ80 and execIndexed for the prefix, CB
// and displacement bytes.
func (c *CPU) execIndexedCB(base uint16, disp byte, op byte) uint64 {
	addr := base + uint16(int8(disp))
	c.Reg.WZ = addr
	v := c.readMem(addr)
	n := uint((op >> 3) & 7)

	if op < 0x40 {
		res, f := c.shiftOrRotate((op>>3)&7, v)
		c.writeMem(addr, res)
		c.Reg.F = f
		if op&7 != 6 {
			c.setReg8(op&7, res)
		}
		return 8
	}

	switch {
	case op < 0x80: // BIT n,(IX+d)/(IY+d)
		c.Reg.F = bit(v, n, c.Reg.F, byte(c.Reg.WZ>>8))
		return 5
	case op < 0xc0: // RES n,(IX+d)/(IY+d)
		r := res(v, n)
		c.writeMem(addr, r)
		if op&7 != 6 {
			c.setReg8(op&7, r)
		}
		return 8
	default: // SET n,(IX+d)/(IY+d)
		r := set(v, n)
		c.writeMem(addr, r)
		if op&7 != 6 {
			c.setReg8(op&7, r)
		}
		return 8
	}
}
