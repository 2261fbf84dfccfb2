// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// execED implements the ED-prefixed plane: the extended 16-bit
// arithmetic/IO/refresh-register opcodes and the block transfer/search/
// IO instruction families. Every block instruction executes exactly one
// iteration per call and, for the *IR/*DR repeating forms, backs PC up
// by 2 so the instruction is refetched on the next Step while its
// termination condition still holds — the mechanism that lets an
// interrupt land between iterations instead of only between whole block
// moves.
func (c *CPU) execED(op byte) uint64 {
	if op >= 0xa0 && op <= 0xbb {
		if states, ok := c.execEDBlock(op); ok {
			return states
		}
		c.Err = newError(ErrOpTrap2, c.Reg.PC-2, "unimplemented ED-prefixed opcode")
		return 8
	}

	// Only 0x40-0x7f is a structured plane (IN/OUT/ADC-SBC HL/LD
	// (nn),rp/NEG/RETN-RETI/IM/the row-7 miscellaneous opcodes); every
	// other ED byte (0x00-0x3f, 0x80-0x9f, 0xbc-0xff) has no defined
	// meaning on real hardware.
	if op < 0x40 || op > 0x7f {
		c.Err = newError(ErrOpTrap2, c.Reg.PC-2, "unimplemented ED-prefixed opcode")
		return 8
	}

	switch op & 7 {
	case 0: // IN r,(C)
		r := (op >> 3) & 7
		c.setStatus(StatusINP)
		c.Reg.WZ = c.Reg.BC() + 1
		v := c.Port.InBusy(c.Reg.C)
		if r != 6 {
			c.setReg8(r, v)
		}
		c.Reg.F = (c.Reg.F & FlagC) | szyxp[v]
		return 8
	case 1: // OUT (C),r
		r := (op >> 3) & 7
		var v byte
		if r == 6 {
			v = 0
		} else {
			v = c.getReg8(r)
		}
		c.setStatus(StatusOUT)
		c.Reg.WZ = c.Reg.BC() + 1
		c.Port.Out(c.Reg.C, v)
		return 8
	case 2: // SBC/ADC HL,rp
		rp := (op >> 4) & 3
		c.Reg.WZ = c.Reg.HL() + 1
		if (op>>3)&1 == 0 {
			res, f := sub16c(c.Reg.HL(), c.getPairBC_DE_HL_SP(rp), c.Reg.flag(FlagC))
			c.Reg.SetHL(res)
			c.Reg.F = f
		} else {
			res, f := add16c(c.Reg.HL(), c.getPairBC_DE_HL_SP(rp), c.Reg.flag(FlagC))
			c.Reg.SetHL(res)
			c.Reg.F = f
		}
		return 15
	case 3: // LD (nn),rp / LD rp,(nn)
		rp := (op >> 4) & 3
		addr := c.fetchWord()
		c.Reg.WZ = addr + 1
		if (op>>3)&1 == 0 {
			WriteWord(c.Mem, addr, c.getPairBC_DE_HL_SP(rp))
		} else {
			c.setPairBC_DE_HL_SP(rp, ReadWord(c.Mem, addr))
		}
		return 20
	case 4: // NEG
		res, f := sub8(0, c.Reg.A, false)
		c.Reg.A, c.Reg.F = res, f
		return 8
	case 5: // RETN / RETI
		if (op>>3)&7 != 1 { // RETI (row 1) leaves IFF1 alone; RETN restores it
			c.Reg.IFF1 = c.Reg.IFF2
		}
		c.jumpAbs(c.pop())
		return 14
	case 6: // IM 0/1/2
		switch (op >> 3) & 7 {
		case 2, 6:
			c.Reg.IM = 1
		case 3, 7:
			c.Reg.IM = 2
		default:
			c.Reg.IM = 0
		}
		return 8
	case 7:
		return c.execEDMisc(op)
	}
	return 8
}

func (c *CPU) execEDMisc(op byte) uint64 {
	switch op {
	case 0x47: // LD I,A
		c.Reg.I = c.Reg.A
		return 9
	case 0x4f: // LD R,A
		c.Reg.SetR(c.Reg.A)
		return 9
	case 0x57: // LD A,I
		c.Reg.A = c.Reg.I
		c.Reg.F = (c.Reg.F & FlagC) | szyx[c.Reg.A]
		if c.Reg.IFF2 {
			c.Reg.F |= FlagPV
		}
		return 9
	case 0x5f: // LD A,R
		c.Reg.A = c.Reg.R()
		c.Reg.F = (c.Reg.F & FlagC) | szyx[c.Reg.A]
		if c.Reg.IFF2 {
			c.Reg.F |= FlagPV
		}
		return 9
	case 0x67: // RRD
		hl := c.readMem(c.Reg.HL())
		res := (c.Reg.A << 4) | (hl >> 4)
		newA := (c.Reg.A &^ 0xf) | (hl & 0xf)
		c.writeMem(c.Reg.HL(), res)
		c.Reg.A = newA
		c.Reg.WZ = c.Reg.HL() + 1
		c.Reg.F = (c.Reg.F & FlagC) | szyxp[c.Reg.A]
		return 18
	case 0x6f: // RLD
		hl := c.readMem(c.Reg.HL())
		res := (hl << 4) | (c.Reg.A & 0xf)
		newA := (c.Reg.A &^ 0xf) | (hl >> 4)
		c.writeMem(c.Reg.HL(), res)
		c.Reg.A = newA
		c.Reg.WZ = c.Reg.HL() + 1
		c.Reg.F = (c.Reg.F & FlagC) | szyxp[c.Reg.A]
		return 18
	default: // no defined meaning for this ED opcode
		c.Err = newError(ErrOpTrap2, c.Reg.PC-2, "unimplemented ED-prefixed opcode")
		return 8
	}
}

// execEDBlock dispatches the 16 defined block-instruction opcodes,
// returning ok=false for the undefined slots inside 0xa0-0xbb (which
// execED then traps with ErrOpTrap2).
func (c *CPU) execEDBlock(op byte) (uint64, bool) {
	switch op {
	case 0xa0:
		return c.ldi(), true
	case 0xa8:
		return c.ldd(), true
	case 0xb0:
		states := c.ldi()
		if c.Reg.BC() != 0 {
			c.Reg.PC -= 2
			c.Reg.WZ = c.Reg.PC + 1
			return states + 5, true
		}
		return states, true
	case 0xb8:
		states := c.ldd()
		if c.Reg.BC() != 0 {
			c.Reg.PC -= 2
			c.Reg.WZ = c.Reg.PC + 1
			return states + 5, true
		}
		return states, true

	case 0xa1:
		return c.cpi(), true
	case 0xa9:
		return c.cpd(), true
	case 0xb1:
		states := c.cpi()
		if c.Reg.BC() != 0 && !c.Reg.flag(FlagZ) {
			c.Reg.PC -= 2
			return states + 5, true
		}
		return states, true
	case 0xb9:
		states := c.cpd()
		if c.Reg.BC() != 0 && !c.Reg.flag(FlagZ) {
			c.Reg.PC -= 2
			return states + 5, true
		}
		return states, true

	case 0xa2:
		return c.ini(), true
	case 0xaa:
		return c.ind(), true
	case 0xb2:
		states := c.ini()
		if c.Reg.B != 0 {
			c.Reg.PC -= 2
			return states + 5, true
		}
		return states, true
	case 0xba:
		states := c.ind()
		if c.Reg.B != 0 {
			c.Reg.PC -= 2
			return states + 5, true
		}
		return states, true

	case 0xa3:
		return c.outi(), true
	case 0xab:
		return c.outd(), true
	case 0xb3:
		states := c.outi()
		if c.Reg.B != 0 {
			c.Reg.PC -= 2
			return states + 5, true
		}
		return states, true
	case 0xbb:
		states := c.outd()
		if c.Reg.B != 0 {
			c.Reg.PC -= 2
			return states + 5, true
		}
		return states, true
	}
	return 0, false
}

func (c *CPU) ldi() uint64 {
	v := c.readMem(c.Reg.HL())
	c.writeMem(c.Reg.DE(), v)
	c.Reg.SetHL(c.Reg.HL() + 1)
	c.Reg.SetDE(c.Reg.DE() + 1)
	c.Reg.SetBC(c.Reg.BC() - 1)
	n := v + c.Reg.A
	f := c.Reg.F &^ (FlagN | FlagH | FlagPV | FlagY | FlagX)
	if c.Reg.BC() != 0 {
		f |= FlagPV
	}
	f |= n & FlagX
	if n&0x02 != 0 {
		f |= FlagY
	}
	c.Reg.F = f
	return 16
}

func (c *CPU) ldd() uint64 {
	v := c.readMem(c.Reg.HL())
	c.writeMem(c.Reg.DE(), v)
	c.Reg.SetHL(c.Reg.HL() - 1)
	c.Reg.SetDE(c.Reg.DE() - 1)
	c.Reg.SetBC(c.Reg.BC() - 1)
	n := v + c.Reg.A
	f := c.Reg.F &^ (FlagN | FlagH | FlagPV | FlagY | FlagX)
	if c.Reg.BC() != 0 {
		f |= FlagPV
	}
	f |= n & FlagX
	if n&0x02 != 0 {
		f |= FlagY
	}
	c.Reg.F = f
	return 16
}

func (c *CPU) cpi() uint64 {
	v := c.readMem(c.Reg.HL())
	res := c.Reg.A - v
	halfCarry := (c.Reg.A & 0xf) < (v & 0xf)
	c.Reg.SetHL(c.Reg.HL() + 1)
	c.Reg.SetBC(c.Reg.BC() - 1)
	c.Reg.WZ++
	f := (c.Reg.F & FlagC) | FlagN | (szp[res] &^ FlagPV)
	if halfCarry {
		f |= FlagH
	}
	if c.Reg.BC() != 0 {
		f |= FlagPV
	}
	n := res
	if halfCarry {
		n--
	}
	f |= n & FlagX
	if n&0x02 != 0 {
		f |= FlagY
	}
	c.Reg.F = f
	return 16
}

func (c *CPU) cpd() uint64 {
	v := c.readMem(c.Reg.HL())
	res := c.Reg.A - v
	halfCarry := (c.Reg.A & 0xf) < (v & 0xf)
	c.Reg.SetHL(c.Reg.HL() - 1)
	c.Reg.SetBC(c.Reg.BC() - 1)
	c.Reg.WZ--
	f := (c.Reg.F & FlagC) | FlagN | (szp[res] &^ FlagPV)
	if halfCarry {
		f |= FlagH
	}
	if c.Reg.BC() != 0 {
		f |= FlagPV
	}
	n := res
	if halfCarry {
		n--
	}
	f |= n & FlagX
	if n&0x02 != 0 {
		f |= FlagY
	}
	c.Reg.F = f
	return 16
}

func (c *CPU) ini() uint64 {
	c.setStatus(StatusINP)
	c.Reg.WZ = c.Reg.BC() + 1
	v := c.Port.In(c.Reg.C)
	c.writeMem(c.Reg.HL(), v)
	c.Reg.B--
	c.Reg.SetHL(c.Reg.HL() + 1)
	f := szp[c.Reg.B] &^ FlagPV
	if v&0x80 != 0 {
		f |= FlagN
	}
	sum := uint16(v) + uint16(c.Reg.C) + 1
	if sum > 0xff {
		f |= FlagH | FlagC
	}
	if evenParity(byte(sum&7)^c.Reg.B) {
		f |= FlagPV
	}
	c.Reg.F = f
	return 16
}

func (c *CPU) ind() uint64 {
	c.setStatus(StatusINP)
	c.Reg.WZ = c.Reg.BC() - 1
	v := c.Port.In(c.Reg.C)
	c.writeMem(c.Reg.HL(), v)
	c.Reg.B--
	c.Reg.SetHL(c.Reg.HL() - 1)
	f := szp[c.Reg.B] &^ FlagPV
	f |= FlagN
	sum := uint16(v) + uint16(c.Reg.C) - 1
	if sum > 0xff {
		f |= FlagH | FlagC
	}
	if evenParity(byte(sum&7) ^ c.Reg.B) {
		f |= FlagPV
	}
	c.Reg.F = f
	return 16
}

func (c *CPU) outi() uint64 {
	v := c.readMem(c.Reg.HL())
	c.Reg.B--
	c.setStatus(StatusOUT)
	c.Port.Out(c.Reg.C, v)
	c.Reg.SetHL(c.Reg.HL() + 1)
	c.Reg.WZ = c.Reg.BC() + 1
	f := szp[c.Reg.B] &^ FlagPV
	f |= FlagN
	sum := uint16(v) + uint16(c.Reg.L)
	if sum > 0xff {
		f |= FlagH | FlagC
	}
	if evenParity(byte(sum&7) ^ c.Reg.B) {
		f |= FlagPV
	}
	c.Reg.F = f
	return 16
}

func (c *CPU) outd() uint64 {
	v := c.readMem(c.Reg.HL())
	c.Reg.B--
	c.setStatus(StatusOUT)
	c.Port.Out(c.Reg.C, v)
	c.Reg.SetHL(c.Reg.HL() - 1)
	c.Reg.WZ = c.Reg.BC() - 1
	f := szp[c.Reg.B] &^ FlagPV
	f |= FlagN
	sum := uint16(v) + uint16(c.Reg.L)
	if sum > 0xff {
		f |= FlagH | FlagC
	}
	if evenParity(byte(sum&7) ^ c.Reg.B) {
		f |= FlagPV
	}
	c.Reg.F = f
	return 16
}
