// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// This file implements the Z80's unprefixed opcode map. The register
// and register-pair field encodings are identical to the I8080's (see
// i8080.go), which is why LD r,r' and the ALU-A,r block reuse the same
// getReg8/setReg8/getPairBC_DE_HL_SP helpers; only the flag math (Y/X
// bits, WZ tracking) and the additional opcodes the I8080 never had
// (EX, EXX, DJNZ, JR, the CB/ED/DD/FD prefixes) are new here.

// getPairRP2 reads a register pair using the alternate 2-bit encoding
// used by PUSH/POP, where 11 selects AF instead of SP.
func (c *CPU) getPairRP2(idx byte) uint16 {
	if idx&3 == 3 {
		return c.Reg.AF()
	}
	return c.getPairBC_DE_HL_SP(idx)
}

func (c *CPU) setPairRP2(idx byte, v uint16) {
	if idx&3 == 3 {
		c.Reg.SetAF(v)
		return
	}
	c.setPairBC_DE_HL_SP(idx, v)
}

// stepZ80 fetches and executes exactly one Z80 instruction, including
// following any CB/ED/DD/FD prefix chain.
func (c *CPU) stepZ80() {
	op := c.fetchOpcode()
	c.Cycles += c.execOpcodeZ80(op)
}

// jumpRel adds a signed 8-bit displacement to PC and refreshes WZ, the
// behavior shared by JR and the taken half of JR cc/DJNZ.
func (c *CPU) jumpRel(disp byte) {
	c.Reg.PC += uint16(int8(disp))
	c.Reg.WZ = c.Reg.PC
}

func (c *CPU) jumpAbs(addr uint16) {
	c.Reg.PC = addr
	c.Reg.WZ = addr
}

func (c *CPU) execOpcodeZ80(op byte) uint64 {
	switch op {
	case 0xcb:
		return 4 + c.execCB(c.fetchOpcode())
	case 0xed:
		return 4 + c.execED(c.fetchOpcode())
	case 0xdd:
		return 4 + c.execIndexed(&c.Reg.IX, c.fetchOpcode())
	case 0xfd:
		return 4 + c.execIndexed(&c.Reg.IY, c.fetchOpcode())
	}

	if op >= 0x40 && op <= 0x7f && op != 0x76 {
		v := c.getReg8(op & 7)
		c.setReg8((op>>3)&7, v)
		if op&7 == 6 || (op>>3)&7 == 6 {
			return 7
		}
		return 4
	}

	if op >= 0x80 && op <= 0xbf {
		src := c.getReg8(op & 7)
		states := uint64(4)
		if op&7 == 6 {
			states = 7
		}
		c.aluA((op>>3)&7, src)
		return states
	}

	switch op {
	case 0x00: // NOP
		return 4
	case 0x76: // HALT
		c.setStatus(StatusHLTA)
		if !c.Reg.IFF1 {
			c.Err = newError(ErrOpHalt, c.Reg.PC-1, "HALT with interrupts disabled")
			return 4
		}
		c.Reg.PC--
		return 4

	case 0x01, 0x11, 0x21, 0x31: // LD rp,nnnn
		c.setPairBC_DE_HL_SP((op>>4)&3, c.fetchWord())
		return 10
	case 0x02: // LD (BC),A
		c.Reg.WZ = c.Reg.BC()
		c.writeMem(c.Reg.BC(), c.Reg.A)
		c.Reg.WZ = (c.Reg.WZ + 1) & 0xff
		c.Reg.WZ |= uint16(c.Reg.A) << 8
		return 7
	case 0x12: // LD (DE),A
		c.writeMem(c.Reg.DE(), c.Reg.A)
		c.Reg.WZ = ((c.Reg.DE() + 1) & 0xff) | uint16(c.Reg.A)<<8
		return 7
	case 0x0a: // LD A,(BC)
		c.Reg.A = c.readMem(c.Reg.BC())
		c.Reg.WZ = c.Reg.BC() + 1
		return 7
	case 0x1a: // LD A,(DE)
		c.Reg.A = c.readMem(c.Reg.DE())
		c.Reg.WZ = c.Reg.DE() + 1
		return 7
	case 0x22: // LD (nnnn),HL
		addr := c.fetchWord()
		WriteWord(c.Mem, addr, c.Reg.HL())
		c.Reg.WZ = addr + 1
		return 16
	case 0x2a: // LD HL,(nnnn)
		addr := c.fetchWord()
		c.Reg.SetHL(ReadWord(c.Mem, addr))
		c.Reg.WZ = addr + 1
		return 16
	case 0x32: // LD (nnnn),A
		addr := c.fetchWord()
		c.writeMem(addr, c.Reg.A)
		c.Reg.WZ = ((addr + 1) & 0xff) | uint16(c.Reg.A)<<8
		return 13
	case 0x3a: // LD A,(nnnn)
		addr := c.fetchWord()
		c.Reg.A = c.readMem(addr)
		c.Reg.WZ = addr + 1
		return 13

	case 0x03, 0x13, 0x23, 0x33: // INC rp
		idx := (op >> 4) & 3
		c.setPairBC_DE_HL_SP(idx, c.getPairBC_DE_HL_SP(idx)+1)
		return 6
	case 0x0b, 0x1b, 0x2b, 0x3b: // DEC rp
		idx := (op >> 4) & 3
		c.setPairBC_DE_HL_SP(idx, c.getPairBC_DE_HL_SP(idx)-1)
		return 6
	case 0x09, 0x19, 0x29, 0x39: // ADD HL,rp
		idx := (op >> 4) & 3
		c.Reg.WZ = c.Reg.HL() + 1
		res, f := add16(c.Reg.HL(), c.getPairBC_DE_HL_SP(idx), c.Reg.F)
		c.Reg.SetHL(res)
		c.Reg.F = f
		return 11

	case 0x04, 0x0c, 0x14, 0x1c, 0x24, 0x2c, 0x34, 0x3c: // INC r
		idx := (op >> 3) & 7
		v := c.getReg8(idx)
		res, f, _ := inc8(v)
		c.setReg8(idx, res)
		c.Reg.F = (c.Reg.F & FlagC) | (f &^ FlagC)
		if idx == 6 {
			return 11
		}
		return 4
	case 0x05, 0x0d, 0x15, 0x1d, 0x25, 0x2d, 0x35, 0x3d: // DEC r
		idx := (op >> 3) & 7
		v := c.getReg8(idx)
		res, f, _ := dec8(v)
		c.setReg8(idx, res)
		c.Reg.F = (c.Reg.F & FlagC) | (f &^ FlagC)
		if idx == 6 {
			return 11
		}
		return 4
	case 0x06, 0x0e, 0x16, 0x1e, 0x26, 0x2e, 0x36, 0x3e: // LD r,n
		idx := (op >> 3) & 7
		v := c.fetchByte()
		c.setReg8(idx, v)
		if idx == 6 {
			return 10
		}
		return 7

	case 0x07: // RLCA
		res, f := rlc(c.Reg.A)
		c.Reg.A = res
		c.Reg.F = (c.Reg.F &^ (FlagH | FlagN | FlagC | FlagY | FlagX)) | (f & FlagC) | (res & (FlagY | FlagX))
		return 4
	case 0x0f: // RRCA
		res, f := rrc(c.Reg.A)
		c.Reg.A = res
		c.Reg.F = (c.Reg.F &^ (FlagH | FlagN | FlagC | FlagY | FlagX)) | (f & FlagC) | (res & (FlagY | FlagX))
		return 4
	case 0x17: // RLA
		res, f := rl(c.Reg.A, c.Reg.flag(FlagC))
		c.Reg.A = res
		c.Reg.F = (c.Reg.F &^ (FlagH | FlagN | FlagC | FlagY | FlagX)) | (f & FlagC) | (res & (FlagY | FlagX))
		return 4
	case 0x1f: // RRA
		res, f := rr(c.Reg.A, c.Reg.flag(FlagC))
		c.Reg.A = res
		c.Reg.F = (c.Reg.F &^ (FlagH | FlagN | FlagC | FlagY | FlagX)) | (f & FlagC) | (res & (FlagY | FlagX))
		return 4
	case 0x27: // DAA
		res, f := daa(c.Reg.A, c.Reg.F)
		c.Reg.A = res
		c.Reg.F = f
		return 4
	case 0x2f: // CPL
		c.Reg.A = ^c.Reg.A
		c.Reg.F = (c.Reg.F & (FlagS | FlagZ | FlagPV | FlagC)) | FlagH | FlagN | (c.Reg.A & (FlagY | FlagX))
		return 4
	case 0x37: // SCF
		c.Reg.F = (c.Reg.F & (FlagS | FlagZ | FlagPV)) | FlagC | (c.Reg.A & (FlagY | FlagX))
		return 4
	case 0x3f: // CCF
		wasC := c.Reg.flag(FlagC)
		f := (c.Reg.F & (FlagS | FlagZ | FlagPV)) | (c.Reg.A & (FlagY | FlagX))
		if !wasC {
			f |= FlagC
		} else {
			f |= FlagH
		}
		c.Reg.F = f
		return 4

	case 0x08: // EX AF,AF'
		c.Reg.ExAFAF()
		return 4
	case 0x10: // DJNZ e
		disp := c.fetchByte()
		c.Reg.B--
		if c.Reg.B != 0 {
			c.jumpRel(disp)
			return 13
		}
		return 8
	case 0x18: // JR e
		c.jumpRel(c.fetchByte())
		return 12
	case 0x20, 0x28, 0x30, 0x38: // JR cc,e
		disp := c.fetchByte()
		if c.conditionZ80((op >> 3) & 3) {
			c.jumpRel(disp)
			return 12
		}
		return 7
	case 0xd9: // EXX
		c.Reg.EXX()
		return 4
	case 0xe3: // EX (SP),HL
		lo := c.readMem(c.Reg.SP)
		hi := c.readMem(c.Reg.SP + 1)
		c.writeMem(c.Reg.SP, c.Reg.L)
		c.writeMem(c.Reg.SP+1, c.Reg.H)
		c.Reg.L, c.Reg.H = lo, hi
		c.Reg.WZ = c.Reg.HL()
		return 19
	case 0xe9: // JP (HL)
		c.Reg.PC = c.Reg.HL()
		return 4
	case 0xeb: // EX DE,HL
		c.Reg.D, c.Reg.H = c.Reg.H, c.Reg.D
		c.Reg.E, c.Reg.L = c.Reg.L, c.Reg.E
		return 4
	case 0xf3: // DI
		c.Reg.IFF1, c.Reg.IFF2 = false, false
		return 4
	case 0xfb: // EI
		c.Reg.IFF1, c.Reg.IFF2 = true, true
		c.intProtection = true
		return 4
	case 0xf9: // LD SP,HL
		c.Reg.SP = c.Reg.HL()
		return 6

	case 0xc0, 0xc8, 0xd0, 0xd8, 0xe0, 0xe8, 0xf0, 0xf8: // RET cc
		if c.conditionZ80full((op >> 3) & 7) {
			c.jumpAbs(c.pop())
			return 11
		}
		return 5
	case 0xc9: // RET
		c.jumpAbs(c.pop())
		return 10
	case 0xc2, 0xca, 0xd2, 0xda, 0xe2, 0xea, 0xf2, 0xfa: // JP cc,nnnn
		addr := c.fetchWord()
		c.Reg.WZ = addr
		if c.conditionZ80full((op >> 3) & 7) {
			c.Reg.PC = addr
		}
		return 10
	case 0xc3: // JP nnnn
		c.jumpAbs(c.fetchWord())
		return 10
	case 0xc4, 0xcc, 0xd4, 0xdc, 0xe4, 0xec, 0xf4, 0xfc: // CALL cc,nnnn
		addr := c.fetchWord()
		c.Reg.WZ = addr
		if c.conditionZ80full((op >> 3) & 7) {
			c.push(c.Reg.PC)
			c.Reg.PC = addr
			return 17
		}
		return 10
	case 0xcd: // CALL nnnn
		addr := c.fetchWord()
		c.Reg.WZ = addr
		c.push(c.Reg.PC)
		c.Reg.PC = addr
		return 17
	case 0xc7, 0xcf, 0xd7, 0xdf, 0xe7, 0xef, 0xf7, 0xff: // RST n
		c.push(c.Reg.PC)
		c.jumpAbs(uint16(op & 0x38))
		return 11

	case 0xc1, 0xd1, 0xe1, 0xf1: // POP rp2
		c.setPairRP2((op>>4)&3, c.pop())
		return 10
	case 0xc5, 0xd5, 0xe5, 0xf5: // PUSH rp2
		c.push(c.getPairRP2((op >> 4) & 3))
		return 11

	case 0xc6: // ADD A,n
		c.aluA(0, c.fetchByte())
		return 7
	case 0xce: // ADC A,n
		c.aluA(1, c.fetchByte())
		return 7
	case 0xd6: // SUB n
		c.aluA(2, c.fetchByte())
		return 7
	case 0xde: // SBC A,n
		c.aluA(3, c.fetchByte())
		return 7
	case 0xe6: // AND n
		c.aluA(4, c.fetchByte())
		return 7
	case 0xee: // XOR n
		c.aluA(5, c.fetchByte())
		return 7
	case 0xf6: // OR n
		c.aluA(6, c.fetchByte())
		return 7
	case 0xfe: // CP n
		c.aluA(7, c.fetchByte())
		return 7

	case 0xd3: // OUT (n),A
		port := c.fetchByte()
		c.setStatus(StatusOUT)
		c.Port.Out(port, c.Reg.A)
		c.Reg.WZ = (uint16(c.Reg.A) << 8) | uint16(port+1)
		return 11
	case 0xdb: // IN A,(n)
		port := c.fetchByte()
		c.setStatus(StatusINP)
		c.Reg.WZ = (uint16(c.Reg.A) << 8) | uint16(port+1)
		c.Reg.A = c.Port.InBusy(port)
		return 11

	default:
		c.Err = newError(ErrOpTrap1, c.Reg.PC-1, "unimplemented Z80 opcode")
		return 4
	}
}

// aluA performs one of the 8 ALU-A operations (op selects ADD ADC SUB
// SBC AND XOR OR CP) against src, storing the result (except for CP)
// and flags in the accumulator.
func (c *CPU) aluA(op byte, src byte) {
	switch op & 7 {
	case 0:
		res, f := add8(c.Reg.A, src, false)
		c.Reg.A, c.Reg.F = res, f
	case 1:
		res, f := add8(c.Reg.A, src, c.Reg.flag(FlagC))
		c.Reg.A, c.Reg.F = res, f
	case 2:
		res, f := sub8(c.Reg.A, src, false)
		c.Reg.A, c.Reg.F = res, f
	case 3:
		res, f := sub8(c.Reg.A, src, c.Reg.flag(FlagC))
		c.Reg.A, c.Reg.F = res, f
	case 4:
		res, f := and8(c.Reg.A, src)
		c.Reg.A, c.Reg.F = res, f
	case 5:
		res, f := xor8(c.Reg.A, src)
		c.Reg.A, c.Reg.F = res, f
	case 6:
		res, f := or8(c.Reg.A, src)
		c.Reg.A, c.Reg.F = res, f
	case 7:
		_, f := cp8(c.Reg.A, src)
		c.Reg.F = f
	}
}

// conditionZ80 evaluates the 2-bit condition field used by JR
// cc,e/DJNZ: NZ Z NC C.
func (c *CPU) conditionZ80(cc byte) bool {
	switch cc & 3 {
	case 0:
		return !c.Reg.flag(FlagZ)
	case 1:
		return c.Reg.flag(FlagZ)
	case 2:
		return !c.Reg.flag(FlagC)
	default:
		return c.Reg.flag(FlagC)
	}
}

// conditionZ80full evaluates the full 3-bit condition field used by JP
// cc/CALL cc/RET cc: NZ Z NC C PO PE P M.
func (c *CPU) conditionZ80full(cc byte) bool {
	return c.condition8080(cc)
}
