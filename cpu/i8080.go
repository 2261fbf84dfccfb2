// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// This file implements the documented I8080 instruction set. Register
// and register-pair encodings follow the processor's own bit patterns
// (000=B 001=C 010=D 011=E 100=H 101=L 110=(HL) 111=A for the 3-bit
// register field; 00=BC 01=DE 10=HL 11=SP for the 2-bit pair field,
// except where a pair field selects PSW instead of SP), which is why
// getReg8/setReg8/getPair/setPair take the raw field value rather than
// a symbolic name — that mirrors how the opcode itself is structured
// and keeps the dispatch below a straight decode instead of a table of
// synonyms.

// getReg8 reads an 8080 register selected by a 3-bit field, going
// through memory for the (HL) encoding.
func (c *CPU) getReg8(idx byte) byte {
	switch idx & 7 {
	case 0:
		return c.Reg.B
	case 1:
		return c.Reg.C
	case 2:
		return c.Reg.D
	case 3:
		return c.Reg.E
	case 4:
		return c.Reg.H
	case 5:
		return c.Reg.L
	case 6:
		c.Reg.WZ = c.Reg.HL()
		return c.readMem(c.Reg.HL())
	default:
		return c.Reg.A
	}
}

func (c *CPU) setReg8(idx byte, v byte) {
	switch idx & 7 {
	case 0:
		c.Reg.B = v
	case 1:
		c.Reg.C = v
	case 2:
		c.Reg.D = v
	case 3:
		c.Reg.E = v
	case 4:
		c.Reg.H = v
	case 5:
		c.Reg.L = v
	case 6:
		c.Reg.WZ = c.Reg.HL()
		c.writeMem(c.Reg.HL(), v)
	default:
		c.Reg.A = v
	}
}

func (c *CPU) getPairBC_DE_HL_SP(idx byte) uint16 {
	switch idx & 3 {
	case 0:
		return c.Reg.BC()
	case 1:
		return c.Reg.DE()
	case 2:
		return c.Reg.HL()
	default:
		return c.Reg.SP
	}
}

func (c *CPU) setPairBC_DE_HL_SP(idx byte, v uint16) {
	switch idx & 3 {
	case 0:
		c.Reg.SetBC(v)
	case 1:
		c.Reg.SetDE(v)
	case 2:
		c.Reg.SetHL(v)
	default:
		c.Reg.SP = v
	}
}

// stepI8080 fetches and executes exactly one I8080 instruction.
func (c *CPU) stepI8080() {
	op := c.fetchOpcode()
	c.Cycles += c.execOpcode8080(op)
}

// setF8080 stores f into F through maskModel, which fixes the bits the
// I8080 always hardwires (bit 1 high, bit 5 and bit 3 low).
func (c *CPU) setF8080(f byte) {
	c.Reg.F = maskModel(I8080, f)
}

// parity8080 rebuilds F's P/V bit as plain parity of result. Real 8080
// hardware has no signed-overflow flag — the bit the Z80 calls P/V
// always reads parity there — so every 8080 arithmetic/logic opcode
// must pass its result through this after the shared add8/sub8/and8/
// xor8/or8/cp8/inc8/dec8 helpers compute the Z80-style overflow bit in
// the same position.
func parity8080(result, f byte) byte {
	f &^= FlagPV
	if evenParity(result) {
		f |= FlagPV
	}
	return f
}

func (c *CPU) execOpcode8080(op byte) uint64 {
	// MOV r,r' occupies the entire 0x40-0x7f block except 0x76 (HLT).
	if op >= 0x40 && op <= 0x7f && op != 0x76 {
		v := c.getReg8(op & 7)
		c.setReg8((op>>3)&7, v)
		if op&7 == 6 || (op>>3)&7 == 6 {
			return 7
		}
		return 5
	}

	// ALU A,r occupies 0x80-0xbf, grouped in 8s by operation.
	if op >= 0x80 && op <= 0xbf {
		src := c.getReg8(op & 7)
		states := uint64(4)
		if op&7 == 6 {
			states = 7
		}
		switch (op >> 3) & 7 {
		case 0: // ADD
			res, f := add8(c.Reg.A, src, false)
			c.Reg.A, c.Reg.F = res, parity8080(res, maskModel(I8080, f))
		case 1: // ADC
			res, f := add8(c.Reg.A, src, c.Reg.flag(FlagC))
			c.Reg.A, c.Reg.F = res, parity8080(res, maskModel(I8080, f))
		case 2: // SUB
			res, f := sub8(c.Reg.A, src, false)
			c.Reg.A, c.Reg.F = res, parity8080(res, maskModel(I8080, f))
		case 3: // SBB
			res, f := sub8(c.Reg.A, src, c.Reg.flag(FlagC))
			c.Reg.A, c.Reg.F = res, parity8080(res, maskModel(I8080, f))
		case 4: // ANA
			res, f := and8(c.Reg.A, src)
			c.Reg.A, c.Reg.F = res, parity8080(res, maskModel(I8080, f))
		case 5: // XRA
			res, f := xor8(c.Reg.A, src)
			c.Reg.A, c.Reg.F = res, parity8080(res, maskModel(I8080, f))
		case 6: // ORA
			res, f := or8(c.Reg.A, src)
			c.Reg.A, c.Reg.F = res, parity8080(res, maskModel(I8080, f))
		case 7: // CMP
			res, f := cp8(c.Reg.A, src)
			c.Reg.F = parity8080(res, maskModel(I8080, f))
		}
		return states
	}

	switch op {
	case 0x00, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38: // NOP (undocumented aliases too)
		return 4
	case 0x76: // HLT
		c.setStatus(StatusHLTA)
		if !c.Reg.IFF1 {
			c.Err = newError(ErrOpHalt, c.Reg.PC-1, "HLT with interrupts disabled")
			return 7
		}
		c.Reg.PC--
		return 7

	case 0x01, 0x11, 0x21, 0x31: // LXI rp,nnnn
		c.setPairBC_DE_HL_SP((op>>4)&3, c.fetchWord())
		return 10
	case 0x02: // STAX B
		c.writeMem(c.Reg.BC(), c.Reg.A)
		return 7
	case 0x12: // STAX D
		c.writeMem(c.Reg.DE(), c.Reg.A)
		return 7
	case 0x0a: // LDAX B
		c.Reg.A = c.readMem(c.Reg.BC())
		return 7
	case 0x1a: // LDAX D
		c.Reg.A = c.readMem(c.Reg.DE())
		return 7
	case 0x22: // SHLD nnnn
		addr := c.fetchWord()
		c.writeMem(addr, c.Reg.L)
		c.writeMem(addr+1, c.Reg.H)
		return 16
	case 0x2a: // LHLD nnnn
		addr := c.fetchWord()
		c.Reg.L = c.readMem(addr)
		c.Reg.H = c.readMem(addr + 1)
		return 16
	case 0x32: // STA nnnn
		c.writeMem(c.fetchWord(), c.Reg.A)
		return 13
	case 0x3a: // LDA nnnn
		c.Reg.A = c.readMem(c.fetchWord())
		return 13

	case 0x03, 0x13, 0x23, 0x33: // INX rp
		idx := (op >> 4) & 3
		c.setPairBC_DE_HL_SP(idx, c.getPairBC_DE_HL_SP(idx)+1)
		return 5
	case 0x0b, 0x1b, 0x2b, 0x3b: // DCX rp
		idx := (op >> 4) & 3
		c.setPairBC_DE_HL_SP(idx, c.getPairBC_DE_HL_SP(idx)-1)
		return 5
	case 0x09, 0x19, 0x29, 0x39: // DAD rp
		idx := (op >> 4) & 3
		res, f := add16(c.Reg.HL(), c.getPairBC_DE_HL_SP(idx), c.Reg.F)
		c.Reg.SetHL(res)
		c.Reg.F = maskModel(I8080, f)
		return 10

	case 0x04, 0x0c, 0x14, 0x1c, 0x24, 0x2c, 0x34, 0x3c: // INR r
		idx := (op >> 3) & 7
		v := c.getReg8(idx)
		res, f, _ := inc8(v)
		c.setReg8(idx, res)
		c.Reg.F = parity8080(res, maskModel(I8080, (c.Reg.F&FlagC)|(f&^FlagC)))
		if idx == 6 {
			return 10
		}
		return 5
	case 0x05, 0x0d, 0x15, 0x1d, 0x25, 0x2d, 0x35, 0x3d: // DCR r
		idx := (op >> 3) & 7
		v := c.getReg8(idx)
		res, f, _ := dec8(v)
		c.setReg8(idx, res)
		c.Reg.F = parity8080(res, maskModel(I8080, (c.Reg.F&FlagC)|(f&^FlagC)))
		if idx == 6 {
			return 10
		}
		return 5
	case 0x06, 0x0e, 0x16, 0x1e, 0x26, 0x2e, 0x36, 0x3e: // MVI r,n
		idx := (op >> 3) & 7
		v := c.fetchByte()
		c.setReg8(idx, v)
		if idx == 6 {
			return 10
		}
		return 7

	case 0x07: // RLCA — only C is affected
		res, f := rlc(c.Reg.A)
		c.Reg.A = res
		c.setF8080((c.Reg.F &^ FlagC) | (f & FlagC))
		return 4
	case 0x0f: // RRCA
		res, f := rrc(c.Reg.A)
		c.Reg.A = res
		c.setF8080((c.Reg.F &^ FlagC) | (f & FlagC))
		return 4
	case 0x17: // RAL
		res, f := rl(c.Reg.A, c.Reg.flag(FlagC))
		c.Reg.A = res
		c.setF8080((c.Reg.F &^ FlagC) | (f & FlagC))
		return 4
	case 0x1f: // RAR
		res, f := rr(c.Reg.A, c.Reg.flag(FlagC))
		c.Reg.A = res
		c.setF8080((c.Reg.F &^ FlagC) | (f & FlagC))
		return 4
	case 0x27: // DAA
		res, f := daa(c.Reg.A, c.Reg.F&^FlagN)
		c.Reg.A = res
		c.setF8080(f)
		return 4
	case 0x2f: // CMA
		c.Reg.A = ^c.Reg.A
		c.setF8080(c.Reg.F)
		return 4
	case 0x37: // STC
		c.setF8080(c.Reg.F | FlagC)
		return 4
	case 0x3f: // CMC
		c.setF8080(c.Reg.F ^ FlagC)
		return 4

	case 0xc0, 0xc8, 0xd0, 0xd8, 0xe0, 0xe8, 0xf0, 0xf8: // Rcc
		if c.condition8080((op >> 3) & 7) {
			c.Reg.PC = c.pop()
			return 11
		}
		return 5
	case 0xc9: // RET
		c.Reg.PC = c.pop()
		return 10
	case 0xc2, 0xca, 0xd2, 0xda, 0xe2, 0xea, 0xf2, 0xfa: // Jcc nnnn
		addr := c.fetchWord()
		if c.condition8080((op >> 3) & 7) {
			c.Reg.PC = addr
		}
		return 10
	case 0xc3, 0xcb: // JMP nnnn (0xcb undocumented alias)
		c.Reg.PC = c.fetchWord()
		return 10
	case 0xc4, 0xcc, 0xd4, 0xdc, 0xe4, 0xec, 0xf4, 0xfc: // Ccc nnnn
		addr := c.fetchWord()
		if c.condition8080((op >> 3) & 7) {
			c.push(c.Reg.PC)
			c.Reg.PC = addr
			return 17
		}
		return 11
	case 0xcd, 0xdd, 0xed, 0xfd: // CALL nnnn (undocumented aliases)
		addr := c.fetchWord()
		c.push(c.Reg.PC)
		c.Reg.PC = addr
		return 17
	case 0xc7, 0xcf, 0xd7, 0xdf, 0xe7, 0xef, 0xf7, 0xff: // RST n
		c.push(c.Reg.PC)
		c.Reg.PC = uint16(op & 0x38)
		return 11

	case 0xc1, 0xd1, 0xe1, 0xf1: // POP rp (rp2: 11=PSW)
		v := c.pop()
		switch (op >> 4) & 3 {
		case 0:
			c.Reg.SetBC(v)
		case 1:
			c.Reg.SetDE(v)
		case 2:
			c.Reg.SetHL(v)
		default:
			c.Reg.A = byte(v >> 8)
			c.setF8080(byte(v))
		}
		return 10
	case 0xc5, 0xd5, 0xe5, 0xf5: // PUSH rp (rp2: 11=PSW)
		var v uint16
		switch (op >> 4) & 3 {
		case 0:
			v = c.Reg.BC()
		case 1:
			v = c.Reg.DE()
		case 2:
			v = c.Reg.HL()
		default:
			v = uint16(c.Reg.A)<<8 | uint16(c.Reg.F)
		}
		c.push(v)
		return 11

	case 0xc6: // ADI n
		res, f := add8(c.Reg.A, c.fetchByte(), false)
		c.Reg.A, c.Reg.F = res, parity8080(res, maskModel(I8080, f))
		return 7
	case 0xce: // ACI n
		res, f := add8(c.Reg.A, c.fetchByte(), c.Reg.flag(FlagC))
		c.Reg.A, c.Reg.F = res, parity8080(res, maskModel(I8080, f))
		return 7
	case 0xd6: // SUI n
		res, f := sub8(c.Reg.A, c.fetchByte(), false)
		c.Reg.A, c.Reg.F = res, parity8080(res, maskModel(I8080, f))
		return 7
	case 0xde: // SBI n
		res, f := sub8(c.Reg.A, c.fetchByte(), c.Reg.flag(FlagC))
		c.Reg.A, c.Reg.F = res, parity8080(res, maskModel(I8080, f))
		return 7
	case 0xe6: // ANI n
		res, f := and8(c.Reg.A, c.fetchByte())
		c.Reg.A, c.Reg.F = res, parity8080(res, maskModel(I8080, f))
		return 7
	case 0xee: // XRI n
		res, f := xor8(c.Reg.A, c.fetchByte())
		c.Reg.A, c.Reg.F = res, parity8080(res, maskModel(I8080, f))
		return 7
	case 0xf6: // ORI n
		res, f := or8(c.Reg.A, c.fetchByte())
		c.Reg.A, c.Reg.F = res, parity8080(res, maskModel(I8080, f))
		return 7
	case 0xfe: // CPI n
		res, f := cp8(c.Reg.A, c.fetchByte())
		c.Reg.F = parity8080(res, maskModel(I8080, f))
		return 7

	case 0xd3: // OUT n
		c.setStatus(StatusOUT)
		c.Port.Out(c.fetchByte(), c.Reg.A)
		return 10
	case 0xdb: // IN n
		c.setStatus(StatusINP)
		c.Reg.A = c.Port.InBusy(c.fetchByte())
		return 10

	case 0xe3: // XTHL
		lo := c.readMem(c.Reg.SP)
		hi := c.readMem(c.Reg.SP + 1)
		c.writeMem(c.Reg.SP, c.Reg.L)
		c.writeMem(c.Reg.SP+1, c.Reg.H)
		c.Reg.L, c.Reg.H = lo, hi
		return 18
	case 0xe9: // PCHL
		c.Reg.PC = c.Reg.HL()
		return 5
	case 0xeb: // XCHG
		c.Reg.H, c.Reg.D = c.Reg.D, c.Reg.H
		c.Reg.L, c.Reg.E = c.Reg.E, c.Reg.L
		return 5
	case 0xf3: // DI
		c.Reg.IFF1 = false
		return 4
	case 0xfb: // EI
		c.Reg.IFF1 = true
		c.intProtection = true
		return 4
	case 0xf9: // SPHL
		c.Reg.SP = c.Reg.HL()
		return 5

	default:
		c.Err = newError(ErrOpTrap1, c.Reg.PC-1, "undocumented I8080 opcode")
		return 4
	}
}

// condition8080 evaluates one of the 8 condition codes used by
// conditional jump/call/return, in the processor's own field order:
// NZ Z NC C PO PE P M.
func (c *CPU) condition8080(cc byte) bool {
	switch cc & 7 {
	case 0:
		return !c.Reg.flag(FlagZ)
	case 1:
		return c.Reg.flag(FlagZ)
	case 2:
		return !c.Reg.flag(FlagC)
	case 3:
		return c.Reg.flag(FlagC)
	case 4:
		return !c.Reg.flag(FlagPV)
	case 5:
		return c.Reg.flag(FlagPV)
	case 6:
		return !c.Reg.flag(FlagS)
	default:
		return c.Reg.flag(FlagS)
	}
}
