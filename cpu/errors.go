// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "fmt"

// ErrorKind enumerates the reasons the executor can stop a run.
type ErrorKind int

const (
	// ErrNone means the executor stopped for a reason other than an
	// error (a single step completing, or a state-machine transition).
	ErrNone ErrorKind = iota
	// ErrOpHalt is a HALT executed with interrupts disabled: the CPU
	// can never leave it, so the run loop must.
	ErrOpHalt
	// ErrOpTrap1, ErrOpTrap2 and ErrOpTrap4 report an illegal opcode of
	// 1, 2 or 4 bytes respectively.
	ErrOpTrap1
	ErrOpTrap2
	ErrOpTrap4
	// ErrIOTrapIn and ErrIOTrapOut report a read or write to a port a
	// device explicitly trapped. Neither the decoders nor PortBus set
	// them; whatever traps the port stores them in CPU.Err itself.
	ErrIOTrapIn
	ErrIOTrapOut
	// ErrIOHalt and ErrIOError are raised by a device callback that
	// wants to stop the run loop.
	ErrIOHalt
	ErrIOError
	// ErrUserInt is raised by an external requester asking the run loop
	// to stop. Nothing in this module sets it: the monitor's Ctrl-C
	// handling stops a run through scheduler.Break instead.
	ErrUserInt
	// ErrIntError means an interrupt was deliverable but IntData was
	// -1 (no device actually latched a data byte).
	ErrIntError
	// ErrPowerOff is permanent for the session.
	ErrPowerOff
	// ErrModelSwitch is an internal pseudo-error: the scheduler
	// recognizes it, re-selects the executor for the new model, and
	// clears it. It never escapes Run.
	ErrModelSwitch
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNone:
		return "none"
	case ErrOpHalt:
		return "OpHalt"
	case ErrOpTrap1:
		return "OpTrap1"
	case ErrOpTrap2:
		return "OpTrap2"
	case ErrOpTrap4:
		return "OpTrap4"
	case ErrIOTrapIn:
		return "IOTrapIn"
	case ErrIOTrapOut:
		return "IOTrapOut"
	case ErrIOHalt:
		return "IOHalt"
	case ErrIOError:
		return "IOError"
	case ErrUserInt:
		return "UserInt"
	case ErrIntError:
		return "IntError"
	case ErrPowerOff:
		return "PowerOff"
	case ErrModelSwitch:
		return "ModelSwitch"
	default:
		return "unknown"
	}
}

// CPUError is the value the executor stores in CPU.Err and Step/Run
// return when a run terminates. Only ErrModelSwitch is recoverable; the
// scheduler clears it and continues. Every other kind ends the run.
type CPUError struct {
	Kind ErrorKind
	PC   uint16
	Msg  string
}

func (e *CPUError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s at PC=%04X", e.Kind, e.PC)
	}
	return fmt.Sprintf("%s at PC=%04X: %s", e.Kind, e.PC, e.Msg)
}

func newError(kind ErrorKind, pc uint16, msg string) *CPUError {
	return &CPUError{Kind: kind, PC: pc, Msg: msg}
}
