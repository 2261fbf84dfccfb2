// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scheduler provides the run()/step() driver that wraps a cpu.CPU
// in the state machine described for the front panel: ContinRun, SingleStep,
// Stopped, ModelSwitch and Reset. It also throttles a running CPU against a
// configured clock rate and recognizes the ErrModelSwitch pseudo-error,
// re-selecting the executor and continuing the run loop exactly as the
// executor itself cannot (Step has already returned by the time the
// scheduler learns about it).
package scheduler

import (
	"time"

	"github.com/retrocore/z80emu/cpu"
)

// State is the scheduler's view of what the CPU is currently doing,
// independent of (and coarser-grained than) cpu.CPU.Err.
type State int

const (
	Stopped State = iota
	ContinRun
	SingleStep
	ModelSwitch
	Reset
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case ContinRun:
		return "ContinRun"
	case SingleStep:
		return "SingleStep"
	case ModelSwitch:
		return "ModelSwitch"
	case Reset:
		return "Reset"
	default:
		return "unknown"
	}
}

// Scheduler drives a cpu.CPU through run() and step(), throttling a
// running CPU against TargetHz (when nonzero) and polling State at each
// instruction boundary so an external thread can stop a run by setting
// it to Stopped.
type Scheduler struct {
	CPU   *cpu.CPU
	State State

	// TargetHz is the clock rate to throttle against. Zero means run as
	// fast as the host allows.
	TargetHz uint64

	// BusyPort, when BusyWatch is true, is the port the scheduler
	// consults via CPU.Port.BusyCount to decide whether a tight poll
	// loop should yield a timeslice rather than spin the host at 100%.
	BusyWatch     bool
	BusyPort      byte
	BusyThreshold uint64
	BusyYield     time.Duration

	throttleEpoch  time.Time
	throttleCycles uint64
}

// New creates a Scheduler bound to an already-constructed CPU.
func New(c *cpu.CPU) *Scheduler {
	return &Scheduler{
		CPU:       c,
		State:     Stopped,
		BusyYield: 100 * time.Microsecond,
	}
}

// Run executes instructions until State is no longer ContinRun. It
// recognizes cpu.ErrModelSwitch transparently: on observing it, it calls
// CPU.ApplyModelSwitch, clears the error and continues the loop without
// the caller ever seeing that pseudo-error. Every other non-nil CPU.Err
// ends the run and is returned.
func (s *Scheduler) Run() *cpu.CPUError {
	s.State = ContinRun
	s.resetThrottle()

	for s.State == ContinRun {
		s.CPU.Step()

		if err := s.CPU.Err; err != nil {
			if err.Kind == cpu.ErrModelSwitch {
				s.State = ModelSwitch
				s.CPU.ApplyModelSwitch()
				s.State = ContinRun
				continue
			}
			s.State = Stopped
			return err
		}

		s.throttle()
		s.watchBusyLoop()
	}

	return nil
}

// Step executes exactly one instruction (which may itself be an
// interrupt/NMI delivery or a DMA hand-off cycle, per cpu.CPU.Step) with
// State set to SingleStep for its duration, then returns to Stopped.
func (s *Scheduler) Step() *cpu.CPUError {
	s.State = SingleStep
	s.CPU.Step()
	s.State = Stopped

	if err := s.CPU.Err; err != nil {
		if err.Kind == cpu.ErrModelSwitch {
			s.CPU.ApplyModelSwitch()
			return nil
		}
		return err
	}
	return nil
}

// Break asks a running CPU to stop at the next instruction boundary. It
// is safe to call from a different goroutine than the one running Run,
// since State is only ever read back by Run itself at the boundary.
func (s *Scheduler) Break() {
	s.State = Stopped
}

// ResetPulse performs a warm reset and returns the scheduler to Stopped,
// matching the documented Reset->Stopped transition.
func (s *Scheduler) ResetPulse() {
	s.State = Reset
	s.CPU.Reset()
	s.State = Stopped
}

func (s *Scheduler) resetThrottle() {
	s.throttleEpoch = time.Now()
	s.throttleCycles = s.CPU.Cycles
}

// throttle periodically compares elapsed wall time against the T-states
// executed since the last check (T-states/TargetHz) and sleeps to
// converge, matching the documented MHz-throttle policy. It resynchronizes
// every 4096 T-states so a long sleep never overshoots badly after the
// host is preempted.
func (s *Scheduler) throttle() {
	if s.TargetHz == 0 {
		return
	}

	elapsed := s.CPU.Cycles - s.throttleCycles
	if elapsed < 4096 {
		return
	}

	wantDuration := time.Duration(elapsed) * time.Second / time.Duration(s.TargetHz)
	actualDuration := time.Since(s.throttleEpoch)
	if wantDuration > actualDuration {
		time.Sleep(wantDuration - actualDuration)
	}

	s.throttleEpoch = time.Now()
	s.throttleCycles = s.CPU.Cycles
}

// watchBusyLoop yields a short timeslice when BusyWatch is enabled and
// the configured port has been polled at least BusyThreshold times in a
// row without an intervening output, so a tight CP/M-style status poll
// does not spin the host at 100%.
func (s *Scheduler) watchBusyLoop() {
	if !s.BusyWatch {
		return
	}
	if s.CPU.Port.BusyCount(s.BusyPort) >= s.BusyThreshold {
		time.Sleep(s.BusyYield)
	}
}
