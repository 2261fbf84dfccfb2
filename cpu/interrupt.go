// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "sync/atomic"

// BusMode describes which direction(s) of the bus a DMA master has
// requested while it holds it.
type BusMode byte

const (
	BusNone BusMode = iota
	BusRead
	BusWrite
	BusReadWrite
)

// DMAMaster is invoked, while a bus request is held, to let a peripheral
// perform its own memory accesses through the same Memory the CPU uses.
// It returns the number of T-states the access consumed; the caller
// must eventually call EndBusRequest to release the bus.
type DMAMaster func(mode BusMode) uint64

// interruptFabric is the publishing surface devices use to signal NMIs,
// maskable interrupts and DMA bus requests. It is embedded directly in
// CPU rather than broken into its own exported type because its fields
// are part of the CPU's single synchronization domain (see the CPU type's
// doc).
//
// The ordering the concurrency model requires — a device-written IntData
// visible before the corresponding IntPending is visible, and a cleared
// IntPending never reordered ahead of the executor's read of IntData —
// falls directly out of using atomics for each field and always writing
// IntData before IntPending, and always reading IntData before clearing
// IntPending.
type interruptFabric struct {
	nmiPending atomic.Bool
	intPending atomic.Bool
	intData    atomic.Int32 // -1 means "no data latched"

	busRequest atomic.Bool
	busMode    atomic.Uint32
	dmaMaster  atomic.Pointer[DMAMaster]
}

func (f *interruptFabric) reset() {
	f.nmiPending.Store(false)
	f.intPending.Store(false)
	f.intData.Store(-1)
	f.busRequest.Store(false)
	f.busMode.Store(0)
	f.dmaMaster.Store(nil)
}

// RequestInterrupt signals a maskable interrupt, latching the byte the
// interrupting device places on the data bus (typically a single-byte
// RST opcode, or 0xff for an unconnected IM 0 response). Since data is a
// byte, a request made here always latches real data; IntError only
// arises when an interrupt is taken while IntData still holds the -1
// that reset leaves in it.
func (c *CPU) RequestInterrupt(data byte) {
	c.intr.intData.Store(int32(data))
	c.intr.intPending.Store(true)
}

// RequestNMI signals a non-maskable interrupt.
func (c *CPU) RequestNMI() {
	c.intr.nmiPending.Store(true)
}

// StartBusRequest asks the CPU to hand the bus to a DMA master at the
// next instruction boundary. At that gate visit master is invoked
// repeatedly, without any instruction executing in between, until it
// calls EndBusRequest (directly, or via its own logic) to release the
// bus.
func (c *CPU) StartBusRequest(mode BusMode, master DMAMaster) {
	c.intr.busMode.Store(uint32(mode))
	c.intr.dmaMaster.Store(&master)
	c.intr.busRequest.Store(true)
}

// EndBusRequest releases a previously started bus request.
func (c *CPU) EndBusRequest() {
	c.intr.busRequest.Store(false)
	c.intr.busMode.Store(uint32(BusNone))
}

// BusRequested reports whether a peripheral currently holds (or is
// waiting to hold) the bus.
func (c *CPU) BusRequested() bool {
	return c.intr.busRequest.Load()
}

// serviceBusRequest runs the DMA hand-off loop at the top of a step. It
// returns the T-states consumed by DMA activity, which the caller adds
// to the global counter exactly as it would for an instruction.
func (c *CPU) serviceBusRequest() uint64 {
	var states uint64
	for c.intr.busRequest.Load() {
		masterPtr := c.intr.dmaMaster.Load()
		if masterPtr == nil || *masterPtr == nil {
			c.EndBusRequest()
			break
		}
		mode := BusMode(c.intr.busMode.Load())
		states += (*masterPtr)(mode)
	}
	return states
}
