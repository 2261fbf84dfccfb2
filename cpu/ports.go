// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// InFunc reads a byte from an input port.
type InFunc func(port byte) byte

// OutFunc writes a byte to an output port.
type OutFunc func(port byte, v byte)

// Ports is the 256-slot input/output dispatch bus. Decoders reach it
// only through In/Out/InBusy; they never hold device state directly.
type Ports interface {
	// In reads the given port, dispatching to the installed callback or
	// returning 0xff if none is installed.
	In(port byte) byte

	// InBusy behaves exactly like In, but additionally ticks a
	// busy-loop counter when the same port is read repeatedly without
	// an intervening Out. The scheduler consults this to decide whether
	// a tight poll loop (e.g. a UART status poll) should yield instead
	// of spinning the host at 100%.
	InBusy(port byte) byte

	// Out writes v to the given port, dispatching to the installed
	// callback, or discarding it if none is installed.
	Out(port byte, v byte)

	// BusyCount returns how many consecutive InBusy calls have hit the
	// given port since it last changed or was written to.
	BusyCount(port byte) uint64

	// Install attaches device callbacks to a port. Either callback may
	// be nil to leave that direction as it is (the default, unless an
	// earlier Install set a callback for it).
	Install(port byte, in InFunc, out OutFunc)
}

// PortBus is the standard 256-slot implementation of Ports.
type PortBus struct {
	in  [256]InFunc
	out [256]OutFunc

	lastPort  int // -1 when no InBusy call has happened yet
	busyCount [256]uint64
}

// NewPortBus creates a PortBus with every slot defaulted to "return 0xff
// / discard".
func NewPortBus() *PortBus {
	return &PortBus{lastPort: -1}
}

// Install implements Ports.
func (p *PortBus) Install(port byte, in InFunc, out OutFunc) {
	if in != nil {
		p.in[port] = in
	}
	if out != nil {
		p.out[port] = out
	}
}

// In implements Ports.
func (p *PortBus) In(port byte) byte {
	if f := p.in[port]; f != nil {
		return f(port)
	}
	return 0xff
}

// InBusy implements Ports.
func (p *PortBus) InBusy(port byte) byte {
	if p.lastPort == int(port) {
		p.busyCount[port]++
	} else {
		p.lastPort = int(port)
		p.busyCount[port] = 0
	}
	return p.In(port)
}

// Out implements Ports.
func (p *PortBus) Out(port byte, v byte) {
	p.busyCount[port] = 0
	if p.lastPort == int(port) {
		p.lastPort = -1
	}
	if f := p.out[port]; f != nil {
		f(port, v)
	}
}

// BusyCount implements Ports.
func (p *PortBus) BusyCount(port byte) uint64 {
	return p.busyCount[port]
}
