// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package console is an example I/O device wired to a cpu.Ports bus: a
// raw-terminal status/data UART pair occupying two consecutive ports, of
// the kind almost every CP/M-era front end exposes to its guest software.
// It exists to exercise the published device-callback contract
// (cpu.InFunc/cpu.OutFunc via Ports.Install), not to be a complete
// terminal emulation; see consolein/consoleout in the reference pack for
// the kind of driver-registry machinery a production front end would add
// around it.
package console

import (
	"bufio"
	"os"

	"golang.org/x/term"

	"github.com/retrocore/z80emu/cpu"
)

// StatusReady is the bit returned on the status port once a character is
// available to read from the data port.
const StatusReady = 0x01

// Console is a two-port UART: a status port (read-only, bit 0 set when
// input is pending) and a data port (reading pops the next input byte,
// writing emits a byte to the terminal). A background goroutine collects
// raw keystrokes into a buffered channel so the status port never blocks.
type Console struct {
	out      *bufio.Writer
	oldState *term.State
	raw      bool

	keys chan byte
	done chan struct{}

	peeked  byte
	hasByte bool
}

// New creates a Console that reads stdin and writes w.
func New(w *os.File) *Console {
	return &Console{
		out:  bufio.NewWriter(w),
		keys: make(chan byte, 256),
		done: make(chan struct{}),
	}
}

// Start switches stdin into raw mode (so keystrokes arrive one at a time,
// unechoed) and launches the background reader goroutine. Stop must be
// called to restore the terminal.
func (c *Console) Start() error {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		c.oldState = old
		c.raw = true
	}

	go c.pollStdin()
	return nil
}

// Stop restores the terminal to its original mode and halts the reader
// goroutine.
func (c *Console) Stop() {
	close(c.done)
	if c.raw {
		term.Restore(int(os.Stdin.Fd()), c.oldState)
	}
}

func (c *Console) pollStdin() {
	buf := make([]byte, 1)
	for {
		select {
		case <-c.done:
			return
		default:
		}
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n > 0 {
			select {
			case c.keys <- buf[0]:
			case <-c.done:
				return
			}
		}
	}
}

// Install wires the console onto statusPort and dataPort of the given
// bus: In(statusPort) reports StatusReady when a key is pending and 0
// otherwise, In(dataPort) pops a buffered
// key (or 0 if none is pending), and Out(dataPort, v) writes v to the
// terminal.
func (c *Console) Install(bus cpu.Ports, statusPort, dataPort byte) {
	bus.Install(statusPort, c.inStatus, nil)
	bus.Install(dataPort, c.inData, c.outData)
}

func (c *Console) inStatus(byte) byte {
	if c.hasByte {
		return StatusReady
	}
	select {
	case k := <-c.keys:
		c.peeked, c.hasByte = k, true
		return StatusReady
	default:
		return 0
	}
}

func (c *Console) inData(byte) byte {
	if c.hasByte {
		c.hasByte = false
		return c.peeked
	}
	select {
	case k := <-c.keys:
		return k
	default:
		return 0
	}
}

func (c *Console) outData(_ byte, v byte) {
	c.out.WriteByte(v)
	c.out.Flush()
}
