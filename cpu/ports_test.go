// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/retrocore/z80emu/cpu"
)

func TestPortBusInstallAndDispatch(t *testing.T) {
	p := cpu.NewPortBus()
	var lastOut byte
	p.Install(0x10, func(port byte) byte { return 0x99 }, func(port byte, v byte) { lastOut = v })

	if v := p.In(0x10); v != 0x99 {
		t.Errorf("In did not dispatch to installed callback, got $%02X", v)
	}
	p.Out(0x10, 0x55)
	if lastOut != 0x55 {
		t.Errorf("Out did not dispatch to installed callback")
	}
}

func TestPortBusDefaultsToFF(t *testing.T) {
	p := cpu.NewPortBus()
	if v := p.In(0x42); v != 0xff {
		t.Errorf("uninstalled port should read $FF, got $%02X", v)
	}
}

func TestPortBusBusyCount(t *testing.T) {
	p := cpu.NewPortBus()
	p.Install(0x20, func(byte) byte { return 0 }, nil)

	for i := 0; i < 5; i++ {
		p.InBusy(0x20)
	}
	if c := p.BusyCount(0x20); c != 4 {
		t.Errorf("expected busy count 4 after 5 InBusy calls, got %d", c)
	}

	p.Out(0x20, 0)
	if c := p.BusyCount(0x20); c != 0 {
		t.Errorf("Out did not reset busy count, got %d", c)
	}
}

func TestPortBusBusyCountResetsOnPortChange(t *testing.T) {
	p := cpu.NewPortBus()
	p.InBusy(0x01)
	p.InBusy(0x01)
	p.InBusy(0x02)
	if c := p.BusyCount(0x01); c != 1 {
		t.Errorf("expected busy count 1 on port 1 before switching, got %d", c)
	}
	if c := p.BusyCount(0x02); c != 0 {
		t.Errorf("expected busy count 0 on newly polled port 2, got %d", c)
	}
}
