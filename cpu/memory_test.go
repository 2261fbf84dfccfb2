// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/retrocore/z80emu/cpu"
)

func TestPageAttrReadOnly(t *testing.T) {
	m := cpu.NewBus()
	m.Write(0x1000, 0xaa)
	m.SetPageAttr(0x10, cpu.RO)
	m.Write(0x1000, 0xbb)
	if v := m.Read(0x1000); v != 0xaa {
		t.Errorf("write to RO page was not dropped: got $%02X", v)
	}
}

func TestPageAttrProtectedRWLatchesViolation(t *testing.T) {
	m := cpu.NewBus()
	m.SetPageAttr(0x20, cpu.ProtectedRW)
	if m.WriteProtectViolation {
		t.Fatal("violation latched before any write")
	}
	m.Write(0x2000, 0x42)
	if !m.WriteProtectViolation {
		t.Error("write to ProtectedRW page did not latch a violation")
	}
	if v := m.Read(0x2000); v != 0 {
		t.Errorf("ProtectedRW write should have been dropped, got $%02X", v)
	}
}

func TestBankHookRemapsPage(t *testing.T) {
	m := cpu.NewBus()
	m.Write(0x0500, 0x11) // physical page 5
	m.Write(0x0600, 0x22) // physical page 6

	m.SetBankHook(func(page byte) byte {
		if page == 0x05 {
			return 0x06
		}
		return page
	})

	if v := m.Read(0x0500); v != 0x22 {
		t.Errorf("bank hook did not remap page 5 to page 6, got $%02X", v)
	}
}

func TestLoadForceBypassesPageAttr(t *testing.T) {
	m := cpu.NewBus()
	m.SetPageAttr(0x00, cpu.RO)

	n := m.Load([]byte{1, 2, 3}, 0x0000, true)
	if n != 3 {
		t.Fatalf("expected 3 bytes written, got %d", n)
	}
	if v := m.Read(0x0001); v != 2 {
		t.Errorf("forced load did not bypass RO attribute, got $%02X", v)
	}
}

func TestReadWriteWord(t *testing.T) {
	m := cpu.NewBus()
	cpu.WriteWord(m, 0x4000, 0xbeef)
	if v := cpu.ReadWord(m, 0x4000); v != 0xbeef {
		t.Errorf("word round-trip failed: got $%04X", v)
	}
	if lo, hi := m.Read(0x4000), m.Read(0x4001); lo != 0xef || hi != 0xbe {
		t.Errorf("word not stored little-endian: lo=$%02X hi=$%02X", lo, hi)
	}
}
