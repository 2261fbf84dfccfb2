// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package monitor is a minimal front-panel command loop: registers,
// breakpoints, memory dump/load, step and run. It is deliberately not a
// full interactive ICE debugger (no expression evaluator over exported
// symbols, no disassembler, no cross-assembler) — those are companion
// tools this core does not provide. The command-tree/settings plumbing is
// the teacher's, generalized from a 6502 register set to the Z80/I8080
// register file.
package monitor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/beevik/cmd"

	"github.com/retrocore/z80emu/cpu"
	"github.com/retrocore/z80emu/scheduler"
)

var cmds *cmd.Tree

func init() {
	cmds = cmd.NewTree("z80emu", []cmd.Command{
		{
			Name:     "help",
			Shortcut: "?",
			Data:     (*Monitor).cmdHelp,
		},
		{
			Name:     "breakpoint",
			Shortcut: "b",
			Brief:    "Breakpoint commands",
			Subcommands: cmd.NewTree("Breakpoint", []cmd.Command{
				{Name: "list", Brief: "List breakpoints", HelpText: "breakpoint list", Data: (*Monitor).cmdBreakpointList},
				{Name: "add", Brief: "Add a breakpoint", HelpText: "breakpoint add <address>", Data: (*Monitor).cmdBreakpointAdd},
				{Name: "remove", Brief: "Remove a breakpoint", HelpText: "breakpoint remove <address>", Data: (*Monitor).cmdBreakpointRemove},
				{Name: "enable", Brief: "Enable a breakpoint", HelpText: "breakpoint enable <address>", Data: (*Monitor).cmdBreakpointEnable},
				{Name: "disable", Brief: "Disable a breakpoint", HelpText: "breakpoint disable <address>", Data: (*Monitor).cmdBreakpointDisable},
			}),
		},
		{
			Name:     "databreakpoint",
			Shortcut: "db",
			Brief:    "Data breakpoint commands",
			Subcommands: cmd.NewTree("Data breakpoint", []cmd.Command{
				{Name: "list", Brief: "List data breakpoints", HelpText: "databreakpoint list", Data: (*Monitor).cmdDataBreakpointList},
				{Name: "add", Brief: "Add a data breakpoint", HelpText: "databreakpoint add <address> [<value>]", Data: (*Monitor).cmdDataBreakpointAdd},
				{Name: "remove", Brief: "Remove a data breakpoint", HelpText: "databreakpoint remove <address>", Data: (*Monitor).cmdDataBreakpointRemove},
				{Name: "enable", Brief: "Enable a data breakpoint", HelpText: "databreakpoint enable <address>", Data: (*Monitor).cmdDataBreakpointEnable},
				{Name: "disable", Brief: "Disable a data breakpoint", HelpText: "databreakpoint disable <address>", Data: (*Monitor).cmdDataBreakpointDisable},
			}),
		},
		{
			Name:     "load",
			Brief:    "Load a binary file into memory",
			HelpText: "load <filename> <address>",
			Data:     (*Monitor).cmdLoad,
		},
		{
			Name:  "memory",
			Brief: "Memory commands",
			Subcommands: cmd.NewTree("Memory", []cmd.Command{
				{Name: "dump", Brief: "Dump memory at address", HelpText: "memory dump <address> [<bytes>]", Data: (*Monitor).cmdMemoryDump},
			}),
		},
		{
			Name:     "quit",
			Brief:    "Quit the program",
			HelpText: "quit",
			Data:     (*Monitor).cmdQuit,
		},
		{
			Name:     "registers",
			Shortcut: "r",
			Brief:    "Display register contents",
			HelpText: "registers",
			Data:     (*Monitor).cmdRegisters,
		},
		{
			Name:     "model",
			Brief:    "Display or request the active CPU model",
			HelpText: "model [z80|8080]",
			Data:     (*Monitor).cmdModel,
		},
		{
			Name:     "reset",
			Brief:    "Reset the CPU",
			HelpText: "reset",
			Data:     (*Monitor).cmdReset,
		},
		{
			Name:     "run",
			Brief:    "Run the CPU until a breakpoint or Ctrl-C",
			HelpText: "run [<address>]",
			Data:     (*Monitor).cmdRun,
		},
		{
			Name:     "set",
			Brief:    "Set a configuration variable or register",
			HelpText: "set <var> <value>",
			Data:     (*Monitor).cmdSet,
		},
		{
			Name:     "step",
			Shortcut: "s",
			Brief:    "Step the CPU by one or more instructions",
			HelpText: "step [<count>]",
			Data:     (*Monitor).cmdStep,
		},

		{Name: "ba", Alias: "breakpoint add"},
		{Name: "br", Alias: "breakpoint remove"},
		{Name: "bl", Alias: "breakpoint list"},
		{Name: "be", Alias: "breakpoint enable"},
		{Name: "bd", Alias: "breakpoint disable"},
		{Name: "dbl", Alias: "databreakpoint list"},
		{Name: "dba", Alias: "databreakpoint add"},
		{Name: "dbr", Alias: "databreakpoint remove"},
		{Name: "dbe", Alias: "databreakpoint enable"},
		{Name: "dbd", Alias: "databreakpoint disable"},
		{Name: "m", Alias: "memory dump"},
	})
}

// state tracks whether the monitor is processing commands interactively
// or letting the scheduler run freely; it is distinct from
// scheduler.State, which tracks the CPU side of the same distinction.
type state byte

const (
	stateProcessingCommands state = iota
	stateRunning
	stateBreakpoint
)

// Monitor is a fully emulated Z80/I8080 system with a command-line
// front panel: breakpoints, data breakpoints, register and memory
// inspection, and load/run/step.
type Monitor struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool

	mem   *cpu.Bus
	ports *cpu.PortBus
	cpu   *cpu.CPU
	sched *scheduler.Scheduler

	debugger *cpu.Debugger
	lastCmd  *cmd.Selection
	state    state
	settings *settings
}

// New creates a new monitor wrapping a freshly constructed CPU in the
// requested model.
func New(model cpu.Model) *Monitor {
	m := &Monitor{
		state:    stateProcessingCommands,
		settings: newSettings(),
	}

	m.mem = cpu.NewBus()
	m.ports = cpu.NewPortBus()
	m.cpu = cpu.NewCPU(model, m.mem, m.ports)
	m.cpu.PowerOn()

	m.debugger = cpu.NewDebugger(m)
	m.cpu.AttachDebugger(m.debugger)

	m.sched = scheduler.New(m.cpu)

	return m
}

// CPU returns the underlying CPU, for callers (such as a console device)
// that need to install port handlers before the monitor starts running.
func (m *Monitor) CPU() *cpu.CPU { return m.cpu }

// Ports returns the underlying port bus.
func (m *Monitor) Ports() *cpu.PortBus { return m.ports }

// Mem returns the underlying memory bus.
func (m *Monitor) Mem() *cpu.Bus { return m.mem }

// RunCommands accepts monitor commands from r and writes results to w.
func (m *Monitor) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	m.input = bufio.NewScanner(r)
	m.output = bufio.NewWriter(w)
	m.interactive = interactive

	if interactive {
		m.println()
	}
	m.displayPC()

	for {
		m.prompt()

		line, err := m.getLine()
		if err != nil {
			break
		}

		var c cmd.Selection
		if line != "" {
			c, err = cmds.Lookup(line)
			switch {
			case err == cmd.ErrNotFound:
				m.println("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				m.println("Command is ambiguous.")
				continue
			case err != nil:
				m.printf("ERROR: %v.\n", err)
				continue
			}
		} else if m.lastCmd != nil {
			c = *m.lastCmd
		}

		if c.Command == nil {
			continue
		}
		m.lastCmd = &c

		handler := c.Command.Data.(func(*Monitor, cmd.Selection) error)
		if err := handler(m, c); err != nil {
			break
		}
	}
}

// Break interrupts a running CPU, the counterpart to a Ctrl-C handler
// installed by the caller.
func (m *Monitor) Break() {
	m.println()
	m.sched.Break()
	if m.state == stateRunning {
		m.displayPC()
	}
	if m.state == stateProcessingCommands {
		m.prompt()
	}
	m.state = stateProcessingCommands
}

func (m *Monitor) print(args ...interface{}) {
	fmt.Fprint(m.output, args...)
	m.flush()
}

func (m *Monitor) printf(format string, args ...interface{}) {
	fmt.Fprintf(m.output, format, args...)
	m.flush()
}

func (m *Monitor) println(args ...interface{}) {
	fmt.Fprintln(m.output, args...)
	m.flush()
}

func (m *Monitor) flush() {
	m.output.Flush()
}

func (m *Monitor) getLine() (string, error) {
	if m.input.Scan() {
		return m.input.Text(), nil
	}
	if m.input.Err() != nil {
		return "", m.input.Err()
	}
	return "", io.EOF
}

func (m *Monitor) prompt() {
	if m.interactive {
		m.printf("* ")
	}
}

func (m *Monitor) displayPC() {
	if m.interactive {
		m.println(m.registerLine())
	}
}

func (m *Monitor) parseAddr(s string) (uint16, error) {
	v, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

func (m *Monitor) displayHelpText(c *cmd.Command) {
	if c.HelpText != "" {
		m.printf("Syntax: %s\n", c.HelpText)
	} else {
		m.println("<no help text>")
	}
}

func (m *Monitor) displayCommands(commands *cmd.Tree) {
	m.printf("%s commands:\n", commands.Title)
	for _, c := range commands.Commands {
		if c.Brief != "" {
			m.printf("    %-15s  %s\n", c.Name, c.Brief)
		}
	}
}

func (m *Monitor) cmdHelp(c cmd.Selection) error {
	switch {
	case len(c.Args) == 0:
		m.displayCommands(cmds)
	default:
		s, err := cmds.Lookup(strings.Join(c.Args, " "))
		if err != nil {
			m.printf("%v\n", err)
		} else if s.Command.Subcommands != nil {
			m.displayCommands(s.Command.Subcommands)
		} else {
			m.displayHelpText(s.Command)
		}
	}
	return nil
}

func (m *Monitor) cmdQuit(c cmd.Selection) error {
	return errors.New("exiting program")
}

func (m *Monitor) cmdRegisters(c cmd.Selection) error {
	m.println(m.registerLine())
	return nil
}

func (m *Monitor) cmdModel(c cmd.Selection) error {
	if len(c.Args) == 0 {
		m.printf("Current model: %v\n", m.cpu.Model)
		return nil
	}
	switch strings.ToLower(c.Args[0]) {
	case "z80":
		m.cpu.RequestModelSwitch(cpu.Z80)
	case "8080", "i8080":
		m.cpu.RequestModelSwitch(cpu.I8080)
	default:
		m.printf("Unknown model '%s'.\n", c.Args[0])
		return nil
	}
	m.cpu.ApplyModelSwitch()
	m.printf("Model switched to %v.\n", m.cpu.Model)
	return nil
}

func (m *Monitor) cmdReset(c cmd.Selection) error {
	m.sched.ResetPulse()
	m.printf("CPU reset.\n")
	m.displayPC()
	return nil
}

func (m *Monitor) cmdLoad(c cmd.Selection) error {
	if len(c.Args) < 2 {
		m.displayHelpText(c.Command)
		return nil
	}

	addr, err := m.parseAddr(c.Args[1])
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}

	data, err := os.ReadFile(c.Args[0])
	if err != nil {
		m.printf("Failed to open '%s': %v\n", c.Args[0], err)
		return nil
	}

	n := m.mem.Load(data, addr, true)
	m.printf("Loaded '%s' to $%04X..$%04X\n", c.Args[0], addr, int(addr)+n-1)
	m.cpu.Reg.PC = addr
	return nil
}

func (m *Monitor) cmdMemoryDump(c cmd.Selection) error {
	if len(c.Args) < 1 {
		m.displayHelpText(c.Command)
		return nil
	}

	var addr uint16
	switch c.Args[0] {
	case "$":
		addr = m.settings.NextMemDumpAddr
	case ".":
		addr = m.cpu.Reg.PC
	default:
		a, err := m.parseAddr(c.Args[0])
		if err != nil {
			m.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	bytes := uint16(m.settings.MemDumpBytes)
	if len(c.Args) >= 2 {
		v, err := parseNumber(c.Args[1])
		if err != nil {
			m.printf("%v\n", err)
			return nil
		}
		bytes = uint16(v)
	}

	m.dumpMemory(addr, bytes)
	m.settings.NextMemDumpAddr = addr + bytes
	m.lastCmd.Args = []string{"$", fmt.Sprintf("%d", bytes)}
	return nil
}

func (m *Monitor) dumpMemory(addr0, bytes uint16) {
	if bytes == 0 {
		return
	}
	addr1 := addr0 + bytes - 1

	start := uint32(addr0) & 0xfff8
	stop := (uint32(addr1) + 8) & 0xffff8
	if stop > 0x10000 {
		stop = 0x10000
	}

	buf := []byte("    -" + strings.Repeat(" ", 35))
	a := uint16(start)
	for row := start; row < stop; row += 8 {
		addrToBuf(a, buf[0:4])
		for c1, c2 := 6, 32; c1 < 29; c1, c2, a = c1+3, c2+1, a+1 {
			if a >= addr0 && a <= addr1 {
				v := m.mem.Read(a)
				byteToBuf(v, buf[c1:c1+2])
				buf[c2] = toPrintableChar(v)
			} else {
				buf[c1], buf[c1+1], buf[c2] = ' ', ' ', ' '
			}
		}
		m.println(string(buf))
	}
}

func (m *Monitor) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		m.println("Variables:")
		m.settings.Display(m.output)
		m.flush()
	case 1:
		m.displayHelpText(c.Command)
	default:
		key, value := strings.ToLower(c.Args[0]), c.Args[1]

		if sz := m.setRegister(key, value); sz != -1 {
			return nil
		}

		switch m.settings.Kind(key) {
		case reflect.Invalid:
			m.printf("Setting '%s' not found\n", key)
		default:
			v, err := parseNumber(value)
			if err != nil {
				m.printf("%v\n", err)
				return nil
			}
			if err := m.settings.Set(key, uint64(v)); err != nil {
				m.printf("%v\n", err)
				return nil
			}
			m.println("Setting updated.")
		}
	}
	return nil
}

// setRegister applies a register assignment and returns the size of the
// register written (0 for flag bits, 1 for 8-bit, 2 for 16-bit), or -1 if
// key does not name a register.
func (m *Monitor) setRegister(key, value string) int {
	v, err := parseNumber(value)
	if err != nil {
		return -1
	}
	r := &m.cpu.Reg
	sz := -1
	switch key {
	case "a":
		r.A, sz = byte(v), 1
	case "f":
		r.F, sz = byte(v), 1
	case "bc":
		r.SetBC(uint16(v))
		sz = 2
	case "de":
		r.SetDE(uint16(v))
		sz = 2
	case "hl":
		r.SetHL(uint16(v))
		sz = 2
	case "ix":
		r.IX, sz = uint16(v), 2
	case "iy":
		r.IY, sz = uint16(v), 2
	case "sp":
		r.SP, sz = uint16(v), 2
	case "pc", ".":
		r.PC, sz = uint16(v), 2
	case "i":
		r.I, sz = byte(v), 1
	default:
		return -1
	}
	switch sz {
	case 1:
		m.printf("Register %s set to $%02X.\n", strings.ToUpper(key), byte(v))
	case 2:
		m.printf("Register %s set to $%04X.\n", strings.ToUpper(key), uint16(v))
	}
	return sz
}

func (m *Monitor) cmdRun(c cmd.Selection) error {
	if len(c.Args) > 0 {
		addr, err := m.parseAddr(c.Args[0])
		if err != nil {
			m.printf("%v\n", err)
			return nil
		}
		m.cpu.Reg.PC = addr
	}

	m.printf("Running from $%04X. Press ctrl-C to break.\n", m.cpu.Reg.PC)
	m.sched.TargetHz = m.settings.TargetHz

	m.state = stateRunning
	err := m.sched.Run()
	m.state = stateProcessingCommands

	if err != nil {
		m.printf("Stopped: %v\n", err)
	}
	return nil
}

func (m *Monitor) cmdStep(c cmd.Selection) error {
	count := 1
	if len(c.Args) > 0 {
		n, err := parseNumber(c.Args[0])
		if err == nil {
			count = int(n)
		}
	}

	for i := 0; i < count; i++ {
		if err := m.sched.Step(); err != nil {
			m.printf("Stopped: %v\n", err)
			break
		}
		if i >= count-m.settings.StepLines {
			m.displayPC()
		} else if i == 0 {
			m.println("...")
		}
	}
	return nil
}

func (m *Monitor) registerLine() string {
	r := &m.cpu.Reg
	flags := flagString(r.F)
	return fmt.Sprintf(
		"PC=%04X AF=%04X BC=%04X DE=%04X HL=%04X IX=%04X IY=%04X SP=%04X I=%02X R=%02X IM=%d %s",
		r.PC, r.AF(), r.BC(), r.DE(), r.HL(), r.IX, r.IY, r.SP, r.I, r.R(), r.IM, flags)
}

func flagString(f byte) string {
	bits := "SZYHXPNC"
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		if f&(0x80>>uint(i)) != 0 {
			out[i] = bits[i]
		} else {
			out[i] = '-'
		}
	}
	return string(out)
}

// --- Breakpoint commands ---

func (m *Monitor) cmdBreakpointList(c cmd.Selection) error {
	m.println("Addr  Enabled")
	m.println("----- -------")
	for _, b := range m.debugger.GetBreakpoints() {
		m.printf("$%04X %v\n", b.Address, !b.Disabled)
	}
	return nil
}

func (m *Monitor) cmdBreakpointAdd(c cmd.Selection) error {
	if len(c.Args) < 1 {
		m.displayHelpText(c.Command)
		return nil
	}
	addr, err := m.parseAddr(c.Args[0])
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}
	m.debugger.AddBreakpoint(addr)
	m.printf("Breakpoint added at $%04X.\n", addr)
	return nil
}

func (m *Monitor) cmdBreakpointRemove(c cmd.Selection) error {
	if len(c.Args) < 1 {
		m.displayHelpText(c.Command)
		return nil
	}
	addr, err := m.parseAddr(c.Args[0])
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}
	if m.debugger.GetBreakpoint(addr) == nil {
		m.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}
	m.debugger.RemoveBreakpoint(addr)
	m.printf("Breakpoint at $%04X removed.\n", addr)
	return nil
}

func (m *Monitor) cmdBreakpointEnable(c cmd.Selection) error {
	return m.setBreakpointDisabled(c, false)
}

func (m *Monitor) cmdBreakpointDisable(c cmd.Selection) error {
	return m.setBreakpointDisabled(c, true)
}

func (m *Monitor) setBreakpointDisabled(c cmd.Selection, disabled bool) error {
	if len(c.Args) < 1 {
		m.displayHelpText(c.Command)
		return nil
	}
	addr, err := m.parseAddr(c.Args[0])
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}
	b := m.debugger.GetBreakpoint(addr)
	if b == nil {
		m.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}
	b.Disabled = disabled
	m.printf("Breakpoint at $%04X %s.\n", addr, enabledWord(disabled))
	return nil
}

func enabledWord(disabled bool) string {
	if disabled {
		return "disabled"
	}
	return "enabled"
}

// --- Data breakpoint commands ---

func (m *Monitor) cmdDataBreakpointList(c cmd.Selection) error {
	m.println("Addr  Enabled  Value")
	m.println("----- -------  -----")
	for _, b := range m.debugger.GetDataBreakpoints() {
		if b.Conditional {
			m.printf("$%04X %-5v    $%02X\n", b.Address, !b.Disabled, b.Value)
		} else {
			m.printf("$%04X %-5v    <none>\n", b.Address, !b.Disabled)
		}
	}
	return nil
}

func (m *Monitor) cmdDataBreakpointAdd(c cmd.Selection) error {
	if len(c.Args) < 1 {
		m.displayHelpText(c.Command)
		return nil
	}
	addr, err := m.parseAddr(c.Args[0])
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}
	if len(c.Args) > 1 {
		v, err := parseNumber(c.Args[1])
		if err != nil {
			m.printf("%v\n", err)
			return nil
		}
		m.debugger.AddConditionalDataBreakpoint(addr, byte(v))
		m.printf("Conditional data breakpoint added at $%04X for value $%02X.\n", addr, v)
	} else {
		m.debugger.AddDataBreakpoint(addr)
		m.printf("Data breakpoint added at $%04X.\n", addr)
	}
	return nil
}

func (m *Monitor) cmdDataBreakpointRemove(c cmd.Selection) error {
	if len(c.Args) < 1 {
		m.displayHelpText(c.Command)
		return nil
	}
	addr, err := m.parseAddr(c.Args[0])
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}
	if m.debugger.GetDataBreakpoint(addr) == nil {
		m.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}
	m.debugger.RemoveDataBreakpoint(addr)
	m.printf("Data breakpoint at $%04X removed.\n", addr)
	return nil
}

func (m *Monitor) cmdDataBreakpointEnable(c cmd.Selection) error {
	return m.setDataBreakpointDisabled(c, false)
}

func (m *Monitor) cmdDataBreakpointDisable(c cmd.Selection) error {
	return m.setDataBreakpointDisabled(c, true)
}

func (m *Monitor) setDataBreakpointDisabled(c cmd.Selection, disabled bool) error {
	if len(c.Args) < 1 {
		m.displayHelpText(c.Command)
		return nil
	}
	addr, err := m.parseAddr(c.Args[0])
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}
	b := m.debugger.GetDataBreakpoint(addr)
	if b == nil {
		m.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}
	b.Disabled = disabled
	m.printf("Data breakpoint at $%04X %s.\n", addr, enabledWord(disabled))
	return nil
}

// --- DebuggerHandler ---

func (m *Monitor) OnBreakpoint(c *cpu.CPU, b *cpu.Breakpoint) {
	m.state = stateBreakpoint
	m.sched.Break()
	m.printf("Breakpoint hit at $%04X.\n", b.Address)
	m.displayPC()
}

func (m *Monitor) OnDataBreakpoint(c *cpu.CPU, b *cpu.DataBreakpoint) {
	m.state = stateBreakpoint
	m.sched.Break()
	m.printf("Data breakpoint hit on address $%04X.\n", b.Address)
	m.displayPC()
}
