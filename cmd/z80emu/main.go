// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/retrocore/z80emu/console"
	"github.com/retrocore/z80emu/cpu"
	"github.com/retrocore/z80emu/monitor"
)

func main() {
	var modelFlag string
	var loadFile string
	var loadAddr string
	var targetHz uint64
	var withConsole bool

	root := &cobra.Command{
		Use:   "z80emu",
		Short: "Instruction-accurate Z80/8080 emulator core",
	}

	newMonitor := func() (*monitor.Monitor, error) {
		model, err := parseModel(modelFlag)
		if err != nil {
			return nil, err
		}
		m := monitor.New(model)

		if loadFile != "" {
			addr, err := parseAddr(loadAddr)
			if err != nil {
				return nil, err
			}
			data, err := os.ReadFile(loadFile)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", loadFile, err)
			}
			m.Mem().Load(data, addr, true)
			m.CPU().Reg.PC = addr
		}

		if withConsole {
			con := console.New(os.Stdout)
			if err := con.Start(); err != nil {
				return nil, fmt.Errorf("console: %w", err)
			}
			con.Install(m.Ports(), 0, 1)
		}

		return m, nil
	}

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Start the interactive front-panel command loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMonitor()
			if err != nil {
				return err
			}

			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			go func() {
				for range c {
					m.Break()
				}
			}()

			m.RunCommands(os.Stdin, os.Stdout, true)
			return nil
		},
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a loaded image to completion (HALT, trap, or Ctrl-C)",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMonitor()
			if err != nil {
				return err
			}

			script := fmt.Sprintf("set targethz %d\nrun\nquit\n", targetHz)
			m.RunCommands(strings.NewReader(script), os.Stdout, false)
			return nil
		},
	}

	for _, c := range []*cobra.Command{monitorCmd, runCmd} {
		c.Flags().StringVar(&modelFlag, "model", "z80", "CPU model to emulate (z80 or 8080)")
		c.Flags().StringVar(&loadFile, "load", "", "binary image to load before starting")
		c.Flags().StringVar(&loadAddr, "addr", "$0000", "address to load the image at")
		c.Flags().Uint64Var(&targetHz, "hz", 0, "clock rate to throttle against (0 = unthrottled)")
		c.Flags().BoolVar(&withConsole, "console", false, "attach a raw-terminal console on ports 0/1")
	}

	root.AddCommand(monitorCmd, runCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func parseModel(s string) (cpu.Model, error) {
	switch strings.ToLower(s) {
	case "z80", "":
		return cpu.Z80, nil
	case "8080", "i8080":
		return cpu.I8080, nil
	default:
		return 0, fmt.Errorf("unknown model %q (want z80 or 8080)", s)
	}
}

func parseAddr(s string) (uint16, error) {
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint16(v), nil
}
