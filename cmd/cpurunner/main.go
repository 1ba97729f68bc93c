package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/rom"
)

type traceEntry struct {
	pc, op, i uint16
	v         [cpu.NumRegisters]byte
	sp        int
	quirks    cpu.Quirks
}

func (te traceEntry) String() string {
	s := fmt.Sprintf("PC=%03X OP=%04X %-16s", te.pc, te.op, cpu.DisassembleWith(te.op, te.quirks))
	for k, v := range te.v {
		s += fmt.Sprintf(" V%X=%02X", k, v)
	}
	return s + fmt.Sprintf(" I=%03X SP=%d", te.i, te.sp)
}

func main() {
	romPath := flag.String("rom", "", "path to ROM (.ch8/.sc8)")
	variantName := flag.String("variant", "", "instruction set: chip8 or schip (default: guess from file name)")
	steps := flag.Int("steps", 1_000_000, "max CPU steps to run")
	ipf := flag.Int("ipf", 0, "instructions between timer ticks (0: variant default)")
	trace := flag.Bool("trace", false, "print every executed instruction")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s, 2m); 0 disables")
	traceOnFail := flag.Bool("traceOnFail", false, "on a fault, print a recent trace window")
	traceWindow := flag.Int("traceWindow", 64, "number of recent instructions to include in 'traceOnFail' dump")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	r, err := rom.Load(*romPath)
	if err != nil {
		log.Fatalf("load rom: %v", err)
	}
	variant := rom.GuessVariant(*romPath)
	if *variantName != "" {
		if variant, err = cpu.ParseVariant(*variantName); err != nil {
			log.Fatal(err)
		}
	}
	tickEvery := *ipf
	if tickEvery <= 0 {
		tickEvery = emu.DefaultInstructionsPerFrame(variant)
	}

	c := cpu.New(nil, variant)
	if err := c.Load(r.Data); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("ROM %s: %d bytes crc32=%08X variant=%s\n", r.Name, r.Size(), r.CRC32, variant)

	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}
	window := max(*traceWindow, 1)
	ring := make([]traceEntry, window)
	ringIdx, ringFill := 0, 0

	done := func(n int) {
		fmt.Printf("\nDone: steps=%d elapsed=%s\n", n, time.Since(start).Truncate(time.Millisecond))
	}

	for i := 0; i < *steps; i++ {
		if *trace || *traceOnFail {
			te := traceEntry{pc: c.PC, op: c.Bus().ReadWord(c.PC), i: c.I, v: c.V, sp: c.SP(), quirks: c.Quirks()}
			if *trace {
				fmt.Println(te)
			}
			ring[ringIdx] = te
			ringIdx = (ringIdx + 1) % window
			if ringFill < window {
				ringFill++
			}
		}

		if err := c.Step(); err != nil {
			fmt.Printf("\nHalted: %v\n", err)
			var f *cpu.Fault
			if errors.As(err, &f) {
				fmt.Printf("Opcode %04X (%s) at %03X\n", f.Opcode, cpu.DisassembleWith(f.Opcode, c.Quirks()), f.PC)
			}
			if *traceOnFail && ringFill > 0 {
				fmt.Printf("\n--- recent trace (last %d instructions) ---\n", ringFill)
				startIdx := (ringIdx - ringFill + window) % window
				for j := 0; j < ringFill; j++ {
					fmt.Println(ring[(startIdx+j)%window])
				}
				fmt.Printf("--- end trace ---\n")
			}
			done(i + 1)
			os.Exit(1)
		}
		if c.Exited() {
			fmt.Printf("\nProgram exited.\n")
			done(i + 1)
			return
		}
		if (i+1)%tickEvery == 0 {
			c.TickTimers()
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("\nTimeout after %s.\n", time.Since(start).Truncate(time.Millisecond))
			done(i + 1)
			os.Exit(2)
		}
	}
	done(*steps)
}
