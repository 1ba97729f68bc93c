package cpu

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrUnsupported    = errors.New("opcode not supported by variant")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
)

// Fault is a fatal execution error. The CPU stops at the faulting
// instruction and keeps returning the same Fault from Step.
type Fault struct {
	Opcode uint16
	PC     uint16 // address of the faulting instruction
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("cpu: opcode %04X at %03X: %v", f.Opcode, f.PC, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }
