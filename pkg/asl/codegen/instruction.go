// Package codegen implements CodePass: the tree walk that, assuming a
// tree already validated by sema.TypeCheckPass, emits three-address
// code with per-function temporaries and labels.
package codegen

import "strings"

// Opcode is the tagged variant discriminator for Instruction, per the
// opcode set in SPEC_FULL.md / spec.md §6.
type Opcode string

const (
	OpLOAD   Opcode = "LOAD"
	OpILOAD  Opcode = "ILOAD"
	OpFLOAD  Opcode = "FLOAD"
	OpCHLOAD Opcode = "CHLOAD"
	OpLOADX  Opcode = "LOADX"
	OpXLOAD  Opcode = "XLOAD"
	OpALOAD  Opcode = "ALOAD"

	OpADD Opcode = "ADD"
	OpSUB Opcode = "SUB"
	OpMUL Opcode = "MUL"
	OpDIV Opcode = "DIV"

	OpFADD Opcode = "FADD"
	OpFSUB Opcode = "FSUB"
	OpFMUL Opcode = "FMUL"
	OpFDIV Opcode = "FDIV"

	OpNEG   Opcode = "NEG"
	OpFNEG  Opcode = "FNEG"
	OpNOT   Opcode = "NOT"
	OpFLOAT Opcode = "FLOAT"

	OpEQ Opcode = "EQ"
	OpLT Opcode = "LT"
	OpLE Opcode = "LE"

	OpFEQ Opcode = "FEQ"
	OpFLT Opcode = "FLT"
	OpFLE Opcode = "FLE"

	OpAND Opcode = "AND"
	OpOR  Opcode = "OR"

	OpLABEL Opcode = "LABEL"
	OpUJUMP Opcode = "UJUMP"
	OpFJUMP Opcode = "FJUMP"

	OpPUSH   Opcode = "PUSH"
	OpPOP    Opcode = "POP"
	OpCALL   Opcode = "CALL"
	OpRETURN Opcode = "RETURN"

	OpTRAP Opcode = "TRAP"

	OpREADI Opcode = "READI"
	OpREADF Opcode = "READF"
	OpREADC Opcode = "READC"

	OpWRITEI  Opcode = "WRITEI"
	OpWRITEF  Opcode = "WRITEF"
	OpWRITEC  Opcode = "WRITEC"
	OpWRITELN Opcode = "WRITELN"
)

// Instruction is one three-address-code instruction: an opcode plus its
// ordered operand list, rendered as "OP a, b, c".
type Instruction struct {
	Op   Opcode
	Args []string
}

func (i Instruction) String() string {
	if len(i.Args) == 0 {
		return string(i.Op)
	}
	return string(i.Op) + " " + strings.Join(i.Args, ", ")
}

func inst(op Opcode, args ...string) Instruction { return Instruction{Op: op, Args: args} }

func LOAD(d, s string) Instruction           { return inst(OpLOAD, d, s) }
func ILOAD(d, n string) Instruction          { return inst(OpILOAD, d, n) }
func FLOAD(d, x string) Instruction          { return inst(OpFLOAD, d, x) }
func CHLOAD(d, c string) Instruction         { return inst(OpCHLOAD, d, c) }
func LOADX(d, base, off string) Instruction  { return inst(OpLOADX, d, base, off) }
func XLOAD(base, off, s string) Instruction  { return inst(OpXLOAD, base, off, s) }
func ALOAD(d, name string) Instruction       { return inst(OpALOAD, d, name) }

func ADD(d, a, b string) Instruction { return inst(OpADD, d, a, b) }
func SUB(d, a, b string) Instruction { return inst(OpSUB, d, a, b) }
func MUL(d, a, b string) Instruction { return inst(OpMUL, d, a, b) }
func DIV(d, a, b string) Instruction { return inst(OpDIV, d, a, b) }

func FADD(d, a, b string) Instruction { return inst(OpFADD, d, a, b) }
func FSUB(d, a, b string) Instruction { return inst(OpFSUB, d, a, b) }
func FMUL(d, a, b string) Instruction { return inst(OpFMUL, d, a, b) }
func FDIV(d, a, b string) Instruction { return inst(OpFDIV, d, a, b) }

func NEG(d, a string) Instruction   { return inst(OpNEG, d, a) }
func FNEG(d, a string) Instruction  { return inst(OpFNEG, d, a) }
func NOT(d, a string) Instruction   { return inst(OpNOT, d, a) }
func FLOATOP(d, a string) Instruction { return inst(OpFLOAT, d, a) }

func EQ(d, a, b string) Instruction { return inst(OpEQ, d, a, b) }
func LT(d, a, b string) Instruction { return inst(OpLT, d, a, b) }
func LE(d, a, b string) Instruction { return inst(OpLE, d, a, b) }

func FEQ(d, a, b string) Instruction { return inst(OpFEQ, d, a, b) }
func FLT(d, a, b string) Instruction { return inst(OpFLT, d, a, b) }
func FLE(d, a, b string) Instruction { return inst(OpFLE, d, a, b) }

func AND(d, a, b string) Instruction { return inst(OpAND, d, a, b) }
func OR(d, a, b string) Instruction  { return inst(OpOR, d, a, b) }

func LABEL(name string) Instruction { return inst(OpLABEL, name) }
func UJUMP(name string) Instruction { return inst(OpUJUMP, name) }
func FJUMP(cond, name string) Instruction { return inst(OpFJUMP, cond, name) }

func TRAP() Instruction { return inst(OpTRAP) }

func PUSH(v ...string) Instruction { return inst(OpPUSH, v...) }
func POP(d ...string) Instruction  { return inst(OpPOP, d...) }
func CALL(name string) Instruction { return inst(OpCALL, name) }
func RETURN() Instruction          { return inst(OpRETURN) }

func READI(d string) Instruction { return inst(OpREADI, d) }
func READF(d string) Instruction { return inst(OpREADF, d) }
func READC(d string) Instruction { return inst(OpREADC, d) }

func WRITEI(s string) Instruction { return inst(OpWRITEI, s) }
func WRITEF(s string) Instruction { return inst(OpWRITEF, s) }
func WRITEC(s string) Instruction { return inst(OpWRITEC, s) }
func WRITELN() Instruction        { return inst(OpWRITELN) }
