package codegen

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// LocalVar is one local variable slot a subroutine must reserve.
type LocalVar struct {
	Name string
	Size uint32
}

// Subroutine is one compiled function: its parameter names in call
// order (with a synthetic leading "_result" slot when non-void), its
// locals, and its instruction list.
type Subroutine struct {
	Name   string
	Params []string
	Locals []LocalVar
	Code   []Instruction
}

func (s *Subroutine) String() string {
	var sb strings.Builder
	sb.WriteString("sub " + s.Name + "(" + strings.Join(s.Params, ", ") + ")\n")
	for _, l := range s.Locals {
		sb.WriteString("  local " + l.Name + " " + strconv.Itoa(int(l.Size)) + "\n")
	}
	for _, in := range s.Code {
		sb.WriteString("  " + in.String() + "\n")
	}
	return sb.String()
}

// Program is the full compiled unit: every subroutine plus a build id
// stamped once per compilation, so two builds of identical source are
// distinguishable in build logs and artifact caches.
type Program struct {
	BuildID     uuid.UUID
	Subroutines []*Subroutine
}

func (p *Program) String() string {
	var sb strings.Builder
	sb.WriteString("; build " + p.BuildID.String() + "\n")
	for _, s := range p.Subroutines {
		sb.WriteString(s.String())
	}
	return sb.String()
}
