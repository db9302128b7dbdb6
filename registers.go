package main

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoFreeRegister is returned by ScratchPool.Alloc when every scratch
// register is busy. There is no spilling, so this ends code generation.
var ErrNoFreeRegister = errors.New("expression too complex: no free scratch register")

// Reg names a scratch register. The zero value is NoReg.
type Reg int

const NoReg Reg = 0

// scratchRegs lists the pool in allocation order. Index 0 is unused so
// that Reg values index it directly.
var scratchRegs = [...]struct{ name, low string }{
	{"", ""},
	{"%rbx", "%bl"},
	{"%r10", "%r10b"},
	{"%r11", "%r11b"},
	{"%r12", "%r12b"},
	{"%r13", "%r13b"},
	{"%r14", "%r14b"},
	{"%r15", "%r15b"},
}

// NumScratch is the size of the scratch pool.
const NumScratch = len(scratchRegs) - 1

func (r Reg) Valid() bool {
	return r > NoReg && int(r) <= NumScratch
}

// String returns the 64-bit assembly name of r.
func (r Reg) String() string {
	if !r.Valid() {
		return fmt.Sprintf("<reg %d>", int(r))
	}
	return scratchRegs[r].name
}

// Byte returns the name of the low byte of r.
func (r Reg) Byte() string {
	if !r.Valid() {
		return fmt.Sprintf("<reg %d>", int(r))
	}
	return scratchRegs[r].low
}

// ScratchPool tracks which scratch registers hold live values.
type ScratchPool struct {
	busy [NumScratch + 1]bool
	// maxUsed is the high-water mark of simultaneously busy registers.
	maxUsed int
}

func NewScratchPool() *ScratchPool {
	return &ScratchPool{}
}

// Alloc marks the first free register busy and returns it.
func (p *ScratchPool) Alloc() (Reg, error) {
	for r := Reg(1); int(r) <= NumScratch; r++ {
		if !p.busy[r] {
			p.busy[r] = true
			if n := p.InUse(); n > p.maxUsed {
				p.maxUsed = n
			}
			return r, nil
		}
	}
	return NoReg, ErrNoFreeRegister
}

// Free releases r. Freeing NoReg or a free register does nothing.
func (p *ScratchPool) Free(r Reg) {
	if r.Valid() {
		p.busy[r] = false
	}
}

func (p *ScratchPool) IsBusy(r Reg) bool {
	return r.Valid() && p.busy[r]
}

// InUse counts the busy registers.
func (p *ScratchPool) InUse() int {
	n := 0
	for _, b := range p.busy {
		if b {
			n++
		}
	}
	return n
}

func (p *ScratchPool) MaxUsed() int {
	return p.maxUsed
}

// LabelGen hands out compiler-generated labels. Labels are never reused.
type LabelGen struct {
	next int
}

// New returns a fresh label of the form .L<n>.
func (g *LabelGen) New() string {
	l := fmt.Sprintf(".L%d", g.next)
	g.next++
	return l
}

// Count is the number of labels handed out so far.
func (g *LabelGen) Count() int {
	return g.next
}
