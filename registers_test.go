package main

import (
	"testing"

	"github.com/nalgeon/be"
	"github.com/pkg/errors"
)

func TestScratchPoolAllocOrder(t *testing.T) {
	p := NewScratchPool()
	var names []string
	for i := 0; i < NumScratch; i++ {
		r, err := p.Alloc()
		be.Err(t, err, nil)
		names = append(names, r.String())
	}
	be.Equal(t, names, []string{"%rbx", "%r10", "%r11", "%r12", "%r13", "%r14", "%r15"})
	be.Equal(t, p.InUse(), NumScratch)
}

func TestScratchPoolExhaustion(t *testing.T) {
	p := NewScratchPool()
	for i := 0; i < NumScratch; i++ {
		_, err := p.Alloc()
		be.Err(t, err, nil)
	}
	r, err := p.Alloc()
	be.Equal(t, r, NoReg)
	be.True(t, errors.Cause(err) == ErrNoFreeRegister)
}

func TestScratchPoolFreeReuses(t *testing.T) {
	p := NewScratchPool()
	a, _ := p.Alloc()
	b, _ := p.Alloc()
	be.True(t, p.IsBusy(a))

	p.Free(a)
	be.True(t, !p.IsBusy(a))
	be.True(t, p.IsBusy(b))

	c, err := p.Alloc()
	be.Err(t, err, nil)
	be.Equal(t, c, a)
	be.Equal(t, p.MaxUsed(), 2)

	// Freeing NoReg or an already free register is a no-op.
	p.Free(NoReg)
	p.Free(c)
	p.Free(c)
	be.Equal(t, p.InUse(), 1)
	be.True(t, !p.IsBusy(NoReg))
}

func TestRegNames(t *testing.T) {
	be.Equal(t, Reg(1).Byte(), "%bl")
	be.Equal(t, Reg(7).Byte(), "%r15b")
	be.True(t, !NoReg.Valid())
	be.Equal(t, NoReg.String(), "<reg 0>")
	be.Equal(t, Reg(8).Byte(), "<reg 8>")
}

func TestLabelGen(t *testing.T) {
	var g LabelGen
	be.Equal(t, g.New(), ".L0")
	be.Equal(t, g.New(), ".L1")
	be.Equal(t, g.New(), ".L2")
	be.Equal(t, g.Count(), 3)
}
