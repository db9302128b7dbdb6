package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// argRegs are the System V integer argument registers in order.
var argRegs = [...]string{"%rdi", "%rsi", "%rdx", "%rcx", "%r8", "%r9"}

// calleeSaved are the scratch registers a function must preserve for its
// caller, in push order.
var calleeSaved = [...]string{"%rbx", "%r12", "%r13", "%r14", "%r15"}

// CodeGen lowers a resolved and type-checked program to x86-64 assembly in
// AT&T syntax.
type CodeGen struct {
	Symbols *SymbolTable
	labels  *LabelGen
	regs    *ScratchPool
	out     strings.Builder

	// String literals used by code, emitted together at the end.
	pool       []pooledString
	poolLabels map[string]string

	fn *Decl
	// depth counts the quadwords pushed since the prologue.
	depth int
	// maxRegs is the most scratch registers any function had busy at once.
	maxRegs int
}

type pooledString struct {
	label string
	text  string
}

// NewCodeGen returns a generator drawing labels from labels, which may be
// shared with other generators so that labels stay unique.
func NewCodeGen(symbols *SymbolTable, labels *LabelGen) *CodeGen {
	if labels == nil {
		labels = &LabelGen{}
	}
	return &CodeGen{
		Symbols:    symbols,
		labels:     labels,
		regs:       NewScratchPool(),
		poolLabels: make(map[string]string),
	}
}

// Generate emits the whole program and returns the assembly text.
func (cg *CodeGen) Generate(prog *Program) (string, error) {
	for _, d := range prog.Decls {
		var err error
		if d.Body != nil {
			err = cg.genFunction(d)
		} else {
			err = cg.genGlobal(d)
		}
		if err != nil {
			return cg.out.String(), err
		}
	}
	cg.genStringPool()
	return cg.out.String(), nil
}

// MaxRegisters reports the register pressure of the generated code.
func (cg *CodeGen) MaxRegisters() int {
	return cg.maxRegs
}

func (cg *CodeGen) emit(format string, args ...any) {
	fmt.Fprintf(&cg.out, format+"\n", args...)
}

func (cg *CodeGen) alloc() (Reg, error) {
	return cg.regs.Alloc()
}

func (cg *CodeGen) push(operand string) {
	cg.emit("PUSHQ %s", operand)
	cg.depth++
}

func (cg *CodeGen) pop(operand string) {
	cg.emit("POPQ %s", operand)
	cg.depth--
}

// beginCall saves the caller-saved scratch registers and pads the stack so
// that it is 16-byte aligned at the CALL once n more quadwords are pushed.
// It returns the padding in quadwords.
func (cg *CodeGen) beginCall(n int) int {
	cg.push("%r10")
	cg.push("%r11")
	if (cg.depth+n)%2 == 0 {
		return 0
	}
	cg.emit("SUBQ $8, %%rsp")
	cg.depth++
	return 1
}

// endCall drops quads quadwords of arguments and padding, then restores the
// caller-saved scratch registers.
func (cg *CodeGen) endCall(quads int) {
	if quads > 0 {
		cg.emit("ADDQ $%d, %%rsp", 8*quads)
		cg.depth -= quads
	}
	cg.pop("%r11")
	cg.pop("%r10")
}

// stringLabel returns the pool label for a string literal.
func (cg *CodeGen) stringLabel(s string) string {
	if l, ok := cg.poolLabels[s]; ok {
		return l
	}
	l := cg.labels.New()
	cg.poolLabels[s] = l
	cg.pool = append(cg.pool, pooledString{label: l, text: s})
	return l
}

func (cg *CodeGen) genStringPool() {
	if len(cg.pool) == 0 {
		return
	}
	cg.emit(".data")
	for _, s := range cg.pool {
		cg.emit("%s: .string \"%s\"", s.label, escapeText(s.text, '"'))
	}
}

func (cg *CodeGen) genGlobal(d *Decl) error {
	t := d.Type
	switch {
	case t.Is(TypeFunction), t.Is(TypeVoid):
		// Prototypes have no storage.
		return nil

	case t.Is(TypeString):
		cg.emit(".data")
		if d.Value == nil {
			cg.emit("%s: .quad 0", d.Name)
			return nil
		}
		label := cg.labels.New()
		cg.emit("%s: .string \"%s\"", label, escapeText(constString(d.Value), '"'))
		cg.emit("%s: .quad %s", d.Name, label)
		return nil

	case t.Is(TypeArray):
		n, _ := t.ArrayLength()
		cg.emit(".data")
		cg.emit("%s:", d.Name)
		if d.Value == nil || d.Value.Kind != ExprInitList {
			cg.emit(".zero %d", 8*n)
			return nil
		}
		for _, elem := range d.Value.Elems {
			cg.emit(".quad %s", cg.constValue(elem))
		}
		if extra := n - len(d.Value.Elems); extra > 0 {
			cg.emit(".zero %d", 8*extra)
		}
		return nil

	default:
		value := "0"
		if d.Value != nil {
			value = cg.constValue(d.Value)
		}
		cg.emit(".data")
		cg.emit("%s: .quad %s", d.Name, value)
		return nil
	}
}

// constValue renders a constant initializer as a .quad operand. Anything
// that is not a constant was already reported by the type checker and is
// laid out as 0.
func (cg *CodeGen) constValue(e *Expr) string {
	switch e.Kind {
	case ExprIntegerLiteral, ExprBooleanLiteral, ExprCharLiteral:
		return strconv.FormatInt(e.Integer, 10)
	case ExprNegate:
		if e.Left.Kind == ExprIntegerLiteral {
			return strconv.FormatInt(-e.Left.Integer, 10)
		}
	case ExprGroup:
		return cg.constValue(e.Left)
	case ExprStringLiteral:
		return cg.stringLabel(e.Str)
	}
	return "0"
}

func constString(e *Expr) string {
	for e.Kind == ExprGroup {
		e = e.Left
	}
	return e.Str
}

// frameSize is the number of bytes reserved below the saved %rbp. It keeps
// %rsp 16-byte aligned once the callee-saved registers are pushed.
func frameSize(slots int) int {
	if slots%2 == 1 {
		return slots * 8
	}
	return (slots + 1) * 8
}

func (cg *CodeGen) genFunction(d *Decl) error {
	cg.fn = d
	cg.regs = NewScratchPool()
	cg.depth = 0
	defer func() { cg.fn = nil }()

	cg.emit(".text")
	cg.emit(".global %s", d.Name)
	cg.emit("%s:", d.Name)
	cg.emit("PUSHQ %%rbp")
	cg.emit("MOVQ %%rsp, %%rbp")
	cg.emit("SUBQ $%d, %%rsp", frameSize(d.FrameSlots))
	for _, r := range calleeSaved {
		cg.emit("PUSHQ %s", r)
	}

	params := d.Type.Params
	for k, p := range params {
		slot := fmt.Sprintf("-%d(%%rbp)", 8*(k+1))
		if sym := cg.Symbols.Get(p.Symbol); sym != nil {
			slot = sym.Location()
		}
		if k < len(argRegs) {
			cg.emit("MOVQ %s, %s", argRegs[k], slot)
			continue
		}
		cg.emit("MOVQ %d(%%rbp), %%rax", 16+8*(len(params)-1-k))
		cg.emit("MOVQ %%rax, %s", slot)
	}

	if err := cg.genStmt(d.Body); err != nil {
		return errors.Wrapf(err, "function %s", d.Name)
	}

	cg.maxRegs = max(cg.maxRegs, cg.regs.MaxUsed())

	cg.emit("%s_epilogue:", d.Name)
	for i := len(calleeSaved) - 1; i >= 0; i-- {
		cg.emit("POPQ %s", calleeSaved[i])
	}
	cg.emit("MOVQ %%rbp, %%rsp")
	cg.emit("POPQ %%rbp")
	cg.emit("RET")
	return nil
}

func (cg *CodeGen) genStmt(s *Stmt) error {
	if s == nil {
		return nil
	}
	switch s.Kind {
	case StmtDecl:
		return cg.genLocal(s.Decl)

	case StmtExpr:
		if err := cg.genExpr(s.Expr); err != nil {
			return err
		}
		cg.regs.Free(s.Expr.Reg)

	case StmtIfElse:
		elseLabel := cg.labels.New()
		doneLabel := cg.labels.New()
		if err := cg.genValue(s.Cond); err != nil {
			return err
		}
		cg.emit("CMPQ $0, %s", s.Cond.Reg)
		cg.regs.Free(s.Cond.Reg)
		cg.emit("JE %s", elseLabel)
		if err := cg.genStmt(s.Body); err != nil {
			return err
		}
		cg.emit("JMP %s", doneLabel)
		cg.emit("%s:", elseLabel)
		if err := cg.genStmt(s.Else); err != nil {
			return err
		}
		cg.emit("%s:", doneLabel)

	case StmtFor:
		topLabel := cg.labels.New()
		doneLabel := cg.labels.New()
		if err := cg.genDiscard(s.Init); err != nil {
			return err
		}
		cg.emit("%s:", topLabel)
		if s.Cond != nil {
			if err := cg.genValue(s.Cond); err != nil {
				return err
			}
			cg.emit("CMPQ $0, %s", s.Cond.Reg)
			cg.regs.Free(s.Cond.Reg)
			cg.emit("JE %s", doneLabel)
		}
		if err := cg.genStmt(s.Body); err != nil {
			return err
		}
		if err := cg.genDiscard(s.Next); err != nil {
			return err
		}
		cg.emit("JMP %s", topLabel)
		cg.emit("%s:", doneLabel)

	case StmtPrint:
		for _, e := range s.Exprs {
			if err := cg.genValue(e); err != nil {
				return err
			}
			pad := cg.beginCall(0)
			cg.emit("MOVQ %s, %%rdi", e.Reg)
			cg.emit("CALL %s", printRoutine(e.Type))
			cg.endCall(pad)
			cg.regs.Free(e.Reg)
		}

	case StmtReturn:
		if s.Expr != nil {
			if err := cg.genExpr(s.Expr); err != nil {
				return err
			}
			if !cg.fn.Type.Subtype.Is(TypeVoid) && s.Expr.Reg != NoReg {
				cg.emit("MOVQ %s, %%rax", s.Expr.Reg)
			}
			cg.regs.Free(s.Expr.Reg)
		}
		cg.emit("JMP %s_epilogue", cg.fn.Name)

	case StmtBlock:
		for _, child := range s.Stmts {
			if err := cg.genStmt(child); err != nil {
				return err
			}
		}
	}
	return nil
}

// genValue is genExpr for an operand. A void operand was already reported
// and reads as 0.
func (cg *CodeGen) genValue(e *Expr) error {
	if err := cg.genExpr(e); err != nil {
		return err
	}
	if e.Reg != NoReg {
		return nil
	}
	r, err := cg.alloc()
	if err != nil {
		return err
	}
	cg.emit("MOVQ $0, %s", r)
	e.Reg = r
	return nil
}

// genDiscard evaluates an optional expression for its side effects.
func (cg *CodeGen) genDiscard(e *Expr) error {
	if e == nil {
		return nil
	}
	if err := cg.genExpr(e); err != nil {
		return err
	}
	cg.regs.Free(e.Reg)
	return nil
}

func printRoutine(t *Type) string {
	switch {
	case t.Is(TypeBoolean):
		return "print_boolean"
	case t.Is(TypeChar):
		return "print_character"
	case t.Is(TypeString):
		return "print_string"
	default:
		return "print_integer"
	}
}

// genLocal stores the initializer of a local declaration. Locals without an
// initializer are left as they are.
func (cg *CodeGen) genLocal(d *Decl) error {
	if d.Body != nil || d.Value == nil {
		return nil
	}
	sym := cg.Symbols.Get(d.Symbol)
	if sym == nil {
		return nil
	}

	if !d.Type.Is(TypeArray) {
		if err := cg.genValue(d.Value); err != nil {
			return err
		}
		cg.emit("MOVQ %s, %s", d.Value.Reg, sym.Location())
		cg.regs.Free(d.Value.Reg)
		return nil
	}

	n, _ := d.Type.ArrayLength()
	if d.Value.Kind == ExprInitList {
		for k, elem := range d.Value.Elems {
			if k >= n {
				break
			}
			if err := cg.genValue(elem); err != nil {
				return err
			}
			cg.emit("MOVQ %s, %s", elem.Reg, localElement(sym, n, k))
			cg.regs.Free(elem.Reg)
		}
		return nil
	}

	// Copy from another array.
	if err := cg.genValue(d.Value); err != nil {
		return err
	}
	dst, err := cg.alloc()
	if err != nil {
		return err
	}
	cg.emit("LEAQ %s, %s", localElement(sym, n, 0), dst)
	if err := cg.copyArray(dst, d.Value.Reg, n); err != nil {
		return err
	}
	cg.regs.Free(dst)
	cg.regs.Free(d.Value.Reg)
	return nil
}

// localElement addresses element k of a local array of length n. Element 0
// is at the lowest address so that the array can be indexed upwards from
// its base.
func localElement(sym *Symbol, n, k int) string {
	return fmt.Sprintf("-%d(%%rbp)", 8*(sym.Ordinal+n-k))
}

// copyArray copies n quadwords from the array at src to the array at dst.
func (cg *CodeGen) copyArray(dst, src Reg, n int) error {
	tmp, err := cg.alloc()
	if err != nil {
		return err
	}
	for k := 0; k < n; k++ {
		cg.emit("MOVQ %d(%s), %s", 8*k, src, tmp)
		cg.emit("MOVQ %s, %d(%s)", tmp, 8*k, dst)
	}
	cg.regs.Free(tmp)
	return nil
}

// genAddress loads the address of an array variable into a fresh register.
func (cg *CodeGen) genAddress(sym *Symbol) (Reg, error) {
	r, err := cg.alloc()
	if err != nil {
		return NoReg, err
	}
	switch sym.Kind {
	case SymbolGlobal:
		cg.emit("LEAQ %s(%%rip), %s", sym.Name, r)
	case SymbolParam:
		cg.emit("MOVQ %s, %s", sym.Location(), r)
	default:
		n, _ := sym.Type.ArrayLength()
		cg.emit("LEAQ %s, %s", localElement(sym, n, 0), r)
	}
	return r, nil
}

func stripGroups(e *Expr) *Expr {
	for e != nil && e.Kind == ExprGroup {
		e = e.Left
	}
	return e
}

// genExpr evaluates e, leaving its value in e.Reg. Expressions of void
// type leave NoReg.
func (cg *CodeGen) genExpr(e *Expr) error {
	switch e.Kind {
	case ExprIntegerLiteral, ExprBooleanLiteral, ExprCharLiteral:
		r, err := cg.alloc()
		if err != nil {
			return err
		}
		cg.emit("MOVQ $%d, %s", e.Integer, r)
		e.Reg = r

	case ExprStringLiteral:
		r, err := cg.alloc()
		if err != nil {
			return err
		}
		cg.emit("LEAQ %s(%%rip), %s", cg.stringLabel(e.Str), r)
		e.Reg = r

	case ExprName:
		return cg.genName(e)

	case ExprGroup:
		if err := cg.genExpr(e.Left); err != nil {
			return err
		}
		e.Reg = e.Left.Reg

	case ExprAssign:
		return cg.genAssign(e)

	case ExprOr, ExprAnd:
		return cg.genLogical(e)

	case ExprEq, ExprNe, ExprLt, ExprLe, ExprGt, ExprGe:
		return cg.genCompare(e)

	case ExprAdd, ExprSub, ExprMul, ExprDiv, ExprMod, ExprExponent:
		return cg.genArithmetic(e)

	case ExprNot, ExprNegate:
		if err := cg.genValue(e.Left); err != nil {
			return err
		}
		e.Reg = e.Left.Reg
		if e.Kind == ExprNot {
			cg.emit("XORQ $1, %s", e.Reg)
		} else {
			cg.emit("NEGQ %s", e.Reg)
		}

	case ExprInc, ExprDec:
		return cg.genIncDec(e)

	case ExprSubscript:
		base, index, err := cg.genIndexOperands(e)
		if err != nil {
			return err
		}
		if isStringBase(e) {
			cg.emit("MOVZBQ (%s,%s,1), %s", base, index, base)
		} else {
			cg.emit("MOVQ (%s,%s,8), %s", base, index, base)
		}
		cg.regs.Free(index)
		e.Reg = base

	case ExprCall:
		return cg.genCall(e)

	case ExprInitList:
		// Only declarations and array assignments store a list. Anywhere
		// else it was reported and reads as 0.
		r, err := cg.alloc()
		if err != nil {
			return err
		}
		cg.emit("MOVQ $0, %s", r)
		e.Reg = r

	default:
		return errors.Errorf("cannot generate code for %s", FormatExpr(e))
	}
	return nil
}

func (cg *CodeGen) genName(e *Expr) error {
	sym := cg.Symbols.Get(e.Symbol)
	if sym == nil {
		// Reported by the resolver.
		r, err := cg.alloc()
		if err != nil {
			return err
		}
		cg.emit("MOVQ $0, %s", r)
		e.Reg = r
		return nil
	}

	switch {
	case sym.Type.Is(TypeArray):
		r, err := cg.genAddress(sym)
		if err != nil {
			return err
		}
		e.Reg = r
	case sym.Type.Is(TypeFunction):
		r, err := cg.alloc()
		if err != nil {
			return err
		}
		cg.emit("LEAQ %s(%%rip), %s", sym.Name, r)
		e.Reg = r
	default:
		r, err := cg.alloc()
		if err != nil {
			return err
		}
		cg.emit("MOVQ %s, %s", sym.Location(), r)
		e.Reg = r
	}
	return nil
}

func isStringBase(subscript *Expr) bool {
	return subscript.Left.Type.Is(TypeString)
}

// genIndexOperands evaluates the base address and the index of a subscript.
func (cg *CodeGen) genIndexOperands(e *Expr) (base, index Reg, err error) {
	if err := cg.genValue(e.Left); err != nil {
		return NoReg, NoReg, err
	}
	if err := cg.genValue(e.Right); err != nil {
		return NoReg, NoReg, err
	}
	return e.Left.Reg, e.Right.Reg, nil
}

func elementOperand(base, index Reg, str bool) string {
	if str {
		return fmt.Sprintf("(%s,%s,1)", base, index)
	}
	return fmt.Sprintf("(%s,%s,8)", base, index)
}

func (cg *CodeGen) genAssign(e *Expr) error {
	target := stripGroups(e.Left)

	if target.Kind == ExprSubscript {
		base, index, err := cg.genIndexOperands(target)
		if err != nil {
			return err
		}
		if err := cg.genValue(e.Right); err != nil {
			return err
		}
		if isStringBase(target) {
			cg.emit("MOVB %s, %s", e.Right.Reg.Byte(), elementOperand(base, index, true))
		} else {
			cg.emit("MOVQ %s, %s", e.Right.Reg, elementOperand(base, index, false))
		}
		cg.regs.Free(base)
		cg.regs.Free(index)
		e.Reg = e.Right.Reg
		return nil
	}

	sym := cg.Symbols.Get(target.Symbol)
	if target.Kind == ExprName && sym != nil && sym.Type.Is(TypeArray) && e.Right.Kind == ExprInitList {
		return cg.genStoreList(e, sym)
	}

	if err := cg.genValue(e.Right); err != nil {
		return err
	}
	e.Reg = e.Right.Reg
	if target.Kind != ExprName || sym == nil {
		return nil
	}
	if sym.Type.Is(TypeArray) {
		n, ok := sym.Type.ArrayLength()
		if !ok {
			n, _ = e.Right.Type.ArrayLength()
		}
		dst, err := cg.genAddress(sym)
		if err != nil {
			return err
		}
		if err := cg.copyArray(dst, e.Right.Reg, n); err != nil {
			return err
		}
		cg.regs.Free(dst)
		return nil
	}
	cg.emit("MOVQ %s, %s", e.Right.Reg, sym.Location())
	return nil
}

// genStoreList assigns an initializer list to the array sym element by
// element. The value of the assignment is the address of the array.
func (cg *CodeGen) genStoreList(e *Expr, sym *Symbol) error {
	n, ok := sym.Type.ArrayLength()
	if !ok {
		n = len(e.Right.Elems)
	}
	dst, err := cg.genAddress(sym)
	if err != nil {
		return err
	}
	for k, elem := range e.Right.Elems {
		if k >= n {
			break
		}
		if err := cg.genValue(elem); err != nil {
			return err
		}
		cg.emit("MOVQ %s, %d(%s)", elem.Reg, 8*k, dst)
		cg.regs.Free(elem.Reg)
	}
	e.Reg = dst
	return nil
}

// genLogical short-circuits: the right operand is only evaluated when the
// left one does not decide the result.
func (cg *CodeGen) genLogical(e *Expr) error {
	shortLabel := cg.labels.New()
	doneLabel := cg.labels.New()

	if err := cg.genValue(e.Left); err != nil {
		return err
	}
	left := e.Left.Reg
	cg.emit("CMPQ $0, %s", left)
	shortValue := 0
	if e.Kind == ExprAnd {
		cg.emit("JE %s", shortLabel)
	} else {
		cg.emit("JNE %s", shortLabel)
		shortValue = 1
	}

	if err := cg.genValue(e.Right); err != nil {
		return err
	}
	cg.emit("MOVQ %s, %s", e.Right.Reg, left)
	cg.regs.Free(e.Right.Reg)
	cg.emit("JMP %s", doneLabel)
	cg.emit("%s:", shortLabel)
	cg.emit("MOVQ $%d, %s", shortValue, left)
	cg.emit("%s:", doneLabel)
	e.Reg = left
	return nil
}

var compareJumps = map[ExprKind]string{
	ExprEq: "JE",
	ExprNe: "JNE",
	ExprLt: "JL",
	ExprLe: "JLE",
	ExprGt: "JG",
	ExprGe: "JGE",
}

func (cg *CodeGen) genCompare(e *Expr) error {
	if err := cg.genValue(e.Left); err != nil {
		return err
	}
	if err := cg.genValue(e.Right); err != nil {
		return err
	}
	left, right := e.Left.Reg, e.Right.Reg

	if (e.Kind == ExprEq || e.Kind == ExprNe) && e.Left.Type.Is(TypeString) {
		pad := cg.beginCall(0)
		cg.emit("MOVQ %s, %%rdi", left)
		cg.emit("MOVQ %s, %%rsi", right)
		cg.emit("CALL stringCompare")
		cg.endCall(pad)
		cg.emit("CMPQ $0, %%rax")
	} else {
		cg.emit("CMPQ %s, %s", right, left)
	}
	cg.regs.Free(right)

	trueLabel := cg.labels.New()
	doneLabel := cg.labels.New()
	cg.emit("%s %s", compareJumps[e.Kind], trueLabel)
	cg.emit("MOVQ $0, %s", left)
	cg.emit("JMP %s", doneLabel)
	cg.emit("%s:", trueLabel)
	cg.emit("MOVQ $1, %s", left)
	cg.emit("%s:", doneLabel)
	e.Reg = left
	return nil
}

func (cg *CodeGen) genArithmetic(e *Expr) error {
	if err := cg.genValue(e.Left); err != nil {
		return err
	}
	if err := cg.genValue(e.Right); err != nil {
		return err
	}
	left, right := e.Left.Reg, e.Right.Reg

	switch e.Kind {
	case ExprAdd:
		cg.emit("ADDQ %s, %s", right, left)
	case ExprSub:
		cg.emit("SUBQ %s, %s", right, left)
	case ExprMul:
		cg.emit("MOVQ %s, %%rax", left)
		cg.emit("IMULQ %s", right)
		cg.emit("MOVQ %%rax, %s", left)
	case ExprDiv, ExprMod:
		cg.emit("MOVQ %s, %%rax", left)
		cg.emit("CQTO")
		cg.emit("IDIVQ %s", right)
		if e.Kind == ExprDiv {
			cg.emit("MOVQ %%rax, %s", left)
		} else {
			cg.emit("MOVQ %%rdx, %s", left)
		}
	case ExprExponent:
		// The exponent register counts down to zero.
		loopLabel := cg.labels.New()
		doneLabel := cg.labels.New()
		cg.emit("MOVQ $1, %%rax")
		cg.emit("%s:", loopLabel)
		cg.emit("CMPQ $0, %s", right)
		cg.emit("JLE %s", doneLabel)
		cg.emit("IMULQ %s", left)
		cg.emit("DECQ %s", right)
		cg.emit("JMP %s", loopLabel)
		cg.emit("%s:", doneLabel)
		cg.emit("MOVQ %%rax, %s", left)
	}
	cg.regs.Free(right)
	e.Reg = left
	return nil
}

// genIncDec yields the old value and updates the variable in place.
func (cg *CodeGen) genIncDec(e *Expr) error {
	op := "INCQ"
	if e.Kind == ExprDec {
		op = "DECQ"
	}
	target := stripGroups(e.Left)

	if target.Kind == ExprSubscript {
		base, index, err := cg.genIndexOperands(target)
		if err != nil {
			return err
		}
		r, err := cg.alloc()
		if err != nil {
			return err
		}
		mem := elementOperand(base, index, false)
		cg.emit("MOVQ %s, %s", mem, r)
		cg.emit("%s %s", op, mem)
		cg.regs.Free(base)
		cg.regs.Free(index)
		e.Reg = r
		return nil
	}

	r, err := cg.alloc()
	if err != nil {
		return err
	}
	e.Reg = r
	sym := cg.Symbols.Get(target.Symbol)
	if target.Kind != ExprName || sym == nil {
		cg.emit("MOVQ $0, %s", r)
		return nil
	}
	cg.emit("MOVQ %s, %s", sym.Location(), r)
	cg.emit("%s %s", op, sym.Location())
	return nil
}

// genCall pushes each argument as soon as it is evaluated, so a call needs
// no more scratch registers than its most complex argument. Arguments past
// the sixth stay on the stack with the last one on top. The first six are
// then loaded into their registers.
func (cg *CodeGen) genCall(e *Expr) error {
	n := len(e.Args)
	pad := cg.beginCall(n)
	for _, arg := range e.Args {
		if err := cg.genValue(arg); err != nil {
			return err
		}
		cg.push(arg.Reg.String())
		cg.regs.Free(arg.Reg)
	}
	for k := 0; k < n && k < len(argRegs); k++ {
		cg.emit("MOVQ %d(%%rsp), %s", 8*(n-1-k), argRegs[k])
	}

	cg.emit("CALL %s", e.Left.Name)
	cg.endCall(n + pad)

	e.Reg = NoReg
	if sym := cg.Symbols.Get(e.Left.Symbol); sym != nil && sym.Type.Is(TypeFunction) && sym.Type.Subtype.Is(TypeVoid) {
		return nil
	}
	r, err := cg.alloc()
	if err != nil {
		return err
	}
	cg.emit("MOVQ %%rax, %s", r)
	e.Reg = r
	return nil
}
