package main

// ExprKind represents the different expression node kinds
type ExprKind int

const (
	ExprIntegerLiteral ExprKind = iota
	ExprBooleanLiteral
	ExprCharLiteral
	ExprStringLiteral
	ExprName
	ExprAssign
	ExprOr
	ExprAnd
	ExprEq
	ExprNe
	ExprLt
	ExprLe
	ExprGt
	ExprGe
	ExprAdd
	ExprSub
	ExprMul
	ExprDiv
	ExprMod
	ExprExponent
	ExprInc
	ExprDec
	ExprNot
	ExprNegate
	ExprSubscript
	ExprCall
	ExprGroup
	ExprInitList
)

// binaryOps maps the spelling of every binary operator to its kind.
var binaryOps = map[string]ExprKind{
	"=":  ExprAssign,
	"||": ExprOr,
	"&&": ExprAnd,
	"==": ExprEq,
	"!=": ExprNe,
	"<":  ExprLt,
	"<=": ExprLe,
	">":  ExprGt,
	">=": ExprGe,
	"+":  ExprAdd,
	"-":  ExprSub,
	"*":  ExprMul,
	"/":  ExprDiv,
	"%":  ExprMod,
	"^":  ExprExponent,
}

var unaryOps = map[string]ExprKind{
	"!": ExprNot,
	"-": ExprNegate,
}

var postfixOps = map[string]ExprKind{
	"++": ExprInc,
	"--": ExprDec,
}

// Op returns the source spelling of an operator kind, or "" for
// non-operator kinds.
func (k ExprKind) Op() string {
	for _, table := range []map[string]ExprKind{binaryOps, unaryOps, postfixOps} {
		for op, kind := range table {
			if kind == k {
				return op
			}
		}
	}
	return ""
}

func (k ExprKind) IsBinary() bool {
	return k >= ExprAssign && k <= ExprExponent
}

// Expr is an expression node. Left and Right are used by operators;
// ExprSubscript uses Left as the base and Right as the index; ExprCall uses
// Left as the callee name and Args for the actual arguments; ExprInitList
// uses Elems.
type Expr struct {
	Kind  ExprKind
	Left  *Expr
	Right *Expr
	Args  []*Expr
	Elems []*Expr

	// ExprIntegerLiteral, ExprCharLiteral, ExprBooleanLiteral (0 or 1)
	Integer int64
	// ExprName
	Name string
	// ExprStringLiteral
	Str string

	// Set by the resolver for ExprName.
	Symbol SymbolID
	// Set by the type checker.
	Type *Type
	// Register holding the value during code generation.
	Reg Reg
}

func NewIntegerLiteral(n int64) *Expr {
	return &Expr{Kind: ExprIntegerLiteral, Integer: n}
}

func NewBooleanLiteral(b bool) *Expr {
	e := &Expr{Kind: ExprBooleanLiteral}
	if b {
		e.Integer = 1
	}
	return e
}

func NewCharLiteral(c byte) *Expr {
	return &Expr{Kind: ExprCharLiteral, Integer: int64(c)}
}

func NewStringLiteral(s string) *Expr {
	return &Expr{Kind: ExprStringLiteral, Str: s}
}

func NewName(name string) *Expr {
	return &Expr{Kind: ExprName, Name: name}
}

func NewBinary(kind ExprKind, left, right *Expr) *Expr {
	return &Expr{Kind: kind, Left: left, Right: right}
}

func NewUnary(kind ExprKind, operand *Expr) *Expr {
	return &Expr{Kind: kind, Left: operand}
}

func NewSubscript(base, index *Expr) *Expr {
	return &Expr{Kind: ExprSubscript, Left: base, Right: index}
}

func NewCall(name string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Left: NewName(name), Args: args}
}

func NewGroup(inner *Expr) *Expr {
	return &Expr{Kind: ExprGroup, Left: inner}
}

func NewInitList(elems ...*Expr) *Expr {
	return &Expr{Kind: ExprInitList, Elems: elems}
}

// Copy deep-copies an expression tree. Symbol references are shared;
// register assignments are not carried over.
func (e *Expr) Copy() *Expr {
	if e == nil {
		return nil
	}
	c := *e
	c.Left = e.Left.Copy()
	c.Right = e.Right.Copy()
	c.Args = copyExprs(e.Args)
	c.Elems = copyExprs(e.Elems)
	c.Type = e.Type.Copy()
	c.Reg = NoReg
	return &c
}

func copyExprs(list []*Expr) []*Expr {
	if list == nil {
		return nil
	}
	out := make([]*Expr, len(list))
	for i, e := range list {
		out[i] = e.Copy()
	}
	return out
}

// IsAssignable reports whether e can appear on the left of an assignment or
// under ++/--.
func (e *Expr) IsAssignable() bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case ExprName, ExprSubscript:
		return true
	case ExprGroup:
		return e.Left.IsAssignable()
	}
	return false
}

type StmtKind int

const (
	StmtDecl StmtKind = iota
	StmtExpr
	StmtIfElse
	StmtFor
	StmtPrint
	StmtReturn
	StmtBlock
)

// Stmt is a statement node.
type Stmt struct {
	Kind StmtKind
	// StmtDecl
	Decl *Decl
	// StmtExpr and StmtReturn (nil for a bare return)
	Expr *Expr
	// StmtIfElse uses Cond; StmtFor uses all three, each optional.
	Init *Expr
	Cond *Expr
	Next *Expr
	// StmtPrint
	Exprs []*Expr
	// StmtIfElse and StmtFor
	Body *Stmt
	Else *Stmt
	// StmtBlock
	Stmts []*Stmt
}

// Decl is a declaration of a variable, a function prototype, or a function
// definition (Body != nil).
type Decl struct {
	Name  string
	Type  *Type
	Value *Expr
	Body  *Stmt

	// Set by the resolver.
	Symbol       SymbolID
	DeclaredAuto bool
	// FrameSlots is the number of stack slots used by a function's
	// parameters and locals. Set by the resolver for definitions.
	FrameSlots int
}

// Program is the list of top-level declarations handed over by the parser.
type Program struct {
	Decls []*Decl
}
