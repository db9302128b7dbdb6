package main

// TypeChecker computes the type of every expression and validates the typing
// rules of declarations and statements. Violations are reported as
// diagnostics and checking continues with a best-effort type.
//
// A nil type means "unknown": the expression refers to something that
// already produced a diagnostic, so rules involving it are not re-checked.
type TypeChecker struct {
	Symbols *SymbolTable
	diag    *Diagnostics

	// fn is the function definition whose body is being checked.
	fn *Decl
}

// NewTypeChecker returns a checker reporting to diag. With a nil diag the
// checker is quiet, which the resolver uses to infer auto types.
func NewTypeChecker(symbols *SymbolTable, diag *Diagnostics) *TypeChecker {
	return &TypeChecker{Symbols: symbols, diag: diag}
}

func (tc *TypeChecker) CheckProgram(prog *Program) {
	for _, d := range prog.Decls {
		tc.checkDecl(d, true)
	}
}

func (tc *TypeChecker) checkDecl(d *Decl, global bool) {
	if d.Body != nil && !global {
		// Already reported by the resolver.
		return
	}

	tc.checkDeclType(d)

	if d.Value != nil {
		t := tc.CheckInitializer(d.Value)
		switch {
		case d.DeclaredAuto:
			if t != nil {
				d.Type = t.Copy()
				if sym := tc.Symbols.Get(d.Symbol); sym != nil {
					sym.Type = t.Copy()
				}
			}
		case t != nil && !TypesEqual(t, d.Type):
			tc.diag.Typef("cannot assign an expression of type %s (%s) to a variable of type %s (%s)",
				t, FormatExpr(d.Value), d.Type, d.Name)
		}
		if global && !isConstant(d.Value) {
			tc.diag.Typef("global %s must be initialized with a constant (%s)", d.Name, FormatExpr(d.Value))
		}
	}

	if d.Body != nil {
		ret := d.Type.Subtype
		if ret != nil && !ret.IsAtomic() && !ret.Is(TypeVoid) {
			tc.diag.Typef("functions must return an atomic type or void (%s)", FormatDecl(d))
		}
		outer := tc.fn
		tc.fn = d
		tc.checkStmt(d.Body)
		tc.fn = outer
	}
}

func (tc *TypeChecker) checkDeclType(d *Decl) {
	switch d.Type.Kind {
	case TypeArray:
		if d.Type.Size == nil {
			tc.diag.Typef("arrays must be declared with fixed size (%s)", FormatDecl(d))
		} else if _, ok := d.Type.ArrayLength(); !ok {
			tc.diag.Typef("array size must be a nonnegative integer literal (%s)", FormatDecl(d))
		}
		if !d.Type.Subtype.IsAtomic() {
			tc.diag.Typef("array elements must have an atomic type (%s)", FormatDecl(d))
		}
	case TypeVoid:
		tc.diag.Typef("variables cannot have type void (%s)", FormatDecl(d))
	}
}

// isConstant reports whether e can be laid out in the data section.
func isConstant(e *Expr) bool {
	switch e.Kind {
	case ExprIntegerLiteral, ExprBooleanLiteral, ExprCharLiteral, ExprStringLiteral:
		return true
	case ExprNegate:
		return e.Left.Kind == ExprIntegerLiteral
	case ExprGroup:
		return isConstant(e.Left)
	case ExprInitList:
		for _, elem := range e.Elems {
			if !isConstant(elem) {
				return false
			}
		}
		return true
	}
	return false
}

func (tc *TypeChecker) checkStmt(s *Stmt) {
	if s == nil {
		return
	}
	switch s.Kind {
	case StmtDecl:
		tc.checkDecl(s.Decl, false)

	case StmtExpr:
		tc.CheckExpr(s.Expr)

	case StmtIfElse:
		if t := tc.CheckExpr(s.Cond); t != nil && !t.Is(TypeBoolean) {
			tc.diag.Typef("if statement requires a boolean condition (%s)", FormatExpr(s.Cond))
		}
		tc.checkStmt(s.Body)
		tc.checkStmt(s.Else)

	case StmtFor:
		tc.CheckExpr(s.Init)
		if t := tc.CheckExpr(s.Cond); t != nil && !t.Is(TypeBoolean) {
			tc.diag.Typef("for statement requires a boolean condition (%s)", FormatExpr(s.Cond))
		}
		tc.CheckExpr(s.Next)
		tc.checkStmt(s.Body)

	case StmtPrint:
		for _, e := range s.Exprs {
			if t := tc.CheckExpr(e); t != nil && !t.IsAtomic() {
				tc.diag.Typef("print statements must be a list of atomic types (%s)", FormatExpr(e))
			}
		}

	case StmtReturn:
		t := NewType(TypeVoid)
		if s.Expr != nil {
			t = tc.CheckExpr(s.Expr)
		}
		if tc.fn == nil || t == nil {
			return
		}
		if want := tc.fn.Type.Subtype; !TypesEqual(t, want) {
			tc.diag.Typef("mismatched return type in function %s. Expected %s, actual %s (return %s;)",
				tc.fn.Name, want, t, FormatExpr(s.Expr))
		}

	case StmtBlock:
		for _, child := range s.Stmts {
			tc.checkStmt(child)
		}
	}
}

// CheckInitializer is CheckExpr for the value of a declaration or the right
// side of an assignment, the only places an initializer list may appear.
func (tc *TypeChecker) CheckInitializer(e *Expr) *Type {
	if e != nil && e.Kind == ExprInitList {
		e.Type = tc.initListType(e)
		return e.Type
	}
	return tc.CheckExpr(e)
}

// CheckExpr computes and records the type of e and its subexpressions. The
// returned type is owned by e.
func (tc *TypeChecker) CheckExpr(e *Expr) *Type {
	if e == nil {
		return nil
	}
	e.Type = tc.exprType(e)
	return e.Type
}

func (tc *TypeChecker) exprType(e *Expr) *Type {
	switch e.Kind {
	case ExprIntegerLiteral:
		return NewType(TypeInteger)
	case ExprBooleanLiteral:
		return NewType(TypeBoolean)
	case ExprCharLiteral:
		return NewType(TypeChar)
	case ExprStringLiteral:
		return NewType(TypeString)

	case ExprName:
		sym := tc.Symbols.Get(e.Symbol)
		if sym == nil || sym.Type.Is(TypeAuto) {
			// Undefined, or auto with nothing to infer from.
			return nil
		}
		return sym.Type.Copy()

	case ExprGroup:
		return tc.CheckExpr(e.Left).Copy()

	case ExprAssign:
		lt := tc.CheckExpr(e.Left)
		rt := tc.CheckInitializer(e.Right)
		if !e.Left.IsAssignable() {
			tc.diag.Typef("cannot assign to %s (%s)", FormatExpr(e.Left), FormatExpr(e))
		} else if lt != nil && rt != nil && !TypesEqual(lt, rt) {
			tc.diag.Typef("cannot assign an expression of type %s (%s) to a variable of type %s (%s)",
				rt, FormatExpr(e.Right), lt, FormatExpr(e.Left))
		}
		if lt != nil {
			return lt.Copy()
		}
		return rt.Copy()

	case ExprOr, ExprAnd:
		lt := tc.CheckExpr(e.Left)
		rt := tc.CheckExpr(e.Right)
		if (lt != nil && !lt.Is(TypeBoolean)) || (rt != nil && !rt.Is(TypeBoolean)) {
			tc.diag.Typef("logical operators require boolean operands (%s)", FormatExpr(e))
		}
		return NewType(TypeBoolean)

	case ExprEq, ExprNe:
		lt := tc.CheckExpr(e.Left)
		rt := tc.CheckExpr(e.Right)
		if lt == nil || rt == nil {
			return NewType(TypeBoolean)
		}
		if !TypesEqual(lt, rt) {
			tc.diag.Typef("type mismatch. Cannot compare type %s to type %s (%s)", lt, rt, FormatExpr(e))
		} else if lt.Is(TypeVoid) || lt.Is(TypeFunction) || lt.Is(TypeArray) {
			tc.diag.Typef("equality operators cannot compare values of type %s (%s)", lt, FormatExpr(e))
		}
		return NewType(TypeBoolean)

	case ExprLt, ExprLe, ExprGt, ExprGe:
		lt := tc.CheckExpr(e.Left)
		rt := tc.CheckExpr(e.Right)
		if !integerOperands(lt, rt) {
			tc.diag.Typef("comparison operators require integer operands. Cannot compare type %s to type %s (%s)",
				lt, rt, FormatExpr(e))
		}
		return NewType(TypeBoolean)

	case ExprAdd, ExprSub, ExprMul, ExprDiv, ExprMod, ExprExponent:
		lt := tc.CheckExpr(e.Left)
		rt := tc.CheckExpr(e.Right)
		if !integerOperands(lt, rt) {
			tc.diag.Typef("arithmetic operators require integer operands. Cannot use type %s with type %s (%s)",
				lt, rt, FormatExpr(e))
		}
		return NewType(TypeInteger)

	case ExprInc, ExprDec:
		t := tc.CheckExpr(e.Left)
		if t != nil && !t.Is(TypeInteger) {
			tc.diag.Typef("increment operators require an integer operand (%s)", FormatExpr(e))
		}
		if !e.Left.IsAssignable() {
			tc.diag.Typef("increment operators require an assignable operand (%s)", FormatExpr(e))
		}
		return NewType(TypeInteger)

	case ExprNot:
		if t := tc.CheckExpr(e.Left); t != nil && !t.Is(TypeBoolean) {
			tc.diag.Typef("the not operator requires a boolean operand (%s)", FormatExpr(e))
		}
		return NewType(TypeBoolean)

	case ExprNegate:
		if t := tc.CheckExpr(e.Left); t != nil && !t.Is(TypeInteger) {
			tc.diag.Typef("the unary minus operator requires an integer operand (%s)", FormatExpr(e))
		}
		return NewType(TypeInteger)

	case ExprSubscript:
		bt := tc.CheckExpr(e.Left)
		it := tc.CheckExpr(e.Right)
		if it != nil && !it.Is(TypeInteger) {
			tc.diag.Typef("subscripts must be integers (%s)", FormatExpr(e))
		}
		switch {
		case bt == nil:
			return nil
		case bt.Is(TypeString):
			return NewType(TypeChar)
		case bt.Is(TypeArray):
			return bt.Subtype.Copy()
		}
		tc.diag.Typef("only arrays and strings can be subscripted (%s)", FormatExpr(e))
		return nil

	case ExprCall:
		return tc.callType(e)

	case ExprInitList:
		tc.diag.Typef("initializer lists can only initialize or assign an array (%s)", FormatExpr(e))
		return tc.initListType(e)
	}
	return nil
}

func (tc *TypeChecker) initListType(e *Expr) *Type {
	var first *Type
	for i, elem := range e.Elems {
		t := tc.CheckExpr(elem)
		if i == 0 {
			first = t
			continue
		}
		if first != nil && t != nil && !TypesEqual(first, t) {
			tc.diag.Typef("initializer list elements must all have type %s (%s)", first, FormatExpr(e))
		}
	}
	if first == nil {
		first = NewType(TypeInteger)
	}
	return NewArrayType(first.Copy(), NewIntegerLiteral(int64(len(e.Elems))))
}

func integerOperands(lt, rt *Type) bool {
	return (lt == nil || lt.Is(TypeInteger)) && (rt == nil || rt.Is(TypeInteger))
}

func (tc *TypeChecker) callType(e *Expr) *Type {
	argTypes := make([]*Type, len(e.Args))
	for i, arg := range e.Args {
		argTypes[i] = tc.CheckExpr(arg)
	}

	sym := tc.Symbols.Get(e.Left.Symbol)
	if sym == nil {
		return nil
	}
	e.Left.Type = sym.Type.Copy()
	if !sym.Type.Is(TypeFunction) {
		tc.diag.Typef("%s is not a function (%s)", sym.Name, FormatExpr(e))
		return nil
	}

	params := sym.Type.Params
	if len(params) != len(e.Args) {
		tc.diag.Typef("function %s expects %d arguments but got %d (%s)",
			sym.Name, len(params), len(e.Args), FormatExpr(e))
	}
	for i := 0; i < len(params) && i < len(e.Args); i++ {
		if argTypes[i] != nil && !argumentMatches(params[i].Type, argTypes[i]) {
			tc.diag.Typef("argument %d of %s must be %s but got %s (%s)",
				i+1, sym.Name, params[i].Type, argTypes[i], FormatExpr(e.Args[i]))
		}
	}
	return sym.Type.Subtype.Copy()
}

// argumentMatches is TypesEqual, except that a size-less array parameter
// accepts an array of any length.
func argumentMatches(param, actual *Type) bool {
	if param.Is(TypeArray) && param.Size == nil && actual.Is(TypeArray) {
		return TypesEqual(param.Subtype, actual.Subtype)
	}
	return TypesEqual(param, actual)
}
